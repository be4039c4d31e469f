package schemas

import (
	"sort"
)

// Wire keys the client adds to every analysis submission.
const (
	FieldSessionID     = "session_id"
	FieldUploadedFiles = "uploaded_files"
)

// FormRecord maps form field names to their submitted values.
type FormRecord map[string]string

// Get returns the value of a field and whether the field was submitted.
func (f FormRecord) Get(name string) (string, bool) {
	v, ok := f[name]
	return v, ok
}

// Clone returns an independent copy of the record.
func (f FormRecord) Clone() FormRecord {
	out := make(FormRecord, len(f))
	for k, v := range f {
		out[k] = v
	}
	return out
}

// UploadedFileRef is an opaque identifier of a file already uploaded to the service.
type UploadedFileRef string

// AnalysisRequest is the body of a single analysis submission.
// Construct it with NewAnalysisRequest; it is never modified afterwards.
type AnalysisRequest struct {
	fields        FormRecord
	sessionID     string
	uploadedFiles []UploadedFileRef
}

// NewAnalysisRequest copies the record and file list so later changes by the caller
// cannot leak into a submitted request.
func NewAnalysisRequest(record FormRecord, sessionID string, files []UploadedFileRef) AnalysisRequest {
	refs := make([]UploadedFileRef, len(files))
	copy(refs, files)
	return AnalysisRequest{
		fields:        record.Clone(),
		sessionID:     sessionID,
		uploadedFiles: refs,
	}
}

func (r AnalysisRequest) SessionID() string { return r.sessionID }

// Field returns one submitted form value.
func (r AnalysisRequest) Field(name string) (string, bool) {
	return r.fields.Get(name)
}

// Fields returns a copy of the submitted form values.
func (r AnalysisRequest) Fields() FormRecord {
	return r.fields.Clone()
}

// UploadedFiles returns a copy of the attached file references.
func (r AnalysisRequest) UploadedFiles() []UploadedFileRef {
	out := make([]UploadedFileRef, len(r.uploadedFiles))
	copy(out, r.uploadedFiles)
	return out
}

// Document builds the wire body: form fields in name order, then session_id and
// uploaded_files. The two client keys replace form fields of the same name.
func (r AnalysisRequest) Document() *Object {
	names := make([]string, 0, len(r.fields))
	for k := range r.fields {
		if k == FieldSessionID || k == FieldUploadedFiles {
			continue
		}
		names = append(names, k)
	}
	sort.Strings(names)

	doc := NewObject()
	for _, k := range names {
		doc.Set(k, r.fields[k])
	}
	doc.Set(FieldSessionID, r.sessionID)
	files := make([]any, len(r.uploadedFiles))
	for i, ref := range r.uploadedFiles {
		files[i] = string(ref)
	}
	doc.Set(FieldUploadedFiles, files)
	return doc
}

// MarshalJSON writes the wire body.
func (r AnalysisRequest) MarshalJSON() ([]byte, error) {
	return r.Document().MarshalJSON()
}
