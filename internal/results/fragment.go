package results

import (
	"github.com/arqv30/arqv-cli/api/schemas"
)

// BlockKind tells a display surface how to lay out a Block.
type BlockKind string

const (
	// BlockCard is a titled group of label/value fields and bullet items.
	BlockCard BlockKind = "card"
	// BlockList is a bullet list.
	BlockList BlockKind = "list"
	// BlockNumbered is a numbered sequence of cards.
	BlockNumbered BlockKind = "numbered"
	// BlockTable is a header row plus data rows.
	BlockTable BlockKind = "table"
	// BlockTags is an inline run of short labels.
	BlockTags BlockKind = "tags"
	// BlockGrid is a label/value grid.
	BlockGrid BlockKind = "grid"
	// BlockText is a single paragraph.
	BlockText BlockKind = "text"
	// BlockBanner is an emphasized one-line notice.
	BlockBanner BlockKind = "banner"
	// BlockCollapsible wraps its children under a toggleable header.
	BlockCollapsible BlockKind = "collapsible"
)

// Block is one layout element of a Fragment. Only the fields relevant to its
// Kind are set.
type Block struct {
	Kind     BlockKind       `json:"kind"`
	Title    string          `json:"title,omitempty"`
	Text     string          `json:"text,omitempty"`
	Fields   []schemas.Field `json:"fields,omitempty"`
	Items    []string        `json:"items,omitempty"`
	Columns  []string        `json:"columns,omitempty"`
	Rows     [][]string      `json:"rows,omitempty"`
	Expanded bool            `json:"expanded,omitempty"`
	Children []Block         `json:"children,omitempty"`
}

// Fragment is the renderable output of one section. It only describes the
// layout; surfaces decide how to draw it.
type Fragment struct {
	Section   schemas.SectionKey `json:"section"`
	Container string             `json:"container"`
	Title     string             `json:"title"`
	Blocks    []Block            `json:"blocks"`
}

// Slot pairs a section with its (possibly empty) fragment.
type Slot struct {
	Section   schemas.SectionKey
	Container string
	Fragment  schemas.Optional[Fragment]
}

// View is the projection of a whole result: one slot per section, in fixed
// rendering order.
type View struct {
	slots []Slot
}

// EmptyView returns a view with every slot empty. Rendering it clears a surface.
func EmptyView() View {
	slots := make([]Slot, len(sections))
	for i, s := range sections {
		slots[i] = Slot{Section: s.key, Container: s.container}
	}
	return View{slots: slots}
}

// Slots returns every slot in rendering order.
func (v View) Slots() []Slot {
	if v.slots == nil {
		return EmptyView().slots
	}
	out := make([]Slot, len(v.slots))
	copy(out, v.slots)
	return out
}

// Fragment returns the fragment projected for key.
func (v View) Fragment(key schemas.SectionKey) schemas.Optional[Fragment] {
	for _, s := range v.slots {
		if s.Section == key {
			return s.Fragment
		}
	}
	return schemas.None[Fragment]()
}

// Fragments returns the present fragments in rendering order.
func (v View) Fragments() []Fragment {
	out := make([]Fragment, 0, len(v.slots))
	for _, s := range v.slots {
		if f, ok := s.Fragment.Get(); ok {
			out = append(out, f)
		}
	}
	return out
}

// Empty reports whether no section produced a fragment.
func (v View) Empty() bool {
	return len(v.Fragments()) == 0
}

// Containers lists the display container ids in rendering order.
func Containers() []string {
	out := make([]string, len(sections))
	for i, s := range sections {
		out[i] = s.container
	}
	return out
}

// ContainerFor returns the display container id of a section.
func ContainerFor(key schemas.SectionKey) (string, bool) {
	for _, s := range sections {
		if s.key == key {
			return s.container, true
		}
	}
	return "", false
}
