// File: internal/network/compression.go
package network

import (
	"compress/gzip"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"

	"github.com/andybalholm/brotli"
)

// Pools for decompression readers to reduce allocation overhead.
var (
	gzipReaderPool = sync.Pool{
		New: func() interface{} { return new(gzip.Reader) },
	}
	brotliReaderPool = sync.Pool{
		New: func() interface{} { return brotli.NewReader(nil) },
	}
	emptyReader = strings.NewReader("")
)

// acceptEncoding is advertised on every request that does not set its own.
const acceptEncoding = "br, gzip, identity"

// CompressionMiddleware is an http.RoundTripper that negotiates compression
// and transparently decodes brotli and gzip response bodies. Analysis documents
// are large text, so the service usually compresses them.
type CompressionMiddleware struct {
	Transport http.RoundTripper
}

// NewCompressionMiddleware wraps transport, defaulting to http.DefaultTransport.
func NewCompressionMiddleware(transport http.RoundTripper) *CompressionMiddleware {
	if transport == nil {
		transport = http.DefaultTransport
	}
	return &CompressionMiddleware{Transport: transport}
}

// RoundTrip implements http.RoundTripper.
func (cm *CompressionMiddleware) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.Header.Get("Accept-Encoding") == "" {
		// RoundTrippers must not modify the caller's request.
		req = req.Clone(req.Context())
		req.Header.Set("Accept-Encoding", acceptEncoding)
	}

	resp, err := cm.Transport.RoundTrip(req)
	if err != nil {
		return nil, err
	}
	if err := DecompressResponse(resp); err != nil {
		_ = resp.Body.Close()
		return nil, fmt.Errorf("failed to initialize response decompression: %w", err)
	}
	return resp, nil
}

// pooledBody closes the decoder, returns it to its pool and closes the wire body.
type pooledBody struct {
	io.Reader
	wire    io.ReadCloser
	release func()
	once    sync.Once
}

func (b *pooledBody) Close() error {
	var closeErr error
	b.once.Do(func() {
		if c, ok := b.Reader.(io.Closer); ok {
			closeErr = c.Close()
		}
		if b.release != nil {
			b.release()
		}
		closeErr = errors.Join(closeErr, b.wire.Close())
	})
	return closeErr
}

// DecompressResponse replaces resp.Body with a decoding reader according to
// Content-Encoding, undoing layered encodings in reverse order. On error the
// body may be partly consumed and the response must be discarded.
func DecompressResponse(resp *http.Response) error {
	if resp == nil || resp.Body == nil {
		return nil
	}
	encodings := resp.Header.Values("Content-Encoding")
	if len(encodings) == 0 {
		return nil
	}

	for i := len(encodings) - 1; i >= 0; i-- {
		for _, layer := range reversed(strings.Split(encodings[i], ",")) {
			encoding := strings.ToLower(strings.TrimSpace(layer))
			switch encoding {
			case "gzip", "x-gzip":
				zr := gzipReaderPool.Get().(*gzip.Reader)
				if err := zr.Reset(resp.Body); err != nil {
					gzipReaderPool.Put(zr)
					return fmt.Errorf("gzip initialization error: %w", err)
				}
				resp.Body = &pooledBody{Reader: zr, wire: resp.Body, release: func() {
					_ = zr.Reset(emptyReader)
					gzipReaderPool.Put(zr)
				}}
			case "br":
				br := brotliReaderPool.Get().(*brotli.Reader)
				if err := br.Reset(resp.Body); err != nil {
					brotliReaderPool.Put(br)
					return fmt.Errorf("brotli initialization error: %w", err)
				}
				resp.Body = &pooledBody{Reader: br, wire: resp.Body, release: func() {
					_ = br.Reset(emptyReader)
					brotliReaderPool.Put(br)
				}}
			case "identity", "":
			default:
				return fmt.Errorf("unsupported Content-Encoding layer: %s", encoding)
			}
		}
	}

	resp.Header.Del("Content-Encoding")
	resp.Header.Del("Content-Length")
	resp.ContentLength = -1
	resp.Uncompressed = true
	return nil
}

func reversed(in []string) []string {
	out := make([]string, len(in))
	for i, s := range in {
		out[len(in)-1-i] = s
	}
	return out
}
