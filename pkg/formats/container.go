package formats

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"

	"github.com/Faultbox/partmesh/pkg/encoding"
	"github.com/Faultbox/partmesh/pkg/scene"
)

// Binary container layout.
const (
	ContainerMagic     = "glTF"
	containerVersion   = 2
	containerHeaderLen = 12
	chunkHeaderLen     = 8

	chunkTypeJSON uint32 = 0x4E4F534A // "JSON"
	chunkTypeBIN  uint32 = 0x004E4942 // "BIN\0"
)

// DecodeOptions supplies buffer bytes that are not embedded in the document.
type DecodeOptions struct {
	// Buffers maps buffer index to already-decoded bytes. Entries override
	// inline URIs and the binary chunk.
	Buffers map[int][]byte

	// ResolveURI loads buffers referenced by an external (non data:) URI.
	// When nil such buffers stay unresolved and fail at read time.
	ResolveURI func(uri string) ([]byte, error)
}

// containerHeader is the fixed 12-byte prefix of a binary container.
type containerHeader struct {
	Magic   [4]byte
	Version uint32
	Length  uint32
}

// chunk is one entry of the container chunk table.
type chunk struct {
	Type   uint32
	Offset int
	Data   []byte
}

// IsContainer reports whether data starts with the binary container signature.
func IsContainer(data []byte) bool {
	return len(data) >= 4 && string(data[:4]) == ContainerMagic
}

// Decode parses either a binary container or a plain JSON scene document.
// On failure no document is returned.
func Decode(data []byte, opts DecodeOptions) (*scene.Document, error) {
	var (
		jsonData []byte
		jsonOff  int
		binChunk []byte
	)

	if IsContainer(data) {
		chunks, err := readChunks(data)
		if err != nil {
			return nil, err
		}
		found := false
		for _, c := range chunks {
			switch c.Type {
			case chunkTypeJSON:
				if !found {
					jsonData, jsonOff, found = c.Data, c.Offset, true
				}
			case chunkTypeBIN:
				if binChunk == nil {
					binChunk = c.Data
				}
			}
		}
		if !found {
			return nil, fmt.Errorf("%w: no JSON chunk in %d chunks", scene.ErrMalformedContainer, len(chunks))
		}
	} else {
		jsonData = data
	}

	doc, err := parseDocument(jsonData, jsonOff)
	if err != nil {
		return nil, err
	}

	if binChunk != nil && len(doc.Buffers) > 0 && doc.Buffers[0].URI == "" {
		doc.Buffers[0].SetData(binChunk)
	}
	for i := range doc.Buffers {
		b := &doc.Buffers[i]
		if data, ok := opts.Buffers[i]; ok {
			b.SetData(data)
			continue
		}
		if b.HasData() || b.URI == "" || encoding.IsDataURI(b.URI) || opts.ResolveURI == nil {
			continue
		}
		data, err := opts.ResolveURI(b.URI)
		if err != nil {
			return nil, fmt.Errorf("%w: buffer %d uri %q: %v", scene.ErrUnresolvableReference, i, b.URI, err)
		}
		b.SetData(data)
	}

	return doc, nil
}

// DecodeFile reads and decodes a scene file. External buffer URIs are
// resolved relative to the file's directory unless opts.ResolveURI is set.
func DecodeFile(path string, opts DecodeOptions) (*scene.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading scene file: %w", err)
	}
	if opts.ResolveURI == nil {
		opts.ResolveURI = RelativeResolver(filepath.Dir(path))
	}
	return Decode(data, opts)
}

// RelativeResolver loads external buffer URIs from files under dir.
func RelativeResolver(dir string) func(uri string) ([]byte, error) {
	return func(uri string) ([]byte, error) {
		name, err := url.PathUnescape(uri)
		if err != nil {
			return nil, err
		}
		return os.ReadFile(filepath.Join(dir, filepath.FromSlash(name)))
	}
}

// readChunks validates the container header and walks the chunk table.
func readChunks(data []byte) ([]chunk, error) {
	if len(data) < containerHeaderLen {
		return nil, fmt.Errorf("%w: header needs %d bytes, have %d",
			scene.ErrMalformedContainer, containerHeaderLen, len(data))
	}

	var hdr containerHeader
	if err := binary.Read(bytes.NewReader(data[:containerHeaderLen]), binary.LittleEndian, &hdr); err != nil {
		return nil, fmt.Errorf("%w: reading header: %v", scene.ErrMalformedContainer, err)
	}
	if hdr.Version != containerVersion {
		return nil, fmt.Errorf("%w: unsupported container version %d", scene.ErrMalformedContainer, hdr.Version)
	}
	total := int(hdr.Length)
	if total < containerHeaderLen || total > len(data) {
		return nil, fmt.Errorf("%w: declared length %d, stream has %d bytes",
			scene.ErrMalformedContainer, hdr.Length, len(data))
	}

	var chunks []chunk
	offset := containerHeaderLen
	for offset < total {
		if total-offset < chunkHeaderLen {
			return nil, fmt.Errorf("%w: truncated chunk header at byte offset %d",
				scene.ErrMalformedContainer, offset)
		}
		length := int(binary.LittleEndian.Uint32(data[offset:]))
		typ := binary.LittleEndian.Uint32(data[offset+4:])
		start := offset + chunkHeaderLen
		if length < 0 || length > total-start {
			return nil, fmt.Errorf("%w: chunk at byte offset %d declares %d bytes, %d remain",
				scene.ErrMalformedContainer, offset, length, total-start)
		}
		chunks = append(chunks, chunk{Type: typ, Offset: start, Data: data[start : start+length]})
		offset = start + length
	}
	return chunks, nil
}

// parseDocument decodes the structured-data payload. base is the payload's
// byte offset inside the original stream, used in error messages.
func parseDocument(data []byte, base int) (*scene.Document, error) {
	text, err := encoding.DecodeText(data)
	if err != nil {
		return nil, fmt.Errorf("%w: payload at byte offset %d: %v", scene.ErrInvalidSceneSyntax, base, err)
	}

	var doc scene.Document
	if err := json.Unmarshal(text, &doc); err != nil {
		var syntaxErr *json.SyntaxError
		var typeErr *json.UnmarshalTypeError
		switch {
		case errors.As(err, &syntaxErr):
			return nil, fmt.Errorf("%w: byte offset %d: %v",
				scene.ErrInvalidSceneSyntax, int64(base)+syntaxErr.Offset, syntaxErr)
		case errors.As(err, &typeErr):
			return nil, fmt.Errorf("%w: byte offset %d: field %q: %v",
				scene.ErrInvalidSceneSyntax, int64(base)+typeErr.Offset, typeErr.Field, typeErr)
		default:
			return nil, fmt.Errorf("%w: %v", scene.ErrInvalidSceneSyntax, err)
		}
	}
	return &doc, nil
}
