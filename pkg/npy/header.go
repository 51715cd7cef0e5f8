package npy

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/encoding/charmap"
)

// Header is the decoded preamble of an .npy stream.
type Header struct {
	Major     uint8
	Minor     uint8
	HeaderLen uint32

	Descr        string
	Shape        []int
	FortranOrder bool

	// DataOffset is the payload start relative to the beginning of the stream.
	DataOffset int64
}

// lengthFieldWidth returns the size of the header length field for a major
// version. Version 1 uses a uint16, every later version a uint32.
func lengthFieldWidth(major uint8) (int, error) {
	switch {
	case major == 1:
		return 2, nil
	case major >= 2:
		return 4, nil
	default:
		return 0, fmt.Errorf("%w: format version %d has no header length field", ErrUnsupportedDescriptor, major)
	}
}

// PayloadOffset returns the absolute payload offset for a stream of the given
// major version whose metadata block is headerLen bytes long.
func PayloadOffset(major uint8, headerLen uint32) (int64, error) {
	w, err := lengthFieldWidth(major)
	if err != nil {
		return 0, err
	}
	end := int64(prefixSize+w) + int64(headerLen)
	return alignUp(end, Alignment), nil
}

func alignUp(n, align int64) int64 {
	return (n + align - 1) / align * align
}

// ReadHeader reads the prefix, length field and metadata dictionary from r.
// On success r is positioned at the end of the metadata block, which may be
// before DataOffset.
func ReadHeader(r io.Reader) (Header, error) {
	var prefix [prefixSize]byte
	if _, err := io.ReadFull(r, prefix[:]); err != nil {
		return Header{}, fmt.Errorf("%w: read prefix: %v", ErrMalformedHeader, err)
	}
	if !bytes.Equal(prefix[:len(Magic)], Magic[:]) {
		return Header{}, fmt.Errorf("%w: bad magic % x", ErrMalformedHeader, prefix[:len(Magic)])
	}

	h := Header{
		Major: prefix[6],
		Minor: prefix[7],
	}
	w, err := lengthFieldWidth(h.Major)
	if err != nil {
		return Header{}, err
	}

	var lenBuf [4]byte
	if _, err := io.ReadFull(r, lenBuf[:w]); err != nil {
		return Header{}, fmt.Errorf("%w: read header length: %v", ErrMalformedHeader, err)
	}
	if w == 2 {
		h.HeaderLen = uint32(binary.LittleEndian.Uint16(lenBuf[:2]))
	} else {
		h.HeaderLen = binary.LittleEndian.Uint32(lenBuf[:])
	}

	// Read through a limit instead of allocating HeaderLen up front; a corrupt
	// length field can claim up to 4 GiB.
	meta, err := io.ReadAll(io.LimitReader(r, int64(h.HeaderLen)))
	if err != nil {
		return Header{}, fmt.Errorf("%w: read metadata: %v", ErrMalformedHeader, err)
	}
	if uint32(len(meta)) != h.HeaderLen {
		return Header{}, fmt.Errorf("%w: metadata block has %d of %d bytes", ErrMalformedHeader, len(meta), h.HeaderLen)
	}

	fields, err := parseMetadata(dictText(metadataText(meta, h.Major)))
	if err != nil {
		return Header{}, err
	}
	h.Descr = fields.descr
	h.Shape = fields.shape
	h.FortranOrder = fields.fortranOrder

	h.DataOffset, err = PayloadOffset(h.Major, h.HeaderLen)
	if err != nil {
		return Header{}, err
	}
	return h, nil
}

// metadataText decodes the metadata block without ever failing. Versions 1
// and 2 store latin-1 text; version 3 stores UTF-8, where invalid sequences
// are dropped.
func metadataText(b []byte, major uint8) string {
	if major >= 3 {
		return strings.ToValidUTF8(string(b), "")
	}
	// Every byte has a latin-1 code point, so decoding cannot fail.
	out, _ := charmap.ISO8859_1.NewDecoder().Bytes(b)
	return string(out)
}

// dictText returns the span from the first '{' to the last '}'. Without a
// bracket pair it falls back to the whole text with NULs and whitespace
// trimmed, and leaves the rejection to the literal parser.
func dictText(s string) string {
	start := strings.IndexByte(s, '{')
	end := strings.LastIndexByte(s, '}')
	if start != -1 && end > start {
		return s[start : end+1]
	}
	return strings.TrimSpace(strings.Trim(s, "\x00"))
}

type metadataFields struct {
	descr        string
	shape        []int
	fortranOrder bool
}

func parseMetadata(text string) (metadataFields, error) {
	v, err := parseLiteral(text)
	if err != nil {
		return metadataFields{}, fmt.Errorf("%w: %v", ErrMalformedMetadata, err)
	}
	dict, ok := v.(map[string]any)
	if !ok {
		return metadataFields{}, fmt.Errorf("%w: metadata is %s, want dict", ErrMalformedMetadata, literalKind(v))
	}

	var out metadataFields

	switch descr := dict["descr"].(type) {
	case string:
		out.descr = descr
	case list:
		return metadataFields{}, fmt.Errorf("%w: structured dtypes are not supported", ErrUnsupportedDescriptor)
	case nil:
		return metadataFields{}, fmt.Errorf("%w: missing descr", ErrMalformedMetadata)
	default:
		return metadataFields{}, fmt.Errorf("%w: descr is %s, want str", ErrMalformedMetadata, literalKind(descr))
	}

	rawShape, ok := dict["shape"]
	if !ok {
		return metadataFields{}, fmt.Errorf("%w: missing shape", ErrMalformedMetadata)
	}
	dims, ok := rawShape.(tuple)
	if !ok {
		return metadataFields{}, fmt.Errorf("%w: shape is %s, want tuple", ErrMalformedMetadata, literalKind(rawShape))
	}
	out.shape = make([]int, len(dims))
	for i, d := range dims {
		n, ok := d.(int64)
		if !ok {
			return metadataFields{}, fmt.Errorf("%w: shape[%d] is %s, want int", ErrMalformedMetadata, i, literalKind(d))
		}
		if n < 0 || int64(int(n)) != n {
			return metadataFields{}, fmt.Errorf("%w: shape[%d] = %d out of range", ErrMalformedMetadata, i, n)
		}
		out.shape[i] = int(n)
	}

	if raw, ok := dict["fortran_order"]; ok {
		b, ok := raw.(bool)
		if !ok {
			return metadataFields{}, fmt.Errorf("%w: fortran_order is %s, want bool", ErrMalformedMetadata, literalKind(raw))
		}
		out.fortranOrder = b
	}
	return out, nil
}
