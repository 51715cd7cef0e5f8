package npy

import (
	"fmt"
	"io"
)

// Decode reads one .npy array from r, starting at r's current position.
// Bytes after the payload are ignored. Decode never returns a partial array:
// either the full payload is read or an error is returned.
func Decode(r io.ReadSeeker) (*Array, error) {
	arr, _, err := DecodeWithHeader(r)
	return arr, err
}

// DecodeWithHeader is Decode that also returns the header the array was
// decoded from. When the header parses but the payload does not, the header
// is returned alongside the error; otherwise it is the zero value.
func DecodeWithHeader(r io.ReadSeeker) (*Array, Header, error) {
	start, err := r.Seek(0, io.SeekCurrent)
	if err != nil {
		return nil, Header{}, fmt.Errorf("npy: locate stream start: %w", err)
	}

	h, err := ReadHeader(r)
	if err != nil {
		return nil, Header{}, err
	}
	arr, err := readPayload(r, start, h)
	if err != nil {
		return nil, h, err
	}
	return arr, h, nil
}

// readPayload decodes the payload described by h. r is positioned anywhere
// after the metadata block; start is the stream's first byte.
func readPayload(r io.ReadSeeker, start int64, h Header) (*Array, error) {
	end, err := r.Seek(0, io.SeekEnd)
	if err != nil {
		return nil, fmt.Errorf("npy: locate stream end: %w", err)
	}
	avail := end - start - h.DataOffset
	if avail < 0 {
		return nil, fmt.Errorf("%w: payload offset %d beyond stream length %d", ErrTruncatedPayload, h.DataOffset, end-start)
	}
	if _, err := r.Seek(start+h.DataOffset, io.SeekStart); err != nil {
		return nil, fmt.Errorf("%w: seek to payload: %v", ErrTruncatedPayload, err)
	}

	dt, err := ParseDescr(h.Descr)
	if err != nil {
		return nil, err
	}
	count, err := elementCount(h.Shape)
	if err != nil {
		return nil, err
	}
	if count > maxInt/dt.Size {
		return nil, fmt.Errorf("%w: shape %v too large for %s", ErrMalformedMetadata, h.Shape, dt)
	}
	nbytes := count * dt.Size
	if int64(nbytes) > avail {
		return nil, fmt.Errorf("%w: need %d payload bytes, stream has %d", ErrTruncatedPayload, nbytes, avail)
	}

	data := make([]byte, nbytes)
	if _, err := io.ReadFull(r, data); err != nil {
		return nil, fmt.Errorf("%w: read payload: %v", ErrTruncatedPayload, err)
	}
	if h.FortranOrder {
		data = fortranToRowMajor(data, h.Shape, dt.Size)
	}

	return &Array{
		DType:        dt,
		Shape:        h.Shape,
		FortranOrder: h.FortranOrder,
		Data:         data,
	}, nil
}

const maxInt = int(^uint(0) >> 1)

// elementCount multiplies the dimensions. An empty shape is a scalar. The
// product of the non-zero dimensions must fit in an int wherever a zero
// dimension appears, so (0, n, n) and (n, n, 0) are rejected alike.
func elementCount(shape []int) (int, error) {
	n := 1
	empty := false
	for _, d := range shape {
		if d == 0 {
			empty = true
			continue
		}
		if n > maxInt/d {
			return 0, fmt.Errorf("%w: shape %v overflows", ErrMalformedMetadata, shape)
		}
		n *= d
	}
	if empty {
		return 0, nil
	}
	return n, nil
}
