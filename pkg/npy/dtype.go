package npy

import (
	"encoding/binary"
	"fmt"
	"math"
	"strconv"
)

type Kind uint8

const (
	Bool Kind = iota + 1
	Int
	Uint
	Float
	Complex
)

func (k Kind) String() string {
	switch k {
	case Bool:
		return "bool"
	case Int:
		return "int"
	case Uint:
		return "uint"
	case Float:
		return "float"
	case Complex:
		return "complex"
	default:
		return fmt.Sprintf("Kind(%d)", uint8(k))
	}
}

// code is the single letter used for the kind in a descr string.
func (k Kind) code() byte {
	switch k {
	case Bool:
		return 'b'
	case Int:
		return 'i'
	case Uint:
		return 'u'
	case Float:
		return 'f'
	case Complex:
		return 'c'
	default:
		return '?'
	}
}

// DType is a parsed element descriptor such as "<f4" or "|u1".
type DType struct {
	Kind      Kind
	Size      int
	BigEndian bool
}

// ParseDescr parses a NumPy type descriptor: an optional byte order
// ('<', '>', '=', '|'), a kind letter and a width in bytes.
func ParseDescr(s string) (DType, error) {
	if s == "" {
		return DType{}, fmt.Errorf("%w: empty descr", ErrUnsupportedDescriptor)
	}

	var d DType
	rest := s
	notApplicable := false
	switch s[0] {
	case '<':
		rest = s[1:]
	case '>':
		d.BigEndian = true
		rest = s[1:]
	case '=':
		d.BigEndian = !hostLittleEndian()
		rest = s[1:]
	case '|':
		notApplicable = true
		rest = s[1:]
	default:
		d.BigEndian = !hostLittleEndian()
	}
	if len(rest) < 2 {
		return DType{}, fmt.Errorf("%w: %q", ErrUnsupportedDescriptor, s)
	}

	switch rest[0] {
	case 'b', '?':
		d.Kind = Bool
	case 'i':
		d.Kind = Int
	case 'u':
		d.Kind = Uint
	case 'f':
		d.Kind = Float
	case 'c':
		d.Kind = Complex
	default:
		return DType{}, fmt.Errorf("%w: kind %q in %q", ErrUnsupportedDescriptor, rest[0], s)
	}

	size, err := strconv.Atoi(rest[1:])
	if err != nil {
		return DType{}, fmt.Errorf("%w: width in %q", ErrUnsupportedDescriptor, s)
	}
	if !validSize(d.Kind, size) {
		return DType{}, fmt.Errorf("%w: %s of %d bytes", ErrUnsupportedDescriptor, d.Kind, size)
	}
	d.Size = size

	if size == 1 {
		d.BigEndian = false
	} else if notApplicable {
		return DType{}, fmt.Errorf("%w: %q has no byte order for a %d-byte type", ErrUnsupportedDescriptor, s, size)
	}
	return d, nil
}

func validSize(k Kind, size int) bool {
	switch k {
	case Bool:
		return size == 1
	case Int, Uint:
		return size == 1 || size == 2 || size == 4 || size == 8
	case Float:
		return size == 2 || size == 4 || size == 8
	case Complex:
		return size == 8 || size == 16
	}
	return false
}

func hostLittleEndian() bool {
	return binary.NativeEndian.Uint16([]byte{1, 0}) == 1
}

// ByteOrder returns the order multi-byte elements are stored in.
func (d DType) ByteOrder() binary.ByteOrder {
	if d.BigEndian {
		return binary.BigEndian
	}
	return binary.LittleEndian
}

// Descr renders the descriptor in the canonical form NumPy writes.
func (d DType) Descr() string {
	order := byte('<')
	switch {
	case d.Size == 1:
		order = '|'
	case d.BigEndian:
		order = '>'
	}
	return string([]byte{order, d.Kind.code()}) + strconv.Itoa(d.Size)
}

// String returns the NumPy dtype name, e.g. "uint8" or "complex128".
func (d DType) String() string {
	if d.Kind == Bool {
		return "bool"
	}
	return d.Kind.String() + strconv.Itoa(d.Size*8)
}

// float64Reader returns a function converting one element to float64.
func (d DType) float64Reader() (func([]byte) float64, error) {
	order := d.ByteOrder()
	switch d.Kind {
	case Bool:
		return func(b []byte) float64 {
			if b[0] != 0 {
				return 1
			}
			return 0
		}, nil
	case Uint:
		switch d.Size {
		case 1:
			return func(b []byte) float64 { return float64(b[0]) }, nil
		case 2:
			return func(b []byte) float64 { return float64(order.Uint16(b)) }, nil
		case 4:
			return func(b []byte) float64 { return float64(order.Uint32(b)) }, nil
		case 8:
			return func(b []byte) float64 { return float64(order.Uint64(b)) }, nil
		}
	case Int:
		switch d.Size {
		case 1:
			return func(b []byte) float64 { return float64(int8(b[0])) }, nil
		case 2:
			return func(b []byte) float64 { return float64(int16(order.Uint16(b))) }, nil
		case 4:
			return func(b []byte) float64 { return float64(int32(order.Uint32(b))) }, nil
		case 8:
			return func(b []byte) float64 { return float64(int64(order.Uint64(b))) }, nil
		}
	case Float:
		switch d.Size {
		case 2:
			return func(b []byte) float64 { return float64(fp16ToFloat32(order.Uint16(b))) }, nil
		case 4:
			return func(b []byte) float64 { return float64(math.Float32frombits(order.Uint32(b))) }, nil
		case 8:
			return func(b []byte) float64 { return math.Float64frombits(order.Uint64(b)) }, nil
		}
	}
	return nil, fmt.Errorf("npy: %s elements have no float64 representation", d)
}

func fp16ToFloat32(h uint16) float32 {
	sign := uint32(h>>15) & 0x1
	exp := uint32(h>>10) & 0x1F
	frac := uint32(h & 0x3FF)
	var f uint32
	switch exp {
	case 0:
		if frac == 0 {
			f = sign << 31
		} else {
			// subnormal: normalise the fraction
			e := uint32(127 - 15 + 1)
			for (frac & 0x400) == 0 {
				frac <<= 1
				e--
			}
			frac &= 0x3FF
			f = (sign << 31) | (e << 23) | (frac << 13)
		}
	case 0x1F:
		f = (sign << 31) | 0x7F800000 | (frac << 13)
	default:
		e := exp + (127 - 15)
		f = (sign << 31) | (e << 23) | (frac << 13)
	}
	return math.Float32frombits(f)
}
