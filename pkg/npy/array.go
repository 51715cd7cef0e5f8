package npy

import (
	"fmt"
	"math"
)

// Array is a decoded .npy array. Data always holds the elements in row-major
// order, in the byte order given by DType; FortranOrder reports the layout the
// stream declared.
type Array struct {
	DType        DType
	Shape        []int
	FortranOrder bool
	Data         []byte
}

// Len returns the number of elements.
func (a *Array) Len() int {
	n := 1
	for _, d := range a.Shape {
		n *= d
	}
	return n
}

// Offset returns the flat row-major element index of idx.
func (a *Array) Offset(idx ...int) (int, error) {
	if len(idx) != len(a.Shape) {
		return 0, fmt.Errorf("npy: %d indices for %d dimensions", len(idx), len(a.Shape))
	}
	off := 0
	for k, i := range idx {
		if i < 0 || i >= a.Shape[k] {
			return 0, fmt.Errorf("npy: index %d out of range for axis %d of size %d", i, k, a.Shape[k])
		}
		off = off*a.Shape[k] + i
	}
	return off, nil
}

// Element is the set of Go types an array can be read as.
type Element interface {
	bool | int8 | int16 | int32 | int64 | uint8 | uint16 | uint32 | uint64 |
		float32 | float64 | complex64 | complex128
}

// Values returns the elements of a as a []T. T must match the dtype exactly:
// an "<i4" array reads as int32 and nothing else.
func Values[T Element](a *Array) ([]T, error) {
	var zero T
	want := elementDType(zero)
	if a.DType.Kind != want.Kind || a.DType.Size != want.Size {
		return nil, fmt.Errorf("npy: cannot read %s array as %T", a.DType, zero)
	}

	n := a.Len()
	out := make([]T, n)
	b := a.Data
	order := a.DType.ByteOrder()
	switch s := any(out).(type) {
	case []bool:
		for i := range s {
			s[i] = b[i] != 0
		}
	case []uint8:
		copy(s, b)
	case []int8:
		for i := range s {
			s[i] = int8(b[i])
		}
	case []uint16:
		for i := range s {
			s[i] = order.Uint16(b[i*2:])
		}
	case []int16:
		for i := range s {
			s[i] = int16(order.Uint16(b[i*2:]))
		}
	case []uint32:
		for i := range s {
			s[i] = order.Uint32(b[i*4:])
		}
	case []int32:
		for i := range s {
			s[i] = int32(order.Uint32(b[i*4:]))
		}
	case []uint64:
		for i := range s {
			s[i] = order.Uint64(b[i*8:])
		}
	case []int64:
		for i := range s {
			s[i] = int64(order.Uint64(b[i*8:]))
		}
	case []float32:
		for i := range s {
			s[i] = math.Float32frombits(order.Uint32(b[i*4:]))
		}
	case []float64:
		for i := range s {
			s[i] = math.Float64frombits(order.Uint64(b[i*8:]))
		}
	case []complex64:
		for i := range s {
			re := math.Float32frombits(order.Uint32(b[i*8:]))
			im := math.Float32frombits(order.Uint32(b[i*8+4:]))
			s[i] = complex(re, im)
		}
	case []complex128:
		for i := range s {
			re := math.Float64frombits(order.Uint64(b[i*16:]))
			im := math.Float64frombits(order.Uint64(b[i*16+8:]))
			s[i] = complex(re, im)
		}
	}
	return out, nil
}

func elementDType(v any) DType {
	switch v.(type) {
	case bool:
		return DType{Kind: Bool, Size: 1}
	case int8:
		return DType{Kind: Int, Size: 1}
	case int16:
		return DType{Kind: Int, Size: 2}
	case int32:
		return DType{Kind: Int, Size: 4}
	case int64:
		return DType{Kind: Int, Size: 8}
	case uint8:
		return DType{Kind: Uint, Size: 1}
	case uint16:
		return DType{Kind: Uint, Size: 2}
	case uint32:
		return DType{Kind: Uint, Size: 4}
	case uint64:
		return DType{Kind: Uint, Size: 8}
	case float32:
		return DType{Kind: Float, Size: 4}
	case float64:
		return DType{Kind: Float, Size: 8}
	case complex64:
		return DType{Kind: Complex, Size: 8}
	case complex128:
		return DType{Kind: Complex, Size: 16}
	}
	return DType{}
}

// Float64s widens every element to float64. Booleans become 0 or 1 and
// float16 is expanded; complex arrays are rejected.
func (a *Array) Float64s() ([]float64, error) {
	read, err := a.DType.float64Reader()
	if err != nil {
		return nil, err
	}
	n := a.Len()
	size := a.DType.Size
	out := make([]float64, n)
	for i := range out {
		out[i] = read(a.Data[i*size : (i+1)*size])
	}
	return out, nil
}

// fortranToRowMajor reorders column-major element bytes into row-major order.
func fortranToRowMajor(src []byte, shape []int, size int) []byte {
	dst := make([]byte, len(src))
	if len(shape) < 2 {
		copy(dst, src)
		return dst
	}

	stride := make([]int, len(shape))
	s := 1
	for k, d := range shape {
		stride[k] = s
		s *= d
	}

	n := len(src) / size
	idx := make([]int, len(shape))
	for c := 0; c < n; c++ {
		f := 0
		for k, i := range idx {
			f += i * stride[k]
		}
		copy(dst[c*size:(c+1)*size], src[f*size:(f+1)*size])

		for k := len(idx) - 1; k >= 0; k-- {
			idx[k]++
			if idx[k] < shape[k] {
				break
			}
			idx[k] = 0
		}
	}
	return dst
}
