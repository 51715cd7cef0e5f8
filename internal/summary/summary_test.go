package summary

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/samcharles93/npyload/pkg/npy"
)

func u8Array(shape []int, data []byte) *npy.Array {
	return &npy.Array{DType: npy.DType{Kind: npy.Uint, Size: 1}, Shape: shape, Data: data}
}

func TestCompute(t *testing.T) {
	t.Parallel()
	s := Compute(u8Array([]int{2, 3}, []byte{1, 2, 3, 4, 5, 6}), 5)

	assert.Equal(t, "uint8", s.DType)
	assert.Equal(t, "|u1", s.Descr)
	assert.Equal(t, 6, s.Elements)
	assert.Equal(t, 6, s.Bytes)
	require.NotNil(t, s.Stats)
	assert.Equal(t, Stats{Min: 1, Max: 6, Mean: 3.5}, *s.Stats)
	assert.Equal(t, []string{"[1 2 3]", "[4 5 6]"}, s.Head)
}

func TestComputeRowLimits(t *testing.T) {
	t.Parallel()
	data := make([]byte, 40)
	for i := range data {
		data[i] = byte(i)
	}
	s := Compute(u8Array([]int{2, 20}, data), 1)
	require.Len(t, s.Head, 1)
	assert.Equal(t, "[0 1 2 3 4 5 6 7 8 9 10 11 12 13 14 15 ...]", s.Head[0])

	assert.Empty(t, Compute(u8Array([]int{2, 20}, data), 0).Head)
}

func TestComputeScalarAndEmpty(t *testing.T) {
	t.Parallel()
	s := Compute(u8Array(nil, []byte{9}), 3)
	assert.Equal(t, []string{"[9]"}, s.Head)

	empty := Compute(u8Array([]int{0, 3}, nil), 3)
	assert.Nil(t, empty.Stats)
	assert.Empty(t, empty.Head)
}

func TestStatsSkipNonFinite(t *testing.T) {
	t.Parallel()
	st := stats([]float64{math.NaN(), 2, math.Inf(-1), 4})
	require.NotNil(t, st)
	assert.Equal(t, Stats{Min: 2, Max: 4, Mean: 3, NonFinite: 2}, *st)
	assert.Nil(t, stats([]float64{math.NaN()}))
}

func TestComputeComplexHasNoStats(t *testing.T) {
	t.Parallel()
	a := &npy.Array{DType: npy.DType{Kind: npy.Complex, Size: 8}, Shape: []int{1}, Data: make([]byte, 8)}
	s := Compute(a, 3)
	assert.Equal(t, "complex64", s.DType)
	assert.Nil(t, s.Stats)
	assert.Empty(t, s.Head)
}
