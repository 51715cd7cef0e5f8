// Package summary computes the overview printed by npyload inspect and
// returned by the HTTP API.
package summary

import (
	"math"
	"strconv"
	"strings"

	"github.com/samcharles93/npyload/pkg/npy"
)

// maxRowValues caps how many values of one row are rendered.
const maxRowValues = 16

type Summary struct {
	DType        string   `json:"dtype"`
	Descr        string   `json:"descr"`
	Shape        []int    `json:"shape"`
	FortranOrder bool     `json:"fortran_order"`
	Elements     int      `json:"elements"`
	Bytes        int      `json:"bytes"`
	Stats        *Stats   `json:"stats,omitempty"`
	Head         []string `json:"head,omitempty"`
}

// Stats cover the finite elements only; NonFinite counts the NaN and ±Inf
// values that were skipped.
type Stats struct {
	Min       float64 `json:"min"`
	Max       float64 `json:"max"`
	Mean      float64 `json:"mean"`
	NonFinite int     `json:"non_finite,omitempty"`
}

// Compute summarises a and renders up to rows leading rows of its first axis.
// Complex arrays get no stats or preview.
func Compute(a *npy.Array, rows int) Summary {
	s := Summary{
		DType:        a.DType.String(),
		Descr:        a.DType.Descr(),
		Shape:        a.Shape,
		FortranOrder: a.FortranOrder,
		Elements:     a.Len(),
		Bytes:        len(a.Data),
	}
	vals, err := a.Float64s()
	if err != nil {
		return s
	}
	s.Stats = stats(vals)
	s.Head = head(vals, a.Shape, rows)
	return s
}

func stats(vals []float64) *Stats {
	var (
		st    Stats
		sum   float64
		count int
	)
	for _, v := range vals {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			st.NonFinite++
			continue
		}
		if count == 0 || v < st.Min {
			st.Min = v
		}
		if count == 0 || v > st.Max {
			st.Max = v
		}
		sum += v
		count++
	}
	if count == 0 {
		return nil
	}
	st.Mean = sum / float64(count)
	return &st
}

func head(vals []float64, shape []int, rows int) []string {
	if rows <= 0 || len(vals) == 0 {
		return nil
	}
	if len(shape) == 0 {
		return []string{formatRow(vals)}
	}
	n := min(rows, shape[0])
	rowLen := len(vals) / shape[0]
	out := make([]string, 0, n)
	for i := range n {
		out = append(out, formatRow(vals[i*rowLen:(i+1)*rowLen]))
	}
	return out
}

func formatRow(row []float64) string {
	var b strings.Builder
	b.WriteByte('[')
	for i, v := range row {
		if i == maxRowValues {
			b.WriteString(" ...")
			break
		}
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(strconv.FormatFloat(v, 'g', -1, 64))
	}
	b.WriteByte(']')
	return b.String()
}
