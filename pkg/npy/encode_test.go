package npy

import (
	"encoding/binary"
	"fmt"
	"strings"
	"testing"
)

// headerDict renders a metadata dict the way NumPy does.
func headerDict(descr string, fortran bool, shape []int) string {
	order := "False"
	if fortran {
		order = "True"
	}
	dims := make([]string, len(shape))
	for i, d := range shape {
		dims[i] = fmt.Sprint(d)
	}
	tup := "(" + strings.Join(dims, ", ")
	if len(shape) == 1 {
		tup += ","
	}
	tup += ")"
	return fmt.Sprintf("{'descr': '%s', 'fortran_order': %s, 'shape': %s, }", descr, order, tup)
}

// buildStream lays out prefix, length field, metadata block, zero padding up
// to the aligned payload offset, and payload.
func buildStream(t testing.TB, major uint8, meta string, payload []byte) []byte {
	t.Helper()
	w := 4
	if major == 1 {
		w = 2
	}
	out := append([]byte{}, Magic[:]...)
	out = append(out, major, 0)
	if w == 2 {
		out = binary.LittleEndian.AppendUint16(out, uint16(len(meta)))
	} else {
		out = binary.LittleEndian.AppendUint32(out, uint32(len(meta)))
	}
	out = append(out, meta...)
	off, err := PayloadOffset(major, uint32(len(meta)))
	if err != nil {
		t.Fatalf("PayloadOffset: %v", err)
	}
	for int64(len(out)) < off {
		out = append(out, 0)
	}
	return append(out, payload...)
}

// encodeNPY pads the dict with spaces and a newline so the payload starts on
// the boundary exactly, matching what numpy.save writes.
func encodeNPY(t testing.TB, major uint8, descr string, fortran bool, shape []int, payload []byte) []byte {
	t.Helper()
	w := 4
	if major == 1 {
		w = 2
	}
	dict := headerDict(descr, fortran, shape)
	used := prefixSize + w + len(dict) + 1
	pad := int(alignUp(int64(used), Alignment)) - used
	meta := dict + strings.Repeat(" ", pad) + "\n"
	return buildStream(t, major, meta, payload)
}
