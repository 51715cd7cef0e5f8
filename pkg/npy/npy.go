// Package npy reads arrays stored in the NumPy .npy format without relying on
// NumPy or any auto-detecting loader.
//
// A stream consists of a fixed prefix (magic and version), a little-endian
// header length, a Python dict literal describing the element type and shape,
// padding up to a 64-byte boundary, and the raw element bytes.
//
//	arr, err := npy.Load("labels.npy")
//	if err != nil {
//		return err
//	}
//	labels, err := npy.Values[uint8](arr)
//
// Every failure wraps one of the package sentinels and can be matched with
// errors.Is.
package npy

// Magic is the signature every .npy stream starts with.
var Magic = [6]byte{0x93, 'N', 'U', 'M', 'P', 'Y'}

const (
	// Alignment is the boundary the payload start is rounded up to, for every
	// format version.
	Alignment = 64

	// magic (6) + major (1) + minor (1)
	prefixSize = 8
)
