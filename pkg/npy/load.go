package npy

import (
	"bytes"
	"os"

	"golang.org/x/sys/unix"
)

// Load decodes the .npy file at path. The file is mapped read-only where mmap
// is available and read through the file handle otherwise. The returned array
// owns its buffer; nothing refers to the file once Load returns.
func Load(path string) (*Array, error) {
	arr, _, err := LoadWithHeader(path)
	return arr, err
}

// LoadWithHeader is Load that also returns the header, read from the same
// open file as the payload.
func LoadWithHeader(path string) (*Array, Header, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, Header{}, err
	}
	defer func() { _ = f.Close() }()

	stat, err := f.Stat()
	if err != nil {
		return nil, Header{}, err
	}
	size := stat.Size()
	if size <= 0 || size > int64(maxInt) {
		// mmap rejects empty mappings; let Decode report the short header.
		return DecodeWithHeader(f)
	}

	data, err := unix.Mmap(int(f.Fd()), 0, int(size), unix.PROT_READ, unix.MAP_SHARED)
	if err != nil {
		return DecodeWithHeader(f)
	}
	defer func() { _ = unix.Munmap(data) }()

	// Decode copies the payload, so the result does not alias the mapping.
	return DecodeWithHeader(bytes.NewReader(data))
}
