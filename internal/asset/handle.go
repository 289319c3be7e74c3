package asset

import (
	"encoding/hex"

	"golang.org/x/crypto/blake2b"
)

// ID identifies one asset path on a Server.
type ID uint64

// Handle refers to an asset by id and the path it was requested with.
// The zero Handle refers to nothing.
type Handle struct {
	id   ID
	path string
}

func (h Handle) ID() ID         { return h.id }
func (h Handle) Path() string   { return h.path }
func (h Handle) IsZero() bool   { return h.id == 0 }
func (h Handle) String() string { return h.path }

// LoadState is where an asset is in its load lifecycle.
type LoadState int

const (
	StateNotLoaded LoadState = iota
	StateLoading
	StateLoaded
	StateFailed
)

func (s LoadState) String() string {
	switch s {
	case StateNotLoaded:
		return "not_loaded"
	case StateLoading:
		return "loading"
	case StateLoaded:
		return "loaded"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Version is the content identity of a loaded asset: a digest over its path
// and bytes. The zero Version means "never loaded". Rewriting a file with the
// same bytes keeps its Version.
type Version struct {
	sum [blake2b.Size256]byte
}

// VersionOf computes the Version of data stored at path.
func VersionOf(path string, data []byte) Version {
	h, _ := blake2b.New256(nil)
	h.Write([]byte(path))
	h.Write([]byte{0})
	h.Write(data)
	var v Version
	h.Sum(v.sum[:0])
	return v
}

func (v Version) IsZero() bool { return v == Version{} }

// String returns a short hex prefix, enough for logs.
func (v Version) String() string {
	if v.IsZero() {
		return "unloaded"
	}
	return hex.EncodeToString(v.sum[:6])
}
