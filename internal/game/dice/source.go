package dice

import (
	"crypto/rand"
	"encoding/binary"
	"time"
)

// EntropySeed returns a seed for unseeded generators. It reads crypto/rand
// and falls back to the wall clock if that fails.
//
// Postcondition: result != 0.
func EntropySeed() int64 {
	var b [8]byte
	if _, err := rand.Read(b[:]); err == nil {
		if s := int64(binary.LittleEndian.Uint64(b[:]) >> 1); s != 0 {
			return s
		}
	}
	if s := time.Now().UnixNano(); s != 0 {
		return s
	}
	return 1
}
