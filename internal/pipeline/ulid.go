package pipeline

import (
	"crypto/rand"
	"encoding/binary"
	"sync"
	"time"
)

// Job IDs are ULIDs: a 48-bit millisecond timestamp followed by 80 bits of
// randomness, Crockford base32 encoded. A per-millisecond counter in the
// first two random bytes keeps IDs from one process ordered.

var (
	idMu    sync.Mutex
	idLast  uint64
	idCount uint16
)

const crockford = "0123456789ABCDEFGHJKMNPQRSTVWXYZ"

// NewJobID returns a new 26-character ULID.
func NewJobID() string {
	return newULID(time.Now())
}

func newULID(now time.Time) string {
	idMu.Lock()
	defer idMu.Unlock()

	ms := uint64(now.UnixMilli())
	if ms == idLast {
		idCount++
	} else {
		idLast = ms
		idCount = 0
	}

	var b [16]byte
	var ts [8]byte
	binary.BigEndian.PutUint64(ts[:], ms)
	copy(b[:6], ts[2:])
	rand.Read(b[6:])
	binary.BigEndian.PutUint16(b[6:8], idCount)

	return encodeCrockford(b)
}

// encodeCrockford writes 128 bits as 26 base32 digits, treating the value as
// 130 bits with two leading zero bits.
func encodeCrockford(b [16]byte) string {
	var out [26]byte
	for i := range out {
		var v byte
		for k := range 5 {
			bit := i*5 + k - 2
			v <<= 1
			if bit >= 0 && b[bit/8]&(0x80>>(bit%8)) != 0 {
				v |= 1
			}
		}
		out[i] = crockford[v]
	}
	return string(out[:])
}
