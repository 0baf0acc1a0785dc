package uid

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"os"
	"strings"
	"sync/atomic"
	"time"
)

// ErrStableNodeIdentityUnavailable indicates neither machine-id nor
// hostname could provide a node identity.
var ErrStableNodeIdentityUnavailable = errors.New("uid: cannot determine stable node identity (machine-id/hostname unavailable)")

// ObjectIDGenerator produces 32-byte IDs rendered as 64 hex characters.
// The layout is timestamp, node id, pid, counter, then random padding,
// which keeps IDs unique across processes and hosts and roughly sortable
// by creation time.
type ObjectIDGenerator struct {
	nodeID  [6]byte
	pid     uint16
	counter uint32
}

// NewObjectIDGenerator creates a generator bound to this host's identity.
func NewObjectIDGenerator() (*ObjectIDGenerator, error) {
	src, err := nodeIdentity()
	if err != nil {
		return nil, err
	}

	gen := &ObjectIDGenerator{pid: uint16(os.Getpid())}
	sum := sha256.Sum256([]byte(src))
	copy(gen.nodeID[:], sum[:6])

	// Random counter seed so restarts do not repeat a sequence.
	var seed [4]byte
	if _, err := rand.Read(seed[:]); err != nil {
		return nil, err
	}
	gen.counter = binary.BigEndian.Uint32(seed[:])

	return gen, nil
}

// nodeIdentity prefers /etc/machine-id and falls back to the hostname.
func nodeIdentity() (string, error) {
	if b, err := os.ReadFile("/etc/machine-id"); err == nil {
		if id := strings.TrimSpace(string(b)); id != "" {
			return id, nil
		}
	}

	if host, err := os.Hostname(); err == nil {
		if host = strings.TrimSpace(host); host != "" {
			return host, nil
		}
	}

	return "", ErrStableNodeIdentityUnavailable
}

// Generate returns a 64-character hex ID.
func (g *ObjectIDGenerator) Generate() string {
	var buf [32]byte

	// Low 6 bytes of the millisecond timestamp, big-endian.
	var ts [8]byte
	binary.BigEndian.PutUint64(ts[:], uint64(time.Now().UnixMilli()))
	copy(buf[0:6], ts[2:])

	copy(buf[6:12], g.nodeID[:])
	binary.BigEndian.PutUint16(buf[12:14], g.pid)
	binary.BigEndian.PutUint32(buf[14:18], atomic.AddUint32(&g.counter, 1))

	// 14 random bytes; on failure derive them from the fixed prefix so
	// the ID stays unique per timestamp/pid/counter tuple.
	if _, err := rand.Read(buf[18:]); err != nil {
		sum := sha256.Sum256(buf[:18])
		copy(buf[18:], sum[:14])
	}

	var out [64]byte
	hex.Encode(out[:], buf[:])
	return string(out[:])
}
