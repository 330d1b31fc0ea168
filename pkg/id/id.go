// Package id issues the identifiers attached to order and journal records.
// IDs are ULIDs: sorting them lexicographically sorts the records by
// creation time, which is what the registry listing and the journal indexes
// rely on.
package id

import (
	"crypto/rand"
	"encoding/binary"
	"io"
	mathrand "math/rand"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// Generator produces ULIDs from a single monotonic entropy stream, so IDs
// minted within the same millisecond still come out in call order.
type Generator struct {
	mu      sync.Mutex
	entropy io.Reader
}

// NewGenerator seeds the entropy stream from crypto/rand.
func NewGenerator() *Generator {
	var seed int64
	_ = binary.Read(rand.Reader, binary.LittleEndian, &seed)
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Generator{
		entropy: ulid.Monotonic(mathrand.New(mathrand.NewSource(seed)), 0),
	}
}

// New returns the next ULID string.
func (g *Generator) New() string {
	g.mu.Lock()
	defer g.mu.Unlock()

	u, err := ulid.New(ulid.Timestamp(time.Now().UTC()), g.entropy)
	if err != nil {
		// Only reachable if the clock or entropy source fails.
		panic(err)
	}
	return u.String()
}

var defaultGen = NewGenerator()

// New returns a record ID from the package-level generator.
func New() string { return defaultGen.New() }
