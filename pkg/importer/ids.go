package importer

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
	"time"
)

// DefaultIDPrefix is used when no prefix is configured.
const DefaultIDPrefix = "cmp"

// idBatch hands out ids for one import: a shared timestamp, a running
// sequence and a random suffix, e.g. "cmp-1767225600000-3-9f2c1a".
type idBatch struct {
	prefix string
	millis int64
	seq    int
	random io.Reader
	taken  func(string) bool
	used   map[string]bool
}

func newIDBatch(prefix string, now time.Time, random io.Reader, taken func(string) bool) *idBatch {
	if prefix == "" {
		prefix = DefaultIDPrefix
	}
	if random == nil {
		random = rand.Reader
	}
	return &idBatch{
		prefix: prefix,
		millis: now.UnixMilli(),
		random: random,
		taken:  taken,
		used:   make(map[string]bool),
	}
}

// next returns an id that is neither taken in the store nor used earlier in
// this batch.
func (b *idBatch) next() string {
	for {
		b.seq++
		id := fmt.Sprintf("%s-%d-%d-%s", b.prefix, b.millis, b.seq, b.suffix())
		if b.used[id] || (b.taken != nil && b.taken(id)) {
			continue
		}
		b.used[id] = true
		return id
	}
}

func (b *idBatch) suffix() string {
	var buf [3]byte
	if _, err := io.ReadFull(b.random, buf[:]); err != nil {
		// the sequence still keeps ids unique within the batch
		return "000000"
	}
	return hex.EncodeToString(buf[:])
}
