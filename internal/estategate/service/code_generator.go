package service

import (
	"context"
	"crypto/rand"
	"encoding/binary"
	"fmt"
	"io"
	"time"
)

const (
	// codeAttempts bounds the collision retries before falling back to a
	// timestamp-derived code.
	codeAttempts = 10

	codeMin  = 1000
	codeSpan = 9000
)

// ExistsFn reports whether a candidate code is already held by an active
// pass.  It is the generator's only collaborator; the store's uniqueness
// constraint remains the final authority at write time.
type ExistsFn func(ctx context.Context, code string) (bool, error)

// CodeGenerator produces 4-digit access codes in 1000–9999 from a
// cryptographically strong random source.  The source is injected so tests
// can script it.
type CodeGenerator struct {
	rand io.Reader
	now  func() time.Time
}

func NewCodeGenerator(r io.Reader) *CodeGenerator {
	if r == nil {
		r = rand.Reader
	}
	return &CodeGenerator{rand: r, now: time.Now}
}

// Generate returns a code not currently held by an active pass, trying up to
// codeAttempts candidates.  When every candidate collides it returns the low
// four digits of the current unix-millisecond timestamp and fallback=true —
// a tolerated degradation with a small residual collision risk, surfaced so
// callers can log and count it.  The business path never fails; only an
// error from the existence check (infrastructure) propagates.
func (g *CodeGenerator) Generate(ctx context.Context, exists ExistsFn) (code string, fallback bool, err error) {
	buf := make([]byte, 2)

	for attempt := 0; attempt < codeAttempts; attempt++ {
		if _, err := io.ReadFull(g.rand, buf); err != nil {
			return "", false, fmt.Errorf("read random: %w", err)
		}
		n := binary.BigEndian.Uint16(buf)
		candidate := fmt.Sprintf("%d", codeMin+int(n)%codeSpan)

		taken, err := exists(ctx, candidate)
		if err != nil {
			return "", false, fmt.Errorf("code existence check: %w", err)
		}
		if !taken {
			return candidate, false, nil
		}
	}

	ms := g.now().UTC().UnixMilli()
	return fmt.Sprintf("%04d", ms%10000), true, nil
}
