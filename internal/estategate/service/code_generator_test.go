package service_test

import (
	"context"
	"encoding/binary"
	"errors"
	"strconv"
	"testing"

	"github.com/estategate/server/internal/estategate/service"
)

// seqReader yields a scripted sequence of uint16 values to the generator,
// two big-endian bytes per draw.
func seqReader(values ...uint16) *sliceReader {
	buf := make([]byte, 0, len(values)*2)
	for _, v := range values {
		buf = binary.BigEndian.AppendUint16(buf, v)
	}
	return &sliceReader{data: buf}
}

type sliceReader struct {
	data []byte
	pos  int
}

func (r *sliceReader) Read(p []byte) (int, error) {
	n := copy(p, r.data[r.pos:])
	r.pos += n
	return n, nil
}

func neverTaken(context.Context, string) (bool, error) { return false, nil }

// ── Happy path ───────────────────────────────────────────────────────────────

func TestGenerate_FirstCandidateFree(t *testing.T) {
	gen := service.NewCodeGenerator(seqReader(0))

	code, fallback, err := gen.Generate(context.Background(), neverTaken)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if fallback {
		t.Error("expected fallback=false")
	}
	if code != "1000" {
		t.Errorf("expected code=1000 for draw 0, got %q", code)
	}
}

func TestGenerate_CodeAlwaysInRange(t *testing.T) {
	// Edge draws: 0 -> 1000, 8999 -> 9999, 9000 wraps back to 1000,
	// 65535 -> 1000 + 65535%9000.
	for _, draw := range []uint16{0, 8999, 9000, 65535} {
		gen := service.NewCodeGenerator(seqReader(draw))

		code, _, err := gen.Generate(context.Background(), neverTaken)
		if err != nil {
			t.Fatalf("Generate(draw=%d): %v", draw, err)
		}
		n, err := strconv.Atoi(code)
		if err != nil {
			t.Fatalf("code %q not numeric: %v", code, err)
		}
		if n < 1000 || n > 9999 {
			t.Errorf("draw %d produced out-of-range code %q", draw, code)
		}
	}
}

// ── Collision retries ────────────────────────────────────────────────────────

func TestGenerate_RetriesPastTakenCodes(t *testing.T) {
	// Draws 0..9 produce candidates 1000..1009; the first nine are taken.
	gen := service.NewCodeGenerator(seqReader(0, 1, 2, 3, 4, 5, 6, 7, 8, 9))

	attempts := 0
	taken := func(_ context.Context, code string) (bool, error) {
		attempts++
		n, _ := strconv.Atoi(code)
		return n <= 1008, nil
	}

	code, fallback, err := gen.Generate(context.Background(), taken)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if fallback {
		t.Error("expected no fallback within the retry budget")
	}
	if code != "1009" {
		t.Errorf("expected first free code 1009, got %q", code)
	}
	if attempts > 10 {
		t.Errorf("expected at most 10 attempts, got %d", attempts)
	}
}

func TestGenerate_ExhaustedRetriesFallsBack(t *testing.T) {
	gen := service.NewCodeGenerator(seqReader(0, 1, 2, 3, 4, 5, 6, 7, 8, 9))

	attempts := 0
	alwaysTaken := func(context.Context, string) (bool, error) {
		attempts++
		return true, nil
	}

	code, fallback, err := gen.Generate(context.Background(), alwaysTaken)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if !fallback {
		t.Error("expected fallback=true after exhausting retries")
	}
	if attempts != 10 {
		t.Errorf("expected exactly 10 attempts, got %d", attempts)
	}
	if len(code) != 4 {
		t.Fatalf("expected a 4-digit fallback code, got %q", code)
	}
	if _, err := strconv.Atoi(code); err != nil {
		t.Errorf("fallback code %q not numeric", code)
	}
}

// ── Infrastructure failure ───────────────────────────────────────────────────

func TestGenerate_ExistsCheckErrorPropagates(t *testing.T) {
	gen := service.NewCodeGenerator(seqReader(0))

	storeErr := errors.New("store unavailable")
	failing := func(context.Context, string) (bool, error) { return false, storeErr }

	_, _, err := gen.Generate(context.Background(), failing)
	if !errors.Is(err, storeErr) {
		t.Fatalf("expected wrapped store error, got %v", err)
	}
}
