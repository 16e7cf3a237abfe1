package audio

import (
	"math"
	"testing"
	"time"
)

func TestToFloat32Normalizes(t *testing.T) {
	got := ToFloat32([][]int16{{0, 16384, -32768, 32767}})
	expected := []float32{0.0, 0.5, -1.0, 0.999969}

	if len(got) != len(expected) {
		t.Fatalf("expected %d samples, got %d", len(expected), len(got))
	}
	for i := range expected {
		if math.Abs(float64(got[i]-expected[i])) > 1e-6 {
			t.Fatalf("sample %d: expected %f, got %f", i, expected[i], got[i])
		}
	}
	if got[3] != float32(32767)/32768 {
		t.Fatalf("expected exact value for max sample, got %v", got[3])
	}
}

func TestToFloat32PreservesChunkOrder(t *testing.T) {
	chunks := [][]int16{
		{1, 2},
		{3},
		{},
		{4, 5, 6},
	}

	got := ToFloat32(chunks)
	expected := []int16{1, 2, 3, 4, 5, 6}

	if len(got) != len(expected) {
		t.Fatalf("expected %d samples, got %d", len(expected), len(got))
	}
	for i, s := range expected {
		if got[i] != float32(s)/32768.0 {
			t.Fatalf("sample %d out of order: expected %v, got %v", i, float32(s)/32768.0, got[i])
		}
	}
}

func TestToFloat32Deterministic(t *testing.T) {
	chunks := [][]int16{{-1, 7, 12345, -20000}, {99, -32768}}

	first := ToFloat32(chunks)
	second := ToFloat32(chunks)
	for i := range first {
		if math.Float32bits(first[i]) != math.Float32bits(second[i]) {
			t.Fatalf("sample %d differs between runs", i)
		}
	}
}

func TestToFloat32Empty(t *testing.T) {
	if got := ToFloat32(nil); len(got) != 0 {
		t.Fatalf("expected no samples, got %d", len(got))
	}
}

func TestChunkDuration(t *testing.T) {
	if ChunkDuration != 64*time.Millisecond {
		t.Fatalf("expected 64ms chunks, got %s", ChunkDuration)
	}
}
