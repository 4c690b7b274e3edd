package event

import (
	"errors"
	"testing"

	"HydroSpectra/internal/model"
)

func TestBlockageMultiplierGrowsOverThirtyDays(t *testing.T) {
	blk, err := NewBlockage(BlockageMineralBuildup, "Manifold->Kitchen", 0, NoEnd, 3)
	if err != nil {
		t.Fatalf("NewBlockage failed: %v", err)
	}

	start := blk.HeadLossMultiplierAt(0)
	end := blk.HeadLossMultiplierAt(30 * 24)

	if start < 1.0 {
		t.Errorf("Multiplier at onset must be >= 1.0, got %v", start)
	}
	if end <= start {
		t.Errorf("Multiplier must grow over 30 days: end=%v <= start=%v", end, start)
	}
}

func TestBlockageMultiplierIsNonDecreasingAndSaturates(t *testing.T) {
	for _, bt := range []BlockageType{BlockageMineralBuildup, BlockageBiofilm, BlockageDebris} {
		blk, err := NewBlockage(bt, "Municipal->Manifold", 0, NoEnd, 11)
		if err != nil {
			t.Fatalf("NewBlockage(%s) failed: %v", bt, err)
		}

		prev := 0.0
		for h := 0.0; h <= 24*365; h += 12 {
			m := blk.HeadLossMultiplierAt(h)
			if m < prev {
				t.Fatalf("%s: multiplier decreased at %vh: %v < %v", bt, h, m, prev)
			}
			prev = m
		}

		// Saturation: a decade of growth stays within the jittered asymptote
		// bound rather than diverging.
		decade := blk.HeadLossMultiplierAt(24 * 365 * 10)
		if decade > 8.0 {
			t.Errorf("%s: multiplier %v after a decade suggests divergence", bt, decade)
		}
	}
}

func TestBlockageValidation(t *testing.T) {
	if _, err := NewBlockage("tumbleweed", "Municipal->Manifold", 0, NoEnd, 1); !errors.Is(err, model.ErrInvalidEvent) {
		t.Errorf("Unknown blockage type: expected ErrInvalidEvent, got %v", err)
	}
	if _, err := NewBlockage(BlockageBiofilm, "", 0, NoEnd, 1); !errors.Is(err, model.ErrInvalidEvent) {
		t.Errorf("Empty pipe: expected ErrInvalidEvent, got %v", err)
	}
	if _, err := NewBlockage(BlockageBiofilm, "Municipal->Manifold", 2, -1, 1); !errors.Is(err, model.ErrInvalidEvent) {
		t.Errorf("Negative duration: expected ErrInvalidEvent, got %v", err)
	}
}
