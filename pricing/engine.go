package pricing

import (
	"fmt"

	"tshirt-bundle/models"
)

// Engine prices a bundle selection. The bundle is sold at a flat price once
// full; partial bundles are shown at an even per-unit share of that price.
type Engine struct {
	capacity  int
	flatCents int64
	unitShare int64
}

// NewEngine creates a pricing engine for the given bundle configuration
func NewEngine(cfg models.BundleConfig) (*Engine, error) {
	if err := validateConfig(cfg); err != nil {
		return nil, fmt.Errorf("invalid bundle pricing config: %w", err)
	}
	return &Engine{
		capacity:  cfg.Size,
		flatCents: cfg.PriceCents,
		unitShare: roundDiv(cfg.PriceCents, int64(cfg.Size)),
	}, nil
}

func validateConfig(cfg models.BundleConfig) error {
	if cfg.Size <= 0 {
		return fmt.Errorf("bundle size must be positive, got %d", cfg.Size)
	}
	if cfg.PriceCents <= 0 {
		return fmt.Errorf("bundle price must be positive, got %d", cfg.PriceCents)
	}
	return nil
}

// UnitShare is round(flat price / capacity), half away from zero
func (e *Engine) UnitShare() int64 {
	return e.unitShare
}

func (e *Engine) Capacity() int {
	return e.capacity
}

// Total returns the flat price when count reaches capacity, else count x unit share
func (e *Engine) Total(count int) int64 {
	if count >= e.capacity {
		return e.flatCents
	}
	if count <= 0 {
		return 0
	}
	return int64(count) * e.unitShare
}

// Quote calculates the pricing breakdown of entries
func (e *Engine) Quote(entries []models.SelectionEntry) *models.PricingBreakdown {
	breakdown := &models.PricingBreakdown{
		Count:     len(entries),
		Capacity:  e.capacity,
		Complete:  len(entries) == e.capacity,
		Total:     e.Total(len(entries)),
		UnitShare: e.unitShare,
		Lines:     make([]models.PricingLine, 0, len(entries)),
	}

	for i, entry := range entries {
		compare := entry.ComparePriceCents
		explicit := compare > 0
		if !explicit {
			compare = entry.PriceCents
		}
		breakdown.CompareTotal += compare
		breakdown.Lines = append(breakdown.Lines, models.PricingLine{
			Position:        i,
			VariantID:       entry.VariantID,
			UnitPrice:       e.unitShare,
			ComparePrice:    compare,
			ExplicitCompare: explicit,
		})
	}

	breakdown.ShowCompare = breakdown.Count > 0 && breakdown.CompareTotal > breakdown.Total
	return breakdown
}

func roundDiv(n, d int64) int64 {
	return (2*n + d) / (2 * d)
}
