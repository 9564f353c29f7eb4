package models

// PricingLine represents pricing information for a single bundle slot
type PricingLine struct {
	Position        int    `json:"position"`        // 0-based slot position
	VariantID       string `json:"variantId"`       // Variant in the slot
	UnitPrice       int64  `json:"unitPrice"`       // Per-unit share of the bundle price
	ComparePrice    int64  `json:"comparePrice"`    // Compare price, falls back to the item price
	ExplicitCompare bool   `json:"explicitCompare"` // True when the item declares its own compare price
}

// PricingBreakdown represents the complete pricing of the current selection
type PricingBreakdown struct {
	Count        int           `json:"count"`
	Capacity     int           `json:"capacity"`
	Complete     bool          `json:"complete"`
	Total        int64         `json:"total"`        // Flat price once complete, else count x unit share
	CompareTotal int64         `json:"compareTotal"` // Sum of per-item compare prices
	ShowCompare  bool          `json:"showCompare"`  // CompareTotal > Total and Count > 0
	UnitShare    int64         `json:"unitShare"`    // round(flat price / capacity)
	Lines        []PricingLine `json:"lines"`
}
