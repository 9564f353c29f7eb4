package models

// BundleConfig holds the bundle settings read once at initialization
type BundleConfig struct {
	ID           string `json:"id"`           // Bundle tag attached to every cart line
	Size         int    `json:"size"`         // Capacity
	PriceCents   int64  `json:"priceCents"`   // Flat bundle price
	PriceDisplay string `json:"priceDisplay"` // Cosmetic only (e.g., "$75")
}

// SelectionEntry is one chosen variant in the bundle
type SelectionEntry struct {
	VariantID         string `json:"variantId"`
	ProductID         string `json:"productId"`
	Title             string `json:"title"`
	Image             string `json:"image"`
	Thumb             string `json:"thumb"`
	PriceCents        int64  `json:"price"`
	ComparePriceCents int64  `json:"comparePrice"`
	Quantity          int    `json:"quantity"` // Always 1
}

// SubmitPhase is the state of the cart submission
type SubmitPhase string

const (
	PhaseIdle        SubmitPhase = "idle"
	PhaseSubmitting  SubmitPhase = "submitting"
	PhaseRedirecting SubmitPhase = "redirecting"
)

// ResolutionStatus is the outcome of resolving picker choices to a variant
type ResolutionStatus string

const (
	ResolutionIncomplete  ResolutionStatus = "incomplete"
	ResolutionUnavailable ResolutionStatus = "unavailable"
	ResolutionDuplicate   ResolutionStatus = "duplicate"
	ResolutionReady       ResolutionStatus = "ready"
)

// Resolution describes the picker's current outcome
type Resolution struct {
	Status         ResolutionStatus `json:"status"`
	Variant        *CatalogVariant  `json:"variant,omitempty"`
	PreviewImage   string           `json:"previewImage"`
	Message        string           `json:"message,omitempty"`
	ConfirmLabel   string           `json:"confirmLabel"`
	ConfirmEnabled bool             `json:"confirmEnabled"`
	ChosenCount    int              `json:"chosenCount"`
	RequiredCount  int              `json:"requiredCount"`
}

// PickerView is what the variant picker modal shows
type PickerView struct {
	ProductID  string             `json:"productId"`
	Title      string             `json:"title"`
	Options    []OptionDefinition `json:"options"`
	Choices    map[string]string  `json:"choices"`
	Resolution Resolution         `json:"resolution"`
}
