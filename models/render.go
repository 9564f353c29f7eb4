package models

// StepState is the state of one progress step
type StepState string

const (
	StepFilled  StepState = "filled"
	StepCurrent StepState = "current"
	StepNeutral StepState = "neutral"
)

// CTAView is the call-to-action button state
type CTAView struct {
	Label    string `json:"label"`
	Disabled bool   `json:"disabled"`
	Ready    bool   `json:"ready"`
}

// SlotView is one bundle slot
type SlotView struct {
	Index       int    `json:"index"`     // 0-based
	SlotNumber  int    `json:"slotIndex"` // 1-based, as carried by the remove button
	Filled      bool   `json:"filled"`
	VariantID   string `json:"variantId,omitempty"`
	Image       string `json:"image,omitempty"`
	Title       string `json:"title,omitempty"`
	Price       string `json:"price,omitempty"`
	Compare     string `json:"compare,omitempty"`
	ShowCompare bool   `json:"showCompare"`
}

// CardView is the state of one product card
type CardView struct {
	ProductID      string `json:"productId"`
	InBundle       bool   `json:"inBundle"`
	AddHidden      bool   `json:"addHidden"`
	AddDisabled    bool   `json:"addDisabled"`
	AddLabel       string `json:"addLabel"`
	QtyVisible     bool   `json:"qtyVisible"`
	QtyAddDisabled bool   `json:"qtyAddDisabled"`
	QtyAddLabel    string `json:"qtyAddLabel"`
}

// BundleView is the full derived view of one widget instance
type BundleView struct {
	Count          int         `json:"count"`
	Capacity       int         `json:"capacity"`
	Remaining      int         `json:"remaining"`
	Complete       bool        `json:"complete"`
	Phase          SubmitPhase `json:"phase"`
	Total          string      `json:"total"`
	TotalCents     int64       `json:"totalCents"`
	CompareTotal   string      `json:"compareTotal,omitempty"`
	ShowCompare    bool        `json:"showCompare"`
	PriceDisplay   string      `json:"priceDisplay"`
	CTA            CTAView     `json:"cta"`
	Steps          []StepState `json:"steps"`
	Bars           []bool      `json:"bars"`
	Slots          []SlotView  `json:"slots"`
	Cards          []CardView  `json:"cards"`
	MobileExpanded bool        `json:"mobileExpanded"`
}

// SurfaceUpdate is one idempotent change to a UI element.
// Nil pointer fields and empty maps leave that aspect of the element untouched.
type SurfaceUpdate struct {
	Selector    string            `json:"selector"`
	Text        *string           `json:"text,omitempty"`
	Hidden      *bool             `json:"hidden,omitempty"`
	Disabled    *bool             `json:"disabled,omitempty"`
	AddClass    []string          `json:"addClass,omitempty"`
	RemoveClass []string          `json:"removeClass,omitempty"`
	Attrs       map[string]string `json:"attrs,omitempty"`
	Style       map[string]string `json:"style,omitempty"`
}

// ActionResponse is returned to the page after every widget action
type ActionResponse struct {
	InstanceID string            `json:"instanceId"`
	Changed    bool              `json:"changed"`
	View       BundleView        `json:"view"`
	Updates    []SurfaceUpdate   `json:"updates"`
	Picker     *PickerView       `json:"picker,omitempty"`
	Alert      string            `json:"alert,omitempty"`
	Events     []CartUpdateEvent `json:"events,omitempty"`
	Redirect   *Redirect         `json:"redirect,omitempty"`
}
