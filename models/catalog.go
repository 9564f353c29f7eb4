package models

// SentinelOptionValue is the value a storefront assigns to the single option of
// a product that has no real option axis.
const SentinelOptionValue = "Default Title"

// Card represents a product card as the theme emits it on the bundle page.
// VariantsJSON and OptionsJSON are only populated when VariantCount > 1.
type Card struct {
	ProductID         string `json:"productId" yaml:"productId"`
	DefaultVariantID  string `json:"variantId" yaml:"variantId"`
	Title             string `json:"title" yaml:"title"`
	Image             string `json:"image" yaml:"image"`
	Thumb             string `json:"thumb" yaml:"thumb"`
	PriceCents        int64  `json:"price" yaml:"price"`
	ComparePriceCents int64  `json:"comparePrice,omitempty" yaml:"comparePrice"`
	VariantCount      int    `json:"variantCount" yaml:"variantCount"`
	VariantsJSON      string `json:"variants,omitempty" yaml:"variants"`
	OptionsJSON       string `json:"options,omitempty" yaml:"options"`
}

// HasVariants reports whether the card needs the variant picker
func (c Card) HasVariants() bool {
	return c.VariantCount > 1
}

// CatalogVariant is one purchasable configuration of a product
type CatalogVariant struct {
	ID                string   `json:"id"`
	ProductID         string   `json:"productId"`
	Title             string   `json:"title"`
	Options           []string `json:"options"` // One value per declared option slot
	PriceCents        int64    `json:"price"`
	ComparePriceCents int64    `json:"comparePrice"`
	Image             string   `json:"image,omitempty"`
	Thumb             string   `json:"thumb,omitempty"`
	Available         bool     `json:"available"`
}

// OptionAt returns the variant's value for an option slot, or "" when the slot is missing
func (v CatalogVariant) OptionAt(index int) string {
	if index < 0 || index >= len(v.Options) {
		return ""
	}
	return v.Options[index]
}

// OptionKind classifies an option as a real choice or a synthetic placeholder
type OptionKind string

const (
	OptionReal      OptionKind = "real"
	OptionSynthetic OptionKind = "synthetic"
)

// OptionDefinition is a declared option axis of a product
type OptionDefinition struct {
	Name   string     `json:"name"`
	Index  int        `json:"index"`
	Values []string   `json:"values"` // Distinct values in catalog order
	Kind   OptionKind `json:"kind"`
}

// Required reports whether a shopper must choose a value for this option
func (o OptionDefinition) Required() bool {
	return o.Kind == OptionReal
}

// Catalog is the parsed variant data of one product
type Catalog struct {
	ProductID string             `json:"productId"`
	Variants  []CatalogVariant   `json:"variants"`
	Options   []OptionDefinition `json:"options"`
}

// Empty reports whether the catalog has no variants
func (c *Catalog) Empty() bool {
	return c == nil || len(c.Variants) == 0
}

// RequiredOptions returns the real options in declaration order
func (c *Catalog) RequiredOptions() []OptionDefinition {
	if c == nil {
		return nil
	}
	required := make([]OptionDefinition, 0, len(c.Options))
	for _, opt := range c.Options {
		if opt.Required() {
			required = append(required, opt)
		}
	}
	return required
}

// Option looks up an option definition by name
func (c *Catalog) Option(name string) (OptionDefinition, bool) {
	if c == nil {
		return OptionDefinition{}, false
	}
	for _, opt := range c.Options {
		if opt.Name == name {
			return opt, true
		}
	}
	return OptionDefinition{}, false
}
