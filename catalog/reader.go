// Package catalog turns the serialized variant data carried by a product card
// into an in-memory catalog with classified option definitions.
package catalog

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"tshirt-bundle/models"
)

// ErrMalformed is returned (wrapped) when a card's variant or option data cannot be decoded
var ErrMalformed = errors.New("malformed catalog data")

// variantRecord is one entry of the serialized variant list.
// Either Options or Option1..Option3 carry the per-option values.
type variantRecord struct {
	ID             flexibleID `json:"id"`
	Title          string     `json:"title"`
	Options        []string   `json:"options"`
	Option1        *string    `json:"option1"`
	Option2        *string    `json:"option2"`
	Option3        *string    `json:"option3"`
	Price          *int64     `json:"price"`
	CompareAtPrice *int64     `json:"compare_at_price"`
	ComparePrice   *int64     `json:"comparePrice"`
	Available      *bool      `json:"available"`
	Image          string     `json:"image"`
	FeaturedImage  string     `json:"featured_image"`
	Thumb          string     `json:"thumb"`
}

// flexibleID accepts both numeric and string identifiers
type flexibleID string

func (f *flexibleID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = flexibleID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	if _, err := strconv.ParseInt(n.String(), 10, 64); err != nil {
		return fmt.Errorf("variant id %q is not an integer", n.String())
	}
	*f = flexibleID(n.String())
	return nil
}

// Read parses the catalog of a card. Single-variant cards yield a catalog with
// one variant built from the card itself and no options. On malformed data Read
// returns an empty (non-nil) catalog together with an error wrapping ErrMalformed,
// so callers can degrade instead of failing.
func Read(card models.Card) (*models.Catalog, error) {
	if !card.HasVariants() {
		return singleVariant(card), nil
	}

	empty := &models.Catalog{ProductID: card.ProductID}

	var names []string
	if err := json.Unmarshal([]byte(card.OptionsJSON), &names); err != nil {
		return empty, fmt.Errorf("%w: options of product %s: %v", ErrMalformed, card.ProductID, err)
	}

	var records []variantRecord
	if err := json.Unmarshal([]byte(card.VariantsJSON), &records); err != nil {
		return empty, fmt.Errorf("%w: variants of product %s: %v", ErrMalformed, card.ProductID, err)
	}

	variants := make([]models.CatalogVariant, 0, len(records))
	for i, rec := range records {
		if rec.ID == "" {
			return empty, fmt.Errorf("%w: variant %d of product %s has no id", ErrMalformed, i, card.ProductID)
		}
		variants = append(variants, toVariant(card, rec, len(names)))
	}

	options := Classify(names, variants)
	for i := range variants {
		if variants[i].Title == "" {
			variants[i].Title = variantTitle(variants[i], options)
		}
	}

	return &models.Catalog{
		ProductID: card.ProductID,
		Variants:  variants,
		Options:   options,
	}, nil
}

// Classify computes the distinct values of every declared option and marks an
// option synthetic when its only value is the sentinel (or it has no values).
func Classify(names []string, variants []models.CatalogVariant) []models.OptionDefinition {
	options := make([]models.OptionDefinition, 0, len(names))
	for i, name := range names {
		seen := make(map[string]bool)
		var values []string
		for _, v := range variants {
			value := v.OptionAt(i)
			if value == "" || seen[value] {
				continue
			}
			seen[value] = true
			values = append(values, value)
		}

		kind := models.OptionReal
		if len(values) == 0 || (len(values) == 1 && values[0] == models.SentinelOptionValue) {
			kind = models.OptionSynthetic
		}

		options = append(options, models.OptionDefinition{
			Name:   name,
			Index:  i,
			Values: values,
			Kind:   kind,
		})
	}
	return options
}

func toVariant(card models.Card, rec variantRecord, optionCount int) models.CatalogVariant {
	values := rec.Options
	if len(values) == 0 {
		for _, opt := range []*string{rec.Option1, rec.Option2, rec.Option3} {
			if opt == nil {
				values = append(values, "")
				continue
			}
			values = append(values, *opt)
		}
	}
	if len(values) > optionCount {
		values = values[:optionCount]
	}

	price := card.PriceCents
	if rec.Price != nil {
		price = *rec.Price
	}

	var compare int64
	switch {
	case rec.CompareAtPrice != nil:
		compare = *rec.CompareAtPrice
	case rec.ComparePrice != nil:
		compare = *rec.ComparePrice
	}

	image := rec.Image
	if image == "" {
		image = rec.FeaturedImage
	}

	available := true
	if rec.Available != nil {
		available = *rec.Available
	}

	return models.CatalogVariant{
		ID:                string(rec.ID),
		ProductID:         card.ProductID,
		Title:             strings.TrimSpace(rec.Title),
		Options:           values,
		PriceCents:        price,
		ComparePriceCents: compare,
		Image:             image,
		Thumb:             rec.Thumb,
		Available:         available,
	}
}

func variantTitle(v models.CatalogVariant, options []models.OptionDefinition) string {
	var parts []string
	for _, opt := range options {
		if opt.Required() {
			parts = append(parts, v.OptionAt(opt.Index))
		}
	}
	if len(parts) == 0 {
		return models.SentinelOptionValue
	}
	return strings.Join(parts, " / ")
}

func singleVariant(card models.Card) *models.Catalog {
	return &models.Catalog{
		ProductID: card.ProductID,
		Variants: []models.CatalogVariant{{
			ID:                card.DefaultVariantID,
			ProductID:         card.ProductID,
			Title:             models.SentinelOptionValue,
			PriceCents:        card.PriceCents,
			ComparePriceCents: card.ComparePriceCents,
			Image:             card.Image,
			Thumb:             card.Thumb,
			Available:         true,
		}},
	}
}
