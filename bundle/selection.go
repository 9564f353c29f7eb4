// Package bundle holds the pure state of a bundle widget: the capacity-bounded
// selection and the variant picker. Nothing here touches the network or a UI.
package bundle

import "tshirt-bundle/models"

// Selection is an ordered, capacity-bounded list of chosen variants
type Selection struct {
	capacity int
	entries  []models.SelectionEntry
}

// NewSelection creates an empty selection. A non-positive capacity is treated as 1.
func NewSelection(capacity int) *Selection {
	if capacity <= 0 {
		capacity = 1
	}
	return &Selection{
		capacity: capacity,
		entries:  make([]models.SelectionEntry, 0, capacity),
	}
}

// Add appends entry and reports whether the selection changed.
// It is a no-op when the selection is full or already holds the variant.
func (s *Selection) Add(entry models.SelectionEntry) bool {
	if len(s.entries) >= s.capacity {
		return false
	}
	if s.Contains(entry.VariantID) {
		return false
	}
	entry.Quantity = 1
	s.entries = append(s.entries, entry)
	return true
}

// RemoveAt deletes the entry at position and reports whether the selection changed.
// Out of range positions are ignored; remaining entries keep their order.
func (s *Selection) RemoveAt(position int) bool {
	if position < 0 || position >= len(s.entries) {
		return false
	}
	s.entries = append(s.entries[:position], s.entries[position+1:]...)
	return true
}

// IndexOfProduct returns the position of the first entry of productID, or -1
func (s *Selection) IndexOfProduct(productID string) int {
	for i, e := range s.entries {
		if e.ProductID == productID {
			return i
		}
	}
	return -1
}

// Contains reports whether variantID is selected
func (s *Selection) Contains(variantID string) bool {
	for _, e := range s.entries {
		if e.VariantID == variantID {
			return true
		}
	}
	return false
}

// HasProduct reports whether any variant of productID is selected
func (s *Selection) HasProduct(productID string) bool {
	return s.IndexOfProduct(productID) >= 0
}

func (s *Selection) IsComplete() bool {
	return len(s.entries) == s.capacity
}

func (s *Selection) Len() int {
	return len(s.entries)
}

func (s *Selection) Capacity() int {
	return s.capacity
}

func (s *Selection) Remaining() int {
	return s.capacity - len(s.entries)
}

// Entries returns a copy of the entries in insertion order
func (s *Selection) Entries() []models.SelectionEntry {
	out := make([]models.SelectionEntry, len(s.entries))
	copy(out, s.entries)
	return out
}

// EntryFromCard builds the entry for a single-variant card
func EntryFromCard(card models.Card) models.SelectionEntry {
	return models.SelectionEntry{
		VariantID:         card.DefaultVariantID,
		ProductID:         card.ProductID,
		Title:             card.Title,
		Image:             card.Image,
		Thumb:             card.Thumb,
		PriceCents:        card.PriceCents,
		ComparePriceCents: card.ComparePriceCents,
		Quantity:          1,
	}
}

// EntryFromVariant builds the entry for a variant resolved in the picker.
// The display title is "Product – Variant" unless the variant title is the sentinel.
func EntryFromVariant(card models.Card, v models.CatalogVariant) models.SelectionEntry {
	title := card.Title
	if v.Title != "" && v.Title != models.SentinelOptionValue {
		title = card.Title + " – " + v.Title
	}

	image := card.Image
	if v.Image != "" {
		image = v.Image
	}
	thumb := card.Thumb
	switch {
	case v.Thumb != "":
		thumb = v.Thumb
	case v.Image != "":
		thumb = v.Image
	}

	return models.SelectionEntry{
		VariantID:         v.ID,
		ProductID:         card.ProductID,
		Title:             title,
		Image:             image,
		Thumb:             thumb,
		PriceCents:        v.PriceCents,
		ComparePriceCents: v.ComparePriceCents,
		Quantity:          1,
	}
}
