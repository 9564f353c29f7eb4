// Package render projects a bundle snapshot onto the widget's UI surfaces.
// Every call computes every surface from the snapshot alone, so applying the
// result repeatedly is harmless.
package render

import (
	"fmt"
	"strconv"

	"tshirt-bundle/models"
	"tshirt-bundle/pricing"
	"tshirt-bundle/utils"
)

const (
	LabelAddToCart   = "Add to Cart"
	LabelAdding      = "Adding..."
	LabelRedirecting = "Added! Redirecting..."
	LabelAddToBundle = "Add to Bundle"
	LabelBundleFull  = "Bundle Full"
	LabelQtyAdd      = "+"
)

// Snapshot is everything the projection needs from a widget instance
type Snapshot struct {
	Entries        []models.SelectionEntry
	Cards          []models.Card
	Phase          models.SubmitPhase
	MobileExpanded bool
}

// Synchronizer turns snapshots into views and surface updates
type Synchronizer struct {
	engine       *pricing.Engine
	priceDisplay string
	bindings     []Binding
	slotImage    func(src string) string
}

// New creates a Synchronizer over the default desktop + mobile bindings
func New(engine *pricing.Engine, priceDisplay string) *Synchronizer {
	return &Synchronizer{
		engine:       engine,
		priceDisplay: priceDisplay,
		bindings:     DefaultBindings(),
	}
}

// WithBindings replaces the surface bindings
func (s *Synchronizer) WithBindings(bindings []Binding) *Synchronizer {
	s.bindings = bindings
	return s
}

// WithSlotImage rewrites slot image sources through fn, e.g. to a resizing proxy
func (s *Synchronizer) WithSlotImage(fn func(src string) string) *Synchronizer {
	s.slotImage = fn
	return s
}

// Render projects snap and expands the view through every binding
func (s *Synchronizer) Render(snap Snapshot) (models.BundleView, []models.SurfaceUpdate) {
	view := s.Project(snap)
	return view, Apply(s.bindings, view)
}

// Project computes the derived view of snap
func (s *Synchronizer) Project(snap Snapshot) models.BundleView {
	quote := s.engine.Quote(snap.Entries)
	count := quote.Count
	capacity := quote.Capacity
	phase := snap.Phase
	if phase == "" {
		phase = models.PhaseIdle
	}

	view := models.BundleView{
		Count:          count,
		Capacity:       capacity,
		Remaining:      capacity - count,
		Complete:       quote.Complete,
		Phase:          phase,
		Total:          utils.FormatMoney(quote.Total),
		TotalCents:     quote.Total,
		ShowCompare:    quote.ShowCompare,
		PriceDisplay:   s.priceDisplay,
		CTA:            ctaView(phase, quote.Complete, capacity-count),
		Steps:          make([]models.StepState, capacity),
		Bars:           make([]bool, capacity),
		Slots:          make([]models.SlotView, capacity),
		Cards:          make([]models.CardView, 0, len(snap.Cards)),
		MobileExpanded: snap.MobileExpanded,
	}
	if quote.ShowCompare {
		view.CompareTotal = utils.FormatMoney(quote.CompareTotal)
	}

	for i := 0; i < capacity; i++ {
		switch {
		case i < count:
			view.Steps[i] = models.StepFilled
		case i == count:
			view.Steps[i] = models.StepCurrent
		default:
			view.Steps[i] = models.StepNeutral
		}
		view.Bars[i] = i < count

		slot := models.SlotView{Index: i, SlotNumber: i + 1}
		if i < count {
			entry := snap.Entries[i]
			slot.Filled = true
			slot.VariantID = entry.VariantID
			slot.Image = entry.Thumb
			if slot.Image == "" {
				slot.Image = entry.Image
			}
			if s.slotImage != nil && slot.Image != "" {
				slot.Image = s.slotImage(slot.Image)
			}
			slot.Title = entry.Title
			slot.Price = utils.FormatMoney(quote.UnitShare)
			if entry.ComparePriceCents > 0 {
				slot.Compare = utils.FormatMoney(entry.ComparePriceCents)
				slot.ShowCompare = true
			}
		}
		view.Slots[i] = slot
	}

	selected := make(map[string]bool, count)
	for _, e := range snap.Entries {
		selected[e.ProductID] = true
	}
	full := quote.Complete
	for _, card := range snap.Cards {
		inBundle := selected[card.ProductID]
		cv := models.CardView{
			ProductID:      card.ProductID,
			InBundle:       inBundle,
			AddHidden:      inBundle,
			AddDisabled:    !inBundle && full,
			AddLabel:       LabelAddToBundle,
			QtyVisible:     inBundle,
			QtyAddDisabled: full,
			QtyAddLabel:    LabelQtyAdd,
		}
		if full {
			cv.AddLabel = LabelBundleFull
			cv.QtyAddLabel = LabelBundleFull
		}
		view.Cards = append(view.Cards, cv)
	}

	return view
}

func ctaView(phase models.SubmitPhase, complete bool, remaining int) models.CTAView {
	switch phase {
	case models.PhaseSubmitting:
		return models.CTAView{Label: LabelAdding, Disabled: true, Ready: complete}
	case models.PhaseRedirecting:
		return models.CTAView{Label: LabelRedirecting, Disabled: true, Ready: complete}
	}
	if complete {
		return models.CTAView{Label: LabelAddToCart, Ready: true}
	}
	return models.CTAView{Label: "Add " + strconv.Itoa(remaining) + " more", Disabled: true}
}

// Apply expands view through bindings in order
func Apply(bindings []Binding, view models.BundleView) []models.SurfaceUpdate {
	var updates []models.SurfaceUpdate
	for _, b := range bindings {
		updates = append(updates, b.Project(b.Selector, view)...)
	}
	return updates
}

func scoped(parent, format string, args ...interface{}) string {
	return parent + " " + fmt.Sprintf(format, args...)
}
