package render

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tshirt-bundle/models"
	"tshirt-bundle/pricing"
)

func newSync(t *testing.T, size int, price int64) *Synchronizer {
	t.Helper()
	engine, err := pricing.NewEngine(models.BundleConfig{Size: size, PriceCents: price})
	require.NoError(t, err)
	return New(engine, "$75")
}

func cards() []models.Card {
	return []models.Card{
		{ProductID: "pa", DefaultVariantID: "a", Title: "Tee A", PriceCents: 2500},
		{ProductID: "pb", DefaultVariantID: "b", Title: "Tee B", PriceCents: 2500},
		{ProductID: "pc", DefaultVariantID: "c", Title: "Tee C", PriceCents: 2500},
		{ProductID: "pd", DefaultVariantID: "d", Title: "Tee D", PriceCents: 2500},
	}
}

func entries(ids ...string) []models.SelectionEntry {
	var out []models.SelectionEntry
	for _, id := range ids {
		out = append(out, models.SelectionEntry{
			VariantID:  id,
			ProductID:  "p" + id,
			Title:      "Tee " + id,
			Thumb:      id + "_t.jpg",
			PriceCents: 2500,
		})
	}
	return out
}

func TestProject_Empty(t *testing.T) {
	view := newSync(t, 3, 7500).Project(Snapshot{Cards: cards()})

	assert.Equal(t, 0, view.Count)
	assert.Equal(t, "$0.00", view.Total)
	assert.False(t, view.ShowCompare)
	assert.Empty(t, view.CompareTotal)
	assert.Equal(t, models.CTAView{Label: "Add 3 more", Disabled: true}, view.CTA)
	assert.Equal(t, models.PhaseIdle, view.Phase)

	want := []models.StepState{models.StepCurrent, models.StepNeutral, models.StepNeutral}
	if diff := cmp.Diff(want, view.Steps); diff != "" {
		t.Errorf("steps mismatch (-want +got):\n%s", diff)
	}
	for _, slot := range view.Slots {
		assert.False(t, slot.Filled)
	}
}

func TestProject_Partial(t *testing.T) {
	snap := Snapshot{Entries: entries("a"), Cards: cards()}
	snap.Entries[0].ComparePriceCents = 3500

	view := newSync(t, 3, 7500).Project(snap)

	assert.Equal(t, "$25.00", view.Total)
	assert.Equal(t, "$35.00", view.CompareTotal)
	assert.True(t, view.ShowCompare)
	assert.Equal(t, "Add 2 more", view.CTA.Label)
	assert.True(t, view.CTA.Disabled)

	wantSteps := []models.StepState{models.StepFilled, models.StepCurrent, models.StepNeutral}
	if diff := cmp.Diff(wantSteps, view.Steps); diff != "" {
		t.Errorf("steps mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]bool{true, false, false}, view.Bars); diff != "" {
		t.Errorf("bars mismatch (-want +got):\n%s", diff)
	}

	wantSlot := models.SlotView{
		Index:       0,
		SlotNumber:  1,
		Filled:      true,
		VariantID:   "a",
		Image:       "a_t.jpg",
		Title:       "Tee a",
		Price:       "$25.00",
		Compare:     "$35.00",
		ShowCompare: true,
	}
	if diff := cmp.Diff(wantSlot, view.Slots[0]); diff != "" {
		t.Errorf("slot mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, models.SlotView{Index: 1, SlotNumber: 2}, view.Slots[1])

	assert.True(t, view.Cards[0].InBundle)
	assert.True(t, view.Cards[0].AddHidden)
	assert.True(t, view.Cards[0].QtyVisible)
	assert.False(t, view.Cards[1].InBundle)
	assert.False(t, view.Cards[1].AddDisabled)
	assert.Equal(t, LabelAddToBundle, view.Cards[1].AddLabel)
}

func TestProject_Complete(t *testing.T) {
	view := newSync(t, 3, 7500).Project(Snapshot{Entries: entries("a", "b", "c"), Cards: cards()})

	assert.True(t, view.Complete)
	assert.Equal(t, "$75.00", view.Total)
	assert.Equal(t, models.CTAView{Label: LabelAddToCart, Ready: true}, view.CTA)
	assert.False(t, view.ShowCompare, "compare total equal to total is hidden")

	unselected := view.Cards[3]
	assert.False(t, unselected.InBundle)
	assert.True(t, unselected.AddDisabled)
	assert.Equal(t, LabelBundleFull, unselected.AddLabel)
	assert.True(t, view.Cards[0].QtyAddDisabled)
	assert.Equal(t, LabelBundleFull, view.Cards[0].QtyAddLabel)
}

func TestProject_SubmissionPhases(t *testing.T) {
	s := newSync(t, 3, 7500)
	snap := Snapshot{Entries: entries("a", "b", "c")}

	snap.Phase = models.PhaseSubmitting
	assert.Equal(t, models.CTAView{Label: LabelAdding, Disabled: true, Ready: true}, s.Project(snap).CTA)

	snap.Phase = models.PhaseRedirecting
	assert.Equal(t, models.CTAView{Label: LabelRedirecting, Disabled: true, Ready: true}, s.Project(snap).CTA)
}

func TestProject_CardInBundleByProduct(t *testing.T) {
	snap := Snapshot{
		Entries: []models.SelectionEntry{{VariantID: "a-m-black", ProductID: "pa", PriceCents: 2500}},
		Cards:   cards(),
	}
	view := newSync(t, 3, 7500).Project(snap)
	assert.True(t, view.Cards[0].InBundle, "any variant of the product marks the card")
}

func TestRender_IsIdempotent(t *testing.T) {
	s := newSync(t, 3, 7500)
	snap := Snapshot{Entries: entries("a", "b"), Cards: cards(), MobileExpanded: true}

	view1, updates1 := s.Render(snap)
	view2, updates2 := s.Render(snap)

	if diff := cmp.Diff(view1, view2); diff != "" {
		t.Errorf("view changed between renders (-first +second):\n%s", diff)
	}
	if diff := cmp.Diff(updates1, updates2); diff != "" {
		t.Errorf("updates changed between renders (-first +second):\n%s", diff)
	}
}

func TestRender_DesktopAndMobileShareProjection(t *testing.T) {
	_, updates := newSync(t, 3, 7500).Render(Snapshot{Entries: entries("a")})

	bySelector := map[string]models.SurfaceUpdate{}
	for _, u := range updates {
		bySelector[u.Selector] = u
	}

	desktop := bySelector["#BundleCTA"]
	mobile := bySelector["#BundleCTAMobile"]
	require.NotNil(t, desktop.Text)
	require.NotNil(t, mobile.Text)
	assert.Equal(t, *desktop.Text, *mobile.Text)
	assert.Equal(t, "Add 2 more", *desktop.Text)
	assert.Equal(t, []string{"bundle-cta--ready"}, desktop.RemoveClass)

	assert.Equal(t, "1", *bySelector["#BundleCount"].Text)
	assert.Equal(t, "1", *bySelector[".bundle-count-mobile"].Text)
	assert.Equal(t, "$25.00", *bySelector[".bundle-total-mobile"].Text)

	step := bySelector[`#BundleProgressMobile .bundle-progress__step[data-step="2"]`]
	assert.Equal(t, []string{"bundle-progress__step--current"}, step.AddClass)
	assert.Equal(t, []string{"bundle-progress__step--active"}, step.RemoveClass)

	bar := bySelector[`#BundleProgress .bundle-progress__bar-fill[data-bar="1"]`]
	assert.Equal(t, "100%", bar.Style["width"])

	filled := bySelector[`#BundleMobileSlots .bundle-slot[data-slot-index="1"] .bundle-slot__filled`]
	require.NotNil(t, filled.Hidden)
	assert.False(t, *filled.Hidden)
	empty := bySelector[`#BundleSlots .bundle-slot[data-slot-index="2"] .bundle-slot__empty`]
	require.NotNil(t, empty.Hidden)
	assert.False(t, *empty.Hidden)

	toggle := bySelector["#BundleMobileToggle"]
	assert.Equal(t, "false", toggle.Attrs["aria-expanded"])
}

func TestRender_CustomBindings(t *testing.T) {
	s := newSync(t, 3, 7500).WithBindings([]Binding{{"#OnlyCount", CountText}})
	_, updates := s.Render(Snapshot{Entries: entries("a", "b")})

	require.Len(t, updates, 1)
	assert.Equal(t, "#OnlyCount", updates[0].Selector)
	assert.Equal(t, "2", *updates[0].Text)
}

func TestCards_EscapesProductIDInSelector(t *testing.T) {
	view := models.BundleView{Cards: []models.CardView{{ProductID: `x"] , body [a="`}}}

	updates := Cards(".bundle-card", view)
	require.NotEmpty(t, updates)
	assert.Equal(t, `.bundle-card[data-product-id="x\"] , body [a=\""]`, updates[0].Selector)

	assert.Equal(t, `a\\b`, escapeAttr(`a\b`))
	assert.Equal(t, `a\a b`, escapeAttr("a\nb"))
}

func TestProject_SlotImageRewrite(t *testing.T) {
	s := newSync(t, 3, 7500).WithSlotImage(func(src string) string { return "/thumb?src=" + src })
	view := s.Project(Snapshot{Entries: entries("a"), Cards: cards()})

	assert.Equal(t, "/thumb?src=a_t.jpg", view.Slots[0].Image)
	assert.Empty(t, view.Slots[1].Image)
}
