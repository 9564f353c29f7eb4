package render

import (
	"strconv"
	"strings"

	"tshirt-bundle/models"
)

// Binding ties a selector to the projection that fills it
type Binding struct {
	Selector string
	Project  func(selector string, view models.BundleView) []models.SurfaceUpdate
}

// DefaultBindings covers the desktop panel, the mobile bar and the product cards.
// Desktop and mobile surfaces share projections.
func DefaultBindings() []Binding {
	return []Binding{
		{"#BundleCount", CountText},
		{".bundle-count-mobile", CountText},
		{"#BundleTotal", TotalText},
		{".bundle-total-mobile", TotalText},
		{"#BundleCompareTotal", CompareTotal},
		{".bundle-compare-total-mobile", CompareTotal},
		{"#BundleCTA", CTA},
		{"#BundleCTAMobile", CTA},
		{"#BundleProgress", Progress},
		{"#BundleProgressMobile", Progress},
		{"#BundleSlots", Slots},
		{"#BundleMobileSlots", Slots},
		{".bundle-card", Cards},
		{"#BundleMobileToggle", MobileToggle},
		{"#BundleMobileBar", MobileBar},
	}
}

func CountText(selector string, view models.BundleView) []models.SurfaceUpdate {
	return []models.SurfaceUpdate{{Selector: selector, Text: str(strconv.Itoa(view.Count))}}
}

func TotalText(selector string, view models.BundleView) []models.SurfaceUpdate {
	return []models.SurfaceUpdate{{Selector: selector, Text: str(view.Total)}}
}

func CompareTotal(selector string, view models.BundleView) []models.SurfaceUpdate {
	return []models.SurfaceUpdate{{
		Selector: selector,
		Text:     str(view.CompareTotal),
		Hidden:   flag(!view.ShowCompare),
	}}
}

func CTA(selector string, view models.BundleView) []models.SurfaceUpdate {
	u := models.SurfaceUpdate{
		Selector: selector,
		Text:     str(view.CTA.Label),
		Disabled: flag(view.CTA.Disabled),
	}
	toggleClass(&u, "bundle-cta--ready", view.CTA.Ready)
	return []models.SurfaceUpdate{u}
}

func Progress(selector string, view models.BundleView) []models.SurfaceUpdate {
	updates := make([]models.SurfaceUpdate, 0, len(view.Steps)+len(view.Bars))
	for i, state := range view.Steps {
		u := models.SurfaceUpdate{Selector: scoped(selector, `.bundle-progress__step[data-step="%d"]`, i+1)}
		toggleClass(&u, "bundle-progress__step--active", state == models.StepFilled)
		toggleClass(&u, "bundle-progress__step--current", state == models.StepCurrent)
		updates = append(updates, u)
	}
	for i, filled := range view.Bars {
		width := "0%"
		if filled {
			width = "100%"
		}
		updates = append(updates, models.SurfaceUpdate{
			Selector: scoped(selector, `.bundle-progress__bar-fill[data-bar="%d"]`, i+1),
			Style:    map[string]string{"width": width},
		})
	}
	return updates
}

func Slots(selector string, view models.BundleView) []models.SurfaceUpdate {
	var updates []models.SurfaceUpdate
	for _, slot := range view.Slots {
		root := scoped(selector, `.bundle-slot[data-slot-index="%d"]`, slot.SlotNumber)
		updates = append(updates,
			models.SurfaceUpdate{Selector: root + " .bundle-slot__empty", Hidden: flag(slot.Filled)},
			models.SurfaceUpdate{Selector: root + " .bundle-slot__filled", Hidden: flag(!slot.Filled)},
		)
		if !slot.Filled {
			continue
		}
		updates = append(updates,
			models.SurfaceUpdate{
				Selector: root + " .bundle-slot__image",
				Attrs:    map[string]string{"src": slot.Image, "alt": slot.Title},
			},
			models.SurfaceUpdate{Selector: root + " .bundle-slot__name", Text: str(slot.Title)},
			models.SurfaceUpdate{Selector: root + " .bundle-slot__price", Text: str(slot.Price)},
			models.SurfaceUpdate{
				Selector: root + " .bundle-slot__compare",
				Text:     str(slot.Compare),
				Hidden:   flag(!slot.ShowCompare),
			},
		)
	}
	return updates
}

func Cards(selector string, view models.BundleView) []models.SurfaceUpdate {
	var updates []models.SurfaceUpdate
	for _, card := range view.Cards {
		root := selector + `[data-product-id="` + escapeAttr(card.ProductID) + `"]`

		u := models.SurfaceUpdate{Selector: root}
		toggleClass(&u, "bundle-card--selected", card.InBundle)

		updates = append(updates,
			u,
			models.SurfaceUpdate{
				Selector: root + " .bundle-card__add-btn",
				Text:     str(card.AddLabel),
				Hidden:   flag(card.AddHidden),
				Disabled: flag(card.AddDisabled),
			},
			models.SurfaceUpdate{Selector: root + " .bundle-card__qty-wrap", Hidden: flag(!card.QtyVisible)},
			models.SurfaceUpdate{
				Selector: root + " .bundle-card__qty-add",
				Disabled: flag(card.QtyAddDisabled),
				Attrs:    map[string]string{"aria-label": card.QtyAddLabel},
			},
		)
	}
	return updates
}

func MobileToggle(selector string, view models.BundleView) []models.SurfaceUpdate {
	return []models.SurfaceUpdate{{
		Selector: selector,
		Attrs:    map[string]string{"aria-expanded": strconv.FormatBool(view.MobileExpanded)},
	}}
}

func MobileBar(selector string, view models.BundleView) []models.SurfaceUpdate {
	u := models.SurfaceUpdate{Selector: selector}
	toggleClass(&u, "bundle-mobile-bar--expanded", view.MobileExpanded)
	return []models.SurfaceUpdate{u}
}

var attrEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\n", `\a `, "\r", `\d `)

// escapeAttr escapes s for a double-quoted CSS attribute selector value
func escapeAttr(s string) string {
	return attrEscaper.Replace(s)
}

func toggleClass(u *models.SurfaceUpdate, class string, on bool) {
	if on {
		u.AddClass = append(u.AddClass, class)
		return
	}
	u.RemoveClass = append(u.RemoveClass, class)
}

func str(s string) *string { return &s }

func flag(b bool) *bool { return &b }
