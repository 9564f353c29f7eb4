package bundle

import "tshirt-bundle/models"

const (
	labelSelectOptions = "Select options"
	labelSoldOut       = "Sold out"
	labelInBundle      = "Already in bundle"
	labelAddToBundle   = "Add to Bundle"

	MessageSoldOut     = "This combination is sold out. Please choose another option."
	MessageNoSuchCombo = "This combination is unavailable. Please choose another option."
	MessageDuplicate   = "This item is already in your bundle."
)

// Picker is the in-progress variant choice for one product. It lives only
// while the picker is open and is never merged back on cancel.
type Picker struct {
	card    models.Card
	catalog *models.Catalog
	choices map[string]string
	preview string
}

// NewPicker opens a picker over an already parsed catalog
func NewPicker(card models.Card, catalog *models.Catalog) *Picker {
	if catalog == nil {
		catalog = &models.Catalog{ProductID: card.ProductID}
	}
	return &Picker{
		card:    card,
		catalog: catalog,
		choices: make(map[string]string),
		preview: card.Image,
	}
}

func (p *Picker) Card() models.Card {
	return p.card
}

func (p *Picker) Catalog() *models.Catalog {
	return p.catalog
}

// Choices returns a copy of the chosen option values
func (p *Picker) Choices() map[string]string {
	out := make(map[string]string, len(p.choices))
	for k, v := range p.choices {
		out[k] = v
	}
	return out
}

// Choose records value for the named option and reports whether it was accepted.
// Unknown options and values outside the option's value set are ignored. Other
// choices are never cleared.
func (p *Picker) Choose(option, value string) bool {
	def, ok := p.catalog.Option(option)
	if !ok || !contains(def.Values, value) {
		return false
	}
	p.choices[option] = value
	p.preview = p.previewFor()
	return true
}

// previewFor returns the image of the first variant, in catalog order, that
// agrees with every current choice and declares one. Falls back to the card image.
func (p *Picker) previewFor() string {
	for _, v := range p.catalog.Variants {
		if v.Image == "" {
			continue
		}
		ok := true
		for name, value := range p.choices {
			def, found := p.catalog.Option(name)
			if !found || v.OptionAt(def.Index) != value {
				ok = false
				break
			}
		}
		if ok {
			return v.Image
		}
	}
	return p.card.Image
}

// Resolve maps the current choices to an outcome. isSelected reports whether a
// variant is already in the bundle.
func (p *Picker) Resolve(isSelected func(variantID string) bool) models.Resolution {
	required := p.catalog.RequiredOptions()

	chosen := 0
	for _, opt := range required {
		if _, ok := p.choices[opt.Name]; ok {
			chosen++
		}
	}

	res := models.Resolution{
		Status:        models.ResolutionIncomplete,
		PreviewImage:  p.preview,
		ConfirmLabel:  labelSelectOptions,
		ChosenCount:   chosen,
		RequiredCount: len(required),
	}

	if p.catalog.Empty() || chosen < len(required) {
		return res
	}

	match := p.match(required)
	if match == nil {
		res.Status = models.ResolutionUnavailable
		res.ConfirmLabel = labelSoldOut
		res.Message = MessageNoSuchCombo
		return res
	}

	res.Variant = match
	if match.Image != "" {
		res.PreviewImage = match.Image
	}

	switch {
	case !match.Available:
		res.Status = models.ResolutionUnavailable
		res.ConfirmLabel = labelSoldOut
		res.Message = MessageSoldOut
	case isSelected != nil && isSelected(match.ID):
		res.Status = models.ResolutionDuplicate
		res.ConfirmLabel = labelInBundle
		res.Message = MessageDuplicate
	default:
		res.Status = models.ResolutionReady
		res.ConfirmLabel = labelAddToBundle
		res.ConfirmEnabled = true
	}
	return res
}

// View is the picker as the modal shows it
func (p *Picker) View(isSelected func(variantID string) bool) models.PickerView {
	options := make([]models.OptionDefinition, 0, len(p.catalog.Options))
	for _, opt := range p.catalog.Options {
		if opt.Required() {
			options = append(options, opt)
		}
	}
	return models.PickerView{
		ProductID:  p.card.ProductID,
		Title:      p.card.Title,
		Options:    options,
		Choices:    p.Choices(),
		Resolution: p.Resolve(isSelected),
	}
}

// match returns the first variant, in catalog order, agreeing with every required choice
func (p *Picker) match(required []models.OptionDefinition) *models.CatalogVariant {
	for i := range p.catalog.Variants {
		v := &p.catalog.Variants[i]
		ok := true
		for _, opt := range required {
			if v.OptionAt(opt.Index) != p.choices[opt.Name] {
				ok = false
				break
			}
		}
		if ok {
			match := *v
			return &match
		}
	}
	return nil
}

func contains(values []string, value string) bool {
	for _, v := range values {
		if v == value {
			return true
		}
	}
	return false
}
