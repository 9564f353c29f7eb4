package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"tshirt-bundle/bundle"
	"tshirt-bundle/bundle/render"
	"tshirt-bundle/catalog"
	"tshirt-bundle/logger"
	"tshirt-bundle/models"
	"tshirt-bundle/pricing"
)

var (
	ErrUnknownProduct = errors.New("product is not on this bundle page")
	ErrNoPicker       = errors.New("no variant picker is open")
)

// Presenter is the UI side of a widget instance
type Presenter interface {
	Render(view models.BundleView, updates []models.SurfaceUpdate)
	Alert(message string)
	Navigate(url string)
}

// BundleDependencies are the collaborators of a widget instance
type BundleDependencies struct {
	Cart      CartClientInterface
	Notifier  Notifier
	Presenter Presenter
	Schedule  Scheduler
	CartURL   string
	SlotImage func(src string) string
	Logger    logger.ILogger
}

// SubmitResult reports what a submit did
type SubmitResult struct {
	Started  bool               `json:"started"`
	Phase    models.SubmitPhase `json:"phase"`
	Alert    string             `json:"alert,omitempty"`
	Redirect *models.Redirect   `json:"redirect,omitempty"`
}

// BundleService is one bundle widget instance. It owns its selection, picker
// and gateway; nothing is shared between instances.
type BundleService struct {
	mu             sync.Mutex
	id             string
	cards          []models.Card
	cardIndex      map[string]int
	selection      *bundle.Selection
	picker         *bundle.Picker
	sync           *render.Synchronizer
	gateway        *Gateway
	presenter      Presenter
	mobileExpanded bool
	logger         logger.ILogger
}

// NewBundleService creates a widget instance over the cards of the page and
// renders its initial state.
func NewBundleService(id string, cfg models.BundleConfig, cards []models.Card, deps BundleDependencies) (*BundleService, error) {
	engine, err := pricing.NewEngine(cfg)
	if err != nil {
		return nil, err
	}
	if deps.Logger == nil {
		deps.Logger = logger.NewNop()
	}
	if deps.Presenter == nil {
		deps.Presenter = &NopPresenter{}
	}
	if deps.CartURL == "" {
		deps.CartURL = "/cart"
	}

	index := make(map[string]int, len(cards))
	for i, c := range cards {
		index[c.ProductID] = i
	}

	s := &BundleService{
		id:        id,
		cards:     cards,
		cardIndex: index,
		selection: bundle.NewSelection(cfg.Size),
		sync:      render.New(engine, cfg.PriceDisplay).WithSlotImage(deps.SlotImage),
		gateway:   NewGateway(cfg.ID, deps.CartURL, deps.Cart, deps.Notifier, deps.Schedule, deps.Logger),
		presenter: deps.Presenter,
		logger:    deps.Logger,
	}

	s.mu.Lock()
	s.render()
	s.mu.Unlock()
	return s, nil
}

func (s *BundleService) ID() string {
	return s.id
}

func (s *BundleService) Cards() []models.Card {
	return s.cards
}

// View returns the current derived view without rendering
func (s *BundleService) View() models.BundleView {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sync.Project(s.snapshot())
}

// Updates returns the current view and the full set of surface updates without
// notifying the presenter
func (s *BundleService) Updates() (models.BundleView, []models.SurfaceUpdate) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sync.Render(s.snapshot())
}

// Entries returns the selected entries in slot order
func (s *BundleService) Entries() []models.SelectionEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selection.Entries()
}

// AddCard adds a single-variant card. Multi-variant cards open the picker
// instead and nothing is added.
func (s *BundleService) AddCard(productID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	card, ok := s.card(productID)
	if !ok {
		return false, fmt.Errorf("%w: %s", ErrUnknownProduct, productID)
	}
	if card.HasVariants() {
		s.openPicker(card)
		return false, nil
	}
	if s.gateway.Busy() {
		return false, nil
	}
	return s.mutate(s.selection.Add(bundle.EntryFromCard(card))), nil
}

// RemoveAt removes the entry at a 0-based slot position
func (s *BundleService) RemoveAt(position int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.gateway.Busy() {
		return false
	}
	return s.mutate(s.selection.RemoveAt(position))
}

// RemoveSlot removes by the 1-based index carried by slot remove buttons
func (s *BundleService) RemoveSlot(slotIndex int) bool {
	return s.RemoveAt(slotIndex - 1)
}

// RemoveProduct removes the first entry of productID (card quantity minus)
func (s *BundleService) RemoveProduct(productID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.gateway.Busy() {
		return false
	}
	return s.mutate(s.selection.RemoveAt(s.selection.IndexOfProduct(productID)))
}

// QtyAdd is the quantity "+" on a card that is already in the bundle. Items
// are fixed at quantity 1, so this never changes anything.
func (s *BundleService) QtyAdd(productID string) bool {
	s.logger.Debug("bundle", "quantity add ignored", map[string]interface{}{"instance": s.id, "productId": productID})
	return false
}

// OpenPicker opens the variant picker for productID, replacing any open picker
func (s *BundleService) OpenPicker(productID string) (*models.PickerView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	card, ok := s.card(productID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownProduct, productID)
	}
	s.openPicker(card)
	view := s.pickerView()
	return &view, nil
}

// Choose records an option value in the open picker
func (s *BundleService) Choose(option, value string) (*models.PickerView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.picker == nil {
		return nil, ErrNoPicker
	}
	s.picker.Choose(option, value)
	view := s.pickerView()
	return &view, nil
}

// Picker returns the open picker, if any
func (s *BundleService) Picker() (*models.PickerView, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.picker == nil {
		return nil, false
	}
	view := s.pickerView()
	return &view, true
}

// ConfirmPicker adds the resolved variant when the picker is ready. The
// picker closes only when the variant was added.
func (s *BundleService) ConfirmPicker() (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.picker == nil {
		return false, ErrNoPicker
	}
	if s.gateway.Busy() {
		return false, nil
	}

	res := s.picker.Resolve(s.selection.Contains)
	if res.Status != models.ResolutionReady || res.Variant == nil {
		return false, nil
	}

	added := s.selection.Add(bundle.EntryFromVariant(s.picker.Card(), *res.Variant))
	if added {
		s.picker = nil
	}
	return s.mutate(added), nil
}

// CancelPicker discards the picker and its choices
func (s *BundleService) CancelPicker() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.picker = nil
}

// ToggleMobile expands or collapses the mobile bar
func (s *BundleService) ToggleMobile() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mobileExpanded = !s.mobileExpanded
	s.render()
	return s.mobileExpanded
}

// Submit sends the bundle to the cart. It is a no-op unless the bundle is
// complete and no submission has started. The lock is released while the
// request is in flight; the submitting phase keeps other actions out.
func (s *BundleService) Submit(ctx context.Context) SubmitResult {
	s.mu.Lock()
	if !s.gateway.Begin(s.selection.IsComplete()) {
		phase := s.gateway.Phase()
		s.mu.Unlock()
		return SubmitResult{Phase: phase}
	}
	entries := s.selection.Entries()
	s.render()
	s.mu.Unlock()

	resource, err := s.gateway.Send(ctx, entries)

	s.mu.Lock()
	defer s.mu.Unlock()

	if err != nil {
		message := s.gateway.Fail(err)
		s.render()
		s.presenter.Alert(message)
		return SubmitResult{Started: true, Phase: s.gateway.Phase(), Alert: message}
	}

	redirect := s.gateway.Succeed(ctx, resource, len(entries), s.presenter.Navigate)
	s.render()
	return SubmitResult{Started: true, Phase: s.gateway.Phase(), Redirect: &redirect}
}

func (s *BundleService) openPicker(card models.Card) {
	cat, err := catalog.Read(card)
	if err != nil {
		s.logger.Warn("bundle", "variant data unreadable, picker degraded", map[string]interface{}{
			"instance":  s.id,
			"productId": card.ProductID,
			"error":     err.Error(),
		})
	}
	s.picker = bundle.NewPicker(card, cat)
}

// pickerView is the open picker's view. A resolved variant cannot be confirmed
// while the bundle is full.
func (s *BundleService) pickerView() models.PickerView {
	view := s.picker.View(s.selection.Contains)
	if view.Resolution.Status == models.ResolutionReady && s.selection.IsComplete() {
		view.Resolution.ConfirmEnabled = false
		view.Resolution.ConfirmLabel = render.LabelBundleFull
	}
	return view
}

// mutate renders once when changed is true
func (s *BundleService) mutate(changed bool) bool {
	if changed {
		s.render()
	}
	return changed
}

func (s *BundleService) render() {
	view, updates := s.sync.Render(s.snapshot())
	s.presenter.Render(view, updates)
}

func (s *BundleService) snapshot() render.Snapshot {
	return render.Snapshot{
		Entries:        s.selection.Entries(),
		Cards:          s.cards,
		Phase:          s.gateway.Phase(),
		MobileExpanded: s.mobileExpanded,
	}
}

func (s *BundleService) card(productID string) (models.Card, bool) {
	i, ok := s.cardIndex[productID]
	if !ok {
		return models.Card{}, false
	}
	return s.cards[i], true
}

// NopPresenter ignores everything
type NopPresenter struct{}

func (NopPresenter) Render(models.BundleView, []models.SurfaceUpdate) {}
func (NopPresenter) Alert(string) {}
func (NopPresenter) Navigate(string) {}
