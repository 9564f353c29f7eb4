package controller

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"net/url"
	"strings"
	"time"

	"tshirt-bundle/logger"
	"tshirt-bundle/models"
	"tshirt-bundle/repository"
	"tshirt-bundle/service"
	"tshirt-bundle/utils"
)

//go:embed templates/bundle.html
var templatesFS embed.FS

var pageTemplate = template.Must(template.New("bundle.html").Funcs(template.FuncMap{
	"money": utils.FormatMoney,
	"inc":   func(i int) int { return i + 1 },
	"dec":   func(i int) int { return i - 1 },
}).ParseFS(templatesFS, "templates/bundle.html"))

// PreviewRenderer captures a rendered bundle page
type PreviewRenderer interface {
	Capture(ctx context.Context, instanceID, format string) ([]byte, error)
}

// ThumbnailProvider serves resized product images
type ThumbnailProvider interface {
	Allowed(src string) bool
	Thumbnail(ctx context.Context, src, size string) ([]byte, error)
}

// widget is one live bundle instance with the recorders its responses are built from
type widget struct {
	svc       *service.BundleService
	presenter *service.RecordingPresenter
	events    *service.RecordingNotifier
}

// BundleControllerDeps are the collaborators of BundleController
type BundleControllerDeps struct {
	Bundle    models.BundleConfig
	Cards     repository.CardRepositoryInterface
	Instances repository.InstanceStore[*widget]
	Cart      service.CartClientInterface
	Notifier  service.Notifier
	Schedule  service.Scheduler
	CartURL   string
	Preview   PreviewRenderer
	Thumbs    ThumbnailProvider
	Logger    logger.ILogger
}

// BundleController handles HTTP requests for the bundle builder widget
type BundleController struct {
	deps BundleControllerDeps
}

// NewBundleController creates a new BundleController
func NewBundleController(deps BundleControllerDeps) *BundleController {
	if deps.Logger == nil {
		deps.Logger = logger.NewNop()
	}
	return &BundleController{deps: deps}
}

// NewInstanceStore creates the in-memory store the controller keeps widgets
// in; idle widgets expire after ttl
func NewInstanceStore(ttl time.Duration) repository.InstanceStore[*widget] {
	return repository.NewInstanceRepository[*widget](ttl)
}

type pageData struct {
	InstanceID string
	Bundle     models.BundleConfig
	Cards      []models.Card
	View       models.BundleView
}

type productRequest struct {
	ProductID string `json:"productId"`
}

type removeRequest struct {
	Position  *int   `json:"position"`
	SlotIndex *int   `json:"slotIndex"`
	ProductID string `json:"productId"`
}

type chooseRequest struct {
	Option string `json:"option"`
	Value  string `json:"value"`
}

// Page handles GET /bundle
// Creates a fresh widget instance and renders the bundle page
func (c *BundleController) Page(w http.ResponseWriter, r *http.Request) {
	cards, err := c.deps.Cards.ListCards(r.Context(), c.deps.Bundle.ID)
	if err != nil {
		c.deps.Logger.Error("controller", "failed to load bundle cards", map[string]interface{}{"bundle": c.deps.Bundle.ID, "error": err})
		http.Error(w, "Failed to load bundle", http.StatusInternalServerError)
		return
	}

	wg, id, err := c.newWidget(cards)
	if err != nil {
		c.deps.Logger.Error("controller", "failed to create bundle instance", map[string]interface{}{"error": err})
		http.Error(w, fmt.Sprintf("Failed to create bundle: %v", err), http.StatusInternalServerError)
		return
	}
	c.deps.Logger.Info("controller", "bundle instance created", map[string]interface{}{"instance": id, "cards": len(cards)})

	c.renderPage(w, id, wg)
}

// InstancePage handles GET /bundle/{id}/page
// Renders the page of an existing instance in its current state
func (c *BundleController) InstancePage(w http.ResponseWriter, r *http.Request) {
	wg, ok := c.widget(w, r)
	if !ok {
		return
	}
	c.renderPage(w, r.PathValue("id"), wg)
}

// View handles GET /bundle/{id}/view
func (c *BundleController) View(w http.ResponseWriter, r *http.Request) {
	wg, ok := c.widget(w, r)
	if !ok {
		return
	}
	wg.presenter.Take()
	view, updates := wg.svc.Updates()
	resp := models.ActionResponse{InstanceID: wg.svc.ID(), View: view, Updates: updates}
	if picker, open := wg.svc.Picker(); open {
		resp.Picker = picker
	}
	c.writeJSON(w, http.StatusOK, resp)
}

// Add handles POST /bundle/{id}/add
// Multi-variant products open the picker instead of being added
func (c *BundleController) Add(w http.ResponseWriter, r *http.Request) {
	wg, ok := c.widget(w, r)
	if !ok {
		return
	}
	var req productRequest
	if !c.decode(w, r, &req) {
		return
	}

	if _, err := wg.svc.AddCard(req.ProductID); err != nil {
		c.actionError(w, err)
		return
	}
	c.respond(w, wg, nil)
}

// Remove handles POST /bundle/{id}/remove
func (c *BundleController) Remove(w http.ResponseWriter, r *http.Request) {
	wg, ok := c.widget(w, r)
	if !ok {
		return
	}
	var req removeRequest
	if !c.decode(w, r, &req) {
		return
	}

	switch {
	case req.Position != nil:
		wg.svc.RemoveAt(*req.Position)
	case req.SlotIndex != nil:
		wg.svc.RemoveSlot(*req.SlotIndex)
	case req.ProductID != "":
		wg.svc.RemoveProduct(req.ProductID)
	default:
		http.Error(w, "position, slotIndex or productId is required", http.StatusBadRequest)
		return
	}
	c.respond(w, wg, nil)
}

// QtyAdd handles POST /bundle/{id}/qty-add
func (c *BundleController) QtyAdd(w http.ResponseWriter, r *http.Request) {
	wg, ok := c.widget(w, r)
	if !ok {
		return
	}
	var req productRequest
	if !c.decode(w, r, &req) {
		return
	}
	wg.svc.QtyAdd(req.ProductID)
	c.respond(w, wg, nil)
}

// OpenPicker handles POST /bundle/{id}/picker/open
func (c *BundleController) OpenPicker(w http.ResponseWriter, r *http.Request) {
	wg, ok := c.widget(w, r)
	if !ok {
		return
	}
	var req productRequest
	if !c.decode(w, r, &req) {
		return
	}
	if _, err := wg.svc.OpenPicker(req.ProductID); err != nil {
		c.actionError(w, err)
		return
	}
	c.respond(w, wg, nil)
}

// ChooseOption handles POST /bundle/{id}/picker/choose
func (c *BundleController) ChooseOption(w http.ResponseWriter, r *http.Request) {
	wg, ok := c.widget(w, r)
	if !ok {
		return
	}
	var req chooseRequest
	if !c.decode(w, r, &req) {
		return
	}
	if _, err := wg.svc.Choose(req.Option, req.Value); err != nil {
		c.actionError(w, err)
		return
	}
	c.respond(w, wg, nil)
}

// ConfirmPicker handles POST /bundle/{id}/picker/confirm
func (c *BundleController) ConfirmPicker(w http.ResponseWriter, r *http.Request) {
	wg, ok := c.widget(w, r)
	if !ok {
		return
	}
	if _, err := wg.svc.ConfirmPicker(); err != nil {
		c.actionError(w, err)
		return
	}
	c.respond(w, wg, nil)
}

// CancelPicker handles POST /bundle/{id}/picker/cancel
func (c *BundleController) CancelPicker(w http.ResponseWriter, r *http.Request) {
	wg, ok := c.widget(w, r)
	if !ok {
		return
	}
	wg.svc.CancelPicker()
	c.respond(w, wg, nil)
}

// ToggleMobile handles POST /bundle/{id}/toggle-mobile
func (c *BundleController) ToggleMobile(w http.ResponseWriter, r *http.Request) {
	wg, ok := c.widget(w, r)
	if !ok {
		return
	}
	wg.svc.ToggleMobile()
	c.respond(w, wg, nil)
}

// Submit handles POST /bundle/{id}/submit
// Adds the complete bundle to the storefront cart
func (c *BundleController) Submit(w http.ResponseWriter, r *http.Request) {
	wg, ok := c.widget(w, r)
	if !ok {
		return
	}
	result := wg.svc.Submit(r.Context())
	c.respond(w, wg, &result)
}

// Preview handles GET /bundle/{id}/preview?format=png|pdf
func (c *BundleController) Preview(w http.ResponseWriter, r *http.Request) {
	if _, ok := c.widget(w, r); !ok {
		return
	}
	if c.deps.Preview == nil {
		http.Error(w, "Preview not available", http.StatusServiceUnavailable)
		return
	}

	format := strings.ToLower(r.URL.Query().Get("format"))
	if format == "" {
		format = service.PreviewPNG
	}
	contentType, err := service.ContentType(format)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	data, err := c.deps.Preview.Capture(r.Context(), r.PathValue("id"), format)
	if err != nil {
		c.deps.Logger.Error("controller", "failed to capture preview", map[string]interface{}{"instance": r.PathValue("id"), "error": err})
		http.Error(w, "Failed to generate preview", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", contentType)
	if format == service.PreviewPDF {
		w.Header().Set("Content-Disposition", fmt.Sprintf(`inline; filename="bundle-%s.pdf"`, c.deps.Bundle.ID))
	}
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

// Thumbnail handles GET /bundle/thumb?src=...&size=thumb|medium
func (c *BundleController) Thumbnail(w http.ResponseWriter, r *http.Request) {
	if c.deps.Thumbs == nil {
		http.Error(w, "Thumbnails not available", http.StatusServiceUnavailable)
		return
	}
	src := r.URL.Query().Get("src")
	if src == "" {
		http.Error(w, "src is required", http.StatusBadRequest)
		return
	}
	size := r.URL.Query().Get("size")
	if size == "" {
		size = "thumb"
	}

	data, err := c.deps.Thumbs.Thumbnail(r.Context(), src, size)
	if err != nil {
		c.deps.Logger.Warn("controller", "thumbnail failed", map[string]interface{}{"src": src, "error": err.Error()})
		if errors.Is(err, service.ErrImageHostDenied) {
			http.Error(w, "Image host not allowed", http.StatusForbidden)
			return
		}
		if errors.Is(err, service.ErrImageSource) {
			http.Error(w, "Image not found", http.StatusBadGateway)
			return
		}
		http.Error(w, "Failed to process image", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "image/jpeg")
	w.Header().Set("Cache-Control", "public, max-age=86400")
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

func (c *BundleController) newWidget(cards []models.Card) (*widget, string, error) {
	wg := &widget{
		presenter: &service.RecordingPresenter{},
		events:    &service.RecordingNotifier{},
	}
	id := c.deps.Instances.NewID()

	svc, err := service.NewBundleService(id, c.deps.Bundle, cards, service.BundleDependencies{
		Cart:      c.deps.Cart,
		Notifier:  service.MultiNotifier{wg.events, c.deps.Notifier},
		Presenter: wg.presenter,
		Schedule:  c.deps.Schedule,
		CartURL:   c.deps.CartURL,
		SlotImage: c.slotImage,
		Logger:    c.deps.Logger,
	})
	if err != nil {
		return nil, "", err
	}
	wg.svc = svc
	c.deps.Instances.Put(id, wg)
	return wg, id, nil
}

// slotImage points slot images at the thumbnail endpoint when it can serve them
func (c *BundleController) slotImage(src string) string {
	if c.deps.Thumbs == nil || !c.deps.Thumbs.Allowed(src) {
		return src
	}
	return "/bundle/thumb?src=" + url.QueryEscape(src) + "&size=thumb"
}

func (c *BundleController) renderPage(w http.ResponseWriter, id string, wg *widget) {
	data := pageData{
		InstanceID: id,
		Bundle:     c.deps.Bundle,
		Cards:      wg.svc.Cards(),
		View:       wg.svc.View(),
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := pageTemplate.Execute(w, data); err != nil {
		c.deps.Logger.Error("controller", "failed to render bundle page", map[string]interface{}{"instance": id, "error": err})
	}
}

// widget looks up the instance named in the path, writing 404 when it is gone
func (c *BundleController) widget(w http.ResponseWriter, r *http.Request) (*widget, bool) {
	id := r.PathValue("id")
	wg, ok := c.deps.Instances.Get(id)
	if !ok {
		http.Error(w, "Bundle instance not found", http.StatusNotFound)
		return nil, false
	}
	return wg, true
}

func (c *BundleController) decode(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if r.ContentLength == 0 {
		return true
	}
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		http.Error(w, fmt.Sprintf("Invalid request body: %v", err), http.StatusBadRequest)
		return false
	}
	return true
}

func (c *BundleController) actionError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrUnknownProduct):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, service.ErrNoPicker):
		http.Error(w, err.Error(), http.StatusConflict)
	default:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// respond reports what the last action presented along with the current state
func (c *BundleController) respond(w http.ResponseWriter, wg *widget, result *service.SubmitResult) {
	frame := wg.presenter.Take()
	resp := models.ActionResponse{
		InstanceID: wg.svc.ID(),
		Changed:    frame.Renders > 0,
		View:       wg.svc.View(),
		Updates:    frame.Updates,
		Events:     wg.events.Drain(),
	}
	if resp.Updates == nil {
		resp.Updates = []models.SurfaceUpdate{}
	}
	if picker, open := wg.svc.Picker(); open {
		resp.Picker = picker
	}
	if len(frame.Alerts) > 0 {
		resp.Alert = frame.Alerts[len(frame.Alerts)-1]
	}
	if result != nil {
		resp.Redirect = result.Redirect
	}
	c.writeJSON(w, http.StatusOK, resp)
}

func (c *BundleController) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		c.deps.Logger.Error("controller", "error encoding response", map[string]interface{}{"error": err})
	}
}
