package controller_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tshirt-bundle/app/controller"
	"tshirt-bundle/app/router"
	"tshirt-bundle/logger"
	"tshirt-bundle/models"
	"tshirt-bundle/repository"
	"tshirt-bundle/service"
)

type stubCart struct {
	err   error
	calls int
}

func (s *stubCart) Add(ctx context.Context, req *models.CartAddRequest) (json.RawMessage, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return json.RawMessage(`{"items":[]}`), nil
}

type stubPreview struct{}

func (stubPreview) Capture(ctx context.Context, instanceID, format string) ([]byte, error) {
	return []byte("%PDF-" + instanceID), nil
}

type stubThumbs struct{}

func (stubThumbs) Allowed(src string) bool {
	return !strings.Contains(src, "://")
}

func (s stubThumbs) Thumbnail(ctx context.Context, src, size string) ([]byte, error) {
	if !s.Allowed(src) {
		return nil, service.ErrImageHostDenied
	}
	if strings.Contains(src, "missing") {
		return nil, service.ErrImageSource
	}
	return []byte{0xff, 0xd8}, nil
}

var instanceIDPattern = regexp.MustCompile(`data-instance-id="([^"]+)"`)

func testCards() []models.Card {
	return []models.Card{
		{ProductID: "a", DefaultVariantID: "111", Title: "Tee A", Image: "a.jpg", PriceCents: 3000, VariantCount: 1},
		{ProductID: "b", DefaultVariantID: "222", Title: "Tee B", Image: "b.jpg", PriceCents: 3000, VariantCount: 1},
		{ProductID: "c", DefaultVariantID: "333", Title: "Tee C", Image: "c.jpg", PriceCents: 3000, ComparePriceCents: 4000, VariantCount: 1},
		{
			ProductID:        "v",
			DefaultVariantID: "401",
			Title:            "Graphic Tee",
			Image:            "graphic.jpg",
			PriceCents:       3200,
			VariantCount:     2,
			OptionsJSON:      `["Size"]`,
			VariantsJSON:     `[{"id": 401, "options": ["S"], "available": false}, {"id": 402, "options": ["M"], "available": true}]`,
		},
	}
}

func newMux(t *testing.T, cart *stubCart) *http.ServeMux {
	t.Helper()
	c := controller.NewBundleController(controller.BundleControllerDeps{
		Bundle:    models.BundleConfig{ID: "tshirt-bundle", Size: 3, PriceCents: 7500, PriceDisplay: "$75"},
		Cards:     &repository.StaticCardRepository{Cards: testCards()},
		Instances: controller.NewInstanceStore(time.Minute),
		Cart:      cart,
		Schedule:  func(time.Duration, func()) {},
		CartURL:   "/cart",
		Preview:   stubPreview{},
		Thumbs:    stubThumbs{},
		Logger:    logger.NewNop(),
	})
	mux := http.NewServeMux()
	router.SetupRoutes(mux, &router.Controllers{Bundle: c})
	return mux
}

func openPage(t *testing.T, mux *http.ServeMux) string {
	t.Helper()
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/bundle", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	m := instanceIDPattern.FindStringSubmatch(rec.Body.String())
	require.Len(t, m, 2, "page carries the instance id")
	return m[1]
}

func post(t *testing.T, mux *http.ServeMux, path string, body interface{}) (*httptest.ResponseRecorder, models.ActionResponse) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	mux.ServeHTTP(rec, req)

	var resp models.ActionResponse
	if rec.Code == http.StatusOK {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	}
	return rec, resp
}

func TestBundlePage_RendersSurfaces(t *testing.T) {
	mux := newMux(t, &stubCart{})
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/bundle", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
	body := rec.Body.String()
	for _, marker := range []string{
		`id="BundleCount"`, `id="BundleTotal"`, `id="BundleCTA"`, `id="BundleCTAMobile"`,
		`id="BundleSlots"`, `id="BundleMobileSlots"`, `id="BundleMobileToggle"`,
		`data-slot-index="3"`, `data-step="3"`, `data-bar="3"`, `data-product-id="v"`,
		"Add 3 more",
	} {
		assert.Contains(t, body, marker)
	}
}

func TestBundleFlow_FillAndSubmit(t *testing.T) {
	cart := &stubCart{}
	mux := newMux(t, cart)
	id := openPage(t, mux)

	var resp models.ActionResponse
	for _, p := range []string{"a", "b", "c"} {
		_, resp = post(t, mux, "/bundle/"+id+"/add", map[string]string{"productId": p})
		assert.True(t, resp.Changed)
	}
	assert.Equal(t, 3, resp.View.Count)
	assert.Equal(t, "$75.00", resp.View.Total)
	assert.Equal(t, "Add to Cart", resp.View.CTA.Label)
	assert.False(t, resp.View.CTA.Disabled)
	assert.NotEmpty(t, resp.Updates)

	_, resp = post(t, mux, "/bundle/"+id+"/add", map[string]string{"productId": "a"})
	assert.False(t, resp.Changed)
	assert.Empty(t, resp.Updates)

	_, resp = post(t, mux, "/bundle/"+id+"/submit", nil)
	assert.Equal(t, 1, cart.calls)
	require.NotNil(t, resp.Redirect)
	assert.Equal(t, models.Redirect{URL: "/cart", DelayMs: 800}, *resp.Redirect)
	require.Len(t, resp.Events, 1)
	assert.Equal(t, "cart:update", resp.Events[0].Name)
	assert.Equal(t, 3, resp.Events[0].Data.ItemCount)
	assert.Equal(t, "Added! Redirecting...", resp.View.CTA.Label)
}

func TestBundleFlow_RejectedSubmitKeepsSelection(t *testing.T) {
	cart := &stubCart{err: &service.CartError{Status: 422, Message: "Sold out"}}
	mux := newMux(t, cart)
	id := openPage(t, mux)
	for _, p := range []string{"a", "b", "c"} {
		post(t, mux, "/bundle/"+id+"/add", map[string]string{"productId": p})
	}

	_, resp := post(t, mux, "/bundle/"+id+"/submit", nil)
	assert.Equal(t, "Sold out", resp.Alert)
	assert.Nil(t, resp.Redirect)
	assert.Empty(t, resp.Events)
	assert.Equal(t, 3, resp.View.Count)
	assert.Equal(t, "Add to Cart", resp.View.CTA.Label)
	assert.False(t, resp.View.CTA.Disabled)

	cart.err = errors.New("dial tcp: connection refused")
	_, resp = post(t, mux, "/bundle/"+id+"/submit", nil)
	assert.Equal(t, service.MessageNetworkFailure, resp.Alert)
}

func TestBundleFlow_Picker(t *testing.T) {
	mux := newMux(t, &stubCart{})
	id := openPage(t, mux)

	_, resp := post(t, mux, "/bundle/"+id+"/add", map[string]string{"productId": "v"})
	require.NotNil(t, resp.Picker, "multi-variant add opens the picker")
	assert.Equal(t, 0, resp.View.Count)

	_, resp = post(t, mux, "/bundle/"+id+"/picker/choose", map[string]string{"option": "Size", "value": "S"})
	require.NotNil(t, resp.Picker)
	assert.Equal(t, models.ResolutionUnavailable, resp.Picker.Resolution.Status)
	assert.False(t, resp.Picker.Resolution.ConfirmEnabled)

	_, resp = post(t, mux, "/bundle/"+id+"/picker/choose", map[string]string{"option": "Size", "value": "M"})
	assert.True(t, resp.Picker.Resolution.ConfirmEnabled)

	_, resp = post(t, mux, "/bundle/"+id+"/picker/confirm", nil)
	assert.Nil(t, resp.Picker)
	assert.Equal(t, 1, resp.View.Count)
	assert.Equal(t, "402", resp.View.Slots[0].VariantID)

	rec, _ := post(t, mux, "/bundle/"+id+"/picker/confirm", nil)
	assert.Equal(t, http.StatusConflict, rec.Code)

	_, resp = post(t, mux, "/bundle/"+id+"/picker/open", map[string]string{"productId": "v"})
	require.NotNil(t, resp.Picker)
	_, resp = post(t, mux, "/bundle/"+id+"/picker/cancel", nil)
	assert.Nil(t, resp.Picker)
}

func TestBundleFlow_RemoveAndToggle(t *testing.T) {
	mux := newMux(t, &stubCart{})
	id := openPage(t, mux)
	for _, p := range []string{"a", "b", "c"} {
		post(t, mux, "/bundle/"+id+"/add", map[string]string{"productId": p})
	}

	_, resp := post(t, mux, "/bundle/"+id+"/remove", map[string]int{"slotIndex": 1})
	assert.Equal(t, 2, resp.View.Count)
	assert.Equal(t, "222", resp.View.Slots[0].VariantID)

	_, resp = post(t, mux, "/bundle/"+id+"/remove", map[string]string{"productId": "c"})
	assert.Equal(t, 1, resp.View.Count)

	_, resp = post(t, mux, "/bundle/"+id+"/remove", map[string]int{"position": 0})
	assert.Equal(t, 0, resp.View.Count)
	assert.Equal(t, int64(0), resp.View.TotalCents)

	rec, _ := post(t, mux, "/bundle/"+id+"/remove", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	_, resp = post(t, mux, "/bundle/"+id+"/qty-add", map[string]string{"productId": "a"})
	assert.False(t, resp.Changed)

	_, resp = post(t, mux, "/bundle/"+id+"/toggle-mobile", nil)
	assert.True(t, resp.View.MobileExpanded)
	assert.Contains(t, resp.Updates, models.SurfaceUpdate{
		Selector: "#BundleMobileToggle",
		Attrs:    map[string]string{"aria-expanded": "true"},
	})
}

func TestBundleFlow_InstancesAreIsolated(t *testing.T) {
	mux := newMux(t, &stubCart{})
	first := openPage(t, mux)
	second := openPage(t, mux)
	require.NotEqual(t, first, second)

	post(t, mux, "/bundle/"+first+"/add", map[string]string{"productId": "a"})

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/bundle/"+second+"/view", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var resp models.ActionResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 0, resp.View.Count)
}

func TestBundleFlow_Errors(t *testing.T) {
	mux := newMux(t, &stubCart{})
	id := openPage(t, mux)

	rec, _ := post(t, mux, "/bundle/unknown/add", map[string]string{"productId": "a"})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec, _ = post(t, mux, "/bundle/"+id+"/add", map[string]string{"productId": "zzz"})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/bundle/"+id+"/add", strings.NewReader("{"))
	mux.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPreviewAndThumbnail(t *testing.T) {
	mux := newMux(t, &stubCart{})
	id := openPage(t, mux)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/bundle/"+id+"/preview?format=pdf", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	assert.Equal(t, "%PDF-"+id, rec.Body.String())

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/bundle/"+id+"/preview?format=gif", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/bundle/thumb?src=/a.jpg", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/jpeg", rec.Header().Get("Content-Type"))

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/bundle/thumb?src=/missing.jpg", nil))
	assert.Equal(t, http.StatusBadGateway, rec.Code)

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/bundle/thumb?src=http://127.0.0.1:9000/secret.png", nil))
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/bundle/thumb", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestBundleFlow_SlotImagesUseThumbnails(t *testing.T) {
	mux := newMux(t, &stubCart{})
	id := openPage(t, mux)

	_, resp := post(t, mux, "/bundle/"+id+"/add", map[string]string{"productId": "a"})
	require.True(t, resp.View.Slots[0].Filled)
	assert.Equal(t, "/bundle/thumb?src=a.jpg&size=thumb", resp.View.Slots[0].Image)

	var srcs []string
	for _, u := range resp.Updates {
		if strings.HasSuffix(u.Selector, ".bundle-slot__image") {
			srcs = append(srcs, u.Attrs["src"])
		}
	}
	assert.Equal(t, []string{"/bundle/thumb?src=a.jpg&size=thumb", "/bundle/thumb?src=a.jpg&size=thumb"}, srcs, "desktop and mobile slots")
}

func TestPing(t *testing.T) {
	mux := newMux(t, &stubCart{})
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ping", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}
