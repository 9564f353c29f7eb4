package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"tshirt-bundle/logger"
	"tshirt-bundle/models"
)

const (
	// RedirectDelay is how long the success label stays up before going to the cart
	RedirectDelay = 800 * time.Millisecond

	BundleProperty        = "_bundle_id"
	MessageRejectFallback = "Could not add items to cart. Please try again."
	MessageNetworkFailure = "Something went wrong. Please try again."
)

// Scheduler runs f once after d
type Scheduler func(d time.Duration, f func())

// AfterFunc schedules with the runtime timer
func AfterFunc(d time.Duration, f func()) {
	time.AfterFunc(d, f)
}

// Gateway commits a complete selection to the cart.
// Phases: idle -> submitting -> redirecting on success, back to idle otherwise.
type Gateway struct {
	bundleID string
	cartURL  string
	cart     CartClientInterface
	notifier Notifier
	schedule Scheduler
	logger   logger.ILogger
	phase    models.SubmitPhase
}

// NewGateway creates a gateway in the idle phase
func NewGateway(bundleID, cartURL string, cart CartClientInterface, notifier Notifier, schedule Scheduler, log logger.ILogger) *Gateway {
	if schedule == nil {
		schedule = AfterFunc
	}
	return &Gateway{
		bundleID: bundleID,
		cartURL:  cartURL,
		cart:     cart,
		notifier: notifier,
		schedule: schedule,
		logger:   log,
		phase:    models.PhaseIdle,
	}
}

func (g *Gateway) Phase() models.SubmitPhase {
	return g.phase
}

// Busy reports whether a submission is in flight or finished; the widget's
// affordances are disabled while busy.
func (g *Gateway) Busy() bool {
	return g.phase != models.PhaseIdle
}

// Begin moves idle -> submitting when the bundle is complete and reports
// whether it did.
func (g *Gateway) Begin(complete bool) bool {
	if !complete || g.phase != models.PhaseIdle {
		return false
	}
	g.phase = models.PhaseSubmitting
	return true
}

// BuildRequest converts entries to the cart add payload
func (g *Gateway) BuildRequest(entries []models.SelectionEntry) (*models.CartAddRequest, error) {
	req := &models.CartAddRequest{Items: make([]models.CartLineItem, 0, len(entries))}
	for _, e := range entries {
		id, err := strconv.ParseInt(e.VariantID, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: variant id %q is not numeric", ErrCartTransport, e.VariantID)
		}
		req.Items = append(req.Items, models.CartLineItem{
			ID:         id,
			Quantity:   1,
			Properties: map[string]string{BundleProperty: g.bundleID},
		})
	}
	return req, nil
}

// Send builds and posts the request. It does no phase bookkeeping and may run
// without the owner's lock held.
func (g *Gateway) Send(ctx context.Context, entries []models.SelectionEntry) (json.RawMessage, error) {
	req, err := g.BuildRequest(entries)
	if err != nil {
		return nil, err
	}
	return g.cart.Add(ctx, req)
}

// Fail returns to idle and gives the message to show the shopper
func (g *Gateway) Fail(err error) string {
	g.phase = models.PhaseIdle

	var cartErr *CartError
	if errors.As(err, &cartErr) {
		g.logger.Warn("gateway", "cart rejected bundle", map[string]interface{}{"status": cartErr.Status, "message": cartErr.Message})
		if cartErr.Message != "" {
			return cartErr.Message
		}
		return MessageRejectFallback
	}

	g.logger.Error("gateway", "bundle add to cart error", map[string]interface{}{"error": err})
	return MessageNetworkFailure
}

// Succeed moves to redirecting, publishes the cart update and schedules navigate.
// Notification failures are logged and otherwise ignored.
func (g *Gateway) Succeed(ctx context.Context, resource json.RawMessage, itemCount int, navigate func(url string)) models.Redirect {
	g.phase = models.PhaseRedirecting

	event := models.CartUpdateEvent{
		Name:     models.CartUpdateEventName,
		Bubbles:  true,
		Resource: resource,
		SourceID: g.bundleID,
		Data: models.CartUpdateData{
			Source:    g.bundleID,
			ItemCount: itemCount,
		},
	}
	g.publish(ctx, event)

	url := g.cartURL
	g.schedule(RedirectDelay, func() { navigate(url) })

	g.logger.Info("gateway", "bundle added to cart", map[string]interface{}{"items": itemCount})
	return models.Redirect{URL: url, DelayMs: RedirectDelay.Milliseconds()}
}

func (g *Gateway) publish(ctx context.Context, event models.CartUpdateEvent) {
	if g.notifier == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			g.logger.Warn("gateway", "cart update notifier panicked", map[string]interface{}{"panic": fmt.Sprint(r)})
		}
	}()
	if err := g.notifier.Publish(ctx, event); err != nil {
		g.logger.Warn("gateway", "cart update notification failed", map[string]interface{}{"error": err.Error()})
	}
}
