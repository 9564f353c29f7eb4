package service

import (
	"sync"

	"tshirt-bundle/models"
)

// RecordingPresenter collects what an instance asked to show so it can be
// returned to the page with the response of the action that caused it.
type RecordingPresenter struct {
	mu          sync.Mutex
	view        models.BundleView
	updates     []models.SurfaceUpdate
	renders     int
	alerts      []string
	navigations []string
}

// Ensure RecordingPresenter implements Presenter
var _ Presenter = (*RecordingPresenter)(nil)

func (p *RecordingPresenter) Render(view models.BundleView, updates []models.SurfaceUpdate) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.view = view
	p.updates = updates
	p.renders++
}

func (p *RecordingPresenter) Alert(message string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.alerts = append(p.alerts, message)
}

func (p *RecordingPresenter) Navigate(url string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.navigations = append(p.navigations, url)
}

// Frame is everything presented since the previous Take
type Frame struct {
	View        models.BundleView
	Updates     []models.SurfaceUpdate
	Renders     int
	Alerts      []string
	Navigations []string
}

// Take returns the pending frame and resets the counters. The last view is
// kept so an action without a render still reports the current state.
func (p *RecordingPresenter) Take() Frame {
	p.mu.Lock()
	defer p.mu.Unlock()
	f := Frame{
		View:        p.view,
		Updates:     p.updates,
		Renders:     p.renders,
		Alerts:      p.alerts,
		Navigations: p.navigations,
	}
	p.updates = nil
	p.renders = 0
	p.alerts = nil
	p.navigations = nil
	return f
}
