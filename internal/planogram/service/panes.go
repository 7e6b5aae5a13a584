package service

import (
	"sync"

	"planogram-studio/internal/planogram/builder"
)

// ============================================================
// Pane Store
// ============================================================

// PaneState is the last committed layout of a comparison pane.
type PaneState struct {
	PlanogramID string          `json:"planogram_id"`
	Scale       float64         `json:"scale"`
	Generation  uint64          `json:"generation"`
	Refreshes   uint64          `json:"refreshes"`
	Result      *builder.Result `json:"layout"`
}

type pane struct {
	latest uint64
	state  *PaneState
}

// Panes holds independent comparison panes. Every load begins a new
// generation; a commit is accepted only for the latest generation of its pane,
// so a slow response can never overwrite a newer one.
type Panes struct {
	mu    sync.Mutex
	panes map[string]*pane
}

func NewPanes() *Panes {
	return &Panes{panes: make(map[string]*pane)}
}

func (p *Panes) get(name string) *pane {
	pn, ok := p.panes[name]
	if !ok {
		pn = &pane{}
		p.panes[name] = pn
	}
	return pn
}

// Begin starts a new load of the pane and returns its generation.
func (p *Panes) Begin(name string) uint64 {
	p.mu.Lock()
	defer p.mu.Unlock()

	pn := p.get(name)
	pn.latest++
	return pn.latest
}

// Commit stores the result of a load. It reports false when a newer load of
// the same pane has begun since.
func (p *Panes) Commit(name string, generation uint64, planogramID string, scale float64, res *builder.Result) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	pn := p.get(name)
	if generation != pn.latest {
		return false
	}
	pn.state = &PaneState{
		PlanogramID: planogramID,
		Scale:       scale,
		Generation:  generation,
		Result:      res,
	}
	return true
}

// Current returns the committed state of the pane.
func (p *Panes) Current(name string) (*PaneState, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	pn, ok := p.panes[name]
	if !ok || pn.state == nil {
		return nil, false
	}
	return pn.state, true
}

// Settled returns the committed state when no newer load is in flight.
func (p *Panes) Settled(name string) (*PaneState, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	pn, ok := p.panes[name]
	if !ok || pn.state == nil || pn.state.Generation != pn.latest {
		return nil, false
	}
	return pn.state, true
}

// Refresh replaces the layout of a settled pane without starting a new
// generation. It reports false when a load has begun since the state was read.
func (p *Panes) Refresh(name string, generation uint64, res *builder.Result) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	pn, ok := p.panes[name]
	if !ok || pn.state == nil || generation != pn.latest || pn.state.Generation != generation {
		return false
	}
	next := *pn.state
	next.Refreshes++
	next.Result = res
	pn.state = &next
	return true
}
