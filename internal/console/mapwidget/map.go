package mapwidget

import (
	"slices"
	"sync"

	"github.com/paulmach/orb"
)

// View is the visible window. Center is in EPSG:3857.
type View struct {
	Center orb.Point `json:"center"`
	Zoom   float64   `json:"zoom"`
}

// Map is the long lived widget a dashboard binds to. It signals Ready once a
// target has been attached.
type Map struct {
	mu           sync.RWMutex
	target       string
	layers       []Layer
	interactions []Interaction
	view         View
	sizeUpdates  int

	ready     chan struct{}
	readyOnce sync.Once
}

func New() *Map {
	return &Map{ //nolint:exhaustruct
		ready: make(chan struct{}),
	}
}

func (m *Map) Ready() <-chan struct{} {
	return m.ready
}

// SetTarget binds the widget to a host element. An empty target tears the
// binding down.
func (m *Map) SetTarget(target string) {
	m.mu.Lock()
	m.target = target
	m.mu.Unlock()

	if target != "" {
		m.readyOnce.Do(func() { close(m.ready) })
	}
}

func (m *Map) Target() string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.target
}

func (m *Map) AddLayer(l Layer) {
	m.mu.Lock()
	m.layers = append(m.layers, l)
	m.mu.Unlock()
}

func (m *Map) Layers() []Layer {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return slices.Clone(m.layers)
}

func (m *Map) AddInteraction(i Interaction) {
	m.mu.Lock()
	m.interactions = append(m.interactions, i)
	m.mu.Unlock()
}

func (m *Map) RemoveInteraction(i Interaction) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	idx := slices.Index(m.interactions, i)
	if idx < 0 {
		return false
	}

	m.interactions = slices.Delete(m.interactions, idx, idx+1)

	return true
}

func (m *Map) Interactions() []Interaction {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return slices.Clone(m.interactions)
}

func (m *Map) SetView(v View) {
	m.mu.Lock()
	m.view = v
	m.mu.Unlock()
}

func (m *Map) View() View {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.view
}

// UpdateSize recalculates the viewport after the host element settled.
func (m *Map) UpdateSize() {
	m.mu.Lock()
	m.sizeUpdates++
	m.mu.Unlock()
}

func (m *Map) SizeUpdates() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.sizeUpdates
}
