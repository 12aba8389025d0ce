package mapwidget

import (
	"slices"
	"sync"

	"github.com/paulmach/orb"
)

// Feature is the widget's copy of one geometry, always in EPSG:3857.
// ID is the source record id, empty for features that were never saved.
type Feature struct {
	ID       string
	Geometry orb.Geometry
}

// VectorSource is an ordered, editable set of features.
type VectorSource struct {
	mu       sync.RWMutex
	features []*Feature
}

func NewVectorSource() *VectorSource {
	return &VectorSource{} //nolint:exhaustruct
}

func (vs *VectorSource) AddFeature(f *Feature) {
	vs.mu.Lock()
	vs.features = append(vs.features, f)
	vs.mu.Unlock()
}

func (vs *VectorSource) AddFeatures(fs []*Feature) {
	vs.mu.Lock()
	vs.features = append(vs.features, fs...)
	vs.mu.Unlock()
}

// Replace swaps the whole content in one step.
func (vs *VectorSource) Replace(fs []*Feature) {
	vs.mu.Lock()
	vs.features = append(vs.features[:0:0], fs...)
	vs.mu.Unlock()
}

// RemoveFeature reports whether f was present.
func (vs *VectorSource) RemoveFeature(f *Feature) bool {
	vs.mu.Lock()
	defer vs.mu.Unlock()

	i := slices.Index(vs.features, f)
	if i < 0 {
		return false
	}

	vs.features = slices.Delete(vs.features, i, i+1)

	return true
}

func (vs *VectorSource) Clear() {
	vs.mu.Lock()
	vs.features = nil
	vs.mu.Unlock()
}

func (vs *VectorSource) Features() []*Feature {
	vs.mu.RLock()
	defer vs.mu.RUnlock()

	return slices.Clone(vs.features)
}

func (vs *VectorSource) Len() int {
	vs.mu.RLock()
	defer vs.mu.RUnlock()

	return len(vs.features)
}
