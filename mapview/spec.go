package mapview

import (
	"encoding/json"
	"sync"

	"github.com/eringen/tripengine/content"
)

// Camera is a map position.
type Camera struct {
	Center content.Coords `json:"center"`
	Zoom   float64        `json:"zoom"`
}

// Fit is a recorded bounds fit.
type Fit struct {
	Bounds  Bounds  `json:"bounds"`
	Padding int     `json:"padding"`
	MaxZoom float64 `json:"maxZoom"`
}

// Spec is everything tripmap.js needs to build one map.
type Spec struct {
	Container string         `json:"container"`
	Style     string         `json:"style"`
	Center    content.Coords `json:"center"`
	Zoom      float64        `json:"zoom"`
	Compact   bool           `json:"compact,omitempty"`
	Markers   []Marker       `json:"markers"`
	Fit       *Fit           `json:"fit,omitempty"`
	Jump      *Camera        `json:"jump,omitempty"`
	FlyTo     *Camera        `json:"flyTo,omitempty"`
}

// SpecBackend records map commands as Specs, one per container.
type SpecBackend struct {
	mu    sync.Mutex
	order []Handle
	specs map[Handle]*Spec
}

// NewSpecBackend returns an empty SpecBackend.
func NewSpecBackend() *SpecBackend {
	return &SpecBackend{specs: make(map[Handle]*Spec)}
}

// Create implements Backend. The container id doubles as the handle, so
// creating a map in a used container replaces it.
func (b *SpecBackend) Create(container, styleURL string, center content.Coords, zoom float64, compact bool) Handle {
	b.mu.Lock()
	defer b.mu.Unlock()
	h := Handle(container)
	if _, ok := b.specs[h]; !ok {
		b.order = append(b.order, h)
	}
	b.specs[h] = &Spec{
		Container: container,
		Style:     styleURL,
		Center:    center,
		Zoom:      zoom,
		Compact:   compact,
		Markers:   []Marker{},
	}
	return h
}

func (b *SpecBackend) with(h Handle, fn func(*Spec)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if s, ok := b.specs[h]; ok {
		fn(s)
	}
}

// AddMarker implements Backend.
func (b *SpecBackend) AddMarker(h Handle, m Marker) {
	b.with(h, func(s *Spec) { s.Markers = append(s.Markers, m) })
}

// FitBounds implements Backend.
func (b *SpecBackend) FitBounds(h Handle, bounds Bounds, padding int, maxZoom float64) {
	b.with(h, func(s *Spec) { s.Fit = &Fit{Bounds: bounds, Padding: padding, MaxZoom: maxZoom} })
}

// JumpTo implements Backend.
func (b *SpecBackend) JumpTo(h Handle, center content.Coords, zoom float64) {
	b.with(h, func(s *Spec) {
		s.Fit = nil
		s.Jump = &Camera{Center: center, Zoom: zoom}
	})
}

// FlyTo implements Backend.
func (b *SpecBackend) FlyTo(h Handle, center content.Coords, zoom float64) {
	b.with(h, func(s *Spec) { s.FlyTo = &Camera{Center: center, Zoom: zoom} })
}

// Remove implements Backend.
func (b *SpecBackend) Remove(h Handle) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.specs[h]; !ok {
		return
	}
	delete(b.specs, h)
	for i, o := range b.order {
		if o == h {
			b.order = append(b.order[:i], b.order[i+1:]...)
			break
		}
	}
}

// Spec returns a copy of the spec recorded for h.
func (b *SpecBackend) Spec(h Handle) (Spec, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	s, ok := b.specs[h]
	if !ok {
		return Spec{}, false
	}
	return *s, true
}

// Specs returns every live spec in creation order.
func (b *SpecBackend) Specs() []Spec {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]Spec, 0, len(b.order))
	for _, h := range b.order {
		out = append(out, *b.specs[h])
	}
	return out
}

// MarshalJSON encodes the live specs as a JSON array.
func (b *SpecBackend) MarshalJSON() ([]byte, error) {
	return json.Marshal(b.Specs())
}
