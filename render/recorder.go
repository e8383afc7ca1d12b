// Package render turns the debug drawing of a space into frames that can be
// shown in a terminal, streamed to browsers or turned into sound cues.
package render

import (
	"encoding/json"
	"sync"

	"github.com/setanarut/simcollide/physics"
	"github.com/setanarut/vec"
)

// Primitive kinds
const (
	KindLine    = "line"
	KindArrow   = "arrow"
	KindPolygon = "polygon"
	KindText    = "text"
)

// Primitive is one recorded draw call in world space.
type Primitive struct {
	Kind   string         `json:"kind"`
	Points []vec.Vec2     `json:"points"`
	Color  physics.FColor `json:"color"`
	// Size is the arrow head size, the polygon radius or the text height.
	Size float64 `json:"size,omitempty"`
	Text string  `json:"text,omitempty"`
}

// Frame holds everything drawn during one step.
type Frame struct {
	Step       int         `json:"step"`
	Primitives []Primitive `json:"primitives"`
}

// Count returns the number of primitives of the given kind.
func (f Frame) Count(kind string) int {
	var n int
	for _, p := range f.Primitives {
		if p.Kind == kind {
			n++
		}
	}
	return n
}

// MarshalFrame encodes a frame as sent over the stream.
func MarshalFrame(f Frame) ([]byte, error) {
	return json.Marshal(f)
}

// Recorder is a physics.DebugRenderer that buffers primitives until Flush.
type Recorder struct {
	mu      sync.Mutex
	pending []Primitive
	step    int
}

// NewRecorder returns an empty recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) add(p Primitive) {
	r.mu.Lock()
	r.pending = append(r.pending, p)
	r.mu.Unlock()
}

func (r *Recorder) DrawLine(from, to vec.Vec2, color physics.FColor) {
	r.add(Primitive{Kind: KindLine, Points: []vec.Vec2{from, to}, Color: color})
}

func (r *Recorder) DrawArrow(from, to vec.Vec2, color physics.FColor, size float64) {
	r.add(Primitive{Kind: KindArrow, Points: []vec.Vec2{from, to}, Color: color, Size: size})
}

// DrawWirePolygon records the vertices already moved to world space.
func (r *Recorder) DrawWirePolygon(transform physics.Transform, verts []vec.Vec2, color physics.FColor, radius float64) {
	points := make([]vec.Vec2, len(verts))
	for i, v := range verts {
		points[i] = transform.Apply(v)
	}
	r.add(Primitive{Kind: KindPolygon, Points: points, Color: color, Size: radius})
}

func (r *Recorder) DrawText(position vec.Vec2, text string, color physics.FColor, height float64) {
	r.add(Primitive{Kind: KindText, Points: []vec.Vec2{position}, Color: color, Size: height, Text: text})
}

// Flush returns the primitives drawn since the last Flush as a frame and
// starts the next one.
func (r *Recorder) Flush() Frame {
	r.mu.Lock()
	defer r.mu.Unlock()
	f := Frame{Step: r.step, Primitives: r.pending}
	r.pending = nil
	r.step++
	return f
}

// Pending returns how many primitives wait for the next Flush.
func (r *Recorder) Pending() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.pending)
}
