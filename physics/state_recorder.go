package physics

import (
	"encoding/binary"
	"errors"
	"math"

	"github.com/setanarut/vec"
)

var (
	// ErrStateUnderflow is returned when a read runs past the recorded data.
	ErrStateUnderflow = errors.New("physics: state recorder underflow")
	// ErrStateMismatch is returned when recorded state does not fit the receiver.
	ErrStateMismatch = errors.New("physics: recorded state does not match")
)

// StateRecorder is a little-endian byte stream used to save and restore
// simulation state. Writes append, reads consume from the front.
type StateRecorder struct {
	data []byte
	pos  int
}

// NewStateRecorder returns an empty recorder.
func NewStateRecorder() *StateRecorder {
	return &StateRecorder{}
}

// NewStateRecorderFromBytes returns a recorder that reads data.
func NewStateRecorderFromBytes(data []byte) *StateRecorder {
	return &StateRecorder{data: data}
}

// Bytes returns everything written so far.
func (r *StateRecorder) Bytes() []byte {
	return r.data
}

// Rewind moves the read position back to the start.
func (r *StateRecorder) Rewind() {
	r.pos = 0
}

// IsEOF reports whether all data has been read.
func (r *StateRecorder) IsEOF() bool {
	return r.pos >= len(r.data)
}

func (r *StateRecorder) WriteUint32(v uint32) {
	r.data = binary.LittleEndian.AppendUint32(r.data, v)
}

func (r *StateRecorder) WriteInt32(v int32) {
	r.WriteUint32(uint32(v))
}

func (r *StateRecorder) WriteFloat64(v float64) {
	r.data = binary.LittleEndian.AppendUint64(r.data, math.Float64bits(v))
}

func (r *StateRecorder) WriteBool(v bool) {
	if v {
		r.data = append(r.data, 1)
	} else {
		r.data = append(r.data, 0)
	}
}

func (r *StateRecorder) WriteVec2(v vec.Vec2) {
	r.WriteFloat64(v.X)
	r.WriteFloat64(v.Y)
}

func (r *StateRecorder) next(n int) ([]byte, error) {
	if len(r.data)-r.pos < n {
		return nil, ErrStateUnderflow
	}
	b := r.data[r.pos : r.pos+n]
	r.pos += n
	return b, nil
}

func (r *StateRecorder) ReadUint32() (uint32, error) {
	b, err := r.next(4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

func (r *StateRecorder) ReadInt32() (int32, error) {
	v, err := r.ReadUint32()
	return int32(v), err
}

func (r *StateRecorder) ReadFloat64() (float64, error) {
	b, err := r.next(8)
	if err != nil {
		return 0, err
	}
	return math.Float64frombits(binary.LittleEndian.Uint64(b)), nil
}

func (r *StateRecorder) ReadBool() (bool, error) {
	b, err := r.next(1)
	if err != nil {
		return false, err
	}
	return b[0] != 0, nil
}

func (r *StateRecorder) ReadVec2() (vec.Vec2, error) {
	x, err := r.ReadFloat64()
	if err != nil {
		return vec.Vec2{}, err
	}
	y, err := r.ReadFloat64()
	if err != nil {
		return vec.Vec2{}, err
	}
	return vec.Vec2{X: x, Y: y}, nil
}
