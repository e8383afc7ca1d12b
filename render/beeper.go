package render

import (
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/speaker"
	"github.com/setanarut/simcollide/sensor"
)

const (
	sampleRate   = beep.SampleRate(44100)
	toneDuration = 150 * time.Millisecond
	toneRamp     = 10 * time.Millisecond
	toneVolume   = 0.3
)

// ModeTone returns the pitch announcing a mode: a major third above the
// previous mode, starting at A4.
func ModeTone(mode sensor.Mode) float64 {
	return 440 * math.Pow(2, float64(mode)*4/12)
}

// tone is a sine wave with a linear attack and release.
type tone struct {
	freq     float64
	rate     beep.SampleRate
	position int
	total    int
	ramp     int
}

// NewTone creates a streamer that plays freq for duration.
func NewTone(freq float64, duration time.Duration, rate beep.SampleRate) beep.Streamer {
	return &tone{freq: freq, rate: rate, total: rate.N(duration), ramp: rate.N(toneRamp)}
}

func (t *tone) Stream(samples [][2]float64) (n int, ok bool) {
	for i := range samples {
		if t.position >= t.total {
			return i, i > 0
		}
		vol := toneVolume
		if t.ramp > 0 {
			if t.position < t.ramp {
				vol *= float64(t.position) / float64(t.ramp)
			} else if left := t.total - t.position; left < t.ramp {
				vol *= float64(left) / float64(t.ramp)
			}
		}
		v := vol * math.Sin(2*math.Pi*t.freq*float64(t.position)/float64(t.rate))
		samples[i][0] = v
		samples[i][1] = v
		t.position++
	}
	return len(samples), true
}

func (t *tone) Err() error { return nil }

// Beeper plays a short tone through the speaker whenever the mode changes.
type Beeper struct {
	mu          sync.Mutex
	mixer       *beep.Mixer
	initialized bool
}

// NewBeeper returns a silent beeper. Call Init before Play.
func NewBeeper() *Beeper {
	return &Beeper{mixer: &beep.Mixer{}}
}

// Init opens the speaker.
func (b *Beeper) Init() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.initialized {
		return nil
	}
	if err := speaker.Init(sampleRate, sampleRate.N(100*time.Millisecond)); err != nil {
		return fmt.Errorf("init speaker: %w", err)
	}
	speaker.Play(b.mixer)
	b.initialized = true
	return nil
}

// Play queues the tone of mode. It does nothing before Init.
func (b *Beeper) Play(mode sensor.Mode) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.initialized {
		return
	}
	speaker.Lock()
	b.mixer.Add(NewTone(ModeTone(mode), toneDuration, sampleRate))
	speaker.Unlock()
}

// Close silences pending tones.
func (b *Beeper) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.initialized {
		return
	}
	speaker.Lock()
	b.mixer.Clear()
	speaker.Unlock()
	b.initialized = false
}
