/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package audio plays short chimes when the animation changes phase. Audio is
// optional: any failure to open the output device degrades to silence.
package audio

import (
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
	"github.com/gopxl/beep/generators"
	"github.com/gopxl/beep/speaker"
	"pookalam/internal/anim"
	applog "pookalam/internal/log"
)

const sampleRate = beep.SampleRate(44100)

// Tone is one sine chime.
type Tone struct {
	Freq     float64
	Duration time.Duration
	Gain     float64 // linear, 0..1
}

var (
	// HoldTone marks a completed drawing.
	HoldTone = Tone{Freq: 660, Duration: 120 * time.Millisecond, Gain: 0.35}
	// ResetTone marks the loop starting over.
	ResetTone = Tone{Freq: 440, Duration: 80 * time.Millisecond, Gain: 0.3}
)

// ToneFor maps a transition to its chime, if any.
func ToneFor(tr anim.Transition) (Tone, bool) {
	switch {
	case tr.Reset:
		return ResetTone, true
	case tr.From != tr.To && tr.To == anim.PhaseHolding:
		return HoldTone, true
	default:
		return Tone{}, false
	}
}

// Chime builds a finite streamer for t: a sine tone cut to its duration with
// a short release so it does not click.
func Chime(t Tone) (beep.Streamer, error) {
	sine, err := generators.SineTone(sampleRate, t.Freq)
	if err != nil {
		return nil, err
	}
	n := sampleRate.N(t.Duration)
	shaped := &release{Streamer: beep.Take(n, sine), total: n, tail: sampleRate.N(20 * time.Millisecond)}
	if t.Gain <= 0 {
		return &effects.Volume{Streamer: shaped, Base: 2, Silent: true}, nil
	}
	return &effects.Volume{Streamer: shaped, Base: 2, Volume: math.Log2(t.Gain)}, nil
}

// release fades the last tail samples of a stream of known length to zero.
type release struct {
	beep.Streamer
	total, tail, pos int
}

func (r *release) Stream(samples [][2]float64) (int, bool) {
	n, ok := r.Streamer.Stream(samples)
	for i := 0; i < n; i++ {
		if left := r.total - r.pos; left < r.tail {
			v := float64(left) / float64(r.tail)
			samples[i][0] *= v
			samples[i][1] *= v
		}
		r.pos++
	}
	return n, ok
}

// Player reacts to animation transitions.
type Player interface {
	Cue(tr anim.Transition)
	Close()
}

// Silent is a Player that does nothing.
type Silent struct{}

func (Silent) Cue(anim.Transition) {}
func (Silent) Close()              {}

// Speaker plays chimes on the default output device through one mixer.
type Speaker struct {
	mu     sync.Mutex
	mixer  *beep.Mixer
	closed bool
	log    *slog.Logger
}

var initOnce struct {
	sync.Once
	err error
}

// New returns a Speaker when enabled and the device opens, otherwise Silent.
func New(enabled bool) Player {
	if !enabled {
		return Silent{}
	}
	l := applog.WithComponent("audio")
	initOnce.Do(func() {
		initOnce.err = speaker.Init(sampleRate, sampleRate.N(time.Second/10))
	})
	if initOnce.err != nil {
		l.Warn("audio unavailable, continuing silently", slog.Any("err", initOnce.err))
		return Silent{}
	}
	s := &Speaker{mixer: &beep.Mixer{}, log: l}
	speaker.Play(s.mixer)
	l.Debug("audio ready", slog.Int("sample_rate", int(sampleRate)))
	return s
}

// Cue queues the chime for tr, if it has one.
func (s *Speaker) Cue(tr anim.Transition) {
	tone, ok := ToneFor(tr)
	if !ok {
		return
	}
	st, err := Chime(tone)
	if err != nil {
		s.log.Debug("chime failed", slog.Any("err", err))
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	speaker.Lock()
	s.mixer.Add(st)
	speaker.Unlock()
}

// Close stops all chimes. The device stays open for the process lifetime.
func (s *Speaker) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	speaker.Lock()
	s.mixer.Clear()
	speaker.Unlock()
}
