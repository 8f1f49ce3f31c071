/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package anim implements the progressive-draw state machine: a progress
// cursor advanced by elapsed time that cycles drawing, holding and fading.
package anim

import (
	"fmt"
	"math"
	"time"
)

// Phase is the current animation phase.
type Phase int

const (
	PhaseDrawing Phase = iota
	PhaseHolding
	PhaseFading
)

func (p Phase) String() string {
	switch p {
	case PhaseDrawing:
		return "drawing"
	case PhaseHolding:
		return "holding"
	case PhaseFading:
		return "fading"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}

// validTransitions lists the successors of each phase. Drawing is reachable
// from every phase through an explicit reset.
var validTransitions = map[Phase][]Phase{
	PhaseDrawing: {PhaseHolding, PhaseDrawing},
	PhaseHolding: {PhaseFading, PhaseDrawing},
	PhaseFading:  {PhaseDrawing},
}

// CanTransition reports whether from -> to is a legal phase change.
func CanTransition(from, to Phase) bool {
	for _, p := range validTransitions[from] {
		if p == to {
			return true
		}
	}
	return false
}

// Speed bounds applied by SetSpeed.
const (
	MinSpeed = 0.1
	MaxSpeed = 20
)

// Config holds animation tuning.
type Config struct {
	// Speed multiplies UnitsPerSecond.
	Speed float64
	// UnitsPerSecond is the progress advance per second at speed 1.
	UnitsPerSecond float64
	Hold           time.Duration
	Fade           time.Duration
}

// DefaultConfig returns the stock tuning.
func DefaultConfig() Config {
	return Config{
		Speed:          1,
		UnitsPerSecond: 50,
		Hold:           1500 * time.Millisecond,
		Fade:           2000 * time.Millisecond,
	}
}

func (c Config) normalized() Config {
	d := DefaultConfig()
	if !(c.Speed > 0) {
		c.Speed = d.Speed
	}
	c.Speed = clampSpeed(c.Speed)
	if !(c.UnitsPerSecond > 0) || math.IsInf(c.UnitsPerSecond, 0) {
		c.UnitsPerSecond = d.UnitsPerSecond
	}
	if c.Hold < 0 {
		c.Hold = 0
	}
	if c.Fade < 0 {
		c.Fade = 0
	}
	return c
}

// State is the externally visible animation state.
type State struct {
	Progress       float64
	Phase          Phase
	PhaseEnteredAt time.Time
	SpriteAlpha    float64
	PathAlpha      float64
	Running        bool
}

// Index returns the integer part of Progress.
func (s State) Index() int { return int(s.Progress) }

// Transition describes what one call changed.
type Transition struct {
	From  Phase
	To    Phase
	Reset bool
	At    time.Time
}

// Changed reports whether the phase changed or a reset happened.
func (t Transition) Changed() bool { return t.From != t.To || t.Reset }

// Machine owns one AnimationState. It is not safe for concurrent use; the
// frame loop is its only writer.
type Machine struct {
	cfg      Config
	length   int
	state    State
	lastTick time.Time
	pausedAt time.Time
}

// NewMachine creates a running machine at the initial state.
func NewMachine(cfg Config, length int, now time.Time) *Machine {
	m := &Machine{cfg: cfg.normalized(), length: max(length, 0)}
	m.state.Running = true
	m.reset(now)
	return m
}

func (m *Machine) State() State   { return m.state }
func (m *Machine) Config() Config { return m.cfg }
func (m *Machine) Length() int    { return m.length }
func (m *Machine) Speed() float64 { return m.cfg.Speed }
func (m *Machine) Running() bool  { return m.state.Running }

// SetSpeed changes the speed factor, clamped to [MinSpeed, MaxSpeed].
func (m *Machine) SetSpeed(s float64) {
	if math.IsNaN(s) {
		return
	}
	m.cfg.Speed = clampSpeed(s)
}

// SetTiming changes hold and fade durations.
func (m *Machine) SetTiming(hold, fade time.Duration) {
	m.cfg.Hold = max(hold, 0)
	m.cfg.Fade = max(fade, 0)
}

// SetSequenceLength installs a new sequence length. Progress indexes the old
// sequence, so the state is reset.
func (m *Machine) SetSequenceLength(n int, now time.Time) Transition {
	m.length = max(n, 0)
	return m.Reset(now)
}

// Reset forces {progress 0, alpha 1, drawing} regardless of phase. The
// running flag is left as is.
func (m *Machine) Reset(now time.Time) Transition {
	from := m.state.Phase
	m.reset(now)
	return Transition{From: from, To: PhaseDrawing, Reset: true, At: now}
}

func (m *Machine) reset(now time.Time) {
	m.state.Progress = 0
	m.state.Phase = PhaseDrawing
	m.state.PhaseEnteredAt = now
	m.state.SpriteAlpha = 1
	m.state.PathAlpha = 1
	m.lastTick = now
	if !m.state.Running {
		m.pausedAt = now
	}
}

// Pause stops state evolution. Frames still render the frozen state.
func (m *Machine) Pause(now time.Time) {
	if !m.state.Running {
		return
	}
	m.state.Running = false
	m.pausedAt = now
}

// Play resumes evolution. Phase timers exclude the paused interval.
func (m *Machine) Play(now time.Time) {
	if m.state.Running {
		return
	}
	if paused := now.Sub(m.pausedAt); paused > 0 {
		m.state.PhaseEnteredAt = m.state.PhaseEnteredAt.Add(paused)
	}
	m.state.Running = true
	m.lastTick = now
}

// Toggle flips between Play and Pause and returns the new running flag.
func (m *Machine) Toggle(now time.Time) bool {
	if m.state.Running {
		m.Pause(now)
	} else {
		m.Play(now)
	}
	return m.state.Running
}

// Tick advances the machine to now. It performs at most one phase change.
func (m *Machine) Tick(now time.Time) Transition {
	dt := now.Sub(m.lastTick)
	if dt < 0 {
		dt = 0
	}
	m.lastTick = now
	from := m.state.Phase
	tr := Transition{From: from, To: from, At: now}
	if !m.state.Running {
		return tr
	}

	switch m.state.Phase {
	case PhaseDrawing:
		if m.length == 0 {
			return tr
		}
		last := float64(m.length - 1)
		m.state.Progress += m.cfg.Speed * m.cfg.UnitsPerSecond * dt.Seconds()
		if m.state.Progress >= last {
			m.state.Progress = last
			m.enter(PhaseHolding, now)
		}
	case PhaseHolding:
		if now.Sub(m.state.PhaseEnteredAt) >= m.cfg.Hold {
			m.enter(PhaseFading, now)
		}
	case PhaseFading:
		alpha := 0.0
		if m.cfg.Fade > 0 {
			alpha = math.Max(0, 1-float64(now.Sub(m.state.PhaseEnteredAt))/float64(m.cfg.Fade))
		}
		m.state.SpriteAlpha = alpha
		m.state.PathAlpha = alpha
		if alpha <= 0 {
			m.reset(now)
			tr.Reset = true
		}
	}
	tr.To = m.state.Phase
	return tr
}

func (m *Machine) enter(p Phase, now time.Time) {
	if !CanTransition(m.state.Phase, p) {
		return
	}
	m.state.Phase = p
	m.state.PhaseEnteredAt = now
}

func clampSpeed(s float64) float64 {
	return math.Max(MinSpeed, math.Min(MaxSpeed, s))
}
