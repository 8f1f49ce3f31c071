/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package anim

import (
	"testing"
	"time"
)

var epoch = time.Date(2024, 8, 28, 6, 0, 0, 0, time.UTC)

func TestDrawingClampsAndHolds(t *testing.T) {
	clk := NewManualClock(epoch)
	cfg := DefaultConfig()
	cfg.Speed = 2
	m := NewMachine(cfg, 100, clk.Now())

	tr := m.Tick(clk.Advance(time.Second))
	s := m.State()
	if s.Progress != 99 {
		t.Fatalf("progress = %v, want 99", s.Progress)
	}
	if s.Phase != PhaseHolding || tr.From != PhaseDrawing || tr.To != PhaseHolding {
		t.Fatalf("expected drawing->holding, got %+v", tr)
	}
	if !s.PhaseEnteredAt.Equal(clk.Now()) {
		t.Fatalf("entry time not recorded")
	}
}

func TestHoldThenFadeThenReset(t *testing.T) {
	clk := NewManualClock(epoch)
	cfg := DefaultConfig()
	cfg.Speed = 2
	m := NewMachine(cfg, 100, clk.Now())
	m.Tick(clk.Advance(time.Second))

	m.Tick(clk.Advance(1499 * time.Millisecond))
	if m.State().Phase != PhaseHolding {
		t.Fatalf("left holding too early")
	}
	tr := m.Tick(clk.Advance(time.Millisecond))
	if m.State().Phase != PhaseFading || tr.To != PhaseFading {
		t.Fatalf("expected fading after 1500ms hold, got %v", m.State().Phase)
	}
	if m.State().Progress != 99 {
		t.Fatalf("holding must not move progress")
	}

	m.Tick(clk.Advance(1000 * time.Millisecond))
	if a := m.State().PathAlpha; a < 0.49 || a > 0.51 {
		t.Fatalf("half-way alpha = %v", a)
	}
	if m.State().SpriteAlpha != m.State().PathAlpha {
		t.Fatalf("sprite and path alpha must match while fading")
	}

	tr = m.Tick(clk.Advance(1000 * time.Millisecond))
	s := m.State()
	if !tr.Reset || s.Phase != PhaseDrawing || s.Progress != 0 || s.PathAlpha != 1 || s.SpriteAlpha != 1 {
		t.Fatalf("expected full reset, got %+v (transition %+v)", s, tr)
	}
}

func TestExplicitResetIsIdempotent(t *testing.T) {
	clk := NewManualClock(epoch)
	m := NewMachine(DefaultConfig(), 500, clk.Now())
	m.Tick(clk.Advance(3 * time.Second))
	now := clk.Advance(time.Millisecond)
	m.Reset(now)
	once := m.State()
	m.Reset(now)
	if m.State() != once {
		t.Fatalf("reset not idempotent: %+v vs %+v", m.State(), once)
	}
	if once.Progress != 0 || once.Phase != PhaseDrawing || once.PathAlpha != 1 {
		t.Fatalf("reset state wrong: %+v", once)
	}
}

func TestResetFromEveryPhase(t *testing.T) {
	for _, target := range []Phase{PhaseDrawing, PhaseHolding, PhaseFading} {
		clk := NewManualClock(epoch)
		m := NewMachine(DefaultConfig(), 10, clk.Now())
		for i := 0; m.State().Phase != target && i < 100; i++ {
			m.Tick(clk.Advance(100 * time.Millisecond))
		}
		if m.State().Phase != target {
			t.Fatalf("could not reach %v", target)
		}
		tr := m.Reset(clk.Now())
		if tr.From != target || m.State().Phase != PhaseDrawing || m.State().Progress != 0 {
			t.Fatalf("reset from %v failed: %+v", target, m.State())
		}
	}
}

func TestProgressMonotonicAndBounded(t *testing.T) {
	clk := NewManualClock(epoch)
	m := NewMachine(DefaultConfig(), 250, clk.Now())
	prev := m.State().Progress
	for i := 0; i < 400 && m.State().Phase == PhaseDrawing; i++ {
		m.Tick(clk.Advance(16 * time.Millisecond))
		s := m.State()
		if s.Phase == PhaseDrawing && s.Progress < prev {
			t.Fatalf("progress decreased: %v -> %v", prev, s.Progress)
		}
		if s.Progress > 249 {
			t.Fatalf("progress %v exceeds last index", s.Progress)
		}
		prev = s.Progress
	}
}

func TestClockGoingBackwardsDoesNotRewind(t *testing.T) {
	clk := NewManualClock(epoch)
	m := NewMachine(DefaultConfig(), 1000, clk.Now())
	m.Tick(clk.Advance(time.Second))
	before := m.State().Progress
	clk.Set(epoch)
	m.Tick(clk.Now())
	if m.State().Progress != before {
		t.Fatalf("progress moved on backwards clock: %v -> %v", before, m.State().Progress)
	}
}

func TestLivenessReturnsToDrawing(t *testing.T) {
	for _, start := range []Phase{PhaseDrawing, PhaseHolding, PhaseFading} {
		clk := NewManualClock(epoch)
		m := NewMachine(DefaultConfig(), 60, clk.Now())
		for m.State().Phase != start {
			m.Tick(clk.Advance(50 * time.Millisecond))
		}
		sawReset := false
		for i := 0; i < 1000; i++ {
			tr := m.Tick(clk.Advance(50 * time.Millisecond))
			if tr.Reset {
				sawReset = true
				break
			}
		}
		if !sawReset || m.State().Phase != PhaseDrawing {
			t.Fatalf("from %v: machine never cycled back to drawing", start)
		}
	}
}

func TestPauseFreezesState(t *testing.T) {
	clk := NewManualClock(epoch)
	m := NewMachine(DefaultConfig(), 1000, clk.Now())
	m.Tick(clk.Advance(time.Second))
	m.Pause(clk.Now())
	frozen := m.State()
	for i := 0; i < 10; i++ {
		if tr := m.Tick(clk.Advance(time.Second)); tr.Changed() {
			t.Fatalf("paused machine reported a change")
		}
	}
	if m.State().Progress != frozen.Progress || m.State().Running {
		t.Fatalf("paused state evolved")
	}
	m.Play(clk.Now())
	m.Tick(clk.Advance(100 * time.Millisecond))
	if got, want := m.State().Progress, frozen.Progress+5; got < want-1e-9 || got > want+1e-9 {
		t.Fatalf("after resume progress = %v, want %v", got, want)
	}
}

func TestPauseExcludedFromHoldTimer(t *testing.T) {
	clk := NewManualClock(epoch)
	cfg := DefaultConfig()
	cfg.Speed = 20
	m := NewMachine(cfg, 10, clk.Now())
	m.Tick(clk.Advance(time.Second))
	if m.State().Phase != PhaseHolding {
		t.Fatalf("expected holding")
	}
	m.Tick(clk.Advance(time.Second))
	m.Pause(clk.Now())
	clk.Advance(10 * time.Second)
	m.Play(clk.Now())
	m.Tick(clk.Advance(400 * time.Millisecond))
	if m.State().Phase != PhaseHolding {
		t.Fatalf("paused time counted towards hold")
	}
	m.Tick(clk.Advance(100 * time.Millisecond))
	if m.State().Phase != PhaseFading {
		t.Fatalf("expected fading after 1500ms of running hold, got %v", m.State().Phase)
	}
}

func TestEmptySequenceStaysDrawing(t *testing.T) {
	clk := NewManualClock(epoch)
	m := NewMachine(DefaultConfig(), 0, clk.Now())
	for i := 0; i < 100; i++ {
		m.Tick(clk.Advance(time.Second))
	}
	s := m.State()
	if s.Phase != PhaseDrawing || s.Progress != 0 {
		t.Fatalf("empty sequence state: %+v", s)
	}
}

func TestSequenceChangeResets(t *testing.T) {
	clk := NewManualClock(epoch)
	m := NewMachine(DefaultConfig(), 100, clk.Now())
	m.Tick(clk.Advance(time.Second))
	tr := m.SetSequenceLength(40, clk.Now())
	if !tr.Reset || m.State().Progress != 0 || m.Length() != 40 {
		t.Fatalf("sequence change must reset: %+v", m.State())
	}
}

func TestSpeedClamp(t *testing.T) {
	m := NewMachine(DefaultConfig(), 10, epoch)
	m.SetSpeed(1000)
	if m.Speed() != MaxSpeed {
		t.Fatalf("speed = %v", m.Speed())
	}
	m.SetSpeed(0)
	if m.Speed() != MinSpeed {
		t.Fatalf("speed = %v", m.Speed())
	}
}

func TestTransitionTable(t *testing.T) {
	cases := []struct {
		from, to Phase
		ok       bool
	}{
		{PhaseDrawing, PhaseHolding, true},
		{PhaseHolding, PhaseFading, true},
		{PhaseFading, PhaseDrawing, true},
		{PhaseHolding, PhaseDrawing, true},
		{PhaseDrawing, PhaseFading, false},
		{PhaseFading, PhaseHolding, false},
	}
	for _, tc := range cases {
		if got := CanTransition(tc.from, tc.to); got != tc.ok {
			t.Fatalf("CanTransition(%v, %v) = %v", tc.from, tc.to, got)
		}
	}
}
