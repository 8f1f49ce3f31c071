/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package scene wires generation, animation, view and rendering into one
// interactive session. Hosts drive it from a single frame-loop goroutine;
// sequence regeneration may run in the background and is published as an
// immutable snapshot.
package scene

import (
	"image"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"pookalam/internal/anim"
	"pookalam/internal/domain"
	"pookalam/internal/fractal"
	applog "pookalam/internal/log"
	"pookalam/internal/pattern"
	"pookalam/internal/render"
	"pookalam/internal/sampler"
	"pookalam/internal/telemetry"
	"pookalam/internal/vector"
	"pookalam/internal/view"
)

// Config is the session setup.
type Config struct {
	Params     domain.GenerationParameters
	Mode       domain.Mode
	Curve      string
	Resolution float64
	Turns      float64
	DepthSort  bool
	MaxPoints  int
	// Async moves regeneration off the frame loop.
	Async     bool
	Anim      anim.Config
	MinZoom   float64
	MaxZoom   float64
	WheelStep float64
	Render    render.Options
}

// DefaultConfig returns the stock session setup.
func DefaultConfig() Config {
	return Config{
		Params:     domain.DefaultParameters(),
		Mode:       domain.ModeFractal,
		Resolution: 0.01,
		Turns:      1,
		DepthSort:  true,
		MaxPoints:  sampler.DefaultMaxPoints,
		Anim:       anim.DefaultConfig(),
		MinZoom:    view.MinZoom,
		MaxZoom:    view.MaxZoom,
		WheelStep:  0.1,
		Render:     render.DefaultOptions(),
	}
}

// Request is the generation-relevant input of one snapshot.
type Request struct {
	Params     domain.GenerationParameters
	Mode       domain.Mode
	Curve      string
	Resolution float64
	Turns      float64
	DepthSort  bool
	MaxPoints  int
}

// Snapshot is an immutable generated sequence. Readers must not modify it.
type Snapshot struct {
	Generation uint64
	Request    Request
	Sequence   domain.Sequence
	Segments   []domain.Segment
	Sorted     bool
	Dropped    int
	Layers     int
	Primary    fractal.Basis
	Secondary  fractal.Basis
	Elapsed    time.Duration
}

// Build generates the snapshot for req. It never fails: an unknown curve
// yields an empty sequence.
func Build(req Request) *Snapshot {
	start := time.Now()
	s := &Snapshot{Request: req}
	var res sampler.Result
	if req.Mode == domain.ModeFractal {
		comp := pattern.New(req.Params)
		s.Layers = comp.Layers()
		s.Primary = comp.Primary()
		s.Secondary = comp.Secondary()
		res = sampler.Build(sampler.Request{
			Mode:       domain.ModeFractal,
			Composer:   comp,
			Domain:     sampler.Turns(req.Turns),
			Resolution: req.Resolution,
			DepthSort:  req.DepthSort,
			MaxPoints:  req.MaxPoints,
		})
	} else if c, err := sampler.LookupCurve(req.Curve); err == nil && c.Mode == req.Mode {
		sr := c.Request()
		sr.MaxPoints = req.MaxPoints
		res = sampler.Build(sr)
	}
	s.Sequence = res.Sequence
	s.Segments = res.Segments
	s.Sorted = res.Sorted
	s.Dropped = res.Dropped
	s.Elapsed = time.Since(start)
	return s
}

// Scene is one interactive session.
//
// Generation requests may come from any goroutine. Tick, the transport
// controls, the view controls and Frame belong to the frame loop.
type Scene struct {
	cfg   Config
	clock anim.Clock
	log   *slog.Logger

	mu  sync.Mutex // guards req
	req Request

	requested atomic.Uint64
	snap      atomic.Pointer[Snapshot]
	jobs      sync.WaitGroup

	// frame loop only
	cur     *Snapshot
	machine *anim.Machine
	view    view.Transform
	sprite  image.Image
	notify  func(anim.Transition)
}

// New builds the initial sequence synchronously.
func New(cfg Config, clock anim.Clock, logger *slog.Logger) *Scene {
	if clock == nil {
		clock = anim.SystemClock{}
	}
	if logger == nil {
		logger = applog.WithComponent("scene")
	}
	s := &Scene{
		cfg:   cfg,
		clock: clock,
		log:   logger,
		req: Request{
			Params:     cfg.Params,
			Mode:       cfg.Mode,
			Curve:      cfg.Curve,
			Resolution: cfg.Resolution,
			Turns:      cfg.Turns,
			DepthSort:  cfg.DepthSort,
			MaxPoints:  cfg.MaxPoints,
		},
		view: view.New().WithZoomRange(cfg.MinZoom, cfg.MaxZoom),
	}
	if s.req.Mode != domain.ModeFractal && s.req.Curve == "" {
		s.req.Curve = sampler.DefaultCurve(s.req.Mode)
	}
	snap := s.Regenerate()
	s.cur = snap
	s.machine = anim.NewMachine(cfg.Anim, len(snap.Sequence), clock.Now())
	return s
}

// Request returns the current generation request.
func (s *Scene) Request() Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.req
}

func (s *Scene) Params() domain.GenerationParameters { return s.Request().Params }

// SetParameters replaces the generation parameters and schedules a rebuild.
func (s *Scene) SetParameters(p domain.GenerationParameters) {
	s.update(func(r *Request) { r.Params = p })
}

// SetMode switches the point source. An empty curve selects the first
// catalogue entry for the mode.
func (s *Scene) SetMode(mode domain.Mode, curve string) {
	if mode != domain.ModeFractal && curve == "" {
		curve = sampler.DefaultCurve(mode)
	}
	s.update(func(r *Request) { r.Mode, r.Curve = mode, curve })
}

// SetDepthSort toggles the back-to-front ordering of fractal output.
func (s *Scene) SetDepthSort(on bool) {
	s.update(func(r *Request) { r.DepthSort = on })
}

func (s *Scene) update(fn func(*Request)) {
	s.mu.Lock()
	fn(&s.req)
	req := s.req
	s.mu.Unlock()
	gen := s.requested.Add(1)
	if !s.cfg.Async {
		s.publish(gen, req)
		return
	}
	s.jobs.Add(1)
	go func() {
		defer s.jobs.Done()
		if s.requested.Load() != gen {
			return // superseded before starting
		}
		s.publish(gen, req)
	}()
}

// Regenerate rebuilds the current request synchronously and returns the
// published snapshot.
func (s *Scene) Regenerate() *Snapshot {
	req := s.Request()
	gen := s.requested.Add(1)
	s.publish(gen, req)
	return s.snap.Load()
}

func (s *Scene) publish(gen uint64, req Request) {
	snap := Build(req)
	snap.Generation = gen
	for {
		cur := s.snap.Load()
		if cur != nil && cur.Generation >= gen {
			s.log.Debug("discarding stale sequence", "gen", gen, "current", cur.Generation)
			return
		}
		if s.snap.CompareAndSwap(cur, snap) {
			break
		}
	}
	s.log.Debug("sequence regenerated",
		"gen", gen,
		"mode", req.Mode.String(),
		"points", len(snap.Sequence),
		"segments", len(snap.Segments),
		"dropped", snap.Dropped,
		"elapsed", snap.Elapsed,
	)
	telemetry.Regenerated(req.Mode, req.Params, len(snap.Sequence), snap.Elapsed)
}

// Wait blocks until background regenerations have finished.
func (s *Scene) Wait() { s.jobs.Wait() }

// Snapshot returns the latest published sequence.
func (s *Scene) Snapshot() *Snapshot { return s.snap.Load() }

// OnTransition registers a callback for phase changes and resets observed
// by Tick. It runs on the frame loop.
func (s *Scene) OnTransition(fn func(anim.Transition)) { s.notify = fn }

// Tick adopts a newly published sequence, if any, and advances the
// animation to now.
func (s *Scene) Tick(now time.Time) anim.Transition {
	if snap := s.snap.Load(); snap != s.cur {
		s.cur = snap
		tr := s.machine.SetSequenceLength(len(snap.Sequence), now)
		s.emit(tr)
	}
	tr := s.machine.Tick(now)
	s.emit(tr)
	return tr
}

func (s *Scene) emit(tr anim.Transition) {
	if !tr.Changed() {
		return
	}
	s.log.Debug("phase change", "from", tr.From.String(), "to", tr.To.String(), "reset", tr.Reset)
	if s.notify != nil {
		s.notify(tr)
	}
}

func (s *Scene) Now() time.Time         { return s.clock.Now() }
func (s *Scene) State() anim.State      { return s.machine.State() }
func (s *Scene) Machine() *anim.Machine { return s.machine }

func (s *Scene) Play()  { s.machine.Play(s.clock.Now()) }
func (s *Scene) Pause() { s.machine.Pause(s.clock.Now()) }

// TogglePlay flips play/pause and returns whether the animation now runs.
func (s *Scene) TogglePlay() bool { return s.machine.Toggle(s.clock.Now()) }

// Reset restarts the drawing from the first point.
func (s *Scene) Reset() { s.emit(s.machine.Reset(s.clock.Now())) }

func (s *Scene) SetSpeed(v float64) { s.machine.SetSpeed(v) }
func (s *Scene) Speed() float64     { return s.machine.Speed() }

// View returns the current pan/zoom.
func (s *Scene) View() view.Transform { return s.view }

// Viewport returns the auto-scaled viewport for a w x h surface, sized for
// the snapshot currently being drawn.
func (s *Scene) Viewport(w, h float64) view.Viewport {
	return view.AutoScale(w, h, s.cur.Request.Params.Sanitize().Size)
}

// Drag pans by a surface delta.
func (s *Scene) Drag(vp view.Viewport, dx, dy float64) { s.view.Drag(vp, dx, dy) }

// ZoomAt zooms by wheel notches around the surface point at.
func (s *Scene) ZoomAt(vp view.Viewport, at vector.Pt, notches float64) {
	s.view.ZoomAt(vp, at, view.WheelFactor(notches, s.cfg.WheelStep))
}

func (s *Scene) ResetView() { s.view.Reset() }

// SetSprite installs the decoded marker image; nil selects the fallback dot.
func (s *Scene) SetSprite(img image.Image) { s.sprite = img }

// Options returns the render options in use.
func (s *Scene) Options() render.Options { return s.cfg.Render }

// SetOptions replaces the render options.
func (s *Scene) SetOptions(o render.Options) { s.cfg.Render = o }

// Current returns the snapshot the animation is running on. It lags
// Snapshot until the next Tick.
func (s *Scene) Current() *Snapshot { return s.cur }

// Frame describes the current redraw for viewport vp.
func (s *Scene) Frame(vp view.Viewport) render.Frame {
	snap := s.cur
	return render.Frame{
		Mode:     snap.Request.Mode,
		Sequence: snap.Sequence,
		Segments: snap.Segments,
		Sorted:   snap.Sorted,
		State:    s.machine.State(),
		View:     s.view,
		Viewport: vp,
		Sprite:   s.sprite,
		Options:  s.cfg.Render,
	}
}
