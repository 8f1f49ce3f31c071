/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package sampler

import (
	"errors"
	"math"
	"testing"

	"pookalam/internal/domain"
	"pookalam/internal/pattern"
)

func fractalRequest(sorted bool) Request {
	p := domain.DefaultParameters()
	p.Complexity = 0.8
	return Request{
		Mode:       domain.ModeFractal,
		Composer:   pattern.New(p),
		Domain:     Turns(1),
		Resolution: 0.05,
		DepthSort:  sorted,
	}
}

func TestFractalEmissionOrder(t *testing.T) {
	req := fractalRequest(false)
	seq, dropped := Sample(req)
	if dropped != 0 {
		t.Fatalf("dropped %d samples", dropped)
	}
	per := req.Composer.PointsPerAngle()
	n := steps(req.Domain, req.Resolution)
	if len(seq) != per*n {
		t.Fatalf("len = %d, want %d", len(seq), per*n)
	}
	first := req.Composer.PointsAt(0)
	for i := range first {
		if seq[i] != first[i] {
			t.Fatalf("point %d not in emission order", i)
		}
	}
	second := req.Composer.PointsAt(req.Resolution)
	if seq[per] != second[0] {
		t.Fatalf("second angle fragment must follow the first")
	}
}

func TestFractalDepthSortIsStable(t *testing.T) {
	seq, _ := Sample(fractalRequest(true))
	if len(seq) == 0 {
		t.Fatalf("empty sequence")
	}
	for i := 1; i < len(seq); i++ {
		a, b := seq[i-1], seq[i]
		if b.Depth > a.Depth {
			t.Fatalf("depth increases at %d: %d -> %d", i, a.Depth, b.Depth)
		}
		if a.Depth == b.Depth && b.Strand < a.Strand {
			t.Fatalf("strand order broken at %d", i)
		}
	}
	// within one stroke the angle order is preserved
	var prevAngle float64 = -1
	for _, p := range seq {
		if p.Depth != seq[0].Depth || p.Strand != seq[0].Strand {
			break
		}
		a := math.Atan2(p.Y, p.X)
		if a < 0 {
			a += 2 * math.Pi
		}
		if a+1e-9 < prevAngle {
			t.Fatalf("angle order broken: %v after %v", a, prevAngle)
		}
		prevAngle = a
	}
}

func TestSamplingIsDeterministic(t *testing.T) {
	a := Build(fractalRequest(true))
	b := Build(fractalRequest(true))
	if len(a.Sequence) != len(b.Sequence) || len(a.Segments) != len(b.Segments) {
		t.Fatalf("length mismatch")
	}
	for i := range a.Sequence {
		if a.Sequence[i] != b.Sequence[i] {
			t.Fatalf("point %d differs", i)
		}
	}
	if !a.Sorted {
		t.Fatalf("result must report depth sorting")
	}
}

func TestMaxPointsCap(t *testing.T) {
	req := fractalRequest(false)
	req.MaxPoints = 100
	seq, _ := Sample(req)
	if len(seq) != 100 {
		t.Fatalf("len = %d, want 100", len(seq))
	}
}

func TestNonPositiveResolutionYieldsEmpty(t *testing.T) {
	for _, r := range []float64{0, -1, math.NaN()} {
		req := fractalRequest(false)
		req.Resolution = r
		if seq, _ := Sample(req); len(seq) != 0 {
			t.Fatalf("resolution %v: expected empty sequence", r)
		}
	}
}

func TestFunctionDropsInvalidSamples(t *testing.T) {
	calls := 0
	f := func(x float64) (float64, error) {
		calls++
		switch {
		case x < -0.5:
			return math.NaN(), nil
		case x < 0:
			return 0, errors.New("boom")
		case x < 0.5:
			panic("evaluator crashed")
		}
		return x * 2, nil
	}
	seq, dropped := Sample(Request{Mode: domain.ModeFunction, Function: f, Domain: Domain{-1, 1}, Resolution: 0.25})
	if calls != 9 {
		t.Fatalf("calls = %d, want 9", calls)
	}
	if len(seq) != 3 || dropped != 6 {
		t.Fatalf("kept %d dropped %d, want 3 and 6", len(seq), dropped)
	}
	for _, p := range seq {
		if p.Y != 2*p.X {
			t.Fatalf("unexpected point %+v", p)
		}
	}
}

func TestAllInvalidGivesEmptySequence(t *testing.T) {
	f := func(t float64) (float64, float64, error) { return math.Inf(1), 0, nil }
	seq, dropped := Sample(Request{Mode: domain.ModeParametric, Parametric: f, Domain: Domain{0, 1}, Resolution: 0.1})
	if len(seq) != 0 || dropped == 0 {
		t.Fatalf("expected empty sequence with drops, got %d/%d", len(seq), dropped)
	}
	if segs := Segments(len(seq)); segs != nil {
		t.Fatalf("expected no segments for empty sequence")
	}
}

func TestImplicitCircle(t *testing.T) {
	c, err := LookupCurve("circle")
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	seq, _ := Sample(c.Request())
	if len(seq) < 100 {
		t.Fatalf("too few points on circle: %d", len(seq))
	}
	for _, p := range seq {
		if r := p.Radius(); math.Abs(r-5) > 0.05 {
			t.Fatalf("point %+v off the circle (r=%v)", p, r)
		}
	}
}

func TestImplicitDropsPanickingField(t *testing.T) {
	f := func(x, y float64) (float64, error) {
		if x > 0 {
			panic("no")
		}
		return x*x + y*y - 1, nil
	}
	seq, dropped := Sample(Request{Mode: domain.ModeImplicit, Field: f, Domain: Domain{-2, 2}, Resolution: 0.1})
	if dropped == 0 {
		t.Fatalf("expected dropped samples")
	}
	for _, p := range seq {
		if p.X > 0 {
			t.Fatalf("point from invalid half-plane: %+v", p)
		}
	}
}

func TestSegmentsPartition(t *testing.T) {
	for _, n := range []int{1, 11, 12, 61, 1000, 12345} {
		segs := Segments(n)
		if len(segs) == 0 || segs[0].Start != 0 || segs[len(segs)-1].End != n {
			t.Fatalf("n=%d: segments do not cover the sequence", n)
		}
		for i, s := range segs {
			if s.Len() <= 0 {
				t.Fatalf("n=%d: empty segment %d", n, i)
			}
			if i > 0 && s.Start != segs[i-1].End {
				t.Fatalf("n=%d: gap or overlap at %d", n, i)
			}
			if i < len(segs)-1 && (s.Len() < MinRun || s.Len() > MaxRun) {
				t.Fatalf("n=%d: run %d has length %d", n, i, s.Len())
			}
			if i > 0 && s.Color == segs[i-1].Color {
				t.Fatalf("n=%d: adjacent segments share color", n)
			}
		}
		again := Segments(n)
		for i := range segs {
			if segs[i] != again[i] {
				t.Fatalf("n=%d: segments not reproducible", n)
			}
		}
	}
}

func TestSegmentsDoNotTouchPoints(t *testing.T) {
	plain, _ := Sample(fractalRequest(true))
	res := Build(fractalRequest(true))
	for i := range plain {
		if plain[i] != res.Sequence[i] {
			t.Fatalf("segmenting altered point %d", i)
		}
	}
}

func TestSegmentAt(t *testing.T) {
	segs := Segments(500)
	for _, i := range []int{0, 37, 250, 499} {
		j := SegmentAt(segs, i)
		if j < 0 || i < segs[j].Start || i >= segs[j].End {
			t.Fatalf("SegmentAt(%d) = %d", i, j)
		}
	}
	if SegmentAt(segs, 500) != -1 || SegmentAt(segs, -1) != -1 {
		t.Fatalf("out of range index must return -1")
	}
}

func TestCurveCatalogue(t *testing.T) {
	for _, mode := range []domain.Mode{domain.ModeFunction, domain.ModeParametric, domain.ModeImplicit} {
		names := CurveNames(mode)
		if len(names) == 0 {
			t.Fatalf("no curves for %s", mode)
		}
		for _, name := range names {
			c, err := LookupCurve(name)
			if err != nil {
				t.Fatalf("lookup %s: %v", name, err)
			}
			if seq, _ := Sample(c.Request()); len(seq) == 0 {
				t.Fatalf("curve %s produced no points", name)
			}
		}
	}
	if DefaultCurve(domain.ModeFractal) != "" {
		t.Fatalf("fractal mode has no catalogue curve")
	}
	if _, err := LookupCurve("spiral"); !errors.Is(err, ErrUnknownCurve) {
		t.Fatalf("expected ErrUnknownCurve, got %v", err)
	}
}
