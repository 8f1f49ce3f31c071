/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package sampler drives a point source across a sampling domain and produces
// the ordered point sequence consumed by the animation and the renderer.
package sampler

import (
	"cmp"
	"math"
	"slices"

	"pookalam/internal/domain"
	"pookalam/internal/pattern"
	"pookalam/internal/rng"
)

// DefaultMaxPoints caps the size of one sequence.
const DefaultMaxPoints = 250000

// Segment run lengths are drawn uniformly from [MinRun, MaxRun].
const (
	MinRun = 12
	MaxRun = 60
)

// Func is a 1D function source, y = f(x).
type Func func(x float64) (float64, error)

// ParamFunc is a parametric source, (x, y) = f(t).
type ParamFunc func(t float64) (float64, float64, error)

// FieldFunc is a scalar field whose zero set is plotted.
type FieldFunc func(x, y float64) (float64, error)

// Domain is a closed sampling interval. For implicit mode it bounds both axes.
type Domain struct {
	Min float64
	Max float64
}

// Span returns Max-Min.
func (d Domain) Span() float64 { return d.Max - d.Min }

// Turns returns the fractal angular domain [0, 2π*turns).
func Turns(turns float64) Domain {
	if !(turns > 0) {
		turns = 1
	}
	return Domain{Min: 0, Max: 2 * math.Pi * turns}
}

// Request describes one sampling run. Only the source matching Mode is used.
type Request struct {
	Mode       domain.Mode
	Composer   *pattern.Composer
	Function   Func
	Parametric ParamFunc
	Field      FieldFunc
	Domain     Domain
	// Resolution is the step between samples; smaller is denser.
	Resolution float64
	// DepthSort orders fractal output deepest first.
	DepthSort bool
	MaxPoints int
}

// Result is a sampled sequence together with its coloring.
type Result struct {
	Sequence domain.Sequence
	Segments []domain.Segment
	Sorted   bool
	// Dropped counts samples discarded as invalid.
	Dropped int
}

// Sample runs req and returns the point sequence. Invalid samples are dropped;
// an empty sequence is a valid outcome.
func Sample(req Request) (domain.Sequence, int) {
	limit := req.MaxPoints
	if limit <= 0 {
		limit = DefaultMaxPoints
	}
	step := req.Resolution
	if !(step > 0) || math.IsInf(step, 0) {
		return nil, 0
	}
	s := &collector{limit: limit}
	switch req.Mode {
	case domain.ModeFractal:
		if req.Composer == nil {
			return nil, 0
		}
		sampleFractal(s, req.Composer, req.Domain, step)
		if req.DepthSort {
			SortByDepth(s.seq)
		}
	case domain.ModeFunction:
		if req.Function != nil {
			sampleFunction(s, req.Function, req.Domain, step)
		}
	case domain.ModeParametric:
		if req.Parametric != nil {
			sampleParametric(s, req.Parametric, req.Domain, step)
		}
	case domain.ModeImplicit:
		if req.Field != nil {
			sampleImplicit(s, req.Field, req.Domain, step)
		}
	}
	return s.seq, s.dropped
}

// Build samples req and, for fractal mode, partitions the result into
// colored segments.
func Build(req Request) Result {
	seq, dropped := Sample(req)
	res := Result{Sequence: seq, Dropped: dropped, Sorted: req.Mode == domain.ModeFractal && req.DepthSort}
	if req.Mode == domain.ModeFractal {
		res.Segments = Segments(len(seq))
	}
	return res
}

// SortByDepth stably orders seq deepest first. Points sharing a depth keep
// their emission order per strand.
func SortByDepth(seq domain.Sequence) {
	slices.SortStableFunc(seq, func(a, b domain.Point) int {
		if c := cmp.Compare(b.Depth, a.Depth); c != 0 {
			return c
		}
		return cmp.Compare(a.Strand, b.Strand)
	})
}

// Segments partitions n points into contiguous runs with palette colors.
// Run lengths come from an RNG seeded by n, so a given length always yields
// the same partition.
func Segments(n int) []domain.Segment {
	if n <= 0 {
		return nil
	}
	r := rng.New(uint32(n))
	color := r.Intn(len(domain.Palette))
	var out []domain.Segment
	for start := 0; start < n; {
		end := start + MinRun + r.Intn(MaxRun-MinRun+1)
		if end > n {
			end = n
		}
		out = append(out, domain.Segment{Start: start, End: end, Color: color})
		color = (color + 1) % len(domain.Palette)
		start = end
	}
	return out
}

// SegmentAt returns the index of the segment containing point i, or -1.
func SegmentAt(segs []domain.Segment, i int) int {
	j, found := slices.BinarySearchFunc(segs, i, func(s domain.Segment, target int) int {
		switch {
		case target < s.Start:
			return 1
		case target >= s.End:
			return -1
		default:
			return 0
		}
	})
	if !found {
		return -1
	}
	return j
}

type collector struct {
	seq     domain.Sequence
	limit   int
	dropped int
}

func (c *collector) full() bool { return len(c.seq) >= c.limit }

func (c *collector) add(p domain.Point) {
	if !finite(p.X) || !finite(p.Y) {
		c.dropped++
		return
	}
	if c.full() {
		return
	}
	c.seq = append(c.seq, p)
}

// steps returns the number of samples covering [min, max) at step.
func steps(d Domain, step float64) int {
	span := d.Span()
	if !(span > 0) || math.IsInf(span, 0) {
		return 0
	}
	n := math.Ceil(span / step)
	if n > math.MaxInt32 {
		n = math.MaxInt32
	}
	return int(n)
}

func sampleFractal(c *collector, comp *pattern.Composer, d Domain, step float64) {
	n := steps(d, step)
	for i := 0; i < n && !c.full(); i++ {
		t := d.Min + float64(i)*step
		for _, p := range comp.PointsAt(t) {
			c.add(p)
		}
	}
}

func sampleFunction(c *collector, f Func, d Domain, step float64) {
	n := steps(d, step)
	for i := 0; i <= n && !c.full(); i++ {
		x := math.Min(d.Min+float64(i)*step, d.Max)
		y, ok := call1(f, x)
		if !ok {
			c.dropped++
			continue
		}
		c.add(domain.Point{X: x, Y: y})
	}
}

func sampleParametric(c *collector, f ParamFunc, d Domain, step float64) {
	n := steps(d, step)
	for i := 0; i <= n && !c.full(); i++ {
		t := math.Min(d.Min+float64(i)*step, d.Max)
		x, y, ok := call2(f, t)
		if !ok {
			c.dropped++
			continue
		}
		c.add(domain.Point{X: x, Y: y})
	}
}

// sampleImplicit evaluates the field on a square grid and emits a point on
// every grid edge whose endpoints differ in sign, located by linear
// interpolation. Nodes that evaluate exactly to zero are emitted directly.
func sampleImplicit(c *collector, f FieldFunc, d Domain, step float64) {
	n := steps(d, step)
	if n == 0 {
		return
	}
	if maxSide := int(math.Sqrt(float64(c.limit))) * 4; n > maxSide {
		n = maxSide
		step = d.Span() / float64(n)
	}
	coord := func(i int) float64 { return d.Min + float64(i)*step }

	prev := make([]float64, n+1)
	cur := make([]float64, n+1)
	prevOK := make([]bool, n+1)
	curOK := make([]bool, n+1)

	for j := 0; j <= n && !c.full(); j++ {
		y := coord(j)
		for i := 0; i <= n; i++ {
			v, ok := call3(f, coord(i), y)
			cur[i], curOK[i] = v, ok
			if !ok {
				c.dropped++
				continue
			}
			if v == 0 {
				c.add(domain.Point{X: coord(i), Y: y})
				continue
			}
			if i > 0 && curOK[i-1] && cur[i-1]*v < 0 {
				x := lerpRoot(coord(i-1), coord(i), cur[i-1], v)
				c.add(domain.Point{X: x, Y: y})
			}
			if j > 0 && prevOK[i] && prev[i]*v < 0 {
				yy := lerpRoot(coord(j-1), y, prev[i], v)
				c.add(domain.Point{X: coord(i), Y: yy})
			}
		}
		prev, cur = cur, prev
		prevOK, curOK = curOK, prevOK
	}
}

func lerpRoot(a, b, fa, fb float64) float64 {
	return a + (b-a)*fa/(fa-fb)
}

func finite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }

// call1, call2 and call3 treat evaluator errors, panics and non-finite
// output as invalid samples.
func call1(f Func, x float64) (y float64, ok bool) {
	defer func() {
		if recover() != nil {
			ok = false
		}
	}()
	y, err := f(x)
	return y, err == nil && finite(y)
}

func call2(f ParamFunc, t float64) (x, y float64, ok bool) {
	defer func() {
		if recover() != nil {
			ok = false
		}
	}()
	x, y, err := f(t)
	return x, y, err == nil && finite(x) && finite(y)
}

func call3(f FieldFunc, x, y float64) (v float64, ok bool) {
	defer func() {
		if recover() != nil {
			ok = false
		}
	}()
	v, err := f(x, y)
	return v, err == nil && finite(v)
}
