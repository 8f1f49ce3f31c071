/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package rng provides a small seedable pseudo-random generator used wherever
// visual variety has to be reproducible from a single integer.
//
// Every consumer owns its own Source; there is no package-level state.
package rng

// Source is a 32-bit xorshift-multiply generator (mulberry32 family).
// The same seed always yields the same infinite stream.
type Source struct {
	state uint32
}

// New returns a generator seeded with seed. Zero is a valid seed.
func New(seed uint32) *Source {
	return &Source{state: seed}
}

// Seed restarts the stream from seed.
func (s *Source) Seed(seed uint32) { s.state = seed }

// State exposes the raw 32-bit state, mainly for tests and debugging.
func (s *Source) State() uint32 { return s.state }

// Uint32 advances the state and returns the next mixed 32-bit value.
func (s *Source) Uint32() uint32 {
	s.state += 0x6D2B79F5
	t := s.state
	t = (t ^ t>>15) * (t | 1)
	t ^= t + (t^t>>7)*(t|61)
	return t ^ t>>14
}

// Next returns a float in [0,1).
func (s *Source) Next() float64 {
	return float64(s.Uint32()) / 4294967296.0
}

// Intn returns a uniform index in [0,n). n <= 0 yields 0.
func (s *Source) Intn(n int) int {
	if n <= 0 {
		return 0
	}
	i := int(s.Next() * float64(n))
	if i >= n {
		i = n - 1
	}
	return i
}

// Range returns a float in [lo,hi).
func (s *Source) Range(lo, hi float64) float64 {
	return lo + (hi-lo)*s.Next()
}
