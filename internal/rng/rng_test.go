/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package rng

import "testing"

func TestSameSeedSameStream(t *testing.T) {
	a := New(42)
	b := New(42)
	for i := 0; i < 1000; i++ {
		if x, y := a.Next(), b.Next(); x != y {
			t.Fatalf("step %d: %v != %v", i, x, y)
		}
	}
}

func TestDifferentSeedsDiverge(t *testing.T) {
	a := New(1)
	b := New(2)
	same := 0
	for i := 0; i < 100; i++ {
		if a.Next() == b.Next() {
			same++
		}
	}
	if same > 2 {
		t.Fatalf("streams for different seeds overlap too much: %d equal values", same)
	}
}

func TestNextInUnitInterval(t *testing.T) {
	s := New(0)
	for i := 0; i < 100000; i++ {
		v := s.Next()
		if v < 0 || v >= 1 {
			t.Fatalf("value out of [0,1): %v", v)
		}
	}
}

func TestSeedRestartsStream(t *testing.T) {
	s := New(7)
	first := []float64{s.Next(), s.Next(), s.Next()}
	s.Seed(7)
	for i, want := range first {
		if got := s.Next(); got != want {
			t.Fatalf("value %d after reseed = %v, want %v", i, got, want)
		}
	}
}

func TestIntnBounds(t *testing.T) {
	s := New(99)
	seen := make(map[int]bool)
	for i := 0; i < 5000; i++ {
		v := s.Intn(5)
		if v < 0 || v >= 5 {
			t.Fatalf("Intn(5) out of range: %d", v)
		}
		seen[v] = true
	}
	if len(seen) != 5 {
		t.Fatalf("Intn(5) did not cover all buckets: %v", seen)
	}
	if s.Intn(0) != 0 || s.Intn(-3) != 0 {
		t.Fatalf("Intn with non-positive n must be 0")
	}
}

func TestRange(t *testing.T) {
	s := New(3)
	for i := 0; i < 1000; i++ {
		v := s.Range(-2, 5)
		if v < -2 || v >= 5 {
			t.Fatalf("Range out of bounds: %v", v)
		}
	}
}
