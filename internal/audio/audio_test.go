/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package audio

import (
	"math"
	"testing"
	"time"

	"pookalam/internal/anim"
)

func TestToneFor(t *testing.T) {
	now := time.Now()
	cases := []struct {
		tr   anim.Transition
		want Tone
		ok   bool
	}{
		{anim.Transition{From: anim.PhaseDrawing, To: anim.PhaseHolding, At: now}, HoldTone, true},
		{anim.Transition{From: anim.PhaseFading, To: anim.PhaseDrawing, Reset: true, At: now}, ResetTone, true},
		{anim.Transition{From: anim.PhaseHolding, To: anim.PhaseFading, At: now}, Tone{}, false},
		{anim.Transition{From: anim.PhaseDrawing, To: anim.PhaseDrawing, At: now}, Tone{}, false},
	}
	for i, c := range cases {
		got, ok := ToneFor(c.tr)
		if ok != c.ok || got != c.want {
			t.Fatalf("case %d: ToneFor = %+v %v, want %+v %v", i, got, ok, c.want, c.ok)
		}
	}
}

func TestChimeLengthAndRelease(t *testing.T) {
	st, err := Chime(HoldTone)
	if err != nil {
		t.Fatalf("Chime: %v", err)
	}
	want := sampleRate.N(HoldTone.Duration)
	buf := make([][2]float64, 512)
	total := 0
	var last [2]float64
	for {
		n, ok := st.Stream(buf)
		for i := 0; i < n; i++ {
			if math.Abs(buf[i][0]) > 1 {
				t.Fatalf("sample %d out of range: %f", total+i, buf[i][0])
			}
		}
		if n > 0 {
			last = buf[n-1]
		}
		total += n
		if !ok || n == 0 {
			break
		}
	}
	if total != want {
		t.Fatalf("chime length = %d samples, want %d", total, want)
	}
	if math.Abs(last[0]) > 0.01 {
		t.Fatalf("chime should end near silence, last sample %f", last[0])
	}
}

func TestChimeRejectsBadFrequency(t *testing.T) {
	if _, err := Chime(Tone{Freq: float64(sampleRate), Duration: time.Millisecond, Gain: 1}); err == nil {
		t.Fatalf("frequency at the sample rate should be rejected")
	}
}

func TestDisabledIsSilent(t *testing.T) {
	p := New(false)
	if _, ok := p.(Silent); !ok {
		t.Fatalf("disabled audio should be Silent, got %T", p)
	}
	p.Cue(anim.Transition{Reset: true})
	p.Close()
}
