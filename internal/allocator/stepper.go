package allocator

import (
	"errors"
	"math"
	"strconv"
	"strings"
)

// Stepper is a bounded integer field moved in fixed steps, such as max participation.
// It is never part of a Pair.
type Stepper struct {
	value int
	min   int
	max   int
	step  int
}

// Participation bounds
const (
	ParticipationMin  = 50
	ParticipationMax  = 300
	ParticipationStep = 10
)

// NewStepper creates a stepper; initial is clamped and snapped
func NewStepper(initial, min, max, step int) *Stepper {
	s := &Stepper{min: min, max: max, step: step}
	s.value = s.normalize(initial)
	return s
}

// NewParticipation creates the 50..300 step 10 max participation field
func NewParticipation(initial int) *Stepper {
	return NewStepper(initial, ParticipationMin, ParticipationMax, ParticipationStep)
}

// Value returns the current value
func (s *Stepper) Value() int {
	return s.value
}

// SetValue applies typed input. Empty or non-integer input falls back to the minimum;
// out of range integers saturate and are clamped.
func (s *Stepper) SetValue(raw string) int {
	v, err := strconv.Atoi(leadingInt(raw))
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		v = s.min
	}
	s.value = s.normalize(v)
	return s.value
}

// Increment moves one step up, stopping at the maximum
func (s *Stepper) Increment() int {
	s.value = s.normalize(s.value + s.step)
	return s.value
}

// Decrement moves one step down, stopping at the minimum
func (s *Stepper) Decrement() int {
	s.value = s.normalize(s.value - s.step)
	return s.value
}

// CanIncrement reports whether the + control is enabled
func (s *Stepper) CanIncrement() bool {
	return s.value < s.max
}

// CanDecrement reports whether the - control is enabled
func (s *Stepper) CanDecrement() bool {
	return s.value > s.min
}

// normalize clamps v and snaps it to the nearest step counted from min
func (s *Stepper) normalize(v int) int {
	if v < s.min {
		v = s.min
	}
	if v > s.max {
		v = s.max
	}
	if s.step > 1 {
		steps := math.Round(float64(v-s.min) / float64(s.step))
		v = s.min + int(steps)*s.step
		if v > s.max {
			v -= s.step
		}
	}
	return v
}

// leadingInt keeps the optional sign and leading digits, the way form integer parsing does
func leadingInt(raw string) string {
	raw = strings.TrimSpace(raw)
	end := 0
	for i, r := range raw {
		if i == 0 && (r == '-' || r == '+') {
			end = 1
			continue
		}
		if r < '0' || r > '9' {
			break
		}
		end = i + 1
	}
	return raw[:end]
}
