// Package allocator keeps two complementary percentage fields consistent.
//
// Editing either side of a Pair sets that side to the (clamped) input and
// derives the other side as max(0, 100 - v), so a Pair always sums to 100.
// Out-of-range numbers are clamped silently; empty input is handled by an
// EmptyPolicy chosen per form.
package allocator

import (
	"errors"
	"math"
	"strconv"
	"strings"
)

// Total is the sum every Pair is kept at
const Total = 100.0

var (
	// ErrEmptyValue is returned when a RejectEmpty field is cleared
	ErrEmptyValue = errors.New("value is required")
	// ErrInvalidNumber is returned when the input is not a finite number
	ErrInvalidNumber = errors.New("value must be a number")
)

// Side selects one field of a Pair
type Side int

const (
	Primary Side = iota
	Secondary
)

// Other returns the complementary side
func (s Side) Other() Side {
	if s == Primary {
		return Secondary
	}
	return Primary
}

func (s Side) String() string {
	if s == Primary {
		return "primary"
	}
	return "secondary"
}

// ParseSide parses "primary" or "secondary"
func ParseSide(v string) (Side, error) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "primary":
		return Primary, nil
	case "secondary":
		return Secondary, nil
	}
	return Primary, errors.New("side must be 'primary' or 'secondary'")
}

// Bounds is an inclusive numeric range
type Bounds struct {
	Min float64
	Max float64
}

// PercentBounds is the range of every percentage field
var PercentBounds = Bounds{Min: 0, Max: Total}

// Clamp limits v to the range
func (b Bounds) Clamp(v float64) float64 {
	return math.Max(b.Min, math.Min(b.Max, v))
}

// Pair is two complementary percentage shares
type Pair struct {
	Primary   float64 `json:"primary"`
	Secondary float64 `json:"secondary"`
}

// NewPair builds a pair from stored values without recomputing anything
func NewPair(primary, secondary float64) Pair {
	return Pair{Primary: primary, Secondary: secondary}
}

// Get returns the value of one side
func (p Pair) Get(side Side) float64 {
	if side == Primary {
		return p.Primary
	}
	return p.Secondary
}

// Sum returns Primary + Secondary
func (p Pair) Sum() float64 {
	return p.Primary + p.Secondary
}

// Balanced reports whether the pair sums to Total
func (p Pair) Balanced() bool {
	return math.Abs(p.Sum()-Total) < 1e-9
}

// Link sets side to v clamped to the percent bounds and derives the other side.
func Link(side Side, v float64) Pair {
	v = PercentBounds.Clamp(v)
	other := math.Max(0, Total-v)
	if side == Primary {
		return Pair{Primary: v, Secondary: other}
	}
	return Pair{Primary: other, Secondary: v}
}

// parseNumber parses numeric form input. ok is false for empty input.
func parseNumber(raw string) (v float64, ok bool, err error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, false, nil
	}
	v, err = strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, true, ErrInvalidNumber
	}
	return v, true, nil
}
