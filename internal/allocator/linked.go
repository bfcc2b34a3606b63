package allocator

// EmptyPolicy decides what clearing a field does
type EmptyPolicy int

const (
	// ClampEmpty treats an empty field as 0 and recomputes at once.
	// The field stays flagged as empty until a value is typed or the field is left.
	ClampEmpty EmptyPolicy = iota
	// RejectEmpty flags the field and keeps the last pair until a value is typed.
	RejectEmpty
)

func (p EmptyPolicy) String() string {
	if p == RejectEmpty {
		return "reject"
	}
	return "clamp"
}

// LinkedPair is the editable state of a Pair inside a form
type LinkedPair struct {
	pair   Pair
	policy EmptyPolicy
	empty  [2]bool
}

// NewLinkedPair starts from stored or default values
func NewLinkedPair(initial Pair, policy EmptyPolicy) *LinkedPair {
	return &LinkedPair{pair: initial, policy: policy}
}

// Pair returns the current values
func (l *LinkedPair) Pair() Pair {
	return l.pair
}

// Policy returns the empty handling policy
func (l *LinkedPair) Policy() EmptyPolicy {
	return l.policy
}

// IsEmpty reports whether side was cleared and not yet refilled
func (l *LinkedPair) IsEmpty(side Side) bool {
	return l.empty[side]
}

// Committable reports whether the pair may be submitted
func (l *LinkedPair) Committable() bool {
	return !l.empty[Primary] && !l.empty[Secondary]
}

// SetValue applies raw form input to side and returns the resulting pair.
// Invalid input leaves the pair unchanged and returns an error.
func (l *LinkedPair) SetValue(side Side, raw string) (Pair, error) {
	v, ok, err := parseNumber(raw)
	if err != nil {
		return l.pair, err
	}
	if !ok {
		l.empty[side] = true
		if l.policy == RejectEmpty {
			return l.pair, ErrEmptyValue
		}
		l.pair = Link(side, 0)
		return l.pair, nil
	}
	l.empty = [2]bool{}
	l.pair = Link(side, v)
	return l.pair, nil
}

// Set applies a numeric value to side
func (l *LinkedPair) Set(side Side, v float64) Pair {
	l.empty = [2]bool{}
	l.pair = Link(side, v)
	return l.pair
}

// Blur commits a cleared ClampEmpty field as 0. RejectEmpty fields stay flagged.
func (l *LinkedPair) Blur(side Side) Pair {
	if l.empty[side] && l.policy == ClampEmpty {
		return l.Set(side, 0)
	}
	return l.pair
}

// Reset replaces the values, e.g. after reloading the stored record
func (l *LinkedPair) Reset(p Pair) {
	l.pair = p
	l.empty = [2]bool{}
}
