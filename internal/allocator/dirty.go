package allocator

// Baseline remembers the last saved form values and compares by value
type Baseline[T comparable] struct {
	saved T
}

// NewBaseline starts tracking from the stored values
func NewBaseline[T comparable](saved T) *Baseline[T] {
	return &Baseline[T]{saved: saved}
}

// Changed reports whether current differs from the last saved values
func (b *Baseline[T]) Changed(current T) bool {
	return current != b.saved
}

// MarkSaved records current as the new baseline
func (b *Baseline[T]) MarkSaved(current T) {
	b.saved = current
}

// Saved returns the baseline values
func (b *Baseline[T]) Saved() T {
	return b.saved
}
