package core

// CriticalSection is proof that the holder runs with interrupts masked.
// Only use the one handed out by Free, and only inside its callback.
type CriticalSection struct {
	_ struct{}
}

// Free runs fn with interrupts disabled and restores the previous
// interrupt state afterwards. fn must be short and must not block.
func Free(fn func(cs *CriticalSection)) {
	state := disableInterrupts()
	defer restoreInterrupts(state)

	var cs CriticalSection
	fn(&cs)
}

// Shared is a value shared between interrupt handlers and foreground code.
// Every access needs a *CriticalSection, so the value cannot be touched
// outside Free.
type Shared[T any] struct {
	value T
}

// NewShared returns a cell holding v
func NewShared[T any](v T) *Shared[T] {
	return &Shared[T]{value: v}
}

// Get returns the current value
func (s *Shared[T]) Get(cs *CriticalSection) T {
	if cs == nil {
		panic("core: shared access outside critical section")
	}
	return s.value
}

// Set replaces the current value
func (s *Shared[T]) Set(cs *CriticalSection, v T) {
	if cs == nil {
		panic("core: shared access outside critical section")
	}
	s.value = v
}

// Update applies f to the value as a single read-modify-write and returns
// the new value
func (s *Shared[T]) Update(cs *CriticalSection, f func(T) T) T {
	if cs == nil {
		panic("core: shared access outside critical section")
	}
	s.value = f(s.value)
	return s.value
}
