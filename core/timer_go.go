//go:build !tinygo

package core

// ReleaseTimer clears the counter and forgets the timer passed to
// MillisInit so a new simulated board can be brought up in the same
// process. Firmware builds have no equivalent.
func ReleaseTimer() {
	Free(func(cs *CriticalSection) {
		millis.Set(cs, millisState{})
	})
}

// SetMillis forces the counter to v (for testing/simulation)
func SetMillis(v uint32) {
	Free(func(cs *CriticalSection) {
		st := millis.Get(cs)
		st.count = v
		millis.Set(cs, st)
	})
}
