package core

// DebugWriter is a function type for writing debug messages
type DebugWriter func(string)

// TimerEvent captures a timer event for post-mortem analysis
type TimerEvent struct {
	EventType uint8  // Event type code
	Millis    uint32 // Counter value when the event was recorded
	Value1    uint32 // Context-dependent value
	Value2    uint32 // Context-dependent value
}

// Event type codes
const (
	EvtTimerInit    = 1 // timer configured (prescaler, counts)
	EvtConfigReject = 2 // configuration rejected (prescaler, counts)
	EvtWrap         = 3 // counter wrapped (old, new)
)

const (
	EventRingSize = 16 // Keep last 16 events for post-mortem
)

var (
	// debugPrintln is the global debug print function (can be set by platform code)
	debugPrintln DebugWriter = func(s string) {} // No-op by default

	// debugEnabled controls whether debug output is active
	debugEnabled bool = false

	// Event ring buffer, written from interrupt context. Guarded by Free.
	eventRing     [EventRingSize]TimerEvent
	eventRingHead uint8

	// Async debug output channel
	debugChan chan string
)

// SetDebugWriter sets the platform-specific debug output function
// This allows platforms to redirect debug output to UART, a host log, etc.
func SetDebugWriter(writer DebugWriter) {
	debugPrintln = writer
}

// SetDebugEnabled enables or disables debug output
func SetDebugEnabled(enabled bool) {
	debugEnabled = enabled
}

// IsDebugEnabled returns whether debug output is enabled
func IsDebugEnabled() bool {
	return debugEnabled
}

// InitAsyncDebug starts the async debug output goroutine
// Call this from main() after SetDebugWriter
func InitAsyncDebug() {
	debugChan = make(chan string, 16)
	go debugOutputWorker()
}

func debugOutputWorker() {
	for msg := range debugChan {
		if debugPrintln != nil {
			debugPrintln(msg)
		}
	}
}

// DebugPrintln writes a debug message using the platform-specific writer
func DebugPrintln(msg string) {
	if debugEnabled && debugPrintln != nil {
		debugPrintln(msg)
	}
}

// DebugAsync queues a debug message for async output (non-blocking)
// Drops the message if the channel is full or async output is not running
func DebugAsync(msg string) {
	if !debugEnabled || debugChan == nil {
		return
	}
	select {
	case debugChan <- msg:
	default:
	}
}

// recordEvent appends an event to the ring. Bounded and non-blocking, so it
// is safe from the interrupt handler.
func recordEvent(cs *CriticalSection, eventType uint8, value1, value2 uint32) {
	idx := eventRingHead
	eventRing[idx] = TimerEvent{
		EventType: eventType,
		Millis:    millis.Get(cs).count,
		Value1:    value1,
		Value2:    value2,
	}
	eventRingHead = (idx + 1) % EventRingSize
}

// Events returns the recorded events, oldest first
func Events() []TimerEvent {
	out := make([]TimerEvent, 0, EventRingSize)
	Free(func(cs *CriticalSection) {
		start := eventRingHead
		for i := uint8(0); i < EventRingSize; i++ {
			evt := eventRing[(start+i)%EventRingSize]
			if evt.EventType == 0 {
				continue // Empty slot
			}
			out = append(out, evt)
		}
	})
	return out
}

// DumpEvents outputs the event ring through the debug writer
func DumpEvents() {
	if debugPrintln == nil {
		return
	}

	debugPrintln("[TIMER] === Event Dump ===")
	for _, evt := range Events() {
		var name string
		switch evt.EventType {
		case EvtTimerInit:
			name = "INIT"
		case EvtConfigReject:
			name = "CONFIG_REJECT!"
		case EvtWrap:
			name = "WRAP"
		default:
			name = "UNKNOWN"
		}

		debugPrintln("[TIMER] " + name +
			" millis=" + utoa(evt.Millis) +
			" v1=" + utoa(evt.Value1) +
			" v2=" + utoa(evt.Value2))
	}
	debugPrintln("[TIMER] === End Dump ===")
}

// ClearEvents clears the event ring
func ClearEvents() {
	Free(func(cs *CriticalSection) {
		for i := range eventRing {
			eventRing[i] = TimerEvent{}
		}
		eventRingHead = 0
	})
}
