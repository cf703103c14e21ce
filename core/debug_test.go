package core

import (
	"strings"
	"testing"
)

func TestDebugPrintlnDisabled(t *testing.T) {
	var lines []string
	SetDebugWriter(func(s string) { lines = append(lines, s) })
	defer SetDebugWriter(func(string) {})

	SetDebugEnabled(false)
	DebugPrintln("hidden")
	if len(lines) != 0 {
		t.Errorf("Expected no output while disabled, got %v", lines)
	}

	SetDebugEnabled(true)
	defer SetDebugEnabled(false)
	DebugPrintln("shown")
	if len(lines) != 1 || lines[0] != "shown" {
		t.Errorf("Expected [shown], got %v", lines)
	}
}

func TestDumpEvents(t *testing.T) {
	var lines []string
	SetDebugWriter(func(s string) { lines = append(lines, s) })
	defer SetDebugWriter(func(string) {})

	setupMillis(t, DefaultTimerConfig())
	DumpEvents()

	out := strings.Join(lines, "\n")
	if !strings.Contains(out, "[TIMER] INIT millis=0 v1=1024 v2=125") {
		t.Errorf("Expected init event in dump, got:\n%s", out)
	}
}

func TestEventRingOverwritesOldest(t *testing.T) {
	ClearEvents()
	defer ClearEvents()

	Free(func(cs *CriticalSection) {
		for i := uint32(0); i < EventRingSize+4; i++ {
			recordEvent(cs, EvtWrap, i, 0)
		}
	})

	events := Events()
	if len(events) != EventRingSize {
		t.Fatalf("Expected %d events, got %d", EventRingSize, len(events))
	}
	if events[0].Value1 != 4 {
		t.Errorf("Expected oldest event value 4, got %d", events[0].Value1)
	}
	if events[EventRingSize-1].Value1 != EventRingSize+3 {
		t.Errorf("Expected newest event value %d, got %d", EventRingSize+3, events[EventRingSize-1].Value1)
	}
}

func TestUtoa(t *testing.T) {
	testCases := map[uint32]string{
		0:          "0",
		7:          "7",
		80:         "80",
		4294967295: "4294967295",
	}
	for n, want := range testCases {
		if got := utoa(n); got != want {
			t.Errorf("utoa(%d): expected %s, got %s", n, want, got)
		}
	}
	if got := string(AppendUint([]byte("t="), 42)); got != "t=42" {
		t.Errorf("Expected t=42, got %s", got)
	}
}
