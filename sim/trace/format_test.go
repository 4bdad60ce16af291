package trace

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

func TestFormatRecord_FixedWidthColumns(t *testing.T) {
	r := EventRecord{
		Seq: 7, Kind: "Arrival", Component: "C1", Product: "P2", Clock: 12.3456,
		Entries: [3]int{4, 2, 1}, Buffers: [5]int{1, 2, 0, 1, 0}, Completed: [3]int{3, 0, 1},
	}
	line := FormatRecord(r)

	if !strings.HasSuffix(line, "\n") {
		t.Fatal("expected trailing newline")
	}
	if !strings.Contains(line, "   Process") {
		t.Errorf("expected right-aligned action, got %q", line)
	}
	if !strings.Contains(line, "12.346") {
		t.Errorf("expected clock with 3 decimals, got %q", line)
	}
	if strings.Count(line, "|") != 3 {
		t.Errorf("expected 3 column separators, got %q", line)
	}
}

func TestFormatRecord_HeldArrival_MarkedHold(t *testing.T) {
	line := FormatRecord(EventRecord{Kind: "Arrival", Component: "C2", Held: true})
	if !strings.Contains(line, "Hold") {
		t.Errorf("expected Hold marker, got %q", line)
	}
}

func TestWriter_StreamsHeaderAndRecords(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	w.ReportEvent(EventRecord{Seq: 1, Kind: "Departure", Product: "P1", Clock: 1})
	w.ReportEvent(EventRecord{Seq: 2, Kind: "Departure", Product: "P3", Clock: 2})

	if w.Err() != nil {
		t.Fatalf("unexpected error: %v", w.Err())
	}
	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected header + 2 lines, got %d", len(lines))
	}
	if !strings.Contains(lines[0], "B33") {
		t.Errorf("header missing buffer columns: %q", lines[0])
	}
}

type failingWriter struct{ calls int }

func (f *failingWriter) Write(p []byte) (int, error) {
	f.calls++
	return 0, errors.New("disk full")
}

func TestWriter_FirstErrorSticks(t *testing.T) {
	fw := &failingWriter{}
	w := NewWriter(fw)
	w.ReportEvent(EventRecord{Seq: 1})
	w.ReportEvent(EventRecord{Seq: 2})

	if w.Err() == nil {
		t.Fatal("expected error")
	}
	if fw.calls != 1 {
		t.Errorf("expected writes to stop after first failure, got %d calls", fw.calls)
	}
}
