package trace

import (
	"fmt"
	"io"
)

const lineFormat = "%10s %10s %5s %5s %10s | %3s %3s %3s | %3s %3s %3s %3s %3s | %3s %3s %3s\n"

// WriteHeader writes the column header of the fixed-width trace table.
func WriteHeader(w io.Writer) error {
	_, err := fmt.Fprintf(w, lineFormat, "", "Event", "Comp", "Prod", "Clock",
		"C1", "C2", "C3",
		BufferNames[0], BufferNames[1], BufferNames[2], BufferNames[3], BufferNames[4],
		"P1", "P2", "P3")
	return err
}

// FormatRecord renders one record as a fixed-width trace line (with newline).
func FormatRecord(r EventRecord) string {
	action := "Process"
	if r.Held {
		action = "Hold"
	}
	return fmt.Sprintf("%10s %10s %5s %5s %10.3f | %3d %3d %3d | %3d %3d %3d %3d %3d | %3d %3d %3d\n",
		action, r.Kind, r.Component, r.Product, r.Clock,
		r.Entries[0], r.Entries[1], r.Entries[2],
		r.Buffers[0], r.Buffers[1], r.Buffers[2], r.Buffers[3], r.Buffers[4],
		r.Completed[0], r.Completed[1], r.Completed[2])
}

// Writer streams records to w as they are reported, e.g. to the console.
type Writer struct {
	w   io.Writer
	err error
}

// NewWriter writes the header to w and returns a streaming sink.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w, err: WriteHeader(w)}
}

// ReportEvent writes r. The first write error is kept and later writes are skipped.
func (tw *Writer) ReportEvent(r EventRecord) {
	if tw.err != nil {
		return
	}
	_, tw.err = io.WriteString(tw.w, FormatRecord(r))
}

// Err returns the first write error, if any.
func (tw *Writer) Err() error {
	return tw.err
}
