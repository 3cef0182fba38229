// ABOUTME: JSON-lines trace of decoded key events, encoded with easyjson's jwriter
// ABOUTME: One object per key: sequence number, timestamp, key name, raw bytes and idle polls since the last key

package trace

import (
	"encoding/hex"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/mailru/easyjson/jwriter"

	"github.com/mauromedda/rawtty/pkg/key"
)

// Event is one decoded key as written to the trace.
type Event struct {
	Seq   int
	At    time.Time
	Key   key.Key
	Idle  int // empty polls since the previous key
	Label string
}

// MarshalEasyJSON writes e as a single JSON object.
func (e Event) MarshalEasyJSON(w *jwriter.Writer) {
	w.RawString(`{"seq":`)
	w.Int(e.Seq)
	w.RawString(`,"t":`)
	w.String(e.At.UTC().Format(time.RFC3339Nano))
	w.RawString(`,"key":`)
	w.String(e.Key.String())
	w.RawString(`,"raw":`)
	w.String(hex.EncodeToString([]byte(e.Key.Raw)))
	if e.Key.Type == key.KeyRune {
		w.RawString(`,"rune":`)
		w.Int32(e.Key.Rune)
	}
	w.RawString(`,"idle":`)
	w.Int(e.Idle)
	if e.Label != "" {
		w.RawString(`,"action":`)
		w.String(e.Label)
	}
	w.RawByte('}')
}

// Writer appends events to an io.Writer, one per line.
type Writer struct {
	mu  sync.Mutex
	out io.Writer
	seq int
	now func() time.Time
}

// NewWriter returns a Writer on out.
func NewWriter(out io.Writer) *Writer {
	return &Writer{out: out, now: time.Now}
}

// Record writes k with the number of idle polls that preceded it and
// the bound action, if any.
func (t *Writer) Record(k key.Key, idle int, action string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.seq++
	e := Event{Seq: t.seq, At: t.now(), Key: k, Idle: idle, Label: action}

	var w jwriter.Writer
	e.MarshalEasyJSON(&w)
	w.RawByte('\n')
	if w.Error != nil {
		return fmt.Errorf("encoding trace event: %w", w.Error)
	}
	if _, err := w.DumpTo(t.out); err != nil {
		return fmt.Errorf("writing trace event: %w", err)
	}
	return nil
}

// Count returns the number of events recorded so far.
func (t *Writer) Count() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.seq
}
