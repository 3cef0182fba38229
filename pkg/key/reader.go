// ABOUTME: Reader turns timed single-byte reads into decoded Key events.
// ABOUTME: Poll never blocks past the device timeout; unfinished sequences degrade to their first byte.

package key

import (
	"fmt"
	"io"
)

const (
	// DefaultFollowUps is how many empty reads an escape or UTF-8
	// sequence may see before its first byte is reported alone.
	DefaultFollowUps = 2

	// maxSequenceLen bounds how many bytes one sequence may collect.
	maxSequenceLen = 16
)

// ReaderOption configures a Reader.
type ReaderOption func(*Reader)

// WithFollowUps sets the empty-read budget for completing a sequence.
// Values below 1 are raised to 1.
func WithFollowUps(n int) ReaderOption {
	return func(r *Reader) { r.followUps = max(n, 1) }
}

// Reader decodes keys from a source whose Read returns (0, nil) when its
// timeout elapses, such as a raw-mode terminal.Session. It is not safe
// for concurrent use.
type Reader struct {
	src       io.Reader
	followUps int
	pending   []byte // bytes read ahead and not yet delivered
	buf       [1]byte
}

// NewReader returns a Reader polling src one byte at a time.
func NewReader(src io.Reader, opts ...ReaderOption) *Reader {
	r := &Reader{src: src, followUps: DefaultFollowUps}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Poll waits at most one read timeout for a key. It returns ok=false
// with a nil error when no input arrived, which is the caller's chance
// to do idle work. Escape and UTF-8 sequences cost at most FollowUps
// extra timeouts; if one does not complete its lead byte is returned on
// its own and the remaining bytes are delivered by later polls.
func (r *Reader) Poll() (Key, bool, error) {
	b, ok, err := r.next()
	if err != nil || !ok {
		return Key{}, false, err
	}

	switch {
	case b == 0x1b:
		return r.collect(b, sequenceStatus)
	case b >= 0xc0 && b < 0xf8:
		return r.collect(b, utf8Status)
	}
	return ParseKey(string([]byte{b})), true, nil
}

// Buffered reports how many read-ahead bytes are waiting for delivery.
func (r *Reader) Buffered() int { return len(r.pending) }

// next returns a read-ahead byte or performs one timed read.
func (r *Reader) next() (byte, bool, error) {
	if len(r.pending) > 0 {
		b := r.pending[0]
		r.pending = r.pending[1:]
		return b, true, nil
	}

	n, err := r.src.Read(r.buf[:])
	if err != nil {
		return 0, false, fmt.Errorf("polling key: %w", err)
	}
	if n == 0 {
		return 0, false, nil
	}
	return r.buf[0], true, nil
}

// collect gathers bytes after lead until status reports a complete or
// impossible sequence, or the empty-read budget runs out.
func (r *Reader) collect(lead byte, status func([]byte) (complete, valid bool)) (Key, bool, error) {
	seq := []byte{lead}
	misses := 0

	for len(seq) < maxSequenceLen {
		b, ok, err := r.next()
		if err != nil {
			return Key{}, false, err
		}
		if !ok {
			misses++
			if misses >= r.followUps {
				break
			}
			continue
		}

		seq = append(seq, b)
		complete, valid := status(seq)
		if complete {
			return ParseKey(string(seq)), true, nil
		}
		if !valid {
			break
		}
	}

	r.unread(seq[1:])
	return ParseKey(string(seq[:1])), true, nil
}

// unread puts bytes back in front of the read-ahead queue.
func (r *Reader) unread(b []byte) {
	if len(b) == 0 {
		return
	}
	r.pending = append(append([]byte(nil), b...), r.pending...)
}

// utf8Status checks a partial UTF-8 encoding starting with a lead byte.
func utf8Status(seq []byte) (complete, valid bool) {
	need := 2
	switch lead := seq[0]; {
	case lead >= 0xf0:
		need = 4
	case lead >= 0xe0:
		need = 3
	}
	last := seq[len(seq)-1]
	if last < 0x80 || last > 0xbf {
		return false, false
	}
	return len(seq) == need, len(seq) <= need
}
