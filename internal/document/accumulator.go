// Package document owns the growing text of a writing run and its word count.
package document

import (
	"errors"
	"strings"
	"sync"
	"time"
)

// SegmentSeparator joins consecutive segments in the final text.
const SegmentSeparator = "\n\n"

var (
	// ErrFinalized is returned when appending to a frozen accumulator.
	ErrFinalized = errors.New("document already finalized")
	// ErrDraftClosed is returned when writing to a committed or discarded draft.
	ErrDraftClosed = errors.New("draft already closed")
)

// Document is the immutable result of a run.
type Document struct {
	Text      string
	Segments  []string
	WordCount int
	Duration  time.Duration
}

// Option configures an Accumulator.
type Option func(*Accumulator)

// WithClock overrides time.Now, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(a *Accumulator) {
		a.now = now
	}
}

// Accumulator is append-only and confined to a single writer.
type Accumulator struct {
	segments []string
	text     strings.Builder
	tally    Tally
	draft    *Draft

	now   func() time.Time
	start time.Time

	once  sync.Once
	final Document
	done  bool
}

// NewAccumulator starts the duration clock.
func NewAccumulator(opts ...Option) *Accumulator {
	a := &Accumulator{now: time.Now}
	for _, opt := range opts {
		opt(a)
	}
	a.start = a.now()
	return a
}

// Append adds a complete segment.
func (a *Accumulator) Append(segment string) error {
	d, err := a.Begin()
	if err != nil {
		return err
	}
	if err := d.Write(segment); err != nil {
		return err
	}
	return d.Commit()
}

// Begin opens a draft for a streamed segment. Only one draft may be open.
func (a *Accumulator) Begin() (*Draft, error) {
	if a.done {
		return nil, ErrFinalized
	}
	if a.draft != nil {
		a.draft.Discard()
	}
	base := a.tally
	if len(a.segments) > 0 {
		base = Reduce(base, SegmentSeparator)
	}
	d := &Draft{acc: a, base: base, tally: base}
	a.draft = d
	return d, nil
}

// WordCount returns the committed word count without rescanning.
func (a *Accumulator) WordCount() int {
	return Flush(a.tally).Words
}

// Segments returns the number of committed segments.
func (a *Accumulator) Segments() int {
	return len(a.segments)
}

// Text returns the committed text so far.
func (a *Accumulator) Text() string {
	return a.text.String()
}

// Finalize freezes the accumulator. Later calls return the same Document.
func (a *Accumulator) Finalize() Document {
	a.once.Do(func() {
		if a.draft != nil {
			a.draft.Discard()
		}
		a.done = true
		segs := make([]string, len(a.segments))
		copy(segs, a.segments)
		a.final = Document{
			Text:      a.text.String(),
			Segments:  segs,
			WordCount: Flush(a.tally).Words,
			Duration:  a.now().Sub(a.start),
		}
	})
	return a.final
}

func (a *Accumulator) commit(d *Draft) {
	if len(a.segments) > 0 {
		a.text.WriteString(SegmentSeparator)
	}
	seg := d.buf.String()
	a.text.WriteString(seg)
	a.segments = append(a.segments, seg)
	a.tally = d.tally
	a.draft = nil
}

// Draft buffers one streamed segment until it is committed or discarded.
type Draft struct {
	acc    *Accumulator
	buf    strings.Builder
	base   Tally
	tally  Tally
	closed bool
}

// Write appends a chunk and updates the live count incrementally.
func (d *Draft) Write(chunk string) error {
	if d.closed {
		return ErrDraftClosed
	}
	d.buf.WriteString(chunk)
	d.tally = Reduce(d.tally, chunk)
	return nil
}

// Words is the number of words in this draft alone.
func (d *Draft) Words() int {
	return Flush(d.tally).Words - Flush(d.base).Words
}

// LiveWords is the document word count as if the draft were committed now.
func (d *Draft) LiveWords() int {
	return Flush(d.tally).Words
}

// Len returns the number of bytes buffered.
func (d *Draft) Len() int {
	return d.buf.Len()
}

// Text returns the buffered chunk text.
func (d *Draft) Text() string {
	return d.buf.String()
}

// Commit appends the draft as a segment.
func (d *Draft) Commit() error {
	if d.closed {
		return ErrDraftClosed
	}
	if d.acc.done {
		d.closed = true
		return ErrFinalized
	}
	d.closed = true
	d.acc.commit(d)
	return nil
}

// Discard drops the buffered text. Safe to call more than once.
func (d *Draft) Discard() {
	if d.closed {
		return
	}
	d.closed = true
	if d.acc.draft == d {
		d.acc.draft = nil
	}
}
