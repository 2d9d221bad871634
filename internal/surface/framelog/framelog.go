// Package framelog records the frames a simulation presents as a msgpack
// stream and reads them back.
package framelog

import (
	"bufio"
	"errors"
	"fmt"
	"io"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/udisondev/tileworld/internal/surface"
)

// RecordKind tells what a record holds.
type RecordKind uint8

const (
	RecordFrame RecordKind = iota + 1
	RecordClear
	RecordStatic
)

func (k RecordKind) String() string {
	switch k {
	case RecordFrame:
		return "frame"
	case RecordClear:
		return "clear"
	case RecordStatic:
		return "static"
	}
	return fmt.Sprintf("RecordKind(%d)", uint8(k))
}

// Record is one surface call.
type Record struct {
	Kind  RecordKind     `msgpack:"k"`
	Frame *surface.Frame `msgpack:"f,omitempty"`
	View  *surface.View  `msgpack:"v,omitempty"`
}

// Stats counts what a Writer has written.
type Stats struct {
	Frames  int
	Clears  int
	Statics int
	Bytes   int64
}

// Writer is a surface that appends every call to a stream.
type Writer struct {
	bw    *bufio.Writer
	cw    *countingWriter
	enc   *msgpack.Encoder
	err   error
	stats Stats
}

var _ surface.Surface = (*Writer)(nil)

// NewWriter creates a Writer on w. Call Flush or Close when done.
func NewWriter(w io.Writer) *Writer {
	cw := &countingWriter{w: w}
	bw := bufio.NewWriter(cw)
	enc := msgpack.NewEncoder(bw)
	enc.SetOmitEmpty(true)
	return &Writer{bw: bw, cw: cw, enc: enc}
}

// Present records a frame. It also reports an error left by an earlier
// ClearScreen or RenderStatic.
func (w *Writer) Present(f *surface.Frame) error {
	w.write(Record{Kind: RecordFrame, Frame: f})
	if w.err == nil {
		w.stats.Frames++
	}
	return w.err
}

// ClearScreen records a clear.
func (w *Writer) ClearScreen() {
	w.write(Record{Kind: RecordClear})
	if w.err == nil {
		w.stats.Clears++
	}
}

// RenderStatic records a static layer redraw.
func (w *Writer) RenderStatic(v surface.View) {
	w.write(Record{Kind: RecordStatic, View: &v})
	if w.err == nil {
		w.stats.Statics++
	}
}

func (w *Writer) write(r Record) {
	if w.err != nil {
		return
	}
	if err := w.enc.Encode(&r); err != nil {
		w.err = fmt.Errorf("encoding %s record: %w", r.Kind, err)
	}
}

// Flush writes buffered records to the underlying writer.
func (w *Writer) Flush() error {
	if w.err != nil {
		return w.err
	}
	if err := w.bw.Flush(); err != nil {
		w.err = fmt.Errorf("flushing frame log: %w", err)
	}
	return w.err
}

// Close flushes and closes the underlying writer when it is a Closer.
func (w *Writer) Close() error {
	err := w.Flush()
	if c, ok := w.cw.w.(io.Closer); ok {
		if cerr := c.Close(); cerr != nil {
			err = errors.Join(err, fmt.Errorf("closing frame log: %w", cerr))
		}
	}
	return err
}

// Stats returns what was written so far. Bytes counts flushed bytes only.
func (w *Writer) Stats() Stats {
	s := w.stats
	s.Bytes = w.cw.n
	return s
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}

// Reader decodes a stream written by Writer.
type Reader struct {
	dec *msgpack.Decoder
}

// NewReader creates a Reader on r.
func NewReader(r io.Reader) *Reader {
	return &Reader{dec: msgpack.NewDecoder(bufio.NewReader(r))}
}

// Next returns the next record, or io.EOF at the end of the stream.
func (r *Reader) Next() (Record, error) {
	var rec Record
	if err := r.dec.Decode(&rec); err != nil {
		if errors.Is(err, io.EOF) {
			return Record{}, io.EOF
		}
		return Record{}, fmt.Errorf("decoding record: %w", err)
	}
	return rec, nil
}

// Replay feeds every record of r into s, in order. It stops at the first
// Present error.
func Replay(r *Reader, s surface.Surface) (int, error) {
	n := 0
	for {
		rec, err := r.Next()
		if errors.Is(err, io.EOF) {
			return n, nil
		}
		if err != nil {
			return n, err
		}
		switch rec.Kind {
		case RecordFrame:
			if rec.Frame == nil {
				continue
			}
			if err := s.Present(rec.Frame); err != nil {
				return n, fmt.Errorf("replaying frame %d: %w", rec.Frame.Seq, err)
			}
		case RecordClear:
			s.ClearScreen()
		case RecordStatic:
			if rec.View != nil {
				s.RenderStatic(*rec.View)
			}
		}
		n++
	}
}
