package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/hako/durafmt"

	"github.com/udisondev/tileworld/internal/surface/framelog"
)

var verbose = flag.Bool("v", false, "print every frame")

func main() {
	flag.Parse()
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, nil)))

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: framedump [-v] <frame log>")
		os.Exit(2)
	}
	if err := run(flag.Arg(0), os.Stdout); err != nil {
		slog.Error("fatal", "err", err)
		os.Exit(1)
	}
}

type summary struct {
	records   int
	frames    int
	full      int
	clears    int
	statics   int
	sprites   int
	rects     int
	bytes     int64
	first     *framelog.Record
	last      *framelog.Record
	maxSprite int
}

func run(path string, w io.Writer) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening frame log: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("reading frame log size: %w", err)
	}

	sum := summary{bytes: info.Size()}
	r := framelog.NewReader(f)
	for {
		rec, err := r.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return fmt.Errorf("record %d: %w", sum.records, err)
		}
		sum.add(rec)
		if *verbose {
			printRecord(w, rec)
		}
	}

	sum.print(w)
	return nil
}

func (s *summary) add(rec framelog.Record) {
	s.records++
	switch rec.Kind {
	case framelog.RecordClear:
		s.clears++
	case framelog.RecordStatic:
		s.statics++
	case framelog.RecordFrame:
		f := rec.Frame
		if f == nil {
			return
		}
		s.frames++
		if f.Full {
			s.full++
		}
		s.sprites += len(f.Entities)
		s.rects += len(f.Clear)
		s.maxSprite = max(s.maxSprite, len(f.Entities))
		if s.first == nil {
			s.first = &rec
		}
		s.last = &rec
	}
}

func (s *summary) print(w io.Writer) {
	fmt.Fprintf(w, "records   %s (%s)\n", humanize.Comma(int64(s.records)), humanize.Bytes(uint64(s.bytes)))
	fmt.Fprintf(w, "frames    %s, %s full\n", humanize.Comma(int64(s.frames)), humanize.Comma(int64(s.full)))
	fmt.Fprintf(w, "clears    %d, static redraws %d\n", s.clears, s.statics)
	if s.frames > 0 {
		fmt.Fprintf(w, "sprites   %s drawn, %.1f per frame, %d at most\n",
			humanize.Comma(int64(s.sprites)), float64(s.sprites)/float64(s.frames), s.maxSprite)
		fmt.Fprintf(w, "rects     %s cleared\n", humanize.Comma(int64(s.rects)))
	}
	if s.first != nil && s.last != nil {
		span := s.last.Frame.Time.Sub(s.first.Frame.Time)
		fmt.Fprintf(w, "span      %s (seq %d..%d)\n", durafmt.Parse(span).LimitFirstN(2), s.first.Frame.Seq, s.last.Frame.Seq)
	}
}

func printRecord(w io.Writer, rec framelog.Record) {
	switch rec.Kind {
	case framelog.RecordFrame:
		f := rec.Frame
		if f == nil {
			return
		}
		fmt.Fprintf(w, "frame %6d  camera %3d,%-3d full=%-5t sprites=%-3d clear=%-3d tiles=%d\n",
			f.Seq, f.View.GridX, f.View.GridY, f.Full, len(f.Entities), len(f.Clear), len(f.Tiles))
	case framelog.RecordStatic:
		if v := rec.View; v != nil {
			fmt.Fprintf(w, "static       camera %3d,%-3d\n", v.GridX, v.GridY)
		}
	default:
		fmt.Fprintln(w, rec.Kind)
	}
}
