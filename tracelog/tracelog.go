// Copyright 2023 The Arpeggio Go Authors. All rights reserved.
// Use of this source code is governed by the MIT license
// that can be found in the LICENSE file.

// Package tracelog defines the event stream a parser emits while matching
// in debug mode. The core package produces Events; a Sink consumes them.
// Sibling packages adapt the stream to common logging backends so that the
// core never depends on one.
package tracelog

import (
	"fmt"
	"io"
	"strings"
)

// Kind discriminates trace events.
type Kind int

const (
	// Enter is emitted when an expression is about to be tried.
	Enter Kind = iota
	// Leave is emitted when an expression attempt finishes, matched or not.
	Leave
	// CacheHit is emitted when a memoized outcome is replayed.
	CacheHit
	// Match is emitted when a terminal expression matches input.
	Match
	// NoMatch is emitted when a terminal expression fails to match.
	NoMatch
)

var kindNames = [...]string{
	Enter:    "enter",
	Leave:    "leave",
	CacheHit: "cache hit",
	Match:    "match",
	NoMatch:  "no match",
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return fmt.Sprintf("Kind(%d)", int(k))
	}
	return kindNames[k]
}

// Event is one step of a parse trace.
type Event struct {
	Kind Kind
	// Name is the expression or rule name; empty for terminal outcomes.
	Name string
	// Position is the input offset the event refers to.
	Position int
	// Depth is the expression nesting depth.
	Depth int
	// Text is the matched text, when the event has one.
	Text string
}

// Sink receives trace events. Implementations must be cheap: the parser
// emits several events per expression attempt.
type Sink interface {
	Emit(Event)
}

// SinkFunc adapts a function to a Sink.
type SinkFunc func(Event)

func (f SinkFunc) Emit(e Event) { f(e) }

// writerSink prints the classic line-oriented trace.
type writerSink struct {
	w io.Writer
}

// NewWriter returns a Sink that prints one line per event to w.
func NewWriter(w io.Writer) Sink {
	return &writerSink{w: w}
}

const indent = "..................................................................."

func (s *writerSink) Emit(e Event) {
	pad := indent[:min(e.Depth, len(indent))]
	switch e.Kind {
	case Enter:
		fmt.Fprintf(s.w, "%s>> Entering rule %s at %d\n", pad, e.Name, e.Position)
	case Leave:
		fmt.Fprintf(s.w, "%s<< Leaving rule %s\n", pad, e.Name)
	case CacheHit:
		fmt.Fprintf(s.w, "%s** Cache hit for [%s, %d]\n", pad, e.Name, e.Position)
	case Match:
		fmt.Fprintf(s.w, "%s++ Match %q at %d\n", pad, e.Text, e.Position)
	case NoMatch:
		fmt.Fprintf(s.w, "%s-- NoMatch at %d\n", pad, e.Position)
	}
}

// String formats an event the way the writer sink prints it, without
// indentation.
func (e Event) String() string {
	var b strings.Builder
	(&writerSink{w: &b}).Emit(Event{Kind: e.Kind, Name: e.Name, Position: e.Position, Text: e.Text})
	return strings.TrimSuffix(b.String(), "\n")
}
