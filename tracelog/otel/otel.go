// Copyright 2023 The Arpeggio Go Authors. All rights reserved.
// Use of this source code is governed by the MIT license
// that can be found in the LICENSE file.

// Package totel provides a parse-trace sink that records one OpenTelemetry
// span per expression attempt. Rule entry opens a span, rule exit closes
// it; terminal outcomes and memo hits become span events.
package totel

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/textx-vscode/arpeggio/tracelog"
)

type sink struct {
	tracer trace.Tracer

	// The parser emits Enter and Leave strictly nested, so a stack of
	// open spans mirrors the expression nesting.
	ctxs  []context.Context
	spans []trace.Span
}

var _ tracelog.Sink = (*sink)(nil)

// NewSink returns a sink recording spans with tracer. The parser is
// single-threaded, so the sink keeps its span stack without locking.
func NewSink(tracer trace.Tracer) tracelog.Sink {
	return &sink{tracer: tracer, ctxs: []context.Context{context.Background()}}
}

func (s *sink) Emit(e tracelog.Event) {
	switch e.Kind {
	case tracelog.Enter:
		ctx, span := s.tracer.Start(s.ctxs[len(s.ctxs)-1], e.Name,
			trace.WithAttributes(attribute.Int("position", e.Position)))
		s.ctxs = append(s.ctxs, ctx)
		s.spans = append(s.spans, span)
	case tracelog.Leave:
		if len(s.spans) == 0 {
			return
		}
		span := s.spans[len(s.spans)-1]
		span.SetAttributes(attribute.Int("end", e.Position))
		span.End()
		s.spans = s.spans[:len(s.spans)-1]
		s.ctxs = s.ctxs[:len(s.ctxs)-1]
	default:
		if len(s.spans) == 0 {
			return
		}
		attrs := []attribute.KeyValue{attribute.Int("position", e.Position)}
		if e.Text != "" {
			attrs = append(attrs, attribute.String("text", e.Text))
		}
		s.spans[len(s.spans)-1].AddEvent(e.Kind.String(), trace.WithAttributes(attrs...))
	}
}
