// Copyright 2023 The Arpeggio Go Authors. All rights reserved.
// Use of this source code is governed by the MIT license
// that can be found in the LICENSE file.

// Package tzerolog provides a parse-trace sink backed by a zerolog logger.
package tzerolog

import (
	"github.com/rs/zerolog"

	"github.com/textx-vscode/arpeggio/tracelog"
)

type sink struct {
	logger zerolog.Logger
}

var _ tracelog.Sink = (*sink)(nil)

// NewSink returns a sink that logs every trace event at debug level.
func NewSink(logger zerolog.Logger) tracelog.Sink {
	return &sink{logger: logger}
}

func (s *sink) Emit(e tracelog.Event) {
	ev := s.logger.Debug().
		Int("position", e.Position).
		Int("depth", e.Depth)
	if e.Name != "" {
		ev = ev.Str("name", e.Name)
	}
	if e.Text != "" {
		ev = ev.Str("text", e.Text)
	}
	ev.Msg(e.Kind.String())
}
