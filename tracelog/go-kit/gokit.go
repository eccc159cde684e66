// Copyright 2023 The Arpeggio Go Authors. All rights reserved.
// Use of this source code is governed by the MIT license
// that can be found in the LICENSE file.

// Package tgokit provides a parse-trace sink backed by a go-kit logger.
package tgokit

import (
	"github.com/go-kit/kit/log"

	"github.com/textx-vscode/arpeggio/tracelog"
)

type sink struct {
	logger log.Logger
}

var _ tracelog.Sink = (*sink)(nil)

// NewSink returns a sink that logs every trace event.
func NewSink(logger log.Logger) tracelog.Sink {
	return &sink{logger: logger}
}

func (s *sink) Emit(e tracelog.Event) {
	keyvals := []any{
		"msg", e.Kind.String(),
		"position", e.Position,
		"depth", e.Depth,
	}
	if e.Name != "" {
		keyvals = append(keyvals, "name", e.Name)
	}
	if e.Text != "" {
		keyvals = append(keyvals, "text", e.Text)
	}
	s.logger.Log(keyvals...)
}
