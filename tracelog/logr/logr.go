// Copyright 2023 The Arpeggio Go Authors. All rights reserved.
// Use of this source code is governed by the MIT license
// that can be found in the LICENSE file.

// Package tlogr provides a parse-trace sink backed by a logr logger.
package tlogr

import (
	"github.com/go-logr/logr"

	"github.com/textx-vscode/arpeggio/tracelog"
)

type sink struct {
	logger logr.Logger
}

var _ tracelog.Sink = (*sink)(nil)

// NewSink returns a sink that logs every trace event at verbosity 1.
func NewSink(logger logr.Logger) tracelog.Sink {
	return &sink{logger: logger}
}

func (s *sink) Emit(e tracelog.Event) {
	kvs := []any{
		"position", e.Position,
		"depth", e.Depth,
	}
	if e.Name != "" {
		kvs = append(kvs, "name", e.Name)
	}
	if e.Text != "" {
		kvs = append(kvs, "text", e.Text)
	}
	s.logger.V(1).Info(e.Kind.String(), kvs...)
}
