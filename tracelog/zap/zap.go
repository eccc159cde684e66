// Copyright 2023 The Arpeggio Go Authors. All rights reserved.
// Use of this source code is governed by the MIT license
// that can be found in the LICENSE file.

// Package tzap provides a parse-trace sink backed by a zap logger.
package tzap

import (
	"go.uber.org/zap"

	"github.com/textx-vscode/arpeggio/tracelog"
)

type sink struct {
	logger *zap.Logger
}

var _ tracelog.Sink = (*sink)(nil)

// NewSink returns a sink that logs every trace event at debug level.
func NewSink(logger *zap.Logger) tracelog.Sink {
	return &sink{logger: logger}
}

func (s *sink) Emit(e tracelog.Event) {
	fields := []zap.Field{
		zap.Int("position", e.Position),
		zap.Int("depth", e.Depth),
	}
	if e.Name != "" {
		fields = append(fields, zap.String("name", e.Name))
	}
	if e.Text != "" {
		fields = append(fields, zap.String("text", e.Text))
	}
	s.logger.Debug(e.Kind.String(), fields...)
}
