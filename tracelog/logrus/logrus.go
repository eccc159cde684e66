// Copyright 2023 The Arpeggio Go Authors. All rights reserved.
// Use of this source code is governed by the MIT license
// that can be found in the LICENSE file.

// Package tlogrus provides a parse-trace sink backed by a logrus logger.
package tlogrus

import (
	"github.com/sirupsen/logrus"

	"github.com/textx-vscode/arpeggio/tracelog"
)

type sink struct {
	logger logrus.FieldLogger
}

var _ tracelog.Sink = (*sink)(nil)

// NewSink returns a sink that logs every trace event at debug level.
func NewSink(logger logrus.FieldLogger) tracelog.Sink {
	return &sink{logger: logger}
}

func (s *sink) Emit(e tracelog.Event) {
	fields := logrus.Fields{
		"position": e.Position,
		"depth":    e.Depth,
	}
	if e.Name != "" {
		fields["name"] = e.Name
	}
	if e.Text != "" {
		fields["text"] = e.Text
	}
	s.logger.WithFields(fields).Debug(e.Kind.String())
}
