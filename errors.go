// Copyright 2023 The Arpeggio Go Authors. All rights reserved.
// Use of this source code is governed by the MIT license
// that can be found in the LICENSE file.

package arpeggio

import "fmt"

// GrammarError is returned while building a parser model to indicate an
// error in the grammar definition. It is a programming error, not an input
// error.
type GrammarError struct {
	Message string
}

func (e *GrammarError) Error() string { return e.Message }

func grammarErrorf(format string, args ...any) *GrammarError {
	return &GrammarError{Message: fmt.Sprintf(format, args...)}
}

// SemanticError reports an error raised during semantic analysis. The core
// never produces one; it is defined for use by SemanticAction
// implementations so that clients have a single error category to test for.
type SemanticError struct {
	Message string
}

func (e *SemanticError) Error() string { return e.Message }

// Semanticf builds a SemanticError with a formatted message.
func Semanticf(format string, args ...any) *SemanticError {
	return &SemanticError{Message: fmt.Sprintf(format, args...)}
}

// NoMatch reports that the input could not be parsed. The parser keeps the
// failure at the furthest input position it reached, so the record names the
// expression or rule expected at that point.
//
// During matching NoMatch is also the internal backtracking signal; only the
// final, unabsorbed record is surfaced to the caller of Parse.
type NoMatch struct {
	// Rule is the name of the expression or rule that was expected.
	Rule string
	// Position is the offset in the input where the match failed.
	Position int
	// Parser is the parser that produced this record.
	Parser *Parser

	// up is set while the failure is propagating up the parser model
	// without any new expression having been tried. Rule roots entered at
	// the failure position rename the record while it is set.
	up bool
}

func (e *NoMatch) Error() string {
	line, col := e.Parser.PosToLineCol(e.Position)
	return fmt.Sprintf("Expected '%s' at position (%d, %d) => '%s'.",
		e.Rule, line, col, e.Parser.Context(0, e.Position))
}
