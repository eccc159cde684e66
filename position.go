// Copyright 2023 The Arpeggio Go Authors. All rights reserved.
// Use of this source code is governed by the MIT license
// that can be found in the LICENSE file.

package arpeggio

import (
	"strings"

	"golang.org/x/exp/slices"
)

// PosToLineCol converts an input offset into 1-based line and column
// numbers. The newline index is built lazily per parse run.
func (p *Parser) PosToLineCol(pos int) (line, col int) {
	if p.lineEnds == nil {
		p.lineEnds = []int{}
		from := 0
		for {
			i := strings.IndexByte(p.input[from:], '\n')
			if i < 0 {
				break
			}
			p.lineEnds = append(p.lineEnds, from+i)
			from += i + 1
		}
	}
	line, _ = slices.BinarySearch(p.lineEnds, pos)
	col = pos
	if line > 0 {
		col -= p.lineEnds[line-1]
		if c := p.input[p.lineEnds[line-1]]; c == '\n' || c == '\r' {
			col--
		}
	}
	return line + 1, col + 1
}

// Context returns the input substring around position: up to ten code units
// on each side. When length is positive, the length units starting at
// position are marked with asterisks. A negative position means the current
// parse position.
func (p *Parser) Context(length, position int) string {
	if position < 0 {
		position = p.position
	}
	clamp := func(i int) int {
		return min(max(i, 0), len(p.input))
	}
	before := p.input[clamp(position-10):clamp(position)]
	if length > 0 {
		marked := p.input[clamp(position):clamp(position+length)]
		after := p.input[clamp(position+length):clamp(position+10)]
		return before + "*" + marked + "*" + after
	}
	return before + "*" + p.input[clamp(position):clamp(position+10)]
}
