// Copyright 2023 The Arpeggio Go Authors. All rights reserved.
// Use of this source code is governed by the MIT license
// that can be found in the LICENSE file.

package arpeggio

import (
	"fmt"
	"strings"
)

// SemanticAction transforms a parse tree node into a node of the abstract
// semantic graph during the first pass of ASG. children holds the already
// transformed results of the node's children, in source order, with
// suppressed results omitted. Returning nil suppresses the node.
//
// An action that also implements SecondPasser is queued during the first
// pass and invoked again after the whole tree has been walked, in
// first-pass completion order. The second pass is the place to resolve
// forward references, e.g. linking identifier uses to declarations
// collected during the first pass.
type SemanticAction interface {
	FirstPass(p *Parser, node ParseTreeNode, children []any) (any, error)
}

// SecondPasser is the optional second-pass hook of a SemanticAction. value
// is the action's first-pass result.
type SecondPasser interface {
	SecondPass(p *Parser, value any) error
}

// ActionFunc adapts a function to a first-pass-only SemanticAction.
type ActionFunc func(p *Parser, node ParseTreeNode, children []any) (any, error)

func (f ActionFunc) FirstPass(p *Parser, node ParseTreeNode, children []any) (any, error) {
	return f(p, node, children)
}

// ASG walks the parse tree of the last Parse with the given semantic
// actions, keyed by rule name, and returns the resulting abstract semantic
// graph. If actions is nil, the actions registered at construction time are
// used. Nodes without an action reduce by the default action: terminals
// become their matched string (or are suppressed), and non-terminals
// collapse to their only child when possible.
func (p *Parser) ASG(actions map[string]SemanticAction) (any, error) {
	if p.parseTree == nil {
		return nil, fmt.Errorf("arpeggio: no parse tree; Parse must succeed before ASG")
	}
	if actions == nil {
		actions = p.semActions
	}

	type queued struct {
		rule  string
		value any
	}
	var secondPass []queued

	var walk func(node ParseTreeNode) (any, error)
	walk = func(node ParseTreeNode) (any, error) {
		var children []any
		if nt, ok := node.(*NonTerminal); ok {
			for _, c := range nt.Children() {
				v, err := walk(c)
				if err != nil {
					return nil, err
				}
				if v != nil {
					children = append(children, v)
				}
			}
		}
		action, ok := actions[node.Rule()]
		if !ok {
			return defaultFirstPass(node, children), nil
		}
		value, err := action.FirstPass(p, node, children)
		if err != nil {
			return nil, err
		}
		if _, ok := action.(SecondPasser); ok {
			secondPass = append(secondPass, queued{rule: node.Rule(), value: value})
		}
		return value, nil
	}

	asg, err := walk(p.parseTree)
	if err != nil {
		return nil, err
	}
	for _, q := range secondPass {
		if err := actions[q.rule].(SecondPasser).SecondPass(p, q.value); err != nil {
			return nil, err
		}
	}
	return asg, nil
}

// defaultFirstPass is the reduction applied to nodes without a registered
// action.
func defaultFirstPass(node ParseTreeNode, children []any) any {
	if t, ok := node.(*Terminal); ok {
		if t.Suppressed() {
			return nil
		}
		return t.Value()
	}
	switch len(children) {
	case 0:
		return nil
	case 1:
		return children[0]
	}
	// With a single non-string child among strings, keep just that child;
	// this elides brackets and similar punctuation. Otherwise reduce to
	// the concatenated string form.
	var nonString any
	count := 0
	for _, c := range children {
		if _, ok := c.(string); !ok {
			nonString = c
			count++
		}
	}
	if count == 1 {
		return nonString
	}
	var b strings.Builder
	for _, c := range children {
		fmt.Fprint(&b, c)
	}
	return b.String()
}
