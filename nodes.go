// Copyright 2023 The Arpeggio Go Authors. All rights reserved.
// Use of this source code is governed by the MIT license
// that can be found in the LICENSE file.

package arpeggio

import "strings"

// ParseTreeNode is a node of the parse tree produced by Parse. It is either
// a *Terminal or a *NonTerminal.
type ParseTreeNode interface {
	// Rule returns the name of the rule that created this node, or the
	// empty string if it was produced by a non-root expression. End-of-input
	// terminals are named "EOF" and attached comment subtrees "comment".
	Rule() string
	// Position returns the offset in the input where the match occurred.
	Position() int
	// Comments returns the comment subtree attached to this node, if any.
	Comments() *NonTerminal
	// String returns the matched text: the terminal value, or the
	// concatenation of all child text for a non-terminal.
	String() string

	setComments(c *NonTerminal)
}

// treeNode carries the attributes shared by terminals and non-terminals.
type treeNode struct {
	rule     string
	position int
	comments *NonTerminal
}

func (n *treeNode) Rule() string            { return n.rule }
func (n *treeNode) Position() int           { return n.position }
func (n *treeNode) Comments() *NonTerminal  { return n.comments }
func (n *treeNode) setComments(c *NonTerminal) { n.comments = c }

// Terminal is a leaf of the parse tree holding the matched substring.
type Terminal struct {
	treeNode
	value string
	// suppress marks tokens the default semantic action drops, such as
	// punctuation literals inside sequences and the EOF marker.
	suppress bool
}

func newTerminal(rule string, position int, value string, suppress bool) *Terminal {
	return &Terminal{
		treeNode: treeNode{rule: rule, position: position},
		value:    value,
		suppress: suppress,
	}
}

// Value returns the matched substring.
func (t *Terminal) Value() string { return t.value }

// Suppressed reports whether the default semantic action ignores this token.
func (t *Terminal) Suppressed() bool { return t.suppress }

func (t *Terminal) String() string { return t.value }

// NonTerminal is an inner node of the parse tree. Its children are in
// source order.
type NonTerminal struct {
	treeNode
	nodes []ParseTreeNode

	// childCache remembers the first child per rule name for Child.
	childCache map[string]ParseTreeNode
}

func newNonTerminal(rule string, position int, nodes []ParseTreeNode) *NonTerminal {
	return &NonTerminal{
		treeNode: treeNode{rule: rule, position: position},
		nodes:    nodes,
	}
}

// Children returns the child nodes in source order. The returned slice is
// owned by the node and must not be modified.
func (n *NonTerminal) Children() []ParseTreeNode { return n.nodes }

// Len returns the number of children.
func (n *NonTerminal) Len() int { return len(n.nodes) }

// Child returns the first child created by the named rule, or nil.
func (n *NonTerminal) Child(rule string) ParseTreeNode {
	if c, ok := n.childCache[rule]; ok {
		return c
	}
	for _, c := range n.nodes {
		if c.Rule() == rule {
			if n.childCache == nil {
				n.childCache = make(map[string]ParseTreeNode)
			}
			n.childCache[rule] = c
			return c
		}
	}
	return nil
}

func (n *NonTerminal) String() string {
	var b strings.Builder
	for _, c := range n.nodes {
		b.WriteString(c.String())
	}
	return b.String()
}

// flatten appends the parse results held in v to out. Results produced by
// the combinators are either nil, a single node, or an arbitrarily nested
// list of nodes; nil entries are dropped.
func flatten(out []ParseTreeNode, v any) []ParseTreeNode {
	switch v := v.(type) {
	case nil:
	case []ParseTreeNode:
		out = append(out, v...)
	case []any:
		for _, e := range v {
			out = flatten(out, e)
		}
	case ParseTreeNode:
		out = append(out, v)
	}
	return out
}
