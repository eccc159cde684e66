// Copyright 2023 The Arpeggio Go Authors. All rights reserved.
// Use of this source code is governed by the MIT license
// that can be found in the LICENSE file.

package arpeggio

import (
	"fmt"
	"regexp"
	"strings"
)

// Expression is a node of the parser model. Expressions are built from
// grammar descriptions by New or Parser.SetModel and evaluated against an
// input by Parse.
//
// The set of expression kinds is closed: Sequence, OrderedChoice, Optional,
// ZeroOrMore, OneOrMore, And, Not, Empty, Combine, StrMatch, RegExMatch and
// EndOfFile.
type Expression interface {
	// Name returns the diagnostic name of the expression: the rule name
	// for rule roots, otherwise a kind- or content-derived name.
	Name() string
	// RuleName returns the rule this expression is the root of, or "".
	RuleName() string
	// Root reports whether this expression is the root of a named rule.
	Root() bool
	// Children returns the child expressions. Rule cross-references make
	// the full graph cyclic; use Walk to traverse it safely.
	Children() []Expression

	base() *exprBase
	// match runs the kind-specific matcher at the current position. It is
	// always entered through Parser.parseExpr, which handles whitespace
	// skipping, memoization, backtracking and rule-root wrapping.
	match(p *Parser) (any, *NoMatch)
}

// exprBase carries the attributes shared by all expression kinds.
type exprBase struct {
	rule string
	root bool

	// elements holds the raw grammar description this node was created
	// from; the builder converts it into nodes.
	elements []any
	nodes    []Expression

	// memo caches the outcome of every attempted position. An expression
	// can be evaluated both inside and outside a lexical subtree, so the
	// key includes the lexical flag.
	memo map[memoKey]memoEntry

	// primitive marks the terminal-match kinds, which interleave comment
	// matching and do not shadow the enclosing expression.
	primitive bool
}

type memoKey struct {
	pos int
	lex bool
}

type memoEntry struct {
	result any
	nm     *NoMatch
	pos    int
}

func (b *exprBase) base() *exprBase        { return b }
func (b *exprBase) RuleName() string       { return b.rule }
func (b *exprBase) Root() bool             { return b.root }
func (b *exprBase) Children() []Expression { return b.nodes }

func (b *exprBase) name(kind string) string {
	if b.root {
		return b.rule
	}
	return kind
}

// setRule stamps this expression as the root of the named rule.
func (b *exprBase) setRule(rule string) {
	b.rule = rule
	b.root = true
}

// nmChangeRule renames a propagating failure to this rule when the rule
// consumed no input before failing, so diagnostics report the most general
// expected element.
func (b *exprBase) nmChangeRule(nm *NoMatch, entry int) {
	if b.root && nm.Position == entry && nm.up {
		nm.Rule = b.rule
	}
}

// visitSet marks expressions already reached during a model walk. Rule
// cross-references alias nodes by identity, so membership is by node
// identity, not by structural equality.
type visitSet map[Expression]bool

// Walk invokes fn for every expression reachable from root, parents before
// children, visiting each node exactly once even when rule references form
// cycles.
func Walk(root Expression, fn func(Expression) error) error {
	return walkExpr(root, fn, make(visitSet))
}

func walkExpr(e Expression, fn func(Expression) error, seen visitSet) error {
	if seen[e] {
		return nil
	}
	seen[e] = true
	if err := fn(e); err != nil {
		return err
	}
	for _, c := range e.Children() {
		if err := walkExpr(c, fn, seen); err != nil {
			return err
		}
	}
	return nil
}

// clearCache drops every memo table reachable from root. Mandatory before
// evaluating against new input.
func clearCache(root Expression) {
	Walk(root, func(e Expression) error {
		e.base().memo = nil
		return nil
	})
}

// truthy reports whether a match result carries any parse tree content.
// Predicates, Empty and unmatched Optionals produce nil; sequences and
// repetitions whose children produced no tree nodes produce an empty list.
func truthy(result any) bool {
	switch r := result.(type) {
	case nil:
		return false
	case []ParseTreeNode:
		return len(r) > 0
	default:
		return true
	}
}

// ---------------------------------------------------------------------------
// Containers

type sequenceExpression struct{ exprBase }

// Sequence matches its elements in the exact order they are given.
func Sequence(elements ...any) Expression {
	return &sequenceExpression{exprBase{elements: elements}}
}

func (s *sequenceExpression) Name() string { return s.name("Sequence") }

func (s *sequenceExpression) match(p *Parser) (any, *NoMatch) {
	entry := p.position
	var results []ParseTreeNode
	for _, c := range s.nodes {
		v, nm := p.parseExpr(c)
		if nm != nil {
			s.nmChangeRule(nm, entry)
			return nil, nm
		}
		results = flatten(results, v)
	}
	return results, nil
}

type choiceExpression struct{ exprBase }

// OrderedChoice matches the first of its elements that succeeds; elements
// are tried in the order given, each from the same starting position.
func OrderedChoice(elements ...any) Expression {
	return &choiceExpression{exprBase{elements: elements}}
}

func (c *choiceExpression) Name() string { return c.name("OrderedChoice") }

func (c *choiceExpression) match(p *Parser) (any, *NoMatch) {
	entry := p.position
	for _, e := range c.nodes {
		v, nm := p.parseExpr(e)
		if nm == nil {
			return v, nil
		}
		p.position = entry
		c.nmChangeRule(nm, entry)
	}
	// All alternatives failed (or there were none): surface the best
	// failure seen so far.
	return nil, p.nmRaise(c.Name(), entry)
}

// ---------------------------------------------------------------------------
// Repetitions

type optionalExpression struct{ exprBase }

// Optional matches its element zero or one times. It never fails.
func Optional(elements ...any) Expression {
	return &optionalExpression{exprBase{elements: elements}}
}

func (o *optionalExpression) Name() string { return o.name("Optional") }

func (o *optionalExpression) match(p *Parser) (any, *NoMatch) {
	entry := p.position
	v, nm := p.parseExpr(o.nodes[0])
	if nm != nil {
		p.position = entry
		return nil, nil
	}
	return v, nil
}

type zeroOrMoreExpression struct{ exprBase }

// ZeroOrMore matches its element any number of times. It never fails.
func ZeroOrMore(elements ...any) Expression {
	return &zeroOrMoreExpression{exprBase{elements: elements}}
}

func (z *zeroOrMoreExpression) Name() string { return z.name("ZeroOrMore") }

func (z *zeroOrMoreExpression) match(p *Parser) (any, *NoMatch) {
	return repeat(p, z.nodes[0], nil)
}

type oneOrMoreExpression struct{ exprBase }

// OneOrMore matches its element one or more times.
func OneOrMore(elements ...any) Expression {
	return &oneOrMoreExpression{exprBase{elements: elements}}
}

func (o *oneOrMoreExpression) Name() string { return o.name("OneOrMore") }

func (o *oneOrMoreExpression) match(p *Parser) (any, *NoMatch) {
	entry := p.position
	v, nm := p.parseExpr(o.nodes[0])
	if nm != nil {
		return nil, nm
	}
	if p.position == entry {
		// Zero-length match; repeating it cannot advance.
		return flatten(nil, v), nil
	}
	return repeat(p, o.nodes[0], flatten(nil, v))
}

// repeat matches e until it fails or stops advancing the position. A
// zero-length success is kept but ends the repetition, otherwise matching
// would never terminate.
func repeat(p *Parser, e Expression, results []ParseTreeNode) (any, *NoMatch) {
	for {
		entry := p.position
		v, nm := p.parseExpr(e)
		if nm != nil {
			p.position = entry
			return results, nil
		}
		results = flatten(results, v)
		if p.position == entry {
			return results, nil
		}
	}
}

// ---------------------------------------------------------------------------
// Syntax predicates

type andPredicateExpression struct{ exprBase }

// And succeeds if its element matches at the current position, without
// consuming any input.
func And(elements ...any) Expression {
	return &andPredicateExpression{exprBase{elements: elements}}
}

func (a *andPredicateExpression) Name() string { return a.name("And") }

func (a *andPredicateExpression) match(p *Parser) (any, *NoMatch) {
	entry := p.position
	for _, e := range a.nodes {
		if _, nm := p.parseExpr(e); nm != nil {
			p.position = entry
			return nil, nm
		}
	}
	p.position = entry
	return nil, nil
}

type notPredicateExpression struct{ exprBase }

// Not succeeds if its element does not match at the current position,
// without consuming any input.
func Not(elements ...any) Expression {
	return &notPredicateExpression{exprBase{elements: elements}}
}

func (n *notPredicateExpression) Name() string { return n.name("Not") }

func (n *notPredicateExpression) match(p *Parser) (any, *NoMatch) {
	entry := p.position
	for _, e := range n.nodes {
		if _, nm := p.parseExpr(e); nm != nil {
			p.position = entry
			return nil, nil
		}
	}
	p.position = entry
	return nil, p.nmRaise(n.Name(), entry)
}

type emptyExpression struct{ exprBase }

// Empty always succeeds without consuming input.
func Empty() Expression { return &emptyExpression{} }

func (e *emptyExpression) Name() string { return e.name("Empty") }

func (e *emptyExpression) match(p *Parser) (any, *NoMatch) { return nil, nil }

// ---------------------------------------------------------------------------
// Combine

type combineExpression struct{ exprBase }

// Combine marks its subtree as lexical: whitespace is not skipped and
// comments are not matched inside it, and the whole subtree reduces to a
// single Terminal holding the concatenated matched text.
func Combine(elements ...any) Expression {
	return &combineExpression{exprBase{elements: elements}}
}

func (c *combineExpression) Name() string { return c.name("Combine") }

func (c *combineExpression) match(p *Parser) (any, *NoMatch) {
	entry := p.position
	inLex := p.inLexRule
	p.inLexRule = true
	defer func() { p.inLexRule = inLex }()

	var results []ParseTreeNode
	for _, e := range c.nodes {
		v, nm := p.parseExpr(e)
		if nm != nil {
			return nil, nm
		}
		results = flatten(results, v)
	}
	var b strings.Builder
	for _, r := range results {
		b.WriteString(r.String())
	}
	rule := ""
	if c.root {
		rule = c.rule
	}
	return newTerminal(rule, entry, b.String(), false), nil
}

// ---------------------------------------------------------------------------
// Terminal matches

// foldMode is the tri-state case sensitivity of a match primitive: unset
// inherits the parser's IgnoreCase setting when the model is built.
type foldMode int8

const (
	foldInherit foldMode = iota
	foldOn
	foldOff
)

// StrMatch matches a literal string at the current position.
type StrMatch struct {
	exprBase
	value string
	fold  foldMode
}

// Literal matches the given string. Case sensitivity follows the parser's
// IgnoreCase setting.
func Literal(value string) *StrMatch {
	return &StrMatch{exprBase: exprBase{primitive: true}, value: value}
}

// FoldLiteral matches the given string case-insensitively regardless of the
// parser's IgnoreCase setting.
func FoldLiteral(value string) *StrMatch {
	return &StrMatch{exprBase: exprBase{primitive: true}, value: value, fold: foldOn}
}

// Kwd matches a language keyword. It is a StrMatch that always appears in
// the parse tree as a root terminal named "keyword".
func Kwd(value string) *StrMatch {
	m := Literal(value)
	m.rule = "keyword"
	m.root = true
	return m
}

// Value returns the literal this match compares against.
func (m *StrMatch) Value() string { return m.value }

func (m *StrMatch) Name() string {
	if m.root {
		return m.rule
	}
	return m.value
}

func (m *StrMatch) match(p *Parser) (any, *NoMatch) {
	entry := p.position
	end := entry + len(m.value)
	ok := end <= len(p.input)
	if ok {
		frag := p.input[entry:end]
		if m.fold == foldOn {
			ok = strings.EqualFold(frag, m.value)
		} else {
			ok = frag == m.value
		}
	}
	if !ok {
		p.traceNoMatch(entry)
		return nil, &NoMatch{Rule: m.value, Position: entry, Parser: p, up: true}
	}
	p.traceMatch(m.value, entry)
	p.position = end

	// A literal directly inside a sequence is punctuation; mark it so the
	// default semantic action drops it.
	_, inSequence := p.lastExpr.(*sequenceExpression)
	rule := ""
	if m.root {
		rule = m.rule
	}
	return newTerminal(rule, entry, m.value, inSequence), nil
}

// RegExMatch matches a regular expression anchored at the current position.
type RegExMatch struct {
	exprBase
	pattern  string
	fold     foldMode
	compiled *regexp.Regexp
}

// Pattern matches the given regular expression. The expression is compiled
// in multi-line mode when the model is built, anchored to the current
// position; case sensitivity follows the parser's IgnoreCase setting.
func Pattern(pattern string) *RegExMatch {
	return &RegExMatch{exprBase: exprBase{primitive: true}, pattern: pattern}
}

// FoldPattern matches the given regular expression case-insensitively
// regardless of the parser's IgnoreCase setting.
func FoldPattern(pattern string) *RegExMatch {
	return &RegExMatch{exprBase: exprBase{primitive: true}, pattern: pattern, fold: foldOn}
}

// Pattern returns the regular expression source.
func (m *RegExMatch) Pattern() string { return m.pattern }

func (m *RegExMatch) Name() string {
	if m.root {
		return m.rule
	}
	return m.pattern
}

// compile builds the anchored engine. Called by the model builder once the
// effective case sensitivity is known.
func (m *RegExMatch) compile() error {
	flags := "(?m)"
	if m.fold == foldOn {
		flags = "(?mi)"
	}
	re, err := regexp.Compile(flags + `\A(?:` + m.pattern + `)`)
	if err != nil {
		return err
	}
	m.compiled = re
	return nil
}

func (m *RegExMatch) match(p *Parser) (any, *NoMatch) {
	entry := p.position
	loc := m.compiled.FindStringIndex(p.input[entry:])
	if loc == nil {
		p.traceNoMatch(entry)
		return nil, &NoMatch{Rule: m.Name(), Position: entry, Parser: p, up: true}
	}
	matched := p.input[entry : entry+loc[1]]
	p.traceMatch(matched, entry)
	p.position = entry + loc[1]
	rule := ""
	if m.root {
		rule = m.rule
	}
	return newTerminal(rule, entry, matched, false), nil
}

type eofExpression struct{ exprBase }

// EOF matches the end of the input.
func EOF() Expression {
	return &eofExpression{exprBase{primitive: true}}
}

func (e *eofExpression) Name() string { return "EOF" }

func (e *eofExpression) match(p *Parser) (any, *NoMatch) {
	entry := p.position
	if entry != len(p.input) {
		p.traceNoMatch(entry)
		return nil, &NoMatch{Rule: e.Name(), Position: entry, Parser: p, up: true}
	}
	return newTerminal("EOF", entry, "", true), nil
}

// ---------------------------------------------------------------------------
// Cross-references

// crossRef stands for a rule that is referenced before its definition has
// been built. The builder replaces every crossRef with the real rule node in
// the resolution sweep; none survive a successful build.
type crossRef struct {
	exprBase
	ruleName string
}

func (c *crossRef) Name() string { return c.ruleName }

func (c *crossRef) match(p *Parser) (any, *NoMatch) {
	panic(fmt.Sprintf("arpeggio: unresolved cross-reference to rule %q", c.ruleName))
}
