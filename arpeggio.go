// Copyright 2023 The Arpeggio Go Authors. All rights reserved.
// Use of this source code is governed by the MIT license
// that can be found in the LICENSE file.

/* Package arpeggio provides a packrat PEG parser interpreter.

A grammar is described with nested Go values: nullary functions define
rules (the function name is the rule name), Sequence and OrderedChoice
group sub-expressions, Literal, Pattern and EOF match input, and bare
strings are implicit literals. New converts the description into a parser
model, a graph of parsing expressions in which recursive rule references
form cycles. Parse evaluates the model against an input string by
recursive descent with unlimited backtracking and per-position
memoization, producing a parse tree of Terminal and NonTerminal nodes.
ASG walks the tree with user-supplied semantic actions to build an
abstract semantic graph.

Matching skips whitespace between tokens unless a Combine subtree marks
the region as lexical, and can interleave a comment grammar wherever a
token fails to match. On failure, Parse reports the expectation at the
furthest input position reached.
*/
package arpeggio

import (
	"errors"
	"os"
	"strings"

	"github.com/textx-vscode/arpeggio/tracelog"
)

// DefaultWS is the default set of characters skipped between matches.
const DefaultWS = "\t\n\r "

// Parser evaluates a parser model against input strings. A Parser holds
// mutable matching state and per-node memo tables and is not safe for
// concurrent use; build one parser per goroutine.
type Parser struct {
	// SkipWS enables implicit whitespace skipping before every
	// non-lexical match attempt.
	SkipWS bool
	// WS is the set of characters treated as whitespace.
	WS string
	// ReduceTree unwraps rule results that consist of a single child.
	ReduceTree bool
	// IgnoreCase is the default case sensitivity inherited by every
	// literal and pattern whose own mode is unset.
	IgnoreCase bool

	model    Expression
	comments Expression

	commentsDef any
	semActions  map[string]SemanticAction

	trace tracelog.Sink
	depth int

	// Per-run state.
	input          string
	position       int
	nm             *NoMatch
	lineEnds       []int
	inLexRule      bool
	inParseComment bool
	lastExpr       Expression
	parseTree      ParseTreeNode
}

// Option configures a Parser at construction time.
type Option func(*Parser)

// WithSkipWS controls implicit whitespace skipping. Default: on.
func WithSkipWS(on bool) Option { return func(p *Parser) { p.SkipWS = on } }

// WithWS sets the characters treated as whitespace. Default: tab, newline,
// carriage return and space.
func WithWS(ws string) Option { return func(p *Parser) { p.WS = ws } }

// WithReduceTree unwraps single-child non-terminals from the parse tree.
func WithReduceTree(on bool) Option { return func(p *Parser) { p.ReduceTree = on } }

// WithIgnoreCase makes literal and pattern matching case-insensitive by
// default.
func WithIgnoreCase(on bool) Option { return func(p *Parser) { p.IgnoreCase = on } }

// WithDebug emits a trace of rule entry and exit, memo hits and match
// outcomes to the given sink. A nil sink traces to standard error.
func WithDebug(sink tracelog.Sink) Option {
	return func(p *Parser) {
		if sink == nil {
			sink = tracelog.NewWriter(os.Stderr)
		}
		p.trace = sink
	}
}

// WithComments sets the comment grammar. Wherever a token fails to match
// outside a lexical subtree, the parser matches comments at that position
// and retries the token; see Parse.
func WithComments(def any) Option { return func(p *Parser) { p.commentsDef = def } }

// WithAction registers a semantic action for the named rule.
func WithAction(rule string, action SemanticAction) Option {
	return func(p *Parser) { p.semActions[rule] = action }
}

// WithActions registers a semantic action per rule name.
func WithActions(actions map[string]SemanticAction) Option {
	return func(p *Parser) {
		for rule, a := range actions {
			p.semActions[rule] = a
		}
	}
}

// New builds a parser for the grammar description language. See the package
// documentation for the description forms.
func New(language any, opts ...Option) (*Parser, error) {
	p := &Parser{
		SkipWS:     true,
		WS:         DefaultWS,
		semActions: make(map[string]SemanticAction),
	}
	for _, o := range opts {
		o(p)
	}
	model, err := p.buildModel(language)
	if err != nil {
		return nil, err
	}
	p.model = model
	if p.commentsDef != nil {
		comments, err := p.buildModel(p.commentsDef)
		if err != nil {
			return nil, err
		}
		comments.base().root = true
		p.comments = comments
	}
	return p, nil
}

// Model returns the parser model.
func (p *Parser) Model() Expression { return p.model }

// SetModel replaces the parser model with one built from def. The next
// Parse evaluates the new model. This supports bootstrapping setups where
// semantic actions construct a parser model from a parsed grammar.
func (p *Parser) SetModel(def any) error {
	model, err := p.buildModel(def)
	if err != nil {
		return err
	}
	p.model = model
	p.parseTree = nil
	return nil
}

// Input returns the input of the current parse run.
func (p *Parser) Input() string { return p.input }

// Position returns the current input offset of the parse run.
func (p *Parser) Position() int { return p.position }

// ParseTree returns the parse tree of the last successful Parse, or nil.
func (p *Parser) ParseTree() ParseTreeNode { return p.parseTree }

// Parse evaluates the parser model against input. On success it returns
// the root of the parse tree. On failure it returns a *NoMatch describing
// the expectation at the furthest position the parser reached.
func (p *Parser) Parse(input string) (ParseTreeNode, error) {
	p.input = input
	p.position = 0
	p.nm = nil
	p.lineEnds = nil
	p.inLexRule = false
	p.inParseComment = false
	p.lastExpr = nil
	p.parseTree = nil
	p.depth = 0
	clearCache(p.model)
	if p.comments != nil {
		clearCache(p.comments)
	}

	result, nm := p.parseExpr(p.model)
	if nm != nil {
		return nil, nm
	}
	p.parseTree = p.asTreeNode(result)
	return p.parseTree, nil
}

// asTreeNode converts a raw match result into the parse tree root.
func (p *Parser) asTreeNode(result any) ParseTreeNode {
	switch r := result.(type) {
	case ParseTreeNode:
		return r
	case []ParseTreeNode:
		switch len(r) {
		case 0:
			return nil
		case 1:
			return r[0]
		default:
			return newNonTerminal(p.model.base().rule, 0, r)
		}
	default:
		return nil
	}
}

// parseExpr is the kind-agnostic evaluation wrapper: it skips whitespace,
// consults and fills the memo table, restores the position on failure and
// wraps rule-root results into labelled non-terminals.
func (p *Parser) parseExpr(e Expression) (any, *NoMatch) {
	b := e.base()
	p.traceEnter(e)
	p.depth++
	defer func() {
		p.depth--
		p.traceLeave(e)
	}()

	if !p.inLexRule {
		p.skipWS()
	}
	entry := p.position
	key := memoKey{pos: entry, lex: p.inLexRule}
	if ent, ok := b.memo[key]; ok {
		p.position = ent.pos
		p.traceCacheHit(e, entry)
		if ent.nm != nil {
			return nil, p.nmRecord(ent.nm)
		}
		return ent.result, nil
	}

	// A fresh expression is being tried: the recorded failure is no
	// longer propagating up the model.
	if !b.primitive && p.nm != nil {
		p.nm.up = false
	}

	var result any
	var nm *NoMatch
	if b.primitive {
		result, nm = p.matchTerminal(e)
	} else {
		last := p.lastExpr
		p.lastExpr = e
		result, nm = e.match(p)
		p.lastExpr = last
	}
	if b.memo == nil {
		b.memo = make(map[memoKey]memoEntry)
	}
	if nm != nil {
		p.position = entry
		b.memo[key] = memoEntry{nm: nm, pos: entry}
		return nil, nm
	}

	if b.root && truthy(result) {
		if _, isTerminal := result.(*Terminal); !isTerminal {
			list, isList := result.([]ParseTreeNode)
			switch {
			case p.ReduceTree && isList && len(list) == 1:
				result = list[0]
			case p.ReduceTree && !isList:
				// A single passed-through node; leave it unwrapped.
			case isList:
				result = newNonTerminal(b.rule, entry, list)
			default:
				result = newNonTerminal(b.rule, entry, flatten(nil, result))
			}
		}
	}
	b.memo[key] = memoEntry{result: result, pos: p.position}
	return result, nil
}

// matchTerminal runs a terminal match, interleaving the comment grammar on
// failure: if one or more comments match at the failure position, the
// terminal is retried past them and the comment subtree is attached to the
// resulting node.
func (p *Parser) matchTerminal(e Expression) (any, *NoMatch) {
	entry := p.position
	result, nm := e.match(p)
	if nm == nil {
		return result, nil
	}
	if p.inParseComment || p.inLexRule || p.comments == nil {
		return nil, p.nmRecord(nm)
	}

	p.inParseComment = true
	var comments []ParseTreeNode
	for {
		before := p.position
		c, cnm := p.parseExpr(p.comments)
		if cnm != nil {
			break
		}
		if p.position == before {
			// A comment grammar that matches without consuming input
			// would loop forever; treat it as exhausted.
			break
		}
		comments = flatten(comments, c)
		p.skipWS()
	}
	if len(comments) == 0 {
		p.inParseComment = false
		return nil, p.nmRecord(nm)
	}
	result, rnm := e.match(p)
	if rnm != nil {
		best := p.nmRecord(rnm)
		p.inParseComment = false
		return nil, best
	}
	p.inParseComment = false
	if node, ok := result.(ParseTreeNode); ok {
		node.setComments(newNonTerminal("comment", entry, comments))
	}
	return result, nil
}

// skipWS advances the position over whitespace characters.
func (p *Parser) skipWS() {
	if !p.SkipWS {
		return
	}
	for p.position < len(p.input) &&
		strings.IndexByte(p.WS, p.input[p.position]) >= 0 {
		p.position++
	}
}

// nmRaise records a new failure if it is the furthest seen, then returns
// the parser's best failure record. Failures produced while matching
// comments are not recorded.
func (p *Parser) nmRaise(rule string, pos int) *NoMatch {
	if !p.inParseComment {
		if p.nm == nil || pos > p.nm.Position {
			p.nm = &NoMatch{Rule: rule, Position: pos, Parser: p, up: true}
		}
	}
	if p.nm == nil {
		return &NoMatch{Rule: rule, Position: pos, Parser: p, up: true}
	}
	return p.nm
}

// nmRecord is nmRaise for an existing record (fresh terminal failures and
// memo replays).
func (p *Parser) nmRecord(nm *NoMatch) *NoMatch {
	if !p.inParseComment {
		if p.nm == nil || nm.Position > p.nm.Position {
			p.nm = nm
		}
	}
	if p.nm == nil {
		return nm
	}
	return p.nm
}

// ---------------------------------------------------------------------------
// Trace emission

func (p *Parser) traceEnter(e Expression) {
	if p.trace == nil {
		return
	}
	p.trace.Emit(tracelog.Event{
		Kind:     tracelog.Enter,
		Name:     e.Name(),
		Position: p.position,
		Depth:    p.depth,
	})
}

func (p *Parser) traceLeave(e Expression) {
	if p.trace == nil {
		return
	}
	p.trace.Emit(tracelog.Event{
		Kind:     tracelog.Leave,
		Name:     e.Name(),
		Position: p.position,
		Depth:    p.depth,
	})
}

func (p *Parser) traceCacheHit(e Expression, pos int) {
	if p.trace == nil {
		return
	}
	p.trace.Emit(tracelog.Event{
		Kind:     tracelog.CacheHit,
		Name:     e.Name(),
		Position: pos,
		Depth:    p.depth,
	})
}

func (p *Parser) traceMatch(text string, pos int) {
	if p.trace == nil {
		return
	}
	p.trace.Emit(tracelog.Event{
		Kind:     tracelog.Match,
		Position: pos,
		Depth:    p.depth,
		Text:     text,
	})
}

func (p *Parser) traceNoMatch(pos int) {
	if p.trace == nil {
		return
	}
	p.trace.Emit(tracelog.Event{
		Kind:     tracelog.NoMatch,
		Position: pos,
		Depth:    p.depth,
	})
}

// IsNoMatch reports whether err is a parse failure.
func IsNoMatch(err error) bool {
	var nm *NoMatch
	return errors.As(err, &nm)
}
