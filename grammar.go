// Copyright 2023 The Arpeggio Go Authors. All rights reserved.
// Use of this source code is governed by the MIT license
// that can be found in the LICENSE file.

package arpeggio

import (
	"reflect"
	"regexp"
	"runtime"
	"strings"
)

// RuleFunc is the form of a grammar rule definition: a named nullary
// function returning the rule's description. The function name becomes the
// rule name. A rule body may reference other rule functions, including ones
// defined later or the rule itself; such references are captured as
// cross-references and resolved once the whole grammar is built.
type RuleFunc = func() any

// modelBuilder converts one grammar description into a parser model.
type modelBuilder struct {
	parser *Parser

	// cache maps rule names to their built root node, or to a *crossRef
	// while the rule is still being built.
	cache map[string]any

	// forResolving queues expressions holding cross-reference children.
	forResolving []Expression

	// crossRefs counts outstanding cross-reference uses.
	crossRefs int
}

// buildModel converts a grammar description into a parser model, resolving
// rule cross-references. All failures are *GrammarError.
func (p *Parser) buildModel(def any) (Expression, error) {
	b := &modelBuilder{
		parser: p,
		cache:  map[string]any{"EndOfFile": EOF()},
	}
	built, err := b.inner(def)
	if err != nil {
		return nil, err
	}
	b.resolve()
	if b.crossRefs != 0 {
		return nil, grammarErrorf("unresolved rule cross-references remain after building the grammar")
	}
	model, ok := built.(Expression)
	if !ok {
		return nil, grammarErrorf("grammar root %T did not produce a parser model", def)
	}
	return model, nil
}

func (b *modelBuilder) inner(def any) (any, error) {
	switch d := def.(type) {
	case RuleFunc:
		return b.rule(d)

	case string:
		m := Literal(d)
		b.resolveFold(&m.fold)
		return m, nil

	case *StrMatch:
		b.resolveFold(&d.fold)
		return d, nil

	case *RegExMatch:
		b.resolveFold(&d.fold)
		if d.compiled == nil {
			if err := d.compile(); err != nil {
				return nil, grammarErrorf("bad pattern %q: %v", d.pattern, err)
			}
		}
		return d, nil

	case *eofExpression, *emptyExpression:
		return d, nil

	case *sequenceExpression:
		return b.container(d)
	case *choiceExpression:
		return b.container(d)

	case *optionalExpression:
		return b.decorator(d)
	case *zeroOrMoreExpression:
		return b.decorator(d)
	case *oneOrMoreExpression:
		return b.decorator(d)
	case *andPredicateExpression:
		return b.decorator(d)
	case *notPredicateExpression:
		return b.decorator(d)
	case *combineExpression:
		return b.decorator(d)

	default:
		return nil, grammarErrorf("unrecognized grammar element %v (%T)", def, def)
	}
}

// rule builds a rule definition. A cross-reference placeholder is inserted
// into the cache before the body is built, so that recursive references to
// the rule resolve to the placeholder instead of recursing forever.
func (b *modelBuilder) rule(f RuleFunc) (any, error) {
	name, err := ruleFuncName(f)
	if err != nil {
		return nil, err
	}
	if cached, ok := b.cache[name]; ok {
		if _, isRef := cached.(*crossRef); isRef {
			b.crossRefs++
		}
		return cached, nil
	}
	b.cache[name] = &crossRef{ruleName: name}

	// Unwrap chained rule functions until the body description appears.
	body := any(f)
	for {
		g, ok := body.(RuleFunc)
		if !ok {
			break
		}
		body = g()
	}
	built, err := b.inner(body)
	if err != nil {
		return nil, err
	}
	root, ok := built.(Expression)
	if !ok {
		return nil, grammarErrorf("rule %s resolves to itself", name)
	}
	root.base().setRule(name)
	b.cache[name] = root
	return root, nil
}

// container builds a Sequence or OrderedChoice from its staged elements.
func (b *modelBuilder) container(e Expression) (any, error) {
	base := e.base()
	if base.nodes != nil {
		// Already built; shared sub-expressions stay shared.
		return e, nil
	}
	if len(base.elements) == 0 {
		return nil, grammarErrorf("%s with no elements", e.Name())
	}
	hasRefs := false
	base.nodes = make([]Expression, 0, len(base.elements))
	for _, el := range base.elements {
		built, err := b.inner(el)
		if err != nil {
			return nil, err
		}
		child, ok := built.(Expression)
		if !ok {
			return nil, grammarErrorf("unrecognized grammar element %v (%T)", el, el)
		}
		if _, isRef := child.(*crossRef); isRef {
			hasRefs = true
		}
		base.nodes = append(base.nodes, child)
	}
	if hasRefs {
		b.forResolving = append(b.forResolving, e)
	}
	return e, nil
}

// decorator builds a repetition, predicate or Combine node. Its elements
// collapse to a single child: an implicit sequence when several are given.
func (b *modelBuilder) decorator(e Expression) (any, error) {
	base := e.base()
	if base.nodes != nil {
		return e, nil
	}
	if len(base.elements) == 0 {
		return nil, grammarErrorf("%s with no elements", e.Name())
	}
	var el any
	if len(base.elements) == 1 {
		el = base.elements[0]
	} else {
		el = Sequence(base.elements...)
	}
	built, err := b.inner(el)
	if err != nil {
		return nil, err
	}
	child, ok := built.(Expression)
	if !ok {
		return nil, grammarErrorf("unrecognized grammar element %v (%T)", el, el)
	}
	base.nodes = []Expression{child}
	if _, isRef := child.(*crossRef); isRef {
		b.forResolving = append(b.forResolving, e)
	}
	return e, nil
}

// resolve sweeps the queued expressions, replacing every cross-reference
// child with the rule node that is now in the cache.
func (b *modelBuilder) resolve() {
	for _, e := range b.forResolving {
		nodes := e.base().nodes
		for i, child := range nodes {
			ref, ok := child.(*crossRef)
			if !ok {
				continue
			}
			if real, ok := b.cache[ref.ruleName].(Expression); ok {
				if _, stillRef := real.(*crossRef); !stillRef {
					nodes[i] = real
					b.crossRefs--
				}
			}
		}
	}
}

// resolveFold substitutes the parser's IgnoreCase setting for an unset
// case-sensitivity mode.
func (b *modelBuilder) resolveFold(mode *foldMode) {
	if *mode != foldInherit {
		return
	}
	if b.parser.IgnoreCase {
		*mode = foldOn
	} else {
		*mode = foldOff
	}
}

var anonymousFuncName = regexp.MustCompile(`^func\d+(\.\d+)*$`)

// ruleFuncName recovers the rule name from the defining function.
func ruleFuncName(f RuleFunc) (string, error) {
	rf := runtime.FuncForPC(reflect.ValueOf(f).Pointer())
	if rf == nil {
		return "", grammarErrorf("cannot resolve the name of rule function %p", f)
	}
	name := strings.TrimSuffix(rf.Name(), "-fm")
	if i := strings.LastIndexByte(name, '.'); i >= 0 {
		name = name[i+1:]
	}
	if name == "" || anonymousFuncName.MatchString(name) {
		return "", grammarErrorf("anonymous function cannot define a grammar rule; use a named function")
	}
	return name, nil
}
