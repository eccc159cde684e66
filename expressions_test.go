// Copyright 2023 The Arpeggio Go Authors. All rights reserved.
// Use of this source code is governed by the MIT license
// that can be found in the LICENSE file.

package arpeggio

import (
	"testing"
)

func TestMemoKeyIncludesLexicalFlag(t *testing.T) {
	tok := Pattern(`[a-z]+`)
	def := OrderedChoice(
		Sequence(Combine(tok, "!"), EOF()),
		Sequence(tok, EOF()),
	)
	p, err := New(def)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := p.Parse("ab"); err != nil {
		t.Fatalf("Parse: %v", err)
	}
	// The token was evaluated at position 0 both inside the Combine
	// subtree and outside it; the outcomes are cached independently.
	memo := tok.base().memo
	if _, ok := memo[memoKey{pos: 0, lex: true}]; !ok {
		t.Error("no memo entry for the lexical evaluation at position 0")
	}
	if _, ok := memo[memoKey{pos: 0, lex: false}]; !ok {
		t.Error("no memo entry for the non-lexical evaluation at position 0")
	}
}

func TestClearCacheBetweenParses(t *testing.T) {
	tok := Pattern(`[a-z]+`)
	def := Sequence(tok, EOF())
	p, err := New(def)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := p.Parse("ab"); err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(tok.base().memo) == 0 {
		t.Fatal("no memo entries after parse")
	}
	tree, err := p.Parse("xy")
	if err != nil {
		t.Fatalf("second Parse: %v", err)
	}
	if got, want := tree.String(), "xy"; got != want {
		t.Errorf("second parse matched %q, want %q", got, want)
	}
}

func TestRepetitionStopsWithoutProgress(t *testing.T) {
	// Optional never fails, so a naive repetition around it would loop
	// forever; the repetition must stop when an iteration does not
	// advance.
	for _, def := range []any{
		ZeroOrMore(Optional("a")),
		OneOrMore(Optional("a")),
		ZeroOrMore(And("b")),
	} {
		p, err := New(def)
		if err != nil {
			t.Fatalf("New: %v", err)
		}
		if _, err := p.Parse("b"); err != nil {
			t.Errorf("Parse(b) with %T: %v", def, err)
		}
	}
}

func TestPredicatesConsumeNothing(t *testing.T) {
	word := Pattern(`[a-z]+`)
	p, err := New(Sequence(And("ab"), word, EOF()))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	tree, err := p.Parse("abc")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	// The predicate looked at "ab" but the word still matches from 0.
	if got, want := tree.String(), "abc"; got != want {
		t.Errorf("matched %q, want %q", got, want)
	}

	p, err = New(Sequence(Not("xy"), Pattern(`[a-z]+`)))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := p.Parse("xyz"); err == nil {
		t.Error("Not(xy) succeeded on input starting with xy")
	}
	if _, err := p.Parse("abc"); err != nil {
		t.Errorf("Not(xy) failed on abc: %v", err)
	}
}

func TestEmptyMatchesAnywhere(t *testing.T) {
	p, err := New(Sequence(Empty(), "a", Empty(), EOF()))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	tree, err := p.Parse("a")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if got, want := tree.String(), "a"; got != want {
		t.Errorf("matched %q, want %q", got, want)
	}
}

func TestBestFailureIsMonotone(t *testing.T) {
	// Alternatives failing earlier than the best failure must not move
	// the record backwards.
	p, err := New(OrderedChoice(
		Sequence("a", "b", "c"),
		Sequence("a", "x"),
		"z",
	))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := p.Parse("abd"); err == nil {
		t.Fatal("Parse(abd) succeeded, want failure")
	}
	if p.nm == nil {
		t.Fatal("no failure recorded")
	}
	if got := p.nm.Position; got != 2 {
		t.Errorf("best failure position = %d, want 2", got)
	}
	if got, want := p.nm.Rule, "c"; got != want {
		t.Errorf("best failure rule = %q, want %q", got, want)
	}
}

func TestCombineRestoresLexicalFlag(t *testing.T) {
	p, err := New(Sequence(Combine("a", "b"), "c", EOF()))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	// Whitespace before "c" is skipped again after the Combine subtree
	// ends.
	tree, err := p.Parse("ab c")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if got, want := tree.String(), "abc"; got != want {
		t.Errorf("matched %q, want %q", got, want)
	}
	if p.inLexRule {
		t.Error("inLexRule still set after parse")
	}
}

func TestWalkVisitsCyclesOnce(t *testing.T) {
	p, err := New(balanced)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	count := 0
	if err := Walk(p.Model(), func(e Expression) error {
		count++
		return nil
	}); err != nil {
		t.Fatalf("Walk: %v", err)
	}
	// balanced <- ("(" balanced ")") / "x" is a cyclic graph of five
	// nodes: the choice, the inner sequence and three literals.
	if count != 5 {
		t.Errorf("Walk visited %d nodes, want 5", count)
	}
}

func balanced() any { return OrderedChoice(Sequence("(", balanced, ")"), "x") }

func TestRecursiveGrammar(t *testing.T) {
	p, err := New(balanced)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	for _, input := range []string{"x", "(x)", "((x))"} {
		if _, err := p.Parse(input); err != nil {
			t.Errorf("Parse(%q): %v", input, err)
		}
	}
	if _, err := p.Parse("((x)"); err == nil {
		t.Error("Parse((x) succeeded, want failure")
	}
}
