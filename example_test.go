// Copyright 2023 The Arpeggio Go Authors. All rights reserved.
// Use of this source code is governed by the MIT license
// that can be found in the LICENSE file.

package arpeggio_test

import (
	"fmt"
	"strconv"

	"github.com/textx-vscode/arpeggio"
)

func calcNumber() any { return arpeggio.Pattern(`\d+(\.\d+)?`) }

func calcFactor() any {
	return arpeggio.Sequence(
		arpeggio.Optional(arpeggio.OrderedChoice("+", "-")),
		arpeggio.OrderedChoice(calcNumber, arpeggio.Sequence("(", calcExpression, ")")))
}

func calcTerm() any {
	return arpeggio.Sequence(calcFactor,
		arpeggio.ZeroOrMore(arpeggio.Sequence(arpeggio.OrderedChoice("*", "/"), calcFactor)))
}

func calcExpression() any {
	return arpeggio.Sequence(calcTerm,
		arpeggio.ZeroOrMore(arpeggio.Sequence(arpeggio.OrderedChoice("+", "-"), calcTerm)))
}

func calculation() any { return arpeggio.Sequence(calcExpression, arpeggio.EOF()) }

// foldOps reduces [value, op, value, op, value, ...] left to right.
func foldOps(children []any) float64 {
	value := children[0].(float64)
	for i := 1; i+1 < len(children); i += 2 {
		rhs := children[i+1].(float64)
		switch children[i].(string) {
		case "+":
			value += rhs
		case "-":
			value -= rhs
		case "*":
			value *= rhs
		case "/":
			value /= rhs
		}
	}
	return value
}

var calcActions = map[string]arpeggio.SemanticAction{
	"calcNumber": arpeggio.ActionFunc(
		func(p *arpeggio.Parser, node arpeggio.ParseTreeNode, children []any) (any, error) {
			return strconv.ParseFloat(node.String(), 64)
		}),
	"calcFactor": arpeggio.ActionFunc(
		func(p *arpeggio.Parser, node arpeggio.ParseTreeNode, children []any) (any, error) {
			value := children[len(children)-1].(float64)
			if sign, ok := children[0].(string); ok && sign == "-" {
				value = -value
			}
			return value, nil
		}),
	"calcTerm": arpeggio.ActionFunc(
		func(p *arpeggio.Parser, node arpeggio.ParseTreeNode, children []any) (any, error) {
			return foldOps(children), nil
		}),
	"calcExpression": arpeggio.ActionFunc(
		func(p *arpeggio.Parser, node arpeggio.ParseTreeNode, children []any) (any, error) {
			return foldOps(children), nil
		}),
}

// Example_calculator evaluates arithmetic expressions by attaching
// semantic actions to a small expression grammar.
func Example_calculator() {
	p, err := arpeggio.New(calculation, arpeggio.WithActions(calcActions))
	if err != nil {
		fmt.Println("grammar error:", err)
		return
	}
	for _, input := range []string{
		"2*(3+4)-1",
		"-(4 - 1) * 5 + 2 / 0.5",
	} {
		if _, err := p.Parse(input); err != nil {
			fmt.Println("parse error:", err)
			return
		}
		result, err := p.ASG(nil)
		if err != nil {
			fmt.Println("semantic error:", err)
			return
		}
		fmt.Println(result)
	}
	// Output:
	// 13
	// -11
}
