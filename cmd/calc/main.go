// Copyright 2023 The Arpeggio Go Authors. All rights reserved.
// Use of this source code is governed by the MIT license
// that can be found in the LICENSE file.

// Calc evaluates arithmetic expressions with the arpeggio PEG interpreter.
//
// Usage:
//
//	calc [-trace] expression...
//
// With -trace, the parse is traced through a zap logger to standard error.
package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"

	"go.uber.org/zap"

	"github.com/textx-vscode/arpeggio"
	tzap "github.com/textx-vscode/arpeggio/tracelog/zap"
)

var traceFlag = flag.Bool("trace", false, "trace the parse to standard error")

func number() any { return arpeggio.Pattern(`\d+(\.\d+)?`) }

func factor() any {
	return arpeggio.Sequence(
		arpeggio.Optional(arpeggio.OrderedChoice("+", "-")),
		arpeggio.OrderedChoice(number, arpeggio.Sequence("(", expression, ")")))
}

func term() any {
	return arpeggio.Sequence(factor,
		arpeggio.ZeroOrMore(arpeggio.Sequence(arpeggio.OrderedChoice("*", "/"), factor)))
}

func expression() any {
	return arpeggio.Sequence(term,
		arpeggio.ZeroOrMore(arpeggio.Sequence(arpeggio.OrderedChoice("+", "-"), term)))
}

func calculation() any { return arpeggio.Sequence(expression, arpeggio.EOF()) }

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

var actions = map[string]arpeggio.SemanticAction{
	"number": arpeggio.ActionFunc(
		func(p *arpeggio.Parser, node arpeggio.ParseTreeNode, children []any) (any, error) {
			return strconv.ParseFloat(node.String(), 64)
		}),
	"factor": arpeggio.ActionFunc(
		func(p *arpeggio.Parser, node arpeggio.ParseTreeNode, children []any) (any, error) {
			value := children[len(children)-1].(float64)
			if sign, ok := children[0].(string); ok && sign == "-" {
				value = -value
			}
			return value, nil
		}),
	"term": arpeggio.ActionFunc(
		func(p *arpeggio.Parser, node arpeggio.ParseTreeNode, children []any) (any, error) {
			return foldOps(children), nil
		}),
	"expression": arpeggio.ActionFunc(
		func(p *arpeggio.Parser, node arpeggio.ParseTreeNode, children []any) (any, error) {
			return foldOps(children), nil
		}),
}

func main() {
	flag.Parse()
	if flag.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "usage: calc [-trace] expression...")
		os.Exit(2)
	}

	opts := []arpeggio.Option{arpeggio.WithActions(actions)}
	if *traceFlag {
		cfg := zap.NewDevelopmentConfig()
		cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
		logger, err := cfg.Build()
		if err != nil {
			fmt.Fprintln(os.Stderr, "calc:", err)
			os.Exit(1)
		}
		defer logger.Sync()
		opts = append(opts, arpeggio.WithDebug(tzap.NewSink(logger)))
	}

	p, err := arpeggio.New(calculation, opts...)
	if err != nil {
		fmt.Fprintln(os.Stderr, "calc:", err)
		os.Exit(1)
	}
	for _, input := range flag.Args() {
		if _, err := p.Parse(input); err != nil {
			fmt.Fprintln(os.Stderr, "calc:", err)
			os.Exit(1)
		}
		result, err := p.ASG(nil)
		if err != nil {
			fmt.Fprintln(os.Stderr, "calc:", err)
			os.Exit(1)
		}
		fmt.Printf("%s = %v\n", input, result)
	}
}
