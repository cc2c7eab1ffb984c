package main

import (
	"fmt"
	"os"

	"github.com/alexflint/go-arg"
	"github.com/xiaobogaga/exprdb/log"
)

type Args struct {
	Schema string   `arg:"--schema,env:EXPRCHECK_SCHEMA" help:"input columns as name:type,... with types bool, int, long, float, string(N), date or bytes(N)"`
	Row    string   `arg:"--row" help:"comma separated values of one input row, evaluates every expression against it"`
	CNF    bool     `arg:"--cnf" help:"print the conjunctive normal form of each expression"`
	Log    string   `arg:"--log,env:EXPRCHECK_LOG" help:"log file"`
	Debug  bool     `arg:"--debug" help:"log at debug level"`
	Exprs  []string `arg:"positional" help:"expressions, one per line on stdin when none is given"`
}

func (Args) Description() string {
	return "exprcheck parses expressions and prints their rendering, type, CNF and value."
}

func main() {
	var args Args
	arg.MustParse(&args)
	if args.Log != "" || args.Debug {
		if err := log.InitLogger(args.Log, args.Debug); err != nil {
			fmt.Fprintf(os.Stderr, "err: %v\n", err)
			os.Exit(1)
		}
		defer log.CloseLog()
	}
	err := run(args, os.Stdin, os.Stdout)
	if err != nil {
		fmt.Fprintf(os.Stderr, "err: %v\n", err)
		log.CloseLog()
		os.Exit(1)
	}
}
