package main

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/pkg/errors"
	"github.com/xiaobogaga/exprdb/log"
	"github.com/xiaobogaga/exprdb/plan"
	"github.com/xiaobogaga/exprdb/storage"
	"go.uber.org/multierr"
)

var checkLog = log.GetLog("exprcheck")

// run checks every expression and reports them to out. An expression that fails is reported and skipped, the
// failures are returned together.
func run(args Args, stdin io.Reader, out io.Writer) error {
	schema, err := parseSchema(args.Schema)
	if err != nil {
		return err
	}
	texts := args.Exprs
	if len(texts) == 0 {
		texts, err = readLines(stdin)
		if err != nil {
			return err
		}
	}
	errs := make([]error, 0)
	var exprs []plan.Expr
	for _, text := range texts {
		expr, err := check(out, text, schema, args.CNF)
		if err != nil {
			fmt.Fprintf(out, "%s\n  error: %v\n", text, err)
			errs = append(errs, errors.Wrapf(err, "%q", text))
			continue
		}
		exprs = append(exprs, expr)
	}
	if args.Row != "" && len(exprs) > 0 {
		if err := evaluate(out, schema, args.Row, exprs); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return multierr.Combine(errs...)
	}
	return nil
}

func check(out io.Writer, text string, schema *storage.Schema, cnf bool) (plan.Expr, error) {
	expr, err := plan.ParseExpr(text)
	if err != nil {
		return nil, err
	}
	if err := expr.SetSchema(schema); err != nil {
		return nil, err
	}
	checkLog.DebugF("checked %s", expr)
	fmt.Fprintf(out, "%s\n  type: %s\n", expr, expr.Type())
	if cnf {
		for _, clause := range plan.ToCNF(expr) {
			fmt.Fprintf(out, "  cnf: %s\n", clause)
		}
	}
	return expr, nil
}

// evaluate runs exprs over the single record described by row.
func evaluate(out io.Writer, schema *storage.Schema, row string, exprs []plan.Expr) error {
	record, err := parseRow(schema, row)
	if err != nil {
		return err
	}
	p, err := plan.NewProjectPlan(storage.RowStream(record), schema, nil, exprs, nil)
	if err != nil {
		return err
	}
	records, err := p.ExecuteAll()
	if err != nil {
		return err
	}
	storage.PrintRecords(out, p.Schema(), records, true)
	return nil
}

// parseSchema reads name:type,... into a schema. An empty text is a schema without columns.
func parseSchema(text string) (*storage.Schema, error) {
	var fields []storage.Field
	if strings.TrimSpace(text) != "" {
		for _, column := range strings.Split(text, ",") {
			name, tp, ok := strings.Cut(column, ":")
			if !ok {
				return nil, errors.Errorf("column '%s' must be written as name:type", column)
			}
			t, err := storage.ParseType(tp)
			if err != nil {
				return nil, err
			}
			fields = append(fields, storage.Field{Name: strings.TrimSpace(name), TP: t})
		}
	}
	return storage.NewSchema(fields...)
}

func parseRow(schema *storage.Schema, row string) (*storage.Record, error) {
	texts := strings.Split(row, ",")
	if len(texts) != schema.Len() {
		return nil, errors.Wrapf(storage.ErrWrongValueFormat, "row has %d values, schema %s has %d columns",
			len(texts), schema, schema.Len())
	}
	values := make([]storage.Value, len(texts))
	for i, text := range texts {
		v, err := storage.ParseValue(schema.FieldType(i), strings.TrimSpace(text))
		if err != nil {
			return nil, err
		}
		values[i] = v
	}
	return storage.NewRecord(values...), nil
}

func readLines(r io.Reader) ([]string, error) {
	var ret []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line != "" {
			ret = append(ret, line)
		}
	}
	return ret, scanner.Err()
}
