package plan

import (
	"bytes"
	"math"
	"sort"
	"strings"

	"github.com/pkg/errors"
	"github.com/samber/lo"
	"github.com/xiaobogaga/exprdb/storage"
)

type scalarFunc struct {
	name  string
	arity int
	// returnType checks the bound argument types.
	returnType func(args []storage.Type) (storage.Type, error)
	eval       func(tp storage.Type, args []storage.Value) (storage.Value, error)
}

var scalarFuncs = map[string]scalarFunc{
	"UPPER":   {name: "UPPER", arity: 1, returnType: stringToString, eval: caseMapper(strings.ToUpper)},
	"LOWER":   {name: "LOWER", arity: 1, returnType: stringToString, eval: caseMapper(strings.ToLower)},
	"REPLACE": {name: "REPLACE", arity: 3, returnType: replaceType, eval: replace},
	"ROUND":   {name: "ROUND", arity: 1, returnType: numberToLong, eval: rounder(func(f float64) float64 { return math.Floor(f + 0.5) })},
	"CEIL":    {name: "CEIL", arity: 1, returnType: numberToLong, eval: rounder(math.Ceil)},
	"FLOOR":   {name: "FLOOR", arity: 1, returnType: numberToLong, eval: rounder(math.Floor)},
	"NEGATE":  {name: "NEGATE", arity: 1, returnType: negateType, eval: negate},
	"EXTRACT": {name: "EXTRACT", arity: 2, returnType: extractType, eval: extract},
}

// FunctionNames lists every name NewFunction accepts.
func FunctionNames() []string {
	names := append(lo.Keys(scalarFuncs), lo.Keys(aggregateFuncs)...)
	sort.Strings(names)
	return names
}

// NewFunction makes the scalar or aggregate function called name, which is matched case insensitively. The
// argument count is checked here, argument types when the function is bound.
func NewFunction(name string, args ...Expr) (Expr, error) {
	key := strings.ToUpper(strings.TrimSpace(name))
	if fn, ok := scalarFuncs[key]; ok {
		if len(args) != fn.arity {
			return nil, errors.Wrapf(ErrArity, "%s takes exactly %d argument(s), got %d", fn.name, fn.arity, len(args))
		}
		return &FuncExpr{exprBase: newExprBase(args...), fn: fn, Args: args}, nil
	}
	if _, ok := aggregateFuncs[key]; ok {
		aggr, err := NewAggregate(key, args...)
		if err != nil {
			return nil, err
		}
		return aggr, nil
	}
	return nil, errors.Wrapf(ErrUnknownFunction, "'%s'", name)
}

// FuncExpr is a call of a scalar function.
type FuncExpr struct {
	exprBase
	fn   scalarFunc
	Args []Expr
}

func (f *FuncExpr) Name() string { return f.fn.name }

func (f *FuncExpr) SetSchema(schema *storage.Schema) error {
	if err := bindAll(schema, f.Args...); err != nil {
		return err
	}
	types := lo.Map(f.Args, func(arg Expr, _ int) storage.Type { return arg.Type() })
	tp, err := f.fn.returnType(types)
	if err != nil {
		return errors.Wrapf(err, "in %s", f)
	}
	f.tp = tp
	return nil
}

func (f *FuncExpr) Evaluate(record *storage.Record) (storage.Value, error) {
	values := make([]storage.Value, len(f.Args))
	for i, arg := range f.Args {
		v, err := arg.Evaluate(record)
		if err != nil {
			return nil, err
		}
		values[i] = v
	}
	return f.fn.eval(f.tp, values)
}

func (f *FuncExpr) Update(record *storage.Record) error { return updateAll(record, f.Args...) }

func (f *FuncExpr) Reset() { resetAll(f.Args...) }

func (f *FuncExpr) String() string {
	return callString(f.fn.name, f.Args)
}

// Arguments of a call are never parenthesized.
func callString(name string, args []Expr) string {
	buf := bytes.Buffer{}
	buf.WriteString(name)
	buf.WriteString("(")
	for i, arg := range args {
		if i > 0 {
			buf.WriteString(", ")
		}
		buf.WriteString(arg.String())
	}
	buf.WriteString(")")
	return buf.String()
}

func (f *FuncExpr) Clone() Expr {
	args := cloneAll(f.Args)
	return &FuncExpr{exprBase: newExprBase(args...), fn: f.fn, Args: args}
}

func (f *FuncExpr) priority() Priority { return PriorityAtomic }

func (f *FuncExpr) children() []Expr { return f.Args }

func typeErr(format string, args ...interface{}) error {
	return errors.Wrapf(storage.ErrTypeMismatch, format, args...)
}

func stringToString(args []storage.Type) (storage.Type, error) {
	if args[0].ID != storage.TypeString {
		return storage.Type{}, typeErr("can only be used on strings, got %s", args[0])
	}
	return args[0], nil
}

func replaceType(args []storage.Type) (storage.Type, error) {
	for _, tp := range args {
		if tp.ID != storage.TypeString {
			return storage.Type{}, typeErr("all arguments of REPLACE must be of type STRING, got %s", tp)
		}
	}
	return args[0], nil
}

func numberToLong(args []storage.Type) (storage.Type, error) {
	switch args[0].ID {
	case storage.TypeString, storage.TypeByteArray, storage.TypeDate:
		return storage.Type{}, typeErr("not defined for type %s", args[0])
	}
	return storage.LongType(), nil
}

func negateType(args []storage.Type) (storage.Type, error) {
	switch args[0].ID {
	case storage.TypeInt, storage.TypeLong, storage.TypeFloat:
		return args[0], nil
	}
	return storage.Type{}, typeErr("NEGATE is not defined for type %s", args[0])
}

func extractType(args []storage.Type) (storage.Type, error) {
	if args[0].ID != storage.TypeString || args[1].ID != storage.TypeDate {
		return storage.Type{}, typeErr("EXTRACT arguments must be a STRING and DATE, got %s and %s", args[0], args[1])
	}
	return storage.IntType(), nil
}

func asString(v storage.Value) (storage.String, error) {
	s, ok := v.(storage.String)
	if !ok {
		return storage.String{}, typeErr("expect STRING, got %s", v.Type())
	}
	return s, nil
}

// caseMapper keeps the declared length of its argument.
func caseMapper(mapping func(string) string) func(storage.Type, []storage.Value) (storage.Value, error) {
	return func(_ storage.Type, args []storage.Value) (storage.Value, error) {
		s, err := asString(args[0])
		if err != nil {
			return nil, err
		}
		return storage.NewString(mapping(s.Val()), s.Type().Size), nil
	}
}

func replace(_ storage.Type, args []storage.Value) (storage.Value, error) {
	strs := make([]string, len(args))
	for i, arg := range args {
		s, err := asString(arg)
		if err != nil {
			return nil, err
		}
		strs[i] = s.Val()
	}
	ret := strings.ReplaceAll(strs[0], strs[1], strs[2])
	return storage.NewString(ret, len(ret)), nil
}

// rounder maps a number to a LONG. Integers are kept as they are, only FLOAT goes through round.
func rounder(round func(float64) float64) func(storage.Type, []storage.Value) (storage.Value, error) {
	return func(_ storage.Type, args []storage.Value) (storage.Value, error) {
		if f, ok := args[0].(storage.Float); ok {
			return storage.Long(int64(round(float64(f)))), nil
		}
		l, err := storage.ToLong(args[0])
		if err != nil {
			return nil, err
		}
		return storage.Long(l), nil
	}
}

func negate(tp storage.Type, args []storage.Value) (storage.Value, error) {
	return storage.Negative(tp, args[0])
}

func extract(_ storage.Type, args []storage.Value) (storage.Value, error) {
	part, err := asString(args[0])
	if err != nil {
		return nil, err
	}
	date, ok := args[1].(storage.Date)
	if !ok {
		return nil, typeErr("EXTRACT expects a DATE, got %s", args[1].Type())
	}
	t := date.Time()
	switch strings.ToLower(part.Val()) {
	case "year":
		return storage.Int(t.Year()), nil
	case "month":
		// Months count from 0.
		return storage.Int(int(t.Month()) - 1), nil
	case "day":
		return storage.Int(t.Day()), nil
	}
	return nil, errors.Wrapf(ErrInvalidDatePart, "'%s'", part.Val())
}
