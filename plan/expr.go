package plan

import (
	"bytes"
	"strings"

	"github.com/pkg/errors"
	"github.com/samber/lo"
	"github.com/xiaobogaga/exprdb/storage"
)

// Expr is a node of an expression tree. A tree owns its children, nothing is shared between two trees.
// An expression must be bound with SetSchema before Type, Evaluate or Update are meaningful. A tree holding
// aggregates carries per group state and must only be driven by one scan at a time.
type Expr interface {
	Type() storage.Type
	// SetSchema binds the expression and all its children to schema. It can be called again with another
	// schema.
	SetSchema(schema *storage.Schema) error
	Evaluate(record *storage.Record) (storage.Value, error)
	// Update folds record into every aggregate of the tree.
	Update(record *storage.Record) error
	// Reset returns every aggregate of the tree to its initial state.
	Reset()
	// Dependencies are the column names the expression reads.
	Dependencies() []string
	HasAgg() bool
	String() string
	// Clone returns an unbound copy with fresh aggregate state.
	Clone() Expr
	priority() Priority
	children() []Expr
}

// Priority orders operators from the tightest binding to the loosest.
type Priority int

const (
	PriorityAtomic Priority = iota
	PriorityNegate
	PriorityMultiplicative
	PriorityAdditive
	PriorityCompare
	PriorityNot
	PriorityAnd
	PriorityOr
)

type exprBase struct {
	tp     storage.Type
	deps   []string
	hasAgg bool
}

func newExprBase(children ...Expr) exprBase {
	deps := lo.Uniq(lo.Flatten(lo.Map(children, func(child Expr, _ int) []string { return child.Dependencies() })))
	hasAgg := lo.Reduce(children, func(agg bool, child Expr, _ int) bool { return agg || child.HasAgg() }, false)
	return exprBase{deps: deps, hasAgg: hasAgg}
}

func (base *exprBase) Type() storage.Type { return base.tp }

func (base *exprBase) Dependencies() []string { return base.deps }

func (base *exprBase) HasAgg() bool { return base.hasAgg }

func bindAll(schema *storage.Schema, children ...Expr) error {
	for _, child := range children {
		if err := child.SetSchema(schema); err != nil {
			return err
		}
	}
	return nil
}

func updateAll(record *storage.Record, children ...Expr) error {
	for _, child := range children {
		if !child.HasAgg() {
			continue
		}
		if err := child.Update(record); err != nil {
			return err
		}
	}
	return nil
}

func resetAll(children ...Expr) {
	for _, child := range children {
		child.Reset()
	}
}

func cloneAll(children []Expr) []Expr {
	return lo.Map(children, func(child Expr, _ int) Expr { return child.Clone() })
}

// render wraps child in parentheses when it binds looser than parent.
func render(parent, child Expr) string {
	if child.priority() > parent.priority() {
		return "(" + child.String() + ")"
	}
	return child.String()
}

// renderJoin renders children separated by sep(i), the separator in front of the i-th child.
func renderJoin(parent Expr, children []Expr, sep func(i int) string) string {
	buf := bytes.Buffer{}
	for i, child := range children {
		if i > 0 {
			buf.WriteString(sep(i))
		}
		buf.WriteString(render(parent, child))
	}
	return buf.String()
}

// ColumnExpr reads one field of the record.
type ColumnExpr struct {
	exprBase
	Name    string
	ordinal int
}

func NewColumn(name string) *ColumnExpr {
	return &ColumnExpr{exprBase: exprBase{deps: []string{name}}, Name: name, ordinal: -1}
}

func (column *ColumnExpr) SetSchema(schema *storage.Schema) error {
	i, ok := schema.FindField(column.Name)
	if !ok {
		return errors.Wrapf(ErrSchemaBinding, "column '%s' cannot find in %s", column.Name, schema)
	}
	column.ordinal = i
	column.tp = schema.FieldType(i)
	return nil
}

func (column *ColumnExpr) Evaluate(record *storage.Record) (storage.Value, error) {
	if column.ordinal < 0 || column.ordinal >= record.Len() {
		return nil, errors.Wrapf(ErrUnboundReference, "column '%s'", column.Name)
	}
	return record.Get(column.ordinal), nil
}

func (column *ColumnExpr) Update(_ *storage.Record) error { return nil }

func (column *ColumnExpr) Reset() {}

func (column *ColumnExpr) String() string {
	if isPlainName(column.Name) {
		return column.Name
	}
	return "`" + column.Name + "`"
}

func (column *ColumnExpr) Clone() Expr { return NewColumn(column.Name) }

func (column *ColumnExpr) priority() Priority { return PriorityAtomic }

func (column *ColumnExpr) children() []Expr { return nil }

var reservedWords = []string{"AND", "OR", "NOT", "TRUE", "FALSE", "DATE"}

// A plain name reads back as a column without quoting.
func isPlainName(name string) bool {
	if name == "" || lo.Contains(reservedWords, strings.ToUpper(name)) {
		return false
	}
	for i := 0; i < len(name); i++ {
		c := name[i]
		switch {
		case c == '_' || (c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z'):
		case c >= '0' && c <= '9' && i > 0:
		default:
			return false
		}
	}
	return true
}

type LiteralExpr struct {
	exprBase
	Value storage.Value
}

func NewLiteral(value storage.Value) *LiteralExpr {
	return &LiteralExpr{exprBase: exprBase{tp: value.Type(), deps: []string{}}, Value: value}
}

func (literal *LiteralExpr) SetSchema(_ *storage.Schema) error { return nil }

func (literal *LiteralExpr) Evaluate(_ *storage.Record) (storage.Value, error) {
	return literal.Value, nil
}

func (literal *LiteralExpr) Update(_ *storage.Record) error { return nil }

func (literal *LiteralExpr) Reset() {}

func (literal *LiteralExpr) String() string {
	switch v := literal.Value.(type) {
	case storage.String:
		return "'" + v.Val() + "'"
	case storage.Date:
		return "DATE '" + v.String() + "'"
	default:
		return v.String()
	}
}

func (literal *LiteralExpr) Clone() Expr { return NewLiteral(literal.Value) }

func (literal *LiteralExpr) priority() Priority { return PriorityAtomic }

func (literal *LiteralExpr) children() []Expr { return nil }

// ParenExpr is a parenthesized expression kept as written.
type ParenExpr struct {
	exprBase
	Inner Expr
}

func NewParen(inner Expr) *ParenExpr {
	return &ParenExpr{exprBase: newExprBase(inner), Inner: inner}
}

func (paren *ParenExpr) SetSchema(schema *storage.Schema) error {
	if err := paren.Inner.SetSchema(schema); err != nil {
		return err
	}
	paren.tp = paren.Inner.Type()
	return nil
}

func (paren *ParenExpr) Evaluate(record *storage.Record) (storage.Value, error) {
	return paren.Inner.Evaluate(record)
}

func (paren *ParenExpr) Update(record *storage.Record) error { return updateAll(record, paren.Inner) }

func (paren *ParenExpr) Reset() { paren.Inner.Reset() }

func (paren *ParenExpr) String() string { return "(" + paren.Inner.String() + ")" }

func (paren *ParenExpr) Clone() Expr { return NewParen(paren.Inner.Clone()) }

func (paren *ParenExpr) priority() Priority { return PriorityAtomic }

func (paren *ParenExpr) children() []Expr { return []Expr{paren.Inner} }

// unwrapParen looks through any number of parentheses.
func unwrapParen(expr Expr) Expr {
	for {
		paren, ok := expr.(*ParenExpr)
		if !ok {
			return expr
		}
		expr = paren.Inner
	}
}

type CompareOp int

const (
	OpEqual CompareOp = iota
	OpNotEqual
	OpLess
	OpLessEqual
	OpGreat
	OpGreatEqual
)

var compareOpSymbols = map[CompareOp]string{
	OpEqual:      "=",
	OpNotEqual:   "<>",
	OpLess:       "<",
	OpLessEqual:  "<=",
	OpGreat:      ">",
	OpGreatEqual: ">=",
}

func (op CompareOp) String() string { return compareOpSymbols[op] }

func (op CompareOp) holds(order int) bool {
	switch op {
	case OpEqual:
		return order == 0
	case OpNotEqual:
		return order != 0
	case OpLess:
		return order < 0
	case OpLessEqual:
		return order <= 0
	case OpGreat:
		return order > 0
	default:
		return order >= 0
	}
}

type CompareExpr struct {
	exprBase
	Op          CompareOp
	Left, Right Expr
}

func NewCompare(op CompareOp, left, right Expr) (*CompareExpr, error) {
	if _, ok := compareOpSymbols[op]; !ok {
		return nil, errors.Wrapf(ErrUnknownOperator, "comparison %d", int(op))
	}
	return &CompareExpr{exprBase: newExprBase(left, right), Op: op, Left: left, Right: right}, nil
}

func (compare *CompareExpr) SetSchema(schema *storage.Schema) error {
	if err := bindAll(schema, compare.Left, compare.Right); err != nil {
		return err
	}
	if err := checkComparable(compare.Left.Type(), compare.Right.Type()); err != nil {
		return errors.Wrapf(err, "in %s", compare)
	}
	compare.tp = storage.BoolType()
	return nil
}

// checkComparable accepts numeric pairs (BOOL counted as a number) and STRING or DATE pairs.
func checkComparable(tp1, tp2 storage.Type) error {
	if tp1.IsNumeric() && tp2.IsNumeric() {
		return nil
	}
	if tp1.ID == tp2.ID && (tp1.ID == storage.TypeString || tp1.ID == storage.TypeDate) {
		return nil
	}
	return errors.Wrapf(storage.ErrTypeMismatch, "cannot compare %s with %s", tp1, tp2)
}

func (compare *CompareExpr) Evaluate(record *storage.Record) (storage.Value, error) {
	left, err := compare.Left.Evaluate(record)
	if err != nil {
		return nil, err
	}
	right, err := compare.Right.Evaluate(record)
	if err != nil {
		return nil, err
	}
	order, err := left.CompareTo(right)
	if err != nil {
		return nil, err
	}
	return storage.Bool(compare.Op.holds(order)), nil
}

func (compare *CompareExpr) Update(record *storage.Record) error {
	return updateAll(record, compare.Left, compare.Right)
}

func (compare *CompareExpr) Reset() { resetAll(compare.Left, compare.Right) }

func (compare *CompareExpr) String() string {
	return render(compare, compare.Left) + " " + compare.Op.String() + " " + render(compare, compare.Right)
}

func (compare *CompareExpr) Clone() Expr {
	ret, _ := NewCompare(compare.Op, compare.Left.Clone(), compare.Right.Clone())
	return ret
}

func (compare *CompareExpr) priority() Priority { return PriorityCompare }

func (compare *CompareExpr) children() []Expr { return []Expr{compare.Left, compare.Right} }

func checkBoolOperand(expr Expr) error {
	if expr.Type().ID == storage.TypeByteArray {
		return errors.Wrapf(storage.ErrUnsupportedConversion, "cannot interpret %s as true/false", expr)
	}
	return nil
}

type NotExpr struct {
	exprBase
	Inner Expr
}

func NewNot(inner Expr) *NotExpr {
	return &NotExpr{exprBase: newExprBase(inner), Inner: inner}
}

func (not *NotExpr) SetSchema(schema *storage.Schema) error {
	if err := not.Inner.SetSchema(schema); err != nil {
		return err
	}
	if err := checkBoolOperand(not.Inner); err != nil {
		return err
	}
	not.tp = storage.BoolType()
	return nil
}

func (not *NotExpr) Evaluate(record *storage.Record) (storage.Value, error) {
	v, err := not.Inner.Evaluate(record)
	if err != nil {
		return nil, err
	}
	b, err := storage.ToBool(v)
	if err != nil {
		return nil, err
	}
	return storage.Bool(!b), nil
}

func (not *NotExpr) Update(record *storage.Record) error { return updateAll(record, not.Inner) }

func (not *NotExpr) Reset() { not.Inner.Reset() }

func (not *NotExpr) String() string { return "NOT " + render(not, not.Inner) }

func (not *NotExpr) Clone() Expr { return NewNot(not.Inner.Clone()) }

func (not *NotExpr) priority() Priority { return PriorityNot }

func (not *NotExpr) children() []Expr { return []Expr{not.Inner} }

// AndExpr is true when every child is true. Children are evaluated left to right and evaluation stops at the
// first false one.
type AndExpr struct {
	exprBase
	Children []Expr
}

func NewAnd(children ...Expr) *AndExpr {
	return &AndExpr{exprBase: newExprBase(children...), Children: children}
}

func (and *AndExpr) SetSchema(schema *storage.Schema) error {
	if err := bindAll(schema, and.Children...); err != nil {
		return err
	}
	for _, child := range and.Children {
		if err := checkBoolOperand(child); err != nil {
			return err
		}
	}
	and.tp = storage.BoolType()
	return nil
}

func (and *AndExpr) Evaluate(record *storage.Record) (storage.Value, error) {
	return shortCircuit(record, and.Children, false)
}

// shortCircuit returns stopAt as soon as a child evaluates to it, !stopAt otherwise.
func shortCircuit(record *storage.Record, children []Expr, stopAt bool) (storage.Value, error) {
	for _, child := range children {
		v, err := child.Evaluate(record)
		if err != nil {
			return nil, err
		}
		b, err := storage.ToBool(v)
		if err != nil {
			return nil, err
		}
		if b == stopAt {
			return storage.Bool(stopAt), nil
		}
	}
	return storage.Bool(!stopAt), nil
}

func (and *AndExpr) Update(record *storage.Record) error { return updateAll(record, and.Children...) }

func (and *AndExpr) Reset() { resetAll(and.Children...) }

func (and *AndExpr) String() string {
	return renderJoin(and, and.Children, func(_ int) string { return " AND " })
}

func (and *AndExpr) Clone() Expr { return NewAnd(cloneAll(and.Children)...) }

func (and *AndExpr) priority() Priority { return PriorityAnd }

func (and *AndExpr) children() []Expr { return and.Children }

type OrExpr struct {
	exprBase
	Children []Expr
}

func NewOr(children ...Expr) *OrExpr {
	return &OrExpr{exprBase: newExprBase(children...), Children: children}
}

func (or *OrExpr) SetSchema(schema *storage.Schema) error {
	if err := bindAll(schema, or.Children...); err != nil {
		return err
	}
	for _, child := range or.Children {
		if err := checkBoolOperand(child); err != nil {
			return err
		}
	}
	or.tp = storage.BoolType()
	return nil
}

func (or *OrExpr) Evaluate(record *storage.Record) (storage.Value, error) {
	return shortCircuit(record, or.Children, true)
}

func (or *OrExpr) Update(record *storage.Record) error { return updateAll(record, or.Children...) }

func (or *OrExpr) Reset() { resetAll(or.Children...) }

func (or *OrExpr) String() string {
	return renderJoin(or, or.Children, func(_ int) string { return " OR " })
}

func (or *OrExpr) Clone() Expr { return NewOr(cloneAll(or.Children)...) }

func (or *OrExpr) priority() Priority { return PriorityOr }

func (or *OrExpr) children() []Expr { return or.Children }

// ArithmeticExpr is a chain of operands at one precedence level, a + b - c or a * b / c % d, applied left to
// right. The result type is the promoted type of all operands.
type ArithmeticExpr struct {
	exprBase
	level    Priority
	Operands []Expr
	Ops      []byte
}

var (
	additiveOps       = []byte{'+', '-'}
	multiplicativeOps = []byte{'*', '/', '%'}
)

func NewAdditive(operands []Expr, ops []byte) (*ArithmeticExpr, error) {
	return newArithmetic(PriorityAdditive, additiveOps, operands, ops)
}

func NewMultiplicative(operands []Expr, ops []byte) (*ArithmeticExpr, error) {
	return newArithmetic(PriorityMultiplicative, multiplicativeOps, operands, ops)
}

func newArithmetic(level Priority, allowed []byte, operands []Expr, ops []byte) (*ArithmeticExpr, error) {
	if len(operands) < 2 || len(ops) != len(operands)-1 {
		return nil, errors.Wrapf(ErrArity, "%d operands with %d operators", len(operands), len(ops))
	}
	for _, op := range ops {
		if !lo.Contains(allowed, op) {
			return nil, errors.Wrapf(ErrUnknownOperator, "'%c'", op)
		}
	}
	return &ArithmeticExpr{exprBase: newExprBase(operands...), level: level, Operands: operands, Ops: ops}, nil
}

func (arith *ArithmeticExpr) SetSchema(schema *storage.Schema) error {
	if err := bindAll(schema, arith.Operands...); err != nil {
		return err
	}
	types := lo.Map(arith.Operands, func(operand Expr, _ int) storage.Type { return operand.Type() })
	tp, err := storage.PromoteNumeric(types...)
	if err != nil {
		return errors.Wrapf(err, "in %s", arith)
	}
	arith.tp = tp
	return nil
}

func (arith *ArithmeticExpr) Evaluate(record *storage.Record) (storage.Value, error) {
	ret, err := arith.Operands[0].Evaluate(record)
	if err != nil {
		return nil, err
	}
	for i, op := range arith.Ops {
		v, err := arith.Operands[i+1].Evaluate(record)
		if err != nil {
			return nil, err
		}
		ret, err = storage.Arith(op, arith.tp, ret, v)
		if err != nil {
			return nil, err
		}
	}
	return ret, nil
}

func (arith *ArithmeticExpr) Update(record *storage.Record) error {
	return updateAll(record, arith.Operands...)
}

func (arith *ArithmeticExpr) Reset() { resetAll(arith.Operands...) }

func (arith *ArithmeticExpr) String() string {
	return renderJoin(arith, arith.Operands, func(i int) string { return " " + string(arith.Ops[i-1]) + " " })
}

func (arith *ArithmeticExpr) Clone() Expr {
	ops := make([]byte, len(arith.Ops))
	copy(ops, arith.Ops)
	ret, _ := newArithmetic(arith.level, arith.allowedOps(), cloneAll(arith.Operands), ops)
	return ret
}

func (arith *ArithmeticExpr) allowedOps() []byte {
	if arith.level == PriorityAdditive {
		return additiveOps
	}
	return multiplicativeOps
}

func (arith *ArithmeticExpr) priority() Priority { return arith.level }

func (arith *ArithmeticExpr) children() []Expr { return arith.Operands }

// NegateExpr is an unary minus.
type NegateExpr struct {
	exprBase
	Inner Expr
}

func NewNegate(inner Expr) *NegateExpr {
	return &NegateExpr{exprBase: newExprBase(inner), Inner: inner}
}

func (negate *NegateExpr) SetSchema(schema *storage.Schema) error {
	if err := negate.Inner.SetSchema(schema); err != nil {
		return err
	}
	tp, err := storage.PromoteNumeric(negate.Inner.Type())
	if err != nil {
		return errors.Wrapf(err, "in %s", negate)
	}
	negate.tp = tp
	return nil
}

func (negate *NegateExpr) Evaluate(record *storage.Record) (storage.Value, error) {
	v, err := negate.Inner.Evaluate(record)
	if err != nil {
		return nil, err
	}
	return storage.Negative(negate.tp, v)
}

func (negate *NegateExpr) Update(record *storage.Record) error { return updateAll(record, negate.Inner) }

func (negate *NegateExpr) Reset() { negate.Inner.Reset() }

func (negate *NegateExpr) String() string { return "-" + render(negate, negate.Inner) }

func (negate *NegateExpr) Clone() Expr { return NewNegate(negate.Inner.Clone()) }

func (negate *NegateExpr) priority() Priority { return PriorityNegate }

func (negate *NegateExpr) children() []Expr { return []Expr{negate.Inner} }
