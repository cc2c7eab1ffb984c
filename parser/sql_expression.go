package parser

import "github.com/xiaobogaga/exprdb/storage"

// The parse tree of an expression. Each level holds the operands of one precedence class, so the shape of the
// tree already encodes priority:
// expr           -> and {OR and}
// and            -> not {AND not}
// not            -> {NOT} comparison
// comparison     -> additive {compareOp additive}
// additive       -> multiplicative {(+|-) multiplicative}
// multiplicative -> unary {(*|/|%) unary}
// unary          -> {-} primary
// primary        -> literal | column | functionCall | (expr)

type ExpressionOpTP int

const (
	OperationAdd ExpressionOpTP = iota
	OperationMinus
	OperationMul
	OperationDivide
	OperationMod
	OperationEqual
	OperationNotEqual
	OperationGreat
	OperationGreatEqual
	OperationLess
	OperationLessEqual
)

var opSymbols = map[ExpressionOpTP]string{
	OperationAdd:        "+",
	OperationMinus:      "-",
	OperationMul:        "*",
	OperationDivide:     "/",
	OperationMod:        "%",
	OperationEqual:      "=",
	OperationNotEqual:   "<>",
	OperationGreat:      ">",
	OperationGreatEqual: ">=",
	OperationLess:       "<",
	OperationLessEqual:  "<=",
}

func (op ExpressionOpTP) String() string {
	return opSymbols[op]
}

// ExpressionStm is a disjunction of AndStm.
type ExpressionStm struct {
	Ands []*AndStm
}

// AndStm is a conjunction of NotStm.
type AndStm struct {
	Nots []*NotStm
}

// NotStm is a comparison preceded by Not NOT keywords.
type NotStm struct {
	Not  int
	Expr *ComparisonStm
}

// ComparisonStm chains comparisons left to right: a < b < c is (a < b) < c.
type ComparisonStm struct {
	Operands []*AdditiveStm
	Ops      []ExpressionOpTP
}

type AdditiveStm struct {
	Operands []*MultiplicativeStm
	Ops      []ExpressionOpTP
}

type MultiplicativeStm struct {
	Operands []*UnaryStm
	Ops      []ExpressionOpTP
}

// UnaryStm is a primary preceded by Negative minus signs.
type UnaryStm struct {
	Negative int
	Primary  *PrimaryStm
}

type PrimaryTp int

const (
	LiteralPrimaryTp PrimaryTp = iota
	ColumnPrimaryTp
	FuncCallPrimaryTp
	SubExpressionPrimaryTp
)

type PrimaryStm struct {
	Tp PrimaryTp
	// Literal is already parsed by ParseLiteral, LiteralText is the source text.
	Literal     storage.Value
	LiteralText string
	Column      string
	FuncCall    *FunctionCallStm
	SubExpr     *ExpressionStm
}

// FunctionCallStm is funcName(expr, ...). Star is set for funcName(*).
type FunctionCallStm struct {
	FuncName string
	Params   []*ExpressionStm
	Star     bool
}
