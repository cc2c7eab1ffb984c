package parser

import (
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xiaobogaga/exprdb/storage"
	"testing"
)

func testOneExpression(t *testing.T, data string) *ExpressionStm {
	parser := NewParser()
	expr, err := parser.ParseExpression([]byte(data))
	require.Nil(t, err, data)
	return expr
}

// primaryOf digs through single element levels down to the primary.
func primaryOf(t *testing.T, expr *ExpressionStm) *UnaryStm {
	require.Len(t, expr.Ands, 1)
	require.Len(t, expr.Ands[0].Nots, 1)
	not := expr.Ands[0].Nots[0]
	require.Len(t, not.Expr.Operands, 1)
	require.Len(t, not.Expr.Operands[0].Operands, 1)
	require.Len(t, not.Expr.Operands[0].Operands[0].Operands, 1)
	return not.Expr.Operands[0].Operands[0].Operands[0]
}

func TestParser_Expression(t *testing.T) {
	exprs := []string{
		"(a + b) * c + min(a, b, sum(c, 10))",
		"a > b and (c = 1) + d",
		"id = 1 + 0 or id = 2",
		" id = 1 * 1 + 1 or id = 1",
		"((a) + b * (6 / 5 * (2 % 2)))",
		"not not a",
		"count(*) + count()",
		"extract('year', date '2020-01-01')",
		"-(-a) - -3",
		"`weird name` <> 'x'",
		"a < b < c",
	}
	for _, expr := range exprs {
		testOneExpression(t, expr)
	}
}

func TestParser_Precedence(t *testing.T) {
	expr := testOneExpression(t, "a and b or c and not d")
	assert.Len(t, expr.Ands, 2)
	assert.Len(t, expr.Ands[0].Nots, 2)
	assert.Len(t, expr.Ands[1].Nots, 2)
	assert.Equal(t, 1, expr.Ands[1].Nots[1].Not)

	expr = testOneExpression(t, "a + b * c - d")
	comparison := expr.Ands[0].Nots[0].Expr
	assert.Len(t, comparison.Operands, 1)
	additive := comparison.Operands[0]
	assert.Equal(t, []ExpressionOpTP{OperationAdd, OperationMinus}, additive.Ops)
	assert.Len(t, additive.Operands[1].Operands, 2)
	assert.Equal(t, []ExpressionOpTP{OperationMul}, additive.Operands[1].Ops)

	expr = testOneExpression(t, "a < b == c != d")
	comparison = expr.Ands[0].Nots[0].Expr
	assert.Equal(t, []ExpressionOpTP{OperationLess, OperationEqual, OperationNotEqual}, comparison.Ops)

	expr = testOneExpression(t, "NOT NOT a")
	assert.Equal(t, 2, expr.Ands[0].Nots[0].Not)
}

func TestParser_Primary(t *testing.T) {
	unary := primaryOf(t, testOneExpression(t, "--a"))
	assert.Equal(t, 2, unary.Negative)
	assert.Equal(t, ColumnPrimaryTp, unary.Primary.Tp)
	assert.Equal(t, "a", unary.Primary.Column)

	unary = primaryOf(t, testOneExpression(t, "Date '2021-02-03'"))
	assert.Equal(t, LiteralPrimaryTp, unary.Primary.Tp)
	assert.Equal(t, storage.DateType(), unary.Primary.Literal.Type())
	assert.Equal(t, "2021-02-03", unary.Primary.Literal.String())

	unary = primaryOf(t, testOneExpression(t, "COUNT(*)"))
	assert.Equal(t, FuncCallPrimaryTp, unary.Primary.Tp)
	assert.Equal(t, "COUNT", unary.Primary.FuncCall.FuncName)
	assert.True(t, unary.Primary.FuncCall.Star)
	assert.Len(t, unary.Primary.FuncCall.Params, 0)

	unary = primaryOf(t, testOneExpression(t, "replace(a, 'x', b + 1)"))
	assert.Len(t, unary.Primary.FuncCall.Params, 3)
	assert.False(t, unary.Primary.FuncCall.Star)

	unary = primaryOf(t, testOneExpression(t, "(a or b)"))
	assert.Equal(t, SubExpressionPrimaryTp, unary.Primary.Tp)
	assert.Len(t, unary.Primary.SubExpr.Ands, 2)

	unary = primaryOf(t, testOneExpression(t, "`a b`"))
	assert.Equal(t, "a b", unary.Primary.Column)
}

func TestParser_SyntaxErrors(t *testing.T) {
	exprs := []string{
		"",
		"a +",
		"(a",
		"a)",
		"a b",
		"f(a,)",
		"f(a",
		"date 5",
		"not",
		"a = = b",
		"'unterminated",
		"1 +* 2",
		"count(* 1)",
	}
	for _, expr := range exprs {
		_, err := NewParser().ParseExpression([]byte(expr))
		assert.True(t, errors.Is(err, SyntaxErr), expr)
	}
	_, err := NewParser().ParseExpression([]byte("date '2020-13-45'"))
	assert.True(t, errors.Is(err, WrongLiteralFormatErr))
}
