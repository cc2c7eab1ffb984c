package plan

import (
	"github.com/pkg/errors"
	"github.com/xiaobogaga/exprdb/parser"
)

var compareOps = map[parser.ExpressionOpTP]CompareOp{
	parser.OperationEqual:      OpEqual,
	parser.OperationNotEqual:   OpNotEqual,
	parser.OperationLess:       OpLess,
	parser.OperationLessEqual:  OpLessEqual,
	parser.OperationGreat:      OpGreat,
	parser.OperationGreatEqual: OpGreatEqual,
}

var arithmeticOps = map[parser.ExpressionOpTP]byte{
	parser.OperationAdd:    '+',
	parser.OperationMinus:  '-',
	parser.OperationMul:    '*',
	parser.OperationDivide: '/',
	parser.OperationMod:    '%',
}

// ParseExpr parses and lowers the expression text s. The result is not bound yet.
func ParseExpr(s string) (Expr, error) {
	stm, err := parser.NewParser().ParseExpression([]byte(s))
	if err != nil {
		return nil, err
	}
	return BuildExpr(stm)
}

// BuildExpr lowers a parse tree into an expression tree. A level with a single operand collapses into that
// operand.
func BuildExpr(stm *parser.ExpressionStm) (Expr, error) {
	ands := make([]Expr, len(stm.Ands))
	for i, andStm := range stm.Ands {
		and, err := buildAnd(andStm)
		if err != nil {
			return nil, err
		}
		ands[i] = and
	}
	if len(ands) == 1 {
		return ands[0], nil
	}
	return NewOr(ands...), nil
}

func buildAnd(stm *parser.AndStm) (Expr, error) {
	nots := make([]Expr, len(stm.Nots))
	for i, notStm := range stm.Nots {
		not, err := buildNot(notStm)
		if err != nil {
			return nil, err
		}
		nots[i] = not
	}
	if len(nots) == 1 {
		return nots[0], nil
	}
	return NewAnd(nots...), nil
}

func buildNot(stm *parser.NotStm) (Expr, error) {
	ret, err := buildComparison(stm.Expr)
	if err != nil {
		return nil, err
	}
	for i := 0; i < stm.Not; i++ {
		ret = NewNot(ret)
	}
	return ret, nil
}

func buildComparison(stm *parser.ComparisonStm) (Expr, error) {
	ret, err := buildAdditive(stm.Operands[0])
	if err != nil {
		return nil, err
	}
	for i, op := range stm.Ops {
		right, err := buildAdditive(stm.Operands[i+1])
		if err != nil {
			return nil, err
		}
		compareOp, ok := compareOps[op]
		if !ok {
			return nil, errors.Wrapf(ErrUnknownOperator, "'%s' is not a comparison", op)
		}
		ret, err = NewCompare(compareOp, ret, right)
		if err != nil {
			return nil, err
		}
	}
	return ret, nil
}

func toArithmeticOps(ops []parser.ExpressionOpTP) ([]byte, error) {
	ret := make([]byte, len(ops))
	for i, op := range ops {
		b, ok := arithmeticOps[op]
		if !ok {
			return nil, errors.Wrapf(ErrUnknownOperator, "'%s' is not arithmetic", op)
		}
		ret[i] = b
	}
	return ret, nil
}

func buildAdditive(stm *parser.AdditiveStm) (Expr, error) {
	operands := make([]Expr, len(stm.Operands))
	for i, operandStm := range stm.Operands {
		operand, err := buildMultiplicative(operandStm)
		if err != nil {
			return nil, err
		}
		operands[i] = operand
	}
	if len(operands) == 1 {
		return operands[0], nil
	}
	ops, err := toArithmeticOps(stm.Ops)
	if err != nil {
		return nil, err
	}
	ret, err := NewAdditive(operands, ops)
	if err != nil {
		return nil, err
	}
	return ret, nil
}

func buildMultiplicative(stm *parser.MultiplicativeStm) (Expr, error) {
	operands := make([]Expr, len(stm.Operands))
	for i, operandStm := range stm.Operands {
		operand, err := buildUnary(operandStm)
		if err != nil {
			return nil, err
		}
		operands[i] = operand
	}
	if len(operands) == 1 {
		return operands[0], nil
	}
	ops, err := toArithmeticOps(stm.Ops)
	if err != nil {
		return nil, err
	}
	ret, err := NewMultiplicative(operands, ops)
	if err != nil {
		return nil, err
	}
	return ret, nil
}

func buildUnary(stm *parser.UnaryStm) (Expr, error) {
	ret, err := buildPrimary(stm.Primary)
	if err != nil {
		return nil, err
	}
	for i := 0; i < stm.Negative; i++ {
		ret = NewNegate(ret)
	}
	return ret, nil
}

func buildPrimary(stm *parser.PrimaryStm) (Expr, error) {
	switch stm.Tp {
	case parser.LiteralPrimaryTp:
		return NewLiteral(stm.Literal), nil
	case parser.ColumnPrimaryTp:
		return NewColumn(stm.Column), nil
	case parser.FuncCallPrimaryTp:
		return buildFunctionCall(stm.FuncCall)
	case parser.SubExpressionPrimaryTp:
		inner, err := BuildExpr(stm.SubExpr)
		if err != nil {
			return nil, err
		}
		return NewParen(inner), nil
	}
	return nil, errors.Errorf("unknown primary type %d", stm.Tp)
}

// buildFunctionCall treats f(*) as f called without arguments.
func buildFunctionCall(stm *parser.FunctionCallStm) (Expr, error) {
	args := make([]Expr, 0, len(stm.Params))
	for _, param := range stm.Params {
		arg, err := BuildExpr(param)
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
	}
	return NewFunction(stm.FuncName, args...)
}
