package parser

import (
	"github.com/xiaobogaga/exprdb/lexer"
)

// An expression is parsed by one function per precedence level, from the loosest (OR) to the tightest
// (primary). Operators supported:
// OR, AND, NOT, =, <>, <, <=, >, >=, +, -, *, /, %, unary -
// together with the aliases ||, &&, !, == and != which the lexer already maps.
func (parser *Parser) resolveExpression() (expr *ExpressionStm, err error) {
	expr = &ExpressionStm{}
	for {
		and, err := parser.parseAndStm()
		if err != nil {
			return nil, err
		}
		expr.Ands = append(expr.Ands, and)
		if !parser.matchTokenTypes(true, lexer.OR) {
			break
		}
	}
	return expr, nil
}

func (parser *Parser) parseAndStm() (*AndStm, error) {
	stm := &AndStm{}
	for {
		not, err := parser.parseNotStm()
		if err != nil {
			return nil, err
		}
		stm.Nots = append(stm.Nots, not)
		if !parser.matchTokenTypes(true, lexer.AND) {
			break
		}
	}
	return stm, nil
}

func (parser *Parser) parseNotStm() (*NotStm, error) {
	stm := &NotStm{}
	for parser.matchTokenTypes(true, lexer.NOT) {
		stm.Not++
	}
	comparison, err := parser.parseComparisonStm()
	if err != nil {
		return nil, err
	}
	stm.Expr = comparison
	return stm, nil
}

func (parser *Parser) parseComparisonStm() (*ComparisonStm, error) {
	stm := &ComparisonStm{}
	for {
		operand, err := parser.parseAdditiveStm()
		if err != nil {
			return nil, err
		}
		stm.Operands = append(stm.Operands, operand)
		op, ok := parser.matchOp(compareOps)
		if !ok {
			break
		}
		stm.Ops = append(stm.Ops, op)
	}
	return stm, nil
}

func (parser *Parser) parseAdditiveStm() (*AdditiveStm, error) {
	stm := &AdditiveStm{}
	for {
		operand, err := parser.parseMultiplicativeStm()
		if err != nil {
			return nil, err
		}
		stm.Operands = append(stm.Operands, operand)
		op, ok := parser.matchOp(additiveOps)
		if !ok {
			break
		}
		stm.Ops = append(stm.Ops, op)
	}
	return stm, nil
}

func (parser *Parser) parseMultiplicativeStm() (*MultiplicativeStm, error) {
	stm := &MultiplicativeStm{}
	for {
		operand, err := parser.parseUnaryStm()
		if err != nil {
			return nil, err
		}
		stm.Operands = append(stm.Operands, operand)
		op, ok := parser.matchOp(multiplicativeOps)
		if !ok {
			break
		}
		stm.Ops = append(stm.Ops, op)
	}
	return stm, nil
}

var compareOps = map[lexer.TokenType]ExpressionOpTP{
	lexer.EQUAL:      OperationEqual,
	lexer.NOTEQUAL:   OperationNotEqual,
	lexer.GREAT:      OperationGreat,
	lexer.GREATEQUAL: OperationGreatEqual,
	lexer.LESS:       OperationLess,
	lexer.LESSEQUAL:  OperationLessEqual,
}

var additiveOps = map[lexer.TokenType]ExpressionOpTP{
	lexer.PLUS:  OperationAdd,
	lexer.MINUS: OperationMinus,
}

var multiplicativeOps = map[lexer.TokenType]ExpressionOpTP{
	lexer.MUL:    OperationMul,
	lexer.DIVIDE: OperationDivide,
	lexer.MOD:    OperationMod,
}

// matchOp consumes the next token if it is one of ops.
func (parser *Parser) matchOp(ops map[lexer.TokenType]ExpressionOpTP) (ExpressionOpTP, bool) {
	token, ok := parser.NextToken()
	if ok {
		if op, isOp := ops[token.Tp]; isOp {
			return op, true
		}
	}
	parser.UnReadToken()
	return 0, false
}

func (parser *Parser) parseUnaryStm() (*UnaryStm, error) {
	stm := &UnaryStm{}
	for parser.matchTokenTypes(true, lexer.MINUS) {
		stm.Negative++
	}
	primary, err := parser.parsePrimaryStm()
	if err != nil {
		return nil, err
	}
	stm.Primary = primary
	return stm, nil
}

func (parser *Parser) parsePrimaryStm() (*PrimaryStm, error) {
	token, ok := parser.NextToken()
	if !ok {
		return nil, parser.MakeSyntaxError(parser.pos - 1)
	}
	switch token.Tp {
	case lexer.IDENT:
		return &PrimaryStm{Tp: ColumnPrimaryTp, Column: parser.l.Text(token)}, nil
	case lexer.WORD:
		// Must be function call or column
		if parser.matchTokenTypes(true, lexer.LEFTBRACKET) {
			parser.UnReadToken()
			return parser.parseFunctionCallStm(parser.l.Text(token))
		}
		return &PrimaryStm{Tp: ColumnPrimaryTp, Column: parser.l.Text(token)}, nil
	case lexer.TRUE, lexer.FALSE, lexer.INTVALUE, lexer.FLOATVALUE, lexer.STRINGVALUE:
		return parser.parseLiteralStm(parser.l.Text(token))
	case lexer.DATE:
		str, ok := parser.NextToken()
		if !ok || str.Tp != lexer.STRINGVALUE {
			return nil, parser.MakeSyntaxError(parser.pos - 1)
		}
		return parser.parseLiteralStm(parser.l.Text(token) + " " + parser.l.Text(str))
	case lexer.LEFTBRACKET:
		return parser.parseSubExpressionStm()
	default:
		return nil, parser.MakeSyntaxError(parser.pos - 1)
	}
}

func (parser *Parser) parseLiteralStm(text string) (*PrimaryStm, error) {
	value, err := ParseLiteral(text)
	if err != nil {
		return nil, err
	}
	return &PrimaryStm{Tp: LiteralPrimaryTp, Literal: value, LiteralText: text}, nil
}

func (parser *Parser) parseSubExpressionStm() (*PrimaryStm, error) {
	expr, err := parser.resolveExpression()
	if err != nil {
		return nil, err
	}
	if !parser.matchTokenTypes(false, lexer.RIGHTBRACKET) {
		return nil, parser.MakeSyntaxError(parser.pos - 1)
	}
	return &PrimaryStm{Tp: SubExpressionPrimaryTp, SubExpr: expr}, nil
}

// funcName(), funcName(*) or funcName(expr, ...)
func (parser *Parser) parseFunctionCallStm(funcName string) (*PrimaryStm, error) {
	if !parser.matchTokenTypes(false, lexer.LEFTBRACKET) {
		return nil, parser.MakeSyntaxError(parser.pos - 1)
	}
	call := &FunctionCallStm{FuncName: funcName}
	switch {
	case parser.matchTokenTypes(true, lexer.RIGHTBRACKET):
		return &PrimaryStm{Tp: FuncCallPrimaryTp, FuncCall: call}, nil
	case parser.matchTokenTypes(true, lexer.MUL, lexer.RIGHTBRACKET):
		call.Star = true
		return &PrimaryStm{Tp: FuncCallPrimaryTp, FuncCall: call}, nil
	}
	for {
		param, err := parser.resolveExpression()
		if err != nil {
			return nil, err
		}
		call.Params = append(call.Params, param)
		if !parser.matchTokenTypes(true, lexer.COMMA) {
			break
		}
	}
	if !parser.matchTokenTypes(false, lexer.RIGHTBRACKET) {
		return nil, parser.MakeSyntaxError(parser.pos - 1)
	}
	return &PrimaryStm{Tp: FuncCallPrimaryTp, FuncCall: call}, nil
}
