package parser

import (
	"github.com/pkg/errors"
	"github.com/xiaobogaga/exprdb/lexer"
	"github.com/xiaobogaga/exprdb/log"
)

var parserLog = log.GetLog("Parser")

type Parser struct {
	pos int
	l   *lexer.Lexer
}

func NewParser() *Parser {
	return &Parser{}
}

type ParseError string

func (e ParseError) Error() string {
	return string(e)
}

const (
	SyntaxErr             = ParseError("syntax error")
	WrongLiteralFormatErr = ParseError("wrong literal format")
)

// ParseExpression parses one expression. The whole input must be consumed.
func (parser *Parser) ParseExpression(data []byte) (*ExpressionStm, error) {
	lex := lexer.NewLexer()
	err := lex.Lex(data)
	if err != nil {
		return nil, errors.Wrap(SyntaxErr, err.Error())
	}
	parserLog.DebugF("%s", lex)
	parser.l = lex
	parser.pos = 0
	stm, err := parser.resolveExpression()
	if err != nil {
		return nil, err
	}
	if parser.pos < len(parser.l.Tokens) {
		return nil, parser.MakeSyntaxError(parser.pos)
	}
	return stm, nil
}

// NextToken returns the next token and moves forward, even past the end, so that UnReadToken always undoes
// a NextToken.
func (parser *Parser) NextToken() (lexer.Token, bool) {
	if parser.pos >= len(parser.l.Tokens) {
		parser.pos++
		return lexer.Token{}, false
	}
	t := parser.l.Tokens[parser.pos]
	parser.pos++
	return t, true
}

func (parser *Parser) UnReadToken() {
	parser.pos--
}

func (parser *Parser) matchTokenTypes(ifNotRollback bool, tokenTypes ...lexer.TokenType) bool {
	for i, tp := range tokenTypes {
		t, ok := parser.NextToken()
		if !ok || t.Tp != tp {
			if ifNotRollback {
				parser.pos -= i + 1
			}
			return false
		}
	}
	return true
}

func (parser *Parser) MakeSyntaxError(pos int) error {
	if pos < 0 || pos >= len(parser.l.Tokens) {
		return errors.Wrap(SyntaxErr, "unexpected end of expression")
	}
	t := parser.l.Tokens[pos]
	return errors.Wrapf(SyntaxErr, "near '%s' at position %d", parser.l.Text(t), t.StartPos)
}
