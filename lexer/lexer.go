package lexer

import (
	"bytes"
	"fmt"

	"github.com/pkg/errors"
)

type TokenType int

func (t TokenType) String() string {
	return revertKeyWords[t]
}

const (
	// a name of a column or a function, either a bare word or `quoted`
	IDENT TokenType = iota
	WORD

	// literal values
	TRUE
	FALSE
	INTVALUE
	FLOATVALUE
	// 'text', quotes included in the token. A doubled '' stays inside.
	STRINGVALUE
	// date 'yyyy-mm-dd'
	DATE

	// logic
	AND
	OR
	NOT

	// comparison
	EQUAL
	NOTEQUAL
	GREAT
	GREATEQUAL
	LESS
	LESSEQUAL

	// calculation
	PLUS
	MINUS
	MUL // can also be a STAR in COUNT(*)
	DIVIDE
	MOD

	LEFTBRACKET
	RIGHTBRACKET
	COMMA
)

type LexicalError string

func (err LexicalError) Error() string {
	return string(err)
}

const (
	StringUnExpecedEndErr = LexicalError("unexpected string end")
	IdentFormatErr        = LexicalError("wrong ident")
	NumberFormatErr       = LexicalError("wrong number format")
	UnknownTokenErr       = LexicalError("unknown token")
)

type Token struct {
	Tp       TokenType
	StartPos int
	EndPos   int
}

type Lexer struct {
	Tokens []Token
	Data   []byte
	pos    int
}

func NewLexer() *Lexer {
	return &Lexer{}
}

var keyWords = map[string]TokenType{
	"TRUE":  TRUE,
	"FALSE": FALSE,
	"DATE":  DATE,
	"AND":   AND,
	"OR":    OR,
	"NOT":   NOT,
}

var singleCharKeyWordMap = map[byte]TokenType{
	'+': PLUS,
	'-': MINUS,
	'*': MUL,
	'/': DIVIDE,
	'%': MOD,
	'(': LEFTBRACKET,
	')': RIGHTBRACKET,
	',': COMMA,
}

var revertKeyWords = map[TokenType]string{}

func init() {
	for k, v := range keyWords {
		revertKeyWords[v] = k
	}
	revertKeyWords[IDENT] = "IDENT"
	revertKeyWords[WORD] = "WORD"
	revertKeyWords[INTVALUE] = "INTVALUE"
	revertKeyWords[FLOATVALUE] = "FLOATVALUE"
	revertKeyWords[STRINGVALUE] = "STRINGVALUE"
	revertKeyWords[EQUAL] = "EQUAL"
	revertKeyWords[NOTEQUAL] = "NOTEQUAL"
	revertKeyWords[GREAT] = "GREAT"
	revertKeyWords[GREATEQUAL] = "GREATEQUAL"
	revertKeyWords[LESS] = "LESS"
	revertKeyWords[LESSEQUAL] = "LESSEQUAL"
	revertKeyWords[PLUS] = "PLUS"
	revertKeyWords[MINUS] = "MINUS"
	revertKeyWords[MUL] = "MUL"
	revertKeyWords[DIVIDE] = "DIVIDE"
	revertKeyWords[MOD] = "MOD"
	revertKeyWords[LEFTBRACKET] = "LEFTBRACKET"
	revertKeyWords[RIGHTBRACKET] = "RIGHTBRACKET"
	revertKeyWords[COMMA] = "COMMA"
}

func (l *Lexer) Reset() {
	l.Data = nil
	l.Tokens = l.Tokens[:0]
	l.pos = 0
}

func (l *Lexer) Lex(data []byte) error {
	l.Reset()
	l.Data = data
	return l.read()
}

// Text returns the source bytes a token covers.
func (l *Lexer) Text(token Token) string {
	return string(l.Data[token.StartPos:token.EndPos])
}

func (l *Lexer) read() (err error) {
	for l.pos < len(l.Data) {
		switch c := l.Data[l.pos]; {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			l.readContinuousSpace()
		case c == '`':
			err = l.readIdent()
		case c == '\'':
			err = l.readString()
		case c >= '0' && c <= '9':
			err = l.readNumberValue()
		case c == '_' || (c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z'):
			l.readWord()
		default:
			err = l.readChars()
		}
		if err != nil {
			return errors.Wrapf(err, "at position %d", l.pos)
		}
	}
	return nil
}

func (l *Lexer) appendToken(tp TokenType, startPos int) {
	l.Tokens = append(l.Tokens, Token{Tp: tp, StartPos: startPos, EndPos: l.pos})
}

// nextIs consumes b when it is the next byte.
func (l *Lexer) nextIs(b byte) bool {
	if l.pos < len(l.Data) && l.Data[l.pos] == b {
		l.pos++
		return true
	}
	return false
}

func (l *Lexer) readChars() error {
	startPos := l.pos
	b := l.Data[l.pos]
	l.pos++
	switch b {
	case '!':
		if l.nextIs('=') {
			l.appendToken(NOTEQUAL, startPos)
		} else {
			l.appendToken(NOT, startPos)
		}
	case '>':
		if l.nextIs('=') {
			l.appendToken(GREATEQUAL, startPos)
		} else {
			l.appendToken(GREAT, startPos)
		}
	case '<':
		if l.nextIs('=') {
			l.appendToken(LESSEQUAL, startPos)
		} else if l.nextIs('>') {
			l.appendToken(NOTEQUAL, startPos)
		} else {
			l.appendToken(LESS, startPos)
		}
	case '=':
		l.nextIs('=')
		l.appendToken(EQUAL, startPos)
	case '&':
		if !l.nextIs('&') {
			l.pos = startPos
			return UnknownTokenErr
		}
		l.appendToken(AND, startPos)
	case '|':
		if !l.nextIs('|') {
			l.pos = startPos
			return UnknownTokenErr
		}
		l.appendToken(OR, startPos)
	default:
		tp, ok := singleCharKeyWordMap[b]
		if !ok {
			l.pos = startPos
			return UnknownTokenErr
		}
		l.appendToken(tp, startPos)
	}
	return nil
}

func (l *Lexer) readContinuousSpace() {
	for ; l.pos < len(l.Data); l.pos++ {
		c := l.Data[l.pos]
		if c != ' ' && c != '\t' && c != '\n' && c != '\r' {
			break
		}
	}
}

// A word starts with a letter or '_' and then contains letters, digits and '_'. Keywords are matched case
// insensitively, anything else is a WORD.
func (l *Lexer) readWord() {
	startPos := l.pos
	for ; l.pos < len(l.Data); l.pos++ {
		c := l.Data[l.pos]
		if c == '_' || (c >= '0' && c <= '9') || (c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z') {
			continue
		}
		break
	}
	keyWord, ok := keyWords[string(bytes.ToUpper(l.Data[startPos:l.pos]))]
	if !ok {
		l.appendToken(WORD, startPos)
		return
	}
	l.appendToken(keyWord, startPos)
}

// readString reads until the closing quote. Two quotes in a row do not end the string.
func (l *Lexer) readString() error {
	startPos := l.pos
	l.pos++
	for l.pos < len(l.Data) {
		if l.Data[l.pos] != '\'' {
			l.pos++
			continue
		}
		l.pos++
		if l.nextIs('\'') {
			continue
		}
		l.appendToken(STRINGVALUE, startPos)
		return nil
	}
	l.pos = startPos
	return StringUnExpecedEndErr
}

func (l *Lexer) readNumberValue() error {
	isFloat := false
	startPos := l.pos
	for ; l.pos < len(l.Data); l.pos++ {
		c := l.Data[l.pos]
		if c == '.' {
			if isFloat {
				return NumberFormatErr
			}
			isFloat = true
		} else if c >= '0' && c <= '9' {
			continue
		} else {
			break
		}
	}
	if l.pos < len(l.Data) {
		c := l.Data[l.pos]
		if c == '_' || (c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z') {
			return NumberFormatErr
		}
	}
	if isFloat {
		l.appendToken(FLOATVALUE, startPos)
	} else {
		l.appendToken(INTVALUE, startPos)
	}
	return nil
}

// Read a `quoted` name. The token covers the name without the backquotes.
func (l *Lexer) readIdent() error {
	l.pos++
	startPos := l.pos
	for ; l.pos < len(l.Data); l.pos++ {
		if l.Data[l.pos] == '`' {
			break
		}
	}
	if l.pos >= len(l.Data) || l.pos == startPos {
		return IdentFormatErr
	}
	l.appendToken(IDENT, startPos)
	l.pos++
	return nil
}

func (l *Lexer) String() string {
	var buf bytes.Buffer
	i := 0
	for ; i < len(l.Tokens)-1; i++ {
		buf.WriteString(fmt.Sprintf("{%s, StartPos: %d, EndPos: %d},", revertKeyWords[l.Tokens[i].Tp], l.Tokens[i].StartPos, l.Tokens[i].EndPos))
	}
	if i < len(l.Tokens) {
		buf.WriteString(fmt.Sprintf("{%s, StartPos: %d, EndPos: %d}", revertKeyWords[l.Tokens[i].Tp], l.Tokens[i].StartPos, l.Tokens[i].EndPos))
	}
	return buf.String()
}
