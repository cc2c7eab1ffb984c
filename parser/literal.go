package parser

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/xiaobogaga/exprdb/storage"
)

// ParseLiteral reads the text of a literal:
// 'text' a STRING sized to its content, doubled quotes inside are kept as written
// true, false (any case) a BOOL
// date 'yyyy-mm-dd' a DATE
// digits with a '.' a FLOAT, digits without one an INT, or a LONG when too large for an INT.
func ParseLiteral(literal string) (storage.Value, error) {
	s := strings.TrimSpace(literal)
	if len(s) >= 2 && s[0] == '\'' && s[len(s)-1] == '\'' {
		inner := s[1 : len(s)-1]
		return storage.NewString(inner, len(inner)), nil
	}
	lower := strings.ToLower(s)
	switch lower {
	case "true":
		return storage.Bool(true), nil
	case "false":
		return storage.Bool(false), nil
	}
	if strings.HasPrefix(lower, "date") {
		rest := strings.TrimSpace(s[len("date"):])
		if len(rest) >= 2 && rest[0] == '\'' && rest[len(rest)-1] == '\'' {
			d, err := storage.ParseDate(rest[1 : len(rest)-1])
			if err != nil {
				return nil, errors.Wrapf(WrongLiteralFormatErr, "%s: %s", literal, err)
			}
			return d, nil
		}
		return nil, errors.Wrapf(WrongLiteralFormatErr, "%s", literal)
	}
	if strings.Contains(s, ".") {
		f, err := strconv.ParseFloat(s, 32)
		if err != nil {
			return nil, errors.Wrapf(WrongLiteralFormatErr, "%s", literal)
		}
		return storage.Float(f), nil
	}
	i, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return nil, errors.Wrapf(WrongLiteralFormatErr, "%s", literal)
	}
	if int64(int32(i)) != i {
		return storage.Long(i), nil
	}
	return storage.Int(i), nil
}
