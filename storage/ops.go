package storage

import (
	"math"
	"strings"

	"github.com/pkg/errors"
)

const ErrUnknownOperator = StorageError("unknown operator")

// Arith applies one of + - * / % to two operands after coercing both to the
// numeric result type tp.
func Arith(op byte, tp Type, val1, val2 Value) (Value, error) {
	switch tp.ID {
	case TypeInt:
		a, err := ToInt(val1)
		if err != nil {
			return nil, err
		}
		b, err := ToInt(val2)
		if err != nil {
			return nil, err
		}
		ret, err := integerArith(op, a, b)
		return Int(ret), err
	case TypeLong:
		a, err := ToLong(val1)
		if err != nil {
			return nil, err
		}
		b, err := ToLong(val2)
		if err != nil {
			return nil, err
		}
		ret, err := integerArith(op, a, b)
		return Long(ret), err
	case TypeFloat:
		a, err := ToFloat(val1)
		if err != nil {
			return nil, err
		}
		b, err := ToFloat(val2)
		if err != nil {
			return nil, err
		}
		return floatArith(op, a, b)
	}
	return nil, errors.Wrapf(ErrTypeMismatch, "invalid result type for numeric expression: %s", tp)
}

func Add(tp Type, val1, val2 Value) (Value, error)    { return Arith('+', tp, val1, val2) }
func Minus(tp Type, val1, val2 Value) (Value, error)  { return Arith('-', tp, val1, val2) }
func Mul(tp Type, val1, val2 Value) (Value, error)    { return Arith('*', tp, val1, val2) }
func Divide(tp Type, val1, val2 Value) (Value, error) { return Arith('/', tp, val1, val2) }
func Mod(tp Type, val1, val2 Value) (Value, error)    { return Arith('%', tp, val1, val2) }

type integer interface {
	~int32 | ~int64
}

// Integer division and modulo truncate toward zero; overflow wraps.
func integerArith[T integer](op byte, a, b T) (T, error) {
	switch op {
	case '+':
		return a + b, nil
	case '-':
		return a - b, nil
	case '*':
		return a * b, nil
	case '/':
		if b == 0 {
			return 0, errors.Wrapf(ErrDivisionByZero, "%d / 0", a)
		}
		return a / b, nil
	case '%':
		if b == 0 {
			return 0, errors.Wrapf(ErrDivisionByZero, "%d %% 0", a)
		}
		return a % b, nil
	}
	return 0, errors.Wrapf(ErrUnknownOperator, "'%c'", op)
}

// Float operations follow IEEE semantics, dividing by zero gives an infinity.
func floatArith(op byte, a, b float32) (Value, error) {
	switch op {
	case '+':
		return Float(a + b), nil
	case '-':
		return Float(a - b), nil
	case '*':
		return Float(a * b), nil
	case '/':
		return Float(a / b), nil
	case '%':
		return Float(math.Mod(float64(a), float64(b))), nil
	}
	return nil, errors.Wrapf(ErrUnknownOperator, "'%c'", op)
}

func Negative(tp Type, val Value) (Value, error) {
	switch tp.ID {
	case TypeInt:
		v, err := ToInt(val)
		if err != nil {
			return nil, err
		}
		return Int(-v), nil
	case TypeLong:
		v, err := ToLong(val)
		if err != nil {
			return nil, err
		}
		return Long(-v), nil
	case TypeFloat:
		v, err := ToFloat(val)
		if err != nil {
			return nil, err
		}
		return Float(-v), nil
	}
	return nil, errors.Wrapf(ErrTypeMismatch, "cannot negate %s", tp)
}

func toFloat64(v Value) float64 {
	switch val := v.(type) {
	case Bool:
		if val {
			return 1
		}
		return 0
	case Int:
		return float64(val)
	case Long:
		return float64(val)
	case Float:
		return float64(val)
	}
	return 0
}

func compare(val1, val2 Value) (int, error) {
	if val1 == nil || val2 == nil {
		return 0, errors.Wrap(ErrTypeMismatch, "cannot compare a missing value")
	}
	tp1, tp2 := val1.Type(), val2.Type()
	if tp1.IsNumeric() && tp2.IsNumeric() {
		if tp1.ID == TypeFloat || tp2.ID == TypeFloat {
			return order(toFloat64(val1), toFloat64(val2)), nil
		}
		l1, _ := ToLong(val1)
		l2, _ := ToLong(val2)
		return order(l1, l2), nil
	}
	switch v1 := val1.(type) {
	case String:
		if v2, ok := val2.(String); ok {
			return strings.Compare(v1.val, v2.val), nil
		}
	case Date:
		if v2, ok := val2.(Date); ok {
			return order(v1, v2), nil
		}
	}
	return 0, errors.Wrapf(ErrTypeMismatch, "invalid comparison between %s and %s", tp1, tp2)
}

func order[T ~int64 | ~float64](a, b T) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// Max returns the greater of two values, val1 on a tie.
func Max(val1, val2 Value) (Value, error) {
	c, err := compare(val1, val2)
	if err != nil {
		return nil, err
	}
	if c >= 0 {
		return val1, nil
	}
	return val2, nil
}

// Min returns the lesser of two values, val1 on a tie.
func Min(val1, val2 Value) (Value, error) {
	c, err := compare(val1, val2)
	if err != nil {
		return nil, err
	}
	if c <= 0 {
		return val1, nil
	}
	return val2, nil
}
