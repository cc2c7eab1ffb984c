package storage

import (
	"github.com/pkg/errors"
)

// ToBool is the truthiness of a value. Numbers are true when nonzero, strings
// and dates when their text is nonempty. Byte arrays have no truth value.
func ToBool(v Value) (bool, error) {
	switch val := v.(type) {
	case Bool:
		return bool(val), nil
	case Int:
		return val != 0, nil
	case Long:
		return val != 0, nil
	case Float:
		return val != 0, nil
	case String:
		return val.val != "", nil
	case Date:
		return val.String() != "", nil
	case ByteArray:
		return false, errors.Wrap(ErrUnsupportedConversion, "cannot interpret byte array as true/false")
	}
	return false, errors.Wrapf(ErrUnsupportedConversion, "cannot interpret %v as true/false", v)
}

func ToInt(v Value) (int32, error) {
	switch val := v.(type) {
	case Bool:
		if val {
			return 1, nil
		}
		return 0, nil
	case Int:
		return int32(val), nil
	}
	return 0, castErr(v, TypeInt)
}

// ToLong also accepts a DATE, yielding its epoch milliseconds.
func ToLong(v Value) (int64, error) {
	switch val := v.(type) {
	case Bool:
		if val {
			return 1, nil
		}
		return 0, nil
	case Int:
		return int64(val), nil
	case Long:
		return int64(val), nil
	case Date:
		return int64(val), nil
	}
	return 0, castErr(v, TypeLong)
}

// ToFloat also accepts a DATE, yielding its epoch milliseconds.
func ToFloat(v Value) (float32, error) {
	switch val := v.(type) {
	case Bool:
		if val {
			return 1, nil
		}
		return 0, nil
	case Int:
		return float32(val), nil
	case Long:
		return float32(val), nil
	case Float:
		return float32(val), nil
	case Date:
		return float32(val), nil
	}
	return 0, castErr(v, TypeFloat)
}

func castErr(v Value, to TypeID) error {
	if v == nil {
		return errors.Wrapf(ErrTypeMismatch, "cannot cast nil to %s", to)
	}
	return errors.Wrapf(ErrTypeMismatch, "cannot cast type `%s` to %s", v.Type().ID, to)
}

// upcastPriority lists the numeric result types from the least to the most
// permissive. Mixing types yields the latest one present.
var upcastPriority = []TypeID{TypeInt, TypeLong, TypeFloat}

// PromoteNumeric returns the result type of a numeric operation over operands
// of the given types. BOOL counts as INT; STRING, BYTE_ARRAY and DATE are
// rejected.
func PromoteNumeric(types ...Type) (Type, error) {
	index := 0
	for _, tp := range types {
		id := tp.ID
		switch id {
		case TypeBool:
			id = TypeInt
		case TypeString, TypeByteArray, TypeDate:
			return Type{}, errors.Wrapf(ErrTypeMismatch, "cannot convert %s to numeric type", tp.ID)
		}
		for i, candidate := range upcastPriority {
			if candidate == id && i > index {
				index = i
			}
		}
	}
	switch upcastPriority[index] {
	case TypeLong:
		return LongType(), nil
	case TypeFloat:
		return FloatType(), nil
	default:
		return IntType(), nil
	}
}
