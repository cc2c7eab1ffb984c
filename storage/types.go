package storage

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

type TypeID int

const (
	TypeBool TypeID = iota
	TypeInt         // 32 bit signed integer
	TypeLong        // 64 bit signed integer
	TypeFloat       // 32 bit IEEE float
	TypeString
	TypeDate // epoch milliseconds
	TypeByteArray
)

var typeNames = map[TypeID]string{
	TypeBool:      "BOOL",
	TypeInt:       "INT",
	TypeLong:      "LONG",
	TypeFloat:     "FLOAT",
	TypeString:    "STRING",
	TypeDate:      "DATE",
	TypeByteArray: "BYTE_ARRAY",
}

func (id TypeID) String() string {
	name, ok := typeNames[id]
	if !ok {
		return fmt.Sprintf("TypeID(%d)", int(id))
	}
	return name
}

// Type describes the values a column or an expression produces. Size is the
// encoded byte width; for STRING and BYTE_ARRAY it is the declared length.
type Type struct {
	ID   TypeID
	Size int
}

func BoolType() Type  { return Type{ID: TypeBool, Size: 1} }
func IntType() Type   { return Type{ID: TypeInt, Size: 4} }
func LongType() Type  { return Type{ID: TypeLong, Size: 8} }
func FloatType() Type { return Type{ID: TypeFloat, Size: 4} }
func DateType() Type  { return Type{ID: TypeDate, Size: 8} }

func StringType(n int) Type {
	if n < 0 {
		n = 0
	}
	return Type{ID: TypeString, Size: n}
}

func ByteArrayType(n int) Type {
	if n < 0 {
		n = 0
	}
	return Type{ID: TypeByteArray, Size: n}
}

func (t Type) Equal(other Type) bool {
	return t.ID == other.ID && t.Size == other.Size
}

func (t Type) IsNumeric() bool {
	switch t.ID {
	case TypeBool, TypeInt, TypeLong, TypeFloat:
		return true
	default:
		return false
	}
}

func (t Type) String() string {
	switch t.ID {
	case TypeString, TypeByteArray:
		return fmt.Sprintf("%s(%d)", t.ID, t.Size)
	default:
		return t.ID.String()
	}
}

// ParseType reads a type name such as int, float, string(20) or bytes(8).
func ParseType(s string) (Type, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	size := 0
	if loc := strings.IndexByte(name, '('); loc >= 0 {
		if !strings.HasSuffix(name, ")") {
			return Type{}, errors.Wrapf(ErrUnknownType, "'%s'", s)
		}
		n, err := strconv.Atoi(strings.TrimSpace(name[loc+1 : len(name)-1]))
		if err != nil || n < 0 {
			return Type{}, errors.Wrapf(ErrUnknownType, "wrong length in '%s'", s)
		}
		size = n
		name = strings.TrimSpace(name[:loc])
	}
	switch name {
	case "bool", "boolean":
		return BoolType(), nil
	case "int", "integer":
		return IntType(), nil
	case "long", "bigint":
		return LongType(), nil
	case "float":
		return FloatType(), nil
	case "string", "varchar", "char":
		return StringType(size), nil
	case "date":
		return DateType(), nil
	case "bytes", "byte_array":
		return ByteArrayType(size), nil
	}
	return Type{}, errors.Wrapf(ErrUnknownType, "'%s'", s)
}
