package storage

import (
	"encoding/binary"
	"encoding/hex"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
)

// Value is a single typed scalar. The set of implementations is closed: Bool,
// Int, Long, Float, String, Date and ByteArray. A value never changes its type.
type Value interface {
	Type() Type
	// CompareTo orders two values. Numeric values (including BOOL as 0/1) are
	// comparable with each other; any other pair must share a type.
	CompareTo(other Value) (int, error)
	String() string
	// Bytes returns the fixed-width encoding of the value, Type().Size bytes long.
	Bytes() []byte
	isValue()
}

type Bool bool

type Int int32

type Long int64

type Float float32

// Date is an instant in epoch milliseconds.
type Date int64

// String holds text with a declared maximum byte length.
type String struct {
	val  string
	size int
}

type ByteArray struct {
	val  []byte
	size int
}

const dateLayout = "2006-01-02"

// NewString truncates s to size bytes.
func NewString(s string, size int) String {
	if size < 0 {
		size = 0
	}
	if len(s) > size {
		s = s[:size]
	}
	return String{val: s, size: size}
}

func NewByteArray(b []byte, size int) ByteArray {
	if size < 0 {
		size = 0
	}
	if len(b) > size {
		b = b[:size]
	}
	val := make([]byte, len(b))
	copy(val, b)
	return ByteArray{val: val, size: size}
}

// ParseDate reads a yyyy-MM-dd date as midnight UTC.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(dateLayout, strings.TrimSpace(s))
	if err != nil {
		return 0, errors.Wrapf(ErrWrongValueFormat, "could not parse date '%s'", s)
	}
	return Date(t.UnixMilli()), nil
}

func (b Bool) Type() Type      { return BoolType() }
func (i Int) Type() Type       { return IntType() }
func (l Long) Type() Type      { return LongType() }
func (f Float) Type() Type     { return FloatType() }
func (d Date) Type() Type      { return DateType() }
func (s String) Type() Type    { return StringType(s.size) }
func (b ByteArray) Type() Type { return ByteArrayType(b.size) }

func (b Bool) CompareTo(other Value) (int, error)      { return compare(b, other) }
func (i Int) CompareTo(other Value) (int, error)       { return compare(i, other) }
func (l Long) CompareTo(other Value) (int, error)      { return compare(l, other) }
func (f Float) CompareTo(other Value) (int, error)     { return compare(f, other) }
func (d Date) CompareTo(other Value) (int, error)      { return compare(d, other) }
func (s String) CompareTo(other Value) (int, error)    { return compare(s, other) }
func (b ByteArray) CompareTo(other Value) (int, error) { return compare(b, other) }

func (b Bool) String() string { return strconv.FormatBool(bool(b)) }
func (i Int) String() string  { return strconv.FormatInt(int64(i), 10) }
func (l Long) String() string { return strconv.FormatInt(int64(l), 10) }

// String always carries a decimal point for finite values, so the text reads
// back as a FLOAT literal.
func (f Float) String() string {
	s := strconv.FormatFloat(float64(f), 'f', -1, 32)
	if math.IsInf(float64(f), 0) || math.IsNaN(float64(f)) {
		return s
	}
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

func (d Date) String() string {
	return d.Time().Format(dateLayout)
}

func (s String) String() string    { return s.val }
func (b ByteArray) String() string { return "0x" + hex.EncodeToString(b.val) }

func (d Date) Time() time.Time { return time.UnixMilli(int64(d)).UTC() }

func (s String) Val() string    { return s.val }
func (b ByteArray) Val() []byte { return b.val }

func (b Bool) Bytes() []byte {
	if b {
		return []byte{1}
	}
	return []byte{0}
}

func (i Int) Bytes() []byte {
	buf := make([]byte, 4)
	binary.BigEndian.PutUint32(buf, uint32(i))
	return buf
}

func (l Long) Bytes() []byte {
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, uint64(l))
	return buf
}

func (f Float) Bytes() []byte {
	buf := make([]byte, 4)
	binary.BigEndian.PutUint32(buf, math.Float32bits(float32(f)))
	return buf
}

func (d Date) Bytes() []byte {
	return Long(d).Bytes()
}

// Bytes pads with zero bytes up to the declared length.
func (s String) Bytes() []byte {
	buf := make([]byte, s.size)
	copy(buf, s.val)
	return buf
}

func (b ByteArray) Bytes() []byte {
	buf := make([]byte, b.size)
	copy(buf, b.val)
	return buf
}

func (Bool) isValue()      {}
func (Int) isValue()       {}
func (Long) isValue()      {}
func (Float) isValue()     {}
func (Date) isValue()      {}
func (String) isValue()    {}
func (ByteArray) isValue() {}

// FromBytes decodes the fixed-width encoding of a value of type tp.
func FromBytes(buf []byte, tp Type) (Value, error) {
	if len(buf) < tp.Size {
		return nil, errors.Wrapf(ErrWrongValueFormat, "need %d bytes for %s, got %d", tp.Size, tp, len(buf))
	}
	switch tp.ID {
	case TypeBool:
		return Bool(buf[0] != 0), nil
	case TypeInt:
		return Int(int32(binary.BigEndian.Uint32(buf))), nil
	case TypeLong:
		return Long(int64(binary.BigEndian.Uint64(buf))), nil
	case TypeFloat:
		return Float(math.Float32frombits(binary.BigEndian.Uint32(buf))), nil
	case TypeDate:
		return Date(int64(binary.BigEndian.Uint64(buf))), nil
	case TypeString:
		return NewString(strings.TrimRight(string(buf[:tp.Size]), "\x00"), tp.Size), nil
	case TypeByteArray:
		return NewByteArray(buf[:tp.Size], tp.Size), nil
	}
	return nil, errors.Wrapf(ErrUnknownType, "%s", tp)
}

// ParseValue reads the text form of a value of type tp.
func ParseValue(tp Type, s string) (Value, error) {
	switch tp.ID {
	case TypeBool:
		switch strings.ToLower(strings.TrimSpace(s)) {
		case "true":
			return Bool(true), nil
		case "false":
			return Bool(false), nil
		}
	case TypeInt:
		v, err := strconv.ParseInt(strings.TrimSpace(s), 10, 32)
		if err == nil {
			return Int(v), nil
		}
	case TypeLong:
		v, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
		if err == nil {
			return Long(v), nil
		}
	case TypeFloat:
		v, err := strconv.ParseFloat(strings.TrimSpace(s), 32)
		if err == nil {
			return Float(v), nil
		}
	case TypeDate:
		return ParseDate(s)
	case TypeString:
		return NewString(s, tp.Size), nil
	case TypeByteArray:
		return NewByteArray([]byte(s), tp.Size), nil
	default:
		return nil, errors.Wrapf(ErrUnknownType, "%s", tp)
	}
	return nil, errors.Wrapf(ErrWrongValueFormat, "'%s' is not a %s", s, tp)
}
