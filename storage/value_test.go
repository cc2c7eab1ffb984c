package storage

import (
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"testing"
)

func TestValueString(t *testing.T) {
	assert.Equal(t, "true", Bool(true).String())
	assert.Equal(t, "-12", Int(-12).String())
	assert.Equal(t, "1099511627776", Long(1<<40).String())
	assert.Equal(t, "2.0", Float(2).String())
	assert.Equal(t, "2.5", Float(2.5).String())
	assert.Equal(t, "hello", NewString("hello", 10).String())
	assert.Equal(t, "0x0aff", NewByteArray([]byte{10, 255}, 2).String())
	d, err := ParseDate("2021-03-04")
	assert.Nil(t, err)
	assert.Equal(t, "2021-03-04", d.String())
}

func TestNewStringTruncates(t *testing.T) {
	s := NewString("hello world", 5)
	assert.Equal(t, "hello", s.Val())
	assert.Equal(t, StringType(5), s.Type())
	assert.True(t, s.Type().Equal(StringType(5)))
	assert.False(t, s.Type().Equal(StringType(6)))
}

func TestValueBytes(t *testing.T) {
	d, _ := ParseDate("1999-12-31")
	values := []Value{
		Bool(true), Bool(false), Int(-7), Long(1 << 50), Float(-3.25),
		d, NewString("abc", 8), NewByteArray([]byte{1, 2, 3}, 3),
	}
	for _, v := range values {
		buf := v.Bytes()
		assert.Equal(t, v.Type().Size, len(buf), v.Type().String())
		back, err := FromBytes(buf, v.Type())
		assert.Nil(t, err)
		assert.Equal(t, v, back)
	}
	assert.Equal(t, []byte{0, 0, 0, 1}, Int(1).Bytes())
	assert.Equal(t, []byte{'a', 'b', 0, 0}, NewString("ab", 4).Bytes())
	_, err := FromBytes([]byte{1}, IntType())
	assert.True(t, errors.Is(err, ErrWrongValueFormat))
}

func TestToBool(t *testing.T) {
	for _, v := range []Value{Bool(true), Int(3), Long(-1), Float(0.5), NewString("x", 1), Date(0)} {
		b, err := ToBool(v)
		assert.Nil(t, err)
		assert.True(t, b, v.String())
	}
	for _, v := range []Value{Bool(false), Int(0), Long(0), Float(0), NewString("", 1)} {
		b, err := ToBool(v)
		assert.Nil(t, err)
		assert.False(t, b, v.String())
	}
	_, err := ToBool(NewByteArray([]byte{1}, 1))
	assert.True(t, errors.Is(err, ErrUnsupportedConversion))
}

func TestNumericCoercion(t *testing.T) {
	i, err := ToInt(Bool(true))
	assert.Nil(t, err)
	assert.Equal(t, int32(1), i)
	_, err = ToInt(Long(1))
	assert.True(t, errors.Is(err, ErrTypeMismatch))
	l, err := ToLong(Int(5))
	assert.Nil(t, err)
	assert.Equal(t, int64(5), l)
	l, err = ToLong(Date(1234))
	assert.Nil(t, err)
	assert.Equal(t, int64(1234), l)
	f, err := ToFloat(Long(8))
	assert.Nil(t, err)
	assert.Equal(t, float32(8), f)
	_, err = ToFloat(NewString("1", 1))
	assert.True(t, errors.Is(err, ErrTypeMismatch))
	_, err = ToLong(NewByteArray(nil, 0))
	assert.True(t, errors.Is(err, ErrTypeMismatch))
}

func TestPromoteNumeric(t *testing.T) {
	tp, err := PromoteNumeric(IntType(), LongType())
	assert.Nil(t, err)
	assert.Equal(t, LongType(), tp)
	tp, err = PromoteNumeric(IntType(), FloatType())
	assert.Nil(t, err)
	assert.Equal(t, FloatType(), tp)
	tp, err = PromoteNumeric(BoolType(), IntType())
	assert.Nil(t, err)
	assert.Equal(t, IntType(), tp)
	tp, err = PromoteNumeric(BoolType())
	assert.Nil(t, err)
	assert.Equal(t, IntType(), tp)
	tp, err = PromoteNumeric(FloatType(), LongType(), IntType())
	assert.Nil(t, err)
	assert.Equal(t, FloatType(), tp)
	for _, bad := range []Type{StringType(3), ByteArrayType(2), DateType()} {
		_, err = PromoteNumeric(IntType(), bad)
		assert.True(t, errors.Is(err, ErrTypeMismatch), bad.String())
	}
}

func TestParseType(t *testing.T) {
	cases := map[string]Type{
		"int":         IntType(),
		"INTEGER":     IntType(),
		"bool":        BoolType(),
		"long":        LongType(),
		"float":       FloatType(),
		"date":        DateType(),
		"string(20)":  StringType(20),
		"varchar(3)":  StringType(3),
		"bytes( 4 )":  ByteArrayType(4),
		" bigint ":    LongType(),
		"byte_array":  ByteArrayType(0),
		"char(0)":     StringType(0),
		"Boolean":     BoolType(),
		"STRING(128)": StringType(128),
	}
	for text, want := range cases {
		tp, err := ParseType(text)
		assert.Nil(t, err, text)
		assert.Equal(t, want, tp, text)
	}
	for _, text := range []string{"", "double", "string(", "string(x)", "string(-1)"} {
		_, err := ParseType(text)
		assert.True(t, errors.Is(err, ErrUnknownType), text)
	}
}

func TestParseValue(t *testing.T) {
	v, err := ParseValue(IntType(), " 12 ")
	assert.Nil(t, err)
	assert.Equal(t, Int(12), v)
	v, err = ParseValue(FloatType(), "1.5")
	assert.Nil(t, err)
	assert.Equal(t, Float(1.5), v)
	v, err = ParseValue(BoolType(), "TRUE")
	assert.Nil(t, err)
	assert.Equal(t, Bool(true), v)
	v, err = ParseValue(StringType(3), "abcdef")
	assert.Nil(t, err)
	assert.Equal(t, "abc", v.String())
	v, err = ParseValue(DateType(), "2000-02-29")
	assert.Nil(t, err)
	assert.Equal(t, "2000-02-29", v.String())
	_, err = ParseValue(IntType(), "1.5")
	assert.True(t, errors.Is(err, ErrWrongValueFormat))
	_, err = ParseValue(IntType(), "99999999999")
	assert.True(t, errors.Is(err, ErrWrongValueFormat))
	_, err = ParseValue(DateType(), "yesterday")
	assert.True(t, errors.Is(err, ErrWrongValueFormat))
}
