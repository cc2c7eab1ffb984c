package storage

import (
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"math"
	"testing"
)

func TestAdd(t *testing.T) {
	val, err := Add(IntType(), Int(10), Int(10))
	assert.Nil(t, err)
	assert.Equal(t, Int(20), val)
	val, err = Add(FloatType(), Int(10), Float(5.5))
	assert.Nil(t, err)
	assert.Equal(t, Float(15.5), val)
	val, err = Add(LongType(), Long(1<<40), Int(1))
	assert.Nil(t, err)
	assert.Equal(t, Long(1<<40+1), val)
	val, err = Add(IntType(), Bool(true), Int(1))
	assert.Nil(t, err)
	assert.Equal(t, Int(2), val)
}

func TestMinus(t *testing.T) {
	val, err := Minus(IntType(), Int(10), Int(10))
	assert.Nil(t, err)
	assert.Equal(t, Int(0), val)
	val, err = Minus(FloatType(), Float(5.5), Int(10))
	assert.Nil(t, err)
	assert.Equal(t, Float(-4.5), val)
}

func TestMul(t *testing.T) {
	val, err := Mul(IntType(), Int(10), Int(10))
	assert.Nil(t, err)
	assert.Equal(t, Int(100), val)
	val, err = Mul(FloatType(), Int(10), Float(0.25))
	assert.Nil(t, err)
	assert.Equal(t, Float(2.5), val)
}

func TestDivide(t *testing.T) {
	val, err := Divide(IntType(), Int(7), Int(2))
	assert.Nil(t, err)
	assert.Equal(t, Int(3), val)
	val, err = Divide(IntType(), Int(-7), Int(2))
	assert.Nil(t, err)
	assert.Equal(t, Int(-3), val)
	val, err = Divide(FloatType(), Int(7), Float(2))
	assert.Nil(t, err)
	assert.Equal(t, Float(3.5), val)
	_, err = Divide(IntType(), Int(5), Int(0))
	assert.True(t, errors.Is(err, ErrDivisionByZero))
	_, err = Divide(LongType(), Long(5), Long(0))
	assert.True(t, errors.Is(err, ErrDivisionByZero))
	val, err = Divide(FloatType(), Float(1), Float(0))
	assert.Nil(t, err)
	assert.True(t, math.IsInf(float64(val.(Float)), 1))
}

func TestMod(t *testing.T) {
	val, err := Mod(IntType(), Int(7), Int(3))
	assert.Nil(t, err)
	assert.Equal(t, Int(1), val)
	val, err = Mod(IntType(), Int(-7), Int(3))
	assert.Nil(t, err)
	assert.Equal(t, Int(-1), val)
	_, err = Mod(IntType(), Int(2), Int(0))
	assert.True(t, errors.Is(err, ErrDivisionByZero))
	val, err = Mod(FloatType(), Float(5.5), Int(2))
	assert.Nil(t, err)
	assert.Equal(t, Float(1.5), val)
}

func TestArithTypeErrors(t *testing.T) {
	_, err := Add(IntType(), NewString("1", 1), Int(1))
	assert.True(t, errors.Is(err, ErrTypeMismatch))
	_, err = Add(StringType(4), Int(1), Int(1))
	assert.True(t, errors.Is(err, ErrTypeMismatch))
	_, err = Arith('^', IntType(), Int(1), Int(1))
	assert.True(t, errors.Is(err, ErrUnknownOperator))
}

func TestNegative(t *testing.T) {
	val, err := Negative(IntType(), Int(3))
	assert.Nil(t, err)
	assert.Equal(t, Int(-3), val)
	val, err = Negative(LongType(), Long(1<<40))
	assert.Nil(t, err)
	assert.Equal(t, Long(-(1 << 40)), val)
	val, err = Negative(FloatType(), Float(2.5))
	assert.Nil(t, err)
	assert.Equal(t, Float(-2.5), val)
	_, err = Negative(DateType(), Date(0))
	assert.True(t, errors.Is(err, ErrTypeMismatch))
}

func TestMaxMin(t *testing.T) {
	val, err := Max(Int(10), Float(10.5))
	assert.Nil(t, err)
	assert.Equal(t, Float(10.5), val)
	val, err = Min(Int(10), Float(10.5))
	assert.Nil(t, err)
	assert.Equal(t, Int(10), val)
	val, err = Max(NewString("abc", 5), NewString("abd", 5))
	assert.Nil(t, err)
	assert.Equal(t, "abd", val.String())
	_, err = Max(NewString("1", 1), Int(1))
	assert.True(t, errors.Is(err, ErrTypeMismatch))
}

func TestCompare(t *testing.T) {
	c, err := Int(1).CompareTo(Long(2))
	assert.Nil(t, err)
	assert.Equal(t, -1, c)
	c, err = Bool(true).CompareTo(Int(1))
	assert.Nil(t, err)
	assert.Equal(t, 0, c)
	c, err = Float(2.5).CompareTo(Int(2))
	assert.Nil(t, err)
	assert.Equal(t, 1, c)
	d1, _ := ParseDate("2020-01-01")
	d2, _ := ParseDate("2021-01-01")
	c, err = d1.CompareTo(d2)
	assert.Nil(t, err)
	assert.Equal(t, -1, c)
	_, err = d1.CompareTo(Long(0))
	assert.True(t, errors.Is(err, ErrTypeMismatch))
	_, err = NewString("a", 1).CompareTo(Int(1))
	assert.True(t, errors.Is(err, ErrTypeMismatch))
	b := NewByteArray([]byte{1}, 1)
	_, err = b.CompareTo(b)
	assert.True(t, errors.Is(err, ErrTypeMismatch))
}
