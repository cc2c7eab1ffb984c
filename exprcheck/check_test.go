package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xiaobogaga/exprdb/parser"
	"github.com/xiaobogaga/exprdb/plan"
	"github.com/xiaobogaga/exprdb/storage"
	"go.uber.org/multierr"
)

func TestParseSchema(t *testing.T) {
	schema, err := parseSchema("id:int, name:string(8),born: date")
	require.NoError(t, err)
	assert.Equal(t, []string{"id", "name", "born"}, schema.FieldNames())
	assert.Equal(t, storage.StringType(8), schema.FieldType(1))
	assert.Equal(t, storage.DateType(), schema.FieldType(2))

	schema, err = parseSchema("")
	require.NoError(t, err)
	assert.Equal(t, 0, schema.Len())

	_, err = parseSchema("id")
	assert.Error(t, err)
	_, err = parseSchema("id:decimal")
	assert.True(t, errors.Is(err, storage.ErrUnknownType))
	_, err = parseSchema("id:int,id:long")
	assert.True(t, errors.Is(err, storage.ErrDuplicateField))
}

func TestParseRow(t *testing.T) {
	schema, err := parseSchema("id:int,name:string(8),ok:bool")
	require.NoError(t, err)
	record, err := parseRow(schema, "7, bob ,true")
	require.NoError(t, err)
	assert.Equal(t, storage.NewRecord(storage.Int(7), storage.NewString("bob", 8), storage.Bool(true)), record)
	_, err = parseRow(schema, "7,bob")
	assert.True(t, errors.Is(err, storage.ErrWrongValueFormat))
	_, err = parseRow(schema, "x,bob,true")
	assert.True(t, errors.Is(err, storage.ErrWrongValueFormat))
}

func TestRun(t *testing.T) {
	out := bytes.Buffer{}
	args := Args{
		Schema: "a:bool,b:bool,n:int",
		Row:    "true,false,3",
		CNF:    true,
		Exprs:  []string{"a AND b OR NOT n > 2", "n * 2 + 1"},
	}
	require.NoError(t, run(args, strings.NewReader(""), &out))
	assert.Equal(t, strings.Join([]string{
		"a AND b OR NOT n > 2",
		"  type: BOOL",
		"  cnf: a OR NOT n > 2",
		"  cnf: b OR NOT n > 2",
		"n * 2 + 1",
		"  type: INT",
		"  cnf: n * 2 + 1",
		"a AND b OR NOT n > 2, n * 2 + 1",
		"false, 7",
		"",
	}, "\n"), out.String())
}

func TestRunReadsStdin(t *testing.T) {
	out := bytes.Buffer{}
	args := Args{Schema: "x:float"}
	require.NoError(t, run(args, strings.NewReader("x + 1\n\n  upper('a')\n"), &out))
	assert.Equal(t, "x + 1\n  type: FLOAT\nUPPER('a')\n  type: STRING(1)\n", out.String())
}

func TestRunReportsEveryFailure(t *testing.T) {
	out := bytes.Buffer{}
	args := Args{Schema: "x:int", Row: "4", Exprs: []string{"x +", "y", "x % 3"}}
	err := run(args, strings.NewReader(""), &out)
	require.Error(t, err)
	errs := multierr.Errors(err)
	require.Len(t, errs, 2)
	assert.True(t, errors.Is(errs[0], parser.SyntaxErr))
	assert.True(t, errors.Is(errs[1], plan.ErrSchemaBinding))
	assert.Contains(t, out.String(), "x % 3\n  type: INT\n")
	assert.True(t, strings.HasSuffix(out.String(), "x % 3\n1\n"))
}
