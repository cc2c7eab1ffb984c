package plan

import (
	"math/rand"
	"testing"

	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xiaobogaga/exprdb/storage"
)

func cnfStrings(t *testing.T, text string) []string {
	expr, err := ParseExpr(text)
	require.NoError(t, err, text)
	return lo.Map(ToCNF(expr), func(clause Expr, _ int) string { return clause.String() })
}

func TestToCNF(t *testing.T) {
	cases := map[string][]string{
		"a AND b OR c AND d OR e AND f": {
			"a OR c OR e", "a OR c OR f", "a OR d OR e", "a OR d OR f",
			"b OR c OR e", "b OR c OR f", "b OR d OR e", "b OR d OR f",
		},
		"NOT (NOT a)":             {"a"},
		"NOT (NOT (NOT a))":       {"(NOT a)"},
		"NOT NOT a":               {"a"},
		"a":                       {"a"},
		"(a)":                     {"(a)"},
		"a AND b AND c":           {"a", "b", "c"},
		"a OR b":                  {"a OR b"},
		"(a OR b) OR c":           {"a OR b OR c"},
		"a OR (b AND c)":          {"a OR b", "a OR c"},
		"(a AND b) AND (c OR d)":  {"a", "b", "c OR d"},
		"NOT (a OR b)":            {"NOT a", "NOT b"},
		"NOT (a AND b)":           {"NOT a OR NOT b"},
		"NOT (a AND (b OR c))":    {"NOT a OR NOT b", "NOT a OR NOT c"},
		"x > 1 AND (y = 2 OR z)":  {"x > 1", "y = 2 OR z"},
		"NOT (x > 1 OR upper(n))": {"NOT x > 1", "NOT UPPER(n)"},
		"a AND b OR c":            {"a OR c", "b OR c"},
	}
	for text, want := range cases {
		assert.Equal(t, want, cnfStrings(t, text), text)
	}
}

func TestToCNFLeavesInputUntouched(t *testing.T) {
	text := "NOT (a AND (b OR NOT c)) OR d"
	expr, err := ParseExpr(text)
	require.NoError(t, err)
	before := expr.String()
	clauses := ToCNF(expr)
	assert.NotEmpty(t, clauses)
	assert.Equal(t, before, expr.String())
}

var cnfAtoms = []string{"a", "b", "c", "d", "e"}

func randomBoolExpr(rnd *rand.Rand, depth int) Expr {
	if depth == 0 || rnd.Intn(4) == 0 {
		return NewColumn(cnfAtoms[rnd.Intn(len(cnfAtoms))])
	}
	switch rnd.Intn(4) {
	case 0:
		inner := randomBoolExpr(rnd, depth-1)
		if rnd.Intn(2) == 0 {
			inner = NewParen(inner)
		}
		return NewNot(inner)
	case 1:
		return NewParen(randomBoolExpr(rnd, depth-1))
	}
	width := 2
	if depth < 3 {
		width += rnd.Intn(2)
	}
	children := make([]Expr, width)
	for i := range children {
		children[i] = randomBoolExpr(rnd, depth-1)
	}
	if rnd.Intn(2) == 0 {
		return NewAnd(children...)
	}
	return NewOr(children...)
}

// isClause holds for an atom, a negated atom or an Or of those.
func isClause(expr Expr) bool {
	switch node := unwrapParen(expr).(type) {
	case *AndExpr:
		return false
	case *OrExpr:
		for _, child := range node.Children {
			switch unwrapParen(child).(type) {
			case *AndExpr, *OrExpr:
				return false
			}
		}
	case *NotExpr:
		switch unwrapParen(node.Inner).(type) {
		case *AndExpr, *OrExpr, *NotExpr:
			return false
		}
	}
	return true
}

func TestToCNFEquivalence(t *testing.T) {
	fields := lo.Map(cnfAtoms, func(name string, _ int) storage.Field { return storage.Field{Name: name, TP: storage.BoolType()} })
	schema, err := storage.NewSchema(fields...)
	require.NoError(t, err)
	rnd := rand.New(rand.NewSource(1))
	for n := 0; n < 300; n++ {
		expr := randomBoolExpr(rnd, 4)
		clauses := ToCNF(expr)
		require.NoError(t, expr.SetSchema(schema))
		for _, clause := range clauses {
			assert.True(t, isClause(clause), "%s in cnf of %s", clause, expr)
			require.NoError(t, clause.SetSchema(schema))
		}
		for mask := 0; mask < 1<<len(cnfAtoms); mask++ {
			values := make([]storage.Value, len(cnfAtoms))
			for i := range cnfAtoms {
				values[i] = storage.Bool(mask&(1<<i) != 0)
			}
			record := storage.NewRecord(values...)
			want, err := expr.Evaluate(record)
			require.NoError(t, err)
			got := true
			for _, clause := range clauses {
				v, err := clause.Evaluate(record)
				require.NoError(t, err)
				got = got && bool(v.(storage.Bool))
			}
			assert.Equal(t, bool(want.(storage.Bool)), got, "%s under %05b", expr, mask)
		}
	}
}
