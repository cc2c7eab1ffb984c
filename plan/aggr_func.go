package plan

import (
	"math"
	"math/rand"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/samber/mo"
	"github.com/xiaobogaga/exprdb/storage"
)

// accumulator is the per group state of one aggregate kind.
type accumulator interface {
	// resultType checks the bound operand type.
	resultType(input storage.Type) (storage.Type, error)
	update(v storage.Value) error
	result() (storage.Value, error)
	reset()
}

var aggregateFuncs = map[string]func() accumulator{
	"SUM":      func() accumulator { return &sumAccumulator{} },
	"MIN":      func() accumulator { return &extremeAccumulator{pick: storage.Min} },
	"MAX":      func() accumulator { return &extremeAccumulator{pick: storage.Max} },
	"RANGE":    func() accumulator { return newRangeAccumulator() },
	"FIRST":    func() accumulator { return &firstAccumulator{} },
	"LAST":     func() accumulator { return &lastAccumulator{} },
	"COUNT":    func() accumulator { return &countAccumulator{} },
	"RANDOM":   func() accumulator { return newRandomAccumulator() },
	"AVG":      func() accumulator { return &avgAccumulator{} },
	"VARIANCE": func() accumulator { return &varianceAccumulator{} },
	"VAR":      func() accumulator { return &varianceAccumulator{} },
	"STDDEV":   func() accumulator { return &stddevAccumulator{} },
}

// Aliases rendered under another name.
var aggregateNames = map[string]string{"VAR": "VARIANCE"}

// AggrExpr folds its operand over all records of a group. The accumulated state lives in the node itself, so
// one AggrExpr serves one scan at a time.
type AggrExpr struct {
	exprBase
	Name string
	Arg  Expr
	acc  accumulator
	// star marks COUNT, whose operand is always a constant.
	star bool
}

// NewAggregate makes the aggregate called name over a single operand. COUNT ignores its operands and counts
// records, so it binds against any schema.
func NewAggregate(name string, args ...Expr) (*AggrExpr, error) {
	name = strings.ToUpper(strings.TrimSpace(name))
	newAcc, ok := aggregateFuncs[name]
	if !ok {
		return nil, errors.Wrapf(ErrUnknownFunction, "'%s'", name)
	}
	if alias, ok := aggregateNames[name]; ok {
		name = alias
	}
	star := false
	if name == "COUNT" {
		args = []Expr{NewLiteral(storage.Int(1))}
		star = true
	}
	if len(args) != 1 {
		return nil, errors.Wrapf(ErrArity, "aggregates take exactly one argument, %s got %d", name, len(args))
	}
	if args[0].HasAgg() {
		return nil, errors.Wrapf(ErrNestedAggregate, "%s(%s)", name, args[0])
	}
	base := newExprBase(args...)
	base.hasAgg = true
	return &AggrExpr{exprBase: base, Name: name, Arg: args[0], acc: newAcc(), star: star}, nil
}

func (aggr *AggrExpr) SetSchema(schema *storage.Schema) error {
	if err := aggr.Arg.SetSchema(schema); err != nil {
		return err
	}
	tp, err := aggr.acc.resultType(aggr.Arg.Type())
	if err != nil {
		return errors.Wrapf(err, "invalid data type for %s aggregate", aggr.Name)
	}
	aggr.tp = tp
	return nil
}

// Evaluate reads the accumulated value, record is not used.
func (aggr *AggrExpr) Evaluate(_ *storage.Record) (storage.Value, error) {
	return aggr.acc.result()
}

func (aggr *AggrExpr) Update(record *storage.Record) error {
	if aggr.star {
		return aggr.acc.update(nil)
	}
	v, err := aggr.Arg.Evaluate(record)
	if err != nil {
		return err
	}
	return aggr.acc.update(v)
}

func (aggr *AggrExpr) Reset() { aggr.acc.reset() }

func (aggr *AggrExpr) String() string {
	if aggr.star {
		return "COUNT(*)"
	}
	return callString(aggr.Name, []Expr{aggr.Arg})
}

func (aggr *AggrExpr) Clone() Expr {
	if aggr.star {
		ret, _ := NewAggregate(aggr.Name)
		return ret
	}
	ret, _ := NewAggregate(aggr.Name, aggr.Arg.Clone())
	return ret
}

func (aggr *AggrExpr) priority() Priority { return PriorityAtomic }

func (aggr *AggrExpr) children() []Expr { return []Expr{aggr.Arg} }

func checkNumericInput(input storage.Type) error {
	switch input.ID {
	case storage.TypeString, storage.TypeByteArray, storage.TypeDate:
		return typeErr("%s", input.ID)
	}
	return nil
}

// sumAccumulator sums BOOL (as 0/1) and INT into an INT, LONG into a LONG and FLOAT into a FLOAT.
type sumAccumulator struct {
	intSum   int32
	longSum  int64
	floatSum float32
	tp       storage.Type
}

func (sum *sumAccumulator) resultType(input storage.Type) (storage.Type, error) {
	if err := checkNumericInput(input); err != nil {
		return storage.Type{}, err
	}
	tp, err := storage.PromoteNumeric(input)
	if err != nil {
		return storage.Type{}, err
	}
	sum.tp = tp
	return tp, nil
}

func (sum *sumAccumulator) update(v storage.Value) error {
	switch val := v.(type) {
	case storage.Bool:
		if val {
			sum.intSum++
		}
	case storage.Int:
		sum.intSum += int32(val)
	case storage.Long:
		sum.longSum += int64(val)
	case storage.Float:
		sum.floatSum += float32(val)
	default:
		return typeErr("cannot sum %s", v.Type())
	}
	return nil
}

func (sum *sumAccumulator) result() (storage.Value, error) {
	switch sum.tp.ID {
	case storage.TypeLong:
		return storage.Long(sum.longSum), nil
	case storage.TypeFloat:
		return storage.Float(sum.floatSum), nil
	default:
		return storage.Int(sum.intSum), nil
	}
}

func (sum *sumAccumulator) asFloat() float32 {
	switch sum.tp.ID {
	case storage.TypeLong:
		return float32(sum.longSum)
	case storage.TypeFloat:
		return sum.floatSum
	default:
		return float32(sum.intSum)
	}
}

func (sum *sumAccumulator) reset() {
	sum.intSum = 0
	sum.longSum = 0
	sum.floatSum = 0
}

func heldOrEmpty(held mo.Option[storage.Value]) (storage.Value, error) {
	v, ok := held.Get()
	if !ok {
		return nil, ErrEmptyAggregate
	}
	return v, nil
}

// extremeAccumulator keeps the least or the greatest value seen, depending on pick.
type extremeAccumulator struct {
	held mo.Option[storage.Value]
	pick func(val1, val2 storage.Value) (storage.Value, error)
}

func (extreme *extremeAccumulator) resultType(input storage.Type) (storage.Type, error) {
	if input.ID == storage.TypeByteArray {
		return storage.Type{}, typeErr("%s values have no order", input.ID)
	}
	return input, nil
}

func (extreme *extremeAccumulator) update(v storage.Value) error {
	if !extreme.held.IsPresent() {
		extreme.held = mo.Some(v)
		return nil
	}
	picked, err := extreme.pick(extreme.held.MustGet(), v)
	if err != nil {
		return err
	}
	extreme.held = mo.Some(picked)
	return nil
}

func (extreme *extremeAccumulator) result() (storage.Value, error) {
	return heldOrEmpty(extreme.held)
}

func (extreme *extremeAccumulator) reset() {
	extreme.held = mo.None[storage.Value]()
}

// rangeAccumulator is MAX - MIN. Over DATE values the result is a DATE holding the difference in
// milliseconds.
type rangeAccumulator struct {
	min, max extremeAccumulator
	tp       storage.Type
}

func newRangeAccumulator() *rangeAccumulator {
	return &rangeAccumulator{min: extremeAccumulator{pick: storage.Min}, max: extremeAccumulator{pick: storage.Max}}
}

func (r *rangeAccumulator) resultType(input storage.Type) (storage.Type, error) {
	switch input.ID {
	case storage.TypeString, storage.TypeBool, storage.TypeByteArray:
		return storage.Type{}, typeErr("%s", input.ID)
	}
	r.tp = input
	return input, nil
}

func (r *rangeAccumulator) update(v storage.Value) error {
	if err := r.min.update(v); err != nil {
		return err
	}
	return r.max.update(v)
}

func (r *rangeAccumulator) result() (storage.Value, error) {
	min, err := r.min.result()
	if err != nil {
		return nil, err
	}
	max, err := r.max.result()
	if err != nil {
		return nil, err
	}
	if r.tp.ID == storage.TypeDate {
		return storage.Date(max.(storage.Date) - min.(storage.Date)), nil
	}
	return storage.Minus(r.tp, max, min)
}

func (r *rangeAccumulator) reset() {
	r.min.reset()
	r.max.reset()
}

type firstAccumulator struct {
	held mo.Option[storage.Value]
}

func (first *firstAccumulator) resultType(input storage.Type) (storage.Type, error) { return input, nil }

func (first *firstAccumulator) update(v storage.Value) error {
	if !first.held.IsPresent() {
		first.held = mo.Some(v)
	}
	return nil
}

func (first *firstAccumulator) result() (storage.Value, error) { return heldOrEmpty(first.held) }

func (first *firstAccumulator) reset() { first.held = mo.None[storage.Value]() }

type lastAccumulator struct {
	held mo.Option[storage.Value]
}

func (last *lastAccumulator) resultType(input storage.Type) (storage.Type, error) { return input, nil }

func (last *lastAccumulator) update(v storage.Value) error {
	last.held = mo.Some(v)
	return nil
}

func (last *lastAccumulator) result() (storage.Value, error) { return heldOrEmpty(last.held) }

func (last *lastAccumulator) reset() { last.held = mo.None[storage.Value]() }

// countAccumulator counts updates whatever the value is.
type countAccumulator struct {
	count int32
}

func (count *countAccumulator) resultType(_ storage.Type) (storage.Type, error) {
	return storage.IntType(), nil
}

func (count *countAccumulator) update(_ storage.Value) error {
	count.count++
	return nil
}

func (count *countAccumulator) result() (storage.Value, error) { return storage.Int(count.count), nil }

func (count *countAccumulator) reset() { count.count = 0 }

// randomAccumulator samples one value uniformly: the k-th value replaces the held one with probability 1/k.
type randomAccumulator struct {
	held  mo.Option[storage.Value]
	count int
	rnd   *rand.Rand
}

func newRandomAccumulator() *randomAccumulator {
	return &randomAccumulator{rnd: rand.New(rand.NewSource(time.Now().UnixNano()))}
}

func (random *randomAccumulator) resultType(input storage.Type) (storage.Type, error) { return input, nil }

func (random *randomAccumulator) update(v storage.Value) error {
	random.count++
	if random.rnd.Float64()*float64(random.count) < 1 {
		random.held = mo.Some(v)
	}
	return nil
}

func (random *randomAccumulator) result() (storage.Value, error) { return heldOrEmpty(random.held) }

func (random *randomAccumulator) reset() {
	random.held = mo.None[storage.Value]()
	random.count = 0
}

// avgAccumulator is always a FLOAT. An empty group averages to negative infinity.
type avgAccumulator struct {
	sum   sumAccumulator
	count int
}

func (avg *avgAccumulator) resultType(input storage.Type) (storage.Type, error) {
	if _, err := avg.sum.resultType(input); err != nil {
		return storage.Type{}, err
	}
	return storage.FloatType(), nil
}

func (avg *avgAccumulator) update(v storage.Value) error {
	if err := avg.sum.update(v); err != nil {
		return err
	}
	avg.count++
	return nil
}

// result divides INT and LONG sums as integers before widening to FLOAT.
func (avg *avgAccumulator) result() (storage.Value, error) {
	if avg.count == 0 {
		return storage.Float(float32(math.Inf(-1))), nil
	}
	switch avg.sum.tp.ID {
	case storage.TypeInt:
		return storage.Float(float32(avg.sum.intSum / int32(avg.count))), nil
	case storage.TypeLong:
		return storage.Float(float32(avg.sum.longSum / int64(avg.count))), nil
	}
	return storage.Float(avg.sum.asFloat() / float32(avg.count)), nil
}

func (avg *avgAccumulator) reset() {
	avg.sum.reset()
	avg.count = 0
}

// varianceAccumulator tracks the running mean m over k values with Welford's update and reports m/(k-1),
// 0 for k <= 1.
type varianceAccumulator struct {
	m float64
	k int
}

func (variance *varianceAccumulator) resultType(input storage.Type) (storage.Type, error) {
	if err := checkNumericInput(input); err != nil {
		return storage.Type{}, err
	}
	return storage.FloatType(), nil
}

func (variance *varianceAccumulator) update(v storage.Value) error {
	x, err := storage.ToFloat(v)
	if err != nil {
		return err
	}
	variance.k++
	delta := float64(x) - variance.m
	variance.m += delta / float64(variance.k)
	return nil
}

func (variance *varianceAccumulator) value() float64 {
	if variance.k <= 1 {
		return 0
	}
	return variance.m / float64(variance.k-1)
}

func (variance *varianceAccumulator) result() (storage.Value, error) {
	return storage.Float(float32(variance.value())), nil
}

func (variance *varianceAccumulator) reset() {
	variance.m = 0
	variance.k = 0
}

type stddevAccumulator struct {
	variance varianceAccumulator
}

func (stddev *stddevAccumulator) resultType(input storage.Type) (storage.Type, error) {
	return stddev.variance.resultType(input)
}

func (stddev *stddevAccumulator) update(v storage.Value) error { return stddev.variance.update(v) }

func (stddev *stddevAccumulator) result() (storage.Value, error) {
	v := float32(stddev.variance.value())
	return storage.Float(float32(math.Sqrt(float64(v)))), nil
}

func (stddev *stddevAccumulator) reset() { stddev.variance.reset() }
