package plan

import (
	"bytes"
	"fmt"

	"github.com/pkg/errors"
	"github.com/samber/lo"
	"github.com/xiaobogaga/exprdb/log"
	"github.com/xiaobogaga/exprdb/storage"
)

var projectLog = log.GetLog("ProjectPlan")

// ProjectPlan evaluates a list of expressions over its input stream. Without aggregates and group by columns
// it emits one record per input record. Otherwise it emits one record per group: aggregates are folded over
// every record of the group, other expressions are evaluated against the first record of the group.
type ProjectPlan struct {
	input    storage.RecordStream
	schema   *storage.Schema
	Exprs    []Expr
	GroupBy  []string
	grouped  bool
	warnings []error
	// base is the first record of the pending group.
	base   *storage.Record
	groups int
	done   bool
}

// NewProjectPlan binds exprs to inputSchema. columns names the output fields, a nil columns names them after
// the rendered expressions. The input stream must carry group boundaries when the plan is grouped.
func NewProjectPlan(input storage.RecordStream, inputSchema *storage.Schema, columns []string, exprs []Expr,
	groupBy []string) (*ProjectPlan, error) {
	if columns == nil {
		columns = lo.Map(exprs, func(expr Expr, _ int) string { return expr.String() })
	}
	if len(columns) != len(exprs) {
		return nil, errors.Wrapf(ErrArity, "%d column names for %d expressions", len(columns), len(exprs))
	}
	for _, expr := range exprs {
		if err := expr.SetSchema(inputSchema); err != nil {
			return nil, err
		}
	}
	for _, name := range groupBy {
		if !inputSchema.HasColumn(name) {
			return nil, errors.Wrapf(ErrSchemaBinding, "group by column '%s' cannot find in %s", name, inputSchema)
		}
	}
	fields := lo.Map(exprs, func(expr Expr, i int) storage.Field { return storage.Field{Name: columns[i], TP: expr.Type()} })
	schema, err := storage.NewSchema(fields...)
	if err != nil {
		return nil, err
	}
	hasAgg := len(lo.Filter(exprs, func(expr Expr, _ int) bool { return expr.HasAgg() })) > 0
	p := &ProjectPlan{
		input:   input,
		schema:  schema,
		Exprs:   exprs,
		GroupBy: groupBy,
		grouped: len(groupBy) > 0 || hasAgg,
	}
	// Without aggregates a group by emits the first record of each group as is.
	if hasAgg {
		p.checkFunctionalDependency()
	}
	return p, nil
}

// checkFunctionalDependency warns about non aggregate expressions reading columns outside the group by
// columns. Their value is taken from the first record of each group.
func (p *ProjectPlan) checkFunctionalDependency() {
	for _, expr := range p.Exprs {
		if expr.HasAgg() {
			continue
		}
		ungrouped := lo.Filter(expr.Dependencies(), func(dep string, _ int) bool { return !lo.Contains(p.GroupBy, dep) })
		for _, dep := range ungrouped {
			err := errors.Wrapf(ErrUngroupedColumn, "'%s' in %s", dep, expr)
			projectLog.WarnF("%s", err)
			p.warnings = append(p.warnings, err)
		}
	}
}

func (p *ProjectPlan) Schema() *storage.Schema { return p.schema }

// Warnings returns the non fatal problems found while building the plan.
func (p *ProjectPlan) Warnings() []error { return p.warnings }

func (p *ProjectPlan) String() string {
	buf := bytes.Buffer{}
	buf.WriteString("ProjectPlan: ")
	for i, expr := range p.Exprs {
		if i > 0 {
			buf.WriteString(", ")
		}
		buf.WriteString(expr.String())
	}
	if len(p.GroupBy) > 0 {
		buf.WriteString(fmt.Sprintf(" group by %v", p.GroupBy))
	}
	return buf.String()
}

// Next returns the next output record, false when the input is exhausted.
func (p *ProjectPlan) Next() (*storage.Record, bool, error) {
	if p.done {
		return nil, false, nil
	}
	if !p.grouped {
		return p.nextRow()
	}
	return p.nextGroup()
}

func (p *ProjectPlan) nextRow() (*storage.Record, bool, error) {
	for {
		e, ok := p.input.Next()
		if !ok {
			p.done = true
			return nil, false, nil
		}
		if e.IsGroupEnd() {
			continue
		}
		ret, err := p.evaluate(e.Record)
		if err != nil {
			return nil, false, err
		}
		return ret, true, nil
	}
}

func (p *ProjectPlan) nextGroup() (*storage.Record, bool, error) {
	for {
		e, ok := p.input.Next()
		if !ok {
			p.done = true
			if p.base == nil {
				return nil, false, nil
			}
			return p.finishGroup()
		}
		if e.IsGroupEnd() {
			if p.base == nil {
				continue
			}
			return p.finishGroup()
		}
		if p.base == nil {
			p.base = e.Record
		}
		for _, expr := range p.Exprs {
			if !expr.HasAgg() {
				continue
			}
			if err := expr.Update(e.Record); err != nil {
				return nil, false, err
			}
		}
	}
}

func (p *ProjectPlan) finishGroup() (*storage.Record, bool, error) {
	ret, err := p.evaluate(p.base)
	resetAll(p.Exprs...)
	p.base = nil
	if err != nil {
		return nil, false, err
	}
	p.groups++
	projectLog.DebugF("group %d: %s", p.groups, ret)
	return ret, true, nil
}

func (p *ProjectPlan) evaluate(record *storage.Record) (*storage.Record, error) {
	values := make([]storage.Value, len(p.Exprs))
	for i, expr := range p.Exprs {
		v, err := expr.Evaluate(record)
		if err != nil {
			return nil, errors.Wrapf(err, "evaluating %s", expr)
		}
		values[i] = v
	}
	return storage.NewRecord(values...), nil
}

// ExecuteAll drains the plan.
func (p *ProjectPlan) ExecuteAll() ([]*storage.Record, error) {
	return Execute(p)
}
