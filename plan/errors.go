package plan

import "github.com/xiaobogaga/exprdb/storage"

type PlanError string

func (e PlanError) Error() string {
	return string(e)
}

const (
	ErrSchemaBinding    = PlanError("schema binding error")
	ErrArity            = PlanError("wrong number of arguments")
	ErrNestedAggregate  = PlanError("cannot compute nested aggregate functions")
	ErrUnknownFunction  = PlanError("unknown function")
	ErrEmptyAggregate   = PlanError("aggregate over an empty group")
	ErrInvalidDatePart  = PlanError("not a valid date subpart, must be one of year, month or day")
	ErrUngroupedColumn  = PlanError("column is not functionally dependent on the group by columns")
	ErrUnboundReference = PlanError("expression is not bound to a schema")
)

var ErrUnknownOperator = storage.ErrUnknownOperator
