package plan

import "github.com/xiaobogaga/exprdb/storage"

// Plan produces records of a fixed schema, one by one.
type Plan interface {
	Schema() *storage.Schema
	String() string
	// Next returns false once the plan is exhausted.
	Next() (*storage.Record, bool, error)
}

var _ Plan = &ProjectPlan{}

// Execute drains p.
func Execute(p Plan) ([]*storage.Record, error) {
	var ret []*storage.Record
	for {
		record, ok, err := p.Next()
		if err != nil {
			return nil, err
		}
		if !ok {
			return ret, nil
		}
		ret = append(ret, record)
	}
}
