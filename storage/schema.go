package storage

import (
	"bytes"
	"fmt"

	"github.com/pkg/errors"
	"github.com/samber/lo"
)

type Field struct {
	Name string
	TP   Type
}

// Schema is an ordered list of uniquely named fields. It is not modified after
// construction.
type Schema struct {
	Columns []Field
	index   map[string]int
}

func NewSchema(fields ...Field) (*Schema, error) {
	schema := &Schema{Columns: make([]Field, 0, len(fields)), index: make(map[string]int, len(fields))}
	for _, f := range fields {
		if _, ok := schema.index[f.Name]; ok {
			return nil, errors.Wrapf(ErrDuplicateField, "'%s'", f.Name)
		}
		schema.index[f.Name] = len(schema.Columns)
		schema.Columns = append(schema.Columns, f)
	}
	return schema, nil
}

// FindField returns the ordinal of the named field.
func (schema *Schema) FindField(name string) (int, bool) {
	i, ok := schema.index[name]
	return i, ok
}

func (schema *Schema) HasColumn(name string) bool {
	_, ok := schema.index[name]
	return ok
}

func (schema *Schema) Len() int { return len(schema.Columns) }

func (schema *Schema) Field(i int) Field { return schema.Columns[i] }

func (schema *Schema) FieldType(i int) Type { return schema.Columns[i].TP }

func (schema *Schema) FieldNames() []string {
	return lo.Map(schema.Columns, func(f Field, _ int) string { return f.Name })
}

// RowSize is the encoded width of one record of this schema.
func (schema *Schema) RowSize() int {
	return lo.Reduce(schema.Columns, func(size int, f Field, _ int) int { return size + f.TP.Size }, 0)
}

func (schema *Schema) String() string {
	buf := bytes.Buffer{}
	buf.WriteString("(")
	for i, f := range schema.Columns {
		if i > 0 {
			buf.WriteString(", ")
		}
		buf.WriteString(fmt.Sprintf("%s %s", f.Name, f.TP))
	}
	buf.WriteString(")")
	return buf.String()
}

// Record is a row of values laid out by some schema.
type Record struct {
	Values []Value
}

func NewRecord(values ...Value) *Record {
	return &Record{Values: values}
}

func (record *Record) Get(i int) Value { return record.Values[i] }

func (record *Record) Len() int { return len(record.Values) }

// Bytes concatenates the fixed-width encoding of each value.
func (record *Record) Bytes() []byte {
	buf := bytes.Buffer{}
	for _, v := range record.Values {
		buf.Write(v.Bytes())
	}
	return buf.Bytes()
}

func (record *Record) String() string {
	return fmt.Sprintf("%v", lo.Map(record.Values, func(v Value, _ int) string { return v.String() }))
}

// Matches reports whether the record has the length and value types of schema.
func (record *Record) Matches(schema *Schema) bool {
	if record.Len() != schema.Len() {
		return false
	}
	for i, v := range record.Values {
		if v == nil || v.Type().ID != schema.FieldType(i).ID {
			return false
		}
	}
	return true
}

func RecordFromBytes(schema *Schema, buf []byte) (*Record, error) {
	if len(buf) < schema.RowSize() {
		return nil, errors.Wrapf(ErrWrongValueFormat, "need %d bytes for %s, got %d", schema.RowSize(), schema, len(buf))
	}
	values := make([]Value, schema.Len())
	offset := 0
	for i, f := range schema.Columns {
		v, err := FromBytes(buf[offset:offset+f.TP.Size], f.TP)
		if err != nil {
			return nil, err
		}
		values[i] = v
		offset += f.TP.Size
	}
	return NewRecord(values...), nil
}
