package storage

import (
	"bytes"
	"fmt"
	"io"
)

func printRecordsHeader(w io.Writer, schema *Schema) {
	buf := bytes.Buffer{}
	for i, f := range schema.Columns {
		if i > 0 {
			buf.WriteString(", ")
		}
		buf.WriteString(f.Name)
	}
	fmt.Fprintln(w, buf.String())
}

func printRecordRowData(w io.Writer, record *Record) {
	buf := bytes.Buffer{}
	for i, v := range record.Values {
		if i > 0 {
			buf.WriteString(", ")
		}
		buf.WriteString(v.String())
	}
	fmt.Fprintln(w, buf.String())
}

// PrintRecords writes the field names of schema followed by one comma
// separated line per record.
func PrintRecords(w io.Writer, schema *Schema, records []*Record, header bool) {
	if schema == nil {
		return
	}
	if header {
		printRecordsHeader(w, schema)
	}
	for _, r := range records {
		printRecordRowData(w, r)
	}
}
