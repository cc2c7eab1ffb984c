package storage

import (
	"github.com/cespare/xxhash/v2"
	"github.com/pkg/errors"
)

type ElementKind int

const (
	ElementRow ElementKind = iota
	ElementGroupEnd
)

// Element is one item of a record stream: either a row or the end of the
// current group.
type Element struct {
	Kind   ElementKind
	Record *Record
}

func Row(record *Record) Element {
	return Element{Kind: ElementRow, Record: record}
}

func GroupEnd() Element {
	return Element{Kind: ElementGroupEnd}
}

func (e Element) IsGroupEnd() bool { return e.Kind == ElementGroupEnd }

// RecordStream is a forward only source of records. Next returns false once
// the stream is exhausted.
type RecordStream interface {
	Next() (Element, bool)
}

type SliceStream struct {
	elements []Element
	pos      int
}

func NewSliceStream(elements ...Element) *SliceStream {
	return &SliceStream{elements: elements}
}

// RowStream wraps plain records without any group boundary.
func RowStream(records ...*Record) *SliceStream {
	elements := make([]Element, len(records))
	for i, r := range records {
		elements[i] = Row(r)
	}
	return NewSliceStream(elements...)
}

func (s *SliceStream) Next() (Element, bool) {
	if s.pos >= len(s.elements) {
		return Element{}, false
	}
	e := s.elements[s.pos]
	s.pos++
	return e, true
}

func (s *SliceStream) Len() int { return len(s.elements) }

type group struct {
	key     []byte
	records []*Record
}

// GroupRecords partitions records by the values of the named columns. Groups
// come out in the order their first record appears, each followed by a
// GroupEnd. No columns puts every record into one group; no records yields an
// empty stream.
func GroupRecords(schema *Schema, records []*Record, columns []string) (*SliceStream, error) {
	ordinals := make([]int, len(columns))
	for i, name := range columns {
		idx, ok := schema.FindField(name)
		if !ok {
			return nil, errors.Errorf("group by column '%s' not found in %s", name, schema)
		}
		ordinals[i] = idx
	}
	buckets := map[uint64][]*group{}
	var groups []*group
	for _, r := range records {
		key := groupKey(r, ordinals)
		h := xxhash.Sum64(key)
		var g *group
		for _, candidate := range buckets[h] {
			if string(candidate.key) == string(key) {
				g = candidate
				break
			}
		}
		if g == nil {
			g = &group{key: key}
			buckets[h] = append(buckets[h], g)
			groups = append(groups, g)
		}
		g.records = append(g.records, r)
	}
	var elements []Element
	for _, g := range groups {
		for _, r := range g.records {
			elements = append(elements, Row(r))
		}
		elements = append(elements, GroupEnd())
	}
	return NewSliceStream(elements...), nil
}

func groupKey(r *Record, ordinals []int) []byte {
	var key []byte
	for _, i := range ordinals {
		v := r.Get(i)
		key = append(key, byte(v.Type().ID))
		key = append(key, v.Bytes()...)
	}
	return key
}
