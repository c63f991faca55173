package model

import (
	"iter"
	"slices"

	"github.com/shopspring/decimal"
)

// TimeNormalizedMap maps a whole meter to the elapsed lap time in ms.
// Keys are unique, the first insertion of a key determines its position.
type TimeNormalizedMap struct {
	keys   []int
	values map[int]decimal.Decimal
}

func NewTimeNormalizedMap() *TimeNormalizedMap {
	return &TimeNormalizedMap{values: make(map[int]decimal.Decimal)}
}

// Set writes or overwrites the value for meter.
func (m *TimeNormalizedMap) Set(meter int, ms decimal.Decimal) {
	if m.values == nil {
		m.values = make(map[int]decimal.Decimal)
	}
	if _, ok := m.values[meter]; !ok {
		m.keys = append(m.keys, meter)
	}
	m.values[meter] = ms
}

func (m *TimeNormalizedMap) Get(meter int) (decimal.Decimal, bool) {
	v, ok := m.values[meter]
	return v, ok
}

func (m *TimeNormalizedMap) Len() int {
	if m == nil {
		return 0
	}
	return len(m.keys)
}

// Keys returns the meters in insertion order.
func (m *TimeNormalizedMap) Keys() []int {
	return slices.Clone(m.keys)
}

// All iterates in insertion order.
func (m *TimeNormalizedMap) All() iter.Seq2[int, decimal.Decimal] {
	return func(yield func(int, decimal.Decimal) bool) {
		for _, k := range m.keys {
			if !yield(k, m.values[k]) {
				return
			}
		}
	}
}

func (m *TimeNormalizedMap) Clone() *TimeNormalizedMap {
	ret := &TimeNormalizedMap{
		keys:   slices.Clone(m.keys),
		values: make(map[int]decimal.Decimal, len(m.values)),
	}
	for k, v := range m.values {
		ret.values[k] = v
	}
	return ret
}
