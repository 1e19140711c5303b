package launch

import "fmt"

// Table - неизменяемый набор записей, загружается один раз при старте.
// Все выборки создают новые срезы, исходные данные не модифицируются.
type Table struct {
	records    []Record
	sites      []string
	siteSet    map[string]struct{}
	minPayload float64
	maxPayload float64
}

// NewTable validates and copies records into a new Table.
func NewTable(records []Record) (*Table, error) {
	t := &Table{
		records: make([]Record, len(records)),
		siteSet: make(map[string]struct{}),
	}
	copy(t.records, records)

	for i, r := range t.records {
		if err := r.Validate(); err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		if _, ok := t.siteSet[r.Site]; !ok {
			t.siteSet[r.Site] = struct{}{}
			t.sites = append(t.sites, r.Site)
		}
		if i == 0 || r.PayloadMass < t.minPayload {
			t.minPayload = r.PayloadMass
		}
		if i == 0 || r.PayloadMass > t.maxPayload {
			t.maxPayload = r.PayloadMass
		}
	}

	return t, nil
}

// Len returns the number of records.
func (t *Table) Len() int {
	return len(t.records)
}

// Records returns a copy of all records in load order.
func (t *Table) Records() []Record {
	out := make([]Record, len(t.records))
	copy(out, t.records)
	return out
}

// Sites returns the distinct launch sites in order of first appearance.
func (t *Table) Sites() []string {
	out := make([]string, len(t.sites))
	copy(out, t.sites)
	return out
}

// HasSite reports whether at least one record was launched from site.
func (t *Table) HasSite(site string) bool {
	_, ok := t.siteSet[site]
	return ok
}

// PayloadBounds returns the observed payload range; (0, 0) for an empty table.
func (t *Table) PayloadBounds() PayloadRange {
	return PayloadRange{Low: t.minPayload, High: t.maxPayload}
}

// Select returns, in table order, the records matching every predicate.
// The result is a fresh slice and is never nil.
func (t *Table) Select(preds ...Predicate) []Record {
	out := make([]Record, 0)
	for _, r := range t.records {
		if matchAll(r, preds) {
			out = append(out, r)
		}
	}
	return out
}

// Count returns the number of records matching every predicate.
func (t *Table) Count(preds ...Predicate) int {
	n := 0
	for _, r := range t.records {
		if matchAll(r, preds) {
			n++
		}
	}
	return n
}

func matchAll(r Record, preds []Predicate) bool {
	for _, p := range preds {
		if !p(r) {
			return false
		}
	}
	return true
}
