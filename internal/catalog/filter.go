package catalog

import "strconv"

// Op is a predicate operator. Only equality is pushed down to the store;
// text and price-range matching happen after the fetch.
type Op string

const OpEq Op = "="

// Predicate is one typed filter clause destined for the store. The
// repository maps the ordered predicate list onto its own query primitives.
type Predicate struct {
	Field string
	Op    Op
	Value any
}

// SearchFilters holds the optional search parameters as they arrive from
// the query string. Pointer fields distinguish "absent" from zero values.
type SearchFilters struct {
	Category     string
	Brand        string
	Availability string
	Featured     *bool
	RGB          *bool
	MinPrice     *float64
	MaxPrice     *float64
}

// Predicates expands the present equality filters into an ordered
// conjunctive predicate list. Absent filters are omitted entirely.
func (f SearchFilters) Predicates() []Predicate {
	preds := make([]Predicate, 0, 5)
	if f.Category != "" {
		preds = append(preds, Predicate{Field: "category", Op: OpEq, Value: f.Category})
	}
	if f.Brand != "" {
		preds = append(preds, Predicate{Field: "brand", Op: OpEq, Value: f.Brand})
	}
	if f.Availability != "" {
		preds = append(preds, Predicate{Field: "availability", Op: OpEq, Value: f.Availability})
	}
	if f.Featured != nil {
		preds = append(preds, Predicate{Field: "featured", Op: OpEq, Value: *f.Featured})
	}
	if f.RGB != nil {
		preds = append(preds, Predicate{Field: "rgb", Op: OpEq, Value: *f.RGB})
	}
	return preds
}

// ParseBool reads a "true"/"false" query value into an optional bool.
// Anything else, including the empty string, counts as absent.
func ParseBool(raw string) *bool {
	switch raw {
	case "true":
		v := true
		return &v
	case "false":
		v := false
		return &v
	}
	return nil
}

// ParsePrice reads a numeric bound, treating malformed input as absent
// rather than failing the request.
func ParsePrice(raw string) *float64 {
	if raw == "" {
		return nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil
	}
	return &v
}
