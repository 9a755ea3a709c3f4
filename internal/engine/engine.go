package engine

import (
	"context"
)

// Infinity is the sentinel bound marking the open side of a range value.
const Infinity = "*"

// ValueKind discriminates the three shapes a filter value can take.
type ValueKind int

const (
	// ValueLiteral is an exact-match literal.
	ValueLiteral ValueKind = iota
	// ValueSet is a set-membership match over multiple literals.
	ValueSet
	// ValueRange is an interval match; Infinity marks an unbounded side.
	ValueRange
)

// Value is a filter value: an exact literal, a set of literals, or a range.
type Value struct {
	Kind    ValueKind
	Literal string
	Set     []string
	From    string
	To      string
}

// Literal returns an exact-match value.
func Literal(s string) Value {
	return Value{Kind: ValueLiteral, Literal: s}
}

// Set returns a set-membership value over the given literals.
func Set(vals []string) Value {
	return Value{Kind: ValueSet, Set: vals}
}

// Range returns an interval value. Use Infinity for an unbounded side.
func Range(from, to string) Value {
	return Value{Kind: ValueRange, From: from, To: to}
}

// Field is an engine-native field reference, optionally carrying a filter
// value and an excluded-from-facet-counting flag.
type Field struct {
	Name     string
	Value    Value
	Excluded bool
}

// Document is one matched record: engine field name to scalar or array value.
type Document map[string]any

// FacetBucket is one value bucket of a facet field.
type FacetBucket struct {
	Value string
	Count int
}

// Facet holds the per-value counts aggregated over one field.
type Facet struct {
	Field   string
	Buckets []FacetBucket
}

// Stat holds the numeric aggregates computed over one field.
type Stat struct {
	Field  string
	Values map[string]any
}

// DebugInfo carries the raw engine request details for debug responses.
type DebugInfo struct {
	Params  map[string]string
	Code    int
	Message string
	URI     string
}

// Response is the read-only result of executing a Query.
type Response interface {
	NumFound() int
	Documents() []Document
	Facets() []Facet
	Stats() []Stat
	CurrentPage() int
	DebugInfo() DebugInfo
}

// Query is a mutable builder accumulating the parts of one engine query.
// It is owned by a single request and must not be shared across goroutines.
//
// Execution is lazy: nothing is sent to the engine until Response is called.
// Response is memoized per Query instance; repeated calls return the same
// result without a second round-trip.
type Query interface {
	AddFilter(f Field)
	AddFilters(fs []Field)
	AddSort(f Field)
	AddFacet(f Field)
	AddFacets(fs []Field)
	AddStat(f Field)
	AddStats(fs []Field)
	AddFieldsToSelect(fs []Field)
	SetPageSize(n int)
	SetQueryText(s string)
	SetQueryPrepend(s string)
	QueryPrepend() string

	// Filter returns the accumulated filter with the given field name, or nil.
	Filter(name string) *Field

	Response(ctx context.Context) (Response, error)
}

// Client creates queries and answers spelling checks against the engine.
type Client interface {
	NewQuery() Query
	CheckSpelling(ctx context.Context, text string) (*Suggestions, error)
}

// Indexer maintains the product document index. Documents are identified by
// their "sku" field.
type Indexer interface {
	Index(ctx context.Context, doc Document) error
	Delete(ctx context.Context, sku string) error
	BulkIndex(ctx context.Context, docs []Document) error
}
