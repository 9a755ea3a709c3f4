package resolver

import (
	"sort"
)

// MergePolicy selects how request-scoped context arguments combine with the
// explicit call arguments.
type MergePolicy int

const (
	// MergeDefault lets explicit call arguments win on collision.
	MergeDefault MergePolicy = iota
	// MergeOverwrite lets context arguments win entirely.
	MergeOverwrite
	// MergeCombine lets context arguments win, except filter attributes,
	// which are unioned so neither side's attribute filters are lost.
	MergeCombine
)

// SortInput is the caller-supplied sort argument.
type SortInput struct {
	SortBy    string `json:"sort_by"`
	SortOrder string `json:"sort_order"`
}

// Args holds the caller-supplied search arguments. Filter maps attribute
// codes to a scalar, an operator map (eq/in/gt/lt/gteq/lteq), or, under the
// "attributes" key, a map of attribute filter strings ("code=v1,v2").
type Args struct {
	Search            *string        `json:"search,omitempty"`
	RawQuery          string         `json:"query,omitempty"`
	Filter            map[string]any `json:"filter,omitempty"`
	Sort              *SortInput     `json:"sort,omitempty"`
	PageSize          int            `json:"pageSize,omitempty"`
	Debug             bool           `json:"debug,omitempty"`
	Redirect          bool           `json:"redirect,omitempty"`
	RemoveTagExcluded []string       `json:"remove_tag_excluded,omitempty"`
}

// PolicyFromFlags maps the context-bag policy flags to a MergePolicy.
// Overwrite takes precedence over merge; absence of both selects the default.
func PolicyFromFlags(overwrite, merge bool) MergePolicy {
	switch {
	case overwrite:
		return MergeOverwrite
	case merge:
		return MergeCombine
	default:
		return MergeDefault
	}
}

// MergeArgs combines explicit call arguments with context arguments under
// the given policy and returns the merged set. Neither input is mutated.
func MergeArgs(call, ctx Args, policy MergePolicy) Args {
	switch policy {
	case MergeOverwrite:
		return overlay(call, ctx)
	case MergeCombine:
		merged := overlay(call, ctx)
		attrs := mergeAttributes(attributesOf(ctx.Filter), attributesOf(call.Filter))
		if attrs != nil {
			if merged.Filter == nil {
				merged.Filter = map[string]any{}
			}
			merged.Filter["attributes"] = attrs
		}
		return merged
	default:
		return overlay(ctx, call)
	}
}

// overlay returns base with every set field of top applied over it.
func overlay(base, top Args) Args {
	out := base
	out.Filter = copyFilter(base.Filter)

	if top.Search != nil {
		out.Search = top.Search
	}
	if top.RawQuery != "" {
		out.RawQuery = top.RawQuery
	}
	if top.Filter != nil {
		out.Filter = copyFilter(top.Filter)
	}
	if top.Sort != nil {
		out.Sort = top.Sort
	}
	if top.PageSize != 0 {
		out.PageSize = top.PageSize
	}
	if top.Debug {
		out.Debug = true
	}
	if top.Redirect {
		out.Redirect = true
	}
	if top.RemoveTagExcluded != nil {
		out.RemoveTagExcluded = top.RemoveTagExcluded
	}
	return out
}

func copyFilter(f map[string]any) map[string]any {
	if f == nil {
		return nil
	}
	out := make(map[string]any, len(f))
	for k, v := range f {
		out[k] = v
	}
	return out
}

// attributesOf extracts the "attributes" sub-map of a filter as strings.
func attributesOf(filter map[string]any) map[string]string {
	if filter == nil {
		return nil
	}
	raw, ok := filter["attributes"]
	if !ok {
		return nil
	}
	switch attrs := raw.(type) {
	case map[string]string:
		out := make(map[string]string, len(attrs))
		for k, v := range attrs {
			out[k] = v
		}
		return out
	case map[string]any:
		out := make(map[string]string, len(attrs))
		for _, k := range sortedKeys(attrs) {
			if s, ok := attrs[k].(string); ok {
				out[k] = s
			}
		}
		return out
	default:
		return nil
	}
}

// mergeAttributes unions two attribute filter maps; primary wins on collision.
func mergeAttributes(secondary, primary map[string]string) map[string]string {
	if secondary == nil && primary == nil {
		return nil
	}
	out := make(map[string]string, len(secondary)+len(primary))
	for k, v := range secondary {
		out[k] = v
	}
	for k, v := range primary {
		out[k] = v
	}
	return out
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
