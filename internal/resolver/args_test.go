package resolver

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPolicyFromFlags(t *testing.T) {
	assert.Equal(t, MergeDefault, PolicyFromFlags(false, false))
	assert.Equal(t, MergeOverwrite, PolicyFromFlags(true, false))
	assert.Equal(t, MergeCombine, PolicyFromFlags(false, true))
	// overwrite wins when both flags are set
	assert.Equal(t, MergeOverwrite, PolicyFromFlags(true, true))
}

func TestMergeArgs_DefaultPolicy_CallWins(t *testing.T) {
	call := Args{
		Search:   strPtr("hoodie"),
		PageSize: 12,
		Filter:   map[string]any{"color": "red"},
	}
	ctx := Args{
		Search:   strPtr("jacket"),
		PageSize: 50,
		Filter:   map[string]any{"color": "blue", "size": "m"},
		Debug:    true,
	}

	merged := MergeArgs(call, ctx, MergeDefault)

	assert.Equal(t, "hoodie", *merged.Search)
	assert.Equal(t, 12, merged.PageSize)
	assert.Equal(t, map[string]any{"color": "red"}, merged.Filter)
	// fields only the context set still come through
	assert.True(t, merged.Debug)
}

func TestMergeArgs_OverwritePolicy_ContextWins(t *testing.T) {
	call := Args{
		Search: strPtr("hoodie"),
		Filter: map[string]any{"color": "red"},
	}
	ctx := Args{
		Search: strPtr("jacket"),
		Filter: map[string]any{"size": "m"},
	}

	merged := MergeArgs(call, ctx, MergeOverwrite)

	assert.Equal(t, "jacket", *merged.Search)
	assert.Equal(t, map[string]any{"size": "m"}, merged.Filter)
}

func TestMergeArgs_CombinePolicy_UnionsAttributes(t *testing.T) {
	call := Args{
		Filter: map[string]any{
			"attributes": map[string]any{
				"color": "color=red",
				"size":  "size=m",
			},
		},
	}
	ctx := Args{
		Filter: map[string]any{
			"attributes": map[string]any{
				"color": "color=blue",
				"brand": "brand=acme",
			},
		},
	}

	merged := MergeArgs(call, ctx, MergeCombine)

	attrs, ok := merged.Filter["attributes"].(map[string]string)
	assert.True(t, ok)
	assert.Equal(t, map[string]string{
		"color": "color=red", // call wins on collision
		"size":  "size=m",
		"brand": "brand=acme",
	}, attrs)
}

func TestMergeArgs_CombinePolicy_NoAttributes(t *testing.T) {
	call := Args{Filter: map[string]any{"color": "red"}}
	ctx := Args{Filter: map[string]any{"size": "m"}}

	merged := MergeArgs(call, ctx, MergeCombine)

	// context filter wins wholesale, no attributes key is invented
	assert.Equal(t, map[string]any{"size": "m"}, merged.Filter)
}

func TestMergeArgs_DoesNotMutateInputs(t *testing.T) {
	call := Args{Filter: map[string]any{"color": "red"}}
	ctx := Args{Filter: map[string]any{
		"attributes": map[string]any{"size": "size=m"},
	}}

	_ = MergeArgs(call, ctx, MergeCombine)

	assert.Equal(t, map[string]any{"color": "red"}, call.Filter)
	assert.NotContains(t, ctx.Filter, "color")
}

func TestMergeArgs_RemoveTagExcluded(t *testing.T) {
	call := Args{Search: strPtr("hoodie")}
	ctx := Args{RemoveTagExcluded: []string{"color"}}

	merged := MergeArgs(call, ctx, MergeDefault)

	assert.Equal(t, []string{"color"}, merged.RemoveTagExcluded)
}
