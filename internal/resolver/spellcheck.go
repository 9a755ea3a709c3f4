package resolver

import (
	"context"
	"fmt"
)

// spellcheck probes engine-suggested alternative phrasings of a zero-result
// query and returns the one yielding the most matches, or "" when no
// alternative matches anything. A broader low-confidence pool is tried when
// the primary pool comes up empty.
func (r *Resolver) spellcheck(ctx context.Context, original string) (string, error) {
	suggestions, err := r.client.CheckSpelling(ctx, original)
	if err != nil {
		return "", fmt.Errorf("check spelling: %w", err)
	}

	primary := suggestions.Alternatives(original, false)

	best, bestCount, err := r.bestAlternative(ctx, primary, "", 0)
	if err != nil {
		return "", err
	}

	if best == "" {
		secondary := subtract(suggestions.Alternatives(original, true), primary)
		best, _, err = r.bestAlternative(ctx, secondary, best, bestCount)
		if err != nil {
			return "", err
		}
	}

	return best, nil
}

// bestAlternative trial-queries each candidate and keeps the one with the
// highest match count. A candidate replaces the current best only when its
// count is strictly greater, so ties keep the earliest candidate.
func (r *Resolver) bestAlternative(ctx context.Context, candidates []string, best string, bestCount int) (string, int, error) {
	for _, candidate := range candidates {
		candidate := candidate

		// Only the match count matters here; sort, facets, and stats are
		// skipped to keep trial queries cheap.
		trial, err := r.PrepareQuery(ctx, Args{Search: &candidate}, nil, true, true)
		if err != nil {
			return "", 0, fmt.Errorf("prepare trial query %q: %w", candidate, err)
		}
		resp, err := trial.Response(ctx)
		if err != nil {
			return "", 0, fmt.Errorf("trial query %q: %w", candidate, err)
		}

		if (best == "" && resp.NumFound() > 0) || resp.NumFound() > bestCount {
			best = candidate
			bestCount = resp.NumFound()
		}
	}
	return best, bestCount, nil
}

// subtract returns the members of list not present in tried.
func subtract(list, tried []string) []string {
	var out []string
	for _, s := range list {
		if !contains(tried, s) {
			out = append(out, s)
		}
	}
	return out
}
