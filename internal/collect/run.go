// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package collect

import (
	"context"
	"errors"
	"fmt"

	"github.com/pdiddy/bioscout/internal/classify"
	"github.com/pdiddy/bioscout/internal/synthesize"
	"github.com/pdiddy/bioscout/pkg/types"
)

// ErrUnrecognizedQuery marks input that is neither a gene symbol nor an
// rsID. It is terminal: no collection is attempted.
var ErrUnrecognizedQuery = errors.New("query is neither a gene symbol nor an rsID")

// Run answers one query end to end: classify, collect, synthesize. gen may
// be nil, in which case the result carries collection only. A synthesis
// failure degrades the result (raw data is always returned) and only
// classification rejection fails the whole call.
func (o *Orchestrator) Run(ctx context.Context, raw string, gen synthesize.Generator, syn types.SynthesisConfig) (types.ResultBundle, error) {
	kind, id := classify.Classify(raw)
	if kind == types.KindUnknown {
		return types.ResultBundle{}, fmt.Errorf("%w: %q", ErrUnrecognizedQuery, raw)
	}

	bundle, err := o.Collect(ctx, id, kind)
	if err != nil {
		return types.ResultBundle{}, err
	}

	// The result echoes the query as typed; adapters and the bundle work
	// with the normalized identifier.
	result := types.ResultBundle{
		Query:   raw,
		Kind:    bundle.Kind.String(),
		RawData: bundle.Sources,
	}

	var used []string
	for _, name := range bundle.Order {
		if !bundle.Sources[name].IsAbsent() {
			used = append(used, name)
		}
	}
	result.SourcesUsed = dedupe(types.DisplayNames(used))

	if gen == nil {
		return result, nil
	}

	synthesized, err := synthesize.Synthesize(ctx, gen, bundle, syn)
	if err != nil {
		var failure *synthesize.Failure
		if errors.As(err, &failure) {
			fmt.Fprintf(o.w, "warning: %v\n", failure)
			result.SynthesisErr = failure.Error()
			return result, nil
		}
		return types.ResultBundle{}, err
	}

	result.Summary = synthesized.Text
	result.Structured = synthesized.Structured
	return result, nil
}

// dedupe collapses repeated display names (several adapters share an
// upstream service) while keeping first-seen order.
func dedupe(names []string) []string {
	seen := make(map[string]bool, len(names))
	var out []string
	for _, n := range names {
		if seen[n] {
			continue
		}
		seen[n] = true
		out = append(out, n)
	}
	return out
}
