// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package collect orchestrates source collection for one classified query.
// Two interchangeable strategies implement the same contract: a fixed
// pipeline that queries every kind-relevant adapter, and a planner-driven
// loop where a model picks the tools, bounded to a hard round cap.
package collect

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/pdiddy/bioscout/internal/sources"
	"github.com/pdiddy/bioscout/pkg/types"
)

// Orchestrator collects source records for one query at a time. All
// dependencies are injected; there is no process-wide client state.
type Orchestrator struct {
	adapters []sources.Adapter
	planner  Planner
	rounds   int
	w        io.Writer
}

// New builds an orchestrator. planner may be nil, in which case only the
// fixed strategy is available. maxRounds caps the planner loop; non-positive
// values fall back to the default of 3.
func New(adapters []sources.Adapter, planner Planner, maxRounds int, w io.Writer) *Orchestrator {
	if maxRounds <= 0 {
		maxRounds = 3
	}
	if w == nil {
		w = io.Discard
	}
	return &Orchestrator{adapters: adapters, planner: planner, rounds: maxRounds, w: w}
}

// Collect gathers records for the classified query, using the planner when
// one is configured and the fixed pipeline otherwise. Individual adapter
// failures surface as absent entries in the bundle, never as errors.
func (o *Orchestrator) Collect(ctx context.Context, query string, kind types.EntityKind) (*types.CollectedBundle, error) {
	if kind == types.KindUnknown {
		return nil, fmt.Errorf("cannot collect for unclassified query %q", query)
	}
	if o.planner != nil {
		return o.CollectPlanned(ctx, query, kind)
	}
	return o.CollectFixed(ctx, query, kind)
}

// CollectFixed queries every adapter relevant to the kind concurrently.
// Bundle order follows registry order, not completion order.
func (o *Orchestrator) CollectFixed(ctx context.Context, query string, kind types.EntityKind) (*types.CollectedBundle, error) {
	relevant := sources.ForKind(o.adapters, kind)
	records := make([]types.SourceRecord, len(relevant))

	g, gctx := errgroup.WithContext(ctx)
	for i, a := range relevant {
		g.Go(func() error {
			records[i] = a.Fetch(gctx, query, kind)
			return nil
		})
	}
	g.Wait()

	bundle := types.NewBundle(query, kind)
	for _, rec := range records {
		if rec.IsAbsent() {
			fmt.Fprintf(o.w, "warning: source %s absent: %s\n", rec.Source, rec.Absent.Reason)
		}
		bundle.Add(rec)
	}
	return bundle, nil
}

// plannerState tracks the planner loop. Planning asks the model for the
// next move; Executing runs the requested calls; Completing parses the
// final text; Fallback returns whatever was collected.
type plannerState int

const (
	statePlanning plannerState = iota
	stateExecuting
	stateCompleting
	stateFallback
)

// completion is the structured signal the planner emits when finished.
type completion struct {
	Query   string         `json:"query"`
	Type    string         `json:"type"`
	Sources map[string]any `json:"sources"`
}

// CollectPlanned drives the planner through bounded rounds of tool calls.
// The loop terminates on the first round with zero calls or after the
// round cap, whichever comes first; either way the caller gets a bundle of
// everything actually executed.
func (o *Orchestrator) CollectPlanned(ctx context.Context, query string, kind types.EntityKind) (*types.CollectedBundle, error) {
	relevant := sources.ForKind(o.adapters, kind)
	decls := Declarations(relevant)

	byName := make(map[string]sources.Adapter, len(relevant))
	declByName := make(map[string]ToolDecl, len(decls))
	for _, a := range relevant {
		byName[a.Name()] = a
	}
	for _, d := range decls {
		declByName[d.Name] = d
	}

	bundle := types.NewBundle(query, kind)
	req := PlanRequest{Query: query, Kind: kind, Tools: decls}

	state := statePlanning
	var finalText string

	for round := 0; round < o.rounds && state == statePlanning; round++ {
		resp, err := o.planner.Plan(ctx, req)
		if err != nil {
			fmt.Fprintf(o.w, "warning: planner round %d failed: %v\n", round+1, err)
			state = stateFallback
			break
		}

		if len(resp.Calls) == 0 {
			finalText = resp.FinalText
			state = stateCompleting
			break
		}

		state = stateExecuting
		results := o.execute(ctx, resp.Calls, byName, declByName, query, kind, bundle)
		req.Rounds = append(req.Rounds, Round{Calls: resp.Calls, Results: results})
		state = statePlanning
	}

	if state == stateCompleting {
		o.mergeCompletion(finalText, bundle)
	}
	return bundle, nil
}

// execute runs one round's calls concurrently and records each outcome in
// the bundle. Unknown tool names come back to the planner as an error
// payload instead of crashing the round.
func (o *Orchestrator) execute(ctx context.Context, calls []ToolCall, byName map[string]sources.Adapter, declByName map[string]ToolDecl, query string, kind types.EntityKind, bundle *types.CollectedBundle) []ToolResult {
	results := make([]ToolResult, len(calls))
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	for i, call := range calls {
		g.Go(func() error {
			adapter, ok := byName[call.Name]
			if !ok {
				results[i] = ToolResult{Name: call.Name, JSON: `{"error": "tool not available"}`}
				return nil
			}

			rec := adapter.Fetch(gctx, callArgument(call, declByName[call.Name], query), kind)
			results[i] = ToolResult{Name: call.Name, JSON: marshalRecord(rec)}

			mu.Lock()
			bundle.Add(rec)
			mu.Unlock()
			return nil
		})
	}
	g.Wait()
	return results
}

// mergeCompletion parses the planner's final text and merges any sources it
// names under the locally executed results; a claimed source never
// displaces data this process actually fetched. Unparseable text leaves
// the bundle as collected.
func (o *Orchestrator) mergeCompletion(finalText string, bundle *types.CollectedBundle) {
	var done completion
	if err := json.Unmarshal([]byte(finalText), &done); err != nil {
		fmt.Fprintf(o.w, "warning: planner completion did not parse, keeping collected data: %v\n", err)
		return
	}
	for name, payload := range done.Sources {
		if _, exists := bundle.Sources[name]; exists {
			continue
		}
		bundle.Add(types.Record(name, payload))
	}
}

// marshalRecord serializes a record for the planner transcript.
func marshalRecord(rec types.SourceRecord) string {
	if rec.IsAbsent() {
		data, _ := json.Marshal(map[string]any{"absent": rec.Absent})
		return string(data)
	}
	data, err := json.Marshal(rec.Payload)
	if err != nil {
		return `{"error": "result not serializable"}`
	}
	return string(data)
}
