// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package collect

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/pdiddy/bioscout/internal/sources"
	"github.com/pdiddy/bioscout/internal/synthesize"
	"github.com/pdiddy/bioscout/pkg/types"
)

type stubAdapter struct {
	name  string
	kinds []types.EntityKind
	fetch func(ctx context.Context, id string, kind types.EntityKind) types.SourceRecord
}

func (s *stubAdapter) Name() string              { return s.name }
func (s *stubAdapter) Kinds() []types.EntityKind { return s.kinds }

func (s *stubAdapter) Fetch(ctx context.Context, id string, kind types.EntityKind) types.SourceRecord {
	return s.fetch(ctx, id, kind)
}

func geneAdapter(name string, payload any) *stubAdapter {
	return &stubAdapter{
		name:  name,
		kinds: []types.EntityKind{types.KindGene},
		fetch: func(ctx context.Context, id string, kind types.EntityKind) types.SourceRecord {
			return types.Record(name, payload)
		},
	}
}

type planStep struct {
	resp PlanResponse
	err  error
}

// scriptedPlanner replays a fixed script, repeating the last step when the
// orchestrator asks for more rounds than scripted.
type scriptedPlanner struct {
	script   []planStep
	requests []PlanRequest
}

func (p *scriptedPlanner) Plan(ctx context.Context, req PlanRequest) (PlanResponse, error) {
	p.requests = append(p.requests, req)
	idx := len(p.requests) - 1
	if idx >= len(p.script) {
		idx = len(p.script) - 1
	}
	return p.script[idx].resp, p.script[idx].err
}

func TestCollectFixedPartialFailure(t *testing.T) {
	failing := &stubAdapter{
		name:  "ncbi",
		kinds: []types.EntityKind{types.KindGene},
		fetch: func(ctx context.Context, id string, kind types.EntityKind) types.SourceRecord {
			return types.AbsentRecord("ncbi", types.ReasonTransport, "connection refused")
		},
	}
	adapters := []sources.Adapter{geneAdapter("mygene", map[string]any{"symbol": "TP53"}), failing}

	var log strings.Builder
	o := New(adapters, nil, 0, &log)
	bundle, err := o.Collect(context.Background(), "TP53", types.KindGene)
	if err != nil {
		t.Fatalf("Collect: %v", err)
	}

	if len(bundle.Order) != 2 {
		t.Fatalf("expected 2 entries, got %v", bundle.Order)
	}
	if bundle.Sources["mygene"].IsAbsent() {
		t.Error("mygene record should survive a sibling failure")
	}
	rec := bundle.Sources["ncbi"]
	if !rec.IsAbsent() || rec.Absent.Reason != types.ReasonTransport {
		t.Errorf("ncbi record = %+v, want transport_error absence", rec)
	}
	if !strings.Contains(log.String(), "ncbi") {
		t.Errorf("expected a warning naming ncbi, got %q", log.String())
	}
}

func TestCollectFixedOrderStable(t *testing.T) {
	slow := &stubAdapter{
		name:  "first",
		kinds: []types.EntityKind{types.KindGene},
		fetch: func(ctx context.Context, id string, kind types.EntityKind) types.SourceRecord {
			time.Sleep(20 * time.Millisecond)
			return types.Record("first", "slow")
		},
	}
	adapters := []sources.Adapter{slow, geneAdapter("second", "fast"), geneAdapter("third", "fast")}

	o := New(adapters, nil, 0, nil)
	bundle, err := o.Collect(context.Background(), "BRCA1", types.KindGene)
	if err != nil {
		t.Fatalf("Collect: %v", err)
	}

	want := []string{"first", "second", "third"}
	for i, name := range want {
		if bundle.Order[i] != name {
			t.Fatalf("order = %v, want %v", bundle.Order, want)
		}
	}
}

func TestCollectFixedUnknownKind(t *testing.T) {
	o := New(nil, nil, 0, nil)
	if _, err := o.Collect(context.Background(), "x", types.KindUnknown); err == nil {
		t.Fatal("expected an error for an unclassified query")
	}
}

func TestCollectPlannedRoundCap(t *testing.T) {
	adapters := []sources.Adapter{geneAdapter("mygene", map[string]any{"symbol": "TP53"})}
	planner := &scriptedPlanner{script: []planStep{
		{resp: PlanResponse{Calls: []ToolCall{{Name: "mygene", Args: map[string]any{"gene": "TP53"}}}}},
	}}

	o := New(adapters, planner, 3, nil)
	bundle, err := o.Collect(context.Background(), "TP53", types.KindGene)
	if err != nil {
		t.Fatalf("Collect: %v", err)
	}

	if len(planner.requests) != 3 {
		t.Errorf("planner asked %d times, want exactly 3", len(planner.requests))
	}
	if bundle.Sources["mygene"].IsAbsent() {
		t.Error("executed calls should land in the bundle even when the cap fires")
	}
	// The third request must replay both prior rounds.
	if got := len(planner.requests[2].Rounds); got != 2 {
		t.Errorf("final request replayed %d rounds, want 2", got)
	}
}

func TestCollectPlannedCompletionMerge(t *testing.T) {
	adapters := []sources.Adapter{geneAdapter("mygene", map[string]any{"symbol": "TP53"})}
	final := `{"query": "TP53", "type": "gene", "sources": {"mygene": {"symbol": "WRONG"}, "ncbi": {"uid": "7157"}}}`
	planner := &scriptedPlanner{script: []planStep{
		{resp: PlanResponse{Calls: []ToolCall{{Name: "mygene", Args: map[string]any{"gene": "TP53"}}}}},
		{resp: PlanResponse{FinalText: final}},
	}}

	o := New(adapters, planner, 3, nil)
	bundle, err := o.Collect(context.Background(), "TP53", types.KindGene)
	if err != nil {
		t.Fatalf("Collect: %v", err)
	}

	payload, ok := bundle.Sources["mygene"].Payload.(map[string]any)
	if !ok || payload["symbol"] != "TP53" {
		t.Errorf("locally fetched mygene payload was displaced: %+v", bundle.Sources["mygene"])
	}
	if _, ok := bundle.Sources["ncbi"]; !ok {
		t.Error("completion-only source ncbi should be merged in")
	}
}

func TestCollectPlannedUnparseableCompletion(t *testing.T) {
	adapters := []sources.Adapter{geneAdapter("mygene", map[string]any{"symbol": "TP53"})}
	planner := &scriptedPlanner{script: []planStep{
		{resp: PlanResponse{Calls: []ToolCall{{Name: "mygene", Args: map[string]any{"gene": "TP53"}}}}},
		{resp: PlanResponse{FinalText: "All done, I queried everything!"}},
	}}

	var log strings.Builder
	o := New(adapters, planner, 3, &log)
	bundle, err := o.Collect(context.Background(), "TP53", types.KindGene)
	if err != nil {
		t.Fatalf("Collect: %v", err)
	}

	if len(bundle.Order) != 1 || bundle.Order[0] != "mygene" {
		t.Errorf("bundle should hold exactly the executed results, got %v", bundle.Order)
	}
	if !strings.Contains(log.String(), "did not parse") {
		t.Errorf("expected a parse warning, got %q", log.String())
	}
}

func TestCollectPlannedUnknownTool(t *testing.T) {
	adapters := []sources.Adapter{geneAdapter("mygene", map[string]any{"symbol": "TP53"})}
	planner := &scriptedPlanner{script: []planStep{
		{resp: PlanResponse{Calls: []ToolCall{{Name: "pubmed", Args: map[string]any{"gene": "TP53"}}}}},
		{resp: PlanResponse{FinalText: `{"query": "TP53", "type": "gene", "sources": {}}`}},
	}}

	o := New(adapters, planner, 3, nil)
	bundle, err := o.Collect(context.Background(), "TP53", types.KindGene)
	if err != nil {
		t.Fatalf("Collect: %v", err)
	}

	if _, ok := bundle.Sources["pubmed"]; ok {
		t.Error("an unknown tool must not produce a bundle entry")
	}
	round := planner.requests[1].Rounds[0]
	if !strings.Contains(round.Results[0].JSON, "tool not available") {
		t.Errorf("planner should see an error result, got %q", round.Results[0].JSON)
	}
}

func TestCollectPlannedPlannerErrorFallsBack(t *testing.T) {
	adapters := []sources.Adapter{geneAdapter("mygene", map[string]any{"symbol": "TP53"})}
	planner := &scriptedPlanner{script: []planStep{
		{resp: PlanResponse{Calls: []ToolCall{{Name: "mygene", Args: map[string]any{"gene": "TP53"}}}}},
		{err: errors.New("model overloaded")},
	}}

	var log strings.Builder
	o := New(adapters, planner, 3, &log)
	bundle, err := o.Collect(context.Background(), "TP53", types.KindGene)
	if err != nil {
		t.Fatalf("a planner failure must not fail collection: %v", err)
	}

	if bundle.Sources["mygene"].IsAbsent() {
		t.Error("first-round results should survive a later planner failure")
	}
	if !strings.Contains(log.String(), "planner round 2 failed") {
		t.Errorf("expected a fallback warning, got %q", log.String())
	}
}

func TestDeclarations(t *testing.T) {
	adapters := []sources.Adapter{
		geneAdapter("mygene", nil),
		geneAdapter("custom", nil),
	}
	decls := Declarations(adapters)

	if decls[0].Param != "gene" {
		t.Errorf("mygene param = %q, want gene", decls[0].Param)
	}
	if decls[1].Param != "identifier" {
		t.Errorf("unmapped adapter param = %q, want the identifier fallback", decls[1].Param)
	}
}

func TestCallArgument(t *testing.T) {
	decl := ToolDecl{Name: "mygene", Param: "gene"}
	tests := []struct {
		name string
		args map[string]any
		want string
	}{
		{"declared param", map[string]any{"gene": "BRCA1"}, "BRCA1"},
		{"renamed param", map[string]any{"symbol": "BRCA2"}, "BRCA2"},
		{"no string args", map[string]any{"count": 3.0}, "TP53"},
		{"nil args", nil, "TP53"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := callArgument(ToolCall{Name: "mygene", Args: tt.args}, decl, "TP53")
			if got != tt.want {
				t.Errorf("callArgument = %q, want %q", got, tt.want)
			}
		})
	}
}

type stubGenerator struct {
	out string
	err error
}

func (g *stubGenerator) Generate(ctx context.Context, system, user string, structured bool) (string, error) {
	return g.out, g.err
}

func TestRunRejectsUnclassifiableInput(t *testing.T) {
	o := New(nil, nil, 0, nil)
	_, err := o.Run(context.Background(), "not a gene!", nil, types.SynthesisConfig{})
	if !errors.Is(err, ErrUnrecognizedQuery) {
		t.Fatalf("err = %v, want ErrUnrecognizedQuery", err)
	}
}

func TestRunEchoesInputAsTyped(t *testing.T) {
	var fetched string
	snp := &stubAdapter{
		name:  "clinicaltables",
		kinds: []types.EntityKind{types.KindSNP},
		fetch: func(ctx context.Context, id string, kind types.EntityKind) types.SourceRecord {
			fetched = id
			return types.Record("clinicaltables", map[string]any{"rsid": id})
		},
	}

	o := New([]sources.Adapter{snp}, nil, 0, nil)
	result, err := o.Run(context.Background(), "RS7412", nil, types.SynthesisConfig{})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if result.Query != "RS7412" {
		t.Errorf("Query = %q, want the input echoed as typed", result.Query)
	}
	if fetched != "rs7412" {
		t.Errorf("adapter received %q, want the normalized id", fetched)
	}
}

func TestRunCollectsWithoutGenerator(t *testing.T) {
	adapters := []sources.Adapter{
		geneAdapter("ensembl_gene", map[string]any{"id": "ENSG00000141510"}),
		geneAdapter("ensembl_overlap", map[string]any{"variants": []any{}}),
		&stubAdapter{
			name:  "uniprot",
			kinds: []types.EntityKind{types.KindGene},
			fetch: func(ctx context.Context, id string, kind types.EntityKind) types.SourceRecord {
				return types.AbsentRecord("uniprot", types.ReasonNotFound, "")
			},
		},
	}

	o := New(adapters, nil, 0, nil)
	result, err := o.Run(context.Background(), "TP53", nil, types.SynthesisConfig{})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if result.Kind != "gene" {
		t.Errorf("Kind = %q, want gene", result.Kind)
	}
	// Both Ensembl adapters collapse to one display name; absent uniprot
	// is excluded.
	if len(result.SourcesUsed) != 1 || result.SourcesUsed[0] != "Ensembl" {
		t.Errorf("SourcesUsed = %v, want [Ensembl]", result.SourcesUsed)
	}
	if len(result.RawData) != 3 {
		t.Errorf("RawData should keep every record including absences, got %d", len(result.RawData))
	}
	if result.Summary != "" || result.Structured != nil {
		t.Error("no generator was supplied, result must carry collection only")
	}
}

func TestRunSynthesisFailureDegrades(t *testing.T) {
	adapters := []sources.Adapter{geneAdapter("mygene", map[string]any{"symbol": "TP53"})}

	var log strings.Builder
	o := New(adapters, nil, 0, &log)
	gen := &stubGenerator{err: fmt.Errorf("quota exhausted")}
	result, err := o.Run(context.Background(), "TP53", gen, types.SynthesisConfig{})
	if err != nil {
		t.Fatalf("a synthesis failure must not fail the run: %v", err)
	}

	if result.SynthesisErr == "" {
		t.Error("SynthesisErr should record the failure")
	}
	if len(result.RawData) != 1 {
		t.Error("raw data must survive a synthesis failure")
	}
	if !strings.Contains(log.String(), "warning") {
		t.Errorf("expected a warning, got %q", log.String())
	}
}

func TestRunReportSynthesis(t *testing.T) {
	adapters := []sources.Adapter{geneAdapter("mygene", map[string]any{"symbol": "TP53"})}

	o := New(adapters, nil, 0, nil)
	gen := &stubGenerator{out: "# TP53 - Gene Summary\n\n## 1. Functional Role\n..."}
	result, err := o.Run(context.Background(), "TP53", gen, types.SynthesisConfig{})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !strings.HasPrefix(result.Summary, "# TP53") {
		t.Errorf("Summary = %q, want the generator's report text", result.Summary)
	}
	if result.SynthesisErr != "" {
		t.Errorf("unexpected SynthesisErr %q", result.SynthesisErr)
	}
}

var _ synthesize.Generator = (*stubGenerator)(nil)
