// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package collect

import (
	"context"

	"github.com/pdiddy/bioscout/internal/sources"
	"github.com/pdiddy/bioscout/pkg/types"
)

// ToolDecl describes one adapter as an invocable tool. Every tool takes a
// single string parameter naming the entity to fetch.
type ToolDecl struct {
	Name        string
	Description string
	Param       string
}

// ToolCall is one invocation the planner requested.
type ToolCall struct {
	Name string
	Args map[string]any
}

// ToolResult is the serialized outcome of an executed call, fed back to
// the planner in the next round.
type ToolResult struct {
	Name string
	JSON string
}

// Round records one completed planning round.
type Round struct {
	Calls   []ToolCall
	Results []ToolResult
}

// PlanRequest carries everything the planner needs for one round. Prior
// rounds are replayed in full so planner implementations can stay
// stateless.
type PlanRequest struct {
	Query  string
	Kind   types.EntityKind
	Tools  []ToolDecl
	Rounds []Round
}

// PlanResponse is the planner's decision for one round: either more tool
// calls, or a final text taken as the completion signal.
type PlanResponse struct {
	Calls     []ToolCall
	FinalText string
}

// Planner decides which sources to query. The production implementation is
// a Gemini model; tests use deterministic stubs.
type Planner interface {
	Plan(ctx context.Context, req PlanRequest) (PlanResponse, error)
}

// toolDescriptions maps adapter names to the descriptions offered to the
// planner.
var toolDescriptions = map[string]string{
	"mygene":          "Get MyGene.info annotation for a human gene symbol.",
	"myvariant":       "Get MyVariant.info details for an rsID or gene symbol.",
	"ensembl_gene":    "Resolve a human gene symbol to its Ensembl region and stable id.",
	"ensembl_overlap": "Fetch Ensembl gene metadata and the relevant overlapping variants for a gene symbol.",
	"ensembl_vep":     "Get VEP consequence predictions for an rsID.",
	"clinicaltables":  "Get basic rsID info (chromosome, position, alleles) from NIH Clinical Tables.",
	"ncbi":            "Get the NCBI Gene or dbSNP summary for the identifier.",
	"uniprot":         "Get the UniProt protein entry for a human gene symbol.",
}

// toolParams maps adapter names to their single parameter name, following
// each upstream service's vocabulary.
var toolParams = map[string]string{
	"mygene":          "gene",
	"myvariant":       "query",
	"ensembl_gene":    "gene",
	"ensembl_overlap": "gene",
	"ensembl_vep":     "snp_id",
	"clinicaltables":  "snp_id",
	"ncbi":            "identifier",
	"uniprot":         "gene_symbol",
}

// Declarations builds the tool set offered to the planner for the given
// adapters.
func Declarations(adapters []sources.Adapter) []ToolDecl {
	decls := make([]ToolDecl, 0, len(adapters))
	for _, a := range adapters {
		param := toolParams[a.Name()]
		if param == "" {
			param = "identifier"
		}
		decls = append(decls, ToolDecl{
			Name:        a.Name(),
			Description: toolDescriptions[a.Name()],
			Param:       param,
		})
	}
	return decls
}

// callArgument extracts the identifier from a tool call's arguments,
// falling back to the query itself when the planner sent none. Any string
// argument counts; planners routinely rename parameters.
func callArgument(call ToolCall, decl ToolDecl, query string) string {
	if s, ok := call.Args[decl.Param].(string); ok && s != "" {
		return s
	}
	for _, v := range call.Args {
		if s, ok := v.(string); ok && s != "" {
			return s
		}
	}
	return query
}
