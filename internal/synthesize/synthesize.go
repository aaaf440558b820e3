// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package synthesize turns a collected bundle into a short summary through
// a text-generation backend, under a strict use-only-given-facts contract.
package synthesize

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"text/template"

	"github.com/pdiddy/bioscout/pkg/types"
)

// Generator abstracts the text-generation service so tests can supply a
// deterministic stub. structured requests strict-JSON output.
type Generator interface {
	Generate(ctx context.Context, system, user string, structured bool) (string, error)
}

// Result is an accepted synthesis output: free text for report mode, a
// validated summary for structured mode.
type Result struct {
	Text       string
	Structured *types.StructuredSummary
}

// Failure reports that the generator's output could not be accepted:
// missing, malformed, or schema-violating. It is distinct from adapter
// absence; collection succeeded and the bundle remains usable.
type Failure struct {
	Reason string
	Err    error
}

func (f *Failure) Error() string {
	if f.Err != nil {
		return fmt.Sprintf("synthesis failed: %s: %v", f.Reason, f.Err)
	}
	return "synthesis failed: " + f.Reason
}

func (f *Failure) Unwrap() error { return f.Err }

// structuredSystemPrompt binds the generator to the fixed JSON schema and
// the facts-only contract.
const structuredSystemPrompt = `You are a bioinformatics assistant that summarizes structured gene or variant information for researchers and clinicians.

You will receive a JSON object of per-source API payloads describing either a gene or a single nucleotide polymorphism (SNP). This JSON contains the ONLY facts you are allowed to use. You MUST NOT invent biology, diseases, pathways, or interpretations that are not explicitly present in the input. If information is missing or unclear, use the literal string "unknown" rather than guessing.

You MUST respond with valid JSON only, following this exact schema:
{
  "query": "echo of the queried identifier",
  "entity_type": "gene or snp",
  "species": "string or 'unknown' (taxid 9606 means Homo sapiens)",
  "headline": "1-2 sentences summarizing what this gene or SNP is, using only provided data",
  "functional_role": "short paragraph on function, or 'unknown'",
  "disease_associations": [
    {"name": "...", "evidence_source": "...", "evidence_note": "..."}
  ],
  "notable_details": ["short statement based only on the input"],
  "sources": ["database names visible in the input"]
}

Rules:
- Do NOT add external citations.
- If the input carries no disease or trait associations, return an empty list for "disease_associations".
- If there are no notable details beyond basic id and location, return an empty list for "notable_details".`

// reportPromptTmpl is the sectioned-report instruction set, used when the
// consumer is a human rather than a machine.
var reportPromptTmpl = template.Must(template.New("report").Parse(`You are a clinical data aggregation system analyzing bioinformatics API responses.

CRITICAL INSTRUCTIONS:
1. You MUST ONLY use information explicitly present in the DATA section below.
2. DO NOT use your training knowledge about genes, proteins, or diseases.
3. If data seems incomplete or contradictory, report it honestly; write "unknown" for missing facts.
4. Cite the specific data source for each claim (e.g., "According to NCBI Gene...").
5. Keep each section to at most 2-3 short paragraphs.

Your role is to SYNTHESIZE what the APIs returned, not to supplement with external knowledge.

Generate a structured clinical insight summary with exactly these sections:

# {{.Query}} - {{.KindLabel}} Summary

## 1. Functional Role
Biological function, pathway involvement, molecular mechanisms. Cite the source of each statement. If none: "Functional data not available from queried sources."

## 2. Disease Associations
Known disease associations with clinical significance levels, only those mentioned in the provided data, with sources.

## 3. Known Variants and Population Frequency
{{if .IsGene}}Highlight the most clinically significant variants with their population frequencies.{{else}}Describe this SNP with population frequency detail.{{end}} Limit to listing 3 variants.

## 4. Clinical Relevance
Actionable insight for researchers or clinicians: diagnostic value, therapeutic implications, screening recommendations, only as far as the data supports.`))

// Synthesize sends the bundle's collected payloads, and only those, to
// the generator. In structured mode the reply must parse and carry every
// required field; any violation returns a *Failure and no Result.
func Synthesize(ctx context.Context, g Generator, bundle *types.CollectedBundle, cfg types.SynthesisConfig) (*Result, error) {
	if g == nil {
		return nil, &Failure{Reason: "no generator configured"}
	}

	payload, err := json.MarshalIndent(bundle.Payloads(), "", "  ")
	if err != nil {
		return nil, &Failure{Reason: "bundle not serializable", Err: err}
	}
	user := fmt.Sprintf("DATA FROM MULTIPLE SOURCES for %q (these are the ONLY sources you can use):\n%s", bundle.Query, payload)

	if cfg.Structured {
		raw, err := g.Generate(ctx, structuredSystemPrompt, user, true)
		if err != nil {
			return nil, &Failure{Reason: "generator call failed", Err: err}
		}
		summary, err := parseStructured(raw)
		if err != nil {
			return nil, err
		}
		return &Result{Structured: summary}, nil
	}

	system, err := renderReportPrompt(bundle)
	if err != nil {
		return nil, &Failure{Reason: "rendering prompt", Err: err}
	}
	text, err := g.Generate(ctx, system, user, false)
	if err != nil {
		return nil, &Failure{Reason: "generator call failed", Err: err}
	}
	if text == "" {
		return nil, &Failure{Reason: "generator returned empty output"}
	}
	return &Result{Text: text}, nil
}

// requiredFields are the top-level keys a structured summary must carry.
var requiredFields = []string{
	"query",
	"entity_type",
	"headline",
	"functional_role",
	"disease_associations",
	"sources",
}

// parseStructured validates the generator's JSON against the fixed schema.
func parseStructured(raw string) (*types.StructuredSummary, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(raw), &fields); err != nil {
		return nil, &Failure{Reason: "structured output is not valid JSON", Err: err}
	}
	for _, key := range requiredFields {
		if _, ok := fields[key]; !ok {
			return nil, &Failure{Reason: fmt.Sprintf("structured output missing required field %q", key)}
		}
	}

	var summary types.StructuredSummary
	if err := json.Unmarshal([]byte(raw), &summary); err != nil {
		return nil, &Failure{Reason: "structured output does not match schema", Err: err}
	}
	if summary.DiseaseAssociations == nil {
		summary.DiseaseAssociations = []types.DiseaseAssociation{}
	}
	return &summary, nil
}

func renderReportPrompt(bundle *types.CollectedBundle) (string, error) {
	kindLabel := "Gene"
	if bundle.Kind == types.KindSNP {
		kindLabel = "SNP"
	}
	var buf bytes.Buffer
	err := reportPromptTmpl.Execute(&buf, struct {
		Query     string
		KindLabel string
		IsGene    bool
	}{Query: bundle.Query, KindLabel: kindLabel, IsGene: bundle.Kind == types.KindGene})
	if err != nil {
		return "", err
	}
	return buf.String(), nil
}
