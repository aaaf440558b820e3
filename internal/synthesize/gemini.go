// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package synthesize

import (
	"context"
	"fmt"

	"google.golang.org/genai"

	"github.com/pdiddy/bioscout/pkg/types"
)

// GeminiGenerator produces summaries through the Gemini API.
type GeminiGenerator struct {
	client *genai.Client
	model  string
}

// NewGeminiGenerator builds a generator from the configured credential.
func NewGeminiGenerator(ctx context.Context, cfg types.SynthesisConfig) (*GeminiGenerator, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("synthesis requires a Gemini API key")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: cfg.APIKey})
	if err != nil {
		return nil, fmt.Errorf("creating Gemini client: %w", err)
	}
	return &GeminiGenerator{client: client, model: cfg.Model}, nil
}

// structuredSchema mirrors types.StructuredSummary for Gemini's constrained
// JSON output mode.
var structuredSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"query":           {Type: genai.TypeString},
		"entity_type":     {Type: genai.TypeString},
		"species":         {Type: genai.TypeString},
		"headline":        {Type: genai.TypeString},
		"functional_role": {Type: genai.TypeString},
		"disease_associations": {
			Type: genai.TypeArray,
			Items: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"name":            {Type: genai.TypeString},
					"evidence_source": {Type: genai.TypeString},
					"evidence_note":   {Type: genai.TypeString},
				},
				Required: []string{"name", "evidence_source", "evidence_note"},
			},
		},
		"notable_details": {Type: genai.TypeArray, Items: &genai.Schema{Type: genai.TypeString}},
		"sources":         {Type: genai.TypeArray, Items: &genai.Schema{Type: genai.TypeString}},
	},
	Required: []string{"query", "entity_type", "species", "headline", "functional_role", "disease_associations", "notable_details", "sources"},
}

// Generate runs one generation call. structured constrains the model to
// the fixed summary schema.
func (g *GeminiGenerator) Generate(ctx context.Context, system, user string, structured bool) (string, error) {
	config := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(system, genai.RoleUser),
	}
	if structured {
		config.ResponseMIMEType = "application/json"
		config.ResponseSchema = structuredSchema
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(user), config)
	if err != nil {
		return "", fmt.Errorf("generating summary: %w", err)
	}
	return resp.Text(), nil
}
