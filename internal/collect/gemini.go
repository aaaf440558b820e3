// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package collect

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"text/template"

	"google.golang.org/genai"

	"github.com/pdiddy/bioscout/pkg/types"
)

// plannerPromptTmpl is the system instruction for the collection planner.
// It binds the model to function calls until done, then to one completion
// object.
var plannerPromptTmpl = template.Must(template.New("planner").Parse(`You are a bioinformatic data collector. Use the provided functions to gather ALL raw data for the {{.Kind}} "{{.Query}}".
- Respond ONLY with function calls until you have everything you can get.
- Call each relevant function at most once.
- When done, return ONE JSON object: {"query":"{{.Query}}","type":"{{.Kind}}","sources":{...}} and STOP.`))

// GeminiPlanner drives collection with a Gemini model through function
// calling. It is stateless: each Plan call replays the prior rounds from
// the request.
type GeminiPlanner struct {
	client *genai.Client
	model  string
}

// NewGeminiPlanner builds a planner from the configured credential.
func NewGeminiPlanner(ctx context.Context, cfg types.PlannerConfig) (*GeminiPlanner, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("planner requires a Gemini API key")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: cfg.APIKey})
	if err != nil {
		return nil, fmt.Errorf("creating Gemini client: %w", err)
	}
	return &GeminiPlanner{client: client, model: cfg.Model}, nil
}

// Plan runs one planning round against the model.
func (p *GeminiPlanner) Plan(ctx context.Context, req PlanRequest) (PlanResponse, error) {
	system, err := renderPlannerPrompt(req.Query, req.Kind)
	if err != nil {
		return PlanResponse{}, fmt.Errorf("rendering planner prompt: %w", err)
	}

	config := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(system, genai.RoleUser),
		Tools:             []*genai.Tool{{FunctionDeclarations: declarationsToGenai(req.Tools)}},
	}

	resp, err := p.client.Models.GenerateContent(ctx, p.model, transcript(req), config)
	if err != nil {
		return PlanResponse{}, fmt.Errorf("planner round: %w", err)
	}

	var out PlanResponse
	for _, fc := range resp.FunctionCalls() {
		out.Calls = append(out.Calls, ToolCall{Name: fc.Name, Args: fc.Args})
	}
	if len(out.Calls) == 0 {
		out.FinalText = strings.TrimSpace(resp.Text())
	}
	return out, nil
}

// transcript rebuilds the conversation: the user ask, then each prior
// round as a model turn of function calls followed by a user turn of
// function responses.
func transcript(req PlanRequest) []*genai.Content {
	contents := []*genai.Content{
		genai.NewContentFromText(fmt.Sprintf("Collect all data for %s", req.Query), genai.RoleUser),
	}

	for _, round := range req.Rounds {
		var callParts []*genai.Part
		for _, call := range round.Calls {
			callParts = append(callParts, &genai.Part{
				FunctionCall: &genai.FunctionCall{Name: call.Name, Args: call.Args},
			})
		}
		contents = append(contents, &genai.Content{Role: genai.RoleModel, Parts: callParts})

		var respParts []*genai.Part
		for _, res := range round.Results {
			respParts = append(respParts, genai.NewPartFromFunctionResponse(res.Name, map[string]any{
				"content": res.JSON,
			}))
		}
		contents = append(contents, &genai.Content{Role: genai.RoleUser, Parts: respParts})
	}

	return contents
}

func declarationsToGenai(decls []ToolDecl) []*genai.FunctionDeclaration {
	out := make([]*genai.FunctionDeclaration, len(decls))
	for i, d := range decls {
		out[i] = &genai.FunctionDeclaration{
			Name:        d.Name,
			Description: d.Description,
			Parameters: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					d.Param: {Type: genai.TypeString},
				},
				Required: []string{d.Param},
			},
		}
	}
	return out
}

func renderPlannerPrompt(query string, kind types.EntityKind) (string, error) {
	var buf bytes.Buffer
	err := plannerPromptTmpl.Execute(&buf, struct {
		Query string
		Kind  string
	}{Query: query, Kind: kind.String()})
	if err != nil {
		return "", err
	}
	return buf.String(), nil
}
