// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package sources

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/pdiddy/bioscout/internal/httputil"
	"github.com/pdiddy/bioscout/internal/jsonutil"
	"github.com/pdiddy/bioscout/internal/variants"
	"github.com/pdiddy/bioscout/pkg/types"
)

// ensemblBase is the Ensembl REST API root. Declared as a var so tests can
// substitute an httptest server.
var ensemblBase = "https://rest.ensembl.org"

// ensemblHeaders is the fixed header set Ensembl requires for JSON output.
var ensemblHeaders = map[string]string{"Content-Type": "application/json"}

// EnsemblGeneAdapter resolves a gene symbol to its genomic region and
// stable id via the Ensembl lookup endpoint.
type EnsemblGeneAdapter struct {
	Client *http.Client
	Config types.SourceConfig
}

func (a *EnsemblGeneAdapter) Name() string { return "ensembl_gene" }

func (a *EnsemblGeneAdapter) Kinds() []types.EntityKind { return geneKind }

func (a *EnsemblGeneAdapter) Fetch(ctx context.Context, id string, _ types.EntityKind) types.SourceRecord {
	gene, err := ensemblLookup(ctx, a.Client, a.Config, id)
	if err != nil {
		return absent(a.Name(), err)
	}
	return types.Record(a.Name(), gene)
}

// ensemblLookup fetches /lookup/symbol/homo_sapiens/{symbol}. Ensembl
// answers 400 for unknown symbols, which absent() maps to not_found.
func ensemblLookup(ctx context.Context, client *http.Client, cfg types.SourceConfig, symbol string) (map[string]any, error) {
	var gene map[string]any
	err := httputil.GetJSON(ctx, client,
		ensemblBase+"/lookup/symbol/homo_sapiens/"+url.PathEscape(symbol),
		ensemblHeaders, cfg.UserAgent, cfg.TimeoutOr(cfg.EnsemblTimeout), &gene)
	if err != nil {
		return nil, err
	}
	return gene, nil
}

// EnsemblOverlapAdapter resolves a gene symbol and fetches the variants
// overlapping its region, reduced to the relevant subset. This is the one
// adapter that depends on another source call (the gene lookup) before its
// own.
type EnsemblOverlapAdapter struct {
	Client *http.Client
	Config types.SourceConfig

	// MaxVariants and PreCap mirror FilterConfig; zero values fall back to
	// the package defaults.
	MaxVariants int
	PreCap      int
}

func (a *EnsemblOverlapAdapter) Name() string { return "ensembl_overlap" }

func (a *EnsemblOverlapAdapter) Kinds() []types.EntityKind { return geneKind }

func (a *EnsemblOverlapAdapter) Fetch(ctx context.Context, id string, _ types.EntityKind) types.SourceRecord {
	gene, err := ensemblLookup(ctx, a.Client, a.Config, id)
	if err != nil {
		return absent(a.Name(), err)
	}
	stableID := jsonutil.String(gene, "id")
	if stableID == "" {
		return notFound(a.Name(), fmt.Sprintf("lookup for %q returned no stable id", id))
	}

	var raw []map[string]any
	err = httputil.GetJSON(ctx, a.Client,
		ensemblBase+"/overlap/id/"+url.PathEscape(stableID)+"?feature=variation",
		ensemblHeaders, a.Config.UserAgent, a.Config.TimeoutOr(a.Config.EnsemblOverlapTimeout), &raw)
	if err != nil {
		return absent(a.Name(), err)
	}

	filtered := variants.Filter(toVariantRecords(raw), a.MaxVariants)
	if a.PreCap > 0 && len(filtered) > a.PreCap {
		filtered = filtered[:a.PreCap]
	}

	return types.Record(a.Name(), map[string]any{
		"gene":     gene,
		"variants": filtered,
	})
}

// toVariantRecords lifts raw overlap entries into VariantRecords, keeping
// every positional field in the pass-through map.
func toVariantRecords(raw []map[string]any) []types.VariantRecord {
	out := make([]types.VariantRecord, 0, len(raw))
	for _, entry := range raw {
		out = append(out, types.VariantRecord{
			ConsequenceType:      jsonutil.String(entry, "consequence_type"),
			ClinicalSignificance: jsonutil.Strings(entry["clinical_significance"]),
			Fields:               entry,
		})
	}
	return out
}

// EnsemblVEPAdapter fetches predicted consequences for an rsID from the
// Ensembl Variant Effect Predictor.
type EnsemblVEPAdapter struct {
	Client *http.Client
	Config types.SourceConfig
}

func (a *EnsemblVEPAdapter) Name() string { return "ensembl_vep" }

func (a *EnsemblVEPAdapter) Kinds() []types.EntityKind { return snpKind }

func (a *EnsemblVEPAdapter) Fetch(ctx context.Context, id string, _ types.EntityKind) types.SourceRecord {
	var body []any
	err := httputil.GetJSON(ctx, a.Client,
		ensemblBase+"/vep/homo_sapiens/id/"+url.PathEscape(id),
		ensemblHeaders, a.Config.UserAgent, a.Config.TimeoutOr(a.Config.EnsemblTimeout), &body)
	if err != nil {
		return absent(a.Name(), err)
	}
	if len(body) == 0 {
		return notFound(a.Name(), fmt.Sprintf("VEP has no consequences for %q", id))
	}
	return types.Record(a.Name(), body)
}
