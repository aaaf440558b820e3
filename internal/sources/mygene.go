// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package sources

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/pdiddy/bioscout/internal/httputil"
	"github.com/pdiddy/bioscout/internal/jsonutil"
	"github.com/pdiddy/bioscout/pkg/types"
)

// myGeneBase is the MyGene.info API root. Declared as a var so tests can
// substitute an httptest server.
var myGeneBase = "https://mygene.info/v3"

const (
	myGeneQueryFields = "entrezgene,ensembl.gene,symbol,name"
	myGeneFetchFields = "symbol,name,summary,genomic_pos_hg38,pathway,clinvar,alias"
)

// MyGeneAdapter resolves a human gene symbol through MyGene.info: a query
// call to find the gene id, then a fetch call for the full annotation.
type MyGeneAdapter struct {
	Client *http.Client
	Config types.SourceConfig
}

func (a *MyGeneAdapter) Name() string { return "mygene" }

func (a *MyGeneAdapter) Kinds() []types.EntityKind { return geneKind }

func (a *MyGeneAdapter) Fetch(ctx context.Context, id string, _ types.EntityKind) types.SourceRecord {
	params := url.Values{
		"q":       {id},
		"species": {"human"},
		"size":    {"1"},
		"fields":  {myGeneQueryFields},
	}

	var queryResp map[string]any
	err := httputil.GetJSON(ctx, a.Client, myGeneBase+"/query?"+params.Encode(),
		nil, a.Config.UserAgent, a.Config.TimeoutOr(a.Config.MyGeneTimeout), &queryResp)
	if err != nil {
		return absent(a.Name(), err)
	}

	hit, ok := jsonutil.FirstMap(queryResp["hits"])
	if !ok {
		return notFound(a.Name(), fmt.Sprintf("no gene matching %q", id))
	}
	geneID := jsonutil.String(hit, "_id")
	if geneID == "" {
		if n, isNum := jsonutil.Number(hit, "_id"); isNum {
			geneID = fmt.Sprintf("%.0f", n)
		}
	}
	if geneID == "" {
		return notFound(a.Name(), "query hit carried no gene id")
	}

	fetchParams := url.Values{"fields": {myGeneFetchFields}}
	var gene map[string]any
	err = httputil.GetJSON(ctx, a.Client, myGeneBase+"/gene/"+url.PathEscape(geneID)+"?"+fetchParams.Encode(),
		nil, a.Config.UserAgent, a.Config.TimeoutOr(a.Config.MyGeneTimeout), &gene)
	if err != nil {
		return absent(a.Name(), err)
	}

	return types.Record(a.Name(), normalizeMyGene(gene))
}

// normalizeMyGene maps the annotation to a fixed field set. The genomic
// position and ensembl blocks are list-valued when a gene has multiple
// placements; only the first element is kept.
func normalizeMyGene(gene map[string]any) map[string]any {
	out := map[string]any{
		"symbol": jsonutil.String(gene, "symbol"),
		"name":   jsonutil.String(gene, "name"),
	}

	if summary := jsonutil.String(gene, "summary"); summary != "" {
		out["summary"] = summary
	}
	if aliases := jsonutil.Strings(gene["alias"]); len(aliases) > 0 {
		out["aliases"] = aliases
	}

	if entrez, ok := jsonutil.Number(gene, "entrezgene"); ok {
		out["entrez_id"] = int64(entrez)
	} else if s := jsonutil.String(gene, "entrezgene"); s != "" {
		out["entrez_id"] = s
	}

	if ens, ok := jsonutil.FirstMap(gene["ensembl"]); ok {
		if g := jsonutil.String(ens, "gene"); g != "" {
			out["ensembl_id"] = g
		}
	}

	if pos, ok := jsonutil.FirstMap(gene["genomic_pos_hg38"]); ok {
		out["genomic_position"] = map[string]any{
			"chr":    jsonutil.String(pos, "chr"),
			"start":  pos["start"],
			"end":    pos["end"],
			"strand": pos["strand"],
		}
	}

	if clinvar, ok := jsonutil.FirstMap(gene["clinvar"]); ok {
		out["clinvar"] = clinvar
	}
	if pathway, ok := gene["pathway"].(map[string]any); ok {
		out["pathway"] = pathway
	}

	return out
}
