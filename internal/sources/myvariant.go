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

// myVariantBase is the MyVariant.info API root. Declared as a var so tests
// can substitute an httptest server.
var myVariantBase = "https://myvariant.info/v1"

const myVariantFields = "clinvar,dbnsfp,cadd,cosmic,gnomad,dbsnp,hgvs,gene,refseq,ensembl"

// MyVariantAdapter queries MyVariant.info for an rsID (variant endpoint) or
// a gene symbol (query endpoint over the dbsnp.gene field; the v1 API has
// no per-gene resource). The API may answer with a single object, a list of
// candidate matches, or an empty list.
type MyVariantAdapter struct {
	Client *http.Client
	Config types.SourceConfig
}

func (a *MyVariantAdapter) Name() string { return "myvariant" }

func (a *MyVariantAdapter) Kinds() []types.EntityKind { return anyKind }

func (a *MyVariantAdapter) Fetch(ctx context.Context, id string, kind types.EntityKind) types.SourceRecord {
	params := url.Values{
		"fields":   {myVariantFields},
		"dotfield": {"true"},
		"size":     {"5"},
	}

	var body any
	if kind == types.KindGene {
		params.Set("q", "dbsnp.gene:"+id)
		var queryResp map[string]any
		err := httputil.GetJSON(ctx, a.Client, myVariantBase+"/query?"+params.Encode(),
			nil, a.Config.UserAgent, a.Config.TimeoutOr(a.Config.MyVariantTimeout), &queryResp)
		if err != nil {
			return absent(a.Name(), err)
		}
		body = queryResp["hits"]
	} else {
		reqURL := fmt.Sprintf("%s/variant/%s?%s", myVariantBase, url.PathEscape(id), params.Encode())
		err := httputil.GetJSON(ctx, a.Client, reqURL, nil, a.Config.UserAgent, a.Config.TimeoutOr(a.Config.MyVariantTimeout), &body)
		if err != nil {
			return absent(a.Name(), err)
		}
	}

	// Ambiguous matches come back as a list; take the best (first) hit.
	// An empty list means the id is unknown.
	hit, ok := jsonutil.FirstMap(body)
	if !ok {
		return notFound(a.Name(), fmt.Sprintf("no variant entry for %q", id))
	}

	return types.Record(a.Name(), normalizeMyVariant(hit))
}

// normalizeMyVariant keeps the hit as-is (dotfield output is already flat)
// and adds flattened clinical-significance labels and a deduplicated,
// sorted set of ClinVar condition names. The clinvar.rcv block may be a
// mapping, a list of mappings, or missing.
func normalizeMyVariant(hit map[string]any) map[string]any {
	out := make(map[string]any, len(hit)+2)
	for k, v := range hit {
		out[k] = v
	}

	var sigs, conditions []string
	for _, item := range jsonutil.AsList(hit["clinvar.rcv"]) {
		rcv, ok := item.(map[string]any)
		if !ok {
			continue
		}
		sigs = append(sigs, jsonutil.Strings(rcv["clinical_significance"])...)
		for _, c := range jsonutil.AsList(rcv["conditions"]) {
			if cm, ok := c.(map[string]any); ok {
				conditions = append(conditions, jsonutil.String(cm, "name"))
			}
		}
	}
	// With dotfield=true the rcv block may instead arrive pre-flattened.
	sigs = append(sigs, jsonutil.Strings(hit["clinvar.rcv.clinical_significance"])...)
	conditions = append(conditions, jsonutil.Strings(hit["clinvar.rcv.conditions.name"])...)

	if set := jsonutil.SortedSet(sigs); len(set) > 0 {
		out["clinical_significance"] = set
	}
	if set := jsonutil.SortedSet(conditions); len(set) > 0 {
		out["clinvar_conditions"] = set
	}

	return out
}
