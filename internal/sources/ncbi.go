// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package sources

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/pdiddy/bioscout/internal/httputil"
	"github.com/pdiddy/bioscout/internal/jsonutil"
	"github.com/pdiddy/bioscout/pkg/types"
)

// ncbiEUtilsBase is the NCBI E-utilities root. Declared as a var so tests
// can substitute an httptest server.
var ncbiEUtilsBase = "https://eutils.ncbi.nlm.nih.gov/entrez/eutils"

// NCBIAdapter serves both kinds through E-utilities: genes go through a
// search-then-summary call pair against the gene database, SNPs go straight
// to an esummary against dbSNP using the bare numeric id.
type NCBIAdapter struct {
	Client *http.Client
	Config types.SourceConfig
}

func (a *NCBIAdapter) Name() string { return "ncbi" }

func (a *NCBIAdapter) Kinds() []types.EntityKind { return anyKind }

func (a *NCBIAdapter) Fetch(ctx context.Context, id string, kind types.EntityKind) types.SourceRecord {
	if kind == types.KindSNP {
		return a.fetchSNP(ctx, id)
	}
	return a.fetchGene(ctx, id)
}

func (a *NCBIAdapter) fetchGene(ctx context.Context, symbol string) types.SourceRecord {
	searchParams := url.Values{
		"db":      {"gene"},
		"term":    {fmt.Sprintf("%s[Gene Name] AND Homo sapiens[Organism]", symbol)},
		"retmode": {"json"},
		"retmax":  {"1"},
	}
	a.addKey(searchParams)

	var searchResp map[string]any
	err := httputil.GetJSON(ctx, a.Client, ncbiEUtilsBase+"/esearch.fcgi?"+searchParams.Encode(),
		nil, a.Config.UserAgent, a.Config.TimeoutOr(a.Config.NCBITimeout), &searchResp)
	if err != nil {
		return absent(a.Name(), err)
	}

	result, _ := searchResp["esearchresult"].(map[string]any)
	idlist := jsonutil.Strings(result["idlist"])
	if len(idlist) == 0 {
		return notFound(a.Name(), fmt.Sprintf("no NCBI gene id for %q", symbol))
	}

	return a.summary(ctx, "gene", idlist[0])
}

func (a *NCBIAdapter) fetchSNP(ctx context.Context, rsid string) types.SourceRecord {
	// dbSNP wants the bare cluster number as the id path value.
	numeric := strings.TrimPrefix(strings.ToLower(rsid), "rs")
	return a.summary(ctx, "snp", numeric)
}

// summary fetches esummary for one id and unwraps result[id].
func (a *NCBIAdapter) summary(ctx context.Context, db, id string) types.SourceRecord {
	params := url.Values{
		"db":      {db},
		"id":      {id},
		"retmode": {"json"},
	}
	a.addKey(params)

	var resp map[string]any
	err := httputil.GetJSON(ctx, a.Client, ncbiEUtilsBase+"/esummary.fcgi?"+params.Encode(),
		nil, a.Config.UserAgent, a.Config.TimeoutOr(a.Config.NCBITimeout), &resp)
	if err != nil {
		return absent(a.Name(), err)
	}

	result, _ := resp["result"].(map[string]any)
	entry, ok := result[id].(map[string]any)
	if !ok {
		return notFound(a.Name(), fmt.Sprintf("esummary had no %s entry for id %s", db, id))
	}
	return types.Record(a.Name(), entry)
}

func (a *NCBIAdapter) addKey(params url.Values) {
	if a.Config.NCBIAPIKey != "" {
		params.Set("api_key", a.Config.NCBIAPIKey)
	}
}
