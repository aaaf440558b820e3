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

// uniProtBase is the UniProtKB search endpoint. Declared as a var so tests
// can substitute an httptest server.
var uniProtBase = "https://rest.uniprot.org/uniprotkb"

// UniProtAdapter fetches the best protein entry for a human gene symbol.
type UniProtAdapter struct {
	Client *http.Client
	Config types.SourceConfig
}

func (a *UniProtAdapter) Name() string { return "uniprot" }

func (a *UniProtAdapter) Kinds() []types.EntityKind { return geneKind }

func (a *UniProtAdapter) Fetch(ctx context.Context, id string, _ types.EntityKind) types.SourceRecord {
	params := url.Values{
		"query":  {fmt.Sprintf("gene:%s AND organism_id:9606", id)},
		"format": {"json"},
		"size":   {"1"},
	}

	var body map[string]any
	err := httputil.GetJSON(ctx, a.Client, uniProtBase+"/search?"+params.Encode(),
		nil, a.Config.UserAgent, a.Config.TimeoutOr(a.Config.UniProtTimeout), &body)
	if err != nil {
		return absent(a.Name(), err)
	}

	entry, ok := jsonutil.FirstMap(body["results"])
	if !ok {
		return notFound(a.Name(), fmt.Sprintf("no UniProt entry for gene %q", id))
	}
	return types.Record(a.Name(), entry)
}
