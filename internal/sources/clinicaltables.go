// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package sources

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/pdiddy/bioscout/internal/httputil"
	"github.com/pdiddy/bioscout/pkg/types"
)

// clinicalTablesBase is the NIH Clinical Tables SNP search endpoint.
// Declared as a var so tests can substitute an httptest server.
var clinicalTablesBase = "https://clinicaltables.nlm.nih.gov/api/snps/v3/search"

// ClinicalTablesAdapter does a lightweight rsID lookup against the NIH
// Clinical Tables service. The response is positional: a JSON array whose
// fourth element is a table of rows [rsid, chromosome, position, alleles,
// gene]. The service returns near-matches, so only the row whose first
// column equals the queried id counts.
type ClinicalTablesAdapter struct {
	Client *http.Client
	Config types.SourceConfig
}

func (a *ClinicalTablesAdapter) Name() string { return "clinicaltables" }

func (a *ClinicalTablesAdapter) Kinds() []types.EntityKind { return snpKind }

func (a *ClinicalTablesAdapter) Fetch(ctx context.Context, id string, _ types.EntityKind) types.SourceRecord {
	params := url.Values{"terms": {id}}

	var body []any
	err := httputil.GetJSON(ctx, a.Client, clinicalTablesBase+"?"+params.Encode(),
		nil, a.Config.UserAgent, a.Config.TimeoutOr(a.Config.ClinicalTablesTimeout), &body)
	if err != nil {
		return absent(a.Name(), err)
	}

	if len(body) < 4 {
		return notFound(a.Name(), "response carried no result table")
	}
	table, ok := body[3].([]any)
	if !ok {
		return notFound(a.Name(), "response carried no result table")
	}

	for _, rowVal := range table {
		row, ok := rowVal.([]any)
		if !ok || len(row) < 4 {
			continue
		}
		if col(row, 0) != id {
			continue
		}
		payload := map[string]any{
			"rsid":       col(row, 0),
			"chromosome": col(row, 1),
			"position":   col(row, 2),
			"alleles":    col(row, 3),
		}
		if g := col(row, 4); g != "" {
			payload["gene"] = g
		}
		return types.Record(a.Name(), payload)
	}

	return notFound(a.Name(), fmt.Sprintf("no exact row for %q", id))
}

// col returns row[i] as a string, tolerating short rows and non-string
// cells.
func col(row []any, i int) string {
	if i >= len(row) {
		return ""
	}
	s, _ := row[i].(string)
	return s
}
