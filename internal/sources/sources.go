// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package sources adapts public bioinformatics REST APIs to one record
// shape. Each adapter issues a single call (or a short fixed sequence),
// normalizes the payload, and converts every failure into a typed absent
// record. An adapter never aborts a collection.
package sources

import (
	"context"
	"errors"
	"net/http"

	"github.com/pdiddy/bioscout/internal/httputil"
	"github.com/pdiddy/bioscout/pkg/types"
)

// Adapter fetches one source for a classified identifier. Implementations
// must be safe for concurrent use and must return an absent record rather
// than an error: a SourceRecord is the atomic, total outcome of one call.
type Adapter interface {
	Name() string
	Kinds() []types.EntityKind
	Fetch(ctx context.Context, id string, kind types.EntityKind) types.SourceRecord
}

// Registry returns all adapters in presentation order. The same client is
// shared; per-source timeouts come from cfg and the overlap variant caps
// from filter.
func Registry(cfg types.SourceConfig, filter types.FilterConfig, client *http.Client) []Adapter {
	return []Adapter{
		&MyGeneAdapter{Client: client, Config: cfg},
		&EnsemblGeneAdapter{Client: client, Config: cfg},
		&EnsemblOverlapAdapter{Client: client, Config: cfg, MaxVariants: filter.MaxVariants, PreCap: filter.OverlapPreCap},
		&NCBIAdapter{Client: client, Config: cfg},
		&UniProtAdapter{Client: client, Config: cfg},
		&ClinicalTablesAdapter{Client: client, Config: cfg},
		&EnsemblVEPAdapter{Client: client, Config: cfg},
		&MyVariantAdapter{Client: client, Config: cfg},
	}
}

// ForKind filters adapters to those serving the given entity kind,
// preserving registry order.
func ForKind(adapters []Adapter, kind types.EntityKind) []Adapter {
	var out []Adapter
	for _, a := range adapters {
		for _, k := range a.Kinds() {
			if k == kind {
				out = append(out, a)
				break
			}
		}
	}
	return out
}

// absent maps a fetch error to the right absent reason. Not-found status
// codes (Ensembl answers 400 for unknown symbols, most others 404) mean the
// entity is unknown to the source; everything else non-2xx is a transport
// problem.
func absent(source string, err error) types.SourceRecord {
	var se *httputil.StatusError
	var de *httputil.DecodeError
	switch {
	case httputil.IsTimeout(err):
		return types.AbsentRecord(source, types.ReasonTimeout, err.Error())
	case errors.As(err, &se):
		if se.Code == http.StatusNotFound || se.Code == http.StatusBadRequest {
			return types.AbsentRecord(source, types.ReasonNotFound, err.Error())
		}
		return types.AbsentRecord(source, types.ReasonTransport, err.Error())
	case errors.As(err, &de):
		return types.AbsentRecord(source, types.ReasonMalformed, err.Error())
	default:
		return types.AbsentRecord(source, types.ReasonTransport, err.Error())
	}
}

// notFound is shorthand for the semantic "the source answered, but has no
// entry for this identifier".
func notFound(source, detail string) types.SourceRecord {
	return types.AbsentRecord(source, types.ReasonNotFound, detail)
}

// geneKind and snpKind are the common Kinds() values.
var (
	geneKind = []types.EntityKind{types.KindGene}
	snpKind  = []types.EntityKind{types.KindSNP}
	anyKind  = []types.EntityKind{types.KindGene, types.KindSNP}
)
