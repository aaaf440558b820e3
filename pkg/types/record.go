// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines the shared data model for the collection pipeline.
package types

// EntityKind classifies a query as a gene symbol or an SNP identifier.
type EntityKind int

const (
	KindUnknown EntityKind = iota
	KindGene
	KindSNP
)

func (k EntityKind) String() string {
	switch k {
	case KindGene:
		return "gene"
	case KindSNP:
		return "snp"
	default:
		return "unknown"
	}
}

// AbsentReason explains why a source yielded no record.
type AbsentReason string

const (
	ReasonNotFound  AbsentReason = "not_found"
	ReasonTransport AbsentReason = "transport_error"
	ReasonMalformed AbsentReason = "malformed_response"
	ReasonTimeout   AbsentReason = "timeout"
)

// Absent marks a source that produced no usable data.
type Absent struct {
	Reason AbsentReason `json:"reason" yaml:"reason"`
	Detail string       `json:"detail,omitempty" yaml:"detail,omitempty"`
}

// SourceRecord is the atomic output of one adapter call: either a payload
// or an Absent marker, never both and never neither.
type SourceRecord struct {
	Source  string  `json:"source" yaml:"source"`
	Payload any     `json:"payload,omitempty" yaml:"payload,omitempty"`
	Absent  *Absent `json:"absent,omitempty" yaml:"absent,omitempty"`
}

// Record returns a populated SourceRecord for the given source.
func Record(source string, payload any) SourceRecord {
	return SourceRecord{Source: source, Payload: payload}
}

// AbsentRecord returns a SourceRecord marking the source as absent.
func AbsentRecord(source string, reason AbsentReason, detail string) SourceRecord {
	return SourceRecord{Source: source, Absent: &Absent{Reason: reason, Detail: detail}}
}

// IsAbsent reports whether the record carries no payload.
func (r SourceRecord) IsAbsent() bool { return r.Absent != nil }

// CollectedBundle aggregates the per-source records for one query. Sources
// are keyed by adapter name; Order preserves insertion order so output is
// stable regardless of which adapter finished first.
type CollectedBundle struct {
	Query   string
	Kind    EntityKind
	Sources map[string]SourceRecord
	Order   []string
}

// NewBundle returns an empty bundle for the classified query.
func NewBundle(query string, kind EntityKind) *CollectedBundle {
	return &CollectedBundle{
		Query:   query,
		Kind:    kind,
		Sources: make(map[string]SourceRecord),
	}
}

// Add stores a record, appending the source to Order on first sight.
func (b *CollectedBundle) Add(rec SourceRecord) {
	if _, seen := b.Sources[rec.Source]; !seen {
		b.Order = append(b.Order, rec.Source)
	}
	b.Sources[rec.Source] = rec
}

// Payloads returns the non-absent payloads keyed by source name.
func (b *CollectedBundle) Payloads() map[string]any {
	out := make(map[string]any, len(b.Sources))
	for name, rec := range b.Sources {
		if !rec.IsAbsent() {
			out[name] = rec.Payload
		}
	}
	return out
}

// VariantRecord is one genomic variant overlap entry. ConsequenceType and
// ClinicalSignificance drive relevance filtering; Fields carries the
// source's positional data through untouched.
type VariantRecord struct {
	ConsequenceType      string         `json:"consequence_type" yaml:"consequence_type"`
	ClinicalSignificance []string       `json:"clinical_significance,omitempty" yaml:"clinical_significance,omitempty"`
	Fields               map[string]any `json:"fields,omitempty" yaml:"fields,omitempty"`
}
