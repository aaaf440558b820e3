// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package variants ranks and bounds genomic variant overlap results.
package variants

import (
	"strings"

	"github.com/pdiddy/bioscout/pkg/types"
)

// DefaultMax bounds the filter output so downstream synthesis input stays
// manageable.
const DefaultMax = 100

// ImpactfulConsequences is the fixed vocabulary of functionally impactful
// consequence terms. A variant with any other consequence and no pathogenic
// tag is dropped.
var ImpactfulConsequences = map[string]bool{
	"stop_gained":              true,
	"stop_lost":                true,
	"start_lost":               true,
	"frameshift_variant":       true,
	"splice_acceptor_variant":  true,
	"splice_donor_variant":     true,
	"transcript_ablation":      true,
	"transcript_amplification": true,
	"missense_variant":         true,
	"inframe_insertion":        true,
	"inframe_deletion":         true,
	"coding_sequence_variant":  true,
	"protein_altering_variant": true,
}

// pathogenicLabels are the clinical-significance values that take strict
// priority over consequence-based relevance. Matched case-insensitively.
var pathogenicLabels = map[string]bool{
	"pathogenic":        true,
	"likely_pathogenic": true,
}

// Filter reduces a variant overlap list to the relevant subset: variants
// tagged pathogenic or likely_pathogenic first, then variants with an
// impactful consequence, each bucket in input order, truncated to max
// entries overall (DefaultMax when max is not positive). Pure and
// deterministic; running it on its own output is a no-op.
func Filter(in []types.VariantRecord, max int) []types.VariantRecord {
	if max <= 0 {
		max = DefaultMax
	}
	if len(in) == 0 {
		return nil
	}

	var pathogenic, impactful []types.VariantRecord
	for _, v := range in {
		if IsPathogenic(v) {
			pathogenic = append(pathogenic, v)
			continue
		}
		if ImpactfulConsequences[v.ConsequenceType] {
			impactful = append(impactful, v)
		}
	}

	out := append(pathogenic, impactful...)
	if len(out) > max {
		out = out[:max]
	}
	return out
}

// IsPathogenic reports whether any of the variant's clinical-significance
// labels is pathogenic or likely_pathogenic.
func IsPathogenic(v types.VariantRecord) bool {
	for _, sig := range v.ClinicalSignificance {
		if pathogenicLabels[strings.ToLower(sig)] {
			return true
		}
	}
	return false
}
