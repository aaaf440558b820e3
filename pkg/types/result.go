// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// DiseaseAssociation is one disease link in a structured summary.
type DiseaseAssociation struct {
	Name           string `json:"name" yaml:"name"`
	EvidenceSource string `json:"evidence_source" yaml:"evidence_source"`
	EvidenceNote   string `json:"evidence_note" yaml:"evidence_note"`
}

// StructuredSummary is the machine-readable synthesis output. The field set
// is fixed; the generator must fill unknown values with the literal
// string "unknown" rather than omitting or inventing them.
type StructuredSummary struct {
	Query               string               `json:"query" yaml:"query"`
	EntityType          string               `json:"entity_type" yaml:"entity_type"`
	Species             string               `json:"species" yaml:"species"`
	Headline            string               `json:"headline" yaml:"headline"`
	FunctionalRole      string               `json:"functional_role" yaml:"functional_role"`
	DiseaseAssociations []DiseaseAssociation `json:"disease_associations" yaml:"disease_associations"`
	NotableDetails      []string             `json:"notable_details" yaml:"notable_details"`
	Sources             []string             `json:"sources" yaml:"sources"`
}

// ResultBundle is what the presentation layer receives for one query.
type ResultBundle struct {
	Query       string                  `json:"query" yaml:"query"`
	Kind        string                  `json:"entity_kind" yaml:"entity_kind"`
	SourcesUsed []string                `json:"data_sources_used" yaml:"data_sources_used"`
	RawData     map[string]SourceRecord `json:"raw_data" yaml:"raw_data"`
	Summary     string                  `json:"summary,omitempty" yaml:"summary,omitempty"`
	Structured  *StructuredSummary      `json:"structured,omitempty" yaml:"structured,omitempty"`

	// SynthesisErr is set when collection succeeded but the summary could
	// not be produced; RawData is still populated in that case.
	SynthesisErr string `json:"synthesis_error,omitempty" yaml:"synthesis_error,omitempty"`
}

// sourceDisplayNames maps adapter names to the upstream service names shown
// to users.
var sourceDisplayNames = map[string]string{
	"mygene":          "MyGene.info",
	"myvariant":       "MyVariant.info (ClinVar)",
	"ensembl_gene":    "Ensembl",
	"ensembl_overlap": "Ensembl",
	"ensembl_vep":     "Ensembl VEP",
	"clinicaltables":  "NIH Clinical Tables",
	"ncbi":            "NCBI",
	"uniprot":         "UniProt",
}

// DisplayNames maps adapter names to display names, passing unmapped names
// through unchanged.
func DisplayNames(sources []string) []string {
	out := make([]string, 0, len(sources))
	for _, s := range sources {
		if name, ok := sourceDisplayNames[s]; ok {
			out = append(out, name)
			continue
		}
		out = append(out, s)
	}
	return out
}
