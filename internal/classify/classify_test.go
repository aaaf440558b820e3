// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package classify

import (
	"testing"

	"github.com/pdiddy/bioscout/pkg/types"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		wantKind types.EntityKind
		wantID   string
	}{
		{"lowercase rsid", "rs7412", types.KindSNP, "rs7412"},
		{"uppercase rsid", "RS429358", types.KindSNP, "rs429358"},
		{"mixed case rsid", "Rs1042522", types.KindSNP, "rs1042522"},
		{"rsid with surrounding space", "  rs7412  ", types.KindSNP, "rs7412"},
		{"bare rs is a gene", "rs", types.KindGene, "rs"},
		{"bare RS is a gene", "RS", types.KindGene, "RS"},
		{"rs with trailing letters is a gene", "rs123x", types.KindGene, "rs123x"},
		{"gene symbol", "TP53", types.KindGene, "TP53"},
		{"gene symbol with digits", "BRCA1", types.KindGene, "BRCA1"},
		{"gene symbol with underscore", "HLA_DRB1", types.KindGene, "HLA_DRB1"},
		{"gene keeps case", "Tp53", types.KindGene, "Tp53"},
		{"whitespace inside", "tp53 gene", types.KindUnknown, "tp53 gene"},
		{"punctuation", "TP-53", types.KindUnknown, "TP-53"},
		{"empty", "", types.KindUnknown, ""},
		{"only whitespace", "   ", types.KindUnknown, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			kind, id := Classify(tt.raw)
			if kind != tt.wantKind {
				t.Errorf("Classify(%q) kind = %v, want %v", tt.raw, kind, tt.wantKind)
			}
			if id != tt.wantID {
				t.Errorf("Classify(%q) id = %q, want %q", tt.raw, id, tt.wantID)
			}
		})
	}
}

func TestEntityKindString(t *testing.T) {
	if types.KindGene.String() != "gene" || types.KindSNP.String() != "snp" || types.KindUnknown.String() != "unknown" {
		t.Errorf("EntityKind.String() mapping is wrong")
	}
}
