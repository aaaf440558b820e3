// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package classify decides whether free-text input names a gene or an SNP.
package classify

import (
	"regexp"
	"strings"

	"github.com/pdiddy/bioscout/pkg/types"
)

// rsPattern matches reference SNP cluster ids: "rs7412", "RS429358". The
// digits are required; a bare "rs" is a valid gene-symbol prefix, not an
// rsID.
var rsPattern = regexp.MustCompile(`^(?i)rs[0-9]+$`)

// symbolPattern matches gene symbols: alphanumerics and underscores, no
// whitespace ("TP53", "HLA_DRB1").
var symbolPattern = regexp.MustCompile(`^[A-Za-z0-9_]+$`)

// Classify trims the input and returns its entity kind plus the normalized
// identifier. rsIDs are lowercased so downstream path segments are uniform;
// gene symbols keep their case. Anything that is neither yields
// types.KindUnknown, which callers must treat as a terminal rejection.
func Classify(raw string) (types.EntityKind, string) {
	id := strings.TrimSpace(raw)
	if id == "" {
		return types.KindUnknown, ""
	}

	if rsPattern.MatchString(id) {
		return types.KindSNP, strings.ToLower(id)
	}

	if symbolPattern.MatchString(id) {
		return types.KindGene, id
	}

	return types.KindUnknown, id
}
