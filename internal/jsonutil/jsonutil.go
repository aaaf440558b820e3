// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package jsonutil normalizes shape-shifting JSON values. The upstream
// bioinformatics APIs return nested blocks that may be a mapping, a list of
// mappings, or missing entirely, and may change shape between calls; every
// adapter goes through these helpers instead of branching per call site.
package jsonutil

import "sort"

// AsList normalizes a decoded JSON value to a list. nil yields nil, a list
// yields itself, anything else yields a single-element list.
func AsList(v any) []any {
	switch t := v.(type) {
	case nil:
		return nil
	case []any:
		return t
	default:
		return []any{v}
	}
}

// FirstMap returns the first mapping found in AsList(v).
func FirstMap(v any) (map[string]any, bool) {
	for _, item := range AsList(v) {
		if m, ok := item.(map[string]any); ok {
			return m, true
		}
	}
	return nil, false
}

// String returns m[key] as a string, or "" when missing or not a string.
func String(m map[string]any, key string) string {
	if m == nil {
		return ""
	}
	s, _ := m[key].(string)
	return s
}

// Number returns m[key] as a float64. encoding/json decodes all JSON
// numbers to float64, so this covers integer fields too.
func Number(m map[string]any, key string) (float64, bool) {
	if m == nil {
		return 0, false
	}
	n, ok := m[key].(float64)
	return n, ok
}

// Strings flattens a scalar or list value to its string elements,
// skipping anything that is not a string.
func Strings(v any) []string {
	var out []string
	for _, item := range AsList(v) {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

// SortedSet returns the distinct values of in, sorted. Empty strings are
// dropped.
func SortedSet(in []string) []string {
	seen := make(map[string]bool, len(in))
	var out []string
	for _, s := range in {
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}
