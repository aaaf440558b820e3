// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// HTTPConfig holds shared HTTP settings used by components that make
// network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "bioscout/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// SourceConfig holds per-adapter settings. Each upstream API gets its own
// timeout; the overlap endpoint returns large payloads and needs more room.
type SourceConfig struct {
	HTTPConfig `yaml:",inline"`

	// MyGeneTimeout through UniProtTimeout override the shared Timeout for
	// individual sources when non-zero.
	MyGeneTimeout         time.Duration `json:"mygene_timeout" yaml:"mygene_timeout"`
	MyVariantTimeout      time.Duration `json:"myvariant_timeout" yaml:"myvariant_timeout"`
	EnsemblTimeout        time.Duration `json:"ensembl_timeout" yaml:"ensembl_timeout"`
	EnsemblOverlapTimeout time.Duration `json:"ensembl_overlap_timeout" yaml:"ensembl_overlap_timeout"`
	ClinicalTablesTimeout time.Duration `json:"clinicaltables_timeout" yaml:"clinicaltables_timeout"`
	NCBITimeout           time.Duration `json:"ncbi_timeout" yaml:"ncbi_timeout"`
	UniProtTimeout        time.Duration `json:"uniprot_timeout" yaml:"uniprot_timeout"`

	// NCBIAPIKey raises NCBI E-utilities rate limits when set.
	NCBIAPIKey string `json:"ncbi_api_key,omitempty" yaml:"ncbi_api_key,omitempty"`
}

// TimeoutOr returns t, falling back to the shared Timeout when t is zero.
func (c SourceConfig) TimeoutOr(t time.Duration) time.Duration {
	if t > 0 {
		return t
	}
	return c.Timeout
}

// FilterConfig holds settings for the variant relevance filter.
type FilterConfig struct {
	// MaxVariants caps the filter output (default 100).
	MaxVariants int `json:"max_variants" yaml:"max_variants"`

	// OverlapPreCap bounds how many filtered overlap variants are kept in
	// the bundle (default 10).
	OverlapPreCap int `json:"overlap_pre_cap" yaml:"overlap_pre_cap"`
}

// AIConfig holds shared settings for components that call the Gemini API.
type AIConfig struct {
	// Model is the Gemini model identifier (e.g. "gemini-2.5-flash").
	Model string `json:"model" yaml:"model"`

	// APIKey is the authentication key for the Gemini API. When empty the
	// planner strategy and synthesis are unavailable; collection still runs.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`
}

// PlannerConfig holds settings for the planner-driven collection strategy.
type PlannerConfig struct {
	AIConfig `yaml:",inline"`

	// MaxRounds caps the planner loop (default 3). The loop terminates
	// after this many rounds no matter what the planner asks for.
	MaxRounds int `json:"max_rounds" yaml:"max_rounds"`
}

// SynthesisConfig holds settings for the synthesis stage.
type SynthesisConfig struct {
	AIConfig `yaml:",inline"`

	// Structured selects the machine-readable JSON summary instead of the
	// sectioned report.
	Structured bool `json:"structured" yaml:"structured"`
}

// PipelineConfig groups all stage configurations.
type PipelineConfig struct {
	Sources   SourceConfig    `json:"sources" yaml:"sources"`
	Filter    FilterConfig    `json:"filter" yaml:"filter"`
	Planner   PlannerConfig   `json:"planner" yaml:"planner"`
	Synthesis SynthesisConfig `json:"synthesis" yaml:"synthesis"`
}

// DefaultConfig returns the pipeline defaults. Per-source timeouts follow
// the upstream services' typical latency.
func DefaultConfig() PipelineConfig {
	return PipelineConfig{
		Sources: SourceConfig{
			HTTPConfig: HTTPConfig{
				Timeout:   10 * time.Second,
				UserAgent: "bioscout/0.1",
			},
			MyGeneTimeout:         10 * time.Second,
			MyVariantTimeout:      10 * time.Second,
			EnsemblTimeout:        10 * time.Second,
			EnsemblOverlapTimeout: 15 * time.Second,
			ClinicalTablesTimeout: 5 * time.Second,
			NCBITimeout:           10 * time.Second,
			UniProtTimeout:        10 * time.Second,
		},
		Filter: FilterConfig{
			MaxVariants:   100,
			OverlapPreCap: 10,
		},
		Planner: PlannerConfig{
			AIConfig:  AIConfig{Model: "gemini-2.5-flash"},
			MaxRounds: 3,
		},
		Synthesis: SynthesisConfig{
			AIConfig: AIConfig{Model: "gemini-2.5-flash"},
		},
	}
}
