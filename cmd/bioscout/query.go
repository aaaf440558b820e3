package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/bioscout/internal/collect"
	"github.com/pdiddy/bioscout/internal/sources"
	"github.com/pdiddy/bioscout/internal/synthesize"
	"github.com/pdiddy/bioscout/pkg/types"
)

var queryCmd = &cobra.Command{
	Use:   "query <gene-symbol|rsID>",
	Short: "Collect and summarize data for a gene symbol or rsID",
	Long: `Query classifies the identifier (rs-prefixed numbers are SNPs, everything
else a gene symbol), fetches the relevant sources concurrently, and prints
a summary grounded only in what the sources returned. Without a
gemini-api-key secret the collected data is returned without a summary.`,
	Args: cobra.ExactArgs(1),
	RunE: runQuery,
}

func init() {
	queryCmd.Flags().Bool("planner", false, "let the model choose which sources to query")
	queryCmd.Flags().Bool("structured", false, "produce the machine-readable JSON summary instead of the sectioned report")
	queryCmd.Flags().Bool("json", false, "print the full result bundle as JSON")
	queryCmd.Flags().String("out", "", "write the result bundle to a YAML file")
	queryCmd.Flags().Bool("no-synthesis", false, "skip synthesis and return collected data only")
	queryCmd.Flags().String("model", "", "Gemini model identifier (default gemini-2.5-flash)")
	queryCmd.Flags().Int("max-variants", 0, "cap on relevance-filtered overlap variants (default 100)")

	rootCmd.AddCommand(queryCmd)
}

func runQuery(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	cfg := pipelineConfig(cmd)

	// No client-level Timeout: it would cap every request at one value and
	// override the longer per-source deadlines. Each call gets its own
	// deadline from the source's configured timeout.
	client := &http.Client{}
	registry := sources.Registry(cfg.Sources, cfg.Filter, client)

	var planner collect.Planner
	if usePlanner, _ := cmd.Flags().GetBool("planner"); usePlanner {
		if cfg.Planner.APIKey == "" {
			fmt.Fprintln(os.Stderr, "warning: no gemini-api-key available, falling back to the fixed pipeline")
		} else {
			p, err := collect.NewGeminiPlanner(ctx, cfg.Planner)
			if err != nil {
				return err
			}
			planner = p
		}
	}

	var gen synthesize.Generator
	if noSynthesis, _ := cmd.Flags().GetBool("no-synthesis"); !noSynthesis {
		if cfg.Synthesis.APIKey == "" {
			fmt.Fprintln(os.Stderr, "warning: no gemini-api-key available, returning collected data without a summary")
		} else {
			g, err := synthesize.NewGeminiGenerator(ctx, cfg.Synthesis)
			if err != nil {
				return err
			}
			gen = g
		}
	}

	o := collect.New(registry, planner, cfg.Planner.MaxRounds, os.Stderr)
	result, err := o.Run(ctx, args[0], gen, cfg.Synthesis)
	if err != nil {
		return err
	}

	if out, _ := cmd.Flags().GetString("out"); out != "" {
		data, err := yaml.Marshal(result)
		if err != nil {
			return fmt.Errorf("marshaling result: %w", err)
		}
		if err := os.WriteFile(out, data, 0o644); err != nil {
			return fmt.Errorf("writing %s: %w", out, err)
		}
		fmt.Fprintln(os.Stderr, "Wrote", out)
	}

	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		data, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return fmt.Errorf("marshaling result: %w", err)
		}
		fmt.Println(string(data))
		return nil
	}

	printResult(os.Stdout, result)
	return nil
}

// pipelineConfig layers viper settings and flags over the defaults. Flags
// win over config file and environment; secrets fill the API keys last.
func pipelineConfig(cmd *cobra.Command) types.PipelineConfig {
	cfg := types.DefaultConfig()

	if ua := viper.GetString("user_agent"); ua != "" {
		cfg.Sources.UserAgent = ua
	}
	if t := viper.GetDuration("timeout"); t > 0 {
		cfg.Sources.Timeout = t
	}
	if m := viper.GetString("model"); m != "" {
		cfg.Planner.Model = m
		cfg.Synthesis.Model = m
	}
	if r := viper.GetInt("max_rounds"); r > 0 {
		cfg.Planner.MaxRounds = r
	}

	if model, _ := cmd.Flags().GetString("model"); model != "" {
		cfg.Planner.Model = model
		cfg.Synthesis.Model = model
	}
	if mv, _ := cmd.Flags().GetInt("max-variants"); mv > 0 {
		cfg.Filter.MaxVariants = mv
	}
	structured, _ := cmd.Flags().GetBool("structured")
	cfg.Synthesis.Structured = structured

	key := secretDefault("gemini-api-key", viper.GetString("gemini_api_key"))
	cfg.Planner.APIKey = key
	cfg.Synthesis.APIKey = key
	cfg.Sources.NCBIAPIKey = secretDefault("ncbi-api-key", viper.GetString("ncbi_api_key"))

	return cfg
}

func printResult(w io.Writer, result types.ResultBundle) {
	fmt.Fprintf(w, "Query: %s (%s)\n", result.Query, result.Kind)
	if len(result.SourcesUsed) > 0 {
		fmt.Fprintf(w, "Sources: %s\n", strings.Join(result.SourcesUsed, ", "))
	}

	var absents []string
	for name, rec := range result.RawData {
		if rec.IsAbsent() {
			absents = append(absents, fmt.Sprintf("%s (%s)", name, rec.Absent.Reason))
		}
	}
	sort.Strings(absents)
	if len(absents) > 0 {
		fmt.Fprintf(w, "Unavailable: %s\n", strings.Join(absents, ", "))
	}

	switch {
	case result.Structured != nil:
		printStructured(w, result.Structured)
	case result.Summary != "":
		fmt.Fprintln(w)
		fmt.Fprintln(w, result.Summary)
	case result.SynthesisErr != "":
		fmt.Fprintln(w, "Summary unavailable:", result.SynthesisErr)
	}
}

func printStructured(w io.Writer, s *types.StructuredSummary) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, s.Headline)
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Functional role:", s.FunctionalRole)
	if len(s.DiseaseAssociations) > 0 {
		fmt.Fprintln(w, "Disease associations:")
		for _, d := range s.DiseaseAssociations {
			fmt.Fprintf(w, "  - %s (%s): %s\n", d.Name, d.EvidenceSource, d.EvidenceNote)
		}
	}
	if len(s.NotableDetails) > 0 {
		fmt.Fprintln(w, "Notable details:")
		for _, n := range s.NotableDetails {
			fmt.Fprintln(w, "  -", n)
		}
	}
	if len(s.Sources) > 0 {
		fmt.Fprintln(w, "Cited sources:", strings.Join(s.Sources, ", "))
	}
}
