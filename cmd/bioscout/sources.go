package main

import (
	"fmt"
	"net/http"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/pdiddy/bioscout/internal/sources"
	"github.com/pdiddy/bioscout/pkg/types"
)

var sourcesCmd = &cobra.Command{
	Use:   "sources",
	Short: "List the configured data source adapters",
	Run: func(cmd *cobra.Command, args []string) {
		cfg := types.DefaultConfig()
		reg := sources.Registry(cfg.Sources, cfg.Filter, http.DefaultClient)

		tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "NAME\tKINDS\tSERVICE")
		for _, a := range reg {
			kinds := make([]string, 0, 2)
			for _, k := range a.Kinds() {
				kinds = append(kinds, k.String())
			}
			display := types.DisplayNames([]string{a.Name()})
			fmt.Fprintf(tw, "%s\t%s\t%s\n", a.Name(), strings.Join(kinds, ","), display[0])
		}
		tw.Flush()
	},
}

func init() {
	rootCmd.AddCommand(sourcesCmd)
}
