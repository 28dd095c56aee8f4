package main

import (
	"errors"
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/kailas-cloud/stranalyzer"
	redisdb "github.com/kailas-cloud/stranalyzer/internal/db/redis"
	"github.com/kailas-cloud/stranalyzer/internal/domain/search/filter"
	"github.com/kailas-cloud/stranalyzer/internal/domain/search/nlquery"
	entryrepo "github.com/kailas-cloud/stranalyzer/internal/repository/entry"
	"github.com/kailas-cloud/stranalyzer/internal/version"
)

func newAnalyzeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "analyze <value>",
		Short: "Print the computed properties of a string as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return printJSON(cmd.OutOrStdout(), stranalyzer.Analyze(args[0]))
		},
	}
}

// parseOutput is the JSON printed by the parse command.
type parseOutput struct {
	Query     string     `json:"query"`
	Filters   filter.Set `json:"filters"`
	Predicate string     `json:"predicate"`
}

func newParseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "parse <query>",
		Short: "Translate a natural-language query into filters and a search predicate",
		Long: `Translate a natural-language query and print the filter set plus the
FT.SEARCH predicate it renders to. Fails with the error kind
(empty, unparseable, conflict, number) when the query cannot be translated.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			set, err := nlquery.Parse(args[0])
			if err != nil {
				var pe *nlquery.ParseError
				if errors.As(err, &pe) {
					return fmt.Errorf("%s: %w", pe.Kind, err)
				}
				return err
			}

			expr, err := entryrepo.StoreExpression(filter.BuildQuery(set))
			if err != nil {
				return fmt.Errorf("render predicate: %w", err)
			}
			predicate, err := redisdb.RenderQuery(expr)
			if err != nil {
				return fmt.Errorf("render predicate: %w", err)
			}

			return printJSON(cmd.OutOrStdout(), parseOutput{
				Query:     args[0],
				Filters:   set,
				Predicate: predicate,
			})
		},
	}
}

// filterInfo describes one filter the store understands.
type filterInfo struct {
	Key  filter.Key `json:"key"`
	Type string     `json:"type"`
}

func newRulesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rules",
		Short: "List the supported filters and the natural-language rules in evaluation order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			keys := filter.Vocabulary()
			filters := make([]filterInfo, len(keys))
			for i, k := range keys {
				filters[i] = filterInfo{Key: k, Type: k.ValueKind().String()}
			}
			return printJSON(cmd.OutOrStdout(), map[string]any{
				"filters": filters,
				"rules":   nlquery.Rules(),
			})
		},
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show strctl version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "strctl %s\nGo: %s %s/%s\n",
				version.String(), runtime.Version(), runtime.GOOS, runtime.GOARCH)
		},
	}
}
