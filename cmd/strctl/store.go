package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kailas-cloud/stranalyzer"
)

var errContainsOneChar = errors.New("--contains takes exactly one character")

func newAddCmd(sf *storeFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "add <value>",
		Short: "Analyze a string and store it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := sf.connect()
			if err != nil {
				return err
			}
			defer c.Close()

			e, err := c.Analyze(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), e)
		},
	}
}

func newGetCmd(sf *storeFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "get <value>",
		Short: "Show a stored string",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := sf.connect()
			if err != nil {
				return err
			}
			defer c.Close()

			e, err := c.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), e)
		},
	}
}

func newDeleteCmd(sf *storeFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <value>",
		Short: "Delete a stored string",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := sf.connect()
			if err != nil {
				return err
			}
			defer c.Close()

			return c.Delete(cmd.Context(), args[0])
		},
	}
}

// pageFlags are shared by list and query.
type pageFlags struct {
	limit  int
	cursor string
}

func (p *pageFlags) register(cmd *cobra.Command) {
	cmd.Flags().IntVar(&p.limit, "limit", 0, "page size (0 uses the default)")
	cmd.Flags().StringVar(&p.cursor, "cursor", "", "cursor returned by the previous page")
}

func (p *pageFlags) page() stranalyzer.Page {
	return stranalyzer.Page{Cursor: p.cursor, Limit: p.limit}
}

// filterFlags are shared by list and count.
type filterFlags struct {
	palindrome         bool
	minLen, maxLen, wc int
	contains           string
}

func (ff *filterFlags) register(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&ff.palindrome, "palindrome", false, "only palindromes (or non-palindromes with =false)")
	cmd.Flags().IntVar(&ff.minLen, "min-length", 0, "minimum length in characters")
	cmd.Flags().IntVar(&ff.maxLen, "max-length", 0, "maximum length in characters")
	cmd.Flags().IntVar(&ff.wc, "word-count", 0, "exact number of words")
	cmd.Flags().StringVar(&ff.contains, "contains", "", "single character the string must contain")
}

// filters keeps only the flags set on the command line.
func (ff *filterFlags) filters(cmd *cobra.Command) (stranalyzer.Filters, error) {
	var f stranalyzer.Filters
	flags := cmd.Flags()
	if flags.Changed("palindrome") {
		f.IsPalindrome = &ff.palindrome
	}
	if flags.Changed("min-length") {
		f.MinLength = &ff.minLen
	}
	if flags.Changed("max-length") {
		f.MaxLength = &ff.maxLen
	}
	if flags.Changed("word-count") {
		f.WordCount = &ff.wc
	}
	if flags.Changed("contains") {
		r := []rune(ff.contains)
		if len(r) != 1 {
			return f, errContainsOneChar
		}
		f.ContainsCharacter = &r[0]
	}
	return f, nil
}

func newListCmd(sf *storeFlags) *cobra.Command {
	var (
		pf pageFlags
		ff filterFlags
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List stored strings by explicit filters",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			f, err := ff.filters(cmd)
			if err != nil {
				return err
			}

			c, err := sf.connect()
			if err != nil {
				return err
			}
			defer c.Close()

			res, err := c.List(cmd.Context(), f, pf.page())
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), res)
		},
	}
	ff.register(cmd)
	pf.register(cmd)
	return cmd
}

func newCountCmd(sf *storeFlags) *cobra.Command {
	var ff filterFlags
	cmd := &cobra.Command{
		Use:   "count",
		Short: "Count stored strings matching explicit filters",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			f, err := ff.filters(cmd)
			if err != nil {
				return err
			}

			c, err := sf.connect()
			if err != nil {
				return err
			}
			defer c.Close()

			n, err := c.Count(cmd.Context(), f)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), map[string]any{"count": n, "filters_applied": f})
		},
	}
	ff.register(cmd)
	return cmd
}

func newReindexCmd(sf *storeFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "reindex",
		Short: "Drop and rebuild the search index",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := sf.connect()
			if err != nil {
				return err
			}
			defer c.Close()

			if err := c.Reindex(cmd.Context()); err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), "index rebuilt")
			return err
		},
	}
}

func newQueryCmd(sf *storeFlags) *cobra.Command {
	var pf pageFlags
	cmd := &cobra.Command{
		Use:   "query <natural language query>",
		Short: "List stored strings matching a natural-language query",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := sf.connect()
			if err != nil {
				return err
			}
			defer c.Close()

			res, err := c.Query(cmd.Context(), args[0], pf.page())
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), res)
		},
	}
	pf.register(cmd)
	return cmd
}
