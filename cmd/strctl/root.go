package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/kailas-cloud/stranalyzer"
)

// envPrefix lets every persistent flag come from the environment, e.g. STRCTL_ADDR
// or STRCTL_PASSWORD. A flag given on the command line wins.
const envPrefix = "STRCTL"

// storeFlags select the database used by the store-backed commands.
type storeFlags struct {
	v *viper.Viper
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "strctl",
		Short: "Analyze strings and query a stranalyzer store",
		Long: `strctl computes string properties and translates natural-language filters.

Offline commands:
  analyze  - print the properties of a string
  parse    - show how a natural-language query is translated
  rules    - list supported filters and query rules

Store commands (need --addr or STRCTL_ADDR):
  add, get, delete, list, query, count, reindex

Examples:
  strctl analyze "Racecar"
  strctl parse "single word palindromic strings"
  strctl --addr localhost:6379 query "strings longer than 10 characters"`,
		SilenceUsage: true,
	}

	pf := root.PersistentFlags()
	pf.String("driver", "redis", "database driver: redis or valkey")
	pf.String("addr", "", "database address host:port")
	pf.String("username", "", "database ACL user")
	pf.String("password", "", "database password")
	pf.String("prefix", "", "key prefix (default \"stranalyzer:\")")
	pf.Duration("timeout", 5*time.Second, "database readiness timeout")

	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	if err := v.BindPFlags(pf); err != nil {
		panic(err)
	}
	sf := &storeFlags{v: v}

	root.AddCommand(
		newAnalyzeCmd(),
		newParseCmd(),
		newRulesCmd(),
		newVersionCmd(),
		newAddCmd(sf),
		newGetCmd(sf),
		newDeleteCmd(sf),
		newListCmd(sf),
		newQueryCmd(sf),
		newCountCmd(sf),
		newReindexCmd(sf),
	)
	return root
}

// connect opens a client for the store-backed commands.
func (f *storeFlags) connect() (*stranalyzer.Client, error) {
	addr, password := f.v.GetString("addr"), f.v.GetString("password")
	if addr == "" {
		return nil, fmt.Errorf("--addr is required for this command")
	}
	opts := []stranalyzer.Option{
		stranalyzer.WithReadinessTimeout(f.v.GetDuration("timeout")),
		stranalyzer.WithUsername(f.v.GetString("username")),
	}
	switch driver := f.v.GetString("driver"); driver {
	case "redis":
		opts = append(opts, stranalyzer.WithRedis(addr, password))
	case "valkey":
		opts = append(opts, stranalyzer.WithValkey(addr, password))
	default:
		return nil, fmt.Errorf("unknown driver %q (want redis or valkey)", driver)
	}
	if prefix := f.v.GetString("prefix"); prefix != "" {
		opts = append(opts, stranalyzer.WithKeyPrefix(prefix))
	}
	return stranalyzer.New(opts...)
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	return nil
}
