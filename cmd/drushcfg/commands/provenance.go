package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/thoreinstein/drushcfg/internal/config"
	"github.com/thoreinstein/drushcfg/internal/errors"
	"github.com/thoreinstein/drushcfg/internal/redact"
)

var (
	provenanceJSON        bool
	provenanceShowSecrets bool
)

func init() {
	provenanceCmd.Flags().BoolVar(&provenanceJSON, "json", false, "Output in JSON format")
	provenanceCmd.Flags().BoolVar(&provenanceShowSecrets, "show-secrets", false, "reveal values that look like secrets")
	rootCmd.AddCommand(provenanceCmd)
}

var provenanceCmd = &cobra.Command{
	Use:   "provenance [key]",
	Short: "Show which source and file supplied each value",
	Long: `Show the origin of every effective configuration value.

With a key, only leaves at or below that key are shown.`,
	Example: `  # Everything
  drushcfg provenance

  # One subtree
  drushcfg provenance drush.paths

See Also: drushcfg sources, drushcfg config get`,
	Args: cobra.MaximumNArgs(1),
	RunE: runProvenance,
}

// provenanceEntry is one leaf in JSON output.
type provenanceEntry struct {
	Key    string `json:"key"`
	Value  any    `json:"value"`
	Source string `json:"source"`
	File   string `json:"file,omitempty"`
}

func runProvenance(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	var prefix string
	if len(args) == 1 {
		prefix = args[0]
	}
	return writeProvenance(os.Stdout, cfg, prefix)
}

// writeProvenance allows injecting a writer for testing.
func writeProvenance(w io.Writer, cfg *config.Config, prefix string) error {
	entries := provenanceEntries(cfg, prefix)
	if prefix != "" && len(entries) == 0 {
		return errors.NewUserError(errors.Wrapf(errors.ErrNotFound, "key %q", prefix),
			"Run 'drushcfg provenance' to see every key")
	}

	if provenanceJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(entries)
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n",
		boldStyle.Sprint("KEY"),
		boldStyle.Sprint("VALUE"),
		boldStyle.Sprint("SOURCE"),
		boldStyle.Sprint("FILE"))
	for _, e := range entries {
		file := e.File
		if file == "" {
			file = dimStyle.Sprint("-")
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n",
			keyStyle.Sprint(e.Key),
			truncate(formatValue(e.Value), 60),
			e.Source,
			file)
	}
	return tw.Flush()
}

// provenanceEntries lists the leaves equal to prefix or below it, in key
// order. An empty prefix selects everything.
func provenanceEntries(cfg *config.Config, prefix string) []provenanceEntry {
	entries := []provenanceEntry{}
	for _, key := range cfg.Keys() {
		if prefix != "" && key != prefix && !hasKeyPrefix(key, prefix) {
			continue
		}
		origin, _ := cfg.Origin(key)
		value := cfg.Get(key)
		if !provenanceShowSecrets {
			value = redact.Value(key, value)
		}
		entries = append(entries, provenanceEntry{
			Key:    key,
			Value:  value,
			Source: origin.Source,
			File:   origin.File,
		})
	}
	return entries
}

func hasKeyPrefix(key, prefix string) bool {
	return len(key) > len(prefix) && key[len(prefix)] == '.' && key[:len(prefix)] == prefix
}
