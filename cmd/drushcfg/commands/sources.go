package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/thoreinstein/drushcfg/internal/config"
)

var sourcesJSON bool

func init() {
	sourcesCmd.Flags().BoolVar(&sourcesJSON, "json", false, "Output in JSON format")
	rootCmd.AddCommand(sourcesCmd)
}

var sourcesCmd = &cobra.Command{
	Use:   "sources",
	Short: "List configuration sources and their files",
	Long: `List every configuration source in precedence order, lowest first,
with the candidate files it resolved to and which of them were loaded.

Sources skipped by --local are listed as inactive.`,
	Example: `  drushcfg sources
  drushcfg sources --local --variant ci
  drushcfg sources --json

See Also: drushcfg provenance`,
	Args: cobra.NoArgs,
	RunE: runSources,
}

func runSources(cmd *cobra.Command, _ []string) error {
	res, err := buildLocator(cmd)
	if err != nil {
		return err
	}
	if _, err := res.mergedConfig(); err != nil {
		return err
	}
	return writeSources(os.Stdout, res.locator.Describe(), sourcesJSON)
}

// writeSources allows injecting a writer for testing.
func writeSources(w io.Writer, infos []config.SourceInfo, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(infos)
	}

	if len(infos) == 0 {
		fmt.Fprintln(w, "No configuration sources registered")
		return nil
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
		boldStyle.Sprint("SOURCE"),
		boldStyle.Sprint("RANK"),
		boldStyle.Sprint("SCOPE"),
		boldStyle.Sprint("STATUS"),
		boldStyle.Sprint("FILES"))

	for _, info := range infos {
		status := "active"
		if !info.Active {
			status = dimStyle.Sprint("inactive")
		}
		fmt.Fprintf(tw, "%s\t%d\t%s\t%s\t%s\n",
			keyStyle.Sprint(info.Name),
			info.Rank,
			info.Scope,
			status,
			describeFiles(info))
	}
	return tw.Flush()
}

// describeFiles renders a source's candidates, marking the loaded ones.
func describeFiles(info config.SourceInfo) string {
	if len(info.Paths) == 0 {
		if len(info.Loaded) > 0 {
			return strings.Join(info.Loaded, ", ")
		}
		return dimStyle.Sprint("-")
	}

	loaded := make(map[string]bool, len(info.Loaded))
	for _, p := range info.Loaded {
		loaded[p] = true
	}

	parts := make([]string, 0, len(info.Paths)+len(info.Loaded))
	for _, p := range info.Paths {
		if loaded[p] {
			parts = append(parts, p+" (loaded)")
			delete(loaded, p)
			continue
		}
		parts = append(parts, dimStyle.Sprint(p))
	}
	// Included files are loaded without being candidates.
	for _, p := range info.Loaded {
		if loaded[p] {
			parts = append(parts, p+" (included)")
		}
	}
	return strings.Join(parts, ", ")
}
