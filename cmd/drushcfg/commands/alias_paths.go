package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/thoreinstein/drushcfg/internal/paths"
)

var (
	aliasPathsJSON     bool
	aliasPathsExisting bool
)

func init() {
	aliasPathsCmd.Flags().BoolVar(&aliasPathsJSON, "json", false, "Output in JSON format")
	aliasPathsCmd.Flags().BoolVar(&aliasPathsExisting, "existing", false, "only list directories that exist")
	rootCmd.AddCommand(aliasPathsCmd)
}

var aliasPathsCmd = &cobra.Command{
	Use:   "alias-paths",
	Short: "List the directories searched for site aliases",
	Long: `List, in search order, the directories drush looks in for site alias
files: the sites directory next to every site drush directory, --alias-path
entries, drush.paths.alias-path from configuration and the composer root's
drush/sites directory.

Directories are listed whether or not they exist, unless --existing is set.`,
	Example: `  drushcfg alias-paths --root /var/www/web
  drushcfg alias-paths --alias-path ~/aliases --existing

See Also: drushcfg sources`,
	Args: cobra.NoArgs,
	RunE: runAliasPaths,
}

func runAliasPaths(cmd *cobra.Command, _ []string) error {
	res, err := buildLocator(cmd)
	if err != nil {
		return err
	}
	if _, err := res.mergedConfig(); err != nil {
		return err
	}

	list := res.locator.GetSiteAliasPaths(currentSettings().AliasPaths, res.env)
	if aliasPathsExisting {
		list = existingDirs(list)
	}
	return writeAliasPaths(os.Stdout, list, aliasPathsJSON)
}

func existingDirs(list []string) []string {
	fs := afero.NewOsFs()
	out := make([]string, 0, len(list))
	for _, dir := range list {
		if paths.IsDir(fs, dir) {
			out = append(out, dir)
		}
	}
	return out
}

// writeAliasPaths allows injecting a writer for testing.
func writeAliasPaths(w io.Writer, list []string, asJSON bool) error {
	if asJSON {
		if list == nil {
			list = []string{}
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(list)
	}
	for _, dir := range list {
		fmt.Fprintln(w, dir)
	}
	return nil
}
