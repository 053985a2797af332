package config

import (
	"bytes"
	"io/fs"
	"slices"
	"strings"

	"github.com/joho/godotenv"

	"github.com/thoreinstein/drushcfg/internal/errors"
	"github.com/thoreinstein/drushcfg/pkg/fileutil"
)

// NormalizePrefix returns prefix upper-cased with exactly one trailing
// underscore. An empty prefix stays empty, which disables environment
// variable overrides.
func NormalizePrefix(prefix string) string {
	prefix = strings.TrimRight(prefix, "_")
	if prefix == "" {
		return ""
	}
	return strings.ToUpper(prefix) + "_"
}

// envTree converts KEY=value pairs carrying prefix into a nested tree:
// PREFIX_FOO_BAR=x becomes {foo: {bar: x}}. Names are applied in sorted
// order so that PREFIX_FOO_BAR overrides a conflicting PREFIX_FOO.
func envTree(prefix string, vars map[string]string) map[string]any {
	tree := map[string]any{}
	if prefix == "" {
		return tree
	}

	names := make([]string, 0, len(vars))
	for name := range vars {
		if strings.HasPrefix(name, prefix) {
			names = append(names, name)
		}
	}
	slices.Sort(names)

	for _, name := range names {
		var segs []string
		for _, s := range strings.Split(strings.ToLower(name[len(prefix):]), "_") {
			if s != "" {
				segs = append(segs, s)
			}
		}
		if len(segs) == 0 {
			continue
		}
		setPath(tree, segs, vars[name])
	}
	return tree
}

// environMap parses os.Environ style entries.
func environMap(environ []string) map[string]string {
	vars := make(map[string]string, len(environ))
	for _, kv := range environ {
		name, value, ok := strings.Cut(kv, "=")
		if !ok || name == "" {
			continue
		}
		vars[name] = value
	}
	return vars
}

// AddEnvVars registers the envvars source from environ (os.Environ
// format). Only variables starting with the locator's prefix are used.
// Calling it again replaces the previous process layer.
func (l *Locator) AddEnvVars(environ []string) {
	if !l.mutable("AddEnvVars") || l.envPrefix == "" {
		return
	}
	src := l.register(SourceEnvVars, RankEnvVars, ScopeRuntime)
	layer := LoadedFile{Data: envTree(l.envPrefix, environMap(environ))}

	src.layers = slices.DeleteFunc(src.layers, func(f LoadedFile) bool { return f.Path == "" })
	src.layers = append(src.layers, layer)
	l.logger.Debug("registered environment variables", "prefix", l.envPrefix, "keys", countLeaves(layer.Data))
}

// AddDotEnv adds dotenv files to the envvars source. Later files override
// earlier ones and the process environment overrides them all. Missing
// files are skipped; a malformed file returns a *ParseError.
func (l *Locator) AddDotEnv(files ...string) error {
	if !l.mutable("AddDotEnv") || l.envPrefix == "" {
		return nil
	}
	src := l.register(SourceEnvVars, RankEnvVars, ScopeRuntime)

	for _, file := range files {
		if file == "" {
			continue
		}
		data, err := fileutil.ReadFileWithLimit(l.fs, file)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				l.logger.Debug("dotenv file not found", "path", file)
				continue
			}
			return &ParseError{Source: SourceEnvVars, Path: file, Err: err}
		}
		vars, err := godotenv.Parse(bytes.NewReader(data))
		if err != nil {
			return &ParseError{Source: SourceEnvVars, Path: file, Err: err}
		}

		layer := LoadedFile{Path: file, Data: envTree(l.envPrefix, vars)}
		at := slices.IndexFunc(src.layers, func(f LoadedFile) bool { return f.Path == "" })
		if at < 0 {
			at = len(src.layers)
		}
		src.layers = slices.Insert(src.layers, at, layer)
		l.logger.Debug("registered dotenv file", "path", file, "keys", countLeaves(layer.Data))
	}
	return nil
}

func countLeaves(tree map[string]any) int {
	n := 0
	for _, v := range tree {
		if sub, ok := v.(map[string]any); ok && len(sub) > 0 {
			n += countLeaves(sub)
			continue
		}
		n++
	}
	return n
}
