package config

import (
	"cmp"
	"context"
	"log/slog"
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/afero"

	"github.com/thoreinstein/drushcfg/internal/errors"
	"github.com/thoreinstein/drushcfg/internal/logging"
	"github.com/thoreinstein/drushcfg/internal/paths"
)

// IncludeKey names the file-local list of extra configuration files.
const IncludeKey = "drush.paths.config"

// fileCache remembers parsed files by canonical path. A nil entry records
// a missing file.
type fileCache map[string]map[string]any

// merger folds sources into a Config.
type merger struct {
	fs      afero.Fs
	loader  Loader
	env     Environment
	variant string
	cache   fileCache
	logger  *slog.Logger

	cfg     *Config
	visited map[string]bool
}

// sortSources orders sources by rank, keeping registration order between
// equal ranks.
func sortSources(sources []*Source) []*Source {
	ordered := slices.Clone(sources)
	slices.SortStableFunc(ordered, func(a, b *Source) int {
		if c := cmp.Compare(a.Rank, b.Rank); c != 0 {
			return c
		}
		return cmp.Compare(a.seq, b.seq)
	})
	return ordered
}

// merge folds sources lowest rank first. The accumulator is rebuilt on
// every call; file contents come from the cache when already read.
func (m *merger) merge(sources []*Source) (*Config, error) {
	m.cfg = newConfig()
	if m.cache == nil {
		m.cache = fileCache{}
	}

	for _, src := range sortSources(sources) {
		if src.Synthetic() {
			src.Files = slices.Clone(src.layers)
			for _, layer := range src.layers {
				m.apply(layer.Data, Origin{Source: src.Name, File: layer.Path})
			}
			src.State = StateLoaded
			continue
		}

		src.Files = nil
		m.visited = map[string]bool{}
		for _, p := range src.Paths {
			if err := m.loadFile(src, p); err != nil {
				return nil, err
			}
		}
		src.State = StateLoaded
		m.logger.Debug("merged config source",
			"source", src.Name,
			"rank", src.Rank,
			"files", len(src.Files))
	}
	return m.cfg, nil
}

// loadFile loads one candidate of src, merges it, then follows its
// includes. Each path loads at most once per source.
func (m *merger) loadFile(src *Source, path string) error {
	if m.visited[path] {
		return nil
	}
	m.visited[path] = true

	data, err := m.read(path)
	if err != nil {
		var perr *ParseError
		if errors.As(err, &perr) {
			return &ParseError{Source: src.Name, Path: perr.Path, Err: perr.Err}
		}
		m.logger.Warn("skipping unreadable config file",
			"source", src.Name,
			"path", path,
			"error", err)
		return nil
	}
	if data == nil {
		m.logger.Log(context.Background(), logging.LevelTrace, "config file not found", "source", src.Name, "path", path)
		return nil
	}

	src.Files = append(src.Files, LoadedFile{Path: path, Data: data})
	m.apply(data, Origin{Source: src.Name, File: path})
	m.logger.Debug("loaded config file", "source", src.Name, "path", path)

	for _, inc := range m.includes(data, path) {
		if err := m.loadFile(src, inc); err != nil {
			return err
		}
	}
	return nil
}

func (m *merger) read(path string) (map[string]any, error) {
	if data, ok := m.cache[path]; ok {
		return data, nil
	}
	data, err := m.loader.Load(path)
	if err != nil {
		return nil, err
	}
	m.cache[path] = data
	return data, nil
}

// includes returns the candidate files named by the IncludeKey of a loaded
// file. Relative entries resolve against the including file's directory; a
// directory contributes its drush.yml and variant file.
func (m *merger) includes(data map[string]any, from string) []string {
	raw, ok := lookupPath(data, splitKeyUnchecked(IncludeKey))
	if !ok {
		return nil
	}

	var home string
	if m.env != nil {
		home = m.env.HomeDir()
	}

	var out []string
	for _, entry := range toStringSlice(raw) {
		p := expandPath(strings.TrimSpace(entry), m.cfg, home, filepath.Dir(from))
		if p == "" {
			continue
		}
		if paths.IsDir(m.fs, p) {
			dir := paths.Canonicalize(m.fs, p)
			out = append(out, filepath.Join(dir, ConfigFileName))
			if m.variant != "" {
				out = append(out, filepath.Join(dir, VariantFileName(m.variant)))
			}
			continue
		}
		out = append(out, paths.Canonicalize(m.fs, p))
	}
	return out
}

// apply deep-merges data into the accumulator, recording origin for every
// leaf it writes.
func (m *merger) apply(data map[string]any, origin Origin) {
	m.cfg.mergeInto(m.cfg.tree, data, "", origin)
}

// mergeInto merges src into dst. Maps union recursively; any other value
// replaces what was there. Replacing a subtree drops its provenance.
func (c *Config) mergeInto(dst, src map[string]any, prefix string, origin Origin) {
	for k, v := range src {
		key := joinKey(prefix, k)
		existing, exists := dst[k]
		existingMap, existingIsMap := existing.(map[string]any)

		sub, isMap := v.(map[string]any)
		if !isMap {
			if existingIsMap {
				c.dropProvenance(key)
			}
			dst[k] = deepCopy(v)
			c.provenance[key] = origin
			continue
		}

		switch {
		case !existingIsMap:
			if exists {
				c.dropProvenance(key)
			}
			existingMap = map[string]any{}
			dst[k] = existingMap
			if len(sub) == 0 {
				c.provenance[key] = origin
				continue
			}
		case len(sub) == 0:
			continue
		case len(existingMap) == 0:
			delete(c.provenance, key)
		}
		c.mergeInto(existingMap, sub, key, origin)
	}
}

// dropProvenance forgets key and everything below it.
func (c *Config) dropProvenance(key string) {
	delete(c.provenance, key)
	prefix := key + "."
	for k := range c.provenance {
		if strings.HasPrefix(k, prefix) {
			delete(c.provenance, k)
		}
	}
}
