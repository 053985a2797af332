package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io/fs"
	"maps"
	"path/filepath"
	"slices"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/afero"
	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"

	"github.com/thoreinstein/drushcfg/internal/errors"
	"github.com/thoreinstein/drushcfg/pkg/fileutil"
)

// ErrParse is matched by every *ParseError.
var ErrParse = errors.New("malformed configuration file")

// ParseError reports a configuration file that exists but cannot be
// parsed. It is never retried: the content will not change without the
// operator editing the file.
type ParseError struct {
	// Source is the name of the source the file belongs to, when known.
	Source string
	// Path is the file that failed to parse.
	Path string
	Err  error
}

func (e *ParseError) Error() string {
	if e.Source == "" {
		return fmt.Sprintf("parsing config file %s: %v", e.Path, e.Err)
	}
	return fmt.Sprintf("parsing %s config file %s: %v", e.Source, e.Path, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// Is makes errors.Is(err, ErrParse) true for any ParseError.
func (e *ParseError) Is(target error) bool {
	return target == ErrParse
}

// Loader reads one configuration file into a nested map. A missing file
// yields (nil, nil). A malformed file yields a *ParseError. Any other error
// is an I/O problem the caller may skip.
type Loader interface {
	Load(path string) (map[string]any, error)
}

// FileLoader loads YAML, TOML and JSON(C) files from an afero filesystem,
// choosing the format by extension. Unknown extensions are parsed as YAML.
type FileLoader struct {
	Fs afero.Fs
}

// NewFileLoader returns a FileLoader reading from fs.
func NewFileLoader(fs afero.Fs) *FileLoader {
	return &FileLoader{Fs: fs}
}

// Load implements Loader.
func (l *FileLoader) Load(path string) (map[string]any, error) {
	data, err := fileutil.ReadFileWithLimit(l.Fs, path)
	if err != nil {
		switch {
		case errors.Is(err, fs.ErrNotExist):
			return nil, nil
		case errors.Is(err, fileutil.ErrFileTooLarge):
			return nil, &ParseError{Path: path, Err: err}
		}
		return nil, errors.Wrapf(err, "loading %s", path)
	}

	tree, err := Decode(path, data)
	if err != nil {
		return nil, &ParseError{Path: path, Err: err}
	}
	return tree, nil
}

// Decode parses data according to the extension of path. An empty
// document decodes to an empty map; a document whose top level is not a
// mapping is an error.
func Decode(path string, data []byte) (map[string]any, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return map[string]any{}, nil
	}

	var raw any
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		if err := toml.Unmarshal(data, &raw); err != nil {
			return nil, errors.Wrap(err, "decoding toml")
		}
	case ".json", ".jsonc":
		if err := json.Unmarshal(jsonc.ToJSON(data), &raw); err != nil {
			return nil, errors.Wrap(err, "decoding json")
		}
	default:
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, errors.Wrap(err, "decoding yaml")
		}
	}

	if raw == nil {
		return map[string]any{}, nil
	}
	tree, err := normalize(raw)
	if err != nil {
		return nil, err
	}
	m, ok := tree.(map[string]any)
	if !ok {
		return nil, errors.Newf("top-level value must be a mapping, got %T", raw)
	}
	return m, nil
}

// normalize converts decoder output into map[string]any / []any trees so
// that lookups never see map[any]any. Dotted keys expand into nested maps,
// so "a.b: 1" and "a: {b: 1}" decode alike.
func normalize(v any) (any, error) {
	switch t := v.(type) {
	case map[string]any:
		return normalizeMap(t)
	case map[any]any:
		m := make(map[string]any, len(t))
		for k, val := range t {
			m[fmt.Sprint(k)] = val
		}
		return normalizeMap(m)
	case []any:
		out := make([]any, len(t))
		for i, val := range t {
			n, err := normalize(val)
			if err != nil {
				return nil, err
			}
			out[i] = n
		}
		return out, nil
	}
	return v, nil
}

// normalizeMap expands m's keys into nested maps. A key with an empty
// segment, or two keys addressing the same leaf, is an error.
func normalizeMap(m map[string]any) (map[string]any, error) {
	out := make(map[string]any, len(m))
	for _, k := range slices.Sorted(maps.Keys(m)) {
		segs, ok := splitKey(k)
		if !ok {
			return nil, errors.Newf("invalid key %q: empty path segment", k)
		}
		val, err := normalize(m[k])
		if err != nil {
			return nil, errors.Wrapf(err, "under key %q", k)
		}
		if err := insertKey(out, segs, val); err != nil {
			return nil, errors.Wrapf(err, "key %q", k)
		}
	}
	return out, nil
}

// insertKey stores val at segs below dst, merging maps that meet on the
// way.
func insertKey(dst map[string]any, segs []string, val any) error {
	head := segs[0]
	existing, exists := dst[head]
	if len(segs) == 1 {
		if !exists {
			dst[head] = val
			return nil
		}
		em, ok1 := existing.(map[string]any)
		vm, ok2 := val.(map[string]any)
		if !ok1 || !ok2 {
			return errors.Newf("conflicts with another key for %q", head)
		}
		for _, k := range slices.Sorted(maps.Keys(vm)) {
			if err := insertKey(em, []string{k}, vm[k]); err != nil {
				return err
			}
		}
		return nil
	}
	if !exists {
		child := map[string]any{}
		dst[head] = child
		return insertKey(child, segs[1:], val)
	}
	child, ok := existing.(map[string]any)
	if !ok {
		return errors.Newf("conflicts with another key for %q", head)
	}
	return insertKey(child, segs[1:], val)
}
