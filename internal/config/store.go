package config

import (
	"maps"
	"slices"
	"strings"

	"github.com/spf13/cast"
)

// Origin identifies where an effective configuration value came from.
// File is empty for values that did not come from a file.
type Origin struct {
	Source string `json:"source" yaml:"source"`
	File   string `json:"file,omitempty" yaml:"file,omitempty"`
}

// String renders the origin as "source" or "source (file)".
func (o Origin) String() string {
	if o.File == "" {
		return o.Source
	}
	return o.Source + " (" + o.File + ")"
}

// Config is the merged configuration view. Values are addressed by dotted
// paths: "test.system" reads {test: {system: ...}}.
//
// A leaf is a non-map value or an empty map. Every leaf has exactly one
// Origin.
type Config struct {
	tree       map[string]any
	provenance map[string]Origin
}

func newConfig() *Config {
	return &Config{
		tree:       map[string]any{},
		provenance: map[string]Origin{},
	}
}

// Lookup returns the value at key and whether it exists. Malformed keys
// (empty, leading or trailing dots, empty segments) are never found.
func (c *Config) Lookup(key string) (any, bool) {
	if c == nil {
		return nil, false
	}
	segs, ok := splitKey(key)
	if !ok {
		return nil, false
	}
	return lookupPath(c.tree, segs)
}

// Get returns the value at key, or nil when it does not exist. Maps and
// lists are returned as copies.
func (c *Config) Get(key string) any {
	v, ok := c.Lookup(key)
	if !ok {
		return nil
	}
	return deepCopy(v)
}

// Has reports whether key exists.
func (c *Config) Has(key string) bool {
	_, ok := c.Lookup(key)
	return ok
}

// GetString returns the value at key converted to a string.
func (c *Config) GetString(key string) string {
	v, ok := c.Lookup(key)
	if !ok {
		return ""
	}
	return cast.ToString(v)
}

// GetStringSlice returns the value at key as a list of strings. A single
// string becomes a one-element list.
func (c *Config) GetStringSlice(key string) []string {
	v, ok := c.Lookup(key)
	if !ok {
		return nil
	}
	return toStringSlice(v)
}

// Keys returns every leaf key in sorted order.
func (c *Config) Keys() []string {
	if c == nil {
		return nil
	}
	return slices.Sorted(maps.Keys(c.provenance))
}

// AllSettings returns a deep copy of the merged tree.
func (c *Config) AllSettings() map[string]any {
	if c == nil {
		return map[string]any{}
	}
	return deepCopy(c.tree).(map[string]any)
}

// Origin returns the origin of the leaf at key.
func (c *Config) Origin(key string) (Origin, bool) {
	if c == nil {
		return Origin{}, false
	}
	if _, ok := splitKey(key); !ok {
		return Origin{}, false
	}
	o, ok := c.provenance[key]
	return o, ok
}

// Provenance returns a copy of the leaf key to origin map.
func (c *Config) Provenance() map[string]Origin {
	if c == nil {
		return map[string]Origin{}
	}
	return maps.Clone(c.provenance)
}

// splitKey splits a dotted key into segments, rejecting malformed keys.
func splitKey(key string) ([]string, bool) {
	if key == "" {
		return nil, false
	}
	segs := strings.Split(key, ".")
	for _, s := range segs {
		if s == "" {
			return nil, false
		}
	}
	return segs, true
}

func splitKeyUnchecked(key string) []string {
	return strings.Split(key, ".")
}

func joinKey(prefix, key string) string {
	if prefix == "" {
		return key
	}
	return prefix + "." + key
}

func lookupPath(tree map[string]any, segs []string) (any, bool) {
	var cur any = tree
	for _, s := range segs {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		cur, ok = m[s]
		if !ok {
			return nil, false
		}
	}
	return cur, true
}

// setPath stores value at segs, creating intermediate maps and replacing
// any non-map value standing in the way.
func setPath(tree map[string]any, segs []string, value any) {
	cur := tree
	for _, s := range segs[:len(segs)-1] {
		next, ok := cur[s].(map[string]any)
		if !ok {
			next = map[string]any{}
			cur[s] = next
		}
		cur = next
	}
	cur[segs[len(segs)-1]] = value
}

func deepCopy(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[k] = deepCopy(val)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = deepCopy(val)
		}
		return out
	}
	return v
}

func toStringSlice(v any) []string {
	switch t := v.(type) {
	case nil:
		return nil
	case string:
		if t == "" {
			return nil
		}
		return []string{t}
	}
	return cast.ToStringSlice(v)
}
