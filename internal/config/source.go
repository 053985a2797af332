package config

// Scope decides whether a source survives local mode.
type Scope int

const (
	// ScopeGlobal sources live outside the project (system, home, explicit
	// --config files, tool defaults). Local mode excludes them.
	ScopeGlobal Scope = iota
	// ScopeProject sources live in the site being operated on.
	ScopeProject
	// ScopeRuntime sources are synthesized from the running process
	// (environment facts, environment variables, command-line overrides).
	// They are never file-backed and never pruned.
	ScopeRuntime
)

// String returns the scope name.
func (s Scope) String() string {
	switch s {
	case ScopeGlobal:
		return "global"
	case ScopeProject:
		return "project"
	case ScopeRuntime:
		return "runtime"
	}
	return "unknown"
}

// State tracks how far a source has progressed: registered, resolved to
// candidate paths, or loaded.
type State int

const (
	StateRegistered State = iota
	StateResolved
	StateLoaded
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateRegistered:
		return "registered"
	case StateResolved:
		return "resolved"
	case StateLoaded:
		return "loaded"
	}
	return "unknown"
}

// Source names.
const (
	SourceEnvironment = "environment"
	SourceDrush       = "drush"
	SourceSystem      = "system"
	SourceHome        = "home"
	SourceUser        = "user"
	SourceSite        = "site"
	SourceEnvVars     = "envvars"
	SourceCLI         = "cli"
)

// Precedence ranks. Higher ranks overwrite lower ones on overlapping keys.
const (
	RankEnvironment = 0
	RankDrush       = 10
	RankSystem      = 20
	RankHome        = 30
	RankUser        = 40
	RankSite        = 50
	RankEnvVars     = 60
	RankCLI         = 70
)

// Source is one named, ranked origin of configuration data.
type Source struct {
	Name  string
	Rank  int
	Scope Scope
	State State

	// Templates describe where file-backed sources look for files.
	Templates []Template
	// Dirs are the existing base directories the templates resolved to.
	Dirs []string
	// Paths are the canonical candidate files, in load order.
	Paths []string
	// Files are the files that were found and loaded by the last merge.
	Files []LoadedFile

	// layers hold the in-memory data of synthetic sources, merged in
	// order. A layer's Path is set when it was read from a file.
	layers []LoadedFile
	seq    int
}

// LoadedFile is one file's parsed contents.
type LoadedFile struct {
	Path string
	Data map[string]any
}

// Synthetic reports whether the source carries in-memory data instead of
// files.
func (s *Source) Synthetic() bool {
	return s.Scope == ScopeRuntime
}

// SourceInfo is a diagnostic snapshot of a source.
type SourceInfo struct {
	Name   string   `json:"name" yaml:"name"`
	Rank   int      `json:"rank" yaml:"rank"`
	Scope  string   `json:"scope" yaml:"scope"`
	State  string   `json:"state" yaml:"state"`
	Active bool     `json:"active" yaml:"active"`
	Paths  []string `json:"paths,omitempty" yaml:"paths,omitempty"`
	Loaded []string `json:"loaded,omitempty" yaml:"loaded,omitempty"`
}

func (s *Source) info(active bool) SourceInfo {
	info := SourceInfo{
		Name:   s.Name,
		Rank:   s.Rank,
		Scope:  s.Scope.String(),
		State:  s.State.String(),
		Active: active,
		Paths:  append([]string(nil), s.Paths...),
	}
	for _, f := range s.Files {
		if f.Path != "" {
			info.Loaded = append(info.Loaded, f.Path)
		}
	}
	return info
}
