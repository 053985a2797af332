package config

import (
	"log/slog"
	"slices"
	"sort"

	"github.com/spf13/afero"

	"github.com/thoreinstein/drushcfg/internal/paths"
)

// Locator owns the source registry of one configuration resolution.
//
// Sources may be registered in any order. The first call to Config merges
// the active sources and freezes the Locator: the result (or error) is
// cached and later registrations are ignored with a warning. A Locator is
// not safe for concurrent use.
type Locator struct {
	envPrefix string
	variant   string
	local     bool

	fs     afero.Fs
	loader Loader
	logger *slog.Logger

	env          Environment
	sources      []*Source
	byName       map[string]*Source
	siteRoots    map[string]bool
	composerRoot string
	cache        fileCache

	frozen bool
	config *Config
	err    error
}

// Option configures a Locator.
type Option func(*Locator)

// WithVariant sets the variant suffix, so directories are also searched
// for drush{variant}.yml.
func WithVariant(variant string) Option {
	return func(l *Locator) {
		l.variant = variant
	}
}

// WithFs sets the filesystem used for resolution and loading.
func WithFs(fs afero.Fs) Option {
	return func(l *Locator) {
		l.fs = fs
	}
}

// WithLoader replaces the file loader.
func WithLoader(loader Loader) Option {
	return func(l *Locator) {
		l.loader = loader
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(l *Locator) {
		l.logger = logger
	}
}

// NewLocator creates an empty Locator. envPrefix scopes environment
// variable overrides; it is normalized by NormalizePrefix.
func NewLocator(envPrefix string, opts ...Option) *Locator {
	l := &Locator{
		envPrefix: NormalizePrefix(envPrefix),
		byName:    map[string]*Source{},
		siteRoots: map[string]bool{},
		cache:     fileCache{},
	}
	for _, opt := range opts {
		opt(l)
	}
	if l.fs == nil {
		l.fs = afero.NewOsFs()
	}
	if l.loader == nil {
		l.loader = NewFileLoader(l.fs)
	}
	if l.logger == nil {
		l.logger = slog.Default()
	}
	return l
}

// EnvPrefix returns the normalized environment variable prefix.
func (l *Locator) EnvPrefix() string { return l.envPrefix }

// Variant returns the variant suffix.
func (l *Locator) Variant() string { return l.variant }

// Local reports whether local mode is on.
func (l *Locator) Local() bool { return l.local }

// mutable reports whether registration is still allowed.
func (l *Locator) mutable(op string) bool {
	if l.frozen {
		l.logger.Warn("ignoring registration after configuration was merged", "op", op)
		return false
	}
	return true
}

// register returns the source called name, creating it on first use.
func (l *Locator) register(name string, rank int, scope Scope) *Source {
	if src, ok := l.byName[name]; ok {
		return src
	}
	src := &Source{
		Name:  name,
		Rank:  rank,
		Scope: scope,
		State: StateRegistered,
		seq:   len(l.sources),
	}
	l.sources = append(l.sources, src)
	l.byName[name] = src
	return src
}

// addTemplate appends t to src unless it is already there. A resolved
// source goes back to registered so the new template is picked up.
func (l *Locator) addTemplate(src *Source, t Template) {
	if slices.Contains(src.Templates, t) {
		return
	}
	src.Templates = append(src.Templates, t)
	src.State = StateRegistered
}

// AddEnvironment registers the environment source, publishing env.cwd,
// env.home and the drush.* directories. It also supplies the home
// directory used by the home template and by "~" expansion.
func (l *Locator) AddEnvironment(env Environment) {
	if env == nil || !l.mutable("AddEnvironment") {
		return
	}
	l.env = env
	src := l.register(SourceEnvironment, RankEnvironment, ScopeRuntime)
	src.layers = []LoadedFile{{Data: environmentData(env)}}

	// Home resolution depends on the environment.
	for _, s := range l.sources {
		if !s.Synthetic() {
			s.State = StateRegistered
		}
	}
}

// AddUserConfig registers the user, system and home sources. Empty
// explicit paths and an empty systemPath are ignored. An empty userPath
// searches {home}/.drush.
func (l *Locator) AddUserConfig(explicitPaths []string, systemPath, userPath string) {
	if !l.mutable("AddUserConfig") {
		return
	}
	for _, p := range explicitPaths {
		if p == "" {
			continue
		}
		l.addTemplate(l.register(SourceUser, RankUser, ScopeGlobal), Template{Kind: KindUser, Base: p})
	}
	if systemPath != "" {
		l.addTemplate(l.register(SourceSystem, RankSystem, ScopeGlobal), Template{Kind: KindSystem, Base: systemPath})
	}
	l.addTemplate(l.register(SourceHome, RankHome, ScopeGlobal), Template{Kind: KindHome, Base: userPath})
}

// AddDrushConfig registers the tool defaults found at basePath/drush.yml.
func (l *Locator) AddDrushConfig(basePath string) {
	if basePath == "" || !l.mutable("AddDrushConfig") {
		return
	}
	l.addTemplate(l.register(SourceDrush, RankDrush, ScopeGlobal), Template{Kind: KindDrush, Base: basePath})
}

// AddSitewideConfig registers the drush directories around siteRoot.
// Roots that are not existing directories, and roots already added, are
// ignored.
func (l *Locator) AddSitewideConfig(siteRoot string) {
	if !l.mutable("AddSitewideConfig") {
		return
	}
	if !paths.IsDir(l.fs, siteRoot) {
		l.logger.Debug("ignoring missing site root", "root", siteRoot)
		return
	}
	root := paths.Canonicalize(l.fs, siteRoot)
	if l.siteRoots[root] {
		return
	}
	l.siteRoots[root] = true
	l.addTemplate(l.register(SourceSite, RankSite, ScopeProject), Template{Kind: KindSite, Base: root})
}

// SetComposerRoot records the project root whose drush/sites directory is
// an alias path.
func (l *Locator) SetComposerRoot(dir string) {
	if !l.mutable("SetComposerRoot") {
		return
	}
	l.composerRoot = dir
}

// AddOverrides registers command-line overrides. Keys are dotted paths;
// later calls win over earlier ones. Malformed keys are skipped.
func (l *Locator) AddOverrides(overrides map[string]any) {
	if len(overrides) == 0 || !l.mutable("AddOverrides") {
		return
	}

	keys := make([]string, 0, len(overrides))
	for k := range overrides {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	tree := map[string]any{}
	for _, k := range keys {
		segs, ok := splitKey(k)
		if !ok {
			l.logger.Warn("skipping malformed override key", "key", k)
			continue
		}
		value, err := normalize(overrides[k])
		if err != nil {
			l.logger.Warn("skipping malformed override value", "key", k, "error", err)
			continue
		}
		setPath(tree, segs, value)
	}

	src := l.register(SourceCLI, RankCLI, ScopeRuntime)
	src.layers = append(src.layers, LoadedFile{Data: tree})
}

// SetLocal turns local mode on or off. In local mode only project and
// runtime sources are merged; global sources stay registered.
func (l *Locator) SetLocal(local bool) {
	if !l.mutable("SetLocal") {
		return
	}
	l.local = local
}

// CollectSources resolves every source that has not been resolved yet.
// Calling it again without new registrations changes nothing.
func (l *Locator) CollectSources() {
	r := resolver{fs: l.fs, env: l.env, variant: l.variant}
	for _, src := range l.sources {
		if src.State != StateRegistered {
			continue
		}
		src.Dirs, src.Paths = nil, nil
		for _, t := range src.Templates {
			dirs, files := r.resolve(t)
			src.Dirs = appendUnique(src.Dirs, dirs...)
			src.Paths = appendUnique(src.Paths, files...)
		}
		src.State = StateResolved
		if !src.Synthetic() {
			l.logger.Debug("resolved config source",
				"source", src.Name,
				"dirs", len(src.Dirs),
				"paths", len(src.Paths))
		}
	}
}

func (l *Locator) active(src *Source) bool {
	return !l.local || src.Scope != ScopeGlobal
}

// Config merges the active sources on first call and returns the cached
// result afterwards. A *ParseError from any file is returned unchanged.
func (l *Locator) Config() (*Config, error) {
	if l.frozen {
		return l.config, l.err
	}
	l.CollectSources()

	var active []*Source
	for _, src := range l.sources {
		if l.active(src) {
			active = append(active, src)
		} else {
			l.logger.Debug("skipping global source in local mode", "source", src.Name)
		}
	}

	m := &merger{
		fs:      l.fs,
		loader:  l.loader,
		env:     l.env,
		variant: l.variant,
		cache:   l.cache,
		logger:  l.logger,
	}
	l.config, l.err = m.merge(active)
	l.frozen = true
	return l.config, l.err
}

// Sources maps every file-backed source to its resolved candidate paths,
// whether or not the files exist and whether or not the source is active.
func (l *Locator) Sources() map[string][]string {
	l.CollectSources()
	out := make(map[string][]string, len(l.sources))
	for _, src := range l.sources {
		if src.Synthetic() {
			continue
		}
		out[src.Name] = slices.Clone(src.Paths)
	}
	return out
}

// Describe returns a snapshot of every registered source, ordered by
// precedence.
func (l *Locator) Describe() []SourceInfo {
	l.CollectSources()
	ordered := sortSources(l.sources)
	out := make([]SourceInfo, 0, len(ordered))
	for _, src := range ordered {
		out = append(out, src.info(l.active(src)))
	}
	return out
}

// Has reports whether key is set in the merged configuration. A merge
// failure counts as not set.
func (l *Locator) Has(key string) bool {
	cfg, err := l.Config()
	if err != nil {
		return false
	}
	return cfg.Has(key)
}

// Get returns the merged value at key, or nil.
func (l *Locator) Get(key string) any {
	cfg, err := l.Config()
	if err != nil {
		return nil
	}
	return cfg.Get(key)
}

func appendUnique(list []string, items ...string) []string {
	for _, it := range items {
		if !slices.Contains(list, it) {
			list = append(list, it)
		}
	}
	return list
}
