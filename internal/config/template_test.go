package config

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolver_Resolve(t *testing.T) {
	fs := afero.NewMemMapFs()
	for _, dir := range []string{
		"/etc/drush",
		"/home/user/.drush",
		"/custom/userdir",
		"/srv/web/drush",
		"/srv/web/sites/all/drush",
		"/opt/drush",
		"/explicit/dir",
	} {
		require.NoError(t, fs.MkdirAll(dir, 0o755))
	}
	writeMem(t, fs, "/explicit/file.yml", "a: 1\n")

	env := fakeEnv{cwd: "/home/user", home: "/home/user"}

	tests := []struct {
		name      string
		variant   string
		template  Template
		wantDirs  []string
		wantFiles []string
	}{
		{
			name:      "system without variant",
			template:  Template{Kind: KindSystem, Base: "/etc/drush"},
			wantDirs:  []string{"/etc/drush"},
			wantFiles: []string{"/etc/drush/drush.yml"},
		},
		{
			name:      "system with variant",
			variant:   "VARIANT",
			template:  Template{Kind: KindSystem, Base: "/etc/drush"},
			wantDirs:  []string{"/etc/drush"},
			wantFiles: []string{"/etc/drush/drush.yml", "/etc/drush/drushVARIANT.yml"},
		},
		{
			name:     "missing system dir",
			template: Template{Kind: KindSystem, Base: "/etc/nothing"},
		},
		{
			name:      "home from user config path",
			template:  Template{Kind: KindHome, Base: "/custom/userdir"},
			wantDirs:  []string{"/custom/userdir"},
			wantFiles: []string{"/custom/userdir/drush.yml"},
		},
		{
			name:      "home falls back to home directory",
			template:  Template{Kind: KindHome},
			wantDirs:  []string{"/home/user/.drush"},
			wantFiles: []string{"/home/user/.drush/drush.yml"},
		},
		{
			name:     "site searches parent, root and sites/all, existing only",
			variant:  "VARIANT",
			template: Template{Kind: KindSite, Base: "/srv/web"},
			wantDirs: []string{"/srv/web/drush", "/srv/web/sites/all/drush"},
			wantFiles: []string{
				"/srv/web/drush/drush.yml",
				"/srv/web/drush/drushVARIANT.yml",
				"/srv/web/sites/all/drush/drush.yml",
				"/srv/web/sites/all/drush/drushVARIANT.yml",
			},
		},
		{
			name:      "drush defaults ignore the variant",
			variant:   "VARIANT",
			template:  Template{Kind: KindDrush, Base: "/opt/drush"},
			wantDirs:  []string{"/opt/drush"},
			wantFiles: []string{"/opt/drush/drush.yml"},
		},
		{
			name:      "explicit directory",
			template:  Template{Kind: KindUser, Base: "/explicit/dir"},
			wantDirs:  []string{"/explicit/dir"},
			wantFiles: []string{"/explicit/dir/drush.yml"},
		},
		{
			name:      "explicit file is literal",
			variant:   "VARIANT",
			template:  Template{Kind: KindUser, Base: "/explicit/./file.yml"},
			wantFiles: []string{"/explicit/file.yml"},
		},
		{
			name:      "explicit missing file still a candidate",
			template:  Template{Kind: KindUser, Base: "/explicit/missing.yml"},
			wantFiles: []string{"/explicit/missing.yml"},
		},
		{
			name:      "relative explicit file resolves against cwd",
			template:  Template{Kind: KindUser, Base: "custom.yml"},
			wantFiles: []string{"/home/user/custom.yml"},
		},
		{
			name:      "relative explicit directory resolves against cwd",
			template:  Template{Kind: KindUser, Base: ".drush"},
			wantDirs:  []string{"/home/user/.drush"},
			wantFiles: []string{"/home/user/.drush/drush.yml"},
		},
		{
			name:      "explicit file under home",
			template:  Template{Kind: KindUser, Base: "~/other.yml"},
			wantFiles: []string{"/home/user/other.yml"},
		},
		{
			name:     "empty explicit path",
			template: Template{Kind: KindUser},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := resolver{fs: fs, env: env, variant: tt.variant}
			dirs, files := r.resolve(tt.template)
			assert.Equal(t, tt.wantDirs, dirs)
			assert.Equal(t, tt.wantFiles, files)
		})
	}
}

func TestVariantFileName(t *testing.T) {
	assert.Equal(t, "", VariantFileName(""))
	assert.Equal(t, "drushVARIANT.yml", VariantFileName("VARIANT"))
}
