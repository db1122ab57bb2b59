package config

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"runtime"
	"strings"
	"testing"
)

func writeRC(t *testing.T, dir, content string) string {
	t.Helper()
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(dir, FileName)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func testLoader(t *testing.T, env map[string]string) *Loader {
	t.Helper()
	return &Loader{
		HomeDir: t.TempDir(),
		WorkDir: t.TempDir(),
		Getenv:  func(k string) string { return env[k] },
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if !cfg.Follows() {
		t.Error("expected symlinks to be followed by default")
	}
	exts, names := cfg.FileTypes()
	if !reflect.DeepEqual(exts, DefaultExtensions) {
		t.Errorf("expected default extensions, got %v", exts)
	}
	if !reflect.DeepEqual(names, DefaultFilenames) {
		t.Errorf("expected default filenames, got %v", names)
	}
}

func TestFileTypes(t *testing.T) {
	tests := []struct {
		name      string
		cfg       Config
		wantExts  []string
		wantNames []string
	}{
		{
			name:      "configured values replace defaults",
			cfg:       Config{Extensions: []string{"go"}, Filenames: []string{"Makefile"}},
			wantExts:  []string{"go"},
			wantNames: []string{"Makefile"},
		},
		{
			name:      "add_files extends defaults",
			cfg:       Config{Extensions: []string{"go", "h"}, AddFiles: true},
			wantExts:  append([]string{"go"}, DefaultExtensions...),
			wantNames: DefaultFilenames,
		},
		{
			name:      "only filenames configured",
			cfg:       Config{Filenames: []string{"NEWS"}},
			wantExts:  DefaultExtensions,
			wantNames: []string{"NEWS"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			exts, names := tt.cfg.FileTypes()
			if !reflect.DeepEqual(exts, tt.wantExts) {
				t.Errorf("extensions = %v, want %v", exts, tt.wantExts)
			}
			if !reflect.DeepEqual(names, tt.wantNames) {
				t.Errorf("filenames = %v, want %v", names, tt.wantNames)
			}
		})
	}
}

func TestMerge(t *testing.T) {
	no := false
	base := DefaultConfig()
	base.Excludes = []string{"/vendor/"}
	base.RuleOptions["check_whitespace"] = map[string]any{"tab_spacing": 2, "keep": "yes"}

	base.Merge(&Config{
		FollowSymlinks: &no,
		Excludes:       []string{"/build/", "/vendor/"},
		DisabledRules:  []string{"check_id_tag"},
		RuleOptions: map[string]map[string]any{
			"check_whitespace": {"tab_spacing": 4},
			"check_fileheader": {"strict": true},
		},
	})

	if base.Follows() {
		t.Error("expected follow_symlinks to be overridden")
	}
	if want := []string{"/vendor/", "/build/"}; !reflect.DeepEqual(base.Excludes, want) {
		t.Errorf("excludes = %v, want %v", base.Excludes, want)
	}
	if want := []string{"check_id_tag"}; !reflect.DeepEqual(base.DisabledRules, want) {
		t.Errorf("disabled rules = %v, want %v", base.DisabledRules, want)
	}
	ws := base.RuleOptions["check_whitespace"]
	if ws["tab_spacing"] != 4 || ws["keep"] != "yes" {
		t.Errorf("rule options not merged key-wise: %v", ws)
	}
	if base.RuleOptions["check_fileheader"]["strict"] != true {
		t.Errorf("new rule options not added: %v", base.RuleOptions)
	}

	// a layer that leaves the scalar unset does not reset it
	base.Merge(&Config{Extensions: []string{"h"}})
	if base.Follows() {
		t.Error("unset follow_symlinks must not override")
	}
	base.Merge(nil)
}

func TestRuleSettings(t *testing.T) {
	cfg, err := Parse([]byte("rule_options:\n  check_whitespace:\n    tab_spacing: 4\n"))
	if err != nil {
		t.Fatal(err)
	}
	settings := cfg.RuleSettings()
	if got := settings["check_whitespace"].Int("tab_spacing", 2); got != 4 {
		t.Errorf("expected tab_spacing 4, got %d", got)
	}
}

func TestParseMalformed(t *testing.T) {
	if _, err := Parse([]byte("excludes: [unclosed\n")); err == nil {
		t.Fatal("expected an error for malformed YAML")
	}
	if _, err := Parse([]byte("excludes: {a: 1}\n")); err == nil {
		t.Fatal("expected an error for a mistyped field")
	}
}

func TestLoadLayerOrder(t *testing.T) {
	l := testLoader(t, nil)
	envDir := t.TempDir()
	explicitDir := t.TempDir()

	writeRC(t, l.HomeDir, "excludes: [home]\nfollow_symlinks: false\n")
	envRC := writeRC(t, envDir, "excludes: [env]\n")
	explicit := writeRC(t, explicitDir, "excludes: [explicit]\nfollow_symlinks: true\n")
	writeRC(t, l.WorkDir, "excludes: [cwd]\n")
	l.Getenv = func(k string) string {
		if k == "FUZZRC" {
			return envRC + ":" + filepath.Join(envDir, "missing") + ";"
		}
		return ""
	}

	no := false
	cfg, err := l.Load([]string{explicit}, &Config{Excludes: []string{"flag"}, FollowSymlinks: &no})
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	want := []string{"home", "env", "explicit", "cwd", "flag"}
	if !reflect.DeepEqual(cfg.Excludes, want) {
		t.Errorf("excludes = %v, want %v", cfg.Excludes, want)
	}
	if cfg.Follows() {
		t.Error("expected the command line to win for follow_symlinks")
	}
	if got := len(l.Loaded()); got != 4 {
		t.Errorf("expected 4 loaded files, got %d: %v", got, l.Loaded())
	}
}

func TestLoadNeverLoadsTwice(t *testing.T) {
	l := testLoader(t, nil)
	rc := writeRC(t, l.WorkDir, "excludes: [once]\ndisabled_rules: [a]\n")

	cfg, err := l.Load([]string{rc, rc}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(l.Loaded()) != 1 {
		t.Errorf("expected the file to load once, got %v", l.Loaded())
	}
	if !reflect.DeepEqual(cfg.Excludes, []string{"once"}) {
		t.Errorf("excludes = %v", cfg.Excludes)
	}
}

func TestLoadWorkDirOutermostFirst(t *testing.T) {
	l := testLoader(t, nil)
	root := l.WorkDir
	inner := filepath.Join(root, "a", "b")
	writeRC(t, root, "rule_options: {check_whitespace: {tab_spacing: 8}}\nexcludes: [outer]\n")
	writeRC(t, inner, "rule_options: {check_whitespace: {tab_spacing: 3}}\nexcludes: [inner]\n")
	l.WorkDir = inner

	cfg, err := l.Load(nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(cfg.Excludes, []string{"outer", "inner"}) {
		t.Errorf("excludes = %v", cfg.Excludes)
	}
	if got := cfg.RuleSettings()["check_whitespace"].Int("tab_spacing", 0); got != 3 {
		t.Errorf("expected the innermost file to win, got %d", got)
	}
}

func TestLoadExplicitMissing(t *testing.T) {
	l := testLoader(t, nil)
	_, err := l.Load([]string{filepath.Join(t.TempDir(), "nope.yaml")}, nil)
	if !errors.Is(err, ErrUnreadableConfig) {
		t.Fatalf("expected ErrUnreadableConfig, got %v", err)
	}
}

func TestLoadMalformedIsFatal(t *testing.T) {
	l := testLoader(t, nil)
	writeRC(t, l.WorkDir, "follow_symlinks: [\n")

	_, err := l.Load(nil, nil)
	if err == nil || !strings.Contains(err.Error(), FileName) {
		t.Fatalf("expected a parse error naming the file, got %v", err)
	}
}

func TestRulePathResolution(t *testing.T) {
	l := testLoader(t, map[string]string{"RULES_HOME": "/opt/rules"})
	rcDir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(l.WorkDir, "local"), 0755); err != nil {
		t.Fatal(err)
	}
	rc := writeRC(t, rcDir, "rule_paths: [local, relative, $RULES_HOME/extra]\n")

	cfg, err := l.LoadFile(rc)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{
		filepath.Join(l.WorkDir, "local"),
		filepath.Join(rcDir, "relative"),
		"/opt/rules/extra",
	}
	if !reflect.DeepEqual(cfg.RulePaths, want) {
		t.Errorf("rule paths = %v, want %v", cfg.RulePaths, want)
	}
}

func TestLoadStandardRuleDirComesFirst(t *testing.T) {
	l := testLoader(t, nil)
	l.RuleDir = filepath.Join(t.TempDir(), "rules")
	writeRC(t, l.WorkDir, "rule_paths: [/opt/rules]\n")

	cfg, err := l.Load(nil, &Config{RulePaths: []string{"/srv/rules"}})
	if err != nil {
		t.Fatal(err)
	}
	want := []string{l.RuleDir, "/opt/rules", "/srv/rules"}
	if !reflect.DeepEqual(cfg.RulePaths, want) {
		t.Errorf("rule paths = %v, want %v", cfg.RulePaths, want)
	}
}

func TestStandardRuleDir(t *testing.T) {
	if runtime.GOOS != "linux" {
		t.Skip("XDG_CONFIG_HOME is only consulted on Linux")
	}
	base := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", base)

	if got, want := StandardRuleDir(), filepath.Join(base, "fuzz", "rules"); got != want {
		t.Errorf("StandardRuleDir() = %q, want %q", got, want)
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	yes := true
	cfg := &Config{
		FollowSymlinks: &yes,
		Extensions:     []string{"h"},
		DisabledRules:  []string{"check_id_tag"},
		RuleOptions:    map[string]map[string]any{"check_whitespace": {"tab_spacing": 4}},
	}
	if err := cfg.Save(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "disabled_rules:") {
		t.Errorf("expected yaml keys in output, got:\n%s", data)
	}
	if strings.Contains(string(data), "excludes") {
		t.Errorf("empty lists should be omitted, got:\n%s", data)
	}

	loaded, err := Parse(data)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(loaded, cfg) {
		t.Errorf("round trip mismatch: got %+v, want %+v", loaded, cfg)
	}
}
