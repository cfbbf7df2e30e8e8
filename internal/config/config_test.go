package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeTempConf(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "moncollector.conf")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad_BasicProperties(t *testing.T) {
	path := writeTempConf(t, `
loglevel=debug
default_python=/usr/bin/python3
ssh_connect_timeout_s=10
force_debug_env=false
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}

	if cfg.DefaultLogLevel() != "debug" {
		t.Errorf("expected loglevel=debug, got %q", cfg.DefaultLogLevel())
	}
	if cfg.DefaultPython() != "/usr/bin/python3" {
		t.Errorf("expected default_python=/usr/bin/python3, got %q", cfg.DefaultPython())
	}
	if cfg.SSHConnectTimeoutSeconds() != 10 {
		t.Errorf("expected ssh_connect_timeout_s=10, got %d", cfg.SSHConnectTimeoutSeconds())
	}
	if cfg.ForceDebugEnv() != false {
		t.Error("expected force_debug_env=false")
	}
}

func TestLoad_Comments(t *testing.T) {
	path := writeTempConf(t, `
# This is a comment
loglevel=debug

# Another comment

log_keep_days=3
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.DefaultLogLevel() != "debug" {
		t.Errorf("expected loglevel=debug, got %q", cfg.DefaultLogLevel())
	}
	if cfg.LogKeepDays() != 3 {
		t.Errorf("expected 3, got %d", cfg.LogKeepDays())
	}
	if cfg.GetString("# This is a comment", "") != "" {
		t.Error("comment should not be a key")
	}
}

func TestLoad_Defaults(t *testing.T) {
	path := writeTempConf(t, "")
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.DefaultLogLevel() != "info" {
		t.Errorf("expected default loglevel=info, got %q", cfg.DefaultLogLevel())
	}
	if cfg.DefaultPython() != "/usr/bin/python" {
		t.Errorf("expected default /usr/bin/python, got %q", cfg.DefaultPython())
	}
	if cfg.SSHConnectTimeoutSeconds() != 5 {
		t.Errorf("expected default 5, got %d", cfg.SSHConnectTimeoutSeconds())
	}
	if cfg.ForceDebugEnv() != true {
		t.Error("expected default force_debug_env=true")
	}
}

func TestGetString(t *testing.T) {
	path := writeTempConf(t, "key1=value1\n  key2 = value with spaces  \n")
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.GetString("key1", "") != "value1" {
		t.Errorf("expected value1, got %q", cfg.GetString("key1", ""))
	}
	if cfg.GetString("key2", "") != "value with spaces" {
		t.Errorf("expected 'value with spaces', got %q", cfg.GetString("key2", ""))
	}
	if cfg.GetString("nonexistent", "def") != "def" {
		t.Errorf("expected default 'def', got %q", cfg.GetString("nonexistent", "def"))
	}
}

func TestGetInt(t *testing.T) {
	path := writeTempConf(t, "port=9090\nbad=abc\n")
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.GetInt("port", 0) != 9090 {
		t.Errorf("expected 9090, got %d", cfg.GetInt("port", 0))
	}
	if cfg.GetInt("bad", 42) != 42 {
		t.Errorf("expected default 42 for non-numeric value, got %d", cfg.GetInt("bad", 42))
	}
	if cfg.GetInt("missing", 100) != 100 {
		t.Errorf("expected default 100, got %d", cfg.GetInt("missing", 100))
	}
}

func TestGetBool(t *testing.T) {
	path := writeTempConf(t, "a=true\nb=false\nc=1\nd=0\ne=yes\nf=no\ng=on\nh=off\ni=TRUE\nj=invalid\n")
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}

	cases := []struct {
		key      string
		expected bool
	}{
		{"a", true},
		{"b", false},
		{"c", true},
		{"d", false},
		{"e", true},
		{"f", false},
		{"g", true},
		{"h", false},
		{"i", true},
	}
	for _, tc := range cases {
		got := cfg.GetBool(tc.key, !tc.expected) // default is opposite to detect override
		if got != tc.expected {
			t.Errorf("GetBool(%q): expected %v, got %v", tc.key, tc.expected, got)
		}
	}

	if cfg.GetBool("j", true) != true {
		t.Error("invalid bool value should return default")
	}
	if cfg.GetBool("j", false) != false {
		t.Error("invalid bool value should return default")
	}
}

func TestLoad_NonExistent(t *testing.T) {
	cfg, err := Load("/tmp/nonexistent_moncollector_test_12345.conf")
	if err != nil {
		t.Fatalf("expected no error for missing file, got %v", err)
	}
	if cfg == nil {
		t.Fatal("expected non-nil Config for missing file")
	}
	if cfg.DefaultLogLevel() != "info" {
		t.Errorf("expected default loglevel=info, got %q", cfg.DefaultLogLevel())
	}
	if cfg.ArtifactDir() != os.TempDir() {
		t.Errorf("expected default artifact dir %q, got %q", os.TempDir(), cfg.ArtifactDir())
	}
}

func TestConvenienceMethods(t *testing.T) {
	path := writeTempConf(t, `
loglevel=debug
default_python=/opt/python/bin/python
ssh_connect_timeout_s=15
artifact_dir=/var/tmp/moncollector
agent_payload_dir=/opt/moncollector/agent
force_debug_env=false
log_dir=/var/log/moncollector
log_rotation_enabled=false
log_keep_days=7
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name     string
		got      interface{}
		expected interface{}
	}{
		{"DefaultLogLevel", cfg.DefaultLogLevel(), "debug"},
		{"DefaultPython", cfg.DefaultPython(), "/opt/python/bin/python"},
		{"SSHConnectTimeoutSeconds", cfg.SSHConnectTimeoutSeconds(), 15},
		{"ArtifactDir", cfg.ArtifactDir(), "/var/tmp/moncollector"},
		{"PayloadDir", cfg.PayloadDir(), "/opt/moncollector/agent"},
		{"ForceDebugEnv", cfg.ForceDebugEnv(), false},
		{"LogDir", cfg.LogDir(), "/var/log/moncollector"},
		{"LogRotationEnabled", cfg.LogRotationEnabled(), false},
		{"LogKeepDays", cfg.LogKeepDays(), 7},
	}

	for _, tc := range tests {
		if tc.got != tc.expected {
			t.Errorf("%s: expected %v, got %v", tc.name, tc.expected, tc.got)
		}
	}
}
