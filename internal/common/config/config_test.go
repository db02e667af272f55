package config

import (
	"os"
	"path/filepath"
	"testing"
)

// LoadConfig 是进程级单次加载（sync.Once），所以文件加载只测一次。
func TestLoadConfigPartialFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "import-job.json")
	content := `{
		"job": {"name": "nightly-sync"},
		"source": {"base_id": "appXYZ", "token": "tok"},
		"database": {"driver": "mysql", "host": "db.internal", "port": 3306, "user": "sync", "password": "x", "database": "fleet"}
	}`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}

	// 显式字段生效
	if cfg.Job.Name != "nightly-sync" {
		t.Fatalf("unexpected job name: %q", cfg.Job.Name)
	}
	if cfg.Source.BaseID != "appXYZ" {
		t.Fatalf("unexpected base id: %q", cfg.Source.BaseID)
	}
	if cfg.Database.Host != "db.internal" {
		t.Fatalf("unexpected db host: %q", cfg.Database.Host)
	}

	// 缺省字段补默认值
	if cfg.Job.DefaultPhoneCode != "+1" {
		t.Fatalf("expected default phone code, got %q", cfg.Job.DefaultPhoneCode)
	}
	if cfg.Job.MaxErrors != 50 {
		t.Fatalf("expected default max errors, got %d", cfg.Job.MaxErrors)
	}
	if cfg.Source.BaseURL == "" {
		t.Fatalf("expected default base url")
	}
	if cfg.Source.Tables.Vehicles == "" {
		t.Fatalf("expected default table names")
	}
	if cfg.Log.Level == "" {
		t.Fatalf("expected default log config")
	}
}

func TestApplyDefaults(t *testing.T) {
	c := &Config{}
	applyDefaults(c)

	if c.Source.RatePerSecond <= 0 {
		t.Fatalf("expected positive rate limit default")
	}
	if c.Source.TimeoutSeconds <= 0 {
		t.Fatalf("expected positive timeout default")
	}
	if c.Database.Driver != "mysql" {
		t.Fatalf("expected mysql driver default, got %q", c.Database.Driver)
	}

	// 已有值不被默认值覆盖
	c2 := &Config{}
	c2.Job.MaxErrors = 5
	c2.Source.RatePerSecond = 2
	applyDefaults(c2)
	if c2.Job.MaxErrors != 5 || c2.Source.RatePerSecond != 2 {
		t.Fatalf("expected explicit values preserved, got %+v", c2)
	}
}
