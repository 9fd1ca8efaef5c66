package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/san-kum/pendulab/internal/config"
)

func resolve(t *testing.T, args ...string) (*config.Config, error) {
	t.Helper()
	cmd := runCmd()
	if err := cmd.ParseFlags(args); err != nil {
		t.Fatalf("parse %v: %v", args, err)
	}
	return resolveConfig(cmd)
}

func TestResolveConfigDefaults(t *testing.T) {
	cfg, err := resolve(t)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Links != config.DefaultLinks || cfg.Dt != config.DefaultDt {
		t.Errorf("expected defaults, got links=%d dt=%f", cfg.Links, cfg.Dt)
	}
}

func TestResolveConfigPreset(t *testing.T) {
	cfg, err := resolve(t, "--preset", "double/chaos", "--time", "3")
	if err != nil {
		t.Fatal(err)
	}
	want := config.GetPreset("double", "chaos")
	if cfg.Links != 2 || cfg.Chain[0].Angle != want.Chain[0].Angle {
		t.Errorf("preset not applied: %+v", cfg)
	}
	if cfg.Duration != 3 {
		t.Errorf("flag should override preset, got duration %f", cfg.Duration)
	}

	cfg, err = resolve(t, "--preset", "small", "--links", "1")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Links != 1 {
		t.Errorf("bare preset name should use --links, got %d links", cfg.Links)
	}

	if _, err := resolve(t, "--preset", "triple/nope"); err == nil {
		t.Error("expected error for unknown preset")
	}
}

func TestResolveConfigFileThenFlags(t *testing.T) {
	path := filepath.Join(t.TempDir(), "c.yaml")
	file := config.DefaultConfig().WithLinks(1)
	file.Gravity = 3.7
	if err := config.Save(path, file); err != nil {
		t.Fatal(err)
	}

	cfg, err := resolve(t, "--config", path, "--angles", "45")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Links != 1 || cfg.Gravity != 3.7 {
		t.Errorf("file not applied: links=%d g=%f", cfg.Links, cfg.Gravity)
	}
	if cfg.Chain[0].Angle != 45 {
		t.Errorf("expected angle 45, got %f", cfg.Chain[0].Angle)
	}

	if _, err := resolve(t, "--config", filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestResolveConfigValidates(t *testing.T) {
	if _, err := resolve(t, "--dt", "-1"); err == nil {
		t.Error("expected error for negative dt")
	}
	if _, err := resolve(t, "--links", "4"); err == nil {
		t.Error("expected error for four links")
	}
}

func TestDownsample(t *testing.T) {
	xs := make([]float64, 1000)
	for i := range xs {
		xs[i] = float64(i)
	}
	out := downsample(xs, 80)
	if len(out) != 80 || out[0] != 0 || out[79] != 999 {
		t.Errorf("unexpected downsample: len=%d first=%f last=%f", len(out), out[0], out[len(out)-1])
	}
	if got := downsample(xs[:10], 80); len(got) != 10 {
		t.Errorf("short input should pass through, got %d", len(got))
	}
}

func TestLinkIndex(t *testing.T) {
	tests := []struct {
		v, n    int
		want    int
		wantErr bool
	}{
		{1, 3, 0, false},
		{3, 3, 2, false},
		{0, 3, 0, true},
		{3, 2, 0, true},
	}
	for _, tt := range tests {
		got, err := linkIndex("link", tt.v, tt.n)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("linkIndex(%d, %d) = %d, %v", tt.v, tt.n, got, err)
		}
	}
}

func TestConfigInitRefusesToOverwrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "p.yaml")
	if err := os.WriteFile(path, []byte("links: 1\n"), 0644); err != nil {
		t.Fatal(err)
	}

	cmd := configCmd()
	cmd.SetArgs([]string{"init", path})
	if err := cmd.Execute(); err == nil {
		t.Error("expected refusal without --force")
	}

	cmd = configCmd()
	cmd.SetArgs([]string{"init", path, "--force"})
	if err := cmd.Execute(); err != nil {
		t.Fatal(err)
	}
	if _, err := config.Load(path); err != nil {
		t.Errorf("written config does not load: %v", err)
	}
}
