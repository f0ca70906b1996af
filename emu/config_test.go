package emu

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestLoadConfigMissingFile(t *testing.T) {
	cfg, err := LoadConfigOrDefault(filepath.Join(t.TempDir(), "nope.toml"))
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(DefaultConfig(), cfg); diff != "" {
		t.Errorf("config mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadConfig(t *testing.T) {
	tests := []struct {
		name    string
		doc     string
		want    func(*Config)
		wantErr bool
	}{
		{
			name: "partial",
			doc: `
[emulation]
max_frames = 120
`,
			want: func(cfg *Config) { cfg.Emulation.MaxFrames = 120 },
		},
		{
			name: "full",
			doc: `
[video]
scale = 3
disable_vsync = true
shader = "crt"

[emulation]
halt_on_illegal_opcode = false

[debug]
log_modules = ["cpu", "ppu"]
`,
			want: func(cfg *Config) {
				cfg.Video = VideoConfig{Scale: 3, DisableVSync: true, Shader: ShaderCRT}
				cfg.Emulation.HaltOnIllegalOpcode = false
				cfg.Debug.LogModules = []string{"cpu", "ppu"}
			},
		},
		{
			name: "invalid video",
			doc: `
[video]
scale = 0
shader = "hq2x"
`,
			want: func(cfg *Config) { cfg.Video.Scale = 1 },
		},
		{
			name:    "unknown key",
			doc:     "[video]\nmonitor = 1\n",
			wantErr: true,
		},
		{
			name:    "syntax",
			doc:     "[video\n",
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), cfgFilename)
			if err := os.WriteFile(path, []byte(tt.doc), 0644); err != nil {
				t.Fatal(err)
			}

			cfg, err := LoadConfigOrDefault(path)
			if tt.wantErr {
				if err == nil {
					t.Fatal("LoadConfigOrDefault should fail")
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}

			want := DefaultConfig()
			tt.want(&want)
			if diff := cmp.Diff(want, cfg); diff != "" {
				t.Errorf("config mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestSaveConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", cfgFilename)

	want := DefaultConfig()
	want.Video.Scale = 4
	want.Emulation.MaxFrames = 10
	want.Debug.LogModules = []string{"emu"}
	if err := SaveConfig(want, path); err != nil {
		t.Fatal(err)
	}

	got, err := LoadConfigOrDefault(path)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("config mismatch (-want +got):\n%s", diff)
	}
}
