package emu

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"nescore/emu/log"
)

type Config struct {
	Video     VideoConfig     `toml:"video"`
	Emulation EmulationConfig `toml:"emulation"`
	Debug     DebugConfig     `toml:"debug"`
}

type VideoConfig struct {
	Scale        int    `toml:"scale"`
	DisableVSync bool   `toml:"disable_vsync"`
	Shader       string `toml:"shader"`
}

// Available fragment shaders.
const (
	ShaderPassthrough = "passthrough"
	ShaderCRT         = "crt"
)

type EmulationConfig struct {
	// HaltOnIllegalOpcode stops the emulation gracefully when the CPU meets
	// an illegal opcode. When false, the illegal opcode is reported as an
	// error.
	HaltOnIllegalOpcode bool `toml:"halt_on_illegal_opcode"`

	// MaxFrames stops the emulation after that many frames. 0 means no
	// limit.
	MaxFrames uint64 `toml:"max_frames"`
}

type DebugConfig struct {
	// LogModules lists the modules for which debug logs are enabled.
	LogModules []string `toml:"log_modules"`
}

func DefaultConfig() Config {
	return Config{
		Video: VideoConfig{
			Scale:  2,
			Shader: ShaderPassthrough,
		},
		Emulation: EmulationConfig{
			HaltOnIllegalOpcode: true,
		},
	}
}

func (vcfg *VideoConfig) Check() {
	if vcfg.Scale < 1 {
		vcfg.Scale = 1
	}
	if vcfg.Scale > 8 {
		vcfg.Scale = 8
	}
	if vcfg.Shader != ShaderPassthrough && vcfg.Shader != ShaderCRT {
		log.ModEmu.WarnZ("invalid shader name, using default").
			String("shader", vcfg.Shader).
			String("default", ShaderPassthrough).
			End()
		vcfg.Shader = ShaderPassthrough
	}
}

const cfgFilename = "config.toml"

// ConfigDir returns the nescore directory in the user configuration
// directory.
func ConfigDir() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "nescore"), nil
}

// DefaultConfigPath returns the path of the configuration file in ConfigDir.
func DefaultConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, cfgFilename), nil
}

// LoadConfigOrDefault loads the configuration at path. If the file doesn't
// exist, the default configuration is returned. Keys absent from the file
// keep their default value.
func LoadConfigOrDefault(path string) (Config, error) {
	cfg := DefaultConfig()
	md, err := toml.DecodeFile(path, &cfg)
	if errors.Is(err, fs.ErrNotExist) {
		return DefaultConfig(), nil
	}
	if err != nil {
		return DefaultConfig(), fmt.Errorf("config %s: %w", path, err)
	}
	if undec := md.Undecoded(); len(undec) != 0 {
		return cfg, fmt.Errorf("config %s: unknown keys %v", path, undec)
	}
	cfg.Video.Check()
	return cfg, nil
}

// SaveConfig writes cfg at path, creating the parent directory if needed.
func SaveConfig(cfg Config, path string) error {
	buf, err := toml.Marshal(cfg)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	return os.WriteFile(path, buf, 0644)
}
