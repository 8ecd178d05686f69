package cli

import (
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/charmbracelet/log"
	"github.com/cockroachdb/errors"

	"termaid"
)

// Config is the on-disk configuration. Unset fields keep the library
// defaults; flags override whatever the file says.
type Config struct {
	Render RenderConfig `toml:"render"`
	Log    LogConfig    `toml:"log"`
}

// RenderConfig mirrors termaid.Options.
type RenderConfig struct {
	ASCII      *bool `toml:"ascii"`
	PaddingX   *int  `toml:"padding_x"`
	PaddingY   *int  `toml:"padding_y"`
	BoxPadding *int  `toml:"box_padding"`
}

// LogConfig sets the default log level ("debug", "info", "warn", "error").
type LogConfig struct {
	Level string `toml:"level"`
}

// configPath returns $XDG_CONFIG_HOME/termaid/config.toml, falling back to
// ~/.config when the variable is unset.
func configPath() (string, error) {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, appName, "config.toml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName, "config.toml"), nil
}

// LoadConfig reads the file at path. A missing file is not an error.
func LoadConfig(path string) (Config, error) {
	var cfg Config
	if path == "" {
		return cfg, nil
	}
	md, err := toml.DecodeFile(path, &cfg)
	if errors.Is(err, os.ErrNotExist) {
		return Config{}, nil
	}
	if err != nil {
		return Config{}, errors.WithHint(
			errors.Wrapf(err, "reading config %s", path),
			"see 'termaid --help' for the recognised [render] and [log] keys")
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return Config{}, errors.Newf("config %s: unknown keys %v", path, undecoded)
	}
	if cfg.Log.Level != "" {
		if _, err := log.ParseLevel(cfg.Log.Level); err != nil {
			return Config{}, errors.Wrapf(err, "config %s", path)
		}
	}
	return cfg, nil
}

// apply copies the set fields onto opts.
func (r RenderConfig) apply(opts *termaid.Options) {
	if r.ASCII != nil {
		opts.UseASCII = *r.ASCII
	}
	if r.PaddingX != nil {
		opts.PaddingX = *r.PaddingX
	}
	if r.PaddingY != nil {
		opts.PaddingY = *r.PaddingY
	}
	if r.BoxPadding != nil {
		opts.BoxBorderPadding = *r.BoxPadding
	}
}
