// Package cli implements the termaid command-line interface.
//
// The commands are:
//   - render: print the drawing of one or more diagram files
//   - view: page through a drawing in the terminal
//   - families: list the supported diagram families
//
// Every command reads $XDG_CONFIG_HOME/termaid/config.toml (or --config)
// and supports --verbose for debug logging.
package cli

import (
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"termaid"
)

const appName = "termaid"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// CLI holds state shared by all commands.
type CLI struct {
	Logger *log.Logger
	Getenv func(string) string

	configFile string
	verbose    bool
	config     Config
}

// New creates a CLI logging to w at level.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level), Getenv: os.Getenv}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root command with every subcommand registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "termaid draws Mermaid-style diagrams as terminal text",
		Long: `termaid renders flowchart, state, sequence, class and entity-relationship
diagrams written in Mermaid syntax as Unicode box drawing or plain ASCII.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: func(*cobra.Command, []string) error { return c.loadConfig() },
	}
	root.PersistentFlags().StringVar(&c.configFile, "config", "", "config file (default $XDG_CONFIG_HOME/termaid/config.toml)")
	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "enable verbose logging")

	root.AddCommand(c.renderCommand())
	root.AddCommand(c.viewCommand())
	root.AddCommand(c.familiesCommand())
	return root
}

// loadConfig reads the config file and applies its log level. --verbose
// wins over the file.
func (c *CLI) loadConfig() error {
	path := c.configFile
	if path == "" {
		var err error
		if path, err = configPath(); err != nil {
			c.Logger.Debug("no config directory", "err", err)
			path = ""
		}
	}
	cfg, err := LoadConfig(path)
	if err != nil {
		return err
	}
	c.config = cfg
	if cfg.Log.Level != "" {
		level, _ := log.ParseLevel(cfg.Log.Level)
		c.SetLogLevel(level)
	}
	if c.verbose {
		c.SetLogLevel(LogDebug)
	}
	c.Logger.Debug("configuration loaded", "path", path)
	return nil
}

// renderFlags are the spacing and glyph flags shared by render and view.
type renderFlags struct {
	ascii      bool
	paddingX   int
	paddingY   int
	boxPadding int
}

func (f *renderFlags) register(cmd *cobra.Command) {
	d := termaid.DefaultOptions()
	cmd.Flags().BoolVarP(&f.ascii, "ascii", "a", false, "use plain ASCII glyphs")
	cmd.Flags().IntVar(&f.paddingX, "padding-x", d.PaddingX, "horizontal gap between boxes")
	cmd.Flags().IntVar(&f.paddingY, "padding-y", d.PaddingY, "vertical gap between boxes")
	cmd.Flags().IntVar(&f.boxPadding, "box-padding", d.BoxBorderPadding, "space between a box border and its text")
}

// options layers terminal detection, the config file and explicitly set
// flags, in that order.
func (c *CLI) options(cmd *cobra.Command, f *renderFlags) termaid.Options {
	opts := termaid.DefaultOptions()
	opts.Logger = c.Logger
	opts.UseASCII = DetectGlyphs(c.Getenv) == GlyphsASCII
	c.config.Render.apply(&opts)

	flags := cmd.Flags()
	if flags.Changed("ascii") {
		opts.UseASCII = f.ascii
	}
	if flags.Changed("padding-x") {
		opts.PaddingX = f.paddingX
	}
	if flags.Changed("padding-y") {
		opts.PaddingY = f.paddingY
	}
	if flags.Changed("box-padding") {
		opts.BoxBorderPadding = f.boxPadding
	}
	return opts
}
