package commands

import (
	"fmt"
	"path/filepath"

	"git.home.luguber.info/inful/prerender/internal/config"
)

// InitCmd implements the 'init' command.
type InitCmd struct {
	Force  bool   `help:"Overwrite existing configuration file"`
	Output string `short:"o" name:"output" help:"Output directory for generated config file"`
}

func (i *InitCmd) Run(g *Global, root *CLI) error {
	cfgPath := root.Config
	if i.Output != "" {
		cfgPath = filepath.Join(i.Output, config.DefaultConfigFile)
	}
	_, _ = fmt.Fprintf(g.Out, "Writing configuration to %s\n", cfgPath)
	return config.Init(cfgPath, i.Force)
}
