package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"git.home.luguber.info/inful/assetbuilder/internal/config"
)

// ThemesCmd implements the 'themes' command.
type ThemesCmd struct{}

func (t *ThemesCmd) Run(g *Global, root *CLI) error {
	cfg, err := loadConfig(root.Config)
	if err != nil {
		return err
	}
	if err := config.ValidateConfig(cfg); err != nil {
		return err
	}

	if len(cfg.Themes) == 0 {
		_, _ = fmt.Fprintln(g.Out, "No themes configured")
		return nil
	}

	tw := tabwriter.NewWriter(g.Out, 0, 4, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "THEME\tSTRATEGY\tOUTPUT\tINPUTS")
	for _, th := range cfg.Themes {
		inputs := make([]string, 0, len(th.Inputs))
		for _, in := range th.Inputs {
			mark := "ok"
			if _, err := os.Stat(filepath.Join(cfg.Source, filepath.FromSlash(in))); err != nil {
				mark = "missing"
			}
			inputs = append(inputs, fmt.Sprintf("%s (%s)", in, mark))
		}
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", th.Name, th.Strategy, th.Output, strings.Join(inputs, ", "))
	}
	return tw.Flush()
}
