package config

import (
	"fmt"
	"slices"
	"strings"

	ferrors "git.home.luguber.info/inful/prerender/internal/foundation/errors"
)

// Validate checks the configuration after defaults have been applied.
func (c *Config) Validate() error {
	var problems []string

	if strings.TrimSpace(c.Pages.Dir) == "" {
		problems = append(problems, "pages.dir must not be empty")
	}
	if strings.TrimSpace(c.Output.Directory) == "" {
		problems = append(problems, "output.directory must not be empty")
	}
	if strings.ContainsAny(c.Pages.Index, `/\`) {
		problems = append(problems, fmt.Sprintf("pages.index %q must be a bare file name", c.Pages.Index))
	}
	for ext, kind := range c.Pages.Extensions {
		if !strings.HasPrefix(ext, ".") {
			problems = append(problems, fmt.Sprintf("pages.extensions key %q must start with a dot", ext))
		}
		if _, err := moduleKinds.Parse(kind); err != nil {
			problems = append(problems, fmt.Sprintf("pages.extensions[%s]: unknown module kind %q", ext, kind))
		}
	}
	for _, ext := range c.Minify.Extensions {
		if !strings.HasPrefix(ext, ".") {
			problems = append(problems, fmt.Sprintf("minify.extensions entry %q must start with a dot", ext))
		}
	}
	if c.SVG.Digits() < 0 {
		problems = append(problems, "svg.precision must not be negative")
	}
	for i, argv := range c.Build.Commands {
		if len(argv) == 0 || argv[0] == "" {
			problems = append(problems, fmt.Sprintf("build.commands[%d] is empty", i))
		}
	}

	if len(problems) == 0 {
		return nil
	}
	slices.Sort(problems)
	return ferrors.ConfigError("invalid configuration: " + strings.Join(problems, "; ")).
		WithContext("path", c.source).
		Build()
}
