package config

import (
	"strings"

	"git.home.luguber.info/inful/prerender/internal/foundation/normalization"
)

var moduleKinds = normalization.New("page module kind", map[string]string{
	"template": ModuleTemplate,
	"tmpl":     ModuleTemplate,
	"gohtml":   ModuleTemplate,
	"markdown": ModuleMarkdown,
	"md":       ModuleMarkdown,
	"process":  ModuleProcess,
	"ssr":      ModuleProcess,
}, "")

// normalize canonicalizes spellings the user may vary: module kinds, extension case,
// the log section. Unknown module kinds are left for Validate to report.
func (c *Config) normalize() {
	if len(c.Pages.Extensions) > 0 {
		exts := make(map[string]string, len(c.Pages.Extensions))
		for ext, kind := range c.Pages.Extensions {
			if v, err := moduleKinds.Parse(kind); err == nil {
				kind = v
			}
			exts[strings.ToLower(strings.TrimSpace(ext))] = kind
		}
		c.Pages.Extensions = exts
	}
	for i, ext := range c.Minify.Extensions {
		c.Minify.Extensions[i] = strings.ToLower(strings.TrimSpace(ext))
	}
	c.Log.Level = string(NormalizeLogLevel(c.Log.Level))
	c.Log.Format = string(NormalizeLogFormat(c.Log.Format))
}
