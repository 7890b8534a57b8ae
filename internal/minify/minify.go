// Package minify rewrites the generated script files of an output tree in place.
package minify

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	"github.com/evanw/esbuild/pkg/api"

	"git.home.luguber.info/inful/prerender/internal/logfields"
	"git.home.luguber.info/inful/prerender/internal/workerpool"
)

var (
	// ErrEmptyOutput indicates the minifier produced no code; the original is kept.
	ErrEmptyOutput = errors.New("minifier produced empty output")
	// ErrTransformFailed indicates the minifier rejected the file.
	ErrTransformFailed = errors.New("minification failed")
)

var targets = map[string]api.Target{
	"es2015": api.ES2015,
	"es2016": api.ES2016,
	"es2017": api.ES2017,
	"es2018": api.ES2018,
	"es2019": api.ES2019,
	"es2020": api.ES2020,
	"es2021": api.ES2021,
	"es2022": api.ES2022,
	"es2023": api.ES2023,
	"esnext": api.ESNext,
}

// Options configures a TreeMinifier.
type Options struct {
	Extensions  []string // default .js and .mjs
	Concurrency int      // default runtime.NumCPU()
	Target      string   // default es2020
}

// FileResult is the outcome for one script file. Warning is set when the file was
// left as it was.
type FileResult struct {
	Path    string
	Before  int
	After   int
	Warning error
}

// Report summarizes a tree minification.
type Report struct {
	Files    []FileResult
	Minified int
	Failed   int
}

// Warnings returns the results that carry a warning.
func (r Report) Warnings() []FileResult {
	var out []FileResult
	for _, f := range r.Files {
		if f.Warning != nil {
			out = append(out, f)
		}
	}
	return out
}

// TreeMinifier minifies every script file of an output tree exactly once.
type TreeMinifier struct {
	exts        map[string]struct{}
	concurrency int
	transform   api.TransformOptions
}

// New returns a TreeMinifier. An unknown target is an error.
func New(opts Options) (*TreeMinifier, error) {
	if len(opts.Extensions) == 0 {
		opts.Extensions = []string{".js", ".mjs"}
	}
	if opts.Concurrency < 1 {
		opts.Concurrency = runtime.NumCPU()
	}
	if opts.Target == "" {
		opts.Target = "es2020"
	}
	target, ok := targets[strings.ToLower(opts.Target)]
	if !ok {
		return nil, fmt.Errorf("unknown minify target %q", opts.Target)
	}

	exts := make(map[string]struct{}, len(opts.Extensions))
	for _, e := range opts.Extensions {
		exts[strings.ToLower(e)] = struct{}{}
	}
	return &TreeMinifier{
		exts:        exts,
		concurrency: opts.Concurrency,
		transform: api.TransformOptions{
			Loader:            api.LoaderJS,
			Format:            api.FormatESModule,
			Target:            target,
			MinifyWhitespace:  true,
			MinifyIdentifiers: true,
			MinifySyntax:      true,
			TreeShaking:       api.TreeShakingTrue,
			LegalComments:     api.LegalCommentsNone,
			Charset:           api.CharsetUTF8,
		},
	}, nil
}

// Collect returns the script files under root in sorted order. Extensions match
// regardless of case.
func (m *TreeMinifier) Collect(root string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.Type().IsRegular() {
			if _, ok := m.exts[strings.ToLower(filepath.Ext(p))]; ok {
				files = append(files, p)
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("collect script files: %w", err)
	}
	sort.Strings(files)
	return files, nil
}

// Run minifies every script file under root. Per-file failures are reported in the
// result and never stop the other files; the returned error is for an unwalkable tree.
func (m *TreeMinifier) Run(ctx context.Context, root string) (Report, error) {
	files, err := m.Collect(root)
	if err != nil {
		return Report{}, err
	}

	results := workerpool.Map(ctx, files, m.concurrency, func(_ context.Context, path string) (FileResult, error) {
		return m.MinifyFile(path), nil
	})

	report := Report{Files: make([]FileResult, len(files))}
	for i, r := range results {
		fr := r.Value
		if r.Err != nil {
			fr = FileResult{Path: files[i], Warning: r.Err}
		}
		report.Files[i] = fr
		if fr.Warning != nil {
			report.Failed++
		} else {
			report.Minified++
		}
	}
	slog.Info("Scripts minified", logfields.Count(report.Minified), slog.Int("failed", report.Failed))
	return report, nil
}

// MinifyFile minifies one file in place. On any failure the file is left untouched.
func (m *TreeMinifier) MinifyFile(path string) FileResult {
	res := FileResult{Path: path}
	// #nosec G304 -- path comes from walking the output tree
	code, err := os.ReadFile(path)
	if err != nil {
		res.Warning = fmt.Errorf("%w: %w", ErrTransformFailed, err)
		return res
	}
	res.Before = len(code)
	res.After = len(code)

	opts := m.transform
	opts.Sourcefile = filepath.Base(path)
	out := api.Transform(string(code), opts)
	if len(out.Errors) > 0 {
		res.Warning = fmt.Errorf("%w: %s", ErrTransformFailed, formatMessages(out.Errors))
		return res
	}
	if len(strings.TrimSpace(string(out.Code))) == 0 {
		res.Warning = ErrEmptyOutput
		return res
	}

	info, err := os.Stat(path)
	if err != nil {
		res.Warning = fmt.Errorf("%w: %w", ErrTransformFailed, err)
		return res
	}
	if err := os.WriteFile(path, out.Code, info.Mode().Perm()); err != nil {
		res.Warning = fmt.Errorf("%w: %w", ErrTransformFailed, err)
		return res
	}
	res.After = len(out.Code)
	slog.Debug("Script minified", logfields.File(path), slog.Int("before", res.Before), slog.Int("after", res.After))
	return res
}

func formatMessages(msgs []api.Message) string {
	parts := make([]string, 0, len(msgs))
	for _, msg := range msgs {
		if msg.Location != nil {
			parts = append(parts, fmt.Sprintf("%d:%d %s", msg.Location.Line, msg.Location.Column, msg.Text))
			continue
		}
		parts = append(parts, msg.Text)
	}
	return strings.Join(parts, "; ")
}
