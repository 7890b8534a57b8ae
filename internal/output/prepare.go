package output

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"git.home.luguber.info/inful/prerender/internal/logfields"
)

// Clean removes root and recreates it empty.
func Clean(root string) error {
	if err := os.RemoveAll(root); err != nil {
		return fmt.Errorf("failed to clean output directory: %w", err)
	}
	if err := os.MkdirAll(root, 0o750); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	slog.Info("Cleaned output directory", logfields.Path(root))
	return nil
}

// CopyAssets copies the contents of src into dst recursively and returns the number
// of files copied. A missing src copies nothing.
func CopyAssets(src, dst string) (int, error) {
	info, err := os.Stat(src)
	if errors.Is(err, os.ErrNotExist) {
		slog.Debug("No assets directory", logfields.Path(src))
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to stat assets directory: %w", err)
	}
	if !info.IsDir() {
		return 0, fmt.Errorf("assets path %s is not a directory", src)
	}

	copied := 0
	err = filepath.WalkDir(src, func(p string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		rel, err := filepath.Rel(src, p)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)
		if d.IsDir() {
			return os.MkdirAll(target, 0o750)
		}
		if !d.Type().IsRegular() {
			return nil
		}
		if err := copyFile(p, target); err != nil {
			return err
		}
		copied++
		return nil
	})
	if err != nil {
		return copied, fmt.Errorf("failed to copy assets: %w", err)
	}
	slog.Info("Copied static assets", logfields.Path(src), logfields.Count(copied))
	return copied, nil
}

func copyFile(src, dst string) error {
	// #nosec G304 -- src comes from walking the configured assets directory
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer func() { _ = in.Close() }()

	// #nosec G302 -- public site asset
	out, err := os.OpenFile(dst, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}
