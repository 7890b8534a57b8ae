package pipeline

import (
	"context"
	"os"
	"path/filepath"

	ferrors "git.home.luguber.info/inful/prerender/internal/foundation/errors"
	"git.home.luguber.info/inful/prerender/internal/output"
)

// stagePrepareOutput cleans the output root when configured and copies the static
// assets directory into it, keeping the directory name (src/assets -> dist/assets).
func stagePrepareOutput(_ context.Context, bs *BuildState) error {
	if bs.Config.Output.ShouldClean() {
		if err := output.Clean(bs.OutputDir); err != nil {
			return NewFatalStageError(StagePrepareOutput, ferrors.FileSystemError("cannot prepare output directory").
				WithCause(err).WithContext("path", bs.OutputDir).Build())
		}
	} else if err := os.MkdirAll(bs.OutputDir, 0o750); err != nil {
		return NewFatalStageError(StagePrepareOutput, ferrors.FileSystemError("cannot create output directory").
			WithCause(err).WithContext("path", bs.OutputDir).Build())
	}

	if bs.AssetsDir == "" {
		return nil
	}
	dst := filepath.Join(bs.OutputDir, filepath.Base(bs.AssetsDir))
	if _, err := output.CopyAssets(bs.AssetsDir, dst); err != nil {
		return NewFatalStageError(StagePrepareOutput, ferrors.FileSystemError("cannot copy static assets").
			WithCause(err).WithContext("path", bs.AssetsDir).Build())
	}
	return nil
}
