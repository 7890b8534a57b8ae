package pipeline

import (
	"context"
	"os/exec"
	"strings"

	ferrors "git.home.luguber.info/inful/prerender/internal/foundation/errors"
	"git.home.luguber.info/inful/prerender/internal/logfields"
)

// stageRunCommands runs build.commands in order from the project directory
// (CSS framework pass, client bundle build). Any failure aborts the build.
func stageRunCommands(ctx context.Context, bs *BuildState) error {
	for _, argv := range bs.Config.Build.Commands {
		if err := ctx.Err(); err != nil {
			return NewCanceledStageError(StageRunCommands, canceled(err))
		}
		bs.Logger.Info("Running build command", logfields.Command(argv))

		// #nosec G204 -- commands come from the project configuration
		cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
		cmd.Dir = bs.Config.ProjectDir()
		cmd.Stdout = bs.Options.CommandOutput
		cmd.Stderr = bs.Options.CommandOutput
		if err := cmd.Run(); err != nil {
			if ctx.Err() != nil {
				return NewCanceledStageError(StageRunCommands, canceled(ctx.Err()))
			}
			return NewFatalStageError(StageRunCommands, ferrors.CommandError("build command failed").
				WithCause(err).
				WithContext("command", strings.Join(argv, " ")).
				Build())
		}
	}
	return nil
}
