package pipeline

import (
	"errors"
	"log/slog"

	ggit "github.com/go-git/go-git/v5"

	"git.home.luguber.info/inful/prerender/internal/logfields"
)

// sourceRevision returns the HEAD commit of the git repository containing dir,
// or "" when dir is not inside a repository.
func sourceRevision(dir string) string {
	repo, err := ggit.PlainOpenWithOptions(dir, &ggit.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		if !errors.Is(err, ggit.ErrRepositoryNotExists) {
			slog.Debug("Failed to open git repository", logfields.Path(dir), logfields.Error(err))
		}
		return ""
	}
	ref, err := repo.Head()
	if err != nil {
		slog.Debug("Failed to resolve HEAD", logfields.Path(dir), logfields.Error(err))
		return ""
	}
	return ref.Hash().String()
}
