package tracker

import (
	"context"
	"io/fs"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/steveyegge/scout/internal/types"
)

const (
	gitStatusTimeout = 5 * time.Second
	recentFileWindow = 24 * time.Hour

	// maxRecentFiles caps the directory scan itself; contextRecentFiles is
	// how many of those make it into the session context.
	maxRecentFiles     = 50
	contextRecentFiles = 20
)

// CaptureContext assembles the session context for a new session: prompt,
// working directory, version-control status, and recently touched files.
// Context capture never fails; unavailable pieces are left empty.
func CaptureContext(ctx context.Context, sessionID, prompt, workingDir string) *types.SessionContext {
	sctx := &types.SessionContext{
		SessionID:  sessionID,
		Prompt:     prompt,
		WorkingDir: workingDir,
		Timestamp:  time.Now(),
	}

	sctx.GitStatus = gitStatus(ctx, workingDir)

	recent := recentlyModifiedFiles(workingDir, recentFileWindow)
	if len(recent) > contextRecentFiles {
		recent = recent[:contextRecentFiles]
	}
	sctx.RecentFiles = recent

	return sctx
}

// gitStatus returns `git status --short` output for dir, or "" when dir is
// not a repository, git is missing, or the command times out.
func gitStatus(ctx context.Context, dir string) string {
	ctx, cancel := context.WithTimeout(ctx, gitStatusTimeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, "git", "-C", dir, "status", "--short")
	output, err := cmd.Output()
	if err != nil {
		return ""
	}
	return string(output)
}

// recentlyModifiedFiles walks dir for files modified within the window,
// skipping dotted paths, returning paths relative to dir (at most
// maxRecentFiles). Unreadable entries are skipped, not fatal.
func recentlyModifiedFiles(dir string, window time.Duration) []string {
	cutoff := time.Now().Add(-window)
	var recent []string

	filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if len(recent) >= maxRecentFiles {
			return fs.SkipAll
		}

		name := d.Name()
		if strings.HasPrefix(name, ".") && path != dir {
			if d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return nil
		}
		if info.ModTime().Before(cutoff) {
			return nil
		}

		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return nil
		}
		recent = append(recent, rel)
		return nil
	})

	return recent
}
