package server

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"sync"
)

// RegenerateHandler invokes the generator binary as a subprocess against a
// fresh temporary directory and, on success, atomically swaps it in as the
// live repository tree. All regeneration and upload-to-storage moves are
// serialized behind mu so the tree is never observed half-written.
func RegenerateHandler(cfg ServerConfig, mu *sync.Mutex) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		defer mu.Unlock()

		if err := regenerate(r.Context(), cfg); err != nil {
			writeError(w, err)
			return
		}
		w.WriteHeader(http.StatusOK)
	}
}

func regenerate(ctx context.Context, cfg ServerConfig) error {
	outputDir, err := os.MkdirTemp("", "debrepod-regen-*")
	if err != nil {
		return internal("create output directory", err)
	}
	defer os.RemoveAll(outputDir)

	cmd := exec.CommandContext(ctx, cfg.RepogenCommand,
		"-c", cfg.ConfigPath,
		"-o", outputDir,
		"-i", cfg.DebDirectory,
		"-k", cfg.KeyFile,
		"--overwrite",
	)
	cmd.Stdin = nil
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	if err := cmd.Run(); err != nil {
		return internal("generator subprocess failed", err)
	}

	return swapRepositoryTree(cfg.RepoDirectory, outputDir)
}

// swapRepositoryTree atomically replaces repoDir's contents with newDir's
// via two renames: the live tree moves aside into a scratch path, the new
// tree takes its place, and the scratch path is deleted. Each rename moves
// a whole tree, so no mix of old and new files is ever visible at repoDir;
// between the two renames repoDir does not exist.
func swapRepositoryTree(repoDir, newDir string) error {
	scratch := filepath.Join(filepath.Dir(repoDir), fmt.Sprintf(".%s.old", filepath.Base(repoDir)))
	os.RemoveAll(scratch)

	if _, err := os.Stat(repoDir); err == nil {
		if err := os.Rename(repoDir, scratch); err != nil {
			return internal("move live tree aside", err)
		}
	} else if !os.IsNotExist(err) {
		return internal("stat live tree", err)
	}

	if err := os.Rename(newDir, repoDir); err != nil {
		if _, statErr := os.Stat(scratch); statErr == nil {
			os.Rename(scratch, repoDir)
		}
		return internal("activate new tree", err)
	}

	os.RemoveAll(scratch)
	return nil
}
