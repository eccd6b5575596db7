// Package backup copies vault files aside before a migration mutates them.
package backup

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gosimple/slug"
)

// Create copies the given vault-relative files into a timestamped backup
// directory under .quill/backups, preserving their relative layout.
// It returns the backup directory path.
//
// The copy happens before any file is rewritten; callers must treat a
// returned error as fatal for the whole run.
func Create(vaultRoot string, relPaths []string, label string) (string, error) {
	name := time.Now().Format("2006-01-02T15-04-05")
	if label != "" {
		name += "-" + slug.Make(label)
	}
	backupDir := filepath.Join(vaultRoot, ".quill", "backups", name)

	if err := os.MkdirAll(backupDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create backup directory: %w", err)
	}

	for _, rel := range relPaths {
		src := filepath.Join(vaultRoot, filepath.FromSlash(rel))
		dst := filepath.Join(backupDir, filepath.FromSlash(rel))

		if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
			return "", fmt.Errorf("failed to create backup subdirectory for %s: %w", rel, err)
		}

		data, err := os.ReadFile(src)
		if err != nil {
			return "", fmt.Errorf("failed to read %s for backup: %w", rel, err)
		}
		if err := os.WriteFile(dst, data, 0644); err != nil {
			return "", fmt.Errorf("failed to back up %s: %w", rel, err)
		}
	}

	return backupDir, nil
}
