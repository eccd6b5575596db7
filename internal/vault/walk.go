// Package vault handles discovery of managed markdown files.
package vault

import (
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
)

// File identifies one vault-managed markdown file.
type File struct {
	// Path is the absolute path on disk.
	Path string
	// RelativePath is the path relative to the vault root.
	RelativePath string
	// ExpectedType is the type the file is expected to carry, when the
	// caller knows it (e.g. from a type-to-directory convention). May be
	// empty; the file's own frontmatter wins.
	ExpectedType string
}

// Files returns all markdown files under the vault root in deterministic
// (lexical) order. Dot-directories (including the .quill metadata directory)
// are skipped entirely.
func Files(vaultPath string) ([]File, error) {
	var files []File

	err := filepath.WalkDir(vaultPath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if d.IsDir() {
			if path != vaultPath && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}

		if !strings.HasSuffix(path, ".md") {
			return nil
		}

		relativePath, relErr := filepath.Rel(vaultPath, path)
		if relErr != nil {
			return relErr
		}

		files = append(files, File{
			Path:         path,
			RelativePath: filepath.ToSlash(relativePath),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	// WalkDir is already lexical per directory, but sort on the relative
	// path so ordering is stable across platforms and separators.
	sort.Slice(files, func(i, j int) bool {
		return files[i].RelativePath < files[j].RelativePath
	})

	return files, nil
}

// ExpectTypes fills each file's ExpectedType from the vault's directory
// convention: a file under a top-level directory named after a known type is
// expected to carry that type. Files at the root or under unrecognized
// directories are left untyped; a file's own frontmatter always wins.
func ExpectTypes(files []File, isType func(name string) bool) {
	for i := range files {
		dir, _, nested := strings.Cut(files[i].RelativePath, "/")
		if nested && isType(dir) {
			files[i].ExpectedType = dir
		}
	}
}
