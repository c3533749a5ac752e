// Package scanner finds Python sources under a directory.
package scanner

import (
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
)

type FileInfo struct {
	Path string
	Size int64
}

type Scanner struct {
	rootDir    string
	extensions []string
	exclude    []string
}

// New returns a scanner for files with the given extensions, or ".py"
// when none is given.
func New(rootDir string, extensions ...string) *Scanner {
	if len(extensions) == 0 {
		extensions = []string{".py"}
	}
	return &Scanner{
		rootDir:    rootDir,
		extensions: extensions,
	}
}

// Exclude skips files whose name ends with one of suffixes, such as
// previously written outputs.
func (s *Scanner) Exclude(suffixes ...string) *Scanner {
	s.exclude = append(s.exclude, suffixes...)
	return s
}

// Scan walks the root directory and returns the matching files in lexical
// order. Hidden directories and __pycache__ are skipped.
func (s *Scanner) Scan() ([]FileInfo, error) {
	var files []FileInfo
	err := filepath.WalkDir(s.rootDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != s.rootDir && skipDir(d.Name()) {
				return filepath.SkipDir
			}
			return nil
		}
		if !s.isTargetFile(path) {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		files = append(files, FileInfo{Path: path, Size: info.Size()})
		return nil
	})

	sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })
	return files, err
}

func skipDir(name string) bool {
	return name == "__pycache__" || strings.HasPrefix(name, ".")
}

func (s *Scanner) isTargetFile(path string) bool {
	for _, suffix := range s.exclude {
		if strings.HasSuffix(path, suffix) {
			return false
		}
	}
	ext := filepath.Ext(path)
	for _, targetExt := range s.extensions {
		if ext == targetExt {
			return true
		}
	}
	return false
}
