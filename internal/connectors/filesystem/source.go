// Package filesystem discovers corpus files on local disk and watches the
// corpus directory for new or changed files.
package filesystem

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/fsnotify/fsnotify"

	"github.com/custodia-labs/storysmith/internal/core/ports/driven"
	"github.com/custodia-labs/storysmith/internal/logger"
)

// Ensure Source implements the interface.
var _ driven.CorpusSource = (*Source)(nil)

// DefaultDebounce is how long a file must be quiet before Watch emits it.
const DefaultDebounce = 500 * time.Millisecond

// Source lists and watches files under a corpus root.
type Source struct {
	debounce time.Duration
}

// New creates a filesystem corpus source.
func New() *Source {
	return &Source{debounce: DefaultDebounce}
}

// WithDebounce sets the quiet period for Watch.
func (s *Source) WithDebounce(d time.Duration) *Source {
	s.debounce = d
	return s
}

// List returns files under root whose root-relative slash path matches any
// pattern. Hidden files and directories are skipped.
func (s *Source) List(ctx context.Context, root string, patterns []string) ([]driven.CorpusFile, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("corpus directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("corpus directory: %s is not a directory", root)
	}

	var files []driven.CorpusFile
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		if rel == "." {
			return nil
		}
		if isHidden(rel) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() || !d.Type().IsRegular() {
			return nil
		}
		if !matchAny(patterns, filepath.ToSlash(rel)) {
			return nil
		}

		fi, err := d.Info()
		if err != nil {
			return err
		}
		files = append(files, driven.CorpusFile{Path: path, Name: filepath.ToSlash(rel), Size: fi.Size()})
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(files, func(i, j int) bool { return files[i].Name < files[j].Name })
	return files, nil
}

// Watch emits matching files after they are created or written and then
// left alone for the debounce period. Both channels close when ctx is done.
func (s *Source) Watch(ctx context.Context, root string, patterns []string) (<-chan driven.CorpusFile, <-chan error, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, nil, fmt.Errorf("create watcher: %w", err)
	}

	recursive := needsSubdirs(patterns)
	dirs, err := watchDirs(root, recursive)
	if err == nil {
		for _, dir := range dirs {
			if err = watcher.Add(dir); err != nil {
				break
			}
		}
	}
	if err != nil {
		watcher.Close()
		return nil, nil, fmt.Errorf("watch %s: %w", root, err)
	}

	files := make(chan driven.CorpusFile)
	errs := make(chan error, 1)

	go func() {
		defer watcher.Close()
		defer close(files)
		defer close(errs)

		var mu sync.Mutex
		pending := make(map[string]*time.Timer)
		defer func() {
			mu.Lock()
			for _, t := range pending {
				t.Stop()
			}
			mu.Unlock()
		}()

		ready := make(chan driven.CorpusFile)

		for {
			select {
			case <-ctx.Done():
				return

			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if event.Has(fsnotify.Create) {
					if fi, err := os.Stat(event.Name); err == nil && fi.IsDir() {
						if !recursive {
							continue
						}
						if err := watcher.Add(event.Name); err != nil {
							logger.Warn("Cannot watch %s: %v", event.Name, err)
						}
						continue
					}
				}
				file, ok := handleEvent(root, patterns, event)
				if !ok {
					continue
				}
				mu.Lock()
				if t, exists := pending[file.Path]; exists {
					t.Stop()
				}
				pending[file.Path] = time.AfterFunc(s.debounce, func() {
					mu.Lock()
					delete(pending, file.Path)
					mu.Unlock()
					select {
					case ready <- file:
					case <-ctx.Done():
					}
				})
				mu.Unlock()

			case file := <-ready:
				if fi, err := os.Stat(file.Path); err == nil {
					file.Size = fi.Size()
				} else {
					continue
				}
				select {
				case files <- file:
				case <-ctx.Done():
					return
				}

			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				select {
				case errs <- err:
				default:
					logger.Warn("Watcher error: %v", err)
				}
			}
		}
	}()

	return files, errs, nil
}

// needsSubdirs reports whether any pattern can match below the root.
func needsSubdirs(patterns []string) bool {
	for _, p := range patterns {
		if strings.Contains(p, "/") || strings.Contains(p, "**") {
			return true
		}
	}
	return false
}

// watchDirs returns root, plus every non-hidden subdirectory when recursive.
func watchDirs(root string, recursive bool) ([]string, error) {
	if !recursive {
		info, err := os.Stat(root)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			return nil, fmt.Errorf("%s is not a directory", root)
		}
		return []string{root}, nil
	}

	var dirs []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if rel, _ := filepath.Rel(root, path); rel != "." && isHidden(rel) {
			return filepath.SkipDir
		}
		dirs = append(dirs, path)
		return nil
	})
	return dirs, err
}

// handleEvent maps a create or write event on a matching file to a CorpusFile.
func handleEvent(root string, patterns []string, event fsnotify.Event) (driven.CorpusFile, bool) {
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
		return driven.CorpusFile{}, false
	}

	rel, err := filepath.Rel(root, event.Name)
	if err != nil || strings.HasPrefix(rel, "..") || isHidden(rel) {
		return driven.CorpusFile{}, false
	}

	fi, err := os.Stat(event.Name)
	if err != nil || !fi.Mode().IsRegular() {
		return driven.CorpusFile{}, false
	}

	name := filepath.ToSlash(rel)
	if !matchAny(patterns, name) {
		return driven.CorpusFile{}, false
	}
	return driven.CorpusFile{Path: event.Name, Name: name, Size: fi.Size()}, true
}

// matchAny reports whether name matches any doublestar pattern.
// Matching is case-insensitive so "*.pdf" also finds "REPORT.PDF".
func matchAny(patterns []string, name string) bool {
	lower := strings.ToLower(name)
	for _, p := range patterns {
		if ok, err := doublestar.Match(strings.ToLower(p), lower); err == nil && ok {
			return true
		}
	}
	return false
}

// isHidden reports whether any element of a relative path starts with a dot.
func isHidden(rel string) bool {
	for _, part := range strings.Split(filepath.ToSlash(rel), "/") {
		if strings.HasPrefix(part, ".") && part != "." && part != ".." {
			return true
		}
	}
	return false
}
