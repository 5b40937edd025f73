package scan

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/Zuo-Peng/wa-digest/internal/civil"
)

type FileInfo struct {
	Path  string
	Start civil.Date
	End   civil.Date
	Mtime int64
	Size  int64
}

// Summaries walks root for Markdown files named with a
// YYYY-MM-DD_YYYY-MM-DD range. A missing root yields no files.
func Summaries(root string) ([]FileInfo, error) {
	var files []FileInfo
	err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			if path == root {
				return err
			}
			return nil // skip unreadable dirs
		}
		if info.IsDir() {
			if path != root && strings.HasPrefix(info.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if filepath.Ext(path) != ".md" {
			return nil
		}
		start, end, ok := civil.ParseRangeName(info.Name())
		if !ok {
			return nil
		}
		files = append(files, FileInfo{
			Path:  path,
			Start: start,
			End:   end,
			Mtime: info.ModTime().Unix(),
			Size:  info.Size(),
		})
		return nil
	})
	if err != nil && os.IsNotExist(err) {
		return nil, nil
	}
	sort.Slice(files, func(i, j int) bool {
		if c := files[i].End.Compare(files[j].End); c != 0 {
			return c < 0
		}
		return files[i].Path < files[j].Path
	})
	return files, err
}

// Files lists regular files under root with the given extension, sorted.
func Files(root, ext string) ([]string, error) {
	var out []string
	err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() || filepath.Ext(path) != ext {
			return nil
		}
		out = append(out, path)
		return nil
	})
	sort.Strings(out)
	return out, err
}
