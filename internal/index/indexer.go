package index

import (
	"fmt"
	"log/slog"

	"github.com/Zuo-Peng/wa-digest/internal/parse"
	"github.com/Zuo-Peng/wa-digest/internal/scan"
)

// excerptLen matches the card excerpt on the published site.
const excerptLen = 280

type Stats struct {
	Scanned int
	Updated int
	Skipped int
	Pruned  int
	Errors  int
}

func (s Stats) String() string {
	return fmt.Sprintf("scanned=%d updated=%d skipped=%d pruned=%d errors=%d",
		s.Scanned, s.Updated, s.Skipped, s.Pruned, s.Errors)
}

// IndexAll brings the index in line with the summaries under root: new or
// changed files are reparsed, unchanged ones skipped, removed ones pruned.
func IndexAll(db *DB, root string, log *slog.Logger) (Stats, error) {
	var stats Stats
	if log == nil {
		log = slog.Default()
	}

	files, err := scan.Summaries(root)
	if err != nil {
		return stats, fmt.Errorf("scan: %w", err)
	}
	stats.Scanned = len(files)

	// track which files we see, for pruning
	seenKeys := make(map[string]struct{})

	for _, fi := range files {
		s, err := parse.ParseSummaryFile(fi.Path)
		if err != nil {
			stats.Errors++
			log.Warn("parse summary", "path", fi.Path, "err", err)
			continue
		}
		key := s.Key()
		if _, dup := seenKeys[key]; dup {
			stats.Errors++
			log.Warn("duplicate week, keeping the first file", "path", fi.Path, "week", key)
			continue
		}
		seenKeys[key] = struct{}{}

		needs, err := needsUpdate(db, key, fi.Path, fi.Mtime, fi.Size)
		if err != nil {
			stats.Errors++
			continue
		}
		if !needs {
			stats.Skipped++
			continue
		}

		if err := indexSummary(db, s, fi); err != nil {
			stats.Errors++
			log.Warn("index summary", "path", fi.Path, "err", err)
			continue
		}
		log.Debug("indexed", "week", key, "sections", len(s.Sections))
		stats.Updated++
	}

	// prune summaries whose files no longer exist
	pruned, err := pruneSummaries(db, seenKeys)
	if err != nil {
		return stats, fmt.Errorf("prune: %w", err)
	}
	stats.Pruned = pruned

	return stats, nil
}

func needsUpdate(db *DB, key, path string, mtime, size int64) (bool, error) {
	st, err := db.GetFileState(key)
	if err != nil {
		return false, err
	}
	if st == nil {
		return true, nil // new summary
	}
	if st.Mtime != mtime || st.Size != size {
		return true, nil
	}
	row, err := db.GetSummary(key)
	if err != nil {
		return false, err
	}
	return row == nil || row.FilePath != path, nil
}

func indexSummary(db *DB, s *parse.Summary, fi scan.FileInfo) error {
	key := s.Key()
	// delete old data first
	if err := db.DeleteSummary(key); err != nil {
		return err
	}

	tx, err := db.Raw().Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.Exec(
		`INSERT INTO summaries (summary_key, file_path, title, start_date, end_date, excerpt, mtime, size)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		key,
		fi.Path,
		s.Title,
		s.Start.ISO(),
		s.End.ISO(),
		s.Excerpt(excerptLen),
		fi.Mtime,
		fi.Size,
	)
	if err != nil {
		return err
	}

	stmt, err := tx.Prepare(
		`INSERT INTO sections (summary_key, section_id, heading, text, line_number)
		 VALUES (?, ?, ?, ?, ?)`,
	)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, sec := range s.Sections {
		if _, err := stmt.Exec(key, sec.ID, sec.Heading, sec.Text, sec.LineNumber); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func pruneSummaries(db *DB, seenKeys map[string]struct{}) (int, error) {
	allKeys, err := db.AllSummaryKeys()
	if err != nil {
		return 0, err
	}

	pruned := 0
	for key := range allKeys {
		if _, ok := seenKeys[key]; !ok {
			if err := db.DeleteSummary(key); err != nil {
				return pruned, err
			}
			pruned++
		}
	}
	return pruned, nil
}
