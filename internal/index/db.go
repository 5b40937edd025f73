package index

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

const schema = `
PRAGMA journal_mode = WAL;
PRAGMA synchronous = NORMAL;
PRAGMA cache_size = -64000;
PRAGMA busy_timeout = 5000;

CREATE TABLE IF NOT EXISTS summaries (
    summary_key TEXT PRIMARY KEY,
    file_path   TEXT NOT NULL,
    title       TEXT NOT NULL DEFAULT '',
    start_date  TEXT NOT NULL,
    end_date    TEXT NOT NULL,
    excerpt     TEXT NOT NULL DEFAULT '',
    mtime       INTEGER NOT NULL DEFAULT 0,
    size        INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS sections (
    summary_key TEXT NOT NULL,
    section_id  INTEGER NOT NULL,
    heading     TEXT NOT NULL DEFAULT '',
    text        TEXT NOT NULL,
    line_number INTEGER NOT NULL DEFAULT 0,
    PRIMARY KEY (summary_key, section_id)
);

CREATE VIRTUAL TABLE IF NOT EXISTS sections_fts USING fts5(
    heading,
    text,
    content=sections,
    content_rowid=rowid,
    tokenize='unicode61 remove_diacritics 2'
);

-- triggers to keep FTS in sync
CREATE TRIGGER IF NOT EXISTS sections_ai AFTER INSERT ON sections BEGIN
    INSERT INTO sections_fts(rowid, heading, text) VALUES (new.rowid, new.heading, new.text);
END;

CREATE TRIGGER IF NOT EXISTS sections_ad AFTER DELETE ON sections BEGIN
    INSERT INTO sections_fts(sections_fts, rowid, heading, text) VALUES('delete', old.rowid, old.heading, old.text);
END;

CREATE TRIGGER IF NOT EXISTS sections_au AFTER UPDATE ON sections BEGIN
    INSERT INTO sections_fts(sections_fts, rowid, heading, text) VALUES('delete', old.rowid, old.heading, old.text);
    INSERT INTO sections_fts(rowid, heading, text) VALUES (new.rowid, new.heading, new.text);
END;
`

type DB struct {
	db *sql.DB
}

func OpenDB(dbPath string) (*DB, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}

	// schema version tracking for forced re-index
	db.Exec("CREATE TABLE IF NOT EXISTS meta (key TEXT PRIMARY KEY, value TEXT)")
	d := &DB{db: db}
	d.migrateSchemaVersion()

	return d, nil
}

// schemaVersion should be bumped whenever section parsing changes to force
// a full re-index.
const schemaVersion = "1"

func (d *DB) migrateSchemaVersion() {
	var ver string
	err := d.db.QueryRow("SELECT value FROM meta WHERE key = 'schema_version'").Scan(&ver)
	if err != nil || ver != schemaVersion {
		d.db.Exec("UPDATE summaries SET mtime = 0, size = 0")
		d.db.Exec("INSERT OR REPLACE INTO meta (key, value) VALUES ('schema_version', ?)", schemaVersion)
	}
}

func (d *DB) Close() error {
	return d.db.Close()
}

func (d *DB) Raw() *sql.DB {
	return d.db
}

type FileState struct {
	Mtime int64
	Size  int64
}

func (d *DB) GetFileState(key string) (*FileState, error) {
	var st FileState
	err := d.db.QueryRow(
		"SELECT mtime, size FROM summaries WHERE summary_key = ?",
		key,
	).Scan(&st.Mtime, &st.Size)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &st, nil
}

func (d *DB) AllSummaryKeys() (map[string]struct{}, error) {
	rows, err := d.db.Query("SELECT summary_key FROM summaries")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	keys := make(map[string]struct{})
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, err
		}
		keys[k] = struct{}{}
	}
	return keys, rows.Err()
}

func (d *DB) DeleteSummary(key string) error {
	tx, err := d.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM sections WHERE summary_key = ?", key); err != nil {
		return err
	}
	if _, err := tx.Exec("DELETE FROM summaries WHERE summary_key = ?", key); err != nil {
		return err
	}
	return tx.Commit()
}

func (d *DB) SummaryCount() (int, error) {
	var n int
	err := d.db.QueryRow("SELECT COUNT(*) FROM summaries").Scan(&n)
	return n, err
}

func (d *DB) SectionCount() (int, error) {
	var n int
	err := d.db.QueryRow("SELECT COUNT(*) FROM sections").Scan(&n)
	return n, err
}

type SummaryRow struct {
	Key       string
	FilePath  string
	Title     string
	StartDate string // YYYY-MM-DD
	EndDate   string
	Excerpt   string
}

const summaryCols = "summary_key, file_path, title, start_date, end_date, excerpt"

func scanSummary(sc interface{ Scan(...any) error }) (SummaryRow, error) {
	var s SummaryRow
	err := sc.Scan(&s.Key, &s.FilePath, &s.Title, &s.StartDate, &s.EndDate, &s.Excerpt)
	return s, err
}

func (d *DB) GetSummary(key string) (*SummaryRow, error) {
	s, err := scanSummary(d.db.QueryRow("SELECT "+summaryCols+" FROM summaries WHERE summary_key = ?", key))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// ListSummaries returns summaries newest first. since (YYYY-MM-DD) filters
// on the end date when set; limit <= 0 means all.
func (d *DB) ListSummaries(since string, limit int) ([]SummaryRow, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := d.db.Query(
		"SELECT "+summaryCols+" FROM summaries WHERE end_date >= ? ORDER BY end_date DESC LIMIT ?",
		since, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []SummaryRow
	for rows.Next() {
		s, err := scanSummary(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

type SectionRow struct {
	SummaryKey string
	SectionID  int
	Heading    string
	Text       string
	LineNumber int
}

func (d *DB) GetSections(key string) ([]SectionRow, error) {
	rows, err := d.db.Query(
		"SELECT summary_key, section_id, heading, text, line_number FROM sections WHERE summary_key = ? ORDER BY section_id",
		key,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []SectionRow
	for rows.Next() {
		var s SectionRow
		if err := rows.Scan(&s.SummaryKey, &s.SectionID, &s.Heading, &s.Text, &s.LineNumber); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// GetSectionsWindow returns up to context sections either side of a hit.
// hitIdx is the hit's position in the returned slice, or -1 when the hit is
// unknown and every section is returned. startPos is the position of the
// first returned section and total the summary's section count.
func (d *DB) GetSectionsWindow(key string, hitSectionID, context int) (sections []SectionRow, hitIdx, startPos, total int, err error) {
	all, err := d.GetSections(key)
	if err != nil {
		return nil, -1, 0, 0, err
	}
	hitPos := -1
	for i, s := range all {
		if s.SectionID == hitSectionID {
			hitPos = i
			break
		}
	}
	if hitPos < 0 || context < 0 {
		return all, hitPos, 0, len(all), nil
	}
	start := max(0, hitPos-context)
	end := min(len(all), hitPos+context+1)
	return all[start:end], hitPos - start, start, len(all), nil
}
