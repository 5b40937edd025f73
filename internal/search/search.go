package search

import (
	"database/sql"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/Zuo-Peng/wa-digest/internal/index"
)

// minFTSRunes is the shortest query sent to FTS5; shorter ones use LIKE.
const minFTSRunes = 3

type Result struct {
	SummaryKey string
	SectionID  int
	Heading    string
	LineNumber int
	Title      string
	StartDate  string
	EndDate    string
	FilePath   string
	Snippet    string
	Rank       float64
}

type Options struct {
	Query string
	Since string // "" = no filter, e.g. "2026-01-01", compared with the week end
	Limit int    // summaries, not sections

	// PerSummary caps the sections returned for one summary. Zero keeps
	// only the best-ranked section.
	PerSummary int
}

// makeSnippet extracts a snippet around the first occurrence of query in text.
func makeSnippet(text, query string, contextChars int) string {
	text = strings.Join(strings.Fields(text), " ")
	lower := strings.ToLower(text)
	qLower := strings.ToLower(query)
	idx := strings.Index(lower, qLower)
	runes := []rune(text)
	if idx < 0 || len(lower) != len(text) {
		// no match, or lowering changed byte offsets: return head
		if len(runes) > contextChars*2 {
			return string(runes[:contextChars*2]) + "..."
		}
		return text
	}
	qLen := utf8.RuneCountInString(query)
	runePos := utf8.RuneCountInString(text[:idx])
	start := max(runePos-contextChars, 0)
	end := min(runePos+qLen+contextChars, len(runes))
	prefix := ""
	suffix := ""
	if start > 0 {
		prefix = "..."
	}
	if end < len(runes) {
		suffix = "..."
	}
	snippet := string(runes[start:runePos]) +
		">>>" + string(runes[runePos:runePos+qLen]) + "<<<" +
		string(runes[runePos+qLen:end])
	return prefix + snippet + suffix
}

// ftsQuery turns free text into an FTS5 expression: every word must match,
// the last one as a prefix so results follow typing.
func ftsQuery(q string) string {
	words := strings.FieldsFunc(q, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	if len(words) == 0 {
		return ""
	}
	parts := make([]string, len(words))
	for i, w := range words {
		parts[i] = `"` + w + `"`
	}
	parts[len(parts)-1] += "*"
	return strings.Join(parts, " ")
}

func Search(db *index.DB, opts Options) ([]Result, error) {
	opts.Query = strings.TrimSpace(opts.Query)
	if opts.Query == "" {
		return nil, nil
	}
	if opts.Limit <= 0 {
		opts.Limit = 50
	}

	perSummary := max(opts.PerSummary, 1)

	// Fetch more results before capping so we still have enough after
	origLimit := opts.Limit
	opts.Limit = origLimit * 3 * perSummary

	var results []Result
	var err error
	match := ftsQuery(opts.Query)
	if utf8.RuneCountInString(opts.Query) < minFTSRunes || match == "" {
		results, err = searchLike(db, opts)
	} else {
		results, err = searchFTS(db, opts, match)
	}
	if err != nil {
		return nil, err
	}

	// Keep the best-ranked sections of each summary, up to origLimit summaries
	perKey := make(map[string]int)
	var kept []Result
	for _, r := range results {
		n, seen := perKey[r.SummaryKey]
		if !seen && len(perKey) >= origLimit {
			continue
		}
		if n >= perSummary {
			continue
		}
		perKey[r.SummaryKey] = n + 1
		kept = append(kept, r)
	}
	return kept, nil
}

func where(first string, opts Options, args []any) (string, []any) {
	conditions := []string{first}
	if opts.Since != "" {
		conditions = append(conditions, "s.end_date >= ?")
		args = append(args, opts.Since)
	}
	return strings.Join(conditions, " AND "), args
}

func searchFTS(db *index.DB, opts Options, match string) ([]Result, error) {
	cond, args := where("sections_fts MATCH ?", opts, []any{match})

	query := fmt.Sprintf(`
		SELECT
			c.summary_key,
			c.section_id,
			c.heading,
			c.line_number,
			s.title,
			s.start_date,
			s.end_date,
			s.file_path,
			snippet(sections_fts, 1, '>>>', '<<<', '...', 24) AS snip,
			bm25(sections_fts, 2.0, 1.0) AS rank
		FROM sections_fts
		JOIN sections c ON sections_fts.rowid = c.rowid
		JOIN summaries s ON c.summary_key = s.summary_key
		WHERE %s
		ORDER BY rank, s.end_date DESC
		LIMIT ?
	`, cond)
	args = append(args, opts.Limit)

	rows, err := db.Raw().Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("search query: %w", err)
	}
	defer rows.Close()

	return scanResults(rows, func(r *Result, snip string) { r.Snippet = snip })
}

func searchLike(db *index.DB, opts Options) ([]Result, error) {
	pattern := "%" + opts.Query + "%"
	cond, args := where("(c.text LIKE ? OR c.heading LIKE ?)", opts, []any{pattern, pattern})

	query := fmt.Sprintf(`
		SELECT
			c.summary_key,
			c.section_id,
			c.heading,
			c.line_number,
			s.title,
			s.start_date,
			s.end_date,
			s.file_path,
			c.text,
			0
		FROM sections c
		JOIN summaries s ON c.summary_key = s.summary_key
		WHERE %s
		ORDER BY s.end_date DESC, c.section_id
		LIMIT ?
	`, cond)
	args = append(args, opts.Limit)

	rows, err := db.Raw().Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("search query: %w", err)
	}
	defer rows.Close()

	return scanResults(rows, func(r *Result, text string) {
		r.Snippet = makeSnippet(text, opts.Query, 30)
	})
}

func scanResults(rows *sql.Rows, snip func(*Result, string)) ([]Result, error) {
	var results []Result
	for rows.Next() {
		var r Result
		var text string
		if err := rows.Scan(
			&r.SummaryKey, &r.SectionID, &r.Heading, &r.LineNumber,
			&r.Title, &r.StartDate, &r.EndDate, &r.FilePath,
			&text, &r.Rank,
		); err != nil {
			return nil, err
		}
		snip(&r, text)
		results = append(results, r)
	}
	return results, rows.Err()
}

// ListAll returns every indexed summary newest first, as results without a
// hit section.
func ListAll(db *index.DB, opts Options) ([]Result, error) {
	rows, err := db.ListSummaries(opts.Since, opts.Limit)
	if err != nil {
		return nil, fmt.Errorf("list summaries: %w", err)
	}
	results := make([]Result, 0, len(rows))
	for _, s := range rows {
		results = append(results, Result{
			SummaryKey: s.Key,
			SectionID:  -1,
			Title:      s.Title,
			StartDate:  s.StartDate,
			EndDate:    s.EndDate,
			FilePath:   s.FilePath,
			Snippet:    s.Excerpt,
		})
	}
	return results, nil
}
