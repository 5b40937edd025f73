// Package publish renders the weekly summaries into a static HTML site:
// one page per week, an index with cards, a links page and a JSON search
// index consumed by site.js.
package publish

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/Zuo-Peng/wa-digest/internal/apperr"
	"github.com/Zuo-Peng/wa-digest/internal/civil"
	"github.com/Zuo-Peng/wa-digest/internal/parse"
)

// Sources for the links page.
const (
	LinksFromSummaries = "resumos"
	LinksFromRegistry  = "full"
	LinksFromBoth      = "both"
)

const excerptLen = 280

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static/*
var staticFS embed.FS

type Options struct {
	InputDir    string
	OutputDir   string
	WeeksDir    string // semana_<start>_<end>.txt batches for card stats
	BaseURL     string
	Clean       bool
	LinksSource string
	LinksJSON   string
	Group       string
	Site        string
	Now         func() time.Time
}

type Report struct {
	Pages []string // files written, relative to OutputDir
	Posts int
	Links int
}

type Post struct {
	Title   string
	Slug    string
	Start   civil.Date
	End     civil.Date
	Excerpt string
	HTML    template.HTML
	Search  string
	Links   []parse.MarkdownLink
	Prev    *Post
	Next    *Post
}

type page struct {
	Title       string
	Description string
	BaseURL     string
	Site        string
	Group       string
	Year        int
	Data        any
}

var md = goldmark.New(goldmark.WithExtensions(extension.GFM))

var funcs = template.FuncMap{
	"inc": func(i int) int { return i + 1 },
}

var pages = map[string]*template.Template{}

func init() {
	for _, name := range []string{"post", "index", "links"} {
		pages[name] = template.Must(template.New(name).Funcs(funcs).
			ParseFS(templateFS, "templates/base.html", "templates/"+name+".html"))
	}
}

// Publish builds the site. A missing input dir is NotFound; a dir without
// summaries is an argument error.
func Publish(opts Options, log *slog.Logger) (Report, error) {
	if log == nil {
		log = slog.Default()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Site == "" {
		opts.Site = "IA+EDU"
	}
	if opts.LinksSource == "" {
		opts.LinksSource = LinksFromRegistry
	}
	switch opts.LinksSource {
	case LinksFromSummaries, LinksFromRegistry, LinksFromBoth:
	default:
		return Report{}, apperr.Argumentf("unknown links source %q (want resumos, full or both)", opts.LinksSource)
	}

	if info, err := os.Stat(opts.InputDir); err != nil || !info.IsDir() {
		return Report{}, apperr.NotFoundf("summaries dir %s not found", opts.InputDir)
	}

	posts, err := loadPosts(opts.InputDir, log)
	if err != nil {
		return Report{}, err
	}
	if len(posts) == 0 {
		return Report{}, apperr.Argumentf("no summaries in %s", opts.InputDir)
	}

	if opts.Clean {
		if err := cleanDir(opts.OutputDir, opts.InputDir); err != nil {
			return Report{}, err
		}
	}
	if err := os.MkdirAll(opts.OutputDir, 0o755); err != nil {
		return Report{}, fmt.Errorf("create output dir: %w", err)
	}

	w := &writer{opts: opts, log: log}
	for _, p := range posts {
		w.render(p.Slug+".html", "post", page{Title: p.Title, Description: p.Excerpt, Data: p})
	}
	w.searchIndex(posts)
	w.index(posts)
	n := w.links(posts)
	w.static()

	if w.err != nil {
		return Report{}, w.err
	}
	return Report{Pages: w.written, Posts: len(posts), Links: n}, nil
}

// loadPosts reads every range-named Markdown file, oldest first, and links
// neighbours for navigation.
func loadPosts(dir string, log *slog.Logger) ([]*Post, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read summaries dir: %w", err)
	}
	var posts []*Post
	bySlug := map[string]string{}
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ".md" {
			continue
		}
		if _, _, ok := civil.ParseRangeName(e.Name()); !ok {
			log.Warn("skipping file without a date range", "file", e.Name())
			continue
		}
		s, err := parse.ParseSummaryFile(filepath.Join(dir, e.Name()))
		if err != nil {
			return nil, fmt.Errorf("read summary %s: %w", e.Name(), err)
		}
		p, err := newPost(s)
		if err != nil {
			return nil, err
		}
		// The slug names the page, so two summaries ending the same day
		// would overwrite each other.
		if prev, dup := bySlug[p.Slug]; dup {
			return nil, apperr.Argumentf("summaries %s and %s both end on %s", prev, e.Name(), p.End)
		}
		bySlug[p.Slug] = e.Name()
		posts = append(posts, p)
	}

	sort.SliceStable(posts, func(i, j int) bool {
		if c := posts[i].End.Compare(posts[j].End); c != 0 {
			return c < 0
		}
		return posts[i].Start.Before(posts[j].Start)
	})
	for i, p := range posts {
		if i > 0 {
			p.Prev = posts[i-1]
		}
		if i < len(posts)-1 {
			p.Next = posts[i+1]
		}
	}
	return posts, nil
}

func newPost(s *parse.Summary) (*Post, error) {
	body := s.Body()
	var buf bytes.Buffer
	if err := md.Convert([]byte(body), &buf); err != nil {
		return nil, fmt.Errorf("render %s: %w", s.Name, err)
	}
	return &Post{
		Title:   s.Title,
		Slug:    s.End.ISO(),
		Start:   s.Start,
		End:     s.End,
		Excerpt: s.Excerpt(excerptLen),
		HTML:    template.HTML(buf.String()),
		Search:  parse.PlainText(body),
		Links:   s.Links(),
	}, nil
}

// cleanDir removes out, refusing paths that would take the inputs with it.
func cleanDir(out, in string) error {
	absOut, err := filepath.Abs(out)
	if err != nil {
		return err
	}
	absIn, err := filepath.Abs(in)
	if err != nil {
		return err
	}
	if absOut == filepath.Dir(absOut) || absIn == absOut || strings.HasPrefix(absIn, absOut+string(filepath.Separator)) {
		return apperr.Argumentf("refusing to clean %s: it contains the summaries", out)
	}
	if err := os.RemoveAll(out); err != nil {
		return fmt.Errorf("clean output dir: %w", err)
	}
	return nil
}

// writer collects the first error so page generation reads linearly.
type writer struct {
	opts    Options
	log     *slog.Logger
	written []string
	err     error
}

func (w *writer) write(name string, data []byte) {
	if w.err != nil {
		return
	}
	if err := os.WriteFile(filepath.Join(w.opts.OutputDir, name), data, 0o644); err != nil {
		w.err = fmt.Errorf("write %s: %w", name, err)
		return
	}
	w.written = append(w.written, name)
	w.log.Debug("wrote page", "file", name)
}

func (w *writer) render(name, tmpl string, p page) {
	if w.err != nil {
		return
	}
	p.BaseURL = w.opts.BaseURL
	p.Site = w.opts.Site
	p.Group = w.opts.Group
	p.Year = w.opts.Now().Year()

	var buf bytes.Buffer
	if err := pages[tmpl].ExecuteTemplate(&buf, "base", p); err != nil {
		w.err = fmt.Errorf("render %s: %w", name, err)
		return
	}
	w.write(name, buf.Bytes())
}

type searchEntry struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Week    string `json:"week"`
	Content string `json:"content"`
}

func (w *writer) searchIndex(posts []*Post) {
	entries := make([]searchEntry, 0, len(posts))
	for _, p := range posts {
		entries = append(entries, searchEntry{
			Title:   p.Title,
			URL:     w.opts.BaseURL + p.Slug + ".html",
			Week:    p.Start.String() + " → " + p.End.String(),
			Content: p.Search,
		})
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(entries); err != nil {
		w.err = err
		return
	}
	w.write("search-index.json", buf.Bytes())
}

type card struct {
	Post      *Post
	Stats     WeekStats
	ShareText string
}

func (w *writer) index(posts []*Post) {
	cards := make([]card, 0, len(posts))
	for i := len(posts) - 1; i >= 0; i-- {
		p := posts[i]
		cards = append(cards, card{
			Post:      p,
			Stats:     ReadWeekStats(w.opts.WeeksDir, p.Start, p.End),
			ShareText: p.Title + " - " + w.opts.BaseURL + p.Slug + ".html",
		})
	}
	w.render("index.html", "index", page{
		Title:       "Resumos Semanais",
		Description: fmt.Sprintf("Resumos semanais do grupo %s", w.opts.Group),
		Data:        cards,
	})
}

func (w *writer) links(posts []*Post) int {
	list, err := collectLinks(posts, w.opts.LinksSource, w.opts.LinksJSON, w.log)
	if err != nil {
		if w.err == nil {
			w.err = err
		}
		return 0
	}
	w.render("links.html", "links", page{
		Title:       "Repositório de Links",
		Description: "Links compartilhados no grupo",
		Data:        list,
	})
	return len(list)
}

func (w *writer) static() {
	err := fs.WalkDir(staticFS, "static", func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		data, err := staticFS.ReadFile(path)
		if err != nil {
			return err
		}
		w.write(filepath.Base(path), data)
		return nil
	})
	if err != nil && w.err == nil {
		w.err = fmt.Errorf("copy static assets: %w", err)
	}
}
