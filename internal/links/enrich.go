package links

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	readability "github.com/go-shiori/go-readability"
	"golang.org/x/sync/errgroup"
)

const (
	EnrichSuccess = "success"
	EnrichTimeout = "timeout"
	EnrichError   = "error"

	maxDescription = 500
	maxPageBytes   = 5 << 20
)

type EnrichOptions struct {
	Start        int // index of the first record to consider
	Limit        int // 0 means no limit
	SkipEnriched bool
	Concurrency  int
	Timeout      time.Duration
	UserAgent    string
	Client       *http.Client

	// OnProgress is called after each record with the number done so far.
	// Calls are serialized.
	OnProgress func(done, total int)
}

type EnrichReport struct {
	Success int
	Timeout int
	Errors  int
	Skipped int
}

func (r EnrichReport) String() string {
	return fmt.Sprintf("success=%d timeout=%d errors=%d skipped=%d", r.Success, r.Timeout, r.Errors, r.Skipped)
}

// Enrich fetches each selected page and fills Title and Description from
// its metadata. Records are updated in place.
func Enrich(ctx context.Context, recs []Record, opts EnrichOptions) (EnrichReport, error) {
	var report EnrichReport

	start := opts.Start
	if start < 0 {
		start = 0
	}
	if start > len(recs) {
		start = len(recs)
	}
	var todo []int
	for i := start; i < len(recs); i++ {
		if opts.SkipEnriched && recs[i].Enriched {
			report.Skipped++
			continue
		}
		if opts.Limit > 0 && len(todo) >= opts.Limit {
			break
		}
		todo = append(todo, i)
	}

	client := opts.Client
	if client == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = 15 * time.Second
		}
		client = &http.Client{Timeout: timeout}
	}
	limit := opts.Concurrency
	if limit <= 0 {
		limit = 4
	}

	var mu sync.Mutex
	done := 0
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for _, idx := range todo {
		rec := &recs[idx]
		g.Go(func() error {
			if gctx.Err() != nil {
				return gctx.Err()
			}
			status := enrichOne(gctx, client, rec, opts.UserAgent)

			mu.Lock()
			defer mu.Unlock()
			switch status {
			case EnrichSuccess:
				report.Success++
			case EnrichTimeout:
				report.Timeout++
			default:
				report.Errors++
			}
			done++
			if opts.OnProgress != nil {
				opts.OnProgress(done, len(todo))
			}
			return nil
		})
	}
	err := g.Wait()
	return report, err
}

func enrichOne(ctx context.Context, client *http.Client, rec *Record, userAgent string) string {
	status := fetchMetadata(ctx, client, rec, userAgent)
	rec.EnrichStatus = status
	rec.Enriched = status == EnrichSuccess
	return status
}

func fetchMetadata(ctx context.Context, client *http.Client, rec *Record, userAgent string) string {
	pageURL, err := url.Parse(rec.URL)
	if err != nil {
		return EnrichError
	}
	resp, err := request(ctx, client, http.MethodGet, rec.URL, userAgent)
	if err != nil {
		if isTimeout(err) {
			return EnrichTimeout
		}
		return EnrichError
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return EnrichError
	}

	article, err := readability.FromReader(io.LimitReader(resp.Body, maxPageBytes), pageURL)
	if err != nil {
		if isTimeout(err) {
			return EnrichTimeout
		}
		return EnrichError
	}

	if title := strings.TrimSpace(article.Title); title != "" {
		rec.Title = title
	}
	if desc := strings.Join(strings.Fields(article.Excerpt), " "); desc != "" {
		rec.Description = truncateRunes(desc, maxDescription)
	}
	return EnrichSuccess
}
