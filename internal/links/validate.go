package links

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"
)

type ValidateOptions struct {
	Concurrency int
	Timeout     time.Duration
	UserAgent   string
	Client      *http.Client
}

func (o ValidateOptions) client() *http.Client {
	if o.Client != nil {
		return o.Client
	}
	timeout := o.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &http.Client{Timeout: timeout}
}

// Validate checks every record with a HEAD request, falling back to GET
// when the server rejects HEAD. Records are updated in place.
func Validate(ctx context.Context, recs []Record, opts ValidateOptions) error {
	client := opts.client()
	limit := opts.Concurrency
	if limit <= 0 {
		limit = 10
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for i := range recs {
		rec := &recs[i]
		g.Go(func() error {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			checkURL(ctx, client, rec, opts.UserAgent)
			return nil
		})
	}
	return g.Wait()
}

func checkURL(ctx context.Context, client *http.Client, rec *Record, userAgent string) {
	resp, err := request(ctx, client, http.MethodHead, rec.URL, userAgent)
	if err == nil && (resp.StatusCode == http.StatusMethodNotAllowed || resp.StatusCode == http.StatusNotImplemented) {
		resp.Body.Close()
		resp, err = request(ctx, client, http.MethodGet, rec.URL, userAgent)
	}
	if err != nil {
		rec.StatusCode = 0
		if isTimeout(err) {
			rec.Status = StatusTimeout
		} else {
			rec.Status = StatusError
		}
		return
	}
	defer resp.Body.Close()

	rec.StatusCode = resp.StatusCode
	if resp.StatusCode < 400 {
		rec.Status = StatusValid
	} else {
		rec.Status = StatusInvalid
	}
	if final := resp.Request.URL.String(); final != rec.URL {
		rec.FinalURL = final
	}
}

func request(ctx context.Context, client *http.Client, method, url, userAgent string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, url, nil)
	if err != nil {
		return nil, err
	}
	if userAgent != "" {
		req.Header.Set("User-Agent", userAgent)
	}
	return client.Do(req)
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}
