package engine

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/friendskids/friendskids/internal/config"
)

// VCardFetcher retrieves a remote vCard stream.
type VCardFetcher interface {
	Fetch(ctx context.Context, url, user, pass string) (io.ReadCloser, error)
}

// HTTPFetcher implements VCardFetcher over net/http.
type HTTPFetcher struct {
	Client  *http.Client
	MaxSize int64
}

// NewHTTPFetcher creates a fetcher with the default timeout and size cap.
func NewHTTPFetcher() *HTTPFetcher {
	return &HTTPFetcher{
		Client:  &http.Client{Timeout: config.HTTPTimeout},
		MaxSize: config.MaxHTTPResponseSize,
	}
}

// Fetch downloads an address book export, typically a CardDAV collection,
// with optional basic auth. The caller closes the returned body.
func (f *HTTPFetcher) Fetch(ctx context.Context, source, user, pass string) (io.ReadCloser, error) {
	u, err := url.Parse(source)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", config.ErrInvalidURL, err)
	}
	if u.Scheme != config.SchemeHTTP && u.Scheme != config.SchemeHTTPS {
		return nil, fmt.Errorf("%s: %s", config.ErrProtocol, u.Scheme)
	}

	log := slog.With(
		config.LogKeyComponent, config.CompFetcher,
		config.LogKeyURL, SafeURL(u),
	)
	log.Debug(config.MsgFetchStart)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", config.ErrFetch, err)
	}
	req.Header.Set(config.HeaderUserAgent, config.UserAgent)
	req.Header.Set(config.HeaderAccept, config.MimeVCard)
	if user != "" || pass != "" {
		req.SetBasicAuth(user, pass)
	}

	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", config.ErrFetch, err)
	}
	if resp.StatusCode != http.StatusOK {
		_ = resp.Body.Close()
		log.Warn(config.MsgFetchBadStatus, config.LogKeyStatus, resp.StatusCode)
		return nil, fmt.Errorf("%s: %d", config.ErrFetchStatus, resp.StatusCode)
	}

	limit := f.MaxSize
	if limit <= 0 {
		limit = config.MaxHTTPResponseSize
	}
	return LimitBody(resp.Body, limit), nil
}

// SafeURL strips the query and the credentials, which may carry tokens.
func SafeURL(u *url.URL) string {
	return u.Scheme + "://" + u.Host + u.Path
}

// LimitBody caps the bytes read from rc; Close still reaches rc.
func LimitBody(rc io.ReadCloser, n int64) io.ReadCloser {
	return struct {
		io.Reader
		io.Closer
	}{io.LimitReader(rc, n), rc}
}
