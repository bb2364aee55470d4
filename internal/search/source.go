package search

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path/filepath"

	"github.com/hwcatalog/hwsearch/internal/errors"
	"github.com/hwcatalog/hwsearch/internal/fragment"
)

// FragmentSource delivers the manifest and shard files to the engine.
// Implementations must be safe for concurrent use.
type FragmentSource interface {
	Manifest(ctx context.Context) (*fragment.Manifest, error)
	Shard(ctx context.Context, file string) (*fragment.Shard, error)
}

// FSSource reads fragment artifacts from a local directory, the layout
// the optimizer writes.
type FSSource struct {
	Dir string
}

var _ FragmentSource = (*FSSource)(nil)

func (s *FSSource) Manifest(ctx context.Context) (*fragment.Manifest, error) {
	return fragment.LoadManifest(filepath.Join(s.Dir, fragment.MasterFileName))
}

func (s *FSSource) Shard(ctx context.Context, file string) (*fragment.Shard, error) {
	return fragment.LoadShard(filepath.Join(s.Dir, file))
}

// HTTPSource fetches fragment artifacts from a static file host.
// Transient failures are retried with backoff.
type HTTPSource struct {
	BaseURL string
	Client  *http.Client
	Retry   errors.RetryConfig
}

var _ FragmentSource = (*HTTPSource)(nil)

// NewHTTPSource creates an HTTPSource with default client and retry
// settings.
func NewHTTPSource(baseURL string) *HTTPSource {
	return &HTTPSource{
		BaseURL: baseURL,
		Client:  http.DefaultClient,
		Retry:   errors.DefaultRetryConfig(),
	}
}

func (s *HTTPSource) Manifest(ctx context.Context) (*fragment.Manifest, error) {
	return fetchJSON[fragment.Manifest](ctx, s, fragment.MasterFileName)
}

func (s *HTTPSource) Shard(ctx context.Context, file string) (*fragment.Shard, error) {
	shard, err := fetchJSON[fragment.Shard](ctx, s, file)
	if err != nil {
		return nil, err
	}
	shard.Name = shard.Metadata.Fragment
	shard.FileName = file
	return shard, nil
}

func fetchJSON[T any](ctx context.Context, s *HTTPSource, file string) (*T, error) {
	target, err := url.JoinPath(s.BaseURL, file)
	if err != nil {
		return nil, errors.New(errors.ErrCodeInvalidPath, "invalid fragment URL", err).
			WithDetail("base", s.BaseURL).WithDetail("file", file)
	}

	client := s.Client
	if client == nil {
		client = http.DefaultClient
	}

	return errors.RetryWithResult(ctx, s.Retry, func() (*T, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
		if err != nil {
			return nil, errors.New(errors.ErrCodeInternal, "failed to build request", err)
		}
		resp, err := client.Do(req)
		if err != nil {
			return nil, errors.FetchError("fragment fetch failed", err).
				WithDetail("url", target)
		}
		defer resp.Body.Close()

		if resp.StatusCode == http.StatusNotFound {
			// Missing files do not heal on retry.
			return nil, errors.New(errors.ErrCodeFragmentNotFound, "fragment not found", nil).
				WithDetail("url", target)
		}
		if resp.StatusCode != http.StatusOK {
			return nil, errors.FetchError(
				fmt.Sprintf("fragment fetch returned status %d", resp.StatusCode), nil).
				WithDetail("url", target)
		}

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, errors.FetchError("failed to read fragment body", err).
				WithDetail("url", target)
		}
		var v T
		if err := json.Unmarshal(body, &v); err != nil {
			return nil, errors.New(errors.ErrCodeIndexCorrupt, "fragment is not valid JSON", err).
				WithDetail("url", target)
		}
		return &v, nil
	})
}
