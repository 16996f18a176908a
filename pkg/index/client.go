package index

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/mip-org/mip/pkg/cache"
	"github.com/mip-org/mip/pkg/errors"
	"github.com/mip-org/mip/pkg/httputil"
)

// requestTimeout bounds a single index download.
const requestTimeout = 30 * time.Second

// Client fetches and decodes the remote index with caching and retries.
type Client struct {
	url   string
	http  *http.Client
	cache cache.Cache
	ttl   time.Duration
}

// NewClient creates a Client for the index at rawURL.
// Responses are cached under the URL key for ttl; pass a NullCache to
// disable caching.
func NewClient(rawURL string, c cache.Cache, ttl time.Duration) *Client {
	return &Client{
		url:   rawURL,
		http:  &http.Client{Timeout: requestTimeout},
		cache: c,
		ttl:   ttl,
	}
}

// URL returns the index location this client fetches from.
func (c *Client) URL() string { return c.url }

// Fetch downloads and decodes the index. If refresh is false a fresh cached
// copy is used instead of hitting the network. Transport and decode failures
// are fatal (NETWORK_ERROR): no plan can be built without an index.
func (c *Client) Fetch(ctx context.Context, refresh bool) (*Index, error) {
	key := "index:" + c.url

	if !refresh {
		if data, hit, _ := c.cache.Get(ctx, key); hit {
			if idx, err := c.decode(data); err == nil {
				return idx, nil
			}
			// Undecodable cache entry: fall through to a network fetch.
			_ = c.cache.Delete(ctx, key)
		}
	}

	var body []byte
	err := httputil.RetryWithBackoff(ctx, func() error {
		data, err := c.download(ctx)
		if err != nil {
			return err
		}
		body = data
		return nil
	})
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeNetwork, err, "fetch package index from %s", c.url)
	}

	idx, err := c.decode(body)
	if err != nil {
		return nil, err
	}

	_ = c.cache.Set(ctx, key, body, c.ttl)
	return idx, nil
}

func (c *Client) download(ctx context.Context) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &httputil.RetryableError{Err: err}
	}
	defer resp.Body.Close()

	if err := checkStatus(resp.StatusCode); err != nil {
		return nil, err
	}
	return io.ReadAll(resp.Body)
}

func (c *Client) decode(data []byte) (*Index, error) {
	var doc Document
	if c.yamlIndex() {
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, errors.Wrap(errors.ErrCodeNetwork, err, "parse YAML index from %s", c.url)
		}
	} else {
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, errors.Wrap(errors.ErrCodeNetwork, err, "parse JSON index from %s", c.url)
		}
	}
	return New(doc), nil
}

// yamlIndex reports whether the index URL points at a YAML document.
// Self-hosted repositories may publish index.yaml instead of index.json.
func (c *Client) yamlIndex() bool {
	u, err := url.Parse(c.url)
	if err != nil {
		return false
	}
	ext := strings.ToLower(path.Ext(u.Path))
	return ext == ".yaml" || ext == ".yml"
}

func checkStatus(code int) error {
	switch {
	case code == http.StatusOK:
		return nil
	case code == http.StatusNotFound:
		return fmt.Errorf("index not found (status 404)")
	case code >= 500:
		return &httputil.RetryableError{Err: fmt.Errorf("server error (status %d)", code)}
	default:
		return fmt.Errorf("unexpected status %d", code)
	}
}
