// Package blob abstracts the remote image hosting providers behind a
// minimal capability interface so the upload, deletion and backup
// pipelines never talk to a provider SDK directly.
package blob

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// ErrNotExist reports that the backing object is gone at the provider,
// as opposed to a transient provider failure. Callers test for it with
// errors.Is.
var ErrNotExist = errors.New("stored object does not exist")

// Object locates a stored image at its provider.
type Object struct {
	// URL is the publicly fetchable location. Empty for purely local
	// objects that are only reachable through Resolve.
	URL string
	// Key is the provider-side identifier (public ID, object key or
	// filename) used for deletion and direct reads.
	Key string
}

// Backend is the capability interface every storage provider implements.
type Backend interface {
	// Put stores data under the provider's logo namespace and returns
	// its locator. name is advisory; providers may derive their own keys.
	Put(ctx context.Context, name string, data []byte) (Object, error)

	// Delete removes the stored object. Unknown objects are not an error.
	Delete(ctx context.Context, obj Object) error

	// Resolve returns the full object content.
	Resolve(ctx context.Context, obj Object) ([]byte, error)
}

// Remote calls share one client with a bounded timeout so a dead provider
// cannot hang a request forever.
var httpClient = &http.Client{Timeout: 30 * time.Second}

// fetchURL downloads url in full.
func fetchURL(ctx context.Context, url string) (retData []byte, retErr error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", url, err)
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil && retErr == nil {
			retErr = closeErr
		}
	}()

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("fetch %s: %w", url, ErrNotExist)
	}
	if resp.StatusCode > 299 {
		return nil, fmt.Errorf("fetch %s: unexpected status %d", url, resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}
	return data, nil
}

// CanonicalPNGURL rewrites a provider delivery URL so the fetched content
// is forced into PNG encoding. Cloudinary-style URLs carry transformation
// flags in the path segment after "/upload/"; other locators are returned
// unchanged.
func CanonicalPNGURL(rawURL string) string {
	before, after, found := strings.Cut(rawURL, "/upload/")
	if !found {
		return rawURL
	}
	return before + "/upload/f_png/" + after
}
