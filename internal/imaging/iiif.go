package imaging

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"time"

	"github.com/pkg/errors"
)

// DefaultUpstreamTimeout bounds the worst-case latency of a metadata or
// image fetch against a third-party IIIF server.
const DefaultUpstreamTimeout = 30 * time.Second

// SetBrowserHeaders sets a realistic user-agent/accept header set. Some
// strict image servers reject requests with default Go client signatures.
func SetBrowserHeaders(req *http.Request) {
	req.Header.Set("User-Agent",
		"Mozilla/5.0 (X11; Linux x86_64; rv:109.0) Gecko/20100101 Firefox/115.0")
	req.Header.Set("Accept", "image/avif,image/webp,image/apng,image/*,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.5")
}

// serviceInfo is the subset of a IIIF size-description document the
// adapters consult. Advertised discrete size lists are intentionally not
// read; only the natural dimensions drive the size negotiation.
type serviceInfo struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// ImageClient resolves final pixel-fetch URIs against the IIIF Image API
// families 1.x, 2.x and 3.x.
type ImageClient struct {
	http *http.Client
}

// NewImageClient creates an ImageClient with the given upstream timeout.
func NewImageClient(timeout time.Duration) *ImageClient {
	if timeout <= 0 {
		timeout = DefaultUpstreamTimeout
	}
	return &ImageClient{
		http: &http.Client{Timeout: timeout},
	}
}

// fetchInfo retrieves and decodes a size-description document.
func (c *ImageClient) fetchInfo(ctx context.Context, url string) (*serviceInfo, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errors.Wrapf(ErrUpstreamUnavailable, "building request for %s: %v", url, err)
	}
	SetBrowserHeaders(req)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, errors.Wrapf(ErrUpstreamUnavailable, "fetching %s: %v", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, errors.Wrapf(ErrUpstreamUnavailable, "fetching %s: status %d", url, resp.StatusCode)
	}

	var info serviceInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, errors.Wrapf(ErrInvalidServiceResponse, "decoding %s: %v", url, err)
	}
	if info.Width <= 0 || info.Height <= 0 {
		return nil, errors.Wrapf(ErrInvalidServiceResponse, "%s reports size %dx%d", url, info.Width, info.Height)
	}
	return &info, nil
}

// fitSize computes the target box preserving aspect ratio. Both formulas
// are applied so a single requested dimension still yields a consistent
// width/height pair.
func fitSize(usage ImageRequest, natural *serviceInfo) (int, int) {
	width := float64(usage.Width)
	height := float64(usage.Height)
	nw := float64(natural.Width)
	nh := float64(natural.Height)

	w := int(math.Round(math.Max(width, height*nw/nh)))
	h := int(math.Round(math.Max(height, width*nh/nw)))
	return w, h
}

// ImageURIV1 computes the pixel-fetch URI for a IIIF Image API 1.x service.
func (c *ImageClient) ImageURIV1(ctx context.Context, base string, usage ImageRequest) (string, error) {
	if usage.FullSize() {
		return fmt.Sprintf("%s/full/full/0/native.jpg", base), nil
	}
	info, err := c.fetchInfo(ctx, base+"/info.json")
	if err != nil {
		return "", err
	}
	w, h := fitSize(usage, info)
	return fmt.Sprintf("%s/full/%d,%d/0/native.jpg", base, w, h), nil
}

// ImageURIV2 computes the pixel-fetch URI for a IIIF Image API 2.x service.
func (c *ImageClient) ImageURIV2(ctx context.Context, base string, usage ImageRequest) (string, error) {
	if usage.FullSize() {
		return fmt.Sprintf("%s/full/full/0/default.jpg", base), nil
	}
	info, err := c.fetchInfo(ctx, base+"/info.json")
	if err != nil {
		return "", err
	}
	w, h := fitSize(usage, info)
	return fmt.Sprintf("%s/full/%d,%d/0/default.jpg", base, w, h), nil
}

// ImageURIV3 computes the pixel-fetch URI for a IIIF Image API 3.x service.
// The size description of a 3.x service is served at the base URI itself.
func (c *ImageClient) ImageURIV3(ctx context.Context, base string, usage ImageRequest) (string, error) {
	if usage.FullSize() {
		return fmt.Sprintf("%s/full/max/0/default.jpg", base), nil
	}
	info, err := c.fetchInfo(ctx, base)
	if err != nil {
		return "", err
	}
	w, h := fitSize(usage, info)
	return fmt.Sprintf("%s/full/%d,%d/0/default.jpg", base, w, h), nil
}
