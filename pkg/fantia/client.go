package fantia

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/net/html/charset"

	"fantiadl/pkg/config"
	"fantiadl/pkg/errors"
	"fantiadl/pkg/logger"
)

// Client talks to the fantia site and API with the session cookie attached
type Client struct {
	httpClient *http.Client
	headers    map[string]string
	sessionID  string
	siteURL    string
	apiURL     string
	logger     logger.Logger
}

// NewClient creates a client for the configured site. A zero timeout
// leaves requests unbounded.
func NewClient(cfg config.FantiaConfig, timeout time.Duration, log logger.Logger) *Client {
	if log == nil {
		log = logger.GetLogger()
	}

	userAgent := cfg.UserAgent
	if userAgent == "" {
		userAgent = config.DefaultUserAgent
	}
	siteURL := cfg.SiteURL
	if siteURL == "" {
		siteURL = config.DefaultSiteURL
	}
	apiURL := cfg.APIURL
	if apiURL == "" {
		apiURL = config.DefaultAPIURL
	}

	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		headers: map[string]string{
			"User-Agent":      userAgent,
			"Accept-Language": "ja,en-US;q=0.9,en;q=0.8",
		},
		sessionID: cfg.SessionID,
		siteURL:   siteURL,
		apiURL:    apiURL,
		logger:    log.WithField("component", "fantia_client"),
	}
}

// SetHeader sets a custom header sent with every request
func (c *Client) SetHeader(key, value string) {
	c.headers[key] = value
}

// SetHTTPClient replaces the underlying HTTP client
func (c *Client) SetHTTPClient(hc *http.Client) {
	c.httpClient = hc
}

// FetchListing downloads and scans one listing page of a fan club
func (c *Client) FetchListing(ctx context.Context, fanClubID string, page int) (*ListingPage, error) {
	target := ListingURL(c.siteURL, fanClubID, page)

	body, contentType, err := c.get(ctx, target, "text/html")
	if err != nil {
		return nil, err
	}
	r, err := decodeHTML(body, contentType)
	if err != nil {
		return nil, err
	}

	listing, err := ParseListing(r)
	if err != nil {
		return nil, fmt.Errorf("listing page %d: %w", page, err)
	}
	return listing, nil
}

// FetchPost requests the post detail JSON for a listing reference such as
// "/posts/123"
func (c *Client) FetchPost(ctx context.Context, postRef string) (*Post, error) {
	target := PostAPIURL(c.apiURL, postRef)

	body, _, err := c.get(ctx, target, "application/json")
	if err != nil {
		return nil, err
	}

	post, err := ParsePost(body)
	if err != nil {
		return nil, fmt.Errorf("post %s: %w", postRef, err)
	}
	return post, nil
}

// FetchOriginal loads the interstitial page of an original image reference
// and returns the asset it points at
func (c *Client) FetchOriginal(ctx context.Context, ref string) (*ResolvedAsset, error) {
	target, err := SiteURL(c.siteURL, ref)
	if err != nil {
		return nil, errors.Wrap(errors.ErrorTypePageStructure, err, "invalid original image reference")
	}

	body, contentType, err := c.get(ctx, target, "text/html")
	if err != nil {
		return nil, err
	}
	r, err := decodeHTML(body, contentType)
	if err != nil {
		return nil, err
	}

	return ParseOriginal(r, target)
}

// DownloadAsset returns the raw bytes of a resolved asset
func (c *Client) DownloadAsset(ctx context.Context, assetURL string) ([]byte, error) {
	body, _, err := c.get(ctx, assetURL, "*/*")
	return body, err
}

// get performs an authenticated GET and returns the full body and its
// Content-Type. Non-2xx responses become classified errors.
func (c *Client) get(ctx context.Context, target, accept string) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, "", &errors.Error{
			Type:    errors.ErrorTypeUnknown,
			Message: "failed to create request",
			URL:     target,
			Err:     err,
		}
	}

	for key, value := range c.headers {
		req.Header.Set(key, value)
	}
	req.Header.Set("Accept", accept)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: c.sessionID})

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, "", ctxErr
		}
		c.logger.WithError(err).WarnWithFields("HTTP request failed", map[string]interface{}{
			"method": req.Method,
			"url":    target,
		})
		return nil, "", &errors.Error{
			Type:    errors.ErrorTypeNetwork,
			Message: "request failed",
			URL:     target,
			Err:     err,
		}
	}
	defer resp.Body.Close()

	logger.LogRequest(c.logger, req.Method, target, resp.StatusCode, time.Since(start))

	if statusErr := errors.FromStatus(resp.StatusCode, target); statusErr != nil {
		return nil, "", statusErr
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", &errors.Error{
			Type:    errors.ErrorTypeNetwork,
			Message: "failed to read response body",
			URL:     target,
			Err:     err,
		}
	}
	return body, resp.Header.Get("Content-Type"), nil
}

// decodeHTML converts an HTML body to UTF-8 based on its Content-Type and
// any <meta> charset declaration
func decodeHTML(body []byte, contentType string) (io.Reader, error) {
	r, err := charset.NewReader(bytes.NewReader(body), contentType)
	if err != nil {
		return nil, errors.Wrap(errors.ErrorTypePageStructure, err, "failed to decode HTML charset")
	}
	return r, nil
}
