package fantia

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

const (
	// SessionCookieName is the cookie carrying the browser session
	SessionCookieName = "_session_id"

	// PostLinkClass marks listing anchors that point at a post
	PostLinkClass = "link-block"

	// PageLinkClass marks pagination anchors on the listing
	PageLinkClass = "page-link"
)

// ListingURL returns the posts listing of a fan club for the given page
func ListingURL(siteURL, fanClubID string, page int) string {
	params := url.Values{}
	params.Set("page", strconv.Itoa(page))

	return fmt.Sprintf("%s/fanclubs/%s/posts?%s",
		strings.TrimRight(siteURL, "/"), url.PathEscape(fanClubID), params.Encode())
}

// PostAPIURL returns the JSON API address for a listing post reference.
// The reference is a site path such as "/posts/123" which the API mirrors
// under its own base.
func PostAPIURL(apiURL, postRef string) string {
	if !strings.HasPrefix(postRef, "/") {
		postRef = "/" + postRef
	}
	return strings.TrimRight(apiURL, "/") + postRef
}

// SiteURL resolves a site-relative reference against the site base
func SiteURL(siteURL, ref string) (string, error) {
	base, err := url.Parse(siteURL)
	if err != nil {
		return "", fmt.Errorf("invalid site URL %q: %w", siteURL, err)
	}
	rel, err := url.Parse(ref)
	if err != nil {
		return "", fmt.Errorf("invalid reference %q: %w", ref, err)
	}
	return base.ResolveReference(rel).String(), nil
}

// LastPathSegment returns the final element of a URL's path, ignoring
// any query string or fragment.
func LastPathSegment(raw string) string {
	p := raw
	if u, err := url.Parse(raw); err == nil {
		p = u.Path
	}
	p = strings.TrimRight(p, "/")
	if i := strings.LastIndex(p, "/"); i >= 0 {
		return p[i+1:]
	}
	return p
}
