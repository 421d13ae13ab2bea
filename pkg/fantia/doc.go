// Package fantia provides the HTTP client and page parsers for fan club
// listings, post details and original image pages on fantia.jp.
//
// Every request carries the browser session cookie (_session_id) and the
// configured User-Agent. Parsers are pure functions over a response body:
//
//	listing, err := fantia.ParseListing(r)  // post refs + max page
//	post, err := fantia.ParsePost(data)     // id, posted_at, original URIs
//	asset, err := fantia.ParseOriginal(r, pageURL)
//
// Client wraps them with the matching GET request:
//
//	client := fantia.NewClient(cfg.Fantia, cfg.Download.RequestTimeout, log)
//	page, err := client.FetchListing(ctx, "12345", 1)
//
// Failures are *errors.Error values: HTTP statuses are classified by
// errors.FromStatus, payload problems are ErrorTypeMalformedPost and missing
// page elements are ErrorTypePageStructure.
package fantia
