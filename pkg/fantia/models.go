package fantia

import (
	"encoding/json"
	"fmt"
	"time"
)

// PostedAtLayout matches the API's posted_at value, e.g.
// "Wed, 1 Jan 2020 9:00:00 +0900". Day, hour, minute and second may be
// one or two digits.
const PostedAtLayout = "Mon, 2 Jan 2006 15:4:5 -0700"

// ListingPage is the result of scanning one page of a fan club listing
type ListingPage struct {
	// PostRefs holds post hrefs in document order, duplicates kept
	PostRefs []string

	// MaxPage is the number taken from the last pagination anchor,
	// or 0 when the page has none
	MaxPage int
}

// HasMaxPage reports whether a pagination anchor was found
func (p *ListingPage) HasMaxPage() bool {
	return p.MaxPage > 0
}

// Post is the validated form of a post detail API response
type Post struct {
	ID       string
	PostedAt time.Time

	// OriginalURIs holds distinct show_original_uri values in first-seen order
	OriginalURIs []string
}

// DirName returns the per-post directory name {id}_{YYYYMMDD}_{HHMMSS},
// using the wall clock of the posted_at offset.
func (p *Post) DirName() string {
	t := p.PostedAt
	return fmt.Sprintf("%s_%04d%02d%02d_%02d%02d%02d",
		p.ID, t.Year(), int(t.Month()), t.Day(), t.Hour(), t.Minute(), t.Second())
}

// ResolvedAsset is the downloadable image behind an original-image reference
type ResolvedAsset struct {
	URL string
}

// PostResponse mirrors the post detail API body
type PostResponse struct {
	Post *PostPayload `json:"post"`
}

// PostPayload is the "post" object of a post detail response.
// Pointer fields distinguish a missing key from a zero value.
type PostPayload struct {
	ID           json.RawMessage `json:"id"`
	PostedAt     *string         `json:"posted_at"`
	PostContents *[]PostContent  `json:"post_contents"`
}

// PostContent is one content block of a post
type PostContent struct {
	PostContentPhotos []PostContentPhoto `json:"post_content_photos"`
}

// PostContentPhoto is one photo attachment of a content block
type PostContentPhoto struct {
	ShowOriginalURI *string `json:"show_original_uri"`
}
