package fantia

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"fantiadl/pkg/errors"
)

// ParsePost validates a post detail API body and returns the post with its
// distinct original-image references.
func ParsePost(data []byte) (*Post, error) {
	var resp PostResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, errors.Wrap(errors.ErrorTypeMalformedPost, err, "invalid post JSON")
	}
	if resp.Post == nil {
		return nil, malformed("missing post object")
	}

	id, err := parseID(resp.Post.ID)
	if err != nil {
		return nil, err
	}

	if resp.Post.PostedAt == nil {
		return nil, malformed("missing posted_at")
	}
	postedAt, err := time.Parse(PostedAtLayout, strings.TrimSpace(*resp.Post.PostedAt))
	if err != nil {
		return nil, errors.Wrap(errors.ErrorTypeMalformedPost, err,
			fmt.Sprintf("invalid posted_at %q", *resp.Post.PostedAt))
	}

	if resp.Post.PostContents == nil {
		return nil, malformed("missing post_contents")
	}

	uris := []string{}
	seen := make(map[string]struct{})
	for i, content := range *resp.Post.PostContents {
		for j, photo := range content.PostContentPhotos {
			if photo.ShowOriginalURI == nil {
				return nil, malformed(fmt.Sprintf("photo %d of content %d has no show_original_uri", j, i))
			}
			uri := *photo.ShowOriginalURI
			if _, ok := seen[uri]; ok {
				continue
			}
			seen[uri] = struct{}{}
			uris = append(uris, uri)
		}
	}

	return &Post{ID: id, PostedAt: postedAt, OriginalURIs: uris}, nil
}

// parseID accepts the post id as either a JSON string or a JSON number
func parseID(raw json.RawMessage) (string, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return "", malformed("missing post id")
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if s == "" {
			return "", malformed("empty post id")
		}
		return s, nil
	}

	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil {
		return "", errors.Wrap(errors.ErrorTypeMalformedPost, err, "post id is neither string nor number")
	}
	if _, err := strconv.ParseInt(n.String(), 10, 64); err != nil {
		return "", errors.Wrap(errors.ErrorTypeMalformedPost, err, fmt.Sprintf("post id %s is not an integer", n))
	}
	return n.String(), nil
}

func malformed(msg string) *errors.Error {
	return errors.New(errors.ErrorTypeMalformedPost, msg)
}
