package fantia

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListingURL(t *testing.T) {
	assert.Equal(t, "https://fantia.jp/fanclubs/12345/posts?page=3", ListingURL("https://fantia.jp", "12345", 3))
	assert.Equal(t, "https://fantia.jp/fanclubs/1/posts?page=1", ListingURL("https://fantia.jp/", "1", 1))
}

func TestPostAPIURL(t *testing.T) {
	assert.Equal(t, "https://fantia.jp/api/v1/posts/42", PostAPIURL("https://fantia.jp/api/v1", "/posts/42"))
	assert.Equal(t, "https://fantia.jp/api/v1/posts/42", PostAPIURL("https://fantia.jp/api/v1/", "posts/42"))
}

func TestSiteURL(t *testing.T) {
	got, err := SiteURL("https://fantia.jp", "/posts/1/post_content_photo/2")
	require.NoError(t, err)
	assert.Equal(t, "https://fantia.jp/posts/1/post_content_photo/2", got)

	_, err = SiteURL("https://fantia.jp", "%zz")
	assert.Error(t, err)
}

func TestLastPathSegment(t *testing.T) {
	tests := map[string]string{
		"https://fantia.jp/posts/999/post_content_photo/555": "555",
		"https://cc.fantia.jp/uploads/abcde.png?Expires=1":    "abcde.png",
		"/posts/1/":                                          "1",
		"plain":                                              "plain",
	}
	for in, want := range tests {
		assert.Equal(t, want, LastPathSegment(in), in)
	}
}
