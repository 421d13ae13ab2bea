package fantia

import (
	"io"
	"net/url"

	"fantiadl/pkg/errors"
)

// ParseOriginal extracts the full-size asset URL from an original-image
// interstitial page. The first <img> in document order wins; a relative src
// is resolved against pageURL.
func ParseOriginal(r io.Reader, pageURL string) (*ResolvedAsset, error) {
	doc, err := parseDocument(r)
	if err != nil {
		return nil, errors.Wrap(errors.ErrorTypePageStructure, err, "failed to parse original image page")
	}

	img := doc.Find("img").First()
	if img.Length() == 0 {
		return nil, &errors.Error{
			Type:    errors.ErrorTypePageStructure,
			Message: "no image on original image page",
			URL:     pageURL,
		}
	}
	src, ok := img.Attr("src")
	if !ok || src == "" {
		return nil, &errors.Error{
			Type:    errors.ErrorTypePageStructure,
			Message: "image without src on original image page",
			URL:     pageURL,
		}
	}

	base, err := url.Parse(pageURL)
	if err != nil {
		return nil, errors.Wrap(errors.ErrorTypePageStructure, err, "invalid original image page URL")
	}
	ref, err := url.Parse(src)
	if err != nil {
		return nil, errors.Wrap(errors.ErrorTypePageStructure, err, "invalid image src")
	}

	return &ResolvedAsset{URL: base.ResolveReference(ref).String()}, nil
}
