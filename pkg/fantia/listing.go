package fantia

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"fantiadl/pkg/errors"
)

// ParseListing scans a fan club listing page for post links and the
// pagination bound. Post references keep document order and duplicates.
func ParseListing(r io.Reader) (*ListingPage, error) {
	doc, err := parseDocument(r)
	if err != nil {
		return nil, errors.Wrap(errors.ErrorTypePageStructure, err, "failed to parse listing HTML")
	}

	page := &ListingPage{PostRefs: []string{}}
	var scanErr error

	doc.Find("a").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		switch classOf(s) {
		case PostLinkClass:
			href, ok := s.Attr("href")
			if !ok {
				scanErr = errors.New(errors.ErrorTypePageStructure, "post link without href")
				return false
			}
			page.PostRefs = append(page.PostRefs, href)

		case PageLinkClass:
			href, ok := s.Attr("href")
			if !ok {
				return true
			}
			n, err := pageNumber(href)
			if err != nil {
				scanErr = err
				return false
			}
			page.MaxPage = n
		}
		return true
	})

	if scanErr != nil {
		return nil, scanErr
	}
	return page, nil
}

// classOf returns the raw class attribute; markers must match it exactly
func classOf(s *goquery.Selection) string {
	class, _ := s.Attr("class")
	return class
}

// parseDocument builds a DOM with scripting disabled so that markup inside
// <noscript> is parsed as elements rather than text
func parseDocument(r io.Reader) (*goquery.Document, error) {
	root, err := html.ParseWithOptions(r, html.ParseOptionEnableScripting(false))
	if err != nil {
		return nil, err
	}
	return goquery.NewDocumentFromNode(root), nil
}

// pageNumber reads the integer after the last "=" of a pagination href
func pageNumber(href string) (int, error) {
	i := strings.LastIndex(href, "=")
	if i < 0 {
		return 0, errors.New(errors.ErrorTypePageStructure,
			fmt.Sprintf("pagination link %q has no page parameter", href))
	}
	n, err := strconv.Atoi(href[i+1:])
	if err != nil {
		return 0, errors.Wrap(errors.ErrorTypePageStructure, err,
			fmt.Sprintf("pagination link %q has a non-numeric page", href))
	}
	return n, nil
}
