package scraper

import (
	"context"

	"fantiadl/internal/downloader"
	"fantiadl/pkg/fantia"
)

// FantiaClient defines the site operations the crawl depends on
type FantiaClient interface {
	FetchListing(ctx context.Context, fanClubID string, page int) (*fantia.ListingPage, error)
	FetchPost(ctx context.Context, postRef string) (*fantia.Post, error)
	FetchOriginal(ctx context.Context, ref string) (*fantia.ResolvedAsset, error)
}

// ImageDownloader stores one resolved image
type ImageDownloader interface {
	Download(ctx context.Context, job downloader.DownloadJob) (*downloader.DownloadResult, error)
}
