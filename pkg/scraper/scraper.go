package scraper

import (
	"context"
	"fmt"
	"time"

	"fantiadl/internal/downloader"
	"fantiadl/pkg/config"
	"fantiadl/pkg/errors"
	"fantiadl/pkg/fantia"
	"fantiadl/pkg/logger"
	"fantiadl/pkg/ratelimit"
	"fantiadl/pkg/storage"
	"fantiadl/pkg/ui"
)

// Summary totals one crawl
type Summary struct {
	FanClubID  string
	Pages      int
	Posts      int
	EmptyPosts int
	Images     int
	Bytes      int64
	Duration   time.Duration
}

// Scraper walks a fan club's listing pages, posts and images in order and
// stops at the first error
type Scraper struct {
	fanClubID  string
	siteURL    string
	client     FantiaClient
	downloader ImageDownloader
	pacer      ratelimit.Pacer
	logger     logger.Logger
	tui        ui.TUI
}

// New creates a Scraper wired to the real site from a validated config
func New(cfg *config.Config, log logger.Logger) (*Scraper, error) {
	if log == nil {
		log = logger.GetLogger()
	}
	if err := cfg.RequireSession(); err != nil {
		return nil, err
	}

	client := fantia.NewClient(cfg.Fantia, cfg.Download.RequestTimeout, log)

	storageManager, err := storage.NewManager(cfg.Download.RootDirectory, cfg.Fantia.FanClubID)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage manager: %w", err)
	}

	s := NewWithDeps(
		cfg.Fantia.FanClubID,
		client,
		downloader.New(client, storageManager, log),
		ratelimit.NewFixedDelay(cfg.Interval()),
		log,
	)
	if cfg.Fantia.SiteURL != "" {
		s.siteURL = cfg.Fantia.SiteURL
	}

	logger.LogComponentStart("scraper", map[string]interface{}{
		"fan_club":   cfg.Fantia.FanClubID,
		"output_dir": storageManager.GetOutputDir(),
		"interval":   cfg.Interval().String(),
	})
	return s, nil
}

// NewWithDeps creates a Scraper from explicit collaborators
func NewWithDeps(fanClubID string, client FantiaClient, dl ImageDownloader, pacer ratelimit.Pacer, log logger.Logger) *Scraper {
	if log == nil {
		log = logger.GetLogger()
	}
	if pacer == nil {
		pacer = ratelimit.NoDelay()
	}
	return &Scraper{
		fanClubID:  fanClubID,
		siteURL:    config.DefaultSiteURL,
		client:     client,
		downloader: dl,
		pacer:      pacer,
		logger:     log.WithField("fan_club", fanClubID),
	}
}

// SetTUI sets the terminal UI receiving progress updates
func (s *Scraper) SetTUI(tui ui.TUI) {
	s.tui = tui
}

// Run crawls every listing page of the fan club. Page 1 is scanned first to
// learn the page count and then again as part of the page loop.
func (s *Scraper) Run(ctx context.Context) (*Summary, error) {
	start := time.Now()
	summary := &Summary{FanClubID: s.fanClubID}

	s.logger.Info("crawl started")
	s.tuiInfo("Crawling fan club %s", s.fanClubID)

	maxPage, err := s.discoverPages(ctx)
	if err != nil {
		return s.finish(summary, start, err)
	}

	for page := 1; page <= maxPage; page++ {
		if err := s.crawlPage(ctx, page, maxPage, summary); err != nil {
			return s.finish(summary, start, err)
		}
	}

	return s.finish(summary, start, nil)
}

// discoverPages scans page 1 for the pagination bound
func (s *Scraper) discoverPages(ctx context.Context) (int, error) {
	listing, err := s.client.FetchListing(ctx, s.fanClubID, 1)
	if err != nil {
		return 0, fmt.Errorf("failed to discover pages: %w", err)
	}
	if !listing.HasMaxPage() {
		return 0, &errors.Error{
			Type:    errors.ErrorTypePageStructure,
			Message: "listing has no pagination links",
			URL:     fantia.ListingURL(s.siteURL, s.fanClubID, 1),
		}
	}

	s.logger.InfoWithFields(fmt.Sprintf("fan club has %d pages.", listing.MaxPage), map[string]interface{}{
		"max_page": listing.MaxPage,
	})
	return listing.MaxPage, nil
}

func (s *Scraper) crawlPage(ctx context.Context, page, maxPage int, summary *Summary) error {
	target := fantia.ListingURL(s.siteURL, s.fanClubID, page)
	s.progress("page", page, maxPage, target, "start")

	listing, err := s.client.FetchListing(ctx, s.fanClubID, page)
	if err != nil {
		return err
	}

	for i, ref := range listing.PostRefs {
		if err := s.crawlPost(ctx, i+1, len(listing.PostRefs), ref, summary); err != nil {
			return err
		}
	}

	summary.Pages++
	s.progress("page", page, maxPage, target, "end")
	return nil
}

func (s *Scraper) crawlPost(ctx context.Context, i, total int, ref string, summary *Summary) error {
	s.progress("post", i, total, ref, "start")

	post, err := s.client.FetchPost(ctx, ref)
	if err != nil {
		return err
	}

	if len(post.OriginalURIs) == 0 {
		summary.EmptyPosts++
		s.logger.WithField("post", ref).Info(fmt.Sprintf("post [%s] has no images.", ref))
	}

	postDir := post.DirName()
	for j, uri := range post.OriginalURIs {
		if err := s.crawlImage(ctx, j+1, len(post.OriginalURIs), postDir, uri, summary); err != nil {
			return err
		}
	}

	summary.Posts++
	s.progress("post", i, total, ref, "end")
	return nil
}

func (s *Scraper) crawlImage(ctx context.Context, i, total int, postDir, ref string, summary *Summary) error {
	s.progress("image", i, total, ref, "start")

	if err := s.pacer.Wait(ctx); err != nil {
		return err
	}

	asset, err := s.client.FetchOriginal(ctx, ref)
	if err != nil {
		return err
	}

	result, err := s.downloader.Download(ctx, downloader.DownloadJob{
		PostDir:  postDir,
		RefURI:   ref,
		AssetURL: asset.URL,
	})
	if err != nil {
		return err
	}

	summary.Images++
	summary.Bytes += result.Size
	if s.tui != nil {
		s.tui.CompleteImage(result.Path, result.Size)
	}

	s.progress("image", i, total, ref, "end")
	return nil
}

func (s *Scraper) progress(stage string, i, total int, target, state string) {
	logger.LogProgress(s.logger, stage, i, total, target, state)
	if s.tui != nil && state == "start" {
		s.tui.SetStage(stage, i, total, target)
	}
}

func (s *Scraper) finish(summary *Summary, start time.Time, err error) (*Summary, error) {
	summary.Duration = time.Since(start)

	fields := map[string]interface{}{
		"pages":       summary.Pages,
		"posts":       summary.Posts,
		"empty_posts": summary.EmptyPosts,
		"images":      summary.Images,
		"bytes":       summary.Bytes,
		"duration":    summary.Duration,
	}

	if err != nil {
		s.logger.WithError(err).ErrorWithFields("crawl aborted", fields)
		if s.tui != nil {
			s.tui.LogError("Crawl aborted: %v", err)
		}
		return summary, err
	}

	s.logger.InfoWithFields("crawl finished", fields)
	if s.tui != nil {
		s.tui.LogSuccess("Saved %d images from %d posts", summary.Images, summary.Posts)
	}
	return summary, nil
}

func (s *Scraper) tuiInfo(format string, args ...interface{}) {
	if s.tui != nil {
		s.tui.LogInfo(format, args...)
	}
}
