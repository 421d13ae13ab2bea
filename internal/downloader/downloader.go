package downloader

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path"
	"time"

	"fantiadl/pkg/fantia"
	"fantiadl/pkg/logger"
)

// DownloadJob describes one image of a post
type DownloadJob struct {
	// PostDir is the per-post directory name, e.g. 12345_20200101_090503
	PostDir string

	// RefURI is the original-image reference the asset was resolved from
	RefURI string

	// AssetURL is the resolved image URL
	AssetURL string
}

// DownloadResult represents the result of a download job
type DownloadResult struct {
	Job      DownloadJob
	Path     string
	Size     int64
	Duration time.Duration
}

// AssetFetcher downloads raw asset bytes
type AssetFetcher interface {
	DownloadAsset(ctx context.Context, assetURL string) ([]byte, error)
}

// FileStore persists downloaded assets
type FileStore interface {
	Save(postDir, filename string, r io.Reader) (string, int64, error)
}

// Downloader fetches resolved assets and stores them under their post
type Downloader struct {
	client  AssetFetcher
	storage FileStore
	logger  logger.Logger
}

// New creates a downloader
func New(client AssetFetcher, storage FileStore, log logger.Logger) *Downloader {
	if log == nil {
		log = logger.GetLogger()
	}
	return &Downloader{
		client:  client,
		storage: storage,
		logger:  log.WithField("component", "downloader"),
	}
}

// Download fetches job.AssetURL and writes it to
// {post_dir}/{last segment of RefURI}{extension of AssetURL}
func (d *Downloader) Download(ctx context.Context, job DownloadJob) (*DownloadResult, error) {
	start := time.Now()

	filename, err := FileName(job.RefURI, job.AssetURL)
	if err != nil {
		return nil, err
	}

	data, err := d.client.DownloadAsset(ctx, job.AssetURL)
	if err != nil {
		return nil, fmt.Errorf("download failed: %w", err)
	}

	target, size, err := d.storage.Save(job.PostDir, filename, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("save failed: %w", err)
	}

	result := &DownloadResult{
		Job:      job,
		Path:     target,
		Size:     size,
		Duration: time.Since(start),
	}

	d.logger.InfoWithFields(fmt.Sprintf("image [%s] download to [%s].", job.RefURI, target), map[string]interface{}{
		"size":     result.Size,
		"duration": result.Duration,
	})

	return result, nil
}

// FileName derives the local file name for an image: the last path segment
// of the reference plus the extension of the asset's last path segment.
func FileName(refURI, assetURL string) (string, error) {
	base := fantia.LastPathSegment(refURI)
	if base == "" {
		return "", fmt.Errorf("reference %q has no path segment", refURI)
	}
	return base + path.Ext(fantia.LastPathSegment(assetURL)), nil
}
