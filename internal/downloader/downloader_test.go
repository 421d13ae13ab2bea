package downloader

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fantiadl/pkg/logger"
	"fantiadl/pkg/storage"
)

// MockClient returns fixed bytes for every asset
type MockClient struct {
	data      []byte
	err       error
	requested []string
}

func (m *MockClient) DownloadAsset(ctx context.Context, assetURL string) ([]byte, error) {
	m.requested = append(m.requested, assetURL)
	if m.err != nil {
		return nil, m.err
	}
	return m.data, nil
}

// MockStorage records saves without touching disk
type MockStorage struct {
	saved map[string][]byte
	err   error
}

func (m *MockStorage) Save(postDir, filename string, r io.Reader) (string, int64, error) {
	if m.err != nil {
		return "", 0, m.err
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return "", 0, err
	}
	if m.saved == nil {
		m.saved = make(map[string][]byte)
	}
	key := postDir + "/" + filename
	m.saved[key] = data
	return key, int64(len(data)), nil
}

func TestFileName(t *testing.T) {
	tests := []struct {
		name     string
		refURI   string
		assetURL string
		want     string
	}{
		{
			name:     "reference id with asset extension",
			refURI:   "https://fantia.jp/posts/999/post_content_photo/555",
			assetURL: "https://cc.fantia.jp/uploads/post_content_photo/file/555/abcde.png",
			want:     "555.png",
		},
		{
			name:     "site relative reference",
			refURI:   "/posts/999/post_content_photo/555",
			assetURL: "https://cc.fantia.jp/uploads/abcde.jpeg?Key-Pair-Id=X&Signature=Y",
			want:     "555.jpeg",
		},
		{
			name:     "asset without extension",
			refURI:   "/posts/1/post_content_photo/2",
			assetURL: "https://cc.fantia.jp/uploads/blob",
			want:     "2",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := FileName(tt.refURI, tt.assetURL)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := FileName("/", "https://cc.fantia.jp/a.png")
	assert.Error(t, err)
}

func TestDownload(t *testing.T) {
	client := &MockClient{data: []byte("png bytes")}
	store := &MockStorage{}
	log := logger.NewTestLogger()

	d := New(client, store, log)
	result, err := d.Download(context.Background(), DownloadJob{
		PostDir:  "999_20200101_090503",
		RefURI:   "/posts/999/post_content_photo/555",
		AssetURL: "https://cc.fantia.jp/uploads/abcde.png",
	})
	require.NoError(t, err)

	assert.Equal(t, "999_20200101_090503/555.png", result.Path)
	assert.Equal(t, int64(9), result.Size)
	assert.Equal(t, []string{"https://cc.fantia.jp/uploads/abcde.png"}, client.requested)
	assert.Equal(t, []byte("png bytes"), store.saved["999_20200101_090503/555.png"])
	assert.True(t, log.HasMessage("image [/posts/999/post_content_photo/555] download to [999_20200101_090503/555.png]."))
	assert.Len(t, log.GetMessagesByLevel("INFO"), 1)
}

func TestDownloadWritesToDisk(t *testing.T) {
	root := t.TempDir()
	manager, err := storage.NewManager(root, "12345")
	require.NoError(t, err)

	d := New(&MockClient{data: []byte("image")}, manager, logger.NewNopLogger())
	job := DownloadJob{
		PostDir:  "12345_20200101_090503",
		RefURI:   "/posts/12345/post_content_photo/7",
		AssetURL: "https://cc.fantia.jp/uploads/x.jpg",
	}

	first, err := d.Download(context.Background(), job)
	require.NoError(t, err)
	second, err := d.Download(context.Background(), job)
	require.NoError(t, err)

	want := filepath.Join(root, "12345", "12345_20200101_090503", "7.jpg")
	assert.Equal(t, want, first.Path)
	assert.Equal(t, first.Path, second.Path)

	content, err := os.ReadFile(want)
	require.NoError(t, err)
	assert.Equal(t, "image", string(content))
}

func TestDownloadErrors(t *testing.T) {
	job := DownloadJob{PostDir: "p", RefURI: "/posts/1/post_content_photo/2", AssetURL: "https://cc.fantia.jp/a.png"}
	fetchErr := errors.New("connection reset")
	saveErr := errors.New("disk full")

	_, err := New(&MockClient{err: fetchErr}, &MockStorage{}, logger.NewNopLogger()).Download(context.Background(), job)
	assert.ErrorIs(t, err, fetchErr)

	_, err = New(&MockClient{data: []byte("x")}, &MockStorage{err: saveErr}, logger.NewNopLogger()).Download(context.Background(), job)
	assert.ErrorIs(t, err, saveErr)
}
