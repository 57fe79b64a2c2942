package infra

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/disintegration/imaging"
)

// HeadshotCache downloads and caches player headshot images.
type HeadshotCache struct {
	basePath    string
	urlTemplate string
	client      *http.Client
}

// NewHeadshotCache creates a cache rooted at dir. urlTemplate must contain
// a single %s placeholder for the player ID.
func NewHeadshotCache(dir, urlTemplate string) (*HeadshotCache, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create headshot directory: %w", err)
	}

	// Bound idle connections so batch sync doesn't leak sockets
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.MaxIdleConns = 100
	transport.MaxConnsPerHost = 10
	transport.IdleConnTimeout = 30 * time.Second

	return &HeadshotCache{
		basePath:    dir,
		urlTemplate: urlTemplate,
		client: &http.Client{
			Timeout:   10 * time.Second,
			Transport: transport,
		},
	}, nil
}

// Download fetches the headshot for a player if not already cached.
// Returns the local file path. Images are resized to 64x64 for the board.
func (c *HeadshotCache) Download(playerID string) (string, error) {
	safeID := sanitizeID(playerID)
	if safeID == "" {
		return "", fmt.Errorf("invalid player id: %s", playerID)
	}

	filePath := filepath.Join(c.basePath, safeID+".png")

	if _, err := os.Stat(filePath); err == nil {
		return filePath, nil // cache hit
	}

	url := fmt.Sprintf(c.urlTemplate, playerID)

	resp, err := c.client.Get(url)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("bad status: %s", resp.Status)
	}

	srcImg, err := imaging.Decode(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to decode image: %w", err)
	}

	resized := imaging.Resize(srcImg, 64, 64, imaging.Lanczos)

	if err := imaging.Save(resized, filePath); err != nil {
		return "", fmt.Errorf("failed to save resized image: %w", err)
	}

	return filePath, nil
}

// Path returns the local path for a player's headshot, cached or not.
func (c *HeadshotCache) Path(playerID string) string {
	return filepath.Join(c.basePath, sanitizeID(playerID)+".png")
}

// sanitizeID strips anything that could escape the cache directory.
func sanitizeID(id string) string {
	res := make([]rune, 0, len(id))
	for _, r := range strings.ToLower(id) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '-' {
			res = append(res, r)
		}
	}
	return string(res)
}
