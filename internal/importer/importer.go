// Package importer fetches the images of a remote album from an
// Imgur-compatible API.
package importer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"img-compare/internal/config"
	"img-compare/internal/raster"
)

const userAgent = "img-compare/1.0 (compatible; Go)"

// maxFetches bounds concurrent image downloads.
const maxFetches = 4

// ErrNoAlbum is returned for an empty album id.
var ErrNoAlbum = errors.New("album id is empty")

// Image is one entry of an album listing.
type Image struct {
	ID       string `json:"id"`
	Link     string `json:"link"`
	Width    int    `json:"width"`
	Height   int    `json:"height"`
	Type     string `json:"type"`
	Animated bool   `json:"animated"`
}

type albumResponse struct {
	Data    []Image `json:"data"`
	Success bool    `json:"success"`
	Status  int     `json:"status"`
}

// Client talks to the album API.
type Client struct {
	APIBase  string
	ClientID string
	HTTP     *http.Client
}

// New creates a client from the import section of cfg.
func New(cfg *config.Config) *Client {
	return &Client{
		APIBase:  strings.TrimRight(cfg.Import.APIBase, "/"),
		ClientID: cfg.Import.ClientID,
		HTTP:     &http.Client{Timeout: cfg.ImportTimeout()},
	}
}

// AlbumImages lists the still images of an album. A response that is not
// successful yields an empty list and no error.
func (c *Client) AlbumImages(ctx context.Context, albumID string) ([]Image, error) {
	albumID = strings.TrimSpace(albumID)
	if albumID == "" {
		return nil, ErrNoAlbum
	}

	endpoint := fmt.Sprintf("%s/album/%s/images", c.APIBase, url.PathEscape(albumID))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Client-ID "+c.ClientID)
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.client().Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch album %s: %w", albumID, err)
	}
	defer resp.Body.Close()

	var body albumResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			log.Printf("Import: album %s: HTTP %d", albumID, resp.StatusCode)
			return nil, nil
		}
		return nil, fmt.Errorf("failed to parse album %s: %w", albumID, err)
	}
	if !body.Success {
		log.Printf("Import: album %s: request not successful (status %d)", albumID, body.Status)
		return nil, nil
	}

	images := make([]Image, 0, len(body.Data))
	for _, img := range body.Data {
		if img.Animated {
			continue
		}
		images = append(images, img)
	}
	return images, nil
}

// ImportAlbum lists an album and downloads every still image, returning
// sources in album order. ok is false when the album listing was not
// successful; callers then keep their current images instead of replacing
// them with the result.
func (c *Client) ImportAlbum(ctx context.Context, albumID string) (sources []*raster.Source, ok bool, err error) {
	start := time.Now()
	images, err := c.AlbumImages(ctx, albumID)
	if err != nil {
		return nil, false, err
	}
	if images == nil {
		return nil, false, nil
	}

	sources = make([]*raster.Source, len(images))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxFetches)
	for i, img := range images {
		g.Go(func() error {
			data, err := c.fetch(gctx, img.Link)
			if err != nil {
				return err
			}
			sources[i] = raster.NewSource(img.ID, img.Type, data)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, false, err
	}

	log.Printf("Import: album %s: %d images in %v", albumID, len(sources), time.Since(start).Round(time.Millisecond))
	return sources, true, nil
}

func (c *Client) fetch(ctx context.Context, link string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, link, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.client().Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", link, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("HTTP %d fetching %s", resp.StatusCode, link)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", link, err)
	}
	return data, nil
}

func (c *Client) client() *http.Client {
	if c.HTTP != nil {
		return c.HTTP
	}
	return http.DefaultClient
}
