// Package scraper extracts a product image and title from a product page and
// downloads the image next to the other session thumbnails.
package scraper

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/meur/tiermaker/internal/logging"
	"golang.org/x/net/html"
	"golang.org/x/net/html/charset"
)

// ErrNotFound is returned when the page has no recognizable image or title
var ErrNotFound = errors.New("not found")

// Result is what a product page yields for item creation
type Result struct {
	ImageURL string `json:"image_url"`
	Title    string `json:"title"`
}

// Scraper turns a product page URL into an image URL and a title
type Scraper interface {
	Scrape(ctx context.Context, pageURL string) (Result, error)
}

// image ids used by Amazon product pages, books first
var imageIDs = []string{"ebooksImgBlkFront", "imgBlkFront", "landingImage"}

const titleID = "productTitle"

// Amazon scrapes Amazon product pages. Pages without the Amazon markup fall
// back to Open Graph metadata.
type Amazon struct {
	client    *http.Client
	userAgent string
}

// NewAmazon creates a scraper. A nil client means http.DefaultClient.
func NewAmazon(client *http.Client, userAgent string) *Amazon {
	if client == nil {
		client = http.DefaultClient
	}
	return &Amazon{client: client, userAgent: userAgent}
}

// Scrape fetches pageURL and extracts the product image URL and title
func (a *Amazon) Scrape(ctx context.Context, pageURL string) (Result, error) {
	base, err := url.Parse(pageURL)
	if err != nil {
		return Result{}, fmt.Errorf("invalid page url: %w", err)
	}

	resp, err := a.get(ctx, pageURL)
	if err != nil {
		return Result{}, err
	}
	defer resp.Body.Close()

	body, err := charset.NewReader(resp.Body, resp.Header.Get("Content-Type"))
	if err != nil {
		return Result{}, fmt.Errorf("decode %s: %w", pageURL, err)
	}
	doc, err := html.Parse(body)
	if err != nil {
		return Result{}, fmt.Errorf("parse %s: %w", pageURL, err)
	}

	res, err := Extract(doc, base)
	if err != nil {
		return Result{}, err
	}
	logging.FromContext(logging.WithComponent(ctx, "scraper")).Debug().
		Str("url", pageURL).
		Str("image_url", res.ImageURL).
		Str("title", res.Title).
		Msg("product page scraped")
	return res, nil
}

// Download fetches the image at imageURL into dir and returns the file path.
// File names are prefixed with a random uuid so repeated downloads never clash.
func (a *Amazon) Download(ctx context.Context, dir, imageURL string) (string, error) {
	u, err := url.Parse(imageURL)
	if err != nil {
		return "", fmt.Errorf("invalid image url: %w", err)
	}

	resp, err := a.get(ctx, imageURL)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	name := uuid.NewString()
	if base := path.Base(u.Path); base != "/" && base != "." {
		name += "-" + base
	}
	dst := filepath.Join(dir, name)

	f, err := os.Create(dst)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(f, resp.Body); err != nil {
		_ = f.Close()
		_ = os.Remove(dst)
		return "", fmt.Errorf("download %s: %w", imageURL, err)
	}
	if err := f.Close(); err != nil {
		return "", err
	}
	return dst, nil
}

func (a *Amazon) get(ctx context.Context, rawURL string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	if a.userAgent != "" {
		req.Header.Set("User-Agent", a.userAgent)
	}
	resp, err := a.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", rawURL, err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("fetch %s: %s", rawURL, resp.Status)
	}
	return resp, nil
}

// Extract finds the product image and title in a parsed page. Relative image
// URLs are resolved against base.
func Extract(doc *html.Node, base *url.URL) (Result, error) {
	var (
		img, title       *html.Node
		ogImage, ogTitle string
	)
	walk(doc, func(n *html.Node) {
		switch n.Data {
		case "img":
			if img == nil && matchesID(n, imageIDs) && attr(n, "src") != "" {
				img = n
			}
		case "meta":
			switch attr(n, "property") {
			case "og:image":
				ogImage = attr(n, "content")
			case "og:title":
				ogTitle = attr(n, "content")
			}
		default:
			if title == nil && attr(n, "id") == titleID {
				title = n
			}
		}
	})

	var res Result
	switch {
	case img != nil:
		res.ImageURL = attr(img, "src")
	case ogImage != "":
		res.ImageURL = ogImage
	default:
		return Result{}, fmt.Errorf("image: %w", ErrNotFound)
	}
	if ref, err := url.Parse(res.ImageURL); err == nil && base != nil {
		res.ImageURL = base.ResolveReference(ref).String()
	}

	if title != nil {
		res.Title = strings.TrimSpace(text(title))
	}
	if res.Title == "" {
		res.Title = strings.TrimSpace(ogTitle)
	}
	if res.Title == "" {
		return Result{}, fmt.Errorf("product title: %w", ErrNotFound)
	}
	return res, nil
}

func walk(n *html.Node, fn func(*html.Node)) {
	if n.Type == html.ElementNode {
		fn(n)
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walk(c, fn)
	}
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func matchesID(n *html.Node, ids []string) bool {
	id := attr(n, "id")
	for _, want := range ids {
		if id == want {
			return true
		}
	}
	return false
}

func text(n *html.Node) string {
	var sb strings.Builder
	var collect func(*html.Node)
	collect = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			collect(c)
		}
	}
	collect(n)
	return sb.String()
}
