package customvariant

import (
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/brotli"

	"github.com/guarzo/variantctl/internal/model"
)

const htmlSourceUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// HTMLSource is a DataSource that scrapes a product listing page for a
// card's custom or store-exclusive printings. It is the sample
// implementation referenced by the resolver's DataSource interface; a
// real deployment would point baseURL at the retailer or collector
// catalog it needs.
type HTMLSource struct {
	name    string
	baseURL string
	client  *http.Client
}

// NewHTMLSource builds an HTMLSource that queries baseURL with the card's
// set identifier and number as query parameters, using client for the
// HTTP round trip.
func NewHTMLSource(name, baseURL string, client *http.Client) *HTMLSource {
	if client == nil {
		client = http.DefaultClient
	}
	return &HTMLSource{name: name, baseURL: baseURL, client: client}
}

func (h *HTMLSource) Name() string { return h.name }

// Lookup fetches the product page for card and parses out any listed
// custom-variant rows. Rows are expected to carry a data-finish
// attribute naming the Finish they replace (if any) and a data-product
// attribute with the marketplace listing title.
func (h *HTMLSource) Lookup(ctx context.Context, card model.CardRecord) ([]model.CustomVariant, error) {
	url := fmt.Sprintf("%s?set=%s&number=%s", h.baseURL, card.SetID, card.Number)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	h.setHeaders(req)

	resp, err := h.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", h.name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%s returned status %d", h.name, resp.StatusCode)
	}

	reader, err := decodedReader(resp)
	if err != nil {
		return nil, fmt.Errorf("decode %s response: %w", h.name, err)
	}

	doc, err := goquery.NewDocumentFromReader(reader)
	if err != nil {
		return nil, fmt.Errorf("parse %s document: %w", h.name, err)
	}

	var variants []model.CustomVariant
	doc.Find("[data-product][data-variant-name]").Each(func(_ int, s *goquery.Selection) {
		name, ok := s.Attr("data-variant-name")
		if !ok || strings.TrimSpace(name) == "" {
			return
		}
		cv := model.CustomVariant{
			DisplayName:   name,
			Description:   strings.TrimSpace(s.Find(".description").Text()),
			Active:        true,
			SourceProduct: attrOr(s, "data-product", ""),
		}
		if finish, ok := s.Attr("data-finish"); ok {
			f := model.Finish(finish)
			cv.Replaces = &f
		}
		if price, ok := s.Attr("data-price"); ok {
			if v, err := strconv.ParseFloat(price, 64); err == nil {
				cv.Prices = map[string]float64{"listing": v}
			}
		}
		variants = append(variants, cv)
	})

	return variants, nil
}

func attrOr(s *goquery.Selection, attr, fallback string) string {
	if v, ok := s.Attr(attr); ok {
		return v
	}
	return fallback
}

func (h *HTMLSource) setHeaders(req *http.Request) {
	req.Header.Set("User-Agent", htmlSourceUserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")
	req.Header.Set("Accept-Encoding", "gzip, br")
}

func decodedReader(resp *http.Response) (io.Reader, error) {
	switch resp.Header.Get("Content-Encoding") {
	case "gzip":
		return gzip.NewReader(resp.Body)
	case "br":
		return brotli.NewReader(resp.Body), nil
	default:
		return resp.Body, nil
	}
}
