package content

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	readability "github.com/go-shiori/go-readability"
)

// ExtractText returns the readable body text of an HTML page.
func ExtractText(htmlContent string) (string, error) {
	article, err := readability.FromReader(strings.NewReader(htmlContent), nil)
	if err != nil {
		return "", fmt.Errorf("extract text: %w", err)
	}
	return strings.TrimSpace(article.TextContent), nil
}

// ExtractTitle returns a cleaned page title. Readability's pick wins;
// otherwise the <title>, first <h1>, og:title and meta title are tried in
// that order.
func ExtractTitle(htmlContent string) (string, error) {
	if article, err := readability.FromReader(strings.NewReader(htmlContent), nil); err == nil {
		if title := strings.TrimSpace(article.Title); title != "" {
			return title, nil
		}
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlContent))
	if err != nil {
		return "", fmt.Errorf("parse html: %w", err)
	}

	if title := strings.TrimSpace(doc.Find("title").First().Text()); title != "" {
		return title, nil
	}
	if title := strings.TrimSpace(doc.Find("h1").First().Text()); title != "" {
		return title, nil
	}
	if title, ok := doc.Find("meta[property='og:title']").Attr("content"); ok && strings.TrimSpace(title) != "" {
		return strings.TrimSpace(title), nil
	}
	if title, ok := doc.Find("meta[name='title']").Attr("content"); ok && strings.TrimSpace(title) != "" {
		return strings.TrimSpace(title), nil
	}

	return "", fmt.Errorf("title not found")
}

// ExtractTopImage returns a representative image URL for the page:
// readability's choice first, then og:image, twitter:image and finally the
// first <img> with a src attribute.
func ExtractTopImage(htmlContent string) (string, error) {
	if article, err := readability.FromReader(strings.NewReader(htmlContent), nil); err == nil {
		if image := strings.TrimSpace(article.Image); image != "" {
			return image, nil
		}
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlContent))
	if err != nil {
		return "", fmt.Errorf("parse html: %w", err)
	}

	if image, ok := doc.Find("meta[property='og:image']").Attr("content"); ok && strings.TrimSpace(image) != "" {
		return strings.TrimSpace(image), nil
	}
	if image, ok := doc.Find("meta[name='twitter:image']").Attr("content"); ok && strings.TrimSpace(image) != "" {
		return strings.TrimSpace(image), nil
	}
	if image, ok := doc.Find("img[src]").First().Attr("src"); ok && strings.TrimSpace(image) != "" {
		return strings.TrimSpace(image), nil
	}

	return "", fmt.Errorf("no representative image found")
}
