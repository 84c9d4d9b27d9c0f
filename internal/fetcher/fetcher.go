package fetcher

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/go-resty/resty/v2"
	"golang.org/x/net/html"
)

const (
	// DefaultTimeout bounds one page fetch.
	DefaultTimeout = 30 * time.Second
	// maxBody caps the downloaded page (5MB).
	maxBody = 5 * 1024 * 1024
	// maxText caps the extracted text (10KB).
	maxText = 10 * 1024
)

// Fetcher retrieves product pages and pulls ingredient lists out of them
type Fetcher struct {
	client *resty.Client
}

// New creates a Fetcher with the given timeout. Zero uses DefaultTimeout.
func New(timeout time.Duration) *Fetcher {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	client := resty.New().
		SetTimeout(timeout).
		SetHeader("User-Agent", "skincare/1.0 (ingredient-check)").
		SetHeader("Accept", "text/html,application/xhtml+xml")

	return &Fetcher{client: client}
}

// Fetch retrieves URL content and extracts readable text
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (string, error) {
	u, err := normalizeURL(rawURL)
	if err != nil {
		return "", err
	}

	resp, err := f.client.R().
		SetContext(ctx).
		SetDoNotParseResponse(true).
		Get(u)
	if err != nil {
		return "", fmt.Errorf("fetch: %w", err)
	}
	defer resp.RawBody().Close()

	if resp.StatusCode() != http.StatusOK {
		return "", fmt.Errorf("HTTP %d: %s", resp.StatusCode(), resp.Status())
	}

	body, err := io.ReadAll(io.LimitReader(resp.RawBody(), maxBody))
	if err != nil {
		return "", fmt.Errorf("read body: %w", err)
	}

	text := extractText(string(body))
	if text == "" {
		return "", fmt.Errorf("no text content found")
	}
	return text, nil
}

// FetchIngredients fetches a page and returns its ingredient list, or the
// whole page text when no ingredient marker is found.
func (f *Fetcher) FetchIngredients(ctx context.Context, rawURL string) (string, error) {
	text, err := f.Fetch(ctx, rawURL)
	if err != nil {
		return "", err
	}
	if list, ok := ExtractIngredients(text); ok {
		return list, nil
	}
	return text, nil
}

// IsURL checks if a string looks like a URL
func IsURL(s string) bool {
	s = strings.TrimSpace(s)
	return strings.HasPrefix(s, "http://") ||
		strings.HasPrefix(s, "https://") ||
		strings.HasPrefix(s, "www.")
}

func normalizeURL(rawURL string) (string, error) {
	rawURL = strings.TrimSpace(rawURL)
	if strings.HasPrefix(rawURL, "www.") {
		rawURL = "https://" + rawURL
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("invalid URL: %w", err)
	}
	if u.Scheme == "" {
		u.Scheme = "https"
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("unsupported scheme: %s", u.Scheme)
	}
	return u.String(), nil
}

var (
	ingredientMarker = regexp.MustCompile(`(?i)(?:全成分(?:表示)?[ \t]*(?:[:：]|\n)?|(?:成分(?:表示)?|ingredients?)[ \t]*(?:[:：]|\n))\s*`)
	// The list ends at the first sentence-level break after it.
	ingredientEnd = regexp.MustCompile(`(?:。|\.\s|\n|※|\*\s)`)
)

// ExtractIngredients returns the text following the first ingredient
// marker ("Ingredients:", "全成分", "成分") up to the end of that list.
func ExtractIngredients(text string) (string, bool) {
	loc := ingredientMarker.FindStringIndex(text)
	if loc == nil {
		return "", false
	}
	rest := text[loc[1]:]
	if end := ingredientEnd.FindStringIndex(rest); end != nil {
		rest = rest[:end[0]]
	}
	rest = strings.TrimSpace(rest)
	if rest == "" {
		return "", false
	}
	return rest, true
}

// extractText parses HTML and returns readable text content
func extractText(htmlContent string) string {
	doc, err := html.Parse(strings.NewReader(htmlContent))
	if err != nil {
		return ""
	}

	var sb strings.Builder
	var extract func(*html.Node)

	// Tags to skip (non-content)
	skipTags := map[string]bool{
		"script": true, "style": true, "nav": true,
		"header": true, "footer": true, "aside": true,
		"noscript": true, "iframe": true,
	}

	extract = func(n *html.Node) {
		if n.Type == html.ElementNode && skipTags[n.Data] {
			return
		}

		if n.Type == html.TextNode {
			text := strings.TrimSpace(n.Data)
			if text != "" {
				sb.WriteString(text)
				sb.WriteString(" ")
			}
		}

		for c := n.FirstChild; c != nil; c = c.NextSibling {
			extract(c)
		}

		// Block elements end a line so lists stay separated.
		if n.Type == html.ElementNode {
			switch n.Data {
			case "p", "div", "h1", "h2", "h3", "h4", "h5", "h6", "li", "br", "tr", "dd":
				sb.WriteString("\n")
			}
		}
	}

	extract(doc)

	// Collapse whitespace inside lines, keep line breaks.
	var lines []string
	for _, line := range strings.Split(sb.String(), "\n") {
		if line = strings.Join(strings.Fields(line), " "); line != "" {
			lines = append(lines, line)
		}
	}
	result := strings.Join(lines, "\n")

	if len(result) > maxText {
		cut := maxText
		for cut > 0 && !utf8.RuneStart(result[cut]) {
			cut--
		}
		result = result[:cut] + "..."
	}
	return strings.TrimSpace(result)
}
