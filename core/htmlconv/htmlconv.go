// Package htmlconv converts downloaded HTML into normalized text.
// It sniffs the character encoding from the raw bytes, strips non-content
// chrome, and serializes the remainder either as markdown or as plain text.
package htmlconv

import (
	"bytes"
	"fmt"
	"io"
	"net/url"
	"os"
	"regexp"
	"strings"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"github.com/PuerkitoBio/goquery"
	readability "github.com/go-shiori/go-readability"
	"golang.org/x/net/html/charset"
)

// Mode selects the output fidelity of a Converter.
type Mode int

const (
	// ModeMarkdown keeps light structure: headings and lists survive,
	// hyperlinks and images are reduced to bare text.
	ModeMarkdown Mode = iota

	// ModeText produces whitespace-normalized plain text, preferring the
	// readability-extracted main content when it is substantial enough.
	ModeText
)

// noiseSelectors are elements removed before serialization. They contribute
// no meaningful content to the page text.
var noiseSelectors = []string{
	"script", "style", "noscript",
	"nav", "footer", "header",
	"img", "picture", "figure", "figcaption",
	"iframe", "video", "audio",
	"svg", "canvas",
	"form", "button", "input", "select", "textarea",
}

var (
	base64ImageMarkdown = regexp.MustCompile(`!\[[^\]]*\]\(data:image/[^)]*\)`)
	base64ImageLiteral  = regexp.MustCompile(`data:image/[a-zA-Z.+-]+;base64,[A-Za-z0-9+/=]+`)
)

// readabilityMinWords is the quality gate for readability extraction in
// ModeText. Below it the whole-document text is used instead.
const readabilityMinWords = 25

// Converter turns raw HTML bytes into normalized text.
type Converter struct {
	mode Mode
}

// New creates a Converter with the given output mode.
func New(mode Mode) *Converter {
	return &Converter{mode: mode}
}

// Convert decodes, cleans, and serializes raw HTML. contentType is the HTTP
// Content-Type header if known (it may carry a charset); pageURL is the
// source URL if known, used only to resolve the main content in ModeText.
// Both may be empty.
func (c *Converter) Convert(raw []byte, contentType, pageURL string) (string, error) {
	decoded, err := decode(raw, contentType)
	if err != nil {
		return "", err
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(decoded))
	if err != nil {
		return "", fmt.Errorf("parsing HTML: %w", err)
	}

	for _, sel := range noiseSelectors {
		doc.Find(sel).Remove()
	}

	// Reduce hyperlinks to their text so the serializers never emit
	// link markup.
	doc.Find("a").Each(func(_ int, s *goquery.Selection) {
		s.ReplaceWithSelection(s.Contents())
	})

	var text string
	switch c.mode {
	case ModeText:
		text = c.plainText(decoded, doc, pageURL)
	default:
		text, err = c.markdown(doc)
		if err != nil {
			return "", err
		}
	}

	text = stripBase64Images(text)
	return NormalizeWhitespace(text), nil
}

// ConvertFile converts an HTML file on disk, sniffing its encoding from the
// file bytes alone.
func (c *Converter) ConvertFile(path string) (string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading HTML file: %w", err)
	}
	return c.Convert(raw, "", "")
}

// markdown serializes the cleaned document as markdown.
func (c *Converter) markdown(doc *goquery.Document) (string, error) {
	container := doc.Find("body")
	if container.Length() == 0 {
		container = doc.Selection
	}

	fragment, err := goquery.OuterHtml(container.First())
	if err != nil {
		return "", fmt.Errorf("serializing content: %w", err)
	}

	md, err := htmltomarkdown.ConvertString(fragment)
	if err != nil {
		return "", fmt.Errorf("converting HTML to markdown: %w", err)
	}
	return md, nil
}

// plainText extracts readable text, trying the readability algorithm on the
// original document first and falling back to the cleaned document's text.
func (c *Converter) plainText(decoded string, doc *goquery.Document, pageURL string) string {
	parsed, err := url.Parse(pageURL)
	if err != nil || pageURL == "" {
		parsed = &url.URL{}
	}

	article, err := readability.FromReader(strings.NewReader(decoded), parsed)
	if err == nil {
		if text := strings.TrimSpace(article.TextContent); len(strings.Fields(text)) >= readabilityMinWords {
			return text
		}
	}

	return doc.Text()
}

// decode converts raw bytes to UTF-8, sniffing the charset from the content
// type and the bytes themselves. Undecodable input falls back to the default
// encoding chosen by the sniffer rather than failing.
func decode(raw []byte, contentType string) (string, error) {
	reader, err := charset.NewReader(bytes.NewReader(raw), contentType)
	if err != nil {
		return string(raw), nil
	}

	decoded, err := io.ReadAll(reader)
	if err != nil {
		return "", fmt.Errorf("decoding HTML: %w", err)
	}
	return string(decoded), nil
}

// stripBase64Images removes inline base64 image data so the output never
// carries embedded binary payloads.
func stripBase64Images(text string) string {
	text = base64ImageMarkdown.ReplaceAllString(text, "")
	return base64ImageLiteral.ReplaceAllString(text, "")
}

// NormalizeWhitespace collapses the text to one trimmed line per original
// non-blank line. Blank lines are dropped.
func NormalizeWhitespace(text string) string {
	var lines []string
	for _, line := range strings.Split(text, "\n") {
		if stripped := strings.TrimSpace(line); stripped != "" {
			lines = append(lines, stripped)
		}
	}
	return strings.Join(lines, "\n")
}
