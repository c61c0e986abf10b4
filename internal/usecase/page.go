package usecase

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var whitespaceRegex = regexp.MustCompile(`\s+`)

// Page is the parse state of one fetched document.
// It is built per extraction and never shared between calls.
type Page struct {
	URL  *url.URL
	HTML string
	Doc  *goquery.Document
}

// NewPage parses html fetched for pageURL
func NewPage(pageURL *url.URL, html string) (*Page, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}
	return &Page{URL: pageURL, HTML: html, Doc: doc}, nil
}

// Host returns the lower-cased hostname of the page
func (p *Page) Host() string {
	if p.URL == nil {
		return ""
	}
	return strings.ToLower(p.URL.Hostname())
}

// metaContent returns the trimmed content of the first matching meta tag with a non-empty value
func (p *Page) metaContent(selectors ...string) string {
	for _, selector := range selectors {
		var found string
		p.Doc.Find(selector).EachWithBreak(func(_ int, s *goquery.Selection) bool {
			if content, ok := s.Attr("content"); ok {
				found = cleanText(content)
			}
			return found == ""
		})
		if found != "" {
			return found
		}
	}
	return ""
}

// cleanText collapses whitespace (including non-breaking spaces) and trims
func cleanText(s string) string {
	s = strings.ReplaceAll(s, "\u00a0", " ")
	s = whitespaceRegex.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// resolveURL makes ref absolute against the page URL.
// Protocol-relative references get the page scheme, https by default.
func (p *Page) resolveURL(ref string) string {
	ref = strings.TrimSpace(ref)
	if ref == "" || strings.HasPrefix(ref, "data:") {
		return ""
	}
	if p.URL == nil {
		if strings.HasPrefix(ref, "//") {
			return "https:" + ref
		}
		return ref
	}

	parsed, err := url.Parse(ref)
	if err != nil {
		return ref
	}
	return p.URL.ResolveReference(parsed).String()
}
