package parser

import (
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"github.com/PuerkitoBio/goquery"

	"BrainGuard/internal/domain"
)

const minMainContentChars = 100

var (
	mainContentSelectors = []string{
		"article", "main", `[role="main"]`, ".content", ".post", ".entry",
		".article-content", ".story-content", "#content", ".main-content",
	}
	boilerplateSelectors = strings.Join([]string{
		"nav", "header", "footer", "aside", ".sidebar", ".advertisement",
		".ad", ".social-share", ".comments", ".related-posts", "script", "style", "noscript",
	}, ", ")
	videoSelectors = `video, iframe[src*="youtube"], iframe[src*="vimeo"]`
	wordExpr       = regexp.MustCompile(`\b\w+\b`)

	// Inline Markdown images and links; destinations may hold one level
	// of balanced parentheses and an optional title.
	imageExpr    = regexp.MustCompile(`!\[(?:\\.|[^\]\\])*\]\((?:[^()\s]|\([^()]*\))*(?:\s+"[^"]*")?\)`)
	linkExpr     = regexp.MustCompile(`\[((?:\\.|[^\]\\])*)\]\((?:[^()\s]|\([^()]*\))*(?:\s+"[^"]*")?\)`)
	autolinkExpr = regexp.MustCompile(`<([a-zA-Z][a-zA-Z0-9+.-]*:[^<>\s]*)>`)
)

// documentReader turns a parsed HTML document into a domain.Page.
type documentReader struct {
	markdown *converter.Converter
}

func newDocumentReader() *documentReader {
	return &documentReader{
		markdown: converter.NewConverter(
			converter.WithPlugins(
				base.NewBasePlugin(),
				commonmark.NewCommonmarkPlugin(),
			),
		),
	}
}

func (r *documentReader) read(doc *goquery.Document, pageURL *url.URL, behavioral domain.Behavioral) domain.Page {
	meta := extractMetadata(doc)
	content := r.extractContent(doc, pageURL)

	if behavioral.TimeSpent > 0 && behavioral.ReadingSpeed == 0 {
		minutes := behavioral.TimeSpent.Minutes()
		behavioral.ReadingSpeed = int(float64(meta.WordCount) / minutes)
	}

	page := domain.Page{
		URL:        pageURL.String(),
		Title:      strings.TrimSpace(doc.Find("title").First().Text()),
		Domain:     pageURL.Hostname(),
		Content:    content,
		Metadata:   meta,
		Behavioral: behavioral,
		Timestamp:  time.Now().UTC(),
	}
	page.Category = Categorize(page.Content, meta)
	return page
}

// extractContent prefers a recognizable main-content container and falls
// back to the body stripped of navigation, ads and scripts.
func (r *documentReader) extractContent(doc *goquery.Document, pageURL *url.URL) string {
	for _, selector := range mainContentSelectors {
		sel := doc.Find(selector).First()
		if sel.Length() == 0 {
			continue
		}
		if len(strings.TrimSpace(sel.Text())) > minMainContentChars {
			return r.toMarkdown(sel, pageURL)
		}
	}

	body := doc.Find("body").First().Clone()
	body.Find(boilerplateSelectors).Remove()
	return r.toMarkdown(body, pageURL)
}

func (r *documentReader) toMarkdown(sel *goquery.Selection, pageURL *url.URL) string {
	fallback := strings.TrimSpace(sel.Text())
	html, err := goquery.OuterHtml(sel)
	if err != nil || strings.TrimSpace(html) == "" {
		return fallback
	}

	var out string
	if pageURL != nil && pageURL.Host != "" {
		out, err = r.markdown.ConvertString(html, converter.WithDomain(pageURL.Scheme+"://"+pageURL.Host))
	} else {
		out, err = r.markdown.ConvertString(html)
	}
	if err != nil || strings.TrimSpace(out) == "" {
		return fallback
	}
	return strings.TrimSpace(visibleText(out))
}

// visibleText drops link destinations and images from Markdown so only
// text a reader sees is scored. Headers and list markers stay; autolinks
// keep their address since it is the rendered text.
func visibleText(md string) string {
	md = imageExpr.ReplaceAllString(md, "")
	md = linkExpr.ReplaceAllString(md, "$1")
	return autolinkExpr.ReplaceAllString(md, "$1")
}

func extractMetadata(doc *goquery.Document) domain.Metadata {
	meta := map[string]string{}
	doc.Find("meta").Each(func(_ int, tag *goquery.Selection) {
		name := tag.AttrOr("name", "")
		if name == "" {
			name = tag.AttrOr("property", "")
		}
		content := tag.AttrOr("content", "")
		if name != "" && content != "" {
			meta[strings.ToLower(name)] = content
		}
	})

	canonical, _ := doc.Find(`link[rel="canonical"]`).First().Attr("href")

	return domain.Metadata{
		Description: meta["description"],
		Keywords:    meta["keywords"],
		Author:      meta["author"],
		OGType:      meta["og:type"],
		Canonical:   canonical,
		WordCount:   len(wordExpr.FindAllStringIndex(doc.Find("body").Text(), -1)),
		ImageCount:  doc.Find("img").Length(),
		VideoCount:  doc.Find(videoSelectors).Length(),
		LinkCount:   doc.Find("a").Length(),
	}
}
