// Package cleaner turns pasted job postings and model output into plain text.
package cleaner

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var (
	tagPattern   = regexp.MustCompile(`<[^>]*>`)
	spacePattern = regexp.MustCompile(`[ \t\r\f\v]+`)
	htmlHint     = regexp.MustCompile(`(?i)<(p|div|li|ul|ol|br|h[1-6]|span|strong|em|b|i|a|html|body|section)\b[^>]*>`)
)

const blockElements = "p, div, section, article, li, dt, dd, h1, h2, h3, h4, h5, h6, tr, td, th, blockquote, pre, br"

// LooksLikeHTML reports whether s contains markup worth parsing.
func LooksLikeHTML(s string) bool {
	return htmlHint.MatchString(s)
}

// HTMLToText extracts readable text from an HTML fragment or page, one
// line per block element. Chrome such as navigation, scripts and cookie
// banners is dropped; all other text is kept.
func HTMLToText(html string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return stripTags(html)
	}
	doc.Find("script, style, nav, header, footer, iframe, noscript").Remove()
	doc.Find(".menu, .navigation, .social, .banner, .ads, .cookie, .popup").Remove()
	doc.Find(blockElements).AfterHtml("\n")

	var lines []string
	for _, line := range strings.Split(doc.Text(), "\n") {
		if text := cleanText(line); text != "" {
			lines = append(lines, text)
		}
	}
	return strings.Join(lines, "\n")
}

// Text returns s unchanged unless it looks like HTML, in which case the
// markup is removed.
func Text(s string) string {
	if !LooksLikeHTML(s) {
		return s
	}
	return HTMLToText(s)
}

// StripCodeFences removes a surrounding markdown code block from a model
// response.
func StripCodeFences(response string) string {
	if !strings.Contains(response, "```") {
		return strings.TrimSpace(response)
	}
	start := strings.Index(response, "```") + 3
	if nl := strings.IndexByte(response[start:], '\n'); nl >= 0 && !strings.ContainsAny(response[start:start+nl], "{[") {
		start += nl + 1
	}
	end := strings.LastIndex(response, "```")
	if end > start {
		return strings.TrimSpace(response[start:end])
	}
	return strings.TrimSpace(response)
}

// JSONObject returns the text between the first '{' and the last '}'.
func JSONObject(s string) (string, bool) {
	start := strings.IndexByte(s, '{')
	end := strings.LastIndexByte(s, '}')
	if start < 0 || end <= start {
		return "", false
	}
	return s[start : end+1], true
}

func stripTags(html string) string {
	return cleanText(tagPattern.ReplaceAllString(html, " "))
}

func cleanText(text string) string {
	return strings.TrimSpace(spacePattern.ReplaceAllString(text, " "))
}
