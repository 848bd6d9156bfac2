package service

import (
	"bytes"
	"html"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	gmhtml "github.com/yuin/goldmark/renderer/html"
)

const excerptLimit = 160

var (
	mediaSrcPattern  = regexp.MustCompile(`^https://(?:res\.cloudinary\.com|[a-z0-9.-]+\.cloudinary\.com)/`)
	codeClassPattern = regexp.MustCompile(`^(?:language-[\w+-]+|code-block|editor-[\w-]+)(?:\s+[\w-]+)*$`)
	markdownNoise    = strings.NewReplacer("#", " ", "*", " ", "`", " ", "_", " ", ">", " ", "[", " ", "]", " ", "(", " ", ")", " ")
	excerptStripper  = newExcerptStripper()
)

func newExcerptStripper() *bluemonday.Policy {
	policy := bluemonday.StrictPolicy()
	policy.AddSpaceWhenStrippingTag(true)
	return policy
}

// ContentRenderer turns stored post bodies into HTML safe to embed in a page.
// Bodies may be Markdown or the HTML produced by the admin editor; both go
// through goldmark and are then sanitised.
type ContentRenderer struct {
	markdown goldmark.Markdown
	policy   *bluemonday.Policy
}

// NewContentRenderer builds the renderer with the editor's allowed markup.
func NewContentRenderer() *ContentRenderer {
	return &ContentRenderer{
		markdown: goldmark.New(
			goldmark.WithExtensions(extension.GFM, extension.Linkify, extension.Table),
			goldmark.WithRendererOptions(gmhtml.WithHardWraps(), gmhtml.WithXHTML(), gmhtml.WithUnsafe()),
		),
		policy: buildContentPolicy(),
	}
}

func buildContentPolicy() *bluemonday.Policy {
	policy := bluemonday.UGCPolicy()
	policy.AllowAttrs("class").Matching(codeClassPattern).OnElements("pre", "code", "div", "figure", "blockquote")
	policy.AllowElements("figure", "figcaption", "hr", "video", "source")
	policy.AllowAttrs("src", "poster").Matching(mediaSrcPattern).OnElements("video", "source")
	policy.AllowAttrs("type").OnElements("source")
	policy.AllowAttrs("controls", "playsinline", "muted", "loop", "preload").OnElements("video")
	return policy
}

// Render converts content into sanitised HTML.
func (r *ContentRenderer) Render(content string) string {
	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		return ""
	}

	var buf bytes.Buffer
	if err := r.markdown.Convert([]byte(trimmed), &buf); err != nil {
		return r.policy.Sanitize(trimmed)
	}
	return r.policy.Sanitize(buf.String())
}

// Sanitize strips disallowed markup without Markdown conversion.
func (r *ContentRenderer) Sanitize(htmlContent string) string {
	return r.policy.Sanitize(htmlContent)
}

// summarizeContent derives a plain text excerpt from a Markdown or HTML body.
func summarizeContent(content string) string {
	plain := excerptStripper.Sanitize(content)
	plain = html.UnescapeString(plain)
	plain = markdownNoise.Replace(plain)
	plain = strings.Join(strings.Fields(plain), " ")
	if plain == "" {
		return ""
	}

	if utf8.RuneCountInString(plain) <= excerptLimit {
		return plain
	}

	runes := []rune(plain)
	return strings.TrimSpace(string(runes[:excerptLimit])) + "…"
}
