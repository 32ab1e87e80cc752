package utils

import (
	"html/template"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var sanitizer = bluemonday.StrictPolicy()

// Linebreaks strips any markup from text and turns newlines into <br> and blank lines into
// paragraphs, returning HTML safe for templates.
func Linebreaks(text string) template.HTML {
	clean := sanitizer.Sanitize(strings.ReplaceAll(text, "\r\n", "\n"))
	var b strings.Builder
	for _, para := range strings.Split(clean, "\n\n") {
		para = strings.Trim(para, "\n")
		if para == "" {
			continue
		}
		b.WriteString("<p>")
		b.WriteString(strings.ReplaceAll(para, "\n", "<br>"))
		b.WriteString("</p>")
	}
	return template.HTML(b.String())
}
