package lookup

import (
	"html"
	"regexp"
	"strings"
)

// Segment is a run of label text, flagged when it matches the query.
type Segment struct {
	Text  string
	Match bool
}

// matcher builds a case-insensitive alternation of the query's
// space-separated terms.
func matcher(query string) *regexp.Regexp {
	var terms []string
	for _, t := range strings.Split(query, " ") {
		if t != "" {
			terms = append(terms, regexp.QuoteMeta(t))
		}
	}
	if len(terms) == 0 {
		return nil
	}
	return regexp.MustCompile("(?i)(" + strings.Join(terms, "|") + ")")
}

// Highlight splits label into matching and non-matching segments.
func Highlight(label, query string) []Segment {
	re := matcher(query)
	if re == nil || label == "" {
		if label == "" {
			return nil
		}
		return []Segment{{Text: label}}
	}

	var out []Segment
	last := 0
	for _, loc := range re.FindAllStringIndex(label, -1) {
		if loc[0] > last {
			out = append(out, Segment{Text: label[last:loc[0]]})
		}
		out = append(out, Segment{Text: label[loc[0]:loc[1]], Match: true})
		last = loc[1]
	}
	if last < len(label) {
		out = append(out, Segment{Text: label[last:]})
	}
	return out
}

// HighlightMarkup renders the label with matches wrapped in <b> tags. Label
// text is HTML-escaped.
func HighlightMarkup(label, query string) string {
	var b strings.Builder
	for _, s := range Highlight(label, query) {
		if s.Match {
			b.WriteString("<b>")
			b.WriteString(html.EscapeString(s.Text))
			b.WriteString("</b>")
			continue
		}
		b.WriteString(html.EscapeString(s.Text))
	}
	return b.String()
}

// Render applies style to matching segments and joins the result.
func Render(label, query string, style func(string) string) string {
	var b strings.Builder
	for _, s := range Highlight(label, query) {
		if s.Match && style != nil {
			b.WriteString(style(s.Text))
			continue
		}
		b.WriteString(s.Text)
	}
	return b.String()
}
