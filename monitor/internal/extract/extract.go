// Package extract reduces rendered markup to a canonical, noise-free text
// representation: qualifying fragments are trimmed, whitespace-collapsed,
// deduplicated, and sorted before joining, so harmless re-renderings that
// reorder equivalent content produce identical output while any addition,
// removal, or edit of a fragment changes it.
package extract

import (
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
)

// Mode selects the extraction policy.
type Mode string

const (
	// ModeFull is the canonical policy: headings, table rows, paragraphs,
	// and list items.
	ModeFull Mode = "full"
	// ModeHeadings is the reduced policy: h1–h3 text only.
	ModeHeadings Mode = "headings"
)

// Minimum fragment lengths, in runes.
const (
	minHeadingLen   = 10
	minParagraphLen = 40
	minListItemLen  = 10
)

// noiseSelector matches subtrees that carry no page content: scripts,
// styling, chrome (nav/header/footer/aside), and embedded frames.
const noiseSelector = "script, style, nav, footer, header, aside, meta, link, iframe, noscript"

// Normalize reduces markup to its canonical fragment set. It is a pure
// function: no side effects, and empty or unparseable input yields "".
func Normalize(html string, mode Mode) string {
	if strings.TrimSpace(html) == "" {
		return ""
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return ""
	}
	doc.Find(noiseSelector).Remove()

	seen := make(map[string]struct{})
	var fragments []string
	add := func(text string, min int) {
		text = collapse(text)
		// Rune count, not bytes: accents must not shift the boundary.
		if utf8.RuneCountInString(text) < min {
			return
		}
		if _, dup := seen[text]; dup {
			return
		}
		seen[text] = struct{}{}
		fragments = append(fragments, text)
	}

	doc.Find("h1, h2, h3").Each(func(_ int, sel *goquery.Selection) {
		add(sel.Text(), minHeadingLen)
	})

	if mode == ModeFull {
		doc.Find("tr").Each(func(_ int, row *goquery.Selection) {
			var cells []string
			row.Find("th, td").Each(func(_ int, cell *goquery.Selection) {
				if c := collapse(cell.Text()); c != "" {
					cells = append(cells, c)
				}
			})
			if len(cells) > 0 {
				add(strings.Join(cells, " | "), minListItemLen)
			}
		})
		doc.Find("p").Each(func(_ int, sel *goquery.Selection) {
			add(sel.Text(), minParagraphLen)
		})
		doc.Find("li").Each(func(_ int, sel *goquery.Selection) {
			add(sel.Text(), minListItemLen)
		})
	}

	sort.Strings(fragments)
	return strings.Join(fragments, "\n")
}

// collapse trims surrounding whitespace and folds internal runs to single
// spaces.
func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
