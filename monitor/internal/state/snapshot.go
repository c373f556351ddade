package state

import (
	"fmt"
	"path/filepath"
	"sync"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/table"
	"github.com/microcosm-cc/bluemonday"
)

var (
	snapshotOnce sync.Once
	snapshotConv *converter.Converter
	snapshotSan  *bluemonday.Policy
)

func snapshotTools() (*converter.Converter, *bluemonday.Policy) {
	snapshotOnce.Do(func() {
		snapshotConv = converter.NewConverter(
			converter.WithPlugins(
				base.NewBasePlugin(),
				commonmark.NewCommonmarkPlugin(),
				table.NewTablePlugin(),
			),
		)
		snapshotSan = bluemonday.UGCPolicy()
	})
	return snapshotConv, snapshotSan
}

// SaveRenderedMarkdown writes a human-readable Markdown snapshot of the raw
// rendered page to <key>_page.md: the markup is sanitized first, then
// converted. Purely informational — change detection never reads it.
func (s *Store) SaveRenderedMarkdown(key, html string) error {
	conv, san := snapshotTools()

	md, err := conv.ConvertString(san.Sanitize(html))
	if err != nil {
		return fmt.Errorf("state: markdown snapshot %s: %w", key, err)
	}
	path := filepath.Join(s.dir, key+"_page.md")
	if err := s.writeAtomic(path, []byte(md)); err != nil {
		return fmt.Errorf("state: save snapshot %s: %w", key, err)
	}
	return nil
}
