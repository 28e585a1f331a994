package style

import (
	"fmt"
	"strings"

	"github.com/deepbluedave/csv-visualiser-sub000/app/interfaces"
	"github.com/deepbluedave/csv-visualiser-sub000/app/settings"
)

// lookupIndex maps an ID to the display value of the first record carrying it
type lookupIndex struct {
	invalid bool
	values  map[string]string
}

func buildLookup(name string, src *settings.LookupSource, table *interfaces.Table, logger interfaces.Logger) *lookupIndex {
	if src == nil || src.DataColumn == "" || src.DisplayColumn == "" {
		logger.Log("warn", fmt.Sprintf("[STYLE_LOOKUP_CONFIG] Column %q lookup needs source.dataColumn and source.displayColumn", name))
		return &lookupIndex{invalid: true}
	}
	idx := &lookupIndex{values: make(map[string]string, len(table.Records))}
	for _, rec := range table.Records {
		id := rec.Text(src.DataColumn)
		if _, seen := idx.values[id]; seen {
			continue
		}
		idx.values[id] = rec.Text(src.DisplayColumn)
	}
	return idx
}

// resolve returns the display value for id and whether it was found
func (l *lookupIndex) resolve(id string) (string, bool) {
	v, ok := l.values[id]
	if !ok {
		return "", false
	}
	if v == "" {
		v = fmt.Sprintf("(Label missing for %s)", id)
	}
	return v, true
}

func (c *column) displayLookup(value string) Descriptor {
	id := strings.TrimSpace(value)
	if id == "" {
		return Descriptor{Kind: KindNothing}
	}
	if c.lookup == nil || c.lookup.invalid {
		return Descriptor{Kind: KindTag, Text: "Config Error", BgColor: configErrBg, TextColor: configErrFg, BorderColor: configErrBg, CSSClass: genericTagClass}
	}
	display, ok := c.lookup.resolve(id)
	if !ok {
		return Descriptor{
			Kind:        KindTag,
			Text:        id + " (Not Found)",
			Title:       "Parent ID not found: " + id,
			BgColor:     notFoundBg,
			TextColor:   notFoundFg,
			BorderColor: notFoundBg,
		}
	}
	if strings.EqualFold(c.cfg.StyleAs, settings.StyleTag) {
		return genericTag(display, c.cfg.TitlePrefix+display)
	}
	return Descriptor{Kind: KindText, Text: display}
}
