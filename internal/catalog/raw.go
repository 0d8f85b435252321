package catalog

import (
	"fmt"
	"strconv"
	"strings"
)

// RawRecord is one scraped row as it arrives from a source: a loose map
// whose key names vary by producer. All tolerant key resolution lives in
// this file so the accepted spellings stay in one place.
type RawRecord map[string]any

// Accepted key spellings per semantic field, in priority order. The first
// present, non-empty value wins.
var (
	crnKeys        = []string{"crn", "CRN"}
	codeKeys       = []string{"kod", "code", "DersKodu"}
	titleKeys      = []string{"isim", "title", "name", "DersAdi"}
	instructorKeys = []string{"hoca", "instructor", "OgretimUyesi"}
	classKeys      = []string{"sinif", "Sinif", "Class"}
	dayKeys        = []string{"gun", "day", "Gun"}
	startKeys      = []string{"bas", "start", "BaslangicSaati"}
	endKeys        = []string{"bit", "end", "BitisSaati"}
	timeKeys       = []string{"saat", "time", "Saat"}
)

func getString(m RawRecord, keys ...string) string {
	for _, k := range keys {
		v, ok := m[k]
		if !ok || v == nil {
			continue
		}
		var s string
		switch t := v.(type) {
		case string:
			s = t
		default:
			s = fmt.Sprintf("%v", t)
		}
		if s = strings.TrimSpace(s); s != "" {
			return s
		}
	}
	return ""
}

func getFloat(m RawRecord, keys ...string) (float64, bool) {
	for _, k := range keys {
		v, ok := m[k]
		if !ok || v == nil {
			continue
		}
		switch t := v.(type) {
		case float64:
			return t, true
		case float32:
			return float64(t), true
		case int:
			return float64(t), true
		case int64:
			return float64(t), true
		case string:
			if f, err := strconv.ParseFloat(strings.TrimSpace(t), 64); err == nil {
				return f, true
			}
		case interface{ Float64() (float64, error) }:
			if f, err := t.Float64(); err == nil {
				return f, true
			}
		}
	}
	return 0, false
}

// splitCell turns a multi-line table cell into its entries. Scraped cells
// arrive either pipe-joined or newline-joined.
func splitCell(cell string) []string {
	cell = strings.ReplaceAll(cell, "\n", "|")
	parts := strings.Split(cell, "|")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
