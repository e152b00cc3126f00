// Package experience filters and orders CV entries.
package experience

import (
	"sort"
	"strings"

	"github.com/Zachkp/portfolio/internal/content"
)

// Visibility groups with special meaning.
const (
	DefaultGroup  = "show_default"
	WildcardGroup = "*"
	allAlias      = "all"

	// groupPrefix is how visibility columns are named in the CV sheet;
	// "ux" and "show_ux" select the same group.
	groupPrefix = "show_"
)

// Entry is an experience entry with its computed sort keys.
type Entry struct {
	content.ExperienceEntry
	EndKey   int `json:"endKey"`
	BeginKey int `json:"beginKey"`
}

// Section is every visible entry of one type, newest first.
type Section struct {
	Type    string  `json:"type"`
	Entries []Entry `json:"entries"`
}

// Visible reports whether e belongs to any of groups.
func Visible(e content.ExperienceEntry, groups []string) bool {
	for _, g := range normalizeGroups(groups) {
		if g == WildcardGroup {
			return true
		}
		if g == DefaultGroup && e.ShowDefault {
			return true
		}
		for _, sg := range e.ShowGroups {
			sg = strings.ToLower(strings.TrimSpace(sg))
			if sg == g || sg == groupPrefix+g {
				return true
			}
		}
	}
	return false
}

func normalizeGroups(groups []string) []string {
	out := make([]string, 0, len(groups))
	for _, g := range groups {
		g = strings.ToLower(strings.TrimSpace(g))
		switch g {
		case "":
			continue
		case allAlias:
			g = WildcardGroup
		case "default":
			g = DefaultGroup
		}
		out = append(out, g)
	}
	if len(out) == 0 {
		out = append(out, DefaultGroup)
	}
	return out
}

// Filter keeps the entries visible in groups, in their original order.
// No groups means DefaultGroup.
func Filter(entries []content.ExperienceEntry, groups []string) []content.ExperienceEntry {
	var out []content.ExperienceEntry
	for _, e := range entries {
		if Visible(e, groups) {
			out = append(out, e)
		}
	}
	return out
}

// Keyed computes the sort keys of e. An unparsable end date falls back to
// the begin date.
func Keyed(e content.ExperienceEntry) Entry {
	begin := ParseDateKey(e.Begin)
	end := ParseDateKey(e.End)
	if end == 0 {
		end = begin
	}
	return Entry{ExperienceEntry: e, EndKey: end, BeginKey: begin}
}

// Sort orders entries newest first by end key, then begin key. Entries with
// equal keys keep their relative order.
func Sort(entries []content.ExperienceEntry) []Entry {
	out := make([]Entry, len(entries))
	for i, e := range entries {
		out[i] = Keyed(e)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].EndKey != out[j].EndKey {
			return out[i].EndKey > out[j].EndKey
		}
		return out[i].BeginKey > out[j].BeginKey
	})
	return out
}

// Compose filters data by groups, sorts it and splits it by type. Sections
// follow data.TypeOrder; types it does not list come after, in first-seen order.
func Compose(data content.ExperienceData, groups []string) []Section {
	sorted := Sort(Filter(data.Entries, groups))

	order := make([]string, 0, len(data.TypeOrder))
	seen := map[string]bool{}
	for _, t := range data.TypeOrder {
		if !seen[t] {
			seen[t] = true
			order = append(order, t)
		}
	}
	for _, e := range data.Entries {
		if !seen[e.Type] {
			seen[e.Type] = true
			order = append(order, e.Type)
		}
	}

	byType := map[string][]Entry{}
	for _, e := range sorted {
		byType[e.Type] = append(byType[e.Type], e)
	}

	var out []Section
	for _, t := range order {
		if entries := byType[t]; len(entries) > 0 {
			out = append(out, Section{Type: t, Entries: entries})
		}
	}
	return out
}
