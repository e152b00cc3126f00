package ingest

import (
	"strings"

	"github.com/Zachkp/portfolio/internal/content"
	"github.com/Zachkp/portfolio/internal/experience"
)

// BuildExperience turns the CV sheet into experience data. Every column
// whose name starts with "show" is a visibility group; a row belongs to
// each group whose cell is truthy. Types are ordered by first appearance.
func BuildExperience(t *Table) content.ExperienceData {
	data := content.ExperienceData{TypeOrder: []string{}, Entries: []content.ExperienceEntry{}}
	if t == nil {
		return data
	}

	var showColumns []string
	for _, name := range t.Header {
		if strings.HasPrefix(strings.ToLower(name), "show") {
			showColumns = append(showColumns, name)
		}
	}

	seen := map[string]bool{}
	for _, row := range t.Rows {
		typ := strings.TrimSpace(row["type"])
		if typ == "" {
			continue
		}
		if !seen[typ] {
			seen[typ] = true
			data.TypeOrder = append(data.TypeOrder, typ)
		}

		showDefault := ParseBool(row[experience.DefaultGroup])
		groups := []string{}
		for _, col := range showColumns {
			if ParseBool(row[col]) {
				groups = append(groups, strings.TrimSpace(col))
			}
		}
		if showDefault && !contains(groups, experience.DefaultGroup) {
			groups = append(groups, experience.DefaultGroup)
		}

		data.Entries = append(data.Entries, content.ExperienceEntry{
			Type:         typ,
			Organisation: strings.TrimSpace(row.Get("organization/", "organization", "organisation")),
			Role:         strings.TrimSpace(row["role"]),
			Begin:        strings.TrimSpace(row["begin_m"]),
			End:          strings.TrimSpace(row["end_m"]),
			RelatedWorks: ParseCodes(row["related_work"]),
			Description:  multiline(row["introd"]),
			ShowDefault:  showDefault,
			ShowGroups:   groups,
			Tags:         ParseList(row["tag"]),
		})
	}
	return data
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
