package ingest

import (
	"strings"

	"github.com/Zachkp/portfolio/internal/content"
)

// BuildCodeMap maps each row's index column to the work's display name,
// preferring tableName, then fullName, then h2Name. Codes keep the order of
// their first row; a repeated code takes the later name.
func BuildCodeMap(rows []Row) content.CodeMap {
	m := content.CodeMap{Names: map[string]string{}}
	for _, row := range rows {
		code := strings.ToLower(strings.TrimSpace(row["index"]))
		if code == "" {
			continue
		}
		if _, seen := m.Names[code]; !seen {
			m.Codes = append(m.Codes, code)
		}
		m.Names[code] = oneLine(row.Get("tableName", "fullName", "h2Name"))
	}
	return m
}

// BuildDetails turns work rows into detail records keyed by code. Rows
// whose index is not a known code are matched by normalised table or full
// name; rows that still match nothing are returned as unmatched.
func BuildDetails(rows []Row, codes content.CodeMap) (map[string]content.WorkDetail, []string) {
	byName := make(map[string]string, len(codes.Codes))
	for _, code := range codes.Codes {
		key := NormaliseName(codes.Names[code])
		if _, taken := byName[key]; !taken {
			byName[key] = code
		}
	}

	details := map[string]content.WorkDetail{}
	var unmatched []string
	for _, row := range rows {
		raw := strings.ToLower(strings.TrimSpace(row["index"]))
		code := raw
		if _, ok := codes.Names[code]; !ok {
			lookup := NormaliseName(row["tableName"])
			if lookup == "" {
				lookup = NormaliseName(row["fullName"])
			}
			if lookup == "" {
				continue
			}
			code = byName[lookup]
		}
		if _, ok := codes.Names[code]; !ok || code == "" {
			label := strings.TrimSpace(row.Get("tableName", "fullName"))
			if label == "" {
				label = raw
			}
			unmatched = append(unmatched, label)
			continue
		}

		details[code] = content.WorkDetail{
			FullName:  oneLine(row["fullName"]),
			H2Name:    oneLine(row["h2Name"]),
			TableName: oneLine(row["tableName"]),
			YearBegin: strings.TrimSpace(row["yearBegin"]),
			YearEnd:   strings.TrimSpace(row["yearEnd"]),
			Intro:     strings.TrimSpace(strings.ReplaceAll(row["introd"], `\n`, "\n")),
			IntroList: ParseList(row["introd_list"]),
			HeadPic:   strings.TrimSpace(row["headPic"]),
			Tags:      ParseList(row["tag"]),
			Links:     ParseObjectList(row["link"]),
			CoWorkers: ParseObjectList(row["coWorker"]),
			Content:   strings.TrimSpace(row["content"]),
		}
	}
	return details, unmatched
}
