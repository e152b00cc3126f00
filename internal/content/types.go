package content

import "sort"

// DefaultRoute is the route configuration entry used when a route key is
// unknown or composes to nothing.
const DefaultRoute = "default"

// WorkDetail is the descriptive record of one portfolio work.
type WorkDetail struct {
	FullName  string              `json:"fullName"`
	H2Name    string              `json:"h2Name"`
	TableName string              `json:"tableName"`
	YearBegin string              `json:"yearBegin"`
	YearEnd   string              `json:"yearEnd"`
	Intro     string              `json:"intro"`
	IntroList []string            `json:"introList"`
	HeadPic   string              `json:"headPic"`
	Tags      []string            `json:"tags"`
	Links     []map[string]string `json:"links"`
	CoWorkers []map[string]string `json:"coWorkers"`
	Content   string              `json:"content"`
}

// Title returns the most descriptive non-empty name of the work.
func (d WorkDetail) Title() string {
	for _, s := range []string{d.FullName, d.H2Name, d.TableName} {
		if s != "" {
			return s
		}
	}
	return ""
}

// CategoryConfig names a category and the codes it claims, in display order.
type CategoryConfig struct {
	Name  string   `json:"name"`
	Codes []string `json:"codes"`
}

// RouteConfig is one variant of the site selected by route key.
type RouteConfig struct {
	CV         string           `json:"cv"`
	Categories []CategoryConfig `json:"categories"`
}

// ExperienceEntry is one line of the CV.
type ExperienceEntry struct {
	Type         string   `json:"type"`
	Organisation string   `json:"organisation"`
	Role         string   `json:"role"`
	Begin        string   `json:"begin"`
	End          string   `json:"end"`
	RelatedWorks []string `json:"relatedWorks"`
	Description  string   `json:"description"`
	ShowDefault  bool     `json:"showDefault"`
	ShowGroups   []string `json:"showGroups"`
	Tags         []string `json:"tags"`
}

// ExperienceData is the layout of experienceData.json.
type ExperienceData struct {
	TypeOrder []string          `json:"typeOrder"`
	Entries   []ExperienceEntry `json:"entries"`
}

// CodeMap maps portfolio codes to display names and remembers file order.
type CodeMap struct {
	Codes []string
	Names map[string]string
}

// Name returns the display name for code and whether it is known.
func (m CodeMap) Name(code string) (string, bool) {
	name, ok := m.Names[code]
	return name, ok
}

// Len returns the number of known codes.
func (m CodeMap) Len() int { return len(m.Codes) }

// Data is one loaded snapshot of every static data file.
type Data struct {
	Codes      CodeMap
	Routes     map[string]RouteConfig
	Details    map[string]WorkDetail
	Experience ExperienceData
	Home       string
	Assets     *Assets

	// Warnings lists data problems that were skipped rather than failing the load.
	Warnings []string
}

// RouteKeys returns the configured route keys with the default route first
// and the rest sorted.
func (d *Data) RouteKeys() []string {
	keys := make([]string, 0, len(d.Routes))
	if _, ok := d.Routes[DefaultRoute]; ok {
		keys = append(keys, DefaultRoute)
	}
	rest := make([]string, 0, len(d.Routes))
	for k := range d.Routes {
		if k != DefaultRoute {
			rest = append(rest, k)
		}
	}
	sort.Strings(rest)
	return append(keys, rest...)
}
