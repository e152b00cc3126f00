package content

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
)

// File names inside the data directory.
const (
	CodeMapFile    = "portfolioMap.json"
	RoutesFile     = "routeConfig.json"
	DetailsFile    = "allWorkData.json"
	ExperienceFile = "experienceData.json"
	HomeFile       = "home.md"
)

// Paths locates the data directory and the static asset directories.
type Paths struct {
	DataDir  string
	ImageDir string
	PDFDir   string
}

// Load reads every data file under p. Missing files yield empty data and a
// malformed route configuration is reported in Data.Warnings; any other
// malformed file is an error.
func Load(p Paths) (*Data, error) {
	data := &Data{
		Routes:  map[string]RouteConfig{},
		Details: map[string]WorkDetail{},
		Codes:   CodeMap{Names: map[string]string{}},
	}

	raw, err := readOptional(filepath.Join(p.DataDir, CodeMapFile))
	if err != nil {
		return nil, err
	}
	if raw != nil {
		data.Codes, err = parseCodeMap(raw)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to parse %s", CodeMapFile)
		}
	}

	raw, err = readOptional(filepath.Join(p.DataDir, RoutesFile))
	if err != nil {
		return nil, err
	}
	if raw != nil {
		data.Warnings = append(data.Warnings, parseRoutes(raw, data.Routes)...)
	}

	var details map[string]WorkDetail
	if err := loadJSON(filepath.Join(p.DataDir, DetailsFile), &details); err != nil {
		return nil, err
	}
	for code, d := range details {
		data.Details[strings.ToLower(code)] = d
	}

	if err := loadJSON(filepath.Join(p.DataDir, ExperienceFile), &data.Experience); err != nil {
		return nil, err
	}

	home, err := readOptional(filepath.Join(p.DataDir, HomeFile))
	if err != nil {
		return nil, err
	}
	data.Home = string(home)

	data.Assets, err = IndexAssets(p.ImageDir, p.PDFDir)
	if err != nil {
		return nil, err
	}

	return data, nil
}

func readOptional(path string) ([]byte, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errors.Wrapf(err, "failed to read %s", path)
	}
	return raw, nil
}

func loadJSON(path string, v any) error {
	raw, err := readOptional(path)
	if err != nil || raw == nil {
		return err
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return errors.Wrapf(err, "failed to parse %s", path)
	}
	return nil
}

// parseRoutes decodes the route configuration into routes. A malformed file
// or entry is skipped and reported, so the affected keys fall back to the
// default route instead of failing the load. Keys are matched without case;
// the first spelling in the file wins.
func parseRoutes(raw []byte, routes map[string]RouteConfig) []string {
	var entries map[string]json.RawMessage
	if err := json.Unmarshal(raw, &entries); err != nil {
		return []string{errors.Wrapf(err, "%s ignored", RoutesFile).Error()}
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	if _, err := dec.Token(); err != nil {
		return []string{errors.Wrapf(err, "%s ignored", RoutesFile).Error()}
	}

	var warnings []string
	seen := map[string]string{}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return append(warnings, errors.Wrapf(err, "%s truncated", RoutesFile).Error())
		}
		key, _ := tok.(string)

		var entry json.RawMessage
		if err := dec.Decode(&entry); err != nil {
			return append(warnings, errors.Wrapf(err, "%s truncated", RoutesFile).Error())
		}

		norm := strings.ToLower(strings.TrimSpace(key))
		if first, dup := seen[norm]; dup {
			warnings = append(warnings, errors.Errorf("%s: route %q ignored, duplicate of %q", RoutesFile, key, first).Error())
			continue
		}
		seen[norm] = key

		var cfg RouteConfig
		if err := json.Unmarshal(entry, &cfg); err != nil {
			warnings = append(warnings, errors.Wrapf(err, "%s: route %q ignored", RoutesFile, key).Error())
			continue
		}
		routes[norm] = cfg
	}
	return warnings
}

// parseCodeMap decodes a flat JSON object of code to name, keeping key order.
// Codes are lowercased; the first occurrence of a code wins.
func parseCodeMap(raw []byte) (CodeMap, error) {
	m := CodeMap{Names: map[string]string{}}
	dec := json.NewDecoder(bytes.NewReader(raw))

	tok, err := dec.Token()
	if err != nil {
		return m, err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return m, errors.New("expected a JSON object")
	}

	for dec.More() {
		tok, err = dec.Token()
		if err != nil {
			return m, err
		}
		key, _ := tok.(string)

		var name string
		if err := dec.Decode(&name); err != nil {
			return m, errors.Wrapf(err, "code %q", key)
		}

		code := strings.ToLower(strings.TrimSpace(key))
		if code == "" {
			continue
		}
		if _, dup := m.Names[code]; dup {
			continue
		}
		m.Codes = append(m.Codes, code)
		m.Names[code] = name
	}

	return m, nil
}
