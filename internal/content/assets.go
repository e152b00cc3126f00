package content

import (
	"os"
	"path"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/pkg/errors"
)

const (
	imagePattern = "**/*.{png,jpg,jpeg,gif,webp,svg,PNG,JPG,JPEG,GIF,WEBP,SVG}"
	pdfPattern   = "**/*.{pdf,PDF}"
)

// Assets indexes the files available under the image and PDF directories.
// Lookups are by slash-separated path relative to the directory and fall back
// to a case-insensitive match.
type Assets struct {
	images map[string]string
	pdfs   map[string]string
}

// IndexAssets walks both directories. A directory that does not exist
// contributes nothing.
func IndexAssets(imageDir, pdfDir string) (*Assets, error) {
	images, err := indexDir(imageDir, imagePattern)
	if err != nil {
		return nil, err
	}
	pdfs, err := indexDir(pdfDir, pdfPattern)
	if err != nil {
		return nil, err
	}
	return &Assets{images: images, pdfs: pdfs}, nil
}

func indexDir(dir, pattern string) (map[string]string, error) {
	out := map[string]string{}
	if dir == "" {
		return out, nil
	}
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return out, nil
	}

	matches, err := doublestar.Glob(os.DirFS(dir), pattern)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to index assets in %s", dir)
	}
	for _, m := range matches {
		out[strings.ToLower(m)] = m
	}
	return out, nil
}

func lookup(index map[string]string, name string) (string, bool) {
	if index == nil {
		return "", false
	}
	name = strings.TrimPrefix(path.Clean("/"+strings.TrimSpace(name)), "/")
	if name == "" || name == "." {
		return "", false
	}
	found, ok := index[strings.ToLower(name)]
	return found, ok
}

// Image returns the indexed path of name, or placeholder when it is missing.
func (a *Assets) Image(name, placeholder string) string {
	if a != nil {
		if found, ok := lookup(a.images, name); ok {
			return found
		}
	}
	return placeholder
}

// PDF returns the indexed path of the named PDF.
func (a *Assets) PDF(name string) (string, bool) {
	if a == nil {
		return "", false
	}
	return lookup(a.pdfs, name)
}

// Counts returns how many images and PDFs were indexed.
func (a *Assets) Counts() (images, pdfs int) {
	if a == nil {
		return 0, 0
	}
	return len(a.images), len(a.pdfs)
}
