package video

import (
	"context"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Catalog is an offline source backed by a YAML file, useful when no
// network backend is reachable or for curated keyword lists.
//
//	videos:
//	  - keyword: mern stack
//	    title: MERN in 100 minutes
//	    link: https://www.youtube.com/watch?v=abc
//	    channel: Example
//	    duration: 6000
//	    upload_date: "20250101"
type Catalog struct {
	Path string
}

type catalogFile struct {
	Videos []catalogEntry `yaml:"videos"`
}

type catalogEntry struct {
	Candidate  `yaml:",inline"`
	UploadDate string `yaml:"upload_date"`
}

// Name implements Source.
func (c *Catalog) Name() string { return "catalog" }

// Available implements Source.
func (c *Catalog) Available(ctx context.Context) error {
	if c.Path == "" {
		return fmt.Errorf("%w: no catalog file configured", ErrSourceUnavailable)
	}
	if _, err := os.Stat(c.Path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%w: catalog %s does not exist", ErrSourceUnavailable, c.Path)
		}
		return fmt.Errorf("%w: %w", ErrSourceUnavailable, err)
	}
	return nil
}

// Search implements Source. The file is re-read on every call so edits are
// picked up without a restart.
func (c *Catalog) Search(ctx context.Context, keyword string, limit int) ([]Candidate, error) {
	data, err := os.ReadFile(c.Path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}

	var f catalogFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse catalog %s: %w", c.Path, err)
	}

	want := NormalizeKeyword(keyword)
	var out []Candidate
	for i, e := range f.Videos {
		if limit > 0 && len(out) >= limit {
			break
		}
		if NormalizeKeyword(e.Keyword) != want {
			continue
		}
		if e.Link == "" {
			return nil, fmt.Errorf("catalog %s: video %d has no link", c.Path, i)
		}
		cand := e.Candidate
		cand.Keyword = keyword
		cand.UploadDate, err = ParseDate(e.UploadDate)
		if err != nil {
			return nil, fmt.Errorf("catalog %s: video %d: bad upload_date: %w", c.Path, i, err)
		}
		if cand.Title == "" {
			cand.Title = "No Title"
		}
		if cand.Channel == "" {
			cand.Channel = "Unknown"
		}
		out = append(out, cand)
	}
	return out, nil
}
