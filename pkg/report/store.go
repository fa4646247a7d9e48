package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/golang/glog"
	"github.com/hashicorp/go-multierror"
	"github.com/ulikunitz/xz"
)

const (
	suffix     = ".json.xz"
	nameLayout = "20060102T150405.000000000Z"
)

// Store keeps reports as xz compressed JSON files in a directory.
type Store struct {
	Dir string
}

func (s *Store) pathFor(r *Report) string {
	return filepath.Join(s.Dir, r.Started.UTC().Format(nameLayout)+suffix)
}

// Save writes r and returns the path it was written to.
func (s *Store) Save(r *Report) (string, error) {
	fspath := s.pathFor(r)
	if err := os.MkdirAll(filepath.Dir(fspath), 0755); err != nil {
		return "", fmt.Errorf("could not create report directory: %w", err)
	}
	f, err := os.Create(fspath)
	if err != nil {
		return "", fmt.Errorf("could not create report: %w", err)
	}
	defer f.Close()

	w, err := xz.NewWriter(f)
	if err != nil {
		return "", fmt.Errorf("could not create compressor: %w", err)
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(r); err != nil {
		return "", fmt.Errorf("could not encode report: %w", err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("could not compress report: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("could not write report: %w", err)
	}
	glog.Infof("Saved report to %s", fspath)
	return fspath, nil
}

// Load reads a single saved report.
func Load(fspath string) (*Report, error) {
	f, err := os.Open(fspath)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	rd, err := xz.NewReader(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", fspath, err)
	}
	var r Report
	if err := json.NewDecoder(rd).Decode(&r); err != nil {
		return nil, fmt.Errorf("%s: %w", fspath, err)
	}
	return &r, nil
}

// List returns up to n saved reports, newest first. n <= 0 means all of
// them. Unreadable files are skipped and reported in the returned error
// alongside the reports that could be read.
func (s *Store) List(n int) ([]*Report, error) {
	ents, err := os.ReadDir(s.Dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var names []string
	for _, ent := range ents {
		if ent.IsDir() || !strings.HasSuffix(ent.Name(), suffix) {
			continue
		}
		if _, err := time.Parse(nameLayout, strings.TrimSuffix(ent.Name(), suffix)); err != nil {
			glog.V(1).Infof("Ignoring %s", ent.Name())
			continue
		}
		names = append(names, ent.Name())
	}
	// The timestamp layout sorts lexically.
	sort.Sort(sort.Reverse(sort.StringSlice(names)))
	if n > 0 && len(names) > n {
		names = names[:n]
	}

	var res []*Report
	var errs error
	for _, name := range names {
		r, err := Load(filepath.Join(s.Dir, name))
		if err != nil {
			errs = multierror.Append(errs, err)
			continue
		}
		res = append(res, r)
	}
	return res, errs
}
