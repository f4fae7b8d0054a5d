package stub

import (
	"errors"
	"fmt"
	"log/slog"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/getmockd/reqdiff/pkg/config"
	"github.com/getmockd/reqdiff/pkg/logging"
)

// ErrDuplicateID is returned when two stubs share an ID.
var ErrDuplicateID = errors.New("duplicate stub ID")

// Parse decodes and builds the stubs in data. The document holds one
// definition or an array of them.
func Parse(data []byte, format config.Format) ([]*Stub, error) {
	defs, err := config.DecodeList[Definition](data, format)
	if err != nil {
		return nil, err
	}
	return build(defs, "")
}

// LoadFile reads and builds the stubs in one file.
func LoadFile(path string) ([]*Stub, error) {
	defs, err := config.LoadList[Definition](path)
	if err != nil {
		return nil, err
	}
	return build(defs, path)
}

func build(defs []Definition, source string) ([]*Stub, error) {
	stubs := make([]*Stub, 0, len(defs))
	var errs []error
	for i, def := range defs {
		s, err := New(def)
		if err != nil {
			if source != "" {
				err = fmt.Errorf("%s: stubs[%d]: %w", source, i, err)
			} else {
				err = fmt.Errorf("stubs[%d]: %w", i, err)
			}
			errs = append(errs, err)
			continue
		}
		s.Source = source
		stubs = append(stubs, s)
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return stubs, nil
}

// Load expands the glob patterns and loads every matching file into one
// collection. Files are parsed concurrently but keep their sorted order per
// pattern; stub IDs must be unique across all of them.
func Load(patterns []string, logger *slog.Logger) (*Collection, error) {
	logger = logging.OrNop(logger)

	paths, err := config.ExpandGlobs(patterns)
	if err != nil {
		return nil, err
	}
	if len(paths) == 0 {
		logger.Warn("no stub files matched", "patterns", patterns)
	}

	perFile := make([][]*Stub, len(paths))
	var g errgroup.Group
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			stubs, err := LoadFile(path)
			if err != nil {
				return err
			}
			perFile[i] = stubs
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var all []*Stub
	seen := make(map[string]string)
	for i, stubs := range perFile {
		path := paths[i]
		for _, s := range stubs {
			if prev, dup := seen[s.ID]; dup {
				return nil, fmt.Errorf("%w: %q in %s and %s", ErrDuplicateID, s.ID, prev, path)
			}
			seen[s.ID] = path
			if !s.Enabled {
				logger.Info("stub disabled", "stub", s.ID, "file", path)
			}
		}
		logger.Debug("stub file loaded", "file", path, "stubs", len(stubs))
		all = append(all, stubs...)
	}

	logger.Info("stubs loaded", "files", len(paths), "stubs", len(all))
	return NewCollection(all, logger), nil
}
