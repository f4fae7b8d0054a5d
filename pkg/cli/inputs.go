package cli

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/getmockd/reqdiff/pkg/cli/internal/parse"
	"github.com/getmockd/reqdiff/pkg/config"
	"github.com/getmockd/reqdiff/pkg/requestlog"
	"github.com/getmockd/reqdiff/pkg/stub"
)

// stubInputs selects the stub definition files.
type stubInputs struct {
	patterns []string
}

func (s *stubInputs) register(cmd *cobra.Command) {
	cmd.Flags().StringArrayVarP(&s.patterns, "stubs", "s", nil,
		"Stub files, directories or glob patterns (repeatable, comma-separated)")
	_ = cmd.MarkFlagRequired("stubs")
}

// globPatterns returns the glob patterns the flags select. A directory stands
// for all JSON and YAML files below it.
func (s *stubInputs) globPatterns() []string {
	var patterns []string
	for _, p := range s.patterns {
		for _, part := range parse.SplitTrim(p, ",") {
			if info, err := os.Stat(part); err == nil && info.IsDir() {
				part = filepath.Join(part, "**", "*.{json,yaml,yml}")
			}
			patterns = append(patterns, part)
		}
	}
	return patterns
}

// load loads every selected stub into one collection.
func (s *stubInputs) load(logger *slog.Logger) (*stub.Collection, error) {
	return stub.Load(s.globPatterns(), logger)
}

// find loads the stubs and returns the one with the given ID.
func (s *stubInputs) find(id string, logger *slog.Logger) (*stub.Stub, error) {
	c, err := s.load(logger)
	if err != nil {
		return nil, err
	}
	st := c.Get(id)
	if st == nil {
		return nil, fmt.Errorf("%w: %s", ErrStubNotFound, id)
	}
	return st, nil
}

// requestInputs selects the requests to examine: capture files, a request
// described with flags, or both.
type requestInputs struct {
	files []string
	limit int

	method   string
	url      string
	headers  []string
	cookies  []string
	body     string
	bodyFile string
}

func (r *requestInputs) register(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringArrayVarP(&r.files, "requests", "r", nil, "Capture files or glob patterns (JSON or YAML, repeatable)")
	f.IntVar(&r.limit, "max-requests", requestlog.DefaultCapacity, "Keep at most this many captured requests, newest win")
	f.StringVarP(&r.method, "method", "X", "GET", "Method of a request given by flags")
	f.StringVarP(&r.url, "url", "u", "", "URL (path and query) of a request given by flags")
	f.StringArrayVarP(&r.headers, "header", "H", nil, `Header of a request given by flags ("Name: value", repeatable)`)
	f.StringArrayVar(&r.cookies, "cookie", nil, "Cookie of a request given by flags (name=value, repeatable)")
	f.StringVarP(&r.body, "body", "d", "", "Body of a request given by flags")
	f.StringVar(&r.bodyFile, "body-file", "", "Read the body of a request given by flags from a file")
	cmd.MarkFlagsMutuallyExclusive("body", "body-file")
}

// fromFlags reports whether a request is described with flags.
func (r *requestInputs) fromFlags() bool { return r.url != "" }

// flagEntry builds the journal entry described by the request flags.
func (r *requestInputs) flagEntry() (*requestlog.Entry, error) {
	headers, err := parse.Headers(r.headers)
	if err != nil {
		return nil, err
	}
	cookies, err := parse.Cookies(r.cookies)
	if err != nil {
		return nil, err
	}
	body := r.body
	if r.bodyFile != "" {
		data, err := os.ReadFile(r.bodyFile)
		if err != nil {
			return nil, fmt.Errorf("reading body file: %w", err)
		}
		body = string(data)
	}
	return &requestlog.Entry{
		ID:       "flags",
		Method:   r.method,
		URL:      r.url,
		Headers:  headers,
		Cookies:  cookies,
		Body:     body,
		BodySize: len(body),
	}, nil
}

// store loads the selected requests into a journal.
func (r *requestInputs) store(logger *slog.Logger) (*requestlog.MemoryStore, error) {
	if len(r.files) == 0 && !r.fromFlags() {
		return nil, ErrNoRequests
	}

	store := requestlog.NewMemoryStore(r.limit)
	if len(r.files) > 0 {
		paths, err := config.ExpandGlobs(r.files)
		if err != nil {
			return nil, err
		}
		n, err := requestlog.LoadInto(store, paths...)
		if err != nil {
			return nil, err
		}
		if n > store.Count() {
			logger.Warn("capture files exceed --max-requests, oldest requests dropped",
				"loaded", n, "kept", store.Count())
		}
		logger.Debug("captures loaded", "files", len(paths), "requests", n)
	}
	if r.fromFlags() {
		e, err := r.flagEntry()
		if err != nil {
			return nil, err
		}
		store.Log(e)
	}
	return store, nil
}

// entries returns the selected requests, oldest first.
func (r *requestInputs) entries(logger *slog.Logger) ([]*requestlog.Entry, error) {
	store, err := r.store(logger)
	if err != nil {
		return nil, err
	}
	list := store.List(nil)
	for i, j := 0, len(list)-1; i < j; i, j = i+1, j-1 {
		list[i], list[j] = list[j], list[i]
	}
	return list, nil
}
