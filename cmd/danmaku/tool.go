// Copyright (C) 2024 Michael J. Fromberger. All Rights Reserved.

package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/creachadair/taskgroup"
	"github.com/hashicorp/go-multierror"
	"github.com/maristie/ass-danmaku"
	"github.com/maristie/ass-danmaku/bahamut"
	"github.com/maristie/ass-danmaku/body"
	"github.com/maristie/ass-danmaku/catalog"
	"github.com/maristie/ass-danmaku/store"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

// A tool carries the state shared by the subcommands.
type tool struct {
	cfg    Config
	cat    *catalog.Catalog
	log    zerolog.Logger
	stdin  io.Reader
	stdout io.Writer
}

func newTool(cfg Config, log zerolog.Logger, stdin io.Reader, stdout io.Writer) *tool {
	t := &tool{cfg: cfg, cat: catalog.Default(), log: log, stdin: stdin, stdout: stdout}
	t.cat.LogParses(t.logParse)
	return t
}

// newLogger returns a console logger writing to w. Debug events are
// enabled if verbose is true.
func newLogger(w io.Writer, verbose bool) zerolog.Logger {
	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	out := zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	return zerolog.New(out).Level(level).With().Timestamp().Logger()
}

func (t *tool) logParse(pi catalog.ParseInfo) {
	if pi.Err != nil {
		t.log.Warn().Err(pi.Err).
			Str("format", pi.Format).
			Int("size", pi.Size).
			Dur("elapsed", pi.Elapsed).
			Msg("parse failed")
		return
	}
	t.log.Debug().
		Str("format", pi.Format).
		Int("size", pi.Size).
		Str("id", pi.Result.ID).
		Int("accepted", pi.Result.Len()).
		Int("dropped", pi.Result.Dropped).
		Dur("elapsed", pi.Elapsed).
		Msg("parsed")
}

// A parsed value is the outcome of parsing one input.
type parsed struct {
	Input          string `json:"input" yaml:"input"`
	Format         string `json:"format" yaml:"format"`
	danmaku.Result `yaml:",inline"`
}

// listOptions are the parse flags that name a stored list.
type listOptions struct {
	Name string // display name
	URL  string // source URL
	SN   string // bahamut video serial number
}

// readInput reads the named input, with "-" denoting standard input.
func (t *tool) readInput(name string) ([]byte, error) {
	if name == "-" {
		return io.ReadAll(t.stdin)
	}
	return os.ReadFile(name)
}

// parseOne reads, decodes, and parses the named input.
func (t *tool) parseOne(name string) (parsed, error) {
	raw, err := t.readInput(name)
	if err != nil {
		return parsed{}, err
	}
	data, err := body.Decode(t.cfg.Encoding, raw)
	if err != nil {
		return parsed{}, fmt.Errorf("%s: %w", name, err)
	}
	format := t.cfg.Format
	if format == Auto {
		format = catalog.Detect(data)
		if format == "" {
			return parsed{}, fmt.Errorf("%s: %w: input format not recognized", name, catalog.ErrUnknownFormat)
		}
		t.log.Debug().Str("input", name).Str("format", format).Msg("detected format")
	}
	res, err := t.cat.Parse(format, data)
	if err != nil {
		return parsed{}, fmt.Errorf("%s: %w", name, err)
	}
	return parsed{Input: name, Format: format, Result: *res}, nil
}

// parseAll parses the named inputs concurrently, with at most cfg.Workers
// inputs in flight. The results are reported in input order; an input that
// failed has a zero entry, and its error is included in the combined error.
func (t *tool) parseAll(names []string) ([]parsed, error) {
	out := make([]parsed, len(names))
	errs := make([]error, len(names))
	sem := make(chan struct{}, max(t.cfg.Workers, 1))

	g := taskgroup.New(nil)
	for i, name := range names {
		g.Go(func() error {
			sem <- struct{}{}
			defer func() { <-sem }()
			out[i], errs[i] = t.parseOne(name)
			return nil
		})
	}
	g.Wait()

	var err error
	for _, e := range errs {
		if e != nil {
			err = multierror.Append(err, e)
		}
	}
	return out, err
}

// listFor constructs the stored list for p.
func listFor(p parsed, opts listOptions) *store.List {
	lst := &store.List{
		Name:     opts.Name,
		URL:      opts.URL,
		Format:   p.Format,
		SourceID: p.ID,
		Comments: p.Comments,
	}
	switch {
	case p.Format == catalog.Bahamut && opts.SN != "":
		lst.ID = bahamut.ListID(opts.SN)
		lst.Name = bahamut.ListName(opts.SN, bahamut.TrimTitle(opts.Name))
	case p.ID != "":
		lst.ID = p.Format + "-" + p.ID
	case p.Input == "-":
		lst.ID = p.Format + "-stdin"
	default:
		base := filepath.Base(p.Input)
		lst.ID = strings.TrimSuffix(base, filepath.Ext(base))
	}
	if lst.Name == "" {
		lst.Name = lst.ID
	}
	return lst
}

// saveAll stores each successfully parsed result in the database at path.
func (t *tool) saveAll(ctx context.Context, path string, ps []parsed, opts listOptions) error {
	s, err := store.Open(ctx, path)
	if err != nil {
		return err
	}
	defer s.Close()

	var errs error
	for _, p := range ps {
		if p.Input == "" {
			continue // this input failed to parse
		}
		lst := listFor(p, opts)
		if err := s.Put(ctx, lst); err != nil {
			errs = multierror.Append(errs, fmt.Errorf("store %q: %w", lst.ID, err))
			continue
		}
		t.log.Info().Str("id", lst.ID).Int("comments", len(lst.Comments)).Msg("stored list")
	}
	return errs
}

// runParse implements the "parse" subcommand.
func (t *tool) runParse(ctx context.Context, names []string, opts listOptions) error {
	if len(names) == 0 {
		return errors.New("no inputs")
	}
	ps, perr := t.parseAll(names)

	var ok []parsed
	for _, p := range ps {
		if p.Input != "" {
			ok = append(ok, p)
		}
	}
	var values []any
	for _, p := range ok {
		values = append(values, p)
	}
	if err := t.write(values...); err != nil {
		return err
	}
	if t.cfg.Database != "" {
		if err := t.saveAll(ctx, t.cfg.Database, ok, opts); err != nil {
			perr = multierror.Append(perr, err)
		}
	}
	return perr
}

// runList implements the "list" subcommand.
func (t *tool) runList(ctx context.Context) error {
	s, err := t.openStore(ctx)
	if err != nil {
		return err
	}
	defer s.Close()
	sums, err := s.Lists(ctx)
	if err != nil {
		return err
	}
	values := make([]any, len(sums))
	for i, sum := range sums {
		values[i] = sum
	}
	return t.write(values...)
}

// runShow implements the "show" subcommand.
func (t *tool) runShow(ctx context.Context, ids []string) error {
	s, err := t.openStore(ctx)
	if err != nil {
		return err
	}
	defer s.Close()

	var values []any
	var errs error
	for _, id := range ids {
		lst, err := s.Get(ctx, id)
		if err != nil {
			errs = multierror.Append(errs, err)
			continue
		}
		values = append(values, lst)
	}
	if err := t.write(values...); err != nil {
		return err
	}
	return errs
}

func (t *tool) openStore(ctx context.Context) (*store.Store, error) {
	if t.cfg.Database == "" {
		return nil, errors.New("no database path (use --db or set database in the config)")
	}
	return store.Open(ctx, t.cfg.Database)
}

// write encodes the values to t.stdout in the configured output format. The
// json output is a single array, ndjson writes one value per line, and yaml
// writes one document per value.
func (t *tool) write(values ...any) error {
	w := bufio.NewWriter(t.stdout)
	switch t.cfg.Output {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if values == nil {
			values = []any{}
		}
		if err := enc.Encode(values); err != nil {
			return err
		}
	case "ndjson":
		enc := json.NewEncoder(w)
		for _, v := range values {
			if err := enc.Encode(v); err != nil {
				return err
			}
		}
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		for _, v := range values {
			if err := enc.Encode(v); err != nil {
				return err
			}
		}
		if err := enc.Close(); err != nil {
			return err
		}
	default:
		return fmt.Errorf("unknown output %q", t.cfg.Output)
	}
	return w.Flush()
}
