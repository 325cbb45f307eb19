// Copyright (C) 2024 Michael J. Fromberger. All Rights Reserved.

// Package catalog defines a mapping from mnemonic format names to danmaku
// parsers, for callers that choose a format at runtime.
//
// # Usage
//
// The default catalog knows every format supported by this module:
//
//	cat := catalog.Default()
//	res, err := cat.Parse("niconico", body)
//
// To build a catalog by hand, construct an empty one and register parsers.
// Parsers for text formats are adapted with [Text], and parsers for binary
// formats with [Binary]:
//
//	cat := catalog.New().
//	   Set("bahamut", catalog.Text(bahamut.Parse)).
//	   Set("bilibili", catalog.Binary(bilibili.ParseProto))
//
// Each catalog keeps counters of its activity, reported by [Catalog.Metrics],
// and can report each parse to a callback registered with
// [Catalog.LogParses].
package catalog

import (
	"errors"
	"expvar"
	"fmt"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/creachadair/mds/mapset"
	"github.com/maristie/ass-danmaku"
	"github.com/maristie/ass-danmaku/acfun"
	"github.com/maristie/ass-danmaku/bahamut"
	"github.com/maristie/ass-danmaku/bilibili"
	"github.com/maristie/ass-danmaku/niconico"
)

// ErrUnknownFormat is reported by Parse for a format name that is not
// registered in the catalog.
var ErrUnknownFormat = errors.New("unknown format")

// A Parser decodes one complete response body.
type Parser func(data []byte) (*danmaku.Result, error)

// Text adapts a parser for a text format to a [Parser]. The input is
// converted to a string without validation; invalid UTF-8 is left to the
// parser.
func Text(f func(string) (*danmaku.Result, error)) Parser {
	return func(data []byte) (*danmaku.Result, error) { return f(string(data)) }
}

// Binary adapts a parser for a binary format to a [Parser].
func Binary(f func([]byte) (*danmaku.Result, error)) Parser { return Parser(f) }

// Names of the formats registered by [Default].
const (
	BilibiliXML   = "bilibili-xml"
	BilibiliProto = "bilibili"
	AcfunV4       = "acfun-v4"
	AcfunPoll     = "acfun-poll"
	AcfunList     = "acfun"
	Niconico      = "niconico"
	Bahamut       = "bahamut"
)

// A ParseLogger logs a parse performed by a catalog.
type ParseLogger func(ParseInfo)

// A ParseInfo describes a single call to [Catalog.Parse].
type ParseInfo struct {
	Format  string          // the requested format name
	Size    int             // the length of the input in bytes
	Result  *danmaku.Result // the result, nil if Err != nil
	Err     error           // the error reported by the parser, if any
	Elapsed time.Duration   // wall-clock time spent parsing
}

func (p ParseInfo) String() string {
	if p.Err != nil {
		return fmt.Sprintf("parse %s [%d bytes] failed: %v", p.Format, p.Size, p.Err)
	}
	return fmt.Sprintf("parse %s [%d bytes] accepted=%d dropped=%d id=%q (%v)",
		p.Format, p.Size, p.Result.Len(), p.Result.Dropped, p.Result.ID, p.Elapsed)
}

// A Catalog maps format names to parsers. A zero Catalog is not ready for
// use; call [New] or [Default] to construct one. All the methods of a
// Catalog are safe for concurrent use by multiple goroutines.
type Catalog struct {
	μ       sync.RWMutex
	parsers map[string]Parser
	plog    ParseLogger

	metrics *catalogMetrics
}

// New creates a new empty catalog.
func New() *Catalog {
	return &Catalog{parsers: make(map[string]Parser), metrics: newCatalogMetrics()}
}

// Default creates a new catalog with all the supported formats registered
// under their standard names.
func Default() *Catalog {
	return New().
		Set(BilibiliXML, Text(bilibili.ParseXML)).
		Set(BilibiliProto, Binary(bilibili.ParseProto)).
		Set(AcfunV4, Text(acfun.ParseV4)).
		Set(AcfunPoll, Text(acfun.ParsePoll)).
		Set(AcfunList, Text(acfun.ParseList)).
		Set(Niconico, Text(niconico.Parse)).
		Set(Bahamut, Text(bahamut.Parse))
}

// Set registers p under the given name, replacing any existing parser with
// that name, and returns c to allow chaining. If p == nil, any parser
// registered for name is removed.
func (c *Catalog) Set(name string, p Parser) *Catalog {
	c.μ.Lock()
	defer c.μ.Unlock()
	if p == nil {
		delete(c.parsers, name)
	} else {
		c.parsers[name] = p
	}
	return c
}

// Lookup returns the parser registered for name, or nil.
func (c *Catalog) Lookup(name string) Parser {
	c.μ.RLock()
	defer c.μ.RUnlock()
	return c.parsers[name]
}

// Has reports whether all the specified names are registered in c.
func (c *Catalog) Has(names ...string) bool {
	c.μ.RLock()
	defer c.μ.RUnlock()
	return mapset.Keys(c.parsers).HasAll(names...)
}

// Names returns the registered format names in lexicographic order.
func (c *Catalog) Names() []string {
	c.μ.RLock()
	defer c.μ.RUnlock()
	return slices.Sorted(maps.Keys(c.parsers))
}

// LogParses registers a callback that will be invoked after each call to
// Parse, including calls that fail. Passing a nil callback disables logging.
// The logger is invoked synchronously before Parse returns.
func (c *Catalog) LogParses(log ParseLogger) *Catalog {
	c.μ.Lock()
	defer c.μ.Unlock()
	c.plog = log
	return c
}

// Metrics returns a metrics map for the catalog. It is safe for the caller to
// add additional metrics to the map while the catalog is in use.
func (c *Catalog) Metrics() *expvar.Map { return c.metrics.emap }

// Parse parses data with the parser registered for format. If no parser is
// registered under that name, Parse reports [ErrUnknownFormat].
func (c *Catalog) Parse(format string, data []byte) (*danmaku.Result, error) {
	c.μ.RLock()
	p, plog := c.parsers[format], c.plog
	c.μ.RUnlock()

	var res *danmaku.Result
	var err error
	start := time.Now()
	if p == nil {
		err = fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	} else {
		res, err = p(data)
	}
	elapsed := time.Since(start)

	c.metrics.record(format, len(data), res, err)
	if plog != nil {
		plog(ParseInfo{Format: format, Size: len(data), Result: res, Err: err, Elapsed: elapsed})
	}
	if err != nil {
		return nil, err
	}
	return res, nil
}
