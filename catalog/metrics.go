// Copyright (C) 2024 Michael J. Fromberger. All Rights Reserved.

package catalog

import (
	"expvar"

	"github.com/maristie/ass-danmaku"
)

// catalogMetrics record catalog activity counters.
type catalogMetrics struct {
	parses      expvar.Int
	parseErrors expvar.Int
	accepted    expvar.Int // comments returned by successful parses
	dropped     expvar.Int // source records dropped by successful parses
	bytesIn     expvar.Int
	formats     expvar.Map // format name → parse count

	emap *expvar.Map
}

func newCatalogMetrics() *catalogMetrics {
	cm := &catalogMetrics{emap: new(expvar.Map)}
	cm.emap.Set("parses", &cm.parses)
	cm.emap.Set("parse_errors", &cm.parseErrors)
	cm.emap.Set("comments_accepted", &cm.accepted)
	cm.emap.Set("comments_dropped", &cm.dropped)
	cm.emap.Set("bytes_in", &cm.bytesIn)
	cm.emap.Set("formats", &cm.formats)
	return cm
}

func (cm *catalogMetrics) record(format string, size int, res *danmaku.Result, err error) {
	cm.parses.Add(1)
	cm.bytesIn.Add(int64(size))
	cm.formats.Add(format, 1)
	if err != nil {
		cm.parseErrors.Add(1)
		return
	}
	cm.accepted.Add(int64(res.Len()))
	cm.dropped.Add(int64(res.Dropped))
}
