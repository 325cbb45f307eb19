// Copyright (C) 2024 Michael J. Fromberger. All Rights Reserved.

// Package danmaku defines a uniform model for danmaku, the scrolling and
// fixed on-screen comments attached to a video playback timeline, together
// with the shared decoders used to normalize them from platform-specific
// wire formats.
//
// # Comments
//
// The core type defined by this package is the [Comment]. Each comment has a
// display text, a playback time in seconds, a display [Mode], a font size,
// and a [Color]. Parsers for individual platforms construct candidate
// comments and pass them through [Collect], which keeps only those that
// satisfy [Comment.Valid]:
//
//	res := danmaku.Collect(func(yield func(danmaku.Comment) bool) {
//	   for _, rec := range records {
//	      if !yield(convert(rec)) {
//	         return
//	      }
//	   }
//	})
//
// Records that fail validation are not errors; they are counted in
// [Result.Dropped] and otherwise ignored.
//
// # Platforms
//
// Parsers for specific platforms live in subpackages:
//
//   - bilibili: XML attribute lists and the binary protobuf segment format.
//   - acfun: the nested-array v4 format and the two object stream formats.
//   - niconico: wrapped chat objects with keyword "mail" commands.
//   - bahamut: JSON arrays with hex colors and enumerated positions.
//
// The catalog package maps format names to parsers for callers that select
// a format at runtime. The body package undoes the content encoding of a
// captured response, and the store package keeps parsed lists in a SQLite
// database.
//
// # Colors
//
// Three color decoders are shared among the platforms: [ParsePackedColor]
// for decimal integers, [ParseHexColor] for hex strings, and
// [ParseKeywordColor] for free-text keyword commands.
package danmaku
