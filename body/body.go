// Copyright (C) 2024 Michael J. Fromberger. All Rights Reserved.

// Package body decodes HTTP response bodies according to their content
// encoding, so that captured responses can be handed to a danmaku parser.
package body

import (
	"bytes"
	"compress/flate"
	"compress/gzip"
	"compress/zlib"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/andybalholm/brotli"
)

// MaxSize is the largest decoded body Decode will produce.
const MaxSize = 64 << 20

var (
	// ErrUnknownEncoding is reported for an unsupported content encoding.
	ErrUnknownEncoding = errors.New("unknown content encoding")

	// ErrTooLarge is reported when a decoded body exceeds MaxSize.
	ErrTooLarge = errors.New("decoded body too large")
)

// Auto is a pseudo-encoding that selects gzip or zlib if data begins with
// the corresponding header, and otherwise leaves data unchanged.
const Auto = "auto"

// Encodings lists the encoding names understood by Decode, other than
// [Auto] and the empty string.
var Encodings = []string{"identity", "br", "gzip", "x-gzip", "deflate", "zlib"}

// Decode decodes data according to enc, which has the form of a
// Content-Encoding header value. When several encodings are listed they are
// undone in reverse order. An empty enc or "identity" returns data as-is.
//
// The "deflate" encoding accepts both zlib-wrapped and raw deflate streams,
// since servers send either.
func Decode(enc string, data []byte) ([]byte, error) {
	codings := strings.Split(enc, ",")
	for i := len(codings) - 1; i >= 0; i-- {
		var err error
		data, err = decodeOne(strings.ToLower(strings.TrimSpace(codings[i])), data)
		if err != nil {
			return nil, err
		}
	}
	return data, nil
}

func decodeOne(coding string, data []byte) ([]byte, error) {
	switch coding {
	case "", "identity":
		return data, nil
	case Auto:
		return decodeOne(Sniff(data), data)
	case "br":
		return readAll(coding, brotli.NewReader(bytes.NewReader(data)))
	case "gzip", "x-gzip":
		r, err := gzip.NewReader(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("%s: %w", coding, err)
		}
		defer r.Close()
		return readAll(coding, r)
	case "zlib":
		r, err := zlib.NewReader(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("%s: %w", coding, err)
		}
		defer r.Close()
		return readAll(coding, r)
	case "deflate":
		if isZlib(data) {
			return decodeOne("zlib", data)
		}
		r := flate.NewReader(bytes.NewReader(data))
		defer r.Close()
		return readAll(coding, r)
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownEncoding, coding)
}

// Sniff reports the encoding of data as recognized by its header: "gzip",
// "zlib", or "identity" if neither header is present. Brotli streams have no
// header and are not recognized.
func Sniff(data []byte) string {
	switch {
	case len(data) >= 2 && data[0] == 0x1f && data[1] == 0x8b:
		return "gzip"
	case isZlib(data):
		return "zlib"
	}
	return "identity"
}

// isZlib reports whether data begins with a zlib header using the deflate
// method, whose check bits make the first two bytes a multiple of 31.
func isZlib(data []byte) bool {
	return len(data) >= 2 && data[0]&0x0f == 8 && data[0]>>4 <= 7 &&
		(uint16(data[0])<<8|uint16(data[1]))%31 == 0
}

func readAll(coding string, r io.Reader) ([]byte, error) {
	out, err := io.ReadAll(io.LimitReader(r, MaxSize+1))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", coding, err)
	} else if len(out) > MaxSize {
		return nil, fmt.Errorf("%s: %w", coding, ErrTooLarge)
	}
	return out, nil
}
