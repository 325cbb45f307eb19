// Copyright (C) 2024 Michael J. Fromberger. All Rights Reserved.

package catalog

import (
	"bytes"
	"encoding/json"
)

// Detect guesses which of the formats registered by [Default] produced data,
// from the shape of its top-level value. Empty or binary input is taken to
// be the bilibili protobuf format. A JSON array with no element that marks
// a particular format, such as an empty array, is reported as [Bahamut],
// whose parser accepts it. For any other text Detect returns "", which
// [Catalog.Parse] reports as [ErrUnknownFormat]. Detect does not check that
// data is well-formed beyond what it needs to choose.
func Detect(data []byte) string {
	if len(data) == 0 || !looksLikeText(data) {
		return BilibiliProto
	}
	trim := bytes.TrimSpace(bytes.TrimPrefix(data, []byte("\ufeff")))
	if len(trim) == 0 {
		return ""
	}
	switch trim[0] {
	case '<':
		return BilibiliXML
	case '{':
		var doc map[string]json.RawMessage
		if json.Unmarshal(trim, &doc) == nil {
			if _, ok := doc["added"]; ok {
				return AcfunPoll
			}
			if _, ok := doc["danmakus"]; ok {
				return AcfunList
			}
		}
	case '[':
		var elts []json.RawMessage
		if json.Unmarshal(trim, &elts) != nil {
			break
		}
		for _, elt := range elts {
			switch firstByte(elt) {
			case '[':
				return AcfunV4
			case '{':
				var keys map[string]json.RawMessage
				if json.Unmarshal(elt, &keys) != nil {
					continue
				}
				if _, ok := keys["c"]; ok {
					return AcfunV4
				}
				for _, k := range []string{"chat", "thread", "ping", "leaf", "global_num_res"} {
					if _, ok := keys[k]; ok {
						return Niconico
					}
				}
				if _, ok := keys["position"]; ok {
					return Bahamut
				}
			}
		}
		return Bahamut
	}
	return ""
}

// looksLikeText reports whether the head of data is free of control bytes
// other than whitespace. Field tags of a binary message are mostly small.
func looksLikeText(data []byte) bool {
	for _, b := range data[:min(len(data), 64)] {
		if b < 0x20 && b != '\t' && b != '\n' && b != '\r' {
			return false
		}
	}
	return true
}

func firstByte(data []byte) byte {
	if t := bytes.TrimSpace(data); len(t) != 0 {
		return t[0]
	}
	return 0
}
