// Copyright 2022 Jack Bister
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package leef

import (
	"sort"
	"strconv"
	"strings"
)

// parseEventAttributes splits the event attribute text into key/value pairs.
// LEEF attributes are tab separated by default, LEEF 2.0 may declare a custom
// delimiter in the header, and in the wild the pairs are often just separated
// by spaces. Keys collide last-write-wins.
func parseEventAttributes(s string, delim string) map[string]string {
	attrs := map[string]string{}
	if strings.Contains(s, "\t") || strings.Contains(s, `\t`) {
		// Tab separated. Some producers emit the two-character sequence \t
		// instead of a real tab, so retry with that if real tabs got us nothing.
		tokens := strings.Split(s, "\t")
		if len(tokens) <= 1 {
			tokens = strings.Split(s, `\t`)
		}
		insertKVTokens(attrs, tokens)
	} else if d := decodeDelimiter(delim); d != "" {
		insertKVTokens(attrs, strings.Split(s, d))
	} else {
		parseSpacedAttributes(attrs, s)
	}
	foldLabels(attrs)
	return attrs
}

// insertKVTokens splits each token once on the first = and inserts the pair.
// Tokens without a = carry no value and are dropped.
func insertKVTokens(attrs map[string]string, tokens []string) {
	for _, token := range tokens {
		if key, value, found := strings.Cut(token, "="); found {
			attrs[key] = value
		}
	}
}

// decodeDelimiter turns the header-declared delimiter field into the string to
// split attributes on. LEEF 2.0 allows the delimiter character to be written in
// hex, e.g. "x5e" or "0x5e" for "^". Anything else is used literally.
func decodeDelimiter(delim string) string {
	if delim == "" {
		return ""
	}
	hex := delim
	if strings.HasPrefix(hex, "0x") || strings.HasPrefix(hex, "0X") {
		hex = hex[2:]
	} else if strings.HasPrefix(hex, "x") || strings.HasPrefix(hex, "X") {
		hex = hex[1:]
	}
	if hex != delim && len(hex) >= 2 && len(hex) <= 4 {
		if code, err := strconv.ParseUint(hex, 16, 32); err == nil {
			return string(rune(code))
		}
	}
	return delim
}

// parseSpacedAttributes handles attribute text where the pairs are separated by
// spaces rather than a delimiter, e.g. "src=127.0.0.1 suser=Admin". The text is
// split on every unescaped =. For each adjacent pair of segments the key is the
// last space-delimited token of the left segment and the value is everything in
// the right segment except its last token, which belongs to the next key. The
// final segment as a whole is the value of the last key.
func parseSpacedAttributes(attrs map[string]string, s string) {
	segments := splitUnescaped(strings.TrimSpace(s), '=')
	key := ""
	for i := 0; i+1 < len(segments); i++ {
		keyTokens := strings.Split(segments[i], " ")
		key = keyTokens[len(keyTokens)-1]
		valueTokens := strings.Split(segments[i+1], " ")
		attrs[key] = strings.Join(valueTokens[:len(valueTokens)-1], " ")
	}
	if key != "" {
		attrs[key] = segments[len(segments)-1]
	}
}

// splitUnescaped splits s on sep, except where sep is escaped by a backslash.
// The scanner tracks whether the previous character was an unescaped backslash
// so that an escaped backslash does not escape the separator after it.
func splitUnescaped(s string, sep byte) []string {
	ret := []string{}
	offset := 0
	escaped := false
	for i := 0; i < len(s); i++ {
		if s[i] == sep && !escaped {
			ret = append(ret, s[offset:i])
			offset = i + 1
		}
		escaped = s[i] == '\\' && !escaped
	}
	return append(ret, s[offset:])
}

// foldLabels merges <name>Label/<name> pairs into a single entry. For example
// "cs1Label=Reason Code, cs1=404" becomes "ReasonCode=404": the value of the
// Label entry, with spaces stripped, names the entry holding the stem's value.
func foldLabels(attrs map[string]string) {
	stems := []string{}
	for key := range attrs {
		if stem, found := strings.CutSuffix(key, "Label"); found {
			if _, ok := attrs[stem]; ok {
				stems = append(stems, stem)
			}
		}
	}
	// Deterministic fold order in case two renamed entries collide.
	sort.Strings(stems)
	for _, stem := range stems {
		label := attrs[stem+"Label"]
		value := attrs[stem]
		delete(attrs, stem+"Label")
		delete(attrs, stem)
		attrs[strings.ReplaceAll(label, " ", "")] = value
	}
}
