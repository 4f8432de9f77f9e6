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

// Package leef converts a single LEEF log line, optionally wrapped in a syslog
// envelope, into a flat map from field name to field value.
//
// Example lines which can be converted:
//
//	LEEF:1.0|Microsoft|MSExchange|2013|Logon Failure|src=127.0.0.1 suser=Admin
//	<134>2022-02-14T03:17:30-08:00 TEST LEEF:2.0|Vendor|Product|Version|EventID|src=127.0.0.1
//	<134>Feb 14 19:04:54 127.0.0.1 LEEF:2.0|Vendor|Product|Version|EventID|x5e|src=127.0.0.1^dst=10.0.0.1
package leef

import (
	"strings"
)

// The five fixed LEEF header field names, in the order they appear after the
// version number. The delimiter field is optional and only present in LEEF 2.0.
var headerFields = [5]string{
	"deviceVendor",
	"deviceProduct",
	"deviceVersion",
	"eventId",
	"delimiter",
}

// leefLine holds the intermediate result of taking one line apart. It only
// lives for the duration of a single ToMap call.
type leefLine struct {
	syslogFacility  string
	syslogPriority  string
	at              string
	ahost           string
	header          map[string]string
	eventAttributes string
}

// ToMap converts a LEEF line into a map from field name to field value. The map
// contains the header fields (deviceVendor, deviceProduct, deviceVersion, eventId
// and, when supplied, delimiter), any fields derived from a syslog envelope
// (ahost, at, syslog_facility, syslog_priority) and the parsed event attributes.
// If preserveRawEvent is true the trimmed input is added under the key rawEvent.
//
// ToMap returns ErrNotLeef if the line contains no case-insensitive LEEF:1.0| or
// LEEF:2.0| marker, and ErrMalformedLeef if fewer than 5 pipe characters appear
// in the line. It holds no state between calls and is safe to call from multiple
// goroutines.
func ToMap(line string, preserveRawEvent bool) (map[string]string, error) {
	parsed, err := parseLine(line)
	if err != nil {
		return nil, err
	}

	ret := make(map[string]string, len(parsed.header)+8)
	for k, v := range parsed.header {
		ret[k] = v
	}
	if parsed.ahost != "" {
		ret["ahost"] = parsed.ahost
	}
	if parsed.at != "" {
		ret["at"] = parsed.at
	}
	if parsed.syslogFacility != "" {
		ret["syslog_facility"] = parsed.syslogFacility
	}
	if parsed.syslogPriority != "" {
		ret["syslog_priority"] = parsed.syslogPriority
	}

	if parsed.eventAttributes != "" {
		for k, v := range parseEventAttributes(parsed.eventAttributes, parsed.header["delimiter"]) {
			ret[k] = v
		}
	}

	if preserveRawEvent {
		ret["rawEvent"] = strings.TrimSpace(line)
	}

	return ret, nil
}

// parseLine splits a line into its envelope-derived fields, its header fields and
// the unparsed event attribute text.
func parseLine(s string) (*leefLine, error) {
	lower := strings.ToLower(s)
	if !strings.Contains(lower, "leef:1.0|") && !strings.Contains(lower, "leef:2.0|") {
		return nil, ErrNotLeef
	}
	if strings.Count(s, "|") < 5 {
		return nil, ErrMalformedLeef
	}

	// Everything before the last "LEEF:" occurrence is the envelope, everything
	// from it onward is the payload.
	parts := splitNonEmpty(s, "LEEF:")
	payload := parts[len(parts)-1]

	// The text after the last pipe in the payload is the event attribute text,
	// the text before it is the header.
	lastPipe := strings.LastIndex(payload, "|")
	if lastPipe < 0 {
		return nil, ErrMalformedLeef
	}

	ret := leefLine{
		header:          map[string]string{},
		eventAttributes: payload[lastPipe+1:],
	}

	// The first token is the version number, the rest are assigned positionally.
	// Fields beyond the supplied tokens stay absent, they are never inserted
	// with empty values.
	headerTokens := strings.Split(payload[:lastPipe], "|")[1:]
	for i, name := range headerFields {
		if i < len(headerTokens) {
			ret.header[name] = strings.TrimSpace(headerTokens[i])
		}
	}

	// An envelope only exists when exactly one "LEEF:" occurrence precedes the
	// payload. A bare LEEF string yields no host or time fields.
	if len(parts) == 2 {
		ret.parseEnvelope(strings.TrimSpace(parts[0]))
	}

	return &ret, nil
}

// splitNonEmpty splits s on sep and drops empty substrings from the result.
func splitNonEmpty(s string, sep string) []string {
	split := strings.Split(s, sep)
	ret := make([]string, 0, len(split))
	for _, sub := range split {
		if sub != "" {
			ret = append(ret, sub)
		}
	}
	return ret
}
