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
	"strconv"
	"strings"
)

// parseEnvelope extracts syslog facility/priority and the host and timestamp
// tokens from the text preceding the LEEF marker.
func (l *leefLine) parseEnvelope(envelope string) {
	data := envelope

	// A <NNN> prefix holds the syslog priority value. Facility is pri>>3 and
	// severity is pri&7. A prefix which does not parse as a number yields
	// neither field, it is not an error.
	if strings.HasPrefix(envelope, "<") && strings.Contains(envelope, ">") {
		gt := strings.Index(envelope, ">")
		if pri, err := strconv.ParseInt(envelope[1:gt], 10, 16); err == nil {
			l.syslogFacility = strconv.FormatInt(pri>>3, 10)
			l.syslogPriority = strconv.FormatInt(pri&7, 10)
		}
		data = envelope[gt+1:]
	}

	// The space count decides how the remainder splits into host and timestamp.
	switch spaces := strings.Count(data, " "); {
	case spaces == 1:
		// Host and/or timestamp. The right token is the host, the left token is
		// the timestamp. If one side is empty the remaining token could be
		// either, so the datetime heuristic decides.
		left, right := rightCut(data, " ")
		if left != "" && right != "" {
			l.ahost = right
			l.at = left
		} else if single := left + right; single != "" {
			if isDatetimeString(single) {
				l.at = single
			} else {
				l.ahost = single
			}
		}
	case spaces == 2:
		// Assumed to be a human readable timestamp such as "Feb 14 19:04:54",
		// with no host.
		l.at = data
	case spaces > 2:
		// Human readable timestamp followed by a host.
		left, right := rightCut(data, " ")
		if right != "" {
			l.ahost = right
			l.at = left
		} else {
			l.ahost = left
			l.at = left
		}
	default:
		// A single token. The heuristic decides whether it is a timestamp or a
		// host. An empty remainder (e.g. "<134>LEEF:...") yields neither.
		if data != "" {
			if isDatetimeString(data) {
				l.at = data
			} else {
				l.ahost = data
			}
		}
	}
}

// rightCut splits s around the last occurrence of sep.
func rightCut(s string, sep string) (left string, right string) {
	idx := strings.LastIndex(s, sep)
	return s[:idx], s[idx+len(sep):]
}

// isDatetimeString reports whether s could plausibly be a timestamp, e.g.
// "Feb 19 19:00:00" or "2020-02-19T00:00:00". The check is deliberately loose
// and can misclassify hostnames containing hyphens. Changing it changes which
// envelope token ends up in ahost vs at for ambiguous inputs.
func isDatetimeString(s string) bool {
	return (strings.Contains(s, ":") && strings.Contains(s, "-")) ||
		strings.Contains(s, "-") ||
		strings.Count(s, " ") >= 1
}
