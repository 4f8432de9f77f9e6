// Copyright 2023 Jack Bister
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

package parser

import (
	"fmt"
	"log/slog"
	"regexp"
	"time"

	"github.com/araddon/dateparse"

	"github.com/jackbister/leefsuck/pkg/leefsuck/leef"
)

type LeefParserConfig struct {
	EventDelimiter *regexp.Regexp

	// PreserveRawEvent adds the trimmed input under the key "rawEvent" for
	// every extracted event.
	PreserveRawEvent bool
}

// LeefFileParser is a FileParser for files containing one LEEF event per
// delimiter, with or without syslog envelopes.
type LeefFileParser struct {
	Cfg LeefParserConfig

	Logger *slog.Logger
}

func (p *LeefFileParser) CanSplit(b []byte) bool {
	return p.Cfg.EventDelimiter.Match(b)
}

func (p *LeefFileParser) Extract(s string) (*ExtractResult, error) {
	fields, err := leef.ToMap(s, p.Cfg.PreserveRawEvent)
	if err != nil {
		return nil, fmt.Errorf("error extracting fields from LEEF string: %w", err)
	}
	// The envelope timestamp text can be in any format. If it parses, expose a
	// normalized _time so that events can be ordered and searched by time.
	if at, ok := fields["at"]; ok {
		t, err := dateparse.ParseAny(at)
		if err != nil {
			p.Logger.Debug("could not parse 'at' field as a timestamp, will not add _time field",
				slog.String("at", at))
		} else {
			fields["_time"] = t.Format(time.RFC3339)
		}
	}
	return &ExtractResult{
		Fields: fields,
	}, nil
}

func (p *LeefFileParser) Split(s string) SplitResult {
	delimiters := p.Cfg.EventDelimiter.FindAllString(s, -1)
	split := p.Cfg.EventDelimiter.Split(s, -1)
	rawEvts := split[:len(split)-1]
	retEvts := make([]RawParserEvent, 0, len(rawEvts))
	offset := int64(0)
	for i, raw := range rawEvts {
		evt := RawParserEvent{
			Raw:    raw,
			Offset: offset,
		}
		retEvts = append(retEvts, evt)
		offset += int64(len(raw)) + int64(len(delimiters[i]))
	}
	return SplitResult{
		Events:    retEvts,
		Remainder: split[len(split)-1],
	}
}
