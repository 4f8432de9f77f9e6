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
	"errors"
	"log/slog"
	"regexp"
	"testing"

	"github.com/jackbister/leefsuck/pkg/leefsuck/leef"
)

func newTestParser(preserveRawEvent bool) *LeefFileParser {
	return &LeefFileParser{
		Cfg: LeefParserConfig{
			EventDelimiter:   regexp.MustCompile("\n"),
			PreserveRawEvent: preserveRawEvent,
		},
		Logger: slog.Default(),
	}
}

func TestLeefFileParser_Extract(t *testing.T) {
	p := newTestParser(false)

	res, err := p.Extract("LEEF:1.0|Microsoft|MSExchange|2013|Logon Failure|src=127.0.0.1 suser=Admin")
	if err != nil {
		t.Fatalf("got error when extracting: %v", err)
	}
	if res.Fields["deviceVendor"] != "Microsoft" {
		t.Errorf("expected deviceVendor=Microsoft, got %v", res.Fields["deviceVendor"])
	}
	if res.Fields["suser"] != "Admin" {
		t.Errorf("expected suser=Admin, got %v", res.Fields["suser"])
	}
}

func TestLeefFileParser_ExtractNonLeefReturnsError(t *testing.T) {
	p := newTestParser(false)

	_, err := p.Extract("2021-02-01 00:00:00 a plain log line")
	if !errors.Is(err, leef.ErrNotLeef) {
		t.Errorf("expected error wrapping ErrNotLeef, got %v", err)
	}
}

func TestLeefFileParser_ExtractAddsNormalizedTime(t *testing.T) {
	p := newTestParser(false)

	res, err := p.Extract("<134>2022-02-14T03:17:30-08:00 TEST LEEF:2.0|Microsoft|MSExchange|2013|Logon Failure|src=127.0.0.1")
	if err != nil {
		t.Fatalf("got error when extracting: %v", err)
	}
	if res.Fields["at"] != "2022-02-14T03:17:30-08:00" {
		t.Errorf("expected at to stay raw, got %v", res.Fields["at"])
	}
	if res.Fields["_time"] != "2022-02-14T03:17:30-08:00" {
		t.Errorf("expected _time to be the RFC3339 form of at, got %v", res.Fields["_time"])
	}
}

func TestLeefFileParser_ExtractPreservesRawEvent(t *testing.T) {
	p := newTestParser(true)

	res, err := p.Extract("LEEF:1.0|Microsoft|MSExchange|2013|Logon Failure| ")
	if err != nil {
		t.Fatalf("got error when extracting: %v", err)
	}
	if res.Fields["rawEvent"] != "LEEF:1.0|Microsoft|MSExchange|2013|Logon Failure|" {
		t.Errorf("expected trimmed rawEvent, got %q", res.Fields["rawEvent"])
	}
}

func TestLeefFileParser_Split(t *testing.T) {
	p := newTestParser(false)

	res := p.Split("LEEF:1.0|A|B|C|D|src=1\nLEEF:1.0|A|B|C|D|src=2\nLEEF:1.0|A|B|C|D|sr")
	if len(res.Events) != 2 {
		t.Fatalf("expected 2 complete events, got %v", len(res.Events))
	}
	if res.Events[0].Offset != 0 {
		t.Errorf("expected first offset 0, got %v", res.Events[0].Offset)
	}
	if res.Events[1].Offset != int64(len("LEEF:1.0|A|B|C|D|src=1")+1) {
		t.Errorf("unexpected second offset %v", res.Events[1].Offset)
	}
	if res.Remainder != "LEEF:1.0|A|B|C|D|sr" {
		t.Errorf("unexpected remainder %q", res.Remainder)
	}
}

func TestLeefFileParser_CanSplit(t *testing.T) {
	p := newTestParser(false)

	if p.CanSplit([]byte("no delimiter here")) {
		t.Error("CanSplit should be false without a newline")
	}
	if !p.CanSplit([]byte("line\n")) {
		t.Error("CanSplit should be true with a newline")
	}
}
