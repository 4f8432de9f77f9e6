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

package events

import (
	"log/slog"
	"regexp"
	"testing"
	"time"

	"github.com/jackbister/leefsuck/pkg/leefsuck/parser"
)

// fakeRepository records what the publisher stores. The publishers only ever
// call AddBatch, so the read methods are stubbed out.
type fakeRepository struct {
	added []Event
}

func (r *fakeRepository) AddBatch(events []Event) error {
	r.added = append(r.added, events...)
	return nil
}

func (r *fakeRepository) GetByIds(_ []int64) ([]Event, error) {
	return nil, nil
}

func (r *fakeRepository) GetRecent(_ int) ([]Event, error) {
	return nil, nil
}

func (r *fakeRepository) Search(_ string) ([]Event, error) {
	return nil, nil
}

func newTestPublisher(repo Repository) EventPublisher {
	fileParser := &parser.LeefFileParser{
		Cfg: parser.LeefParserConfig{
			EventDelimiter: regexp.MustCompile("\n"),
		},
		Logger: slog.Default(),
	}
	return RepositoryEventPublisher(repo, fileParser, slog.Default())
}

func TestRepositoryEventPublisher_StoresParsedEvent(t *testing.T) {
	repo := &fakeRepository{}
	publisher := newTestPublisher(repo)

	publisher.PublishEvent(RawEvent{
		Raw:      "<134>2022-02-14T03:17:30-08:00 TEST LEEF:2.0|Microsoft|MSExchange|2013|Logon Failure|src=127.0.0.1",
		Host:     "localhost",
		Source:   "log.txt",
		SourceId: "source-1",
		Offset:   0,
	})

	if len(repo.added) != 1 {
		t.Fatalf("expected 1 stored event, got %v", len(repo.added))
	}
	evt := repo.added[0]
	if evt.Fields["ahost"] != "TEST" {
		t.Errorf("expected ahost=TEST, got %v", evt.Fields["ahost"])
	}
	expected := time.Date(2022, 2, 14, 3, 17, 30, 0, time.FixedZone("", -8*60*60))
	if !evt.Timestamp.Equal(expected) {
		t.Errorf("expected timestamp from the _time field, got %v", evt.Timestamp)
	}
}

func TestRepositoryEventPublisher_DropsNonLeefEvent(t *testing.T) {
	repo := &fakeRepository{}
	publisher := newTestPublisher(repo)

	publisher.PublishEvent(RawEvent{
		Raw:    "2021-02-01 00:00:00 a plain log line",
		Host:   "localhost",
		Source: "log.txt",
	})

	if len(repo.added) != 0 {
		t.Errorf("expected non-LEEF event to be dropped, got %v stored events", len(repo.added))
	}
}

func TestDebugEventPublisher_ForwardsToWrapped(t *testing.T) {
	repo := &fakeRepository{}
	publisher := DebugEventPublisher(newTestPublisher(repo), slog.Default())

	publisher.PublishEvent(RawEvent{
		Raw:    "LEEF:1.0|Microsoft|MSExchange|2013|Logon Failure|src=127.0.0.1",
		Host:   "localhost",
		Source: "log.txt",
	})

	if len(repo.added) != 1 {
		t.Errorf("expected the wrapped publisher to receive the event, got %v", len(repo.added))
	}
}
