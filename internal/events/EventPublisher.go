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
	"time"

	"github.com/jackbister/leefsuck/pkg/leefsuck/parser"
)

type EventPublisher interface {
	PublishEvent(evt RawEvent)
}

type repositoryPublisher struct {
	repository Repository
	fileParser parser.FileParser

	logger *slog.Logger
}

// RepositoryEventPublisher returns an EventPublisher which parses raw events
// and stores them in the given repository. Events that do not parse are logged
// and dropped. The event timestamp is taken from the parsed _time field when
// present, otherwise the time the event was published is used.
func RepositoryEventPublisher(repository Repository, fileParser parser.FileParser, logger *slog.Logger) EventPublisher {
	return &repositoryPublisher{
		repository: repository,
		fileParser: fileParser,
		logger:     logger,
	}
}

func (ep *repositoryPublisher) PublishEvent(evt RawEvent) {
	res, err := ep.fileParser.Extract(evt.Raw)
	if err != nil {
		ep.logger.Warn("dropping event which could not be parsed",
			slog.String("source", evt.Source),
			slog.Int64("offset", evt.Offset),
			slog.Any("error", err))
		return
	}
	timestamp := time.Now()
	if t, ok := res.Fields["_time"]; ok {
		if parsed, err := time.Parse(time.RFC3339, t); err == nil {
			timestamp = parsed
		}
	}
	processed := Event{
		Raw:       evt.Raw,
		Timestamp: timestamp,
		Host:      evt.Host,
		Source:    evt.Source,
		SourceId:  evt.SourceId,
		Offset:    evt.Offset,
		Fields:    res.Fields,
	}
	err = ep.repository.AddBatch([]Event{processed})
	if err != nil {
		ep.logger.Error("error adding event to repository",
			slog.String("source", evt.Source),
			slog.Any("error", err))
	}
}

type debugEventPublisher struct {
	wrapped EventPublisher

	logger *slog.Logger
}

// DebugEventPublisher logs every published event and optionally forwards it to
// a wrapped publisher.
func DebugEventPublisher(wrapped EventPublisher, logger *slog.Logger) EventPublisher {
	return &debugEventPublisher{
		wrapped: wrapped,
		logger:  logger,
	}
}

func (ep *debugEventPublisher) PublishEvent(evt RawEvent) {
	ep.logger.Info("received event",
		slog.String("source", evt.Source),
		slog.String("raw", evt.Raw))
	if ep.wrapped != nil {
		ep.wrapped.PublishEvent(evt)
	}
}

type nopEventPublisher struct{}

func NopEventPublisher() EventPublisher {
	return &nopEventPublisher{}
}

func (ep *nopEventPublisher) PublishEvent(_ RawEvent) {}
