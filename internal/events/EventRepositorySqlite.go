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
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
)

type sqliteRepository struct {
	db *sql.DB

	logger *slog.Logger
}

// SqliteRepository creates a Repository backed by the given SQLite database.
// Events are deduplicated on (host, source, timestamp, offset).
func SqliteRepository(db *sql.DB, logger *slog.Logger) (Repository, error) {
	_, err := db.Exec("CREATE TABLE IF NOT EXISTS Events (id INTEGER NOT NULL PRIMARY KEY AUTOINCREMENT, host TEXT NOT NULL, source TEXT NOT NULL, source_id TEXT NOT NULL, timestamp DATETIME NOT NULL, offset BIGINT NOT NULL, raw TEXT NOT NULL, UNIQUE(host, source, timestamp, offset));")
	if err != nil {
		return nil, fmt.Errorf("error creating events table: %w", err)
	}
	_, err = db.Exec("CREATE INDEX IF NOT EXISTS IX_Events_Timestamp ON Events(timestamp);")
	if err != nil {
		return nil, fmt.Errorf("error creating events timestamp index: %w", err)
	}
	_, err = db.Exec("CREATE TABLE IF NOT EXISTS EventFields (event_id INTEGER NOT NULL, name TEXT NOT NULL, value TEXT NOT NULL, FOREIGN KEY(event_id) REFERENCES Events(id));")
	if err != nil {
		return nil, fmt.Errorf("error creating eventfields table: %w", err)
	}
	_, err = db.Exec("CREATE INDEX IF NOT EXISTS IX_EventFields_EventId ON EventFields(event_id);")
	if err != nil {
		return nil, fmt.Errorf("error creating eventfields index: %w", err)
	}
	return &sqliteRepository{
		db:     db,
		logger: logger,
	}, nil
}

func (repo *sqliteRepository) AddBatch(events []Event) error {
	tx, err := repo.db.Begin()
	if err != nil {
		return fmt.Errorf("error starting transaction for adding event batch: %w", err)
	}
	numAdded := 0
	for _, evt := range events {
		res, err := tx.Exec("INSERT OR IGNORE INTO Events (host, source, source_id, timestamp, offset, raw) VALUES (?, ?, ?, ?, ?, ?);",
			evt.Host, evt.Source, evt.SourceId, evt.Timestamp, evt.Offset, evt.Raw)
		if err != nil {
			tx.Rollback()
			return fmt.Errorf("error adding event from source=%v at offset=%v: %w", evt.Source, evt.Offset, err)
		}
		affected, err := res.RowsAffected()
		if err != nil {
			tx.Rollback()
			return fmt.Errorf("error getting rows affected when adding event: %w", err)
		}
		if affected == 0 {
			// Duplicate of an already stored event, which happens when a file
			// is reread from the start after a reopen.
			continue
		}
		id, err := res.LastInsertId()
		if err != nil {
			tx.Rollback()
			return fmt.Errorf("error getting id of added event: %w", err)
		}
		for name, value := range evt.Fields {
			_, err = tx.Exec("INSERT INTO EventFields (event_id, name, value) VALUES (?, ?, ?);", id, name, value)
			if err != nil {
				tx.Rollback()
				return fmt.Errorf("error adding field name=%v for event id=%v: %w", name, id, err)
			}
		}
		numAdded++
	}
	err = tx.Commit()
	if err != nil {
		return fmt.Errorf("error committing event batch: %w", err)
	}
	repo.logger.Info("added events",
		slog.Int("numEvents", numAdded),
		slog.Int("numDuplicates", len(events)-numAdded))
	return nil
}

func (repo *sqliteRepository) GetByIds(ids []int64) ([]Event, error) {
	if len(ids) == 0 {
		return []Event{}, nil
	}
	var sb strings.Builder
	sb.WriteString("SELECT id, host, source, source_id, timestamp, offset, raw FROM Events WHERE id IN (")
	args := make([]any, len(ids))
	for i, id := range ids {
		sb.WriteString("?")
		if i != len(ids)-1 {
			sb.WriteString(",")
		}
		args[i] = id
	}
	sb.WriteString(");")
	rows, err := repo.db.Query(sb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("error getting events with ids=%v: %w", ids, err)
	}
	defer rows.Close()
	return repo.scanEvents(rows)
}

func (repo *sqliteRepository) GetRecent(limit int) ([]Event, error) {
	rows, err := repo.db.Query("SELECT id, host, source, source_id, timestamp, offset, raw FROM Events ORDER BY timestamp DESC LIMIT ?;", limit)
	if err != nil {
		return nil, fmt.Errorf("error getting recent events: %w", err)
	}
	defer rows.Close()
	return repo.scanEvents(rows)
}

func (repo *sqliteRepository) Search(fragment string) ([]Event, error) {
	pattern := "%" + escapeLike(fragment) + "%"
	rows, err := repo.db.Query(
		"SELECT DISTINCT e.id, e.host, e.source, e.source_id, e.timestamp, e.offset, e.raw FROM Events e LEFT JOIN EventFields f ON f.event_id = e.id WHERE e.raw LIKE ? ESCAPE '\\' OR f.value LIKE ? ESCAPE '\\' ORDER BY e.timestamp DESC;",
		pattern, pattern)
	if err != nil {
		return nil, fmt.Errorf("error searching events for fragment=%v: %w", fragment, err)
	}
	defer rows.Close()
	return repo.scanEvents(rows)
}

// escapeLike escapes the LIKE wildcards in s so that a fragment containing
// '%' or '_' only matches those characters literally.
func escapeLike(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, "%", `\%`)
	s = strings.ReplaceAll(s, "_", `\_`)
	return s
}

func (repo *sqliteRepository) scanEvents(rows *sql.Rows) ([]Event, error) {
	ret := []Event{}
	for rows.Next() {
		var evt Event
		err := rows.Scan(&evt.Id, &evt.Host, &evt.Source, &evt.SourceId, &evt.Timestamp, &evt.Offset, &evt.Raw)
		if err != nil {
			return nil, fmt.Errorf("error scanning event row: %w", err)
		}
		ret = append(ret, evt)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating event rows: %w", err)
	}
	// The fields are fetched after the event rows are exhausted so that the
	// queries do not need a second connection, which would not see the same
	// database when an in-memory database is used.
	for i := range ret {
		fields, err := repo.getFields(ret[i].Id)
		if err != nil {
			return nil, err
		}
		ret[i].Fields = fields
	}
	return ret, nil
}

func (repo *sqliteRepository) getFields(eventId int64) (map[string]string, error) {
	rows, err := repo.db.Query("SELECT name, value FROM EventFields WHERE event_id = ?;", eventId)
	if err != nil {
		return nil, fmt.Errorf("error getting fields for event id=%v: %w", eventId, err)
	}
	defer rows.Close()
	fields := map[string]string{}
	for rows.Next() {
		var name, value string
		if err := rows.Scan(&name, &value); err != nil {
			return nil, fmt.Errorf("error scanning field row for event id=%v: %w", eventId, err)
		}
		fields[name] = value
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating field rows for event id=%v: %w", eventId, err)
	}
	return fields, nil
}
