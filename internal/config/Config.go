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

package config

import (
	"regexp"
	"time"
)

type SqliteConfig struct {
	// DatabaseFile is the name of the file where events are stored.
	// The special name ":memory:" keeps everything in memory.
	DatabaseFile string
}

type WebConfig struct {
	Enabled bool
	Address string
}

type FileConfig struct {
	Filename     string
	ReadInterval time.Duration
}

type Config struct {
	HostName string

	// EventDelimiter separates events in watched files. Usually \n.
	EventDelimiter *regexp.Regexp

	// PreserveRawEvent adds the original trimmed line under the key "rawEvent"
	// to every parsed event.
	PreserveRawEvent bool

	Files []FileConfig

	SQLite *SqliteConfig

	Web *WebConfig
}
