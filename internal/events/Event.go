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

import "time"

// RawEvent represents an event that has not yet been parsed into fields.
type RawEvent struct {
	Raw      string
	Host     string
	Source   string
	SourceId string
	Offset   int64
}

// Event is a parsed LEEF event ready for storage. Fields holds the flat
// mapping produced by the LEEF parser.
type Event struct {
	Id        int64
	Raw       string
	Timestamp time.Time
	Host      string
	Source    string
	SourceId  string
	Offset    int64
	Fields    map[string]string
}
