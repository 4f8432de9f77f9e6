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

// RawParserEvent is a single unparsed event produced by Split. Offset is the
// byte offset of the event within the string that was split.
type RawParserEvent struct {
	Raw    string
	Offset int64
}

// ExtractResult holds the flat field mapping extracted from one event.
type ExtractResult struct {
	Fields map[string]string
}

// SplitResult holds the complete events found in a chunk of file data.
// Remainder is any trailing data which did not end with an event delimiter
// yet, it should be prepended to the next chunk before splitting again.
type SplitResult struct {
	Events    []RawParserEvent
	Remainder string
}

// FileParser splits file data into events and extracts fields from them.
type FileParser interface {
	// CanSplit returns true if b contains at least one complete event.
	CanSplit(b []byte) bool
	Extract(s string) (*ExtractResult, error)
	Split(s string) SplitResult
}
