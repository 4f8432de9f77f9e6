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

type Repository interface {
	AddBatch(events []Event) error
	GetByIds(ids []int64) ([]Event, error)
	// GetRecent returns up to limit events ordered by timestamp, newest first.
	GetRecent(limit int) ([]Event, error)
	// Search returns the events whose raw string or any parsed field value
	// contains fragment, ordered by timestamp, newest first.
	Search(fragment string) ([]Event, error)
}
