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

import "errors"

// ErrNotLeef is returned when the input does not contain a LEEF:1.0| or LEEF:2.0| marker.
var ErrNotLeef = errors.New("not a LEEF string")

// ErrMalformedLeef is returned when the input looks like LEEF but the header is incomplete.
var ErrMalformedLeef = errors.New("could be a malformed LEEF string")

// GenericError is not produced by the parser itself. It exists so that code layered on
// top of this package can report ad hoc failures using the same error surface.
type GenericError struct {
	Message string
}

func (e GenericError) Error() string {
	return "generic error: " + e.Message
}
