// Copyright 2025 SEQSENSE, Inc.
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

// Package ebml implements the low level EBML wire format used by
// Matroska and WebM: variable length integers, element headers and the
// scalar value encodings.
//
// All decode functions operate on a byte slice window and report how
// many bytes they consumed. All encode functions are append-style and
// return the extended slice.
package ebml

import (
	"errors"
)

var (
	// ErrInvalidVINT is returned when the first byte of a variable
	// length integer has no marker bit, or an element ID is wider
	// than permitted.
	ErrInvalidVINT = errors.New("invalid variable length integer")
	// ErrShortBuffer is returned when a value or a header extends
	// past the end of the given buffer.
	ErrShortBuffer = errors.New("buffer too short")
	// ErrValueTooLarge is returned by encoders for values that do
	// not fit the wire representation.
	ErrValueTooLarge = errors.New("value too large")
	// ErrInvalidValue is returned when a scalar payload has an
	// impossible length for its type.
	ErrInvalidValue = errors.New("invalid value encoding")
)
