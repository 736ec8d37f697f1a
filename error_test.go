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

package webmcontainer_test

import (
	"errors"
	"fmt"
	"io"
	"testing"

	webm "github.com/seqsense/webmcontainer"
)

func TestCodeOf(t *testing.T) {
	testCases := map[string]struct {
		err      error
		expected webm.ErrorCode
	}{
		"Nil":               {nil, webm.CodeSuccess},
		"EOF":               {io.EOF, webm.CodeSuccess},
		"WrappedEOF":        {fmt.Errorf("next frame: %w", io.EOF), webm.CodeSuccess},
		"InvalidFile":       {webm.ErrInvalidFile, webm.CodeInvalidFile},
		"CorruptedData":     {webm.ErrCorruptedData, webm.CodeCorruptedData},
		"UnsupportedFormat": {webm.ErrUnsupportedFormat, webm.CodeUnsupportedFormat},
		"IO":                {webm.ErrIO, webm.CodeIOError},
		"OutOfMemory":       {webm.ErrOutOfMemory, webm.CodeOutOfMemory},
		"InvalidArgument":   {webm.ErrInvalidArgument, webm.CodeInvalidArgument},
		"WrappedSentinel": {
			fmt.Errorf("parse headers: %w", fmt.Errorf("doc type 'avi': %w", webm.ErrUnsupportedFormat)),
			webm.CodeUnsupportedFormat,
		},
		"Unknown": {errors.New("something else"), webm.CodeIOError},
	}
	for name, testCase := range testCases {
		testCase := testCase
		t.Run(name, func(t *testing.T) {
			if code := webm.CodeOf(testCase.err); code != testCase.expected {
				t.Errorf("Expected code: '%v', got: '%v'", testCase.expected, code)
			}
		})
	}
}

func TestErrorCode_String(t *testing.T) {
	testCases := map[string]struct {
		code     webm.ErrorCode
		expected string
	}{
		"Success":           {webm.CodeSuccess, "success"},
		"InvalidFile":       {webm.CodeInvalidFile, "invalid file"},
		"CorruptedData":     {webm.CodeCorruptedData, "corrupted data"},
		"UnsupportedFormat": {webm.CodeUnsupportedFormat, "unsupported format"},
		"IOError":           {webm.CodeIOError, "i/o error"},
		"OutOfMemory":       {webm.CodeOutOfMemory, "out of memory"},
		"InvalidArgument":   {webm.CodeInvalidArgument, "invalid argument"},
		"Unknown":           {webm.ErrorCode(99), "unknown"},
	}
	for name, testCase := range testCases {
		testCase := testCase
		t.Run(name, func(t *testing.T) {
			if s := testCase.code.String(); s != testCase.expected {
				t.Errorf("Expected string: '%v', got: '%v'", testCase.expected, s)
			}
		})
	}
}
