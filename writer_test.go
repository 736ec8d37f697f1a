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

package webmcontainer

import (
	"bytes"
	"errors"
	"testing"

	"github.com/seqsense/webmcontainer/ebml"
)

func TestBytesWriter(t *testing.T) {
	t.Run("AppendAndPosition", func(t *testing.T) {
		w := NewBytesWriter()
		n, err := w.Write([]byte{0x01, 0x02, 0x03})
		if err != nil {
			t.Fatalf("Failed to write: %v", err)
		}
		if n != 3 {
			t.Error("Write length differs")
		}
		if w.Position() != 3 || w.Len() != 3 {
			t.Errorf("Expected position and length 3, got %d and %d", w.Position(), w.Len())
		}
	})
	t.Run("OverwriteInPlace", func(t *testing.T) {
		w := NewBytesWriter()
		if _, err := w.Write([]byte{0x01, 0x02, 0x03, 0x04}); err != nil {
			t.Fatalf("Failed to write: %v", err)
		}
		if err := w.Seek(1); err != nil {
			t.Fatalf("Failed to seek: %v", err)
		}
		if _, err := w.Write([]byte{0xAA, 0xBB}); err != nil {
			t.Fatalf("Failed to overwrite: %v", err)
		}
		if !bytes.Equal(w.Bytes(), []byte{0x01, 0xAA, 0xBB, 0x04}) {
			t.Errorf("Expected in-place overwrite, got %v", w.Bytes())
		}
		if w.Position() != 3 {
			t.Errorf("Expected position 3, got %d", w.Position())
		}
		if w.Len() != 4 {
			t.Errorf("Expected length to stay 4, got %d", w.Len())
		}
	})
	t.Run("SeekPastEndZeroFills", func(t *testing.T) {
		w := NewBytesWriter()
		if _, err := w.Write([]byte{0x01}); err != nil {
			t.Fatalf("Failed to write: %v", err)
		}
		if err := w.Seek(4); err != nil {
			t.Fatalf("Failed to seek: %v", err)
		}
		if _, err := w.Write([]byte{0x05}); err != nil {
			t.Fatalf("Failed to write: %v", err)
		}
		if !bytes.Equal(w.Bytes(), []byte{0x01, 0x00, 0x00, 0x00, 0x05}) {
			t.Errorf("Expected zero filled gap, got %v", w.Bytes())
		}
	})
	t.Run("NegativeSeek", func(t *testing.T) {
		w := NewBytesWriter()
		if err := w.Seek(-1); !errors.Is(err, ErrInvalidArgument) {
			t.Errorf("Expected ErrInvalidArgument, got %v", err)
		}
	})
	t.Run("ElementStartNotify", func(t *testing.T) {
		w := NewBytesWriter()
		var gotID ebml.ID
		var gotPos int64
		w.SetElementStartNotify(func(id ebml.ID, pos int64) {
			gotID = id
			gotPos = pos
		})
		w.ElementStartNotify(ebml.IDCluster, 42)
		if gotID != ebml.IDCluster || gotPos != 42 {
			t.Errorf("Expected notification (%v, 42), got (%v, %d)", ebml.IDCluster, gotID, gotPos)
		}
	})
	t.Run("NotifyWithoutCallback", func(t *testing.T) {
		w := NewBytesWriter()
		// Must not panic.
		w.ElementStartNotify(ebml.IDCluster, 0)
	})
}
