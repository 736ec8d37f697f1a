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

package webmtest

import (
	"time"

	"github.com/at-wat/ebml-go"
)

// Container is the sized document form, for decoding finished files
// and encoding multi cluster fixtures.
type Container struct {
	Header  EBMLHeader `ebml:"EBML"`
	Segment Segment
}

// StreamContainer is the streamed document form: the segment and its
// single cluster are written with unknown sizes, the shape produced by
// live writers.
type StreamContainer struct {
	Header  EBMLHeader      `ebml:"EBML"`
	Segment StreamedSegment `ebml:"Segment,size=unknown"`
}

type EBMLHeader struct {
	EBMLVersion            uint64
	EBMLReadVersion        uint64
	EBMLMaxIDLength        uint64
	EBMLMaxSizeLength      uint64
	EBMLDocType            string
	EBMLDocTypeVersion     uint64
	EBMLDocTypeReadVersion uint64
}

type Segment struct {
	SeekHead *SeekHead `ebml:",omitempty"`
	Info     Info
	Tracks   Tracks
	Cluster  []Cluster
	Cues     *Cues `ebml:",omitempty"`
}

type StreamedSegment struct {
	Info    Info
	Tracks  Tracks
	Cluster []StreamedCluster `ebml:"Cluster,size=unknown"`
}

type SeekHead struct {
	Seek []Seek
}

type Seek struct {
	SeekID       []byte
	SeekPosition uint64
}

type Info struct {
	TimecodeScale uint64
	MuxingApp     string    `ebml:",omitempty"`
	WritingApp    string    `ebml:",omitempty"`
	Title         string    `ebml:",omitempty"`
	DateUTC       time.Time `ebml:",omitempty"`
	SegmentUID    []byte    `ebml:",omitempty"`
	Duration      float64   `ebml:",omitempty"`
}

type Tracks struct {
	TrackEntry []TrackEntry
}

type TrackEntry struct {
	TrackNumber  uint64
	TrackUID     uint64
	TrackType    uint64
	FlagLacing   uint64 `ebml:",omitempty"`
	Name         string `ebml:",omitempty"`
	Language     string `ebml:",omitempty"`
	CodecID      string
	CodecPrivate []byte `ebml:",omitempty"`
	Video        *Video `ebml:",omitempty"`
	Audio        *Audio `ebml:",omitempty"`
}

type Video struct {
	PixelWidth    uint64
	PixelHeight   uint64
	DisplayWidth  uint64 `ebml:",omitempty"`
	DisplayHeight uint64 `ebml:",omitempty"`
}

type Audio struct {
	SamplingFrequency float64
	Channels          uint64
	BitDepth          uint64 `ebml:",omitempty"`
}

type Cluster struct {
	Timecode    uint64
	Position    uint64 `ebml:",omitempty"`
	PrevSize    uint64 `ebml:",omitempty"`
	SimpleBlock []ebml.Block
}

type StreamedCluster struct {
	Timecode    uint64
	SimpleBlock []ebml.Block
}

type Cues struct {
	CuePoint []CuePoint
}

type CuePoint struct {
	CueTime           uint64
	CueTrackPositions []CueTrackPositions
}

type CueTrackPositions struct {
	CueTrack           uint64
	CueClusterPosition uint64
	CueBlockNumber     uint64 `ebml:",omitempty"`
}
