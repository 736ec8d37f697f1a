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
	"time"
)

// SegmentInfo is the decoded Info element of a segment. DurationTicks
// is expressed in timecode-scale units; Parser.Duration converts it to
// seconds.
type SegmentInfo struct {
	TimecodeScale uint64
	DurationTicks float64
	SegmentUID    []byte
	Title         string
	MuxingApp     string
	WritingApp    string
	DateUTC       time.Time
}

// TrackInfo is the decoded snapshot of one TrackEntry. Video and Audio
// are set only for tracks of the matching type.
type TrackInfo struct {
	TrackNumber  uint64
	TrackUID     uint64
	TrackType    uint64
	CodecID      string
	CodecPrivate []byte
	Name         string
	Language     string
	Video        *VideoInfo
	Audio        *AudioInfo
}

// VideoInfo is the video payload of a TrackEntry. Display dimensions
// default to the pixel dimensions when the file does not carry them.
type VideoInfo struct {
	PixelWidth    uint64
	PixelHeight   uint64
	DisplayWidth  uint64
	DisplayHeight uint64
	FrameRate     float64
}

// AudioInfo is the audio payload of a TrackEntry.
type AudioInfo struct {
	SamplingFrequency float64
	Channels          uint64
	BitDepth          uint64
}

// FrameData is one media frame crossing the package boundary. The
// Parser hands out payload copies, so Data stays valid after the
// parser or its backing buffer are gone.
type FrameData struct {
	TrackNumber uint64
	Data        []byte
	TimestampNs int64
	Keyframe    bool
}

// CuePoint is one entry of the Cues seek index. Time is in
// timecode-scale ticks and ClusterPosition is relative to the start of
// the segment payload.
type CuePoint struct {
	Time            uint64
	TrackNumber     uint64
	ClusterPosition uint64
	BlockNumber     uint64
}
