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

package ebml

import (
	"fmt"
)

// ID is a Matroska element ID in its stored form, marker bit included.
// WebM restricts IDs to at most four bytes.
type ID uint32

// Element IDs of the WebM profile subset handled by this module.
const (
	IDEBML                ID = 0x1A45DFA3
	IDEBMLVersion         ID = 0x4286
	IDEBMLReadVersion     ID = 0x42F7
	IDEBMLMaxIDLength     ID = 0x42F2
	IDEBMLMaxSizeLength   ID = 0x42F3
	IDDocType             ID = 0x4282
	IDDocTypeVersion      ID = 0x4287
	IDDocTypeReadVersion  ID = 0x4285
	IDSegment             ID = 0x18538067
	IDSeekHead            ID = 0x114D9B74
	IDSeek                ID = 0x4DBB
	IDSeekID              ID = 0x53AB
	IDSeekPosition        ID = 0x53AC
	IDInfo                ID = 0x1549A966
	IDTimecodeScale       ID = 0x2AD7B1
	IDDuration            ID = 0x4489
	IDDateUTC             ID = 0x4461
	IDTitle               ID = 0x7BA9
	IDMuxingApp           ID = 0x4D80
	IDWritingApp          ID = 0x5741
	IDSegmentUID          ID = 0x73A4
	IDTracks              ID = 0x1654AE6B
	IDTrackEntry          ID = 0xAE
	IDTrackNumber         ID = 0xD7
	IDTrackUID            ID = 0x73C5
	IDTrackType           ID = 0x83
	IDFlagLacing          ID = 0x9C
	IDDefaultDuration     ID = 0x23E383
	IDName                ID = 0x536E
	IDLanguage            ID = 0x22B59C
	IDCodecID             ID = 0x86
	IDCodecPrivate        ID = 0x63A2
	IDCodecName           ID = 0x258688
	IDVideo               ID = 0xE0
	IDPixelWidth          ID = 0xB0
	IDPixelHeight         ID = 0xBA
	IDDisplayWidth        ID = 0x54B0
	IDDisplayHeight       ID = 0x54BA
	IDFrameRate           ID = 0x2383E3
	IDAudio               ID = 0xE1
	IDSamplingFrequency   ID = 0xB5
	IDChannels            ID = 0x9F
	IDBitDepth            ID = 0x6264
	IDCluster             ID = 0x1F43B675
	IDTimecode            ID = 0xE7
	IDPrevSize            ID = 0xAB
	IDPosition            ID = 0xA7
	IDSimpleBlock         ID = 0xA3
	IDBlockGroup          ID = 0xA0
	IDBlock               ID = 0xA1
	IDBlockDuration       ID = 0x9B
	IDReferenceBlock      ID = 0xFB
	IDCues                ID = 0x1C53BB6B
	IDCuePoint            ID = 0xBB
	IDCueTime             ID = 0xB3
	IDCueTrackPositions   ID = 0xB7
	IDCueTrack            ID = 0xF7
	IDCueClusterPosition  ID = 0xF1
	IDCueBlockNumber      ID = 0x5378
	IDCueRelativePosition ID = 0xF0
	IDTags                ID = 0x1254C367
	IDChapters            ID = 0x1043A770
	IDAttachments         ID = 0x1941A469
	IDVoid                ID = 0xEC
	IDCRC32               ID = 0xBF
)

var idNames = map[ID]string{
	IDEBML:                "EBML",
	IDEBMLVersion:         "EBMLVersion",
	IDEBMLReadVersion:     "EBMLReadVersion",
	IDEBMLMaxIDLength:     "EBMLMaxIDLength",
	IDEBMLMaxSizeLength:   "EBMLMaxSizeLength",
	IDDocType:             "DocType",
	IDDocTypeVersion:      "DocTypeVersion",
	IDDocTypeReadVersion:  "DocTypeReadVersion",
	IDSegment:             "Segment",
	IDSeekHead:            "SeekHead",
	IDSeek:                "Seek",
	IDSeekID:              "SeekID",
	IDSeekPosition:        "SeekPosition",
	IDInfo:                "Info",
	IDTimecodeScale:       "TimecodeScale",
	IDDuration:            "Duration",
	IDDateUTC:             "DateUTC",
	IDTitle:               "Title",
	IDMuxingApp:           "MuxingApp",
	IDWritingApp:          "WritingApp",
	IDSegmentUID:          "SegmentUID",
	IDTracks:              "Tracks",
	IDTrackEntry:          "TrackEntry",
	IDTrackNumber:         "TrackNumber",
	IDTrackUID:            "TrackUID",
	IDTrackType:           "TrackType",
	IDFlagLacing:          "FlagLacing",
	IDDefaultDuration:     "DefaultDuration",
	IDName:                "Name",
	IDLanguage:            "Language",
	IDCodecID:             "CodecID",
	IDCodecPrivate:        "CodecPrivate",
	IDCodecName:           "CodecName",
	IDVideo:               "Video",
	IDPixelWidth:          "PixelWidth",
	IDPixelHeight:         "PixelHeight",
	IDDisplayWidth:        "DisplayWidth",
	IDDisplayHeight:       "DisplayHeight",
	IDFrameRate:           "FrameRate",
	IDAudio:               "Audio",
	IDSamplingFrequency:   "SamplingFrequency",
	IDChannels:            "Channels",
	IDBitDepth:            "BitDepth",
	IDCluster:             "Cluster",
	IDTimecode:            "Timecode",
	IDPrevSize:            "PrevSize",
	IDPosition:            "Position",
	IDSimpleBlock:         "SimpleBlock",
	IDBlockGroup:          "BlockGroup",
	IDBlock:               "Block",
	IDBlockDuration:       "BlockDuration",
	IDReferenceBlock:      "ReferenceBlock",
	IDCues:                "Cues",
	IDCuePoint:            "CuePoint",
	IDCueTime:             "CueTime",
	IDCueTrackPositions:   "CueTrackPositions",
	IDCueTrack:            "CueTrack",
	IDCueClusterPosition:  "CueClusterPosition",
	IDCueBlockNumber:      "CueBlockNumber",
	IDCueRelativePosition: "CueRelativePosition",
	IDTags:                "Tags",
	IDChapters:            "Chapters",
	IDAttachments:         "Attachments",
	IDVoid:                "Void",
	IDCRC32:               "CRC-32",
}

// String returns the element name, or the hex form for IDs outside the
// WebM profile.
func (id ID) String() string {
	if name, ok := idNames[id]; ok {
		return name
	}
	return fmt.Sprintf("0x%X", uint32(id))
}

// Width returns the stored width of the ID in bytes.
func (id ID) Width() int {
	switch {
	case id >= 0x80 && id <= 0xFF:
		return 1
	case id >= 0x4000 && id <= 0x7FFF:
		return 2
	case id >= 0x200000 && id <= 0x3FFFFF:
		return 3
	case id >= 0x10000000 && id <= 0x1FFFFFFF:
		return 4
	default:
		return 0
	}
}

// DecodeID decodes the element ID at the start of b. IDs keep their
// marker bit and span at most four bytes.
func DecodeID(b []byte) (ID, int, error) {
	if len(b) == 0 {
		return 0, 0, ErrShortBuffer
	}
	w := vintWidth(b[0])
	if w == 0 || w > 4 {
		return 0, 0, ErrInvalidVINT
	}
	if len(b) < w {
		return 0, 0, ErrShortBuffer
	}
	v := uint32(b[0])
	for i := 1; i < w; i++ {
		v = v<<8 | uint32(b[i])
	}
	return ID(v), w, nil
}

// AppendID appends the stored form of id to dst.
func AppendID(dst []byte, id ID) ([]byte, error) {
	w := id.Width()
	if w == 0 {
		return dst, ErrInvalidVINT
	}
	for i := w - 1; i >= 0; i-- {
		dst = append(dst, byte(id>>uint(8*i)))
	}
	return dst, nil
}
