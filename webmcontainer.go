// Package webmcontainer reads and writes WebM media containers held in
// memory. The Parser decodes a byte buffer into track metadata and
// per-track frame streams; the Muxer assembles encoded frames into a
// finalized WebM byte stream.
//
// The package operates on container framing only. Frame payloads are
// treated as opaque bytes; encoding and decoding them is up to the
// caller.
package webmcontainer

// Track types stored in TrackEntry elements.
const (
	TrackTypeVideo uint64 = 1
	TrackTypeAudio uint64 = 2
)

// Codec IDs of the WebM profile.
const (
	CodecVP8    = "V_VP8"
	CodecVP9    = "V_VP9"
	CodecAV1    = "V_AV1"
	CodecOpus   = "A_OPUS"
	CodecVorbis = "A_VORBIS"
)

// DocTypeWebM is the EBML doc type written by the Muxer. The Parser
// also accepts DocTypeMatroska, of which WebM is a subset.
const (
	DocTypeWebM     = "webm"
	DocTypeMatroska = "matroska"
)
