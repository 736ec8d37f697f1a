package mediainfo_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/at-wat/ebml-go"
	"github.com/google/go-cmp/cmp"

	webm "github.com/seqsense/webmcontainer"
	"github.com/seqsense/webmcontainer/mediainfo"
	"github.com/seqsense/webmcontainer/webmtest"
)

func buildFixture(t *testing.T) []byte {
	t.Helper()

	m, err := webm.NewMuxer(
		webm.WithWritingApp("mediainfo-test"),
		webm.WithTitle("fixture"),
	)
	if err != nil {
		t.Fatalf("Failed to create muxer: %v", err)
	}
	video, err := m.AddVideoTrack(320, 240, "V_VP8")
	if err != nil {
		t.Fatalf("Failed to add video track: %v", err)
	}
	audio, err := m.AddAudioTrack(48000, 2, "A_OPUS")
	if err != nil {
		t.Fatalf("Failed to add audio track: %v", err)
	}

	if err := m.WriteVideoFrame(video, []byte{0x01, 0x02, 0x03}, 0, true); err != nil {
		t.Fatalf("Failed to write video frame: %v", err)
	}
	if err := m.WriteAudioFrame(audio, []byte{0xF8, 0x00}, 0); err != nil {
		t.Fatalf("Failed to write audio frame: %v", err)
	}
	if err := m.WriteAudioFrame(audio, []byte{0xF8, 0x01}, 20000000); err != nil {
		t.Fatalf("Failed to write audio frame: %v", err)
	}
	if err := m.WriteVideoFrame(video, []byte{0x04, 0x05, 0x06, 0x07}, 40000000, false); err != nil {
		t.Fatalf("Failed to write video frame: %v", err)
	}
	if err := m.WriteVideoFrame(video, []byte{0x08, 0x09, 0x0A, 0x0B, 0x0C}, 80000000, false); err != nil {
		t.Fatalf("Failed to write video frame: %v", err)
	}

	data, err := m.Finalize()
	if err != nil {
		t.Fatalf("Failed to finalize: %v", err)
	}
	return data
}

func TestInspect(t *testing.T) {
	r, err := mediainfo.Inspect(buildFixture(t))
	if err != nil {
		t.Fatalf("Failed to inspect: %v", err)
	}

	expected := &mediainfo.Report{
		DurationSeconds: 0.08,
		TimecodeScale:   1000000,
		MuxingApp:       "webmcontainer",
		WritingApp:      "mediainfo-test",
		Title:           "fixture",
		Tracks: []mediainfo.TrackReport{
			{
				Number:           1,
				Type:             "video",
				CodecID:          "V_VP8",
				Frames:           3,
				Keyframes:        1,
				Bytes:            12,
				FirstTimestampNs: 0,
				LastTimestampNs:  80000000,
			},
			{
				Number:           2,
				Type:             "audio",
				CodecID:          "A_OPUS",
				Frames:           2,
				Keyframes:        0,
				Bytes:            4,
				FirstTimestampNs: 0,
				LastTimestampNs:  20000000,
			},
		},
		Clusters:      1,
		CuePoints:     1,
		SkippedFrames: 0,
	}
	if diff := cmp.Diff(expected, r); diff != "" {
		t.Errorf("Unexpected report: %s", diff)
	}
}

func TestInspect_SubtitleTrack(t *testing.T) {
	// Tracks that are neither video nor audio have no frame reader.
	// They still get a report row, from the track entry alone.
	doc := &webmtest.Container{
		Header: webmtest.Header(),
		Segment: webmtest.Segment{
			Info: webmtest.Info{TimecodeScale: 1000000},
			Tracks: webmtest.Tracks{TrackEntry: []webmtest.TrackEntry{
				webmtest.VideoTrack(1, 320, 240, webm.CodecVP8),
				{TrackNumber: 2, TrackUID: 2, TrackType: 17, CodecID: "S_TEXT/UTF8"},
			}},
			Cluster: []webmtest.Cluster{{
				Timecode: 0,
				SimpleBlock: []ebml.Block{
					{TrackNumber: 1, Timecode: 0, Keyframe: true, Data: [][]byte{{0x01, 0x02}}},
					{TrackNumber: 2, Timecode: 0, Data: [][]byte{[]byte("hi")}},
				},
			}},
		},
	}
	data, err := webmtest.Marshal(doc)
	if err != nil {
		t.Fatalf("Failed to marshal fixture: %v", err)
	}

	r, err := mediainfo.Inspect(data)
	if err != nil {
		t.Fatalf("Failed to inspect: %v", err)
	}
	expected := []mediainfo.TrackReport{
		{
			Number:    1,
			Type:      "video",
			CodecID:   webm.CodecVP8,
			Frames:    1,
			Keyframes: 1,
			Bytes:     2,
		},
		{
			Number:  2,
			Type:    "type 17",
			CodecID: "S_TEXT/UTF8",
		},
	}
	if diff := cmp.Diff(expected, r.Tracks); diff != "" {
		t.Errorf("Unexpected tracks: %s", diff)
	}
	if r.SkippedFrames != 0 {
		t.Errorf("Expected no skipped frames, got %d", r.SkippedFrames)
	}
}

func TestInspect_InvalidData(t *testing.T) {
	_, err := mediainfo.Inspect([]byte("RIFF not webm at all"))
	if err == nil {
		t.Fatal("Expected an error for non-WebM data")
	}
	if !errors.Is(err, webm.ErrInvalidFile) {
		t.Errorf("Expected ErrInvalidFile, got: '%v'", err)
	}
}

func TestReport_String(t *testing.T) {
	r, err := mediainfo.Inspect(buildFixture(t))
	if err != nil {
		t.Fatalf("Failed to inspect: %v", err)
	}
	s := r.String()
	for _, want := range []string{
		"duration: 0.080s (timecode scale 1000000ns)",
		"title: fixture",
		"writing app: mediainfo-test",
		"clusters: 1, cue points: 1, skipped frames: 0",
		"track 1: video V_VP8 frames:3 keyframes:1 bytes:12 first:0ms last:80ms",
		"track 2: audio A_OPUS frames:2 keyframes:0 bytes:4 first:0ms last:20ms",
	} {
		if !strings.Contains(s, want) {
			t.Errorf("Expected report to contain %q, got:\n%s", want, s)
		}
	}
}
