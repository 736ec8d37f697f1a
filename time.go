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

// Block and cluster times are stored in timecode-scale ticks. The
// package boundary always speaks nanoseconds.

func nsToTicks(ns int64, scale uint64) int64 {
	if scale == 0 {
		scale = DefaultTimecodeScale
	}
	return ns / int64(scale)
}

func ticksToNs(ticks int64, scale uint64) int64 {
	if scale == 0 {
		scale = DefaultTimecodeScale
	}
	return ticks * int64(scale)
}

func ticksToSeconds(ticks float64, scale uint64) float64 {
	if scale == 0 {
		scale = DefaultTimecodeScale
	}
	return ticks * float64(scale) / 1e9
}
