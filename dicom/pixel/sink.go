// Copyright 2018 Google LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package pixel

import "github.com/dcmfx/dcmfx-sub000/dicom"

// FrameSink receives one extracted frame at a time; returning an error
// aborts WriteFrames.
type FrameSink func(Frame) error

// WriteFrames extracts all of ds's pixel data frames with ExtractFrames,
// then passes each one to sink in order, stopping at the first error --
// useful for writing one file per frame, or sending frames to a network
// socket, without the caller handling the []Frame itself.
func WriteFrames(ds *dicom.DataSet, sink FrameSink) error {
	frames, err := ExtractFrames(ds)
	if err != nil {
		return err
	}
	for _, frame := range frames {
		if err := sink(frame); err != nil {
			return err
		}
	}
	return nil
}

// FrameSequence is the shape a caller-supplied video muxer (e.g. an MP4
// encoder) consumes: an ordered, indexable sequence of frames each paired
// with a display duration. Producing actual encoded video bytes is out of
// scope; this interface only captures the sequence shape so such a muxer
// can be wired against extracted frames without this package depending on
// any particular encoder.
type FrameSequence interface {
	Len() int
	FrameAt(index int) Frame
	DurationAt(index int) float64 // seconds
}

// cineFrameSequence adapts a []Frame plus a constant or per-frame duration
// (from CineModule.EffectiveFrameRate, or FrameTimeVector) to FrameSequence.
type cineFrameSequence struct {
	frames    []Frame
	durations []float64
}

// NewCineFrameSequence builds a FrameSequence from extracted frames and the
// Multi-frame Module's Cine timing: a constant frame period when only a
// frame rate is known, or an explicit per-frame duration vector.
func NewCineFrameSequence(frames []Frame, cine dicom.CineModule) FrameSequence {
	durations := make([]float64, len(frames))
	switch {
	case len(cine.FrameTimeVector) == len(frames):
		for i, ms := range cine.FrameTimeVector {
			durations[i] = ms / 1000
		}
	default:
		if rate, ok := cine.EffectiveFrameRate(); ok && rate > 0 {
			period := 1 / rate
			for i := range durations {
				durations[i] = period
			}
		}
	}
	return &cineFrameSequence{frames: frames, durations: durations}
}

func (s *cineFrameSequence) Len() int                    { return len(s.frames) }
func (s *cineFrameSequence) FrameAt(index int) Frame      { return s.frames[index] }
func (s *cineFrameSequence) DurationAt(index int) float64 { return s.durations[index] }
