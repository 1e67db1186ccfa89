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

import (
	"testing"

	"github.com/dcmfx/dcmfx-sub000/dicom"
	"github.com/stretchr/testify/assert"
)

func TestRenderOverlayRGB8BlendsAtSetBit(t *testing.T) {
	width, height := 3, 3
	dest := make([]byte, width*height*3) // black background

	overlay := &dicom.OverlayPlane{
		Rows: 1, Columns: 1,
		OriginRow: 2, OriginCol: 2, // 1-based, maps to (1,1)
		Data: []byte{0x01},
	}

	RenderOverlayRGB8(dest, width, height, overlay, [3]byte{255, 255, 255})

	center := (1*width + 1) * 3
	assert.Equal(t, byte(255), dest[center], "center pixel should be full overlay color")

	corner := (0*width + 0) * 3
	assert.Equal(t, byte(32), dest[corner], "corner pixel should receive the 1/8 kernel weight")
}

func TestRenderOverlayRGB8IgnoresUnsetBits(t *testing.T) {
	width, height := 2, 2
	dest := make([]byte, width*height*3)
	overlay := &dicom.OverlayPlane{Rows: 2, Columns: 2, OriginRow: 1, OriginCol: 1, Data: []byte{0x00}}

	RenderOverlayRGB8(dest, width, height, overlay, [3]byte{255, 0, 0})

	for _, b := range dest {
		assert.Equal(t, byte(0), b)
	}
}

func TestRenderOverlayRGB16BlendsAtSetBit(t *testing.T) {
	width, height := 3, 3
	dest := make([]byte, width*height*6)

	overlay := &dicom.OverlayPlane{
		Rows: 1, Columns: 1,
		OriginRow: 2, OriginCol: 2,
		Data: []byte{0x01},
	}

	RenderOverlayRGB16(dest, width, height, overlay, [3]uint16{65535, 65535, 65535})

	centerIdx := (1*width + 1) * 6
	got := uint16(dest[centerIdx]) | uint16(dest[centerIdx+1])<<8
	assert.Equal(t, uint16(65535), got)
}
