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

// overlayBlendKernel is the fixed 3x3 blend weighting applied around each
// set overlay bit (spec.md §6): full strength at the center, fading to the
// corners.
var overlayBlendKernel = [3][3]float64{
	{1.0 / 8, 1.0 / 4, 1.0 / 8},
	{1.0 / 4, 1, 1.0 / 4},
	{1.0 / 8, 1.0 / 4, 1.0 / 8},
}

// RenderOverlayRGB8 blends color into dest (an interleaved RGB8 image of
// the given width/height) at every set bit of overlay, using the fixed 3x3
// kernel. dest is modified in place.
func RenderOverlayRGB8(dest []byte, width, height int, overlay *dicom.OverlayPlane, color [3]byte) {
	bit := func(x, y int) bool {
		if x < 0 || y < 0 || x >= int(overlay.Columns) || y >= int(overlay.Rows) {
			return false
		}
		idx := y*int(overlay.Columns) + x
		return idx/8 < len(overlay.Data) && (overlay.Data[idx/8]>>uint(idx%8))&1 != 0
	}

	originX, originY := int(overlay.OriginCol)-1, int(overlay.OriginRow)-1
	for oy := 0; oy < int(overlay.Rows); oy++ {
		for ox := 0; ox < int(overlay.Columns); ox++ {
			if !bit(ox, oy) {
				continue
			}
			for ky := -1; ky <= 1; ky++ {
				for kx := -1; kx <= 1; kx++ {
					px, py := originX+ox+kx, originY+oy+ky
					if px < 0 || py < 0 || px >= width || py >= height {
						continue
					}
					w := overlayBlendKernel[ky+1][kx+1]
					di := (py*width + px) * 3
					for c := 0; c < 3; c++ {
						blended := float64(dest[di+c])*(1-w) + float64(color[c])*w
						dest[di+c] = clamp8(blended)
					}
				}
			}
		}
	}
}

// RenderOverlayRGB16 is RenderOverlayRGB8's 16-bit counterpart; dest holds
// interleaved RGB samples two bytes each, little-endian.
func RenderOverlayRGB16(dest []byte, width, height int, overlay *dicom.OverlayPlane, color [3]uint16) {
	bit := func(x, y int) bool {
		if x < 0 || y < 0 || x >= int(overlay.Columns) || y >= int(overlay.Rows) {
			return false
		}
		idx := y*int(overlay.Columns) + x
		return idx/8 < len(overlay.Data) && (overlay.Data[idx/8]>>uint(idx%8))&1 != 0
	}

	originX, originY := int(overlay.OriginCol)-1, int(overlay.OriginRow)-1
	for oy := 0; oy < int(overlay.Rows); oy++ {
		for ox := 0; ox < int(overlay.Columns); ox++ {
			if !bit(ox, oy) {
				continue
			}
			for ky := -1; ky <= 1; ky++ {
				for kx := -1; kx <= 1; kx++ {
					px, py := originX+ox+kx, originY+oy+ky
					if px < 0 || py < 0 || px >= width || py >= height {
						continue
					}
					w := overlayBlendKernel[ky+1][kx+1]
					di := (py*width + px) * 6
					for c := 0; c < 3; c++ {
						existing := uint16(dest[di+c*2]) | uint16(dest[di+c*2+1])<<8
						blended := float64(existing)*(1-w) + float64(color[c])*w
						v := clamp16(blended)
						dest[di+c*2] = byte(v)
						dest[di+c*2+1] = byte(v >> 8)
					}
				}
			}
		}
	}
}

func clamp16(v float64) uint16 {
	if v < 0 {
		return 0
	}
	if v > 65535 {
		return 65535
	}
	return uint16(v + 0.5)
}
