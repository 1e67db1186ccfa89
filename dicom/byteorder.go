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

package dicom

// valueByteSwapWidth returns the element width, in bytes, that a value of vr
// must be byte-swapped in when crossing between the wire's transfer-syntax
// byte order and Value.Bytes' fixed little-endian storage. A width of 1
// means no swap applies: string, sequence, and byte-oriented binary VRs
// (OB/UN) carry no multi-byte fields.
func valueByteSwapWidth(vr *VR) int {
	switch vr {
	case SSVR, USVR, OWVR, ATVR:
		return 2
	case SLVR, ULVR, FLVR, OLVR, OFVR:
		return 4
	case SVVR, UVVR, FDVR, ODVR, OVVR:
		return 8
	default:
		return 1
	}
}

// swapByteOrder returns a copy of data with every width-byte unit reversed.
// data is never mutated in place: it may alias a chunk the caller still
// owns. Trailing bytes that don't fill a whole unit are copied verbatim,
// which can only happen for a malformed element. A width of 1 or less
// returns data unchanged.
func swapByteOrder(data []byte, width int) []byte {
	if width <= 1 || len(data) == 0 {
		return data
	}
	out := make([]byte, len(data))
	i := 0
	for ; i+width <= len(data); i += width {
		for j := 0; j < width; j++ {
			out[i+j] = data[i+width-1-j]
		}
	}
	copy(out[i:], data[i:])
	return out
}
