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

// nativeCodec is a no-op Decoder/Encoder for transfer syntaxes that carry
// pixel data uncompressed: the bytes already are the native frame.
type nativeCodec struct{ uid string }

func (c nativeCodec) Decode(fragment []byte, info *PixelInfo) ([]byte, error) { return fragment, nil }
func (c nativeCodec) Encode(native []byte, info *PixelInfo) ([]byte, error)   { return native, nil }
func (c nativeCodec) TransferSyntaxUID() string                              { return c.uid }

func init() {
	for _, uid := range []string{
		"1.2.840.10008.1.2",
		"1.2.840.10008.1.2.1",
		"1.2.840.10008.1.2.2",
		"1.2.840.10008.1.2.1.99",
		"1.2.840.10008.1.2.1.98",
	} {
		c := nativeCodec{uid: uid}
		RegisterDecoder(uid, c)
		RegisterEncoder(uid, c)
	}
}
