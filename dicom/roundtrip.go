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

import "bytes"

// RoundTrip parses a complete P10 byte stream and immediately re-serializes
// it under its own transfer syntax, exercising the full
// Reader->Builder->Writer chain in one call. It is used by integration
// tests to check that reading and rewriting a file is lossless (spec.md
// §8's round-trip property) and by callers who want to normalize a file's
// encoding (e.g. re-pad odd-length values, drop group lengths) without
// otherwise changing it.
func RoundTrip(data []byte) ([]byte, error) {
	reader := NewReader()
	builder := NewBuilder()

	if err := reader.WriteBytes(data, true); err != nil {
		return nil, err
	}

	for {
		tokens, err := reader.ReadTokens()
		if err != nil {
			builder.ForceEnd()
			return nil, err
		}
		done := false
		for _, tok := range tokens {
			if err := builder.AddToken(tok); err != nil {
				builder.ForceEnd()
				return nil, err
			}
			if _, ok := tok.(EndToken); ok {
				done = true
			}
		}
		if done || len(tokens) == 0 {
			break
		}
	}

	fileMeta, ts := builder.FileMetaInformation()
	if fileMeta == nil || ts == nil {
		return nil, &DataInvalidError{When: "round-tripping P10 stream", Details: "no file meta information was read"}
	}
	ds := builder.Result()

	var out bytes.Buffer
	if err := Construct(&out, fileMeta, ds, ts); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}
