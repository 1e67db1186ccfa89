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

import "io"

// ParseOption configures Parse; every ParseOption is a ReaderOption, kept as
// a distinct named type so Parse's signature doesn't expose Reader's option
// plumbing directly.
type ParseOption = ReaderOption

// Parse reads a complete P10 stream from r and materializes it into a
// *DataSet, wiring a Reader straight into a Builder for callers that want
// the whole-file convenience of the teacher's original Parse/Construct
// pair rather than driving the token machine themselves.
func Parse(r io.Reader, opts ...ParseOption) (*DataSet, error) {
	reader := NewReader(opts...)
	builder := NewBuilder()

	buf := make([]byte, 64*1024)
	for {
		n, readErr := r.Read(buf)
		isFinal := readErr == io.EOF
		if n > 0 {
			if err := reader.WriteBytes(append([]byte(nil), buf[:n]...), isFinal); err != nil {
				return nil, err
			}
		} else if isFinal {
			if err := reader.WriteBytes(nil, true); err != nil {
				return nil, err
			}
		}

		tokens, err := reader.ReadTokens()
		if err != nil {
			builder.ForceEnd()
			return nil, err
		}
		for _, tok := range tokens {
			if err := builder.AddToken(tok); err != nil {
				builder.ForceEnd()
				return nil, err
			}
			if _, ok := tok.(EndToken); ok {
				return builder.Result(), nil
			}
		}

		if readErr != nil && readErr != io.EOF {
			return nil, &FileError{When: "reading input", Details: readErr.Error()}
		}
		if isFinal {
			return builder.ForceEnd(), nil
		}
	}
}
