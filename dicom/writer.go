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

import (
	"bytes"
	"compress/flate"
	"encoding/binary"
)

// WriterOption configures a Writer at construction time.
type WriterOption func(*writerConfig)

type writerConfig struct {
	deflateLevel int
}

func defaultWriterConfig() writerConfig {
	return writerConfig{deflateLevel: flate.DefaultCompression}
}

// WithDeflateLevel sets the compress/flate level used once a deflated
// transfer syntax is selected; see compress/flate's BestSpeed..BestCompression
// constants.
func WithDeflateLevel(level int) WriterOption {
	return func(c *writerConfig) { c.deflateLevel = level }
}

// Writer is the symmetric counterpart of Reader (spec.md §4, C6): it accepts
// a Token at a time via WriteToken and accumulates serialized P10 bytes,
// retrievable with Bytes. WriteToken returns only an error; a non-nil error
// is terminal.
type Writer struct {
	cfg writerConfig
	out bytes.Buffer

	ts      *TransferSyntax
	stack   []writerFrame
	deflate *flate.Writer
	done    bool
}

type writerFrame struct {
	kind      containerKind
	undefined bool
}

// NewWriter constructs a Writer ready to accept Tokens via WriteToken.
func NewWriter(opts ...WriterOption) *Writer {
	cfg := defaultWriterConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Writer{cfg: cfg, stack: []writerFrame{{kind: containerRoot, undefined: true}}}
}

// Bytes returns and clears the bytes accumulated since the last call to
// Bytes, so a caller can drain output incrementally rather than holding the
// whole serialized stream in memory.
func (w *Writer) Bytes() []byte {
	b := append([]byte(nil), w.out.Bytes()...)
	w.out.Reset()
	return b
}

func (w *Writer) top() *writerFrame {
	return &w.stack[len(w.stack)-1]
}

func (w *Writer) write(p []byte) error {
	if w.deflate != nil {
		_, err := w.deflate.Write(p)
		return err
	}
	_, err := w.out.Write(p)
	return err
}

// WriteToken serializes one Token, appending its wire bytes to the internal
// buffer (retrieved with Bytes). Calling WriteToken after an EndToken
// returns WriteAfterCompletionError.
func (w *Writer) WriteToken(tok Token) error {
	if w.done {
		return &WriteAfterCompletionError{When: "writing token after EndToken"}
	}
	switch t := tok.(type) {
	case FilePreambleAndDICMPrefixToken:
		if err := w.write(t.Preamble[:]); err != nil {
			return err
		}
		return w.write([]byte("DICM"))
	case FileMetaInformationToken:
		return w.writeFMI(t)
	case DataElementHeaderToken:
		return w.writeHeader(t.Tag, t.VR, t.Length)
	case DataElementValueBytesToken:
		if w.ts != nil && w.ts.byteOrder() == binary.BigEndian {
			return w.write(swapByteOrder(t.Bytes, valueByteSwapWidth(t.VR)))
		}
		return w.write(t.Bytes)
	case SequenceStartToken:
		if err := w.writeHeader(t.Tag, t.VR, t.Length); err != nil {
			return err
		}
		w.stack = append(w.stack, writerFrame{kind: containerSequence, undefined: t.Length == UndefinedLength})
		return nil
	case SequenceDelimiterToken:
		f := *w.top()
		w.stack = w.stack[:len(w.stack)-1]
		if f.undefined {
			return w.writeDelimiter(TagSequenceDelimitationItem)
		}
		return nil
	case SequenceItemStartToken:
		if err := w.writeItemHeader(t.Length); err != nil {
			return err
		}
		w.stack = append(w.stack, writerFrame{kind: containerItem, undefined: t.Length == UndefinedLength})
		return nil
	case SequenceItemDelimiterToken:
		f := *w.top()
		w.stack = w.stack[:len(w.stack)-1]
		if f.undefined {
			return w.writeDelimiter(TagItemDelimitationItem)
		}
		return nil
	case PixelDataItemToken:
		if err := w.writeItemHeader(uint32(len(t.Bytes))); err != nil {
			return err
		}
		return w.write(t.Bytes)
	case EndToken:
		return w.finish()
	default:
		return &TokenStreamInvalidError{When: "writing unrecognized token", Token: tok}
	}
}

func (w *Writer) finish() error {
	if w.deflate != nil {
		if err := w.deflate.Close(); err != nil {
			return err
		}
		w.deflate = nil
	}
	w.done = true
	return nil
}

// writeFMI serializes the File Meta Information group, always Explicit VR
// Little Endian regardless of the data set's own transfer syntax, computing
// and writing the Group Length element (0002,0000) before the rest. It also
// activates this Writer's data set transfer syntax and, if it is a deflated
// one, switches subsequent writes through a flate.Writer.
func (w *Writer) writeFMI(t FileMetaInformationToken) error {
	var body bytes.Buffer
	for _, tag := range t.DataSet.Tags() {
		if tag == TagFileMetaInformationGroupLength {
			continue
		}
		v, _ := t.DataSet.Get(tag)
		if err := writeElementTo(&body, binary.LittleEndian, false, tag, v); err != nil {
			return err
		}
	}

	glValue, err := NewBinaryValue(ULVR, make([]byte, 4))
	if err != nil {
		return err
	}
	binary.LittleEndian.PutUint32(glValue.Bytes, uint32(body.Len()))
	if err := writeElementTo(&w.out, binary.LittleEndian, false, TagFileMetaInformationGroupLength, glValue); err != nil {
		return err
	}
	if _, err := w.out.Write(body.Bytes()); err != nil {
		return err
	}

	w.ts = t.TransferSyntax
	if w.ts.Deflated {
		w.deflate = flate.NewWriter(&w.out, w.cfg.deflateLevel)
	}
	return nil
}

// writeElementTo serializes tag/value as one complete Explicit VR data
// element (header + value bytes) directly to dst, used for the File Meta
// Information group which is never implicit VR.
func writeElementTo(dst *bytes.Buffer, order binary.ByteOrder, implicit bool, tag Tag, v *Value) error {
	var tagBuf [4]byte
	order.PutUint16(tagBuf[0:2], tag.Group)
	order.PutUint16(tagBuf[2:4], tag.Element)
	dst.Write(tagBuf[:])

	value := v.Bytes
	if implicit {
		var lb [4]byte
		order.PutUint32(lb[:], uint32(len(value)))
		dst.Write(lb[:])
		dst.Write(value)
		return nil
	}

	dst.WriteString(v.VR.Name)
	if v.VR.LongLengthField {
		dst.Write([]byte{0, 0})
		var lb [4]byte
		order.PutUint32(lb[:], uint32(len(value)))
		dst.Write(lb[:])
	} else {
		var lb [2]byte
		order.PutUint16(lb[:], uint16(len(value)))
		dst.Write(lb[:])
	}
	dst.Write(value)
	return nil
}

// writeHeader serializes one data element header (tag, VR if explicit, and
// length) in the data set's own transfer syntax.
func (w *Writer) writeHeader(tag Tag, vr *VR, length uint32) error {
	order := w.ts.byteOrder()
	var tagBuf [4]byte
	order.PutUint16(tagBuf[0:2], tag.Group)
	order.PutUint16(tagBuf[2:4], tag.Element)
	if err := w.write(tagBuf[:]); err != nil {
		return err
	}

	if w.ts.Implicit {
		var lb [4]byte
		order.PutUint32(lb[:], length)
		return w.write(lb[:])
	}

	if err := w.write([]byte(vr.Name)); err != nil {
		return err
	}
	if vr.LongLengthField {
		if err := w.write([]byte{0, 0}); err != nil {
			return err
		}
		var lb [4]byte
		order.PutUint32(lb[:], length)
		return w.write(lb[:])
	}
	var lb [2]byte
	order.PutUint16(lb[:], uint16(length))
	return w.write(lb[:])
}

// writeItemHeader serializes an Item tag (FFFE,E000) and its length,
// independent of implicit/explicit VR mode (items never carry a VR).
func (w *Writer) writeItemHeader(length uint32) error {
	order := w.ts.byteOrder()
	var buf [8]byte
	order.PutUint16(buf[0:2], TagItem.Group)
	order.PutUint16(buf[2:4], TagItem.Element)
	order.PutUint32(buf[4:8], length)
	return w.write(buf[:])
}

// writeDelimiter serializes a delimiter tag with a zero length field, used
// to close an undefined-length sequence or item.
func (w *Writer) writeDelimiter(tag Tag) error {
	order := w.ts.byteOrder()
	var buf [8]byte
	order.PutUint16(buf[0:2], tag.Group)
	order.PutUint16(buf[2:4], tag.Element)
	order.PutUint32(buf[4:8], 0)
	return w.write(buf[:])
}
