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
	"bufio"
	"compress/flate"
	"errors"
	"io"
)

// errNeedMoreData is the sentinel a queueReader returns from Read when its
// queue is empty and not yet final; byteStream translates it back into
// DataRequiredError at the point a caller actually asked for bytes.
var errNeedMoreData = errors.New("dicom: more data required")

// byteStream is the backpressure-aware chunk queue of spec.md §4 (C4): bytes
// arrive via WriteBytes in arbitrarily sized pieces and are consumed by Peek
// and ReadN, which report DataRequiredError instead of blocking when the
// queue does not yet hold enough bytes. It owns an optional streaming
// inflate context for the deflated transfer syntaxes.
//
// Chunks are retained as Go byte slices without copying; Go's garbage
// collector keeps a chunk's backing array alive for as long as any slice
// into it is referenced, which gives byteStream the cheap structural sharing
// spec.md §3 calls for without an explicit reference count.
type byteStream struct {
	chunks   [][]byte
	offset   int // offset into chunks[0]
	final    bool
	consumed int64

	inflate *inflateStream
}

func newByteStream() *byteStream {
	return &byteStream{}
}

// WriteBytes appends a chunk of input. isFinal marks that no more bytes will
// ever follow, after which a short read becomes DataEndedUnexpectedlyError
// instead of DataRequiredError.
func (bs *byteStream) WriteBytes(chunk []byte, isFinal bool) error {
	if bs.final {
		return &WriteAfterCompletionError{When: "writing bytes to a completed byte stream"}
	}
	if len(chunk) > 0 {
		bs.chunks = append(bs.chunks, chunk)
	}
	bs.final = isFinal
	return nil
}

// startInflate begins streaming zlib/raw-DEFLATE inflation of all bytes
// written from this point on, used once the File Meta Information has
// declared a deflated transfer syntax. Matches the teacher's choice of
// compress/flate (raw DEFLATE, no zlib header, per the DICOM standard).
func (bs *byteStream) startInflate() {
	bs.inflate = newInflateStream(bs)
}

// BytesRead returns the number of bytes consumed so far (post-inflate, if
// active), used to compute token offsets and endsAt bounds.
func (bs *byteStream) BytesRead() int64 {
	return bs.consumed
}

// Peek returns the next n bytes without consuming them. It returns a
// DataRequiredError when fewer than n bytes are currently available and the
// stream is not final.
func (bs *byteStream) Peek(n int) ([]byte, error) {
	if bs.inflate != nil {
		return bs.inflate.peek(n)
	}
	return bs.peekRaw(n)
}

// ReadN consumes and returns exactly n bytes.
func (bs *byteStream) ReadN(n int) ([]byte, error) {
	if bs.inflate != nil {
		return bs.inflate.readN(n)
	}
	b, err := bs.peekRaw(n)
	if err != nil {
		return nil, err
	}
	bs.discardRaw(n)
	return b, nil
}

// Discard consumes and drops n bytes (used for trailing padding and rogue
// delimiters that are silently tolerated per spec.md §7).
func (bs *byteStream) Discard(n int) error {
	if _, err := bs.ReadN(n); err != nil {
		return err
	}
	return nil
}

// Exhausted is true when the stream is final and no bytes remain buffered.
func (bs *byteStream) Exhausted() bool {
	if bs.inflate != nil {
		return bs.inflate.exhausted()
	}
	return bs.final && bs.availableRaw() == 0
}

func (bs *byteStream) availableRaw() int {
	total := -bs.offset
	for _, c := range bs.chunks {
		total += len(c)
	}
	if total < 0 {
		total = 0
	}
	return total
}

func (bs *byteStream) peekRaw(n int) ([]byte, error) {
	if bs.availableRaw() < n {
		if bs.final {
			return nil, &DataEndedUnexpectedlyError{When: "reading from byte stream"}
		}
		return nil, &DataRequiredError{When: "reading from byte stream"}
	}
	if n == 0 {
		return nil, nil
	}
	// Fast path: the first chunk alone satisfies the request.
	if len(bs.chunks) > 0 && len(bs.chunks[0])-bs.offset >= n {
		return bs.chunks[0][bs.offset : bs.offset+n], nil
	}
	out := make([]byte, 0, n)
	remaining := n
	off := bs.offset
	for _, c := range bs.chunks {
		avail := c[off:]
		if len(avail) >= remaining {
			out = append(out, avail[:remaining]...)
			remaining = 0
			break
		}
		out = append(out, avail...)
		remaining -= len(avail)
		off = 0
	}
	return out, nil
}

func (bs *byteStream) discardRaw(n int) {
	bs.consumed += int64(n)
	for n > 0 && len(bs.chunks) > 0 {
		avail := len(bs.chunks[0]) - bs.offset
		if avail > n {
			bs.offset += n
			n = 0
		} else {
			n -= avail
			bs.chunks = bs.chunks[1:]
			bs.offset = 0
		}
	}
}

// queueReader is a blocking-free io.Reader adapter over byteStream's raw
// chunk queue, used as the source for the deflate inflater. It returns
// errNeedMoreData instead of blocking when the queue is temporarily empty.
type queueReader struct {
	bs *byteStream
}

func (qr *queueReader) Read(p []byte) (int, error) {
	avail := qr.bs.availableRaw()
	if avail == 0 {
		if qr.bs.final {
			return 0, io.EOF
		}
		return 0, errNeedMoreData
	}
	n := len(p)
	if n > avail {
		n = avail
	}
	b, err := qr.bs.peekRaw(n)
	if err != nil {
		return 0, err
	}
	copy(p, b)
	qr.bs.discardRaw(n)
	return n, nil
}

// inflateStream wraps a compress/flate reader over a byteStream's raw queue
// and buffers decompressed output so Peek/ReadN can be satisfied without
// re-inflating.
type inflateStream struct {
	bs     *byteStream
	source *queueReader
	reader io.Reader
	out    []byte
	eof    bool
}

func newInflateStream(bs *byteStream) *inflateStream {
	qr := &queueReader{bs: bs}
	return &inflateStream{bs: bs, source: qr, reader: flate.NewReader(bufio.NewReader(qr))}
}

func (is *inflateStream) fill(n int) error {
	for len(is.out) < n && !is.eof {
		buf := make([]byte, 4096)
		got, err := is.reader.Read(buf)
		if got > 0 {
			is.out = append(is.out, buf[:got]...)
		}
		if err == nil {
			continue
		}
		if err == io.EOF {
			is.eof = true
			return nil
		}
		if errors.Is(err, errNeedMoreData) {
			return &DataRequiredError{When: "inflating deflated transfer syntax"}
		}
		return &DataInvalidError{When: "inflating deflated transfer syntax", Details: err.Error()}
	}
	return nil
}

func (is *inflateStream) peek(n int) ([]byte, error) {
	if err := is.fill(n); err != nil {
		return nil, err
	}
	if len(is.out) < n {
		return nil, &DataEndedUnexpectedlyError{When: "reading inflated bytes"}
	}
	return is.out[:n], nil
}

func (is *inflateStream) readN(n int) ([]byte, error) {
	b, err := is.peek(n)
	if err != nil {
		return nil, err
	}
	out := append([]byte(nil), b...)
	is.out = is.out[n:]
	is.bs.consumed += int64(n)
	return out, nil
}

func (is *inflateStream) exhausted() bool {
	return is.eof && len(is.out) == 0
}
