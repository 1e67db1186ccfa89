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
	"encoding/binary"
)

// ReaderOption configures a Reader at construction time.
type ReaderOption func(*readerConfig)

type readerConfig struct {
	maxTokenSize    int
	requirePreamble bool
	maxSequenceDepth int
}

func defaultReaderConfig() readerConfig {
	return readerConfig{
		maxTokenSize:     256 * 1024,
		requirePreamble:  true,
		maxSequenceDepth: 64,
	}
}

// WithMaxTokenSize bounds how many bytes of a single data element value
// ReadTokens will return in one DataElementValueBytesToken; larger values
// are split across multiple tokens, the last one marked Final.
func WithMaxTokenSize(n int) ReaderOption {
	return func(c *readerConfig) { c.maxTokenSize = n }
}

// WithoutFilePreamble configures the Reader to expect a bare File Meta
// Information group with no 128 byte preamble or "DICM" prefix, as used over
// some network associations rather than files.
func WithoutFilePreamble() ReaderOption {
	return func(c *readerConfig) { c.requirePreamble = false }
}

// WithMaxSequenceDepth bounds nested sequence/item depth, guarding against
// pathological or malicious input; exceeding it raises MaximumExceededError.
func WithMaxSequenceDepth(n int) ReaderOption {
	return func(c *readerConfig) { c.maxSequenceDepth = n }
}

type readerPhase int

const (
	phasePreamble readerPhase = iota
	phaseFMIGroupLength
	phaseFMIElement
	phaseElement
	phaseEncapsulatedFragment
	phaseDone
)

type containerKind int

const (
	containerRoot containerKind = iota
	containerSequence
	containerItem
	containerEncapsulatedPixelData
)

// frame tracks one level of sequence/item nesting so the reader can tell
// when a length-delimited container has ended and can render Path entries
// for tokens produced inside it.
type frame struct {
	kind       containerKind
	tag        Tag
	vr         *VR
	undefined  bool
	endOffset  int64 // only meaningful when !undefined
	itemIndex  int
	clarifying *ClarifyingElements // only set on containerRoot and containerItem frames
}

// Reader implements the push-based P10 parser of spec.md §4 (C5): bytes
// arrive via WriteBytes and Tokens emerge via ReadTokens, with
// DataRequiredError signalling "call WriteBytes again" rather than blocking.
type Reader struct {
	cfg readerConfig
	bs  *byteStream

	phase readerPhase
	stack []frame

	ts             *TransferSyntax
	fmi            *DataSet
	fmiGroupLength uint32
	fmiStartOffset int64

	// pending holds Tokens already computed but not yet returned, used by
	// readElementValue to split one element into a header token plus one or
	// more chunked value tokens while keeping step's one-Token-per-call
	// contract.
	pending []Token

	done bool
}

// NewReader constructs a Reader ready to accept bytes via WriteBytes.
func NewReader(opts ...ReaderOption) *Reader {
	cfg := defaultReaderConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	r := &Reader{cfg: cfg, bs: newByteStream(), fmi: NewDataSet()}
	r.stack = []frame{{kind: containerRoot, undefined: true, clarifying: newClarifyingElements()}}
	if !cfg.requirePreamble {
		r.phase = phaseFMIGroupLength
	}
	return r
}

// WriteBytes appends input bytes. isFinal marks end of input; a subsequent
// short read surfaces as DataEndedUnexpectedlyError rather than
// DataRequiredError.
func (r *Reader) WriteBytes(chunk []byte, isFinal bool) error {
	return r.bs.WriteBytes(chunk, isFinal)
}

// ReadTokens drains as many Tokens as the currently buffered bytes allow. It
// returns a (possibly empty) slice and a nil error when it stops only
// because more input is required; the caller should WriteBytes more data
// and call ReadTokens again. Any other error is terminal for this Reader.
func (r *Reader) ReadTokens() ([]Token, error) {
	var tokens []Token
	for {
		if r.done {
			return tokens, nil
		}
		tok, err := r.step()
		if err != nil {
			if _, ok := err.(*DataRequiredError); ok {
				return tokens, nil
			}
			return tokens, err
		}
		tokens = append(tokens, tok)
		if _, ok := tok.(EndToken); ok {
			r.done = true
			return tokens, nil
		}
	}
}

func (r *Reader) top() *frame {
	return &r.stack[len(r.stack)-1]
}

func (r *Reader) path() Path {
	var p Path
	for _, f := range r.stack[1:] {
		switch f.kind {
		case containerSequence, containerEncapsulatedPixelData:
			p = p.WithElement(f.tag)
		case containerItem:
			p = p.WithItem(f.itemIndex)
		}
	}
	return p
}

// currentClarifying returns the ClarifyingElements of the nearest enclosing
// data-set scope (the root or an open item), used to resolve dual-VR tags
// and to record observations from elements as they are read.
func (r *Reader) currentClarifying() *ClarifyingElements {
	for i := len(r.stack) - 1; i >= 0; i-- {
		if r.stack[i].clarifying != nil {
			return r.stack[i].clarifying
		}
	}
	return nil
}

func (r *Reader) byteOrder() binary.ByteOrder {
	if r.ts == nil {
		return binary.LittleEndian
	}
	return r.ts.byteOrder()
}

// step produces exactly one Token, or a DataRequiredError if the byte stream
// does not yet hold enough bytes.
func (r *Reader) step() (Token, error) {
	if len(r.pending) > 0 {
		tok := r.pending[0]
		r.pending = r.pending[1:]
		return tok, nil
	}
	switch r.phase {
	case phasePreamble:
		return r.readPreamble()
	case phaseFMIGroupLength:
		return r.readFMIGroupLength()
	case phaseFMIElement:
		return r.readFMIElement()
	case phaseElement:
		return r.readNext()
	default:
		return EndToken{}, nil
	}
}

func (r *Reader) readPreamble() (Token, error) {
	b, err := r.bs.ReadN(132)
	if err != nil {
		return nil, err
	}
	if string(b[128:132]) != "DICM" {
		return nil, &DicmPrefixNotPresentError{When: "reading file preamble"}
	}
	var preamble [128]byte
	copy(preamble[:], b[:128])
	r.phase = phaseFMIGroupLength
	return FilePreambleAndDICMPrefixToken{Preamble: preamble}, nil
}

// readFMIGroupLength reads the File Meta Information Group Length element
// (0002,0000), always Explicit VR Little Endian regardless of the eventual
// transfer syntax, and switches to reading the remainder of the FMI group.
func (r *Reader) readFMIGroupLength() (Token, error) {
	tag, vr, length, err := r.readExplicitHeaderLE()
	if err != nil {
		return nil, err
	}
	if tag != TagFileMetaInformationGroupLength || vr != ULVR || length != 4 {
		return nil, &DataInvalidError{When: "reading File Meta Information Group Length", Details: "missing or malformed (0002,0000) UL 4"}
	}
	b, err := r.bs.ReadN(4)
	if err != nil {
		return nil, err
	}
	r.fmiGroupLength = binary.LittleEndian.Uint32(b)
	r.fmiStartOffset = r.bs.BytesRead()
	r.phase = phaseFMIElement
	return r.readFMIElement()
}

// readFMIElement reads one File Meta Information element. Once
// fmiGroupLength bytes have been consumed since fmiStartOffset, it resolves
// the transfer syntax, switches decoding mode, and emits
// FileMetaInformationToken.
func (r *Reader) readFMIElement() (Token, error) {
	if r.bs.BytesRead()-r.fmiStartOffset >= int64(r.fmiGroupLength) {
		return r.finishFMI()
	}

	tag, vr, length, err := r.readExplicitHeaderLE()
	if err != nil {
		return nil, err
	}
	value, err := r.bs.ReadN(int(length))
	if err != nil {
		return nil, err
	}
	v, err := NewBinaryValue(vr, value)
	if err != nil {
		return nil, err
	}
	r.fmi.Set(tag, v)
	return r.readFMIElement()
}

func (r *Reader) finishFMI() (Token, error) {
	tsValue, ok := r.fmi.Get(TagTransferSyntaxUID)
	if !ok {
		return nil, &DataInvalidError{When: "resolving transfer syntax", Details: "(0002,0010) Transfer Syntax UID not present"}
	}
	uid, err := tsValue.String()
	if err != nil {
		return nil, err
	}
	uid = trimPad(uid, UIVR)
	ts, ok := LookupTransferSyntax(uid)
	if !ok {
		return nil, &TransferSyntaxNotSupportedError{When: "resolving transfer syntax", UID: uid}
	}
	r.ts = ts
	if ts.Deflated {
		r.bs.startInflate()
	}
	r.phase = phaseElement
	return FileMetaInformationToken{DataSet: r.fmi, TransferSyntax: ts}, nil
}

// readExplicitHeaderLE reads one data element header encoded Explicit VR
// Little Endian, used only for the File Meta Information group which is
// always encoded this way regardless of the data set's transfer syntax.
func (r *Reader) readExplicitHeaderLE() (Tag, *VR, uint32, error) {
	b, err := r.bs.ReadN(4)
	if err != nil {
		return Tag{}, nil, 0, err
	}
	tag := Tag{Group: binary.LittleEndian.Uint16(b[0:2]), Element: binary.LittleEndian.Uint16(b[2:4])}

	vrBytes, err := r.bs.ReadN(2)
	if err != nil {
		return Tag{}, nil, 0, err
	}
	vr, ok := LookupVR(string(vrBytes))
	if !ok {
		return Tag{}, nil, 0, &DataInvalidError{When: "reading explicit vr", Details: "unknown vr code " + string(vrBytes)}
	}

	if vr.LongLengthField {
		if _, err := r.bs.ReadN(2); err != nil { // reserved
			return Tag{}, nil, 0, err
		}
		lb, err := r.bs.ReadN(4)
		if err != nil {
			return Tag{}, nil, 0, err
		}
		return tag, vr, binary.LittleEndian.Uint32(lb), nil
	}
	lb, err := r.bs.ReadN(2)
	if err != nil {
		return Tag{}, nil, 0, err
	}
	return tag, vr, uint32(binary.LittleEndian.Uint16(lb)), nil
}

// readHeader reads one data element header in the data set's own transfer
// syntax (implicit or explicit VR, either endianness).
func (r *Reader) readHeader() (Tag, *VR, uint32, error) {
	order := r.byteOrder()

	b, err := r.bs.ReadN(4)
	if err != nil {
		return Tag{}, nil, 0, err
	}
	tag := Tag{Group: order.Uint16(b[0:2]), Element: order.Uint16(b[2:4])}

	if r.ts.Implicit {
		lb, err := r.bs.ReadN(4)
		if err != nil {
			return Tag{}, nil, 0, err
		}
		length := order.Uint32(lb)
		vr := resolveImplicitVR(tag, length, r.currentClarifying())
		return tag, vr, length, nil
	}

	vrBytes, err := r.bs.ReadN(2)
	if err != nil {
		return Tag{}, nil, 0, err
	}
	vr, ok := LookupVR(string(vrBytes))
	if !ok {
		return Tag{}, nil, 0, &DataInvalidError{When: "reading explicit vr", Path: r.path(), Offset: r.bs.BytesRead(), Details: "unknown vr code " + string(vrBytes)}
	}
	if vr.LongLengthField {
		if _, err := r.bs.ReadN(2); err != nil {
			return Tag{}, nil, 0, err
		}
		lb, err := r.bs.ReadN(4)
		if err != nil {
			return Tag{}, nil, 0, err
		}
		return tag, vr, order.Uint32(lb), nil
	}
	lb, err := r.bs.ReadN(2)
	if err != nil {
		return Tag{}, nil, 0, err
	}
	return tag, vr, uint32(order.Uint16(lb)), nil
}

// readNext produces the next Token while inside the main data set, a
// sequence, an item, or encapsulated pixel data fragments, dispatching on
// whichever delimiter or header comes next.
func (r *Reader) readNext() (Token, error) {
	top := r.top()

	// A length-delimited (not undefined-length) container ends by byte
	// count rather than a delimiter tag; check before peeking a header.
	if !top.undefined && r.bs.BytesRead() >= top.endOffset {
		return r.closeContainer()
	}

	if top.kind == containerEncapsulatedPixelData {
		return r.readEncapsulatedFragment()
	}

	tagBytes, err := r.bs.Peek(4)
	if err != nil {
		if top.kind == containerRoot {
			if _, ok := err.(*DataEndedUnexpectedlyError); ok && r.bs.Exhausted() {
				r.phase = phaseDone
				return EndToken{}, nil
			}
		}
		return nil, err
	}
	order := r.byteOrder()
	peekedTag := Tag{Group: order.Uint16(tagBytes[0:2]), Element: order.Uint16(tagBytes[2:4])}

	switch peekedTag {
	case TagSequenceDelimitationItem:
		if top.kind != containerSequence {
			return nil, &DataInvalidError{When: "reading sequence delimiter", Path: r.path(), Offset: r.bs.BytesRead(), Details: "delimiter outside a sequence"}
		}
		return r.closeContainer()
	case TagItemDelimitationItem:
		if top.kind != containerItem {
			return nil, &DataInvalidError{When: "reading item delimiter", Path: r.path(), Offset: r.bs.BytesRead(), Details: "delimiter outside an item"}
		}
		return r.closeContainer()
	case TagItem:
		if top.kind != containerSequence {
			return nil, &DataInvalidError{When: "reading sequence item", Path: r.path(), Offset: r.bs.BytesRead(), Details: "item tag outside a sequence"}
		}
		return r.openItem()
	}

	if top.kind == containerRoot && r.bs.Exhausted() {
		r.phase = phaseDone
		return EndToken{}, nil
	}

	tag, vr, length, err := r.readHeader()
	if err != nil {
		return nil, err
	}

	if vr == SQVR || (length == UndefinedLength && vr.IsBinary()) {
		if tag == TagPixelData && length == UndefinedLength {
			return r.openEncapsulatedPixelData(tag, vr)
		}
		return r.openSequence(tag, vr, length)
	}

	return r.readElementValue(tag, vr, length)
}

func (r *Reader) closeContainer() (Token, error) {
	top := r.top()
	var tok Token
	switch top.kind {
	case containerSequence, containerEncapsulatedPixelData:
		tok = SequenceDelimiterToken{Tag: TagSequenceDelimitationItem, Path: r.path()}
		if top.undefined {
			if _, err := r.bs.ReadN(8); err != nil { // delimiter tag + zero length
				return nil, err
			}
		}
	case containerItem:
		tok = SequenceItemDelimiterToken{Path: r.path()}
		if top.undefined {
			if _, err := r.bs.ReadN(8); err != nil {
				return nil, err
			}
		}
	}
	r.stack = r.stack[:len(r.stack)-1]
	return tok, nil
}

func (r *Reader) openSequence(tag Tag, vr *VR, length uint32) (Token, error) {
	if len(r.stack) >= r.cfg.maxSequenceDepth {
		return nil, &MaximumExceededError{When: "opening sequence", Path: r.path(), Limit: int64(r.cfg.maxSequenceDepth), Actual: int64(len(r.stack))}
	}
	tok := SequenceStartToken{Tag: tag, VR: vr, Length: length, Path: r.path().WithElement(tag)}
	f := frame{kind: containerSequence, tag: tag, vr: vr, undefined: length == UndefinedLength}
	if !f.undefined {
		f.endOffset = r.bs.BytesRead() + int64(length)
	}
	r.stack = append(r.stack, f)
	return tok, nil
}

func (r *Reader) openItem() (Token, error) {
	if _, err := r.bs.ReadN(4); err != nil { // consume Item tag already peeked
		return nil, err
	}
	lb, err := r.bs.ReadN(4)
	if err != nil {
		return nil, err
	}
	length := r.byteOrder().Uint32(lb)

	parent := r.top()
	itemIndex := parent.itemIndex
	parent.itemIndex++

	path := r.path().WithItem(itemIndex)
	tok := SequenceItemStartToken{Length: length, Path: path}

	f := frame{kind: containerItem, undefined: length == UndefinedLength, itemIndex: itemIndex, clarifying: r.currentClarifying().copyForItem()}
	if !f.undefined {
		f.endOffset = r.bs.BytesRead() + int64(length)
	}
	r.stack = append(r.stack, f)
	return tok, nil
}

func (r *Reader) openEncapsulatedPixelData(tag Tag, vr *VR) (Token, error) {
	tok := SequenceStartToken{Tag: tag, VR: vr, Length: UndefinedLength, Path: r.path().WithElement(tag)}
	r.stack = append(r.stack, frame{kind: containerEncapsulatedPixelData, tag: tag, vr: vr, undefined: true})
	return tok, nil
}

// readEncapsulatedFragment reads one Item-wrapped fragment of encapsulated
// pixel data (the Basic Offset Table is simply fragment index 0) as a whole
// PixelDataItemToken, since fragments are typically small enough to
// materialize directly and callers almost always want them whole.
func (r *Reader) readEncapsulatedFragment() (Token, error) {
	tagBytes, err := r.bs.Peek(4)
	if err != nil {
		return nil, err
	}
	order := r.byteOrder()
	tag := Tag{Group: order.Uint16(tagBytes[0:2]), Element: order.Uint16(tagBytes[2:4])}
	if tag == TagSequenceDelimitationItem {
		return r.closeContainer()
	}
	if tag != TagItem {
		return nil, &DataInvalidError{When: "reading encapsulated pixel data fragment", Path: r.path(), Offset: r.bs.BytesRead(), Details: "expected item or sequence delimiter"}
	}
	if _, err := r.bs.ReadN(4); err != nil {
		return nil, err
	}
	lb, err := r.bs.ReadN(4)
	if err != nil {
		return nil, err
	}
	length := order.Uint32(lb)
	if length == UndefinedLength {
		return nil, &DataInvalidError{When: "reading encapsulated pixel data fragment", Path: r.path(), Offset: r.bs.BytesRead(), Details: "fragment item may not have undefined length"}
	}
	value, err := r.bs.ReadN(int(length))
	if err != nil {
		return nil, err
	}
	parent := r.top()
	idx := parent.itemIndex
	parent.itemIndex++
	return PixelDataItemToken{Bytes: value, Path: r.path().WithItem(idx)}, nil
}

// readElementValue reads a whole element's value bytes off the byte stream
// (DataRequiredError here simply means "try again once more input arrives",
// with nothing yet emitted) then queues a header token followed by one or
// more value-bytes tokens chunked to cfg.maxTokenSize, returning the first
// and leaving the rest on r.pending so step keeps its one-Token-per-call
// contract.
func (r *Reader) readElementValue(tag Tag, vr *VR, length uint32) (Token, error) {
	path := r.path().WithElement(tag)
	header := DataElementHeaderToken{Tag: tag, VR: vr, Length: length, Path: path}

	value, err := r.bs.ReadN(int(length))
	if err != nil {
		return nil, err
	}
	if r.byteOrder() == binary.BigEndian {
		value = swapByteOrder(value, valueByteSwapWidth(vr))
	}
	if c := r.currentClarifying(); c != nil {
		c.observe(tag, binary.LittleEndian, value)
	}

	r.pending = append(r.pending, header)
	r.pending = append(r.pending, splitValueChunks(tag, vr, path, value, r.cfg.maxTokenSize)...)

	tok := r.pending[0]
	r.pending = r.pending[1:]
	return tok, nil
}

// splitValueChunks divides a fully-read value into DataElementValueBytesTokens
// no larger than maxChunk bytes each (at least one, even for a zero-length
// value, so that every element produces a value token).
func splitValueChunks(tag Tag, vr *VR, path Path, value []byte, maxChunk int) []Token {
	if maxChunk <= 0 {
		maxChunk = len(value)
		if maxChunk == 0 {
			maxChunk = 1
		}
	}
	if len(value) == 0 {
		return []Token{DataElementValueBytesToken{Tag: tag, VR: vr, Bytes: nil, Final: true, Path: path}}
	}
	var tokens []Token
	for offset := 0; offset < len(value); offset += maxChunk {
		end := offset + maxChunk
		if end > len(value) {
			end = len(value)
		}
		tokens = append(tokens, DataElementValueBytesToken{
			Tag:   tag,
			VR:    vr,
			Bytes: value[offset:end],
			Final: end == len(value),
			Path:  path,
		})
	}
	return tokens
}
