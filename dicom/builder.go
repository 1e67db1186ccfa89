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

// builderFrame is one level of a Builder's in-progress tree: either the root
// data set, a sequence accumulating completed items, an item accumulating
// elements into its own DataSet, or encapsulated pixel data accumulating
// fragments.
type builderFrame struct {
	kind containerKind
	tag  Tag
	vr   *VR

	ds        *DataSet   // containerRoot, containerItem
	items     []*DataSet // containerSequence
	fragments [][]byte   // containerEncapsulatedPixelData

	decoder *characterSetDecoder
}

// Builder materializes a Token stream into a *DataSet tree (spec.md §4,
// C7): the inverse of feeding a DataSet's Tokens (as Reader would produce
// them) back through Writer. It also resolves Specific Character Set
// transcoding, which Reader and Writer deliberately leave untouched since
// they operate on raw wire bytes.
type Builder struct {
	preamble *[128]byte
	fmi      *DataSet
	ts       *TransferSyntax

	stack []builderFrame

	pendingTag   Tag
	pendingVR    *VR
	pendingBytes []byte
	pendingOpen  bool

	done bool
}

// NewBuilder returns a Builder ready to accept Tokens via AddToken.
func NewBuilder() *Builder {
	root := builderFrame{kind: containerRoot, ds: NewDataSet(), decoder: defaultCharacterSetDecoder()}
	return &Builder{stack: []builderFrame{root}}
}

func (b *Builder) top() *builderFrame {
	return &b.stack[len(b.stack)-1]
}

// AddToken feeds one Token from a Reader (or any well-formed Token producer)
// into the builder.
func (b *Builder) AddToken(tok Token) error {
	if b.done {
		return &WriteAfterCompletionError{When: "adding token after EndToken"}
	}
	switch t := tok.(type) {
	case FilePreambleAndDICMPrefixToken:
		p := t.Preamble
		b.preamble = &p
		return nil
	case FileMetaInformationToken:
		b.fmi = t.DataSet
		b.ts = t.TransferSyntax
		return nil
	case DataElementHeaderToken:
		b.pendingTag, b.pendingVR, b.pendingBytes, b.pendingOpen = t.Tag, t.VR, nil, true
		return nil
	case DataElementValueBytesToken:
		if !b.pendingOpen || t.Tag != b.pendingTag {
			return &TokenStreamInvalidError{When: "value bytes with no matching open header", Token: tok}
		}
		b.pendingBytes = append(b.pendingBytes, t.Bytes...)
		if t.Final {
			return b.finishElement()
		}
		return nil
	case SequenceStartToken:
		kind := containerSequence
		if t.Tag == TagPixelData {
			kind = containerEncapsulatedPixelData
		}
		b.stack = append(b.stack, builderFrame{kind: kind, tag: t.Tag, vr: t.VR, decoder: b.top().decoder})
		return nil
	case SequenceItemStartToken:
		parent := b.top()
		if parent.kind != containerSequence {
			return &TokenStreamInvalidError{When: "item start outside a sequence", Token: tok}
		}
		b.stack = append(b.stack, builderFrame{kind: containerItem, ds: NewDataSet(), decoder: parent.decoder})
		return nil
	case SequenceItemDelimiterToken:
		return b.closeItem()
	case PixelDataItemToken:
		parent := b.top()
		if parent.kind != containerEncapsulatedPixelData {
			return &TokenStreamInvalidError{When: "pixel data item outside encapsulated pixel data", Token: tok}
		}
		parent.fragments = append(parent.fragments, t.Bytes)
		return nil
	case SequenceDelimiterToken:
		return b.closeSequence()
	case EndToken:
		b.done = true
		return nil
	default:
		return &TokenStreamInvalidError{When: "unrecognized token", Token: tok}
	}
}

func (b *Builder) finishElement() error {
	tag, vr, raw := b.pendingTag, b.pendingVR, b.pendingBytes
	b.pendingOpen = false

	frame := b.top()
	if frame.kind != containerRoot && frame.kind != containerItem {
		return &TokenStreamInvalidError{When: "element outside a data set scope"}
	}

	value := &Value{Kind: KindBinary, VR: vr, Bytes: raw}
	if vr.IsEncodedString() {
		decoded := frame.decoder.decodeText(string(raw))
		if vr == PNVR {
			decoded = frame.decoder.decodePersonName(string(raw))
		}
		value = &Value{Kind: KindBinary, VR: vr, Bytes: []byte(decoded)}
	}

	frame.ds.Set(tag, value)

	if tag == TagSpecificCharacterSet {
		decoder, err := newCharacterSetDecoder(string(raw))
		if err != nil {
			return err
		}
		frame.decoder = decoder

		// Every string value under this scope is transcoded to UTF-8 above,
		// so the declared term itself must follow, or the data set claims a
		// character set its own values no longer use.
		utf8Term, err := NewBinaryValue(CSVR, []byte("ISO_IR 192"))
		if err != nil {
			return err
		}
		frame.ds.Set(tag, utf8Term)
	}
	return nil
}

func (b *Builder) closeItem() error {
	item := *b.top()
	if item.kind != containerItem {
		return &TokenStreamInvalidError{When: "item delimiter outside an item"}
	}
	b.stack = b.stack[:len(b.stack)-1]

	seq := b.top()
	if seq.kind != containerSequence {
		return &TokenStreamInvalidError{When: "item closed outside a sequence"}
	}
	seq.items = append(seq.items, item.ds)
	return nil
}

func (b *Builder) closeSequence() error {
	frame := *b.top()
	b.stack = b.stack[:len(b.stack)-1]

	target := b.top()
	if target.kind != containerRoot && target.kind != containerItem {
		return &TokenStreamInvalidError{When: "sequence closed outside a data set scope"}
	}

	switch frame.kind {
	case containerSequence:
		target.ds.Set(frame.tag, NewSequenceValue(frame.items))
	case containerEncapsulatedPixelData:
		value, err := NewEncapsulatedPixelDataValue(frame.vr, frame.fragments)
		if err != nil {
			return err
		}
		target.ds.Set(frame.tag, value)
	default:
		return &TokenStreamInvalidError{When: "sequence delimiter for non-sequence frame"}
	}
	return nil
}

// ForceEnd closes every still-open container as a best-effort recovery from
// a stream that ended (or errored) before a matching EndToken arrived,
// typically after a DataEndedUnexpectedlyError or DataInvalidError from the
// Reader driving this Builder. Any data element whose value bytes were only
// partially received is dropped rather than included truncated.
func (b *Builder) ForceEnd() *DataSet {
	b.pendingOpen = false
	for len(b.stack) > 1 {
		top := b.top()
		switch top.kind {
		case containerItem:
			_ = b.closeItem()
		case containerSequence, containerEncapsulatedPixelData:
			_ = b.closeSequence()
		default:
			b.stack = b.stack[:len(b.stack)-1]
		}
	}
	b.done = true
	return b.stack[0].ds
}

// Result returns the fully built root DataSet. It is only meaningful after
// AddToken has consumed an EndToken (or after ForceEnd).
func (b *Builder) Result() *DataSet {
	return b.stack[0].ds
}

// FileMetaInformation returns the File Meta Information data set and
// resolved transfer syntax captured from the stream's FileMetaInformationToken,
// if one was seen.
func (b *Builder) FileMetaInformation() (*DataSet, *TransferSyntax) {
	return b.fmi, b.ts
}
