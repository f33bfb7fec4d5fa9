package cbor

import (
	"bufio"
	"fmt"
	"io"
)

// Streamer encodes and decodes DataItems over caller-supplied
// io.Writer/io.Reader streams (spec §5, §6.4). It holds only a reference
// to its stream and is not shareable across goroutines. This is the
// tree-oriented replacement for the teacher's genned-struct-oriented
// Reader/Writer types.
type Streamer struct {
	w io.Writer
	r *bufio.Reader
}

// NewStreamer returns a Streamer wrapping w for encoding and r for
// decoding. Either may be nil if the Streamer is used one-directionally.
func NewStreamer(w io.Writer, r io.Reader) *Streamer {
	s := &Streamer{w: w}
	if r != nil {
		s.r = bufio.NewReader(r)
	}
	return s
}

// EncodeCBOR writes item's CBOR encoding to the underlying writer using a
// pooled ByteBuffer.
func (s *Streamer) EncodeCBOR(item *DataItem) error {
	if s.w == nil {
		return fmt.Errorf("cbor: streamer has no writer")
	}
	bb := GetByteBuffer()
	defer PutByteBuffer(bb)
	bb.AppendItem(item)
	_, err := s.w.Write(bb.Bytes())
	return err
}

// DecodeCBOR reads exactly one CBOR item from the underlying reader,
// consuming only the bytes that item's wire encoding requires so a stream
// that stays open past this item does not block the call (spec §5,
// "Decoders read byte-by-byte or short-chunked"). Decode failures are
// carried in the returned item's DecodeStatus rather than as a Go error
// (spec §7.2); a stream that ends part-way through an item yields an item
// with status INVALID. The error return is reserved for genuine stream I/O
// failures (spec §5, "Cancellation and timeouts"), including a stream that
// ends before a new item starts.
func (s *Streamer) DecodeCBOR() (*DataItem, error) {
	if s.r == nil {
		return nil, fmt.Errorf("cbor: streamer has no reader")
	}
	if _, err := s.r.Peek(1); err != nil {
		return nil, err
	}
	item, err := decodeItemFromReader(s.r, 0)
	if err == io.EOF || err == io.ErrUnexpectedEOF {
		return (&Factory{}).CreateInvalidItem(Invalid), nil
	}
	return item, err
}

// EncodeJSON writes item's JSON encoding to the underlying writer, followed
// by a newline so that consecutive values written to one stream (two bare
// numbers, for example) stay separate for DecodeJSON.
func (s *Streamer) EncodeJSON(item *DataItem, pretty bool) error {
	if s.w == nil {
		return fmt.Errorf("cbor: streamer has no writer")
	}
	bb := GetByteBuffer()
	defer PutByteBuffer(bb)
	bb.b = AppendJSON(bb.b, item, pretty)
	bb.b = append(bb.b, '\n')
	_, err := s.w.Write(bb.Bytes())
	return err
}

// DecodeJSON reads one JSON value from the underlying reader, scanning
// only the bytes of that value (leading whitespace plus its brace/bracket-
// or quote-delimited or bare-token extent) rather than the rest of the
// stream, so a stream that stays open past this value does not block the
// call. A stream that ends inside a container or string yields an item with
// status INVALID; one that ends before a value starts returns the error.
func (s *Streamer) DecodeJSON() (*DataItem, error) {
	if s.r == nil {
		return nil, fmt.Errorf("cbor: streamer has no reader")
	}
	raw, err := scanOneJSONValue(s.r)
	if err != nil {
		return nil, err
	}
	item, _ := DecodeJSON(string(raw))
	return item, nil
}

// scanOneJSONValue consumes exactly one whitespace-prefixed JSON value from
// r: a brace/bracket-delimited container (tracking string state so braces
// and brackets inside string literals are not mistaken for structure), a
// quoted string, or a bare token (number, true, false, null) terminated by
// a following delimiter or end of stream. End of stream inside a container
// or string returns the bytes read so far with a nil error.
func scanOneJSONValue(r *bufio.Reader) ([]byte, error) {
	var buf []byte
	var first byte
	for {
		b, err := r.ReadByte()
		if err != nil {
			return nil, err
		}
		if b == ' ' || b == '\t' || b == '\n' || b == '\r' {
			continue
		}
		buf = append(buf, b)
		first = b
		break
	}
	switch first {
	case '{', '[':
		stack := []byte{first}
		inString, escaped := false, false
		for len(stack) > 0 {
			b, err := r.ReadByte()
			if err == io.EOF {
				return buf, nil
			}
			if err != nil {
				return nil, err
			}
			buf = append(buf, b)
			if inString {
				switch {
				case escaped:
					escaped = false
				case b == '\\':
					escaped = true
				case b == '"':
					inString = false
				}
				continue
			}
			switch b {
			case '"':
				inString = true
			case '{', '[':
				stack = append(stack, b)
			case '}', ']':
				stack = stack[:len(stack)-1]
			}
		}
	case '"':
		escaped := false
		for {
			b, err := r.ReadByte()
			if err == io.EOF {
				return buf, nil
			}
			if err != nil {
				return nil, err
			}
			buf = append(buf, b)
			switch {
			case escaped:
				escaped = false
			case b == '\\':
				escaped = true
			case b == '"':
				return buf, nil
			}
		}
	default:
		for {
			peeked, err := r.Peek(1)
			if err != nil {
				break
			}
			c := peeked[0]
			if c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == ',' || c == ']' || c == '}' || c == ':' {
				break
			}
			b, _ := r.ReadByte()
			buf = append(buf, b)
		}
	}
	return buf, nil
}
