package harvest

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

const indent = "    "

// ObjectKey is the storage key of an item document. It depends only on the
// collection and item ids, so harvesting an item again replaces its object.
func ObjectKey(collectionID, itemID string) string {
	return collectionID + "_" + itemID + ".json"
}

// RenderDocument pretty-prints a JSON document with a four space indent.
//
// The document is re-encoded token by token: member order, duplicate members
// and number literals are kept as they appear in doc, while strings are
// written as UTF-8 with no \uXXXX escapes for non-ASCII text and no HTML
// escaping. Invalid UTF-8 in a string becomes U+FFFD.
func RenderDocument(doc json.RawMessage) ([]byte, error) {
	dec := json.NewDecoder(bytes.NewReader(doc))
	dec.UseNumber()

	r := newRenderer()
	if err := r.value(dec, 0); err != nil {
		if errors.Is(err, io.EOF) {
			err = io.ErrUnexpectedEOF
		}
		return nil, fmt.Errorf("render document: %w", err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		if err == nil {
			err = errors.New("unexpected data after top-level value")
		}
		return nil, fmt.Errorf("render document: %w", err)
	}
	return r.buf.Bytes(), nil
}

type renderer struct {
	buf     bytes.Buffer
	scratch bytes.Buffer
	enc     *json.Encoder
}

func newRenderer() *renderer {
	r := &renderer{}
	r.enc = json.NewEncoder(&r.scratch)
	r.enc.SetEscapeHTML(false)
	return r
}

func (r *renderer) value(dec *json.Decoder, depth int) error {
	tok, err := dec.Token()
	if err != nil {
		return err
	}

	switch t := tok.(type) {
	case json.Delim:
		return r.container(dec, t, depth)
	case string:
		return r.str(t)
	case json.Number:
		r.buf.WriteString(t.String())
	case bool:
		r.buf.WriteString(strconv.FormatBool(t))
	case nil:
		r.buf.WriteString("null")
	default:
		return fmt.Errorf("unexpected token %v", tok)
	}
	return nil
}

// container writes an object or array whose opening delimiter open has
// already been read. Empty containers stay on one line.
func (r *renderer) container(dec *json.Decoder, open json.Delim, depth int) error {
	r.buf.WriteByte(byte(open))

	n := 0
	for dec.More() {
		if n > 0 {
			r.buf.WriteByte(',')
		}
		r.newline(depth + 1)

		if open == '{' {
			tok, err := dec.Token()
			if err != nil {
				return err
			}
			key, ok := tok.(string)
			if !ok {
				return fmt.Errorf("unexpected object key %v", tok)
			}
			if err := r.str(key); err != nil {
				return err
			}
			r.buf.WriteString(": ")
		}
		if err := r.value(dec, depth+1); err != nil {
			return err
		}
		n++
	}

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	closing, ok := tok.(json.Delim)
	if !ok {
		return fmt.Errorf("unexpected token %v", tok)
	}
	if n > 0 {
		r.newline(depth)
	}
	r.buf.WriteByte(byte(closing))
	return nil
}

func (r *renderer) str(s string) error {
	r.scratch.Reset()
	if err := r.enc.Encode(s); err != nil {
		return err
	}
	r.buf.Write(bytes.TrimSuffix(r.scratch.Bytes(), []byte("\n")))
	return nil
}

func (r *renderer) newline(depth int) {
	r.buf.WriteByte('\n')
	r.buf.WriteString(strings.Repeat(indent, depth))
}
