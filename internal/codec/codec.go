// Package codec is an executable model of the encode and decode functions the
// BrightScript generator emits.
//
// Messages are generic maps, exactly as the generated code sees
// roAssociativeArray values: 32-bit numbers are float64, 64-bit integers are
// decimal strings, bytes are base64 strings, enums are value names, nested
// messages are maps and repeated fields are []any. Every numeric conversion
// goes through the decimal and ieee754 packages, which follow the runtime
// helpers step for step, so checking this package against protobuf-go checks
// the algorithms the generated code runs.
package codec

import (
	"encoding/base64"
	"fmt"

	"github.com/jptrs93/brsproto/internal/ir"
)

// UnknownKey holds the base64 of fields the schema does not know about.
const UnknownKey = "__pb_unknown"

type Options struct {
	DecodeCase   ir.CaseStyle
	EmitDefaults bool
}

type Codec struct {
	messages map[string]ir.Message
	styles   map[string]ir.CaseStyle
	options  Options
}

func New(files []ir.File, options Options) (*Codec, error) {
	c := &Codec{
		messages: make(map[string]ir.Message),
		styles:   make(map[string]ir.CaseStyle),
		options:  options,
	}
	for _, file := range files {
		style, err := file.CaseStyle(options.DecodeCase)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", file.Path, err)
		}
		for _, msg := range file.Messages {
			c.messages[msg.FullName] = msg
			c.styles[msg.FullName] = style
		}
	}
	return c, nil
}

func (c *Codec) message(fullName string) (ir.Message, error) {
	msg, ok := c.messages[fullName]
	if !ok {
		return ir.Message{}, fmt.Errorf("unknown message %s", fullName)
	}
	return msg, nil
}

// Encode returns the base64 text of the encoded message.
func (c *Codec) Encode(fullName string, msg map[string]any) (string, error) {
	b, err := c.EncodeBytes(fullName, msg)
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(b), nil
}

func (c *Codec) EncodeBytes(fullName string, msg map[string]any) ([]byte, error) {
	m, err := c.message(fullName)
	if err != nil {
		return nil, err
	}
	return c.encodeMessage(nil, m, msg), nil
}

// Decode never fails on malformed input: invalid base64 decodes as an empty
// message and truncated input yields the fields read so far.
func (c *Codec) Decode(fullName string, encoded string) (map[string]any, error) {
	b, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		b = nil
	}
	return c.DecodeBytes(fullName, b)
}

func (c *Codec) DecodeBytes(fullName string, b []byte) (map[string]any, error) {
	m, err := c.message(fullName)
	if err != nil {
		return nil, err
	}
	return c.decodeMessage(m, b), nil
}

// ResolveField returns the first present, non-nil value under keys.
func ResolveField(keys []string, msg map[string]any) (any, bool) {
	for _, key := range keys {
		if v, ok := msg[key]; ok && v != nil {
			return v, true
		}
	}
	return nil, false
}
