package models

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// WordData is grammatical metadata attached to a card. It is a closed set:
// only the types in this file implement it.
type WordData interface {
	wordKind() string
}

type VerbData struct {
	IsRegular       *bool    `json:"is_regular,omitempty"`
	IsSeparable     *bool    `json:"is_separable,omitempty"`
	SeparablePrefix string   `json:"separable_prefix,omitempty"`
	Auxiliary       string   `json:"auxiliary,omitempty"`
	PresentForms    []string `json:"present_forms,omitempty"`
	PastForms       []string `json:"past_forms,omitempty"`
	PastParticiple  string   `json:"past_participle,omitempty"`
}

type NounData struct {
	Gender   string `json:"gender,omitempty"`
	Plural   string `json:"plural,omitempty"`
	Genitive string `json:"genitive,omitempty"`
}

type AdjectiveData struct {
	Comparative string `json:"comparative,omitempty"`
	Superlative string `json:"superlative,omitempty"`
}

type AdverbData struct {
	UsageNote string `json:"usage_note,omitempty"`
}

const (
	WordKindVerb      = "verb"
	WordKindNoun      = "noun"
	WordKindAdjective = "adjective"
	WordKindAdverb    = "adverb"
)

func (VerbData) wordKind() string      { return WordKindVerb }
func (NounData) wordKind() string      { return WordKindNoun }
func (AdjectiveData) wordKind() string { return WordKindAdjective }
func (AdverbData) wordKind() string    { return WordKindAdverb }

// WordKind returns the discriminator for w, or "" when w is nil.
func WordKind(w WordData) string {
	if w == nil {
		return ""
	}
	return w.wordKind()
}

type wordDataEnvelope struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// EncodeWordData serializes word data as {"type": ..., "data": {...}}.
// A nil value encodes to nil.
func EncodeWordData(w WordData) ([]byte, error) {
	if w == nil {
		return nil, nil
	}
	data, err := json.Marshal(w)
	if err != nil {
		return nil, fmt.Errorf("encode %s word data: %w", w.wordKind(), err)
	}
	return json.Marshal(wordDataEnvelope{Type: w.wordKind(), Data: data})
}

// DecodeWordData is the inverse of EncodeWordData. Empty input and JSON null
// decode to nil. Anything but the {"type", "data"} envelope is rejected,
// including unknown fields at either level and a missing data object.
func DecodeWordData(raw []byte) (WordData, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}
	var env wordDataEnvelope
	if err := decodeStrict(raw, &env); err != nil {
		return nil, fmt.Errorf("decode word data: %w", err)
	}
	if len(env.Data) == 0 || string(env.Data) == "null" {
		return nil, fmt.Errorf("decode word data: %q requires a data object", env.Type)
	}

	var (
		out WordData
		err error
	)
	switch env.Type {
	case WordKindVerb:
		var v VerbData
		err = decodeStrict(env.Data, &v)
		out = v
	case WordKindNoun:
		var n NounData
		err = decodeStrict(env.Data, &n)
		out = n
	case WordKindAdjective:
		var a AdjectiveData
		err = decodeStrict(env.Data, &a)
		out = a
	case WordKindAdverb:
		var a AdverbData
		err = decodeStrict(env.Data, &a)
		out = a
	default:
		return nil, fmt.Errorf("unknown word data type %q", env.Type)
	}
	if err != nil {
		return nil, fmt.Errorf("decode %s word data: %w", env.Type, err)
	}
	return out, nil
}

func decodeStrict(raw []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return err
	}
	if _, err := dec.Token(); err != io.EOF {
		return errors.New("unexpected data after JSON value")
	}
	return nil
}
