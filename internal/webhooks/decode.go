package webhooks

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
)

var (
	errNotObject    = errors.New("body must be a JSON object")
	errTrailingData = errors.New("unexpected data after JSON object")
)

// decodeObject reads a JSON object and copies the known fields into dst as strings.
// Numbers and booleans are stringified and null leaves the field empty.
// A nested object or array in a known field is an error. Unknown keys are dropped.
func decodeObject(body []byte, dst map[string]*string) error {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()

	var raw map[string]any
	if err := dec.Decode(&raw); err != nil {
		return err
	}
	if raw == nil {
		return errNotObject
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return errTrailingData
	}
	for key, ptr := range dst {
		v, ok := raw[key]
		if !ok {
			continue
		}
		s, err := coerce(v)
		if err != nil {
			return fmt.Errorf("field %q: %w", key, err)
		}
		*ptr = s
	}
	return nil
}

func coerce(v any) (string, error) {
	switch t := v.(type) {
	case nil:
		return "", nil
	case string:
		return t, nil
	case json.Number:
		return t.String(), nil
	case bool:
		return strconv.FormatBool(t), nil
	default:
		return "", fmt.Errorf("unsupported value of type %T", v)
	}
}

func decodeMissedCall(body []byte) (MissedCall, error) {
	var m MissedCall
	err := decodeObject(body, m.fields())
	return m, err
}

func decodeSMS(body []byte) (SMSMessage, error) {
	var m SMSMessage
	err := decodeObject(body, m.fields())
	return m, err
}

// DecodeAny parses an arbitrary JSON value, used for the generic vendor feed.
func DecodeAny(body []byte) (any, error) {
	var v any
	if err := json.Unmarshal(body, &v); err != nil {
		return nil, err
	}
	return v, nil
}
