// Package jsonutil holds the JSON encodings shared by the calculator's entry points.
package jsonutil

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	"github.com/cockroachdb/errors"
)

// fallbackErrorBody is answered when an error message itself cannot be encoded.
var fallbackErrorBody = []byte(`{"error":"internal error"}`)

// ErrorBody returns the document every endpoint answers a failure with.
func ErrorBody(message string) []byte {
	body, err := json.Marshal(map[string]string{"error": message})
	if err != nil {
		return fallbackErrorBody
	}
	return body
}

// DecodeStrict decodes exactly one JSON document from body into v. Unknown
// fields and trailing data are rejected so misspelled action fields are not
// silently dropped.
func DecodeStrict(body []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return errors.Wrap(err, "decode json")
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return errors.New("decode json: unexpected data after document")
	}
	return nil
}

// MarshalLogged encodes v, logging and returning nil when it cannot be encoded.
func MarshalLogged(logger *slog.Logger, v any) []byte {
	result, err := json.Marshal(v)
	if err != nil {
		if logger != nil {
			logger.Error("json encode failed", slog.String("error", err.Error()), slog.String("value_type", typeName(v)))
		}
		return nil
	}
	return result
}

func typeName(v any) string {
	if v == nil {
		return "nil"
	}
	return fmt.Sprintf("%T", v)
}
