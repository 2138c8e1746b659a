package http

import (
	"encoding/json"
	"fmt"
	"math"
	"net/http"

	"budget/internal/core"
)

type fieldKind int

const (
	kindString fieldKind = iota
	kindEmail
	kindPositiveNumber
	kindPositiveInt
	kindTransactionType
)

type fieldSpec struct {
	kind     fieldKind
	required bool
}

// schema declares the accepted body fields for an endpoint. Unknown
// keys are rejected so typos surface as 400s instead of silently
// dropped fields.
type schema map[string]fieldSpec

type body map[string]any

const maxBodyBytes = 1 << 20

// decodeBody parses the request body against the schema and collects
// every violation into a single ValidationError.
func decodeBody(r *http.Request, s schema) (body, error) {
	raw := make(map[string]any)
	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, maxBodyBytes))
	if err := dec.Decode(&raw); err != nil {
		ve := core.NewValidationError()
		ve.Add("body", "must be a JSON object")
		return nil, ve
	}

	ve := core.NewValidationError()
	for key := range raw {
		if _, ok := s[key]; !ok {
			ve.Add(key, "unknown field")
		}
	}
	for key, spec := range s {
		val, present := raw[key]
		if !present {
			if spec.required {
				ve.Add(key, "is required")
			}
			continue
		}
		checkField(ve, key, spec.kind, val)
	}
	if err := ve.OrNil(); err != nil {
		return nil, err
	}
	return body(raw), nil
}

func checkField(ve *core.ValidationError, key string, kind fieldKind, val any) {
	switch kind {
	case kindString:
		str, ok := val.(string)
		if !ok || str == "" {
			ve.Add(key, "must be a non-empty string")
		}
	case kindEmail:
		str, ok := val.(string)
		if !ok || !core.ValidEmail(str) {
			ve.Add(key, "must be a valid email address")
		}
	case kindPositiveNumber:
		num, ok := val.(float64)
		if !ok || num <= 0 {
			ve.Add(key, "must be a positive number")
		}
	case kindPositiveInt:
		num, ok := val.(float64)
		if !ok || num <= 0 || num != math.Trunc(num) {
			ve.Add(key, "must be a positive integer")
		}
	case kindTransactionType:
		str, ok := val.(string)
		if !ok || !core.TransactionType(str).Valid() {
			ve.Add(key, fmt.Sprintf("must be %q or %q", core.Income, core.Expense))
		}
	}
}

func (b body) has(key string) bool {
	_, ok := b[key]
	return ok
}

func (b body) getString(key string) string {
	str, _ := b[key].(string)
	return str
}

func (b body) getFloat(key string) float64 {
	num, _ := b[key].(float64)
	return num
}

func (b body) getInt64(key string) int64 {
	num, _ := b[key].(float64)
	return int64(num)
}
