// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package openwebif

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// StringOrNumberString handles JSON fields that can be "123" or 123.
type StringOrNumberString string

func (s *StringOrNumberString) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*s = ""
		return nil
	}
	if b[0] == '"' {
		var v string
		if err := json.Unmarshal(b, &v); err != nil {
			return err
		}
		*s = StringOrNumberString(v)
		return nil
	}

	n, err := decodeNumber(b)
	if err != nil {
		return err
	}
	if i, err := n.Int64(); err == nil {
		*s = StringOrNumberString(strconv.FormatInt(i, 10))
		return nil
	}
	*s = StringOrNumberString(n.String())
	return nil
}

// IntOrStringInt64 handles JSON fields that can be "123" or 123.
type IntOrStringInt64 int64

func (v *IntOrStringInt64) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) || bytes.Equal(b, []byte(`""`)) {
		*v = 0
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		i, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid integer string %q", s)
		}
		*v = IntOrStringInt64(i)
		return nil
	}

	n, err := decodeNumber(b)
	if err != nil {
		return err
	}
	i, err := n.Int64()
	if err != nil {
		// Some images send timestamps as floats.
		f, ferr := n.Float64()
		if ferr != nil {
			return fmt.Errorf("not an integer: %s", n.String())
		}
		i = int64(f)
	}
	*v = IntOrStringInt64(i)
	return nil
}

func decodeNumber(b []byte) (json.Number, error) {
	var n json.Number
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	if err := dec.Decode(&n); err != nil {
		return "", fmt.Errorf("invalid json number: %s", string(b))
	}
	return n, nil
}
