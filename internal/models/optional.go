package models

import (
	"encoding/json"
	"fmt"
)

// The Opt/Null types keep the distinction JSON has but Go pointers lose:
// a field that is absent, a field that is explicitly null, and a field
// that carries a value. Partial updates depend on it.

// OptString is a string field that may be absent. Null is not accepted.
type OptString struct {
	Set   bool
	Value string
}

// UnmarshalJSON implements json.Unmarshaler.
func (o *OptString) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		return fmt.Errorf("null is not a valid string")
	}
	if err := json.Unmarshal(data, &o.Value); err != nil {
		return err
	}
	o.Set = true
	return nil
}

// OptBool is a bool field that may be absent. Null is not accepted.
type OptBool struct {
	Set   bool
	Value bool
}

// UnmarshalJSON implements json.Unmarshaler.
func (o *OptBool) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		return fmt.Errorf("null is not a valid boolean")
	}
	if err := json.Unmarshal(data, &o.Value); err != nil {
		return err
	}
	o.Set = true
	return nil
}

// NullString is a string field that may be absent, null, or a value.
// Set records presence; Valid is false for an explicit null.
type NullString struct {
	Set   bool
	Valid bool
	Value string
}

// UnmarshalJSON implements json.Unmarshaler.
func (n *NullString) UnmarshalJSON(data []byte) error {
	n.Set = true
	if string(data) == "null" {
		n.Valid = false
		n.Value = ""
		return nil
	}
	if err := json.Unmarshal(data, &n.Value); err != nil {
		return err
	}
	n.Valid = true
	return nil
}
