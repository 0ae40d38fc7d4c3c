// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package uuid provides time-ordered unique identifiers for todoapi records.

It wraps google/uuid to generate Version 7 values, which sort by creation
time, and to recognise well-formed identifiers before they reach a store.
*/
package uuid

import "github.com/google/uuid"

// # Generators

// New generates a new UUIDv7 string.
//
// It panics only if the OS random source is unavailable.
func New() string {
	id, err := uuid.NewV7()
	if err != nil {
		panic("uuid: failed to generate UUID: " + err.Error())
	}
	return id.String()
}

// # Validation

// Valid reports whether s is a canonical, hyphenated UUID of any version.
//
// Braced, URN and unhyphenated forms accepted by uuid.Parse are rejected so
// that one record has exactly one spelling.
func Valid(s string) bool {
	if len(s) != 36 {
		return false
	}
	_, err := uuid.Parse(s)
	return err == nil
}
