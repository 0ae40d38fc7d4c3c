// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package pointer provides small generic helpers for optional values.

Optional request fields and nullable columns are both modelled as pointers;
these helpers keep the nil checks out of the service code.
*/
package pointer

// To returns a pointer to the provided value.
func To[T any](v T) *T {
	return &v
}

// IsTrue reports whether p is non-nil and points at true.
func IsTrue(p *bool) bool {
	return p != nil && *p
}
