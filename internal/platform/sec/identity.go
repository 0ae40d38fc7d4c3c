// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package sec

// Identity is the authenticated principal attached to a request.
//
// Token is the raw session token the request arrived with, so logout can
// revoke exactly that session.
type Identity struct {
	UserID string
	Email  string
	Token  string
}
