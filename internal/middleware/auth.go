// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"inkwell/internal/authz"
)

// AdminGate resolves the admin capability from an
// "Authorization: Bearer <token>" header and stores it in the request
// context. It never rejects a request; the service layer decides what a
// non-admin caller may do. An empty token disables the capability entirely.
func AdminGate(token string) func(http.Handler) http.Handler {
	want := []byte(token)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			isAdmin := false
			if got, ok := bearerToken(r); ok && len(want) > 0 {
				isAdmin = subtle.ConstantTimeCompare([]byte(got), want) == 1
			}
			next.ServeHTTP(w, r.WithContext(authz.WithAdmin(r.Context(), isAdmin)))
		})
	}
}

// bearerToken extracts the credentials of a Bearer Authorization header.
// The scheme is matched case-insensitively.
func bearerToken(r *http.Request) (string, bool) {
	h := r.Header.Get("Authorization")
	scheme, cred, ok := strings.Cut(h, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	cred = strings.TrimSpace(cred)
	return cred, cred != ""
}
