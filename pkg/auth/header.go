package auth

import "strings"

const bearerScheme = "bearer"

// BearerFromHeader extracts the token from an Authorization header value.
// The scheme is matched case-insensitively and must be followed by a
// non-empty token.
func BearerFromHeader(header string) (string, bool) {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, bearerScheme) {
		return "", false
	}
	token = strings.TrimSpace(token)
	if token == "" || strings.ContainsAny(token, " \t") {
		return "", false
	}
	return token, true
}
