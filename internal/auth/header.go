package auth

import "strings"

const bearerPrefix = "Bearer "

// BearerToken extracts the JWT from an Authorization header value.
func BearerToken(header string) (string, error) {
	trimmed := strings.TrimSpace(header)
	if trimmed == "" {
		return "", errMissingAuthorization
	}
	if len(trimmed) <= len(bearerPrefix) || !strings.EqualFold(trimmed[:len(bearerPrefix)], bearerPrefix) {
		return "", errBadAuthorization
	}
	token := strings.TrimSpace(trimmed[len(bearerPrefix):])
	if strings.Count(token, ".") != 2 {
		return "", errBadAuthorization
	}
	return token, nil
}
