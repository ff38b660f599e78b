package transport

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// DeriveHookPath appends the hex SHA-256 of token to prefix. The result is stable
// for a token and cannot be guessed without it.
func DeriveHookPath(prefix, token string) string {
	sum := sha256.Sum256([]byte(token))
	return prefix + hex.EncodeToString(sum[:])
}

// WebhookURL joins the externally reachable prefix and the hook path.
func WebhookURL(urlPrefix, hookPath string) string {
	return strings.TrimRight(urlPrefix, "/") + hookPath
}
