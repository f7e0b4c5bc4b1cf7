// internal/utils/redact.go
package utils

import (
	"errors"
	"net/url"
	"strings"
)

const redacted = "[REDACTED]"

// RedactSecret removes every occurrence of secret, raw or query-escaped,
// from s. Transport errors from net/http embed the full request URL, which
// carries the API key as a query parameter.
func RedactSecret(s, secret string) string {
	if secret == "" {
		return s
	}
	s = strings.ReplaceAll(s, secret, redacted)
	if escaped := url.QueryEscape(secret); escaped != secret {
		s = strings.ReplaceAll(s, escaped, redacted)
	}
	return s
}

// RedactError returns err with secret removed from its message. The result
// no longer wraps err.
func RedactError(err error, secret string) error {
	if err == nil || secret == "" {
		return err
	}
	msg := err.Error()
	clean := RedactSecret(msg, secret)
	if clean == msg {
		return err
	}
	return errors.New(clean)
}
