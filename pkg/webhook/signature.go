package webhook

import (
	"strings"

	"github.com/google/go-github/v57/github"
)

const signaturePrefix = "sha256="

// VerifySignature reports whether signature is the X-Hub-Signature-256 value
// GitHub computes for body with secret. Any empty input fails, and so does
// any digest other than sha256.
func VerifySignature(signature string, body []byte, secret string) bool {
	if signature == "" || len(body) == 0 || secret == "" {
		return false
	}
	if !strings.HasPrefix(signature, signaturePrefix) {
		return false
	}
	return github.ValidateSignature(signature, body, []byte(secret)) == nil
}
