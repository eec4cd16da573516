package utils

import (
	"strings"

	"github.com/google/uuid"
	gonanoid "github.com/matoous/go-nanoid/v2"
)

// linkTokenAlphabet avoids ambiguous characters so link tokens survive being
// read aloud or retyped from a screenshot.
const linkTokenAlphabet = "23456789abcdefghijkmnpqrstuvwxyzABCDEFGHJKLMNPQRSTUVWXYZ"

const linkTokenLength = 12

// NewInvitationToken returns an unguessable token for a single-recipient
// email invitation. These only ever travel inside an emailed URL, so length
// is not a concern.
func NewInvitationToken() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

// NewLinkToken returns the short shareable token for an invite link.
func NewLinkToken() (string, error) {
	return gonanoid.Generate(linkTokenAlphabet, linkTokenLength)
}
