package reviewlink

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/speps/go-hashids/v2"
)

// tokenBytes gives 256 bits of entropy per token, well past the point where
// guessing is feasible, and encodes to 43 URL-safe characters.
const tokenBytes = 32

// Generator produces the secrets and identifiers attached to a review
// request: the bearer token embedded in the customer link and the short
// reference code staff quote in conversations.
type Generator struct {
	hashid *hashids.HashID
}

func NewGenerator(salt string) (*Generator, error) {
	hd := hashids.NewData()
	hd.Salt = salt
	hd.MinLength = 6

	h, err := hashids.NewWithData(hd)
	if err != nil {
		return nil, err
	}
	return &Generator{hashid: h}, nil
}

// NewToken returns a fresh capability token from a cryptographically secure
// source, encoded URL-safe without padding so it can sit in a query string.
func (g *Generator) NewToken() (string, error) {
	buf := make([]byte, tokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// Ref derives the short staff-facing reference code from a request's row id.
func (g *Generator) Ref(id int64) (string, error) {
	code, err := g.hashid.EncodeInt64([]int64{id})
	if err != nil {
		return "", err
	}
	return "RV-" + strings.ToUpper(code), nil
}

// ReviewURL builds the customer-facing confirmation link with the token as a
// query parameter.
func ReviewURL(frontendURL, token string) string {
	return fmt.Sprintf("%s/review?token=%s", strings.TrimRight(frontendURL, "/"), token)
}
