package server

import (
	"context"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"math/big"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

// jwk is one entry of a JSON Web Key Set as returned by an OIDC provider's
// well-known endpoint. Only the RSA fields this service needs are modeled.
type jwk struct {
	Kty string `json:"kty"`
	Kid string `json:"kid"`
	Alg string `json:"alg"`
	N   string `json:"n"`
	E   string `json:"e"`
}

type jwks struct {
	Keys []jwk `json:"keys"`
}

// fetchJWKS retrieves and decodes a JSON Web Key Set. golang-jwt/jwt/v5
// validates signatures against a Keyfunc but has no JWKS client of its own,
// so this fetch-and-index step is done by hand.
func fetchJWKS(ctx context.Context, url string) (*jwks, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("server: build jwks request: %w", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("server: fetch jwks: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("server: jwks endpoint returned %s", resp.Status)
	}

	var set jwks
	if err := json.NewDecoder(resp.Body).Decode(&set); err != nil {
		return nil, fmt.Errorf("server: decode jwks: %w", err)
	}
	return &set, nil
}

// publicKey reconstructs an *rsa.PublicKey from a JWK's base64url-encoded
// modulus and exponent.
func (k jwk) publicKey() (*rsa.PublicKey, error) {
	nBytes, err := base64.RawURLEncoding.DecodeString(k.N)
	if err != nil {
		return nil, fmt.Errorf("server: decode jwk modulus: %w", err)
	}
	eBytes, err := base64.RawURLEncoding.DecodeString(k.E)
	if err != nil {
		return nil, fmt.Errorf("server: decode jwk exponent: %w", err)
	}

	e := 0
	for _, b := range eBytes {
		e = e<<8 | int(b)
	}

	return &rsa.PublicKey{
		N: new(big.Int).SetBytes(nBytes),
		E: e,
	}, nil
}

func (s *jwks) find(kid string) (jwk, bool) {
	for _, k := range s.Keys {
		if k.Kid == kid {
			return k, true
		}
	}
	return jwk{}, false
}

// keyfunc adapts set into a jwt.Keyfunc, selecting the signing key by the
// token header's "kid" and requiring RS256.
func (s *jwks) keyfunc(token *jwt.Token) (interface{}, error) {
	if token.Method.Alg() != "RS256" {
		return nil, fmt.Errorf("server: unexpected signing method %q", token.Method.Alg())
	}
	kid, _ := token.Header["kid"].(string)
	if kid == "" {
		return nil, fmt.Errorf("server: token has no key id")
	}
	key, ok := s.find(kid)
	if !ok {
		return nil, fmt.Errorf("server: unknown key id %q", kid)
	}
	return key.publicKey()
}

// claims is the set of standard OIDC claims the upload and regenerate
// endpoints require a caller to present.
type claims struct {
	jwt.RegisteredClaims
}

type claimsContextKey struct{}

// claimValidator returns middleware that reads the "openid-token" header,
// validates it against set (signature, audience, issuer, expiry), and on
// success stores the parsed claims in the request context.
func claimValidator(set *jwks, audiences []string, issuer string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := strings.TrimSpace(r.Header.Get("openid-token"))
			if raw == "" {
				writeError(w, badRequest("missing openid-token header", nil))
				return
			}

			opts := []jwt.ParserOption{
				jwt.WithValidMethods([]string{"RS256"}),
				jwt.WithIssuer(issuer),
			}
			for _, aud := range audiences {
				opts = append(opts, jwt.WithAudience(aud))
			}

			var parsed claims
			_, err := jwt.ParseWithClaims(raw, &parsed, set.keyfunc, opts...)
			if err != nil {
				writeError(w, badRequest("invalid openid-token", err))
				return
			}

			ctx := context.WithValue(r.Context(), claimsContextKey{}, parsed)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
