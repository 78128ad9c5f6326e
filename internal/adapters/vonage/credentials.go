package vonage

import (
	"crypto/rsa"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const appTokenTTL = 15 * time.Minute

var ErrApplicationCredentialsRequired = errors.New("application id and private key are required")

// Credentials authenticate against the platform. Application credentials
// sign a JWT per request; the API key pair falls back to HTTP Basic.
type Credentials struct {
	APIKey        string
	APISecret     string
	ApplicationID string
	PrivateKey    *rsa.PrivateKey
}

func (c Credentials) HasApplication() bool {
	return c.ApplicationID != "" && c.PrivateKey != nil
}

func (c Credentials) HasAPIKey() bool {
	return c.APIKey != "" && c.APISecret != ""
}

// LoadPrivateKey accepts PEM text or a path to a PEM file.
func LoadPrivateKey(value string) (*rsa.PrivateKey, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, errors.New("private key is empty")
	}

	data := []byte(value)
	if !strings.HasPrefix(value, "-----BEGIN") {
		raw, err := os.ReadFile(value)
		if err != nil {
			return nil, fmt.Errorf("read private key %q: %w", value, err)
		}
		data = raw
	}

	key, err := jwt.ParseRSAPrivateKeyFromPEM(data)
	if err != nil {
		return nil, fmt.Errorf("parse private key: %w", err)
	}
	return key, nil
}

func (c Credentials) appToken(now time.Time) (string, error) {
	if !c.HasApplication() {
		return "", ErrApplicationCredentialsRequired
	}

	claims := jwt.MapClaims{
		"application_id": c.ApplicationID,
		"iat":            now.Unix(),
		"nbf":            now.Unix(),
		"exp":            now.Add(appTokenTTL).Unix(),
		"jti":            uuid.NewString(),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodRS256, claims).SignedString(c.PrivateKey)
	if err != nil {
		return "", fmt.Errorf("sign application token: %w", err)
	}
	return signed, nil
}

type authMode int

const (
	// authAny prefers the application token and falls back to Basic.
	authAny authMode = iota
	authApplication
)

func (c Credentials) authorize(req *http.Request, mode authMode, now time.Time) error {
	if c.HasApplication() {
		token, err := c.appToken(now)
		if err != nil {
			return err
		}
		req.Header.Set("Authorization", "Bearer "+token)
		return nil
	}
	if mode == authApplication {
		return ErrApplicationCredentialsRequired
	}
	if !c.HasAPIKey() {
		return errors.New("no usable credentials configured")
	}
	req.SetBasicAuth(c.APIKey, c.APISecret)
	return nil
}
