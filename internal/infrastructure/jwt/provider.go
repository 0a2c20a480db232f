package jwtinfra

import (
	"crypto/rsa"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/contoso-notify/internal/config"
	"github.com/golang-jwt/jwt/v5"
)

// ScopePublish lets a producer post entity changes to the events endpoint.
const ScopePublish = "notifications:publish"

// Claims holds the JWT payload fields of a producer token.
type Claims struct {
	Producer string `json:"producer"`
	Scope    string `json:"scope"`
	jwt.RegisteredClaims
}

// Provider verifies RS256 producer tokens and, when it holds the private
// key, signs them.
type Provider struct {
	privateKey *rsa.PrivateKey
	publicKey  *rsa.PublicKey
	expiry     time.Duration
}

// NewProvider loads the public key from cfg.JWTPublicKeyPath. The private
// key is optional; without it the provider only verifies.
func NewProvider(cfg *config.Config) (*Provider, error) {
	pubBytes, err := os.ReadFile(cfg.JWTPublicKeyPath)
	if err != nil {
		return nil, fmt.Errorf("read public key: %w", err)
	}
	pubKey, err := jwt.ParseRSAPublicKeyFromPEM(pubBytes)
	if err != nil {
		return nil, fmt.Errorf("parse public key: %w", err)
	}

	p := &Provider{publicKey: pubKey, expiry: cfg.JWTExpiry}
	if cfg.JWTPrivateKeyPath == "" {
		return p, nil
	}

	privBytes, err := os.ReadFile(cfg.JWTPrivateKeyPath)
	if err != nil {
		return nil, fmt.Errorf("read private key: %w", err)
	}
	privKey, err := jwt.ParseRSAPrivateKeyFromPEM(privBytes)
	if err != nil {
		return nil, fmt.Errorf("parse private key: %w", err)
	}
	p.privateKey = privKey
	return p, nil
}

// Sign issues a token for producer carrying scope.
func (p *Provider) Sign(producer, scope string) (string, error) {
	if p.privateKey == nil {
		return "", errors.New("signing key not configured")
	}
	now := time.Now()
	claims := Claims{
		Producer: producer,
		Scope:    scope,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   producer,
			ExpiresAt: jwt.NewNumericDate(now.Add(p.expiry)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	return token.SignedString(p.privateKey)
}

func (p *Provider) Verify(tokenStr string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodRSA); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return p.publicKey, nil
	})
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token claims")
	}
	return claims, nil
}
