package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/beka-birhanu/vinom-escape/service/i"
	"github.com/dgrijalva/jwt-go"
)

var (
	ErrInvalidToken    = errors.New("invalid token")
	ErrIssuerMismatch  = errors.New("token issued by someone else")
	ErrUnexpectedAlgo  = errors.New("unexpected signing method")
	ErrEmptySigningKey = errors.New("signing key is empty")
)

var _ i.Tokenizer = &JwtService{}

// JwtService signs and verifies HS256 tokens carrying the issuer claim.
type JwtService struct {
	secretKey string
	issuer    string
}

// NewJwtService creates a JWT service.
func NewJwtService(secretKey, issuer string) (*JwtService, error) {
	if secretKey == "" {
		return nil, ErrEmptySigningKey
	}
	return &JwtService{
		secretKey: secretKey,
		issuer:    issuer,
	}, nil
}

// Generate signs a token with the given claims that expires after expTime.
func (s *JwtService) Generate(claims map[string]interface{}, expTime time.Duration) (string, error) {
	now := time.Now().UTC()
	jwtClaims := jwt.MapClaims{}
	for key, val := range claims {
		jwtClaims[key] = val
	}
	jwtClaims["exp"] = now.Add(expTime).Unix()
	jwtClaims["iat"] = now.Unix()
	jwtClaims["iss"] = s.issuer

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwtClaims)
	return token.SignedString([]byte(s.secretKey))
}

// Decode verifies the token and returns its claims.
func (s *JwtService) Decode(tokenString string) (map[string]interface{}, error) {
	token, err := jwt.Parse(tokenString, s.signingKey)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	if !claims.VerifyIssuer(s.issuer, true) {
		return nil, ErrIssuerMismatch
	}
	return claims, nil
}

func (s *JwtService) signingKey(token *jwt.Token) (interface{}, error) {
	if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
		return nil, ErrUnexpectedAlgo
	}
	return []byte(s.secretKey), nil
}
