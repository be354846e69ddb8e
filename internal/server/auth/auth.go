package auth

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strconv"
	"time"

	"github.com/JzuvGTI/jzrestapi/internal/conf"
	"github.com/JzuvGTI/jzrestapi/internal/model"
	"github.com/JzuvGTI/jzrestapi/internal/op"
	"github.com/golang-jwt/jwt/v5"
)

func tokenSecret() ([]byte, error) {
	secret, err := op.SettingGetString(model.SettingKeyJWTSecret)
	if err != nil || secret == "" {
		return nil, fmt.Errorf("jwt secret is not configured")
	}
	return []byte(secret), nil
}

func GenerateJWTToken(userID uint, expiresMin int) (string, string, error) {
	now := time.Now()
	claims := &jwt.RegisteredClaims{
		Subject:   strconv.FormatUint(uint64(userID), 10),
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now),
		Issuer:    conf.APP_NAME,
	}
	if expiresMin == 0 {
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(time.Duration(60) * time.Minute))
	} else if expiresMin > 0 {
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(time.Duration(expiresMin) * time.Minute))
	} else if expiresMin == -1 {
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(time.Duration(30) * 24 * time.Hour))
	}
	secret, err := tokenSecret()
	if err != nil {
		return "", "", err
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	if err != nil {
		return "", "", err
	}
	return token, claims.ExpiresAt.Format(time.RFC3339), nil
}

// VerifyJWTToken returns the authenticated user id.
func VerifyJWTToken(token string) (uint, error) {
	jwtToken, err := jwt.Parse(token, func(token *jwt.Token) (interface{}, error) {
		return tokenSecret()
	})
	if err != nil || !jwtToken.Valid {
		return 0, fmt.Errorf("invalid token")
	}
	subject, err := jwtToken.Claims.GetSubject()
	if err != nil {
		return 0, fmt.Errorf("invalid token subject")
	}
	userID, err := strconv.ParseUint(subject, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid token subject")
	}
	return uint(userID), nil
}

// GenerateAPIKey issues the opaque bearer secret for a new key.
func GenerateAPIKey() string {
	const keyChars = "0123456789abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"
	b := make([]byte, 40)
	maxI := big.NewInt(int64(len(keyChars)))
	for i := range b {
		n, err := rand.Int(rand.Reader, maxI)
		if err != nil {
			return ""
		}
		b[i] = keyChars[n.Int64()]
	}
	return "jz-" + string(b)
}
