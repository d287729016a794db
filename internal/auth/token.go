package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrTokenInvalid は署名不一致・期限切れ・形式不正などでトークンを検証できないことを示す。
var ErrTokenInvalid = errors.New("invalid token")

// TokenService はHS256で署名されたBearerトークンの発行と検証を行う。
type TokenService struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenService はTokenServiceを生成する。
// ttlが0以下の場合は24時間とする。
func NewTokenService(secret string, ttl time.Duration) *TokenService {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &TokenService{
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
	}
}

// Issue はclaimsを署名したトークンを返す。
// iatとexpはサーバー側の値で上書きする。claims自体は変更しない。
func (s *TokenService) Issue(claims map[string]any) (string, error) {
	now := s.now()

	mc := make(jwt.MapClaims, len(claims)+2)
	for k, v := range claims {
		mc[k] = v
	}
	mc["iat"] = now.Unix()
	mc["exp"] = now.Add(s.ttl).Unix()

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, mc)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("signing access token: %w", err)
	}
	return signed, nil
}

// Verify はトークンの署名と有効期限を検証し、デコードしたclaimsを返す。
// HS256以外のアルゴリズムとexpのないトークンは拒否する。
func (s *TokenService) Verify(tokenString string) (map[string]any, error) {
	claims := jwt.MapClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(_ *jwt.Token) (any, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrTokenInvalid, err)
	}
	if !token.Valid {
		return nil, ErrTokenInvalid
	}
	return map[string]any(claims), nil
}

// EmailFromClaims はclaimsのemailを文字列として取り出す。
// emailがない、または文字列でない場合は空文字を返す。
func EmailFromClaims(claims map[string]any) string {
	email, _ := claims["email"].(string)
	return email
}
