// Package auth はログイン時の資格情報検証とBearerトークンの発行・検証を提供する。
package auth

import (
	"context"
	"fmt"
	"log/slog"
)

// Issuer はclaimsに署名したトークンを発行する。
type Issuer interface {
	Issue(claims map[string]any) (string, error)
}

// Service はログイン処理を提供する。
// 資格情報の検証（CredentialVerifier）とトークン発行（Issuer）を順に行う。
type Service struct {
	verifier CredentialVerifier
	issuer   Issuer
}

// NewService はServiceを生成する。
func NewService(verifier CredentialVerifier, issuer Issuer) *Service {
	return &Service{
		verifier: verifier,
		issuer:   issuer,
	}
}

// Login は送信内容を検証し、検証済みのclaimsでトークンを発行する。
func (s *Service) Login(ctx context.Context, submitted map[string]any) (string, error) {
	claims, err := s.verifier.Verify(ctx, submitted)
	if err != nil {
		return "", err
	}

	token, err := s.issuer.Issue(claims)
	if err != nil {
		return "", fmt.Errorf("failed to issue token: %w", err)
	}

	slog.Info("token issued", slog.String("email", EmailFromClaims(claims)))
	return token, nil
}
