// Package feature は機能紹介ドキュメントの参照機能を提供する。
package feature

import (
	"context"

	"github.com/hitoshi/easystock/internal/model"
	"github.com/hitoshi/easystock/internal/repository"
)

// Service は機能紹介の一覧を返すサービス。
type Service struct {
	repo repository.FeatureRepository
}

// NewService はServiceを生成する。
func NewService(repo repository.FeatureRepository) *Service {
	return &Service{repo: repo}
}

// List は全ての機能紹介を返す。
func (s *Service) List(ctx context.Context) ([]model.Document, error) {
	return s.repo.FindAll(ctx)
}
