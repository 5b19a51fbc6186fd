package catalog

import (
	"context"
	"fmt"
)

// UseCase は参照データ一覧の公開インターフェースです。
type UseCase interface {
	ListCountries(ctx context.Context) ([]Country, error)
	ListAreas(ctx context.Context) ([]Area, error)
	ListIdentificationTypes(ctx context.Context) ([]IdentificationType, error)
}

// Service は参照データのユースケースです。
type Service struct {
	repo Repository
}

// NewService は Service を生成します。
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// ListCountries は国の一覧を返します。
func (s *Service) ListCountries(ctx context.Context) ([]Country, error) {
	countries, err := s.repo.ListCountries(ctx)
	if err != nil {
		return nil, fmt.Errorf("list countries: %w", err)
	}
	return nonNil(countries), nil
}

// ListAreas は部署の一覧を返します。
func (s *Service) ListAreas(ctx context.Context) ([]Area, error) {
	areas, err := s.repo.ListAreas(ctx)
	if err != nil {
		return nil, fmt.Errorf("list areas: %w", err)
	}
	return nonNil(areas), nil
}

// ListIdentificationTypes は身分証明書種別の一覧を返します。
func (s *Service) ListIdentificationTypes(ctx context.Context) ([]IdentificationType, error) {
	types, err := s.repo.ListIdentificationTypes(ctx)
	if err != nil {
		return nil, fmt.Errorf("list identification types: %w", err)
	}
	return nonNil(types), nil
}

// 空の一覧は JSON で null ではなく [] として返したい。
func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
