package catalog

import "context"

// Repository は参照データの読み取りを抽象化します。
type Repository interface {
	FindCountryByID(ctx context.Context, id int64) (*Country, error)
	FindAreaByID(ctx context.Context, id int64) (*Area, error)
	FindIdentificationTypeByID(ctx context.Context, id int64) (*IdentificationType, error)
	ListCountries(ctx context.Context) ([]Country, error)
	ListAreas(ctx context.Context) ([]Area, error)
	ListIdentificationTypes(ctx context.Context) ([]IdentificationType, error)
}
