package employee

import "context"

// UniqueField は一意性を確認できる項目です。
type UniqueField string

const (
	UniqueEmail                UniqueField = "email"
	UniqueIdentificationNumber UniqueField = "identification_number"
)

// Repository は社員永続化の抽象です。
type Repository interface {
	Create(ctx context.Context, employee *Employee) (*Employee, error)
	Update(ctx context.Context, employee *Employee) (*Employee, error)
	Delete(ctx context.Context, id int64) error
	FindByID(ctx context.Context, id int64) (*Employee, error)
	// FindByIDForUpdate は同一トランザクション内で行ロックを取得して読み込みます。
	FindByIDForUpdate(ctx context.Context, id int64) (*Employee, error)
	// ExistsByField は excludeID 以外のレコードに value が存在するかを返します。excludeID が 0 の場合は全件が対象です。
	ExistsByField(ctx context.Context, field UniqueField, value string, excludeID int64) (bool, error)
	List(ctx context.Context, filter ListEmployeesFilter) ([]*Employee, int64, error)
}

// ListEmployeesFilter は一覧取得用フィルタです。
type ListEmployeesFilter struct {
	Filter
	Limit  int
	Offset int
}
