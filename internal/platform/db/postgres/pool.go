package postgres

import (
	"context"
	"fmt"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ogurasousui/hr-records/internal/platform/config"
)

const applicationName = "hr-records"

var isolationLevels = map[string]pgx.TxIsoLevel{
	config.IsolationReadCommitted:  pgx.ReadCommitted,
	config.IsolationRepeatableRead: pgx.RepeatableRead,
	config.IsolationSerializable:   pgx.Serializable,
}

// Database は接続プールと、そのプール上のトランザクションマネージャーの組です。
type Database struct {
	Pool *pgxpool.Pool
	Tx   *TransactionManager
}

// Open は設定からプールを生成して疎通確認を行い、トランザクションマネージャーを構築します。
func Open(ctx context.Context, cfg config.DatabaseConfig) (*Database, error) {
	pool, err := NewPool(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return &Database{
		Pool: pool,
		Tx:   NewTransactionManager(pool, TransactionOptions(cfg)...),
	}, nil
}

// Ping はヘルスチェック用にプールの疎通を確認します。
func (d *Database) Ping(ctx context.Context) error {
	return d.Pool.Ping(ctx)
}

// Close はプールを閉じます。
func (d *Database) Close() {
	d.Pool.Close()
}

// BuildPoolConfig は database 設定から pgxpool.Config を構築します。
// セッションは UTC 固定で、statement_timeout が指定されていればサーバー側で適用されます。
func BuildPoolConfig(cfg config.DatabaseConfig) (*pgxpool.Config, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("postgres: parse config: %w", err)
	}

	if cfg.MaxOpenConns > 0 {
		poolCfg.MaxConns = int32(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		poolCfg.MinConns = min(int32(cfg.MaxIdleConns), poolCfg.MaxConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		poolCfg.MaxConnLifetime = cfg.ConnMaxLifetime
	}
	if cfg.ConnMaxIdleTime > 0 {
		poolCfg.MaxConnIdleTime = cfg.ConnMaxIdleTime
	}

	params := poolCfg.ConnConfig.RuntimeParams
	// hire_date の日付判定をサーバーのタイムゾーンに依存させない。
	params["timezone"] = "UTC"
	params["application_name"] = applicationName
	if cfg.StatementTimeout > 0 {
		params["statement_timeout"] = strconv.FormatInt(cfg.StatementTimeout.Milliseconds(), 10)
	}

	return poolCfg, nil
}

// TransactionOptions は database 設定を TransactionManager のオプションに変換します。
func TransactionOptions(cfg config.DatabaseConfig) []TransactionOption {
	level, ok := isolationLevels[cfg.WriteIsolation]
	if !ok {
		return nil
	}
	return []TransactionOption{WithIsolation(level)}
}

// NewPool は pgxpool.Pool を生成し疎通確認を行います。
func NewPool(ctx context.Context, cfg config.DatabaseConfig) (*pgxpool.Pool, error) {
	poolCfg, err := BuildPoolConfig(cfg)
	if err != nil {
		return nil, err
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("postgres: create pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres: ping: %w", err)
	}

	return pool, nil
}
