package config

import (
	"fmt"
	"net"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// database.write_isolation に指定できる値です。
const (
	IsolationReadCommitted  = "read_committed"
	IsolationRepeatableRead = "repeatable_read"
	IsolationSerializable   = "serializable"
)

const (
	defaultShutdownTimeout = 10 * time.Second
	defaultCacheTTL        = 10 * time.Minute
	defaultKafkaClientID   = "hr-records"
)

// Config はアプリケーション全体の設定を表現します。
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Log      LogConfig      `yaml:"log"`
	Redis    RedisConfig    `yaml:"redis"`
	Kafka    KafkaConfig    `yaml:"kafka"`
	Email    EmailConfig    `yaml:"email"`
}

// ServerConfig は HTTP / gRPC サーバーに関する設定です。
type ServerConfig struct {
	ListenAddr         string        `yaml:"listen_addr"`
	GRPCListenAddr     string        `yaml:"grpc_listen_addr"`
	ShutdownTimeout    time.Duration `yaml:"-"`
	ShutdownTimeoutRaw string        `yaml:"shutdown_timeout"`
}

// DatabaseConfig は PostgreSQL 接続に関する設定です。
type DatabaseConfig struct {
	Host                string        `yaml:"host"`
	Port                int           `yaml:"port"`
	User                string        `yaml:"user"`
	Password            string        `yaml:"password"`
	Name                string        `yaml:"name"`
	SSLMode             string        `yaml:"ssl_mode"`
	MaxOpenConns        int           `yaml:"max_open_conns"`
	MaxIdleConns        int           `yaml:"max_idle_conns"`
	ConnMaxLifetime     time.Duration `yaml:"-"`
	ConnMaxIdleTime     time.Duration `yaml:"-"`
	ConnMaxLifetimeRaw  string        `yaml:"conn_max_lifetime"`
	ConnMaxIdleTimeRaw  string        `yaml:"conn_max_idle_time"`
	StatementTimeout    time.Duration `yaml:"-"`
	StatementTimeoutRaw string        `yaml:"statement_timeout"`
	// WriteIsolation は読み書きトランザクションの分離レベルです。
	// read_committed / repeatable_read / serializable のいずれかで、空の場合はサーバーの既定値を使います。
	WriteIsolation string `yaml:"write_isolation"`
}

// LogConfig はロガーの設定です。
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// RedisConfig は参照データキャッシュ用の Redis 設定です。Addr が空の場合キャッシュは無効です。
type RedisConfig struct {
	Addr     string        `yaml:"addr"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	TTL      time.Duration `yaml:"-"`
	TTLRaw   string        `yaml:"ttl"`
}

// Enabled はキャッシュが設定されているかを返します。
func (r RedisConfig) Enabled() bool {
	return r.Addr != ""
}

// KafkaConfig は社員イベント発行用の設定です。Brokers が空の場合イベントは発行されません。
type KafkaConfig struct {
	Brokers  []string `yaml:"brokers"`
	Topic    string   `yaml:"topic"`
	ClientID string   `yaml:"client_id"`
}

// Enabled はイベント発行が設定されているかを返します。
func (k KafkaConfig) Enabled() bool {
	return len(k.Brokers) > 0
}

// EmailConfig は社用メールアドレス生成の設定です。
type EmailConfig struct {
	// Domains は国名 (大文字) からドメインへの対応表です。
	Domains map[string]string `yaml:"domains"`
	// MaxCollisions は連番の上限です。0 は無制限を表します。
	MaxCollisions int `yaml:"max_collisions"`
}

// DefaultEmailDomains は設定が無い場合に利用する国別ドメインです。
func DefaultEmailDomains() map[string]string {
	return map[string]string{
		"COLOMBIA":  "tuarmi.com.co",
		"VENEZUELA": "armirene.com.ve",
	}
}

// Load は指定されたパスから設定ファイルを読み込みます。
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read file %s: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("config: parse yaml: %w", err)
	}

	if err := cfg.validateAndNormalize(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) validateAndNormalize() error {
	if err := c.Server.validateAndNormalize(); err != nil {
		return err
	}

	db := &c.Database
	if err := db.validateAndNormalize(); err != nil {
		return err
	}

	c.Log.normalize()

	if err := c.Redis.validateAndNormalize(); err != nil {
		return err
	}

	if err := c.Kafka.validateAndNormalize(); err != nil {
		return err
	}

	return c.Email.validateAndNormalize()
}

func (s *ServerConfig) validateAndNormalize() error {
	if s.ListenAddr == "" {
		return fmt.Errorf("config: server.listen_addr must be set")
	}

	timeout, err := parseDurationAllowEmpty(s.ShutdownTimeoutRaw)
	if err != nil {
		return fmt.Errorf("config: server.shutdown_timeout: %w", err)
	}
	if timeout == 0 {
		timeout = defaultShutdownTimeout
	}
	s.ShutdownTimeout = timeout

	return nil
}

func (d *DatabaseConfig) validateAndNormalize() error {
	if d.Host == "" {
		return fmt.Errorf("config: database.host must be set")
	}
	if d.Port == 0 {
		return fmt.Errorf("config: database.port must be set")
	}
	if d.User == "" {
		return fmt.Errorf("config: database.user must be set")
	}
	if d.Password == "" {
		return fmt.Errorf("config: database.password must be set")
	}
	if d.Name == "" {
		return fmt.Errorf("config: database.name must be set")
	}
	if d.SSLMode == "" {
		d.SSLMode = "disable"
	}

	lifetime, err := parseDurationAllowEmpty(d.ConnMaxLifetimeRaw)
	if err != nil {
		return fmt.Errorf("config: database.conn_max_lifetime: %w", err)
	}
	d.ConnMaxLifetime = lifetime

	idleTime, err := parseDurationAllowEmpty(d.ConnMaxIdleTimeRaw)
	if err != nil {
		return fmt.Errorf("config: database.conn_max_idle_time: %w", err)
	}
	d.ConnMaxIdleTime = idleTime

	statementTimeout, err := parseDurationAllowEmpty(d.StatementTimeoutRaw)
	if err != nil {
		return fmt.Errorf("config: database.statement_timeout: %w", err)
	}
	d.StatementTimeout = statementTimeout

	d.WriteIsolation = strings.ReplaceAll(strings.ToLower(strings.TrimSpace(d.WriteIsolation)), " ", "_")
	switch d.WriteIsolation {
	case "", IsolationReadCommitted, IsolationRepeatableRead, IsolationSerializable:
	default:
		return fmt.Errorf("config: database.write_isolation: unsupported level %q", d.WriteIsolation)
	}

	return nil
}

func (l *LogConfig) normalize() {
	if l.Level == "" {
		l.Level = "info"
	}
	if l.Format == "" {
		l.Format = "json"
	}
}

func (r *RedisConfig) validateAndNormalize() error {
	ttl, err := parseDurationAllowEmpty(r.TTLRaw)
	if err != nil {
		return fmt.Errorf("config: redis.ttl: %w", err)
	}
	if ttl == 0 {
		ttl = defaultCacheTTL
	}
	r.TTL = ttl
	return nil
}

func (k *KafkaConfig) validateAndNormalize() error {
	if !k.Enabled() {
		return nil
	}
	if k.Topic == "" {
		return fmt.Errorf("config: kafka.topic must be set when kafka.brokers is configured")
	}
	if k.ClientID == "" {
		k.ClientID = defaultKafkaClientID
	}
	return nil
}

func (e *EmailConfig) validateAndNormalize() error {
	if e.MaxCollisions < 0 {
		return fmt.Errorf("config: email.max_collisions must not be negative")
	}
	if len(e.Domains) == 0 {
		e.Domains = DefaultEmailDomains()
		return nil
	}

	normalized := make(map[string]string, len(e.Domains))
	for country, domain := range e.Domains {
		key := strings.ToUpper(strings.TrimSpace(country))
		value := strings.ToLower(strings.TrimSpace(domain))
		if key == "" || value == "" {
			return fmt.Errorf("config: email.domains entries must have a country and a domain")
		}
		normalized[key] = value
	}
	e.Domains = normalized
	return nil
}

func parseDurationAllowEmpty(raw string) (time.Duration, error) {
	if raw == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, err
	}
	return d, nil
}

// DSN は pgx 用の接続文字列を返します。
func (d DatabaseConfig) DSN() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(d.User, d.Password),
		Host:     net.JoinHostPort(d.Host, strconv.Itoa(d.Port)),
		Path:     "/" + d.Name,
		RawQuery: "sslmode=" + url.QueryEscape(d.SSLMode),
	}
	return u.String()
}
