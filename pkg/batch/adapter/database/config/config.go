package config

// PoolConfig holds database connection pool settings.
type PoolConfig struct {
	MaxOpenConns           int `yaml:"max_open_conns"`
	MaxIdleConns           int `yaml:"max_idle_conns"`
	ConnMaxLifetimeMinutes int `yaml:"conn_max_lifetime_minutes"`
}

// DatabaseConfig holds database connection settings.
type DatabaseConfig struct {
	Type     string `yaml:"type"`     // Database type ("sqlite", "postgres", "mysql").
	Host     string `yaml:"host"`     // Database host address.
	Port     int    `yaml:"port"`     // Database port number.
	Database string `yaml:"database"` // Database name, or the file path for SQLite.
	User     string `yaml:"user"`     // Database user.
	Password string `yaml:"password"` // Database password.
	// Schema is the namespace holding the warehouse tables. For SQLite it is the ATTACH alias;
	// for MySQL it names a database. Empty means gridwatch.warehouse.schema.
	Schema  string `yaml:"schema,omitempty"`
	Sslmode string `yaml:"sslmode"` // SSL mode for PostgreSQL.
	// ReadOnly opens the connection in read-only mode. The dashboard always sets it.
	ReadOnly bool       `yaml:"read_only"`
	Pool     PoolConfig `yaml:"pool"` // Connection pool settings.
}
