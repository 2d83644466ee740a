package config

// RedisConfig contains Redis configuration for the durable credential store.
// When disabled, the edge falls back to an in-process store, which is fine
// for a single-instance deployment but loses credentials on restart.
type RedisConfig struct {
	Enabled  bool   `env:"ENABLED"  envDefault:"false"`
	Addr     string `env:"ADDR"     envDefault:"localhost:6379"`
	Password string `env:"PASSWORD" envDefault:""`
	DB       int    `env:"DB"       envDefault:"0"`
}
