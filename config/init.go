package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"

	"fleet/internal/validate"
)

// StubSecret — значение JWT_SECRET по умолчанию, в production запрещено.
const StubSecret = "CHANGE_ME"

// Конечная структура конфигурации приложения.
type Config struct {
	Env string `mapstructure:"env"` // development|production

	Server struct {
		Host string `mapstructure:"host"` // localhost
		Port int    `mapstructure:"port"` // 4000
	} `mapstructure:"server"`

	Logging struct {
		Level  string `mapstructure:"level"`  // trace|debug|info|warn|error|fatal
		File   string `mapstructure:"file"`   // путь/префикс файла, пусто — только stdout
		Pretty bool   `mapstructure:"pretty"` // text-формат вместо json
	} `mapstructure:"logs"`

	JWT struct {
		Secret    string `mapstructure:"secret"`
		ExpiresIn string `mapstructure:"expires_in"` // 1h, 10m, 2d, 1500ms, 60000
	} `mapstructure:"jwt"`

	Auth struct {
		VerifyPasswords bool `mapstructure:"verify_passwords"`
	} `mapstructure:"auth"`

	Database struct {
		Driver      string `mapstructure:"driver"` // postgres|mysql|sqlite, пусто — вывести из остального
		Host        string `mapstructure:"host"`
		Port        int    `mapstructure:"port"`
		Name        string `mapstructure:"name"`
		Username    string `mapstructure:"username"`
		Password    string `mapstructure:"password"`
		Filename    string `mapstructure:"filename"` // для sqlite
		AutoMigrate bool   `mapstructure:"automigrate"`
	} `mapstructure:"database"`
}

// переменные окружения для ключей viper
var envKeys = map[string]string{
	"env":                   "NODE_ENV",
	"server.host":           "HOST",
	"server.port":           "PORT",
	"logs.level":            "LOG_LEVEL",
	"logs.file":             "LOG_FILE",
	"logs.pretty":           "PRETTY_PRINT",
	"jwt.secret":            "JWT_SECRET",
	"jwt.expires_in":        "JWT_EXPIRES_IN",
	"auth.verify_passwords": "VERIFY_PASSWORDS",
	"database.driver":       "DB_DRIVER",
	"database.host":         "DB_HOST",
	"database.port":         "DB_PORT",
	"database.name":         "DB_NAME",
	"database.username":     "DB_USERNAME",
	"database.password":     "DB_PASSWORD",
	"database.filename":     "DB_FILENAME",
	"database.automigrate":  "DB_AUTOMIGRATE",
}

// Load читает конфиг из env/файла с дефолтами.
// Флаги командной строки привязываются к тем же ключам в internal/cli.
func Load() (*Config, error) {
	for key, env := range envKeys {
		if err := viper.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("config bind %s: %w", env, err)
		}
	}

	viper.SetDefault("env", "development")
	viper.SetDefault("server.host", "localhost")
	viper.SetDefault("server.port", 4000)

	viper.SetDefault("logs.level", "info")
	viper.SetDefault("logs.file", "")
	viper.SetDefault("logs.pretty", false)

	viper.SetDefault("jwt.secret", StubSecret)
	viper.SetDefault("jwt.expires_in", "1h")
	viper.SetDefault("auth.verify_passwords", false)

	viper.SetDefault("database.driver", "")
	viper.SetDefault("database.port", 0) // 0: порт по умолчанию для драйвера
	viper.SetDefault("database.name", "fleet")
	viper.SetDefault("database.filename", "database.db")
	viper.SetDefault("database.automigrate", false)

	// Источник файла
	if cfgFile := viper.GetString("config"); cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else if cfgFile := os.Getenv("CONFIG_FILE"); cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			viper.AddConfigPath(filepath.Join(xdg, "fleet"))
		}
		viper.AddConfigPath("/etc/fleet")
	}

	// Чтение файла (опционально)
	if err := viper.ReadInConfig(); err != nil {
		var nf viper.ConfigFileNotFoundError
		if !errors.As(err, &nf) {
			return nil, fmt.Errorf("config read error: %w", err)
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config unmarshal error: %w", err)
	}
	cfg.Database.Driver = deriveDriver(&cfg)
	if cfg.Database.Port == 0 {
		cfg.Database.Port = defaultPorts[cfg.Database.Driver]
	}
	if err := validateConfig(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}

var defaultPorts = map[string]int{"postgres": 5432, "mysql": 3306}

// deriveDriver: postgres, если заданы хост и учётные данные, иначе sqlite.
func deriveDriver(c *Config) string {
	if d := strings.ToLower(strings.TrimSpace(c.Database.Driver)); d != "" {
		return d
	}
	if c.Database.Host != "" && c.Database.Username != "" && c.Database.Password != "" {
		return "postgres"
	}
	return "sqlite"
}

func validateConfig(c *Config) error {
	if strings.TrimSpace(c.Server.Host) == "" {
		return errors.New("HOST must not be empty")
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("PORT must be between 1 and 65535, got %d", c.Server.Port)
	}
	if strings.TrimSpace(c.JWT.Secret) == "" {
		return errors.New("JWT_SECRET must be set")
	}
	if c.IsProduction() && c.JWT.Secret == StubSecret {
		return errors.New("JWT_SECRET must be changed from the default in production")
	}
	if !validate.IsExpiresIn(c.JWT.ExpiresIn) {
		return fmt.Errorf("JWT_EXPIRES_IN is not a valid duration: %q", c.JWT.ExpiresIn)
	}
	switch c.Database.Driver {
	case "postgres", "mysql":
		if c.Database.Host == "" {
			return fmt.Errorf("DB_HOST is required for the %s driver", c.Database.Driver)
		}
	case "sqlite":
		if c.Database.Filename == "" {
			return errors.New("DB_FILENAME is required for the sqlite driver")
		}
	default:
		return fmt.Errorf("unsupported DB_DRIVER: %q", c.Database.Driver)
	}
	return nil
}

func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Env, "production")
}

// Address — host:port для listener'а; он же audience токенов.
func (c *Config) Address() string {
	return net.JoinHostPort(c.Server.Host, strconv.Itoa(c.Server.Port))
}

// TokenTTL: JWT_EXPIRES_IN как длительность; Load уже проверил формат.
func (c *Config) TokenTTL() time.Duration {
	d, err := validate.ParseExpiresIn(c.JWT.ExpiresIn)
	if err != nil {
		return time.Hour
	}
	return d
}

func (c *Config) LogFormat() string {
	if c.Logging.Pretty {
		return "text"
	}
	return "json"
}

// DSN собирается под выбранный драйвер.
func (c *Config) DSN() string {
	d := c.Database
	switch d.Driver {
	case "postgres":
		return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
			pgQuote(d.Host), d.Port, pgQuote(d.Username), pgQuote(d.Password), pgQuote(d.Name))
	case "mysql":
		return fmt.Sprintf("%s:%s@tcp(%s)/%s?parseTime=true&charset=utf8mb4",
			d.Username, d.Password, net.JoinHostPort(d.Host, strconv.Itoa(d.Port)), d.Name)
	default:
		return d.Filename
	}
}

// pgQuote экранирует значение для key=value DSN libpq.
func pgQuote(v string) string {
	return "'" + strings.NewReplacer(`\`, `\\`, `'`, `\'`).Replace(v) + "'"
}
