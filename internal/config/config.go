// Package config loads the layered application configuration: built-in
// defaults, an optional YAML file, VOKABEL_ environment variables and
// command-line flags, in increasing precedence.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"

	"github.com/lernwerk/vokabel/internal/llm"
	"github.com/lernwerk/vokabel/internal/logging"
)

// EnvPrefix prefixes every environment variable read by Load. A double
// underscore separates nested keys: VOKABEL_SERVER__ADDR sets server.addr.
const EnvPrefix = "VOKABEL_"

// Config is the full application configuration.
type Config struct {
	DB     DBConfig       `koanf:"db"`
	Log    logging.Config `koanf:"log"`
	User   UserConfig     `koanf:"user"`
	Quiz   QuizConfig     `koanf:"quiz"`
	Server ServerConfig   `koanf:"server"`
	Sync   SyncConfig     `koanf:"sync"`
	LLM    llm.Config     `koanf:"llm"`
}

type DBConfig struct {
	Driver string `koanf:"driver" validate:"oneof=sqlite postgres mysql"`

	// DSN is a file path for sqlite. Empty selects the default data path.
	DSN string `koanf:"dsn" validate:"required_unless=Driver sqlite"`
}

// UserConfig names the local profile used by the terminal commands.
type UserConfig struct {
	Email string `koanf:"email" validate:"omitempty,email"`
	Name  string `koanf:"name"`
}

type QuizConfig struct {
	Mode      string `koanf:"mode" validate:"oneof=cloze choice"`
	Direction string `koanf:"direction" validate:"oneof=en->de de->en en2de de2en"`
}

type ServerConfig struct {
	Addr           string        `koanf:"addr" validate:"hostname_port"`
	JWTSecret      string        `koanf:"jwt_secret" validate:"omitempty,min=16"`
	TokenTTL       time.Duration `koanf:"token_ttl" validate:"min=0"`
	AllowedOrigins []string      `koanf:"allowed_origins"`
	RequestTimeout time.Duration `koanf:"request_timeout" validate:"min=0"`
}

// SyncConfig configures `words sync`.
type SyncConfig struct {
	Repo     string `koanf:"repo"`
	Branch   string `koanf:"branch"`
	ReposDir string `koanf:"repos_dir"`
}

// Default returns the built-in defaults.
func Default() Config {
	return Config{
		DB:   DBConfig{Driver: "sqlite"},
		Log:  logging.Config{Level: "info", Format: "text"},
		Quiz: QuizConfig{Mode: "cloze", Direction: "en->de"},
		Server: ServerConfig{
			Addr:           "127.0.0.1:8080",
			TokenTTL:       12 * time.Hour,
			AllowedOrigins: []string{"*"},
			RequestTimeout: 30 * time.Second,
		},
		LLM: llm.DefaultConfig(),
	}
}

// flagKeys maps command-line flag names to config keys. Flags not listed
// here are not part of the configuration.
var flagKeys = map[string]string{
	"driver":    "db.driver",
	"db":        "db.dsn",
	"log-level": "log.level",
	"log-file":  "log.file",
	"user":      "user.email",
	"mode":      "quiz.mode",
	"direction": "quiz.direction",
	"addr":      "server.addr",
	"repo":      "sync.repo",
	"provider":  "llm.provider",
}

// Load builds the configuration. path names the YAML file; when empty the
// default location is used if it exists. flags may be nil.
func Load(path string, flags *pflag.FlagSet) (Config, error) {
	k := koanf.New(".")

	explicit := path != ""
	if !explicit {
		path = DefaultPath()
	}
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			if explicit || !errors.Is(err, fs.ErrNotExist) {
				return Config{}, fmt.Errorf("load config file %s: %w", path, err)
			}
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return Config{}, fmt.Errorf("load environment: %w", err)
	}

	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, flagKey), nil); err != nil {
			return Config{}, fmt.Errorf("load flags: %w", err)
		}
	}

	cfg := Default()
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	cfg.LLM.Discover()

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// envKey turns VOKABEL_SERVER__JWT_SECRET into server.jwt_secret.
// VOKABEL_DB is kept as a shorthand for the database DSN.
func envKey(s string) string {
	key := strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	if key == "db" {
		return "db.dsn"
	}
	return strings.ReplaceAll(key, "__", ".")
}

func flagKey(f *pflag.Flag) (string, any) {
	key, ok := flagKeys[f.Name]
	if !ok || !f.Changed {
		return "", nil
	}
	if sv, ok := f.Value.(pflag.SliceValue); ok {
		return key, sv.GetSlice()
	}
	return key, f.Value.String()
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks field constraints and the LLM section when a provider is
// set.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s: failed %q", fe.Namespace(), fe.Tag()))
			}
			return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
		}
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// DefaultPath returns $XDG_CONFIG_HOME/vokabel/config.yaml or the platform
// equivalent, or "" when no config dir is known.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "vokabel", "config.yaml")
}

// LogPath returns the default log file next to the database file.
func LogPath(dbPath string) string {
	return filepath.Join(filepath.Dir(dbPath), "vokabel.log")
}
