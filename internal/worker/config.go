package worker

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/shaiso/Conveyor/internal/sandbox"
)

// Default configuration values.
const (
	defaultHeartbeatInterval = 30 * time.Second
	defaultFetchTimeout      = 5 * time.Second
	defaultShutdownTimeout   = 60 * time.Second
	defaultTag               = "cpu"
)

// Config — настройки воркера.
type Config struct {
	// Addr — адрес сервера host:port.
	Addr string

	// SessionKey — общий ключ сессии.
	SessionKey string

	// WorkerID — идентификатор (default: cvw-<uuid>).
	WorkerID string

	// Name — имя для логов (default: worker-<8 символов uuid>).
	Name string

	// Tools — инструменты, о которых воркер сообщает серверу.
	Tools []string

	// Tags — capability-теги; определяют очереди (default: cpu).
	Tags []string

	HeartbeatInterval time.Duration
	FetchTimeout      time.Duration

	// ShutdownTimeout — сколько ждать job при остановке; 0 — без ограничения.
	ShutdownTimeout time.Duration

	// Sandbox — auto, namespace или plain.
	Sandbox sandbox.Kind
}

// fileConfig — формат YAML-файла настроек.
type fileConfig struct {
	Addr                string   `yaml:"addr"`
	SessionKey          string   `yaml:"session_key"`
	WorkerID            string   `yaml:"worker_id"`
	Name                string   `yaml:"name"`
	Tools               []string `yaml:"tools"`
	Tags                []string `yaml:"tags"`
	HeartbeatSecs       *uint64  `yaml:"heartbeat_secs"`
	FetchTimeoutSecs    *uint64  `yaml:"fetch_timeout_secs"`
	ShutdownTimeoutSecs *uint64  `yaml:"shutdown_timeout_secs"`
	Sandbox             string   `yaml:"sandbox"`
}

// LoadConfig читает настройки: YAML-файл из CONVEYOR_WORKER_CONFIG (если задан),
// поверх него переменные окружения, затем значения по умолчанию и Validate.
//
// getenv обычно os.Getenv; в тестах подставляется map.
func LoadConfig(getenv func(string) string) (Config, error) {
	cfg := Config{
		HeartbeatInterval: defaultHeartbeatInterval,
		FetchTimeout:      defaultFetchTimeout,
		ShutdownTimeout:   defaultShutdownTimeout,
		Sandbox:           sandbox.KindAuto,
	}

	if path := getenv("CONVEYOR_WORKER_CONFIG"); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return Config{}, err
		}
	}

	if err := cfg.loadEnv(getenv); err != nil {
		return Config{}, err
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("%w: read %s: %w", ErrInvalidConfig, path, err)
	}

	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("%w: parse %s: %w", ErrInvalidConfig, path, err)
	}

	setString(&c.Addr, fc.Addr)
	setString(&c.SessionKey, fc.SessionKey)
	setString(&c.WorkerID, fc.WorkerID)
	setString(&c.Name, fc.Name)
	if fc.Tools != nil {
		c.Tools = fc.Tools
	}
	if fc.Tags != nil {
		c.Tags = fc.Tags
	}
	if fc.HeartbeatSecs != nil {
		c.HeartbeatInterval = seconds(*fc.HeartbeatSecs)
	}
	if fc.FetchTimeoutSecs != nil {
		c.FetchTimeout = seconds(*fc.FetchTimeoutSecs)
	}
	if fc.ShutdownTimeoutSecs != nil {
		c.ShutdownTimeout = seconds(*fc.ShutdownTimeoutSecs)
	}
	if fc.Sandbox != "" {
		c.Sandbox = sandbox.Kind(fc.Sandbox)
	}
	return nil
}

func (c *Config) loadEnv(getenv func(string) string) error {
	setString(&c.Addr, getenv("CONVEYOR_ADDR"))
	setString(&c.SessionKey, getenv("CONVEYOR_SESSION_KEY"))
	setString(&c.WorkerID, getenv("CONVEYOR_WORKER_ID"))
	setString(&c.Name, getenv("CONVEYOR_WORKER_NAME"))

	if v := getenv("CONVEYOR_WORKER_TOOLS"); v != "" {
		c.Tools = splitList(v)
	}
	if v := getenv("CONVEYOR_WORKER_TAGS"); v != "" {
		c.Tags = splitList(v)
	}
	if v := getenv("CONVEYOR_SANDBOX"); v != "" {
		c.Sandbox = sandbox.Kind(v)
	}

	durations := []struct {
		key string
		dst *time.Duration
	}{
		{"CONVEYOR_HEARTBEAT_SECS", &c.HeartbeatInterval},
		{"CONVEYOR_FETCH_TIMEOUT_SECS", &c.FetchTimeout},
		{"CONVEYOR_SHUTDOWN_TIMEOUT_SECS", &c.ShutdownTimeout},
	}
	for _, d := range durations {
		v := getenv(d.key)
		if v == "" {
			continue
		}
		n, err := strconv.ParseUint(v, 10, 32)
		if err != nil {
			return fmt.Errorf("%w: %s=%q is not a whole number of seconds", ErrInvalidConfig, d.key, v)
		}
		*d.dst = seconds(n)
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.WorkerID == "" {
		c.WorkerID = "cvw-" + uuid.NewString()
	}
	if c.Name == "" {
		c.Name = "worker-" + uuid.NewString()[:8]
	}
	if len(c.Tags) == 0 {
		c.Tags = []string{defaultTag}
	}
	if c.Sandbox == "" {
		c.Sandbox = sandbox.KindAuto
	}
}

// Validate проверяет настройки до запуска воркера.
func (c *Config) Validate() error {
	switch {
	case c.Addr == "":
		return fmt.Errorf("%w: server address is required", ErrInvalidConfig)
	case c.SessionKey == "":
		return fmt.Errorf("%w: session key is required", ErrInvalidConfig)
	case c.WorkerID == "":
		return fmt.Errorf("%w: worker id is required", ErrInvalidConfig)
	case c.HeartbeatInterval <= 0:
		return fmt.Errorf("%w: heartbeat interval must be positive", ErrInvalidConfig)
	case c.FetchTimeout <= 0:
		return fmt.Errorf("%w: fetch timeout must be positive", ErrInvalidConfig)
	case c.ShutdownTimeout < 0:
		return fmt.Errorf("%w: shutdown timeout must not be negative", ErrInvalidConfig)
	}

	switch c.Sandbox {
	case sandbox.KindAuto, sandbox.KindNamespace, sandbox.KindPlain:
	default:
		return fmt.Errorf("%w: unknown sandbox %q", ErrInvalidConfig, c.Sandbox)
	}

	for _, tag := range c.Tags {
		if tag == "" || strings.ContainsAny(tag, " \t\r\n") {
			return fmt.Errorf("%w: bad tag %q", ErrInvalidConfig, tag)
		}
	}
	return nil
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func seconds(n uint64) time.Duration {
	return time.Duration(n) * time.Second
}

// splitList разбирает "a, b,c" в [a b c].
func splitList(v string) []string {
	var out []string
	for _, item := range strings.Split(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
