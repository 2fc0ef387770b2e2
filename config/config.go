package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
)

type (
	APP struct {
		Name      string
		Host      string
		Port      string
		Env       string
		JWTSecret string
	}
	DB struct {
		User     string
		Password string
		Name     string
		Host     string
		Port     string
	}
	// Storage configures the local blob store and the upload policy.
	//
	// AllowedExtensions is parsed from a comma-separated, dot-prefixed,
	// case-insensitive list ("pdf,.PNG" -> {".pdf", ".png"}). An empty list
	// rejects every upload; the single entry "*" allows every extension.
	// Both are deliberate deployment choices, not fallbacks.
	Storage struct {
		UploadRoot        string
		MaxUploadBytes    int64 // 0 means no limit
		AllowedExtensions map[string]struct{}
		AllowAll          bool
	}
	MQ struct {
		User         string
		Password     string
		Vhost        string
		Host         string
		AmqpPort     string
		Exchange     string
		ExchangeType string
		QueueName    string
	}

	Config struct {
		App     APP
		DB      DB
		Storage Storage
		MQ      MQ
	}
)

func getEnv(key, def string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return def
}

func Load() (Config, error) {
	app := APP{
		Name:      getEnv("SERVICE_NAME", ""),
		Host:      getEnv("SERVICE_HOST", ""),
		Port:      getEnv("SERVICE_PORT", ""),
		Env:       getEnv("SERVICE_ENV", ""),
		JWTSecret: getEnv("SERVICE_JWT_SECRET", ""),
	}
	db := DB{
		User:     getEnv("POSTGRES_USER", ""),
		Password: getEnv("POSTGRES_PASSWORD", ""),
		Name:     getEnv("POSTGRES_DB", ""),
		Host:     getEnv("POSTGRES_HOST", ""),
		Port:     getEnv("POSTGRES_PORT", ""),
	}
	storage, err := loadStorage()
	if err != nil {
		return Config{}, err
	}
	mq := MQ{
		User:         getEnv("RABBITMQ_USER", ""),
		Password:     getEnv("RABBITMQ_PASSWORD", ""),
		Vhost:        getEnv("RABBITMQ_VHOST", ""),
		Host:         getEnv("RABBITMQ_HOST", ""),
		AmqpPort:     getEnv("RABBITMQ_AMQP_PORT", ""),
		Exchange:     getEnv("RABBITMQ_EXCHANGE", ""),
		ExchangeType: getEnv("RABBITMQ_EXCHANGE_TYPE", ""),
		QueueName:    getEnv("RABBITMQ_QUEUE_NAME", ""),
	}

	return Config{
		App:     app,
		DB:      db,
		Storage: storage,
		MQ:      mq,
	}, nil
}

func loadStorage() (Storage, error) {
	root := getEnv("STORAGE_UPLOAD_ROOT", "")
	if root == "" {
		return Storage{}, fmt.Errorf("STORAGE_UPLOAD_ROOT is required")
	}

	var maxBytes int64
	if raw := getEnv("STORAGE_MAX_UPLOAD_BYTES", "0"); raw != "" {
		v, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || v < 0 {
			return Storage{}, fmt.Errorf("invalid STORAGE_MAX_UPLOAD_BYTES %q", raw)
		}
		maxBytes = v
	}

	s := Storage{
		UploadRoot:        root,
		MaxUploadBytes:    maxBytes,
		AllowedExtensions: map[string]struct{}{},
	}
	for _, e := range strings.Split(getEnv("STORAGE_ALLOWED_EXTENSIONS", ""), ",") {
		e = strings.ToLower(strings.TrimSpace(e))
		if e == "" {
			continue
		}
		if e == "*" {
			s.AllowAll = true
			continue
		}
		if !strings.HasPrefix(e, ".") {
			e = "." + e
		}
		s.AllowedExtensions[e] = struct{}{}
	}

	return s, nil
}

// ExtensionAllowed reports whether ext (dot-prefixed, any case) may be uploaded.
func (s Storage) ExtensionAllowed(ext string) bool {
	if s.AllowAll {
		return true
	}
	_, ok := s.AllowedExtensions[strings.ToLower(ext)]
	return ok
}

func (c Config) DBDSN() (string, error) {
	if c.DB.User == "" || c.DB.Name == "" || c.DB.Host == "" || c.DB.Port == "" {
		return "", fmt.Errorf("incomplete DB config")
	}
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s",
		c.DB.User,
		c.DB.Password,
		c.DB.Host,
		c.DB.Port,
		c.DB.Name,
	), nil
}

func (c Config) AMQPDSN() (string, error) {
	if c.MQ.User == "" || c.MQ.Host == "" || c.MQ.AmqpPort == "" {
		return "", fmt.Errorf("invalid MQ config: user, host and amqp port are required")
	}

	return fmt.Sprintf(
		"%s://%s@%s:%s/%s",
		"amqp",
		url.UserPassword(c.MQ.User, c.MQ.Password).String(),
		c.MQ.Host,
		c.MQ.AmqpPort,
		url.PathEscape(c.MQ.Vhost),
	), nil
}
