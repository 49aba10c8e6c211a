package main

import "time"

// ServiceConfig is the document layout checked by `docbind check` and
// `docbind watch`.
type ServiceConfig struct {
	App      AppConfig       `docbind:"app,required"`
	Database DatabaseConfig  `docbind:"database"`
	Redis    RedisConfig     `docbind:"redis"`
	Logging  LoggingConfig   `docbind:"logging"`
	Features map[string]bool `docbind:"features"`
	Notes    string          `docbind:"-"`
}

type AppConfig struct {
	Name            string            `docbind:"name,required"`
	Version         string            `docbind:"version"`
	Environment     string            `docbind:"environment"`
	Host            string            `docbind:"host"`
	Port            uint16            `docbind:"port,required"`
	ShutdownTimeout time.Duration     `docbind:"shutdownTimeout"`
	TLS             TLSConfig         `docbind:"tls"`
	Cors            CorsConfig        `docbind:"cors"`
	Metadata        map[string]string `docbind:"metadata"`
}

type TLSConfig struct {
	Enabled  bool   `docbind:"enabled"`
	CertFile string `docbind:"certFile"`
	KeyFile  string `docbind:"keyFile"`
}

type CorsConfig struct {
	Enabled bool     `docbind:"enabled"`
	Origins []string `docbind:"origins"`
}

type DatabaseConfig struct {
	Host         string  `docbind:"host,required"`
	Port         int     `docbind:"port"`
	Database     string  `docbind:"database"`
	Username     string  `docbind:"username"`
	Password     *string `docbind:"password"`
	MaxConns     int     `docbind:"maxConns"`
	MaxIdleConns int     `docbind:"maxIdleConns"`
	SSLMode      string  `docbind:"sslMode"`
}

type RedisConfig struct {
	Addrs    []string `docbind:"addrs"`
	Database int      `docbind:"database"`
	PoolSize int      `docbind:"poolSize"`
}

type LoggingConfig struct {
	Level  string `docbind:"level"`
	Format string `docbind:"format"`
	Output string `docbind:"output"`
}
