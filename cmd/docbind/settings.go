package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/joeshaw/envdecode"

	"github.com/reoring/docbind"
)

// settings are read from the environment.
type settings struct {
	// LogLevel is debug, info, warn or error. ENV: DOCBIND_LOG_LEVEL
	LogLevel string `env:"DOCBIND_LOG_LEVEL,default=info"`
	// LogFormat is text or json. ENV: DOCBIND_LOG_FORMAT
	LogFormat string `env:"DOCBIND_LOG_FORMAT,default=text"`
	// Mode is stop or continue. ENV: DOCBIND_MODE
	Mode string `env:"DOCBIND_MODE,default=stop"`
	// Unknown is ignore, warn or reject. ENV: DOCBIND_UNKNOWN
	Unknown string `env:"DOCBIND_UNKNOWN,default=ignore"`
	// Lang selects the message language. ENV: DOCBIND_LANG
	Lang string `env:"DOCBIND_LANG,default=en"`
}

func loadSettings() (settings, error) {
	var s settings
	if err := envdecode.Decode(&s); err != nil && !errors.Is(err, envdecode.ErrNoTargetFieldsAreSet) {
		return s, fmt.Errorf("environment: %w", err)
	}
	return s, nil
}

func (s settings) logger(w io.Writer) (*slog.Logger, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(s.LogLevel)); err != nil {
		return nil, fmt.Errorf("DOCBIND_LOG_LEVEL: %w", err)
	}
	ho := &slog.HandlerOptions{Level: lvl}
	switch strings.ToLower(s.LogFormat) {
	case "json":
		return slog.New(slog.NewJSONHandler(w, ho)), nil
	case "text", "":
		return slog.New(slog.NewTextHandler(w, ho)), nil
	}
	return nil, fmt.Errorf("DOCBIND_LOG_FORMAT: unknown format %q", s.LogFormat)
}

// options returns the mapping options. The Reporter is left for the caller.
func (s settings) options() (docbind.Options, error) {
	var o docbind.Options
	switch strings.ToLower(s.Mode) {
	case "stop", "":
		o.Mode = docbind.StopOnError
	case "continue":
		o.Mode = docbind.ContinueOnError
	default:
		return o, fmt.Errorf("DOCBIND_MODE: unknown mode %q", s.Mode)
	}
	switch strings.ToLower(s.Unknown) {
	case "ignore", "":
		o.Unknown = docbind.UnknownIgnore
	case "warn":
		o.Unknown = docbind.UnknownWarn
	case "reject":
		o.Unknown = docbind.UnknownReject
	default:
		return o, fmt.Errorf("DOCBIND_UNKNOWN: unknown policy %q", s.Unknown)
	}
	return o, nil
}
