package cli

import (
	"io"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/pablasso/quadro/internal/config"
	"github.com/pablasso/quadro/internal/gateway"
	"github.com/pablasso/quadro/internal/logging"
)

// env holds what a command needs once flags are parsed.
type env struct {
	cfg      *config.Config
	log      *log.Logger
	closeLog func() error
}

// loadEnv layers the flags over the file and environment configuration and
// builds the logger. Without a log file, logs go to fallback; a nil fallback
// discards them.
func loadEnv(cmd *cobra.Command, g *globalFlags, fallback io.Writer) (*env, error) {
	cfg, err := config.Load(g.configPath)
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("api-url") {
		cfg.APIURL = g.apiURL
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = g.logLevel
	}
	if flags.Changed("log-file") {
		cfg.LogFile = g.logFile
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger, closeLog, err := logging.New(logging.Options{
		Level:    cfg.LogLevel,
		File:     cfg.LogFile,
		Fallback: fallback,
	})
	if err != nil {
		return nil, err
	}
	return &env{cfg: cfg, log: logger, closeLog: closeLog}, nil
}

func (e *env) close() {
	if err := e.closeLog(); err != nil {
		e.log.WithError(err).Debug("failed to close log file")
	}
}

// client returns a gateway for the configured API.
func (e *env) client() (*gateway.Client, error) {
	opts := []gateway.Option{gateway.WithLogger(e.log)}
	if e.cfg.RequestTimeout > 0 {
		opts = append(opts, gateway.WithTimeout(e.cfg.RequestTimeout))
	}
	return gateway.New(e.cfg.APIURL, opts...)
}
