package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"dqx0.com/go/exchange/httpx"
	"dqx0.com/go/exchange/internal/obs"
	"github.com/rs/zerolog"
)

const usage = `
Usage:	httpx-serve [options]

Options:
   -c path      Path to the YAML configuration file
   -addr addr   Listen address (overrides the configuration)
   -log level   One of: debug, info, warn, error
   -h           Show usage information
`

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "ERR: %s\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	var configPath, addr, level string
	flagSet := flag.NewFlagSet("httpx-serve", flag.ContinueOnError)
	flagSet.Usage = func() { fmt.Fprint(flagSet.Output(), usage) }
	flagSet.StringVar(&configPath, "c", "", "")
	flagSet.StringVar(&addr, "addr", "", "")
	flagSet.StringVar(&level, "log", "", "")
	if err := flagSet.Parse(args); err != nil {
		return err
	}

	config, err := LoadConfig(configPath)
	if err != nil {
		return err
	}
	if addr != "" {
		config.Addr = addr
	}
	if level != "" {
		config.LogLevel = level
	}
	if err := config.Validate(); err != nil {
		return err
	}

	minLevel, _ := obs.ParseLevel(config.LogLevel)
	logger := obs.ZeroLogger{
		L: zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
			Level(obs.ZerologLevel(minLevel)).
			With().Timestamp().Logger(),
	}

	s := &httpx.Server{
		Addr:              config.Addr,
		Handler:           echoHandler(config.Protocol),
		ReadHeaderTimeout: config.ReadHeaderTimeout,
		WriteTimeout:      config.WriteTimeout,
		MaxHeaderBytes:    config.MaxHeaderBytes,
		Logger:            logger,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.Shutdown(shutdownCtx); err != nil {
			logger.Logf(obs.Warn, "shutdown: %v", err)
		}
	}()

	if err := s.ListenAndServe(); err != nil && !errors.Is(err, httpx.ErrServerClosed) {
		return err
	}
	return nil
}

type echo struct {
	ID     string `json:"id"`
	Method string `json:"method"`
	Path   string `json:"path"`
}

// echoHandler answers every request with a JSON description of it.
func echoHandler(protocol string) httpx.Handler {
	return httpx.HandlerFunc(func(r *httpx.Request) *httpx.Response {
		res := httpx.NewResponse()
		_ = res.SetProtocol(protocol)

		method, err := r.Method()
		if err != nil {
			return res.Status(405).
				SetHeader("Allow", strings.Join(httpx.AllowedMethods, ", ")).
				SetHeader("Content-Type", "text/plain; charset=utf-8").
				SetBody(err.Error() + "\n")
		}
		b, err := json.Marshal(echo{ID: r.ID(), Method: method, Path: r.Path()})
		if err != nil {
			return res.Status(500)
		}
		return res.
			SetHeader("Content-Type", "application/json").
			SetHeader("X-Request-Id", r.ID()).
			SetBody(string(b) + "\n")
	})
}
