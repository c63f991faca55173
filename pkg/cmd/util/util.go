package util

import (
	"context"
	"fmt"
	"net/http"
	_ "net/http/pprof" //nolint:gosec // by design
	"os"
	"os/signal"
	"runtime"
	"sync"
	"syscall"
	"time"

	"github.com/racetelemetry/laprecorder/log"
	"github.com/racetelemetry/laprecorder/pkg/config"
	"github.com/racetelemetry/laprecorder/pkg/utils"
)

func ParseLogLevel(l string, defaultVal log.Level) log.Level {
	level, err := log.ParseLevel(l)
	if err != nil {
		return defaultVal
	}
	return level
}

// SetupLogger creates the application logger from config and installs it as default.
func SetupLogger() *log.Logger {
	logger := newLogger(config.LogLevel, log.InfoLevel)
	log.ResetDefault(logger)
	return logger
}

// NewSQLLogger creates the logger used by the query tracer.
func NewSQLLogger() *log.Logger {
	return newLogger(config.SQLLogLevel, log.InfoLevel)
}

func newLogger(level string, defaultLevel log.Level) *log.Logger {
	opts := []log.Option{log.WithCaller(true), log.AddCallerSkip(1)}
	if config.LogFilter != "" {
		if f, err := log.WithFilter(config.LogFilter); err == nil {
			opts = append(opts, f)
		} else {
			fmt.Fprintf(os.Stderr, "Invalid log filter %q: %v\n", config.LogFilter, err)
		}
	}
	switch config.LogFormat {
	case "json":
		return log.New(os.Stderr, ParseLogLevel(level, defaultLevel), opts...)
	default:
		return log.DevLogger(os.Stderr, ParseLogLevel(level, log.DebugLevel), opts...)
	}
}

func StartProfiling() {
	if config.ProfilingPort <= 0 {
		return
	}
	log.Info("Starting profiling server on port", log.Int("port", config.ProfilingPort))
	go func() {
		//nolint:gosec // by design
		err := http.ListenAndServe(
			fmt.Sprintf("localhost:%d", config.ProfilingPort),
			nil)
		if err != nil {
			log.Error("Profiling server stopped", log.ErrorField(err))
		}
	}()
}

func SetupGoRoutinesDump() {
	go func() {
		sigs := make(chan os.Signal, 1)
		signal.Notify(sigs, syscall.SIGQUIT)
		buf := make([]byte, 1<<20)
		for {
			<-sigs
			stacklen := runtime.Stack(buf, true)
			fmt.Printf("=== received SIGQUIT ===\n*** goroutine dump...\n%s\n*** end\n",
				buf[:stacklen])
		}
	}()
}

func WaitTimeout() time.Duration {
	timeout, err := time.ParseDuration(config.WaitForServices)
	if err != nil {
		log.Warn("Invalid duration value. Setting default 60s", log.ErrorField(err))
		timeout = 60 * time.Second
	}
	return timeout
}

// WaitForRequiredServices blocks until every given address accepts tcp connections.
// Empty addresses are ignored.
func WaitForRequiredServices(ctx context.Context, addrs ...string) error {
	timeout := WaitTimeout()

	wg := sync.WaitGroup{}
	errs := make(chan error, len(addrs))
	for _, addr := range addrs {
		if addr == "" {
			continue
		}
		wg.Add(1)
		go func(addr string) {
			defer wg.Done()
			if err := utils.WaitForTCP(ctx, addr, timeout); err != nil {
				errs <- err
			}
		}(addr)
	}
	log.Debug("Waiting for connection checks to return")
	wg.Wait()
	close(errs)
	if err, ok := <-errs; ok {
		return fmt.Errorf("required services not ready: %w", err)
	}
	log.Debug("Required services are available")
	return nil
}
