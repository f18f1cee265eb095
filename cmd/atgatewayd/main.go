// Command atgatewayd is the daemon entry point: it wires the protocol
// engine to a real serial port, exposes the HTTP/WebSocket admin surface,
// logs to a SQLite audit log, and advertises itself over mDNS.
package main

import (
	"context"
	"flag"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"go.bug.st/serial"

	"github.com/northlake-iot/atdrv"
	"github.com/northlake-iot/atdrv/at"
	"github.com/northlake-iot/atdrv/engine"
	"github.com/northlake-iot/atdrv/transportdrv"
)

func main() {
	flag.String("serial-port", "/dev/ttyUSB0", "Serial port the modem is attached to")
	flag.Int("baud-rate", 115200, "Baud rate for serial communication")
	flag.String("bind-address", "0.0.0.0:8080", "Bind address for the HTTP admin server")
	flag.String("log-level", "info", "Log level (debug, info, warn, error)")
	flag.String("db-path", "atgatewayd.db", "Path to the SQLite audit log")
	flag.Bool("enable-mdns", true, "Advertise the admin server over mDNS")
	flag.String("service-name", "atgatewayd", "mDNS service instance name")
	flag.Bool("strict-extended-framing", false, "Treat known bare URCs as unsolicited even mid-command")
	configFile := flag.String("config", "", "Path to an optional YAML config file")
	flag.Parse()

	config, err := atdrv.LoadConfig(
		atdrv.WithDefaults(),
		atdrv.WithYAMLFile(*configFile),
		atdrv.WithEnv(),
		atdrv.WithFlags(flag.CommandLine),
	)
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logLevel := slog.LevelInfo
	switch config.LogLevel {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	}
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))

	store, err := atdrv.NewStore(config.DBPath)
	if err != nil {
		logger.Error("failed to open audit log", "error", err)
		os.Exit(1)
	}
	defer store.Close()

	dialer := transportdrv.SerialDialer{
		PortName: config.SerialPort,
		Mode:     &serial.Mode{BaudRate: config.BaudRate},
	}
	dialCtx, dialCancel := context.WithTimeout(context.Background(), 10*time.Second)
	transport, err := dialer.Dial(dialCtx)
	dialCancel()
	if err != nil {
		logger.Error("failed to open serial port", "error", err, "port", config.SerialPort)
		os.Exit(1)
	}

	table := at.DefaultTable()
	driver := transportdrv.NewSerial(transport)
	eng := engine.NewEngine(table, driver,
		engine.WithRXCapacity(config.RXCapacity),
		engine.WithStrictExtendedFraming(config.StrictExtendedFraming),
		engine.WithLogger(logger.With("component", "engine")),
	)
	driver.Bind(eng)

	runCtx, runCancel := context.WithCancel(context.Background())
	defer runCancel()
	go func() {
		if err := driver.Run(runCtx); err != nil {
			logger.Warn("serial read loop stopped", "error", err)
		}
	}()

	if err := eng.Init(); err != nil {
		logger.Error("failed to start engine", "error", err)
		os.Exit(1)
	}
	defer eng.Deinit()

	server := atdrv.NewServer(eng, table, store, logger.With("component", "server"))
	httpServer := &http.Server{Addr: config.BindAddress, Handler: server}

	var discovery *atdrv.Discovery
	if config.EnableMDNS {
		if _, portStr, splitErr := net.SplitHostPort(config.BindAddress); splitErr == nil {
			if port, convErr := strconv.Atoi(portStr); convErr == nil {
				var advErr error
				discovery, advErr = atdrv.Advertise(config.ServiceName, port, nil)
				if advErr != nil {
					logger.Warn("mdns advertisement failed", "error", advErr)
				}
			}
		}
	}
	if discovery != nil {
		defer discovery.Close()
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		logger.Info("starting HTTP server", "address", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("HTTP server failed", "error", err)
			os.Exit(1)
		}
	}()

	sig := <-sigChan
	logger.Info("received shutdown signal", "signal", sig)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("failed to gracefully shut down HTTP server", "error", err)
	}

	if err := transport.Close(); err != nil {
		logger.Warn("failed to close serial port", "error", err)
	}
}
