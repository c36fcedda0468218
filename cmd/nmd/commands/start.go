package commands

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/exec"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/shraw06/docsplusplus/internal/adminapi"
	"github.com/shraw06/docsplusplus/internal/audit"
	"github.com/shraw06/docsplusplus/internal/logger"
	"github.com/shraw06/docsplusplus/internal/metrics"
	"github.com/shraw06/docsplusplus/internal/nm"
	"github.com/shraw06/docsplusplus/internal/snapshot"
	"github.com/shraw06/docsplusplus/internal/telemetry"
	"github.com/shraw06/docsplusplus/pkg/config"
)

var (
	foreground bool
	pidFile    string
	logFile    string
)

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the name server",
	Long: `Start the name server: its SS registration port, client port,
heartbeat port, and (if enabled) its read-only admin HTTP API.

By default nmd runs in the background (daemon mode). Use --foreground
to run in the foreground for debugging or under a process supervisor.`,
	RunE: runStart,
}

func init() {
	startCmd.Flags().BoolVarP(&foreground, "foreground", "f", false, "Run in foreground (default: background/daemon mode)")
	startCmd.Flags().StringVar(&pidFile, "pid-file", "", "Path to PID file (default: $XDG_STATE_HOME/nmd/nmd.pid)")
	startCmd.Flags().StringVar(&logFile, "log-file", "", "Path to log file for daemon mode (default: $XDG_STATE_HOME/nmd/nmd.log)")
}

func runStart(cmd *cobra.Command, args []string) error {
	if !foreground {
		return startDaemon()
	}

	cfg, err := config.MustLoad(GetConfigFile())
	if err != nil {
		return err
	}
	if err := InitLogger(cfg); err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	telemetryShutdown, err := telemetry.Init(ctx, telemetry.Config{
		Enabled:        cfg.Telemetry.Enabled,
		ServiceName:    "nmd",
		ServiceVersion: Version,
		Endpoint:       cfg.Telemetry.Endpoint,
		Insecure:       cfg.Telemetry.Insecure,
		SampleRate:     cfg.Telemetry.SampleRate,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize telemetry: %w", err)
	}
	defer func() {
		if err := telemetryShutdown(ctx); err != nil {
			logger.Error("telemetry shutdown error", "error", err)
		}
	}()

	profilingShutdown, err := telemetry.InitProfiling(telemetry.ProfilingConfig{
		Enabled:        cfg.Telemetry.Profiling.Enabled,
		ServiceName:    "nmd",
		ServiceVersion: Version,
		Endpoint:       cfg.Telemetry.Profiling.Endpoint,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize profiling: %w", err)
	}
	defer func() {
		if err := profilingShutdown(); err != nil {
			logger.Error("profiling shutdown error", "error", err)
		}
	}()

	logger.Info("name server starting",
		"ss_port", cfg.NM.SSPort, "client_port", cfg.NM.ClientPort, "heartbeat_port", cfg.NM.HeartbeatPort,
		"config_source", getConfigSource(GetConfigFile()))
	if telemetry.IsEnabled() {
		logger.Info("telemetry enabled", "endpoint", cfg.Telemetry.Endpoint)
	}
	if telemetry.IsProfilingEnabled() {
		logger.Info("profiling enabled", "endpoint", cfg.Telemetry.Profiling.Endpoint)
	}

	if cfg.Metrics.Enabled {
		metrics.InitRegistry()
	}

	nmServer := nm.NewServer(cfg.Cache.Capacity)

	var snapshotter *snapshot.Snapshotter
	if cfg.Snapshot.Enabled {
		snapStore, err := snapshot.Open(cfg.NM.DataDir, cfg.Snapshot.MaxSize)
		if err != nil {
			return fmt.Errorf("open snapshot store: %w", err)
		}
		defer snapStore.Close()

		snapshotter = snapshot.NewSnapshotter(snapStore, nmServer)
		if err := snapshotter.Load(); err != nil {
			return fmt.Errorf("load snapshot: %w", err)
		}
		go snapshotter.Run(ctx, cfg.Snapshot.Interval)
		logger.Info("snapshot enabled", "data_dir", cfg.NM.DataDir, "interval", cfg.Snapshot.Interval)
	} else {
		logger.Info("snapshot disabled")
	}

	dispatcher := nm.NewDispatcher(nmServer)

	auditLog, err := audit.New(cfg.Audit)
	if err != nil {
		return fmt.Errorf("open audit log: %w", err)
	}
	if auditLog != nil {
		dispatcher.SetAuditLog(auditLog)
		logger.Info("audit log enabled", "driver", cfg.Audit.Driver)
	} else {
		logger.Info("audit log disabled")
	}

	stopHealth := make(chan struct{})
	go nmServer.SS.RunHealthMonitor(stopHealth)
	defer close(stopHealth)

	ssListener, err := net.Listen("tcp", net.JoinHostPort("", strconv.Itoa(cfg.NM.SSPort)))
	if err != nil {
		return fmt.Errorf("listen ss port: %w", err)
	}
	clientListener, err := net.Listen("tcp", net.JoinHostPort("", strconv.Itoa(cfg.NM.ClientPort)))
	if err != nil {
		return fmt.Errorf("listen client port: %w", err)
	}
	heartbeatListener, err := net.Listen("tcp", net.JoinHostPort("", strconv.Itoa(cfg.NM.HeartbeatPort)))
	if err != nil {
		return fmt.Errorf("listen heartbeat port: %w", err)
	}

	go closeOnDone(ctx, ssListener)
	go closeOnDone(ctx, clientListener)
	go closeOnDone(ctx, heartbeatListener)

	serverDone := make(chan error, 5)
	go acceptLoop(ssListener, dispatcher.ServeSSRegistration, serverDone)
	go acceptLoop(clientListener, dispatcher.ServeClient, serverDone)
	go acceptLoop(heartbeatListener, dispatcher.ServeHeartbeat, serverDone)

	var adminServer *adminapi.Server
	if cfg.Admin.Enabled {
		adminServer, err = adminapi.NewServer(cfg.Admin, nmServer)
		if err != nil {
			return fmt.Errorf("failed to create admin API server: %w", err)
		}
		go func() { serverDone <- adminServer.Start(ctx) }()
		logger.Info("admin API enabled", "port", cfg.Admin.Port)
	} else {
		logger.Info("admin API disabled")
	}

	var metricsServer *metrics.Server
	if cfg.Metrics.Enabled {
		metricsServer = metrics.NewServer(cfg.Metrics.Port)
		go func() { serverDone <- metricsServer.Start(ctx) }()
		logger.Info("metrics enabled", "port", cfg.Metrics.Port)
	} else {
		logger.Info("metrics disabled")
	}

	if pidFile != "" {
		if err := os.WriteFile(pidFile, []byte(strconv.Itoa(os.Getpid())), 0644); err != nil {
			return fmt.Errorf("failed to write PID file: %w", err)
		}
		defer func() { _ = os.Remove(pidFile) }()
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	logger.Info("name server is running. Press Ctrl+C to stop.")

	select {
	case <-sigChan:
		signal.Stop(sigChan)
		logger.Info("shutdown signal received, initiating graceful shutdown")
		cancel()
		if adminServer != nil {
			shutdownCtx, shutdownCancel := context.WithCancel(context.Background())
			_ = adminServer.Stop(shutdownCtx)
			shutdownCancel()
		}
		if metricsServer != nil {
			shutdownCtx, shutdownCancel := context.WithCancel(context.Background())
			_ = metricsServer.Stop(shutdownCtx)
			shutdownCancel()
		}
		if snapshotter != nil {
			if err := snapshotter.Save(); err != nil {
				logger.Error("final snapshot failed", "error", err)
			}
		}
		auditLog.Close()
		logger.Info("name server stopped gracefully")

	case err := <-serverDone:
		signal.Stop(sigChan)
		if err != nil {
			logger.Error("name server error", "error", err)
			return err
		}
	}

	return nil
}

// closeOnDone closes ln once ctx is cancelled, unblocking its Accept loop.
func closeOnDone(ctx context.Context, ln net.Listener) {
	<-ctx.Done()
	ln.Close()
}

// acceptLoop accepts connections on ln, handing each to its own handle
// goroutine, until Accept fails (typically because ln was closed by
// closeOnDone during shutdown).
func acceptLoop(ln net.Listener, handle func(net.Conn), done chan<- error) {
	for {
		conn, err := ln.Accept()
		if err != nil {
			done <- nil
			return
		}
		go handle(conn)
	}
}

// getConfigSource returns a description of where the config was loaded from.
func getConfigSource(configFile string) string {
	if configFile != "" {
		return configFile
	}
	if config.DefaultConfigExists() {
		return config.GetDefaultConfigPath()
	}
	return "defaults"
}

// startDaemon starts the server as a background daemon process.
func startDaemon() error {
	stateDir := GetDefaultStateDir()
	if err := os.MkdirAll(stateDir, 0755); err != nil {
		return fmt.Errorf("failed to create state directory: %w", err)
	}

	pidPath := pidFile
	if pidPath == "" {
		pidPath = GetDefaultPidFile()
	}

	if _, err := os.Stat(pidPath); err == nil {
		pidData, err := os.ReadFile(pidPath)
		if err == nil {
			var pid int
			if _, err := fmt.Sscanf(string(pidData), "%d", &pid); err == nil {
				if process, err := os.FindProcess(pid); err == nil {
					if err := process.Signal(syscall.Signal(0)); err == nil {
						return fmt.Errorf("nmd is already running (PID %d)", pid)
					}
				}
			}
		}
		_ = os.Remove(pidPath)
	}

	logPath := logFile
	if logPath == "" {
		logPath = GetDefaultLogFile()
	}

	executable, err := os.Executable()
	if err != nil {
		return fmt.Errorf("failed to get executable path: %w", err)
	}

	daemonArgs := []string{"start", "--foreground", "--pid-file", pidPath}
	if GetConfigFile() != "" {
		daemonArgs = append(daemonArgs, "--config", GetConfigFile())
	}

	cmd := exec.Command(executable, daemonArgs...)

	logFileHandle, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	cmd.Stdout = logFileHandle
	cmd.Stderr = logFileHandle
	cmd.SysProcAttr = &syscall.SysProcAttr{Setsid: true}

	if err := cmd.Start(); err != nil {
		_ = logFileHandle.Close()
		return fmt.Errorf("failed to start daemon: %w", err)
	}
	_ = logFileHandle.Close()

	fmt.Printf("nmd started in background (PID %d)\n", cmd.Process.Pid)
	fmt.Printf("  PID file: %s\n", pidPath)
	fmt.Printf("  Log file: %s\n", logPath)
	return nil
}
