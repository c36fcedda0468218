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
	"time"

	"github.com/spf13/cobra"

	"github.com/shraw06/docsplusplus/internal/archive"
	"github.com/shraw06/docsplusplus/internal/logger"
	"github.com/shraw06/docsplusplus/internal/metrics"
	"github.com/shraw06/docsplusplus/internal/ss"
	"github.com/shraw06/docsplusplus/internal/telemetry"
	"github.com/shraw06/docsplusplus/pkg/config"
)

var (
	foreground bool
	pidFile    string
	logFile    string
)

var startCmd = &cobra.Command{
	Use:   "start [nm-ip] [nm-port] [client-port] [ss-id]",
	Short: "Start a storage server",
	Long: `Start a storage server: it registers with the name server, serves
the command channel the name server forwards metadata operations on,
and listens on its own client port for direct reads, writes, streams,
and undos.

The four positional arguments are the legacy form this daemon has
always accepted (nm-ip nm-port client-port ss-id); any of them may be
left off and supplied instead via --nm-ip/--nm-port/--client-port/--id,
environment variables, or a config file. When a flag and a positional
arg both set the same value, the flag wins.

By default ssd runs in the background (daemon mode). Use --foreground
to run in the foreground for debugging or under a process supervisor.`,
	Args: cobra.MaximumNArgs(4),
	RunE: runStart,
}

var (
	flagNMIP       string
	flagNMPort     int
	flagClientPort int
	flagSSID       int
)

func init() {
	startCmd.Flags().BoolVarP(&foreground, "foreground", "f", false, "Run in foreground (default: background/daemon mode)")
	startCmd.Flags().StringVar(&pidFile, "pid-file", "", "Path to PID file (default: $XDG_STATE_HOME/ssd/ssd.pid)")
	startCmd.Flags().StringVar(&logFile, "log-file", "", "Path to log file for daemon mode (default: $XDG_STATE_HOME/ssd/ssd.log)")

	startCmd.Flags().StringVar(&flagNMIP, "nm-ip", "", "Name server IP address")
	startCmd.Flags().IntVar(&flagNMPort, "nm-port", 0, "Name server SS registration port")
	startCmd.Flags().IntVar(&flagClientPort, "client-port", 0, "Port this storage server listens on for clients")
	startCmd.Flags().IntVar(&flagSSID, "id", 0, "This storage server's numeric ID")
}

// applyPositionalArgs overlays the legacy "nm-ip nm-port client-port ss-id"
// positional form, then any of the equivalent flags, onto cfg.SS. Flags win
// over positional args, which win over the loaded config file.
func applyPositionalArgs(cfg *config.Config, args []string) error {
	if len(args) > 0 {
		cfg.SS.NMIP = args[0]
	}
	if len(args) > 1 {
		port, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("invalid nm-port %q: %w", args[1], err)
		}
		cfg.SS.NMPort = port
	}
	if len(args) > 2 {
		port, err := strconv.Atoi(args[2])
		if err != nil {
			return fmt.Errorf("invalid client-port %q: %w", args[2], err)
		}
		cfg.SS.ClientPort = port
	}
	if len(args) > 3 {
		id, err := strconv.Atoi(args[3])
		if err != nil {
			return fmt.Errorf("invalid ss-id %q: %w", args[3], err)
		}
		cfg.SS.ID = id
	}

	if flagNMIP != "" {
		cfg.SS.NMIP = flagNMIP
	}
	if flagNMPort != 0 {
		cfg.SS.NMPort = flagNMPort
	}
	if flagClientPort != 0 {
		cfg.SS.ClientPort = flagClientPort
	}
	if flagSSID != 0 {
		cfg.SS.ID = flagSSID
	}

	if cfg.SS.NMIP == "" {
		return fmt.Errorf("nm-ip is required (positional arg, --nm-ip, DFS_SS_NM_IP, or config)")
	}
	if cfg.SS.NMPort == 0 {
		return fmt.Errorf("nm-port is required (positional arg, --nm-port, DFS_SS_NM_PORT, or config)")
	}
	if cfg.SS.ClientPort == 0 {
		return fmt.Errorf("client-port is required (positional arg, --client-port, DFS_SS_CLIENT_PORT, or config)")
	}
	return nil
}

// nmHeartbeatPort derives the name server's heartbeat port from its
// registration port by the fleet-wide port convention (ss_port,
// ss_port+1, ss_port+2 for registration, client, and heartbeat), since
// the legacy positional form has no fifth slot for it.
func nmHeartbeatPort(nmPort int) int {
	return nmPort + 2
}

func runStart(cmd *cobra.Command, args []string) error {
	if !foreground {
		return startDaemon(args)
	}

	cfg, err := config.MustLoad(GetConfigFile())
	if err != nil {
		return err
	}
	if err := applyPositionalArgs(cfg, args); err != nil {
		return err
	}
	if err := InitLogger(cfg); err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	telemetryShutdown, err := telemetry.Init(ctx, telemetry.Config{
		Enabled:        cfg.Telemetry.Enabled,
		ServiceName:    "ssd",
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
		ServiceName:    "ssd",
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

	logger.Info("storage server starting",
		"ss_id", cfg.SS.ID, "nm_ip", cfg.SS.NMIP, "nm_port", cfg.SS.NMPort, "client_port", cfg.SS.ClientPort)
	if telemetry.IsEnabled() {
		logger.Info("telemetry enabled", "endpoint", cfg.Telemetry.Endpoint)
	}
	if telemetry.IsProfilingEnabled() {
		logger.Info("profiling enabled", "endpoint", cfg.Telemetry.Profiling.Endpoint)
	}

	if cfg.Metrics.Enabled {
		metrics.InitRegistry()
	}

	store, err := ss.NewStore(cfg.SS.ID, cfg.SS.StorageRoot, cfg.SS.TempDir)
	if err != nil {
		return fmt.Errorf("failed to open storage: %w", err)
	}
	dispatcher := ss.NewDispatcher(store)

	archiver, err := archive.New(ctx, cfg.SS.Archive)
	if err != nil {
		return fmt.Errorf("open checkpoint archiver: %w", err)
	}
	if archiver != nil {
		dispatcher.SetArchiver(archiver)
		logger.Info("checkpoint archive enabled", "bucket", cfg.SS.Archive.Bucket)
	} else {
		logger.Info("checkpoint archive disabled")
	}

	selfIP, err := localOutboundIP(cfg.SS.NMIP)
	if err != nil {
		return fmt.Errorf("failed to determine outbound address: %w", err)
	}

	nmCommandAddr := net.JoinHostPort(cfg.SS.NMIP, strconv.Itoa(cfg.SS.NMPort))
	commandConn, err := ss.Register(nmCommandAddr, cfg.SS.ID, selfIP, cfg.SS.NMPort, cfg.SS.ClientPort, store, cfg.SS.CommandTimeout)
	if err != nil {
		return fmt.Errorf("failed to register with name server: %w", err)
	}
	go dispatcher.ServeCommand(commandConn)

	stopHeartbeat := make(chan struct{})
	nmHeartbeatAddr := net.JoinHostPort(cfg.SS.NMIP, strconv.Itoa(nmHeartbeatPort(cfg.SS.NMPort)))
	heartbeatDone := make(chan error, 1)
	go func() {
		heartbeatDone <- ss.RunHeartbeat(nmHeartbeatAddr, cfg.SS.ID, cfg.SS.HeartbeatInterval, stopHeartbeat)
	}()

	clientListener, err := net.Listen("tcp", net.JoinHostPort("", strconv.Itoa(cfg.SS.ClientPort)))
	if err != nil {
		return fmt.Errorf("listen client port: %w", err)
	}
	go closeOnDone(ctx, clientListener)

	serverDone := make(chan error, 3)
	go acceptLoop(clientListener, dispatcher.ServeClient, serverDone)

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

	logger.Info("storage server is running. Press Ctrl+C to stop.")

	select {
	case <-sigChan:
		signal.Stop(sigChan)
		logger.Info("shutdown signal received, initiating graceful shutdown")
		close(stopHeartbeat)
		cancel()
		if metricsServer != nil {
			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
			_ = metricsServer.Stop(shutdownCtx)
			shutdownCancel()
		}
		logger.Info("storage server stopped gracefully")

	case err := <-heartbeatDone:
		signal.Stop(sigChan)
		if err != nil {
			logger.Error("heartbeat loop error", "error", err)
			return err
		}

	case err := <-serverDone:
		signal.Stop(sigChan)
		close(stopHeartbeat)
		if err != nil {
			logger.Error("storage server error", "error", err)
			return err
		}
	}

	return nil
}

// localOutboundIP reports the local address the kernel would use to reach
// nmHost, so the name server learns a dialable IP for this storage server
// without depending on hostname resolution.
func localOutboundIP(nmHost string) (string, error) {
	conn, err := net.Dial("udp", net.JoinHostPort(nmHost, "80"))
	if err != nil {
		return "", err
	}
	defer conn.Close()
	return conn.LocalAddr().(*net.UDPAddr).IP.String(), nil
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

// startDaemon starts the server as a background daemon process, forwarding
// any positional args through to the re-exec'd foreground invocation.
func startDaemon(args []string) error {
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
						return fmt.Errorf("ssd is already running (PID %d)", pid)
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
	daemonArgs = append(daemonArgs, args...)

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

	fmt.Printf("ssd started in background (PID %d)\n", cmd.Process.Pid)
	fmt.Printf("  PID file: %s\n", pidPath)
	fmt.Printf("  Log file: %s\n", logPath)
	return nil
}
