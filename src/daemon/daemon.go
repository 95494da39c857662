package daemon

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"
	"time"

	"chargen/src/config"
)

// Run starts the daemon with JSON-RPC server
func Run() error {
	if err := config.EnsureDirs(); err != nil {
		return fmt.Errorf("failed to create directories: %w", err)
	}

	pidPath, err := getPidFilePath()
	if err != nil {
		return err
	}
	if err := writePidFile(pidPath); err != nil {
		return err
	}
	defer os.Remove(pidPath)

	settings, err := config.LoadSettings()
	if err != nil {
		return fmt.Errorf("failed to load settings: %w", err)
	}

	dbPath := settings.Daemon.DatabasePath
	if dbPath == "" {
		dbPath, err = config.GetDatabasePath()
		if err != nil {
			return fmt.Errorf("failed to resolve database path: %w", err)
		}
	}

	server, err := NewServer(dbPath, settings)
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	if err := server.Start(); err != nil {
		return fmt.Errorf("failed to start server: %w", err)
	}

	log.Printf("Daemon started successfully (PID: %d)", os.Getpid())
	log.Printf("JSON-RPC socket: %s", server.socketPath)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM, syscall.SIGHUP)

	for sig := range sigChan {
		switch sig {
		case syscall.SIGHUP:
			log.Println("Received SIGHUP, reloading catalog...")
			if err := server.ReloadCatalog(); err != nil {
				log.Printf("Failed to reload catalog: %v", err)
			} else {
				log.Println("Catalog reloaded successfully")
			}
		default:
			log.Printf("Received signal %v, shutting down gracefully...", sig)
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return server.Stop(ctx)
		}
	}
	return nil
}

// IsRunning checks if daemon is already running
func IsRunning() (bool, int) {
	pidPath, err := getPidFilePath()
	if err != nil {
		return false, 0
	}
	data, err := os.ReadFile(pidPath)
	if err != nil {
		return false, 0
	}

	pid, err := strconv.Atoi(string(data))
	if err != nil {
		return false, 0
	}

	process, err := os.FindProcess(pid)
	if err != nil {
		return false, 0
	}

	if err := process.Signal(syscall.Signal(0)); err != nil {
		// Process doesn't exist, clean up stale PID file
		os.Remove(pidPath)
		return false, 0
	}

	return true, pid
}

// Stop stops a running daemon
func Stop(pid int) error {
	process, err := os.FindProcess(pid)
	if err != nil {
		return fmt.Errorf("failed to find process: %w", err)
	}

	if err := process.Signal(syscall.SIGTERM); err != nil {
		return fmt.Errorf("failed to send SIGTERM: %w", err)
	}

	// Wait for graceful shutdown
	time.Sleep(2 * time.Second)

	if err := process.Signal(syscall.Signal(0)); err == nil {
		log.Println("Graceful shutdown timed out, forcing kill...")
		if err := process.Kill(); err != nil {
			return fmt.Errorf("failed to kill process: %w", err)
		}
	}

	if pidPath, err := getPidFilePath(); err == nil {
		os.Remove(pidPath)
	}
	return nil
}

func getPidFilePath() (string, error) {
	dataDir, err := config.GetDataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dataDir, "daemon.pid"), nil
}

func writePidFile(path string) error {
	pidFile, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create PID file: %w", err)
	}
	defer pidFile.Close()

	if _, err := pidFile.WriteString(fmt.Sprintf("%d", os.Getpid())); err != nil {
		return fmt.Errorf("failed to write PID: %w", err)
	}
	return nil
}
