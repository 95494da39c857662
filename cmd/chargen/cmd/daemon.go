package cmd

import (
	"encoding/json"
	"fmt"

	"chargen/src/daemon"

	"github.com/spf13/cobra"
)

// daemonCmd represents the daemon command
var daemonCmd = &cobra.Command{
	Use:   "daemon",
	Short: "Manage the prompt configurator daemon",
	Long: `Manage the background daemon that owns the slot state, constraint
engine, and prompt history. Interactive clients and the other chargen
commands talk to it over a unix socket.`,
}

// daemonStartCmd starts the daemon in the foreground
var daemonStartCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the daemon",
	RunE: func(cmd *cobra.Command, args []string) error {
		if isRunning, pid := daemon.IsRunning(); isRunning {
			return fmt.Errorf("daemon is already running (PID: %d)", pid)
		}

		fmt.Println("Starting chargen daemon...")
		return daemon.Run()
	},
}

// daemonStopCmd stops the daemon
var daemonStopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop the daemon",
	RunE: func(cmd *cobra.Command, args []string) error {
		isRunning, pid := daemon.IsRunning()
		if !isRunning {
			fmt.Println("Daemon is not running")
			return nil
		}

		fmt.Printf("Stopping daemon (PID: %d)...\n", pid)
		return daemon.Stop(pid)
	},
}

// daemonStatusCmd shows daemon status
var daemonStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show daemon status",
	RunE: func(cmd *cobra.Command, args []string) error {
		isRunning, pid := daemon.IsRunning()
		if !isRunning {
			fmt.Println("Daemon is not running")
			return nil
		}

		fmt.Printf("Daemon is running (PID: %d)\n", pid)

		client, err := daemon.NewClient()
		if err != nil {
			return err
		}
		var status map[string]interface{}
		if err := client.Call("status.get", nil, &status); err != nil {
			return err
		}
		pretty, err := json.MarshalIndent(status, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(pretty))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(daemonCmd)
	daemonCmd.AddCommand(daemonStartCmd)
	daemonCmd.AddCommand(daemonStopCmd)
	daemonCmd.AddCommand(daemonStatusCmd)
}
