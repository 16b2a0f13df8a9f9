package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"syscall"
	"time"

	"github.com/matheus3301/conversa/internal/rpc"
	"github.com/matheus3301/conversa/internal/tui"
	"github.com/matheus3301/conversa/internal/tui/client"
	"github.com/matheus3301/conversa/internal/workspace"
)

func main() {
	workspaceFlag := flag.String("workspace", "", "workspace name (overrides config default)")
	noStart := flag.Bool("no-start", false, "fail instead of starting a daemon")
	flag.Parse()

	name := workspace.Resolve(*workspaceFlag)
	if err := workspace.ValidateName(name); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	socketPath := workspace.SocketPath(name)

	if !pingDaemon(socketPath) {
		if *noStart {
			fmt.Fprintf(os.Stderr, "daemon not running for workspace %q\n", name)
			os.Exit(1)
		}
		fmt.Fprintf(os.Stderr, "daemon not running for workspace %q, starting...\n", name)
		if err := startDaemon(name); err != nil {
			fmt.Fprintf(os.Stderr, "failed to start daemon: %v\n", err)
			os.Exit(1)
		}
		if !waitForDaemon(socketPath, 10*time.Second) {
			fmt.Fprintf(os.Stderr, "daemon did not become ready, see %s\n", workspace.LogPath(name))
			os.Exit(1)
		}
	}

	c, err := client.New(socketPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "connect to daemon: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = c.Close() }()

	if err := tui.NewApp(c, name).Run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// pingDaemon reports whether a daemon answers on socketPath.
func pingDaemon(socketPath string) bool {
	if _, err := os.Stat(socketPath); err != nil {
		return false
	}
	c, err := client.New(socketPath)
	if err != nil {
		return false
	}
	defer func() { _ = c.Close() }()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_, err = c.GetSessionStatus(ctx, &rpc.GetSessionStatusRequest{})
	return err == nil
}

// startDaemon launches conversad in its own session so it outlives the TUI.
// Its output goes to the workspace log file.
func startDaemon(name string) error {
	executable, err := os.Executable()
	if err != nil {
		return err
	}
	conversad := filepath.Join(filepath.Dir(executable), "conversad")
	if _, err := os.Stat(conversad); err != nil {
		conversad = "conversad"
	}

	cmd := exec.Command(conversad, "--workspace", name)
	cmd.SysProcAttr = &syscall.SysProcAttr{Setsid: true}
	if err := cmd.Start(); err != nil {
		return err
	}
	return cmd.Process.Release()
}

func waitForDaemon(socketPath string, timeout time.Duration) bool {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if pingDaemon(socketPath) {
			return true
		}
		time.Sleep(300 * time.Millisecond)
	}
	return false
}
