package main

import (
	"context"
	"fmt"
	"io"
	"os/exec"
	"runtime"
)

// browserOpener hands the authorization URL to the desktop's default
// browser and echoes it so it can be opened by hand.
type browserOpener struct {
	out io.Writer
}

func (o browserOpener) Open(ctx context.Context, url string) error {
	fmt.Fprintf(o.out, "Open this URL to sign in:\n\n  %s\n\n", url)

	name, args := browserCommand(url)
	if name == "" {
		return fmt.Errorf("no browser launcher for %s", runtime.GOOS)
	}
	cmd := exec.CommandContext(ctx, name, args...)
	if err := cmd.Start(); err != nil {
		return err
	}
	go func() { _ = cmd.Wait() }()
	return nil
}

func browserCommand(url string) (string, []string) {
	switch runtime.GOOS {
	case "darwin":
		return "open", []string{url}
	case "windows":
		return "rundll32", []string{"url.dll,FileProtocolHandler", url}
	case "linux", "freebsd", "openbsd", "netbsd":
		return "xdg-open", []string{url}
	default:
		return "", nil
	}
}
