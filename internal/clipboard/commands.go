package clipboard

import (
	"context"
	"errors"
	"os/exec"
	"runtime"
	"strings"
)

// writeCommands pipes text into the platform's clipboard tools, trying each in turn.
func writeCommands(ctx context.Context, text string) error {
	switch runtime.GOOS {
	case "darwin":
		return runClipboardCmd(ctx, "pbcopy", nil, text)
	case "windows":
		// Try clip.exe first; fall back to PowerShell.
		if err := runClipboardCmd(ctx, "cmd", []string{"/c", "clip"}, text); err == nil {
			return nil
		}
		return runClipboardCmd(ctx, "powershell", []string{"-NoProfile", "-Command", "Set-Clipboard"}, text)
	default:
		// Prefer Wayland if available, then X11 fallbacks.
		if err := runClipboardCmd(ctx, "wl-copy", nil, text); err == nil {
			return nil
		}
		if err := runClipboardCmd(ctx, "xclip", []string{"-selection", "clipboard"}, text); err == nil {
			return nil
		}
		return runClipboardCmd(ctx, "xsel", []string{"--clipboard", "--input"}, text)
	}
}

func runClipboardCmd(ctx context.Context, name string, args []string, stdin string) error {
	if _, err := exec.LookPath(name); err != nil {
		return err
	}
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdin = strings.NewReader(stdin)
	if err := cmd.Run(); err != nil {
		return errors.New(name + ": " + err.Error())
	}
	return nil
}
