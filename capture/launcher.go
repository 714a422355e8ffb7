package capture

import (
	"fmt"
	"os/exec"
	goruntime "runtime"

	"github.com/go-rod/rod/lib/launcher"
)

// WindowsChromePath is the default Chrome location on Windows.
const WindowsChromePath = `C:\Program Files\Google\Chrome\Application\chrome.exe`

// Launcher opens a URL in a local browser without automation.
type Launcher interface {
	Launch(url string) error
}

// ExecLauncher starts Executable with the URL as its only argument.
// The process is not waited on and its exit status is ignored.
type ExecLauncher struct {
	Executable string
}

// Launch starts the browser process.
func (l ExecLauncher) Launch(url string) error {
	if l.Executable == "" {
		return ErrNoExecutable
	}
	cmd := exec.Command(l.Executable, url)
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start %s: %w", l.Executable, err)
	}
	go func() { _ = cmd.Wait() }()
	return nil
}

// DefaultExecutable returns the browser binary used when none is
// configured. Returns "" when nothing can be found.
func DefaultExecutable() string {
	if goruntime.GOOS == "windows" {
		return WindowsChromePath
	}
	if path, ok := launcher.LookPath(); ok {
		return path
	}
	return ""
}
