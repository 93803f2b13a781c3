package render

import (
	"fmt"
	"os/exec"
	"path/filepath"
	"runtime"
)

// openCommand is swapped out in tests.
var openCommand = func(name string, args ...string) error {
	return exec.Command(name, args...).Start()
}

// openInBrowser opens a local file with the platform's default handler.
func openInBrowser(path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	url := "file://" + filepath.ToSlash(abs)

	switch runtime.GOOS {
	case "darwin":
		return openCommand("open", url)
	case "linux", "freebsd", "openbsd":
		return openCommand("xdg-open", url)
	case "windows":
		return openCommand("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		return fmt.Errorf("unsupported platform: %s", runtime.GOOS)
	}
}
