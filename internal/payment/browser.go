package payment

import (
	"os/exec"
	"runtime"

	"go.uber.org/zap"
)

// BrowserLauncher opens url in the system browser when open is set and
// otherwise only logs it, leaving the user to open it.
func BrowserLauncher(open bool) Launcher {
	return func(url string) error {
		zap.L().Info("open this address to pay", zap.String("url", url))
		if !open {
			return nil
		}

		var cmd *exec.Cmd
		switch runtime.GOOS {
		case "darwin":
			cmd = exec.Command("open", url)
		case "windows":
			cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
		default:
			cmd = exec.Command("xdg-open", url)
		}

		return cmd.Start()
	}
}
