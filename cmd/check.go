package cmd

import (
	"fmt"
	"os/exec"
	"runtime"

	"github.com/charmbracelet/lipgloss"
	"github.com/reelmark-cli/reelmark/icon"
	"github.com/reelmark-cli/reelmark/style"
)

// installHints maps an OS to the command that installs a player binary.
var installHints = map[string]string{
	"darwin":  "brew install %s",
	"linux":   "sudo apt install %s",
	"windows": "scoop install %s",
}

// checkPlayer reports an error box when the player binary is missing from PATH.
func checkPlayer(name string) error {
	if _, err := exec.LookPath(name); err != nil {
		printMissingDependency(name)
		return fmt.Errorf("%s not found in PATH", name)
	}
	return nil
}

func printMissingDependency(dep string) {
	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(style.HiRed).
		Padding(1, 2).
		Margin(1, 0)

	title := style.New().Bold(true).Foreground(style.HiRed).Render(fmt.Sprintf("%s Missing dependency", icon.Get(icon.Fail)))
	body := style.New().Foreground(style.Text).Render(fmt.Sprintf("The player '%s' was not found in your PATH.", dep))

	suggestion := ""
	if hint, ok := installHints[runtime.GOOS]; ok {
		suggestion = fmt.Sprintf("\n\nTo install it, try running:\n  %s", style.New().Foreground(style.AccentColor).Bold(true).Render(fmt.Sprintf(hint, dep)))
	}

	fmt.Println(box.Render(lipgloss.JoinVertical(lipgloss.Left, title, "\n", body, suggestion)))
}
