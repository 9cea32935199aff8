package cli

import (
	"fmt"

	"github.com/fatih/color"

	"github.com/goodjin723/AI-API-Usage-CLI/pkg/version"
)

// displayWelcomeBanner prints the welcome banner with version information.
func displayWelcomeBanner(versionStr string) {
	banner := `
         /$$$$$$  /$$$$$$       /$$   /$$
        /$$__  $$|_  $$_/      | $$  | $$
       | $$  \ $$  | $$        | $$  | $$  /$$$$$$$  /$$$$$$   /$$$$$$   /$$$$$$
       | $$$$$$$$  | $$        | $$  | $$ /$$_____/ |____  $$ /$$__  $$ /$$__  $$
       | $$__  $$  | $$        | $$  | $$|  $$$$$$   /$$$$$$$| $$  \ $$| $$$$$$$$
       | $$  | $$  | $$        | $$  | $$ \____  $$ /$$__  $$| $$  | $$| $$_____/
       | $$  | $$ /$$$$$$      |  $$$$$$/ /$$$$$$$/|  $$$$$$$|  $$$$$$$|  $$$$$$$
       |__/  |__/|______/       \______/ |_______/  \_______/ \____  $$ \_______/
                                                              /$$  \ $$
                                                             |  $$$$$$/
                                                              \______/
        `
	cyan := color.New(color.FgCyan, color.Bold).SprintFunc()
	blue := color.New(color.FgBlue, color.Bold).SprintFunc()

	fmt.Println(cyan(banner))

	formattedVersion := version.FormatVersion()
	fmt.Println(blue(fmt.Sprintf("AI API Usage CLI (v%s)", formattedVersion)))
}
