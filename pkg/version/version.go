package version

import (
	"encoding/json"
	"fmt"
	"net/http"
	"runtime/debug"
	"strings"
	"time"

	"github.com/pterm/pterm"
)

// Set through ldflags on release builds. When left at the defaults the
// values are recovered from the VCS metadata Go embeds into the binary.
var (
	Version   = "0.0.0-dev"
	Commit    = ""
	BuildTime = ""
)

const releaseURL = "https://api.github.com/repos/goodjin723/AI-API-Usage-CLI/releases/latest"

func init() {
	bi, ok := debug.ReadBuildInfo()
	if !ok || bi == nil {
		return
	}

	settings := make(map[string]string, len(bi.Settings))
	for _, s := range bi.Settings {
		settings[s.Key] = s.Value
	}

	if Commit == "" {
		if rev := settings["vcs.revision"]; len(rev) >= 7 {
			Commit = rev[:7]
		}
	}

	if BuildTime == "" {
		if ts, err := time.Parse(time.RFC3339, settings["vcs.time"]); err == nil {
			BuildTime = ts.UTC().Format("2006-01-02T15:04:05Z")
		}
	}

	// ldflags-provided versions win over VCS tags.
	if Version == "" || Version == "0.0.0-dev" {
		if tag := strings.TrimPrefix(settings["vcs.tag"], "v"); tag != "" {
			Version = tag
			if strings.EqualFold(settings["vcs.modified"], "true") {
				Version += "-dirty"
			}
		}
	}
}

// CheckLatestVersion reports when a newer release is available. Dev builds
// are not checked.
func CheckLatestVersion(currentVersion string) {
	if strings.HasSuffix(currentVersion, "-dev") {
		return
	}

	client := &http.Client{Timeout: 3 * time.Second}
	resp, err := client.Get(releaseURL)
	if err != nil {
		return
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return
	}

	var release struct {
		TagName string `json:"tag_name"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&release); err != nil {
		return
	}

	latest := strings.TrimPrefix(release.TagName, "v")
	if latest > currentVersion {
		pterm.Warning.Printf("A new version of AI API Usage CLI is available: %s\n", latest)
		pterm.Info.Println("Please update using: go install github.com/goodjin723/AI-API-Usage-CLI@latest")
	}
}

// FormatVersion returns the version with commit and build time attached.
func FormatVersion() string {
	ver := Version
	if ver == "" {
		ver = "0.0.0-dev"
	}

	commit := Commit
	if commit == "" {
		commit = "development"
	}

	switch {
	case commit == "development" && BuildTime == "":
		return fmt.Sprintf("%s (development)", ver)
	case BuildTime == "":
		return fmt.Sprintf("%s (commit: %s)", ver, Commit)
	default:
		return fmt.Sprintf("%s (commit: %s, built at: %s)", ver, commit, BuildTime)
	}
}
