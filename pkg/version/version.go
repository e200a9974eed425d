package version

import (
	"fmt"
	"runtime"
)

// Overridden with -ldflags "-X github.com/NeuralTrust/MediaGuard/pkg/version.Version=...".
var (
	Version   = "0.1.0"
	AppName   = "MediaGuard"
	Commit    = "dev"
	BuildDate = "unknown"
)

// Info is the body of GET /version.
type Info struct {
	AppName   string `json:"app_name"`
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildDate string `json:"build_date"`
	GoVersion string `json:"go_version"`
	Platform  string `json:"platform"`
}

func GetInfo() Info {
	return Info{
		AppName:   AppName,
		Version:   Version,
		Commit:    Commit,
		BuildDate: BuildDate,
		GoVersion: runtime.Version(),
		Platform:  runtime.GOOS + "/" + runtime.GOARCH,
	}
}

// UserAgent identifies the service to the hosts it fetches media from.
func UserAgent() string {
	return fmt.Sprintf("%s/%s (+%s)", AppName, Version, Commit)
}
