// Package version reports build metadata. Values are injected at build time
// with -ldflags, for example:
//
//	go build -ldflags "-X github.com/brianbirrell/ai-cli/internal/version.gitCommit=$(git rev-parse HEAD)"
//
// Anything left unset falls back to the VCS settings Go embeds in the binary.
package version

import (
	"encoding/json"
	"fmt"
	"runtime"
	"runtime/debug"
	"strings"

	"github.com/gosuri/uitable"
	"gopkg.in/yaml.v3"
)

const unknown = "unknown"

var (
	gitVersion   = "v0.1.0"
	gitCommit    = ""
	gitTreeState = ""
	buildDate    = ""
)

// Info describes the build.
type Info struct {
	GitVersion   string `json:"gitVersion" yaml:"gitVersion"`
	GitCommit    string `json:"gitCommit" yaml:"gitCommit"`
	GitTreeState string `json:"gitTreeState" yaml:"gitTreeState"`
	BuildDate    string `json:"buildDate" yaml:"buildDate"`
	GoVersion    string `json:"goVersion" yaml:"goVersion"`
	Compiler     string `json:"compiler" yaml:"compiler"`
	Platform     string `json:"platform" yaml:"platform"`
}

// Get returns the build metadata of the running binary.
func Get() Info {
	info := Info{
		GitVersion:   gitVersion,
		GitCommit:    gitCommit,
		GitTreeState: gitTreeState,
		BuildDate:    buildDate,
		GoVersion:    runtime.Version(),
		Compiler:     runtime.Compiler,
		Platform:     fmt.Sprintf("%s/%s", runtime.GOOS, runtime.GOARCH),
	}
	if bi, ok := debug.ReadBuildInfo(); ok {
		fillFromBuildInfo(&info, bi)
	}
	for _, f := range []*string{&info.GitCommit, &info.GitTreeState, &info.BuildDate} {
		if *f == "" {
			*f = unknown
		}
	}
	return info
}

func fillFromBuildInfo(info *Info, bi *debug.BuildInfo) {
	for _, s := range bi.Settings {
		switch s.Key {
		case "vcs.revision":
			if info.GitCommit == "" {
				info.GitCommit = s.Value
			}
		case "vcs.modified":
			if info.GitTreeState == "" {
				if s.Value == "true" {
					info.GitTreeState = "dirty"
				} else {
					info.GitTreeState = "clean"
				}
			}
		case "vcs.time":
			if info.BuildDate == "" {
				info.BuildDate = s.Value
			}
		}
	}
}

// ShortCommit returns the abbreviated commit hash, with a -dirty suffix for
// builds from a modified tree.
func (info Info) ShortCommit() string {
	commit := info.GitCommit
	if len(commit) > 7 && commit != unknown {
		commit = commit[:7]
	}
	if info.GitTreeState == "dirty" {
		commit += "-dirty"
	}
	return commit
}

// String is the --version output.
func (info Info) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "ai-cli version %s\n", info.GitVersion)
	fmt.Fprintf(&b, "Commit: %s\n", info.ShortCommit())
	fmt.Fprintf(&b, "Full commit: %s\n", info.GitCommit)
	fmt.Fprintf(&b, "Built: %s\n", info.BuildDate)
	return b.String()
}

func (info Info) ShortString() string {
	return info.GitVersion
}

func (info Info) ToJSON() (string, error) {
	s, err := json.MarshalIndent(info, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal version info: %w", err)
	}
	return string(s), nil
}

func (info Info) ToYAML() (string, error) {
	s, err := yaml.Marshal(info)
	if err != nil {
		return "", fmt.Errorf("failed to marshal version info: %w", err)
	}
	return string(s), nil
}

// Text renders the metadata as an aligned table.
func (info Info) Text() string {
	table := uitable.New()
	table.RightAlign(0)
	table.MaxColWidth = 80
	table.Separator = " "
	table.AddRow("gitVersion:", info.GitVersion)
	table.AddRow("gitCommit:", info.GitCommit)
	table.AddRow("gitTreeState:", info.GitTreeState)
	table.AddRow("buildDate:", info.BuildDate)
	table.AddRow("goVersion:", info.GoVersion)
	table.AddRow("compiler:", info.Compiler)
	table.AddRow("platform:", info.Platform)
	return table.String()
}

// Format renders info in one of the output formats accepted by the
// version command: text, json, yaml or short.
func (info Info) Format(output string) (string, error) {
	switch output {
	case "", "text":
		return info.Text(), nil
	case "json":
		return info.ToJSON()
	case "yaml":
		return info.ToYAML()
	case "short":
		return info.ShortString(), nil
	default:
		return "", fmt.Errorf("unknown output format %q (want text, json, yaml or short)", output)
	}
}
