package version

import (
	"bytes"
	"encoding/json"
	"fmt"
	"runtime"
	"text/template"

	"github.com/spf13/cobra"
)

// Template field labels, centralized so text output and tests agree.
const (
	VersionLabel   = "Version:"
	CommitLabel    = "Git commit:"
	BuiltLabel     = "Built:"
	GoVersionLabel = "Go version:"
	OSArchLabel    = "OS/Arch:"
)

var versionTemplate = `
 ` + VersionLabel + `	{{.Version}}
 ` + CommitLabel + `	{{.GitCommit}}
 ` + BuiltLabel + `		{{.BuildTime}}
 ` + GoVersionLabel + `	{{.GoVersion}}
 ` + OSArchLabel + `	{{.Os}}/{{.Arch}}`

type versionInfo struct {
	// build-time info
	Version   string `json:"version"`
	GitCommit string `json:"git_commit"`
	BuildTime string `json:"build_time"`
	// client machine info
	GoVersion string `json:"go_version"`
	Os        string `json:"os"`
	Arch      string `json:"arch"`
}

func (v *versionInfo) renderText() (string, error) {
	tmpl, err := template.New("version").Parse(versionTemplate)
	if err != nil {
		return "", fmt.Errorf("template parsing error: %w", err)
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, v); err != nil {
		return "", fmt.Errorf("template executing error: %w", err)
	}
	return buf.String(), nil
}

// NewVersionCmd builds the version command. Output is the text template by
// default, or JSON with --json.
func NewVersionCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Display the application version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			info := &versionInfo{
				Version:   getVersion(),
				GitCommit: getCommit(),
				BuildTime: getBuildTimeDisplay(),
				GoVersion: runtime.Version(),
				Os:        runtime.GOOS,
				Arch:      runtime.GOARCH,
			}

			if asJSON {
				encoded, err := json.MarshalIndent(info, "", "  ")
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), string(encoded))
				return nil
			}

			text, err := info.renderText()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), text)
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print version info as JSON")
	return cmd
}
