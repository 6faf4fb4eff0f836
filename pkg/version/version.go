// Package version reports the build version of the modular binaries.
package version

import (
	"encoding/json"
	"runtime"
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/joomcode/errorx"
	"gopkg.in/yaml.v3"
)

// Set via -ldflags "-X github.com/getpup/modular/pkg/version.Version=v1.2.3 -X ...Commit=abc123".
var (
	Version = "dev"
	Commit  = "unknown"
)

// Info describes the running build.
type Info struct {
	Number    string `json:"version" yaml:"version"`
	Commit    string `json:"commit" yaml:"commit"`
	GoVersion string `json:"go" yaml:"go"`
}

const (
	FormatYAML = "yaml"
	FormatJSON = "json"
	FormatText = "text"
)

// Get returns the version info of the running build.
func Get() Info {
	return Info{
		Number:    Number(),
		Commit:    Commit,
		GoVersion: runtime.Version(),
	}
}

// Number returns the normalized semantic version, or the raw value when
// it is not a semantic version (e.g. "dev").
func Number() string {
	v, err := semver.NewVersion(Version)
	if err != nil {
		return Version
	}
	return v.String()
}

// Format renders the info as text, json or yaml.
func (v Info) Format(format string) (string, error) {
	var output []byte
	var err error
	switch strings.ToLower(format) {
	case FormatText, "":
		return "modular " + v.Number + " (commit " + v.Commit + ", " + v.GoVersion + ")\n", nil
	case FormatJSON:
		output, err = json.Marshal(v)
		if err != nil {
			return "", errorx.IllegalFormat.Wrap(err, "Error marshaling version info to JSON")
		}
		output = append(output, '\n')
	case FormatYAML:
		output, err = yaml.Marshal(v)
		if err != nil {
			return "", errorx.IllegalFormat.Wrap(err, "Error marshaling version info to YAML")
		}
	default:
		return "", errorx.IllegalFormat.New("unsupported format: %s", format)
	}

	return string(output), nil
}
