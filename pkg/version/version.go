// Package version reports the ecopredict build version and checks config
// schema compatibility against it.
package version

import (
	"fmt"

	"github.com/Masterminds/semver/v3"
)

// version is set at build time with -ldflags "-X .../pkg/version.version=v1.2.3".
//
//nolint:gochecknoglobals // Overridden by the linker.
var version = "v0.3.0-dev"

// ConfigSchemaConstraint is the range of config file schema versions this
// build reads.
const ConfigSchemaConstraint = ">= 1.0.0, < 2.0.0"

// CurrentConfigSchema is the schema version written by `config init`.
const CurrentConfigSchema = "1.0.0"

// GetVersion returns the build version.
func GetVersion() string {
	return version
}

// Parsed returns the build version as a semantic version.
func Parsed() (*semver.Version, error) {
	return semver.NewVersion(version)
}

// CheckConfigSchema reports whether a config file written with schema
// version v can be read by this build. An empty version is treated as the
// current schema.
func CheckConfigSchema(v string) error {
	if v == "" {
		return nil
	}
	parsed, err := semver.NewVersion(v)
	if err != nil {
		return fmt.Errorf("invalid config schema version %q: %w", v, err)
	}
	constraint, err := semver.NewConstraint(ConfigSchemaConstraint)
	if err != nil {
		return fmt.Errorf("parsing schema constraint: %w", err)
	}
	if !constraint.Check(parsed) {
		return fmt.Errorf("config schema %s is not supported (want %s)", parsed, ConfigSchemaConstraint)
	}
	return nil
}
