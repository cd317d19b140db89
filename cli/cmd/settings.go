package cmd

import (
	"time"

	"github.com/urfave/cli/v2"

	"github.com/justapithecus/billingflatfile/cli/config"
	"github.com/justapithecus/billingflatfile/types"
)

// loadSettings reads the --settings file, if any. A nil config means no
// settings file was given.
func loadSettings(c *cli.Context) (*config.Config, error) {
	path := c.String("settings")
	if path == "" {
		return nil, nil
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, types.Wrap(types.KindSettingsInvalid, err, "cannot use settings file")
	}
	return cfg, nil
}

// configVal reads a value from cfg, or returns the zero value when no
// settings file was loaded.
func configVal[T any](cfg *config.Config, get func(*config.Config) T) T {
	var zero T
	if cfg == nil {
		return zero
	}
	return get(cfg)
}

// resolveString returns the CLI value when the flag was set explicitly,
// else the settings value when non-empty, else the flag default.
func resolveString(c *cli.Context, name, cfgVal string) string {
	if c.IsSet(name) {
		return c.String(name)
	}
	if cfgVal != "" {
		return cfgVal
	}
	return c.String(name)
}

// resolveIntPtr follows the same precedence as resolveString. A nil
// settings value means unset, so an explicit zero in settings is honored.
func resolveIntPtr(c *cli.Context, name string, cfgVal *int) int {
	if c.IsSet(name) || cfgVal == nil {
		return c.Int(name)
	}
	return *cfgVal
}

// resolveBool returns true if either the flag or the settings value is set.
// An explicitly set flag always wins.
func resolveBool(c *cli.Context, name string, cfgVal bool) bool {
	if c.IsSet(name) {
		return c.Bool(name)
	}
	return cfgVal || c.Bool(name)
}

// resolveDuration follows the same precedence as resolveString.
func resolveDuration(c *cli.Context, name string, cfgVal time.Duration) time.Duration {
	if c.IsSet(name) {
		return c.Duration(name)
	}
	if cfgVal != 0 {
		return cfgVal
	}
	return c.Duration(name)
}
