// Package config loads the store's runtime configuration: a single exported
// *Config value populated by viper from environment variables, an optional
// config file, and struct-tag defaults, in that priority order (env > file >
// default).
package config

import (
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/creasty/defaults"
	"github.com/forbearing/tstore/pkg/bufferpool"
	"github.com/forbearing/tstore/types"
	"github.com/spf13/viper"
)

// dbNamePool backs DatabaseName's semicolon-joined assembly.
var dbNamePool = bufferpool.NewPool()

// forbiddenNameChars and maxNameLength are the database-name constraints
// applied to the assembled database name. catalog applies the same values to
// dataset names through its own copies of these constants.
const (
	forbiddenNameChars = "/\\.\" $*<>:|?"
	maxNameLength      = 64
)

// App is the process-wide configuration, populated by Init.
var App = new(Config)

const envPrefix = "TSTORE"

// Config is the root configuration value.
type Config struct {
	DataStore    DataStore    `mapstructure:"datastore" yaml:"datastore"`
	InstanceType InstanceType `mapstructure:"instance_type" yaml:"instance_type" default:"DEV"`
	InstanceName string       `mapstructure:"instance_name" yaml:"instance_name" default:"default"`
	EnvName      string       `mapstructure:"env_name" yaml:"env_name" default:"default"`
	Router       Router       `mapstructure:"router" yaml:"router"`
	Temporal     Temporal     `mapstructure:"temporal" yaml:"temporal"`
}

// DataStore is the connection descriptor for the backing document store.
type DataStore struct {
	URI             string        `mapstructure:"uri" yaml:"uri" default:"mongodb://localhost:27017"`
	ConnectTimeout  time.Duration `mapstructure:"connect_timeout" yaml:"connect_timeout" default:"10s"`
	ServerSelection time.Duration `mapstructure:"server_selection_timeout" yaml:"server_selection_timeout" default:"10s"`
}

// Router configures CollectionRouter's name-mapping rules.
type Router struct {
	IgnoredClassNamePrefixes []string `mapstructure:"ignored_class_name_prefixes" yaml:"ignored_class_name_prefixes"`
	IgnoredClassNameSuffixes []string `mapstructure:"ignored_class_name_suffixes" yaml:"ignored_class_name_suffixes"`
	IgnoredNamespacePrefixes []string `mapstructure:"ignored_namespace_prefixes" yaml:"ignored_namespace_prefixes"`
	IgnoredNamespaceSuffixes []string `mapstructure:"ignored_namespace_suffixes" yaml:"ignored_namespace_suffixes"`
}

// Temporal configures the resolution/query engine's cross-cutting knobs.
type Temporal struct {
	FreezeImports bool   `mapstructure:"freeze_imports" yaml:"freeze_imports"`
	Discriminator string `mapstructure:"discriminator" yaml:"discriminator" default:"scalar"` // "scalar" | "hierarchical"
	BatchSize     int    `mapstructure:"batch_size" yaml:"batch_size" default:"1000"`
}

// InstanceType gates DropDatabase.
type InstanceType string

const (
	InstanceDev  InstanceType = "DEV"
	InstanceUser InstanceType = "USER"
	InstanceTest InstanceType = "TEST"
	InstanceUAT  InstanceType = "UAT"
	InstanceProd InstanceType = "PROD"
)

// DropPermitted reports whether DropDatabase may run for this instance type.
// Only DEV, USER and TEST are permitted.
func (t InstanceType) DropPermitted() bool {
	switch t {
	case InstanceDev, InstanceUser, InstanceTest:
		return true
	default:
		return false
	}
}

// DatabaseName assembles the physical backing-store database name from
// (InstanceType, InstanceName, EnvName, name), and validates it against the
// forbidden-character set and the 64-byte limit.
func (c *Config) DatabaseName(name string) (string, error) {
	buf := dbNamePool.Get()
	defer buf.Free()
	buf.AppendString(string(c.InstanceType))
	buf.AppendByte(';')
	buf.AppendString(c.InstanceName)
	buf.AppendByte(';')
	buf.AppendString(c.EnvName)
	buf.AppendByte(';')
	buf.AppendString(name)
	assembled := buf.String()
	if len(assembled) == 0 || len(assembled) > maxNameLength {
		return "", errors.Wrapf(types.ErrInvalidDataset, "database name %q: length must be 1-%d bytes", assembled, maxNameLength)
	}
	if strings.ContainsAny(assembled, forbiddenNameChars) {
		return "", errors.Wrapf(types.ErrInvalidDataset, "database name %q contains a forbidden character", assembled)
	}
	return assembled, nil
}

var cv *viper.Viper

// Init loads configuration from the environment (prefixed TSTORE_), an
// optional file at path (if non-empty), and struct-tag defaults, in that
// order of precedence.
func Init(path string) error {
	cv = viper.New()
	cv.SetEnvPrefix(envPrefix)
	cv.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	cv.AutomaticEnv()

	if len(path) > 0 {
		cv.SetConfigFile(path)
		if err := cv.ReadInConfig(); err != nil {
			return errors.Wrap(err, "failed to read config file")
		}
	}

	App = new(Config)
	if err := defaults.Set(App); err != nil {
		return errors.Wrap(err, "failed to set config defaults")
	}
	if err := cv.Unmarshal(App); err != nil {
		return errors.Wrap(err, "failed to unmarshal config")
	}
	if len(App.Router.IgnoredClassNameSuffixes) == 0 {
		App.Router.IgnoredClassNameSuffixes = []string{"Data", "Key"}
	}
	return nil
}
