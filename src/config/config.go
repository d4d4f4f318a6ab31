package config

import (
	"crypto/ecdsa"
	"os"
	"os/user"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	prefixed "github.com/x-cray/logrus-prefixed-formatter"
	"github.com/xornet-io/xornet/src/common"
	"github.com/xornet-io/xornet/src/section"
)

// Default filenames.
const (
	// DefaultKeyfile is the default name of the file containing the node's
	// private key
	DefaultKeyfile = "priv_key"

	// DefaultBadgerFile is the default name of the folder containing the
	// Badger database
	DefaultBadgerFile = "badger_db"
)

// Default configuration values.
const (
	DefaultLogLevel         = "debug"
	DefaultBindAddr         = "127.0.0.1:1337"
	DefaultHeartbeatTimeout = 1000 * time.Millisecond
	DefaultJoinTimeout      = 10000 * time.Millisecond
	DefaultMinElders        = 3
	DefaultMaxElders        = 7
	DefaultSplitThreshold   = 10
	DefaultFanout           = 3
	DefaultStore            = false
	DefaultMaintenanceMode  = false
)

// Config contains all the configuration properties of a xornet node.
type Config struct {
	// DataDir is the top-level directory containing xornet configuration and
	// data
	DataDir string `mapstructure:"datadir"`

	// LogLevel determines the chattiness of the log output.
	LogLevel string `mapstructure:"log"`

	// BindAddr is the local address:port where this node talks to other
	// nodes. In some cases, there may be a routable address that cannot be
	// bound. Use AdvertiseAddr to advertise a different address to support
	// this.
	BindAddr string `mapstructure:"listen"`

	// AdvertiseAddr is used to change the address that we advertise to other
	// nodes.
	AdvertiseAddr string `mapstructure:"advertise"`

	// HeartbeatTimeout is the interval of the node's liveness timer, on which
	// it reports its runtime stats. Churn removal arrives as an external
	// ElderRemoved event, not from this timer.
	HeartbeatTimeout time.Duration `mapstructure:"heartbeat"`

	// JoinTimeout is the timeout of join requests.
	JoinTimeout time.Duration `mapstructure:"join_timeout"`

	// MinElders is the minimum elder count a section half must retain for a
	// split to proceed.
	MinElders int `mapstructure:"min-elders"`

	// MaxElders is the number of elder seats per section.
	MaxElders int `mapstructure:"max-elders"`

	// SplitThreshold is the member count above which a section attempts to
	// split.
	SplitThreshold int `mapstructure:"split-threshold"`

	// Fanout is how many next-hop members a routing decision forwards to.
	Fanout int `mapstructure:"fanout"`

	// Store activates persistent storage for paused snapshots.
	Store bool `mapstructure:"store"`

	// DatabaseDir is the directory containing database files.
	DatabaseDir string `mapstructure:"db"`

	// Bootstrap determines whether to resume the node from a persisted paused
	// snapshot. Forces Store.
	Bootstrap bool `mapstructure:"bootstrap"`

	// MaintenanceMode when set to true causes xornet to initialise in a
	// paused state. Forces Bootstrap, which itself forces Store.
	MaintenanceMode bool `mapstructure:"maintenance-mode"`

	// Moniker defines the friendly name of this node
	Moniker string `mapstructure:"moniker"`

	// Key is the private key of the node.
	Key *ecdsa.PrivateKey

	logger *logrus.Logger
}

// NewDefaultConfig returns a config object with default values.
func NewDefaultConfig() *Config {
	config := &Config{
		DataDir:          DefaultDataDir(),
		LogLevel:         DefaultLogLevel,
		BindAddr:         DefaultBindAddr,
		HeartbeatTimeout: DefaultHeartbeatTimeout,
		JoinTimeout:      DefaultJoinTimeout,
		MinElders:        DefaultMinElders,
		MaxElders:        DefaultMaxElders,
		SplitThreshold:   DefaultSplitThreshold,
		Fanout:           DefaultFanout,
		Store:            DefaultStore,
		MaintenanceMode:  DefaultMaintenanceMode,
		DatabaseDir:      DefaultDatabaseDir(),
	}

	return config
}

// NewTestConfig returns a config object with default values and a special
// logger for debugging tests.
func NewTestConfig(t testing.TB) *Config {
	config := NewDefaultConfig()
	config.logger = common.NewTestLogger(t)
	return config
}

// Params returns the network membership parameters.
func (c *Config) Params() section.Params {
	return section.Params{
		MinElders:      c.MinElders,
		MaxElders:      c.MaxElders,
		SplitThreshold: c.SplitThreshold,
	}
}

// SetDataDir sets the top-level xornet directory, and updates the database
// directory if it is currently set to the default value. If the database
// directory is not currently the default, it means the user has explicitely
// set it to something else, so avoid changing it again here.
func (c *Config) SetDataDir(dataDir string) {
	c.DataDir = dataDir
	if c.DatabaseDir == DefaultDatabaseDir() {
		c.DatabaseDir = filepath.Join(dataDir, DefaultBadgerFile)
	}
}

// Keyfile returns the full path of the file containing the private key.
func (c *Config) Keyfile() string {
	return filepath.Join(c.DataDir, DefaultKeyfile)
}

// Logger returns a formatted logrus Entry, with prefix set to "xornet".
func (c *Config) Logger() *logrus.Entry {
	if c.logger == nil {
		c.logger = logrus.New()
		c.logger.Level = LogLevel(c.LogLevel)
		c.logger.Formatter = new(prefixed.TextFormatter)
	}
	return c.logger.WithField("prefix", "xornet")
}

// DefaultDatabaseDir returns the default path for the badger database files.
func DefaultDatabaseDir() string {
	return filepath.Join(DefaultDataDir(), DefaultBadgerFile)
}

// DefaultDataDir return the default directory name for top-level xornet
// config based on the underlying OS, attempting to respect conventions.
func DefaultDataDir() string {
	// Try to place the data folder in the user's home dir
	home := HomeDir()
	if home != "" {
		if runtime.GOOS == "darwin" {
			return filepath.Join(home, ".Xornet")
		} else if runtime.GOOS == "windows" {
			return filepath.Join(home, "AppData", "Roaming", "Xornet")
		} else {
			return filepath.Join(home, ".xornet")
		}
	}
	// As we cannot guess a stable location, return empty and handle later
	return ""
}

// HomeDir returns the user's home directory.
func HomeDir() string {
	if home := os.Getenv("HOME"); home != "" {
		return home
	}
	if usr, err := user.Current(); err == nil {
		return usr.HomeDir
	}
	return ""
}

// LogLevel parses a level string into a logrus level.
func LogLevel(l string) logrus.Level {
	switch l {
	case "debug":
		return logrus.DebugLevel
	case "info":
		return logrus.InfoLevel
	case "warn":
		return logrus.WarnLevel
	case "error":
		return logrus.ErrorLevel
	case "fatal":
		return logrus.FatalLevel
	case "panic":
		return logrus.PanicLevel
	default:
		return logrus.DebugLevel
	}
}
