package commands

import (
	"os"

	"github.com/rifflock/lfshook"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/xornet-io/xornet/src/xornet"
)

var logFile string

// NewRunCmd returns the command that starts a xornet node
func NewRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "run",
		Short:   "Run node",
		PreRunE: loadConfig,
		RunE:    runXornet,
	}
	AddRunFlags(cmd)
	return cmd
}

/*******************************************************************************
* RUN
*******************************************************************************/

func runXornet(cmd *cobra.Command, args []string) error {
	engine := xornet.NewXornet(_config)

	if err := engine.Init(); err != nil {
		_config.Logger().Error("Cannot initialize engine:", err)
		return err
	}

	engine.Run()

	return nil
}

/*******************************************************************************
* CONFIG
*******************************************************************************/

// AddRunFlags adds flags to the Run command
func AddRunFlags(cmd *cobra.Command) {

	cmd.Flags().String("datadir", _config.DataDir, "Top-level directory for configuration and data")
	cmd.Flags().String("log", _config.LogLevel, "debug, info, warn, error, fatal, panic")
	cmd.Flags().StringVar(&logFile, "log-file", "", "Duplicate log output to this file")
	cmd.Flags().String("moniker", _config.Moniker, "Optional name")

	// Network
	cmd.Flags().StringP("listen", "l", _config.BindAddr, "Listen IP:Port for xornet node")
	cmd.Flags().StringP("advertise", "a", _config.AdvertiseAddr, "Advertise IP:Port for xornet node")
	cmd.Flags().DurationP("join-timeout", "j", _config.JoinTimeout, "Join Timeout")

	// Store
	cmd.Flags().Bool("store", _config.Store, "Use badgerDB instead of in-mem DB")
	cmd.Flags().String("db", _config.DatabaseDir, "Database directory")
	cmd.Flags().Bool("bootstrap", _config.Bootstrap, "Resume from a stored snapshot")
	cmd.Flags().Bool("maintenance-mode", _config.MaintenanceMode, "Start the node paused")

	// Node configuration
	cmd.Flags().Duration("heartbeat", _config.HeartbeatTimeout, "Interval of the liveness timer")
	cmd.Flags().Int("min-elders", _config.MinElders, "Minimum elder count per section half")
	cmd.Flags().Int("max-elders", _config.MaxElders, "Elder seats per section")
	cmd.Flags().Int("split-threshold", _config.SplitThreshold, "Member count triggering a split")
	cmd.Flags().Int("fanout", _config.Fanout, "Next hops per routing decision")
}

func loadConfig(cmd *cobra.Command, args []string) error {

	if err := bindFlagsLoadViper(cmd); err != nil {
		return err
	}

	// If --datadir was explicitely set, but not --db, this will update the
	// default database dir to be inside the new datadir
	_config.SetDataDir(_config.DataDir)

	// MaintenanceMode only makes sense on a node that can store and reload
	// its snapshot.
	if _config.MaintenanceMode {
		_config.Bootstrap = true
	}
	if _config.Bootstrap {
		_config.Store = true
	}

	if logFile != "" {
		addLogFileHook(logFile)
	}

	logFields := logrus.Fields{
		"DataDir":          _config.DataDir,
		"BindAddr":         _config.BindAddr,
		"AdvertiseAddr":    _config.AdvertiseAddr,
		"LogLevel":         _config.LogLevel,
		"Moniker":          _config.Moniker,
		"HeartbeatTimeout": _config.HeartbeatTimeout,
		"JoinTimeout":      _config.JoinTimeout,
		"MinElders":        _config.MinElders,
		"MaxElders":        _config.MaxElders,
		"SplitThreshold":   _config.SplitThreshold,
		"Fanout":           _config.Fanout,
		"Store":            _config.Store,
	}

	if _config.Store {
		logFields["DatabaseDir"] = _config.DatabaseDir
		logFields["Bootstrap"] = _config.Bootstrap
	}

	_config.Logger().WithFields(logFields).Debug("RUN")

	return nil
}

// Bind all flags and read the config into viper
func bindFlagsLoadViper(cmd *cobra.Command) error {
	// Register flags with viper. Include flags from this command and all other
	// persistent flags from the parent
	if err := viper.BindPFlags(cmd.Flags()); err != nil {
		return err
	}

	// first unmarshal to read from CLI flags
	if err := viper.Unmarshal(_config); err != nil {
		return err
	}

	// look for config file in [datadir]/xornet.toml (.json, .yaml also work)
	viper.SetConfigName("xornet")
	viper.AddConfigPath(_config.DataDir)

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err == nil {
		_config.Logger().Debugf("Using config file: %s", viper.ConfigFileUsed())
	} else if _, ok := err.(viper.ConfigFileNotFoundError); ok {
		_config.Logger().Debugf("No config file found in: %s", _config.DataDir)
	} else {
		return err
	}

	// second unmarshal to read from config file
	return viper.Unmarshal(_config)
}

func addLogFileHook(path string) {
	if _, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY, 0666); err != nil {
		_config.Logger().Info("Failed to open log file, using default stderr")
		return
	}

	pathMap := lfshook.PathMap{}
	for _, level := range logrus.AllLevels {
		pathMap[level] = path
	}

	_config.Logger().Logger.Hooks.Add(lfshook.NewHook(
		pathMap,
		&logrus.TextFormatter{},
	))
}
