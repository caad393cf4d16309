// Config loading for the records CLI. The config file is optional; flags and
// environment variables override it.
package main

import (
	"fmt"

	"github.com/spf13/viper"

	"github.com/SkPhilipp/records/internal/paths"
	"github.com/SkPhilipp/records/pkg/memstore"
	"github.com/SkPhilipp/records/pkg/record"
)

const (
	configFileName = "config"
	configFileType = "yaml"

	cfgKeyDataFile    = "data_file"
	cfgKeyMirrorFile  = "mirror_file"
	cfgKeyReportLimit = "report_limit"
)

// loadStoreConfig resolves the store configuration from flags, the config
// file, and the environment, in that precedence order.
func loadStoreConfig() (record.Config, error) {
	configDir, err := paths.ResolveConfigDir(flags.configDir)
	if err != nil {
		return record.Config{}, fmt.Errorf("resolve config dir: %w", err)
	}

	v := viper.New()
	v.SetConfigName(configFileName)
	v.SetConfigType(configFileType)
	v.AddConfigPath(configDir)

	if err := v.ReadInConfig(); err != nil {
		// A missing config file is not an error; flags and defaults apply.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return record.Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	dataFile, err := paths.ResolveDataFile(flags.dataFile, v.GetString(cfgKeyDataFile))
	if err != nil {
		return record.Config{}, fmt.Errorf("resolve data file: %w", err)
	}

	mirror := flags.mirrorFile
	if mirror == "" {
		mirror = v.GetString(cfgKeyMirrorFile)
	}
	limit := flags.reportLimit
	if limit == 0 {
		limit = v.GetInt(cfgKeyReportLimit)
	}

	return record.Config{
		Path:        dataFile,
		MirrorPath:  mirror,
		ReportLimit: limit,
	}, nil
}

// openConfigured opens the store for the resolved config.
func openConfigured(cfg record.Config) (record.Store, error) {
	return memstore.Open(cfg)
}
