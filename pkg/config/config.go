// Package config は実行時設定を読み込みます。
//
// 値は優先度の低い順に、デフォルト値、設定ファイル（--config）、
// HOUSEPRICE_ で始まる環境変数、バインドされたコマンドラインフラグから解決されます。
package config

import (
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	scerrors "github.com/YuminosukeSato/houseprice/pkg/errors"
	"github.com/YuminosukeSato/houseprice/pkg/log"
)

// EnvPrefix is prepended to every environment variable, e.g. HOUSEPRICE_DATA_TRAIN.
const EnvPrefix = "HOUSEPRICE"

// Config holds the resolved runtime settings.
type Config struct {
	Data     DataConfig     `mapstructure:"data"`
	Model    ModelConfig    `mapstructure:"model"`
	Pipeline PipelineConfig `mapstructure:"pipeline"`
	Output   OutputConfig   `mapstructure:"output"`
	Log      LogConfig      `mapstructure:"log"`
	Train    TrainConfig    `mapstructure:"train"`
	Predict  PredictConfig  `mapstructure:"predict"`
}

type DataConfig struct {
	Train string `mapstructure:"train"`
	Test  string `mapstructure:"test"`
}

type ModelConfig struct {
	Path string `mapstructure:"path"`
}

// PipelineConfig points at an optional YAML pipeline descriptor.
// Empty means the built-in default pipeline.
type PipelineConfig struct {
	Spec string `mapstructure:"spec"`
}

// OutputConfig lists optional artifacts. Empty paths are skipped.
type OutputConfig struct {
	Predictions string `mapstructure:"predictions"`
	Plot        string `mapstructure:"plot"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type TrainConfig struct {
	Seed int64 `mapstructure:"seed"`
}

// PredictConfig: Workers が0の場合はCPU数を使用します。
type PredictConfig struct {
	Workers int `mapstructure:"workers"`
}

// flagKeys maps CLI flag names to configuration keys.
var flagKeys = map[string]string{
	"train":       "data.train",
	"test":        "data.test",
	"model":       "model.path",
	"pipeline":    "pipeline.spec",
	"predictions": "output.predictions",
	"plot":        "output.plot",
	"log-level":   "log.level",
	"log-format":  "log.format",
	"seed":        "train.seed",
	"workers":     "predict.workers",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("data.train", "data/train.csv")
	v.SetDefault("data.test", "data/test.csv")
	v.SetDefault("model.path", "HousePriceModel.zip")
	v.SetDefault("pipeline.spec", "")
	v.SetDefault("output.predictions", "")
	v.SetDefault("output.plot", "")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("train.seed", 0)
	v.SetDefault("predict.workers", 0)
}

// Load resolves the configuration. configFile may be empty; flags may be nil.
// Only flags that were explicitly set override lower-priority sources.
func Load(configFile string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, scerrors.NewIOError("read config", configFile, err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if flags != nil {
		for name, key := range flagKeys {
			f := flags.Lookup(name)
			if f == nil {
				continue
			}
			if err := v.BindPFlag(key, f); err != nil {
				return nil, scerrors.Wrapf(err, "bind flag %q", name)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, scerrors.Wrap(err, "decode configuration")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects settings the workflow cannot run with.
func (c *Config) Validate() error {
	required := []struct {
		key, value string
	}{
		{"data.train", c.Data.Train},
		{"data.test", c.Data.Test},
		{"model.path", c.Model.Path},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			return scerrors.NewValidationError(r.key, "must not be empty", r.value)
		}
	}
	if _, err := log.ParseLevel(c.Log.Level); err != nil {
		return err
	}
	switch strings.ToLower(c.Log.Format) {
	case "json", "console", "text":
	default:
		return scerrors.NewValidationError("log.format", "must be json or console", c.Log.Format)
	}
	if c.Predict.Workers < 0 {
		return scerrors.NewValidationError("predict.workers", "must be >= 0", c.Predict.Workers)
	}
	return nil
}
