package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Spatial SpatialConfig `yaml:"spatial" mapstructure:"spatial"`
	Assets  AssetsConfig  `yaml:"assets" mapstructure:"assets"`
	Render  RenderConfig  `yaml:"render" mapstructure:"render"`
	Legend  LegendConfig  `yaml:"legend" mapstructure:"legend"`
	Output  OutputConfig  `yaml:"output" mapstructure:"output"`
	Log     LogConfig     `yaml:"log" mapstructure:"log"`
}

// SpatialConfig configures the boundary dataset source.
type SpatialConfig struct {
	DatasetPath  string `yaml:"dataset_path" mapstructure:"dataset_path"`
	NameField    string `yaml:"name_field" mapstructure:"name_field"`
	CacheDataset bool   `yaml:"cache_dataset" mapstructure:"cache_dataset"`
}

// AssetsConfig points at the static background templates and the optional
// TTF font. An empty font path falls back to the bundled Go Regular face.
type AssetsConfig struct {
	DailyBackground   string `yaml:"daily_background" mapstructure:"daily_background"`
	MonthlyBackground string `yaml:"monthly_background" mapstructure:"monthly_background"`
	FontPath          string `yaml:"font_path" mapstructure:"font_path"`
}

// RenderConfig configures the map rendering stage. Projection is "full"
// when the fixed-extent projection is usable on the deployment target,
// "none" on constrained targets where monthly recaps degrade to a
// placeholder.
type RenderConfig struct {
	Projection string       `yaml:"projection" mapstructure:"projection"`
	Extent     ExtentConfig `yaml:"extent" mapstructure:"extent"`
}

// ExtentConfig is the fixed geographic frame used by the full projection.
type ExtentConfig struct {
	MinLon float64 `yaml:"min_lon" mapstructure:"min_lon"`
	MinLat float64 `yaml:"min_lat" mapstructure:"min_lat"`
	MaxLon float64 `yaml:"max_lon" mapstructure:"max_lon"`
	MaxLat float64 `yaml:"max_lat" mapstructure:"max_lat"`
}

// LegendConfig sizes the legend panels per mode.
type LegendConfig struct {
	SideWidth    int `yaml:"side_width" mapstructure:"side_width"`
	BottomHeight int `yaml:"bottom_height" mapstructure:"bottom_height"`
}

// OutputConfig configures where composed infographics are written.
type OutputConfig struct {
	BaseDir string `yaml:"base_dir" mapstructure:"base_dir"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("ROBINFO")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("spatial.dataset_path", "data/spatial/batas_kecamatan.shp")
	v.SetDefault("spatial.name_field", "NAMOBJ")
	v.SetDefault("spatial.cache_dataset", true)
	v.SetDefault("assets.daily_background", "assets/background/bg_img_updatehar.png")
	v.SetDefault("assets.monthly_background", "assets/background/bg_img_rekapbul.png")
	v.SetDefault("render.projection", "full")
	v.SetDefault("render.extent.min_lon", 94.0)
	v.SetDefault("render.extent.min_lat", -12.0)
	v.SetDefault("render.extent.max_lon", 142.0)
	v.SetDefault("render.extent.max_lat", 8.0)
	v.SetDefault("legend.side_width", 1050)
	v.SetDefault("legend.bottom_height", 1400)
	v.SetDefault("output.base_dir", "output/infografis")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
