package config

import (
	"errors"
	"log"
	"strings"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// DashboardConfig tunes the aggregation windows served by /chart-data.
type DashboardConfig struct {
	MonthsWindow  int      `mapstructure:"monthsWindow"`
	TransportAxes []string `mapstructure:"transportAxes"`
}

func DefaultDashboardConfig() DashboardConfig {
	return DashboardConfig{
		MonthsWindow:  12,
		TransportAxes: []string{"Air", "Sea", "Road", "Rail"},
	}
}

// DashboardConfigHolder serves the current dashboard config and hot-reloads
// it when the backing file changes.
type DashboardConfigHolder struct {
	current atomic.Value // holds DashboardConfig
}

func NewDashboardConfigHolder() (*DashboardConfigHolder, error) {
	v := viper.New()

	v.SetConfigName("dashboard")
	v.SetConfigType("yml")
	v.AddConfigPath("/var/lib/cargopro/config")
	v.AddConfigPath("/etc/cargopro")
	v.AddConfigPath(".")

	v.SetEnvPrefix("CARGOPRO")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
		defaults := DefaultDashboardConfig()
		v.SetDefault("dashboard.monthsWindow", defaults.MonthsWindow)
		v.SetDefault("dashboard.transportAxes", defaults.TransportAxes)
	}

	var cfg DashboardConfig
	if err := v.UnmarshalKey("dashboard", &cfg); err != nil {
		return nil, err
	}
	if err := validateDashboardConfig(cfg); err != nil {
		return nil, err
	}

	holder := &DashboardConfigHolder{}
	holder.current.Store(cfg)

	v.WatchConfig()
	v.OnConfigChange(func(e fsnotify.Event) {
		var updated DashboardConfig
		if err := v.UnmarshalKey("dashboard", &updated); err != nil {
			log.Printf("[dashboard-config] reload failed: %v", err)
			return
		}
		if err := validateDashboardConfig(updated); err != nil {
			log.Printf("[dashboard-config] invalid config ignored: %v", err)
			return
		}
		holder.current.Store(updated)
	})

	return holder, nil
}

func (h *DashboardConfigHolder) Current() DashboardConfig {
	cfg, ok := h.current.Load().(DashboardConfig)
	if !ok {
		return DefaultDashboardConfig()
	}
	return cfg
}

func validateDashboardConfig(cfg DashboardConfig) error {
	if cfg.MonthsWindow <= 0 || cfg.MonthsWindow > 60 {
		return errors.New("dashboard.monthsWindow must be between 1 and 60")
	}
	return nil
}
