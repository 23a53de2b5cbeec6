package config

import (
	"log"
	"strings"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// BillingConfig exposes the allocation clamp policies as named, auditable
// toggles. Each warning corresponds to a measurement anomaly the engine
// absorbs silently; operators can decide per deployment whether the
// orchestrator should surface it in the logs.
type BillingConfig struct {
	// WarnZeroRateBill logs when a main meter has a billed amount but zero
	// consumption, which under-bills every tenant on that meter.
	WarnZeroRateBill bool `mapstructure:"warnZeroRateBill"`

	// WarnSubMeterOverflow logs when sub-meter readings add up to more than
	// the main meter, which clamps the shared remainder to zero.
	WarnSubMeterOverflow bool `mapstructure:"warnSubMeterOverflow"`

	// Currency is the ISO code stamped on generated bills.
	Currency string `mapstructure:"currency"`
}

func DefaultBillingConfig() BillingConfig {
	return BillingConfig{
		WarnZeroRateBill:     true,
		WarnSubMeterOverflow: true,
		Currency:             "INR",
	}
}

type BillingConfigHolder struct {
	current atomic.Value // holds BillingConfig
}

func NewBillingConfigHolder() (*BillingConfigHolder, error) {
	v := viper.New()

	v.SetConfigName("billing")
	v.SetConfigType("yml")
	v.AddConfigPath("/var/lib/propease/config") // Volume-mounted config
	v.AddConfigPath("/etc/propease")            // System config
	v.AddConfigPath(".")                        // Current directory (dev mode)

	v.SetEnvPrefix("PROPEASE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	defaults := DefaultBillingConfig()
	v.SetDefault("billing.warnZeroRateBill", defaults.WarnZeroRateBill)
	v.SetDefault("billing.warnSubMeterOverflow", defaults.WarnSubMeterOverflow)
	v.SetDefault("billing.currency", defaults.Currency)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var cfg BillingConfig
	if err := v.UnmarshalKey("billing", &cfg); err != nil {
		return nil, err
	}
	applyBillingDefaults(&cfg)

	holder := &BillingConfigHolder{}
	holder.current.Store(cfg)

	v.WatchConfig()
	v.OnConfigChange(func(e fsnotify.Event) {
		var updated BillingConfig
		if err := v.UnmarshalKey("billing", &updated); err != nil {
			log.Printf("[billing-config] reload failed: %v", err)
			return
		}
		applyBillingDefaults(&updated)
		holder.current.Store(updated)
		log.Printf("[billing-config] reloaded from %s", e.Name)
	})

	return holder, nil
}

// NewStaticBillingConfig wraps a fixed config without file watching.
func NewStaticBillingConfig(cfg BillingConfig) *BillingConfigHolder {
	applyBillingDefaults(&cfg)
	holder := &BillingConfigHolder{}
	holder.current.Store(cfg)
	return holder
}

func (h *BillingConfigHolder) Get() BillingConfig {
	return h.current.Load().(BillingConfig)
}

func applyBillingDefaults(cfg *BillingConfig) {
	if strings.TrimSpace(cfg.Currency) == "" {
		cfg.Currency = DefaultBillingConfig().Currency
	}
}
