package cmd

import (
	"time"

	"github.com/khanhnv2901/seca-pagescan/internal/application"
	"github.com/khanhnv2901/seca-pagescan/internal/application/audit"
	"github.com/khanhnv2901/seca-pagescan/internal/checker"
	"github.com/khanhnv2901/seca-pagescan/internal/infrastructure/browser"
	"github.com/khanhnv2901/seca-pagescan/internal/infrastructure/fetch"
	"github.com/khanhnv2901/seca-pagescan/internal/shared/constants"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	defaultTimeoutSeconds       = 10
	defaultSignalTimeoutSeconds = 5
	defaultBrowserWaitMS        = int(constants.DefaultBrowserSettle / time.Millisecond)
	defaultServeAddr            = "127.0.0.1:8080"
	userAgent                   = "seca-pagescan/1.0"
)

// CLIConfig captures runtime configuration shared across commands.
type CLIConfig struct {
	Defaults DefaultValues
	Audit    AuditConfig
	Browser  BrowserConfig
	Output   OutputConfig
	Serve    ServeConfig
}

// DefaultValues represent operator-level defaults, typically derived from env/config.
type DefaultValues struct {
	TimeoutSecs int
}

// AuditConfig consolidates flag-driven settings for scans.
type AuditConfig struct {
	Mode              string
	Concurrency       int
	RateLimit         int
	SignalTimeoutSecs int
	ExtendedRules     bool
	MaxBodyBytes      int64
}

// BrowserConfig tunes the chromedp driver.
type BrowserConfig struct {
	Headless  bool
	NoSandbox bool
	WaitMS    int
	ExecPath  string
}

// OutputConfig selects the report encoding.
type OutputConfig struct {
	Format string
}

// ServeConfig configures the HTTP API.
type ServeConfig struct {
	Addr        string
	AuthToken   string
	RateLimit   int
	RateBurst   int
	CORSOrigins []string
}

var cliConfig = newCLIConfig()

func newCLIConfig() *CLIConfig {
	return &CLIConfig{
		Defaults: DefaultValues{
			TimeoutSecs: defaultTimeoutSeconds,
		},
		Audit: AuditConfig{
			Mode:              application.ModeFetch,
			Concurrency:       1,
			RateLimit:         0,
			SignalTimeoutSecs: defaultSignalTimeoutSeconds,
			MaxBodyBytes:      constants.DefaultMaxBodyBytes,
		},
		Browser: BrowserConfig{
			Headless: true,
			WaitMS:   defaultBrowserWaitMS,
		},
		Output: OutputConfig{
			Format: formatText,
		},
		Serve: ServeConfig{
			Addr:      defaultServeAddr,
			RateLimit: 10,
			RateBurst: 20,
		},
	}
}

// containerOptions maps the CLI configuration onto the application wiring.
func (c *CLIConfig) containerOptions(mode string) application.Options {
	timeout := time.Duration(c.Defaults.TimeoutSecs) * time.Second
	return application.Options{
		Mode: mode,
		Audit: audit.Config{
			Rules:         checker.Options{Extended: c.Audit.ExtendedRules},
			SignalTimeout: time.Duration(c.Audit.SignalTimeoutSecs) * time.Second,
		},
		Fetch: fetch.Options{
			Timeout:      timeout,
			MaxBodyBytes: c.Audit.MaxBodyBytes,
			UserAgent:    userAgent,
		},
		Browser: browser.Options{
			ExecPath:  c.Browser.ExecPath,
			Headless:  c.Browser.Headless,
			NoSandbox: c.Browser.NoSandbox,
			Timeout:   timeout,
			Settle:    time.Duration(c.Browser.WaitMS) * time.Millisecond,
		},
	}
}

// configBinding ties a config key to the flag it defaults.
type configBinding struct {
	key   string
	flags func() *pflag.FlagSet
	flag  string
	apply func(key string)
}

func intBinding(key string, flags func() *pflag.FlagSet, flag string, dst *int) configBinding {
	return configBinding{key: key, flags: flags, flag: flag, apply: func(k string) { *dst = viper.GetInt(k) }}
}

func boolBinding(key string, flags func() *pflag.FlagSet, flag string, dst *bool) configBinding {
	return configBinding{key: key, flags: flags, flag: flag, apply: func(k string) { *dst = viper.GetBool(k) }}
}

func stringBinding(key string, flags func() *pflag.FlagSet, flag string, dst *string) configBinding {
	return configBinding{key: key, flags: flags, flag: flag, apply: func(k string) { *dst = viper.GetString(k) }}
}

func configBindings(cfg *CLIConfig) []configBinding {
	scanFlags := func() *pflag.FlagSet { return scanCmd.Flags() }
	serveFlags := func() *pflag.FlagSet { return serveCmd.Flags() }
	persistent := func() *pflag.FlagSet { return rootCmd.PersistentFlags() }

	return []configBinding{
		intBinding("defaults.timeout_secs", persistent, "timeout", &cfg.Defaults.TimeoutSecs),
		stringBinding("audit.mode", scanFlags, "mode", &cfg.Audit.Mode),
		intBinding("audit.concurrency", scanFlags, "concurrency", &cfg.Audit.Concurrency),
		intBinding("audit.rate_limit", scanFlags, "rate-limit", &cfg.Audit.RateLimit),
		intBinding("audit.signal_timeout_secs", persistent, "signal-timeout", &cfg.Audit.SignalTimeoutSecs),
		boolBinding("audit.extended_rules", persistent, "extended", &cfg.Audit.ExtendedRules),
		{key: "audit.max_body_bytes", flags: scanFlags, flag: "max-body-bytes", apply: func(k string) {
			cfg.Audit.MaxBodyBytes = viper.GetInt64(k)
		}},
		boolBinding("browser.headless", scanFlags, "headless", &cfg.Browser.Headless),
		boolBinding("browser.no_sandbox", scanFlags, "no-sandbox", &cfg.Browser.NoSandbox),
		intBinding("browser.wait_ms", scanFlags, "wait-ms", &cfg.Browser.WaitMS),
		stringBinding("browser.exec_path", scanFlags, "chrome-path", &cfg.Browser.ExecPath),
		stringBinding("output.format", persistent, "format", &cfg.Output.Format),
		stringBinding("serve.addr", serveFlags, "addr", &cfg.Serve.Addr),
		stringBinding("serve.auth_token", serveFlags, "auth-token", &cfg.Serve.AuthToken),
		intBinding("serve.rate_limit", serveFlags, "rate-limit", &cfg.Serve.RateLimit),
		intBinding("serve.rate_burst", serveFlags, "rate-burst", &cfg.Serve.RateBurst),
		{key: "serve.cors_origins", flags: serveFlags, flag: "cors-origins", apply: func(k string) {
			cfg.Serve.CORSOrigins = viper.GetStringSlice(k)
		}},
	}
}

// applyConfigDefaults merges config file and environment values into the runtime
// config when the user did not explicitly set the corresponding flag.
func applyConfigDefaults() {
	for _, b := range configBindings(cliConfig) {
		if !viper.IsSet(b.key) {
			continue
		}
		if flagChanged(b.flags(), b.flag) {
			continue
		}
		b.apply(b.key)
	}
}

func flagChanged(flags *pflag.FlagSet, name string) bool {
	if flags == nil {
		return false
	}
	flag := flags.Lookup(name)
	return flag != nil && flag.Changed
}
