package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/raysh454/hfdl/internal/app"
	"github.com/raysh454/hfdl/internal/webclient"
)

// addServiceFlags registers the flags shared by serve and generate.
func addServiceFlags(fs *pflag.FlagSet) {
	def := app.DefaultConfig()
	fs.String("backend", string(def.WebClient.Client), "Webclient backend (nethttp or chromedp)")
	fs.Int("max-attempts", def.Fetcher.Retry.MaxAttempts, "Attempts per listing fetch")
	fs.Duration("retry-wait", def.Fetcher.Retry.Wait, "Wait between listing fetch attempts")
	fs.String("temp-dir", "", "Directory for generated scripts (default: system temp dir)")
	fs.Duration("cache-ttl", def.Cache.TTL, "How long extracted links are cached (0 disables)")
	fs.String("redis-addr", "", "Cache links in Redis at host:port instead of memory")
}

// loadConfig resolves the configuration: defaults, then the config file, then
// flags the user set explicitly.
func loadConfig(cmd *cobra.Command) (*app.Config, error) {
	cfg := app.DefaultConfig()

	explicit, _ := cmd.Flags().GetString("config")
	if path := app.FindConfigFile(explicit); path != "" {
		loaded, err := app.LoadConfigFile(path, cfg)
		if err != nil {
			return nil, fmt.Errorf("loading config %s: %w", path, err)
		}
		cfg = loaded
	} else if explicit != "" {
		return nil, fmt.Errorf("%w: %s", app.ErrConfigNotFound, explicit)
	}

	fs := cmd.Flags()
	var errs []error
	get := func(name string, apply func() error) {
		if fs.Changed(name) {
			if err := apply(); err != nil {
				errs = append(errs, fmt.Errorf("--%s: %w", name, err))
			}
		}
	}

	get("verbose", func() (err error) { cfg.Log.Verbose, err = fs.GetBool("verbose"); return })
	get("json-logs", func() (err error) { cfg.Log.JSON, err = fs.GetBool("json-logs"); return })
	get("addr", func() (err error) { cfg.ListenAddr, err = fs.GetString("addr"); return })
	get("backend", func() error {
		b, err := fs.GetString("backend")
		cfg.WebClient.Client = webclient.Client(b)
		return err
	})
	get("max-attempts", func() (err error) { cfg.Fetcher.Retry.MaxAttempts, err = fs.GetInt("max-attempts"); return })
	get("retry-wait", func() (err error) { cfg.Fetcher.Retry.Wait, err = fs.GetDuration("retry-wait"); return })
	get("temp-dir", func() (err error) { cfg.TempDir, err = fs.GetString("temp-dir"); return })
	get("cache-ttl", func() (err error) { cfg.Cache.TTL, err = fs.GetDuration("cache-ttl"); return })
	get("redis-addr", func() (err error) { cfg.Cache.Addr, err = fs.GetString("redis-addr"); return })

	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
