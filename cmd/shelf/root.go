package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"bookshelf/internal/client"
	"bookshelf/internal/logging"
	"bookshelf/internal/metadata"
	"bookshelf/internal/platform/breaker"
	"bookshelf/internal/platform/googlebooks"
	"bookshelf/internal/platform/openlibrary"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	defaultServer  = "http://localhost:8080"
	defaultTimeout = 10 * time.Second
)

// app is built once per invocation, after flags and config are resolved.
type app struct {
	out      io.Writer
	timeout  time.Duration
	api      *client.APIClient
	cache    *client.BadgerCache
	resolver *metadata.Resolver
	store    *client.Store
}

func (a *app) context(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	return context.WithTimeout(cmd.Context(), a.timeout)
}

func (a *app) close() {
	if a.cache != nil {
		if err := a.cache.Close(); err != nil {
			logging.Warn().Err(err).Msg("closing cache")
		}
	}
}

// run executes one CLI invocation with args and releases the cache
// afterwards, whether or not the command succeeded.
func run(ctx context.Context, out io.Writer, args []string) error {
	a := &app{out: out}
	defer a.close()

	root := newRootCmd(a)
	root.SetArgs(args)
	return root.ExecuteContext(ctx)
}

func newRootCmd(a *app) *cobra.Command {
	v := viper.New()

	root := &cobra.Command{
		Use:           "shelf",
		Short:         "Track the books you own, have read and rated",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := readConfig(v, cmd); err != nil {
				return err
			}
			return a.init(v)
		},
	}
	root.SetOut(a.out)

	flags := root.PersistentFlags()
	flags.String("config", "", "config file (default: ./shelf.yaml or ~/.config/shelf/shelf.yaml)")
	flags.String("server", defaultServer, "bookshelf server URL")
	flags.String("data-dir", "", "directory of the local cache (default: ~/.config/shelf/data)")
	flags.Duration("timeout", defaultTimeout, "timeout of one command")
	flags.String("log-level", "warn", "log level: debug, info, warn, error")
	flags.String("openlibrary-url", openlibrary.DefaultBaseURL, "Open Library base URL")
	flags.String("googlebooks-url", googlebooks.DefaultBaseURL, "Google Books base URL")

	root.AddCommand(
		newRegisterCmd(a),
		newLoginCmd(a),
		newLogoutCmd(a),
		newProfileCmd(a),
		newAddCmd(a),
		newRemoveCmd(a),
		newRateCmd(a),
		newToggleReadCmd(a),
		newSearchCmd(a),
		newLookupCmd(a),
		newBooksCmd(a),
	)
	return root
}

func readConfig(v *viper.Viper, cmd *cobra.Command) error {
	if err := v.BindPFlags(cmd.Flags()); err != nil {
		return err
	}

	if cfgFile := v.GetString("config"); cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("shelf")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if dir, err := configDir(); err == nil {
			v.AddConfigPath(dir)
		}
	}

	v.SetEnvPrefix("SHELF")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if v.GetString("config") != "" || !errors.As(err, &notFound) {
			return fmt.Errorf("read config: %w", err)
		}
	}
	return nil
}

func configDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "shelf"), nil
}

func (a *app) init(v *viper.Viper) error {
	logging.Init(logging.Config{Level: v.GetString("log-level"), Format: "console"})

	a.timeout = v.GetDuration("timeout")
	if a.timeout <= 0 {
		a.timeout = defaultTimeout
	}

	dataDir := v.GetString("data-dir")
	if dataDir == "" {
		dir, err := configDir()
		if err != nil {
			return err
		}
		dataDir = filepath.Join(dir, "data")
	}
	cache, err := client.OpenBadgerCache(dataDir)
	if err != nil {
		return fmt.Errorf("open cache %s: %w", dataDir, err)
	}
	a.cache = cache

	httpClient := &http.Client{Timeout: a.timeout}
	a.api = client.NewAPIClient(v.GetString("server"), httpClient)
	token, err := cache.LoadToken()
	if err != nil {
		logging.Warn().Err(err).Msg("cached token unreadable")
	}
	a.api.SetToken(token)

	a.resolver = metadata.NewResolver(
		metadata.NewOpenLibraryAdapter(openlibrary.NewClient(v.GetString("openlibrary-url"), breaker.NewClient("openlibrary", a.timeout))),
		metadata.NewGoogleBooksAdapter(googlebooks.NewClient(v.GetString("googlebooks-url"), breaker.NewClient("googlebooks", a.timeout))),
		metadata.NewLocalAdapter(a.api, a.api.BaseURL()),
	)
	a.store = client.NewStore(a.api, a.resolver, cache)
	a.store.Load(context.Background())
	return nil
}
