package commands

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/multierr"

	"apnode/internal/app"
)

var (
	configPath string
	envFile    string
	home       string
	baseURL    string
	passphrase string
	logLevel   string

	wire *app.Wire
	node *app.Node
)

func Execute() error {
	root := &cobra.Command{
		Use:          "apnode",
		Short:        "Minimal federated messaging node",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := loadEnvFile(envFile); err != nil {
				return err
			}
			cfg, err := app.LoadConfig(configPath)
			if err != nil {
				return err
			}
			if home != "" {
				cfg.Home = home
			}
			if baseURL != "" {
				cfg.BaseURL = baseURL
			}
			if passphrase != "" {
				cfg.Keys.Passphrase = passphrase
			}
			if logLevel != "" {
				cfg.Log.Level = logLevel
			}
			cfg.LogWriter = cmd.ErrOrStderr()

			w, err := app.NewWire(cfg)
			if err != nil {
				return err
			}
			wire, node = w, w.Node()
			return nil
		},
	}

	root.PersistentFlags().StringVarP(&configPath, "config", "c", "", "YAML config file")
	root.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file loaded before the config")
	root.PersistentFlags().StringVar(&home, "home", "", "data dir (default ~/.apnode)")
	root.PersistentFlags().StringVar(&baseURL, "base-url", "", "public base URL of this node (e.g. https://node.example)")
	root.PersistentFlags().StringVarP(&passphrase, "passphrase", "p", "", "passphrase sealing private keys at rest")
	root.PersistentFlags().StringVar(&logLevel, "log-level", "", "debug|info|warn|error")

	root.AddCommand(
		serveCmd(),
		createActorCmd(),
		pubkeyCmd(),
		sendCmd(),
		inboxCmd(),
		outboxCmd(),
		decryptCmd(),
		followCmd(),
		followersCmd(),
		likeCmd(),
	)
	err := root.Execute()
	if wire != nil {
		// RunE failures skip post-run hooks, so the database is closed here.
		err = multierr.Append(err, wire.Close())
	}
	return err
}

// loadEnvFile loads path into the environment without overriding variables
// that are already set. A missing file is fine.
func loadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}
