package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/hsdfat8/diam2json/dictionary"
	"github.com/hsdfat8/diam2json/internal/config"
	"github.com/hsdfat8/diam2json/jsonmap"
	"github.com/hsdfat8/diam2json/pkg/logger"
)

type envKey struct{}

// env is what every subcommand works with once the configuration is loaded.
type env struct {
	cfg    *config.Config
	dict   *dictionary.Dictionary
	mapper *jsonmap.Mapper
}

// newRootCmd builds the command tree. A fresh tree per call keeps flag
// state from leaking between executions.
func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "diam2json",
		Short: "Convert Diameter messages to JSON and back",
		Long: `diam2json decodes Diameter messages and AVPs (RFC 6733) into JSON
records and encodes such records back into wire bytes.

AVP names and types come from the built-in base dictionary, extended by
.proto or .toml dictionary files.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			e, err := setup(cmd)
			if err != nil {
				return err
			}
			cmd.SetContext(context.WithValue(cmd.Context(), envKey{}, e))
			return nil
		},
	}

	rootCmd.PersistentFlags().StringP("config", "c", "", "Config file (default: diam2json.yaml in ., ./config or /etc/diam2json)")
	rootCmd.PersistentFlags().String("log-level", "", "Log level (debug, info, warn, error, fatal)")
	rootCmd.PersistentFlags().Bool("header", false, "Emit a {header, avps} document instead of a bare AVP array")
	rootCmd.PersistentFlags().String("indent", "", "Indent JSON output with this string")
	rootCmd.PersistentFlags().StringSliceP("dict", "d", nil, "Additional dictionary files (.proto or .toml)")

	rootCmd.AddCommand(newMessageCmd(), newAVPCmd(), newEncodeCmd(), newPcapCmd())
	return rootCmd
}

// Execute runs the CLI. This is called by main.main().
func Execute() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

// setup loads the configuration, applies flag overrides and builds the
// dictionary and mapper.
func setup(cmd *cobra.Command) (*env, error) {
	flags := cmd.Flags()
	configPath, _ := flags.GetString("config")

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	if flags.Changed("log-level") {
		cfg.Logging.Level, _ = flags.GetString("log-level")
	}
	if flags.Changed("header") {
		cfg.Output.IncludeHeader, _ = flags.GetBool("header")
	}
	if flags.Changed("indent") {
		cfg.Output.Indent, _ = flags.GetString("indent")
	}
	if flags.Changed("dict") {
		extra, _ := flags.GetStringSlice("dict")
		cfg.Dictionary.Files = append(cfg.Dictionary.Files, extra...)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	logger.SetLevel(cfg.Logging.Level)

	dict, err := loadDictionary(cfg.Dictionary)
	if err != nil {
		return nil, err
	}

	mapper := jsonmap.New(dict,
		jsonmap.WithHeader(cfg.Output.IncludeHeader),
		jsonmap.WithIndent(cfg.Output.Indent),
	)
	return &env{cfg: cfg, dict: dict, mapper: mapper}, nil
}

func loadDictionary(cfg config.DictionaryConfig) (*dictionary.Dictionary, error) {
	dict := dictionary.Base()
	if cfg.SkipBase {
		dict = dictionary.New()
	}
	for _, f := range cfg.Files {
		if err := dict.LoadFile(f); err != nil {
			return nil, fmt.Errorf("failed to load dictionary %s: %w", f, err)
		}
		logger.Log.Debugw("Loaded dictionary", "file", f, "avps", dict.Len())
	}
	return dict, nil
}

func envFrom(cmd *cobra.Command) (*env, error) {
	e, ok := cmd.Context().Value(envKey{}).(*env)
	if !ok {
		return nil, fmt.Errorf("command environment not initialized")
	}
	return e, nil
}
