package main

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/cybergodev/htmlnorm"
)

const envPrefix = "HTMLNORM_"

type options struct {
	formatting bool
	tables     bool
	images     bool
	links      bool
	dedup      bool
	baseURL    string
	configPath string
	envFile    string
	verbose    bool
	stats      bool
	workers    int
}

func newRootCmd() *cobra.Command {
	opts := &options{}
	defaults := htmlnorm.DefaultConfig()

	cmd := &cobra.Command{
		Use:   "htmlnorm [file...]",
		Short: "Normalize HTML into a canonical tag set",
		Long: `Reads HTML documents, strips navigation, sharing widgets, comments and other
boilerplate, rewrites the remaining markup into a small canonical tag set and
prints the result. Reads standard input when no file is given.

Flags may also be set through HTMLNORM_* environment variables, for example
HTMLNORM_TABLES=false. A .env file in the working directory is loaded first.`,
		SilenceUsage: true,
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			return loadEnv(cmd, opts.envFile)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, opts, args)
		},
	}

	flags := cmd.Flags()
	flags.BoolVar(&opts.formatting, "formatting", defaults.Formatting, "keep formatting as hi elements")
	flags.BoolVar(&opts.tables, "tables", defaults.Tables, "keep tables")
	flags.BoolVar(&opts.images, "images", defaults.Images, "keep images as graphic elements")
	flags.BoolVar(&opts.links, "links", defaults.Links, "keep links as ref elements")
	flags.BoolVar(&opts.dedup, "dedup", defaults.Deduplicate, "drop text repeated across documents")
	flags.StringVar(&opts.baseURL, "base-url", "", "resolve relative link targets against this URL")
	flags.StringVarP(&opts.configPath, "config", "c", "", "YAML, TOML or JSON configuration file")
	flags.StringVar(&opts.envFile, "env-file", ".env", "environment file loaded before reading HTMLNORM_* variables")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "verbose logging")
	flags.BoolVar(&opts.stats, "stats", false, "log processing statistics")
	flags.IntVarP(&opts.workers, "workers", "w", defaults.WorkerPoolSize, "documents processed in parallel")
	return cmd
}

// loadEnv reads the env file, when present, and copies HTMLNORM_* variables
// into flags the command line left unset.
func loadEnv(cmd *cobra.Command, envFile string) error {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("load %s: %w", envFile, err)
		}
	}
	var firstErr error
	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		if f.Changed || firstErr != nil {
			return
		}
		name := envPrefix + strings.ToUpper(strings.ReplaceAll(f.Name, "-", "_"))
		val, ok := os.LookupEnv(name)
		if !ok {
			return
		}
		if err := cmd.Flags().Set(f.Name, val); err != nil {
			firstErr = fmt.Errorf("%s: %w", name, err)
		}
	})
	return firstErr
}

func run(cmd *cobra.Command, opts *options, args []string) error {
	if opts.verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}

	cfg, err := buildConfig(cmd, opts)
	if err != nil {
		return err
	}
	processor, err := htmlnorm.New(cfg)
	if err != nil {
		return err
	}
	defer processor.Close()

	inputs, names, err := readInputs(cmd.InOrStdin(), args)
	if err != nil {
		return err
	}
	roots := make([]*htmlnorm.Node, len(inputs))
	for i, data := range inputs {
		if roots[i], err = htmlnorm.Parse(data); err != nil {
			return fmt.Errorf("%s: %w", names[i], err)
		}
	}

	results, batchErr := processor.ProcessBatch(roots)
	out := cmd.OutOrStdout()
	for i, result := range results {
		if result == nil {
			continue
		}
		rendered, err := htmlnorm.Render(result.Root)
		if err != nil {
			return fmt.Errorf("%s: %w", names[i], err)
		}
		if _, err := fmt.Fprintln(out, rendered); err != nil {
			return err
		}
		log.Debug().
			Str("input", names[i]).
			Int("kept", result.Kept).
			Int("rejected", result.Rejected).
			Int("link_dense", result.LinkDense).
			Dur("elapsed", result.ProcessingTime).
			Msg("normalized")
	}

	if opts.stats {
		stats := processor.GetStatistics()
		log.Info().
			Int64("processed", stats.TotalProcessed).
			Int64("errors", stats.ErrorCount).
			Int64("kept", stats.KeptElements).
			Int64("rejected", stats.RejectedElements).
			Int64("pruned", stats.PrunedSubtrees).
			Int64("link_dense", stats.LinkDenseBlocks).
			Dur("avg", stats.AverageProcessTime).
			Msg("statistics")
	}
	return batchErr
}

// buildConfig layers defaults, the config file and explicitly set flags, in
// that order.
func buildConfig(cmd *cobra.Command, opts *options) (htmlnorm.Config, error) {
	cfg := htmlnorm.DefaultConfig()
	if opts.configPath != "" {
		fc, err := htmlnorm.LoadConfigFile(opts.configPath)
		if err != nil {
			return cfg, err
		}
		htmlnorm.ApplyFileConfig(&cfg, fc)
	}

	flags := cmd.Flags()
	if flags.Changed("formatting") {
		cfg.Formatting = opts.formatting
	}
	if flags.Changed("tables") {
		cfg.Tables = opts.tables
	}
	if flags.Changed("images") {
		cfg.Images = opts.images
	}
	if flags.Changed("links") {
		cfg.Links = opts.links
	}
	if flags.Changed("dedup") {
		cfg.Deduplicate = opts.dedup
	}
	if flags.Changed("base-url") {
		cfg.BaseURL = opts.baseURL
	}
	if flags.Changed("workers") {
		cfg.WorkerPoolSize = opts.workers
	}
	return cfg, nil
}

func readInputs(stdin io.Reader, args []string) ([][]byte, []string, error) {
	if len(args) == 0 {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return nil, nil, fmt.Errorf("read stdin: %w", err)
		}
		return [][]byte{data}, []string{"<stdin>"}, nil
	}
	inputs := make([][]byte, 0, len(args))
	for _, path := range args {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, nil, fmt.Errorf("read file %q: %w", path, err)
		}
		inputs = append(inputs, data)
	}
	return inputs, args, nil
}
