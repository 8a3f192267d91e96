package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/kailas-cloud/toolsel/internal/config"
	domexp "github.com/kailas-cloud/toolsel/internal/domain/experiment"
)

// runFlags override the experiment section of the config when set explicitly.
type runFlags struct {
	configPath string
	tools      int
	queries    int
	hyde       string
	seed       uint64
	topK       int
}

func (f *runFlags) register(cmd *cobra.Command) {
	cmd.PersistentFlags().StringVar(&f.configPath, "config", "", "config file (default: config/$ENV.yaml)")

	cmd.Flags().IntVar(&f.tools, "tools", domexp.DefaultToolCount, "number of tools in the corpus")
	cmd.Flags().IntVar(&f.queries, "queries", domexp.DefaultQueryCount, "number of test queries")
	cmd.Flags().StringVar(&f.hyde, "hyde", "true", `expand queries with HyDE ("false" disables)`)
	cmd.Flags().Uint64Var(&f.seed, "seed", 0, "seed for corpus and query sampling")
	cmd.Flags().IntVar(&f.topK, "top-k", domexp.DefaultTopK, "number of tools retrieved per query")
}

// apply copies explicitly set flags over cfg.Experiment.
func (f *runFlags) apply(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("tools") {
		cfg.Experiment.Tools = f.tools
	}
	if flags.Changed("queries") {
		cfg.Experiment.Queries = f.queries
	}
	if flags.Changed("hyde") {
		on := domexp.ParseHyDE(f.hyde)
		cfg.Experiment.HyDE = &on
	}
	if flags.Changed("seed") {
		cfg.Experiment.Seed = f.seed
	}
	if flags.Changed("top-k") {
		cfg.Experiment.TopK = f.topK
	}
}

// loadConfig reads --config when given, otherwise config/<env>.yaml.
func (f *runFlags) loadConfig(env string) (config.Config, error) {
	if f.configPath == "" {
		cfg, err := config.Load(env)
		if err != nil {
			return config.Config{}, fmt.Errorf("load config: %w", err)
		}
		return cfg, nil
	}

	data, err := os.ReadFile(filepath.Clean(f.configPath))
	if err != nil {
		return config.Config{}, fmt.Errorf("read config %s: %w", f.configPath, err)
	}
	cfg, err := config.Parse(data)
	if err != nil {
		return config.Config{}, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

func experimentConfig(cfg config.Config) (domexp.Config, error) {
	exp := cfg.Experiment
	c, err := domexp.NewConfig(exp.Tools, exp.Queries, *exp.HyDE, exp.TopK, exp.Seed)
	if err != nil {
		return domexp.Config{}, fmt.Errorf("experiment config: %w", err)
	}
	return c, nil
}
