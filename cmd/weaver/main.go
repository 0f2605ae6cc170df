// Command weaver is a local CLI front end for the snippet store: the same
// engine the browser extension embeds, driven from the terminal against a
// SQLite database.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/weaverhq/goweaver/internal/config"
	"github.com/weaverhq/goweaver/internal/oracle"
	"github.com/weaverhq/goweaver/internal/store"
	"github.com/weaverhq/goweaver/internal/weaver"
)

var (
	cfgPath string
	dbPath  string
)

func main() {
	root := &cobra.Command{
		Use:           "weaver",
		Short:         "Save snippets, grow a knowledge graph, optimize prompts",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&cfgPath, "config", "", "path to config file (YAML)")
	root.PersistentFlags().StringVar(&dbPath, "db", "", "path to SQLite database (overrides config)")

	root.AddCommand(
		saveCmd(),
		listCmd(),
		deleteCmd(),
		clearCmd(),
		optimizeCmd(),
		graphCmd(),
		relatedCmd(),
	)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// openEngine builds the engine from config. The store must be closed by the
// caller.
func openEngine() (*weaver.Engine, store.Storer, error) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, nil, err
	}
	if dbPath != "" {
		cfg.DBPath = dbPath
	}
	if cfg.APIKey == "" {
		return nil, nil, fmt.Errorf("no API key configured (set GEMINI_API_KEY or apiKey in config)")
	}

	st, err := store.NewSQLiteStore(cfg.DBPath)
	if err != nil {
		return nil, nil, err
	}

	llm := oracle.NewGeminiClient(cfg.Endpoint, cfg.APIKey)
	eng := weaver.NewEngine(st, llm, weaver.WithMaxContextSnippets(cfg.MaxContextSnippets))
	return eng, st, nil
}
