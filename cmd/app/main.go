package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"

	"github.com/starford/raido/internal"
	"github.com/starford/raido/internal/checksum"
	"github.com/starford/raido/internal/images"
	"github.com/starford/raido/internal/storage"
	pkgconfig "github.com/starford/raido/pkg/config"
)

func loadConfig(cmd *cli.Command) (*internal.Config, error) {
	path := cmd.String("config")
	cfg := internal.NewDefaultConfig()

	if cmd.IsSet("config") {
		if err := pkgconfig.Load(path, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
		return cfg, nil
	}
	// Default location is optional: missing file means run on defaults.
	if err := pkgconfig.LoadIfExists(path, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, nil
}

// requireDir validates the target directory, the one fatal argument error.
func requireDir(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("target directory does not exist: %s", path)
	}
	if !info.IsDir() {
		return fmt.Errorf("target is not a directory: %s", path)
	}
	return nil
}

func normalizeAction(_ context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if cmd.IsSet("dir") {
		cfg.Content.Root = cmd.String("dir")
	}
	if cmd.IsSet("ledger") {
		cfg.Ledger.Path = cmd.String("ledger")
	}
	if err := requireDir(cfg.Content.Root); err != nil {
		return err
	}

	logger := internal.NewLogger(cfg)
	eng, err := internal.NewEngine(cfg, logger)
	if err != nil {
		return err
	}
	report, err := eng.Run()
	if err != nil {
		return err
	}
	for _, path := range report.Rewritten {
		fmt.Println(path)
	}
	return nil
}

func hashAction(_ context.Context, cmd *cli.Command) error {
	args := cmd.Args().Slice()
	if len(args) == 0 {
		return fmt.Errorf("usage: raido hash <file> [file...]")
	}
	for _, path := range args {
		digest, err := checksum.File(path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "warning: %v\n", err)
			continue
		}
		fmt.Printf("%s\t%s\n", path, digest)
	}
	return nil
}

func imagesAction(_ context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if !cfg.Images.Enabled() {
		return fmt.Errorf("images: attachments_dir and static_dir must be configured")
	}
	if err := requireDir(cfg.Content.Root); err != nil {
		return err
	}
	if err := requireDir(cfg.Images.AttachmentsDir); err != nil {
		return err
	}

	logger := internal.NewLogger(cfg)
	store, err := storage.NewFS(cfg.Content.Root)
	if err != nil {
		return err
	}
	rw := images.New(store, cfg.Images.AttachmentsDir, cfg.Images.StaticDir, cfg.Images.LinkPrefix, logger)
	res, err := rw.Run()
	if err != nil {
		return err
	}
	logger.Info("images pass complete",
		slog.Int("posts_rewritten", len(res.RewrittenPosts)),
		slog.Int("assets_copied", res.CopiedAssets))
	return nil
}

func watchAction(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if cmd.IsSet("dir") {
		cfg.Content.Root = cmd.String("dir")
	}
	if err := requireDir(cfg.Content.Root); err != nil {
		return err
	}
	return internal.Run(ctx, internal.WithConfig(cfg))
}

func main() {
	dirFlag := &cli.StringFlag{
		Name:    "dir",
		Aliases: []string{"d"},
		Usage:   "Directory to scan for posts (overrides config)",
		Sources: cli.EnvVars("RAIDO_CONTENT_DIR"),
	}
	ledgerFlag := &cli.StringFlag{
		Name:    "ledger",
		Aliases: []string{"l"},
		Usage:   "Path of the fingerprint ledger (overrides config)",
		Sources: cli.EnvVars("RAIDO_LEDGER_FILE"),
	}

	cmd := &cli.Command{
		Name:  "raido",
		Usage: "Maintenance toolkit for a static markdown blog: frontmatter normalization, content hashing, and image publishing",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "Path to config file",
				DefaultText: "config/config.yaml",
				Value:       "config/config.yaml",
				Sources:     cli.EnvVars("RAIDO_CONFIG_FILE"),
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "normalize",
				Usage:  "Repair frontmatter of changed posts and update the ledger",
				Flags:  []cli.Flag{dirFlag, ledgerFlag},
				Action: normalizeAction,
			},
			{
				Name:      "hash",
				Usage:     "Print path and SHA-256 fingerprint for each file",
				ArgsUsage: "<file> [file...]",
				Action:    hashAction,
			},
			{
				Name:   "images",
				Usage:  "Rewrite image embeds and copy assets to the static directory",
				Action: imagesAction,
			},
			{
				Name:   "watch",
				Usage:  "Run continuously, re-normalizing on file changes, with a status endpoint",
				Flags:  []cli.Flag{dirFlag},
				Action: watchAction,
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
