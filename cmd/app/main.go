package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"

	"github.com/starford/menushare/internal"
	"github.com/starford/menushare/internal/catalog"
	"github.com/starford/menushare/internal/sharecodec"
	pkgconfig "github.com/starford/menushare/pkg/config"
)

func loadConfig(cmd *cli.Command) (*internal.Config, error) {
	configPath := cmd.String("config")

	cfg := internal.NewDefaultConfig()
	found, err := pkgconfig.LoadOptional(configPath, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if !found {
		slog.Debug("config file not found, using defaults", slog.String("path", configPath))
	}
	return cfg, nil
}

func serve(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	opts := []internal.Option{
		internal.WithConfig(cfg),
	}

	if err := internal.Run(ctx, opts...); err != nil {
		return fmt.Errorf("app run error: %w", err)
	}

	return nil
}

func serveMCP(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	if err := internal.RunMCP(ctx, internal.WithConfig(cfg), internal.WithLogOutput(os.Stderr)); err != nil {
		return fmt.Errorf("mcp run error: %w", err)
	}
	return nil
}

func encode(_ context.Context, cmd *cli.Command) error {
	path := cmd.Args().First()
	if path == "" {
		return cli.Exit("usage: menushare encode <menu.yaml|menu.json|menu.xlsx>", 2)
	}
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	base := cfg.Share.BaseURL
	if b := cmd.String("base-url"); b != "" {
		base = b
	}

	snap, err := catalog.Read(path)
	if err != nil {
		return err
	}
	link, err := sharecodec.BuildShareURL(base, snap, cfg.Share.WarnLength)
	if err != nil {
		return err
	}

	fmt.Fprintln(stdout(cmd), link.URL)
	if link.Long {
		fmt.Fprintf(stderr(cmd), "warning: link is %d characters long (limit %d); some apps may not open it\n",
			link.Length, cfg.Share.WarnLength)
	}
	return nil
}

func decode(_ context.Context, cmd *cli.Command) error {
	arg := strings.TrimSpace(cmd.Args().First())
	if arg == "" {
		return cli.Exit("usage: menushare decode <link|#data=...|payload>", 2)
	}
	payload, ok := sharecodec.PayloadFromFragment(arg)
	if !ok {
		payload = arg
	}

	p, err := sharecodec.Decode(payload)
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}

	enc := json.NewEncoder(stdout(cmd))
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(sharecodec.Hydrate(p))
}

func stdout(cmd *cli.Command) io.Writer {
	if w := cmd.Root().Writer; w != nil {
		return w
	}
	return os.Stdout
}

func stderr(cmd *cli.Command) io.Writer {
	if w := cmd.Root().ErrWriter; w != nil {
		return w
	}
	return os.Stderr
}

func newCommand() *cli.Command {
	return &cli.Command{
		Name:   "menushare",
		Usage:  "Build restaurant menus and share them as self-contained links",
		Action: serve,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "Path to config file",
				DefaultText: "config/config.yaml",
				Value:       "config/config.yaml",
				Sources:     cli.EnvVars("APP_CONFIG_FILE"),
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Run the HTTP service",
				Action: serve,
			},
			{
				Name:      "encode",
				Usage:     "Import a menu file and print its share link",
				ArgsUsage: "<file>",
				Action:    encode,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "base-url",
						Usage: "Page address to put in front of the #data= fragment (overrides share.base_url)",
					},
				},
			},
			{
				Name:      "decode",
				Usage:     "Print the menu contained in a share link as JSON",
				ArgsUsage: "<link>",
				Action:    decode,
			},
			{
				Name:   "mcp",
				Usage:  "Serve the menu tools over MCP (stdio)",
				Action: serveMCP,
			},
		},
	}
}

func main() {
	if err := newCommand().Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
