package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/urfave/cli/v3"

	"mixtape/internal/logging"
	"mixtape/internal/migrations"
)

func main() {
	_ = godotenv.Load(".env")
	_ = godotenv.Load("config/local.env")

	logger := logging.New(logging.Config{
		Level:  os.Getenv("LOG_LEVEL"),
		Format: "text",
		Output: os.Stderr,
	})

	if err := newApp(logger, os.Stdout).Run(context.Background(), os.Args); err != nil {
		logger.Fatal().Err(err).Msg("migrate failed")
	}
}

func newApp(logger zerolog.Logger, out io.Writer) *cli.Command {
	dsnFlag := &cli.StringFlag{
		Name:    "database-url",
		Aliases: []string{"d"},
		Usage:   "PostgreSQL connection URL",
		Sources: cli.EnvVars("DATABASE_URL"),
	}

	return &cli.Command{
		Name:  "migrate",
		Usage: "Manage the mixtape PostgreSQL schema",
		Flags: []cli.Flag{dsnFlag},
		Commands: []*cli.Command{
			{
				Name:  "up",
				Usage: "Apply all pending migrations",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					dsn, err := databaseURL(cmd)
					if err != nil {
						return err
					}
					if err := migrations.Up(dsn, logger); err != nil {
						return err
					}
					logger.Info().Msg("Migrations applied successfully")
					return nil
				},
			},
			{
				Name:  "down",
				Usage: "Roll back every migration",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					dsn, err := databaseURL(cmd)
					if err != nil {
						return err
					}
					if err := migrations.Down(dsn, logger); err != nil {
						return err
					}
					logger.Info().Msg("Migrations rolled back successfully")
					return nil
				},
			},
			{
				Name:  "version",
				Usage: "Print the applied schema version",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					dsn, err := databaseURL(cmd)
					if err != nil {
						return err
					}
					version, dirty, err := migrations.Version(dsn, logger)
					if err != nil {
						return err
					}
					_, err = fmt.Fprintf(out, "version=%d dirty=%t\n", version, dirty)
					return err
				},
			},
		},
	}
}

func databaseURL(cmd *cli.Command) (string, error) {
	dsn := cmd.String("database-url")
	if dsn == "" {
		return "", fmt.Errorf("--database-url or DATABASE_URL is required")
	}
	return dsn, nil
}
