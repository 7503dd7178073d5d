package cmd

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/cthoyt/robot-obo-tool/config"
	"github.com/cthoyt/robot-obo-tool/internal/logger"
	"github.com/cthoyt/robot-obo-tool/internal/robot"
	"github.com/cthoyt/robot-obo-tool/internal/shared/x/strx"
	"github.com/cthoyt/robot-obo-tool/internal/version"

	"github.com/urfave/cli/v3"
)

func App() *cli.Command {
	configFlag := &cli.StringFlag{
		Name:    "config",
		Usage:   "Path to config file",
		Aliases: []string{"c"},
		Sources: cli.EnvVars("ROBOTOBO_CONFIG_PATH"),
	}
	modeFlag := &cli.StringFlag{
		Name:     "mode",
		Usage:    "Daemon mode: serve/mirror",
		Aliases:  []string{"m"},
		Required: true,
		Sources:  cli.EnvVars("ROBOTOBO_DAEMON_MODE"),
	}

	app := &cli.Command{
		Name:    "robot-obo-tool",
		Usage:   "ROBOT wrapper for converting and mirroring OBO ontologies",
		Version: version.Version,
		Commands: []*cli.Command{
			// server modes
			{
				Name:  "daemon",
				Usage: "Running in a daemon mode: serve/mirror",
				Flags: []cli.Flag{
					configFlag,
					modeFlag,
				},
				Action: func(ctx context.Context, c *cli.Command) error {
					mode := c.String("mode")
					cfg := loadConfig(c, mode)

					//nolint:staticcheck
					if mode == config.ModeServe {
						RunServeMode(ctx, cfg)
					} else if mode == config.ModeMirror {
						RunMirrorMode(ctx, cfg)
					} else {
						log.Fatalf("unknown mode: %s", mode)
					}

					return nil
				},
			},

			// one-shot convert
			{
				Name:  "convert",
				Usage: "Convert an ontology with ROBOT",

				Description: strx.HeredocTrim(`
				Converts a local file or a remote IRI. The output format is
				inferred from the output extension unless --format is set.

				Example:
				robot-obo-tool convert -i https://purl.obolibrary.org/obo/pato.owl -o pato.obo --check=false
				`),

				Flags: []cli.Flag{
					configFlag,
					&cli.StringFlag{
						Name:     "input",
						Aliases:  []string{"i"},
						Usage:    "Input ontology: local path or IRI",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "output",
						Aliases:  []string{"o"},
						Usage:    "Output file",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "input-flag",
						Usage: "Force the ROBOT input flag: -i (local) or -I (remote); inferred when unset",
					},
					&cli.StringFlag{
						Name:  "format",
						Usage: "Output format (obo, owl, json, ttl, ...)",
					},
					&cli.BoolFlag{
						Name:  "merge",
						Usage: "Merge all graphs before converting",
					},
					&cli.BoolFlag{
						Name:  "reason",
						Usage: "Run the reasoner before converting",
					},
					&cli.BoolFlag{
						Name:  "check",
						Usage: "Enforce OBO document structure checks; pass --check=false to relax them",
						Value: true,
					},
					&cli.BoolFlag{
						Name:  "no-check",
						Usage: "Disable OBO document structure checks (same as --check=false)",
					},
					&cli.BoolFlag{
						Name:  "debug",
						Usage: "Run ROBOT with -vvv",
					},
					&cli.StringSliceFlag{
						Name:  "robot-arg",
						Usage: "Extra argument passed to ROBOT verbatim (repeatable)",
					},
				},
				Action: func(ctx context.Context, c *cli.Command) error {
					cfg := loadConfig(c, config.ModeConvertCMD)

					// trailing args are passed to ROBOT verbatim, same as --robot-arg
					extraArgs := c.StringSlice("robot-arg")
					extraArgs = append(extraArgs, c.Args().Slice()...)

					return RunConvertCmd(ctx, cfg, &robot.ConvertRequest{
						InputPath:  c.String("input"),
						OutputPath: c.String("output"),
						InputFlag:  c.String("input-flag"),
						Format:     c.String("format"),
						Merge:      c.Bool("merge"),
						Reason:     c.Bool("reason"),
						NoCheck:    c.Bool("no-check") || !c.Bool("check"),
						Debug:      c.Bool("debug"),
						ExtraArgs:  extraArgs,
					})
				},
			},

			// raw ROBOT invocation
			{
				Name:  "run",
				Usage: "Run an arbitrary ROBOT command with the cached jar",

				Description: strx.HeredocTrim(`
				Everything after the command name is passed to ROBOT verbatim.

				Example:
				robot-obo-tool run -- extract --method BOT -i go.owl -o slim.owl
				`),

				Flags: []cli.Flag{
					configFlag,
				},
				Action: func(ctx context.Context, c *cli.Command) error {
					args := c.Args().Slice()
					if len(args) == 0 {
						return fmt.Errorf("usage: run -- <ROBOT args...>")
					}
					cfg := loadConfig(c, config.ModeConvertCMD)
					return RunRobotCmd(ctx, cfg, args)
				},
			},

			// jar management
			{
				Name:  "fetch-jar",
				Usage: "Download robot.jar into the local cache (no-op if cached)",
				Flags: []cli.Flag{
					configFlag,
					&cli.StringFlag{
						Name:  "robot-version",
						Usage: "ROBOT release to fetch (defaults to the configured version)",
					},
				},
				Action: func(ctx context.Context, c *cli.Command) error {
					cfg := loadConfig(c, config.ModeConvertCMD)
					if v := c.String("robot-version"); v != "" {
						cfg.Robot.Version = v
					}
					jarPath, err := newRunner(cfg).EnsureJar(ctx)
					if err != nil {
						return err
					}
					fmt.Println(jarPath)
					return nil
				},
			},

			// environment diagnostics
			{
				Name:  "doctor",
				Usage: "Check that java and ROBOT are usable",
				Flags: []cli.Flag{
					configFlag,
				},
				Action: func(ctx context.Context, c *cli.Command) error {
					cfg := loadConfig(c, config.ModeConvertCMD)
					return RunDoctorCmd(ctx, cfg)
				},
			},

			// ontology stats
			{
				Name:  "stats",
				Usage: "Print entity counts of an RDF/XML ontology file",
				Action: func(_ context.Context, c *cli.Command) error {
					args := c.Args()
					if args.Len() != 1 {
						return fmt.Errorf("usage: stats <FILE.owl>")
					}
					return RunStatsCmd(args.Get(0))
				},
			},

			// Validate command
			{
				Name:  "validate",
				Usage: "Validate the config file without running the application",
				Flags: []cli.Flag{
					configFlag,
					modeFlag,
				},
				Action: func(_ context.Context, c *cli.Command) error {
					mode := c.String("mode")
					if mode == "" {
						log.Fatal("required flag 'mode' is empty")
					}
					_ = loadConfig(c, mode)
					fmt.Println("Configuration is valid.")
					return nil
				},
			},

			// config templates
			{
				Name:  "config-template",
				Usage: "Print a config file template",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "mode",
						Usage: "Template flavor: full/serve/mirror",
						Value: "full",
					},
				},
				Action: func(_ context.Context, c *cli.Command) error {
					switch c.String("mode") {
					case "serve":
						fmt.Println(GetConfigTemplateServe())
					case "mirror":
						fmt.Println(GetConfigTemplateMirror())
					default:
						fmt.Println(GetConfigTemplateFull())
					}
					return nil
				},
			},
		},
	}

	return app
}

func loadConfig(c *cli.Command, mode string) *config.Config {
	configPath := c.String("config")

	// 1) if -c flag is set -> must read config from file
	// 2) if $ROBOTOBO_CONFIG_PATH is set -> must read config from file
	// 3) read config with go-envconfig otherwise
	var cfg *config.Config
	if configPath != "" {
		cfg = config.MustLoad(configPath, mode)
	} else {
		cfg = config.MustEnvconfig(mode)
	}

	// debug config (NOTE: sensitive fields are hidden)
	_, _ = fmt.Fprintf(os.Stderr, "STARTING WITH CONFIGURATION (%s):\n%s\n\n",
		filepath.ToSlash(configPath),
		cfg.String(),
	)

	logger.Init(&logger.Opts{
		Level:     cfg.Log.Level,
		Format:    cfg.Log.Format,
		AddSource: cfg.Log.AddSource,
	})
	return cfg
}

func newRunner(cfg *config.Config) *robot.Runner {
	return robot.NewRunner(&robot.Opts{
		Version:         cfg.Robot.Version,
		CacheDir:        cfg.Robot.CacheDir,
		JavaPath:        cfg.Robot.JavaPath,
		DownloadTimeout: cfg.Robot.DownloadTimeoutParsed,
	})
}
