package main

import (
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"

	"calmaker/internal/config"
	"calmaker/internal/dateutil"
	"calmaker/internal/ics"
	appLog "calmaker/internal/log"
	"calmaker/internal/model"
	"calmaker/internal/recur"
	"calmaker/internal/templates"
)

func main() {
	// Load .env first, but don't error if it doesn't exist.
	_ = godotenv.Load()

	app := &cli.App{
		Name:  "calmaker",
		Usage: "Expand recurring event templates and export them as an iCalendar file.",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Usage:   "Path to a YAML config file (created with defaults if absent)",
				EnvVars: []string{"CALMAKER_CONFIG"},
			},
			&cli.BoolFlag{
				Name:  "verbose",
				Usage: "Enable debug logging",
			},
		},
		Commands: []*cli.Command{
			exportCommand(),
			expandCommand(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		appLog.Error("command failed", err)
		os.Exit(1)
	}
}

// loadConfig resolves the effective configuration: defaults, optionally
// replaced by a config file named via --config or CALMAKER_CONFIG.
func loadConfig(c *cli.Context) (*config.Config, error) {
	if c.Bool("verbose") {
		appLog.SetLevel(appLog.LevelDebug)
	}
	path := c.String("config")
	if path == "" {
		return config.DefaultConfig(), nil
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("load config %s: %w", path, err)
	}
	return cfg, nil
}

// loadTemplates reads the template store and applies the configured
// default timezone.
func loadTemplates(c *cli.Context, cfg *config.Config) ([]model.EventTemplate, error) {
	path := c.String("templates")
	if path == "" {
		path = cfg.Templates
	}
	events, err := templates.Load(path)
	if err != nil {
		return nil, fmt.Errorf("load templates: %w", err)
	}
	templates.ApplyTimezone(events, cfg.Timezone)
	return events, nil
}

func exportCommand() *cli.Command {
	return &cli.Command{
		Name:  "export",
		Usage: "Encode all templates into an .ics file.",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "templates",
				Usage:   "Path to the YAML template store",
				EnvVars: []string{"CALMAKER_TEMPLATES"},
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Destination file, or - for stdout",
				EnvVars: []string{"CALMAKER_OUTPUT"},
			},
		},
		Action: func(c *cli.Context) error {
			cfg, err := loadConfig(c)
			if err != nil {
				return err
			}
			events, err := loadTemplates(c, cfg)
			if err != nil {
				return err
			}

			doc := ics.NewEncoder().Encode(events)

			out := c.String("output")
			if out == "" {
				out = cfg.Output
			}
			if out == "-" {
				fmt.Println(doc)
				return nil
			}
			if err := os.WriteFile(out, []byte(doc), 0o644); err != nil {
				return fmt.Errorf("write %s: %w", out, err)
			}
			appLog.Info("calendar exported", "path", out, "events", len(events), "bytes", len(doc))
			return nil
		},
	}
}

func expandCommand() *cli.Command {
	return &cli.Command{
		Name:  "expand",
		Usage: "List concrete occurrences in a date range.",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "templates",
				Usage:   "Path to the YAML template store",
				EnvVars: []string{"CALMAKER_TEMPLATES"},
			},
			&cli.StringFlag{
				Name:  "from",
				Usage: "Range start (YYYY-MM-DD), inclusive; defaults to today",
			},
			&cli.StringFlag{
				Name:  "to",
				Usage: "Range end (YYYY-MM-DD), inclusive; defaults to from + horizon_days",
			},
		},
		Action: func(c *cli.Context) error {
			cfg, err := loadConfig(c)
			if err != nil {
				return err
			}
			events, err := loadTemplates(c, cfg)
			if err != nil {
				return err
			}

			from := c.String("from")
			if from == "" {
				from = dateutil.FormatDate(time.Now())
			}
			to := c.String("to")
			if to == "" {
				start, err := dateutil.ParseDate(from)
				if err != nil {
					return fmt.Errorf("bad --from date %q: %w", from, err)
				}
				to = dateutil.FormatDate(dateutil.AddDays(start, cfg.HorizonDays))
			}

			res, err := recur.Expand(events, from, to)
			if err != nil {
				return err
			}

			occ := res.Occurrences
			sort.Slice(occ, func(i, j int) bool {
				if occ[i].Date != occ[j].Date {
					return occ[i].Date < occ[j].Date
				}
				return occ[i].Title < occ[j].Title
			})

			for _, o := range occ {
				when := "all-day"
				if !o.AllDay {
					when = o.StartTime
					if o.EndTime != "" {
						when += "-" + o.EndTime
					}
				}
				fmt.Printf("%s\t%s\t%s\t%s\n", o.Date, when, o.Title, o.Location)
			}

			appLog.Debug("expansion finished",
				"occurrences", len(occ),
				"skipped", len(res.Skipped),
				"truncated", len(res.Truncated),
			)
			return nil
		},
	}
}
