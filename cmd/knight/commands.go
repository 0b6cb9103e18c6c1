package main

import (
	"fmt"
	"io"
	"runtime"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/cory-johannsen/knight/internal/config"
	"github.com/cory-johannsen/knight/internal/game/creature"
	"github.com/cory-johannsen/knight/internal/game/derive"
	"github.com/cory-johannsen/knight/internal/game/dice"
)

var (
	// Version is set via -ldflags at build time.
	Version = "dev"
	// Commit is set via -ldflags at build time.
	Commit = "none"
)

// cli carries the state shared by the root command and its subcommands.
type cli struct {
	out     io.Writer
	src     dice.Source
	app     *App
	cleanup func()
}

func newCLI(out io.Writer, src dice.Source) *cli {
	return &cli{out: out, src: src}
}

// close releases what setup acquired. Cobra skips post-run hooks when a
// command fails, so callers run close after Execute regardless of its result.
func (c *cli) close() {
	if c.cleanup != nil {
		c.cleanup()
		c.cleanup = nil
	}
}

func (c *cli) rootCmd() *cobra.Command {
	out := c.out
	root := &cobra.Command{
		Use:           "knight",
		Short:         "Derive Knight creature statistics and roll formulas",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Name() == "version" {
				return nil
			}
			return c.setup(cmd)
		},
	}
	root.SetOut(out)
	root.PersistentFlags().String("config", "", "path to configuration file; empty uses defaults and KNIGHT_* environment")
	root.PersistentFlags().String("creatures", "", "override content.creatures_dir")
	root.PersistentFlags().String("scripts", "", "override content.scripts_dir; empty disables scripting")

	root.AddCommand(
		c.deriveCmd(),
		c.rollDataCmd(),
		c.rollCmd(),
		c.initiativeCmd(),
		versionCmd(out),
	)
	return root
}

func (c *cli) setup(cmd *cobra.Command) error {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if cmd.Flags().Changed("creatures") {
		cfg.Content.CreaturesDir, _ = cmd.Flags().GetString("creatures")
	}
	if cmd.Flags().Changed("scripts") {
		cfg.Content.ScriptsDir, _ = cmd.Flags().GetString("scripts")
	}
	app, cleanup, err := initializeApp(cfg, c.src)
	if err != nil {
		return err
	}
	c.app, c.cleanup = app, cleanup
	return nil
}

// prepared loads every record in dir (or the configured creatures directory)
// and prepares them concurrently.
func (c *cli) prepared(cmd *cobra.Command, dir string) ([]creature.Record, error) {
	if dir == "" {
		dir = c.app.Config.Content.CreaturesDir
	}
	records, err := creature.LoadRecords(dir)
	if err != nil {
		return nil, err
	}
	out, err := c.app.Preparer.PrepareAll(cmd.Context(), records, c.app.Config.Derive.Workers)
	if err != nil {
		return nil, err
	}
	c.app.Logger.Info("records prepared",
		zap.String("dir", dir),
		zap.Int("count", len(out)),
	)
	return out, nil
}

func (c *cli) preparedByID(cmd *cobra.Command, id string) (creature.Record, error) {
	records, err := c.prepared(cmd, "")
	if err != nil {
		return nil, err
	}
	for _, rec := range records {
		if rec.ID() == id {
			return rec, nil
		}
	}
	return nil, fmt.Errorf("no record with id %q in %s", id, c.app.Config.Content.CreaturesDir)
}

func optionalArg(args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	return ""
}

func (c *cli) deriveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "derive [dir]",
		Short: "Prepare every record and print it with derived fields",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			records, err := c.prepared(cmd, optionalArg(args))
			if err != nil {
				return err
			}
			for i, rec := range records {
				data, err := creature.MarshalRecord(rec)
				if err != nil {
					return err
				}
				if i > 0 {
					fmt.Fprintln(c.out, "---")
				}
				if _, err := c.out.Write(data); err != nil {
					return err
				}
			}
			return nil
		},
	}
}

func (c *cli) rollDataCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rolldata <id>",
		Short: "Print the roll data a formula sees for one record",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rec, err := c.preparedByID(cmd, args[0])
			if err != nil {
				return err
			}
			rd, err := derive.GetRollData(rec)
			if err != nil {
				return err
			}
			data, err := yaml.Marshal(rd.Map())
			if err != nil {
				return fmt.Errorf("marshalling roll data: %w", err)
			}
			_, err = c.out.Write(data)
			return err
		},
	}
}

func (c *cli) rollCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "roll <id> <formula>",
		Short: "Evaluate a roll formula against one record",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			rec, err := c.preparedByID(cmd, args[0])
			if err != nil {
				return err
			}
			rd, err := derive.GetRollData(rec)
			if err != nil {
				return err
			}
			res, err := c.app.Evaluator.Evaluate(cmd.Context(), args[1], rd)
			if err != nil {
				return err
			}
			fmt.Fprintln(c.out, res.String())
			return nil
		},
	}
}

func (c *cli) initiativeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "initiative [dir]",
		Short: "Roll initiative for every record, highest first",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			records, err := c.prepared(cmd, optionalArg(args))
			if err != nil {
				return err
			}
			order, err := c.app.Evaluator.InitiativeOrder(cmd.Context(), records)
			if err != nil {
				return err
			}
			for i, s := range order {
				fmt.Fprintf(c.out, "%d. %s (%s): %s\n", i+1, s.Record.Name(), s.Record.ID(), s.Result)
			}
			return nil
		},
	}
}

func versionCmd(out io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the build version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(out, "knight %s (commit %s) %s/%s\n", Version, Commit, runtime.GOOS, runtime.GOARCH)
		},
	}
}
