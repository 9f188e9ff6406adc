package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"os"
	"time"

	"WorldCup/api/bracket"
	"WorldCup/api/client"
	"WorldCup/api/fortune"
	"WorldCup/api/play"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

func main() {
	if err := newApp(os.Stdin, os.Stdout).Run(os.Args); err != nil {
		var exit cli.ExitCoder
		if errors.As(err, &exit) {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(exit.ExitCode())
		}
		logrus.WithError(err).Fatal("worldcup failed")
	}
}

func newApp(in io.Reader, out io.Writer) *cli.App {
	logger := logrus.New()
	logger.SetOutput(os.Stderr)

	return &cli.App{
		Name:   "worldcup",
		Usage:  "play world cup brackets and check today's luck",
		Writer: out,
		// Exit codes are handled in main so the app stays testable.
		ExitErrHandler: func(*cli.Context, error) {},
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "api",
				Usage:   "game API base URL",
				Value:   client.DefaultBaseURL,
				EnvVars: []string{"WORLDCUP_API"},
			},
			&cli.StringFlag{
				Name:  "log-level",
				Value: "warn",
			},
		},
		Before: func(c *cli.Context) error {
			lvl, err := logrus.ParseLevel(c.String("log-level"))
			if err != nil {
				return err
			}
			logger.SetLevel(lvl)
			return nil
		},
		Commands: []*cli.Command{
			gamesCommand(logger),
			playCommand(in, logger),
			luckCommand(),
		},
	}
}

func gamesCommand(logger *logrus.Logger) *cli.Command {
	return &cli.Command{
		Name:  "games",
		Usage: "list available games",
		Action: func(c *cli.Context) error {
			api := client.New(c.String("api"), client.WithLogger(logger))
			list, err := api.ListGames(c.Context)
			if err != nil {
				return err
			}
			for _, g := range list.Games {
				fmt.Fprintf(c.App.Writer, "%4d  %s (%d)\n", g.ID, g.Title, g.ContestantCount)
			}
			return nil
		},
	}
}

func playCommand(in io.Reader, logger *logrus.Logger) *cli.Command {
	return &cli.Command{
		Name:      "play",
		Usage:     "play a game's bracket interactively",
		ArgsUsage: "<game-id>",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "shuffle", Usage: "shuffle contestants before round 1"},
			&cli.Int64Flag{Name: "seed", Usage: "shuffle seed (default: current time)"},
			&cli.StringFlag{Name: "session", Usage: "session id results are stored under"},
			&cli.BoolFlag{Name: "no-save", Usage: "do not store the result"},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() != 1 {
				return cli.Exit("usage: worldcup play <game-id>", 2)
			}
			api := client.New(c.String("api"), client.WithLogger(logger))
			game, err := api.GetGame(c.Context, c.Args().First())
			if err != nil {
				return err
			}

			runner := &play.Runner{
				In:      in,
				Out:     c.App.Writer,
				Session: c.String("session"),
				Log:     logger,
			}
			if !c.Bool("no-save") {
				runner.Sink = api
			}

			var opts []bracket.Option
			if c.Bool("shuffle") {
				seed := c.Int64("seed")
				if !c.IsSet("seed") {
					seed = time.Now().UnixNano()
				}
				opts = append(opts, bracket.WithShuffle(rand.New(rand.NewSource(seed))))
			}

			_, err = runner.Play(c.Context, game.ID, game.Title, game.Entries(), opts...)
			return err
		},
	}
}

func luckCommand() *cli.Command {
	return &cli.Command{
		Name:  "luck",
		Usage: "score today's luck for a birth date",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "birth", Usage: "birth date (YYYY-MM-DD)", Required: true},
			&cli.StringFlag{Name: "gender", Usage: "male or female", Required: true},
			&cli.StringFlag{Name: "calendar", Usage: "SOLAR or LUNAR", Value: string(fortune.Solar)},
			&cli.StringFlag{Name: "today", Usage: "score against this day instead of today (YYYY-MM-DD)"},
			&cli.StringFlag{Name: "idioms", Usage: "YAML dataset of messages and idioms", EnvVars: []string{"IDIOMS_FILE"}},
			&cli.BoolFlag{Name: "json", Usage: "print the raw result"},
		},
		Action: func(c *cli.Context) error {
			gender, err := fortune.ParseGender(c.String("gender"))
			if err != nil {
				return cli.Exit(err.Error(), 2)
			}
			calendar, err := fortune.ParseCalendarType(c.String("calendar"))
			if err != nil {
				return cli.Exit(err.Error(), 2)
			}

			var opts []fortune.Option
			if path := c.String("idioms"); path != "" {
				ds, err := fortune.LoadDataset(path)
				if err != nil {
					return err
				}
				opts = append(opts, fortune.WithDataset(ds))
			}
			if today := c.String("today"); today != "" {
				day, err := time.ParseInLocation("2006-01-02", today, fortune.DefaultLocation)
				if err != nil {
					return cli.Exit("invalid --today, expected YYYY-MM-DD", 2)
				}
				opts = append(opts, fortune.WithToday(day))
			}

			result, err := fortune.NewCalculator(opts...).CalculateLuckFromBirthDate(c.String("birth"), gender, calendar)
			if err != nil {
				return cli.Exit(err.Error(), 2)
			}

			if c.Bool("json") {
				enc := json.NewEncoder(c.App.Writer)
				enc.SetIndent("", "  ")
				return enc.Encode(result)
			}
			printLuck(c.App.Writer, result)
			return nil
		},
	}
}

func printLuck(w io.Writer, r fortune.LuckResult) {
	fmt.Fprintf(w, "%s %s (%s)\n", r.Meta.Date, r.Meta.Weekday, r.Meta.Element)
	fmt.Fprintf(w, "일간 %s(%s)  점수 %d  등급 %s\n", r.Meta.Stem, r.Meta.StemElement, r.Score, r.Grade)
	fmt.Fprintln(w, r.Message)
	if r.Idiom != nil {
		fmt.Fprintf(w, "오늘의 사자성어: %s\n", *r.Idiom)
	}
}
