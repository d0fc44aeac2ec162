// Command mealpal reserves MealPal meals from the terminal.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"

	"github.com/edmundmok/mealpy"
	"github.com/edmundmok/mealpy/cache"
	"github.com/edmundmok/mealpy/config"
	"github.com/edmundmok/mealpy/core"
	"github.com/edmundmok/mealpy/runner"
	"github.com/edmundmok/mealpy/session"
)

var log = logrus.New()

func main() {
	// A .env next to the binary may carry MEALPAL_EMAIL / MEALPAL_PASSWORD.
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	app := &cli.App{
		Name:  "mealpal",
		Usage: "reserve MealPal meals from the command line",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "verbose", Aliases: []string{"v"}, Usage: "debug logging"},
		},
		Before: func(c *cli.Context) error {
			if c.Bool("verbose") {
				log.SetLevel(logrus.DebugLevel)
			}
			return nil
		},
		Commands: []*cli.Command{
			reserveCommand(),
			listCommand(),
		},
	}

	if err := app.RunContext(ctx, os.Args); err != nil {
		log.Fatal(err)
	}
}

func reserveCommand() *cli.Command {
	return &cli.Command{
		Name:      "reserve",
		Usage:     "reserve a meal",
		ArgsUsage: "RESTAURANT TIME CITY",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "meal", Usage: "treat the first argument as a meal name instead of a restaurant"},
			&cli.StringFlag{Name: "at", Usage: "wait until a wall-clock time (HH:MM:SS) before reserving"},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() != 3 {
				return cli.Exit("usage: mealpal reserve RESTAURANT TIME CITY", 2)
			}
			name, pickupTime, city := c.Args().Get(0), c.Args().Get(1), c.Args().Get(2)

			if at := c.String("at"); at != "" {
				if err := waitUntil(c.Context, at); err != nil {
					return err
				}
			}

			client, err := establishedClient(c.Context)
			if err != nil {
				return err
			}

			req := runner.Request{PickupTime: pickupTime, City: city}
			if c.Bool("meal") {
				req.Meal = name
			} else {
				req.Restaurant = name
			}

			outcome, err := runner.New(client).Run(c.Context, req)
			if err != nil {
				return err
			}
			switch outcome.Kind {
			case runner.Success:
				log.WithFields(logrus.Fields{
					"restaurant": outcome.Entry.Restaurant.Name,
					"meal":       outcome.Entry.Meal.Name,
					"attempts":   outcome.Attempts,
				}).Info("reservation success")
				return nil
			case runner.Failed:
				return cli.Exit(fmt.Sprintf("reservation failed: %v", outcome.Err), 1)
			default:
				return cli.Exit(fmt.Sprintf("reservation attempts exhausted: %v", outcome.Err), 1)
			}
		},
	}
}

func listCommand() *cli.Command {
	return &cli.Command{
		Name:  "list",
		Usage: "list cities, restaurants, or meals",
		Subcommands: []*cli.Command{
			{
				Name:  "cities",
				Usage: "list available cities",
				Action: func(c *cli.Context) error {
					cities, err := listCities(c.Context)
					if err != nil {
						return err
					}
					for _, city := range cities {
						fmt.Println(city.Name)
					}
					return nil
				},
			},
			{
				Name:      "restaurants",
				Usage:     "list today's restaurants in a city",
				ArgsUsage: "CITY",
				Action: func(c *cli.Context) error {
					return listSchedules(c, func(e core.ScheduleEntry) string { return e.Restaurant.Name })
				},
			},
			{
				Name:      "meals",
				Usage:     "list today's meal choices in a city",
				ArgsUsage: "CITY",
				Action: func(c *cli.Context) error {
					return listSchedules(c, func(e core.ScheduleEntry) string { return e.Meal.Name })
				},
			},
		},
	}
}

func listSchedules(c *cli.Context, field func(core.ScheduleEntry) string) error {
	if c.NArg() != 1 {
		return cli.Exit("a CITY argument is required", 2)
	}
	client, err := establishedClient(c.Context)
	if err != nil {
		return err
	}
	entries, err := client.SchedulesByCityName(c.Context, c.Args().Get(0))
	if err != nil {
		return err
	}
	for _, e := range entries {
		fmt.Println(field(e))
	}
	return nil
}

// listCities serves the city list from the hour-fresh cache when it can.
func listCities(ctx context.Context) ([]core.City, error) {
	cacheDir, err := config.CacheDir()
	if err != nil {
		return nil, err
	}
	db, err := cache.Open(filepath.Join(cacheDir, "cities.db"))
	if err != nil {
		return nil, err
	}
	defer db.Close()

	if cities, ok, err := db.Cities(); err != nil {
		return nil, err
	} else if ok {
		log.Debug("serving cities from cache")
		return cities, nil
	}

	cities, err := mealpy.New().ListCities(ctx)
	if err != nil {
		return nil, err
	}
	if err := db.Put(cities); err != nil {
		log.WithError(err).Warn("could not update city cache")
	}
	return cities, nil
}

// establishedClient returns a client with a live session, logging in
// with stored or prompted credentials when the cached cookies are dead.
func establishedClient(ctx context.Context) (*mealpy.Client, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	cacheDir, err := config.CacheDir()
	if err != nil {
		return nil, err
	}

	store, err := session.NewStore(filepath.Join(cacheDir, "cookies.json"), mealpy.DefaultBaseURL)
	if err != nil {
		return nil, err
	}
	jar, restored, err := store.Load()
	if err != nil {
		return nil, err
	}

	client := mealpy.New(mealpy.WithCookieJar(jar))
	err = session.Establish(ctx, client, store, credentialSource(cfg),
		session.WithRestoredSession(restored))
	if err != nil {
		return nil, err
	}
	return client, nil
}

func loadConfig() (config.Config, error) {
	path, err := config.DefaultPath()
	if err != nil {
		return config.Config{}, err
	}
	return config.Load(path)
}

// waitUntil blocks until the next occurrence of a wall-clock time. This
// stands in for an external cron trigger when the tool is left running.
func waitUntil(ctx context.Context, at string) error {
	target, err := time.Parse("15:04:05", at)
	if err != nil {
		return fmt.Errorf("parse --at %q: %w", at, err)
	}
	now := time.Now()
	next := time.Date(now.Year(), now.Month(), now.Day(),
		target.Hour(), target.Minute(), target.Second(), 0, now.Location())
	if !next.After(now) {
		next = next.Add(24 * time.Hour)
	}
	log.WithField("until", next.Format(time.RFC3339)).Info("waiting")

	timer := time.NewTimer(time.Until(next))
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
