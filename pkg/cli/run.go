package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"

	"github.com/devicelab-dev/go-webdriver/pkg/config"
	"github.com/devicelab-dev/go-webdriver/pkg/webdriver"
)

var openCommand = &cli.Command{
	Name:      "open",
	Usage:     "Navigate to a URL and print the resulting title and URL",
	ArgsUsage: "<url>",
	Action:    runOpen,
}

var textCommand = &cli.Command{
	Name:      "text",
	Usage:     "Navigate to a URL and print the text of the element matching a CSS selector",
	ArgsUsage: "<url> <selector>",
	Flags: []cli.Flag{
		&cli.DurationFlag{
			Name:  "wait",
			Usage: "Poll for the element up to this long before failing",
		},
	},
	Action: runText,
}

var sourceCommand = &cli.Command{
	Name:      "source",
	Usage:     "Navigate to a URL and print the page source",
	ArgsUsage: "<url>",
	Action:    runSource,
}

var screenshotCommand = &cli.Command{
	Name:      "screenshot",
	Usage:     "Navigate to a URL and save a screenshot",
	ArgsUsage: "<url>",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "Output file",
			Value:   "screenshot.png",
		},
	},
	Action: runScreenshot,
}

var rectCommand = &cli.Command{
	Name:      "rect",
	Usage:     "Set and print the browser window rectangle",
	ArgsUsage: "[url]",
	Flags: []cli.Flag{
		&cli.IntFlag{Name: "x", Value: -1, Usage: "Window x position"},
		&cli.IntFlag{Name: "y", Value: -1, Usage: "Window y position"},
		&cli.IntFlag{Name: "width", Aliases: []string{"w"}, Value: -1, Usage: "Window width"},
		&cli.IntFlag{Name: "height", Aliases: []string{"H"}, Value: -1, Usage: "Window height"},
	},
	Action: runRect,
}

var statusCommand = &cli.Command{
	Name:   "status",
	Usage:  "Print the WebDriver server's status",
	Action: runStatus,
}

func runOpen(c *cli.Context) error {
	if c.NArg() < 1 {
		return fmt.Errorf("open requires a URL argument")
	}
	return withSession(c, func(ctx context.Context, client *webdriver.Client) error {
		if err := client.Goto(ctx, c.Args().Get(0)); err != nil {
			return err
		}
		title, err := client.Title(ctx)
		if err != nil {
			return err
		}
		current, err := client.CurrentURL(ctx)
		if err != nil {
			return err
		}
		fmt.Printf("%s\n%s\n", title, current)
		return nil
	})
}

func runText(c *cli.Context) error {
	if c.NArg() < 2 {
		return fmt.Errorf("text requires URL and selector arguments")
	}
	return withSession(c, func(ctx context.Context, client *webdriver.Client) error {
		if err := client.Goto(ctx, c.Args().Get(0)); err != nil {
			return err
		}
		locator := webdriver.ByCSS(c.Args().Get(1))

		var el *webdriver.Element
		var err error
		if wait := c.Duration("wait"); wait > 0 {
			waitCtx, cancel := context.WithTimeout(ctx, wait)
			defer cancel()
			el, err = client.WaitForFind(waitCtx, locator)
		} else {
			el, err = client.Find(ctx, locator)
		}
		if err != nil {
			return err
		}

		text, err := el.Text(ctx)
		if err != nil {
			return err
		}
		fmt.Println(text)
		return nil
	})
}

func runSource(c *cli.Context) error {
	if c.NArg() < 1 {
		return fmt.Errorf("source requires a URL argument")
	}
	return withSession(c, func(ctx context.Context, client *webdriver.Client) error {
		if err := client.Goto(ctx, c.Args().Get(0)); err != nil {
			return err
		}
		source, err := client.Source(ctx)
		if err != nil {
			return err
		}
		fmt.Println(source)
		return nil
	})
}

func runScreenshot(c *cli.Context) error {
	if c.NArg() < 1 {
		return fmt.Errorf("screenshot requires a URL argument")
	}
	return withSession(c, func(ctx context.Context, client *webdriver.Client) error {
		if err := client.Goto(ctx, c.Args().Get(0)); err != nil {
			return err
		}
		data, err := client.Screenshot(ctx)
		if err != nil {
			return err
		}
		out := c.String("output")
		if err := os.WriteFile(out, data, 0644); err != nil {
			return err
		}
		fmt.Printf("wrote %d bytes to %s\n", len(data), out)
		return nil
	})
}

func runRect(c *cli.Context) error {
	return withSession(c, func(ctx context.Context, client *webdriver.Client) error {
		if c.NArg() > 0 {
			if err := client.Goto(ctx, c.Args().Get(0)); err != nil {
				return err
			}
		}

		x, y, w, h := c.Int("x"), c.Int("y"), c.Int("width"), c.Int("height")
		if x >= 0 || y >= 0 || w >= 0 || h >= 0 {
			current, err := client.GetWindowRect(ctx)
			if err != nil {
				return err
			}
			target := mergeRect(current, x, y, w, h)
			if err := client.SetWindowRect(ctx, target); err != nil {
				return err
			}
		}

		rect, err := client.GetWindowRect(ctx)
		if err != nil {
			return err
		}
		fmt.Printf("x=%d y=%d width=%d height=%d\n", rect.X, rect.Y, rect.Width, rect.Height)
		return nil
	})
}

func runStatus(c *cli.Context) error {
	cfg, err := resolveConfig(c)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	value, err := webdriver.Status(ctx, cfg.Endpoint)
	if err != nil {
		return err
	}

	var pretty map[string]interface{}
	if err := json.Unmarshal(value, &pretty); err != nil {
		fmt.Println(string(value))
		return nil
	}
	out, _ := json.MarshalIndent(pretty, "", "  ")
	fmt.Println(string(out))
	return nil
}

// withSession opens a session from the CLI configuration, runs fn, and
// closes the session afterwards.
func withSession(c *cli.Context, fn func(context.Context, *webdriver.Client) error) error {
	cfg, err := resolveConfig(c)
	if err != nil {
		return err
	}

	ctx := context.Background()
	client, err := webdriver.New(ctx, cfg.Endpoint, cfg.BuildCapabilities(), clientOptions(cfg)...)
	if err != nil {
		return err
	}

	runErr := fn(ctx, client)
	if closeErr := client.Close(ctx); runErr == nil {
		runErr = closeErr
	}
	return runErr
}

// resolveConfig layers CLI flags over the YAML config file: flags win,
// then the file, then browser-specific defaults.
func resolveConfig(c *cli.Context) (*config.Config, error) {
	if envFile := c.String("env-file"); envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			return nil, fmt.Errorf("loading env file: %w", err)
		}
	}

	var cfg *config.Config
	var err error
	if path := c.String("config"); path != "" {
		cfg, err = config.Load(path)
	} else {
		cfg, err = config.LoadFromDir(".")
	}
	if err != nil {
		return nil, err
	}

	if c.IsSet("browser") || cfg.Browser == "" {
		cfg.Browser = c.String("browser")
	}
	if c.IsSet("endpoint") {
		cfg.Endpoint = c.String("endpoint")
	}
	if cfg.Endpoint == "" {
		cfg.Endpoint = config.DefaultEndpoint(cfg.Browser)
	}
	if c.Bool("headless") {
		cfg.Headless = true
	}

	if c.Bool("verbose") {
		logrus.SetLevel(logrus.DebugLevel)
	}

	return cfg, nil
}

func clientOptions(cfg *config.Config) []webdriver.Option {
	var opts []webdriver.Option
	if cfg.CommandTimeoutMs > 0 {
		opts = append(opts, webdriver.WithCommandTimeout(time.Duration(cfg.CommandTimeoutMs)*time.Millisecond))
	}
	return opts
}

// mergeRect overlays the flag values that were provided onto the current
// rectangle; -1 means "keep".
func mergeRect(current webdriver.Rect, x, y, w, h int) webdriver.Rect {
	target := current
	if x >= 0 {
		target.X = x
	}
	if y >= 0 {
		target.Y = y
	}
	if w >= 0 {
		target.Width = w
	}
	if h >= 0 {
		target.Height = h
	}
	return target
}
