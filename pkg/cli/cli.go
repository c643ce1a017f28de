// Package cli provides the command-line interface for webdriver-runner.
package cli

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"
)

// Version is set at build time.
var Version = "dev"

// GlobalFlags are available to all commands.
var GlobalFlags = []cli.Flag{
	&cli.StringFlag{
		Name:    "endpoint",
		Aliases: []string{"e"},
		Usage:   "WebDriver server URL (e.g. http://localhost:9515)",
		EnvVars: []string{"WEBDRIVER_URL"},
	},
	&cli.StringFlag{
		Name:    "browser",
		Aliases: []string{"b"},
		Usage:   "Browser to drive (chrome, firefox)",
		Value:   "chrome",
		EnvVars: []string{"WEBDRIVER_BROWSER"},
	},
	&cli.BoolFlag{
		Name:    "headless",
		Usage:   "Run the browser without a visible window",
		EnvVars: []string{"WEBDRIVER_HEADLESS"},
	},
	&cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Usage:   "Path to webdriver.yaml",
		EnvVars: []string{"WEBDRIVER_CONFIG"},
	},
	&cli.StringFlag{
		Name:  "env-file",
		Usage: "Load environment variables from this file before anything else",
	},
	&cli.BoolFlag{
		Name:    "verbose",
		Usage:   "Enable verbose command logging",
		EnvVars: []string{"WEBDRIVER_VERBOSE"},
	},
}

func newApp() *cli.App {
	return &cli.App{
		Name:    "webdriver-runner",
		Usage:   "Drive a browser through a WebDriver server",
		Version: Version,
		Description: `webdriver-runner issues WebDriver commands against a running
chromedriver or geckodriver instance.

Examples:
  webdriver-runner open https://en.wikipedia.org/wiki/Foobar
  webdriver-runner text https://www.wikipedia.org/ "#searchInput"
  webdriver-runner --headless screenshot https://example.com -o shot.png`,
		Flags: GlobalFlags,
		Commands: []*cli.Command{
			openCommand,
			textCommand,
			sourceCommand,
			screenshotCommand,
			rectCommand,
			statusCommand,
		},
	}
}

// Execute runs the CLI.
func Execute() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
