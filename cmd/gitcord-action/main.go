// Command gitcord-action posts the event of the current GitHub Actions run to
// Discord. The runner provides the event name and payload file, so no
// signature is checked.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"gitcord/internal"
	"gitcord/pkg/relay"
	"gitcord/pkg/translate"

	"github.com/spf13/pflag"
)

type options struct {
	configPath string
	locale     string
	dryRun     bool
}

func main() {
	logger := internal.NewLogger("action")

	var opts options
	flagSet := pflag.NewFlagSet("gitcord-action", pflag.ContinueOnError)
	flagSet.StringVarP(&opts.configPath, "config", "c", os.Getenv("GITCORD_CONFIG"), "optional path to config file")
	flagSet.StringVar(&opts.locale, "locale", "", "message locale (overrides config and GITCORD_LOCALE)")
	flagSet.BoolVar(&opts.dryRun, "dry-run", false, "log the Discord message instead of sending it")
	if err := flagSet.Parse(os.Args[1:]); err != nil {
		if err == pflag.ErrHelp {
			os.Exit(0)
		}
		logger.Printf("error: %v", err)
		os.Exit(2)
	}

	if err := run(context.Background(), opts, logger); err != nil {
		logger.Printf("error: %v", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, opts options, logger *log.Logger) error {
	config, err := internal.LoadConfig(opts.configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if opts.locale != "" {
		config.Locale = opts.locale
	}
	if opts.dryRun {
		config.Discord.Driver = "gochannel"
	}
	if err := config.ValidateDelivery(); err != nil {
		return err
	}

	eventName := os.Getenv("GITHUB_EVENT_NAME")
	eventPath := os.Getenv("GITHUB_EVENT_PATH")
	if eventPath == "" {
		return fmt.Errorf("GITHUB_EVENT_PATH is not set")
	}
	raw, err := os.ReadFile(eventPath)
	if err != nil {
		return fmt.Errorf("read event: %w", err)
	}
	event, err := internal.NewEvent("github", eventName, os.Getenv("GITHUB_RUN_ID"), raw)
	if err != nil {
		return err
	}
	logger.Printf("handling event name=%s action=%s", event.Name, event.Action)

	locale, ok := translate.LookupLocale(config.Locale)
	if !ok {
		logger.Printf("unknown locale %q, using %s", config.Locale, locale.Name)
	}
	filters, err := internal.NewFilterEngine(config.Filters, logger)
	if err != nil {
		return fmt.Errorf("compile filters: %w", err)
	}
	publisher, err := internal.NewPublisher(config.Discord)
	if err != nil {
		return err
	}
	defer publisher.Close()

	ctx, cancel := context.WithTimeout(ctx, time.Duration(config.Discord.TimeoutMS)*time.Millisecond+5*time.Second)
	defer cancel()

	outcome, err := relay.New(translate.New(locale), filters, publisher, logger).Handle(ctx, event)
	if err != nil {
		return err
	}
	logger.Printf("event %s", outcome)
	return nil
}
