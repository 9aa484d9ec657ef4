package main

import (
	"context"
	"expvar"
	"flag"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"gitcord/internal"
	"gitcord/pkg/relay"
	"gitcord/pkg/translate"
	"gitcord/pkg/webhook"
)

func main() {
	logger := internal.NewLogger("server")
	configPath := flag.String("config", "config.yaml", "Path to config file")
	flag.Parse()

	config, err := internal.LoadConfig(*configPath)
	if err != nil {
		logger.Fatalf("load config: %v", err)
	}
	if err := config.Validate(); err != nil {
		logger.Fatalf("config: %v", err)
	}

	locale, ok := translate.LookupLocale(config.Locale)
	if !ok {
		logger.Printf("unknown locale %q, using %s", config.Locale, locale.Name)
	}

	filters, err := internal.NewFilterEngine(config.Filters, internal.NewLogger("filters"))
	if err != nil {
		logger.Fatalf("compile filters: %v", err)
	}

	publisher, err := internal.NewPublisher(config.Discord)
	if err != nil {
		logger.Fatalf("publisher: %v", err)
	}
	defer publisher.Close()

	r := relay.New(translate.New(locale), filters, publisher, internal.NewLogger("relay"))
	ghHandler, err := webhook.NewGitHubHandler(
		config.GitHub.Secret,
		r,
		internal.NewLogger("github"),
		config.Server.MaxBodyBytes,
		config.DebugEvents,
	)
	if err != nil {
		logger.Fatalf("github handler: %v", err)
	}

	mux := http.NewServeMux()
	mux.Handle(config.GitHub.Path, ghHandler)
	logger.Printf("github webhook enabled on %s (locale=%s filters=%d driver=%s)",
		config.GitHub.Path, locale.Name, len(config.Filters), config.Discord.Driver)

	mux.HandleFunc(config.Server.HealthPath, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = io.WriteString(w, "OK")
	})
	if config.Server.MetricsEnabled {
		mux.Handle(config.Server.MetricsPath, expvar.Handler())
		logger.Printf("metrics enabled on %s", config.Server.MetricsPath)
	}

	addr := ":" + strconv.Itoa(config.Server.Port)
	server := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadTimeout:       time.Duration(config.Server.ReadTimeoutMS) * time.Millisecond,
		WriteTimeout:      time.Duration(config.Server.WriteTimeoutMS) * time.Millisecond,
		IdleTimeout:       time.Duration(config.Server.IdleTimeoutMS) * time.Millisecond,
		ReadHeaderTimeout: time.Duration(config.Server.ReadHeaderMS) * time.Millisecond,
	}

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		logger.Printf("listening on %s", addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("listen: %v", err)
		}
	}()

	<-shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Printf("shutdown: %v", err)
	}
}
