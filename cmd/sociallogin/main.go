package main

import (
	"fmt"
	"os"

	"github.com/PizzaHomicide/sociallogin/internal/config"
	"github.com/PizzaHomicide/sociallogin/internal/log"
	"github.com/PizzaHomicide/sociallogin/internal/ui/tui"
	"github.com/PizzaHomicide/sociallogin/internal/version"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		// It is unrecoverable if we cannot produce an application config
		_, _ = fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialise logger
	logger, err := log.New(log.Config{
		Level:    cfg.Logging.Level,
		FilePath: cfg.Logging.FilePath,
		Format:   cfg.Logging.Format,
	})
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "failed to initialise logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Close()

	// Set the default global logger
	log.SetDefaultLogger(logger)

	log.Info("Starting up sociallogin", "version", version.GetVersion(), "build_time", version.GetBuildTime())

	command := ""
	if len(os.Args) > 1 {
		command = os.Args[1]
	}

	switch command {
	case "":
		err = tui.Run(cfg)
	case "exchange":
		err = runExchange(cfg, os.Args[2:], os.Stdout)
	case "version":
		fmt.Println(version.GetVersionInfo())
	case "help", "-h", "--help":
		usage()
	default:
		usage()
		logger.Close()
		os.Exit(2)
	}

	if err != nil {
		log.Error("Command failed", "command", command, "error", err)
		_, _ = fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		logger.Close()
		os.Exit(1)
	}

	log.Info("sociallogin shutting down.  Goodbye!")
}

func usage() {
	fmt.Println(`sociallogin exchanges social provider credentials for API tokens

Usage:
  sociallogin                 Start the interactive client
  sociallogin exchange        Exchange a credential without the UI
      -provider NAME          google, facebook, github or linkedin
      -code CODE              Provider authorization code
      -access-token TOKEN     Provider access token
      -browser                Obtain an authorization code through the browser
      -save=false             Do not store the tokens in the config file
  sociallogin version         Print version information`)
}
