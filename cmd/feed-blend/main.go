package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"

	"github.com/iwvelando/feed-blend/internal/blend"
	"github.com/iwvelando/feed-blend/internal/config"
	"github.com/iwvelando/feed-blend/internal/logging"
	"github.com/iwvelando/feed-blend/pkg/client"
	"github.com/iwvelando/feed-blend/pkg/constants"
	"github.com/iwvelando/feed-blend/pkg/output"
	"github.com/iwvelando/feed-blend/pkg/validation"
	"go.uber.org/zap"
)

func main() {
	var feeds feedList

	// Process command line flags first to get config location
	configLocation := flag.String("config", constants.DefaultConfigFile, "path to configuration file")
	outputFormatFlag := flag.String("output-format", "", "type of output override: pretty, csv, json")
	logLevel := flag.String("log-level", "", "log level override (debug, info, warn, error)")
	flag.Var(&feeds, "feed", `feed as "Name=percent"; repeat for each feed to blend instead of reading blends from the config`)
	target := flag.Float64("target", 0, "desired nutrient percentage of the blend (with -feed)")
	finalWeight := flag.Float64("weight", 0, "final weight of the blend (with -feed)")
	unit := flag.String("unit", "", "weight unit override")
	remote := flag.String("remote", "", "solve on the feed-blend server at this URL instead of locally")
	flag.Parse()

	configSet := false
	flag.Visit(func(f *flag.Flag) {
		if f.Name == "config" {
			configSet = true
		}
	})

	// Load the config file to get logging configuration. Ad hoc blends from
	// -feed flags do not need one unless it was asked for.
	conf, err := config.LoadConfiguration(*configLocation)
	if err != nil {
		if len(feeds) == 0 || configSet || !configMissing(*configLocation) {
			fmt.Printf("{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to load configuration at %s\", \"error\": \"%v\"}\n", *configLocation, err)
			os.Exit(1)
		}
		conf = nil
	}
	if len(feeds) > 0 {
		conf = adHocConfiguration(conf, feeds, *target, *finalWeight, *unit)
	} else if *unit != "" {
		conf.Unit = *unit
	}

	// Initialize logging based on config and CLI override
	logger, err := logging.New(conf.Logging, *logLevel)
	if err != nil {
		fmt.Printf("{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to initialize logger\", \"error\": \"%v\"}\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = logger.Sync()
	}()

	// Determine output format (CLI override takes precedence over config)
	outputFormat := conf.Output.Format
	if *outputFormatFlag != "" {
		outputFormat = *outputFormatFlag
	}
	if outputFormat == "" {
		outputFormat = constants.OutputFormatPretty // Default to pretty format
	}

	err = validation.ValidateOutputFormat(outputFormat)
	if err != nil {
		logger.Fatal(err.Error(),
			zap.String("op", "main"),
		)
	}

	// Validate configuration and display any warnings
	warnings := conf.ValidateConfiguration()
	for _, warning := range warnings {
		logger.Warn("Configuration warning: "+warning,
			zap.String("op", "main"),
		)
	}

	// Solve every blend, locally or on the server.
	var results []blend.Blend
	if *remote != "" {
		results, err = getRemoteBlends(context.Background(), logger, client.New(*remote), *conf)
		if err != nil {
			logger.Fatal("failed to compute blends remotely",
				zap.String("op", "main"),
				zap.String("remote", *remote),
				zap.Error(err),
			)
		}
	} else {
		results = blend.GetBlends(logger, *conf)
	}

	// Handle output.
	if err := output.Write(os.Stdout, outputFormat, results); err != nil {
		logger.Fatal("failed to write output",
			zap.String("op", "main"),
			zap.Error(err),
		)
	}

	if failed := blend.Failed(results); failed > 0 {
		logger.Error(fmt.Sprintf("%d of %d blends could not be solved", failed, len(results)),
			zap.String("op", "main"),
		)
		_ = logger.Sync()
		os.Exit(1)
	}
}

func configMissing(path string) bool {
	_, err := os.Stat(path)
	return errors.Is(err, fs.ErrNotExist)
}
