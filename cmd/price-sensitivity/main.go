package main

import (
	"flag"
	"fmt"

	"github.com/iwvelando/price-sensitivity/internal/config"
	"github.com/iwvelando/price-sensitivity/internal/engine"
	"github.com/iwvelando/price-sensitivity/internal/fixture"
	"github.com/iwvelando/price-sensitivity/internal/logging"
	"github.com/iwvelando/price-sensitivity/internal/simulate"
	"github.com/iwvelando/price-sensitivity/pkg/constants"
	"github.com/iwvelando/price-sensitivity/pkg/output"
	"github.com/iwvelando/price-sensitivity/pkg/validation"
	"go.uber.org/zap"
)

func main() {
	// Process command line flags first to get config location
	configLocation := flag.String("config", constants.DefaultConfigFile, "path to configuration file")
	outputFormatFlag := flag.String("output-format", "", "type of output override: pretty, csv")
	exportFlag := flag.String("export", "", "write pricing curves to this parquet file")
	logLevel := flag.String("log-level", "", "log level override (debug, info, warn, error)")
	flag.Parse()

	// Load the config file to get logging configuration
	conf, err := config.LoadConfiguration(*configLocation)
	if err != nil {
		fmt.Printf("{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to load configuration at %s\", \"error\": \"%v\"}\n", *configLocation, err)
		return
	}

	logger, err := logging.New(conf.Logging, *logLevel)
	if err != nil {
		fmt.Printf("{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to initialize logger\", \"error\": \"%v\"}\n", err)
		return
	}
	defer func() {
		_ = logger.Sync()
	}()

	// CLI overrides take precedence over config
	outputFormat := conf.Output.Format
	if *outputFormatFlag != "" {
		outputFormat = *outputFormatFlag
	}
	if outputFormat == "" {
		outputFormat = constants.OutputFormatPretty
	}
	if err := validation.ValidateOutputFormat(outputFormat); err != nil {
		logger.Fatal(err.Error(),
			zap.String("op", "main"),
		)
	}

	exportPath := conf.Output.Export
	if *exportFlag != "" {
		exportPath = *exportFlag
	}
	if err := validation.ValidateExportPath(exportPath); err != nil {
		logger.Fatal(err.Error(),
			zap.String("op", "main"),
		)
	}

	// Validate configuration and display any warnings
	for _, warning := range conf.ValidateConfiguration() {
		logger.Warn("Configuration warning: "+warning,
			zap.String("op", "main"),
		)
	}

	table, err := fixture.LoadOrDefault(conf.Fixtures.Path)
	if err != nil {
		logger.Fatal("failed to load fixtures",
			zap.String("op", "main"),
			zap.String("path", conf.Fixtures.Path),
			zap.Error(err),
		)
	}

	eng, err := engine.New(table)
	if err != nil {
		logger.Fatal("failed to build pricing engine",
			zap.String("op", "main"),
			zap.Error(err),
		)
	}

	results, err := simulate.GetSimulations(logger, eng, *conf)
	if err != nil {
		logger.Fatal("failed to run simulations",
			zap.String("op", "main"),
			zap.Error(err),
		)
	}

	switch outputFormat {
	case constants.OutputFormatPretty:
		output.PrettyFormat(results)
	case constants.OutputFormatCSV:
		output.CsvFormat(results)
	}

	if exportPath != "" {
		if err := output.ExportParquet(exportPath, results); err != nil {
			logger.Fatal("failed to export pricing curves",
				zap.String("op", "main"),
				zap.Error(err),
			)
		}
		logger.Info("exported pricing curves",
			zap.String("op", "main"),
			zap.String("path", exportPath),
			zap.Int("scenarios", len(results)),
		)
	}
}
