package cmd

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/sqlgate/sqlgate/core/config"
	"github.com/sqlgate/sqlgate/core/infrastructure/logging"
	"github.com/sqlgate/sqlgate/core/runtime"
)

const defaultConfigFileName = "sqlgate.yaml"

// serveCmd runs the gateway against a profile catalog file.
var serveCmd = &cobra.Command{
	Use:           "serve [config-file-or-dir]",
	Short:         "Serve the SQL query gateway",
	RunE:          serveGateway,
	Args:          cobra.MaximumNArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVarP(&configFile, "file", "f", "", "Path to the gateway config file (default: ./sqlgate.yaml)")
	serveCmd.Flags().StringVarP(&port, "port", "p", "", "Server port (overrides config and PORT env var)")
	serveCmd.Flags().IntVar(&logLevel, "log-level", 0, "Log level: 1=ERROR, 2=WARN, 3=INFO, 4=DEBUG")
	serveCmd.Flags().BoolVar(&verbose, "verbose", false, "Enable verbose logging (sets log level to DEBUG)")
	serveCmd.Flags().BoolVar(&noWatch, "no-watch", false, "Disable config file watching / catalog reload")
}

func serveGateway(cmd *cobra.Command, args []string) error {
	configureLogging()

	configPath, err := resolveConfigPath(args)
	if err != nil {
		return err
	}

	LoadEnvFiles(filepath.Dir(configPath))

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	if port != "" {
		cfg.Server.Port = port
	} else if envPort := os.Getenv("PORT"); envPort != "" {
		cfg.Server.Port = envPort
	}

	watchPath := configPath
	if noWatch {
		watchPath = ""
	}

	log := logging.New("serve")
	log.Infof("Starting gateway with %d profile(s)", len(cfg.Profiles))

	return runtime.NewGateway(cfg, watchPath).Start()
}

func configureLogging() {
	if verbose {
		logging.SetLogLevel(logging.LogLevelDebug)
	} else if logLevel > 0 {
		logging.SetLogLevel(logLevel)
	} else {
		logging.SetLogLevel(logging.LogLevelInfo)
	}
}

func resolveConfigPath(args []string) (string, error) {
	log := logging.New("serve")

	var configPath string
	if len(args) > 0 {
		if configFile != "" {
			log.Error("cannot combine path argument with --file")
			return "", os.ErrInvalid
		}
		configPath = args[0]
	} else if configFile != "" {
		configPath = configFile
	} else {
		configPath = defaultConfigFileName
	}

	if info, err := os.Stat(configPath); err == nil && info.IsDir() {
		configPath = filepath.Join(configPath, defaultConfigFileName)
	}

	return filepath.Abs(configPath)
}
