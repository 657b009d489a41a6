package procurementflow

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/temirov/procurement-flow/internal/config"
)

var rootCmd = &cobra.Command{
	Use:           rootCommandUse,
	Short:         rootCommandShort,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.AddCommand(newRunCommand())
	rootCmd.AddCommand(newSeedCommand())
	rootCmd.AddCommand(newCollectionsCommand())
}

func Execute() error {
	return rootCmd.Execute()
}

func newLogger(rootConfiguration config.Root) (*zap.Logger, error) {
	zapConfiguration := zap.NewProductionConfig()
	if strings.EqualFold(rootConfiguration.Common.Logging.Format, "console") {
		zapConfiguration = zap.NewDevelopmentConfig()
	}
	if levelText := strings.TrimSpace(rootConfiguration.Common.Logging.Level); levelText != "" {
		level, parseErr := zapcore.ParseLevel(levelText)
		if parseErr != nil {
			return nil, fmt.Errorf("parse log level %q: %w", levelText, parseErr)
		}
		zapConfiguration.Level = zap.NewAtomicLevelAt(level)
	}
	return zapConfiguration.Build()
}
