package main

import (
	"os"

	procurementflow "github.com/temirov/procurement-flow/cmd/procurement-flow"
	"go.uber.org/zap"
)

func main() {
	logger := zap.Must(zap.NewProduction())

	executionErr := procurementflow.Execute()
	if executionErr != nil {
		logger.Error("command execution failed", zap.Error(executionErr))
		_ = logger.Sync()
		os.Exit(1)
	}

	syncErr := logger.Sync()
	if syncErr != nil {
		os.Exit(1)
	}
}
