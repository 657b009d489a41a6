package procurementflow

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/temirov/procurement-flow/internal/config"
	"github.com/temirov/procurement-flow/internal/llm"
	"github.com/temirov/procurement-flow/internal/retrieval"
	"github.com/temirov/procurement-flow/internal/workflow"
)

type runCommandOptions struct {
	configPath   string
	requestFile  string
	samples      int
	threshold    float64
	thresholdSet bool
	topK         int
	modelName    string
	timeout      time.Duration
}

func newRunCommand() *cobra.Command {
	options := &runCommandOptions{}

	command := &cobra.Command{
		Use:   runCommandUse,
		Short: runCommandShort,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			options.thresholdSet = cmd.Flags().Changed(thresholdFlagName)
			return runWorkflowCommand(cmd, *options, args)
		},
	}

	command.Flags().StringVar(&options.configPath, configFlagName, "", configFlagUsage)
	command.Flags().StringVar(&options.requestFile, requestFileFlagName, "", requestFileFlagUsage)
	command.Flags().IntVar(&options.samples, samplesFlagName, 0, samplesFlagUsage)
	command.Flags().Float64Var(&options.threshold, thresholdFlagName, 0, thresholdFlagUsage)
	command.Flags().IntVar(&options.topK, topKFlagName, 0, topKFlagUsage)
	command.Flags().StringVar(&options.modelName, modelFlagName, "", modelFlagUsage)
	command.Flags().DurationVar(&options.timeout, timeoutFlagName, 0, timeoutFlagUsage)

	return command
}

func runWorkflowCommand(command *cobra.Command, options runCommandOptions, args []string) error {
	rootConfiguration, configReference, configErr := config.Load(options.configPath)
	if configErr != nil {
		return configErr
	}

	logger, loggerErr := newLogger(rootConfiguration)
	if loggerErr != nil {
		return loggerErr
	}
	defer func() { _ = logger.Sync() }()
	logger.Info("configuration loaded", zap.String("source", configReference))

	rawRequest, requestErr := resolveRequest(args, options.requestFile)
	if requestErr != nil {
		return requestErr
	}

	adapter, adapterErr := buildAdapter(rootConfiguration, options.modelName)
	if adapterErr != nil {
		return adapterErr
	}

	store, storeErr := retrieval.Open(rootConfiguration.Store.Path, rootConfiguration.Embedding.Dimensions)
	if storeErr != nil {
		return fmt.Errorf("open store %s: %w", rootConfiguration.Store.Path, storeErr)
	}
	defer func() { _ = store.Close() }()

	workflowConfiguration := workflow.Config{
		Samples:   chooseInt(options.samples, rootConfiguration.Common.Defaults.Samples),
		Threshold: rootConfiguration.Common.Defaults.Threshold,
		TopK:      chooseInt(options.topK, rootConfiguration.Common.Defaults.TopK),
		Rules:     rootConfiguration.Compliance.Rules,
	}
	if options.thresholdSet {
		workflowConfiguration.Threshold = options.threshold
	}

	collections := rootConfiguration.Collections
	procurementWorkflow, workflowErr := workflow.New(
		adapter,
		retrieval.VectorRetriever{Store: store, Embedder: adapter, Collection: collections.Suppliers},
		retrieval.VectorRetriever{Store: store, Embedder: adapter, Collection: collections.Contracts},
		retrieval.VectorRetriever{Store: store, Embedder: adapter, Collection: collections.Audits},
		workflowConfiguration,
		logger,
	)
	if workflowErr != nil {
		return workflowErr
	}

	ctx := command.Context()
	effectiveTimeout := options.timeout
	if effectiveTimeout <= 0 {
		effectiveTimeout = time.Duration(rootConfiguration.Common.Defaults.TimeoutSeconds) * time.Second
	}
	if effectiveTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, effectiveTimeout)
		defer cancel()
	}

	result, runErr := procurementWorkflow.Run(ctx, rawRequest)
	if runErr != nil {
		return fmt.Errorf("run workflow: %w", runErr)
	}

	encoded, marshalErr := json.MarshalIndent(result, "", "  ")
	if marshalErr != nil {
		return marshalErr
	}
	_, writeErr := fmt.Fprintln(command.OutOrStdout(), string(encoded))
	return writeErr
}

func resolveRequest(args []string, requestFile string) (string, error) {
	if len(args) > 0 && strings.TrimSpace(args[0]) != "" {
		return args[0], nil
	}
	if strings.TrimSpace(requestFile) != "" {
		content, readErr := os.ReadFile(filepath.Clean(requestFile))
		if readErr != nil {
			return "", fmt.Errorf("read request file %s: %w", requestFile, readErr)
		}
		if strings.TrimSpace(string(content)) == "" {
			return "", fmt.Errorf("request file %s is empty", requestFile)
		}
		return string(content), nil
	}
	return defaultSampleRequest, nil
}

func buildAdapter(rootConfiguration config.Root, modelOverride string) (llm.Adapter, error) {
	selectedModel, modelFound := rootConfiguration.DefaultModel()
	if strings.TrimSpace(modelOverride) != "" {
		selectedModel, modelFound = rootConfiguration.FindModel(modelOverride)
		if !modelFound {
			return llm.Adapter{}, fmt.Errorf("model %q not found in models[]", modelOverride)
		}
	}
	if !modelFound {
		return llm.Adapter{}, fmt.Errorf("no default model configured")
	}

	apiKeyEnvironmentVariable := strings.TrimSpace(rootConfiguration.Common.API.APIKeyEnv)
	if apiKeyEnvironmentVariable == "" {
		apiKeyEnvironmentVariable = defaultAPIKeyEnvironmentVariable
	}
	apiKey := strings.TrimSpace(os.Getenv(apiKeyEnvironmentVariable))
	if apiKey == "" {
		return llm.Adapter{}, fmt.Errorf("missing API key: set %s", apiKeyEnvironmentVariable)
	}

	apiEndpoint := strings.TrimSpace(rootConfiguration.Common.API.Endpoint)
	if apiEndpoint == "" {
		apiEndpoint = defaultAPIEndpoint
	}

	return llm.Adapter{
		Client:              llm.Client{HTTPBaseURL: apiEndpoint, APIKey: apiKey},
		DefaultModel:        selectedModel.ModelID,
		DefaultTemp:         selectedModel.DefaultTemperature,
		DefaultTokens:       selectedModel.MaxCompletionTokens,
		SupportsTemperature: selectedModel.SupportsTemperature,
		EmbeddingModel:      rootConfiguration.Embedding.ModelID,
	}, nil
}

func chooseInt(a, b int) int {
	if a > 0 {
		return a
	}
	return b
}
