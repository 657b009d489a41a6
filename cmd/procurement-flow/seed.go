package procurementflow

import (
	"context"
	"fmt"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/temirov/procurement-flow/internal/config"
	"github.com/temirov/procurement-flow/internal/mockdata"
	"github.com/temirov/procurement-flow/internal/retrieval"
)

type seedCommandOptions struct {
	configPath    string
	supplierCount int
	corpusSeed    int64
	exportDir     string
	modelName     string
}

func newSeedCommand() *cobra.Command {
	options := &seedCommandOptions{}

	command := &cobra.Command{
		Use:   seedCommandUse,
		Short: seedCommandShort,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSeedCommand(cmd, *options)
		},
	}

	command.Flags().StringVar(&options.configPath, configFlagName, "", configFlagUsage)
	command.Flags().IntVar(&options.supplierCount, suppliersFlagName, defaultSupplierCount, suppliersFlagUsage)
	command.Flags().Int64Var(&options.corpusSeed, seedFlagName, defaultCorpusSeed, seedFlagUsage)
	command.Flags().StringVar(&options.exportDir, exportDirFlagName, "", exportDirFlagUsage)
	command.Flags().StringVar(&options.modelName, modelFlagName, "", modelFlagUsage)

	return command
}

func runSeedCommand(command *cobra.Command, options seedCommandOptions) error {
	if options.supplierCount <= 0 {
		return fmt.Errorf("--%s must be positive, got %d", suppliersFlagName, options.supplierCount)
	}

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

	corpus := mockdata.Generate(options.supplierCount, options.corpusSeed)
	logger.Info("demo corpus generated",
		zap.Int("suppliers", len(corpus.Suppliers)),
		zap.Int64("seed", options.corpusSeed))

	if options.exportDir != "" {
		if err := mockdata.Export(afero.NewOsFs(), options.exportDir, corpus); err != nil {
			return fmt.Errorf("export corpus to %s: %w", options.exportDir, err)
		}
		logger.Info("corpus exported", zap.String("dir", options.exportDir))
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

	ctx := command.Context()
	collections := rootConfiguration.Collections

	supplierDocuments := make([]ingestDocument, 0, len(corpus.Suppliers))
	contractDocuments := make([]ingestDocument, 0, len(corpus.Suppliers))
	auditDocuments := make([]ingestDocument, 0, len(corpus.Suppliers))
	for _, supplier := range corpus.Suppliers {
		supplierDocuments = append(supplierDocuments, ingestDocument{supplier.SupplierID, supplier.Description()})
		contractDocuments = append(contractDocuments, ingestDocument{supplier.SupplierID, corpus.Contracts[supplier.SupplierID]})
		auditDocuments = append(auditDocuments, ingestDocument{supplier.SupplierID, corpus.Audits[supplier.SupplierID]})
	}

	for _, ingest := range []struct {
		collection string
		documents  []ingestDocument
	}{
		{collections.Suppliers, supplierDocuments},
		{collections.Contracts, contractDocuments},
		{collections.Audits, auditDocuments},
	} {
		if err := fillCollection(ctx, store, adapter, ingest.collection, ingest.documents); err != nil {
			return err
		}
		logger.Info("collection seeded",
			zap.String("collection", ingest.collection),
			zap.Int("documents", len(ingest.documents)))
	}

	_, writeErr := fmt.Fprintf(command.OutOrStdout(), "Seeded %d suppliers into %s, %s, %s\n",
		len(corpus.Suppliers), collections.Suppliers, collections.Contracts, collections.Audits)
	return writeErr
}

type ingestDocument struct {
	supplierID string
	text       string
}

func fillCollection(ctx context.Context, store *retrieval.Store, embedder retrieval.Embedder, collection string, documents []ingestDocument) error {
	if err := store.Reset(ctx, collection); err != nil {
		return err
	}

	texts := make([]string, 0, len(documents))
	for _, document := range documents {
		texts = append(texts, document.text)
	}
	vectors, embedErr := embedder.Embed(ctx, texts)
	if embedErr != nil {
		return fmt.Errorf("embed %s documents: %w", collection, embedErr)
	}
	if len(vectors) != len(documents) {
		return fmt.Errorf("embedder returned %d vectors for %d %s documents", len(vectors), len(documents), collection)
	}

	storeDocuments := make([]retrieval.Document, 0, len(documents))
	for i, document := range documents {
		storeDocuments = append(storeDocuments, retrieval.Document{
			SupplierID: document.supplierID,
			Text:       document.text,
			Vector:     vectors[i],
		})
	}
	return store.Insert(ctx, collection, storeDocuments)
}
