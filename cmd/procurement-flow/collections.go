package procurementflow

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/temirov/procurement-flow/internal/config"
	"github.com/temirov/procurement-flow/internal/retrieval"
)

type collectionsCommandOptions struct {
	configPath string
}

func newCollectionsCommand() *cobra.Command {
	options := &collectionsCommandOptions{}

	command := &cobra.Command{
		Use:   collectionsCommandUse,
		Short: collectionsCommandShort,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCollectionsCommand(cmd, *options)
		},
	}

	command.Flags().StringVar(&options.configPath, configFlagName, "", configFlagUsage)

	return command
}

func runCollectionsCommand(command *cobra.Command, options collectionsCommandOptions) error {
	rootConfiguration, _, configErr := config.Load(options.configPath)
	if configErr != nil {
		return configErr
	}

	store, storeErr := retrieval.Open(rootConfiguration.Store.Path, rootConfiguration.Embedding.Dimensions)
	if storeErr != nil {
		return fmt.Errorf("open store %s: %w", rootConfiguration.Store.Path, storeErr)
	}
	defer func() { _ = store.Close() }()

	infos, listErr := store.Collections(command.Context())
	if listErr != nil {
		return fmt.Errorf("list collections: %w", listErr)
	}
	if len(infos) == 0 {
		_, writeErr := fmt.Fprintln(command.OutOrStdout(), "no collections (run `procurement-flow seed` first)")
		return writeErr
	}

	for _, info := range infos {
		_, writeErr := fmt.Fprintf(command.OutOrStdout(), "%s\t%d\n", info.Name, info.Count)
		if writeErr != nil {
			return fmt.Errorf("write collection listing: %w", writeErr)
		}
	}
	return nil
}
