package main

import (
	"context"
	"fmt"

	"github.com/forbearing/tstore/types"
	"github.com/spf13/cobra"
	"go.mongodb.org/mongo-driver/v2/bson"
)

var (
	datasetParent  string
	datasetImports []string
)

var datasetCmd = &cobra.Command{
	Use:   "dataset",
	Short: "Dataset management commands",
}

var datasetCreateCmd = &cobra.Command{
	Use:   "create NAME",
	Short: "Create a dataset under the root dataset (or --parent)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		parent, err := parseID(datasetParent)
		if err != nil {
			return fmt.Errorf("parent: %w", err)
		}
		imports := make([]types.ID, 0, len(datasetImports))
		for _, raw := range datasetImports {
			id, err := parseID(raw)
			if err != nil {
				return fmt.Errorf("import %q: %w", raw, err)
			}
			imports = append(imports, id)
		}
		id, err := ds.CreateDataset(context.Background(), args[0], parent, imports)
		if err != nil {
			return err
		}
		cmd.Println(id.Hex())
		return nil
	},
}

var datasetResolveCmd = &cobra.Command{
	Use:   "resolve NAME",
	Short: "Resolve a dataset name under the root dataset (or --parent)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		parent, err := parseID(datasetParent)
		if err != nil {
			return fmt.Errorf("parent: %w", err)
		}
		id, found, err := ds.ResolveDataset(context.Background(), args[0], parent)
		if err != nil {
			return err
		}
		if !found {
			return fmt.Errorf("dataset %q not found under parent %s", args[0], parent.Hex())
		}
		cmd.Println(id.Hex())
		return nil
	},
}

func parseID(hex string) (types.ID, error) {
	if hex == "" {
		return types.Empty, nil
	}
	return bson.ObjectIDFromHex(hex)
}

func init() {
	datasetCreateCmd.Flags().StringVar(&datasetParent, "parent", "", "parent dataset id (hex), defaults to the root dataset")
	datasetCreateCmd.Flags().StringSliceVar(&datasetImports, "import", nil, "imported dataset id (hex), repeatable")
	datasetResolveCmd.Flags().StringVar(&datasetParent, "parent", "", "parent dataset id (hex), defaults to the root dataset")

	datasetCmd.AddCommand(datasetCreateCmd, datasetResolveCmd)
}
