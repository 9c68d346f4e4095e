package cmd

import (
	"fmt"
	"strings"

	"cloud-manager/core/storage"
	"cloud-manager/feature/iam"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	migrateOutput string
	migrateTypes  []string
)

// migrateCmd writes catalog files describing the live IAM configuration.
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Generate catalog files from live roles and groups",
	Long: `Fetch live roles and groups and write their definitions as catalog files.

Assume-role documents are deduplicated by content. Policy statements used by
more than one role or group are moved to shared files under policies/.

Examples:
  # Write a catalog into ./catalog
  migrate --output ./catalog

  # Roles only, into a bucket
  migrate --output s3://my-bucket/catalog --types roles`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		rt, err := loadRuntime()
		if err != nil {
			return err
		}
		defer rt.logger.Sync()

		types, err := selectTypes(migrateTypes, []string{typeRoles, typeGroups})
		if err != nil {
			return err
		}

		var store storage.Client
		if strings.HasPrefix(migrateOutput, "s3://") {
			if store, err = rt.storageClient(); err != nil {
				return err
			}
		}
		stores, err := iam.NewStores(migrateOutput, store)
		if err != nil {
			return err
		}

		client, err := rt.iamClient(ctx)
		if err != nil {
			return err
		}

		m := &iam.Migrator{Logger: rt.logger}
		for _, t := range types {
			switch t {
			case typeRoles:
				m.Roles = iam.NewRoles(client, rt.cfg.Catalog.Root, rt.cfg.Sync.Workers, rt.logger)
			case typeGroups:
				m.Groups = iam.NewGroups(client, rt.cfg.Catalog.Root, rt.cfg.Sync.Workers, rt.logger)
			}
		}

		summary, err := m.Migrate(ctx, stores)
		if err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
		rt.logger.Info("Catalog written",
			zap.String("output", migrateOutput),
			zap.Int("roles", summary.Roles),
			zap.Int("groups", summary.Groups),
		)
		return nil
	},
}

func init() {
	migrateCmd.Flags().StringVar(&migrateOutput, "output", "", "Destination directory or s3://bucket/prefix")
	migrateCmd.Flags().StringSliceVar(&migrateTypes, "types", nil, "Resource types to migrate (roles, groups)")
	_ = migrateCmd.MarkFlagRequired("output")

	RootCmd.AddCommand(migrateCmd)
}
