package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/haqei/situation-engine/internal/catalog"
)

// #region catalog

func newCatalogCmd(root *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Export the reference catalog or seed it into SQLite",
	}
	cmd.AddCommand(newCatalogExportCmd(root), newCatalogSeedCmd(root))
	return cmd
}

func newCatalogExportCmd(root *rootOptions) *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the configured catalog as YAML",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(root)
			if err != nil {
				return err
			}
			defer a.Close()

			cat, err := a.loadCatalog(cmd.Context())
			if err != nil {
				return err
			}
			data, err := cat.Marshal()
			if err != nil {
				return err
			}
			if out == "" {
				_, err = cmd.OutOrStdout().Write(data)
				return err
			}
			if err := os.WriteFile(out, data, 0o644); err != nil {
				return fmt.Errorf("write catalog: %w", err)
			}
			a.logger.Info("catalog exported", zap.String("path", out), zap.Int("records", cat.Len()))
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "Output file (default: stdout)")
	return cmd
}

func newCatalogSeedCmd(root *rootOptions) *cobra.Command {
	var from string
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Replace the SQLite catalog with the embedded catalog or a YAML file",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(root)
			if err != nil {
				return err
			}
			defer a.Close()
			if a.cfg.DBPath == "" {
				return fmt.Errorf("catalog seed: no database configured (set db_path or --db)")
			}

			cat := catalog.Default()
			if from != "" {
				data, err := os.ReadFile(from)
				if err != nil {
					return fmt.Errorf("read catalog %s: %w", from, err)
				}
				if cat, err = catalog.Parse(data); err != nil {
					return err
				}
			}

			store, err := catalog.NewStore(a.cfg.DBPath)
			if err != nil {
				return err
			}
			defer store.Close()
			if err := store.Seed(cmd.Context(), cat); err != nil {
				return fmt.Errorf("seed catalog: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "seeded %d records into %s\n", cat.Len(), a.cfg.DBPath)
			return nil
		},
	}
	cmd.Flags().StringVar(&from, "from", "", "Catalog YAML to seed (default: embedded catalog)")
	return cmd
}

// #endregion catalog
