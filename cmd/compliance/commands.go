package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/cryptellation/compliance/pkg/audit"
	"github.com/cryptellation/compliance/pkg/compliance"
	"github.com/spf13/cobra"
)

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func newModelsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "models",
		Short: "List the distribution models",
		RunE: func(cmd *cobra.Command, _ []string) error {
			for _, m := range compliance.DistributionModels() {
				if _, err := fmt.Fprintf(cmd.OutOrStdout(), "%-20s %s\n", m, m.Label()); err != nil {
					return err
				}
			}
			return nil
		},
	}
}

func newEvaluateCmd() *cobra.Command {
	var model, category, depth string
	cmd := &cobra.Command{
		Use:   "evaluate EXPRESSION",
		Short: "Evaluate one license expression against a distribution model",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := distributionModel(model)
			if err != nil {
				return err
			}
			tables, err := compliance.LoadTables(cfg.TablesPath)
			if err != nil {
				return err
			}
			engine, err := tables.NewEngine()
			if err != nil {
				return err
			}

			cat := compliance.ParseLicenseCategory(category)
			if category == "" {
				cat = audit.NewStaticClassifier(tables.Categories).Classify(args[0])
			}
			res := engine.Evaluate(m, cat, args[0], compliance.ParseDependencyDepth(depth))
			return printJSON(cmd.OutOrStdout(), struct {
				Expression string                     `json:"expression"`
				Category   compliance.LicenseCategory `json:"category"`
				compliance.Result
			}{args[0], cat, res})
		},
	}
	cmd.Flags().StringVarP(&model, "model", "m", "", "Distribution model (defaults to the configured one)")
	cmd.Flags().StringVar(&category, "category", "", "License category (classified from the expression when empty)")
	cmd.Flags().StringVar(&depth, "depth", string(compliance.DepthDirect), "Dependency depth: direct or transitive")
	return cmd
}

func newConflictsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "conflicts EXPRESSION...",
		Short: "Detect cross-license conflicts among license expressions",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tables, err := compliance.LoadTables(cfg.TablesPath)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), tables.NewConflictDetector().Detect(args))
		},
	}
}

func newImportCmd() *cobra.Command {
	var product string
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import the SBOM and repository of a product into the dependency graph",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			a, err := newApp(ctx, cfg)
			if err != nil {
				return err
			}
			defer a.Close()

			p, ok := cfg.Product(product)
			if !ok {
				return fmt.Errorf("%w: %q", errUnknownProduct, product)
			}
			n, err := a.importProduct(ctx, p)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "imported %d dependencies for %s\n", n, product)
			return err
		},
	}
	cmd.Flags().StringVarP(&product, "product", "p", "", "Product ID")
	_ = cmd.MarkFlagRequired("product")
	return cmd
}

func newResolveCmd() *cobra.Command {
	var product string
	cmd := &cobra.Command{
		Use:   "resolve",
		Short: "Fill in missing dependency versions from the product's lockfiles",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			a, err := newApp(ctx, cfg)
			if err != nil {
				return err
			}
			defer a.Close()

			if err := a.prepare(ctx, product); err != nil {
				return err
			}
			res, err := a.resolver.Resolve(ctx, product, cfg.GitHub.Token)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), res)
		},
	}
	cmd.Flags().StringVarP(&product, "product", "p", "", "Product ID")
	_ = cmd.MarkFlagRequired("product")
	return cmd
}

func newAuditCmd() *cobra.Command {
	var (
		product        string
		model          string
		skipResolution bool
	)
	cmd := &cobra.Command{
		Use:   "audit",
		Short: "Evaluate every dependency of a product and detect license conflicts",
		RunE: func(cmd *cobra.Command, _ []string) error {
			m, err := distributionModel(model)
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			a, err := newApp(ctx, cfg)
			if err != nil {
				return err
			}
			defer a.Close()

			if err := a.prepare(ctx, product); err != nil {
				return err
			}
			report, err := a.auditor.Run(ctx, audit.Request{
				ProductID:      product,
				Token:          cfg.GitHub.Token,
				Model:          m,
				SkipResolution: skipResolution,
			})
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), report)
		},
	}
	cmd.Flags().StringVarP(&product, "product", "p", "", "Product ID")
	cmd.Flags().StringVarP(&model, "model", "m", "", "Distribution model (defaults to the configured one)")
	cmd.Flags().BoolVar(&skipResolution, "skip-resolution", false, "Do not read lockfiles before evaluating")
	_ = cmd.MarkFlagRequired("product")
	return cmd
}

func distributionModel(flag string) (compliance.DistributionModel, error) {
	if flag == "" {
		return cfg.DistributionModel, nil
	}
	return compliance.ParseDistributionModel(flag)
}
