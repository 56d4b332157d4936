package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/alexanderramin/planbook/internal/cli/formatter"
	"github.com/alexanderramin/planbook/internal/importer"
	"github.com/davecgh/go-spew/spew"
	"github.com/spf13/cobra"
)

// rawDump prints definitions without pointer addresses so output is stable
// between runs.
var rawDump = spew.ConfigState{
	Indent:                  "  ",
	DisablePointerAddresses: true,
	DisableCapacities:       true,
	SortKeys:                true,
}

func newPlanCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Manage plan definitions",
	}

	cmd.AddCommand(
		newPlanListCmd(app),
		newPlanShowCmd(app),
		newPlanImportCmd(app),
		newPlanExportCmd(app),
		newPlanActivateCmd(app),
		newPlanRemoveCmd(app),
		newPlanSearchCmd(app),
	)

	return cmd
}

func newPlanListCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List plans",
		Args:  cobra.NoArgs,
	}
	culture := addCultureFlag(cmd.Flags())

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		plans, err := app.Plans.List(context.Background(), culture.Tag())
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if len(plans) == 0 {
			fmt.Fprintln(out, "No plans found.")
			return nil
		}

		fmt.Fprintln(out, formatter.FormatPlanList(plans))
		return nil
	}

	return cmd
}

func newPlanShowCmd(app *App) *cobra.Command {
	var raw bool

	cmd := &cobra.Command{
		Use:   "show ID|ALIAS",
		Short: "Show plan details",
		Args:  cobra.ExactArgs(1),
	}
	culture := addCultureFlag(cmd.Flags())
	cmd.Flags().BoolVar(&raw, "raw", false, "Dump the loaded definition structure")

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		planID, err := resolvePlanID(ctx, app, args[0])
		if err != nil {
			return err
		}
		res, err := app.Plans.Get(ctx, planID, culture.Tag())
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if raw {
			rawDump.Fdump(out, res.Definition)
			return nil
		}
		fmt.Fprintln(out, formatter.FormatPlanDetail(res))
		return nil
	}

	return cmd
}

func newPlanImportCmd(app *App) *cobra.Command {
	var activate bool

	cmd := &cobra.Command{
		Use:   "import FILE",
		Short: "Import a plan from a JSON file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := app.Import.ImportPlan(context.Background(), args[0], activate)
			if err != nil {
				return err
			}

			status := "inactive"
			if result.Activated {
				status = "active"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Imported plan %s [%s] (%d activities, %d universal, %s)\n",
				result.Definition.Name(), result.Definition.DisplayID(),
				result.ActivityCount, result.UniversalActivityCount, status)
			return nil
		},
	}

	cmd.Flags().BoolVar(&activate, "activate", false, "Activate the plan after importing it")

	return cmd
}

func newPlanExportCmd(app *App) *cobra.Command {
	var outPath string

	cmd := &cobra.Command{
		Use:   "export ID|ALIAS",
		Short: "Export a plan as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			planID, err := resolvePlanID(ctx, app, args[0])
			if err != nil {
				return err
			}
			schema, err := app.Import.ExportPlan(ctx, planID)
			if err != nil {
				return err
			}

			if outPath == "" {
				return schema.Write(cmd.OutOrStdout())
			}
			return writeExportFile(outPath, schema)
		},
	}

	cmd.Flags().StringVarP(&outPath, "out", "o", "", "Write to this file instead of stdout")

	return cmd
}

func writeExportFile(path string, schema *importer.PlanSchema) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating export file: %w", err)
	}
	if err := schema.Write(f); err != nil {
		f.Close()
		return fmt.Errorf("writing export file: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("closing export file: %w", err)
	}
	return nil
}

func newPlanActivateCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "activate ID|ALIAS",
		Short: "Activate a plan",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			planID, err := resolvePlanID(ctx, app, args[0])
			if err != nil {
				return err
			}
			if err := app.Plans.Activate(ctx, planID); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Activated plan %s\n", planID)
			return nil
		},
	}
}

func newPlanRemoveCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "remove ID|ALIAS",
		Short: "Remove a plan",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			planID, err := resolvePlanID(ctx, app, args[0])
			if err != nil {
				return err
			}
			if err := app.Plans.Delete(ctx, planID); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed plan %s\n", planID)
			return nil
		},
	}
}

func newPlanSearchCmd(app *App) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "search QUERY",
		Short: "Search plans by alias, name, description or classification",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			hits, err := app.Plans.Search(context.Background(), args[0], limit)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatter.FormatSearchResults(args[0], hits))
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 10, "Maximum number of results")

	return cmd
}
