package cli

import (
	"github.com/alexanderramin/planbook/internal/service"
	"github.com/spf13/cobra"
)

// App holds references to all service interfaces used by CLI commands.
type App struct {
	Plans  service.DefinitionManager
	Import service.ImportService
}

// NewRootCmd creates the top-level "planbook" command and registers all
// subcommands against the provided App.
func NewRootCmd(app *App) *cobra.Command {
	root := &cobra.Command{
		Use:   "planbook",
		Short: "Store, inspect and activate automation plan definitions",
	}

	root.AddCommand(
		newPlanCmd(app),
	)

	return root
}
