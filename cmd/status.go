package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/bnema/wm-pickup-cli/internal/adapters/httpapi"
	statusadapter "github.com/bnema/wm-pickup-cli/internal/adapters/render/status"
	"github.com/spf13/cobra"
)

func newStatusCmd(app *app) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the last known pickup date of every sensor",
		RunE: func(cmd *cobra.Command, _ []string) error {
			service, _, err := app.services(cmd.Context())
			if err != nil {
				return err
			}

			sensors, err := service.Sensors(cmd.Context())
			if err != nil {
				return err
			}

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(httpapi.NewSensorViews(sensors))
			}

			rendered, err := app.statusRenderer(sensors, statusadapter.RenderOptions{
				Now:    app.now().In(app.cfg.Schedule.Location),
				Titles: app.titles(cmd.Context()),
			})
			if err != nil {
				return fmt.Errorf("render status: %w", err)
			}

			_, err = fmt.Fprintln(cmd.OutOrStdout(), rendered)
			return err
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Output sensors as JSON")

	return cmd
}
