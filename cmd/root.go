package cmd

import "github.com/spf13/cobra"

func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	app := newApp()
	rootCmd := &cobra.Command{
		Use:           "sketchmap",
		Short:         "SketchMap: digitize points, lines and polygons into stored GeoJSON datasets",
		Long:          "sketchmap serves the dataset API and drawing websocket, and manages stored datasets from the terminal through the same synchronization controller the browser uses.",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return app.load(cmd)
		},
	}
	rootCmd.PersistentFlags().StringVar(&app.configPath, "config", "", "config file (default ./sketchmap.yaml)")
	rootCmd.PersistentFlags().String("server", "", "dataset API base URL (overrides client.base_url)")

	rootCmd.AddCommand(
		newServeCmd(app),
		newDatasetsCmd(app),
		newIconsCmd(app),
	)
	return rootCmd
}
