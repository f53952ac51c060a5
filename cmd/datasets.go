package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/GrainArc/SketchMap/methods"
	"github.com/GrainArc/SketchMap/sketch"
	"github.com/spf13/cobra"
)

func newDatasetsCmd(app *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "datasets",
		Aliases: []string{"ds"},
		Short:   "Manage stored datasets",
	}

	cmd.AddCommand(
		newDatasetsListCmd(app),
		newDatasetsUploadCmd(app),
		newDatasetsLoadCmd(app),
		newDatasetsDeleteCmd(app),
		newDatasetsExportCmd(app),
	)
	return cmd
}

func newDatasetsListCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List stored datasets, newest first",
		RunE: func(cmd *cobra.Command, _ []string) error {
			s := app.session(cmd.OutOrStdout(), cmd.ErrOrStderr())
			if err := s.ctrl.Refresh(cmd.Context()); err != nil {
				return err
			}
			s.list.Render()
			return nil
		},
	}
}

func newDatasetsUploadCmd(app *app) *cobra.Command {
	var name string
	cmd := &cobra.Command{
		Use:   "upload <file>",
		Short: "Upload a GeoJSON file (or an exported zip bundle) as a new dataset",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			filename := filepath.Base(args[0])
			if methods.IsBundle(filename) {
				filename, raw, err = methods.UnbundleGeoJSON(raw)
				if err != nil {
					return err
				}
			}
			if name != "" {
				filename = name + filepath.Ext(filename)
			}

			s := app.session(cmd.OutOrStdout(), cmd.ErrOrStderr())
			id, err := s.ctrl.Upload(cmd.Context(), filename, raw)
			if err != nil {
				return err
			}
			s.list.Render()
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "id: %d\n", id)
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "dataset name (default: file name without extension)")
	return cmd
}

func newDatasetsLoadCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "load <id>",
		Short: "Fetch a dataset and print its features",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			s := app.session(cmd.OutOrStdout(), cmd.ErrOrStderr())
			if err := s.ctrl.Refresh(cmd.Context()); err != nil {
				return err
			}
			if err := s.ctrl.Load(cmd.Context(), id); err != nil {
				return err
			}

			layer, _ := s.ctrl.Registry().Get(id)
			printLayer(cmd, layer)
			return nil
		},
	}
}

func printLayer(cmd *cobra.Command, layer *sketch.Layer) {
	out := cmd.OutOrStdout()
	if layer == nil || layer.Data == nil {
		_, _ = fmt.Fprintln(out, "features: 0")
		return
	}
	_, _ = fmt.Fprintf(out, "features: %d\n", len(layer.Data.Features))
	for i, f := range layer.Data.Features {
		props := sketch.PropertiesFromMap(f.Properties)
		kind := "-"
		if f.Geometry != nil {
			kind = f.Geometry.GeoJSONType()
		}
		_, _ = fmt.Fprintf(out, "%d\t%s\t%s\t%s\n", i+1, kind, props.Name, props.Description)
	}
	if len(layer.Data.Features) > 0 {
		b := layer.Bound()
		_, _ = fmt.Fprintf(out, "bounds: [%g, %g, %g, %g]\n", b.Min[0], b.Min[1], b.Max[0], b.Max[1])
	}
}

func newDatasetsDeleteCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:     "delete <id>",
		Aliases: []string{"rm"},
		Short:   "Remove a stored dataset",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			s := app.session(cmd.OutOrStdout(), cmd.ErrOrStderr())
			return s.ctrl.Delete(cmd.Context(), id)
		},
	}
}

func newDatasetsExportCmd(app *app) *cobra.Command {
	var (
		format string
		output string
	)
	cmd := &cobra.Command{
		Use:   "export <id>",
		Short: "Download a dataset as geojson, dxf or a zip bundle",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			switch format {
			case "geojson", "dxf", "zip":
			default:
				return fmt.Errorf("unsupported format %q", format)
			}

			s := app.session(cmd.OutOrStdout(), cmd.ErrOrStderr())
			data, err := s.backend.Export(cmd.Context(), id, format)
			if err != nil {
				return err
			}
			if output == "" {
				output = fmt.Sprintf("dataset-%d.%s", id, format)
			}
			if err := os.WriteFile(output, data, 0o644); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (%d bytes)\n", output, len(data))
			return nil
		},
	}
	cmd.Flags().StringVar(&format, "format", "geojson", "geojson, dxf or zip")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default dataset-<id>.<format>)")
	return cmd
}
