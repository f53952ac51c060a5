package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newIconsCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "icons",
		Short: "List marker icons offered by the property editor",
		RunE: func(cmd *cobra.Command, _ []string) error {
			s := app.session(cmd.OutOrStdout(), cmd.ErrOrStderr())
			// 列表错误不影响图标输出
			_ = s.ctrl.Init(cmd.Context())
			for _, icon := range s.ctrl.Editor().Icons() {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), icon)
			}
			return nil
		},
	}
}
