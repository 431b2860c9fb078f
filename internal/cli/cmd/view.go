package cmd

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/bnema/folio/internal/cli/tui"
	"github.com/bnema/folio/internal/singleinstance"
	"github.com/bnema/folio/internal/viewer"
)

var viewCmd = &cobra.Command{
	Use:   "view <file>...",
	Short: "Open documents in the interactive viewer",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		a := GetApp()
		sock := singleinstance.SocketPath()

		// Forward to a running instance instead of starting a second one.
		if singleinstance.NotifyRunning(sock, args) {
			fmt.Println("forwarded to running instance")
			return nil
		}

		srv := singleinstance.NewServer(a.Bus, a.Logger)
		if err := srv.Listen(sock); err != nil {
			a.Logger.Warn().Err(err).Msg("single-instance socket unavailable")
		} else {
			defer srv.Close()
			go func() {
				if err := srv.Serve(); err != nil {
					a.Logger.Warn().Err(err).Msg("single-instance server stopped")
				}
			}()
		}

		ctx, cancel := context.WithCancel(a.Context())
		defer cancel()

		model := tui.NewModel(ctx, a.Registry, a.Config.Viewer.SearchDebounce)
		program := tea.NewProgram(model, tea.WithAltScreen())

		controller := viewer.NewController(a.Bus, tui.NewRelay(program), a.Logger)
		go func() {
			_ = controller.Run(ctx)
		}()

		for _, path := range args {
			if _, err := a.Registry.Open(ctx, path); err != nil {
				return err
			}
		}

		_, err := program.Run()
		return err
	},
}

func init() {
	rootCmd.AddCommand(viewCmd)
}
