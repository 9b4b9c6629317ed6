package cli

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

// RootOptions guarda as flags globais.
type RootOptions struct {
	Format string // "json" | "text"
	Open   Opener
}

var ValidFormats = []string{"text", "json"}

// NewRootCommand monta a árvore de comandos do rrctl. Com open nil usa o banco
// da configuração do ambiente.
func NewRootCommand(open Opener) *cobra.Command {
	if open == nil {
		open = OpenFromConfig
	}
	opts := &RootOptions{Open: open}

	cmd := &cobra.Command{
		Use:   "rrctl",
		Short: "Administração das rotações de leads",
		Long:  "rrctl administra rotações round-robin: ordem da fila, pausas, junk e auditoria.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return WrapExitError(ExitCommandError,
					fmt.Sprintf("invalid format %q: must be one of %v", opts.Format, ValidFormats), nil)
			}
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")

	cmd.AddCommand(newMigrateCommand(opts))
	cmd.AddCommand(newLaunchCommand(opts))
	cmd.AddCommand(newRosterCommand(opts))
	cmd.AddCommand(newPauseCommand(opts, true))
	cmd.AddCommand(newPauseCommand(opts, false))
	cmd.AddCommand(newReorderCommand(opts))
	cmd.AddCommand(newRemoveSlotCommand(opts))
	cmd.AddCommand(newJunkCommand(opts))
	cmd.AddCommand(newLogsCommand(opts))
	cmd.AddCommand(newStatsCommand(opts))

	return cmd
}

func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}

// withServices abre os serviços, roda fn e sempre fecha.
func withServices(cmd *cobra.Command, opts *RootOptions, fn func(ctx context.Context, s *Services, p printer) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	s, err := opts.Open(ctx)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}
	if s.Close != nil {
		defer s.Close()
	}
	return fn(ctx, s, printer{format: opts.Format, w: cmd.OutOrStdout()})
}

func parseID(name, raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, WrapExitError(ExitCommandError, fmt.Sprintf("%s must be a positive integer, got %q", name, raw), nil)
	}
	return id, nil
}

func parseIDs(name string, raw []string) ([]int64, error) {
	ids := make([]int64, 0, len(raw))
	for _, r := range raw {
		id, err := parseID(name, r)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}
