package cli

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/xavierca1/ligue-leads/internal/entity"
)

func newMigrateCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Aplica o schema no banco",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withServices(cmd, opts, func(ctx context.Context, s *Services, p printer) error {
				if err := s.Migrate(ctx); err != nil {
					return WrapExitError(ExitCommandError, "migration failed", err)
				}
				fmt.Fprintln(p.w, "schema applied")
				return nil
			})
		},
	}
}

func newLaunchCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "launch <round-robin-id>",
		Short: "Libera a rotação para receber leads",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("round-robin-id", args[0])
			if err != nil {
				return err
			}
			return withServices(cmd, opts, func(ctx context.Context, s *Services, p printer) error {
				rot, err := s.Roster.Launch(ctx, id)
				if err != nil {
					return fromUseCase("launch failed", err)
				}
				if p.format == "json" {
					return p.json(rot)
				}
				fmt.Fprintf(p.w, "round robin %d (%s) launched\n", rot.ID, rot.Name)
				return nil
			})
		},
	}
}

func newRosterCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "roster <round-robin-id>",
		Short: "Lista os participantes na ordem da fila",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("round-robin-id", args[0])
			if err != nil {
				return err
			}
			return withServices(cmd, opts, func(ctx context.Context, s *Services, p printer) error {
				slots, err := s.Roster.ListOrdered(ctx, id)
				if err != nil {
					return fromUseCase("roster failed", err)
				}
				if p.format == "json" {
					return p.json(slots)
				}
				return p.table([]string{"POS", "ID", "NAME", "LEADS", "STATE"}, slotRows(slots))
			})
		},
	}
}

func slotRows(slots []entity.Slot) [][]string {
	rows := make([][]string, 0, len(slots))
	for _, s := range slots {
		state := "active"
		if s.IsPaused {
			state = "paused"
			if s.PauseReason != "" {
				state += " (" + s.PauseReason + ")"
			}
		}
		rows = append(rows, []string{
			strconv.Itoa(s.QueuePosition),
			strconv.FormatInt(s.ID, 10),
			s.Name,
			strconv.FormatInt(s.LeadsReceived, 10),
			state,
		})
	}
	return rows
}

func newPauseCommand(opts *RootOptions, paused bool) *cobra.Command {
	var reason string
	use, short := "pause", "Pausa um participante"
	if !paused {
		use, short = "unpause", "Retoma um participante pausado"
	}

	cmd := &cobra.Command{
		Use:   use + " <round-robin-id> <participant-id>",
		Short: short,
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := parseIDs("id", args)
			if err != nil {
				return err
			}
			return withServices(cmd, opts, func(ctx context.Context, s *Services, p printer) error {
				slot, err := s.Roster.SetPaused(ctx, ids[0], ids[1], paused, reason)
				if err != nil {
					return fromUseCase(use+" failed", err)
				}
				if p.format == "json" {
					return p.json(slot)
				}
				fmt.Fprintf(p.w, "participant %d (%s) paused=%t\n", slot.ID, slot.Name, slot.IsPaused)
				return nil
			})
		},
	}
	if paused {
		cmd.Flags().StringVar(&reason, "reason", "", "motivo da pausa")
	}
	return cmd
}

func newReorderCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "reorder <round-robin-id> <participant-id>...",
		Short: "Redefine a ordem da fila",
		Long: `Redefine a ordem da fila. A lista precisa conter exatamente os
participantes ativos da rotação, cada um uma vez.

Examples:
  rrctl reorder 3 12 10 11`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			rotID, err := parseID("round-robin-id", args[0])
			if err != nil {
				return err
			}
			ids, err := parseIDs("participant-id", args[1:])
			if err != nil {
				return err
			}
			return withServices(cmd, opts, func(ctx context.Context, s *Services, p printer) error {
				if err := s.Roster.Reorder(ctx, rotID, ids); err != nil {
					return fromUseCase("reorder failed", err)
				}
				fmt.Fprintf(p.w, "round robin %d reordered (%d participants)\n", rotID, len(ids))
				return nil
			})
		},
	}
}

func newRemoveSlotCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "remove-slot <round-robin-id> <participant-id>",
		Short: "Remove um participante da rotação",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := parseIDs("id", args)
			if err != nil {
				return err
			}
			return withServices(cmd, opts, func(ctx context.Context, s *Services, p printer) error {
				hard, err := s.Roster.RemoveSlot(ctx, ids[0], ids[1])
				if err != nil {
					return fromUseCase("remove failed", err)
				}
				mode := "deactivated"
				if hard {
					mode = "deleted"
				}
				if p.format == "json" {
					return p.json(map[string]any{"participant_id": ids[1], "deleted": hard})
				}
				fmt.Fprintf(p.w, "participant %d %s\n", ids[1], mode)
				return nil
			})
		},
	}
}
