package cli

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/xavierca1/ligue-leads/internal/entity"
)

// LogsOptions guarda as flags dos subcomandos de logs.
type LogsOptions struct {
	*RootOptions
	Limit int
	Hours int
}

func newLogsCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &LogsOptions{RootOptions: rootOpts}
	cmd := &cobra.Command{
		Use:   "logs",
		Short: "Consulta a trilha de auditoria",
	}
	cmd.PersistentFlags().IntVar(&opts.Limit, "limit", 100, "máximo de eventos")

	lead := &cobra.Command{
		Use:   "lead <lead-id>",
		Short: "Eventos de um lead",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("lead-id", args[0])
			if err != nil {
				return err
			}
			return withServices(cmd, opts.RootOptions, func(ctx context.Context, s *Services, p printer) error {
				events, err := s.Audit.ByLead(ctx, id, opts.Limit)
				return printEvents(p, events, err)
			})
		},
	}

	rotation := &cobra.Command{
		Use:   "round-robin <round-robin-id>",
		Short: "Eventos de uma rotação",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("round-robin-id", args[0])
			if err != nil {
				return err
			}
			return withServices(cmd, opts.RootOptions, func(ctx context.Context, s *Services, p printer) error {
				events, err := s.Audit.ByRotation(ctx, id, opts.Hours, opts.Limit)
				return printEvents(p, events, err)
			})
		},
	}
	rotation.Flags().IntVar(&opts.Hours, "hours", 168, "janela em horas")

	errorsCmd := &cobra.Command{
		Use:   "errors",
		Short: "Falhas recentes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withServices(cmd, opts.RootOptions, func(ctx context.Context, s *Services, p printer) error {
				events, err := s.Audit.Failures(ctx, opts.Limit)
				return printEvents(p, events, err)
			})
		},
	}

	cmd.AddCommand(lead, rotation, errorsCmd)
	return cmd
}

func printEvents(p printer, events []entity.AuditEvent, err error) error {
	if err != nil {
		return fromUseCase("audit query failed", err)
	}
	if p.format == "json" {
		return p.json(events)
	}
	rows := make([][]string, 0, len(events))
	for _, ev := range events {
		rows = append(rows, []string{
			ev.CreatedAt.Format(time.RFC3339),
			string(ev.EventType),
			string(ev.Status),
			ev.Message,
		})
	}
	return p.table([]string{"AT", "EVENT", "STATUS", "MESSAGE"}, rows)
}

func newStatsCommand(opts *RootOptions) *cobra.Command {
	var (
		days       int
		rotationID int64
	)
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Taxa de entrega das notificações",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var scope *int64
			if rotationID > 0 {
				scope = &rotationID
			}
			return withServices(cmd, opts, func(ctx context.Context, s *Services, p printer) error {
				stats, err := s.Audit.NotificationStats(ctx, scope, days)
				if err != nil {
					return fromUseCase("stats failed", err)
				}
				if p.format == "json" {
					return p.json(stats)
				}
				avg := "-"
				if stats.AvgResponseTime != nil {
					avg = strconv.FormatFloat(*stats.AvgResponseTime, 'f', 0, 64) + "ms"
				}
				fmt.Fprintf(p.w, "successful=%d failed=%d total=%d rate=%.2f%% avg=%s\n",
					stats.Successful, stats.Failed, stats.Total, stats.SuccessRate, avg)
				return nil
			})
		},
	}
	cmd.Flags().IntVar(&days, "days", 7, "janela em dias")
	cmd.Flags().Int64Var(&rotationID, "round-robin", 0, "restringe a uma rotação")
	return cmd
}
