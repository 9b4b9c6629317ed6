package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/xavierca1/ligue-leads/internal/entity"
)

func newJunkCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "junk",
		Short: "Regras de junk",
	}
	cmd.AddCommand(newJunkAddCommand(opts))
	cmd.AddCommand(newMarkJunkCommand(opts))
	return cmd
}

func newJunkAddCommand(opts *RootOptions) *cobra.Command {
	var reason string
	cmd := &cobra.Command{
		Use:   "add <email|phone> <value>",
		Short: "Bloqueia um email ou telefone",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withServices(cmd, opts, func(ctx context.Context, s *Services, p printer) error {
				rule, created, err := s.Junk.AddRule(ctx, entity.JunkRuleType(args[0]), args[1], reason)
				if err != nil {
					return fromUseCase("junk add failed", err)
				}
				if p.format == "json" {
					return p.json(map[string]any{"created": created, "rule": rule})
				}
				if !created {
					fmt.Fprintf(p.w, "rule already exists: %s %s\n", rule.Type, rule.Value)
					return nil
				}
				fmt.Fprintf(p.w, "rule %d created: %s %s\n", rule.ID, rule.Type, rule.Value)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&reason, "reason", "", "motivo do bloqueio")
	return cmd
}

func newMarkJunkCommand(opts *RootOptions) *cobra.Command {
	var reason string
	cmd := &cobra.Command{
		Use:   "mark <lead-id>",
		Short: "Marca um lead como junk e bloqueia seus contatos",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("lead-id", args[0])
			if err != nil {
				return err
			}
			return withServices(cmd, opts, func(ctx context.Context, s *Services, p printer) error {
				out, err := s.Junk.MarkLeadAsJunk(ctx, id, reason)
				if err != nil {
					return fromUseCase("mark junk failed", err)
				}
				if p.format == "json" {
					return p.json(out)
				}
				fmt.Fprintf(p.w, "lead %d marked as junk, %d rule(s) created\n", out.LeadID, len(out.RulesCreated))
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&reason, "reason", "Marked as junk by admin", "motivo")
	return cmd
}
