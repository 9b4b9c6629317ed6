package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/xavierca1/ligue-leads/internal/entity"
)

type JunkVerdict struct {
	IsJunk bool
	Reason string
	Rule   *entity.JunkRule
}

// JunkFilter classifica leads contra as regras de lixo (email/telefone).
type JunkFilter struct {
	rules JunkRuleRepository
	leads LeadRepository
	audit *AuditLogger
	log   *slog.Logger
}

func NewJunkFilter(rules JunkRuleRepository, leads LeadRepository, audit *AuditLogger, log *slog.Logger) *JunkFilter {
	if log == nil {
		log = slog.Default()
	}
	return &JunkFilter{rules: rules, leads: leads, audit: audit, log: log}
}

// Classify confere o email e depois o telefone. Sem a tabela de regras, todo
// lead é tratado como válido.
func (f *JunkFilter) Classify(ctx context.Context, email, phone string) (JunkVerdict, error) {
	checks := []struct {
		t     entity.JunkRuleType
		value string
	}{
		{entity.JunkRuleEmail, email},
		{entity.JunkRulePhone, phone},
	}

	for _, c := range checks {
		value := entity.NormalizeJunkValue(c.t, c.value)
		if value == "" {
			continue
		}
		rule, err := f.rules.Match(ctx, c.t, value)
		if errors.Is(err, entity.ErrStoreUnprovisioned) {
			f.log.WarnContext(ctx, "⚠️ tabela de junk rules não existe, lead tratado como válido")
			return JunkVerdict{}, nil
		}
		if err != nil {
			return JunkVerdict{}, databaseError("erro ao consultar junk rules", err)
		}
		if rule != nil {
			return JunkVerdict{
				IsJunk: true,
				Reason: junkReason(rule),
				Rule:   rule,
			}, nil
		}
	}
	return JunkVerdict{}, nil
}

func junkReason(rule *entity.JunkRule) string {
	reason := fmt.Sprintf("%s matches junk rule #%d", rule.Type, rule.ID)
	if rule.Reason != "" {
		reason += ": " + rule.Reason
	}
	return reason
}

// AddRule grava a regra. Regra idêntica já existente não é erro; created
// indica se uma linha nova foi gravada.
func (f *JunkFilter) AddRule(ctx context.Context, t entity.JunkRuleType, value, reason string) (*entity.JunkRule, bool, error) {
	if !t.Valid() {
		return nil, false, newDomainError(CodeInvalidJunkRule, fmt.Sprintf("tipo de regra inválido: %q", t))
	}
	value = entity.NormalizeJunkValue(t, value)
	if value == "" {
		return nil, false, newDomainError(CodeInvalidJunkRule, "valor da regra é obrigatório")
	}

	rule := &entity.JunkRule{Type: t, Value: value, Reason: strings.TrimSpace(reason)}
	err := f.rules.Insert(ctx, rule)
	if errors.Is(err, entity.ErrDuplicateJunkRule) {
		return rule, false, nil
	}
	if err != nil {
		return nil, false, databaseError("erro ao salvar junk rule", err)
	}
	return rule, true, nil
}

// MarkLeadAsJunk marca o lead como lixo e bloqueia email e telefone dele para
// leads futuros. As regras são gravadas em best effort.
func (f *JunkFilter) MarkLeadAsJunk(ctx context.Context, leadID int64, reason string) (*MarkJunkOutput, error) {
	lead, err := f.leads.FindByID(ctx, leadID)
	if errors.Is(err, entity.ErrLeadNotFound) {
		return nil, newDomainError(CodeLeadNotFound, fmt.Sprintf("lead %d não encontrado", leadID))
	}
	if err != nil {
		return nil, databaseError("erro ao buscar lead", err)
	}

	reason = strings.TrimSpace(reason)
	if reason == "" {
		reason = "marked as junk"
	}
	if err := f.leads.UpdateStatus(ctx, lead.ID, entity.LeadStatusJunk, reason); err != nil {
		return nil, databaseError("erro ao atualizar status do lead", err)
	}

	out := &MarkJunkOutput{LeadID: lead.ID, RulesCreated: []entity.JunkRule{}}
	for _, c := range []struct {
		t     entity.JunkRuleType
		value string
	}{
		{entity.JunkRuleEmail, lead.Email},
		{entity.JunkRulePhone, lead.Phone},
	} {
		if strings.TrimSpace(c.value) == "" {
			continue
		}
		rule, created, err := f.AddRule(ctx, c.t, c.value, reason)
		if err != nil {
			f.log.WarnContext(ctx, "⚠️ erro ao criar junk rule", "lead_id", lead.ID, "type", c.t, "error", err)
			continue
		}
		if created {
			out.RulesCreated = append(out.RulesCreated, *rule)
		}
	}

	f.audit.Record(ctx, entity.AuditEvent{
		LeadID:     entity.Int64Ptr(lead.ID),
		RotationID: entity.Int64Ptr(lead.RotationID),
		SlotID:     entity.Int64Ptr(lead.SlotID),
		EventType:  entity.EventLeadMarkedJunk,
		Status:     entity.AuditInfo,
		Message:    "Lead marked as junk",
		Details: map[string]any{
			"reason":        reason,
			"rules_created": len(out.RulesCreated),
		},
	})
	return out, nil
}
