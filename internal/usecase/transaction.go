package usecase

import (
	"context"
	"fmt"
	"log/slog"
)

// AfterCommit roda as etapas pós-commit da distribuição (auditoria, notificação).
// O lead já está gravado: nenhuma etapa pode desfazer a distribuição, então as
// falhas são apenas registradas e a próxima etapa roda mesmo assim.
type AfterCommit struct {
	operations []Operation
	log        *slog.Logger
}

type Operation struct {
	Name string
	Fn   func(context.Context) error
}

func NewAfterCommit(log *slog.Logger) *AfterCommit {
	if log == nil {
		log = slog.Default()
	}
	return &AfterCommit{log: log}
}

func (t *AfterCommit) AddOperation(name string, fn func(context.Context) error) {
	t.operations = append(t.operations, Operation{name, fn})
}

// Execute roda as operações em ordem e devolve as falhas. Panic em uma
// operação é recuperado e reportado como erro.
func (t *AfterCommit) Execute(ctx context.Context) []error {
	var failures []error
	for _, op := range t.operations {
		if err := t.run(ctx, op); err != nil {
			t.log.WarnContext(ctx, "⚠️ etapa pós-commit falhou", "operation", op.Name, "error", err)
			failures = append(failures, err)
		}
	}
	return failures
}

func (t *AfterCommit) run(ctx context.Context, op Operation) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("operation '%s' panicked: %v", op.Name, r)
		}
	}()
	if err := op.Fn(ctx); err != nil {
		return fmt.Errorf("operation '%s' failed: %w", op.Name, err)
	}
	return nil
}
