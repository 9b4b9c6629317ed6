package entity

import "errors"

var (
	ErrRotationNotFound  = errors.New("round robin não encontrado")
	ErrSlotNotFound      = errors.New("participante não encontrado na rotação")
	ErrLeadNotFound      = errors.New("lead não encontrado")
	ErrDuplicateJunkRule = errors.New("regra de junk já existe")
	// ErrStoreUnprovisioned: a tabela ainda não existe.
	ErrStoreUnprovisioned = errors.New("tabela não provisionada")
)
