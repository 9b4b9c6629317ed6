package usecase

import "github.com/xavierca1/ligue-leads/internal/entity"

// SelectNext percorre o roster a partir de start, dando uma volta completa, e
// devolve o primeiro participante disponível com sua posição. ok é false
// quando todos estão pausados ou inativos.
func SelectNext(roster []entity.Slot, start int) (slot *entity.Slot, position int, ok bool) {
	n := len(roster)
	if n == 0 {
		return nil, 0, false
	}
	if start < 0 || start >= n {
		start = 0
	}
	for i := 0; i < n; i++ {
		pos := (start + i) % n
		if roster[pos].Available() {
			return &roster[pos], pos, true
		}
	}
	return nil, 0, false
}

// NextPosition é o ponteiro gravado depois de atribuir o lead em position.
func NextPosition(position, rosterLen int) int {
	if rosterLen <= 0 {
		return 0
	}
	return (position + 1) % rosterLen
}
