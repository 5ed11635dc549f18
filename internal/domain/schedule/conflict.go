package schedule

import (
	"errors"
	"fmt"
	"time"
)

// ConflictQuery descreve um horário proposto. MechanicID e VehicleID são
// opcionais: sem nenhum recurso compartilhado não existe conflito.
// ExcludeID remove o próprio agendamento da checagem em reagendamentos.
type ConflictQuery struct {
	WorkshopID uint
	Start      time.Time
	End        time.Time
	MechanicID *uint
	VehicleID  *uint
	ExcludeID  *uint
}

type ConflictResult struct {
	HasConflict    bool   `json:"has_conflict"`
	ConflictingIDs []uint `json:"conflicting_ids"`
}

// Overlaps aplica a convenção de intervalo meio-aberto [start, end):
// horários encostados (fim == início) não conflitam.
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return aStart.Before(bEnd) && aEnd.After(bStart)
}

// ConflictError é devolvido quando o horário proposto colide com
// agendamentos ativos do mesmo mecânico ou veículo.
type ConflictError struct {
	ConflictingIDs []uint
}

func (e ConflictError) Error() string {
	return fmt.Sprintf("time_conflict: %d overlapping appointment(s)", len(e.ConflictingIDs))
}

func AsConflict(err error) (ConflictError, bool) {
	var ce ConflictError
	ok := errors.As(err, &ce)
	return ce, ok
}
