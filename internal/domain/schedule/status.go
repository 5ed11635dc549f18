package schedule

import "github.com/OficinaProServices/oficina-api/internal/httperr"

// ===============================
// Appointment Status
// ===============================

type Status string

const (
	StatusPending         Status = "pending"
	StatusScheduled       Status = "scheduled"
	StatusInProgress      Status = "in_progress"
	StatusClientConfirmed Status = "client_confirmed"
	StatusCompleted       Status = "completed"
	StatusCancelled       Status = "cancelled"
)

// ActiveStatuses são os status que ocupam horário na agenda.
// pending ainda não reserva o slot; completed/cancelled nunca conflitam.
func ActiveStatuses() []Status {
	return []Status{StatusScheduled, StatusInProgress, StatusClientConfirmed}
}

func ActiveStatusValues() []string {
	active := ActiveStatuses()
	out := make([]string, 0, len(active))
	for _, s := range active {
		out = append(out, string(s))
	}
	return out
}

func IsActive(s Status) bool {
	for _, a := range ActiveStatuses() {
		if s == a {
			return true
		}
	}
	return false
}

func IsValid(s Status) bool {
	switch s {
	case StatusPending, StatusScheduled, StatusInProgress,
		StatusClientConfirmed, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// ===============================
// Validations
// ===============================

// CanCancel define se um agendamento pode ser cancelado
func CanCancel(current Status) error {
	if current == StatusCancelled || current == StatusCompleted {
		return httperr.ErrBusiness("invalid_state")
	}
	return nil
}

// CanComplete define se um agendamento pode ser concluído
func CanComplete(current Status) error {
	if !IsActive(current) {
		return httperr.ErrBusiness("invalid_state")
	}
	return nil
}

// InitialStatus valida status inicial
func InitialStatus() Status {
	return StatusScheduled
}
