package jsonstore

import (
	"context"

	"github.com/xavierca1/onbongo-leads/internal/entity"
)

type DeliveryLogRepository struct {
	store *Store
}

func (r *DeliveryLogRepository) Append(_ context.Context, l *entity.DeliveryLog) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	s.doc.Counters.DeliveryLogs++
	l.ID = s.doc.Counters.DeliveryLogs
	l.CreatedAt = s.now().UTC()

	s.doc.DeliveryLogs = append(s.doc.DeliveryLogs, *l)
	if err := s.flush(); err != nil {
		s.doc.DeliveryLogs = s.doc.DeliveryLogs[:len(s.doc.DeliveryLogs)-1]
		s.doc.Counters.DeliveryLogs--
		return err
	}
	return nil
}

// List devolve do mais novo para o mais antigo. Logs são append-only, então a ordem
// inversa de inserção já é a ordem por data.
func (r *DeliveryLogRepository) List(_ context.Context, f entity.DeliveryLogFilter) ([]entity.DeliveryLog, int, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	matched := make([]entity.DeliveryLog, 0)
	for i := len(s.doc.DeliveryLogs) - 1; i >= 0; i-- {
		l := s.doc.DeliveryLogs[i]
		if f.Matches(&l) {
			matched = append(matched, l)
		}
	}

	start, end := pageBounds(len(matched), f.Limit, f.Offset)
	return matched[start:end], len(matched), nil
}
