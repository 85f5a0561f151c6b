package jsonstore

import (
	"context"
	"sort"
	"time"

	"github.com/xavierca1/onbongo-leads/internal/entity"
)

type LeadRepository struct {
	store *Store
}

func (r *LeadRepository) Create(_ context.Context, lead *entity.Lead) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now().UTC()
	s.doc.Counters.Leads++

	lead.ID = s.doc.Counters.Leads
	lead.WebhookDelivered = false
	lead.ConversionReported = false
	lead.CreatedAt = now
	lead.UpdatedAt = now

	s.doc.Leads = append(s.doc.Leads, *lead)
	if err := s.flush(); err != nil {
		s.doc.Leads = s.doc.Leads[:len(s.doc.Leads)-1]
		s.doc.Counters.Leads--
		return err
	}
	return nil
}

func (r *LeadRepository) FindByID(_ context.Context, id int64) (*entity.Lead, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	if i := r.indexOf(id); i >= 0 {
		lead := s.doc.Leads[i]
		return &lead, nil
	}
	return nil, entity.ErrLeadNotFound
}

func (r *LeadRepository) List(_ context.Context, limit, offset int) ([]entity.Lead, int, error) {
	s := r.store
	s.mu.RLock()
	sorted := make([]entity.Lead, len(s.doc.Leads))
	copy(sorted, s.doc.Leads)
	s.mu.RUnlock()

	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].CreatedAt.Equal(sorted[j].CreatedAt) {
			return sorted[i].ID > sorted[j].ID
		}
		return sorted[i].CreatedAt.After(sorted[j].CreatedAt)
	})

	start, end := pageBounds(len(sorted), limit, offset)
	return sorted[start:end], len(sorted), nil
}

func (r *LeadRepository) SetWebhookDelivered(_ context.Context, id int64, delivered bool) error {
	return r.update(id, func(l *entity.Lead) bool {
		if l.WebhookDelivered == delivered {
			return false
		}
		l.WebhookDelivered = delivered
		return true
	})
}

func (r *LeadRepository) SetConversionReported(_ context.Context, id int64, reported bool) error {
	return r.update(id, func(l *entity.Lead) bool {
		if l.ConversionReported == reported {
			return false
		}
		l.ConversionReported = reported
		return true
	})
}

// update aplica fn sob o lock de escrita; lead inexistente é ignorado.
func (r *LeadRepository) update(id int64, fn func(*entity.Lead) bool) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	i := r.indexOf(id)
	if i < 0 {
		return nil
	}

	before := s.doc.Leads[i]
	if !fn(&s.doc.Leads[i]) {
		return nil
	}
	s.doc.Leads[i].UpdatedAt = s.now().UTC()

	if err := s.flush(); err != nil {
		s.doc.Leads[i] = before
		return err
	}
	return nil
}

func (r *LeadRepository) Stats(_ context.Context, now time.Time) (*entity.LeadStats, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	y, m, d := now.Date()
	dayStart := time.Date(y, m, d, 0, 0, 0, 0, now.Location())

	stats := &entity.LeadStats{ByKind: map[entity.LeadKind]int{}}
	for _, l := range s.doc.Leads {
		stats.TotalLeads++
		stats.ByKind[l.Kind]++
		if !l.CreatedAt.Before(dayStart) {
			stats.LeadsToday++
		}
		if l.WebhookDelivered {
			stats.WebhookDelivered++
		}
		if l.ConversionReported {
			stats.ConversionReported++
		}
	}
	return stats, nil
}

// indexOf exige s.mu travado.
func (r *LeadRepository) indexOf(id int64) int {
	for i := range r.store.doc.Leads {
		if r.store.doc.Leads[i].ID == id {
			return i
		}
	}
	return -1
}
