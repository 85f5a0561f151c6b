package jsonstore

import (
	"context"
	"sort"

	"github.com/xavierca1/onbongo-leads/internal/entity"
)

type SettingRepository struct {
	store *Store
}

func (r *SettingRepository) Get(_ context.Context, key string) (string, bool, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, st := range s.doc.Settings {
		if st.Key == key {
			return st.Value, true, nil
		}
	}
	return "", false, nil
}

func (r *SettingRepository) All(_ context.Context) ([]entity.Setting, error) {
	s := r.store
	s.mu.RLock()
	out := make([]entity.Setting, len(s.doc.Settings))
	copy(out, s.doc.Settings)
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}

func (r *SettingRepository) Set(_ context.Context, key, value string) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.doc.Settings {
		if s.doc.Settings[i].Key == key {
			old := s.doc.Settings[i].Value
			s.doc.Settings[i].Value = value
			if err := s.flush(); err != nil {
				s.doc.Settings[i].Value = old
				return err
			}
			return nil
		}
	}

	s.doc.Settings = append(s.doc.Settings, entity.Setting{Key: key, Value: value})
	if err := s.flush(); err != nil {
		s.doc.Settings = s.doc.Settings[:len(s.doc.Settings)-1]
		return err
	}
	return nil
}
