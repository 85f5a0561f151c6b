// Package jsonstore guarda leads, settings e logs de entrega num único arquivo JSON.
// É o modo padrão quando DATABASE_URL não está configurado.
package jsonstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/xavierca1/onbongo-leads/internal/entity"
)

type counters struct {
	Leads        int64 `json:"leads"`
	DeliveryLogs int64 `json:"delivery_logs"`
}

type document struct {
	Leads        []entity.Lead        `json:"leads"`
	Settings     []entity.Setting     `json:"settings"`
	DeliveryLogs []entity.DeliveryLog `json:"delivery_logs"`
	Counters     counters             `json:"counters"`
}

// Store serializa todas as escritas com um mutex e regrava o arquivo inteiro a cada mudança.
type Store struct {
	path string
	now  func() time.Time

	mu  sync.RWMutex
	doc document
}

// Open carrega o arquivo (ou cria um novo) e completa as settings padrão que faltarem.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("erro ao criar diretório de dados: %w", err)
	}

	s := &Store{path: path, now: time.Now}

	raw, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("erro ao ler %s: %w", path, err)
	default:
		if err := json.Unmarshal(raw, &s.doc); err != nil {
			return nil, fmt.Errorf("arquivo de dados corrompido (%s): %w", path, err)
		}
	}

	s.seedSettings()

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.flush(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) seedSettings() {
	existing := make(map[string]bool, len(s.doc.Settings))
	for _, st := range s.doc.Settings {
		existing[st.Key] = true
	}
	for _, def := range entity.DefaultSettings() {
		if !existing[def.Key] {
			s.doc.Settings = append(s.doc.Settings, def)
		}
	}
}

// Ping confirma que o arquivo continua legível (usado pelo /health).
func (s *Store) Ping(_ context.Context) error {
	_, err := os.Stat(s.path)
	return err
}

func (s *Store) Leads() *LeadRepository {
	return &LeadRepository{store: s}
}

func (s *Store) Settings() *SettingRepository {
	return &SettingRepository{store: s}
}

func (s *Store) DeliveryLogs() *DeliveryLogRepository {
	return &DeliveryLogRepository{store: s}
}

// flush exige s.mu travado para escrita. Escreve num temporário e renomeia.
func (s *Store) flush() error {
	raw, err := json.MarshalIndent(s.doc, "", "  ")
	if err != nil {
		return fmt.Errorf("erro ao serializar dados: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o644); err != nil {
		return fmt.Errorf("erro ao gravar %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("erro ao substituir %s: %w", s.path, err)
	}
	return nil
}

func pageBounds(total, limit, offset int) (int, int) {
	if offset < 0 {
		offset = 0
	}
	if offset > total {
		offset = total
	}
	end := total
	if limit > 0 && offset+limit < total {
		end = offset + limit
	}
	return offset, end
}
