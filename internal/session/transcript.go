package session

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	askerrors "github.com/abdul-hamid-achik/ask/internal/errors"
	"github.com/abdul-hamid-achik/ask/internal/history"
)

const (
	// MaxTranscripts is the number of saved session transcripts to retain
	MaxTranscripts = 10
	// CurrentTranscriptLink is the symlink pointing at the latest transcript
	CurrentTranscriptLink = "current.json"
)

// Transcript is one saved interactive session
type Transcript struct {
	ID        string           `json:"id"`
	CreatedAt time.Time        `json:"created_at"`
	UpdatedAt time.Time        `json:"updated_at"`
	Model     string           `json:"model"`
	Records   []history.Record `json:"records"`
}

// TranscriptInfo summarizes a transcript for listing
type TranscriptInfo struct {
	ID          string
	CreatedAt   time.Time
	UpdatedAt   time.Time
	Model       string
	Preview     string
	RecordCount int
}

// Store persists session transcripts under ~/.ask/sessions. Saving is
// best-effort; the session loop never blocks on it.
type Store struct {
	dir     string
	current *Transcript
}

// NewStore creates a transcript store
func NewStore() (*Store, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get home directory: %w", err)
	}

	dir := filepath.Join(home, ".ask", "sessions")
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create sessions directory: %w", err)
	}

	return &Store{dir: dir}, nil
}

// Save writes the current session's records, starting a new transcript
// on first use.
func (s *Store) Save(records []history.Record, model string) error {
	if s.current == nil {
		s.current = &Transcript{
			ID:        uuid.NewString(),
			CreatedAt: time.Now(),
		}
	}

	s.current.Records = records
	s.current.Model = model
	s.current.UpdatedAt = time.Now()

	data, err := json.MarshalIndent(s.current, "", "  ")
	if err != nil {
		return askerrors.TranscriptSaveFailed(err)
	}

	if err := os.WriteFile(s.transcriptPath(s.current.ID), data, 0600); err != nil {
		return askerrors.TranscriptSaveFailed(err)
	}

	if err := s.updateCurrentLink(s.current.ID); err != nil {
		return askerrors.TranscriptSaveFailed(err)
	}

	s.cleanupOld()
	return nil
}

// Load reads a transcript by ID
func (s *Store) Load(id string) (*Transcript, error) {
	data, err := os.ReadFile(s.transcriptPath(id))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("transcript not found: %s", id)
		}
		return nil, fmt.Errorf("failed to read transcript: %w", err)
	}

	var t Transcript
	if err := json.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("failed to parse transcript: %w", err)
	}
	return &t, nil
}

// List returns saved transcripts, most recently updated first
func (s *Store) List() ([]TranscriptInfo, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read sessions directory: %w", err)
	}

	var infos []TranscriptInfo
	for _, entry := range entries {
		name := entry.Name()
		if !strings.HasSuffix(name, ".json") || name == CurrentTranscriptLink {
			continue
		}

		t, err := s.Load(strings.TrimSuffix(name, ".json"))
		if err != nil {
			continue // Skip corrupted transcripts
		}

		info := TranscriptInfo{
			ID:          t.ID,
			CreatedAt:   t.CreatedAt,
			UpdatedAt:   t.UpdatedAt,
			Model:       t.Model,
			RecordCount: len(t.Records),
		}
		if len(t.Records) > 0 {
			info.Preview = preview(t.Records[0].Prompt, 50)
		}
		infos = append(infos, info)
	}

	sort.Slice(infos, func(i, j int) bool {
		return infos[i].UpdatedAt.After(infos[j].UpdatedAt)
	})
	return infos, nil
}

func (s *Store) transcriptPath(id string) string {
	return filepath.Join(s.dir, id+".json")
}

func (s *Store) updateCurrentLink(id string) error {
	linkPath := filepath.Join(s.dir, CurrentTranscriptLink)
	_ = os.Remove(linkPath)
	return os.Symlink(id+".json", linkPath)
}

// cleanupOld removes transcripts beyond MaxTranscripts, best effort.
func (s *Store) cleanupOld() {
	infos, err := s.List()
	if err != nil || len(infos) <= MaxTranscripts {
		return
	}
	for i := MaxTranscripts; i < len(infos); i++ {
		_ = os.Remove(s.transcriptPath(infos[i].ID))
	}
}

func preview(text string, maxLen int) string {
	text = strings.TrimSpace(strings.ReplaceAll(text, "\n", " "))
	if len(text) <= maxLen {
		return text
	}
	return text[:maxLen-3] + "..."
}
