package chat

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Mayur-Rahangdale245/Smart-Crop-Advisory/internal/advisory"
	"github.com/Mayur-Rahangdale245/Smart-Crop-Advisory/internal/model/chat"
)

var (
	ErrDistrictRequired = errors.New("district is required")
	ErrSessionNotFound  = errors.New("session not found")
)

// Service encapsulates conversation state management.
type Service struct {
	mu        sync.RWMutex
	sessions  map[string]chat.Session
	messages  map[string][]chat.Message
	languages advisory.Languages
}

// NewService bootstraps the in-memory chat service. The first language is the
// session default; with none given only English is accepted.
func NewService(languages ...advisory.LanguageCode) *Service {
	return &Service{
		sessions:  make(map[string]chat.Session),
		messages:  make(map[string][]chat.Message),
		languages: advisory.NewLanguages(languages...),
	}
}

// CreateSession provisions an anonymous session for a district. An empty
// language selects the default.
func (s *Service) CreateSession(_ context.Context, district string, lang advisory.LanguageCode) (chat.Session, error) {
	district = strings.TrimSpace(district)
	if district == "" {
		return chat.Session{}, ErrDistrictRequired
	}
	lang, err := s.languages.Resolve(lang)
	if err != nil {
		return chat.Session{}, err
	}

	session := chat.Session{
		ID:        uuid.NewString(),
		District:  district,
		Language:  lang,
		CreatedAt: time.Now().UTC(),
	}

	s.mu.Lock()
	s.sessions[session.ID] = session
	s.messages[session.ID] = make([]chat.Message, 0, 16)
	s.mu.Unlock()

	return session, nil
}

// GetSession retrieves a session by identifier.
func (s *Service) GetSession(_ context.Context, sessionID string) (chat.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[sessionID]
	if !ok {
		return chat.Session{}, ErrSessionNotFound
	}
	return cloneSession(session), nil
}

// SetLanguage switches the reply language of a session.
func (s *Service) SetLanguage(_ context.Context, sessionID string, lang advisory.LanguageCode) (chat.Session, error) {
	lang, err := s.languages.Resolve(lang)
	if err != nil {
		return chat.Session{}, err
	}
	return s.update(sessionID, func(session *chat.Session) { session.Language = lang })
}

// SetDistrict moves a session to another district.
func (s *Service) SetDistrict(_ context.Context, sessionID, district string) (chat.Session, error) {
	district = strings.TrimSpace(district)
	if district == "" {
		return chat.Session{}, ErrDistrictRequired
	}
	return s.update(sessionID, func(session *chat.Session) { session.District = district })
}

// SetSoil stores the farmer's own soil test. A nil reading clears it.
func (s *Service) SetSoil(_ context.Context, sessionID string, soil *advisory.SoilReading) (chat.Session, error) {
	var stored *advisory.SoilReading
	if soil != nil {
		clamped := soil.Clamped()
		stored = &clamped
	}
	return s.update(sessionID, func(session *chat.Session) { session.Soil = stored })
}

func (s *Service) update(sessionID string, apply func(*chat.Session)) (chat.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[sessionID]
	if !ok {
		return chat.Session{}, ErrSessionNotFound
	}
	apply(&session)
	s.sessions[sessionID] = session
	return cloneSession(session), nil
}

// SaveMessage appends a message to the session history and returns it with
// its identifier assigned.
func (s *Service) SaveMessage(_ context.Context, message chat.Message) (chat.Message, error) {
	if message.SessionID == "" {
		return chat.Message{}, ErrSessionNotFound
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[message.SessionID]; !ok {
		return chat.Message{}, ErrSessionNotFound
	}

	message.ID = uuid.NewString()
	if message.CreatedAt.IsZero() {
		message.CreatedAt = time.Now().UTC()
	}

	s.messages[message.SessionID] = append(s.messages[message.SessionID], message)
	return message, nil
}

// LoadTranscript returns stored messages for the provided session.
func (s *Service) LoadTranscript(_ context.Context, sessionID string) ([]chat.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	messages, ok := s.messages[sessionID]
	if !ok {
		return nil, ErrSessionNotFound
	}

	copied := make([]chat.Message, len(messages))
	copy(copied, messages)
	return copied, nil
}

func cloneSession(session chat.Session) chat.Session {
	if session.Soil != nil {
		soil := *session.Soil
		session.Soil = &soil
	}
	return session
}
