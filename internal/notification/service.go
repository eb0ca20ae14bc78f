package notification

import (
	"context"
	"log"
	"strings"
	"sync"
	"time"

	authrepo "taskpulse-backend/internal/auth/repository"
	"taskpulse-backend/internal/reminder"
	"taskpulse-backend/pkg/fcm"
)

// Sender delivers one message to a set of device tokens and reports the
// tokens that failed. *fcm.Client satisfies this.
type Sender interface {
	SendToDevices(ctx context.Context, tokens []string, msg fcm.Message) ([]string, error)
}

// Service holds the set of reminders the scheduler has installed and fires
// each one as a push notification when its time arrives. It is a dumb
// installer: the scheduler owns identifiers and list composition.
type Service struct {
	sender    Sender
	tokenRepo authrepo.DeviceTokenRepository
	interval  time.Duration

	mu      sync.Mutex
	pending map[string]reminder.Request
	// delivered remembers identifier -> fire time for reminders that
	// already went out, so re-installing the identical request after a
	// re-sync does not fire it twice.
	delivered map[string]time.Time

	stopChan chan struct{}
}

func NewService(sender Sender, tokenRepo authrepo.DeviceTokenRepository, interval time.Duration) *Service {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	return &Service{
		sender:    sender,
		tokenRepo: tokenRepo,
		interval:  interval,
		pending:   make(map[string]reminder.Request),
		delivered: make(map[string]time.Time),
		stopChan:  make(chan struct{}),
	}
}

// Authorized reports whether push delivery can reach the user: FCM must
// be configured and the user must hold at least one registered device
// token. When it fails, the scheduler still runs its bookkeeping but
// installs nothing.
func (s *Service) Authorized(_ context.Context, userID string) bool {
	if s.sender == nil {
		return false
	}
	tokens, err := s.tokenRepo.GetTokensByUserID(userID)
	if err != nil {
		log.Printf("[Notification] Failed to load tokens for user %s: %v", userID, err)
		return false
	}
	return len(tokens) > 0
}

// CancelAll removes every pending reminder in the given identifier
// namespace.
func (s *Service) CancelAll(_ context.Context, identifierPrefix string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id := range s.pending {
		if strings.HasPrefix(id, identifierPrefix) {
			delete(s.pending, id)
		}
	}
}

// Schedule installs one reminder, replacing any pending entry with the
// same identifier. A reminder that already fired at the same instant is
// not re-armed.
func (s *Service) Schedule(_ context.Context, req reminder.Request) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if firedAt, ok := s.delivered[req.Identifier]; ok {
		if firedAt.Equal(req.FireAt) {
			return nil
		}
		delete(s.delivered, req.Identifier)
	}
	s.pending[req.Identifier] = req
	return nil
}

// Start begins the dispatch loop.
func (s *Service) Start() {
	log.Printf("[Notification] Dispatcher started (interval: %s)", s.interval)
	go func() {
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				s.dispatch(time.Now())
			case <-s.stopChan:
				log.Println("[Notification] Dispatcher stopped")
				return
			}
		}
	}()
}

// Stop halts the dispatch loop.
func (s *Service) Stop() {
	close(s.stopChan)
}

// dispatch fires every pending reminder whose time has come.
func (s *Service) dispatch(now time.Time) {
	s.mu.Lock()
	var due []reminder.Request
	for id, req := range s.pending {
		if !req.FireAt.After(now) {
			due = append(due, req)
			delete(s.pending, id)
		}
	}
	cutoff := now.Add(-24 * time.Hour)
	for id, firedAt := range s.delivered {
		if firedAt.Before(cutoff) {
			delete(s.delivered, id)
		}
	}
	s.mu.Unlock()

	for _, req := range due {
		s.deliver(req)
		s.mu.Lock()
		s.delivered[req.Identifier] = req.FireAt
		s.mu.Unlock()
	}
}

func (s *Service) deliver(req reminder.Request) {
	if s.sender == nil {
		return
	}

	tokens, err := s.tokenRepo.GetTokensByUserID(req.UserID)
	if err != nil {
		log.Printf("[Notification] Failed to load tokens for user %s: %v", req.UserID, err)
		return
	}
	if len(tokens) == 0 {
		return
	}

	tokenStrings := make([]string, 0, len(tokens))
	for _, t := range tokens {
		tokenStrings = append(tokenStrings, t.Token)
	}

	msg := fcm.Message{
		Title: req.Title,
		Body:  req.Body,
		Data: map[string]string{
			"type":    "task_reminder",
			"task_id": req.TaskID,
		},
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	failedTokens, err := s.sender.SendToDevices(ctx, tokenStrings, msg)
	if err != nil {
		log.Printf("[Notification] Failed to deliver %s: %v", req.Identifier, err)
		return
	}
	for _, token := range failedTokens {
		_ = s.tokenRepo.DeleteToken(token)
	}
}
