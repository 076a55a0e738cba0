package services

import (
	"context"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/cashora/backend/internal/config"
	"github.com/cashora/backend/internal/logging"
	"github.com/cashora/backend/internal/metrics"
	"github.com/cashora/backend/internal/models"
	"github.com/cashora/backend/internal/store"
	"go.uber.org/zap"
)

const (
	supportGreeting = "Hello! How can I help you today? You can ask me about:\n- Deposits & Withdrawals\n- Sending Money\n- Account Security\n- Transaction Limits\n- Fees\n- Contact Information"
	supportFallback = "I'll connect you with a support agent who can help you with that specific issue."

	fallbackTopic = "agent"
)

// cannedReplies is searched in order; the first keyword contained in the
// lowercased message wins.
var cannedReplies = []struct {
	keyword string
	reply   string
}{
	{"deposit", "To make a deposit, go to the Deposit tab and follow these steps:\n1. Enter the amount\n2. Upload proof of payment\n3. Submit the form"},
	{"withdraw", "To withdraw funds:\n1. Go to the Withdraw tab\n2. Enter the amount\n3. Select your withdrawal method\n4. Confirm the transaction"},
	{"send money", "To send money to another user:\n1. Go to the Send Money tab\n2. Enter the recipient's email or username\n3. Enter the amount\n4. Confirm the transaction"},
	{"account", "To manage your account:\n1. Click on your profile icon\n2. Update your information\n3. Enable 2FA for extra security"},
	{"contact", "You can reach our support team:\n- Email: support@cashora.com\n- Phone: 1-800-CASHORA\n- Live chat: Available 24/7"},
	{"fees", "Our fee structure:\n- Deposits: Free\n- Withdrawals: 1%\n- Money transfers: 0.5%"},
	{"security", "We take security seriously:\n- 2FA authentication\n- End-to-end encryption\n- Regular security audits"},
	{"limits", "Transaction limits:\n- Minimum deposit: $10\n- Maximum withdrawal: $10,000/day\n- Transfer limit: $5,000/day"},
}

// MatchReply returns the topic and canned reply for text.
func MatchReply(text string) (topic, reply string) {
	lower := strings.ToLower(text)
	for _, c := range cannedReplies {
		if strings.Contains(lower, c.keyword) {
			return c.keyword, c.reply
		}
	}
	return fallbackTopic, supportFallback
}

// SendMessageRequest is the chat input
// @Description Support chat message
type SendMessageRequest struct {
	Text string `json:"text" validate:"required" example:"How do I make a deposit?"`
}

// SupportExchange is one user message and the bot's answer
type SupportExchange struct {
	Message models.ChatMessage `json:"message"`
	Reply   models.ChatMessage `json:"reply"`
}

type SupportService struct {
	chats   store.ChatStore
	config  *config.SupportConfig
	metrics metrics.Collector
	log     *logging.Logger
	now     func() time.Time

	mu    sync.Mutex
	locks map[int]*sync.Mutex
}

func NewSupportService(chats store.ChatStore, cfg *config.SupportConfig, collector metrics.Collector) *SupportService {
	if collector == nil {
		collector = metrics.NoOpCollector{}
	}
	return &SupportService{
		chats:   chats,
		config:  cfg,
		metrics: collector,
		log:     logging.L().Named("support"),
		now:     time.Now,
		locks:   make(map[int]*sync.Mutex),
	}
}

func (s *SupportService) userLock(userID int) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()

	l, ok := s.locks[userID]
	if !ok {
		l = &sync.Mutex{}
		s.locks[userID] = l
	}
	return l
}

// History returns the conversation, opening it with the greeting if it is
// empty.
func (s *SupportService) History(ctx context.Context, userID int) ([]models.ChatMessage, error) {
	l := s.userLock(userID)
	l.Lock()
	defer l.Unlock()

	history, err := s.chats.History(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(history) > 0 {
		return history, nil
	}

	greeting := models.ChatMessage{ID: 1, Text: supportGreeting, Sender: models.SenderSupport, Timestamp: s.now()}
	if err := s.chats.Append(ctx, userID, greeting); err != nil {
		return nil, err
	}
	return []models.ChatMessage{greeting}, nil
}

// Send stores the user's message, waits the configured reply delay and
// stores the canned answer. Cancelling ctx during the delay drops the reply.
func (s *SupportService) Send(ctx context.Context, userID int, text string) (SupportExchange, error) {
	if strings.TrimSpace(text) == "" {
		return SupportExchange{}, models.ErrEmptyMessage
	}
	if s.config.MaxMessageLen > 0 && utf8.RuneCountInString(text) > s.config.MaxMessageLen {
		return SupportExchange{}, models.ErrMessageTooLong
	}

	msg, err := s.append(ctx, userID, models.SenderUser, text)
	if err != nil {
		return SupportExchange{}, err
	}

	topic, answer := MatchReply(text)
	s.metrics.ChatMessage(topic)
	s.log.Debug("support question", zap.Int("user_id", userID), zap.String("topic", topic))

	if s.config.ReplyDelay > 0 {
		timer := time.NewTimer(s.config.ReplyDelay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return SupportExchange{}, ctx.Err()
		case <-timer.C:
		}
	}

	reply, err := s.append(ctx, userID, models.SenderSupport, answer)
	if err != nil {
		return SupportExchange{}, err
	}
	return SupportExchange{Message: msg, Reply: reply}, nil
}

func (s *SupportService) append(ctx context.Context, userID int, sender models.Sender, text string) (models.ChatMessage, error) {
	l := s.userLock(userID)
	l.Lock()
	defer l.Unlock()

	history, err := s.chats.History(ctx, userID)
	if err != nil {
		return models.ChatMessage{}, err
	}

	nextID := 1
	if len(history) == 0 {
		greeting := models.ChatMessage{ID: 1, Text: supportGreeting, Sender: models.SenderSupport, Timestamp: s.now()}
		if err := s.chats.Append(ctx, userID, greeting); err != nil {
			return models.ChatMessage{}, err
		}
		nextID = 2
	} else {
		nextID = history[len(history)-1].ID + 1
	}

	msg := models.ChatMessage{ID: nextID, Text: text, Sender: sender, Timestamp: s.now()}
	if err := s.chats.Append(ctx, userID, msg); err != nil {
		return models.ChatMessage{}, err
	}
	return msg, nil
}

func (s *SupportService) Reset(ctx context.Context, userID int) error {
	l := s.userLock(userID)
	l.Lock()
	defer l.Unlock()

	return s.chats.Reset(ctx, userID)
}
