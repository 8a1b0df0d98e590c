package notify

import (
	"context"
	"fmt"

	"github.com/goodgood52099-bit/XFWH-BOT/internal/domain"
	"github.com/goodgood52099-bit/XFWH-BOT/pkg/metrics"
)

// Service рассылка сообщений по группам с указанной ролью
// Сбой доставки одному получателю логируется и не прерывает рассылку остальным
type Service struct {
	groups  GroupLister
	bot     BotClient
	metrics *metrics.Metrics
	log     Logger
}

// NewService создает новый экземпляр сервиса рассылки
func NewService(groups GroupLister, bot BotClient, m *metrics.Metrics, log Logger) *Service {
	return &Service{groups: groups, bot: bot, metrics: m, log: log}
}

// BroadcastToRole отправляет текст во все группы с указанной ролью
// Возвращает количество успешных доставок
func (s *Service) BroadcastToRole(ctx context.Context, role domain.GroupRole, text string, buttons domain.ButtonGrid) (int, error) {
	groups, err := s.groups.ListByRole(ctx, role)
	if err != nil {
		s.log.Error("BroadcastToRole: failed to list groups role=%s: %v", role, err)
		return 0, fmt.Errorf("%w: BroadcastToRole - list groups: %v", ErrInternal, err)
	}

	delivered := 0
	for _, g := range groups {
		if s.metrics != nil {
			s.metrics.BroadcastsTotal.WithLabelValues(string(role)).Inc()
		}
		if err := s.bot.SendMessage(ctx, g.ChatID, text, buttons); err != nil {
			if s.metrics != nil {
				s.metrics.BroadcastFailuresTotal.WithLabelValues(string(role)).Inc()
			}
			s.log.Error("BroadcastToRole: delivery failed role=%s chat=%d: %v", role, g.ChatID, err)
			continue
		}
		delivered++
	}

	s.log.Info("BroadcastToRole: role=%s delivered=%d of %d", role, delivered, len(groups))
	return delivered, nil
}
