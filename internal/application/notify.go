package application

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/codecraftkids/codecraft-api/internal/domain/entity"
	"github.com/codecraftkids/codecraft-api/pkg/mailer"
	"github.com/codecraftkids/codecraft-api/pkg/mailer/templates"
)

func (s *Service) sendWelcome(ctx context.Context, u *entity.User) {
	data := templates.NewData(s.AppName, s.AppURL, u.Name, u.Email, templates.WithTime(s.now()))
	s.publish(ctx, u, templates.Welcome, data)
}

func (s *Service) sendBadgeEarned(ctx context.Context, u *entity.User, b *entity.Badge) {
	data := templates.NewData(s.AppName, s.AppURL, u.Name, u.Email,
		templates.WithTime(b.EarnedAt),
		templates.WithBadge(b.Level, b.Name, b.Icon, b.Description, len(u.Badges)),
	)
	s.publish(ctx, u, templates.BadgeEarned, data)
}

// publish queues an email job. Failures are logged and never reach the caller.
func (s *Service) publish(ctx context.Context, u *entity.User, tmpl string, data templates.EmailData) {
	if s.Mail == nil {
		return
	}
	job := mailer.EmailJob{
		To:       u.Email,
		Template: tmpl,
		Data:     templates.ToMap(data),
	}
	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := s.Mail.PublishJSON(c, job); err != nil {
		s.warn("email enqueue failed", err, logrus.Fields{"user_id": u.ID, "template": tmpl})
	}
}
