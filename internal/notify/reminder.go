// Package notify delivers the daily reading reminder. Delivery goes through
// Telegram, which plays the role of the external notification service; this
// package only decides when to fire and what to say.
package notify

import (
	"context"
	"fmt"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"readtrack/internal/settings"
)

// Sender sends a prepared message. Satisfied by *tgbotapi.BotAPI.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// StreakSource reports the user's current streak for the reminder text.
type StreakSource interface {
	CurrentStreak(ctx context.Context, userID string) (int, error)
}

// Reminder fires the daily reading reminder for one configured user/chat.
type Reminder struct {
	sender   Sender
	chatID   int64
	userID   string
	settings *settings.Service
	streaks  StreakSource
	logger   *zap.Logger

	now func() time.Time
}

// New creates a reminder bound to a Telegram chat.
func New(sender Sender, chatID int64, userID string, prefs *settings.Service, streaks StreakSource, logger *zap.Logger) *Reminder {
	return &Reminder{
		sender:   sender,
		chatID:   chatID,
		userID:   userID,
		settings: prefs,
		streaks:  streaks,
		logger:   logger,
		now:      time.Now,
	}
}

// NextTrigger returns the next occurrence of hh:mm strictly after now, in
// now's location: today when the time is still ahead, otherwise tomorrow.
func NextTrigger(now time.Time, hour, minute int) time.Time {
	next := time.Date(now.Year(), now.Month(), now.Day(), hour, minute, 0, 0, now.Location())
	if !next.After(now) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}

// Message builds the reminder text, mentioning the streak when one is
// alive.
func Message(currentStreak int) string {
	text := "📚 Reading time! Don't forget to update your reading progress."
	if currentStreak > 0 {
		text += fmt.Sprintf(" You're on a %d-day streak — keep it going!", currentStreak)
	}
	return text
}

// Run fires reminders until the context is cancelled. The schedule is
// re-read before every wait so toggling preferences takes effect at the
// next tick without a restart.
func (r *Reminder) Run(ctx context.Context) error {
	for {
		prefs, err := r.settings.Notifications(ctx, r.userID)
		if err != nil {
			return fmt.Errorf("failed to load reminder schedule: %w", err)
		}

		next := NextTrigger(r.now(), prefs.Hour, prefs.Minute)
		timer := time.NewTimer(next.Sub(r.now()))

		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}

		// Re-check: the user may have toggled reminders off while waiting.
		prefs, err = r.settings.Notifications(ctx, r.userID)
		if err != nil {
			return fmt.Errorf("failed to load reminder schedule: %w", err)
		}
		if !prefs.Enabled {
			continue
		}

		r.fire(ctx)
	}
}

func (r *Reminder) fire(ctx context.Context) {
	streak := 0
	if current, err := r.streaks.CurrentStreak(ctx, r.userID); err != nil {
		r.logger.Warn("failed to compute streak for reminder", zap.Error(err))
	} else {
		streak = current
	}

	msg := tgbotapi.NewMessage(r.chatID, Message(streak))
	if _, err := r.sender.Send(msg); err != nil {
		r.logger.Warn("failed to send reminder", zap.Error(err))
		return
	}
	r.logger.Info("reminder sent", zap.Int64("chat_id", r.chatID), zap.Int("streak", streak))
}
