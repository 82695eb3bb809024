package account

import (
	"context"
	"fmt"

	"github.com/PouryDev/support-telegram-account/internal/telegram"
)

// Send delivers a markdown message to a single chat and optionally pins it.
// chatID is a numeric id or an "@handle" reference. A pin failure after a
// successful send fails the whole call; the caller records the chat as
// skipped either way.
func (s *Service) Send(ctx context.Context, chatID any, text string, pin bool) (*telegram.Message, error) {
	ctx, span := s.tracer.Start(ctx, "account.send")
	defer span.End()

	sess, err := s.sessions.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer sess.Close(ctx)

	msg, err := sess.SendMessage(ctx, telegram.SendMessageRequest{
		ChatID:    chatID,
		Text:      text,
		ParseMode: "markdown",
	})
	if err != nil {
		return nil, fmt.Errorf("send message: %w", err)
	}

	if pin {
		if err := sess.PinChatMessage(ctx, telegram.PinChatMessageRequest{
			ChatID:    msg.Chat.ID,
			MessageID: msg.MessageID,
		}); err != nil {
			return nil, fmt.Errorf("pin message: %w", err)
		}
	}

	return msg, nil
}

// Edit replaces the text of a previously sent message.
func (s *Service) Edit(ctx context.Context, chatID, messageID int64, text string) error {
	sess, err := s.sessions.Acquire(ctx)
	if err != nil {
		return err
	}
	defer sess.Close(ctx)

	err = sess.EditMessageText(ctx, telegram.EditMessageTextRequest{
		ChatID:    chatID,
		MessageID: messageID,
		Text:      text,
	})
	if err != nil {
		return fmt.Errorf("edit message: %w", err)
	}
	return nil
}

// Delete removes a message from a chat.
func (s *Service) Delete(ctx context.Context, chatID, messageID int64) error {
	sess, err := s.sessions.Acquire(ctx)
	if err != nil {
		return err
	}
	defer sess.Close(ctx)

	if err := sess.DeleteMessages(ctx, chatID, messageID); err != nil {
		return fmt.Errorf("delete message: %w", err)
	}
	return nil
}
