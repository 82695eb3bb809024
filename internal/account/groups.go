package account

import (
	"context"
	"errors"
	"fmt"

	"github.com/PouryDev/support-telegram-account/internal/telegram"
)

// defaultGroupPermissions is the restrictive bundle applied to every created
// group: members can talk and post media/polls but cannot invite or touch the
// group info.
var defaultGroupPermissions = telegram.ChatPermissions{
	CanSendMessages:       true,
	CanSendMediaMessages:  true,
	CanSendOtherMessages:  true,
	CanSendPolls:          true,
	CanAddWebPagePreviews: true,
	CanPinMessages:        true,
	CanChangeInfo:         false,
	CanInviteUsers:        false,
}

// adminPrivileges is the maximal bundle granted on promotion.
var adminPrivileges = telegram.ChatPrivileges{
	CanManageChat:       true,
	CanDeleteMessages:   true,
	CanManageVideoChats: true,
	CanRestrictMembers:  true,
	CanPromoteMembers:   true,
	CanChangeInfo:       true,
	CanInviteUsers:      true,
	CanPinMessages:      true,
	CanPostMessages:     true,
	CanEditMessages:     true,
}

// CreateGroup creates a supergroup, sends the welcome message (pinned when
// requested), and applies the default permission bundle. Hiding pre-join
// history and creating the announcements topic are best-effort; their
// failures come back as warnings on the result.
func (s *Service) CreateGroup(ctx context.Context, title, description, welcomeText string, pin bool) (*GroupResult, error) {
	ctx, span := s.tracer.Start(ctx, "account.create_group")
	defer span.End()

	sess, err := s.sessions.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer sess.Close(ctx)

	chat, err := sess.CreateSupergroup(ctx, telegram.CreateSupergroupRequest{
		Title:       title,
		Description: description,
	})
	if err != nil {
		return nil, fmt.Errorf("create supergroup: %w", err)
	}

	if welcomeText != "" {
		msg, err := sess.SendMessage(ctx, telegram.SendMessageRequest{
			ChatID: chat.ID,
			Text:   welcomeText,
		})
		if err != nil {
			return nil, fmt.Errorf("send welcome message: %w", err)
		}
		if pin {
			if err := sess.PinChatMessage(ctx, telegram.PinChatMessageRequest{
				ChatID:    chat.ID,
				MessageID: msg.MessageID,
			}); err != nil {
				return nil, fmt.Errorf("pin welcome message: %w", err)
			}
		}
	}

	result := &GroupResult{Chat: *chat}

	if err := sess.SetChatPermissions(ctx, telegram.SetChatPermissionsRequest{
		ChatID:      chat.ID,
		Permissions: defaultGroupPermissions,
	}); err != nil {
		s.logger.Error("set group permissions failed", "chat_id", chat.ID, "error", err)
		result.Warnings = append(result.Warnings, fmt.Sprintf("set permissions: %v", err))
		return result, nil
	}

	if err := sess.TogglePreHistoryHidden(ctx, chat.ID, true); err != nil {
		s.logger.Error("hide pre-history failed", "chat_id", chat.ID, "error", err)
		result.Warnings = append(result.Warnings, fmt.Sprintf("hide pre-history: %v", err))
	}
	if err := sess.CreateForumTopic(ctx, chat.ID, "Announcements"); err != nil {
		s.logger.Error("create announcements topic failed", "chat_id", chat.ID, "error", err)
		result.Warnings = append(result.Warnings, fmt.Sprintf("create announcements topic: %v", err))
	}

	return result, nil
}

// Archive moves a group to the archive and revokes send permissions for every
// regular member. When the permission sweep fails the archival is rolled back
// best-effort and the operation reports failure.
func (s *Service) Archive(ctx context.Context, chatID int64) error {
	ctx, span := s.tracer.Start(ctx, "account.archive")
	defer span.End()

	sess, err := s.sessions.Acquire(ctx)
	if err != nil {
		return err
	}
	defer sess.Close(ctx)

	if err := sess.ArchiveChats(ctx, chatID); err != nil {
		return fmt.Errorf("archive chat: %w", err)
	}

	if err := s.sweepPermissions(ctx, sess, chatID, false); err != nil {
		if rbErr := sess.UnarchiveChats(ctx, chatID); rbErr != nil {
			s.logger.Error("unarchive rollback failed", "chat_id", chatID, "error", rbErr)
		}
		return fmt.Errorf("revoke member permissions: %w", err)
	}

	return nil
}

// Unarchive moves a group out of the archive and grants back default send
// permissions. A failure during the restore sweep does not fail the
// operation; it is reported as a warning.
func (s *Service) Unarchive(ctx context.Context, chatID int64) ([]string, error) {
	ctx, span := s.tracer.Start(ctx, "account.unarchive")
	defer span.End()

	sess, err := s.sessions.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer sess.Close(ctx)

	if err := sess.UnarchiveChats(ctx, chatID); err != nil {
		return nil, fmt.Errorf("unarchive chat: %w", err)
	}

	var warnings []string
	if err := s.sweepPermissions(ctx, sess, chatID, true); err != nil {
		s.logger.Error("permission restore sweep failed", "chat_id", chatID, "error", err)
		warnings = append(warnings, fmt.Sprintf("restore permissions: %v", err))
	}

	return warnings, nil
}

// sweepPermissions sets the three-flag send bundle for every non-admin,
// non-owner member of a chat, in enumeration order. The sweep stops at the
// first per-member failure; members already processed keep their new value.
func (s *Service) sweepPermissions(ctx context.Context, sess *telegram.Session, chatID int64, canSend bool) error {
	members, err := sess.GetChatMembers(ctx, chatID)
	if err != nil {
		return fmt.Errorf("enumerate members: %w", err)
	}

	for _, member := range members {
		if member.Status == telegram.MemberStatusAdministrator || member.Status == telegram.MemberStatusOwner {
			continue
		}
		err := sess.RestrictChatMember(ctx, telegram.RestrictChatMemberRequest{
			ChatID: chatID,
			UserID: member.User.ID,
			Permissions: telegram.ChatPermissions{
				CanSendMessages:       canSend,
				CanSendMediaMessages:  canSend,
				CanAddWebPagePreviews: canSend,
			},
		})
		if err != nil {
			s.logger.Error("change member permissions failed",
				"chat_id", chatID,
				"user_id", member.User.ID,
				"error", err,
			)
			return fmt.Errorf("restrict member %d: %w", member.User.ID, err)
		}
	}

	return nil
}

// AddMembers adds the given user references to a chat in one bulk call.
// Known protocol failures only fail the operation when exactly one user was
// requested; bulk adds with partial failures still report success. That
// asymmetry mirrors the panel's established expectations.
func (s *Service) AddMembers(ctx context.Context, chatID int64, userIDs []string) error {
	ctx, span := s.tracer.Start(ctx, "account.add_members")
	defer span.End()

	sess, err := s.sessions.Acquire(ctx)
	if err != nil {
		return err
	}
	defer sess.Close(ctx)

	err = sess.AddChatMembers(ctx, telegram.AddChatMembersRequest{
		ChatID:  chatID,
		UserIDs: NormalizeMemberIDs(userIDs),
	})
	if err != nil {
		var apiErr *telegram.APIError
		if !errors.As(err, &apiErr) {
			return fmt.Errorf("add members: %w", err)
		}
		s.logger.Error("add members failed", "chat_id", chatID, "error", err)
		if len(userIDs) == 1 {
			return fmt.Errorf("add members: %w", err)
		}
	}

	return nil
}

// Ban bans a member from a chat.
func (s *Service) Ban(ctx context.Context, chatID, userID int64) error {
	sess, err := s.sessions.Acquire(ctx)
	if err != nil {
		return err
	}
	defer sess.Close(ctx)

	if err := sess.BanChatMember(ctx, chatID, userID); err != nil {
		return fmt.Errorf("ban member: %w", err)
	}
	return nil
}

// Unban lifts a ban from a chat member.
func (s *Service) Unban(ctx context.Context, chatID, userID int64) error {
	sess, err := s.sessions.Acquire(ctx)
	if err != nil {
		return err
	}
	defer sess.Close(ctx)

	if err := sess.UnbanChatMember(ctx, chatID, userID); err != nil {
		return fmt.Errorf("unban member: %w", err)
	}
	return nil
}

// Promote grants the maximal admin privilege bundle to a member.
func (s *Service) Promote(ctx context.Context, chatID int64, userID string) error {
	sess, err := s.sessions.Acquire(ctx)
	if err != nil {
		return err
	}
	defer sess.Close(ctx)

	err = sess.PromoteChatMember(ctx, telegram.PromoteChatMemberRequest{
		ChatID:     chatID,
		UserID:     userID,
		Privileges: adminPrivileges,
	})
	if err != nil {
		return fmt.Errorf("promote member: %w", err)
	}
	return nil
}

// Groups lists the account's groups and supergroups. An enumeration failure
// yields an empty list rather than an error; the panel treats the sync as
// advisory.
func (s *Service) Groups(ctx context.Context) ([]Group, error) {
	ctx, span := s.tracer.Start(ctx, "account.groups")
	defer span.End()

	sess, err := s.sessions.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer sess.Close(ctx)

	dialogs, err := sess.GetDialogs(ctx)
	if err != nil {
		s.logger.Error("enumerate dialogs failed", "error", err)
		return []Group{}, nil
	}

	groups := make([]Group, 0, len(dialogs))
	for _, dialog := range dialogs {
		chat := dialog.Chat
		if chat.Type != telegram.ChatTypeGroup && chat.Type != telegram.ChatTypeSupergroup {
			continue
		}
		groups = append(groups, Group{
			ID:          chat.ID,
			Title:       chat.Title,
			Description: chat.Description,
		})
	}

	return groups, nil
}

// Contacts lists the account's contacts.
func (s *Service) Contacts(ctx context.Context) ([]telegram.Contact, error) {
	sess, err := s.sessions.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer sess.Close(ctx)

	contacts, err := sess.GetContacts(ctx)
	if err != nil {
		return nil, fmt.Errorf("enumerate contacts: %w", err)
	}
	return contacts, nil
}

// InviteLink creates a fresh invite link for a chat. It returns an empty
// string on any failure; callers treat the link as best-effort decoration.
func (s *Service) InviteLink(ctx context.Context, chatID int64) string {
	sess, err := s.sessions.Acquire(ctx)
	if err != nil {
		s.logger.Error("invite link session failed", "chat_id", chatID, "error", err)
		return ""
	}
	defer sess.Close(ctx)

	link, err := sess.CreateChatInviteLink(ctx, chatID)
	if err != nil {
		s.logger.Error("create invite link failed", "chat_id", chatID, "error", err)
		return ""
	}
	return link.InviteLink
}

// RevokeInviteLinks revokes every non-revoked invite link the account itself
// created on the chat. Per-link failures are collected as warnings and do not
// stop the sweep.
func (s *Service) RevokeInviteLinks(ctx context.Context, chatID int64) ([]string, error) {
	ctx, span := s.tracer.Start(ctx, "account.revoke_invite_links")
	defer span.End()

	sess, err := s.sessions.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer sess.Close(ctx)

	me, err := sess.GetMe(ctx)
	if err != nil {
		return nil, fmt.Errorf("resolve own identity: %w", err)
	}

	links, err := sess.GetChatAdminInviteLinks(ctx, chatID, me.ID)
	if err != nil {
		return nil, fmt.Errorf("enumerate invite links: %w", err)
	}

	var warnings []string
	for _, link := range links {
		if link.IsRevoked {
			continue
		}
		if err := sess.RevokeChatInviteLink(ctx, chatID, link.InviteLink); err != nil {
			s.logger.Error("revoke invite link failed", "chat_id", chatID, "error", err)
			warnings = append(warnings, fmt.Sprintf("revoke %s: %v", link.InviteLink, err))
		}
	}

	return warnings, nil
}
