package telegram

import "fmt"

// Chat types reported by the bridge.
const (
	ChatTypeGroup      = "group"
	ChatTypeSupergroup = "supergroup"
	ChatTypePrivate    = "private"
	ChatTypeChannel    = "channel"
)

// Member statuses reported by getChatMembers.
const (
	MemberStatusOwner         = "owner"
	MemberStatusAdministrator = "administrator"
	MemberStatusMember        = "member"
	MemberStatusRestricted    = "restricted"
	MemberStatusBanned        = "banned"
)

// User represents a Telegram user seen through the account bridge.
type User struct {
	ID        int64  `json:"id"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
	Username  string `json:"username,omitempty"`
	IsBot     bool   `json:"is_bot,omitempty"`
}

// Chat represents a Telegram chat (group, supergroup, private, channel).
type Chat struct {
	ID          int64  `json:"id"`
	Type        string `json:"type"`
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
	Username    string `json:"username,omitempty"`
}

// Dialog is one entry of the account's dialog list.
type Dialog struct {
	Chat Chat `json:"chat"`
}

// Contact is one entry of the account's contact list.
type Contact struct {
	ID          int64  `json:"id"`
	FirstName   string `json:"first_name,omitempty"`
	LastName    string `json:"last_name,omitempty"`
	Username    string `json:"username,omitempty"`
	PhoneNumber string `json:"phone_number,omitempty"`
}

// ChatMember is a member of a chat together with its status.
type ChatMember struct {
	User   User   `json:"user"`
	Status string `json:"status"`
}

// ChatPermissions is the permission bundle applied to a chat or a member.
type ChatPermissions struct {
	CanSendMessages       bool `json:"can_send_messages"`
	CanSendMediaMessages  bool `json:"can_send_media_messages"`
	CanSendOtherMessages  bool `json:"can_send_other_messages"`
	CanSendPolls          bool `json:"can_send_polls"`
	CanAddWebPagePreviews bool `json:"can_add_web_page_previews"`
	CanChangeInfo         bool `json:"can_change_info"`
	CanInviteUsers        bool `json:"can_invite_users"`
	CanPinMessages        bool `json:"can_pin_messages"`
}

// ChatPrivileges is the admin privilege bundle granted on promotion.
type ChatPrivileges struct {
	CanManageChat       bool `json:"can_manage_chat"`
	CanDeleteMessages   bool `json:"can_delete_messages"`
	CanManageVideoChats bool `json:"can_manage_video_chats"`
	CanRestrictMembers  bool `json:"can_restrict_members"`
	CanPromoteMembers   bool `json:"can_promote_members"`
	CanChangeInfo       bool `json:"can_change_info"`
	CanInviteUsers      bool `json:"can_invite_users"`
	CanPinMessages      bool `json:"can_pin_messages"`
	CanPostMessages     bool `json:"can_post_messages"`
	CanEditMessages     bool `json:"can_edit_messages"`
}

// ChatInviteLink is an invite link created by an administrator.
type ChatInviteLink struct {
	InviteLink string `json:"invite_link"`
	Creator    *User  `json:"creator,omitempty"`
	IsRevoked  bool   `json:"is_revoked,omitempty"`
}

// Message represents a message sent through the account.
type Message struct {
	MessageID int64  `json:"message_id"`
	Chat      Chat   `json:"chat"`
	Text      string `json:"text,omitempty"`
	Date      int64  `json:"date,omitempty"`
}

// APIResponse is the generic wrapper returned by the account bridge.
type APIResponse[T any] struct {
	OK          bool                `json:"ok"`
	Result      T                   `json:"result"`
	Description string              `json:"description,omitempty"`
	ErrorCode   int                 `json:"error_code,omitempty"`
	Parameters  *ResponseParameters `json:"parameters,omitempty"`
}

// ResponseParameters carries extra failure information.
type ResponseParameters struct {
	RetryAfter int `json:"retry_after,omitempty"`
}

// APIError is an error returned by the account bridge. It is the structured
// kind/message pair surfaced to the operation layer; raw descriptions never
// reach HTTP responses.
type APIError struct {
	Code        int    `json:"error_code"`
	Description string `json:"description"`
	RetryAfter  int    `json:"retry_after,omitempty"`
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.RetryAfter > 0 {
		return fmt.Sprintf("telegram: %d %s (retry after %ds)", e.Code, e.Description, e.RetryAfter)
	}
	return fmt.Sprintf("telegram: %d %s", e.Code, e.Description)
}
