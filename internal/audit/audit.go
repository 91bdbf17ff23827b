package audit

import (
	"context"

	"github.com/weiawesome/wes-io-social/pkg/log"
)

// Audit actions.
const (
	ActionSignUp         = "auth.sign_up"
	ActionSignIn         = "auth.sign_in"
	ActionSignInFailed   = "auth.sign_in_failed"
	ActionSignOut        = "auth.sign_out"
	ActionResetPassword  = "auth.reset_password"
	ActionChangePassword = "auth.change_password"
	ActionRefreshToken   = "auth.refresh_token"
	ActionCodeIssued     = "auth.code_issued"
	ActionUpdateProfile  = "user.update_profile"
	ActionUpdateAvatar   = "user.update_avatar"
	ActionFollow         = "graph.follow"
	ActionUnfollow       = "graph.unfollow"
	ActionBlock          = "graph.block"
	ActionUnblock        = "graph.unblock"
	ActionDeleteComment  = "content.delete_comment"
	ActionDeleteList     = "content.delete_list"
)

// Field constants for audit entries.
const (
	FieldAction = "action"
	FieldDetail = "detail"
)

// Log emits a structured audit entry via the context logger.
func Log(ctx context.Context, action, userID, msg string) {
	l := log.Ctx(ctx)
	l.Info().
		Str(log.FieldLogType, log.LogTypeAudit).
		Str(FieldAction, action).
		Str(log.FieldUserID, userID).
		Msg(msg)
}

// LogTarget emits an audit entry about an action on another identity or resource.
func LogTarget(ctx context.Context, action, userID, targetID, msg string) {
	l := log.Ctx(ctx)
	l.Info().
		Str(log.FieldLogType, log.LogTypeAudit).
		Str(FieldAction, action).
		Str(log.FieldUserID, userID).
		Str(log.FieldTargetID, targetID).
		Msg(msg)
}

// LogWithDetail emits an audit entry carrying a free-form detail, such as
// the email of a failed sign-in.
func LogWithDetail(ctx context.Context, action, userID, detail, msg string) {
	l := log.Ctx(ctx)
	l.Info().
		Str(log.FieldLogType, log.LogTypeAudit).
		Str(FieldAction, action).
		Str(log.FieldUserID, userID).
		Str(FieldDetail, detail).
		Msg(msg)
}
