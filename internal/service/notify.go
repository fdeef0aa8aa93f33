package service

import (
	"fmt"
	"log/slog"

	"github.com/Shivanand-hulikatti/eventmaster/internal/client"
	"github.com/Shivanand-hulikatti/eventmaster/internal/session"
)

// NoticeKind classifies a user-facing notice.
type NoticeKind string

const (
	NoticeSuccess NoticeKind = "success"
	NoticeError   NoticeKind = "error"
	NoticeInfo    NoticeKind = "info"
)

// Notice is one dismissible message for the user.
type Notice struct {
	Kind    NoticeKind
	Message string
}

// Notifier surfaces notices to the user.
type Notifier interface {
	Notify(Notice)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(Notice)

func (f NotifierFunc) Notify(n Notice) {
	f(n)
}

type discardNotifier struct{}

func (discardNotifier) Notify(Notice) {}

// report logs and surfaces a failed call made with sess. An auth failure
// ends the session; anything else is shown as "prefix: message".
func report(n Notifier, logger *slog.Logger, sess *session.Session, prefix string, err error) error {
	logger.Error(prefix, "error", err)
	if isAuthFailure(err) {
		n.Notify(Notice{Kind: NoticeError, Message: SignedOutMessage})
		return signedOut(sess, err)
	}
	n.Notify(Notice{Kind: NoticeError, Message: fmt.Sprintf("%s: %s", prefix, client.Message(err))})
	return err
}
