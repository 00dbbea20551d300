// util/notification_service.go
package util

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/slack-go/slack"
	"go.uber.org/zap"

	logger "github.com/ucook/accessflow/logging"
	"github.com/ucook/accessflow/model"
)

type NotificationAction string

const (
	ActionRequest  NotificationAction = "request"
	ActionApprove  NotificationAction = "approve"
	ActionReject   NotificationAction = "reject"
	ActionActivate NotificationAction = "activate"
	ActionToRemove NotificationAction = "to_remove"
	ActionRemove   NotificationAction = "remove"
)

// NotificationContext is what a workflow transition hands to the notifier.
// Either Request or Grant is set, depending on the transition.
type NotificationContext struct {
	Request *model.AccessRequest
	Grant   *model.AccessGrant
	Action  NotificationAction
	Link    string
	Reason  *string
}

// Notifier is fire-and-forget: implementations log delivery failures and
// never report them to the workflow.
type Notifier interface {
	NotifyManager(ctx context.Context, nc NotificationContext)
	NotifySystemOwners(ctx context.Context, nc NotificationContext)
	NotifyRequester(ctx context.Context, nc NotificationContext)
}

// Directory resolves notification recipients.
type Directory interface {
	GetUser(ctx context.Context, userID string) (*model.User, error)
	OwnersOfSystem(ctx context.Context, systemID string) ([]model.User, error)
}

// LogNotifier only writes notifications to the log.
type LogNotifier struct{}

func NewLogNotifier() *LogNotifier {
	return &LogNotifier{}
}

func (n *LogNotifier) NotifyManager(ctx context.Context, nc NotificationContext) {
	logger.Info("NOTIFICATION: manager", notificationFields(nc)...)
}

func (n *LogNotifier) NotifySystemOwners(ctx context.Context, nc NotificationContext) {
	logger.Info("NOTIFICATION: system owners", notificationFields(nc)...)
}

func (n *LogNotifier) NotifyRequester(ctx context.Context, nc NotificationContext) {
	logger.Info("NOTIFICATION: requester", notificationFields(nc)...)
}

func notificationFields(nc NotificationContext) []zap.Field {
	fields := []zap.Field{zap.String("action", string(nc.Action))}
	if nc.Request != nil {
		fields = append(fields, zap.String("requestID", nc.Request.ID))
	}
	if nc.Grant != nil {
		fields = append(fields, zap.String("grantID", nc.Grant.ID))
	}
	if nc.Link != "" {
		fields = append(fields, zap.String("link", nc.Link))
	}
	return fields
}

// SlackNotifier sends direct messages to each recipient's SlackID.
// Recipients without one are skipped.
type SlackNotifier struct {
	client    *slack.Client
	directory Directory
	timeout   time.Duration
}

func NewSlackNotifier(token, apiURL string, directory Directory) *SlackNotifier {
	opts := []slack.Option{}
	if apiURL != "" {
		opts = append(opts, slack.OptionAPIURL(apiURL))
	}
	return &SlackNotifier{
		client:    slack.New(token, opts...),
		directory: directory,
		timeout:   5 * time.Second,
	}
}

func (n *SlackNotifier) NotifyManager(ctx context.Context, nc NotificationContext) {
	if nc.Request == nil {
		return
	}
	target := nc.Request.TargetUser
	if target == nil {
		var err error
		if target, err = n.directory.GetUser(ctx, nc.Request.TargetUserID); err != nil {
			logger.Warn("Cannot resolve target user for notification", zap.Error(err))
			return
		}
	}
	if target.ManagerID == nil {
		return
	}
	manager, err := n.directory.GetUser(ctx, *target.ManagerID)
	if err != nil {
		logger.Warn("Cannot resolve manager for notification", zap.Error(err))
		return
	}
	n.send(ctx, manager, FormatNotification(nc, "manager"))
}

func (n *SlackNotifier) NotifySystemOwners(ctx context.Context, nc NotificationContext) {
	seen := map[string]bool{}
	text := FormatNotification(nc, "owner")
	for _, systemID := range notificationSystems(nc) {
		owners, err := n.directory.OwnersOfSystem(ctx, systemID)
		if err != nil {
			logger.Warn("Cannot resolve system owners for notification",
				zap.String("systemID", systemID), zap.Error(err))
			continue
		}
		for i := range owners {
			if seen[owners[i].ID] {
				continue
			}
			seen[owners[i].ID] = true
			n.send(ctx, &owners[i], text)
		}
	}
}

func (n *SlackNotifier) NotifyRequester(ctx context.Context, nc NotificationContext) {
	var recipientID string
	switch {
	case nc.Request != nil:
		recipientID = nc.Request.RequesterID
	case nc.Grant != nil:
		recipientID = nc.Grant.UserID
	default:
		return
	}
	recipient, err := n.directory.GetUser(ctx, recipientID)
	if err != nil {
		logger.Warn("Cannot resolve requester for notification", zap.Error(err))
		return
	}
	n.send(ctx, recipient, FormatNotification(nc, "requester"))
}

func (n *SlackNotifier) send(ctx context.Context, user *model.User, text string) {
	if user == nil || user.SlackID == "" {
		logger.Debug("Skipping Slack notification for user without Slack id")
		return
	}
	ctx, cancel := context.WithTimeout(ctx, n.timeout)
	defer cancel()

	_, _, err := n.client.PostMessageContext(ctx, user.SlackID, slack.MsgOptionText(text, false))
	if err != nil {
		logger.Error("Failed to send Slack notification",
			zap.String("userID", user.ID),
			zap.Error(err))
		return
	}
	logger.Debug("Slack notification sent", zap.String("userID", user.ID))
}

func notificationSystems(nc NotificationContext) []string {
	var ids []string
	seen := map[string]bool{}
	add := func(id string) {
		if id != "" && !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	if nc.Grant != nil {
		add(nc.Grant.SystemID())
	}
	if nc.Request != nil {
		for i := range nc.Request.Items {
			add(nc.Request.Items[i].SystemID())
		}
	}
	return ids
}

var actionVerbs = map[NotificationAction]string{
	ActionRequest:  "requested",
	ActionApprove:  "approved",
	ActionReject:   "rejected",
	ActionActivate: "activated",
	ActionToRemove: "marked for removal",
	ActionRemove:   "removed",
}

// FormatNotification renders a plain-text message for audience
// ("manager", "owner" or "requester").
func FormatNotification(nc NotificationContext, audience string) string {
	var b strings.Builder
	verb := actionVerbs[nc.Action]
	if verb == "" {
		verb = string(nc.Action)
	}

	switch {
	case nc.Request != nil:
		target := nc.Request.TargetUserID
		if nc.Request.TargetUser != nil {
			target = nc.Request.TargetUser.Name
		}
		fmt.Fprintf(&b, "Access request for %s was %s", target, verb)
		if audience == "manager" && nc.Action == ActionRequest {
			b.WriteString(" and is waiting for your approval")
		}
		b.WriteString(".")
		for _, item := range nc.Request.Items {
			b.WriteString("\n• ")
			b.WriteString(describeTarget(item.SystemInstance, item.AccessTier))
			fmt.Fprintf(&b, " (%s)", item.Status)
		}
	case nc.Grant != nil:
		holder := nc.Grant.UserID
		if nc.Grant.User != nil {
			holder = nc.Grant.User.Name
		}
		fmt.Fprintf(&b, "Access for %s to %s was %s.", holder,
			describeTarget(nc.Grant.SystemInstance, nc.Grant.AccessTier), verb)
	}

	if nc.Reason != nil && *nc.Reason != "" {
		fmt.Fprintf(&b, "\nReason: %s", *nc.Reason)
	}
	if nc.Link != "" {
		fmt.Fprintf(&b, "\n%s", nc.Link)
	}
	return b.String()
}

func describeTarget(instance *model.SystemInstance, tier *model.AccessTier) string {
	parts := []string{}
	if instance != nil {
		if instance.System != nil {
			parts = append(parts, instance.System.Name)
		}
		parts = append(parts, instance.Name)
	}
	if tier != nil {
		parts = append(parts, tier.Name)
	}
	if len(parts) == 0 {
		return "a system"
	}
	return strings.Join(parts, " / ")
}
