// internal/app/system/auditlog/logger.go
package auditlog

import (
	"context"
	"net/http"

	"github.com/dalemusser/clubhub/internal/app/store/audit"
	"github.com/dalemusser/clubhub/internal/app/system/ratelimit"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Config holds audit logging configuration.
type Config struct {
	// Auth controls sign-in, sign-out and session-gate events.
	// Values: "all" (MongoDB + zap), "db" (MongoDB only), "log" (zap only), "off" (disabled)
	Auth string
	// Workflow controls request submissions, decisions and inconsistencies.
	// Same values as Auth.
	Workflow string
}

// Logger writes audit events to MongoDB (via audit.Store) and zap.
// A nil *Logger is a valid no-op logger.
type Logger struct {
	store  *audit.Store
	zapLog *zap.Logger
	config Config
}

// New creates a new audit Logger.
func New(store *audit.Store, zapLog *zap.Logger, config Config) *Logger {
	return &Logger{
		store:  store,
		zapLog: zapLog,
		config: config,
	}
}

func (l *Logger) logToZap(event audit.Event) {
	fields := []zap.Field{
		zap.Bool("audit", true),
		zap.String("category", event.Category),
		zap.String("event_type", event.EventType),
		zap.Bool("success", event.Success),
	}
	if event.IP != "" {
		fields = append(fields, zap.String("ip", event.IP))
	}
	if event.UserID != nil {
		fields = append(fields, zap.String("user_id", event.UserID.Hex()))
	}
	if event.RequestID != nil {
		fields = append(fields, zap.String("request_id", event.RequestID.Hex()))
	}
	if event.ActorEmail != "" {
		fields = append(fields, zap.String("actor", event.ActorEmail))
	}
	if event.ClubName != "" {
		fields = append(fields, zap.String("club", event.ClubName))
	}
	if event.FailureReason != "" {
		fields = append(fields, zap.String("failure_reason", event.FailureReason))
	}
	for k, v := range event.Details {
		fields = append(fields, zap.String("detail_"+k, v))
	}

	if event.Success {
		l.zapLog.Info("audit event", fields...)
	} else {
		l.zapLog.Warn("audit event", fields...)
	}
}

// Log records an audit event according to the category's setting.
func (l *Logger) Log(ctx context.Context, event audit.Event) {
	if l == nil {
		return
	}

	var setting string
	switch event.Category {
	case audit.CategoryAuth:
		setting = l.config.Auth
	case audit.CategoryWorkflow:
		setting = l.config.Workflow
	default:
		setting = "all"
	}

	if setting == "off" {
		return
	}
	if setting == "all" || setting == "log" {
		l.logToZap(event)
	}
	if (setting == "all" || setting == "db") && l.store != nil {
		if err := l.store.Log(ctx, event); err != nil {
			l.zapLog.Error("failed to store audit event",
				zap.Error(err),
				zap.String("event_type", event.EventType),
			)
		}
	}
}

func withRequest(e audit.Event, r *http.Request) audit.Event {
	if r != nil {
		e.IP = ratelimit.ClientIP(r)
		e.UserAgent = r.UserAgent()
	}
	return e
}

// --- Authentication Events ---

// LoginSuccess logs a sign-in that produced a session.
func (l *Logger) LoginSuccess(ctx context.Context, r *http.Request, userID primitive.ObjectID, email string) {
	l.Log(ctx, withRequest(audit.Event{
		Category:   audit.CategoryAuth,
		EventType:  audit.EventLoginSuccess,
		UserID:     &userID,
		ActorEmail: email,
		Success:    true,
	}, r))
}

// LoginFailed logs a rejected sign-in. eventType is one of the
// audit.EventLoginFailed* constants.
func (l *Logger) LoginFailed(ctx context.Context, r *http.Request, eventType, email, reason string) {
	l.Log(ctx, withRequest(audit.Event{
		Category:      audit.CategoryAuth,
		EventType:     eventType,
		Success:       false,
		FailureReason: reason,
		Details:       map[string]string{"attempted_email": email},
	}, r))
}

// SessionRejected logs a sign-in that authenticated but failed the profile
// gate (missing or unapproved profile).
func (l *Logger) SessionRejected(ctx context.Context, r *http.Request, userID primitive.ObjectID, email, reason string) {
	l.Log(ctx, withRequest(audit.Event{
		Category:      audit.CategoryAuth,
		EventType:     audit.EventSessionRejected,
		UserID:        &userID,
		ActorEmail:    email,
		Success:       false,
		FailureReason: reason,
	}, r))
}

// Logout logs a sign-out.
func (l *Logger) Logout(ctx context.Context, r *http.Request, userIDStr, email string) {
	e := audit.Event{
		Category:   audit.CategoryAuth,
		EventType:  audit.EventLogout,
		ActorEmail: email,
		Success:    true,
	}
	if id, err := primitive.ObjectIDFromHex(userIDStr); err == nil {
		e.UserID = &id
	}
	l.Log(ctx, withRequest(e, r))
}

// --- Workflow Events ---

// ClubJoinSubmitted logs a new club-join request.
func (l *Logger) ClubJoinSubmitted(ctx context.Context, requestID primitive.ObjectID, club, studentEmail string) {
	l.Log(ctx, audit.Event{
		Category:  audit.CategoryWorkflow,
		EventType: audit.EventClubJoinSubmitted,
		RequestID: &requestID,
		ClubName:  club,
		Success:   true,
		Details:   map[string]string{"student_email": studentEmail},
	})
}

// ClubJoinDecided logs an approval or rejection of a club-join request.
func (l *Logger) ClubJoinDecided(ctx context.Context, requestID primitive.ObjectID, club, actor string, approved bool) {
	eventType := audit.EventClubJoinRejected
	if approved {
		eventType = audit.EventClubJoinApproved
	}
	l.Log(ctx, audit.Event{
		Category:   audit.CategoryWorkflow,
		EventType:  eventType,
		RequestID:  &requestID,
		ClubName:   club,
		ActorEmail: actor,
		Success:    true,
	})
}

// AdminRequestSubmitted logs a new admin application.
func (l *Logger) AdminRequestSubmitted(ctx context.Context, requestID, userID primitive.ObjectID, club, email string) {
	l.Log(ctx, audit.Event{
		Category:   audit.CategoryWorkflow,
		EventType:  audit.EventAdminRequestSubmitted,
		RequestID:  &requestID,
		UserID:     &userID,
		ClubName:   club,
		ActorEmail: email,
		Success:    true,
	})
}

// AdminRequestDecided logs an approval or rejection of an admin application.
func (l *Logger) AdminRequestDecided(ctx context.Context, requestID, userID primitive.ObjectID, actor string, approved bool) {
	eventType := audit.EventAdminRequestRejected
	if approved {
		eventType = audit.EventAdminRequestApproved
	}
	l.Log(ctx, audit.Event{
		Category:   audit.CategoryWorkflow,
		EventType:  eventType,
		RequestID:  &requestID,
		UserID:     &userID,
		ActorEmail: actor,
		Success:    true,
	})
}

// EventPosted logs a newly posted club event.
func (l *Logger) EventPosted(ctx context.Context, eventID primitive.ObjectID, club, title, actor string) {
	l.Log(ctx, audit.Event{
		Category:   audit.CategoryWorkflow,
		EventType:  audit.EventEventPosted,
		ClubName:   club,
		ActorEmail: actor,
		Success:    true,
		Details:    map[string]string{"event_id": eventID.Hex(), "title": title},
	})
}

// Inconsistency logs a non-fatal workflow inconsistency. requestID and
// userID may be nil when not applicable.
func (l *Logger) Inconsistency(ctx context.Context, kind string, requestID, userID *primitive.ObjectID, club, detail string) {
	l.Log(ctx, audit.Event{
		Category:      audit.CategoryWorkflow,
		EventType:     audit.EventWorkflowInconsistency,
		RequestID:     requestID,
		UserID:        userID,
		ClubName:      club,
		Success:       false,
		FailureReason: kind,
		Details:       map[string]string{"detail": detail},
	})
}
