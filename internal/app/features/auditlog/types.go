// internal/app/features/auditlog/types.go
package auditlog

import (
	"time"

	"github.com/dalemusser/clubhub/internal/app/store/audit"
	"github.com/dalemusser/clubhub/internal/app/system/viewdata"
)

// listItem is one audit event row.
type listItem struct {
	Timestamp  time.Time
	Category   string
	EventType  string
	Actor      string
	TargetUser string
	RequestID  string
	ClubName   string
	IP         string
	Success    bool
	Reason     string
	Details    map[string]string
}

type listData struct {
	viewdata.BaseVM

	Items []listItem

	// Filters
	Category  string
	EventType string
	Club      string
	StartDate string
	EndDate   string
	// RequestID narrows the page to one request's full trail.
	RequestID string

	Categories []categoryOption
	EventTypes []string

	// Pagination
	Page       int
	TotalPages int
	Total      int64
	HasPrev    bool
	HasNext    bool
	PrevURL    string
	NextURL    string
}

type categoryOption struct {
	Value string
	Label string
}

func allCategories() []categoryOption {
	return []categoryOption{
		{Value: audit.CategoryAuth, Label: "Authentication"},
		{Value: audit.CategoryWorkflow, Label: "Requests & Events"},
	}
}

// eventTypesForCategory lists the event types of category, or every type
// when category is empty.
func eventTypesForCategory(category string) []string {
	authEvents := []string{
		audit.EventLoginSuccess,
		audit.EventLoginFailedUserNotFound,
		audit.EventLoginFailedWrongPassword,
		audit.EventLoginFailedUserDisabled,
		audit.EventLoginFailedRateLimit,
		audit.EventLoginFailedInvalidEmail,
		audit.EventSessionRejected,
		audit.EventLogout,
	}
	workflowEvents := []string{
		audit.EventClubJoinSubmitted,
		audit.EventClubJoinApproved,
		audit.EventClubJoinRejected,
		audit.EventAdminRequestSubmitted,
		audit.EventAdminRequestApproved,
		audit.EventAdminRequestRejected,
		audit.EventEventPosted,
		audit.EventWorkflowInconsistency,
	}

	switch category {
	case audit.CategoryAuth:
		return authEvents
	case audit.CategoryWorkflow:
		return workflowEvents
	case "":
		all := make([]string, 0, len(authEvents)+len(workflowEvents))
		all = append(all, authEvents...)
		return append(all, workflowEvents...)
	default:
		return nil
	}
}
