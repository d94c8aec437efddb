// internal/app/features/auditlog/list.go
package auditlog

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/dalemusser/clubhub/internal/app/store/audit"
	"github.com/dalemusser/clubhub/internal/app/system/timeouts"
	"github.com/dalemusser/clubhub/internal/app/system/viewdata"
	"github.com/dalemusser/waffle/pantry/query"
	"github.com/dalemusser/waffle/pantry/templates"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

const pageSize = 50

const dateLayout = "2006-01-02"

// ServeList handles GET /audit. With ?request=<id> it shows that request's
// whole trail; otherwise a filtered, paginated list, newest first.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	data := listData{
		BaseVM:     viewdata.NewBaseVM(r, "Audit Log", "/"),
		Category:   strings.TrimSpace(query.Get(r, "category")),
		EventType:  strings.TrimSpace(query.Get(r, "event_type")),
		Club:       strings.TrimSpace(query.Get(r, "club")),
		StartDate:  strings.TrimSpace(query.Get(r, "start_date")),
		EndDate:    strings.TrimSpace(query.Get(r, "end_date")),
		Categories: allCategories(),
		Page:       1,
		TotalPages: 1,
	}
	data.EventTypes = eventTypesForCategory(data.Category)

	if v := strings.TrimSpace(query.Get(r, "request")); v != "" {
		id, err := primitive.ObjectIDFromHex(v)
		if err != nil {
			h.ErrLog.LogBadRequest(w, r, "bad audit request id", err, "Invalid request id.", "/audit")
			return
		}
		events, err := h.Events.GetByRequest(ctx, id)
		if err != nil {
			h.ErrLog.LogServerError(w, r, "audit trail query failed", err, "A database error occurred.", "/audit")
			return
		}
		data.RequestID = id.Hex()
		data.Items = toItems(events)
		data.Total = int64(len(events))
		templates.Render(w, r, "audit_list", data)
		return
	}

	if p, err := strconv.Atoi(query.Get(r, "page")); err == nil && p > 0 {
		data.Page = p
	}

	filter := audit.QueryFilter{
		Category:  data.Category,
		EventType: data.EventType,
		ClubName:  data.Club,
		Limit:     pageSize,
		Offset:    int64((data.Page - 1) * pageSize),
	}
	if t, err := time.Parse(dateLayout, data.StartDate); err == nil {
		filter.StartTime = &t
	}
	if t, err := time.Parse(dateLayout, data.EndDate); err == nil {
		end := t.Add(24*time.Hour - time.Nanosecond)
		filter.EndTime = &end
	}

	events, err := h.Events.Query(ctx, filter)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "audit query failed", err, "A database error occurred.", "/")
		return
	}
	total, err := h.Events.Count(ctx, filter)
	if err != nil {
		h.Log.Warn("audit count failed", zap.Error(err))
		total = int64(len(events))
	}

	data.Items = toItems(events)
	data.Total = total
	if n := int((total + pageSize - 1) / pageSize); n > 1 {
		data.TotalPages = n
	}
	data.HasPrev = data.Page > 1
	data.HasNext = data.Page < data.TotalPages
	data.PrevURL = pageURL(r, data.Page-1)
	data.NextURL = pageURL(r, data.Page+1)

	templates.Render(w, r, "audit_list", data)
}

func toItems(events []audit.Event) []listItem {
	items := make([]listItem, 0, len(events))
	for _, e := range events {
		item := listItem{
			Timestamp: e.Timestamp,
			Category:  e.Category,
			EventType: e.EventType,
			Actor:     e.ActorEmail,
			ClubName:  e.ClubName,
			IP:        e.IP,
			Success:   e.Success,
			Reason:    e.FailureReason,
			Details:   e.Details,
		}
		if e.UserID != nil {
			item.TargetUser = e.UserID.Hex()
		}
		if e.RequestID != nil {
			item.RequestID = e.RequestID.Hex()
		}
		items = append(items, item)
	}
	return items
}

// pageURL keeps the current filters and swaps the page number.
func pageURL(r *http.Request, page int) string {
	v := url.Values{}
	for k, vals := range r.URL.Query() {
		if k != "page" && len(vals) > 0 && vals[0] != "" {
			v.Set(k, vals[0])
		}
	}
	v.Set("page", strconv.Itoa(page))
	return "/audit?" + v.Encode()
}
