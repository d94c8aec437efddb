// internal/domain/models/event.go
package models

import (
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Event types offered by the posting form, in display order.
const (
	EventHackathon   = "Hackathon"
	EventWorkshop    = "Workshop"
	EventCompetition = "Competition"
	EventSeminar     = "Seminar"
	EventSession     = "Session"
	EventMeetup      = "Meetup"
)

// EventTypes lists the accepted event types.
var EventTypes = []string{
	EventHackathon,
	EventWorkshop,
	EventCompetition,
	EventSeminar,
	EventSession,
	EventMeetup,
}

var eventIcons = map[string]string{
	EventHackathon:   "💻",
	EventWorkshop:    "🎯",
	EventCompetition: "🏆",
	EventSeminar:     "📚",
	EventSession:     "🎤",
	EventMeetup:      "🤝",
}

// IsEventType reports whether t is one of EventTypes.
func IsEventType(t string) bool {
	_, ok := eventIcons[t]
	return ok
}

// EventIcon returns the display icon for an event type.
func EventIcon(t string) string {
	if icon, ok := eventIcons[t]; ok {
		return icon
	}
	return "📅"
}

// Event is a club event announcement.
type Event struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Title       string             `bson:"title" json:"title"`
	Club        string             `bson:"club" json:"club"`
	Type        string             `bson:"type" json:"type"`
	Date        EventDate          `bson:"date" json:"date"`
	Time        string             `bson:"time" json:"time"` // free-form, e.g. "10:00 AM"
	Venue       string             `bson:"venue" json:"venue"`
	Description string             `bson:"description" json:"description"`
	RegLink     string             `bson:"reg_link,omitempty" json:"reg_link,omitempty"`
	PostedBy    string             `bson:"posted_by" json:"posted_by"`
	CreatedAt   time.Time          `bson:"created_at" json:"created_at"`
}

// Icon returns the display icon for the event's type.
func (e Event) Icon() string { return EventIcon(e.Type) }

/*─────────────────────────────────────────────────────────────────────────────*
| EventDate                                                                   |
*─────────────────────────────────────────────────────────────────────────────*/

// legacyDateLayouts are the string forms older event documents carry.
var legacyDateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02T15:04",
	"2006-01-02 15:04",
	"January 2, 2006",
	"Jan 2, 2006",
	"01/02/2006",
}

// EventDate is a calendar date stored as a BSON datetime. Decoding also
// accepts legacy string and timestamp values so old documents stay readable.
type EventDate struct {
	time.Time
}

// NewEventDate returns the calendar date of t in the local zone.
func NewEventDate(t time.Time) EventDate {
	return EventDate{Time: startOfDay(t)}
}

// ParseEventDate parses a date string in any accepted layout.
func ParseEventDate(s string) (EventDate, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return EventDate{}, fmt.Errorf("event date: empty")
	}
	for _, layout := range legacyDateLayouts {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return NewEventDate(t), nil
		}
	}
	return EventDate{}, fmt.Errorf("event date: unrecognized format %q", s)
}

// Day returns the local midnight of the date.
func (d EventDate) Day() time.Time {
	if d.IsZero() {
		return time.Time{}
	}
	return startOfDay(d.Time)
}

// OnOrAfter reports whether the date falls on or after the calendar day of t.
func (d EventDate) OnOrAfter(t time.Time) bool {
	if d.IsZero() {
		return false
	}
	return !d.Day().Before(startOfDay(t))
}

// Display renders the date the way event cards show it.
func (d EventDate) Display() string {
	if d.IsZero() {
		return "Date TBA"
	}
	return d.Day().Format("Mon, Jan 2, 2006")
}

// MarshalBSONValue stores the date as a BSON datetime (null when unset).
func (d EventDate) MarshalBSONValue() (bsontype.Type, []byte, error) {
	if d.IsZero() {
		return bsontype.Null, nil, nil
	}
	return bson.MarshalValue(d.Day().UTC())
}

// UnmarshalBSONValue accepts datetime, timestamp, legacy string and null.
func (d *EventDate) UnmarshalBSONValue(t bsontype.Type, data []byte) error {
	rv := bson.RawValue{Type: t, Value: data}
	switch t {
	case bsontype.DateTime:
		*d = NewEventDate(rv.Time())
	case bsontype.Timestamp:
		sec, _ := rv.Timestamp()
		*d = NewEventDate(time.Unix(int64(sec), 0))
	case bsontype.String:
		parsed, err := ParseEventDate(rv.StringValue())
		if err != nil {
			return err
		}
		*d = parsed
	case bsontype.Null, bsontype.Undefined:
		*d = EventDate{}
	default:
		return fmt.Errorf("event date: cannot decode BSON %s", t)
	}
	return nil
}

func startOfDay(t time.Time) time.Time {
	l := t.In(time.Local)
	return time.Date(l.Year(), l.Month(), l.Day(), 0, 0, 0, 0, time.Local)
}
