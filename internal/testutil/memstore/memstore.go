// Package memstore provides in-memory stores with the same contracts as the
// Mongo-backed ones, for tests that run without a database. Any operation
// can be made to fail with FailOn.
package memstore

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/dalemusser/clubhub/internal/app/store/storeerr"
	"github.com/dalemusser/clubhub/internal/app/system/normalize"
	"github.com/dalemusser/clubhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type faults struct {
	fmu  sync.Mutex
	errs map[string]error
}

// FailOn makes every later call to op return err. A nil err clears it.
// Op names are method names, e.g. "Create" or "IncrementMembers".
func (f *faults) FailOn(op string, err error) {
	f.fmu.Lock()
	defer f.fmu.Unlock()
	if f.errs == nil {
		f.errs = map[string]error{}
	}
	if err == nil {
		delete(f.errs, op)
		return
	}
	f.errs[op] = err
}

func (f *faults) fault(op string) error {
	f.fmu.Lock()
	defer f.fmu.Unlock()
	return f.errs[op]
}

/*─────────────────────────────────────────────────────────────────────────────*
| Accounts                                                                    |
*─────────────────────────────────────────────────────────────────────────────*/

type Accounts struct {
	faults
	mu   sync.Mutex
	byID map[primitive.ObjectID]models.Account
}

func NewAccounts() *Accounts {
	return &Accounts{byID: map[primitive.ObjectID]models.Account{}}
}

func (s *Accounts) Create(_ context.Context, email, hash string) (models.Account, error) {
	if err := s.fault("Create"); err != nil {
		return models.Account{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	email = normalize.Email(email)
	for _, a := range s.byID {
		if a.Email == email {
			return models.Account{}, storeerr.ErrDuplicate
		}
	}
	a := models.Account{ID: primitive.NewObjectID(), Email: email, PasswordHash: hash, CreatedAt: time.Now().UTC()}
	s.byID[a.ID] = a
	return a, nil
}

func (s *Accounts) Get(_ context.Context, id primitive.ObjectID) (models.Account, error) {
	if err := s.fault("Get"); err != nil {
		return models.Account{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.byID[id]
	if !ok {
		return models.Account{}, storeerr.ErrNotFound
	}
	return a, nil
}

func (s *Accounts) GetByEmail(_ context.Context, email string) (models.Account, error) {
	if err := s.fault("GetByEmail"); err != nil {
		return models.Account{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	email = normalize.Email(email)
	for _, a := range s.byID {
		if a.Email == email {
			return a, nil
		}
	}
	return models.Account{}, storeerr.ErrNotFound
}

func (s *Accounts) SetDisabled(_ context.Context, id primitive.ObjectID, disabled bool) error {
	if err := s.fault("SetDisabled"); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.byID[id]
	if !ok {
		return storeerr.ErrNotFound
	}
	a.Disabled = disabled
	s.byID[id] = a
	return nil
}

// Len returns the number of stored accounts.
func (s *Accounts) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.byID)
}

/*─────────────────────────────────────────────────────────────────────────────*
| Users                                                                       |
*─────────────────────────────────────────────────────────────────────────────*/

type Users struct {
	faults
	mu   sync.Mutex
	byID map[primitive.ObjectID]models.User
}

func NewUsers() *Users {
	return &Users{byID: map[primitive.ObjectID]models.User{}}
}

// Put stores u as-is, replacing any user with the same id.
func (s *Users) Put(u models.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byID[u.ID] = u
}

func (s *Users) Get(_ context.Context, id primitive.ObjectID) (*models.User, error) {
	if err := s.fault("Get"); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.byID[id]
	if !ok {
		return nil, storeerr.ErrNotFound
	}
	return &u, nil
}

// LoadProfile matches userstore.Fetcher.
func (s *Users) LoadProfile(ctx context.Context, uid string) (*models.User, error) {
	if err := s.fault("LoadProfile"); err != nil {
		return nil, err
	}
	oid, err := primitive.ObjectIDFromHex(uid)
	if err != nil {
		return nil, storeerr.ErrNotFound
	}
	return s.Get(ctx, oid)
}

func (s *Users) Create(_ context.Context, u models.User) error {
	if err := s.fault("Create"); err != nil {
		return err
	}
	if u.ID.IsZero() {
		return fmt.Errorf("user id required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byID[u.ID]; ok {
		return storeerr.ErrDuplicate
	}
	u.Email = normalize.Email(u.Email)
	if u.Status == "" {
		u.Status = models.UserPending
	}
	now := time.Now().UTC()
	u.CreatedAt, u.UpdatedAt = now, now
	s.byID[u.ID] = u
	return nil
}

func (s *Users) SetStatus(_ context.Context, id primitive.ObjectID, status string) error {
	if err := s.fault("SetStatus"); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.byID[id]
	if !ok {
		return storeerr.ErrNotFound
	}
	u.Status = status
	u.UpdatedAt = time.Now().UTC()
	s.byID[id] = u
	return nil
}

func (s *Users) Delete(_ context.Context, id primitive.ObjectID) error {
	if err := s.fault("Delete"); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byID[id]; !ok {
		return storeerr.ErrNotFound
	}
	delete(s.byID, id)
	return nil
}

func (s *Users) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.byID)
}

/*─────────────────────────────────────────────────────────────────────────────*
| Clubs                                                                       |
*─────────────────────────────────────────────────────────────────────────────*/

type Clubs struct {
	faults
	mu     sync.Mutex
	byName map[string]*models.Club
}

// NewClubs creates a club store holding clubs.
func NewClubs(clubs ...models.Club) *Clubs {
	s := &Clubs{byName: map[string]*models.Club{}}
	for _, c := range clubs {
		c := c
		if c.ID.IsZero() {
			c.ID = primitive.NewObjectID()
		}
		s.byName[c.Name] = &c
	}
	return s
}

func (s *Clubs) GetByName(_ context.Context, name string) (models.Club, error) {
	if err := s.fault("GetByName"); err != nil {
		return models.Club{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.byName[name]
	if !ok {
		return models.Club{}, storeerr.ErrNotFound
	}
	return *c, nil
}

func (s *Clubs) IncrementMembers(_ context.Context, name string, delta int64) error {
	if err := s.fault("IncrementMembers"); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.byName[name]
	if !ok {
		return storeerr.ErrNotFound
	}
	c.Members += delta
	return nil
}

func (s *Clubs) List(_ context.Context) ([]models.Club, error) {
	if err := s.fault("List"); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Club, 0, len(s.byName))
	for _, c := range s.byName {
		out = append(out, *c)
	}
	sort.Slice(out, func(i, j int) bool {
		return strings.ToLower(out[i].Name) < strings.ToLower(out[j].Name)
	})
	return out, nil
}

// Members returns the member count of a club, or -1 when it does not exist.
func (s *Clubs) Members(name string) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c, ok := s.byName[name]; ok {
		return c.Members
	}
	return -1
}

/*─────────────────────────────────────────────────────────────────────────────*
| Requests                                                                    |
*─────────────────────────────────────────────────────────────────────────────*/

type Requests struct {
	faults
	mu   sync.Mutex
	byID map[primitive.ObjectID]models.Request
	last time.Time
}

func NewRequests() *Requests {
	return &Requests{byID: map[primitive.ObjectID]models.Request{}}
}

// stamp keeps timestamps strictly increasing so newest-first ordering is
// stable even when inserts land in the same clock tick.
func (s *Requests) stamp(h *models.RequestHeader, typ string) {
	h.ID = primitive.NewObjectID()
	h.Type = typ
	h.Status = models.RequestPending
	if h.Timestamp.IsZero() {
		h.Timestamp = time.Now().UTC()
	}
	if !h.Timestamp.After(s.last) {
		h.Timestamp = s.last.Add(time.Millisecond)
	}
	s.last = h.Timestamp
}

func (s *Requests) InsertClubJoin(_ context.Context, r models.ClubJoinRequest) (models.ClubJoinRequest, error) {
	if err := s.fault("InsertClubJoin"); err != nil {
		return models.ClubJoinRequest{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stamp(&r.RequestHeader, models.RequestClubJoin)
	cp := r
	s.byID[r.ID] = &cp
	return r, nil
}

func (s *Requests) InsertAdmin(_ context.Context, r models.AdminRequest) (models.AdminRequest, error) {
	if err := s.fault("InsertAdmin"); err != nil {
		return models.AdminRequest{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stamp(&r.RequestHeader, models.RequestAdmin)
	cp := r
	s.byID[r.ID] = &cp
	return r, nil
}

// Put stores r as-is.
func (s *Requests) Put(r models.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byID[r.Header().ID] = r
}

func (s *Requests) Get(_ context.Context, id primitive.ObjectID) (models.Request, error) {
	if err := s.fault("Get"); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.byID[id]
	if !ok {
		return nil, storeerr.ErrNotFound
	}
	return clone(r), nil
}

func (s *Requests) ListPendingAdmin(_ context.Context) ([]models.AdminRequest, error) {
	if err := s.fault("ListPendingAdmin"); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.AdminRequest
	for _, r := range s.byID {
		if ar, ok := r.(*models.AdminRequest); ok && ar.IsPending() {
			out = append(out, *ar)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Timestamp.After(out[j].Timestamp) })
	return out, nil
}

func (s *Requests) ListPendingClubJoin(_ context.Context, club *string) ([]models.ClubJoinRequest, error) {
	if err := s.fault("ListPendingClubJoin"); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.ClubJoinRequest
	for _, r := range s.byID {
		cj, ok := r.(*models.ClubJoinRequest)
		if !ok || !cj.IsPending() {
			continue
		}
		if club != nil && cj.ClubName != *club {
			continue
		}
		out = append(out, *cj)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Timestamp.After(out[j].Timestamp) })
	return out, nil
}

func (s *Requests) MarkDecided(_ context.Context, id primitive.ObjectID, typ, status, by string, at time.Time) error {
	if err := s.fault("MarkDecided"); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.byID[id]
	if !ok || r.Header().Type != typ {
		return storeerr.ErrNotFound
	}
	h := r.Header()
	if !h.IsPending() {
		return storeerr.ErrNotPending
	}
	at = at.UTC()
	switch status {
	case models.RequestApproved:
		h.ApprovedBy, h.ApprovedAt = by, &at
	case models.RequestRejected:
		h.RejectedBy, h.RejectedAt = by, &at
	default:
		return fmt.Errorf("invalid decision status %q", status)
	}
	h.Status = status
	return nil
}

/*─────────────────────────────────────────────────────────────────────────────*
| Events                                                                      |
*─────────────────────────────────────────────────────────────────────────────*/

type Events struct {
	faults
	mu     sync.Mutex
	events []models.Event
}

func NewEvents() *Events { return &Events{} }

func (s *Events) Create(_ context.Context, e models.Event) (models.Event, error) {
	if err := s.fault("Create"); err != nil {
		return models.Event{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	e.ID = primitive.NewObjectID()
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}
	s.events = append(s.events, e)
	return e, nil
}

// All returns every stored event in insertion order.
func (s *Events) All() []models.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.Event(nil), s.events...)
}

func clone(r models.Request) models.Request {
	switch v := r.(type) {
	case *models.ClubJoinRequest:
		cp := *v
		return &cp
	case *models.AdminRequest:
		cp := *v
		return &cp
	default:
		panic(fmt.Sprintf("memstore: unexpected request type %T", r))
	}
}
