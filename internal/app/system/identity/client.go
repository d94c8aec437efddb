package identity

import (
	"context"
	"sync"
)

// State is an auth-state notification. A nil Identity means signed out.
type State struct {
	Identity *Identity
}

// SignedIn reports whether the state carries an identity.
func (s State) SignedIn() bool { return s.Identity != nil }

// Listener receives auth-state notifications.
type Listener func(ctx context.Context, s State)

type pending struct {
	ctx   context.Context
	state State
}

type subscription struct {
	id int
	fn Listener
}

// Client is one browser's view of the identity provider. Notifications are
// delivered one at a time, in publish order, to every listener registered
// at delivery time. A listener that triggers another notification (for
// example by calling SignOut) has it queued behind the current one rather
// than delivered re-entrantly.
type Client struct {
	provider *Provider

	mu          sync.Mutex
	current     *Identity
	subs        []subscription
	nextID      int
	queue       []pending
	dispatching bool
}

// NewClient creates a Client whose current identity is initial (nil when
// signed out). Call Start to replay it to listeners.
func NewClient(provider *Provider, initial *Identity) *Client {
	return &Client{provider: provider, current: initial}
}

// OnAuthStateChanged registers l and returns a function that removes it.
func (c *Client) OnAuthStateChanged(l Listener) (unsubscribe func()) {
	c.mu.Lock()
	c.nextID++
	id := c.nextID
	c.subs = append(c.subs, subscription{id: id, fn: l})
	c.mu.Unlock()

	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		for i, s := range c.subs {
			if s.id == id {
				c.subs = append(c.subs[:i:i], c.subs[i+1:]...)
				return
			}
		}
	}
}

// Start publishes the current state as the initial notification.
func (c *Client) Start(ctx context.Context) {
	c.mu.Lock()
	st := State{Identity: c.current}
	c.mu.Unlock()
	c.publish(ctx, st)
}

// Current returns the signed-in identity, or nil.
func (c *Client) Current() *Identity {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.current == nil {
		return nil
	}
	id := *c.current
	return &id
}

// SignIn authenticates through the provider and, on success, publishes the
// new identity.
func (c *Client) SignIn(ctx context.Context, email, password string) (Identity, error) {
	id, err := c.provider.SignIn(ctx, email, password)
	if err != nil {
		return Identity{}, err
	}
	c.mu.Lock()
	c.current = &id
	c.mu.Unlock()
	c.publish(ctx, State{Identity: &id})
	return id, nil
}

// SignOut clears the identity and publishes a signed-out state. It does
// nothing when already signed out.
func (c *Client) SignOut(ctx context.Context) {
	c.mu.Lock()
	if c.current == nil {
		c.mu.Unlock()
		return
	}
	c.current = nil
	c.mu.Unlock()
	c.publish(ctx, State{})
}

func (c *Client) publish(ctx context.Context, st State) {
	c.mu.Lock()
	c.queue = append(c.queue, pending{ctx: ctx, state: st})
	if c.dispatching {
		c.mu.Unlock()
		return
	}
	c.dispatching = true

	for len(c.queue) > 0 {
		next := c.queue[0]
		c.queue = c.queue[1:]
		subs := append([]subscription(nil), c.subs...)
		c.mu.Unlock()

		for _, s := range subs {
			s.fn(next.ctx, next.state)
		}

		c.mu.Lock()
	}
	c.dispatching = false
	c.mu.Unlock()
}
