package auth

import "sync"

// StaticProvider is a Provider with a fixed identity taken from config.
// It still implements the event stream so session code works the same
// against a real provider.
type StaticProvider struct {
	mu       sync.Mutex
	userID   string
	signedIn bool
	nextSub  int
	subs     map[int]func(userID string, signedIn bool)
}

// NewStatic creates a signed-in provider for userID.
func NewStatic(userID string) *StaticProvider {
	return &StaticProvider{
		userID:   userID,
		signedIn: userID != "",
		subs:     make(map[int]func(string, bool)),
	}
}

// Current returns the configured identity.
func (p *StaticProvider) Current() (string, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.signedIn {
		return "", false
	}
	return p.userID, true
}

// OnChange registers a subscriber for sign-in/sign-out events.
func (p *StaticProvider) OnChange(fn func(userID string, signedIn bool)) func() {
	p.mu.Lock()
	id := p.nextSub
	p.nextSub++
	p.subs[id] = fn
	p.mu.Unlock()

	return func() {
		p.mu.Lock()
		delete(p.subs, id)
		p.mu.Unlock()
	}
}

// SignIn marks the identity active and notifies subscribers.
func (p *StaticProvider) SignIn() {
	p.mu.Lock()
	p.signedIn = true
	userID := p.userID
	subs := p.snapshot()
	p.mu.Unlock()

	for _, fn := range subs {
		fn(userID, true)
	}
}

// SignOut clears the active identity and notifies subscribers.
func (p *StaticProvider) SignOut() {
	p.mu.Lock()
	p.signedIn = false
	userID := p.userID
	subs := p.snapshot()
	p.mu.Unlock()

	for _, fn := range subs {
		fn(userID, false)
	}
}

// snapshot copies the subscriber list; callbacks run without the lock held.
func (p *StaticProvider) snapshot() []func(string, bool) {
	out := make([]func(string, bool), 0, len(p.subs))
	for _, fn := range p.subs {
		out = append(out, fn)
	}
	return out
}
