package service

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/payment"
)

type publishedEvent struct {
	topic     string
	key       string
	eventType string
	payload   any
}

type fakePublisher struct {
	mu     sync.Mutex
	events []publishedEvent
	err    error
}

func (p *fakePublisher) PublishEvent(_ context.Context, topic, key, eventType string, payload any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, publishedEvent{topic: topic, key: key, eventType: eventType, payload: payload})
	return nil
}

func (p *fakePublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.eventType)
	}
	return out
}

type fakeGateway struct {
	mu        sync.Mutex
	sessions  map[string]*payment.Session
	created   []payment.SessionRequest
	retrieves int
	err       error
	// arrived, when set, receives one value per RetrieveSession call and
	// release must be closed before the call returns.
	arrived chan struct{}
	release chan struct{}
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{sessions: map[string]*payment.Session{}}
}

func (g *fakeGateway) paid(id string, userID uuid.UUID, amount int64, email string) {
	g.sessions[id] = &payment.Session{
		ID:                id,
		PaymentStatus:     payment.StatusPaid,
		CustomerEmail:     email,
		AmountTotal:       amount,
		ClientReferenceID: userID.String(),
	}
}

func (g *fakeGateway) unpaid(id string) {
	g.sessions[id] = &payment.Session{ID: id, PaymentStatus: payment.StatusUnpaid}
}

func (g *fakeGateway) CreateSession(_ context.Context, req payment.SessionRequest) (*payment.Session, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.err != nil {
		return nil, g.err
	}
	g.created = append(g.created, req)
	s := &payment.Session{ID: "cs_" + uuid.NewString(), URL: "https://pay.example/checkout", PaymentStatus: payment.StatusUnpaid}
	g.sessions[s.ID] = s
	return s, nil
}

func (g *fakeGateway) RetrieveSession(_ context.Context, id string) (*payment.Session, error) {
	if g.arrived != nil {
		g.arrived <- struct{}{}
		<-g.release
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	g.retrieves++
	if g.err != nil {
		return nil, g.err
	}
	s, ok := g.sessions[id]
	if !ok {
		return nil, payment.ErrSessionNotFound
	}
	return s, nil
}

type fakeCache struct {
	mu   sync.Mutex
	data map[string]uuid.UUID
	err  error
}

func newFakeCache() *fakeCache {
	return &fakeCache{data: map[string]uuid.UUID{}}
}

func (c *fakeCache) Get(_ context.Context, sessionID string) (uuid.UUID, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return uuid.Nil, false, c.err
	}
	id, ok := c.data[sessionID]
	return id, ok, nil
}

func (c *fakeCache) Set(_ context.Context, sessionID string, orderID uuid.UUID) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return c.err
	}
	c.data[sessionID] = orderID
	return nil
}

type fakeNotifier struct {
	mu     sync.Mutex
	orders []uuid.UUID
	err    error
}

func (n *fakeNotifier) OrderFinalized(_ context.Context, o *models.Order) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.orders = append(n.orders, o.ID)
	return n.err
}

func (n *fakeNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.orders)
}

type mailed struct {
	to      string
	subject string
	body    string
}

type fakeMailer struct {
	mu   sync.Mutex
	sent []mailed
	err  error
}

func (m *fakeMailer) Notify(_ context.Context, recipients []string, subject, body string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, mailed{to: recipients[0], subject: subject, body: body})
	return nil
}

func (m *fakeMailer) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sent)
}

func (m *fakeMailer) last() mailed {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sent[len(m.sent)-1]
}
