package relay

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/c360studio/ontosync/listener"
	"github.com/c360studio/ontosync/metrics"
	"github.com/c360studio/ontosync/ontology"
	"github.com/c360studio/ontosync/translate"
)

const base ontology.IRI = "http://example.org/onto"

var (
	_ Mailbox           = (*HTTPMailbox)(nil)
	_ Mailbox           = (*NATSMailbox)(nil)
	_ Dispatcher        = (*ontology.Owner)(nil)
	_ listener.Notifier = (*Outbox)(nil)
)

// memMailbox serves queued inbound payloads and records pushes.
type memMailbox struct {
	mu      sync.Mutex
	inbound [][]byte
	pullErr error
	pushErr error
	pushed  [][]byte
	pushes  chan struct{}
}

func newMemMailbox(inbound ...string) *memMailbox {
	mb := &memMailbox{pushes: make(chan struct{}, 64)}
	for _, p := range inbound {
		mb.inbound = append(mb.inbound, []byte(p))
	}
	return mb
}

func (m *memMailbox) Pull(context.Context) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.pullErr != nil {
		return nil, m.pullErr
	}
	if len(m.inbound) == 0 {
		return nil, nil
	}
	next := m.inbound[0]
	m.inbound = m.inbound[1:]
	return next, nil
}

func (m *memMailbox) Push(_ context.Context, payload []byte) error {
	m.mu.Lock()
	defer func() {
		m.mu.Unlock()
		m.pushes <- struct{}{}
	}()
	if m.pushErr != nil {
		return m.pushErr
	}
	m.pushed = append(m.pushed, payload)
	return nil
}

func (m *memMailbox) Pushed() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.pushed))
	for i, p := range m.pushed {
		out[i] = string(p)
	}
	return out
}

type fixture struct {
	manager *ontology.Manager
	onto    *ontology.Ontology
	owner   *ontology.Owner
	applied *[]ontology.Change
}

// newFixture starts an owner running until the test ends and records every
// effective change.
func newFixture(t *testing.T) fixture {
	t.Helper()
	m := ontology.NewManager(nil)
	o, err := m.CreateOntology(base)
	require.NoError(t, err)

	var mu sync.Mutex
	applied := &[]ontology.Change{}
	m.AddListener(ontology.ChangeListenerFunc(func(_ context.Context, changes []ontology.Change) {
		mu.Lock()
		defer mu.Unlock()
		*applied = append(*applied, changes...)
	}))

	owner := ontology.NewOwner(nil)
	go func() { _ = owner.Run(context.Background()) }()
	t.Cleanup(func() {
		owner.Close()
		<-owner.Done()
	})
	return fixture{manager: m, onto: o, owner: owner, applied: applied}
}

// drain waits until every task submitted so far has run.
func (f fixture) drain(t *testing.T) {
	t.Helper()
	require.NoError(t, f.owner.Do(context.Background(), func(context.Context) error { return nil }))
}

func declaration(kind ontology.EntityKind, name string) ontology.Declaration {
	return ontology.Declaration{Entity: ontology.NewEntity(kind, ontology.EntityIRI(base, name))}
}

func TestProcessor_Apply(t *testing.T) {
	f := newFixture(t)
	p := NewProcessor(f.manager, base, nil)
	ctx := context.Background()

	changed, err := p.Apply(ctx, ElementEvent{Type: "Individual", Props: map[string]string{"name": "alice"}, IsAdd: true})
	require.NoError(t, err)
	assert.True(t, changed)
	assert.True(t, f.onto.Contains(declaration(ontology.KindIndividual, "alice")))

	changed, err = p.Apply(ctx, ElementEvent{Type: "Individual", Props: map[string]string{"name": "alice"}, IsAdd: true})
	require.NoError(t, err)
	assert.False(t, changed, "re-adding is a no-op")

	changed, err = p.Apply(ctx, ElementEvent{Type: "Individual", Props: map[string]string{"name": "alice"}})
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Zero(t, f.onto.Len())
}

func TestProcessor_Errors(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := NewProcessor(f.manager, base, nil).Apply(ctx, ElementEvent{Type: "Datatype", Props: map[string]string{"name": "x"}})
	assert.ErrorIs(t, err, ErrMalformedEvent)

	_, err = NewProcessor(f.manager, "http://example.org/missing", nil).Apply(ctx,
		ElementEvent{Type: "Class", Props: map[string]string{"name": "A"}, IsAdd: true})
	assert.ErrorIs(t, err, ontology.ErrOntologyNotFound)
}

func TestPoller_AppliesEachEventOnce(t *testing.T) {
	f := newFixture(t)
	mb := newMemMailbox(`{"type":"Class","props":{"name":"Person"},"isAdd":true}`)
	p := NewPoller(mb, NewProcessor(f.manager, base, nil), f.owner)
	ctx := context.Background()

	assert.Equal(t, metrics.OutcomeApplied, p.PollOnce(ctx))
	assert.Equal(t, metrics.OutcomeEmpty, p.PollOnce(ctx))
	f.drain(t)

	assert.True(t, f.onto.Contains(declaration(ontology.KindClass, "Person")))
	require.Len(t, *f.applied, 1)
	assert.True(t, (*f.applied)[0].Add)
}

func TestPoller_DiscardsMalformed(t *testing.T) {
	f := newFixture(t)
	mb := newMemMailbox(
		`not json`,
		`{"type":"Class","props":{},"isAdd":true}`,
		`{"type":"ObjectProperty","props":{"name":"knows"},"isAdd":true}`,
	)
	p := NewPoller(mb, NewProcessor(f.manager, base, nil), f.owner)
	ctx := context.Background()

	assert.Equal(t, metrics.OutcomeMalformed, p.PollOnce(ctx))
	assert.Equal(t, metrics.OutcomeMalformed, p.PollOnce(ctx))
	assert.Equal(t, metrics.OutcomeApplied, p.PollOnce(ctx), "a bad event does not block the next")
	f.drain(t)

	assert.Equal(t, 1, f.onto.Len())
}

func TestPoller_TransportErrorRetriesNextTick(t *testing.T) {
	f := newFixture(t)
	mb := newMemMailbox(`{"type":"Class","props":{"name":"A"},"isAdd":true}`)
	mb.pullErr = transientError("pull", errors.New("connection refused"))
	p := NewPoller(mb, NewProcessor(f.manager, base, nil), f.owner)

	assert.Equal(t, metrics.OutcomeError, p.PollOnce(context.Background()))

	mb.mu.Lock()
	mb.pullErr = nil
	mb.mu.Unlock()
	assert.Equal(t, metrics.OutcomeApplied, p.PollOnce(context.Background()))
}

func TestPoller_LogLevelFollowsErrorClass(t *testing.T) {
	tests := []struct {
		name  string
		err   error
		level string
	}{
		{"transient", transientError("pull", errors.New("connection refused")), "level=WARN"},
		{"fatal", fatalError("pull", errors.New("relay returned status 404")), "level=ERROR"},
		{"unclassified", errors.New("boom"), "level=ERROR"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			var buf bytes.Buffer
			logger := slog.New(slog.NewTextHandler(&buf, nil))
			mb := newMemMailbox()
			mb.pullErr = tt.err
			p := NewPoller(mb, NewProcessor(f.manager, base, nil), f.owner, WithPollerLogger(logger))

			assert.Equal(t, metrics.OutcomeError, p.PollOnce(context.Background()))
			assert.Contains(t, buf.String(), tt.level)
			assert.Contains(t, buf.String(), "Mailbox poll failed")
		})
	}
}

func TestPoller_ClosedOwner(t *testing.T) {
	m := ontology.NewManager(nil)
	_, err := m.CreateOntology(base)
	require.NoError(t, err)
	owner := ontology.NewOwner(nil)
	owner.Close()

	mb := newMemMailbox(`{"type":"Class","props":{"name":"A"},"isAdd":true}`)
	p := NewPoller(mb, NewProcessor(m, base, nil), owner)
	assert.Equal(t, metrics.OutcomeError, p.PollOnce(context.Background()))
}

func TestPoller_RunPollsImmediatelyAndStops(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	m := ontology.NewManager(nil)
	o, err := m.CreateOntology(base)
	require.NoError(t, err)
	owner := ontology.NewOwner(nil)
	ownerCtx, cancelOwner := context.WithCancel(context.Background())
	go func() { _ = owner.Run(ownerCtx) }()

	mb := newMemMailbox(`{"type":"Class","props":{"name":"A"},"isAdd":true}`)
	p := NewPoller(mb, NewProcessor(m, base, nil), owner, WithInterval(time.Hour))

	done := make(chan error, 1)
	go func() { done <- p.Run(context.Background()) }()

	require.Eventually(t, func() bool {
		var n int
		_ = owner.Do(context.Background(), func(context.Context) error {
			n = o.Len()
			return nil
		})
		return n == 1
	}, time.Second, 10*time.Millisecond, "first poll does not wait for the interval")

	p.Stop()
	p.Stop()
	require.NoError(t, <-done)

	cancelOwner()
	<-owner.Done()
}

func TestPoller_RunStopsOnCancel(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	p := NewPoller(newMemMailbox(), nil, nil, WithInterval(5*time.Millisecond))
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- p.Run(ctx) }()
	time.Sleep(20 * time.Millisecond)
	cancel()
	assert.NoError(t, <-done)
}

func TestOutbox_PushesInOrder(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	mb := newMemMailbox()
	out := NewOutbox(mb)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- out.Run(ctx) }()

	out.Notify(translate.Notification{Kind: ontology.KindClass, Name: "A", Add: true})
	out.Notify(translate.Notification{Kind: ontology.KindIndividual, Name: "i", Add: false})
	<-mb.pushes
	<-mb.pushes

	cancel()
	require.NoError(t, <-done)

	pushed := mb.Pushed()
	require.Len(t, pushed, 2)
	assert.JSONEq(t, `{"type":"Class","props":{"name":"A"},"isAdd":true}`, pushed[0])
	assert.JSONEq(t, `{"type":"Individual","props":{"name":"i"},"isAdd":false}`, pushed[1])
}

func TestOutbox_DropsWhenFull(t *testing.T) {
	out := NewOutbox(newMemMailbox(), WithQueueSize(1))

	out.Notify(translate.Notification{Kind: ontology.KindClass, Name: "A", Add: true})
	out.Notify(translate.Notification{Kind: ontology.KindClass, Name: "B", Add: true})
	assert.Equal(t, 1, out.Pending(), "Notify never blocks")
}

func TestOutbox_PushFailureIsNotRetried(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	mb := newMemMailbox()
	mb.pushErr = transientError("push", errors.New("relay down"))
	out := NewOutbox(mb)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- out.Run(ctx) }()

	out.Notify(translate.Notification{Kind: ontology.KindClass, Name: "A", Add: true})
	<-mb.pushes

	mb.mu.Lock()
	mb.pushErr = nil
	mb.mu.Unlock()
	out.Notify(translate.Notification{Kind: ontology.KindClass, Name: "B", Add: true})
	<-mb.pushes

	cancel()
	require.NoError(t, <-done)
	require.Len(t, mb.Pushed(), 1)
	assert.Contains(t, mb.Pushed()[0], `"B"`)
}
