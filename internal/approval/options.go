package approval

import (
	"context"
	"io"
	"log/slog"
	"time"

	"placement/api/internal/rbac"
	"placement/api/internal/store"
	"placement/api/internal/util"
)

// Store is the persistence the workflow needs. Every mutation happens in
// WithinTx.
type Store interface {
	WithinTx(ctx context.Context, fn func(store.Tx) error) error
	GetProposal(ctx context.Context, proposalID string) (store.Proposal, error)
	ListProposals(ctx context.Context, filter store.ProposalFilter) ([]store.Proposal, error)
}

// Policy answers whether a role holds a privilege.
type Policy func(role rbac.Role, action rbac.Action) bool

// Observer is told about every committed transition.
type Observer interface {
	UpdateRouted(mode Mode)
	ProposalResolved(status store.ProposalStatus)
}

// Notifier is told about new proposals after they commit. Failures are
// logged and never undo the proposal.
type Notifier interface {
	ProposalSubmitted(ctx context.Context, proposal store.Proposal) error
}

type Actor struct {
	ID   string
	Role rbac.Role
}

type Option func(*settings)

type settings struct {
	now      func() time.Time
	newID    func() string
	policy   Policy
	observer Observer
	notifier Notifier
	logger   *slog.Logger
}

func defaults() settings {
	return settings{
		now:    time.Now,
		newID:  func() string { return util.NewID("pu") },
		policy: rbac.Can,
		logger: slog.New(slog.NewJSONHandler(io.Discard, nil)),
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *settings) { s.now = now }
}

func WithIDs(newID func() string) Option {
	return func(s *settings) { s.newID = newID }
}

func WithPolicy(policy Policy) Option {
	return func(s *settings) { s.policy = policy }
}

func WithObserver(observer Observer) Option {
	return func(s *settings) { s.observer = observer }
}

func WithNotifier(notifier Notifier) Option {
	return func(s *settings) { s.notifier = notifier }
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *settings) { s.logger = logger }
}

func apply(opts []Option) settings {
	cfg := defaults()
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}
