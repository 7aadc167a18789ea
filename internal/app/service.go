package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/samber/lo"

	"placement/api/internal/approval"
	"placement/api/internal/auth"
	"placement/api/internal/authpw"
	"placement/api/internal/company"
	"placement/api/internal/config"
	"placement/api/internal/export"
	"placement/api/internal/fieldmap"
	"placement/api/internal/rbac"
	"placement/api/internal/search"
	"placement/api/internal/store"
	"placement/api/internal/util"
)

type Session struct {
	Token        string
	RefreshToken string
	UserID       string
	UserName     string
	Email        string
	Role         rbac.Role
	JTI          string
	ExpiresAt    time.Time
}

func (s Session) actor() approval.Actor {
	return approval.Actor{ID: s.UserID, Role: s.Role}
}

// sessionStore keeps refresh tokens and the access-token denylist. Redis
// serves it when configured and Postgres otherwise.
type sessionStore interface {
	SaveRefreshSession(ctx context.Context, tokenHash, userID string, expiresAt time.Time) error
	ConsumeRefreshSession(ctx context.Context, tokenHash string) (store.User, error)
	RevokeRefreshSession(ctx context.Context, tokenHash string) error
	RevokeAccessToken(ctx context.Context, jti string, exp time.Time) error
	IsAccessTokenRevoked(ctx context.Context, jti string) (bool, error)
}

type Options struct {
	Sessions sessionStore
	Observer approval.Observer
	Notifier approval.Notifier
	// Search defaults to substring matching over the store.
	Search search.Searcher
	Logger *slog.Logger
	Now    func() time.Time
	// BcryptCost overrides the default hashing cost.
	BcryptCost int
}

type Service struct {
	cfg       config.Config
	store     store.Store
	sessions  sessionStore
	passwords *authpw.Service
	gate      *approval.Gate
	review    *approval.ReviewEngine
	reports   *export.Service
	search    search.Searcher
	logger    *slog.Logger
	now       func() time.Time
}

func New(cfg config.Config, dataStore store.Store, opts Options) *Service {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	sessions := opts.Sessions
	if sessions == nil {
		sessions = dataStore
	}
	searcher := opts.Search
	if searcher == nil {
		searcher = search.NewService(nil, search.NewSubstring(dataStore), logger)
	}
	passwords := authpw.NewService(dataStore)
	if opts.BcryptCost > 0 {
		passwords = passwords.WithCost(opts.BcryptCost)
	}

	workflow := []approval.Option{approval.WithLogger(logger), approval.WithClock(now)}
	if opts.Observer != nil {
		workflow = append(workflow, approval.WithObserver(opts.Observer))
	}
	if opts.Notifier != nil {
		workflow = append(workflow, approval.WithNotifier(opts.Notifier))
	}

	return &Service{
		cfg:       cfg,
		store:     dataStore,
		sessions:  sessions,
		passwords: passwords,
		gate:      approval.NewGate(dataStore, workflow...),
		review:    approval.NewReviewEngine(dataStore, workflow...),
		reports:   export.NewService(dataStore),
		search:    searcher,
		logger:    logger,
		now:       now,
	}
}

func (s *Service) Login(ctx context.Context, email, password string) (Session, error) {
	user, err := s.passwords.SignIn(ctx, authpw.SignInRequest{Email: email, Password: password})
	if err != nil {
		return Session{}, err
	}
	return s.issueSession(ctx, user)
}

func (s *Service) Refresh(ctx context.Context, refreshToken string) (Session, error) {
	if strings.TrimSpace(refreshToken) == "" {
		return Session{}, auth.ErrInvalidToken
	}
	user, err := s.sessions.ConsumeRefreshSession(ctx, auth.HashToken(refreshToken))
	if errors.Is(err, store.ErrNotFound) {
		return Session{}, auth.ErrInvalidToken
	}
	if err != nil {
		return Session{}, err
	}
	return s.issueSession(ctx, user)
}

func (s *Service) issueSession(ctx context.Context, user store.User) (Session, error) {
	now := s.now()
	expiresAt := now.Add(s.cfg.AccessTTL)
	jti := util.NewID("jti")

	token, err := auth.IssueToken([]byte(s.cfg.JWTSecret), auth.NewClaims(user.ID, user.Name, user.Role, jti, now, expiresAt))
	if err != nil {
		return Session{}, err
	}

	refresh := util.NewID("rft")
	if err := s.sessions.SaveRefreshSession(ctx, auth.HashToken(refresh), user.ID, now.Add(s.cfg.RefreshTTL)); err != nil {
		return Session{}, err
	}

	return Session{
		Token:        token,
		RefreshToken: refresh,
		UserID:       user.ID,
		UserName:     user.Name,
		Email:        user.Email,
		Role:         rbac.Normalize(user.Role),
		JTI:          jti,
		ExpiresAt:    expiresAt,
	}, nil
}

// SessionFromToken verifies an access token and reloads the user, so role
// changes and deletions apply to tokens already issued.
func (s *Service) SessionFromToken(ctx context.Context, token string) (Session, error) {
	claims, err := auth.ParseToken([]byte(s.cfg.JWTSecret), token)
	if err != nil {
		return Session{}, err
	}
	revoked, err := s.sessions.IsAccessTokenRevoked(ctx, claims.ID)
	if err != nil {
		return Session{}, err
	}
	if revoked {
		return Session{}, auth.ErrInvalidToken
	}

	user, err := s.store.GetUserByID(ctx, claims.Subject)
	if errors.Is(err, store.ErrNotFound) {
		return Session{}, auth.ErrInvalidToken
	}
	if err != nil {
		return Session{}, err
	}

	return Session{
		Token:     token,
		UserID:    user.ID,
		UserName:  user.Name,
		Email:     user.Email,
		Role:      rbac.Normalize(user.Role),
		JTI:       claims.ID,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}

func (s *Service) Logout(ctx context.Context, session Session, refreshToken string) error {
	if session.JTI != "" {
		if err := s.sessions.RevokeAccessToken(ctx, session.JTI, session.ExpiresAt); err != nil {
			return err
		}
	}
	if refreshToken != "" {
		if err := s.sessions.RevokeRefreshSession(ctx, auth.HashToken(refreshToken)); err != nil {
			return err
		}
	}
	return nil
}

func (s *Service) authorize(session Session, action rbac.Action) error {
	if !rbac.Can(session.Role, action) {
		return fmt.Errorf("%w: role %q cannot %s", approval.ErrForbidden, session.Role, action)
	}
	return nil
}

func (s *Service) ListUsers(ctx context.Context, session Session) ([]map[string]any, error) {
	if err := s.authorize(session, rbac.ActionManageUsers); err != nil {
		return nil, err
	}
	users, err := s.store.ListUsers(ctx)
	if err != nil {
		return nil, err
	}
	return usersPayload(users), nil
}

func (s *Service) ListOfficers(ctx context.Context, session Session) ([]map[string]any, error) {
	if err := s.authorize(session, rbac.ActionManageCompanies); err != nil {
		return nil, err
	}
	users, err := s.store.ListUsersByRole(ctx, string(rbac.RoleOfficer))
	if err != nil {
		return nil, err
	}
	return usersPayload(users), nil
}

type CreateUserInput struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

func (s *Service) CreateUser(ctx context.Context, session Session, input CreateUserInput) (map[string]any, error) {
	if err := s.authorize(session, rbac.ActionManageUsers); err != nil {
		return nil, err
	}
	user, err := s.passwords.CreateUser(ctx, authpw.CreateUserRequest{
		Name:     input.Name,
		Email:    input.Email,
		Password: input.Password,
		Role:     input.Role,
	})
	if err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "user created", "user_id", user.ID, "role", user.Role, "actor_id", session.UserID)
	return userPayload(user), nil
}

// ListCompanies returns every company, or only those matching text by name,
// address or drive when text is not blank. Matches come best first.
func (s *Service) ListCompanies(ctx context.Context, session Session, text string) ([]map[string]any, error) {
	if err := s.authorize(session, rbac.ActionRead); err != nil {
		return nil, err
	}
	companies, err := s.store.ListCompanies(ctx)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(text) != "" {
		ids, err := s.search.Search(ctx, search.Query{Text: text})
		if err != nil {
			return nil, fmt.Errorf("search companies: %w", err)
		}
		byID := lo.KeyBy(companies, func(item store.Company) string { return item.ID })
		companies = lo.FilterMap(ids, func(id string, _ int) (store.Company, bool) {
			item, ok := byID[id]
			return item, ok
		})
	}
	items := make([]map[string]any, 0, len(companies))
	for _, item := range companies {
		items = append(items, companyPayload(item))
	}
	return items, nil
}

func (s *Service) GetCompany(ctx context.Context, session Session, companyID string) (map[string]any, error) {
	if err := s.authorize(session, rbac.ActionRead); err != nil {
		return nil, err
	}
	item, err := s.store.GetCompany(ctx, companyID)
	if err != nil {
		return nil, err
	}
	return companyPayload(item), nil
}

// CreateCompany inserts a new record directly. Creation is not gated; only
// updates go through review.
func (s *Service) CreateCompany(ctx context.Context, session Session, fields fieldmap.Map) (map[string]any, error) {
	if err := s.authorize(session, rbac.ActionManageCompanies); err != nil {
		return nil, err
	}
	if err := company.ValidateCreate(fields); err != nil {
		return nil, fmt.Errorf("%w: %w", approval.ErrValidation, err)
	}
	if officerID, ok := company.AssignedOfficer(fields); ok && officerID != "" {
		officer, err := s.store.GetUserByID(ctx, officerID)
		if errors.Is(err, store.ErrNotFound) || (err == nil && rbac.Normalize(officer.Role) != rbac.RoleOfficer) {
			return nil, fmt.Errorf("%w: %w", approval.ErrValidation, &company.ValidationError{Field: company.FieldAssignedOfficerID, Reason: "must reference an officer"})
		}
		if err != nil {
			return nil, err
		}
	}

	now := s.now().UTC()
	item, err := company.Apply(store.Company{ID: util.NewID("cmp"), CreatedAt: now, UpdatedAt: now}, fields)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", approval.ErrValidation, err)
	}
	if err := s.store.InsertCompany(ctx, item); err != nil {
		return nil, err
	}
	created, err := s.store.GetCompany(ctx, item.ID)
	if err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "company created", "company_id", created.ID, "actor_id", session.UserID)
	return companyPayload(created), nil
}

// UpdateCompany routes through the Gate. The returned status is 200 when
// the write was applied and 202 when it awaits review.
func (s *Service) UpdateCompany(ctx context.Context, session Session, companyID string, fields fieldmap.Map) (int, map[string]any, error) {
	outcome, err := s.gate.SubmitUpdate(ctx, session.actor(), companyID, fields)
	if err != nil {
		return 0, nil, err
	}
	if outcome.Mode == approval.ModeApplied {
		return http.StatusOK, map[string]any{
			"status":  string(approval.ModeApplied),
			"message": "Company updated successfully",
			"company": companyPayload(*outcome.Company),
		}, nil
	}
	return http.StatusAccepted, map[string]any{
		"status":   string(approval.ModeSubmitted),
		"message":  "Update submitted for approval",
		"proposal": proposalPayload(*outcome.Proposal),
	}, nil
}

func (s *Service) DeleteCompany(ctx context.Context, session Session, companyID string) error {
	if err := s.authorize(session, rbac.ActionManageCompanies); err != nil {
		return err
	}
	if err := s.store.DeleteCompany(ctx, companyID); err != nil {
		return err
	}
	s.logger.InfoContext(ctx, "company deleted", "company_id", companyID, "actor_id", session.UserID)
	return nil
}

func (s *Service) ListProposals(ctx context.Context, session Session, status string) ([]map[string]any, error) {
	items, err := s.review.List(ctx, session.actor(), store.ProposalFilter{Status: store.ProposalStatus(status)})
	if err != nil {
		return nil, err
	}
	payload := make([]map[string]any, 0, len(items))
	for _, item := range items {
		payload = append(payload, proposalPayload(item))
	}
	return payload, nil
}

func (s *Service) GetProposal(ctx context.Context, session Session, proposalID string) (map[string]any, error) {
	item, err := s.review.Get(ctx, session.actor(), proposalID)
	if err != nil {
		return nil, err
	}
	return map[string]any{
		"proposal": proposalPayload(item),
		"diff":     diffPayload(item),
	}, nil
}

func (s *Service) ApproveProposal(ctx context.Context, session Session, proposalID string) (map[string]any, error) {
	item, err := s.review.Approve(ctx, session.actor(), proposalID)
	if err != nil {
		return nil, err
	}
	return map[string]any{
		"message":  "Update approved and applied successfully",
		"proposal": proposalPayload(item),
	}, nil
}

func (s *Service) RejectProposal(ctx context.Context, session Session, proposalID string) (map[string]any, error) {
	item, err := s.review.Reject(ctx, session.actor(), proposalID)
	if err != nil {
		return nil, err
	}
	return map[string]any{
		"message":  "Update rejected",
		"proposal": proposalPayload(item),
	}, nil
}

func (s *Service) DashboardStats(ctx context.Context, session Session) (map[string]any, error) {
	if err := s.authorize(session, rbac.ActionRead); err != nil {
		return nil, err
	}
	stats, err := s.store.DashboardStats(ctx)
	if err != nil {
		return nil, err
	}
	return map[string]any{
		"totalCompanies":     stats.TotalCompanies,
		"contactedCompanies": stats.ContactedCompanies,
		"activeOfficers":     stats.ActiveOfficers,
		"pendingApprovals":   stats.PendingApprovals,
	}, nil
}

func (s *Service) CompaniesReport(ctx context.Context, session Session) (*export.Result, error) {
	if err := s.authorize(session, rbac.ActionExport); err != nil {
		return nil, err
	}
	return s.reports.CompaniesReport(ctx)
}

func (s *Service) Ping(ctx context.Context) error {
	return s.store.Ping(ctx)
}
