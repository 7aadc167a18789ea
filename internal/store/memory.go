package store

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"
)

type refreshSession struct {
	userID    string
	expiresAt time.Time
	revoked   bool
}

type memoryData struct {
	users     map[string]User
	companies map[string]Company
	proposals map[string]Proposal
	refresh   map[string]refreshSession
	revoked   map[string]time.Time
}

func (d *memoryData) clone() *memoryData {
	out := &memoryData{
		users:     make(map[string]User, len(d.users)),
		companies: make(map[string]Company, len(d.companies)),
		proposals: make(map[string]Proposal, len(d.proposals)),
		refresh:   make(map[string]refreshSession, len(d.refresh)),
		revoked:   make(map[string]time.Time, len(d.revoked)),
	}
	for id, user := range d.users {
		out.users[id] = user
	}
	for id, item := range d.companies {
		out.companies[id] = item
	}
	for id, item := range d.proposals {
		item.Original = item.Original.Clone()
		item.Requested = item.Requested.Clone()
		out.proposals[id] = item
	}
	for hash, session := range d.refresh {
		out.refresh[hash] = session
	}
	for jti, exp := range d.revoked {
		out.revoked[jti] = exp
	}
	return out
}

// MemoryStore is an in-process store with the same semantics as
// PostgresStore, including foreign keys and cascades. Transactions are
// serialized and work on a private copy that replaces the live data only
// on success.
type MemoryStore struct {
	mu   sync.Mutex
	data *memoryData
	now  func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		data: &memoryData{
			users:     map[string]User{},
			companies: map[string]Company{},
			proposals: map[string]Proposal{},
			refresh:   map[string]refreshSession{},
			revoked:   map[string]time.Time{},
		},
		now: time.Now,
	}
}

func (s *MemoryStore) WithinTx(ctx context.Context, fn func(Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	working := s.data.clone()
	if err := fn(working); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	s.data = working
	return nil
}

func (d *memoryData) GetUserByID(_ context.Context, userID string) (User, error) {
	user, ok := d.users[userID]
	if !ok {
		return User{}, ErrNotFound
	}
	return user, nil
}

func (d *memoryData) GetCompany(_ context.Context, companyID string) (Company, error) {
	item, ok := d.companies[companyID]
	if !ok {
		return Company{}, ErrNotFound
	}
	return d.enrichCompany(item), nil
}

func (d *memoryData) enrichCompany(item Company) Company {
	item.AssignedOfficerName = ""
	if item.AssignedOfficerID != nil {
		item.AssignedOfficerName = d.users[*item.AssignedOfficerID].Name
	}
	return item
}

func (d *memoryData) UpdateCompany(_ context.Context, item Company) error {
	if _, ok := d.companies[item.ID]; !ok {
		return ErrNotFound
	}
	if err := d.checkOfficer(item.AssignedOfficerID); err != nil {
		return fmt.Errorf("update company: %w", err)
	}
	item.AssignedOfficerName = ""
	d.companies[item.ID] = item
	return nil
}

func (d *memoryData) checkOfficer(officerID *string) error {
	if officerID == nil {
		return nil
	}
	if _, ok := d.users[*officerID]; !ok {
		return fmt.Errorf("assigned officer %s does not exist", *officerID)
	}
	return nil
}

func (d *memoryData) InsertProposal(_ context.Context, item Proposal) error {
	if _, ok := d.proposals[item.ID]; ok {
		return fmt.Errorf("insert proposal: duplicate id %s", item.ID)
	}
	if _, ok := d.companies[item.CompanyID]; !ok {
		return fmt.Errorf("insert proposal: company %s does not exist", item.CompanyID)
	}
	if _, ok := d.users[item.OfficerID]; !ok {
		return fmt.Errorf("insert proposal: officer %s does not exist", item.OfficerID)
	}
	item.Original = item.Original.Clone()
	item.Requested = item.Requested.Clone()
	item.CompanyName, item.OfficerName, item.ReviewedByName = "", "", ""
	d.proposals[item.ID] = item
	return nil
}

func (d *memoryData) GetProposal(_ context.Context, proposalID string) (Proposal, error) {
	item, ok := d.proposals[proposalID]
	if !ok {
		return Proposal{}, ErrNotFound
	}
	return d.enrichProposal(item), nil
}

func (d *memoryData) enrichProposal(item Proposal) Proposal {
	item.Original = item.Original.Clone()
	item.Requested = item.Requested.Clone()
	item.CompanyName = d.companies[item.CompanyID].CompanyName
	item.OfficerName = d.users[item.OfficerID].Name
	item.ReviewedByName = ""
	if item.ReviewedBy != nil {
		item.ReviewedByName = d.users[*item.ReviewedBy].Name
	}
	return item
}

func (d *memoryData) ResolveProposal(_ context.Context, proposalID string, status ProposalStatus, reviewerID string, reviewedAt time.Time) error {
	item, ok := d.proposals[proposalID]
	if !ok || item.Status != ProposalPending {
		return ErrNotFound
	}
	if status == ProposalPending || !status.Valid() {
		return fmt.Errorf("resolve proposal: invalid status %q", status)
	}
	if _, ok := d.users[reviewerID]; !ok {
		return fmt.Errorf("resolve proposal: reviewer %s does not exist", reviewerID)
	}
	item.Status = status
	item.ReviewedBy = &reviewerID
	at := reviewedAt
	item.ReviewedAt = &at
	d.proposals[proposalID] = item
	return nil
}

func (s *MemoryStore) GetUserByID(ctx context.Context, userID string) (User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data.GetUserByID(ctx, userID)
}

func (s *MemoryStore) GetUserByEmail(_ context.Context, email string) (User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, user := range s.data.users {
		if strings.EqualFold(user.Email, email) {
			return user, nil
		}
	}
	return User{}, ErrNotFound
}

func (s *MemoryStore) CreateUser(_ context.Context, user User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.data.users {
		if existing.Email == user.Email {
			return ErrDuplicateEmail
		}
	}
	if _, ok := s.data.users[user.ID]; ok {
		return fmt.Errorf("insert user: duplicate id %s", user.ID)
	}
	if user.UpdatedAt.IsZero() {
		user.UpdatedAt = user.CreatedAt
	}
	s.data.users[user.ID] = user
	return nil
}

func (s *MemoryStore) ListUsers(_ context.Context) ([]User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	items := make([]User, 0, len(s.data.users))
	for _, user := range s.data.users {
		items = append(items, user)
	}
	slices.SortFunc(items, func(a, b User) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return items, nil
}

func (s *MemoryStore) ListUsersByRole(_ context.Context, role string) ([]User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	items := make([]User, 0)
	for _, user := range s.data.users {
		if user.Role == role {
			items = append(items, user)
		}
	}
	slices.SortFunc(items, func(a, b User) int {
		if c := cmp.Compare(a.Name, b.Name); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return items, nil
}

func (s *MemoryStore) SaveRefreshSession(_ context.Context, tokenHash, userID string, expiresAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.data.users[userID]; !ok {
		return fmt.Errorf("save refresh session: user %s does not exist", userID)
	}
	s.data.refresh[tokenHash] = refreshSession{userID: userID, expiresAt: expiresAt}
	return nil
}

func (s *MemoryStore) RevokeRefreshSession(_ context.Context, tokenHash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if session, ok := s.data.refresh[tokenHash]; ok {
		session.revoked = true
		s.data.refresh[tokenHash] = session
	}
	return nil
}

func (s *MemoryStore) ConsumeRefreshSession(_ context.Context, tokenHash string) (User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.data.refresh[tokenHash]
	if !ok || session.revoked || !session.expiresAt.After(s.now()) {
		return User{}, ErrNotFound
	}
	session.revoked = true
	s.data.refresh[tokenHash] = session
	user, ok := s.data.users[session.userID]
	if !ok {
		return User{}, ErrNotFound
	}
	return user, nil
}

func (s *MemoryStore) RevokeAccessToken(_ context.Context, jti string, exp time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.data.revoked[jti]; !ok {
		s.data.revoked[jti] = exp
	}
	return nil
}

func (s *MemoryStore) IsAccessTokenRevoked(_ context.Context, jti string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.data.revoked[jti]
	return ok, nil
}

func (s *MemoryStore) ListCompanies(_ context.Context) ([]Company, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	items := make([]Company, 0, len(s.data.companies))
	for _, item := range s.data.companies {
		items = append(items, s.data.enrichCompany(item))
	}
	slices.SortFunc(items, func(a, b Company) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return items, nil
}

func (s *MemoryStore) GetCompany(ctx context.Context, companyID string) (Company, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data.GetCompany(ctx, companyID)
}

func (s *MemoryStore) InsertCompany(_ context.Context, item Company) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.data.companies[item.ID]; ok {
		return fmt.Errorf("insert company: duplicate id %s", item.ID)
	}
	if err := s.data.checkOfficer(item.AssignedOfficerID); err != nil {
		return fmt.Errorf("insert company: %w", err)
	}
	item.AssignedOfficerName = ""
	s.data.companies[item.ID] = item
	return nil
}

// DeleteCompany removes the company and every proposal that targets it.
func (s *MemoryStore) DeleteCompany(_ context.Context, companyID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.data.companies[companyID]; !ok {
		return ErrNotFound
	}
	delete(s.data.companies, companyID)
	for id, item := range s.data.proposals {
		if item.CompanyID == companyID {
			delete(s.data.proposals, id)
		}
	}
	return nil
}

func (s *MemoryStore) GetProposal(ctx context.Context, proposalID string) (Proposal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data.GetProposal(ctx, proposalID)
}

func (s *MemoryStore) ListProposals(_ context.Context, filter ProposalFilter) ([]Proposal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	items := make([]Proposal, 0, len(s.data.proposals))
	for _, item := range s.data.proposals {
		if filter.Status != "" && item.Status != filter.Status {
			continue
		}
		items = append(items, s.data.enrichProposal(item))
	}
	slices.SortFunc(items, func(a, b Proposal) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(b.ID, a.ID)
	})
	return items, nil
}

func (s *MemoryStore) DashboardStats(_ context.Context) (DashboardStats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var stats DashboardStats
	stats.TotalCompanies = len(s.data.companies)
	for _, item := range s.data.companies {
		if item.IsContacted {
			stats.ContactedCompanies++
		}
	}
	for _, user := range s.data.users {
		if user.Role == "Officer" {
			stats.ActiveOfficers++
		}
	}
	for _, item := range s.data.proposals {
		if item.Status == ProposalPending {
			stats.PendingApprovals++
		}
	}
	return stats, nil
}

func (s *MemoryStore) Ping(ctx context.Context) error {
	return ctx.Err()
}
