package store

import (
	"context"
	"errors"
	"time"

	"placement/api/internal/fieldmap"
)

// ErrNotFound is returned when a looked-up row does not exist.
var ErrNotFound = errors.New("not found")

// ErrDuplicateEmail is returned when a user insert collides on email.
var ErrDuplicateEmail = errors.New("email already exists")

type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	Role         string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type Company struct {
	ID                string
	CompanyName       string
	CompanyAddress    string
	Drive             string
	TypeOfDrive       string
	FollowUp          string
	IsContacted       bool
	Remarks           string
	ContactDetails    string
	HR1Details        string
	HR2Details        string
	Package           string
	AssignedOfficerID *string
	CreatedAt         time.Time
	UpdatedAt         time.Time
	// Joined for API responses
	AssignedOfficerName string
}

type ProposalStatus string

const (
	ProposalPending  ProposalStatus = "pending"
	ProposalApproved ProposalStatus = "approved"
	ProposalRejected ProposalStatus = "rejected"
)

func (s ProposalStatus) Valid() bool {
	switch s {
	case ProposalPending, ProposalApproved, ProposalRejected:
		return true
	default:
		return false
	}
}

// Proposal is a pending company update submitted by an officer. Original is
// the company snapshot at submission time; Requested holds the fields the
// officer wants applied.
type Proposal struct {
	ID         string
	CompanyID  string
	OfficerID  string
	Original   fieldmap.Map
	Requested  fieldmap.Map
	Status     ProposalStatus
	ReviewedBy *string
	ReviewedAt *time.Time
	CreatedAt  time.Time
	// Joined fields for API responses
	CompanyName    string
	OfficerName    string
	ReviewedByName string
}

type ProposalFilter struct {
	Status ProposalStatus
}

type DashboardStats struct {
	TotalCompanies     int
	ContactedCompanies int
	ActiveOfficers     int
	PendingApprovals   int
}

// RecordStore reads and writes canonical company rows.
type RecordStore interface {
	GetCompany(ctx context.Context, companyID string) (Company, error)
	UpdateCompany(ctx context.Context, company Company) error
}

// ProposalStore reads and writes proposals.
type ProposalStore interface {
	InsertProposal(ctx context.Context, proposal Proposal) error
	GetProposal(ctx context.Context, proposalID string) (Proposal, error)
	ResolveProposal(ctx context.Context, proposalID string, status ProposalStatus, reviewerID string, reviewedAt time.Time) error
}

// Tx is the capability set available inside WithinTx. In Postgres the
// company and proposal reads lock their rows until commit.
type Tx interface {
	RecordStore
	ProposalStore
	GetUserByID(ctx context.Context, userID string) (User, error)
}

// Store is the full persistence surface used by the service.
type Store interface {
	WithinTx(ctx context.Context, fn func(Tx) error) error
	Ping(ctx context.Context) error

	GetUserByID(ctx context.Context, userID string) (User, error)
	GetUserByEmail(ctx context.Context, email string) (User, error)
	CreateUser(ctx context.Context, user User) error
	ListUsers(ctx context.Context) ([]User, error)
	ListUsersByRole(ctx context.Context, role string) ([]User, error)

	SaveRefreshSession(ctx context.Context, tokenHash, userID string, expiresAt time.Time) error
	RevokeRefreshSession(ctx context.Context, tokenHash string) error
	ConsumeRefreshSession(ctx context.Context, tokenHash string) (User, error)
	RevokeAccessToken(ctx context.Context, jti string, exp time.Time) error
	IsAccessTokenRevoked(ctx context.Context, jti string) (bool, error)

	ListCompanies(ctx context.Context) ([]Company, error)
	GetCompany(ctx context.Context, companyID string) (Company, error)
	InsertCompany(ctx context.Context, item Company) error
	DeleteCompany(ctx context.Context, companyID string) error

	GetProposal(ctx context.Context, proposalID string) (Proposal, error)
	ListProposals(ctx context.Context, filter ProposalFilter) ([]Proposal, error)

	DashboardStats(ctx context.Context) (DashboardStats, error)
}

var (
	_ Store = (*PostgresStore)(nil)
	_ Store = (*MemoryStore)(nil)
	_ Tx    = queries{}
	_ Tx    = (*memoryData)(nil)
)
