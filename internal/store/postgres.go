package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
)

const uniqueViolation = "23505"

type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type rowScanner interface {
	Scan(dest ...any) error
}

// queries holds the statements shared by the store and its transactions.
// Inside a transaction forUpdate locks the company and proposal rows read.
type queries struct {
	q         querier
	forUpdate bool
}

type PostgresStore struct {
	queries
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{queries: queries{q: db}, db: db}
}

func (s *PostgresStore) DB() *sql.DB {
	return s.db
}

// WithinTx runs fn in a single transaction. Any error from fn rolls back
// every write fn made.
func (s *PostgresStore) WithinTx(ctx context.Context, fn func(Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	if err := fn(queries{q: tx, forUpdate: true}); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

const userColumns = `id, name, email, password_hash, role, created_at, updated_at`

func scanUser(row rowScanner) (User, error) {
	var user User
	err := row.Scan(&user.ID, &user.Name, &user.Email, &user.PasswordHash, &user.Role, &user.CreatedAt, &user.UpdatedAt)
	return user, err
}

func (q queries) GetUserByID(ctx context.Context, userID string) (User, error) {
	user, err := scanUser(q.q.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id=$1`, userID))
	if errors.Is(err, sql.ErrNoRows) {
		return User{}, ErrNotFound
	}
	if err != nil {
		return User{}, fmt.Errorf("get user: %w", err)
	}
	return user, nil
}

func (s *PostgresStore) GetUserByEmail(ctx context.Context, email string) (User, error) {
	user, err := scanUser(s.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE LOWER(email)=LOWER($1)`, email))
	if errors.Is(err, sql.ErrNoRows) {
		return User{}, ErrNotFound
	}
	if err != nil {
		return User{}, fmt.Errorf("get user by email: %w", err)
	}
	return user, nil
}

func (s *PostgresStore) CreateUser(ctx context.Context, user User) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO users (id, name, email, password_hash, role, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $6)
	`, user.ID, user.Name, user.Email, user.PasswordHash, user.Role, user.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return ErrDuplicateEmail
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListUsers(ctx context.Context) ([]User, error) {
	return s.listUsers(ctx, `SELECT `+userColumns+` FROM users ORDER BY created_at DESC, id`)
}

func (s *PostgresStore) ListUsersByRole(ctx context.Context, role string) ([]User, error) {
	return s.listUsers(ctx, `SELECT `+userColumns+` FROM users WHERE role=$1 ORDER BY name, id`, role)
}

func (s *PostgresStore) listUsers(ctx context.Context, query string, args ...any) ([]User, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	items := make([]User, 0)
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		items = append(items, user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate users: %w", err)
	}
	return items, nil
}

func (s *PostgresStore) SaveRefreshSession(ctx context.Context, tokenHash, userID string, expiresAt time.Time) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO refresh_sessions (token_hash, user_id, expires_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (token_hash) DO UPDATE SET user_id=EXCLUDED.user_id, expires_at=EXCLUDED.expires_at, revoked_at=NULL
	`, tokenHash, userID, expiresAt)
	if err != nil {
		return fmt.Errorf("save refresh session: %w", err)
	}
	return nil
}

func (s *PostgresStore) RevokeRefreshSession(ctx context.Context, tokenHash string) error {
	_, err := s.db.ExecContext(ctx, `UPDATE refresh_sessions SET revoked_at=NOW() WHERE token_hash=$1`, tokenHash)
	if err != nil {
		return fmt.Errorf("revoke refresh session: %w", err)
	}
	return nil
}

// ConsumeRefreshSession revokes a live refresh token and returns its owner
// in one statement, so a token can be redeemed at most once.
func (s *PostgresStore) ConsumeRefreshSession(ctx context.Context, tokenHash string) (User, error) {
	user, err := scanUser(s.db.QueryRowContext(ctx, `
		WITH consumed AS (
			UPDATE refresh_sessions SET revoked_at=NOW()
			WHERE token_hash=$1 AND revoked_at IS NULL AND expires_at > NOW()
			RETURNING user_id
		)
		SELECT u.id, u.name, u.email, u.password_hash, u.role, u.created_at, u.updated_at
		FROM consumed c
		JOIN users u ON u.id = c.user_id
	`, tokenHash))
	if errors.Is(err, sql.ErrNoRows) {
		return User{}, ErrNotFound
	}
	if err != nil {
		return User{}, fmt.Errorf("consume refresh session: %w", err)
	}
	return user, nil
}

func (s *PostgresStore) RevokeAccessToken(ctx context.Context, jti string, exp time.Time) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO revoked_access_tokens (jti, expires_at)
		VALUES ($1, $2)
		ON CONFLICT (jti) DO NOTHING
	`, jti, exp)
	if err != nil {
		return fmt.Errorf("revoke access token: %w", err)
	}
	return nil
}

func (s *PostgresStore) IsAccessTokenRevoked(ctx context.Context, jti string) (bool, error) {
	var revoked bool
	err := s.db.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM revoked_access_tokens WHERE jti=$1)`, jti).Scan(&revoked)
	if err != nil {
		return false, fmt.Errorf("check revoked token: %w", err)
	}
	return revoked, nil
}

const companySelect = `
	SELECT c.id, c.company_name, c.company_address, c.drive, c.type_of_drive, c.follow_up,
		c.is_contacted, c.remarks, c.contact_details, c.hr1_details, c.hr2_details, c.package,
		c.assigned_officer_id, COALESCE(u.name, ''), c.created_at, c.updated_at
	FROM companies c
	LEFT JOIN users u ON u.id = c.assigned_officer_id
`

func scanCompany(row rowScanner) (Company, error) {
	var item Company
	var officerID sql.NullString
	err := row.Scan(
		&item.ID,
		&item.CompanyName,
		&item.CompanyAddress,
		&item.Drive,
		&item.TypeOfDrive,
		&item.FollowUp,
		&item.IsContacted,
		&item.Remarks,
		&item.ContactDetails,
		&item.HR1Details,
		&item.HR2Details,
		&item.Package,
		&officerID,
		&item.AssignedOfficerName,
		&item.CreatedAt,
		&item.UpdatedAt,
	)
	if err != nil {
		return Company{}, err
	}
	if officerID.Valid {
		item.AssignedOfficerID = &officerID.String
	}
	return item, nil
}

func (s *PostgresStore) ListCompanies(ctx context.Context) ([]Company, error) {
	rows, err := s.db.QueryContext(ctx, companySelect+` ORDER BY c.created_at DESC, c.id`)
	if err != nil {
		return nil, fmt.Errorf("list companies: %w", err)
	}
	defer rows.Close()

	items := make([]Company, 0)
	for rows.Next() {
		item, err := scanCompany(rows)
		if err != nil {
			return nil, fmt.Errorf("scan company: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate companies: %w", err)
	}
	return items, nil
}

func (q queries) GetCompany(ctx context.Context, companyID string) (Company, error) {
	query := companySelect + ` WHERE c.id=$1`
	if q.forUpdate {
		query += ` FOR UPDATE OF c`
	}
	item, err := scanCompany(q.q.QueryRowContext(ctx, query, companyID))
	if errors.Is(err, sql.ErrNoRows) {
		return Company{}, ErrNotFound
	}
	if err != nil {
		return Company{}, fmt.Errorf("get company: %w", err)
	}
	return item, nil
}

func (s *PostgresStore) InsertCompany(ctx context.Context, item Company) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO companies (
			id, company_name, company_address, drive, type_of_drive, follow_up,
			is_contacted, remarks, contact_details, hr1_details, hr2_details,
			package, assigned_officer_id, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`,
		item.ID, item.CompanyName, item.CompanyAddress, item.Drive, item.TypeOfDrive, item.FollowUp,
		item.IsContacted, item.Remarks, item.ContactDetails, item.HR1Details, item.HR2Details,
		item.Package, item.AssignedOfficerID, item.CreatedAt, item.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert company: %w", err)
	}
	return nil
}

func (q queries) UpdateCompany(ctx context.Context, item Company) error {
	result, err := q.q.ExecContext(ctx, `
		UPDATE companies
		SET company_name=$2, company_address=$3, drive=$4, type_of_drive=$5, follow_up=$6,
			is_contacted=$7, remarks=$8, contact_details=$9, hr1_details=$10, hr2_details=$11,
			package=$12, assigned_officer_id=$13, updated_at=$14
		WHERE id=$1
	`,
		item.ID, item.CompanyName, item.CompanyAddress, item.Drive, item.TypeOfDrive, item.FollowUp,
		item.IsContacted, item.Remarks, item.ContactDetails, item.HR1Details, item.HR2Details,
		item.Package, item.AssignedOfficerID, item.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update company: %w", err)
	}
	return requireRow(result, "update company")
}

func (s *PostgresStore) DeleteCompany(ctx context.Context, companyID string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM companies WHERE id=$1`, companyID)
	if err != nil {
		return fmt.Errorf("delete company: %w", err)
	}
	return requireRow(result, "delete company")
}

const proposalSelect = `
	SELECT pu.id, pu.company_id, pu.officer_id, pu.original_data, pu.updated_data, pu.status,
		pu.reviewed_by, pu.reviewed_at, pu.created_at, c.company_name, o.name, COALESCE(r.name, '')
	FROM pending_updates pu
	JOIN companies c ON c.id = pu.company_id
	JOIN users o ON o.id = pu.officer_id
	LEFT JOIN users r ON r.id = pu.reviewed_by
`

func scanProposal(row rowScanner) (Proposal, error) {
	var item Proposal
	var status string
	var reviewedBy sql.NullString
	var reviewedAt sql.NullTime
	err := row.Scan(
		&item.ID,
		&item.CompanyID,
		&item.OfficerID,
		&item.Original,
		&item.Requested,
		&status,
		&reviewedBy,
		&reviewedAt,
		&item.CreatedAt,
		&item.CompanyName,
		&item.OfficerName,
		&item.ReviewedByName,
	)
	if err != nil {
		return Proposal{}, err
	}
	item.Status = ProposalStatus(status)
	if reviewedBy.Valid {
		item.ReviewedBy = &reviewedBy.String
	}
	if reviewedAt.Valid {
		at := reviewedAt.Time
		item.ReviewedAt = &at
	}
	return item, nil
}

func (q queries) InsertProposal(ctx context.Context, item Proposal) error {
	_, err := q.q.ExecContext(ctx, `
		INSERT INTO pending_updates (id, company_id, officer_id, original_data, updated_data, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, item.ID, item.CompanyID, item.OfficerID, item.Original, item.Requested, string(item.Status), item.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert proposal: %w", err)
	}
	return nil
}

func (q queries) GetProposal(ctx context.Context, proposalID string) (Proposal, error) {
	query := proposalSelect + ` WHERE pu.id=$1`
	if q.forUpdate {
		query += ` FOR UPDATE OF pu`
	}
	item, err := scanProposal(q.q.QueryRowContext(ctx, query, proposalID))
	if errors.Is(err, sql.ErrNoRows) {
		return Proposal{}, ErrNotFound
	}
	if err != nil {
		return Proposal{}, fmt.Errorf("get proposal: %w", err)
	}
	return item, nil
}

// ResolveProposal moves a pending proposal to a terminal status. It never
// touches a proposal that has already been resolved.
func (q queries) ResolveProposal(ctx context.Context, proposalID string, status ProposalStatus, reviewerID string, reviewedAt time.Time) error {
	result, err := q.q.ExecContext(ctx, `
		UPDATE pending_updates
		SET status=$2, reviewed_by=$3, reviewed_at=$4
		WHERE id=$1 AND status='pending'
	`, proposalID, string(status), reviewerID, reviewedAt)
	if err != nil {
		return fmt.Errorf("resolve proposal: %w", err)
	}
	return requireRow(result, "resolve proposal")
}

func (s *PostgresStore) ListProposals(ctx context.Context, filter ProposalFilter) ([]Proposal, error) {
	query := proposalSelect
	args := make([]any, 0, 1)
	if filter.Status != "" {
		query += ` WHERE pu.status=$1`
		args = append(args, string(filter.Status))
	}
	query += ` ORDER BY pu.created_at DESC, pu.id DESC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list proposals: %w", err)
	}
	defer rows.Close()

	items := make([]Proposal, 0)
	for rows.Next() {
		item, err := scanProposal(rows)
		if err != nil {
			return nil, fmt.Errorf("scan proposal: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate proposals: %w", err)
	}
	return items, nil
}

func (s *PostgresStore) DashboardStats(ctx context.Context) (DashboardStats, error) {
	var stats DashboardStats
	err := s.db.QueryRowContext(ctx, `
		SELECT
			(SELECT COUNT(*) FROM companies),
			(SELECT COUNT(*) FROM companies WHERE is_contacted),
			(SELECT COUNT(*) FROM users WHERE role = 'Officer'),
			(SELECT COUNT(*) FROM pending_updates WHERE status = 'pending')
	`).Scan(&stats.TotalCompanies, &stats.ContactedCompanies, &stats.ActiveOfficers, &stats.PendingApprovals)
	if err != nil {
		return DashboardStats{}, fmt.Errorf("dashboard stats: %w", err)
	}
	return stats, nil
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func requireRow(result sql.Result, op string) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}
