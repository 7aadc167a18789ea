package store_test

import (
	"context"
	"errors"
	"os"
	"strings"
	"testing"
	"time"

	"placement/api/internal/approval"
	"placement/api/internal/company"
	"placement/api/internal/fieldmap"
	"placement/api/internal/rbac"
	"placement/api/internal/search"
	"placement/api/internal/store"
)

var (
	pgAdmin   = approval.Actor{ID: "usr_admin", Role: rbac.RoleAdmin}
	pgOfficer = approval.Actor{ID: "usr_officer", Role: rbac.RoleOfficer}
)

type pgFixture struct {
	db     *store.PostgresStore
	gate   *approval.Gate
	review *approval.ReviewEngine
	search *search.PgFTS
}

// openPostgres gives every test a freshly migrated schema seeded with one
// admin, one officer and the Acme company.
func openPostgres(t *testing.T) *pgFixture {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	databaseURL := strings.TrimSpace(os.Getenv("TEST_DATABASE_URL"))
	if databaseURL == "" {
		t.Skip("TEST_DATABASE_URL is not set")
	}

	ctx := context.Background()
	db, err := store.Open(ctx, databaseURL)
	if err != nil {
		t.Fatalf("open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if _, err := db.ExecContext(ctx, `DROP SCHEMA IF EXISTS public CASCADE; CREATE SCHEMA public;`); err != nil {
		t.Fatalf("reset schema: %v", err)
	}
	if err := store.ApplyMigrations(ctx, db, store.Migrations()); err != nil {
		t.Fatalf("apply migrations: %v", err)
	}

	pg := store.NewPostgresStore(db)
	now := time.Now().UTC()
	for _, user := range []store.User{
		{ID: pgAdmin.ID, Name: "John Admin", Email: "admin@placement.test", PasswordHash: "x", Role: "Admin", CreatedAt: now},
		{ID: pgOfficer.ID, Name: "Mike Officer", Email: "officer@placement.test", PasswordHash: "x", Role: "Officer", CreatedAt: now},
	} {
		if err := pg.CreateUser(ctx, user); err != nil {
			t.Fatalf("create user %s: %v", user.ID, err)
		}
	}
	if err := pg.InsertCompany(ctx, store.Company{
		ID:             "cmp_acme",
		CompanyName:    "Acme",
		CompanyAddress: "1 Main St, Pune",
		Drive:          "Campus 2025",
		TypeOfDrive:    "On-Campus",
		FollowUp:       "Weekly",
		ContactDetails: "hr@acme.test",
		Package:        "10",
		CreatedAt:      now,
		UpdatedAt:      now,
	}); err != nil {
		t.Fatalf("insert company: %v", err)
	}

	return &pgFixture{
		db:     pg,
		gate:   approval.NewGate(pg),
		review: approval.NewReviewEngine(pg),
		search: search.NewPgFTS(db),
	}
}

func (f *pgFixture) packageOf(t *testing.T) string {
	t.Helper()
	item, err := f.db.GetCompany(context.Background(), "cmp_acme")
	if err != nil {
		t.Fatalf("get company: %v", err)
	}
	return item.Package
}

func (f *pgFixture) submitPackage(t *testing.T, value string) store.Proposal {
	t.Helper()
	var requested fieldmap.Map
	requested.Set(company.FieldPackage, fieldmap.String(value))
	outcome, err := f.gate.SubmitUpdate(context.Background(), pgOfficer, "cmp_acme", requested)
	if err != nil {
		t.Fatalf("submit update: %v", err)
	}
	if outcome.Mode != approval.ModeSubmitted || outcome.Proposal == nil {
		t.Fatalf("outcome = %+v, want a submitted proposal", outcome)
	}
	return *outcome.Proposal
}

func countProposals(t *testing.T, f *pgFixture) int {
	t.Helper()
	items, err := f.db.ListProposals(context.Background(), store.ProposalFilter{})
	if err != nil {
		t.Fatalf("list proposals: %v", err)
	}
	return len(items)
}

func TestPostgresOfficerSubmissionLeavesCompanyUntouched(t *testing.T) {
	f := openPostgres(t)

	proposal := f.submitPackage(t, "12")

	stored, err := f.db.GetProposal(context.Background(), proposal.ID)
	if err != nil {
		t.Fatalf("get proposal: %v", err)
	}
	if stored.Status != store.ProposalPending {
		t.Fatalf("status = %q, want pending", stored.Status)
	}
	if got, _ := stored.Original.Get(company.FieldPackage); got.String() != "10" {
		t.Fatalf("original package = %q, want 10", got.String())
	}
	if got, _ := stored.Requested.Get(company.FieldPackage); got.String() != "12" {
		t.Fatalf("requested package = %q, want 12", got.String())
	}
	if got := f.packageOf(t); got != "10" {
		t.Fatalf("company package = %q, want 10", got)
	}
}

func TestPostgresApproveAppliesRequestedFields(t *testing.T) {
	f := openPostgres(t)
	ctx := context.Background()
	proposal := f.submitPackage(t, "12")

	approved, err := f.review.Approve(ctx, pgAdmin, proposal.ID)
	if err != nil {
		t.Fatalf("approve: %v", err)
	}
	if approved.Status != store.ProposalApproved {
		t.Fatalf("status = %q, want approved", approved.Status)
	}
	if approved.ReviewedBy == nil || *approved.ReviewedBy != pgAdmin.ID || approved.ReviewedAt == nil {
		t.Fatalf("review stamp missing: %+v", approved)
	}
	if got := f.packageOf(t); got != "12" {
		t.Fatalf("company package = %q, want 12", got)
	}

	for _, resolve := range []func(context.Context, approval.Actor, string) (store.Proposal, error){f.review.Approve, f.review.Reject} {
		if _, err := resolve(ctx, pgAdmin, proposal.ID); !errors.Is(err, approval.ErrInvalidState) {
			t.Fatalf("second review error = %v, want ErrInvalidState", err)
		}
	}
	if got := f.packageOf(t); got != "12" {
		t.Fatalf("company package after re-review = %q, want 12", got)
	}
}

func TestPostgresRejectKeepsCompany(t *testing.T) {
	f := openPostgres(t)
	ctx := context.Background()
	proposal := f.submitPackage(t, "12")

	rejected, err := f.review.Reject(ctx, pgAdmin, proposal.ID)
	if err != nil {
		t.Fatalf("reject: %v", err)
	}
	if rejected.Status != store.ProposalRejected {
		t.Fatalf("status = %q, want rejected", rejected.Status)
	}
	if got := f.packageOf(t); got != "10" {
		t.Fatalf("company package = %q, want 10", got)
	}
	if _, err := f.review.Approve(ctx, pgAdmin, proposal.ID); !errors.Is(err, approval.ErrInvalidState) {
		t.Fatalf("approve after reject error = %v, want ErrInvalidState", err)
	}
}

func TestPostgresUnknownCompanyIsNotFound(t *testing.T) {
	f := openPostgres(t)
	var requested fieldmap.Map
	requested.Set(company.FieldPackage, fieldmap.String("12"))

	for _, actor := range []approval.Actor{pgAdmin, pgOfficer} {
		if _, err := f.gate.SubmitUpdate(context.Background(), actor, "cmp_missing", requested); !errors.Is(err, approval.ErrNotFound) {
			t.Fatalf("%s submit error = %v, want ErrNotFound", actor.Role, err)
		}
	}
	if n := countProposals(t, f); n != 0 {
		t.Fatalf("proposals = %d, want 0", n)
	}
	if got := f.packageOf(t); got != "10" {
		t.Fatalf("company package = %q, want 10", got)
	}
}

func TestPostgresProposalKeepsFieldOrder(t *testing.T) {
	f := openPostgres(t)
	ctx := context.Background()

	var requested fieldmap.Map
	requested.Set(company.FieldRemarks, fieldmap.String("call after exams"))
	requested.Set(company.FieldPackage, fieldmap.String("12"))
	requested.Set(company.FieldDrive, fieldmap.String("Pool 2025"))
	outcome, err := f.gate.SubmitUpdate(ctx, pgOfficer, "cmp_acme", requested)
	if err != nil {
		t.Fatalf("submit update: %v", err)
	}

	stored, err := f.db.GetProposal(ctx, outcome.Proposal.ID)
	if err != nil {
		t.Fatalf("get proposal: %v", err)
	}
	wantRequested := []string{company.FieldRemarks, company.FieldPackage, company.FieldDrive}
	if got := stored.Requested.Keys(); strings.Join(got, ",") != strings.Join(wantRequested, ",") {
		t.Fatalf("requested keys = %v, want %v", got, wantRequested)
	}
	wantOriginal := make([]string, 0, len(company.Fields))
	for _, field := range company.Fields {
		wantOriginal = append(wantOriginal, field.Name)
	}
	if got := stored.Original.Keys(); strings.Join(got, ",") != strings.Join(wantOriginal, ",") {
		t.Fatalf("original keys = %v, want %v", got, wantOriginal)
	}
}

func TestPostgresDeleteCompanyRemovesProposals(t *testing.T) {
	f := openPostgres(t)
	ctx := context.Background()
	proposal := f.submitPackage(t, "12")

	if err := f.db.DeleteCompany(ctx, "cmp_acme"); err != nil {
		t.Fatalf("delete company: %v", err)
	}
	if _, err := f.db.GetProposal(ctx, proposal.ID); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("get proposal error = %v, want ErrNotFound", err)
	}
	if n := countProposals(t, f); n != 0 {
		t.Fatalf("proposals = %d, want 0", n)
	}
}

func TestPostgresFullTextSearchMatchesPrefixes(t *testing.T) {
	f := openPostgres(t)
	ctx := context.Background()

	cases := map[string]int{
		"acm":         1,
		"pune":        1,
		"campus 2025": 1,
		"techcorp":    0,
		"&|!":         0,
	}
	for text, want := range cases {
		ids, err := f.search.Search(ctx, search.Query{Text: text})
		if err != nil {
			t.Fatalf("search %q: %v", text, err)
		}
		if len(ids) != want {
			t.Fatalf("search %q = %v, want %d hits", text, ids, want)
		}
	}
}
