package app

import (
	"context"
	"errors"
	"fmt"

	"placement/api/internal/authpw"
	"placement/api/internal/company"
	"placement/api/internal/fieldmap"
	"placement/api/internal/rbac"
	"placement/api/internal/store"
	"placement/api/internal/util"
)

type seedUser struct {
	name  string
	email string
	role  rbac.Role
}

var seedUsers = []seedUser{
	{name: "John Admin", email: "admin@placement.com", role: rbac.RoleAdmin},
	{name: "Sarah Manager", email: "manager@placement.com", role: rbac.RoleManager},
	{name: "Mike Officer", email: "officer@placement.com", role: rbac.RoleOfficer},
}

// SeedResult reports what Seed inserted.
type SeedResult struct {
	Users     int
	Companies int
}

// Seed creates the demo accounts and two sample companies. Existing users
// are kept, and companies are only added to an empty table.
func (s *Service) Seed(ctx context.Context) (SeedResult, error) {
	var result SeedResult
	password := s.cfg.SeedPassword
	if password == "" {
		return result, fmt.Errorf("%w: seed password is empty", authpw.ErrInvalidInput)
	}

	var officerID string
	for _, u := range seedUsers {
		existing, err := s.store.GetUserByEmail(ctx, u.email)
		if err == nil {
			if u.role == rbac.RoleOfficer {
				officerID = existing.ID
			}
			continue
		}
		if !errors.Is(err, store.ErrNotFound) {
			return result, err
		}
		created, err := s.passwords.CreateUser(ctx, authpw.CreateUserRequest{
			Name:     u.name,
			Email:    u.email,
			Password: password,
			Role:     string(u.role),
		})
		if err != nil {
			return result, fmt.Errorf("seed user %s: %w", u.email, err)
		}
		if u.role == rbac.RoleOfficer {
			officerID = created.ID
		}
		result.Users++
	}

	companies, err := s.store.ListCompanies(ctx)
	if err != nil {
		return result, err
	}
	if len(companies) > 0 {
		return result, nil
	}

	now := s.now().UTC()
	for _, fields := range seedCompanies(officerID) {
		item, err := company.Apply(store.Company{ID: util.NewID("cmp"), CreatedAt: now, UpdatedAt: now}, fields)
		if err != nil {
			return result, err
		}
		if err := s.store.InsertCompany(ctx, item); err != nil {
			return result, fmt.Errorf("seed company %s: %w", item.CompanyName, err)
		}
		result.Companies++
	}

	s.logger.InfoContext(ctx, "seed complete", "users", result.Users, "companies", result.Companies)
	return result, nil
}

func seedCompanies(officerID string) []fieldmap.Map {
	officer := fieldmap.String(officerID)
	return []fieldmap.Map{
		fieldmap.FromEntries(
			fieldmap.Entry{Key: company.FieldCompanyName, Value: fieldmap.String("TechCorp Inc.")},
			fieldmap.Entry{Key: company.FieldCompanyAddress, Value: fieldmap.String("123 Tech Street, Silicon Valley, CA")},
			fieldmap.Entry{Key: company.FieldDrive, Value: fieldmap.String("Campus Drive 2024")},
			fieldmap.Entry{Key: company.FieldTypeOfDrive, Value: fieldmap.String("On-Campus")},
			fieldmap.Entry{Key: company.FieldFollowUp, Value: fieldmap.String("Weekly")},
			fieldmap.Entry{Key: company.FieldIsContacted, Value: fieldmap.Bool(true)},
			fieldmap.Entry{Key: company.FieldRemarks, Value: fieldmap.String("Interested in CS students")},
			fieldmap.Entry{Key: company.FieldContactDetails, Value: fieldmap.String("hr@techcorp.com, +1-555-0123")},
			fieldmap.Entry{Key: company.FieldHR1Details, Value: fieldmap.String("John Smith - Sr. HR Manager")},
			fieldmap.Entry{Key: company.FieldHR2Details, Value: fieldmap.String("Sarah Johnson - Recruiter")},
			fieldmap.Entry{Key: company.FieldPackage, Value: fieldmap.String("₹12 LPA")},
			fieldmap.Entry{Key: company.FieldAssignedOfficerID, Value: officer},
		),
		fieldmap.FromEntries(
			fieldmap.Entry{Key: company.FieldCompanyName, Value: fieldmap.String("DataSoft Ltd.")},
			fieldmap.Entry{Key: company.FieldCompanyAddress, Value: fieldmap.String("456 Data Avenue, Austin, TX")},
			fieldmap.Entry{Key: company.FieldDrive, Value: fieldmap.String("Virtual Drive 2024")},
			fieldmap.Entry{Key: company.FieldTypeOfDrive, Value: fieldmap.String("Virtual")},
			fieldmap.Entry{Key: company.FieldFollowUp, Value: fieldmap.String("Bi-weekly")},
			fieldmap.Entry{Key: company.FieldIsContacted, Value: fieldmap.Bool(false)},
			fieldmap.Entry{Key: company.FieldRemarks, Value: fieldmap.String("Looking for data science roles")},
			fieldmap.Entry{Key: company.FieldContactDetails, Value: fieldmap.String("careers@datasoft.com, +1-555-0456")},
			fieldmap.Entry{Key: company.FieldHR1Details, Value: fieldmap.String("Alex Chen - Head of Talent")},
			fieldmap.Entry{Key: company.FieldHR2Details, Value: fieldmap.String("Maria Garcia - Campus Relations")},
			fieldmap.Entry{Key: company.FieldPackage, Value: fieldmap.String("₹15 LPA")},
			fieldmap.Entry{Key: company.FieldAssignedOfficerID, Value: officer},
		),
	}
}
