// Package approval routes company updates by role and resolves the
// proposals officers submit.
package approval

import (
	"context"
	"errors"
	"fmt"
	"time"

	"placement/api/internal/company"
	"placement/api/internal/fieldmap"
	"placement/api/internal/rbac"
	"placement/api/internal/store"
)

type Mode string

const (
	ModeApplied   Mode = "applied"
	ModeSubmitted Mode = "submitted"
)

// Outcome carries exactly one of Company (applied) or Proposal (submitted).
type Outcome struct {
	Mode     Mode
	Company  *store.Company
	Proposal *store.Proposal
}

type Gate struct {
	store Store
	settings
}

func NewGate(s Store, opts ...Option) *Gate {
	return &Gate{store: s, settings: apply(opts)}
}

// Route reports which write path role takes, or ErrForbidden when it has
// neither.
func (g *Gate) Route(role rbac.Role) (Mode, error) {
	switch {
	case g.policy(role, rbac.ActionEdit):
		return ModeApplied, nil
	case g.policy(role, rbac.ActionPropose):
		return ModeSubmitted, nil
	default:
		return "", fmt.Errorf("%w: role %q cannot update companies", ErrForbidden, role)
	}
}

// SubmitUpdate writes fields to the company directly when the actor may
// edit, and otherwise records a pending proposal holding a snapshot of the
// company as it is now. The two paths never both happen.
func (g *Gate) SubmitUpdate(ctx context.Context, actor Actor, companyID string, fields fieldmap.Map) (Outcome, error) {
	mode, err := g.Route(actor.Role)
	if err != nil {
		return Outcome{}, err
	}
	if err := company.ValidateUpdate(fields); err != nil {
		return Outcome{}, validation(err)
	}

	var outcome Outcome
	err = g.store.WithinTx(ctx, func(tx store.Tx) error {
		current, err := tx.GetCompany(ctx, companyID)
		if err != nil {
			return notFound(err, "company", companyID)
		}
		if err := checkAssignee(ctx, tx, fields); err != nil {
			return err
		}

		if mode == ModeApplied {
			updated, err := writeCompany(ctx, tx, current, fields, g.now())
			if err != nil {
				return err
			}
			outcome = Outcome{Mode: ModeApplied, Company: &updated}
			return nil
		}

		proposal := store.Proposal{
			ID:        g.newID(),
			CompanyID: current.ID,
			OfficerID: actor.ID,
			Original:  company.Snapshot(current),
			Requested: fields.Clone(),
			Status:    store.ProposalPending,
			CreatedAt: g.now().UTC(),
		}
		if err := tx.InsertProposal(ctx, proposal); err != nil {
			return err
		}
		stored, err := tx.GetProposal(ctx, proposal.ID)
		if err != nil {
			return fmt.Errorf("reload proposal: %w", err)
		}
		outcome = Outcome{Mode: ModeSubmitted, Proposal: &stored}
		return nil
	})
	if err != nil {
		return Outcome{}, err
	}

	g.committed(ctx, actor, outcome)
	return outcome, nil
}

func (g *Gate) committed(ctx context.Context, actor Actor, outcome Outcome) {
	if g.observer != nil {
		g.observer.UpdateRouted(outcome.Mode)
	}
	if outcome.Mode == ModeApplied {
		g.logger.InfoContext(ctx, "company updated",
			"company_id", outcome.Company.ID,
			"actor_id", actor.ID,
		)
		return
	}

	proposal := *outcome.Proposal
	g.logger.InfoContext(ctx, "proposal submitted",
		"proposal_id", proposal.ID,
		"company_id", proposal.CompanyID,
		"actor_id", actor.ID,
		"status", string(proposal.Status),
	)
	if g.notifier == nil {
		return
	}
	if err := g.notifier.ProposalSubmitted(ctx, proposal); err != nil {
		g.logger.WarnContext(ctx, "proposal notification failed",
			"proposal_id", proposal.ID,
			"error", err.Error(),
		)
	}
}

// writeCompany merges fields onto current and persists the result, then
// reads the row back so joined columns reflect the write.
func writeCompany(ctx context.Context, tx store.Tx, current store.Company, fields fieldmap.Map, now time.Time) (store.Company, error) {
	merged, err := company.Apply(current, fields)
	if err != nil {
		return store.Company{}, validation(err)
	}
	merged.UpdatedAt = now.UTC()
	if err := tx.UpdateCompany(ctx, merged); err != nil {
		return store.Company{}, notFound(err, "company", current.ID)
	}
	updated, err := tx.GetCompany(ctx, current.ID)
	if err != nil {
		return store.Company{}, fmt.Errorf("reload company: %w", err)
	}
	return updated, nil
}

// checkAssignee rejects assignments to users that are missing or are not
// officers.
func checkAssignee(ctx context.Context, tx store.Tx, fields fieldmap.Map) error {
	officerID, ok := company.AssignedOfficer(fields)
	if !ok || officerID == "" {
		return nil
	}
	user, err := tx.GetUserByID(ctx, officerID)
	if errors.Is(err, store.ErrNotFound) || (err == nil && rbac.Normalize(user.Role) != rbac.RoleOfficer) {
		return validation(&company.ValidationError{Field: company.FieldAssignedOfficerID, Reason: "must reference an officer"})
	}
	if err != nil {
		return fmt.Errorf("load assignee: %w", err)
	}
	return nil
}
