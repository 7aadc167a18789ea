package approval

import (
	"context"
	"errors"
	"fmt"

	"placement/api/internal/company"
	"placement/api/internal/rbac"
	"placement/api/internal/store"
)

type ReviewEngine struct {
	store Store
	settings
}

func NewReviewEngine(s Store, opts ...Option) *ReviewEngine {
	return &ReviewEngine{store: s, settings: apply(opts)}
}

func (r *ReviewEngine) authorize(actor Actor) error {
	if !r.policy(actor.Role, rbac.ActionReview) {
		return fmt.Errorf("%w: role %q cannot review proposals", ErrForbidden, actor.Role)
	}
	return nil
}

// List returns proposals newest first with company and officer names
// joined at read time.
func (r *ReviewEngine) List(ctx context.Context, actor Actor, filter store.ProposalFilter) ([]store.Proposal, error) {
	if err := r.authorize(actor); err != nil {
		return nil, err
	}
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", ErrValidation, filter.Status)
	}
	items, err := r.store.ListProposals(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list proposals: %w", err)
	}
	return items, nil
}

func (r *ReviewEngine) Get(ctx context.Context, actor Actor, proposalID string) (store.Proposal, error) {
	if err := r.authorize(actor); err != nil {
		return store.Proposal{}, err
	}
	item, err := r.store.GetProposal(ctx, proposalID)
	if err != nil {
		return store.Proposal{}, notFound(err, "proposal", proposalID)
	}
	return item, nil
}

// Approve merges the requested fields onto the company as it is now and
// closes the proposal. Both writes commit together or not at all.
func (r *ReviewEngine) Approve(ctx context.Context, actor Actor, proposalID string) (store.Proposal, error) {
	return r.resolve(ctx, actor, proposalID, store.ProposalApproved)
}

// Reject closes the proposal without touching the company.
func (r *ReviewEngine) Reject(ctx context.Context, actor Actor, proposalID string) (store.Proposal, error) {
	return r.resolve(ctx, actor, proposalID, store.ProposalRejected)
}

func (r *ReviewEngine) resolve(ctx context.Context, actor Actor, proposalID string, status store.ProposalStatus) (store.Proposal, error) {
	if err := r.authorize(actor); err != nil {
		return store.Proposal{}, err
	}

	var resolved store.Proposal
	err := r.store.WithinTx(ctx, func(tx store.Tx) error {
		proposal, err := tx.GetProposal(ctx, proposalID)
		if err != nil {
			return notFound(err, "proposal", proposalID)
		}
		if proposal.Status != store.ProposalPending {
			return fmt.Errorf("%w: proposal %s is already %s", ErrInvalidState, proposalID, proposal.Status)
		}

		now := r.now()
		if status == store.ProposalApproved {
			if err := company.ValidateUpdate(proposal.Requested); err != nil {
				return validation(err)
			}
			current, err := tx.GetCompany(ctx, proposal.CompanyID)
			if err != nil {
				return notFound(err, "company", proposal.CompanyID)
			}
			if err := checkAssignee(ctx, tx, proposal.Requested); err != nil {
				return err
			}
			if _, err := writeCompany(ctx, tx, current, proposal.Requested, now); err != nil {
				return err
			}
		}

		err = tx.ResolveProposal(ctx, proposalID, status, actor.ID, now.UTC())
		if errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("%w: proposal %s is no longer pending", ErrInvalidState, proposalID)
		}
		if err != nil {
			return err
		}
		resolved, err = tx.GetProposal(ctx, proposalID)
		if err != nil {
			return fmt.Errorf("reload proposal: %w", err)
		}
		return nil
	})
	if err != nil {
		return store.Proposal{}, err
	}

	if r.observer != nil {
		r.observer.ProposalResolved(status)
	}
	r.logger.InfoContext(ctx, "proposal resolved",
		"proposal_id", resolved.ID,
		"company_id", resolved.CompanyID,
		"actor_id", actor.ID,
		"status", string(resolved.Status),
	)
	return resolved, nil
}
