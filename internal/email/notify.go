package email

import (
	"context"
	"fmt"
	"html/template"
	"strings"

	"github.com/samber/lo"

	"placement/api/internal/company"
	"placement/api/internal/diff"
	"placement/api/internal/rbac"
	"placement/api/internal/store"
)

// ReviewerDirectory lists the users of a role.
type ReviewerDirectory interface {
	ListUsersByRole(ctx context.Context, role string) ([]store.User, error)
}

// ProposalNotifier emails every Admin and Manager when an officer submits a
// proposal. It does nothing when SMTP is not configured.
type ProposalNotifier struct {
	mail  *Service
	users ReviewerDirectory
}

func NewProposalNotifier(mail *Service, users ReviewerDirectory) *ProposalNotifier {
	return &ProposalNotifier{mail: mail, users: users}
}

type changeRow struct {
	Label  string
	Before string
	After  string
}

type proposalEmailData struct {
	CompanyName string
	OfficerName string
	ProposalID  string
	Changes     []changeRow
}

func (n *ProposalNotifier) ProposalSubmitted(ctx context.Context, proposal store.Proposal) error {
	if !n.mail.IsConfigured() {
		return nil
	}

	var recipients []string
	for _, role := range []rbac.Role{rbac.RoleAdmin, rbac.RoleManager} {
		users, err := n.users.ListUsersByRole(ctx, string(role))
		if err != nil {
			return fmt.Errorf("list reviewers: %w", err)
		}
		recipients = append(recipients, lo.Map(users, func(u store.User, _ int) string { return u.Email })...)
	}
	recipients = lo.Uniq(recipients)
	if len(recipients) == 0 {
		return nil
	}

	data := proposalEmailData{
		CompanyName: proposal.CompanyName,
		OfficerName: proposal.OfficerName,
		ProposalID:  proposal.ID,
	}
	for _, change := range diff.OnlyChanged(diff.Compute(proposal.Original, proposal.Requested)) {
		data.Changes = append(data.Changes, changeRow{
			Label:  company.Label(change.Field),
			Before: change.Before.String(),
			After:  change.After.String(),
		})
	}

	html, err := renderTemplate(proposalEmailTemplate, data)
	if err != nil {
		return fmt.Errorf("render proposal template: %w", err)
	}
	subject := fmt.Sprintf("Update pending approval: %s", proposal.CompanyName)
	return n.mail.SendHTMLEmail(recipients, subject, proposalText(data), html)
}

func proposalText(data proposalEmailData) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s submitted an update to %s for approval.\r\n", data.OfficerName, data.CompanyName)
	for _, change := range data.Changes {
		fmt.Fprintf(&b, "- %s: %q -> %q\r\n", change.Label, change.Before, change.After)
	}
	return b.String()
}

var proposalEmailTemplate = template.Must(template.New("proposal").Parse(`<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <title>Update pending approval</title>
    <style>
        body { font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif; line-height: 1.6; color: #333; max-width: 600px; margin: 0 auto; padding: 20px; }
        table { border-collapse: collapse; width: 100%; }
        th, td { border: 1px solid #ddd; padding: 6px 10px; text-align: left; }
        th { background: #eee; }
        .before { color: #b00020; }
        .after { color: #1b5e20; }
    </style>
</head>
<body>
    <h2>Update pending approval</h2>
    <p><strong>{{.OfficerName}}</strong> submitted an update to <strong>{{.CompanyName}}</strong>.</p>
    <table>
        <tr><th>Field</th><th>Current</th><th>Requested</th></tr>
        {{range .Changes}}<tr><td>{{.Label}}</td><td class="before">{{.Before}}</td><td class="after">{{.After}}</td></tr>
        {{end}}
    </table>
    <p>Proposal reference: {{.ProposalID}}</p>
</body>
</html>`))
