package main

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"placement/api/internal/fieldmap"
	"placement/api/internal/store"
)

func TestRenderProposals(t *testing.T) {
	reviewer := "usr_manager"
	reviewedAt := time.Date(2024, 3, 2, 10, 0, 0, 0, time.UTC)
	items := []store.Proposal{
		{
			ID:             "pu_2",
			CompanyName:    "DataSoft Ltd.",
			OfficerName:    "Mike Officer",
			Requested:      fieldmap.FromEntries(fieldmap.Entry{Key: "package", Value: fieldmap.String("₹20 LPA")}),
			Status:         store.ProposalApproved,
			ReviewedBy:     &reviewer,
			ReviewedByName: "Sarah Manager",
			ReviewedAt:     &reviewedAt,
			CreatedAt:      reviewedAt.Add(-time.Hour),
		},
		{
			ID:          "pu_1",
			CompanyName: "TechCorp Inc.",
			OfficerName: "Mike Officer",
			Requested:   fieldmap.FromEntries(fieldmap.Entry{Key: "remarks", Value: fieldmap.String("call back")}),
			Status:      store.ProposalPending,
			CreatedAt:   reviewedAt.Add(-2 * time.Hour),
		},
	}

	var out bytes.Buffer
	renderProposals(&out, items)

	rendered := out.String()
	assert.Contains(t, rendered, "DataSoft Ltd.")
	assert.Contains(t, rendered, "Sarah Manager")
	assert.Contains(t, rendered, "[remarks]")
	assert.Contains(t, rendered, "2 total")
}

func TestRootCommandRegistersSubcommands(t *testing.T) {
	root := newRootCmd()
	names := map[string]bool{}
	for _, cmd := range root.Commands() {
		names[cmd.Name()] = true
	}
	for _, want := range []string{"serve", "migrate", "seed", "proposals"} {
		assert.True(t, names[want], "missing %s", want)
	}
}

func TestProposalsRejectsUnknownStatus(t *testing.T) {
	cmd := newProposalsCmd()
	cmd.SetArgs([]string{"--status", "archived"})
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})

	err := cmd.Execute()
	assert.ErrorContains(t, err, "unknown status")
}
