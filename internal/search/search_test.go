package search

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"placement/api/internal/store"
)

type companyList []store.Company

func (c companyList) ListCompanies(context.Context) ([]store.Company, error) {
	return c, nil
}

func sampleCompanies() companyList {
	return companyList{
		{ID: "cmp_1", CompanyName: "TechCorp Inc.", CompanyAddress: "123 Tech Street, Silicon Valley", Drive: "Campus Drive 2024"},
		{ID: "cmp_2", CompanyName: "DataSoft Ltd.", CompanyAddress: "456 Data Avenue, Austin", Drive: "Virtual Drive 2024"},
		{ID: "cmp_3", CompanyName: "Acme", CompanyAddress: "1 Main St", Drive: "Pool 2025", Remarks: "techcorp partner"},
	}
}

func TestSubstringMatchesNameAddressAndDrive(t *testing.T) {
	searcher := NewSubstring(sampleCompanies())
	ctx := context.Background()

	cases := []struct {
		text string
		want []string
	}{
		{text: "techcorp", want: []string{"cmp_1"}},
		{text: "AUSTIN", want: []string{"cmp_2"}},
		{text: "drive 2024", want: []string{"cmp_1", "cmp_2"}},
		{text: "2025", want: []string{"cmp_3"}},
		{text: "nothing here", want: []string{}},
		{text: "   ", want: []string{}},
	}
	for _, tc := range cases {
		t.Run(tc.text, func(t *testing.T) {
			ids, err := searcher.Search(ctx, Query{Text: tc.text})
			require.NoError(t, err)
			assert.Equal(t, tc.want, ids)
		})
	}
}

func TestSubstringHonoursLimit(t *testing.T) {
	ids, err := NewSubstring(sampleCompanies()).Search(context.Background(), Query{Text: "drive", Limit: 1})
	require.NoError(t, err)
	assert.Equal(t, []string{"cmp_1"}, ids)
}

func TestPrefixQuery(t *testing.T) {
	cases := map[string]string{
		"Tech":                "tech:*",
		"  data   avenue ":    "data:* & avenue:*",
		"a&b | !c":            "a:* & b:* & c:*",
		"o'reilly:* (x)":      "o:* & reilly:* & x:*",
		"₹12 LPA":             "12:* & lpa:*",
		"":                    "",
		"&|!():*":             "",
		"Café-Bangalore 2024": "café:* & bangalore:* & 2024:*",
	}
	for input, want := range cases {
		assert.Equal(t, want, prefixQuery(input), "input %q", input)
	}
}

type stubSearcher struct {
	ids   []string
	err   error
	calls int
}

func (s *stubSearcher) Search(context.Context, Query) ([]string, error) {
	s.calls++
	return s.ids, s.err
}

func TestServiceFallsBackWhenPrimaryFails(t *testing.T) {
	primary := &stubSearcher{err: errors.New("relation does not exist")}
	fallback := &stubSearcher{ids: []string{"cmp_2"}}

	ids, err := NewService(primary, fallback, nil).Search(context.Background(), Query{Text: "data"})
	require.NoError(t, err)
	assert.Equal(t, []string{"cmp_2"}, ids)
	assert.Equal(t, 1, primary.calls)
	assert.Equal(t, 1, fallback.calls)
}

func TestServicePrefersPrimary(t *testing.T) {
	primary := &stubSearcher{ids: []string{"cmp_1"}}
	fallback := &stubSearcher{ids: []string{"cmp_2"}}

	ids, err := NewService(primary, fallback, nil).Search(context.Background(), Query{Text: "tech"})
	require.NoError(t, err)
	assert.Equal(t, []string{"cmp_1"}, ids)
	assert.Zero(t, fallback.calls)
}

func TestServiceWithoutFallbackReturnsPrimaryError(t *testing.T) {
	boom := errors.New("boom")
	_, err := NewService(&stubSearcher{err: boom}, nil, nil).Search(context.Background(), Query{Text: "x"})
	assert.ErrorIs(t, err, boom)
}
