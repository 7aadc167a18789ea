package search

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"unicode"
)

// PgFTS searches the companies.search_vector column.
type PgFTS struct {
	db *sql.DB
}

func NewPgFTS(db *sql.DB) *PgFTS {
	return &PgFTS{db: db}
}

// Search matches every word of the text as a prefix, ranked by ts_rank.
func (p *PgFTS) Search(ctx context.Context, q Query) ([]string, error) {
	tsQuery := prefixQuery(q.Text)
	if tsQuery == "" {
		return []string{}, nil
	}

	rows, err := p.db.QueryContext(ctx, `
		SELECT c.id
		FROM companies c
		WHERE c.search_vector @@ to_tsquery('simple', $1)
		ORDER BY ts_rank(c.search_vector, to_tsquery('simple', $1)) DESC, c.company_name, c.id
		LIMIT $2
	`, tsQuery, q.limit())
	if err != nil {
		return nil, fmt.Errorf("pgfts query: %w", err)
	}
	defer rows.Close()

	ids := make([]string, 0)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("pgfts scan: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// prefixQuery turns free text into "word1:* & word2:*". Only letters and
// digits survive, so user input cannot inject tsquery operators.
func prefixQuery(text string) string {
	words := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	terms := make([]string, 0, len(words))
	for _, word := range words {
		terms = append(terms, word+":*")
	}
	return strings.Join(terms, " & ")
}
