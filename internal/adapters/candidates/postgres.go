package candidates

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/okian/briefmatch/internal/domain/model"
)

// pool is the subset of pgxpool.Pool used by PostgresPool.
type pool interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Ping(ctx context.Context) error
	Close()
}

// PostgresPool reads providers from a Postgres table.
type PostgresPool struct {
	db pool
}

// NewPostgresPool connects to dsn and verifies the connection.
func NewPostgresPool(ctx context.Context, dsn string) (*PostgresPool, error) {
	p, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("%w: connect: %w", ErrQuery, err)
	}
	if err := p.Ping(ctx); err != nil {
		p.Close()
		return nil, fmt.Errorf("%w: ping: %w", ErrQuery, err)
	}
	return &PostgresPool{db: p}, nil
}

// Close releases the connection pool.
func (p *PostgresPool) Close() { p.db.Close() }

// Ping checks connectivity.
func (p *PostgresPool) Ping(ctx context.Context) error { return p.db.Ping(ctx) }

const eligibleSQL = `
SELECT id, name, approved, verified, style_tags, industry_tags, specializations, tools,
       availability, years_experience, team_size, preferred_size, communication_style, bio,
       completion_rate, on_time_rate, budget_adherence, retention_rate, satisfaction
FROM providers
WHERE ($1::bool IS FALSE OR approved)
  AND ($2::bool IS FALSE OR verified)
  AND (cardinality($3::text[]) = 0 OR lower(availability) = ANY($3))
  AND NOT (id = ANY($4::text[]))
ORDER BY id
LIMIT $5`

// Eligible returns candidates passing f, up to its limit.
func (p *PostgresPool) Eligible(ctx context.Context, f Filter) ([]model.Candidate, error) {
	exclude := f.Exclude
	if exclude == nil {
		exclude = []string{}
	}
	rows, err := p.db.Query(ctx, eligibleSQL,
		f.RequireApproved, f.RequireVerified, f.availabilityStrings(), exclude, f.limit())
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrQuery, err)
	}
	defer rows.Close()

	var out []model.Candidate
	for rows.Next() {
		var (
			c            model.Candidate
			availability string
			size         *string
			comm         *string
			bio          *string
		)
		if err := rows.Scan(
			&c.ID, &c.Name, &c.Approved, &c.Verified,
			&c.StyleTags, &c.IndustryTags, &c.Specializations, &c.Tools,
			&availability, &c.YearsExperience, &c.TeamSize, &size, &comm, &bio,
			&c.Performance.CompletionRate, &c.Performance.OnTimeRate,
			&c.Performance.BudgetAdherence, &c.Performance.RetentionRate,
			&c.Performance.Satisfaction,
		); err != nil {
			return nil, fmt.Errorf("%w: scan: %w", ErrQuery, err)
		}
		c.Availability = model.Availability(availability)
		if size != nil {
			c.PreferredSize = model.ProjectSize(*size)
		}
		if comm != nil {
			c.CommunicationStyle = *comm
		}
		if bio != nil {
			c.Bio = *bio
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: rows: %w", ErrQuery, err)
	}
	return out, nil
}
