package candidates

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/pashagolub/pgxmock/v4"
	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/briefmatch/internal/domain/model"
)

func seed() []model.Candidate {
	return []model.Candidate{
		{ID: "c3", Approved: true, Verified: true, Availability: model.Busy},
		{ID: "c1", Approved: true, Verified: true, Availability: model.Available},
		{ID: "c2", Approved: true, Verified: false, Availability: model.Available},
		{ID: "c4", Approved: false, Verified: true, Availability: model.Available},
		{ID: "c5", Approved: true, Verified: true, Availability: model.Unavailable},
		{ID: "c6", Approved: true, Verified: true, Availability: "Available"},
	}
}

func ids(cs []model.Candidate) []string {
	out := make([]string, len(cs))
	for i, c := range cs {
		out[i] = c.ID
	}
	return out
}

func TestMemoryPool(t *testing.T) {
	Convey("Given a memory pool", t, func() {
		ctx := context.Background()
		p := NewMemoryPool(seed())

		Convey("When querying with the default filter", func() {
			got, err := p.Eligible(ctx, DefaultFilter())

			Convey("Then only approved, verified and reachable candidates are returned in id order", func() {
				So(err, ShouldBeNil)
				So(ids(got), ShouldResemble, []string{"c1", "c3", "c6"})
			})
		})

		Convey("When the brief excludes a candidate", func() {
			f := DefaultFilter().ForBrief(&model.Brief{ExcludeCandidates: []string{"c3"}})
			got, _ := p.Eligible(ctx, f)

			Convey("Then it is left out", func() {
				So(ids(got), ShouldResemble, []string{"c1", "c6"})
				So(DefaultFilter().Exclude, ShouldBeEmpty)
			})
		})

		Convey("When a limit is set", func() {
			f := DefaultFilter()
			f.Limit = 2
			got, _ := p.Eligible(ctx, f)

			Convey("Then the result is capped", func() {
				So(len(got), ShouldEqual, 2)
			})
		})

		Convey("When the context is already cancelled", func() {
			cctx, cancel := context.WithCancel(ctx)
			cancel()
			_, err := p.Eligible(cctx, DefaultFilter())

			Convey("Then the error is returned", func() {
				So(errors.Is(err, context.Canceled), ShouldBeTrue)
			})
		})

		Convey("When queried through a Source", func() {
			src := NewSource(p, DefaultFilter())
			got, err := src.ForBrief(ctx, &model.Brief{ExcludeCandidates: []string{"c1"}}, 1)

			Convey("Then exclusions and the limit apply", func() {
				So(err, ShouldBeNil)
				So(ids(got), ShouldResemble, []string{"c3"})
			})
		})

		Convey("When looking up by id", func() {
			c, ok := p.Get("c4")
			_, missing := p.Get("zz")

			Convey("Then known ids are found", func() {
				So(ok, ShouldBeTrue)
				So(c.ID, ShouldEqual, "c4")
				So(missing, ShouldBeFalse)
				So(p.Len(), ShouldEqual, 6)
			})
		})
	})
}

func TestLoadFile(t *testing.T) {
	Convey("Given YAML seed files", t, func() {
		dir := t.TempDir()
		write := func(name, body string) string {
			path := filepath.Join(dir, name)
			So(os.WriteFile(path, []byte(body), 0o644), ShouldBeNil)
			return path
		}

		Convey("When the file is valid", func() {
			path := write("ok.yaml", `
candidates:
  - id: studio-a
    name: Studio A
    approved: true
    verified: true
    style_tags: [minimal, modern]
    industry_tags: [saas]
    availability: available
    years_experience: 6
    performance:
      on_time_rate: 0.9
`)
			p, err := LoadFile(path)

			Convey("Then candidates are loaded with their metrics", func() {
				So(err, ShouldBeNil)
				c, ok := p.Get("studio-a")
				So(ok, ShouldBeTrue)
				So(c.StyleTags, ShouldResemble, []string{"minimal", "modern"})
				So(*c.Performance.OnTimeRate, ShouldEqual, 0.9)
				So(c.Performance.Satisfaction, ShouldBeNil)
			})
		})

		Convey("When ids are duplicated", func() {
			path := write("dup.yaml", "candidates:\n  - id: a\n  - id: a\n")
			_, err := LoadFile(path)

			Convey("Then ErrSeedFile is returned", func() {
				So(errors.Is(err, ErrSeedFile), ShouldBeTrue)
			})
		})

		Convey("When the file is missing or malformed", func() {
			_, errMissing := LoadFile(filepath.Join(dir, "nope.yaml"))
			_, errBad := LoadFile(write("bad.yaml", "candidates: [unterminated"))

			Convey("Then ErrSeedFile is returned", func() {
				So(errors.Is(errMissing, ErrSeedFile), ShouldBeTrue)
				So(errors.Is(errBad, ErrSeedFile), ShouldBeTrue)
			})
		})
	})
}

var providerColumns = []string{
	"id", "name", "approved", "verified", "style_tags", "industry_tags", "specializations", "tools",
	"availability", "years_experience", "team_size", "preferred_size", "communication_style", "bio",
	"completion_rate", "on_time_rate", "budget_adherence", "retention_rate", "satisfaction",
}

func TestPostgresPool(t *testing.T) {
	Convey("Given a Postgres pool over a mock connection", t, func() {
		mock, err := pgxmock.NewPool()
		So(err, ShouldBeNil)
		Reset(mock.Close)
		p := &PostgresPool{db: mock}
		ctx := context.Background()

		Convey("When rows are returned", func() {
			onTime := 0.95
			size := "medium"
			var none *float64
			var noText *string
			rows := pgxmock.NewRows(providerColumns).
				AddRow("a", "Studio A", true, true, []string{"minimal"}, []string{"saas"}, []string{"web"}, []string{"figma"},
					"available", 6.0, 4, &size, noText, noText, none, &onTime, none, none, none).
				AddRow("b", "Studio B", true, true, []string{"bold"}, []string{"retail"}, []string{}, []string{},
					"busy", 2.0, 1, noText, noText, noText, none, none, none, none, none)
			mock.ExpectQuery("SELECT id, name").
				WithArgs(true, true, []string{"available", "busy"}, []string{"x"}, 50).
				WillReturnRows(rows)

			f := DefaultFilter()
			f.Exclude = []string{"x"}
			got, err := p.Eligible(ctx, f)

			Convey("Then candidates are scanned with optional fields", func() {
				So(err, ShouldBeNil)
				So(ids(got), ShouldResemble, []string{"a", "b"})
				So(got[0].PreferredSize, ShouldEqual, model.SizeMedium)
				So(*got[0].Performance.OnTimeRate, ShouldEqual, 0.95)
				So(got[0].Performance.CompletionRate, ShouldBeNil)
				So(got[1].Availability, ShouldEqual, model.Busy)
				So(mock.ExpectationsWereMet(), ShouldBeNil)
			})
		})

		Convey("When the query fails", func() {
			mock.ExpectQuery("SELECT id, name").WillReturnError(errors.New("connection refused"))
			_, err := p.Eligible(ctx, DefaultFilter())

			Convey("Then ErrQuery is returned", func() {
				So(errors.Is(err, ErrQuery), ShouldBeTrue)
			})
		})
	})
}
