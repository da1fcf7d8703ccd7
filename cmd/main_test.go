package main

import (
	"bufio"
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/smartystreets/goconvey/convey"

	"github.com/okian/briefmatch/internal/domain/model"
)

const seedYAML = `candidates:
  - id: designer-1
    name: Ada
    approved: true
    verified: true
    availability: available
    style_tags: [minimal]
    industry_tags: [saas]
  - id: designer-2
    name: Bo
    approved: true
    verified: true
    availability: busy
    industry_tags: [retail]
`

func write(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestRootCommand(t *testing.T) {
	convey.Convey("Given the root command", t, func() {
		root := newRootCmd()

		convey.Convey("Then serve, match, loadtest and version are registered", func() {
			names := map[string]bool{}
			for _, c := range root.Commands() {
				names[c.Name()] = true
			}
			convey.So(names["serve"], convey.ShouldBeTrue)
			convey.So(names["match"], convey.ShouldBeTrue)
			convey.So(names["loadtest"], convey.ShouldBeTrue)
			convey.So(names["version"], convey.ShouldBeTrue)
		})

		convey.Convey("When version runs", func() {
			var out bytes.Buffer
			root.SetOut(&out)
			root.SetArgs([]string{"version"})
			err := root.Execute()

			convey.Convey("Then the version is printed", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(out.String(), convey.ShouldEqual, version+"\n")
			})
		})

		convey.Convey("When match runs without a brief", func() {
			root.SetOut(&bytes.Buffer{})
			root.SetErr(&bytes.Buffer{})
			root.SetArgs([]string{"match"})

			convey.Convey("Then it fails on the required flag", func() {
				convey.So(root.Execute(), convey.ShouldNotBeNil)
			})
		})
	})
}

func TestMatchCommand(t *testing.T) {
	convey.Convey("Given a seeded pool and a brief file", t, func() {
		t.Setenv("BRIEFMATCH_POOL_SEED_FILE", write(t, "seed.yaml", seedYAML))
		t.Setenv("BRIEFMATCH_JANITOR_INTERVAL_MS", "0")
		brief := write(t, "brief.json", `{"id":"b-1","industry":"SaaS","styles":["minimal"]}`)

		convey.Convey("When match runs", func() {
			var out bytes.Buffer
			root := newRootCmd()
			root.SetOut(&out)
			root.SetArgs([]string{"match", "--brief", brief})
			err := root.Execute()

			convey.Convey("Then one JSON line is written per emitted phase", func() {
				convey.So(err, convey.ShouldBeNil)
				var events []model.MatchEvent
				sc := bufio.NewScanner(&out)
				for sc.Scan() {
					var ev model.MatchEvent
					convey.So(json.Unmarshal(sc.Bytes(), &ev), convey.ShouldBeNil)
					events = append(events, ev)
				}
				convey.So(len(events), convey.ShouldEqual, 1)
				convey.So(events[0].Phase, convey.ShouldEqual, model.PhaseInstant)
				convey.So(events[0].Best.Candidate.ID, convey.ShouldEqual, "designer-1")
				convey.So(events[0].BriefID, convey.ShouldEqual, "b-1")
			})
		})
	})
}

func TestReadBrief(t *testing.T) {
	convey.Convey("Given brief files in both formats", t, func() {
		convey.Convey("When a YAML brief is read", func() {
			b, err := readBrief(write(t, "brief.yaml", "id: y\nindustry: saas\nstyles: [bold]\n"))

			convey.Convey("Then its fields are decoded", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(b.ID, convey.ShouldEqual, "y")
				convey.So(b.Styles, convey.ShouldResemble, []string{"bold"})
			})
		})

		convey.Convey("When the file is not valid JSON", func() {
			_, err := readBrief(write(t, "brief.json", "{"))

			convey.Convey("Then an error is returned", func() {
				convey.So(err, convey.ShouldNotBeNil)
			})
		})

		convey.Convey("When the file is missing", func() {
			_, err := readBrief(filepath.Join(t.TempDir(), "none.json"))

			convey.Convey("Then an error is returned", func() {
				convey.So(err, convey.ShouldNotBeNil)
			})
		})
	})
}
