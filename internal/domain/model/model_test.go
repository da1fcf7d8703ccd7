package model_test

import (
	"testing"

	model "github.com/okian/briefmatch/internal/domain/model"
	"github.com/smartystreets/goconvey/convey"
)

func TestBrief(t *testing.T) {
	convey.Convey("Given briefs with different timelines", t, func() {
		convey.Convey("Then urgency follows the timeline bucket", func() {
			convey.So((&model.Brief{Timeline: "ASAP"}).UrgencyLevel(), convey.ShouldEqual, 5)
			convey.So((&model.Brief{Timeline: " 1-2  weeks"}).UrgencyLevel(), convey.ShouldEqual, 4)
			convey.So((&model.Brief{Timeline: "1–2 weeks"}).UrgencyLevel(), convey.ShouldEqual, 4)
			convey.So((&model.Brief{Timeline: "2-4 weeks"}).UrgencyLevel(), convey.ShouldEqual, 3)
			convey.So((&model.Brief{Timeline: "1-3 months"}).UrgencyLevel(), convey.ShouldEqual, 2)
			convey.So((&model.Brief{Timeline: "flexible"}).UrgencyLevel(), convey.ShouldEqual, 1)
			convey.So((&model.Brief{}).UrgencyLevel(), convey.ShouldEqual, 3)
		})

		convey.Convey("Then only asap and 1-2 weeks are urgent", func() {
			convey.So((&model.Brief{Timeline: "asap"}).IsUrgent(), convey.ShouldBeTrue)
			convey.So((&model.Brief{Timeline: "1-2 weeks"}).IsUrgent(), convey.ShouldBeTrue)
			convey.So((&model.Brief{Timeline: "2-4 weeks"}).IsUrgent(), convey.ShouldBeFalse)
		})
	})

	convey.Convey("Given briefs with different budgets", t, func() {
		convey.Convey("Then budgets round into coarse buckets", func() {
			convey.So((&model.Brief{Budget: 0}).BudgetBucket(), convey.ShouldEqual, model.ProjectSize(""))
			convey.So((&model.Brief{Budget: 4_999}).BudgetBucket(), convey.ShouldEqual, model.SizeSmall)
			convey.So((&model.Brief{Budget: 5_000}).BudgetBucket(), convey.ShouldEqual, model.SizeMedium)
			convey.So((&model.Brief{Budget: 60_000}).BudgetBucket(), convey.ShouldEqual, model.SizeLarge)
			convey.So((&model.Brief{Budget: 250_000}).BudgetBucket(), convey.ShouldEqual, model.SizeEnterprise)
		})
	})
}

func TestCandidate(t *testing.T) {
	convey.Convey("Given a candidate without a declared project size", t, func() {
		c := model.Candidate{TeamSize: 4}

		convey.Convey("Then the preference is derived from team size", func() {
			convey.So(c.SizePreference(), convey.ShouldEqual, model.SizeMedium)
			c.TeamSize = 1
			convey.So(c.SizePreference(), convey.ShouldEqual, model.SizeSmall)
			c.TeamSize = 0
			convey.So(c.SizePreference(), convey.ShouldEqual, model.ProjectSize(""))
		})

		convey.Convey("Then a declared size wins", func() {
			c.PreferredSize = "Large"
			convey.So(c.SizePreference(), convey.ShouldEqual, model.SizeLarge)
		})
	})
}

func TestPhaseAndConfidence(t *testing.T) {
	convey.Convey("Given the phase pipeline", t, func() {
		convey.Convey("Then phases and confidence rise together", func() {
			convey.So(model.PhaseInstant.Rank(), convey.ShouldBeLessThan, model.PhaseRefined.Rank())
			convey.So(model.PhaseRefined.Rank(), convey.ShouldBeLessThan, model.PhaseFinal.Rank())
			convey.So(model.ConfidenceFor(model.PhaseInstant), convey.ShouldEqual, model.ConfidenceLow)
			convey.So(model.ConfidenceFor(model.PhaseRefined), convey.ShouldEqual, model.ConfidenceMedium)
			convey.So(model.ConfidenceFor(model.PhaseFinal), convey.ShouldEqual, model.ConfidenceHigh)
			convey.So(model.Confidence("bogus").Rank(), convey.ShouldEqual, -1)
		})
	})
}
