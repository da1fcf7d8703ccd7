package scoring

import (
	"testing"

	"github.com/okian/briefmatch/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func f(v float64) *float64 { return &v }

func TestSubScores(t *testing.T) {
	Convey("Given the individual sub-score rules", t, func() {
		Convey("Style matching", func() {
			So(styleScore([]string{"minimal", "modern"}, []string{"Minimal"}), ShouldEqual, 50)
			So(styleScore([]string{"minimal"}, []string{"minimalist"}), ShouldEqual, 50)
			So(styleScore([]string{"minimal"}, nil), ShouldEqual, 0)
			So(styleScore(nil, []string{"minimal"}), ShouldEqual, 0)
			So(styleScore([]string{" ", ""}, []string{"minimal"}), ShouldEqual, 0)
		})

		Convey("Industry matching", func() {
			c := DefaultClusters()
			So(industryScore("saas", []string{"SaaS"}, c), ShouldEqual, 100)
			So(industryScore("saas", []string{"retail", "edtech"}, c), ShouldEqual, 75)
			So(industryScore("saas", []string{"retail"}, c), ShouldEqual, 0)
			So(industryScore("", []string{"retail"}, c), ShouldEqual, 0)
			So(industryScore("unknown", []string{"other"}, c), ShouldEqual, 0)
		})

		Convey("Availability", func() {
			So(availabilityScore(model.Available, 5), ShouldEqual, 100)
			So(availabilityScore(model.Busy, 1), ShouldEqual, 85)
			So(availabilityScore(model.Busy, 3), ShouldEqual, 55)
			So(availabilityScore(model.Busy, 5), ShouldEqual, 30)
			So(availabilityScore(model.Unavailable, 1), ShouldEqual, 0)
			So(availabilityScore("", 1), ShouldEqual, 50)
		})

		Convey("Experience bands", func() {
			So(experienceScore(0, ""), ShouldEqual, 0)
			So(experienceScore(1, "moderate"), ShouldEqual, 30)
			So(experienceScore(2, "moderate"), ShouldEqual, 60)
			So(experienceScore(3.5, "moderate"), ShouldEqual, 80)
			So(experienceScore(5, "moderate"), ShouldEqual, 100)
			So(experienceScore(5, "complex"), ShouldEqual, 60)
			So(experienceScore(3, "simple"), ShouldEqual, 100)
		})

		Convey("Project size distance", func() {
			So(projectSizeScore(model.SizeSmall, model.SizeSmall), ShouldEqual, 100)
			So(projectSizeScore(model.SizeSmall, model.SizeMedium), ShouldEqual, 70)
			So(projectSizeScore(model.SizeEnterprise, model.SizeMedium), ShouldEqual, 35)
			So(projectSizeScore(model.SizeSmall, model.SizeEnterprise), ShouldEqual, 0)
			So(projectSizeScore("", model.SizeSmall), ShouldEqual, 50)
		})

		Convey("Specialization overlap", func() {
			b := &model.Brief{ProjectType: "Brand identity", Requirements: "Need a logo and landing page for web"}
			So(specializationScore([]string{"branding", "logo", "web"}, b), ShouldAlmostEqual, 200.0/3, 1e-9)
			So(specializationScore([]string{"logo"}, b), ShouldEqual, 100)
			So(specializationScore(nil, b), ShouldEqual, 0)
			So(specializationScore([]string{"logo", "web", "identity", "page", "video"}, b), ShouldEqual, 100)
		})

		Convey("Performance ignores missing metrics", func() {
			So(performanceScore(model.Performance{}), ShouldEqual, 50)
			So(performanceScore(model.Performance{CompletionRate: f(0.8)}), ShouldAlmostEqual, 80)
			So(performanceScore(model.Performance{CompletionRate: f(0.8), OnTimeRate: f(0.6)}), ShouldAlmostEqual, 70)
		})

		Convey("Satisfaction and delivery defaults", func() {
			So(satisfactionScore(model.Performance{}), ShouldEqual, 50)
			So(satisfactionScore(model.Performance{Satisfaction: f(4)}), ShouldAlmostEqual, 80)
			So(deliveryScore(model.Performance{}), ShouldEqual, 50)
			So(deliveryScore(model.Performance{OnTimeRate: f(0.9)}), ShouldAlmostEqual, 90)
		})

		Convey("Communication matrix", func() {
			So(communicationScore("async", "ASYNC"), ShouldEqual, 100)
			So(communicationScore("hybrid", "sync"), ShouldEqual, 75)
			So(communicationScore("async", "sync"), ShouldEqual, 40)
			So(communicationScore("", "sync"), ShouldEqual, 50)
		})

		Convey("Tooling overlap", func() {
			So(toolingScore([]string{"figma", "webflow"}, []string{"Figma"}), ShouldEqual, 50)
			So(toolingScore(nil, []string{"figma"}), ShouldEqual, 0)
		})
	})
}
