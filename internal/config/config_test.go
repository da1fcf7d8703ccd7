package config_test

import (
	"runtime"
	"testing"
	"time"

	"github.com/okian/briefmatch/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfig_New(t *testing.T) {
	convey.Convey("Given a new config with default options", t, func() {
		cfg := config.New()

		convey.Convey("Then it should have sensible defaults", func() {
			convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
			convey.So(cfg.CacheCapacity, convey.ShouldEqual, 500)
			convey.So(cfg.RefinedTopN, convey.ShouldEqual, 10)
			convey.So(cfg.FinalTopN, convey.ShouldEqual, 5)
			convey.So(cfg.LocalWeight+cfg.EmbeddingWeight, convey.ShouldAlmostEqual, 1.0)
			convey.So(cfg.WorkerCount, convey.ShouldEqual, runtime.NumCPU()*2)
			convey.So(cfg.RemoteProvider, convey.ShouldEqual, "none")
			convey.So(cfg.EmbeddingDims, convey.ShouldEqual, 512)
		})

		convey.Convey("Then phase TTLs grow with the phase", func() {
			convey.So(cfg.InstantTTLMS, convey.ShouldBeLessThan, cfg.RefinedTTLMS)
			convey.So(cfg.RefinedTTLMS, convey.ShouldBeLessThan, cfg.FinalTTLMS)
			convey.So(config.Ms(cfg.RefinedTTLMS), convey.ShouldEqual, time.Hour)
		})

		convey.Convey("Then the defaults validate", func() {
			convey.So(cfg.Validate(), convey.ShouldBeNil)
		})
	})
}
