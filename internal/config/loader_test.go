package config_test

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/okian/briefmatch/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfigLoader(t *testing.T) {
	convey.Convey("Given a config loader", t, func() {
		ctx := context.Background()
		clearConfigEnvVars()

		convey.Convey("When loading config with defaults only", func() {
			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load successfully with defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
				convey.So(cfg.CacheCapacity, convey.ShouldEqual, 500)
				convey.So(cfg.PoolDriver, convey.ShouldEqual, "memory")
			})
		})

		convey.Convey("When loading config with environment variables", func() {
			_ = os.Setenv("BRIEFMATCH_ADDR", ":8080")
			_ = os.Setenv("BRIEFMATCH_CACHE_CAPACITY", "250")
			_ = os.Setenv("BRIEFMATCH_FINAL_DELAY_MS", "100")
			_ = os.Setenv("BRIEFMATCH_CANCEL_PREVIOUS", "false")
			_ = os.Setenv("BRIEFMATCH_REMOTE_PROVIDER", "gemini")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should override defaults with env vars", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.CacheCapacity, convey.ShouldEqual, 250)
				convey.So(cfg.FinalDelayMS, convey.ShouldEqual, 100)
				convey.So(cfg.CancelPrevious, convey.ShouldBeFalse)
				convey.So(cfg.RemoteProvider, convey.ShouldEqual, "gemini")
			})
		})

		convey.Convey("When loading config with both file and environment variables", func() {
			tmpFile := createTempConfigFile(`
addr: ":9090"
cache_capacity: 800
refined_top_n: 12
local_weight: 0.6
embedding_weight: 0.4
`)
			defer func() { _ = os.Remove(tmpFile) }()

			_ = os.Setenv("BRIEFMATCH_CONFIG", tmpFile)
			_ = os.Setenv("BRIEFMATCH_ADDR", ":8081")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then environment variables should override file values", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8081")
				convey.So(cfg.CacheCapacity, convey.ShouldEqual, 800)
				convey.So(cfg.RefinedTopN, convey.ShouldEqual, 12)
				convey.So(cfg.LocalWeight, convey.ShouldAlmostEqual, 0.6)
				convey.So(cfg.FinalTopN, convey.ShouldEqual, 5)
			})
		})

		convey.Convey("When loading config with invalid YAML file", func() {
			tmpFile := createTempConfigFile(`invalid: yaml: content: [`)
			defer func() { _ = os.Remove(tmpFile) }()

			_ = os.Setenv("BRIEFMATCH_CONFIG", tmpFile)
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a load error", func() {
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with non-existent file", func() {
			_ = os.Setenv("BRIEFMATCH_CONFIG", "/non/existent/file.yaml")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return an error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with empty addr", func() {
			_ = os.Setenv("BRIEFMATCH_ADDR", "")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a validation error", func() {
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
				convey.So(err.Error(), convey.ShouldContainSubstring, "addr must not be empty")
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When blend weights do not sum to one", func() {
			_ = os.Setenv("BRIEFMATCH_LOCAL_WEIGHT", "0.9")
			defer clearConfigEnvVars()

			_, err := config.Load(ctx)

			convey.Convey("Then validation fails", func() {
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When the postgres driver has no DSN", func() {
			_ = os.Setenv("BRIEFMATCH_POOL_DRIVER", "postgres")
			defer clearConfigEnvVars()

			_, err := config.Load(ctx)

			convey.Convey("Then validation fails", func() {
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
				convey.So(err.Error(), convey.ShouldContainSubstring, "pool_dsn")
			})
		})

		convey.Convey("When the remote provider is unknown", func() {
			_ = os.Setenv("BRIEFMATCH_REMOTE_PROVIDER", "carrier-pigeon")
			defer clearConfigEnvVars()

			_, err := config.Load(ctx)

			convey.Convey("Then validation fails", func() {
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When loading config with invalid numeric environment variables", func() {
			_ = os.Setenv("BRIEFMATCH_CACHE_CAPACITY", "invalid")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return an error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})
	})
}

// Helper functions.

func clearConfigEnvVars() {
	envVars := []string{
		"BRIEFMATCH_CONFIG",
		"BRIEFMATCH_ADDR",
		"BRIEFMATCH_CACHE_CAPACITY",
		"BRIEFMATCH_FINAL_DELAY_MS",
		"BRIEFMATCH_CANCEL_PREVIOUS",
		"BRIEFMATCH_REMOTE_PROVIDER",
		"BRIEFMATCH_LOCAL_WEIGHT",
		"BRIEFMATCH_POOL_DRIVER",
	}
	for _, envVar := range envVars {
		_ = os.Unsetenv(envVar)
	}
}

func createTempConfigFile(content string) string {
	tmpFile, err := os.CreateTemp("", "briefmatch-config-*.yaml")
	if err != nil {
		panic(err)
	}

	if _, err := tmpFile.WriteString(content); err != nil {
		panic(err)
	}

	if err := tmpFile.Close(); err != nil {
		panic(err)
	}

	return tmpFile.Name()
}
