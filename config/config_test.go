package config_test

import (
	"context"
	"os"
	"time"

	"github.com/alicebob/miniredis/v2"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/nrfta/listing-go"
	"github.com/nrfta/listing-go/config"
	"github.com/nrfta/listing-go/httplist"
	"github.com/nrfta/listing-go/resource"
)

const prefix = "LISTINGTEST"

func setenv(key, value string) {
	name := prefix + "_" + key
	Expect(os.Setenv(name, value)).To(Succeed())
	DeferCleanup(os.Unsetenv, name)
}

var _ = Describe("Load", func() {
	BeforeEach(func() {
		setenv("API_BASE_URL", "https://api.example.id/v1")
	})

	It("applies defaults", func() {
		cfg, err := config.Load(prefix)
		Expect(err).NotTo(HaveOccurred())

		Expect(cfg.APIBaseURL).To(Equal("https://api.example.id/v1"))
		Expect(cfg.APITimeout).To(Equal(30 * time.Second))
		Expect(cfg.APIRetries).To(Equal(3))
		Expect(cfg.APIRetryWait).To(Equal(time.Second))
		Expect(cfg.PerPage).To(Equal(10))
		Expect(cfg.MaxPerPage).To(Equal(100))
		Expect(cfg.SearchDebounce).To(Equal(500 * time.Millisecond))
		Expect(cfg.RedisAddr).To(BeEmpty())
		Expect(cfg.CacheTTL).To(Equal(5 * time.Minute))
		Expect(cfg.LogLevel).To(Equal("info"))
	})

	It("reads overrides", func() {
		setenv("PER_PAGE", "25")
		setenv("SEARCH_DEBOUNCE", "300ms")
		setenv("API_RETRIES", "0")
		setenv("REDIS_ADDR", "localhost:6379")

		cfg, err := config.Load(prefix)
		Expect(err).NotTo(HaveOccurred())

		Expect(cfg.PerPage).To(Equal(25))
		Expect(cfg.SearchDebounce).To(Equal(300 * time.Millisecond))
		Expect(cfg.APIRetries).To(Equal(0))
		Expect(cfg.RedisAddr).To(Equal("localhost:6379"))
	})

	It("requires the API base URL", func() {
		Expect(os.Unsetenv(prefix + "_API_BASE_URL")).To(Succeed())

		_, err := config.Load(prefix)
		Expect(err).To(MatchError(ContainSubstring("API_BASE_URL")))
	})

	DescribeTable("rejects invalid values",
		func(key, value, field string) {
			setenv(key, value)

			_, err := config.Load(prefix)
			Expect(err).To(MatchError(ContainSubstring(field)))
		},
		Entry("malformed URL", "API_BASE_URL", "not a url", "APIBaseURL"),
		Entry("per page above maximum", "PER_PAGE", "500", "PerPage"),
		Entry("zero maximum", "MAX_PER_PAGE", "0", "MaxPerPage"),
		Entry("negative retries", "API_RETRIES", "-1", "APIRetries"),
		Entry("unknown log level", "LOG_LEVEL", "loud", "LogLevel"),
		Entry("malformed Redis address", "REDIS_ADDR", "redis", "RedisAddr"),
	)

	It("reports unparsable values", func() {
		setenv("API_TIMEOUT", "soon")

		_, err := config.Load(prefix)
		Expect(err).To(MatchError(ContainSubstring("read list config")))
	})
})

var _ = Describe("Config", func() {
	var cfg *config.Config

	BeforeEach(func() {
		cfg = &config.Config{
			APIBaseURL:     "https://api.example.id/v1",
			APITimeout:     5 * time.Second,
			APIRetries:     2,
			APIRetryWait:   100 * time.Millisecond,
			PerPage:        20,
			MaxPerPage:     50,
			SearchDebounce: 300 * time.Millisecond,
			CacheTTL:       time.Minute,
			LogLevel:       "debug",
		}
		Expect(cfg.Validate()).To(Succeed())
	})

	It("builds the HTTP settings", func() {
		Expect(cfg.HTTPConfig()).To(Equal(httplist.Config{
			BaseURL:   "https://api.example.id/v1",
			Timeout:   5 * time.Second,
			Retries:   2,
			RetryWait: 100 * time.Millisecond,
		}))
		Expect(cfg.HTTPClient(zap.NewNop())).NotTo(BeNil())
	})

	It("builds the page size policy", func() {
		pc := cfg.PageConfig()
		Expect(pc.DefaultSize).To(Equal(20))
		Expect(pc.MaxSize).To(Equal(50))
		Expect(pc.EffectiveLimit(0)).To(Equal(20))
		Expect(pc.EffectiveLimit(80)).To(Equal(50))
	})

	It("builds binding options", func() {
		state := listing.NewState()
		resource.New(state, func(ctx context.Context, q listing.Query) (*listing.Result[string], error) {
			return nil, nil
		}, cfg.BindingOptions(zap.NewNop())...)

		Expect(state.Pagination().PerPage).To(Equal(20))
	})

	It("builds no cache without a Redis address", func() {
		Expect(cfg.Cache(zap.NewNop())).To(BeNil())
	})

	It("builds a cache for a Redis address", func() {
		mr := miniredis.RunT(GinkgoT())
		cfg.RedisAddr = mr.Addr()

		c := cfg.Cache(zap.NewNop())
		Expect(c).NotTo(BeNil())

		ver, err := c.Version(context.Background(), "berita")
		Expect(err).NotTo(HaveOccurred())
		Expect(ver).To(Equal(int64(1)))
	})

	It("builds a logger at the configured level", func() {
		logger, err := cfg.Logger()
		Expect(err).NotTo(HaveOccurred())
		Expect(logger.Core().Enabled(zapcore.DebugLevel)).To(BeTrue())

		logger, err = config.NewLogger("warn")
		Expect(err).NotTo(HaveOccurred())
		Expect(logger.Core().Enabled(zapcore.InfoLevel)).To(BeFalse())

		_, err = config.NewLogger("loud")
		Expect(err).To(HaveOccurred())
	})
})
