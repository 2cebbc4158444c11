package listing_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/nrfta/listing-go"
	"github.com/nrfta/listing-go/httplist"
	"github.com/nrfta/listing-go/offset"
	"github.com/nrfta/listing-go/sqlboiler"
	"github.com/nrfta/listing-go/tests/models"
)

var injections = []string{
	"'; DROP TABLE berita; --",
	"1' OR '1'='1",
	"1; DELETE FROM berita WHERE 1=1",
	"UNION SELECT * FROM opd",
	"' OR 1=1 --",
	"admin'--",
	"1' UNION SELECT NULL, NULL--",
	"' OR ''='",
}

var _ = Describe("Security Tests", func() {
	var fetcher *sqlboiler.Fetcher[*models.Beritum]

	BeforeEach(func() {
		// Clean tables before each test
		err := CleanupTables(ctx, container.DB)
		Expect(err).ToNot(HaveOccurred())

		_, err = SeedBerita(ctx, container.DB, 25)
		Expect(err).ToNot(HaveOccurred())

		fetcher = newBeritaFetcher(container.DB)
	})

	expectTableIntact := func() {
		count, err := models.Berita().Count(ctx, container.DB)
		Expect(err).ToNot(HaveOccurred())
		Expect(count).To(Equal(int64(25)))
	}

	Describe("SQL Injection Protection", func() {
		It("binds search strings as parameters", func() {
			for _, malicious := range injections {
				res, err := fetcher.List(ctx, listing.Query{Page: 1, Limit: 10, Search: malicious})
				Expect(err).ToNot(HaveOccurred(), malicious)
				Expect(res.Data).To(BeEmpty(), malicious)
			}
			expectTableIntact()
		})

		It("binds filter values as parameters", func() {
			for _, malicious := range injections {
				for _, op := range []listing.Operator{listing.OpEq, listing.OpLike, listing.OpIn} {
					res, err := fetcher.List(ctx, listing.Query{Page: 1, Limit: 10, Filters: []listing.Filter{
						{Field: "judul", Value: malicious, Operator: op},
					}})
					Expect(err).ToNot(HaveOccurred(), malicious)
					Expect(res.Data).To(BeEmpty(), malicious)
				}
			}
			expectTableIntact()
		})

		It("rejects field names outside the schema", func() {
			for _, malicious := range injections {
				_, err := fetcher.List(ctx, listing.Query{Page: 1, Limit: 10, Filters: []listing.Filter{
					{Field: malicious, Value: "x", Operator: listing.OpEq},
				}})

				var queryErr *listing.QueryError
				Expect(errors.As(err, &queryErr)).To(BeTrue(), malicious)
			}
			expectTableIntact()
		})

		It("rejects sort fields outside the schema", func() {
			for _, malicious := range []string{
				"judul; DROP TABLE berita",
				"(SELECT 1)",
				"judul DESC, (SELECT pg_sleep(1))",
			} {
				_, err := fetcher.List(ctx, listing.Query{Page: 1, Limit: 10, Sort: malicious})
				Expect(err).To(HaveOccurred(), malicious)
			}
			expectTableIntact()
		})

		It("treats LIKE wildcards in searches literally", func() {
			for _, wildcard := range []string{"%", "_", `\`} {
				res, err := fetcher.List(ctx, listing.Query{Page: 1, Limit: 10, Search: wildcard})
				Expect(err).ToNot(HaveOccurred())
				Expect(res.Data).To(BeEmpty(), wildcard)
			}
		})

		It("ignores custom filters on unknown keys", func() {
			res, err := fetcher.List(ctx, listing.Query{Page: 1, Limit: 10, CustomFilters: map[string]any{
				"1=1) OR (1": "1",
			}})
			Expect(err).ToNot(HaveOccurred())
			Expect(res.Meta.Total).To(Equal(25))
		})
	})

	Describe("Input Validation", func() {
		Context("Page Size Limits", func() {
			It("should normalize negative page sizes to the default", func() {
				paginator := offset.New(listing.Query{Page: 1, Limit: -10}, 100, listing.NewPageConfig())
				Expect(paginator.Limit).To(Equal(listing.DefaultPerPage))
			})

			It("should cap huge page sizes at the maximum", func() {
				paginator := offset.New(listing.Query{Page: 1, Limit: 999999}, 100, listing.NewPageConfig())
				Expect(paginator.Limit).To(Equal(listing.DefaultMaxPerPage))
			})
		})

		Context("Query Parameters", func() {
			var handler http.Handler

			BeforeEach(func() {
				handler = httplist.NewHandler[*models.Beritum](fetcher, listing.NewPageConfig().WithMaxSize(50))
			})

			get := func(params url.Values) *httptest.ResponseRecorder {
				rec := httptest.NewRecorder()
				handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/berita?"+params.Encode(), nil))
				return rec
			}

			It("should reject page sizes above the maximum", func() {
				rec := get(url.Values{"limit": {"1000000"}})
				Expect(rec.Code).To(Equal(http.StatusBadRequest))
			})

			It("should reject malformed numbers", func() {
				Expect(get(url.Values{"page": {"1 OR 1=1"}}).Code).To(Equal(http.StatusBadRequest))
				Expect(get(url.Values{"limit": {"ten"}}).Code).To(Equal(http.StatusBadRequest))
			})

			It("should reject unknown sort fields with 400", func() {
				rec := get(url.Values{"sort": {"password:asc"}})
				Expect(rec.Code).To(Equal(http.StatusBadRequest))
				Expect(rec.Body.String()).To(ContainSubstring("unknown sort field password"))
			})

			It("should reject unknown filter fields with 400", func() {
				rec := get(url.Values{"filter[password][eq]": {"x"}})
				Expect(rec.Code).To(Equal(http.StatusBadRequest))
			})

			It("should treat page numbers below 1 as page 1", func() {
				rec := get(url.Values{"page": {"-3"}})
				Expect(rec.Code).To(Equal(http.StatusOK))
				Expect(rec.Body.String()).To(ContainSubstring(`"current_page":1`))
			})
		})
	})
})
