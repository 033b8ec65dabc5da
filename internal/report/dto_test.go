package report_test

import (
	"net/url"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/frahmantamala/expense-bot/internal"
	"github.com/frahmantamala/expense-bot/internal/report"
)

var _ = Describe("RangeFromQuery", func() {
	// Thursday
	now := time.Date(2026, 8, 20, 15, 30, 0, 0, time.UTC)

	parse := func(raw string) (report.Range, error) {
		q, err := url.ParseQuery(raw)
		Expect(err).NotTo(HaveOccurred())
		r, appErr := report.RangeFromQuery(q, now)
		if appErr != nil {
			return r, appErr
		}
		return r, nil
	}

	DescribeTable("named periods",
		func(query string, from time.Time) {
			r, err := parse(query)
			Expect(err).NotTo(HaveOccurred())
			Expect(r.From).To(Equal(from))
			Expect(r.To).To(Equal(now))
		},
		Entry("default month", "", time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)),
		Entry("week from monday", "period=week", time.Date(2026, 8, 17, 0, 0, 0, 0, time.UTC)),
		Entry("quarter", "period=quarter", time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC)),
		Entry("all time", "period=all", time.Time{}),
	)

	It("should include the whole to day", func() {
		r, err := parse("from=2026-08-01&to=2026-08-10")
		Expect(err).NotTo(HaveOccurred())
		Expect(r.From).To(Equal(time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)))
		Expect(r.To).To(Equal(time.Date(2026, 8, 11, 0, 0, 0, 0, time.UTC)))
	})

	It("should reject bad input", func() {
		_, err := parse("period=decade")
		Expect(internal.HasCode(err, internal.ErrCodeInvalidPeriod)).To(BeTrue())

		_, err = parse("from=08/01/2026")
		Expect(internal.HasCode(err, internal.ErrCodeInvalidDate)).To(BeTrue())

		_, err = parse("from=2026-08-10&to=2026-08-01")
		Expect(internal.HasCode(err, internal.ErrCodeInvalidDate)).To(BeTrue())
	})
})
