package notification_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/frahmantamala/expense-bot/internal/core/money"
	"github.com/frahmantamala/expense-bot/internal/limit"
	"github.com/frahmantamala/expense-bot/internal/notification"
)

var _ = Describe("Triggers", func() {
	units := money.FromUnits

	kinds := func(intents []notification.Intent) []notification.Kind {
		out := make([]notification.Kind, len(intents))
		for i, in := range intents {
			out[i] = in.Kind
		}
		return out
	}

	It("should stay silent for an ordinary expense", func() {
		res := limit.Classify(units(100), units(50), units(1000), 80)
		Expect(notification.Triggers(1, res, units(400))).To(BeEmpty())
	})

	It("should warn at the warning threshold", func() {
		res := limit.Classify(units(700), units(100), units(1000), 80)
		intents := notification.Triggers(1, res, units(400))
		Expect(kinds(intents)).To(Equal([]notification.Kind{notification.KindLimitWarning}))
		Expect(intents[0].UsagePercent).To(BeNumerically("~", 80.0, 0.001))
	})

	It("should fire limit_exceeded with the candidate amount", func() {
		res := limit.Classify(units(950), units(100), units(1000), 80)
		intents := notification.Triggers(1, res, units(400))
		Expect(kinds(intents)).To(Equal([]notification.Kind{notification.KindLimitExceeded}))
		Expect(intents[0].Candidate).To(Equal(units(100)))
	})

	It("should fire low_balance at zero and below even without a limit", func() {
		Expect(kinds(notification.Triggers(1, limit.NoLimit(units(5)), 0))).To(Equal([]notification.Kind{notification.KindLowBalance}))

		intents := notification.Triggers(1, limit.NoLimit(units(5)), units(-5))
		Expect(*intents[0].NewBalance).To(Equal(units(-5)))
	})

	It("should fire both limit and balance intents in that order", func() {
		res := limit.Classify(units(950), units(100), units(1000), 80)
		Expect(kinds(notification.Triggers(1, res, units(-10)))).To(Equal([]notification.Kind{
			notification.KindLimitExceeded,
			notification.KindLowBalance,
		}))
	})

	It("should give every intent its own id", func() {
		a := notification.LowBalance(1, 0)
		b := notification.LowBalance(1, 0)
		Expect(a.ID).NotTo(Equal(b.ID))
		Expect(a.EventType()).To(Equal(string(notification.KindLowBalance)))
	})
})
