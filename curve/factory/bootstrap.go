package factory

import (
	"fmt"
	"sort"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/meenmo/mocurve/calendar"
	"github.com/meenmo/mocurve/config"
	"github.com/meenmo/mocurve/curve"
	"github.com/meenmo/mocurve/logging"
	"github.com/meenmo/mocurve/utils"
)

type pillar struct {
	tenor string
	date  time.Time
	rate  float64
}

// BootstrapDiscountCurve builds a discount curve from par swap rates quoted
// in percent by tenor ("6M", "1Y", ...). Coupons fall on the quoted pillar
// dates, each pillar date being settlement moved by its tenor and rolled
// modified following on cal. Pillar n solves the par condition
//
//	DF_n = (1 - r_n * sum_{j<n} a_j DF_j) / (1 + r_n * a_n)
//
// with accruals a_j in config DayCount, reading earlier DF_j back from the
// curve under construction.
func BootstrapDiscountCurve(name string, settlement time.Time, parQuotes map[string]float64, cal calendar.CalendarID) (*curve.DiscountCurveInterpolation, error) {
	if len(parQuotes) == 0 {
		return nil, fmt.Errorf("bootstrap %q: %w: no par quotes", name, curve.ErrInvalidArgument)
	}
	dayCount := config.GetConfig().DayCount

	pillars := make([]pillar, 0, len(parQuotes))
	for tenor, pct := range parQuotes {
		offset, err := calendar.ParseOffset(tenor)
		if err != nil {
			return nil, fmt.Errorf("bootstrap %q: %w", name, err)
		}
		date := calendar.Adjust(cal, offset.Apply(cal, settlement))
		if !date.After(settlement) {
			return nil, fmt.Errorf("bootstrap %q: %w: tenor %s does not start after settlement", name, curve.ErrInvalidArgument, tenor)
		}
		pillars = append(pillars, pillar{tenor: tenor, date: date, rate: pct / 100})
	}
	sort.Slice(pillars, func(i, j int) bool { return pillars[i].date.Before(pillars[j].date) })

	b := curve.NewDiscountCurveBuilder(name, settlement, curve.Settings{})
	log := logging.Component("factory").WithField("curve", name)

	prev := settlement
	annuity := 0.0 // sum_{j<n} a_j DF_j
	for _, p := range pillars {
		accrual := utils.YearFraction(prev, p.date, dayCount)
		df := (1 - p.rate*annuity) / (1 + p.rate*accrual)
		t := utils.FloatingPointDate(settlement, p.date)
		if err := b.AddDiscountFactor(t, df, true); err != nil {
			return nil, fmt.Errorf("bootstrap %q: tenor %s: %w", name, p.tenor, err)
		}

		stored, err := b.DiscountFactor(t)
		if err != nil {
			return nil, err
		}
		annuity += accrual * stored
		prev = p.date

		log.WithFields(logrus.Fields{
			"tenor": p.tenor,
			"date":  p.date.Format("2006-01-02"),
			"df":    stored,
		}).Debug("bootstrapped pillar")
	}
	return b.Build()
}
