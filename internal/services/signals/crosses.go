package signals

import (
	"math"

	"FundLens/internal/domain/models"
)

// DetectCrosses finds golden (short MA crosses above long) and death (short crosses below long) days.
// The table must have been computed with the same windows; otherwise no columns match and no events
// are returned. Any undefined value among the four compared points suppresses the event.
func DetectCrosses(table *models.IndicatorTable, shortWindow, longWindow int) models.Crosses {
	out := models.Crosses{}
	if table == nil || table.Config.ShortWindow != shortWindow || table.Config.LongWindow != longWindow {
		return out
	}
	short, okS := table.Column(models.ColMAShort)
	long, okL := table.Column(models.ColMALong)
	if !okS || !okL {
		return out
	}
	dates := table.Series.Dates()
	for i := 1; i < len(short) && i < len(long) && i < len(dates); i++ {
		ps, pl, cs, cl := short[i-1], long[i-1], short[i], long[i]
		if anyNaN(ps, pl, cs, cl) {
			continue
		}
		switch {
		case ps <= pl && cs > cl:
			out.Golden = append(out.Golden, dates[i])
		case ps >= pl && cs < cl:
			out.Death = append(out.Death, dates[i])
		}
	}
	return out
}

func anyNaN(vs ...float64) bool {
	for _, v := range vs {
		if math.IsNaN(v) {
			return true
		}
	}
	return false
}
