package scoring

import (
	"math"
	"time"

	"github.com/nathan-osman/go-sunrise"
)

// daylight is the sunrise to sunset window of one day as clock offsets from
// midnight in the trip's local frame. A window whose sunset offset is smaller
// than its sunrise offset wraps past midnight.
type daylight struct {
	sunrise time.Duration
	sunset  time.Duration
	clock   func(time.Time) time.Duration
	ok      bool
}

// daylightFor computes the window at the first sample's position on the
// first sample's local calendar date. A nil loc means local mean solar time
// at the first sample's longitude; otherwise loc's wall clock is used. At
// polar latitudes where the sun neither rises nor sets the window is empty
// and no sample counts as day.
func daylightFor(first Sample, loc *time.Location) daylight {
	clock := solarClock(first.Lon)
	date := first.At().Add(solarOffset(first.Lon)).UTC()
	if loc != nil {
		clock = wallClock(loc)
		date = first.At().In(loc)
	}

	rise, set := sunrise.SunriseSunset(first.Lat, first.Lon, date.Year(), date.Month(), date.Day())
	if rise.IsZero() || set.IsZero() {
		return daylight{}
	}
	return daylight{
		sunrise: clock(rise),
		sunset:  clock(set),
		clock:   clock,
		ok:      true,
	}
}

// contains reports whether t's local clock time lies in [sunrise, sunset].
func (d daylight) contains(t time.Time) bool {
	if !d.ok {
		return false
	}
	c := d.clock(t)
	if d.sunset < d.sunrise {
		return c >= d.sunrise || c <= d.sunset
	}
	return c >= d.sunrise && c <= d.sunset
}

// solarOffset is the mean solar time offset from UTC at lon, 4 minutes per degree.
func solarOffset(lon float64) time.Duration {
	return time.Duration(math.Round(lon * float64(4*time.Minute)))
}

func solarClock(lon float64) func(time.Time) time.Duration {
	offset := solarOffset(lon)
	return func(t time.Time) time.Duration {
		return clockOf(t.UTC().Add(offset))
	}
}

func wallClock(loc *time.Location) func(time.Time) time.Duration {
	return func(t time.Time) time.Duration {
		return clockOf(t.In(loc))
	}
}

func clockOf(t time.Time) time.Duration {
	return time.Duration(t.Hour())*time.Hour +
		time.Duration(t.Minute())*time.Minute +
		time.Duration(t.Second())*time.Second +
		time.Duration(t.Nanosecond())
}
