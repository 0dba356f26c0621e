package risk

import (
	"testing"

	"github.com/smartystreets/goconvey/convey"

	"github.com/envsentry/envsentry/internal/domain/model"
)

// calmReading triggers no factors: mild everything.
func calmReading() model.Reading {
	return model.Reading{
		LocationName: "Berlin",
		TempC:        20,
		Humidity:     50,
		WindKPH:      10,
		PressureMB:   1013,
		UVIndex:      3,
	}
}

func TestScore(t *testing.T) {
	convey.Convey("Given the risk scorer", t, func() {
		convey.Convey("When conditions are calm", func() {
			a := Score(calmReading())

			convey.Convey("Then the score should be zero with no factors", func() {
				convey.So(a.Score, convey.ShouldEqual, 0)
				convey.So(a.Level, convey.ShouldEqual, LevelLow)
				convey.So(a.Factors, convey.ShouldBeEmpty)
			})
		})

		convey.Convey("When several severe factors combine", func() {
			r := calmReading()
			r.TempC = 36      // extreme heat, 20
			r.Humidity = 85   // oppressive, 15
			r.WindKPH = 55    // gale force, 15
			r.UVIndex = 9     // very high, 5
			r.AirQuality = &model.AirQuality{PM25: 120, EPAIndex: 5} // very unhealthy, 20

			a := Score(r)

			convey.Convey("Then points should sum across all triggered factors", func() {
				convey.So(a.Score, convey.ShouldEqual, 75)
				convey.So(a.Level, convey.ShouldEqual, LevelHigh)
				convey.So(a.Factors, convey.ShouldHaveLength, 5)
			})

			convey.Convey("And factors should be ordered by points descending", func() {
				for i := 1; i < len(a.Factors); i++ {
					convey.So(a.Factors[i-1].Points, convey.ShouldBeGreaterThanOrEqualTo, a.Factors[i].Points)
				}
			})
		})

		convey.Convey("When every factor maxes out", func() {
			r := calmReading()
			r.TempC = 45
			r.Humidity = 95
			r.WindKPH = 90
			r.UVIndex = 12
			r.AirQuality = &model.AirQuality{PM25: 400, EPAIndex: 6}

			a := Score(r)

			convey.Convey("Then the score should stay within bounds", func() {
				convey.So(a.Score, convey.ShouldBeLessThanOrEqualTo, 100)
				convey.So(a.Score, convey.ShouldBeGreaterThanOrEqualTo, 0)
				convey.So(a.Level, convey.ShouldEqual, LevelHigh)
			})
		})

		convey.Convey("When severity of a single input increases", func() {
			mild := calmReading()
			mild.TempC = 31 // heat stress, 10

			severe := calmReading()
			severe.TempC = 36 // extreme heat, 20

			convey.Convey("Then the score should never decrease", func() {
				convey.So(Score(severe).Score, convey.ShouldBeGreaterThanOrEqualTo, Score(mild).Score)
			})
		})

		convey.Convey("When a reading carries no air quality block", func() {
			r := calmReading()
			a := Score(r)

			withAQ := calmReading()
			withAQ.AirQuality = &model.AirQuality{EPAIndex: 1}

			convey.Convey("Then the air quality factor should be skipped entirely", func() {
				convey.So(a.Score, convey.ShouldEqual, Score(withAQ).Score)
			})
		})

		convey.Convey("When the EPA index sits at the neutral band", func() {
			r := calmReading()
			r.AirQuality = &model.AirQuality{EPAIndex: 3}

			convey.Convey("Then no air quality points should be added", func() {
				convey.So(Score(r).Score, convey.ShouldEqual, 0)
			})
		})

		convey.Convey("When extreme cold is reported", func() {
			r := calmReading()
			r.TempC = -15

			a := Score(r)

			convey.Convey("Then the temperature factor should trigger at full points", func() {
				convey.So(a.Factors, convey.ShouldHaveLength, 1)
				convey.So(a.Factors[0].Points, convey.ShouldEqual, 20)
				convey.So(a.Factors[0].SeverityLabel, convey.ShouldEqual, "Extreme Cold")
			})
		})
	})
}

func TestLevelFor(t *testing.T) {
	convey.Convey("Given the level thresholds", t, func() {
		cases := []struct {
			score int
			level Level
		}{
			{0, LevelLow},
			{30, LevelLow},
			{31, LevelModerate},
			{60, LevelModerate},
			{61, LevelHigh},
			{100, LevelHigh},
		}

		for _, tc := range cases {
			convey.So(levelFor(tc.score), convey.ShouldEqual, tc.level)
		}
	})
}

func TestScoreDeterminism(t *testing.T) {
	convey.Convey("Given the same reading scored twice", t, func() {
		r := calmReading()
		r.TempC = 33
		r.Humidity = 82

		first := Score(r)
		second := Score(r)

		convey.Convey("Then both assessments should be identical", func() {
			convey.So(second.Score, convey.ShouldEqual, first.Score)
			convey.So(second.Level, convey.ShouldEqual, first.Level)
			convey.So(second.Factors, convey.ShouldResemble, first.Factors)
		})
	})
}
