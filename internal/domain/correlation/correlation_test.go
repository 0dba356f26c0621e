package correlation

import (
	"testing"

	"github.com/smartystreets/goconvey/convey"

	"github.com/envsentry/envsentry/internal/domain/model"
)

func calmReading() model.Reading {
	return model.Reading{
		LocationName: "Berlin",
		TempC:        20,
		Humidity:     50,
		WindKPH:      15,
		PressureMB:   1013,
		UVIndex:      3,
	}
}

func TestDetect(t *testing.T) {
	convey.Convey("Given the correlation detector", t, func() {
		convey.Convey("When conditions are calm", func() {
			findings := Detect(calmReading())

			convey.Convey("Then no findings should be reported", func() {
				convey.So(findings, convey.ShouldBeEmpty)
			})
		})

		convey.Convey("When high PM2.5 meets stagnant air", func() {
			r := calmReading()
			r.WindKPH = 5
			r.AirQuality = &model.AirQuality{PM25: 60}

			findings := Detect(r)

			convey.Convey("Then only the dispersion rule should fire", func() {
				convey.So(findings, convey.ShouldHaveLength, 1)
				convey.So(findings[0].Category, convey.ShouldEqual, "poor air dispersion")
				convey.So(findings[0].Severity, convey.ShouldEqual, SeverityWarning)
				convey.So(findings[0].Recommendation, convey.ShouldNotBeEmpty)
			})
		})

		convey.Convey("When high PM2.5 meets fresh wind", func() {
			r := calmReading()
			r.WindKPH = 25
			r.AirQuality = &model.AirQuality{PM25: 60}

			convey.Convey("Then the dispersion rule should not fire", func() {
				convey.So(Detect(r), convey.ShouldBeEmpty)
			})
		})

		convey.Convey("When heat combines with elevated particulates", func() {
			r := calmReading()
			r.TempC = 32
			r.AirQuality = &model.AirQuality{PM25: 40}

			findings := Detect(r)

			convey.Convey("Then the ozone formation rule should fire", func() {
				convey.So(findings, convey.ShouldHaveLength, 1)
				convey.So(findings[0].Category, convey.ShouldEqual, "ozone formation risk")
			})
		})

		convey.Convey("When humid heat impairs cooling", func() {
			r := calmReading()
			r.TempC = 34
			r.Humidity = 80

			findings := Detect(r)

			convey.Convey("Then the heat stress rule should fire at danger severity", func() {
				convey.So(findings, convey.ShouldHaveLength, 1)
				convey.So(findings[0].Category, convey.ShouldEqual, "heat stress risk")
				convey.So(findings[0].Severity, convey.ShouldEqual, SeverityDanger)
			})
		})

		convey.Convey("When the UV index is high", func() {
			r := calmReading()
			r.UVIndex = 8

			findings := Detect(r)

			convey.Convey("Then the sun protection advisory should fire at info severity", func() {
				convey.So(findings, convey.ShouldHaveLength, 1)
				convey.So(findings[0].Category, convey.ShouldEqual, "sun protection needed")
				convey.So(findings[0].Severity, convey.ShouldEqual, SeverityInfo)
			})
		})

		convey.Convey("When atmospheric pressure is low", func() {
			r := calmReading()
			r.PressureMB = 995

			findings := Detect(r)

			convey.Convey("Then the weather change rule should fire without a recommendation", func() {
				convey.So(findings, convey.ShouldHaveLength, 1)
				convey.So(findings[0].Category, convey.ShouldEqual, "weather change likely")
				convey.So(findings[0].Recommendation, convey.ShouldBeEmpty)
			})
		})

		convey.Convey("When pressure data is absent", func() {
			r := calmReading()
			r.PressureMB = 0

			convey.Convey("Then the pressure rule should not fire on the zero value", func() {
				convey.So(Detect(r), convey.ShouldBeEmpty)
			})
		})

		convey.Convey("When several rules match at once", func() {
			r := calmReading()
			r.TempC = 34
			r.Humidity = 80
			r.WindKPH = 5
			r.UVIndex = 9
			r.AirQuality = &model.AirQuality{PM25: 60}

			findings := Detect(r)

			convey.Convey("Then findings should appear in table order", func() {
				convey.So(findings, convey.ShouldHaveLength, 4)
				convey.So(findings[0].Category, convey.ShouldEqual, "poor air dispersion")
				convey.So(findings[1].Category, convey.ShouldEqual, "ozone formation risk")
				convey.So(findings[2].Category, convey.ShouldEqual, "heat stress risk")
				convey.So(findings[3].Category, convey.ShouldEqual, "sun protection needed")
			})

			convey.Convey("And a second detection should produce the same output", func() {
				convey.So(Detect(r), convey.ShouldResemble, findings)
			})
		})

		convey.Convey("When a rule needs air quality data that is missing", func() {
			r := calmReading()
			r.TempC = 32
			r.WindKPH = 5
			r.AirQuality = nil

			convey.Convey("Then air-quality rules should be skipped without panicking", func() {
				convey.So(func() { Detect(r) }, convey.ShouldNotPanic)
				convey.So(Detect(r), convey.ShouldBeEmpty)
			})
		})
	})
}
