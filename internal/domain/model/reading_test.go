package model

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/smartystreets/goconvey/convey"
)

func validReading() Reading {
	return Reading{
		LocationName: "Berlin",
		Lat:          52.52,
		Lon:          13.405,
		Timestamp:    time.Date(2026, 8, 26, 10, 0, 0, 0, time.UTC),
		TempC:        21.5,
		Humidity:     60,
		WindKPH:      12,
		PressureMB:   1013,
		VisKM:        10,
		UVIndex:      4,
	}
}

func TestReadingValidate(t *testing.T) {
	convey.Convey("Given a reading", t, func() {
		convey.Convey("When all fields are in range", func() {
			r := validReading()

			convey.Convey("Then validation should pass", func() {
				convey.So(r.Validate(), convey.ShouldBeNil)
			})
		})

		convey.Convey("When the optional air quality block is present and valid", func() {
			r := validReading()
			r.AirQuality = &AirQuality{PM25: 12.4, PM10: 20, O3: 45, NO2: 10, SO2: 2, CO: 210, EPAIndex: 2}

			convey.Convey("Then validation should pass", func() {
				convey.So(r.Validate(), convey.ShouldBeNil)
			})
		})

		convey.Convey("When the location name is missing", func() {
			r := validReading()
			r.LocationName = ""

			convey.Convey("Then validation should fail", func() {
				err := r.Validate()
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(errors.Is(err, ErrInvalidReading), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When the timestamp is the zero value", func() {
			r := validReading()
			r.Timestamp = time.Time{}

			convey.Convey("Then validation should fail", func() {
				convey.So(errors.Is(r.Validate(), ErrInvalidReading), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When humidity is out of range", func() {
			r := validReading()
			r.Humidity = 150

			convey.Convey("Then validation should fail", func() {
				convey.So(errors.Is(r.Validate(), ErrInvalidReading), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When latitude is out of range", func() {
			r := validReading()
			r.Lat = 91

			convey.Convey("Then validation should fail", func() {
				convey.So(errors.Is(r.Validate(), ErrInvalidReading), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When a numeric field is NaN", func() {
			r := validReading()
			r.TempC = math.NaN()

			convey.Convey("Then validation should fail", func() {
				convey.So(errors.Is(r.Validate(), ErrInvalidReading), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When a numeric field is infinite", func() {
			r := validReading()
			r.WindKPH = math.Inf(1)

			convey.Convey("Then validation should fail", func() {
				convey.So(errors.Is(r.Validate(), ErrInvalidReading), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When an air quality field is NaN", func() {
			r := validReading()
			r.AirQuality = &AirQuality{PM25: math.NaN()}

			convey.Convey("Then validation should fail", func() {
				convey.So(errors.Is(r.Validate(), ErrInvalidReading), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When the EPA index is above the band range", func() {
			r := validReading()
			r.AirQuality = &AirQuality{EPAIndex: 7}

			convey.Convey("Then validation should fail", func() {
				convey.So(errors.Is(r.Validate(), ErrInvalidReading), convey.ShouldBeTrue)
			})
		})
	})
}

func TestReadingKey(t *testing.T) {
	convey.Convey("Given readings at the same location and instant", t, func() {
		ts := time.Date(2026, 8, 26, 10, 0, 0, 0, time.UTC)
		a := Reading{LocationName: "Berlin", Timestamp: ts}
		b := Reading{LocationName: "  BERLIN ", Timestamp: ts}

		convey.Convey("Then keys should normalize case and whitespace", func() {
			convey.So(a.Key(), convey.ShouldEqual, b.Key())
		})

		convey.Convey("Then keys should normalize the timezone", func() {
			cet := time.FixedZone("CET", 2*60*60)
			c := Reading{LocationName: "Berlin", Timestamp: ts.In(cet)}
			convey.So(c.Key(), convey.ShouldEqual, a.Key())
		})

		convey.Convey("Then a different timestamp should change the key", func() {
			d := Reading{LocationName: "Berlin", Timestamp: ts.Add(time.Minute)}
			convey.So(d.Key(), convey.ShouldNotEqual, a.Key())
		})

		convey.Convey("Then a different location should change the key", func() {
			e := Reading{LocationName: "Madrid", Timestamp: ts}
			convey.So(e.Key(), convey.ShouldNotEqual, a.Key())
		})
	})
}

func TestReadingClone(t *testing.T) {
	convey.Convey("Given a reading with an air quality block", t, func() {
		r := validReading()
		r.AirQuality = &AirQuality{PM25: 12.4, EPAIndex: 2}

		convey.Convey("When the reading is cloned", func() {
			c := r.Clone()

			convey.Convey("Then the clone should carry the same values", func() {
				convey.So(c.AirQuality.PM25, convey.ShouldEqual, 12.4)
			})

			convey.Convey("Then mutating the clone should not touch the original", func() {
				c.AirQuality.PM25 = 500
				convey.So(r.AirQuality.PM25, convey.ShouldEqual, 12.4)
			})
		})
	})

	convey.Convey("Given a reading without an air quality block", t, func() {
		r := validReading()
		r.AirQuality = nil

		convey.Convey("Then the clone should keep AirQuality nil", func() {
			convey.So(r.Clone().AirQuality, convey.ShouldBeNil)
		})
	})
}
