package eventlog_test

import (
	"testing"

	"github.com/okian/racerdash/internal/domain/eventlog"
	"github.com/okian/racerdash/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func str(s string) *string { return &s }

func TestMerge(t *testing.T) {
	Convey("Given points and accolades for one contestant", t, func() {
		catalog := model.NewCatalog([]model.AccoladeType{
			{ID: "1", Name: "starOfCreativity", Description: "Star of Creativity"},
			{ID: "2", Name: "starOfParticipation", Description: ""},
		})
		points := []model.PointGrant{
			{ID: "p1", Number: 5, Reason: "Lap", DateTime: str("2024-03-02T10:00:00")},
			{Number: 2.5, Reason: "Bonus", DateTime: nil},
			{ID: "p3", Number: 1, Reason: "Late", DateTime: str("2024-03-04")},
		}
		accolades := []model.AccoladeGrant{
			{ID: "a1", Name: "starOfCreativity", Reason: "Design", DateTime: str("2024-03-03T09:00:00Z")},
			{Name: "medalOfCreativity"},
			{ID: "a3", Name: "starOfParticipation", DateTime: str("not a date")},
		}

		Convey("When merging", func() {
			log := eventlog.Merge(points, accolades, catalog)

			Convey("Then known timestamps are newest first and unknown ones trail", func() {
				So(log, ShouldHaveLength, 6)
				keys := make([]string, len(log))
				for i, e := range log {
					keys[i] = e.Key
				}
				So(keys, ShouldResemble, []string{
					"point-p3", "accolade-a1", "point-p1",
					"point-1", "accolade-1", "accolade-a3",
				})
				seenUnknown := false
				var last int64 = 1<<63 - 1
				for _, e := range log {
					ms, ok := e.Timestamp.Millis()
					if !ok {
						seenUnknown = true
						continue
					}
					So(seenUnknown, ShouldBeFalse)
					So(ms, ShouldBeLessThanOrEqualTo, last)
					last = ms
				}
			})

			Convey("Then point values carry a plus sign", func() {
				So(log[0].Value, ShouldEqual, "+1")
				So(log[3].Value, ShouldEqual, "+2.5")
				So(log[0].Kind, ShouldEqual, model.KindPoint)
			})

			Convey("Then accolades resolve against the catalog", func() {
				So(log[1].Value, ShouldEqual, "Star of Creativity")
				So(log[1].IconType, ShouldEqual, "starOfCreativity")
				So(log[1].Reason, ShouldEqual, "Design")
			})

			Convey("Then catalog misses and empty descriptions show the raw identifier", func() {
				So(log[4].Value, ShouldEqual, "medalOfCreativity")
				So(log[5].Value, ShouldEqual, "starOfParticipation")
			})

			Convey("Then missing accolade reasons read Granted", func() {
				So(log[4].Reason, ShouldEqual, eventlog.DefaultAccoladeReason)
			})

			Convey("Then merging again yields the same sequence", func() {
				So(eventlog.Merge(points, accolades, catalog), ShouldResemble, log)
			})
		})

		Convey("When both inputs are empty", func() {
			log := eventlog.Merge(nil, nil, nil)

			Convey("Then the log is empty", func() {
				So(log, ShouldBeEmpty)
			})
		})
	})
}
