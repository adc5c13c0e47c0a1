package eventlog_test

import (
	"testing"

	"github.com/okian/racerdash/internal/domain/eventlog"
	"github.com/okian/racerdash/internal/domain/model"
	"github.com/okian/racerdash/internal/domain/timestamp"
	. "github.com/smartystreets/goconvey/convey"
)

func TestResults(t *testing.T) {
	Convey("Given two contestants with dated and undated events", t, func() {
		contestants := []model.Contestant{
			{
				ID: "1", Name: "Rana", Batch: "A",
				Points: []model.PointGrant{
					{ID: "10", Number: 3, Reason: "Lap", DateTime: str("2024-03-10")},
					{Number: 4, Reason: "Old", DateTime: str("2024-01-01")},
				},
				Accolades: []model.AccoladeGrant{{Name: "starOfCreativity"}},
			},
			{
				Name: "Omar", Batch: "B",
				Points: []model.PointGrant{{ID: "20", Number: 7, Reason: "Win", DateTime: str("2024-03-20T08:00:00Z")}},
			},
		}

		Convey("When no range is given", func() {
			rows := eventlog.Results(contestants, timestamp.Unknown, timestamp.Unknown)

			Convey("Then every event is listed newest first, undated last", func() {
				So(rows, ShouldHaveLength, 4)
				So(rows[0].Key, ShouldEqual, "p-Omar-20")
				So(rows[1].Key, ShouldEqual, "p-1-10")
				So(rows[2].Key, ShouldEqual, "p-1-1")
				So(rows[3].Key, ShouldEqual, "a-1-0")
			})

			Convey("Then accolade rows carry zero points and a dash reason", func() {
				So(rows[3].Kind, ShouldEqual, model.KindAccolade)
				So(rows[3].Points, ShouldEqual, 0.0)
				So(rows[3].Reason, ShouldEqual, eventlog.ResultsAccoladeReason)
				So(rows[3].ContestantBatch, ShouldEqual, "A")
			})
		})

		Convey("When a March range is given", func() {
			from := timestamp.Parse("2024-03-01")
			to := timestamp.EndOfDay(timestamp.Parse("2024-03-20"))
			rows := eventlog.Results(contestants, from, to)

			Convey("Then January is dropped and the undated accolade stays", func() {
				So(rows, ShouldHaveLength, 3)
				for _, r := range rows {
					So(r.Reason, ShouldNotEqual, "Old")
				}
				So(rows[2].Timestamp.Known(), ShouldBeFalse)
			})
		})
	})
}
