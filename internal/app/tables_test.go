package app_test

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/racerdash/internal/app"
	"github.com/okian/racerdash/internal/domain/model"
	"github.com/okian/racerdash/internal/domain/table"
	"github.com/okian/racerdash/internal/domain/timestamp"
)

func TestContestantLogColumns(t *testing.T) {
	Convey("Given log entries with and without dates", t, func() {
		rows := []model.LogEntry{
			{Key: "old", Value: "+1", Timestamp: timestamp.Parse("2024-01-01")},
			{Key: "none", Value: "+2"},
			{Key: "new", Value: "+3", Timestamp: timestamp.Parse("2024-02-01")},
		}
		e := table.New(rows, app.ContestantLogColumns())
		defer e.Close()

		keys := func() []string {
			var out []string
			for _, r := range e.VisibleRows() {
				out = append(out, r.Key)
			}
			return out
		}

		Convey("When sorting by date descending", func() {
			So(e.SetSort("date", table.Desc), ShouldBeNil)

			Convey("Then undated entries come last", func() {
				So(keys(), ShouldResemble, []string{"new", "old", "none"})
			})
		})

		Convey("When sorting by date ascending", func() {
			So(e.SetSort("date", table.Asc), ShouldBeNil)

			Convey("Then the order is reversed", func() {
				So(keys(), ShouldResemble, []string{"none", "old", "new"})
			})
		})

		Convey("When filtering on the rendered date", func() {
			e.ApplyFilter("2024/02")

			Convey("Then only matching rows remain", func() {
				So(keys(), ShouldResemble, []string{"new"})
			})
		})
	})

	Convey("Given the dashboard date format", t, func() {
		So(app.DisplayDate(timestamp.Unknown), ShouldEqual, "—")
		So(app.DisplayDate(timestamp.Parse("2024-03-05T23:00:00Z")), ShouldEqual, "2024/03/05")
	})
}
