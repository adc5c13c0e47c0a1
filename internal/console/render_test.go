package console_test

import (
	"bytes"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/racerdash/internal/app"
	"github.com/okian/racerdash/internal/console"
	"github.com/okian/racerdash/internal/domain/awards"
	"github.com/okian/racerdash/internal/domain/table"
)

func TestRenderTable(t *testing.T) {
	Convey("Given the standings of twelve racers", t, func() {
		var buf bytes.Buffer
		r := console.NewRenderer(&buf)
		e := table.New(awards.Standings(racers(12)), app.LeaderboardColumns())
		defer e.Close()

		Convey("When the first page is rendered", func() {
			console.RenderTable(r, e)
			out := buf.String()

			Convey("Then headers, rows and the footer are printed", func() {
				So(out, ShouldContainSubstring, "Name")
				So(out, ShouldContainSubstring, "Batch A")
				So(out, ShouldContainSubstring, "racer-1 ")
				So(out, ShouldContainSubstring, "0/0/0/0")
				So(out, ShouldContainSubstring, "Page 1 of 2, 12 of 12 rows")
			})
		})

		Convey("When sorted by points descending", func() {
			So(e.SetSort("points", table.Desc), ShouldBeNil)
			console.RenderTable(r, e)

			Convey("Then the header carries the direction", func() {
				So(buf.String(), ShouldContainSubstring, "Points v")
			})
		})

		Convey("When nothing matches a pending filter", func() {
			e.SetFilterText("nobody")
			console.RenderTable(r, e)
			out := buf.String()

			Convey("Then the filter is applied and the placeholder shown", func() {
				So(e.FilterPending(), ShouldBeFalse)
				So(out, ShouldContainSubstring, table.NoMatchesPlaceholder)
				So(out, ShouldContainSubstring, `Page 1 of 1, 0 of 12 rows, filter "nobody"`)
			})
		})
	})

	Convey("Given cell values", t, func() {
		So(console.FormatCell(1234.5), ShouldEqual, "1,234.5")
		So(console.FormatCell(1500), ShouldEqual, "1,500")
		So(console.FormatCell("x"), ShouldEqual, "x")
		So(console.FormatCell(nil), ShouldEqual, "")
	})

	Convey("Given a shelf", t, func() {
		var buf bytes.Buffer
		r := console.NewRenderer(&buf)

		Convey("When it is empty", func() {
			r.Shelf(nil)
			So(buf.String(), ShouldEqual, "Awards: "+awards.EmptyShelf+"\n")
		})

		Convey("When badges are held", func() {
			r.Shelf([]awards.Badge{
				awards.Describe(awards.StarOfCreativity, 2),
				awards.Describe(awards.MedalOfCreativity, 0),
			})
			So(buf.String(), ShouldEqual, "Awards: Star of Creativity x2\n")
		})
	})
}
