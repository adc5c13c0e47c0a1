package table_test

import (
	"testing"
	"time"

	"github.com/okian/racerdash/internal/domain/table"
	. "github.com/smartystreets/goconvey/convey"
)

func TestCellStringAndCompare(t *testing.T) {
	Convey("Given cell values of several kinds", t, func() {
		s := "x"
		var nilStr *string
		when := time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)

		Convey("Then CellString renders them", func() {
			So(table.CellString(nil), ShouldEqual, "")
			So(table.CellString(&s), ShouldEqual, "x")
			So(table.CellString(nilStr), ShouldEqual, "")
			So(table.CellString(12.5), ShouldEqual, "12.5")
			So(table.CellString(3), ShouldEqual, "3")
			So(table.CellString(true), ShouldEqual, "true")
			So(table.CellString(when), ShouldEqual, "2024-03-05T00:00:00Z")
		})

		Convey("Then CompareValues orders them", func() {
			So(table.CompareValues(2, 10), ShouldBeLessThan, 0)
			So(table.CompareValues(2.5, 2), ShouldBeGreaterThan, 0)
			So(table.CompareValues("apple", "Banana"), ShouldBeLessThan, 0)
			So(table.CompareValues("a", "A"), ShouldBeGreaterThan, 0)
			So(table.CompareValues(nil, 1), ShouldBeGreaterThan, 0)
			So(table.CompareValues(nilStr, &s), ShouldBeGreaterThan, 0)
			So(table.CompareValues(when, when.Add(time.Hour)), ShouldBeLessThan, 0)
			So(table.CompareValues(false, true), ShouldBeLessThan, 0)
		})
	})
}
