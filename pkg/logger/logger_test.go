package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestLoggerInit(t *testing.T) {
	Convey("Given the global logger", t, func() {
		Convey("When initialized with defaults", func() {
			So(Init(), ShouldBeNil)

			Convey("Then Get returns a usable logger", func() {
				So(Get(), ShouldNotBeNil)
				So(Sync(), ShouldBeNil)
			})
		})

		Convey("When initialized with an unknown format", func() {
			err := InitWithOptions(Options{Format: "xml"})

			Convey("Then it should fail", func() {
				So(err, ShouldNotBeNil)
				So(err.Error(), ShouldContainSubstring, "unknown log format")
			})
		})
	})
}

func TestLoggerJSONOutput(t *testing.T) {
	Convey("Given a JSON logger writing to a buffer", t, func() {
		var buf bytes.Buffer
		So(InitWithOptions(Options{Format: "json", Output: &buf}), ShouldBeNil)
		ctx := context.Background()

		Convey("When logging with fields", func() {
			Named("upstream").With(String("op", "contestants")).Info(ctx, "fetched", Int("rows", 3))

			Convey("Then the entry carries the fields and source", func() {
				var entry map[string]any
				So(json.Unmarshal(buf.Bytes(), &entry), ShouldBeNil)
				So(entry["msg"], ShouldEqual, "fetched")
				group, ok := entry["upstream"].(map[string]any)
				So(ok, ShouldBeTrue)
				So(group["op"], ShouldEqual, "contestants")
				So(group["rows"], ShouldEqual, float64(3))
				So(group["source"], ShouldContainSubstring, "logger_test.go")
			})
		})

		Convey("When logging below the active level", func() {
			So(SetLevelString("warn"), ShouldBeNil)
			Get().Info(ctx, "hidden")
			Get().Warn(ctx, "shown", Error(errors.New("boom")))

			Convey("Then only the warning is written", func() {
				out := buf.String()
				So(strings.Contains(out, "hidden"), ShouldBeFalse)
				So(out, ShouldContainSubstring, "shown")
				So(out, ShouldContainSubstring, "boom")
			})
		})
	})
}

func TestSetLevelString(t *testing.T) {
	Convey("Given level strings", t, func() {
		for _, lvl := range []string{"debug", "INFO", "", "warn", "warning", "error"} {
			So(SetLevelString(lvl), ShouldBeNil)
		}
		So(SetLevelString("verbose"), ShouldNotBeNil)
	})
}
