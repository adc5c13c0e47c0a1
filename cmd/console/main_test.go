package main

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/smartystreets/goconvey/convey"
)

func TestRun(t *testing.T) {
	convey.Convey("Given a fake upstream and a saved token", t, func() {
		color.NoColor = true
		up := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/api/Racer/Details" {
				http.NotFound(w, r)
				return
			}
			w.Header().Set("Content-Type", "application/json")
			_, _ = io.WriteString(w, `[{"id":1,"name":"Ana","description":"A","totalOfStars":7}]`)
		}))
		defer up.Close()

		dir := t.TempDir()
		tokenFile := filepath.Join(dir, "token")
		convey.So(os.WriteFile(tokenFile, []byte("saved\n"), 0o600), convey.ShouldBeNil)

		convey.Convey("When the console runs and quits", func() {
			var out bytes.Buffer
			err := run(context.Background(), strings.NewReader("q\n"), &out, options{
				baseURL:   up.URL + "/api",
				tokenFile: tokenFile,
				exportDir: dir,
				logFile:   filepath.Join(dir, "console.log"),
			})

			convey.Convey("Then the resumed session lands on the dashboard", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(out.String(), convey.ShouldContainSubstring, "=== Dashboard ===")
				convey.So(out.String(), convey.ShouldContainSubstring, "Ana")
			})
		})

		convey.Convey("When the user signs out", func() {
			var out bytes.Buffer
			err := run(context.Background(), strings.NewReader("logout\nq\n"), &out, options{
				baseURL:   up.URL + "/api",
				tokenFile: tokenFile,
				exportDir: dir,
				logFile:   filepath.Join(dir, "console.log"),
			})

			convey.Convey("Then the token file is removed", func() {
				convey.So(err, convey.ShouldBeNil)
				_, statErr := os.Stat(tokenFile)
				convey.So(os.IsNotExist(statErr), convey.ShouldBeTrue)
			})
		})
	})
}
