package console_test

import (
	"os"
	"path/filepath"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/racerdash/internal/adapters/leaderboardapi"
	"github.com/okian/racerdash/internal/console"
)

func TestFileStore(t *testing.T) {
	Convey("Given a token file that does not exist yet", t, func() {
		path := filepath.Join(t.TempDir(), "state", "token")
		store := console.NewFileStore(path)

		Convey("Then loading yields no token", func() {
			token, err := store.Load()
			So(err, ShouldBeNil)
			So(token, ShouldBeEmpty)
		})

		Convey("When a token is saved", func() {
			So(store.Save("abc.def.ghi"), ShouldBeNil)

			Convey("Then it is private to the owner and loads back", func() {
				info, err := os.Stat(path)
				So(err, ShouldBeNil)
				So(info.Mode().Perm(), ShouldEqual, os.FileMode(0o600))

				token, err := store.Load()
				So(err, ShouldBeNil)
				So(token, ShouldEqual, "abc.def.ghi")
			})

			Convey("Then a new session resumes it", func() {
				sess, err := leaderboardapi.NewSession(store)
				So(err, ShouldBeNil)
				So(sess.Authenticated(), ShouldBeTrue)
				So(sess.Token(), ShouldEqual, "abc.def.ghi")
			})

			Convey("And ending the session removes the file", func() {
				sess, err := leaderboardapi.NewSession(store)
				So(err, ShouldBeNil)
				So(sess.End(), ShouldBeNil)
				_, err = os.Stat(path)
				So(os.IsNotExist(err), ShouldBeTrue)
				So(store.Clear(), ShouldBeNil)
			})
		})
	})
}
