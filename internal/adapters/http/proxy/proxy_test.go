package proxy_test

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/okian/racerdash/internal/adapters/http/proxy"
	"github.com/okian/racerdash/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func TestProxy(t *testing.T) {
	_ = logger.InitWithOptions(logger.Options{Output: io.Discard})

	Convey("Given an upstream behind the proxy", t, func() {
		var seen struct {
			method, path, query, host, auth, body string
		}
		upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			b, _ := io.ReadAll(r.Body)
			seen.method, seen.path, seen.query = r.Method, r.URL.Path, r.URL.RawQuery
			seen.host, seen.auth, seen.body = r.Host, r.Header.Get("Authorization"), string(b)
			w.Header().Set("X-Upstream", "yes")
			w.WriteHeader(http.StatusCreated)
			_, _ = w.Write([]byte(`{"ok":true}`))
		}))
		defer upstream.Close()

		base, err := proxy.Parse(upstream.URL + "/api")
		So(err, ShouldBeNil)
		mux := http.NewServeMux()
		mux.Handle(proxy.Prefix, proxy.New(base))
		front := httptest.NewServer(mux)
		defer front.Close()

		Convey("When posting through /api", func() {
			req, _ := http.NewRequest(http.MethodPost, front.URL+"/api/Racer/7/Start?x=1&y=two", strings.NewReader(`{"number":5}`))
			req.Header.Set("Authorization", "Bearer t")
			resp, err := http.DefaultClient.Do(req)
			So(err, ShouldBeNil)
			defer func() { _ = resp.Body.Close() }()
			body, _ := io.ReadAll(resp.Body)

			Convey("Then method, path, query, body and headers pass through", func() {
				So(resp.StatusCode, ShouldEqual, http.StatusCreated)
				So(string(body), ShouldEqual, `{"ok":true}`)
				So(resp.Header.Get("X-Upstream"), ShouldEqual, "yes")
				So(seen.method, ShouldEqual, http.MethodPost)
				So(seen.path, ShouldEqual, "/api/Racer/7/Start")
				So(seen.query, ShouldEqual, "x=1&y=two")
				So(seen.body, ShouldEqual, `{"number":5}`)
				So(seen.auth, ShouldEqual, "Bearer t")
			})

			Convey("Then the Host header is the upstream host", func() {
				So(seen.host, ShouldEqual, strings.TrimPrefix(upstream.URL, "http://"))
			})
		})

		Convey("When the path keeps a trailing slash", func() {
			resp, err := http.Post(front.URL+"/api/Racer/", "application/json", strings.NewReader(`{}`))
			So(err, ShouldBeNil)
			_ = resp.Body.Close()

			Convey("Then upstream sees it too", func() {
				So(seen.path, ShouldEqual, "/api/Racer/")
			})
		})
	})

	Convey("Given an unreachable upstream", t, func() {
		dead := httptest.NewServer(http.NotFoundHandler())
		base, _ := proxy.Parse(dead.URL)
		dead.Close()
		front := httptest.NewServer(proxy.New(base))
		defer front.Close()

		Convey("When a request is proxied", func() {
			resp, err := http.Get(front.URL + "/api/Accolade")
			So(err, ShouldBeNil)
			defer func() { _ = resp.Body.Close() }()
			var body map[string]string
			_ = json.NewDecoder(resp.Body).Decode(&body)

			Convey("Then a structured 502 is returned", func() {
				So(resp.StatusCode, ShouldEqual, http.StatusBadGateway)
				So(resp.Header.Get("Content-Type"), ShouldEqual, "application/json")
				So(body["error"], ShouldEqual, "Proxy error")
				So(body["details"], ShouldNotBeEmpty)
			})
		})
	})

	Convey("Given invalid upstream URLs", t, func() {
		_, err := proxy.Parse("leaderboard.local/api")
		So(err, ShouldNotBeNil)
	})
}
