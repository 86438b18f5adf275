package network

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	utls "github.com/refraction-networking/utls"
	. "github.com/smartystreets/goconvey/convey"
)

func TestNew(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, "#EXTM3U\n")
	}))
	defer server.Close()

	Convey("Given a plain client", t, func() {
		client := New(5*time.Second, false)

		Convey("Then it uses the configured timeout", func() {
			So(client.Timeout, ShouldEqual, 5*time.Second)
			So(client.Transport, ShouldHaveSameTypeAs, &http.Transport{})
		})
	})

	Convey("Given a fingerprinting client", t, func() {
		client := New(5*time.Second, true)
		So(client.Transport, ShouldHaveSameTypeAs, &fingerprintTransport{})

		Convey("When fetching over plain http", func() {
			resp, err := client.Get(server.URL)
			So(err, ShouldBeNil)
			defer resp.Body.Close()

			Convey("Then the request bypasses the TLS transports", func() {
				body, err := io.ReadAll(resp.Body)
				So(err, ShouldBeNil)
				So(string(body), ShouldEqual, "#EXTM3U\n")
			})
		})
	})

	Convey("restrictALPN rewrites the advertised protocols", t, func() {
		spec, err := utlsSpec()
		So(err, ShouldBeNil)
		restrictALPN(&spec, []string{"http/1.1"})
		So(alpnOf(spec), ShouldResemble, []string{"http/1.1"})
	})
}

func utlsSpec() (utls.ClientHelloSpec, error) {
	return utls.UTLSIdToSpec(utls.HelloChrome_120)
}

func alpnOf(spec utls.ClientHelloSpec) []string {
	for _, ext := range spec.Extensions {
		if alpn, ok := ext.(*utls.ALPNExtension); ok {
			return alpn.AlpnProtocols
		}
	}
	return nil
}
