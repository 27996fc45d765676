package core

import (
	"errors"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

// bodyRecorder hands out a canned body and remembers what was asked of it
type bodyRecorder struct {
	calls int
	n     int
	body  []byte
	err   error
}

func (b *bodyRecorder) read(n int) ([]byte, error) {
	b.calls++
	b.n = n
	return b.body, b.err
}

func TestParseResponse(t *testing.T) {
	Convey("when ParseResponse is called", t, func() {
		br := &bodyRecorder{}

		Convey("with a status that carries no body", func() {
			resp, err := ParseResponse([]byte("INSERTED 42"), br.read)

			Convey("the status and fields are split and no body is read", func() {
				So(err, ShouldBeNil)
				So(resp.Status, ShouldEqual, "INSERTED")
				So(resp.Fields, ShouldResemble, []string{"42"})
				So(resp.Body, ShouldBeNil)
				So(br.calls, ShouldEqual, 0)
			})
		})

		Convey("with a bare status", func() {
			resp, err := ParseResponse([]byte("DELETED"), br.read)

			Convey("there are no fields", func() {
				So(err, ShouldBeNil)
				So(resp.Status, ShouldEqual, "DELETED")
				So(resp.Fields, ShouldBeEmpty)
				So(br.calls, ShouldEqual, 0)
			})
		})

		Convey("with a RESERVED status", func() {
			br.body = []byte("hello")
			resp, err := ParseResponse([]byte("RESERVED 7 5"), br.read)

			Convey("exactly the advertised bytes are read as the body", func() {
				So(err, ShouldBeNil)
				So(resp.Status, ShouldEqual, "RESERVED")
				So(resp.Fields, ShouldResemble, []string{"7", "5"})
				So(string(resp.Body), ShouldEqual, "hello")
				So(br.calls, ShouldEqual, 1)
				So(br.n, ShouldEqual, 5)
			})
		})

		Convey("with a FOUND status and an empty body", func() {
			br.body = []byte{}
			resp, err := ParseResponse([]byte("FOUND 3 0"), br.read)

			Convey("a zero length body is read", func() {
				So(err, ShouldBeNil)
				So(resp.Body, ShouldBeEmpty)
				So(br.n, ShouldEqual, 0)
			})
		})

		Convey("with an OK status", func() {
			br.body = []byte("---\nid: 1\n")
			resp, err := ParseResponse([]byte("OK 10"), br.read)

			Convey("the byte count is taken from the first field", func() {
				So(err, ShouldBeNil)
				So(br.n, ShouldEqual, 10)
				So(string(resp.Body), ShouldEqual, "---\nid: 1\n")
			})
		})

		Convey("with a status carrying a non-numeric byte count", func() {
			resp, err := ParseResponse([]byte("RESERVED 7 five"), br.read)

			Convey("a malformed response error is returned without reading", func() {
				So(resp, ShouldBeNil)
				So(errors.Is(err, ErrMalformedResponse), ShouldBeTrue)
				So(br.calls, ShouldEqual, 0)
			})
		})

		Convey("with a status missing its byte count", func() {
			_, err := ParseResponse([]byte("OK"), br.read)

			Convey("a malformed response error is returned", func() {
				So(errors.Is(err, ErrMalformedResponse), ShouldBeTrue)
				So(br.calls, ShouldEqual, 0)
			})
		})

		Convey("with a negative byte count", func() {
			_, err := ParseResponse([]byte("FOUND 1 -3"), br.read)

			Convey("a malformed response error is returned", func() {
				So(errors.Is(err, ErrMalformedResponse), ShouldBeTrue)
			})
		})

		Convey("with an empty line", func() {
			_, err := ParseResponse([]byte(""), br.read)

			Convey("a malformed response error is returned", func() {
				So(errors.Is(err, ErrMalformedResponse), ShouldBeTrue)
			})
		})

		Convey("with a body read that fails", func() {
			br.err = errors.New("connection reset")
			resp, err := ParseResponse([]byte("RESERVED 1 4"), br.read)

			Convey("the read error is surfaced unchanged", func() {
				So(resp, ShouldBeNil)
				So(err, ShouldEqual, br.err)
			})
		})

		Convey("with an unknown status", func() {
			resp, err := ParseResponse([]byte("FLYING 1 2"), br.read)

			Convey("it is parsed but never read further", func() {
				So(err, ShouldBeNil)
				So(resp.Status, ShouldEqual, "FLYING")
				So(br.calls, ShouldEqual, 0)
			})
		})
	})
}
