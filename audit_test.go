package main

import (
	"testing"

	"github.com/oarkflow/json"
	. "github.com/smartystreets/goconvey/convey"
)

func TestAuditMessage(t *testing.T) {
	Convey("Audit messages carry the run id", t, func() {
		a := NewAuditMessage("Cat", resultSubtrie)
		b := NewAuditMessage("dog", resultInvalid)
		So(a.RunID, ShouldNotBeEmpty)
		So(a.RunID, ShouldEqual, b.RunID)
		So(a.Timestamp.IsZero(), ShouldBeFalse)

		Convey("And encode with json field names", func() {
			data, err := json.Marshal(a)
			So(err, ShouldBeNil)

			var decoded map[string]any
			So(json.Unmarshal(data, &decoded), ShouldBeNil)
			So(decoded["query"], ShouldEqual, "Cat")
			So(decoded["result"], ShouldEqual, resultSubtrie)
			So(decoded["run"], ShouldEqual, runID)
		})
	})

	Convey("Audit backends are chosen by name", t, func() {
		a, err := NewAuditLogger(AuditSettings{}, RedisSettings{}, PostgresqlSettings{})
		So(err, ShouldBeNil)
		So(a, ShouldBeNil)

		_, err = NewAuditLogger(AuditSettings{Backend: "kafka"}, RedisSettings{}, PostgresqlSettings{})
		So(err, ShouldNotBeNil)
	})
}
