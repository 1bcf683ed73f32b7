package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestLoggerInit(t *testing.T) {
	if err := Init(); err != nil {
		t.Fatalf("failed to initialize logger: %v", err)
	}
	defer func() {
		if err := Sync(); err != nil {
			t.Errorf("failed to sync logger: %v", err)
		}
	}()

	if Get() == nil {
		t.Fatal("logger is nil after initialization")
	}
	if Named("test") == nil {
		t.Fatal("named logger is nil")
	}
}

func TestLoggerJSONOutput(t *testing.T) {
	Convey("Given a JSON logger writing to a buffer", t, func() {
		var buf bytes.Buffer
		So(Configure("json", &buf), ShouldBeNil)
		So(SetLevelString("debug"), ShouldBeNil)
		defer func() {
			_ = SetLevelString("info")
			_ = Init()
		}()

		Convey("When logging with a request id on the context", func() {
			ctx := WithRequestID(context.Background(), "req-42")
			Get().With(String("component", "test")).Info(ctx, "hello", Int("round", 3))

			var line map[string]any
			So(json.Unmarshal(buf.Bytes(), &line), ShouldBeNil)

			Convey("Then the fields, request id and source are present", func() {
				So(line["msg"], ShouldEqual, "hello")
				So(line["component"], ShouldEqual, "test")
				So(line["round"], ShouldEqual, 3)
				So(line["request_id"], ShouldEqual, "req-42")
				So(line["source"], ShouldContainSubstring, "logger_test.go")
			})
		})

		Convey("When the level filters a message", func() {
			So(SetLevelString("error"), ShouldBeNil)
			Get().Info(context.Background(), "dropped")

			Convey("Then nothing is written", func() {
				So(buf.Len(), ShouldEqual, 0)
			})
		})
	})
}

func TestSetLevelString(t *testing.T) {
	Convey("Given level strings", t, func() {
		for _, lvl := range []string{"debug", "INFO", "warn", "warning", "error", ""} {
			So(SetLevelString(lvl), ShouldBeNil)
		}
		So(SetLevelString("loud"), ShouldNotBeNil)
		So(Configure("xml", nil), ShouldNotBeNil)
		_ = SetLevelString("info")
	})
}
