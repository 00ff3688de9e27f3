package model_test

import (
	"encoding/json"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/okian/hookah/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMakeFlavorID(t *testing.T) {
	Convey("Given a brand and a flavor name", t, func() {
		Convey("Then the id is lower-cased and dash-joined", func() {
			So(model.MakeFlavorID("Darkside", "Bananapapa"), ShouldEqual, "darkside-bananapapa")
			So(model.MakeFlavorID("  Black Burn ", " Peach  Ice "), ShouldEqual, "black-burn-peach-ice")
		})
	})
}

func TestParseNumber(t *testing.T) {
	Convey("Given loosely typed JSON values", t, func() {
		cases := []struct {
			raw  string
			want float64
			ok   bool
		}{
			{`42`, 42, true},
			{`-3.5`, -3.5, true},
			{`"17"`, 17, true},
			{`" 8 "`, 8, true},
			{`""`, 0, true},
			{`null`, 0, true},
			{`true`, 1, true},
			{`false`, 0, true},
			{`"abc"`, 0, false},
			{`"NaN"`, 0, false},
			{`"Infinity"`, 0, false},
			{`{}`, 0, false},
			{`[1]`, 0, false},
			{``, 0, false},
		}
		for _, c := range cases {
			got, ok := model.ParseNumber(json.RawMessage(c.raw))
			So(ok, ShouldEqual, c.ok)
			So(got, ShouldEqual, c.want)
		}
	})

	Convey("Given non-finite floats", t, func() {
		_, ok := model.Finite(math.NaN())
		So(ok, ShouldBeFalse)
		So(model.FiniteOr(math.Inf(1), 7), ShouldEqual, 7)
		So(model.FiniteOr(3, 7), ShouldEqual, 3)
	})
}

func TestMixPartDecoding(t *testing.T) {
	Convey("Given a parts array with malformed entries", t, func() {
		var d model.Draft
		err := json.Unmarshal([]byte(`{
			"parts": [
				{"flavorId": "a", "percent": 40},
				{"flavorId": "b", "percent": "25"},
				{"flavorId": "c", "percent": "lots"},
				{"flavorId": 7, "percent": null},
				"garbage"
			],
			"title": "Mix"
		}`), &d)

		Convey("Then it decodes without error and degrades bad percents to zero", func() {
			So(err, ShouldBeNil)
			So(d.Parts, ShouldHaveLength, 5)
			So(d.Parts[0], ShouldResemble, model.MixPart{FlavorID: "a", Percent: 40})
			So(d.Parts[1].Percent, ShouldEqual, 25)
			So(d.Parts[2].Percent, ShouldEqual, 0)
			So(d.Parts[3].FlavorID, ShouldEqual, "7")
			So(d.Parts[4], ShouldResemble, model.MixPart{})
		})
	})

	Convey("Given parts that are not an array", t, func() {
		var d model.Draft
		err := json.Unmarshal([]byte(`{"parts": {"a": 1}}`), &d)

		Convey("Then parts decode as empty", func() {
			So(err, ShouldBeNil)
			So(d.Parts, ShouldBeEmpty)
		})
	})
}

func TestFlavorDecoding(t *testing.T) {
	Convey("Given a hand-written catalog entry", t, func() {
		var f model.Flavor
		err := json.Unmarshal([]byte(`{
			"brand": "Bonch", "name": "Cherry", "tags": "sweet; berry | ice",
			"strength10": 8
		}`), &f)

		Convey("Then separated tags are split and numeric strength is kept", func() {
			So(err, ShouldBeNil)
			So(f.Tags, ShouldResemble, model.Tags{"sweet", "berry", "ice"})
			So(f.Strength10, ShouldNotBeNil)
			So(*f.Strength10, ShouldEqual, 8)
		})
	})

	Convey("Given a strength written as a string", t, func() {
		var f model.Flavor
		err := json.Unmarshal([]byte(`{"brand": "Bonch", "name": "Cherry", "strength10": "8"}`), &f)

		Convey("Then it is treated as unrated", func() {
			So(err, ShouldBeNil)
			So(f.Strength10, ShouldBeNil)
		})
	})
}

func TestMixDecoding(t *testing.T) {
	Convey("Given mixes written by different clients", t, func() {
		Convey("Epoch milliseconds and numeric ids are read", func() {
			var m model.Mix
			err := json.Unmarshal([]byte(`{
				"id": 17,
				"title": "Old",
				"parts": [{"flavorId": "a", "percent": "100"}],
				"createdAt": 1700000000000,
				"taste": null,
				"strength10": "6",
				"likers": ["u1", 2, null]
			}`), &m)
			So(err, ShouldBeNil)
			So(m.ID, ShouldEqual, "17")
			So(m.CreatedAt.Equal(time.UnixMilli(1700000000000)), ShouldBeTrue)
			So(m.Parts, ShouldResemble, model.Parts{{FlavorID: "a", Percent: 100}})
			So(m.Taste, ShouldBeNil)
			So(m.Strength10, ShouldBeNil)
			So(m.Likers, ShouldResemble, []string{"u1", "2"})
		})

		Convey("RFC 3339 text, numeric strings and null are read", func() {
			var a, b, c model.Mix
			So(json.Unmarshal([]byte(`{"id":"a","createdAt":"2024-05-01T10:00:00Z","taste":"сладкий","strength10":5.5}`), &a), ShouldBeNil)
			So(a.CreatedAt.Equal(time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)), ShouldBeTrue)
			So(*a.Taste, ShouldEqual, "сладкий")
			So(*a.Strength10, ShouldEqual, 5.5)

			So(json.Unmarshal([]byte(`{"id":"b","createdAt":"1700000000000"}`), &b), ShouldBeNil)
			So(b.CreatedAt.UnixMilli(), ShouldEqual, 1700000000000)

			So(json.Unmarshal([]byte(`{"id":"c","createdAt":null}`), &c), ShouldBeNil)
			So(c.CreatedAt.IsZero(), ShouldBeTrue)
			So(c.Parts, ShouldNotBeNil)
			So(c.Likers, ShouldNotBeNil)
		})

		Convey("Records without a usable id or time fail", func() {
			var m model.Mix
			So(errors.Is(json.Unmarshal([]byte(`{"id":{"x":1},"title":"t"}`), &m), model.ErrMixID), ShouldBeTrue)
			So(json.Unmarshal([]byte(`{"id":"x","createdAt":"yesterday"}`), &m), ShouldNotBeNil)
			So(json.Unmarshal([]byte(`"just text"`), &m), ShouldNotBeNil)
		})

		Convey("Encoding and decoding keep the mix", func() {
			taste := "кислый"
			in := model.Mix{ID: "r", Title: "Round", Parts: model.Parts{{FlavorID: "a", Percent: 100}},
				CreatedAt: time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC), Taste: &taste, Likers: []string{"u"}}
			data, err := json.Marshal(in)
			So(err, ShouldBeNil)
			var out model.Mix
			So(json.Unmarshal(data, &out), ShouldBeNil)
			So(out, ShouldResemble, in)
		})
	})
}
