package osm

import (
	"testing"

	"github.com/paulmach/osm"
)

func TestIsRoutableHighway(t *testing.T) {
	tests := []struct {
		name string
		tags osm.Tags
		want bool
	}{
		{"residential road", osm.Tags{{Key: "highway", Value: "residential"}}, true},
		{"motorway", osm.Tags{{Key: "highway", Value: "motorway"}}, true},
		{"service road", osm.Tags{{Key: "highway", Value: "service"}}, true},
		{"living_street", osm.Tags{{Key: "highway", Value: "living_street"}}, true},
		{"footway (not a road segment)", osm.Tags{{Key: "highway", Value: "footway"}}, false},
		{"cycleway", osm.Tags{{Key: "highway", Value: "cycleway"}}, false},
		{"no highway tag", osm.Tags{{Key: "name", Value: "Some Street"}}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isRoutableHighway(tt.tags); got != tt.want {
				t.Errorf("isRoutableHighway() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestIsArea(t *testing.T) {
	tests := []struct {
		name string
		tags osm.Tags
		want bool
	}{
		{
			name: "pedestrian plaza",
			tags: osm.Tags{{Key: "highway", Value: "service"}, {Key: "area", Value: "yes"}},
			want: true,
		},
		{
			name: "ordinary road",
			tags: osm.Tags{{Key: "highway", Value: "residential"}},
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isArea(tt.tags); got != tt.want {
				t.Errorf("isArea() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestWayAttributesCopiesOnlyRoutedKeys(t *testing.T) {
	tags := osm.Tags{
		{Key: "highway", Value: "primary"},
		{Key: "oneway", Value: "yes"},
		{Key: "name", Value: "Example Ave"},
		{Key: "maxspeed", Value: "50"},
	}

	attrs := wayAttributes(tags)

	if attrs["highway"] != "primary" {
		t.Errorf("highway = %q, want %q", attrs["highway"], "primary")
	}
	if attrs["oneway"] != "yes" {
		t.Errorf("oneway = %q, want %q", attrs["oneway"], "yes")
	}
	if attrs["maxspeed"] != "50" {
		t.Errorf("maxspeed = %q, want %q", attrs["maxspeed"], "50")
	}
	if _, present := attrs["name"]; present {
		t.Error("name should not be copied into the attribute set")
	}
}

func TestWayAttributesOmitsAbsentKeys(t *testing.T) {
	tags := osm.Tags{{Key: "highway", Value: "residential"}}
	attrs := wayAttributes(tags)

	if len(attrs) != 1 {
		t.Errorf("len(attrs) = %d, want 1 (only highway present)", len(attrs))
	}
	if _, present := attrs["oneway"]; present {
		t.Error("oneway should be absent when the way has no oneway tag")
	}
}

func TestBBoxContains(t *testing.T) {
	b := BBox{MinLat: 10, MaxLat: 20, MinLng: 30, MaxLng: 40}
	if !b.Contains(15, 35) {
		t.Error("expected point inside box to be contained")
	}
	if b.Contains(5, 35) {
		t.Error("expected point outside lat range to be excluded")
	}
	if b.IsZero() {
		t.Error("non-zero box reported as zero")
	}
	if !(BBox{}).IsZero() {
		t.Error("zero-value BBox should report IsZero")
	}
}
