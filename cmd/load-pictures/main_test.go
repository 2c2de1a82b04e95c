package main

import (
	"strings"
	"testing"

	"campus-spot/internal/catalog"
)

func TestReadPictures(t *testing.T) {
	input := `pictureid,lat,lon,place,link
1, 40.3487, -74.6593, Nassau Hall, spots/1.jpg
2,40.3440,-74.6514,Frist Campus Center,spots/2.jpg
3,40.3461,-74.6552,,spots/3.jpg
4,40.3
`
	pictures, err := readPictures(strings.NewReader(input))
	if err != nil {
		t.Fatalf("expected csv to parse, got %v", err)
	}
	if len(pictures) != 2 {
		t.Fatalf("expected 2 pictures, got %d", len(pictures))
	}
	if pictures[0].Place != "Nassau Hall" || pictures[0].Coordinates.Lon != -74.6593 {
		t.Fatalf("expected Nassau Hall, got %#v", pictures[0])
	}

	if _, err := readPictures(strings.NewReader("h,h,h,h,h\nx,1,2,a,b\n")); err == nil {
		t.Fatalf("expected error for bad id")
	}
}

func TestFirstGap(t *testing.T) {
	pics := func(ids ...int) []catalog.Picture {
		out := make([]catalog.Picture, 0, len(ids))
		for _, id := range ids {
			out = append(out, catalog.Picture{ID: id})
		}
		return out
	}
	if gap := firstGap(pics(3, 1, 2)); gap != 0 {
		t.Fatalf("expected no gap, got %d", gap)
	}
	if gap := firstGap(pics(1, 2, 4)); gap != 3 {
		t.Fatalf("expected gap at 3, got %d", gap)
	}
	if gap := firstGap(pics(2, 3)); gap != 1 {
		t.Fatalf("expected gap at 1, got %d", gap)
	}
}
