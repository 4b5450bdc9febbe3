package format

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVersion_Less(t *testing.T) {
	cases := []struct {
		a, b Version
		want bool
	}{
		{Version{2, 1}, Version{2, 2}, true},
		{Version{2, 2}, Version{2, 1}, false},
		{Version{2, 1}, Version{3, 0}, true},
		{Version{3, 0}, Version{2, 9}, false},
		{Version{2, 1}, Version{2, 1}, false},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, tc.a.Less(tc.b))
	}
}

func TestVersion_String(t *testing.T) {
	assert.Equal(t, "2.3", Version{2, 3}.String())
}

func TestClassifyNSx(t *testing.T) {
	cases := []struct {
		name         string
		legacy       bool
		v            Version
		ptpConfirmed bool
		want         FileSpec
	}{
		{"legacy", true, Version{2, 1}, false, FileSpecLegacy21},
		{"v22", false, Version{2, 2}, false, FileSpecV22},
		{"v23", false, Version{2, 3}, false, FileSpecV23},
		{"v30", false, Version{3, 0}, false, FileSpecV30},
		{"v3x-ptp", false, Version{3, 0}, true, FileSpecV3xPTP},
		{"v40-ptp", false, Version{4, 0}, true, FileSpecV3xPTP},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := ClassifyNSx(tc.legacy, tc.v, tc.ptpConfirmed)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestFileSpec_TimestampWidth(t *testing.T) {
	assert.Equal(t, 8, FileSpecV30.TimestampWidth())
	assert.Equal(t, 8, FileSpecV3xPTP.TimestampWidth())
	assert.Equal(t, 4, FileSpecV22.TimestampWidth())
	assert.Equal(t, 4, FileSpecV23.TimestampWidth())
	assert.Equal(t, 4, FileSpecLegacy21.TimestampWidth())
}

func TestFileSpec_String(t *testing.T) {
	cases := map[FileSpec]string{
		FileSpecLegacy21: "2.1",
		FileSpecV22:      "2.2",
		FileSpecV23:      "2.3",
		FileSpecV30:      "3.0",
		FileSpecV3xPTP:   "3.x-ptp",
		FileSpecUnknown:  "unknown",
	}

	for spec, want := range cases {
		assert.Equal(t, want, spec.String())
	}
}
