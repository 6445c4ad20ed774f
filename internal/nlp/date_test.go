package nlp

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveDate(t *testing.T) {
	// Anchor with a non-midnight time-of-day to prove it is discarded.
	now := time.Date(2025, 1, 10, 17, 42, 3, 0, time.UTC)

	tests := []struct {
		name    string
		phrase  string
		want    string
		wantErr bool
	}{
		{name: "unspecified", phrase: "", want: "2025-01-10"},
		{name: "hari ini", phrase: "hari ini", want: "2025-01-10"},
		{name: "kemarin", phrase: "kemarin", want: "2025-01-09"},
		{name: "kemarin lusa", phrase: "kemarin lusa", want: "2025-01-08"},
		{name: "2 hari lalu", phrase: "2 hari lalu", want: "2025-01-08"},
		{name: "5 hari yang lalu", phrase: "5 hari yang lalu", want: "2025-01-05"},
		{name: "minggu lalu", phrase: "minggu lalu", want: "2025-01-03"},
		{name: "iso date", phrase: "2024-12-25", want: "2024-12-25"},
		{name: "slash date", phrase: "25/12/2024", want: "2024-12-25"},
		{name: "indonesian month with year", phrase: "3 maret 2024", want: "2024-03-03"},
		{name: "indonesian month short", phrase: "5 jan", want: "2025-01-05"},
		{name: "indonesian month in future rolls back a year", phrase: "20 des", want: "2024-12-20"},
		{name: "mixed case", phrase: "Kemarin", want: "2025-01-09"},
		{name: "gibberish", phrase: "entah kapan", wantErr: true},
		{name: "day out of range", phrase: "40 jan", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ResolveDate(tt.phrase, now)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.Format("2006-01-02"))
			assert.Equal(t, time.UTC, got.Location())
			h, m, s := got.Clock()
			assert.Zero(t, h+m+s, "resolved dates must carry no time of day")
		})
	}
}

func TestDateOnly(t *testing.T) {
	in := time.Date(2025, 6, 15, 23, 59, 59, 999, time.FixedZone("WIB", 7*3600))
	got := DateOnly(in)
	assert.Equal(t, time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC), got)
}
