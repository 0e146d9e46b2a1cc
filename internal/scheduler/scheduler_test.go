package scheduler

import "testing"

func TestEveryHours(t *testing.T) {
	cases := []struct {
		hours int
		want  string
	}{
		{6, "0 */6 * * *"},
		{23, "0 */23 * * *"},
		{1, "0 * * * *"},
		{0, "0 * * * *"},
		// A daily interval must not degrade to hourly.
		{24, "0 0 * * *"},
		{48, "0 0 * * *"},
	}
	for _, c := range cases {
		if got := everyHours(c.hours); got != c.want {
			t.Errorf("everyHours(%d) = %q, want %q", c.hours, got, c.want)
		}
	}
}
