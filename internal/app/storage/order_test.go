package storage

import (
	"testing"
	"time"
)

func TestLess(t *testing.T) {
	t0 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	t1 := t0.Add(time.Hour)

	cases := []struct {
		name               string
		orderA, orderB     int
		createdA, createdB time.Time
		idA, idB           string
		want               bool
	}{
		{"lower order wins", 1, 2, t1, t0, "z", "a", true},
		{"higher order loses", 3, 2, t0, t1, "a", "z", false},
		{"order tie falls back to created", 2, 2, t0, t1, "z", "a", true},
		{"full tie falls back to id", 2, 2, t0, t0, "a", "b", true},
		{"identical rows are not less", 2, 2, t0, t0, "a", "a", false},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got := Less(c.orderA, c.orderB, c.createdA, c.createdB, c.idA, c.idB)
			if got != c.want {
				t.Fatalf("Less() = %v, want %v", got, c.want)
			}
		})
	}
}
