package schedule

import (
	"errors"
	"testing"
	"time"
)

func TestOverlaps(t *testing.T) {
	base := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	at := func(h, m int) time.Time {
		return base.Add(time.Duration(h)*time.Hour + time.Duration(m)*time.Minute)
	}

	cases := []struct {
		name   string
		aStart time.Time
		aEnd   time.Time
		bStart time.Time
		bEnd   time.Time
		want   bool
	}{
		{"identical intervals", at(0, 0), at(1, 0), at(0, 0), at(1, 0), true},
		{"partial overlap at end", at(0, 0), at(1, 0), at(0, 30), at(1, 30), true},
		{"partial overlap at start", at(0, 30), at(1, 30), at(0, 0), at(1, 0), true},
		{"b contained in a", at(0, 0), at(2, 0), at(0, 30), at(1, 0), true},
		{"a contained in b", at(0, 30), at(1, 0), at(0, 0), at(2, 0), true},
		{"touching: a ends when b starts", at(0, 0), at(1, 0), at(1, 0), at(2, 0), false},
		{"touching: b ends when a starts", at(1, 0), at(2, 0), at(0, 0), at(1, 0), false},
		{"disjoint", at(0, 0), at(1, 0), at(3, 0), at(4, 0), false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Overlaps(tc.aStart, tc.aEnd, tc.bStart, tc.bEnd)
			if got != tc.want {
				t.Errorf("Overlaps() = %v, want %v", got, tc.want)
			}

			// a propriedade é simétrica
			if Overlaps(tc.bStart, tc.bEnd, tc.aStart, tc.aEnd) != got {
				t.Errorf("Overlaps() is not symmetric for %s", tc.name)
			}
		})
	}
}

func TestConflictError(t *testing.T) {
	err := error(ConflictError{ConflictingIDs: []uint{3, 7}})

	ce, ok := AsConflict(err)
	if !ok {
		t.Fatal("AsConflict should recognize ConflictError")
	}
	if len(ce.ConflictingIDs) != 2 || ce.ConflictingIDs[0] != 3 || ce.ConflictingIDs[1] != 7 {
		t.Errorf("unexpected ids: %v", ce.ConflictingIDs)
	}

	if _, ok := AsConflict(errors.New("other")); ok {
		t.Error("AsConflict should not match unrelated errors")
	}
}
