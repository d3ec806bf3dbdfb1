package domain

import (
	"time"

	"github.com/google/uuid"
)

// stamp normalises a clock reading to the precision stored and served.
func stamp(now func() time.Time) time.Time {
	return now().UTC().Truncate(time.Millisecond)
}

func defaultIDs() func() string { return uuid.NewString }
