package importer

import "time"

// SetClock replaces the importer's clock.
func SetClock(i *Importer, now func() time.Time) {
	i.now = now
}
