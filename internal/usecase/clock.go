package usecase

import "time"

const dateLayout = "2006-01-02"

// kolkata is the civil zone every calendar date is resolved in, regardless of
// the host's local zone. India has no DST so the fixed offset is exact.
var kolkata = loadKolkata()

func loadKolkata() *time.Location {
	loc, err := time.LoadLocation("Asia/Kolkata")
	if err != nil {
		return time.FixedZone("IST", 5*3600+30*60)
	}
	return loc
}

// todayIST formats now as a calendar date in Asia/Kolkata.
func todayIST(now time.Time) string {
	return now.In(kolkata).Format(dateLayout)
}
