package dashboard

import (
	"reportdesk/internal/model"
	"reportdesk/internal/reports"
)

type ProfileStats struct {
	User           model.User `json:"user"`
	ReportsCreated int        `json:"reportsCreated"`
	Published      int        `json:"published"`
	Activities     int        `json:"activities"`
	AIGenerated    int        `json:"aiGenerated"`
}

// Profile counts the current user's reports and activity.
func Profile(st *reports.Store) ProfileStats {
	u := st.CurrentUser()
	ps := ProfileStats{User: u}
	for _, r := range st.Reports() {
		if r.CreatedBy != u.ID {
			continue
		}
		ps.ReportsCreated++
		if r.Status == model.StatusPublished {
			ps.Published++
		}
		if r.AIGenerated {
			ps.AIGenerated++
		}
	}
	for _, a := range st.Activities() {
		if a.UserID == u.ID {
			ps.Activities++
		}
	}
	return ps
}
