package espn

// scheduleResponse is the subset of the ESPN team schedule payload this bot
// consumes.
type scheduleResponse struct {
	Events []event `json:"events"`
}

type event struct {
	ID           string        `json:"id"`
	Name         string        `json:"name"`
	Date         string        `json:"date"`
	Competitions []competition `json:"competitions"`
}

type competition struct {
	ID          string       `json:"id"`
	Date        string       `json:"date"`
	Competitors []competitor `json:"competitors"`
}

type competitor struct {
	HomeAway string `json:"homeAway"`
	Team     team   `json:"team"`
}

type team struct {
	DisplayName  string `json:"displayName"`
	Abbreviation string `json:"abbreviation"`
}
