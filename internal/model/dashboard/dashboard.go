// Package dashboard holds the admin dashboard data set.
package dashboard

// DailyActivity counts active users per weekday.
type DailyActivity struct {
	Day   string `json:"day"`
	Users int    `json:"users"`
}

// MonthlyReports counts analysed reports per month.
type MonthlyReports struct {
	Month   string `json:"name"`
	Reports int    `json:"reports"`
}

// Category is one slice of the report outcome breakdown.
type Category struct {
	Name  string `json:"name"`
	Value int    `json:"value"`
	Color string `json:"color"`
}

// Profile is the featured patient card.
type Profile struct {
	Name       string `json:"name"`
	Status     string `json:"status"`
	Initials   string `json:"initials"`
	Completion int    `json:"completion"`
}

// Live carries counters observed by the running service.
type Live struct {
	ActiveSessions  int `json:"activeSessions"`
	CreatedSessions int `json:"createdSessions"`
	UserTurns       int `json:"userTurns"`
	Replies         int `json:"replies"`
	PDFUploads      int `json:"pdfUploads"`
	ImageUploads    int `json:"imageUploads"`
	AwaitingReplies int `json:"awaitingReplies"`
}

// Dashboard is the full payload rendered by the admin page.
type Dashboard struct {
	Profile    Profile          `json:"profile"`
	Activity   []DailyActivity  `json:"activity"`
	Reports    []MonthlyReports `json:"reports"`
	Categories []Category       `json:"categories"`
	Live       Live             `json:"live"`
}

// Seed returns the sample dashboard without live counters.
func Seed() Dashboard {
	return Dashboard{
		Profile: Profile{Name: "John Doe", Status: "Active Patient", Initials: "AB", Completion: 70},
		Activity: []DailyActivity{
			{Day: "Mon", Users: 20},
			{Day: "Tue", Users: 35},
			{Day: "Wed", Users: 25},
			{Day: "Thu", Users: 45},
			{Day: "Fri", Users: 40},
			{Day: "Sat", Users: 50},
			{Day: "Sun", Users: 30},
		},
		Reports: []MonthlyReports{
			{Month: "Jan", Reports: 30},
			{Month: "Feb", Reports: 50},
			{Month: "Mar", Reports: 45},
			{Month: "Apr", Reports: 60},
			{Month: "May", Reports: 70},
		},
		Categories: []Category{
			{Name: "Normal", Value: 60, Color: "#34d399"},
			{Name: "Attention", Value: 25, Color: "#fbbf24"},
			{Name: "Critical", Value: 15, Color: "#ef4444"},
		},
	}
}

// WithLive returns d with its live counters replaced.
func (d Dashboard) WithLive(live Live) Dashboard {
	d.Live = live
	return d
}
