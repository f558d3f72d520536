package history

// Report is one entry of the chat history sidebar.
type Report struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	// Age is a human relative date such as "2 days ago".
	Age  string `json:"date"`
	Kind string `json:"kind"`
}

// Seed provides the sample reports shown to first-time users.
func Seed() []Report {
	return []Report{
		{ID: "blood-panel", Title: "Blood Panel Results", Age: "2 days ago", Kind: "PDF"},
		{ID: "cholesterol", Title: "Cholesterol Report", Age: "1 week ago", Kind: "PDF"},
		{ID: "vitamin-d", Title: "Vitamin D Test", Age: "2 weeks ago", Kind: "image"},
	}
}
