package recommend

// Course is one entry of the academy's course catalog as the recommender
// sees it: just enough metadata to match against a job posting.
type Course struct {
	ID       string   `json:"id"`
	Title    string   `json:"title"`
	Keywords []string `json:"keywords"`
}

// DefaultCatalog lists the academy's published courses.
func DefaultCatalog() []Course {
	return []Course{
		{ID: "executive-va", Title: "Executive Virtual Assistant", Keywords: []string{"executive assistant", "calendar", "scheduling", "travel", "inbox management"}},
		{ID: "customer-support", Title: "Customer Service & Support", Keywords: []string{"customer service", "support", "helpdesk", "zendesk", "client relations"}},
		{ID: "digital-marketing", Title: "Digital Marketing Assistant", Keywords: []string{"marketing", "seo", "email campaigns", "content", "analytics"}},
		{ID: "social-media", Title: "Social Media Management", Keywords: []string{"social media", "community", "instagram", "engagement", "content calendar"}},
		{ID: "bookkeeping", Title: "Bookkeeping & Payroll Assistant", Keywords: []string{"bookkeeping", "payroll", "accounting", "invoicing", "quickbooks"}},
		{ID: "data-entry", Title: "Data Entry & Online Research", Keywords: []string{"data entry", "research", "spreadsheets", "excel", "crm"}},
		{ID: "project-management", Title: "Project Management Assistant", Keywords: []string{"project management", "coordination", "asana", "trello", "agile"}},
		{ID: "legal-va", Title: "Legal Virtual Assistant", Keywords: []string{"legal", "paralegal", "contracts", "compliance", "documentation"}},
	}
}
