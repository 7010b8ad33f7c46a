package consultant

type Expertise struct {
	Title string `json:"title"`
	Value string `json:"value"`
}

type Consultant struct {
	ID        string      `json:"id"`
	Image     string      `json:"image"`
	Name      string      `json:"name"`
	Email     string      `json:"email"`
	Title     string      `json:"title"`
	Expertise []Expertise `json:"expertise"`
	Initials  string      `json:"initials"`
	Location  string      `json:"location"`
}

var consultants = []Consultant{
	{
		ID:    "1",
		Image: "/images/james-richardson.jpg",
		Name:  "Mr.Jamees R",
		Email: "james@email.com",
		Title: "Consultant",
		Expertise: []Expertise{
			{Title: "Technology & Software Development", Value: "technology-and-software-development"},
			{Title: "SEO", Value: "seo"},
			{Title: "General Consultation", Value: "general-consultation"},
			{Title: "Partnership Opportunity", Value: "partnership-opportunity"},
			{Title: "Other", Value: "other"},
		},
		Initials: "JR",
		Location: "British Columbia, Canada",
	},
	{
		ID:    "2",
		Image: "/images/lola-dam.jpg",
		Name:  "Ms.Lola D",
		Email: "lola@email.com",
		Title: "Consultant",
		Expertise: []Expertise{
			{Title: "SEO", Value: "seo"},
			{Title: "General Consultation", Value: "general-consultation"},
			{Title: "Partnership Opportunity", Value: "partnership-opportunity"},
			{Title: "Other", Value: "other"},
		},
		Initials: "LD",
		Location: "New York, United States",
	},
	{
		ID:    "3",
		Image: "/images/joseph-gonzalez.jpg",
		Name:  "Mr.Joseph G",
		Email: "joseph@email.com",
		Title: "Consultant",
		Expertise: []Expertise{
			{Title: "Marketing & Brand Development", Value: "marketing-and-brand-development"},
			{Title: "General Consultation", Value: "general-consultation"},
			{Title: "Partnership Opportunity", Value: "partnership-opportunity"},
			{Title: "Other", Value: "other"},
		},
		Initials: "JG",
		Location: "British Columbia, Canada",
	},
}

func All() []Consultant {
	return consultants
}

func ByID(id string) (Consultant, bool) {
	for _, c := range consultants {
		if c.ID == id {
			return c, true
		}
	}
	return Consultant{}, false
}

// ByExpertise returns the first consultant carrying the expertise category.
func ByExpertise(category string) (Consultant, bool) {
	for _, c := range consultants {
		for _, e := range c.Expertise {
			if e.Value == category {
				return c, true
			}
		}
	}
	return Consultant{}, false
}

// Categories lists every expertise value a consultant can be matched on.
func Categories() []string {
	seen := make(map[string]struct{})
	var out []string
	for _, c := range consultants {
		for _, e := range c.Expertise {
			if _, ok := seen[e.Value]; ok {
				continue
			}
			seen[e.Value] = struct{}{}
			out = append(out, e.Value)
		}
	}
	return out
}
