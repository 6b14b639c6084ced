package greenstar

import "strings"

// Category is one of the eight Green Star impact categories.
type Category struct {
	Name    string
	Color   string // primary, "RRGGBB"
	Light   string // background tint
	Mid     string // border tint
	Icon    string // HTML entity
	Credits []string
}

// OtherCategory collects sheets that match no category.
var OtherCategory = Category{Name: "Other", Color: "333333", Light: "F5F5F5", Mid: "BDBDBD", Icon: "&#9679;"}

// Categories lists the categories in display order.
var Categories = []Category{
	{
		Name: "Responsible", Color: "1F4E28", Light: "E8F5E9", Mid: "A5D6A7", Icon: "&#9878;",
		Credits: []string{
			"Industry Development", "Responsible Construction",
			"Verification and Handover", "Responsible Resource Mgmt",
			"Responsible Procurement", "Responsible Structure",
			"Responsible Envelope", "Responsible Systems",
			"Responsible Finishes", "Impacts Disclosure",
		},
	},
	{
		Name: "Healthy", Color: "1565C0", Light: "E3F2FD", Mid: "90CAF9", Icon: "&#9829;",
		Credits: []string{
			"Clean Air", "Light Quality", "Acoustic Comfort",
			"Exposure to Toxins", "Amenity and Comfort", "Connection to Nature",
		},
	},
	{
		Name: "Resilient", Color: "E65100", Light: "FFF3E0", Mid: "FFCC80", Icon: "&#9730;",
		Credits: []string{
			"Climate Resilience", "Operations Resilience",
			"Community Resilience", "Heat Resilience", "Grid Resilience",
		},
	},
	{
		Name: "Positive", Color: "2E7D32", Light: "F1F8E9", Mid: "C5E1A5", Icon: "&#9889;",
		Credits: []string{
			"Energy Source", "Energy Use", "Upfront Carbon Reduction",
			"Upfront Carbon Compensation", "Refrigerant Systems Impacts",
			"Low-Emissions Transport", "Design for Circularity", "Water Use",
		},
	},
	{
		Name: "Places", Color: "6A1B9A", Light: "F3E5F5", Mid: "CE93D8", Icon: "&#9962;",
		Credits: []string{
			"Movement and Place", "Enjoyable Places",
			"Contribution to Place", "Culture Heritage Identity",
		},
	},
	{
		Name: "People", Color: "C62828", Light: "FFEBEE", Mid: "EF9A9A", Icon: "&#9823;",
		Credits: []string{
			"Inclusive Construction", "First Nations Inclusion",
			"Procurement Workforce Inclusion", "Design for Equity",
		},
	},
	{
		Name: "Nature", Color: "00695C", Light: "E0F2F1", Mid: "80CBC4", Icon: "&#9752;",
		Credits: []string{
			"Impacts to Nature", "Biodiversity Enhancement",
			"Nature Connectivity", "Nature Stewardship", "Waterway Protection",
		},
	},
	{
		Name: "Leadership", Color: "F57F17", Light: "FFFDE7", Mid: "FFF176", Icon: "&#9733;",
		Credits: []string{"Market Transformation", "Leadership Challenges"},
	},
}

// Squash lower-cases s and removes spaces. Sheet, credit and heading names
// are compared in this form throughout.
func Squash(s string) string {
	return strings.ToLower(strings.ReplaceAll(s, " ", ""))
}

// FindCategory returns the category whose credit list names the sheet.
func FindCategory(sheet string) Category {
	sn := Squash(sheet)
	for _, c := range Categories {
		for _, credit := range c.Credits {
			if strings.Contains(sn, Squash(credit)) {
				return c
			}
		}
	}
	return OtherCategory
}

// CategoryByName looks a category up by name, falling back to Other.
func CategoryByName(name string) Category {
	for _, c := range Categories {
		if c.Name == name {
			return c
		}
	}
	return OtherCategory
}

// CategoryColor returns the primary colour of the named category.
func CategoryColor(name string) string {
	return CategoryByName(name).Color
}
