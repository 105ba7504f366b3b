package score

// Tip is a general efficiency tip shown alongside predictions.
type Tip struct {
	ID          int    `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
}

// Appliance summarizes the typical monthly consumption of a household appliance.
type Appliance struct {
	Name             string `json:"name"`
	AvgConsumption   string `json:"avg_consumption"`
	PotentialSavings string `json:"potential_savings"`
}

// Tips returns the built-in efficiency tips.
func Tips() []Tip {
	return []Tip{
		{
			ID:          1,
			Title:       "Smart Scheduling",
			Description: "Run appliances during off-peak hours to reduce energy costs and environmental impact.",
			Icon:        "clock",
		},
		{
			ID:          2,
			Title:       "Optimal Temperature",
			Description: "Set your refrigerator to 37-40°F and freezer to 0-5°F for best efficiency.",
			Icon:        "thermometer",
		},
		{
			ID:          3,
			Title:       "Full Loads Only",
			Description: "Only run dishwashers and washing machines when they're full to maximize water efficiency.",
			Icon:        "droplets",
		},
		{
			ID:          4,
			Title:       "Regular Maintenance",
			Description: "Clean refrigerator coils and HVAC filters regularly for optimal performance.",
			Icon:        "settings",
		},
	}
}

// Appliances returns the built-in appliance consumption table.
func Appliances() []Appliance {
	return []Appliance{
		{Name: "Refrigerator", AvgConsumption: "150 kWh", PotentialSavings: "30 kWh"},
		{Name: "Washing Machine", AvgConsumption: "75 kWh", PotentialSavings: "25 kWh"},
		{Name: "Dishwasher", AvgConsumption: "100 kWh", PotentialSavings: "35 kWh"},
		{Name: "HVAC", AvgConsumption: "900 kWh", PotentialSavings: "150 kWh"},
	}
}
