package domain

// PlanID identifies a subscription plan.
type PlanID string

const (
	PlanFree   PlanID = "FREE"
	PlanWeekly PlanID = "WEEKLY"
	PlanPro    PlanID = "PRO"
	PlanAnnual PlanID = "ANNUAL"
)

// Store product identifiers, configured in App Store Connect.
const (
	ProductWeekly     = "com.mipo.weekly"
	ProductProMonthly = "com.mipo.pro.monthly"
	ProductAnnual     = "com.mipo.annual"
)

// Plan describes one purchasable tier.
type Plan struct {
	ID        PlanID
	Name      string
	Price     string
	Audience  string
	Features  []string
	ProductID string // empty for FREE
	Highlight bool
}

// Plans is the catalog shown on the pricing screen, cheapest first.
var Plans = []Plan{
	{
		ID:       PlanFree,
		Name:     "FREE (Basic)",
		Price:    "0đ",
		Audience: "New users trying the app",
		Features: []string{
			"5GB photo storage",
			"Access to 20% of basic templates",
			"Background changes: up to 3 per day",
			"Small app watermark",
		},
	},
	{
		ID:        PlanWeekly,
		Name:      "WEEKLY (Events)",
		Price:     "19.000đ / week",
		Audience:  "Weddings, parties, weekend trips",
		ProductID: ProductWeekly,
		Features: []string{
			"All templates unlocked for 7 days",
			"Unlimited custom backgrounds",
			"High quality export without watermark",
		},
	},
	{
		ID:        PlanPro,
		Name:      "PRO (Monthly)",
		Price:     "49.000đ / month",
		Audience:  "Frequent shooters",
		ProductID: ProductProMonthly,
		Highlight: true,
		Features: []string{
			"20GB photo storage",
			"All VIP and trending templates",
			"Priority AI rendering",
			"Keep original photos for later edits",
		},
	},
	{
		ID:        PlanAnnual,
		Name:      "ANNUAL (Save)",
		Price:     "399.000đ / year",
		Audience:  "Fans, freelance photographers, creators",
		ProductID: ProductAnnual,
		Features: []string{
			"Everything in PRO",
			"About 35% cheaper than monthly",
			"Quarterly limited edition templates",
		},
	},
}

// FindPlan returns the plan with the given id.
func FindPlan(id PlanID) (Plan, bool) {
	for _, p := range Plans {
		if p.ID == id {
			return p, true
		}
	}
	return Plan{}, false
}
