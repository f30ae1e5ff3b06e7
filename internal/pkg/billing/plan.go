package billing

import (
	"strings"
	"time"

	"github.com/ManuelReschke/TemplateForge/app/models"
	"github.com/ManuelReschke/TemplateForge/internal/pkg/apperror"
)

// Plan is a purchasable premium period
type Plan struct {
	Type     string        `json:"type"`
	Name     string        `json:"name"`
	Amount   float64       `json:"amount"`
	Days     int           `json:"days"`
	Duration time.Duration `json:"-"`
}

var plans = []Plan{
	{Type: models.PlanMonthly, Name: "Monthly", Amount: 3.99, Days: 30},
	{Type: models.PlanBiannual, Name: "6 Months", Amount: 19.99, Days: 180},
	{Type: models.PlanYearly, Name: "Yearly", Amount: 35.99, Days: 365},
}

func init() {
	for i := range plans {
		plans[i].Duration = time.Duration(plans[i].Days) * 24 * time.Hour
	}
}

// Plans returns the plan table in display order
func Plans() []Plan {
	out := make([]Plan, len(plans))
	copy(out, plans)
	return out
}

// LookupPlan resolves a plan type, failing with ErrInvalidPlan for unknown types
func LookupPlan(planType string) (Plan, error) {
	normalized := normalizePlan(planType)
	for _, p := range plans {
		if p.Type == normalized {
			return p, nil
		}
	}
	return Plan{}, apperror.New(apperror.ErrInvalidPlan, apperror.ReasonInvalidPlan, "Invalid plan type")
}

func normalizePlan(plan string) string {
	return strings.ToLower(strings.TrimSpace(plan))
}
