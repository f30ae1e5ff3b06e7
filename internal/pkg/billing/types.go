package billing

import "github.com/ManuelReschke/TemplateForge/app/models"

// Status is the subscription state reported to a user.
type Status struct {
	IsSubscribed bool                 `json:"isSubscribed"`
	Subscription *models.Subscription `json:"subscription"`
}
