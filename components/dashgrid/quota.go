package dashgrid

import "context"

// Subscription is the read-only billing fact consulted for quotas.
type Subscription struct {
	Plan string `json:"plan"`
}

// SubscriptionClient looks up the owner's billing subscription. Billing is an
// external collaborator; only the plan tier is consumed here.
type SubscriptionClient interface {
	Subscription(ctx context.Context, ownerID string) (Subscription, error)
}

// StaticQuota is a fixed widget ceiling, useful for tests and demos.
type StaticQuota int

// WidgetQuota implements QuotaSource.
func (q StaticQuota) WidgetQuota(context.Context, string) (int, error) {
	return int(q), nil
}

// BillingQuota derives the widget ceiling from the owner's subscription tier.
type BillingQuota struct {
	Client SubscriptionClient
}

// WidgetQuota implements QuotaSource. Lookup failures degrade to the free
// ceiling rather than blocking the dashboard.
func (q BillingQuota) WidgetQuota(ctx context.Context, ownerID string) (int, error) {
	if q.Client == nil {
		return QuotaForPlan("free"), nil
	}
	sub, err := q.Client.Subscription(ctx, ownerID)
	if err != nil {
		return QuotaForPlan("free"), nil
	}
	return QuotaForPlan(sub.Plan), nil
}
