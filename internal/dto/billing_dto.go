package dto

type CheckoutRequest struct {
	PriceID string `json:"priceId"`
}

type URLResponse struct {
	URL string `json:"url"`
}

type WebhookAck struct {
	Received bool `json:"received"`
}

type SubscriptionInfo struct {
	PlanType           string  `json:"plan_type"`
	Status             string  `json:"status"`
	StripeCustomerID   string  `json:"stripe_customer_id,omitempty"`
	CurrentPeriodStart *string `json:"current_period_start,omitempty"`
	CurrentPeriodEnd   *string `json:"current_period_end,omitempty"`
}

type UsageInfo struct {
	Used            int    `json:"used"`
	Limit           int    `json:"limit"`
	PerRequestLimit int    `json:"per_request_limit"`
	PeriodStart     string `json:"period_start"`
	PeriodEnd       string `json:"period_end"`
}

type SubscriptionResponse struct {
	Subscription SubscriptionInfo `json:"subscription"`
	Usage        UsageInfo        `json:"usage"`
}

type PlanPrice struct {
	ID       string `json:"id"`
	Interval string `json:"interval"`
}

type PlanResponse struct {
	PlanType        string      `json:"plan_type"`
	PerRequestLimit int         `json:"per_request_limit"`
	MonthlyLimit    int         `json:"monthly_limit"`
	Prices          []PlanPrice `json:"prices"`
}
