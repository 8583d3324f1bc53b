package plans

import "strings"

// Tier is a subscription level. The set is closed; unknown values resolve to Free.
type Tier string

const (
	Free     Tier = "free"
	Beginner Tier = "beginner"
	Pro      Tier = "pro"
	Ultimate Tier = "ultimate"
)

// Tiers lists every tier in ascending order.
var Tiers = []Tier{Free, Beginner, Pro, Ultimate}

// Entitlement is the pair of word limits a tier grants.
type Entitlement struct {
	Tier                Tier `json:"plan_type"`
	PerRequestWordLimit int  `json:"per_request_limit"`
	MonthlyWordLimit    int  `json:"monthly_limit"`
}

var entitlements = map[Tier]Entitlement{
	Free:     {Tier: Free, PerRequestWordLimit: 250, MonthlyWordLimit: 250},
	Beginner: {Tier: Beginner, PerRequestWordLimit: 500, MonthlyWordLimit: 5000},
	Pro:      {Tier: Pro, PerRequestWordLimit: 2000, MonthlyWordLimit: 25000},
	Ultimate: {Tier: Ultimate, PerRequestWordLimit: 5000, MonthlyWordLimit: 100000},
}

// FreeMonthlyWordLimit is the monthly ceiling stale usage rows are repaired to.
var FreeMonthlyWordLimit = entitlements[Free].MonthlyWordLimit

// For returns the entitlement for t, falling back to Free.
func For(t Tier) Entitlement {
	if e, ok := entitlements[t]; ok {
		return e
	}
	return entitlements[Free]
}

// ParseTier normalizes s into a Tier; anything unrecognized is Free.
func ParseTier(s string) Tier {
	t := Tier(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := entitlements[t]; ok {
		return t
	}
	return Free
}

func (t Tier) Valid() bool {
	_, ok := entitlements[t]
	return ok
}

// Status mirrors the payment provider's subscription lifecycle.
type Status string

const (
	StatusActive            Status = "active"
	StatusTrialing          Status = "trialing"
	StatusPastDue           Status = "past_due"
	StatusCanceled          Status = "canceled"
	StatusIncomplete        Status = "incomplete"
	StatusIncompleteExpired Status = "incomplete_expired"
	StatusUnpaid            Status = "unpaid"
	StatusPaused            Status = "paused"
)

// GrantsAccess reports whether a subscription in this status keeps its paid tier.
// past_due keeps access while the provider retries the charge.
func (s Status) GrantsAccess() bool {
	switch s {
	case StatusActive, StatusTrialing, StatusPastDue:
		return true
	}
	return false
}

// EffectiveTier is the tier a subscription row entitles its owner to right now.
func EffectiveTier(t Tier, s Status) Tier {
	if !s.GrantsAccess() {
		return Free
	}
	return ParseTier(string(t))
}
