package services

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Plan is one entry of the public investment catalogue. Amounts are cents.
type Plan struct {
	Type           string          `json:"type"`
	Name           string          `json:"name"`
	DailyReturnPct decimal.Decimal `json:"dailyReturnPct"`
	Duration       int             `json:"duration"`
	MinAmount      int64           `json:"minAmount"`
	MaxAmount      int64           `json:"maxAmount"`
}

var plans = []Plan{
	{Type: "starter", Name: "Starter Plan", DailyReturnPct: decimal.RequireFromString("2.5"), Duration: 30, MinAmount: 10000, MaxAmount: 100000},
	{Type: "professional", Name: "Professional Plan", DailyReturnPct: decimal.RequireFromString("4.0"), Duration: 60, MinAmount: 100000, MaxAmount: 500000},
	{Type: "premium", Name: "Premium Plan", DailyReturnPct: decimal.RequireFromString("6.0"), Duration: 90, MinAmount: 500000, MaxAmount: 2000000},
}

func Plans() []Plan {
	out := make([]Plan, len(plans))
	copy(out, plans)
	return out
}

func FindPlan(planType string) (Plan, bool) {
	planType = strings.ToLower(strings.TrimSpace(planType))
	for _, p := range plans {
		if p.Type == planType {
			return p, true
		}
	}
	return Plan{}, false
}

// InRange reports whether amount is inside the plan's deposit bounds.
func (p Plan) InRange(amount int64) bool {
	return amount >= p.MinAmount && amount <= p.MaxAmount
}

// DailyReturn is round(amount * pct / 100), in cents.
func (p Plan) DailyReturn(amount int64) int64 {
	return decimal.NewFromInt(amount).
		Mul(p.DailyReturnPct).
		Div(decimal.NewFromInt(100)).
		Round(0).
		IntPart()
}

type Quote struct {
	PlanType    string `json:"planType"`
	Amount      int64  `json:"amount"`
	DailyReturn int64  `json:"dailyReturn"`
	Duration    int    `json:"duration"`
	TotalReturn int64  `json:"totalReturn"`
	InRange     bool   `json:"inRange"`
}

// QuotePlan projects the declared returns of investing amount in planType.
func QuotePlan(planType string, amount int64) (Quote, bool) {
	p, ok := FindPlan(planType)
	if !ok {
		return Quote{}, false
	}
	daily := p.DailyReturn(amount)
	return Quote{
		PlanType:    p.Type,
		Amount:      amount,
		DailyReturn: daily,
		Duration:    p.Duration,
		TotalReturn: decimal.NewFromInt(daily).Mul(decimal.NewFromInt(int64(p.Duration))).IntPart(),
		InRange:     p.InRange(amount),
	}, true
}
