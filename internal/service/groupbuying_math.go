package service

import (
	"github.com/dfn-network/internal/models"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// CalculateTargetFunding 成团目标金额 = 单价 × 最低数量 + 运费 + 关税
func CalculateTargetFunding(unitPrice models.Money, minimumQuantity int, shipping, duty models.Money) models.Money {
	return unitPrice.MulInt(minimumQuantity).Add(shipping).Add(duty)
}

// CalculateContribution 新加入者应付金额
// 运费与关税按加入后的人数均摊，已有参与者的金额不回溯调整
func CalculateContribution(campaign *models.GroupBuyingCampaign, quantity int) models.Money {
	if campaign == nil || quantity <= 0 {
		return models.ZeroMoney()
	}
	headcount := decimal.NewFromInt(int64(campaign.ParticipantCount) + 1)
	share := campaign.ShippingCost.Decimal.Add(campaign.CustomsDuty.Decimal).Div(headcount)
	base := campaign.UnitPrice.Decimal.Mul(decimal.NewFromInt(int64(quantity)))
	return models.NewMoneyFromDecimal(base.Add(share))
}

// QuantityProgress 数量进度百分比（0-100，保留 2 位小数）
// 设置了上限时以上限为分母，否则以最低数量为分母
func QuantityProgress(current int, maximum *int, minimum int) float64 {
	denominator := minimum
	if maximum != nil {
		denominator = *maximum
	}
	if denominator <= 0 {
		return 0
	}
	return clampPercent(decimal.NewFromInt(int64(current)).Div(decimal.NewFromInt(int64(denominator))))
}

// FundingProgress 金额进度百分比（目标为 0 时为 0）
func FundingProgress(total, target models.Money) float64 {
	if !target.IsPositive() {
		return 0
	}
	return clampPercent(total.Decimal.Div(target.Decimal))
}

func clampPercent(ratio decimal.Decimal) float64 {
	percent := ratio.Mul(hundred)
	if percent.GreaterThan(hundred) {
		percent = hundred
	}
	if percent.IsNegative() {
		percent = decimal.Zero
	}
	return percent.Round(2).InexactFloat64()
}
