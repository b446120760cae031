package pricing

import "time"

// IsApplicable 判断折扣当前是否可用：启用状态加生效窗口。
// 使用次数上限不在此判断（自动折扣排序仍需考虑已达上限的折扣，
// 手动兑换则由兑换方单独校验并返回 ErrDiscountExhausted）。
func IsApplicable(d *Discount, now time.Time) bool {
	if d == nil || !d.IsActive {
		return false
	}
	if d.StartDate != nil && now.Before(*d.StartDate) {
		return false
	}
	if d.EndDate != nil && now.After(*d.EndDate) {
		return false
	}
	return true
}

// Exhausted 判断折扣使用次数是否已达上限
func Exhausted(d *Discount) bool {
	if d == nil || d.UsageLimit == nil {
		return false
	}
	return d.UsagesCount >= *d.UsageLimit
}
