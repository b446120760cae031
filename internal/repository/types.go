package repository

// DiscountListFilter 查询折扣列表的过滤条件
type DiscountListFilter struct {
	Page      int
	PageSize  int
	Code      string
	AppliesTo string
	Automatic *bool
	IsActive  *bool
	ProductID uint
}

// GiftCardListFilter 查询礼品卡列表的过滤条件
type GiftCardListFilter struct {
	Page       int
	PageSize   int
	CustomerID uint
	Code       string
	IsActive   *bool
}

// ProductListFilter 查询商品列表的过滤条件
type ProductListFilter struct {
	Page         int
	PageSize     int
	CategoryID   uint
	Search       string
	OnlyActive   bool
	WithCategory bool
}

// OrderListFilter 查询订单列表的过滤条件
type OrderListFilter struct {
	Page       int
	PageSize   int
	CustomerID uint
	Status     string
	OrderNo    string
}
