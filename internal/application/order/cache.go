package order

import (
	"context"

	"go.uber.org/zap"
)

// Lease 未命中时取得的回填凭证
// 记录读库之前的缓存代数,期间发生过Invalidate则凭证作废
type Lease string

// Cache 订单读缓存端口
// 写操作提交后删除缓存,读操作未命中时凭Lease回填
type Cache interface {
	// Get 命中返回(result, _, true, nil),未命中返回(nil, lease, false, nil)
	Get(ctx context.Context, orderID string) (*OrderResult, Lease, bool, error)
	// Fill 回填;lease取得之后该订单被Invalidate过则放弃写入,返回false
	Fill(ctx context.Context, result *OrderResult, lease Lease) (bool, error)
	Invalidate(ctx context.Context, orderID string) error
}

// NopCache 不缓存
type NopCache struct{}

func (NopCache) Get(context.Context, string) (*OrderResult, Lease, bool, error) {
	return nil, "", false, nil
}
func (NopCache) Fill(context.Context, *OrderResult, Lease) (bool, error) { return false, nil }
func (NopCache) Invalidate(context.Context, string) error                { return nil }

func invalidate(ctx context.Context, c Cache, logger *zap.Logger, orderID string) {
	if err := c.Invalidate(ctx, orderID); err != nil {
		logger.Warn("删除订单缓存失败", zap.String("order_id", orderID), zap.Error(err))
	}
}
