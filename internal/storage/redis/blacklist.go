package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// Blacklist 基于 Redis 的 JWT 黑名单，注销的令牌在过期前拒绝使用。
type Blacklist struct {
	client *Client
}

// NewBlacklist 创建 JWT 黑名单
func NewBlacklist(client *Client) *Blacklist {
	return &Blacklist{client: client}
}

// AddToBlacklist 将 JWT 添加到黑名单
func (b *Blacklist) AddToBlacklist(ctx context.Context, jti string, ttl time.Duration) error {
	if ttl <= 0 {
		// 令牌已过期，无需记录
		return nil
	}
	key := fmt.Sprintf("blacklist:%s", jti)
	return b.client.rdb.Set(ctx, key, "1", ttl).Err()
}

// IsBlacklisted 检查 JWT 是否在黑名单中
func (b *Blacklist) IsBlacklisted(ctx context.Context, jti string) (bool, error) {
	key := fmt.Sprintf("blacklist:%s", jti)
	_, err := b.client.rdb.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}
