package auth

import (
	"context"
	"time"
)

// TokenBlacklist 记录已登出用户的 Token JTI。
// 登出接口把当前 Token 的 JTI 写入黑名单，ValidateToken 在每次请求时查询，
// 从而让尚未过期的 Token 立即失效。
type TokenBlacklist interface {
	// Add 将 jti 加入黑名单。条目只需保留到 Token 的原始过期时间点，
	// 之后 JWT 校验本身就会拒绝它。
	Add(ctx context.Context, jti string, originalTokenExpTime time.Time) error
	// IsBlacklisted 检查 jti 是否已被吊销。
	IsBlacklisted(ctx context.Context, jti string) (bool, error)
}
