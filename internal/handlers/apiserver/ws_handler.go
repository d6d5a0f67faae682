package apiserver

import (
	"log"
	"net/http"

	"lingolink/internal/auth"
	"lingolink/internal/config"
	"lingolink/internal/notify"
)

// WSHandler 负责处理通知 WebSocket 连接请求。
type WSHandler struct {
	hub       *notify.Hub
	blacklist auth.TokenBlacklist
	cfg       config.Config
}

// NewWSHandler 创建一个新的 WSHandler 实例。
func NewWSHandler(hub *notify.Hub, blacklist auth.TokenBlacklist, cfg config.Config) *WSHandler {
	return &WSHandler{hub: hub, blacklist: blacklist, cfg: cfg}
}

// ServeWS 处理传入的通知 WebSocket 请求。
// 浏览器的 WebSocket API 无法自定义请求头，因此令牌通过查询参数传递。
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		writeJSONError(w, "缺少认证令牌", http.StatusUnauthorized)
		return
	}

	claims, err := auth.ValidateToken(r.Context(), token, h.cfg.Auth.JWTSecretKey, h.blacklist)
	if err != nil {
		log.Printf("WebSocket 连接尝试失败：令牌无效: %v", err)
		writeJSONError(w, "令牌无效", http.StatusUnauthorized)
		return
	}

	notify.ServeWs(h.hub, claims.UserID, w, r, h.cfg.WebSocket)
}
