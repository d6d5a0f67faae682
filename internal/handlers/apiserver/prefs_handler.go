package apiserver

import (
	"encoding/json"
	"net/http"
	"strings"

	"lingolink/internal/middleware"
	"lingolink/internal/prefs"
)

// PrefsHandler 封装了用户偏好相关的 HTTP 处理器方法。
type PrefsHandler struct {
	store prefs.Store
}

// NewPrefsHandler 创建一个新的 PrefsHandler 实例。
func NewPrefsHandler(store prefs.Store) *PrefsHandler {
	return &PrefsHandler{store: store}
}

// GetPreferencesHandler handles GET /api/v1/users/me/preferences
func (h *PrefsHandler) GetPreferencesHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		writeJSONError(w, "无法从上下文中获取用户ID", http.StatusUnauthorized)
		return
	}

	p, err := h.store.Get(r.Context(), userID)
	if err != nil {
		writeJSONError(w, "获取偏好设置失败", http.StatusInternalServerError)
		return
	}
	writeJSONResponse(w, http.StatusOK, p)
}

// SetPreferencesHandler handles PUT /api/v1/users/me/preferences
func (h *PrefsHandler) SetPreferencesHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		writeJSONError(w, "无法从上下文中获取用户ID", http.StatusUnauthorized)
		return
	}

	var p prefs.Preferences
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		writeJSONError(w, "请求体无效", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	p.Theme = strings.TrimSpace(p.Theme)
	if p.Theme == "" {
		writeJSONError(w, "主题不能为空", http.StatusBadRequest)
		return
	}

	if err := h.store.Set(r.Context(), userID, p); err != nil {
		writeJSONError(w, "保存偏好设置失败", http.StatusInternalServerError)
		return
	}
	writeJSONResponse(w, http.StatusOK, p)
}
