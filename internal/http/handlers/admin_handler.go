package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/atharvsharma432199/phone-api/internal/bootstrap"
	"github.com/atharvsharma432199/phone-api/internal/domain"
	"github.com/atharvsharma432199/phone-api/internal/http/middleware"
	"github.com/atharvsharma432199/phone-api/internal/services"
	"github.com/atharvsharma432199/phone-api/internal/utils"
)

const (
	defaultUsageLimit = 50
	maxUsageLimit     = 500

	// initWriteSlack covers response encoding after the ingestion deadline.
	initWriteSlack = 30 * time.Second
)

// CreateKeyRequest is the payload for POST /admin/keys. Omitted numbers take
// the server defaults.
type CreateKeyRequest struct {
	// Key string; generated when empty.
	Key   string `json:"key" example:"demo-key-123"`
	Owner string `json:"owner" example:"acme"`
	// Quota; -1 for unlimited.
	MaxUsage *int64 `json:"max_usage" example:"1000"`
	// Validity in days from now; 0 for no expiry.
	DaysValid *int `json:"days_valid" example:"30"`
}

// KeyView is an API key as shown to administrators.
type KeyView struct {
	domain.APIKey
	Unlimited    bool    `json:"unlimited"`
	UsagePercent float64 `json:"usage_percent" example:"4.2"`
}

// ListKeysResponse wraps the key list, newest first.
type ListKeysResponse struct {
	Keys  []KeyView `json:"keys"`
	Count int       `json:"count"`
}

// KeyUsageResponse carries a key's most recent ledger rows.
type KeyUsageResponse struct {
	Key  string            `json:"key"`
	Logs []domain.UsageLog `json:"logs"`
}

// StatsResponse summarizes keys and usage for administrators.
type StatsResponse struct {
	TotalKeys  int64               `json:"total_keys"`
	ActiveKeys int64               `json:"active_keys"`
	TotalUsage int64               `json:"total_usage"`
	Usage      services.UsageStats `json:"usage"`
}

// InitResponse reports a completed re-initialization.
type InitResponse struct {
	Status  string `json:"status" example:"success"`
	Message string `json:"message" example:"Database initialized successfully"`
	Took    string `json:"took" example:"12.345s"`
}

func newKeyView(k domain.APIKey) KeyView {
	return KeyView{APIKey: k, Unlimited: k.Unlimited(), UsagePercent: k.UsagePercent()}
}

// InitDB godoc
// @ID          initDB
// @Summary     Rebuild the phone database
// @Description Runs the ingestion job with admin credentials from the query string. On success the lookup cache is purged and the store reopened.
// @Tags        Admin
// @Produce     json
// @Param       user  query  string  true  "Admin username"
// @Param       pass  query  string  true  "Admin password"
// @Success     200  {object}  handlers.InitResponse
// @Failure     401  {object}  handlers.ErrorResponse  "Admin authentication failed"
// @Failure     409  {object}  handlers.ErrorResponse  "Re-initialization already running"
// @Failure     500  {object}  handlers.ErrorResponse  "Ingestion failed or timed out"
// @Router      /api/admin/initdb [get]
func (h *Handlers) InitDB(c *gin.Context) {
	ctx := c.Request.Context()

	valid, err := h.admins.Validate(ctx, c.Query("user"), c.Query("pass"))
	if err != nil {
		_ = c.Error(err)
		fail(c, http.StatusInternalServerError, ErrCodeInternal, "admin check failed")
		return
	}
	if !valid {
		fail(c, http.StatusUnauthorized, ErrCodeUnauthorized, "Admin authentication failed")
		return
	}

	if h.initTimeout > 0 {
		rc := http.NewResponseController(c.Writer)
		if err := rc.SetWriteDeadline(time.Now().Add(h.initTimeout + initWriteSlack)); err != nil {
			middleware.LoggerFrom(c).Debug().Err(err).Msg("cannot extend write deadline")
		}
	}

	start := time.Now()
	// The job keeps running if the client goes away; the timeout still bounds it.
	err = h.init.Reinitialize(context.WithoutCancel(ctx))
	took := time.Since(start)

	switch {
	case err == nil:
		middleware.LoggerFrom(c).Info().Dur("took", took).Msg("record store re-initialized")
		ok(c, http.StatusOK, InitResponse{
			Status:  "success",
			Message: "Database initialized successfully",
			Took:    formatSeconds(took),
		})
	case errors.Is(err, bootstrap.ErrInitInProgress):
		fail(c, http.StatusConflict, ErrCodeInitInProgress, "Database initialization already in progress")
	case errors.Is(err, bootstrap.ErrInitTimeout):
		fail(c, http.StatusInternalServerError, ErrCodeInitTimeout, "Database initialization timed out")
	default:
		_ = c.Error(err)
		fail(c, http.StatusInternalServerError, ErrCodeInitFailed, "Database initialization failed")
	}
}

// CreateKey godoc
// @ID          createKey
// @Summary     Create an API key
// @Tags        Admin
// @Accept      json
// @Produce     json
// @Security    BasicAuth
// @Param       body  body  handlers.CreateKeyRequest  true  "Key parameters"
// @Success     201  {object}  handlers.KeyView
// @Failure     400  {object}  handlers.ErrorResponse  "Invalid input"
// @Failure     401  {object}  handlers.ErrorResponse  "Unauthorized"
// @Failure     409  {object}  handlers.ErrorResponse  "Key already exists"
// @Router      /api/admin/keys [post]
func (h *Handlers) CreateKey(c *gin.Context) {
	var req CreateKeyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}

	k, err := h.keys.Create(c.Request.Context(), services.CreateKeyInput{
		Key:       strings.TrimSpace(req.Key),
		Owner:     req.Owner,
		MaxUsage:  req.MaxUsage,
		DaysValid: req.DaysValid,
	})
	switch {
	case err == nil:
		middleware.LoggerFrom(c).Info().
			Str("owner", k.Owner).
			Int64("max_usage", k.MaxUsage).
			Str("by", middleware.AdminFrom(c)).
			Msg("api key created")
		ok(c, http.StatusCreated, newKeyView(*k))
	case errors.Is(err, services.ErrInvalidKeyInput):
		fail(c, http.StatusBadRequest, ErrCodeInvalidInput, err.Error())
	case errors.Is(err, services.ErrDuplicateKey):
		fail(c, http.StatusConflict, ErrCodeDuplicateKey, "API key already exists")
	default:
		_ = c.Error(err)
		fail(c, http.StatusInternalServerError, ErrCodeInternal, "create failed")
	}
}

// ListKeys godoc
// @ID          listKeys
// @Summary     List API keys (newest first)
// @Tags        Admin
// @Produce     json
// @Security    BasicAuth
// @Success     200  {object}  handlers.ListKeysResponse
// @Failure     401  {object}  handlers.ErrorResponse
// @Router      /api/admin/keys [get]
func (h *Handlers) ListKeys(c *gin.Context) {
	keys, err := h.keys.List(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		fail(c, http.StatusInternalServerError, ErrCodeInternal, "list failed")
		return
	}
	views := make([]KeyView, 0, len(keys))
	for _, k := range keys {
		views = append(views, newKeyView(k))
	}
	ok(c, http.StatusOK, ListKeysResponse{Keys: views, Count: len(views)})
}

// GetKey godoc
// @ID          getKey
// @Summary     Get one API key
// @Tags        Admin
// @Produce     json
// @Security    BasicAuth
// @Param       key  path  string  true  "API key"
// @Success     200  {object}  handlers.KeyView
// @Failure     404  {object}  handlers.ErrorResponse
// @Router      /api/admin/keys/{key} [get]
func (h *Handlers) GetKey(c *gin.Context) {
	k, err := h.keys.Get(c.Request.Context(), c.Param("key"))
	switch {
	case err == nil:
		ok(c, http.StatusOK, newKeyView(*k))
	case errors.Is(err, services.ErrKeyNotFound):
		fail(c, http.StatusNotFound, ErrCodeNotFound, "API key not found")
	default:
		_ = c.Error(err)
		fail(c, http.StatusInternalServerError, ErrCodeInternal, "get failed")
	}
}

// DeleteKey godoc
// @ID          deleteKey
// @Summary     Delete an API key
// @Description Removes the key; its usage history is kept.
// @Tags        Admin
// @Security    BasicAuth
// @Param       key  path  string  true  "API key"
// @Success     204  {string}  string  "No Content"
// @Failure     404  {object}  handlers.ErrorResponse
// @Router      /api/admin/keys/{key} [delete]
func (h *Handlers) DeleteKey(c *gin.Context) {
	existed, err := h.keys.Delete(c.Request.Context(), c.Param("key"))
	if err != nil {
		_ = c.Error(err)
		fail(c, http.StatusInternalServerError, ErrCodeInternal, "delete failed")
		return
	}
	if !existed {
		fail(c, http.StatusNotFound, ErrCodeNotFound, "API key not found")
		return
	}
	middleware.LoggerFrom(c).Info().Str("by", middleware.AdminFrom(c)).Msg("api key deleted")
	noContent(c)
}

// ActivateKey godoc
// @ID          activateKey
// @Summary     Activate an API key
// @Tags        Admin
// @Security    BasicAuth
// @Param       key  path  string  true  "API key"
// @Success     204  {string}  string  "No Content"
// @Failure     404  {object}  handlers.ErrorResponse
// @Router      /api/admin/keys/{key}/activate [post]
func (h *Handlers) ActivateKey(c *gin.Context) { h.setActive(c, true) }

// DeactivateKey godoc
// @ID          deactivateKey
// @Summary     Deactivate an API key
// @Tags        Admin
// @Security    BasicAuth
// @Param       key  path  string  true  "API key"
// @Success     204  {string}  string  "No Content"
// @Failure     404  {object}  handlers.ErrorResponse
// @Router      /api/admin/keys/{key}/deactivate [post]
func (h *Handlers) DeactivateKey(c *gin.Context) { h.setActive(c, false) }

func (h *Handlers) setActive(c *gin.Context, active bool) {
	err := h.keys.SetActive(c.Request.Context(), c.Param("key"), active)
	switch {
	case err == nil:
		noContent(c)
	case errors.Is(err, services.ErrKeyNotFound):
		fail(c, http.StatusNotFound, ErrCodeNotFound, "API key not found")
	default:
		_ = c.Error(err)
		fail(c, http.StatusInternalServerError, ErrCodeInternal, "update failed")
	}
}

// KeyUsage godoc
// @ID          keyUsage
// @Summary     Recent usage of an API key
// @Tags        Admin
// @Produce     json
// @Security    BasicAuth
// @Param       key    path   string  true   "API key"
// @Param       limit  query  int     false  "Rows to return"  minimum(1) maximum(500) default(50)
// @Success     200  {object}  handlers.KeyUsageResponse
// @Router      /api/admin/keys/{key}/usage [get]
func (h *Handlers) KeyUsage(c *gin.Context) {
	key := c.Param("key")
	limit := utils.AtoiClamp(c.Query("limit"), defaultUsageLimit, 1, maxUsageLimit)

	logs, err := h.keys.RecentUsage(c.Request.Context(), key, limit)
	if err != nil {
		_ = c.Error(err)
		fail(c, http.StatusInternalServerError, ErrCodeInternal, "usage query failed")
		return
	}
	if logs == nil {
		logs = []domain.UsageLog{}
	}
	ok(c, http.StatusOK, KeyUsageResponse{Key: key, Logs: logs})
}

// Stats godoc
// @ID          adminStats
// @Summary     Key and usage statistics
// @Tags        Admin
// @Produce     json
// @Security    BasicAuth
// @Success     200  {object}  handlers.StatsResponse
// @Router      /api/admin/stats [get]
func (h *Handlers) Stats(c *gin.Context) {
	st, err := h.status.Snapshot(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		fail(c, http.StatusInternalServerError, ErrCodeInternal, "stats failed")
		return
	}
	ok(c, http.StatusOK, StatsResponse{
		TotalKeys:  st.TotalKeys,
		ActiveKeys: st.ActiveKeys,
		TotalUsage: st.TotalKeyUsage,
		Usage:      st.Usage,
	})
}
