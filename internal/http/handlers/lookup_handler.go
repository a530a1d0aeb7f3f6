package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/atharvsharma432199/phone-api/internal/domain"
	"github.com/atharvsharma432199/phone-api/internal/services"
	"github.com/atharvsharma432199/phone-api/internal/sysutil"
)

// LookupResponse is a successful lookup.
type LookupResponse struct {
	Status string              `json:"status" example:"success"`
	Data   domain.PersonRecord `json:"data"`
	// Usage is the key's counter after this lookup was charged.
	Usage int64 `json:"usage" example:"42"`
	// MaxUsage is the key's quota; -1 means unlimited.
	MaxUsage     int64  `json:"max_usage" example:"1000"`
	ResponseTime string `json:"response_time" example:"0.012s"`
}

var denyMessages = map[services.DenyReason]string{
	services.ReasonInactive:       "API key is inactive",
	services.ReasonExpired:        "API key has expired",
	services.ReasonQuotaExhausted: "API key limit exceeded",
}

// Lookup godoc
// @ID          lookupPhone
// @Summary     Look up a phone number
// @Description Resolves a phone number to a person record. Each successful lookup is charged to the API key; every attempt is written to the usage ledger.
// @Tags        Lookup
// @Produce     json
//
// @Param       apikey     query   string  false "API key (or X-API-Key header)"
// @Param       X-API-Key  header  string  false "API key"
// @Param       query      query   string  true  "Phone number in any common format"  example(+91 98765 43210)
//
// @Success     200  {object}  handlers.LookupResponse
// @Failure     400  {object}  handlers.ErrorResponse  "Query missing"
// @Failure     401  {object}  handlers.ErrorResponse  "Key missing or unknown"
// @Failure     403  {object}  handlers.ErrorResponse  "Key inactive, expired or out of quota"
// @Failure     404  {object}  handlers.ErrorResponse  "No record"
// @Failure     429  {object}  handlers.ErrorResponse  "Rate limited"
// @Failure     503  {object}  handlers.ErrorResponse  "Record store unavailable"
// @Router      / [get]
func (h *Handlers) Lookup(c *gin.Context) {
	start := time.Now()
	apiKey, query := lookupParams(c)

	res, err := h.lookup.Lookup(c.Request.Context(), apiKey, query)
	if err == nil {
		ok(c, http.StatusOK, LookupResponse{
			Status:       "success",
			Data:         res.Record,
			Usage:        res.Usage,
			MaxUsage:     res.MaxUsage,
			ResponseTime: formatSeconds(res.Elapsed),
		})
		return
	}

	switch {
	case errors.Is(err, services.ErrKeyMissing) && apiKey == "":
		fail(c, http.StatusUnauthorized, ErrCodeKeyMissing, "API key is required. Use ?apikey=YOUR_KEY")
	case errors.Is(err, services.ErrKeyMissing):
		fail(c, http.StatusUnauthorized, ErrCodeKeyUnknown, "Invalid API key")
	case errors.Is(err, services.ErrKeyInvalid):
		msg, known := denyMessages[services.DenyReasonOf(err)]
		if !known {
			msg = "API key limit exceeded or inactive"
		}
		fail(c, http.StatusForbidden, ErrCodeKeyInvalid, msg)
	case errors.Is(err, services.ErrQueryMissing):
		fail(c, http.StatusBadRequest, ErrCodeQueryMissing, "Query parameter is required. Use &query=PHONE_NUMBER")
	case errors.Is(err, services.ErrNotFound):
		writeError(c, http.StatusNotFound, ErrorResponse{
			Code:         ErrCodeNotFound,
			Message:      "Phone number not found in database",
			ResponseTime: formatSeconds(time.Since(start)),
		})
	case errors.Is(err, services.ErrStoreUnavailable):
		c.Header("Retry-After", "30")
		fail(c, http.StatusServiceUnavailable, ErrCodeStoreUnavailable, "phone database is unavailable")
	default:
		_ = c.Error(err)
		fail(c, http.StatusInternalServerError, ErrCodeInternal, "lookup failed")
	}
}

// LookupRejected is the rate limiter's reject hook on the lookup route. The
// refused attempt still gets its usage log row.
func (h *Handlers) LookupRejected(c *gin.Context) {
	apiKey, query := lookupParams(c)
	h.lookup.RecordRateLimited(c.Request.Context(), apiKey, query)
}

func lookupParams(c *gin.Context) (apiKey, query string) {
	apiKey = strings.TrimSpace(sysutil.FirstNonEmpty(c.Query("apikey"), c.GetHeader("X-API-Key")))
	return apiKey, c.Query("query")
}
