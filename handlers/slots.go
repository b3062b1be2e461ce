package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"campusbook/database/store"
	"campusbook/models"
	"campusbook/utils"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
)

// SlotsHandler serves the read-only availability surface the booking UI
// polls. Responses are cached briefly in Redis; a stale read can at worst
// show a seat that the booking transaction will then refuse.
type SlotsHandler struct {
	Store    store.Store
	Capacity int
}

// NewSlotsHandler creates a new SlotsHandler instance.
func NewSlotsHandler(st store.Store, capacity int) *SlotsHandler {
	return &SlotsHandler{Store: st, Capacity: capacity}
}

// WindowAvailability is one row of the availability response.
type WindowAvailability struct {
	Window      string `json:"window"`
	Capacity    int    `json:"capacity"`
	BookedCount int    `json:"bookedCount"`
	Remaining   int    `json:"remaining"`
}

// GetAvailabilityHandler returns remaining capacity per window for a date.
func (h *SlotsHandler) GetAvailabilityHandler(c *gin.Context) {
	date := c.Query("date")
	if _, err := time.Parse("2006-01-02", date); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid argument", "date must be YYYY-MM-DD")
		return
	}

	cache := utils.GetCacheClient()
	cacheKey := utils.SlotsCachePrefix + date
	if payload, err := cache.Get(c, cacheKey).Result(); err == nil {
		var rows []WindowAvailability
		if json.Unmarshal([]byte(payload), &rows) == nil {
			c.JSON(http.StatusOK, gin.H{"date": date, "windows": rows})
			return
		}
	} else if err != redis.Nil {
		utils.GetLogger().Sugar().Warnf("slots cache unavailable: %v", err)
	}

	var slots []models.Slot
	if err := h.Store.Find(c, store.CollSlots, map[string]any{"date": date}, &slots); err != nil {
		utils.JSONError(c, http.StatusInternalServerError, "internal error", err.Error())
		return
	}
	byWindow := make(map[string]models.Slot, len(slots))
	for _, s := range slots {
		byWindow[s.Window] = s
	}

	rows := make([]WindowAvailability, 0, len(models.Windows))
	for _, w := range models.Windows {
		row := WindowAvailability{Window: w, Capacity: h.Capacity}
		if s, ok := byWindow[w]; ok {
			row.Capacity = s.Capacity
			row.BookedCount = s.BookedCount
		}
		row.Remaining = row.Capacity - row.BookedCount
		if row.Remaining < 0 {
			row.Remaining = 0
		}
		rows = append(rows, row)
	}

	if payload, err := json.Marshal(rows); err == nil {
		_ = cache.Set(c, cacheKey, payload, utils.SlotsCacheTTL).Err()
	}
	c.JSON(http.StatusOK, gin.H{"date": date, "windows": rows})
}
