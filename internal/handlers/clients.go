package handlers

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"conectame/internal/models"
)

type clientRequest struct {
	Name         string `form:"name" json:"name"`
	Email        string `form:"email" json:"email"`
	Phone        string `form:"phone" json:"phone"`
	Company      string `form:"company" json:"company"`
	Status       string `form:"status" json:"status"`
	Note         string `form:"note" json:"note"`
	ReminderDate string `form:"reminder_date" json:"reminder_date"`
}

func (r clientRequest) fields() models.ClientFields {
	return models.ClientFields{
		Name:         r.Name,
		Email:        r.Email,
		Phone:        r.Phone,
		Company:      r.Company,
		Status:       r.Status,
		Note:         r.Note,
		ReminderDate: r.ReminderDate,
	}
}

type clientResponse struct {
	ID           int64  `json:"id"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	Phone        string `json:"phone"`
	Company      string `json:"company"`
	Status       string `json:"status"`
	Note         string `json:"note"`
	ReminderDate string `json:"reminder_date"`
}

func toClientResponse(c models.Client) clientResponse {
	return clientResponse{
		ID:           c.ID,
		Name:         c.Name,
		Email:        c.Email,
		Phone:        c.Phone,
		Company:      c.Company,
		Status:       c.Status,
		Note:         c.Note,
		ReminderDate: c.ReminderDate,
	}
}

func toClientResponses(clients []models.Client) []clientResponse {
	resp := make([]clientResponse, 0, len(clients))
	for _, c := range clients {
		resp = append(resp, toClientResponse(c))
	}
	return resp
}

func (h HandlerSet) ListClients(c *gin.Context) {
	query := strings.TrimSpace(c.Query("q"))

	list, err := h.clients.List(c.Request.Context(), query)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"query":         list.Query,
		"clients":       toClientResponses(list.Clients),
		"status_counts": list.StatusCounts,
		"total_count":   list.Total,
	})
}

func (h HandlerSet) CreateClient(c *gin.Context) {
	var req clientRequest
	if err := c.ShouldBind(&req); err != nil {
		h.rejectInput(c, http.StatusBadRequest, "invalid_request")
		return
	}

	client, err := h.clients.Create(c.Request.Context(), req.fields())
	if err != nil {
		h.writeError(c, err)
		return
	}

	respond(c, http.StatusCreated, toClientResponse(client), "/clients")
}

func (h HandlerSet) GetClient(c *gin.Context) {
	id, ok := h.clientID(c)
	if !ok {
		return
	}

	client, err := h.clients.Get(c.Request.Context(), id)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, toClientResponse(client))
}

func (h HandlerSet) UpdateClient(c *gin.Context) {
	id, ok := h.clientID(c)
	if !ok {
		return
	}

	var req clientRequest
	if err := c.ShouldBind(&req); err != nil {
		h.rejectInput(c, http.StatusBadRequest, "invalid_request")
		return
	}

	client, err := h.clients.Update(c.Request.Context(), id, req.fields())
	if err != nil {
		h.writeError(c, err)
		return
	}

	respond(c, http.StatusOK, toClientResponse(client), "/clients")
}

func (h HandlerSet) DeleteClient(c *gin.Context) {
	id, ok := h.clientID(c)
	if !ok {
		return
	}

	if err := h.clients.Delete(c.Request.Context(), id); err != nil {
		h.writeError(c, err)
		return
	}

	respond(c, http.StatusNoContent, nil, "/clients")
}

func (h HandlerSet) DueReminders(c *gin.Context) {
	day := time.Now()
	if raw := c.Query("date"); raw != "" {
		parsed, err := time.Parse(models.ReminderDateLayout, raw)
		if err != nil {
			h.rejectInput(c, http.StatusBadRequest, "invalid_date")
			return
		}
		day = parsed
	}

	due, err := h.clients.DueReminders(c.Request.Context(), day)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"date":    day.Format(models.ReminderDateLayout),
		"clients": toClientResponses(due),
	})
}

// clientID parses the :id path parameter. A non-numeric id names no client,
// so it is answered like any unknown id.
func (h HandlerSet) clientID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		h.rejectInput(c, http.StatusNotFound, "not_found")
		return 0, false
	}
	return id, true
}

// rejectInput answers malformed input, unless the caller has no session:
// then the caller is sent to /login like on any gated route.
func (h HandlerSet) rejectInput(c *gin.Context, status int, code string) {
	if _, err := h.auth.RequireAuthenticated(c.Request.Context()); err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(status, gin.H{"error": code})
}

