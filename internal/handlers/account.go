package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/kondarsoft/marketplace/internal/events"
	"github.com/kondarsoft/marketplace/internal/logging"
	"github.com/kondarsoft/marketplace/internal/models"
)

type AccountHandler struct {
	DB       *gorm.DB
	Producer events.Publisher
}

type accountValues struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Company   string `json:"company"`
	Industry  string `json:"industry"`
	Phone     string `json:"phone"`
	Country   string `json:"country"`
}

// CreateAccount signs up a business or an individual ("shopping") account.
// A duplicate email trips the unique constraint and maps to 409.
func (h *AccountHandler) CreateAccount(c echo.Context) error {
	var req struct {
		Type   string        `json:"type"`
		Values accountValues `json:"values"`
	}
	if err := c.Bind(&req); err != nil {
		return c.String(http.StatusBadRequest, "Invalid request body")
	}

	ctx := c.Request().Context()
	log := logging.FromContext(ctx)

	var err error
	switch req.Type {
	case "business":
		err = h.DB.WithContext(ctx).Create(&models.Business{
			FirstName: req.Values.FirstName,
			LastName:  req.Values.LastName,
			Email:     req.Values.Email,
			Company:   req.Values.Company,
			Industry:  req.Values.Industry,
			Phone:     req.Values.Phone,
			Country:   req.Values.Country,
		}).Error
	case "shopping":
		err = h.DB.WithContext(ctx).Create(&models.Individual{
			FirstName: req.Values.FirstName,
			LastName:  req.Values.LastName,
			Email:     req.Values.Email,
			Country:   req.Values.Country,
		}).Error
	default:
		return c.String(http.StatusBadRequest, "Unknown account type")
	}

	if err != nil {
		log.Error("Error creating account", "error", err)
		if isDuplicate(err) {
			return c.String(http.StatusConflict, err.Error())
		}
		return c.String(http.StatusInternalServerError, err.Error())
	}

	if h.Producer != nil {
		pctx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		event := map[string]any{
			"type":  "account_created",
			"kind":  req.Type,
			"email": req.Values.Email,
		}
		if err := h.Producer.Publish(pctx, "account_events", fmt.Sprint(req.Values.Email), event); err != nil {
			log.Error("Kafka publish error", "error", err)
		}
	}

	return c.String(http.StatusOK, "Account successfully created.")
}

func isDuplicate(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "duplicate key") || strings.Contains(msg, "UNIQUE constraint")
}
