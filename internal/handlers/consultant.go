package handlers

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/kondarsoft/marketplace/internal/consultant"
	"github.com/kondarsoft/marketplace/internal/logging"
	"github.com/kondarsoft/marketplace/internal/mail"
)

type ConsultantHandler struct {
	Matcher      consultant.Matcher
	Mail         mail.Sender
	ContactEmail string
}

// Match categorizes the inquiry, picks the consultant carrying that
// expertise and notifies them by email.
func (h *ConsultantHandler) Match(c echo.Context) error {
	var req struct {
		Inquiry string `json:"inquiry"`
		Email   string `json:"email"`
	}
	if err := c.Bind(&req); err != nil {
		return c.String(http.StatusBadRequest, "Invalid request body")
	}
	if req.Email == "" {
		return c.String(http.StatusBadRequest, "Missing requirement user email")
	}
	if req.Inquiry == "" {
		return c.String(http.StatusBadRequest, "Error: Missing requirement inquiry")
	}

	ctx := c.Request().Context()
	log := logging.FromContext(ctx)

	if h.Matcher == nil {
		log.Error("Error matching with consultant", "error", "no matcher configured")
		return c.String(http.StatusInternalServerError, "Internal server error")
	}

	category, err := h.Matcher.Categorize(ctx, req.Inquiry)
	if err != nil {
		log.Error("Error matching with consultant", "error", err)
		return c.String(http.StatusInternalServerError, "Internal server error")
	}

	matched, ok := consultant.ByExpertise(category)
	if !ok {
		log.Error("Error matching with consultant", "category", category)
		return c.String(http.StatusInternalServerError, "Internal server error")
	}

	if h.Mail != nil {
		msg := mail.Message{
			FromEmail: req.Email,
			To:        matched.Email,
			Subject:   "New inquiry matched to you",
			HTML: fmt.Sprintf(`<div style="font-family: Arial, sans-serif; font-size: 16px; color: #333;">
    <h2>New matched inquiry</h2>
    <p><strong>From:</strong> %s</p>
    <p><strong>Category:</strong> %s</p>
    <p><strong>Inquiry:</strong> %s</p>
  </div>`, req.Email, category, req.Inquiry),
		}
		if err := h.Mail.Send(ctx, msg); err != nil {
			log.Error("Error matching with consultant", "error", err)
			return c.String(http.StatusInternalServerError, "Internal server error")
		}
	}

	return c.JSON(http.StatusOK, map[string]any{
		"message":    "Successfully matched with consultant",
		"consultant": matched,
	})
}

func (h *ConsultantHandler) Get(c echo.Context) error {
	id := c.QueryParam("id")

	matched, ok := consultant.ByID(id)
	if !ok {
		return c.String(http.StatusNotFound, "Consultant not found")
	}
	return c.JSON(http.StatusOK, matched)
}

// SendMessage forwards the marketing-site contact form by email.
func (h *ConsultantHandler) SendMessage(c echo.Context) error {
	var req struct {
		ContactData struct {
			FirstName string `json:"firstName"`
			LastName  string `json:"lastName"`
			Email     string `json:"email"`
			Phone     string `json:"phone"`
			Company   string `json:"company"`
			Industry  string `json:"industry"`
			Message   string `json:"message"`
		} `json:"contactData"`
	}
	if err := c.Bind(&req); err != nil {
		return c.String(http.StatusBadRequest, "Invalid request body")
	}

	data := req.ContactData
	if data.FirstName == "" {
		return c.String(http.StatusBadRequest, "Error: Missing requirement first name.")
	}
	if data.LastName == "" {
		return c.String(http.StatusBadRequest, "Error: Missing requirement last name.")
	}
	if data.Email == "" {
		return c.String(http.StatusBadRequest, "Error: Missing requirement email.")
	}

	ctx := c.Request().Context()

	industry := ""
	if data.Industry != "" {
		industry = fmt.Sprintf("<p><strong>Industry:</strong> %s</p>", data.Industry)
	}
	phone := ""
	if data.Phone != "" {
		phone = fmt.Sprintf("<p><strong>Phone Number:</strong> %s</p>", data.Phone)
	}

	msg := mail.Message{
		FromName:  data.FirstName + " " + data.LastName,
		FromEmail: data.Email,
		To:        h.ContactEmail,
		Subject:   fmt.Sprintf("Contact Form Submission from %s %s", data.FirstName, data.LastName),
		HTML: fmt.Sprintf(`<div style="font-family: Arial, sans-serif; font-size: 16px; color: #333;">
    <h2>New Contact Submission from %s %s</h2>
    <p><strong>Company Name:</strong> %s</p>
    <p><strong>Email:</strong> %s</p>
  %s%s
    <p><strong>Message:</strong>%s</p>
  </div>`, data.FirstName, data.LastName, data.Company, data.Email, industry, phone, data.Message),
	}

	if err := h.Mail.Send(ctx, msg); err != nil {
		logging.FromContext(ctx).Error("Error sending email", "error", err)
		return c.String(http.StatusInternalServerError, err.Error())
	}

	return c.String(http.StatusOK, "Success")
}

// SendMessageToConsultant emails a matched consultant directly, copying them on the thread.
// them on the thread.
func (h *ConsultantHandler) SendMessageToConsultant(c echo.Context) error {
	var req struct {
		FirstName       string `json:"firstName"`
		LastName        string `json:"lastName"`
		Email           string `json:"email"`
		Subject         string `json:"subject"`
		Message         string `json:"message"`
		ConsultantEmail string `json:"consultantEmail"`
	}
	if err := c.Bind(&req); err != nil {
		return c.String(http.StatusBadRequest, "Invalid request body")
	}
	if req.FirstName == "" {
		return c.String(http.StatusBadRequest, "Error: Missing requirement first name.")
	}
	if req.LastName == "" {
		return c.String(http.StatusBadRequest, "Error: Missing requirement last name.")
	}
	if req.Email == "" {
		return c.String(http.StatusBadRequest, "Error: Missing requirement email.")
	}

	ctx := c.Request().Context()

	msg := mail.Message{
		FromName:  req.FirstName + " " + req.LastName,
		FromEmail: req.Email,
		To:        h.ContactEmail,
		CC:        req.ConsultantEmail,
		Subject:   fmt.Sprintf("Contact Form Submission from %s %s", req.FirstName, req.LastName),
		HTML: fmt.Sprintf(`<div style="font-family: Arial, sans-serif; font-size: 16px; color: #333;">
<h2>New Contact Submission from %s %s</h2>
<p><strong>First Name:</strong> %s</p>
<p><strong>Last Name:</strong> %s</p>
    <p><strong>Email:</strong> %s</p>
        <p><strong>Subject:</strong> %s</p>
    <p><strong>Message:</strong> %s</p>
</div>`, req.FirstName, req.LastName, req.FirstName, req.LastName, req.Email, req.Subject, req.Message),
	}

	if err := h.Mail.Send(ctx, msg); err != nil {
		logging.FromContext(ctx).Error("Error sending email", "error", err)
		return c.String(http.StatusInternalServerError, "Failed to send email.")
	}

	return c.String(http.StatusOK, "Successfully sent email to consultant")
}
