// internal/api/gmail.go
package api

import (
	stderrors "errors"
	"fmt"
	"net/http"

	"chat-automation/internal/automation"
	"chat-automation/internal/common/errors"
	"chat-automation/internal/common/validation"
	"chat-automation/internal/mailbox"

	"github.com/gin-gonic/gin"
)

const defaultMaxResults = 10

type GmailAutomationRequest struct {
	Action     string                 `json:"action" binding:"required"`
	Parameters map[string]interface{} `json:"parameters"`
}

type gmailAction struct {
	schema *validation.Schema
	run    func(h *Handler, c *gin.Context, p map[string]interface{}) (interface{}, error)
}

var gmailActions = map[string]gmailAction{
	"check_inbox": {
		schema: validation.MustCompile(`{
			"type": "object",
			"properties": {
				"max_results": {"type": "integer", "minimum": 1, "maximum": 500},
				"query": {"type": "string"}
			}
		}`),
		run: func(h *Handler, c *gin.Context, p map[string]interface{}) (interface{}, error) {
			return h.deps.Mailbox.InboxMessages(c.Request.Context(),
				intParam(p, "max_results", defaultMaxResults), stringParam(p, "query", ""))
		},
	},
	"unread_count": {
		schema: validation.MustCompile(`{"type": "object"}`),
		run: func(h *Handler, c *gin.Context, p map[string]interface{}) (interface{}, error) {
			return h.deps.Mailbox.UnreadCount(c.Request.Context())
		},
	},
	"search": {
		schema: validation.MustCompile(`{
			"type": "object",
			"properties": {
				"query": {"type": "string"},
				"max_results": {"type": "integer", "minimum": 1, "maximum": 500}
			}
		}`),
		run: func(h *Handler, c *gin.Context, p map[string]interface{}) (interface{}, error) {
			return h.deps.Mailbox.SearchMessages(c.Request.Context(),
				stringParam(p, "query", ""), intParam(p, "max_results", defaultMaxResults))
		},
	},
	"send": {
		schema: validation.MustCompile(`{
			"type": "object",
			"required": ["to", "subject", "body"],
			"properties": {
				"to": {"type": "string", "minLength": 1},
				"subject": {"type": "string"},
				"body": {"type": "string"},
				"cc": {"type": "string"},
				"bcc": {"type": "string"}
			}
		}`),
		run: func(h *Handler, c *gin.Context, p map[string]interface{}) (interface{}, error) {
			return h.deps.Mailbox.Send(c.Request.Context(), mailbox.SendRequest{
				To:      stringParam(p, "to", ""),
				Subject: stringParam(p, "subject", ""),
				Body:    stringParam(p, "body", ""),
				Cc:      stringParam(p, "cc", ""),
				Bcc:     stringParam(p, "bcc", ""),
			})
		},
	},
	"mark_read": {
		schema: validation.MustCompile(`{
			"type": "object",
			"required": ["message_ids"],
			"properties": {
				"message_ids": {"type": "array", "items": {"type": "string"}}
			}
		}`),
		run: func(h *Handler, c *gin.Context, p map[string]interface{}) (interface{}, error) {
			raw, _ := p["message_ids"].([]interface{})
			ids := make([]string, 0, len(raw))
			for _, v := range raw {
				if s, ok := v.(string); ok {
					ids = append(ids, s)
				}
			}
			return h.deps.Mailbox.MarkRead(c.Request.Context(), ids)
		},
	},
}

// GmailAutomation handles POST /api/gmail-automation.
func (h *Handler) GmailAutomation(c *gin.Context) {
	var req GmailAutomationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errors.Respond(c, errors.NewValidationFailedError(err.Error()))
		return
	}

	action, ok := gmailActions[req.Action]
	if !ok {
		errors.Respond(c, errors.NewValidationFailedError(fmt.Sprintf("Unsupported Gmail action: %s", req.Action)))
		return
	}
	if res := action.schema.Validate(req.Parameters); !res.Valid {
		errors.Respond(c, errors.NewValidationFailedError("Invalid parameters for Gmail action: "+req.Action).
			WithMetadata("errors", res.GetErrorMessages()))
		return
	}

	ctx := c.Request.Context()
	if err := h.deps.Mailbox.EnsureAuthenticated(ctx); err != nil {
		errors.Respond(c, errors.NewAuthenticationFailedError(automation.AuthFailedMessage))
		return
	}

	result, err := action.run(h, c, req.Parameters)
	if err != nil {
		h.log.Error("gmail automation failed", map[string]interface{}{
			"action": req.Action,
			"error":  err.Error(),
		})
		if stderrors.Is(err, mailbox.ErrNotAuthenticated) {
			errors.Respond(c, errors.NewAuthenticationFailedError(err.Error()))
			return
		}
		if stderrors.Is(err, mailbox.ErrInvalidHeader) {
			errors.Respond(c, errors.NewValidationFailedError(err.Error()))
			return
		}
		errors.Respond(c, errors.NewMailboxFailedError(err))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"action":  req.Action,
		"data":    result,
	})
}

// GmailAuthStatus handles GET /api/gmail-auth-status.
func (h *Handler) GmailAuthStatus(c *gin.Context) {
	ctx := c.Request.Context()

	if err := h.deps.Mailbox.EnsureAuthenticated(ctx); err != nil {
		c.JSON(http.StatusOK, gin.H{
			"authenticated": false,
			"status":        "Gmail API not authenticated. Please run authentication flow.",
		})
		return
	}

	profile, err := h.deps.Mailbox.Profile(ctx)
	if err != nil {
		c.JSON(http.StatusOK, gin.H{
			"authenticated": false,
			"status":        fmt.Sprintf("Authentication check failed: %s", err.Error()),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"authenticated": true,
		"emailAddress":  profile.EmailAddress,
		"status":        "Connected to Gmail API",
	})
}
