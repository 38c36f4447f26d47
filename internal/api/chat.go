// internal/api/chat.go
package api

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"time"

	"chat-automation/internal/approval"
	"chat-automation/internal/automation"
	"chat-automation/internal/common/errors"
	"chat-automation/internal/models"
	"chat-automation/internal/workflow"

	"github.com/gin-gonic/gin"
)

type ChatRequest struct {
	Message   string `json:"message" binding:"required"`
	SessionID string `json:"sessionId" binding:"required"`
	UserID    string `json:"userId"`
}

type ChatResponse struct {
	ID            string                   `json:"id"`
	Message       string                   `json:"message"`
	Response      string                   `json:"response"`
	IntentData    *automation.IntentRecord `json:"intentData"`
	NeedsApproval bool                     `json:"needsApproval"`
	Timestamp     time.Time                `json:"timestamp"`
}

type ApproveRequest struct {
	SessionID  string                 `json:"sessionId"`
	MessageID  string                 `json:"messageId" binding:"required"`
	Approved   *bool                  `json:"approved" binding:"required"`
	EditedData map[string]interface{} `json:"editedData"`
}

// Chat handles POST /api/chat.
func (h *Handler) Chat(c *gin.Context) {
	var req ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errors.Respond(c, errors.NewValidationFailedError(err.Error()))
		return
	}
	if req.UserID == "" {
		req.UserID = models.DefaultUserID
	}

	turn, err := h.deps.Chat.HandleMessage(c.Request.Context(), req.Message, req.SessionID, req.UserID)
	if err != nil {
		h.log.Error("chat failed", map[string]interface{}{
			"sessionId": req.SessionID,
			"error":     err.Error(),
		})
		errors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, ChatResponse{
		ID:            turn.ID,
		Message:       turn.Message,
		Response:      turn.Response,
		IntentData:    turn.IntentData,
		NeedsApproval: turn.NeedsApproval,
		Timestamp:     turn.Timestamp,
	})
}

// Approve handles POST /api/approve.
func (h *Handler) Approve(c *gin.Context) {
	var req ApproveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errors.Respond(c, errors.NewValidationFailedError(err.Error()))
		return
	}

	res, err := h.deps.Approvals.Resolve(c.Request.Context(), req.MessageID, *req.Approved, req.EditedData)
	if err != nil {
		errors.Respond(c, approvalError(req.MessageID, err))
		return
	}
	c.JSON(http.StatusOK, res)
}

func approvalError(turnID string, err error) error {
	switch {
	case stderrors.Is(err, approval.ErrTurnNotFound):
		return errors.NewTurnNotFoundError(turnID)
	case stderrors.Is(err, approval.ErrAlreadyResolved):
		return errors.NewAlreadyResolvedError(turnID)
	case stderrors.Is(err, workflow.ErrExecutorFailed):
		return errors.NewExternalExecutorFailedError(err)
	default:
		return errors.NewPersistenceFailedError("resolve_approval", err)
	}
}

// History handles GET /api/history/:sessionId.
func (h *Handler) History(c *gin.Context) {
	sessionID := c.Param("sessionId")

	turns, err := h.deps.Turns.ListBySession(c.Request.Context(), sessionID)
	if err != nil {
		errors.Respond(c, errors.NewPersistenceFailedError("list_history", err))
		return
	}
	if turns == nil {
		turns = []*models.ConversationTurn{}
	}
	c.JSON(http.StatusOK, gin.H{"messages": turns})
}

// ClearHistory handles DELETE /api/history/:sessionId.
func (h *Handler) ClearHistory(c *gin.Context) {
	sessionID := c.Param("sessionId")

	n, err := h.deps.Turns.DeleteBySession(c.Request.Context(), sessionID)
	if err != nil {
		errors.Respond(c, errors.NewPersistenceFailedError("clear_history", err))
		return
	}

	h.log.Info("chat history cleared", map[string]interface{}{
		"sessionId":    sessionID,
		"deletedCount": n,
	})
	c.JSON(http.StatusOK, gin.H{
		"success":      true,
		"message":      fmt.Sprintf("Cleared %d messages from chat history", n),
		"deletedCount": n,
	})
}
