package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"toast/api/internal/middleware"
)

// attachLabelRequest is {"id": <label id>}.
type attachLabelRequest struct {
	LabelID uuid.UUID `json:"id" binding:"required"`
}

func (h HandlerSet) AttachLabel(c *gin.Context) {
	taskID, ok := pathID(c, "id", "Task")
	if !ok {
		return
	}

	var req attachLabelRequest
	if !bindJSON(c, &req) {
		return
	}

	user := middleware.CurrentUser(c)
	if err := h.labels.Attach(c.Request.Context(), user.ID, taskID, req.LabelID.String()); err != nil {
		middleware.AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, messageResponse{Message: "Label attached successfully."})
}

func (h HandlerSet) DetachLabel(c *gin.Context) {
	taskID, ok := pathID(c, "id", "Task")
	if !ok {
		return
	}
	labelID, ok := pathID(c, "label_id", "Label")
	if !ok {
		return
	}

	user := middleware.CurrentUser(c)
	if err := h.labels.Detach(c.Request.Context(), user.ID, taskID, labelID); err != nil {
		middleware.AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, messageResponse{Message: "Label detached successfully."})
}
