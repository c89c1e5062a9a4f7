package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/roach88/admit/internal/queue"
)

// retryAfterSeconds is sent with 503 answers.
const retryAfterSeconds = "2"

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) enter(c *gin.Context) {
	var req EnterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   string(queue.ErrCodeInvalidToken),
			Message: "invalid request body: " + err.Error(),
		})
		return
	}

	ticket, err := s.engine.Enter(c.Request.Context(), c.Param("eventID"), req.Token)
	if err != nil {
		s.fail(c, err)
		return
	}

	status := http.StatusCreated
	if ticket.Reentered {
		status = http.StatusOK
	}
	c.JSON(status, NewSessionResponse(ticket))
}

func (s *Server) poll(c *gin.Context) {
	ticket, err := s.engine.Poll(c.Request.Context(), c.Param("sessionID"))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, NewSessionResponse(ticket))
}

func (s *Server) complete(c *gin.Context) {
	res, err := s.engine.Complete(c.Request.Context(), c.Param("sessionID"))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, NewExitResponse(res))
}

func (s *Server) cancel(c *gin.Context) {
	res, err := s.engine.Cancel(c.Request.Context(), c.Param("sessionID"))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, NewExitResponse(res))
}

func (s *Server) stats(c *gin.Context) {
	stats, err := s.engine.Stats(c.Request.Context(), c.Param("eventID"))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// fail maps an engine error to its HTTP answer.
func (s *Server) fail(c *gin.Context, err error) {
	switch queue.CodeOf(err) {
	case queue.ErrCodeEventNotFound:
		c.JSON(http.StatusNotFound, ErrorResponse{Error: string(queue.ErrCodeEventNotFound), Message: "unknown event"})
	case queue.ErrCodeSessionNotFound:
		c.JSON(http.StatusGone, GoneResponse{Status: queue.StatusExpired, Message: "session expired, please re-enter"})
	case queue.ErrCodeInvalidToken:
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: string(queue.ErrCodeInvalidToken), Message: "token must not be empty"})
	case queue.ErrCodeStoreUnavailable:
		s.logger.Warn("store unavailable", "path", c.FullPath(), "error", err)
		c.Header("Retry-After", retryAfterSeconds)
		c.JSON(http.StatusServiceUnavailable, ErrorResponse{Error: string(queue.ErrCodeStoreUnavailable), Message: "temporarily unavailable, retry shortly"})
	default:
		s.logger.Error("request failed", "path", c.FullPath(), "error", err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "INTERNAL", Message: "internal error"})
	}
}
