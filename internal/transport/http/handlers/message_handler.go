package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/google/uuid"

	"quickchat/internal/domain"
	"quickchat/internal/service"
	"quickchat/internal/transport/http/middleware"
	"quickchat/pkg/validator"
)

type MessageHandler struct {
	messageService  *service.MessageService
	seenService     *service.SeenService
	deletionService *service.DeletionService
}

func NewMessageHandler(messageService *service.MessageService, seenService *service.SeenService, deletionService *service.DeletionService) *MessageHandler {
	return &MessageHandler{
		messageService:  messageService,
		seenService:     seenService,
		deletionService: deletionService,
	}
}

// Sidebar returns every peer plus how many of their messages are unseen.
func (h *MessageHandler) Sidebar(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	entries, err := h.messageService.Sidebar(r.Context(), userID)
	if err != nil {
		log.Printf("ERROR sidebar: %v", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL", "Something went wrong")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"users":   entries,
	})
}

// History returns the conversation with a peer. Opening a conversation
// marks everything the peer sent as seen, which also emits the batched
// messages-seen event to the peer's live connection.
func (h *MessageHandler) History(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	peerID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_ID", "Invalid peer ID")
		return
	}

	var before *uuid.UUID
	if beforeStr := r.URL.Query().Get("before"); beforeStr != "" {
		id, err := uuid.Parse(beforeStr)
		if err != nil {
			writeError(w, http.StatusBadRequest, "INVALID_ID", "Invalid before cursor")
			return
		}
		before = &id
	}

	limit := 50
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 && l <= 200 {
			limit = l
		}
	}

	// Mark seen first so the returned window already reflects the flip.
	if _, err := h.seenService.MarkConversationSeen(r.Context(), userID, peerID); err != nil {
		log.Printf("ERROR mark conversation seen: %v", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL", "Something went wrong")
		return
	}

	resp, err := h.messageService.History(r.Context(), userID, peerID, before, limit)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUserNotFound):
			writeError(w, http.StatusNotFound, "NOT_FOUND", "User not found")
		case errors.Is(err, service.ErrInvalidCursor):
			writeError(w, http.StatusBadRequest, "INVALID_CURSOR", "Unknown pagination cursor")
		default:
			log.Printf("ERROR history: %v", err)
			writeError(w, http.StatusInternalServerError, "INTERNAL", "Something went wrong")
		}
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":  true,
		"messages": resp.Messages,
		"has_more": resp.HasMore,
	})
}

func (h *MessageHandler) Send(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	peerID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_ID", "Invalid peer ID")
		return
	}

	var content domain.Content
	if err := json.NewDecoder(r.Body).Decode(&content); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	if errs := validator.ValidateSend(content.Text, content.ImageURL, content.AudioURL, content.VideoURL); errs.HasErrors() {
		writeValidationErrors(w, errs)
		return
	}

	msg, err := h.messageService.Send(r.Context(), userID, peerID, content)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEmptyContent):
			writeError(w, http.StatusBadRequest, "EMPTY_CONTENT", "Message needs text or a media reference")
		case errors.Is(err, service.ErrCannotMessageSelf):
			writeError(w, http.StatusBadRequest, "CANNOT_MESSAGE_SELF", "Cannot message yourself")
		case errors.Is(err, service.ErrUserNotFound):
			writeError(w, http.StatusNotFound, "NOT_FOUND", "Receiver not found")
		default:
			log.Printf("ERROR send message: %v", err)
			writeError(w, http.StatusInternalServerError, "INTERNAL", "Something went wrong")
		}
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"success": true,
		"message": msg,
	})
}

func (h *MessageHandler) MarkSeen(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	messageID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_ID", "Invalid message ID")
		return
	}

	msg, err := h.seenService.MarkMessageSeen(r.Context(), messageID, userID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrMessageNotFound):
			writeError(w, http.StatusNotFound, "NOT_FOUND", "Message not found")
		case errors.Is(err, service.ErrNotMessageReceiver):
			writeError(w, http.StatusForbidden, "FORBIDDEN", "Only the receiver can mark a message seen")
		default:
			log.Printf("ERROR mark seen: %v", err)
			writeError(w, http.StatusInternalServerError, "INTERNAL", "Something went wrong")
		}
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": msg,
	})
}

func (h *MessageHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	messageID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_ID", "Invalid message ID")
		return
	}

	var input struct {
		DeleteFor string `json:"delete_for"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	switch input.DeleteFor {
	case "me":
		err = h.deletionService.DeleteForMe(r.Context(), messageID, userID)
	case "everyone":
		err = h.deletionService.DeleteForEveryone(r.Context(), messageID, userID)
	default:
		writeError(w, http.StatusBadRequest, "INVALID_DELETE_FOR", `delete_for must be "me" or "everyone"`)
		return
	}

	if err != nil {
		switch {
		case errors.Is(err, service.ErrMessageNotFound):
			writeError(w, http.StatusNotFound, "NOT_FOUND", "Message not found")
		case errors.Is(err, service.ErrNotMessageSender):
			writeError(w, http.StatusForbidden, "FORBIDDEN", "Only the sender can delete for everyone")
		case errors.Is(err, service.ErrNotParticipant):
			writeError(w, http.StatusForbidden, "FORBIDDEN", "Not a participant of this message")
		default:
			log.Printf("ERROR delete message: %v", err)
			writeError(w, http.StatusInternalServerError, "INTERNAL", "Something went wrong")
		}
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
	})
}
