package social

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/julienschmidt/httprouter"
	log "github.com/sirupsen/logrus"

	"github.com/jimiolaniyan/gosocial/auth"
	"github.com/jimiolaniyan/gosocial/metrics"
)

func CreateMessageHandler(svc Service) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		var req createMessageRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			encodeBadRequest(w)
			return
		}

		m, err := svc.CreateMessage(r.Context(), req)
		if err != nil {
			encodeError(err, w)
			return
		}
		encodeResponse(w, m)
	})
}

func GetMessagesHandler(svc Service) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		msgs, err := svc.GetAllMessages(r.Context())
		if err != nil {
			encodeError(err, w)
			return
		}
		encodeResponse(w, msgs)
	})
}

// GetMessageHandler answers 200 with an empty body when the message does not exist.
func GetMessageHandler(svc Service) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		id, err := messageIDParam(r)
		if err != nil {
			encodeError(err, w)
			return
		}

		m, err := svc.GetMessage(r.Context(), id)
		if err != nil {
			encodeError(err, w)
			return
		}
		if m == nil {
			w.WriteHeader(http.StatusOK)
			return
		}
		encodeResponse(w, m)
	})
}

// DeleteMessageHandler answers 200 with 1 when a message was removed and an
// empty body when there was none.
func DeleteMessageHandler(svc Service) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		id, err := messageIDParam(r)
		if err != nil {
			encodeError(err, w)
			return
		}

		n, err := svc.DeleteMessage(r.Context(), id)
		if err != nil {
			encodeError(err, w)
			return
		}
		if n == 0 {
			w.WriteHeader(http.StatusOK)
			return
		}
		encodeResponse(w, n)
	})
}

func UpdateMessageHandler(svc Service) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		id, err := messageIDParam(r)
		if err != nil {
			encodeError(err, w)
			return
		}

		var req updateMessageRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			encodeBadRequest(w)
			return
		}

		n, err := svc.UpdateMessage(r.Context(), id, req.Text)
		if err != nil {
			encodeError(err, w)
			return
		}
		encodeResponse(w, n)
	})
}

func GetAccountMessagesHandler(svc Service) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		id, err := strconv.ParseInt(httprouter.ParamsFromContext(r.Context()).ByName("accountId"), 10, 64)
		if err != nil {
			encodeError(auth.ErrInvalidAccountID, w)
			return
		}

		msgs, err := svc.GetAccountMessages(r.Context(), auth.ID(id))
		if err != nil {
			encodeError(err, w)
			return
		}
		encodeResponse(w, msgs)
	})
}

func messageIDParam(r *http.Request) (MessageID, error) {
	id, err := strconv.ParseInt(httprouter.ParamsFromContext(r.Context()).ByName("messageId"), 10, 64)
	if err != nil {
		return 0, ErrInvalidMessageID
	}
	return MessageID(id), nil
}

func encodeResponse(w http.ResponseWriter, v interface{}) {
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.WithError(err).Error("failed to encode response")
	}
}

func encodeError(err error, w http.ResponseWriter) {
	reason, ok := rejectionReason(err)
	if !ok {
		log.WithError(err).Error("message request failed")
		w.WriteHeader(http.StatusInternalServerError)
		_ = json.NewEncoder(w).Encode(map[string]interface{}{"error": "internal server error"})
		return
	}

	w.WriteHeader(http.StatusBadRequest)
	metrics.RecordRejection(reason)
	if err := json.NewEncoder(w).Encode(map[string]interface{}{
		"error": err.Error(),
	}); err != nil {
		log.WithError(err).Error("failed to encode error")
	}
}

// rejectionReason maps a client error to its metrics label.
func rejectionReason(err error) (string, bool) {
	switch {
	case errors.Is(err, ErrAccountNotFound):
		return "account_not_found", true
	case errors.Is(err, ErrMessageNotFound):
		return "message_not_found", true
	case errors.Is(err, ErrInvalidMessageText):
		return "invalid_message_text", true
	case errors.Is(err, ErrInvalidMessageID):
		return "invalid_message_id", true
	case errors.Is(err, auth.ErrInvalidAccountID):
		return "invalid_account_id", true
	}
	return "", false
}

func encodeBadRequest(w http.ResponseWriter) {
	w.WriteHeader(http.StatusBadRequest)
	_ = json.NewEncoder(w).Encode(map[string]interface{}{"error": "invalid request body"})
}
