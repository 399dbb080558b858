package auth

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	log "github.com/sirupsen/logrus"

	"github.com/jimiolaniyan/gosocial/metrics"
)

func RegisterAccountHandler(svc Service) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		req, err := decodeRegisterAccountRequest(r.Body)
		w.Header().Set("Content-Type", "application/json")
		if err != nil {
			encodeBadRequest(w)
			return
		}

		acc, err := svc.RegisterAccount(r.Context(), req)
		if err != nil {
			encodeError(err, w)
			return
		}

		if err := json.NewEncoder(w).Encode(acc); err != nil {
			log.WithError(err).Error("failed to encode account")
		}
	})
}

func LoginHandler(svc Service) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		req, err := decodeLoginRequest(r.Body)
		w.Header().Set("Content-Type", "application/json")
		if err != nil {
			encodeBadRequest(w)
			return
		}

		acc, err := svc.ValidateCredentials(r.Context(), req)
		if err != nil {
			encodeError(err, w)
			return
		}

		if err := json.NewEncoder(w).Encode(acc); err != nil {
			log.WithError(err).Error("failed to encode account")
		}
	})
}

func encodeError(err error, w http.ResponseWriter) {
	var reason string
	switch {
	case errors.Is(err, ErrInvalidCredentials):
		w.WriteHeader(http.StatusUnauthorized)
		reason = "invalid_credentials"
	case errors.Is(err, ErrExistingUsername):
		w.WriteHeader(http.StatusConflict)
		reason = "duplicate_username"
	case errors.Is(err, ErrInvalidUsername):
		w.WriteHeader(http.StatusBadRequest)
		reason = "invalid_username"
	case errors.Is(err, ErrWeakPassword):
		w.WriteHeader(http.StatusBadRequest)
		reason = "weak_password"
	default:
		log.WithError(err).Error("account request failed")
		w.WriteHeader(http.StatusInternalServerError)
		_ = json.NewEncoder(w).Encode(map[string]interface{}{"error": "internal server error"})
		return
	}

	metrics.RecordRejection(reason)
	if err := json.NewEncoder(w).Encode(map[string]interface{}{
		"error": err.Error(),
	}); err != nil {
		log.WithError(err).Error("failed to encode error")
	}
}

func encodeBadRequest(w http.ResponseWriter) {
	w.WriteHeader(http.StatusBadRequest)
	_ = json.NewEncoder(w).Encode(map[string]interface{}{"error": "invalid request body"})
}

func decodeRegisterAccountRequest(body io.ReadCloser) (registerAccountRequest, error) {
	req := registerAccountRequest{}
	if err := json.NewDecoder(body).Decode(&req); err != nil {
		return registerAccountRequest{}, err
	}
	return req, nil
}

func decodeLoginRequest(body io.ReadCloser) (validateCredentialsRequest, error) {
	req := validateCredentialsRequest{}
	if err := json.NewDecoder(body).Decode(&req); err != nil {
		return validateCredentialsRequest{}, err
	}
	return req, nil
}
