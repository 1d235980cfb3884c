package sonos

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/strefethen/home-hub-go/internal/api"
	"github.com/strefethen/home-hub-go/internal/apperrors"
	"github.com/strefethen/home-hub-go/internal/sonos/soap"
)

// RegisterRoutes wires speaker orchestration routes to the router.
func RegisterRoutes(router chi.Router, service *Service) {
	router.Method(http.MethodPost, "/sonos/group", api.Handler(groupRooms(service)))
	router.Method(http.MethodPost, "/sonos/sleep", api.Handler(goodnight(service)))
	router.Method(http.MethodPost, "/sonos/playlist", api.Handler(queuePlaylist(service)))
}

type groupRequest struct {
	Rooms  []string `json:"rooms"`
	Volume *int     `json:"volume,omitempty"`
}

type sleepRequest struct {
	Rooms      []string `json:"rooms"`
	Volume     *int     `json:"volume,omitempty"`
	SleepTimer *uint64  `json:"sleep_timer,omitempty"`
}

type playlistRequest struct {
	Rooms    []string `json:"rooms"`
	Volume   *int     `json:"volume,omitempty"`
	Playlist string   `json:"playlist"`
}

func groupRooms(service *Service) api.Handler {
	return func(w http.ResponseWriter, r *http.Request) error {
		var req groupRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			return apperrors.NewValidationError("invalid request body", nil)
		}

		if _, err := service.GroupRooms(r.Context(), req.Rooms, req.Volume); err != nil {
			return sonosTransportError(err)
		}
		w.WriteHeader(http.StatusOK)
		return nil
	}
}

func goodnight(service *Service) api.Handler {
	return func(w http.ResponseWriter, r *http.Request) error {
		var req sleepRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			return apperrors.NewValidationError("invalid request body", nil)
		}

		coordinator, err := service.GroupRooms(r.Context(), req.Rooms, req.Volume)
		if err != nil {
			return sonosTransportError(err)
		}
		if coordinator == nil {
			return apperrors.NewValidationError("verify sonos speakers are on the network", nil)
		}
		if err := service.Goodnight(r.Context(), coordinator, req.SleepTimer); err != nil {
			return apperrors.NewUnavailableError("goodnight sequence failed: "+err.Error(), apperrors.ErrorCodeSonosSequence)
		}
		w.WriteHeader(http.StatusOK)
		return nil
	}
}

func queuePlaylist(service *Service) api.Handler {
	return func(w http.ResponseWriter, r *http.Request) error {
		var req playlistRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			return apperrors.NewValidationError("invalid request body", nil)
		}
		if req.Playlist == "" {
			return apperrors.NewValidationError("playlist is required", nil)
		}
		shuffle, repeat, sleepTimer, err := playbackParams(r)
		if err != nil {
			return err
		}

		coordinator, err := service.GroupRooms(r.Context(), req.Rooms, req.Volume)
		if err != nil {
			return sonosTransportError(err)
		}
		if coordinator == nil {
			return apperrors.NewNotFoundError("no speaker found for coordinator room", apperrors.ErrorCodeCoordinatorMissing)
		}

		playlist, err := service.FindPlaylist(r.Context(), coordinator, req.Playlist)
		if err != nil {
			return sonosTransportError(err)
		}
		if playlist == nil {
			return apperrors.NewNotFoundError("no playlist named "+req.Playlist, apperrors.ErrorCodePlaylistNotFound)
		}

		if err := service.QueuePlaylist(r.Context(), coordinator, playlist, shuffle, repeat, sleepTimer); err != nil {
			return sonosTransportError(err)
		}
		w.WriteHeader(http.StatusOK)
		return nil
	}
}

func playbackParams(r *http.Request) (shuffle, repeat bool, sleepTimer *uint64, err error) {
	query := r.URL.Query()
	if v := query.Get("shuffle"); v != "" {
		shuffle, err = strconv.ParseBool(v)
		if err != nil {
			return false, false, nil, apperrors.NewValidationError("shuffle must be a boolean", nil)
		}
	}
	if v := query.Get("repeat"); v != "" {
		repeat, err = strconv.ParseBool(v)
		if err != nil {
			return false, false, nil, apperrors.NewValidationError("repeat must be a boolean", nil)
		}
	}
	if v := query.Get("sleep_timer"); v != "" {
		seconds, parseErr := strconv.ParseUint(v, 10, 64)
		if parseErr != nil {
			return false, false, nil, apperrors.NewValidationError("sleep_timer must be a non-negative integer", nil)
		}
		sleepTimer = &seconds
	}
	return shuffle, repeat, sleepTimer, nil
}

// sonosTransportError maps device transport failures to a 500 with a code
// that distinguishes timeouts, unreachable hosts, and device rejections.
func sonosTransportError(err error) error {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return appErr
	}

	code := apperrors.ErrorCodeInternalError
	var timeoutErr *soap.TimeoutError
	var unreachableErr *soap.UnreachableError
	var rejectedErr *soap.RejectedError
	switch {
	case errors.As(err, &timeoutErr):
		code = apperrors.ErrorCodeSonosTimeout
	case errors.As(err, &unreachableErr):
		code = apperrors.ErrorCodeSonosUnreachable
	case errors.As(err, &rejectedErr):
		code = apperrors.ErrorCodeSonosRejected
	}
	return apperrors.NewAppError(code, "failed sonos request: "+err.Error(), http.StatusInternalServerError, nil)
}
