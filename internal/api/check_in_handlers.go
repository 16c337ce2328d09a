package api

import (
	"net/http"

	"github.com/limbo/studytrack/internal/service"
	"github.com/limbo/studytrack/pkg/entity"
	"github.com/limbo/studytrack/pkg/httputil"
)

type CreateCheckInRequest struct {
	Type       string   `json:"type"`
	Content    string   `json:"content"`
	Mood       *string  `json:"mood"`
	StudyHours *float64 `json:"study_hours"`
	Location   *string  `json:"location"`
}

type TodayCheckInsResponse struct {
	CheckIns []entity.CheckIn `json:"check_ins"`
}

func (s *Server) CreateCheckIn(w http.ResponseWriter, r *http.Request) {
	logger := GetLoggerFromCtx(r.Context())
	uid, ok := s.requireUID(w, r, "check-in")
	if !ok {
		return
	}
	var req CreateCheckInRequest
	if err := decodeBody(r, &req); err != nil {
		logger.Error("check-in error: invalid body")
		httputil.WriteErrorResponse(w, http.StatusBadRequest, "invalid request body", nil)
		return
	}
	ctx, cancel := s.requestContext(r)
	defer cancel()
	checkIn, err := s.checkInService.CheckIn(ctx, uid, &service.CheckInRequest{
		Type:       req.Type,
		Content:    req.Content,
		Mood:       req.Mood,
		StudyHours: req.StudyHours,
		Location:   req.Location,
	})
	if err != nil {
		writeServiceError(w, logger, "check-in", err)
		return
	}
	httputil.WriteJSONResponse(w, http.StatusCreated, checkIn)
	logger.Info("check-in created")
}

func (s *Server) GetCheckIns(w http.ResponseWriter, r *http.Request) {
	logger := GetLoggerFromCtx(r.Context())
	uid, ok := s.requireUID(w, r, "get check-ins")
	if !ok {
		return
	}
	query := r.URL.Query()
	from, err := parseTimeParam(query.Get("from"), s.location)
	if err != nil {
		httputil.WriteErrorResponse(w, http.StatusBadRequest, "invalid from param", err)
		return
	}
	to, err := parseTimeParam(query.Get("to"), s.location)
	if err != nil {
		httputil.WriteErrorResponse(w, http.StatusBadRequest, "invalid to param", err)
		return
	}
	ctx, cancel := s.requestContext(r)
	defer cancel()
	page, err := s.checkInService.List(ctx, uid, service.CheckInQuery{
		Page:  intParam(r, "page"),
		Limit: intParam(r, "limit"),
		Type:  query.Get("type"),
		From:  from,
		To:    to,
	})
	if err != nil {
		writeServiceError(w, logger, "get check-ins", err)
		return
	}
	httputil.WriteJSONResponse(w, http.StatusOK, page)
}

func (s *Server) GetTodayCheckIns(w http.ResponseWriter, r *http.Request) {
	logger := GetLoggerFromCtx(r.Context())
	uid, ok := s.requireUID(w, r, "today check-ins")
	if !ok {
		return
	}
	ctx, cancel := s.requestContext(r)
	defer cancel()
	checkIns, err := s.checkInService.Today(ctx, uid)
	if err != nil {
		writeServiceError(w, logger, "today check-ins", err)
		return
	}
	httputil.WriteJSONResponse(w, http.StatusOK, TodayCheckInsResponse{CheckIns: checkIns})
}

func (s *Server) GetDailyStatus(w http.ResponseWriter, r *http.Request) {
	logger := GetLoggerFromCtx(r.Context())
	uid, ok := s.requireUID(w, r, "daily status")
	if !ok {
		return
	}
	ctx, cancel := s.requestContext(r)
	defer cancel()
	status, err := s.checkInService.Status(ctx, uid)
	if err != nil {
		writeServiceError(w, logger, "daily status", err)
		return
	}
	httputil.WriteJSONResponse(w, http.StatusOK, status)
}

func (s *Server) GetCheckInStats(w http.ResponseWriter, r *http.Request) {
	logger := GetLoggerFromCtx(r.Context())
	uid, ok := s.requireUID(w, r, "check-in stats")
	if !ok {
		return
	}
	ctx, cancel := s.requestContext(r)
	defer cancel()
	stats, err := s.checkInService.Stats(ctx, uid, intParam(r, "days"))
	if err != nil {
		writeServiceError(w, logger, "check-in stats", err)
		return
	}
	httputil.WriteJSONResponse(w, http.StatusOK, stats)
}
