package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/skylerx/mystats/internal/history"
	"github.com/skylerx/mystats/internal/store"
)

type errorResponse struct {
	Error string `json:"error"`
}

type userResponse struct {
	ID          string `json:"id"`
	Slug        string `json:"slug,omitempty"`
	DisplayName string `json:"displayName,omitempty"`
}

type listeningTimeResponse struct {
	Hours   int `json:"hours"`
	Minutes int `json:"minutes"`
}

type sessionInsightsResponse struct {
	TotalTracks   int `json:"total_tracks"`
	UniqueTracks  int `json:"unique_tracks"`
	TotalArtists  int `json:"total_artists"`
	UniqueArtists int `json:"unique_artists"`
}

type sessionResponse struct {
	SessionStart    time.Time               `json:"sessionStart"`
	SessionEnd      time.Time               `json:"sessionEnd"`
	DurationMinutes int                     `json:"durationMinutes"`
	TotalSessions   int                     `json:"totalSessions"`
	Insights        sessionInsightsResponse `json:"session_insights"`
}

type historyResponse struct {
	User           userResponse            `json:"user"`
	TotalTracks    int                     `json:"totalTracks"`
	UniqueTracks   int                     `json:"uniqueTracks"`
	UniqueArtists  int                     `json:"uniqueArtists"`
	ListeningTime  listeningTimeResponse   `json:"listeningTime"`
	PeakHour       int                     `json:"peakHour"`
	HourCounts     []history.HourCount     `json:"hourCounts"`
	Weekdays       history.WeekdayAnalysis `json:"weekday_analysis"`
	Heatmap        history.Heatmap         `json:"heatmap"`
	LongestSession *sessionResponse        `json:"longest_session"`
}

type milestoneResponse struct {
	EntityType    string    `json:"entityType"`
	EntityID      string    `json:"entityId,omitempty"`
	MilestoneType string    `json:"milestoneType"`
	Value         int64     `json:"value"`
	Name          string    `json:"name"`
	ReachedAt     time.Time `json:"reachedAt"`
}

type milestonesResponse struct {
	User       userResponse        `json:"user"`
	Milestones []milestoneResponse `json:"milestones"`
}

func (s *Server) requireApiKey(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := r.Header.Get("X-API-Key")
		if key == "" {
			respondError(w, http.StatusUnauthorized, "missing X-API-Key header")
			return
		}
		valid, err := s.store.ValidApiKey(key)
		if err != nil {
			respondError(w, http.StatusInternalServerError, "checking api key")
			return
		}
		if !valid {
			respondError(w, http.StatusUnauthorized, "invalid api key")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	user, ok := s.lookupUser(w, r)
	if !ok {
		return
	}

	start, end, err := parseRange(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	events, err := s.store.GetPlays(user.ID, start, end)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "loading plays")
		return
	}
	if len(events) == 0 {
		// Distinguish "user exists but has no data yet" from a bad request.
		respondError(w, http.StatusConflict, "no listening history imported for this user")
		return
	}

	summary := history.Aggregate(events)
	hours, minutes := summary.ListeningTime()

	resp := historyResponse{
		User:          userResponse{ID: user.ID, Slug: user.Slug, DisplayName: user.DisplayName},
		TotalTracks:   summary.TotalTracks,
		UniqueTracks:  summary.UniqueTracks,
		UniqueArtists: summary.UniqueArtists,
		ListeningTime: listeningTimeResponse{Hours: hours, Minutes: minutes},
		PeakHour:      summary.PeakHour,
		HourCounts:    summary.HourCounts,
		Weekdays:      summary.Weekdays,
		Heatmap:       summary.Heatmap,
	}
	if session := summary.LongestSession; session != nil {
		resp.LongestSession = &sessionResponse{
			SessionStart:    session.Start,
			SessionEnd:      session.End,
			DurationMinutes: session.DurationMinutes,
			TotalSessions:   session.TotalSessions,
			Insights: sessionInsightsResponse{
				TotalTracks:   session.Insights.TotalTracks,
				UniqueTracks:  session.Insights.UniqueTracks,
				TotalArtists:  session.Insights.TotalArtists,
				UniqueArtists: session.Insights.UniqueArtists,
			},
		}
	}

	respondJSON(w, http.StatusOK, resp)
}

func (s *Server) handleMilestones(w http.ResponseWriter, r *http.Request) {
	user, ok := s.lookupUser(w, r)
	if !ok {
		return
	}

	milestones, err := s.store.ListUserMilestones(user.ID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "loading milestones")
		return
	}

	resp := milestonesResponse{
		User:       userResponse{ID: user.ID, Slug: user.Slug, DisplayName: user.DisplayName},
		Milestones: make([]milestoneResponse, 0, len(milestones)),
	}
	for _, m := range milestones {
		resp.Milestones = append(resp.Milestones, milestoneResponse{
			EntityType:    m.EntityType,
			EntityID:      m.EntityID,
			MilestoneType: m.MilestoneType,
			Value:         m.Value,
			Name:          m.Name,
			ReachedAt:     m.ReachedAt,
		})
	}

	respondJSON(w, http.StatusOK, resp)
}

func (s *Server) lookupUser(w http.ResponseWriter, r *http.Request) (*store.User, bool) {
	identifier := chi.URLParam(r, "identifier")
	user, err := s.store.FindUser(identifier)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "looking up user")
		return nil, false
	}
	if user == nil {
		respondError(w, http.StatusNotFound, "user not found")
		return nil, false
	}
	return user, true
}

// parseRange reads optional from/to query parameters (YYYY-MM-DD or RFC3339).
// The default window is all of recorded history.
func parseRange(r *http.Request) (time.Time, time.Time, error) {
	start := time.Time{}
	end := time.Now().Add(24 * time.Hour)

	if v := r.URL.Query().Get("from"); v != "" {
		t, err := parseTimeParam(v)
		if err != nil {
			return start, end, err
		}
		start = t
	}
	if v := r.URL.Query().Get("to"); v != "" {
		t, err := parseTimeParam(v)
		if err != nil {
			return start, end, err
		}
		end = t
	}
	return start, end, nil
}

func parseTimeParam(v string) (time.Time, error) {
	if t, err := time.Parse("2006-01-02", v); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, v)
}

func respondJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func respondError(w http.ResponseWriter, status int, msg string) {
	respondJSON(w, status, errorResponse{Error: msg})
}
