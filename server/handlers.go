package server

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"

	"github.com/rushteam/animerec/core"
	"github.com/rushteam/animerec/pkg/conv"
	"github.com/rushteam/animerec/service"
)

const (
	msgInvalidUserID = "Invalid input. Please enter a valid User ID."
	msgNoResults     = "User ID %d not found or has no recommendations."
	msgUnexpected    = "An unexpected error occurred: %s"
)

type indexPage struct {
	UserID          string
	Recommendations []string
	Error           string
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	page := indexPage{}
	if r.Method == http.MethodPost {
		page.UserID = strings.TrimSpace(r.FormValue("userID"))
		id, err := strconv.ParseInt(page.UserID, 10, 64)
		switch {
		case err != nil:
			page.Error = msgInvalidUserID
		default:
			res, err := s.rec.RecommendScored(r.Context(), core.UserID(id))
			switch {
			case err != nil:
				page.Error = fmt.Sprintf(msgUnexpected, err)
			case res.Empty():
				page.Error = fmt.Sprintf(msgNoResults, id)
			default:
				page.Recommendations = res.Names()
			}
		}
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := indexTmpl.Execute(w, page); err != nil {
		s.logger.Error().Err(err).Msg("render index")
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type recommendationItem struct {
	ID       int64   `json:"anime_id,omitempty"`
	Name     string  `json:"name"`
	Score    float64 `json:"score"`
	Genres   string  `json:"genres,omitempty"`
	Synopsis string  `json:"synopsis,omitempty"`
}

type recommendationsResponse struct {
	UserID int64                `json:"user_id"`
	Status string               `json:"status"`
	Items  []recommendationItem `json:"items"`
	Reason string               `json:"reason,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// handleRecommendations GET /api/v1/users/{userID}/recommendations?top_n=&user_weight=&content_weight=
func (s *Server) handleRecommendations(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "userID"), 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid user id"})
		return
	}

	opts, err := requestOptions(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	res, err := s.rec.RecommendScored(r.Context(), core.UserID(id), opts...)
	if err != nil {
		if core.IsInvalidInput(err) {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
			return
		}
		s.logger.Error().Err(err).Int64("user_id", id).Msg("recommendation failed")
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
		return
	}

	resp := recommendationsResponse{
		UserID: id,
		Status: res.Status.String(),
		Items:  make([]recommendationItem, 0, len(res.Items)),
		Reason: res.Reason,
	}
	for _, it := range res.Items {
		resp.Items = append(resp.Items, recommendationItem{
			ID:       int64(it.ID),
			Name:     it.Name,
			Score:    it.Score,
			Genres:   it.Genres,
			Synopsis: it.Synopsis,
		})
	}
	status := http.StatusOK
	if res.Status == core.StatusNotFound {
		status = http.StatusNotFound
	}
	writeJSON(w, status, resp)
}

func requestOptions(r *http.Request) ([]service.RequestOption, error) {
	q := r.URL.Query()
	var opts []service.RequestOption
	if v := q.Get("top_n"); v != "" {
		n, ok := conv.ToInt(v)
		if !ok || n <= 0 {
			return nil, fmt.Errorf("invalid top_n %q", v)
		}
		opts = append(opts, service.WithTopN(n))
	}
	if v := q.Get("user_weight"); v != "" {
		f, ok := conv.ToFloat64(v)
		if !ok || f < 0 {
			return nil, fmt.Errorf("invalid user_weight %q", v)
		}
		opts = append(opts, service.WithUserWeight(f))
	}
	if v := q.Get("content_weight"); v != "" {
		f, ok := conv.ToFloat64(v)
		if !ok || f < 0 {
			return nil, fmt.Errorf("invalid content_weight %q", v)
		}
		opts = append(opts, service.WithContentWeight(f))
	}
	return opts, nil
}

type similarItem struct {
	ID       int64   `json:"anime_id"`
	Name     string  `json:"name"`
	Score    float64 `json:"similarity"`
	Rank     int     `json:"rank"`
	Genres   string  `json:"genres,omitempty"`
	Synopsis string  `json:"synopsis,omitempty"`
}

// handleSimilar GET /api/v1/anime/{animeID}/similar?n=10&neg=false
func (s *Server) handleSimilar(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "animeID"), 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid anime id"})
		return
	}
	n := core.DefaultContentNeighbor
	if v := r.URL.Query().Get("n"); v != "" {
		parsed, ok := conv.ToInt(v)
		if !ok || parsed <= 0 {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: fmt.Sprintf("invalid n %q", v)})
			return
		}
		n = parsed
	}
	neg, _ := strconv.ParseBool(r.URL.Query().Get("neg"))

	neighbors, err := s.rec.SimilarAnime(core.ItemID(id), n, neg)
	if err != nil {
		if core.IsNotFound(err) {
			writeJSON(w, http.StatusNotFound, errorResponse{Error: err.Error()})
			return
		}
		s.logger.Error().Err(err).Int64("anime_id", id).Msg("similar anime failed")
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
		return
	}

	out := make([]similarItem, 0, len(neighbors))
	for _, nb := range neighbors {
		out = append(out, similarItem{
			ID:       int64(nb.ID),
			Name:     nb.Anime.Name,
			Score:    nb.Score,
			Rank:     nb.Rank,
			Genres:   nb.Anime.Genres,
			Synopsis: nb.Anime.Synopsis,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
