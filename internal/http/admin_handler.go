package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"pollsite/internal/domain/question"
	"pollsite/internal/platform/apperr"
)

type createQuestionRequest struct {
	Text    string   `json:"question_text"`
	PubDate *string  `json:"pub_date"`
	Choices []string `json:"choices"`
}

type updateQuestionRequest struct {
	Text    *string `json:"question_text"`
	PubDate *string `json:"pub_date"`
}

type addChoiceRequest struct {
	Text string `json:"choice_text"`
}

// @Summary     Admin question listing
// @Tags        admin
// @Security    BearerAuth
// @Produce     json
// @Param       q         query     string  false  "Search in question text"
// @Param       pub_date  query     string  false  "any, today, past_7_days, this_month, this_year"
// @Param       page      query     int     false  "Page, starting at 1"
// @Success     200       {object}  question.AdminPage
// @Failure     400       {object}  map[string]string  "invalid filter"
// @Router      /api/v1/admin/questions [get]
func (h *Handler) handleAdminListQuestions(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := question.AdminFilter{
		Search:  q.Get("q"),
		PubDate: q.Get("pub_date"),
	}
	if p := q.Get("page"); p != "" {
		page, err := strconv.Atoi(p)
		if err != nil || page < 1 {
			errorResponse(w, apperr.BadRequest("invalid_input", "invalid page", err))
			return
		}
		filter.Page = page
	}

	page, err := h.questionSvc.AdminList(r.Context(), filter)
	if err != nil {
		errorResponse(w, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

// @Summary     Create question
// @Tags        admin
// @Security    BearerAuth
// @Accept      json
// @Produce     json
// @Param       request  body      createQuestionRequest  true  "Question with optional choices"
// @Success     201      {object}  map[string]int64
// @Failure     400      {object}  map[string]string  "invalid body"
// @Router      /api/v1/admin/questions [post]
func (h *Handler) handleCreateQuestion(w http.ResponseWriter, r *http.Request) {
	var req createQuestionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errorResponse(w, apperr.BadRequest("invalid_input", "invalid body", err))
		return
	}

	pubDate, err := parseTimePtr(req.PubDate)
	if err != nil {
		errorResponse(w, apperr.BadRequest("invalid_input", "pub_date must be RFC 3339", err))
		return
	}

	q := &question.Question{Text: req.Text}
	if pubDate != nil {
		q.PubDate = *pubDate
	}

	id, err := h.questionSvc.Create(r.Context(), q, req.Choices)
	if err != nil {
		errorResponse(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]int64{"id": id})
}

// @Summary     Update question
// @Tags        admin
// @Security    BearerAuth
// @Accept      json
// @Param       id       path  int64                  true  "Question ID"
// @Param       request  body  updateQuestionRequest  true  "Fields to change"
// @Success     204
// @Failure     400      {object}  map[string]string  "invalid body"
// @Failure     404      {object}  map[string]string  "not found"
// @Router      /api/v1/admin/questions/{id} [patch]
func (h *Handler) handleUpdateQuestion(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		errorResponse(w, apperr.BadRequest("invalid_input", "invalid id", err))
		return
	}

	var req updateQuestionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errorResponse(w, apperr.BadRequest("invalid_input", "invalid body", err))
		return
	}

	pubDate, err := parseTimePtr(req.PubDate)
	if err != nil {
		errorResponse(w, apperr.BadRequest("invalid_input", "pub_date must be RFC 3339", err))
		return
	}

	input := question.UpdateInput{Text: req.Text, PubDate: pubDate}
	if err := h.questionSvc.Update(r.Context(), id, input); err != nil {
		errorResponse(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// @Summary     Delete question
// @Tags        admin
// @Security    BearerAuth
// @Param       id   path  int64  true  "Question ID"
// @Success     204
// @Failure     404  {object}  map[string]string  "not found"
// @Router      /api/v1/admin/questions/{id} [delete]
func (h *Handler) handleDeleteQuestion(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		errorResponse(w, apperr.BadRequest("invalid_input", "invalid id", err))
		return
	}

	if err := h.questionSvc.Delete(r.Context(), id); err != nil {
		errorResponse(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// @Summary     Add a choice to a question
// @Tags        admin
// @Security    BearerAuth
// @Accept      json
// @Produce     json
// @Param       id       path      int64             true  "Question ID"
// @Param       request  body      addChoiceRequest  true  "Choice"
// @Success     201      {object}  question.Choice
// @Failure     400      {object}  map[string]string  "invalid body"
// @Failure     404      {object}  map[string]string  "not found"
// @Router      /api/v1/admin/questions/{id}/choices [post]
func (h *Handler) handleAddChoice(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		errorResponse(w, apperr.BadRequest("invalid_input", "invalid id", err))
		return
	}

	var req addChoiceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errorResponse(w, apperr.BadRequest("invalid_input", "invalid body", err))
		return
	}

	c, err := h.questionSvc.AddChoice(r.Context(), id, req.Text)
	if err != nil {
		errorResponse(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, c)
}
